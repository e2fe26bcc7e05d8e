// Package store defines the counter store backing all persistent analytics
// state: named hash tables of monotonically increasing integer counters,
// plus an append-only log table. Implementations must make Apply atomic so
// concurrent increments never lose updates.
package store

import (
	"context"
	"errors"
)

// Table names of the fixed counter namespace. Event breakdowns live in
// dynamically named tables, see EventTable.
const (
	TableListenCounts   = "listen_counts"
	TableBrowsers       = "stats:browsers"
	TableOS             = "stats:os"
	TableDevices        = "stats:devices"
	TableCountries      = "stats:countries"
	TableDiagnosticLogs = "diagnostic_logs"

	EventTablePrefix = "events:"
)

// EventTable names the per-track event breakdown table for a track key.
func EventTable(trackID string) string {
	return EventTablePrefix + trackID
}

// ErrUnavailable marks failures to reach the store itself, as opposed to
// bad input. Callers map it to a retry-later response.
var ErrUnavailable = errors.New("counter store unavailable")

// Increment is a single hash-field increment within a batch.
type Increment struct {
	Table string
	Field string
	Delta int64
}

// LogEntry is an append to a log table. The composite key is expected to be
// unique; implementations must not overwrite an existing key.
type LogEntry struct {
	Table string
	Key   string
	Value string
}

// Batch is one atomic unit of mutations produced by a single event.
type Batch struct {
	Increments []Increment
	Logs       []LogEntry
}

// Counters reads, writes and discovers hash tables. All write paths are
// pure increments or unique-key appends; nothing ever reads-then-writes.
type Counters interface {
	// Apply executes the whole batch atomically and reports the resulting
	// length of each log table touched (used for retention checks).
	Apply(ctx context.Context, b Batch) (logLens map[string]int64, err error)

	// ReadTable returns all field/count pairs of one counter table.
	ReadTable(ctx context.Context, table string) (map[string]int64, error)

	// ReadTables batch-reads several counter tables in one round trip.
	ReadTables(ctx context.Context, tables []string) (map[string]map[string]int64, error)

	// ReadLog returns the raw key/value pairs of a log table.
	ReadLog(ctx context.Context, table string) (map[string]string, error)

	// ListTables returns the full names of all tables matching prefix.
	ListTables(ctx context.Context, prefix string) ([]string, error)

	// TableLen returns the number of fields in a table.
	TableLen(ctx context.Context, table string) (int64, error)

	// TrimLog drops all but the keep lexicographically greatest keys of a
	// log table. Used by the diagnostic-log retention pass.
	TrimLog(ctx context.Context, table string, keep int) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
