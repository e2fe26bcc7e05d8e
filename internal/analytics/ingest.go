package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ivugurura/music-vault/internal/agent"
	"github.com/ivugurura/music-vault/internal/netutil"
	"github.com/ivugurura/music-vault/internal/store"
)

// Diagnostic-log retention: past maxLogEntries the log is trimmed back to
// trimLogTo newest entries, off the request path.
const (
	maxLogEntries = 10000
	trimLogTo     = 5000
)

const (
	maxUserAgentLen = 500
	maxLogIPLen     = 15
)

// isoTimestamp matches the millisecond ISO-8601 form the log keys and
// records have always used; its lexicographic order is chronological.
const isoTimestamp = "2006-01-02T15:04:05.000Z"

// Ingestor turns validated listen events into one atomic counter-store
// batch each.
type Ingestor struct {
	counters store.Counters
	log      zerolog.Logger
}

func NewIngestor(counters store.Counters, log zerolog.Logger) *Ingestor {
	return &Ingestor{counters: counters, log: log}
}

// Record classifies the event and applies its mutations: the qualifying
// listen counter (30s_listen only), the per-track event breakdown, the four
// audience counters and one diagnostic-log entry. The batch is atomic; a
// store failure leaves no partial state behind from this event.
func (i *Ingestor) Record(ctx context.Context, ev ListenEvent, meta RequestMeta) error {
	cls := agent.Classify(meta.UserAgent)

	country := meta.Country
	if country == "" {
		country = netutil.UnknownCountry
	}
	now := meta.Now
	if now.IsZero() {
		now = time.Now()
	}
	timestamp := now.UTC().Format(isoTimestamp)

	ip := "Unknown"
	if meta.IP != nil {
		ip = meta.IP.String()
	}

	record := LogRecord{
		IP:        ip,
		Country:   country,
		UserAgent: truncate(meta.UserAgent, maxUserAgentLen),
		TrackID:   ev.TrackID,
		EventType: ev.EventType,
		Timestamp: timestamp,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal log record: %w", err)
	}

	batch := store.Batch{}
	if ev.EventType == EventQualifyingListen {
		batch.Increments = append(batch.Increments, store.Increment{
			Table: store.TableListenCounts, Field: ev.TrackID, Delta: 1,
		})
	}
	batch.Increments = append(batch.Increments,
		store.Increment{Table: store.EventTable(ev.TrackID), Field: ev.EventType, Delta: 1},
		store.Increment{Table: store.TableBrowsers, Field: cls.Browser, Delta: 1},
		store.Increment{Table: store.TableOS, Field: cls.OS, Delta: 1},
		store.Increment{Table: store.TableDevices, Field: cls.Device, Delta: 1},
		store.Increment{Table: store.TableCountries, Field: country, Delta: 1},
	)
	batch.Logs = append(batch.Logs, store.LogEntry{
		Table: store.TableDiagnosticLogs,
		Key:   timestamp + "-" + truncate(ip, maxLogIPLen),
		Value: string(payload),
	})

	logLens, err := i.counters.Apply(ctx, batch)
	if err != nil {
		return err
	}

	if logLens[store.TableDiagnosticLogs] > maxLogEntries {
		go i.trimDiagnosticLogs()
	}

	i.log.Debug().
		Str("track_id", ev.TrackID).
		Str("event_type", ev.EventType).
		Str("country", country).
		Msg("recorded listen event")
	return nil
}

func (i *Ingestor) trimDiagnosticLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := i.counters.TrimLog(ctx, store.TableDiagnosticLogs, trimLogTo); err != nil {
		i.log.Error().Err(err).Msg("failed to trim diagnostic logs")
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
