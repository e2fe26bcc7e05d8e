package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCounters(t *testing.T) (*RedisCounters, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCountersFromClient(client), mr
}

func TestApplyIncrementsAndLogs(t *testing.T) {
	s, _ := newTestCounters(t)
	ctx := context.Background()

	batch := Batch{
		Increments: []Increment{
			{Table: TableListenCounts, Field: "music/a/b/c.mp3", Delta: 1},
			{Table: TableBrowsers, Field: "Firefox", Delta: 1},
		},
		Logs: []LogEntry{
			{Table: TableDiagnosticLogs, Key: "2024-01-01T00:00:00.000Z-1.2.3.4", Value: `{"x":1}`},
		},
	}

	logLens, err := s.Apply(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), logLens[TableDiagnosticLogs])

	counts, err := s.ReadTable(ctx, TableListenCounts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["music/a/b/c.mp3"])

	// Same batch again: counters move, the log key does not get overwritten.
	_, err = s.Apply(ctx, batch)
	require.NoError(t, err)
	counts, err = s.ReadTable(ctx, TableListenCounts)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["music/a/b/c.mp3"])

	logs, err := s.ReadLog(ctx, TableDiagnosticLogs)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestApplyConcurrentNoLostUpdates(t *testing.T) {
	s, _ := newTestCounters(t)
	ctx := context.Background()

	const workers = 20
	const perWorker = 25

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range perWorker {
				_, err := s.Apply(ctx, Batch{Increments: []Increment{
					{Table: TableListenCounts, Field: "music/x/y/z.mp3", Delta: 1},
				}})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	counts, err := s.ReadTable(ctx, TableListenCounts)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), counts["music/x/y/z.mp3"])
}

func TestReadTablesBatch(t *testing.T) {
	s, mr := newTestCounters(t)
	ctx := context.Background()

	mr.HSet(TableBrowsers, "Chrome", "5")
	mr.HSet(TableOS, "Linux", "3")

	out, err := s.ReadTables(ctx, []string{TableBrowsers, TableOS, TableDevices})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out[TableBrowsers]["Chrome"])
	assert.Equal(t, int64(3), out[TableOS]["Linux"])
	assert.Empty(t, out[TableDevices])
}

func TestListTablesMatchesPrefixOnly(t *testing.T) {
	s, mr := newTestCounters(t)
	ctx := context.Background()

	mr.HSet(EventTable("music/a/b/c.mp3"), "30s_listen", "1")
	mr.HSet(EventTable("music/a/b/d.mp3"), "track_start", "2")
	mr.HSet(TableListenCounts, "music/a/b/c.mp3", "1")

	tables, err := s.ListTables(ctx, EventTablePrefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		EventTable("music/a/b/c.mp3"),
		EventTable("music/a/b/d.mp3"),
	}, tables)
}

func TestTrimLogKeepsNewest(t *testing.T) {
	s, mr := newTestCounters(t)
	ctx := context.Background()

	for i := range 10 {
		key := fmt.Sprintf("2024-01-01T00:00:%02d.000Z-1.2.3.4", i)
		mr.HSet(TableDiagnosticLogs, key, "{}")
	}

	require.NoError(t, s.TrimLog(ctx, TableDiagnosticLogs, 4))

	logs, err := s.ReadLog(ctx, TableDiagnosticLogs)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	for i := 6; i < 10; i++ {
		key := fmt.Sprintf("2024-01-01T00:00:%02d.000Z-1.2.3.4", i)
		assert.Contains(t, logs, key)
	}
}

func TestTrimLogNoopUnderLimit(t *testing.T) {
	s, mr := newTestCounters(t)
	ctx := context.Background()

	mr.HSet(TableDiagnosticLogs, "2024-01-01T00:00:00.000Z-1.2.3.4", "{}")
	require.NoError(t, s.TrimLog(ctx, TableDiagnosticLogs, 5))

	logs, err := s.ReadLog(ctx, TableDiagnosticLogs)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestUnavailableWrapped(t *testing.T) {
	s, mr := newTestCounters(t)
	mr.Close()

	_, err := s.ReadTable(context.Background(), TableListenCounts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.Apply(context.Background(), Batch{Increments: []Increment{
		{Table: TableListenCounts, Field: "x", Delta: 1},
	}})
	assert.ErrorIs(t, err, ErrUnavailable)
}
