package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ivugurura/music-vault/internal/store"
)

// Report is the full analytics snapshot: the play counters reassembled into
// the artist/album/track hierarchy, the flat audience breakdowns as stored,
// and the diagnostic trail newest-first.
type Report struct {
	TrackStats     map[string]*ArtistStats `json:"track_stats"`
	AudienceStats  AudienceStats           `json:"audience_stats"`
	DiagnosticLogs []LogRecord             `json:"diagnostic_logs"`
}

type ArtistStats struct {
	TotalPlays int64                  `json:"total_plays"`
	Albums     map[string]*AlbumStats `json:"albums"`
}

type AlbumStats struct {
	TotalPlays int64        `json:"total_plays"`
	Tracks     []TrackStats `json:"tracks"`
}

type TrackStats struct {
	Title  string           `json:"title"`
	Plays  int64            `json:"plays"`
	Events map[string]int64 `json:"events"`
}

type AudienceStats struct {
	Browsers  map[string]int64 `json:"browsers"`
	OS        map[string]int64 `json:"os"`
	Devices   map[string]int64 `json:"devices"`
	Countries map[string]int64 `json:"countries"`
}

// Assembler recomputes the report from the counter store on every call;
// there is no cache to invalidate.
type Assembler struct {
	counters store.Counters
	log      zerolog.Logger
}

func NewAssembler(counters store.Counters, log zerolog.Logger) *Assembler {
	return &Assembler{counters: counters, log: log}
}

// Assemble performs the two-phase read (fixed tables plus discovery of the
// per-track event tables, then their bulk fetch) and folds the flat
// counters into the nested report. Malformed counter keys and unparsable
// log records are skipped per record, never fatal.
func (a *Assembler) Assemble(ctx context.Context) (*Report, error) {
	fixed, err := a.counters.ReadTables(ctx, []string{
		store.TableListenCounts,
		store.TableBrowsers,
		store.TableOS,
		store.TableDevices,
		store.TableCountries,
	})
	if err != nil {
		return nil, err
	}

	// The events:* tables are named per track, so their set has to be
	// discovered before it can be fetched.
	eventTables, err := a.counters.ListTables(ctx, store.EventTablePrefix)
	if err != nil {
		return nil, err
	}
	events := map[string]map[string]int64{}
	if len(eventTables) > 0 {
		events, err = a.counters.ReadTables(ctx, eventTables)
		if err != nil {
			return nil, err
		}
	}

	rawLogs, err := a.counters.ReadLog(ctx, store.TableDiagnosticLogs)
	if err != nil {
		return nil, err
	}

	return &Report{
		TrackStats:     a.assembleTrackStats(fixed[store.TableListenCounts], events),
		AudienceStats:  audienceStats(fixed),
		DiagnosticLogs: a.parseLogs(rawLogs),
	}, nil
}

func (a *Assembler) assembleTrackStats(listenCounts map[string]int64, events map[string]map[string]int64) map[string]*ArtistStats {
	stats := make(map[string]*ArtistStats)

	// Sorted iteration keeps track ordering stable across calls.
	keys := make([]string, 0, len(listenCounts))
	for k := range listenCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		plays := listenCounts[key]
		tp, ok := ParseTrackPath(key)
		if !ok {
			a.log.Warn().Str("key", key).Msg("skipping malformed track key")
			continue
		}

		artist := stats[tp.Artist]
		if artist == nil {
			artist = &ArtistStats{Albums: make(map[string]*AlbumStats)}
			stats[tp.Artist] = artist
		}
		albumName := NormalizeAlbumName(tp.AlbumFolder)
		album := artist.Albums[albumName]
		if album == nil {
			album = &AlbumStats{}
			artist.Albums[albumName] = album
		}

		// The event breakdown is keyed by the unmodified counter key.
		breakdown := events[store.EventTable(key)]
		if breakdown == nil {
			breakdown = map[string]int64{}
		}

		artist.TotalPlays += plays
		album.TotalPlays += plays
		album.Tracks = append(album.Tracks, TrackStats{
			Title:  NormalizeTrackName(tp.File),
			Plays:  plays,
			Events: breakdown,
		})
	}
	return stats
}

func audienceStats(fixed map[string]map[string]int64) AudienceStats {
	table := func(name string) map[string]int64 {
		if t := fixed[name]; t != nil {
			return t
		}
		return map[string]int64{}
	}
	return AudienceStats{
		Browsers:  table(store.TableBrowsers),
		OS:        table(store.TableOS),
		Devices:   table(store.TableDevices),
		Countries: table(store.TableCountries),
	}
}

// parseLogs decodes the stored diagnostic records and orders them newest
// first. Records that fail to decode or lack a timestamp are dropped.
func (a *Assembler) parseLogs(raw map[string]string) []LogRecord {
	records := make([]LogRecord, 0, len(raw))
	times := make(map[int]time.Time, len(raw))
	for _, v := range raw {
		var rec LogRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			a.log.Warn().Err(err).Msg("skipping unparsable diagnostic log entry")
			continue
		}
		if rec.Timestamp == "" {
			continue
		}
		t, err := time.Parse(isoTimestamp, rec.Timestamp)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, rec.Timestamp); err != nil {
				a.log.Warn().Str("timestamp", rec.Timestamp).Msg("skipping diagnostic log entry with bad timestamp")
				continue
			}
		}
		times[len(records)] = t
		records = append(records, rec)
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return times[idx[i]].After(times[idx[j]])
	})

	sorted := make([]LogRecord, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	return sorted
}
