// Package catalog serves the release metadata blob and the audio/image
// asset tree. The blob itself is produced offline by the catalog builder;
// this package only loads and exposes it.
package catalog

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/goccy/go-json"
)

// Track, Album and Artist mirror the offline builder's output schema.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	File     string `json:"file"`
	Duration string `json:"duration,omitempty"`
	ArtistID string `json:"artistId"`
	Number   int    `json:"number,omitempty"`
}

type Album struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Type     string  `json:"type"`
	Cover    string  `json:"cover,omitempty"`
	Tracks   []Track `json:"tracks"`
	ArtistID string  `json:"artistId"`
}

type Artist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar string  `json:"avatar,omitempty"`
	Albums []Album `json:"Albums"`
	EPs    []Album `json:"EPs"`
	Demos  []Album `json:"Demos"`
}

// Playlist is the whole catalog keyed by artist ID.
type Playlist map[string]Artist

// Stats summarizes a playlist for response headers and logs.
type Stats struct {
	Artists  int
	Releases int
	Tracks   int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d artists, %d releases, %d tracks", s.Artists, s.Releases, s.Tracks)
}

// Catalog holds the loaded playlist blob. Reload is safe against concurrent
// readers; absent configuration degrades to an empty catalog rather than an
// error, matching the player's fallback behavior.
type Catalog struct {
	path string

	mu       sync.RWMutex
	playlist Playlist
	raw      []byte
	stats    Stats
}

func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path, playlist: Playlist{}, raw: []byte("{}")}
	if path == "" {
		return c, nil
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Reload() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read playlist file: %w", err)
	}
	var pl Playlist
	if err := json.Unmarshal(raw, &pl); err != nil {
		return fmt.Errorf("parse playlist file %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.playlist = pl
	c.raw = raw
	c.stats = computeStats(pl)
	c.mu.Unlock()
	return nil
}

// Stats returns the counts of the currently loaded playlist.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// ServePlaylist writes the raw playlist blob. The blob is prebuilt, so it
// is served verbatim instead of being re-marshaled per request.
func (c *Catalog) ServePlaylist(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	raw, stats := c.raw, c.stats
	c.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, s-maxage=300, stale-while-revalidate=900")
	w.Header().Set("X-Stats", stats.String())
	_, _ = w.Write(raw)
}

func computeStats(pl Playlist) Stats {
	var s Stats
	s.Artists = len(pl)
	for _, artist := range pl {
		for _, group := range [][]Album{artist.Albums, artist.EPs, artist.Demos} {
			s.Releases += len(group)
			for _, album := range group {
				s.Tracks += len(album.Tracks)
			}
		}
	}
	return s
}
