package analytics

import (
	"net/url"
	"regexp"
	"strings"
)

// Display-name cleanup grammar. Album folders carry a release-type prefix
// ("Album. X", "EP. X", "Demo. X") and track files a 1-2 digit number
// prefix; neither belongs in the report.
var (
	albumPrefixRe = regexp.MustCompile(`(?i)^(album|ep|demo)\.\s*`)
	trackNumRe    = regexp.MustCompile(`^\d{1,2}[\s.\-_]*`)
	extensionRe   = regexp.MustCompile(`\.[^.]+$`)
)

// NormalizeAlbumName strips the release-type prefix from an album folder
// name: "Album. Foo" -> "Foo".
func NormalizeAlbumName(folder string) string {
	return strings.TrimSpace(albumPrefixRe.ReplaceAllString(folder, ""))
}

// NormalizeTrackName strips the file extension and then the leading track
// number from a track file name: "01 Bar.mp3" -> "Bar".
func NormalizeTrackName(file string) string {
	name := extensionRe.ReplaceAllString(file, "")
	return strings.TrimSpace(trackNumRe.ReplaceAllString(name, ""))
}

// TrackPath is the decomposition of a track's asset path. Tracks have no
// synthetic IDs; the path doubles as the primary key everywhere.
type TrackPath struct {
	Artist      string
	AlbumFolder string
	File        string
}

// ParseTrackPath decomposes a listen-counter key into its artist, album
// folder and file segments. Keys may be bare paths or full URLs; either way
// the path must decompose into exactly music/<artist>/<album>/<file>.
// ok is false for anything else.
func ParseTrackPath(key string) (TrackPath, bool) {
	path := key
	if strings.HasPrefix(path, "http") {
		u, err := url.Parse(key)
		if err != nil {
			return TrackPath{}, false
		}
		path = u.Path
	}
	path = strings.Trim(path, "/")

	parts := strings.Split(path, "/")
	if len(parts) != 4 || parts[0] != "music" {
		return TrackPath{}, false
	}
	if parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return TrackPath{}, false
	}
	return TrackPath{Artist: parts[1], AlbumFolder: parts[2], File: parts[3]}, true
}
