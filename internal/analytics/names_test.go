package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAlbumName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Album. Foo", "Foo"},
		{"EP. Night Drive", "Night Drive"},
		{"Demo.Early Takes", "Early Takes"},
		{"album. lowercase prefix", "lowercase prefix"},
		{"Plain Title", "Plain Title"},
		{"Albumish Name", "Albumish Name"},
		{"  Spaced  ", "Spaced"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeAlbumName(c.in), "input %q", c.in)
	}
}

func TestNormalizeTrackName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"01 Bar.mp3", "Bar"},
		{"1. Intro.flac", "Intro"},
		{"12-Outro.ogg", "Outro"},
		{"03_Some Song.mp3", "Some Song"},
		{"No Number.mp3", "No Number"},
		{"7 Seven.mp3", "Seven"},
		{"Track Without Extension", "Track Without Extension"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeTrackName(c.in), "input %q", c.in)
	}
}

func TestParseTrackPath(t *testing.T) {
	tp, ok := ParseTrackPath("music/ArtistX/Album. Foo/01 Bar.mp3")
	assert.True(t, ok)
	assert.Equal(t, TrackPath{Artist: "ArtistX", AlbumFolder: "Album. Foo", File: "01 Bar.mp3"}, tp)

	tp, ok = ParseTrackPath("/music/ArtistX/Foo/Bar.mp3/")
	assert.True(t, ok, "leading and trailing slashes tolerated")
	assert.Equal(t, "ArtistX", tp.Artist)

	tp, ok = ParseTrackPath("https://cdn.example.com/music/ArtistX/Foo/Bar.mp3")
	assert.True(t, ok, "full URLs decompose by path")
	assert.Equal(t, "Foo", tp.AlbumFolder)

	for _, bad := range []string{
		"",
		"music/OnlyArtist",
		"music/Artist/Album",
		"music/Artist/Album/Track/Extra",
		"sounds/Artist/Album/Track.mp3",
		"music//Album/Track.mp3",
	} {
		_, ok := ParseTrackPath(bad)
		assert.False(t, ok, "input %q should be rejected", bad)
	}
}
