package models

import "testing"

func TestTrackKey_Priority(t *testing.T) {
	tr := Track{
		Title:    "Song",
		Artist:   "Artist",
		Platform: PlatformSpotify,
		URL:      "https://open.spotify.com/track/abc",
		URI:      "spotify:track:abc",
	}
	if got := tr.Key(); got != "spotify:track:abc" {
		t.Fatalf("expected URI key, got %q", got)
	}

	tr.URI = ""
	if got := tr.Key(); got != "https://open.spotify.com/track/abc" {
		t.Fatalf("expected URL key, got %q", got)
	}

	tr.URL = ""
	if got := tr.Key(); got != "spotify:Song - Artist" {
		t.Fatalf("expected composite key, got %q", got)
	}
}

func TestTrackKey_StableAcrossFormatting(t *testing.T) {
	a := Track{Title: "Song (Official Video)", Artist: "Artist", Platform: PlatformSpotify, URI: "spotify:track:abc"}
	b := Track{Title: "song", Artist: "ARTIST ft. Other", Platform: PlatformSpotify, URI: "spotify:track:abc"}
	if a.Key() != b.Key() {
		t.Fatalf("keys differ for same native URI: %q vs %q", a.Key(), b.Key())
	}
}

func TestCatalogSlice(t *testing.T) {
	yt := []Track{{Title: "y", Platform: PlatformYouTube, URL: "y1"}}
	sp := []Track{{Title: "s", Platform: PlatformSpotify, URL: "s1"}}
	cat := NewCatalog(yt, sp)

	if len(cat.All) != 2 {
		t.Fatalf("expected union of 2, got %d", len(cat.All))
	}
	if got := cat.Slice(PlatformYouTube); len(got) != 1 || got[0].URL != "y1" {
		t.Fatalf("unexpected youtube slice: %+v", got)
	}
	if got := cat.Slice(""); len(got) != 2 {
		t.Fatalf("expected union for empty platform, got %d", len(got))
	}
}
