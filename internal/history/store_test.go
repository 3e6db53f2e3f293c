package history

import (
	"testing"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

func TestRecordAndMostRecent(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.MostRecent(); err != nil || ok {
		t.Fatalf("expected empty history, ok=%v err=%v", ok, err)
	}

	first := models.Track{Title: "first", Platform: models.PlatformYouTube, URL: "u1", Duration: 180}
	second := models.Track{Title: "second", Platform: models.PlatformSpotify, URL: "u2"}

	if err := s.Record(first); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(second); err != nil {
		t.Fatalf("record: %v", err)
	}

	rec, ok, err := s.MostRecent()
	if err != nil || !ok {
		t.Fatalf("most recent: ok=%v err=%v", ok, err)
	}
	if rec.Title != "second" || rec.Platform != string(models.PlatformSpotify) {
		t.Fatalf("unexpected most recent: %+v", rec)
	}

	recs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 || recs[0].Title != "second" || recs[1].Title != "first" {
		t.Fatalf("unexpected order: %+v", recs)
	}
}
