package calibration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "vr_calibration.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := s.Get("play"); ok {
		t.Fatalf("empty store returned a point")
	}
}

func TestSetPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vr_calibration.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set("play", Point{X: 120, Y: 640}); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	p, ok := reopened.Get("play")
	if !ok || p.X != 120 || p.Y != 640 {
		t.Fatalf("point lost: %+v ok=%v", p, ok)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestOpenCorruptIsNonFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vr_calibration.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err == nil {
		t.Fatalf("expected parse error to be reported")
	}
	if s == nil || len(s.Names()) != 0 {
		t.Fatalf("expected usable empty store")
	}
}
