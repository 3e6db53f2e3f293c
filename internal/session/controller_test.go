package session

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_jukebox/internal/events"
	"github.com/friendsincode/skald_jukebox/internal/ledger"
	"github.com/friendsincode/skald_jukebox/internal/models"
	"github.com/friendsincode/skald_jukebox/internal/scheduler/state"
)

type fakeDriver struct {
	mu        sync.Mutex
	started   []string
	stopped   []string
	reused    []string
	toggled   int
	refreshed int
	allowRe   bool
}

func (f *fakeDriver) Start(t models.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, t.Title)
	return nil
}

func (f *fakeDriver) Reuse(prev string, t models.Track) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.allowRe {
		return false
	}
	f.reused = append(f.reused, t.Title)
	return true
}

func (f *fakeDriver) Stop(title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, title)
	return nil
}

func (f *fakeDriver) PauseOrResume(string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggled++
	return nil
}

func (f *fakeDriver) Refresh(string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed++
	return nil
}

func newController(d *fakeDriver) (*Controller, *state.Store, *events.Bus) {
	store := state.NewStore(ledger.New())
	bus := events.NewBus()
	c := NewController(store, d, bus, nil, nil, zerolog.Nop())
	return c, store, bus
}

func TestStartTearsDownPrevious(t *testing.T) {
	d := &fakeDriver{}
	c, store, _ := newController(d)

	a := models.Track{Title: "alpha", Platform: models.PlatformYouTube, URL: "u-a"}
	b := models.Track{Title: "beta", Platform: models.PlatformSpotify, URL: "u-b"}

	c.Start(a)
	c.Start(b)

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.started) != 2 {
		t.Fatalf("expected 2 starts, got %v", d.started)
	}
	// Cross-platform switch cannot reuse the surface.
	if len(d.stopped) != 1 || d.stopped[0] != "alpha" {
		t.Fatalf("expected alpha stopped, got %v", d.stopped)
	}
	if store.PlayCount(a) != 1 || store.PlayCount(b) != 1 {
		t.Fatalf("plays not recorded")
	}
}

func TestStartReusesSamePlatformSurface(t *testing.T) {
	d := &fakeDriver{allowRe: true}
	c, _, _ := newController(d)

	a := models.Track{Title: "alpha", Platform: models.PlatformYouTube, URL: "u-a"}
	b := models.Track{Title: "beta", Platform: models.PlatformYouTube, URL: "u-b"}

	c.Start(a)
	c.Start(b)

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.started) != 1 || d.started[0] != "alpha" {
		t.Fatalf("expected only alpha started fresh, got %v", d.started)
	}
	if len(d.reused) != 1 || d.reused[0] != "beta" {
		t.Fatalf("expected beta to reuse surface, got %v", d.reused)
	}
	if len(d.stopped) != 0 {
		t.Fatalf("reuse should not stop the surface, got %v", d.stopped)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	d := &fakeDriver{}
	c, _, _ := newController(d)

	c.Start(models.Track{Title: "alpha", Platform: models.PlatformYouTube, URL: "u-a"})
	c.Stop()
	c.Stop()

	if _, phase := c.NowPlaying(); phase != Idle {
		t.Fatalf("expected idle after stop, got %v", phase)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stopped) != 1 {
		t.Fatalf("second stop should be a no-op, got %v", d.stopped)
	}
}

func TestPauseResumeTogglesPhase(t *testing.T) {
	d := &fakeDriver{}
	c, _, _ := newController(d)

	// Idle toggle is a reported no-op.
	if c.PauseResume() {
		t.Fatalf("idle toggle should report failure")
	}
	d.mu.Lock()
	if d.toggled != 0 {
		d.mu.Unlock()
		t.Fatalf("idle toggle reached the surface")
	}
	d.mu.Unlock()

	c.Start(models.Track{Title: "alpha", Platform: models.PlatformYouTube, URL: "u-a"})

	if !c.PauseResume() {
		t.Fatalf("pause on a live session failed")
	}
	if _, phase := c.NowPlaying(); phase != Paused {
		t.Fatalf("expected paused, got %v", phase)
	}
	if !c.PauseResume() {
		t.Fatalf("resume on a paused session failed")
	}
	if _, phase := c.NowPlaying(); phase != Playing {
		t.Fatalf("expected playing, got %v", phase)
	}
}

func TestAutoplayAdvancesThroughOnEnded(t *testing.T) {
	d := &fakeDriver{}
	c, _, _ := newController(d)

	ended := make(chan struct{}, 1)
	c.OnEnded(func() { ended <- struct{}{} })

	// 50ms track; youtube durations arm unmodified.
	c.Start(models.Track{Title: "alpha", Platform: models.PlatformYouTube, URL: "u-a", Duration: 0.05})

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown never fired")
	}

	if _, phase := c.NowPlaying(); phase != Idle {
		t.Fatalf("expected idle after play-out, got %v", phase)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stopped) != 1 || d.stopped[0] != "alpha" {
		t.Fatalf("finished surface not stopped: %v", d.stopped)
	}
}

func TestPauseHoldsCountdown(t *testing.T) {
	d := &fakeDriver{}
	c, _, _ := newController(d)

	ended := make(chan struct{}, 1)
	c.OnEnded(func() { ended <- struct{}{} })

	c.Start(models.Track{Title: "alpha", Platform: models.PlatformYouTube, URL: "u-a", Duration: 0.15})
	c.PauseResume()

	select {
	case <-ended:
		t.Fatalf("countdown fired while paused")
	case <-time.After(300 * time.Millisecond):
	}

	c.PauseResume()
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown never fired after resume")
	}
}

func TestRefreshRearmsCountdown(t *testing.T) {
	d := &fakeDriver{}
	c, _, _ := newController(d)

	ended := make(chan struct{}, 2)
	c.OnEnded(func() { ended <- struct{}{} })

	c.Start(models.Track{Title: "alpha", Platform: models.PlatformYouTube, URL: "u-a", Duration: 0.1})
	c.Refresh()

	d.mu.Lock()
	if d.refreshed != 1 {
		d.mu.Unlock()
		t.Fatalf("surface not refreshed")
	}
	d.mu.Unlock()

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown never fired after refresh")
	}
}
