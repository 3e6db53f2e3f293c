package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

func TestArmAndFireOnce(t *testing.T) {
	var fires int32
	a := New(func() { atomic.AddInt32(&fires, 1) })

	a.Arm(30 * time.Millisecond)
	if a.State() != Armed {
		t.Fatalf("expected armed, got %v", a.State())
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fires); got != 1 {
		t.Fatalf("expected exactly one fire, got %d", got)
	}
	if a.State() != Unarmed {
		t.Fatalf("expected unarmed after fire, got %v", a.State())
	}
}

func TestArmNonPositiveStaysUnarmed(t *testing.T) {
	a := New(func() { t.Error("unexpected fire") })
	a.Arm(0)
	if a.State() != Unarmed {
		t.Fatalf("expected unarmed, got %v", a.State())
	}
}

func TestCancelSuppressesFire(t *testing.T) {
	var fires int32
	a := New(func() { atomic.AddInt32(&fires, 1) })

	a.Arm(30 * time.Millisecond)
	a.Cancel()

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fires); got != 0 {
		t.Fatalf("cancelled timer fired %d times", got)
	}
}

func TestRearmInvalidatesOldGeneration(t *testing.T) {
	var fires int32
	a := New(func() { atomic.AddInt32(&fires, 1) })

	a.Arm(20 * time.Millisecond)
	a.Arm(60 * time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	if got := atomic.LoadInt32(&fires); got != 0 {
		t.Fatalf("stale generation fired early")
	}

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&fires); got != 1 {
		t.Fatalf("expected one fire from the re-arm, got %d", got)
	}
}

func TestPauseResumeExactness(t *testing.T) {
	fired := make(chan time.Time, 1)
	a := New(func() { fired <- time.Now() })

	const total = 300 * time.Millisecond
	a.Arm(total)

	time.Sleep(100 * time.Millisecond)
	if !a.Pause() {
		t.Fatalf("pause failed while armed")
	}
	pausedAt := time.Now()
	remaining := a.Remaining()
	if remaining <= 0 || remaining > total {
		t.Fatalf("implausible remaining %s", remaining)
	}

	// The paused countdown holds still.
	time.Sleep(150 * time.Millisecond)
	if a.State() != Paused {
		t.Fatalf("expected paused, got %v", a.State())
	}

	resumedAt := time.Now()
	if !a.Resume() {
		t.Fatalf("resume failed while paused")
	}

	select {
	case at := <-fired:
		elapsed := at.Sub(resumedAt)
		want := remaining
		if diff := elapsed - want; diff < -50*time.Millisecond || diff > 50*time.Millisecond {
			t.Fatalf("fired %s after resume, wanted ~%s (paused at %s)", elapsed, want, pausedAt)
		}
	case <-time.After(total + 200*time.Millisecond):
		t.Fatalf("timer never fired after resume")
	}
}

func TestPauseOnlyFromArmed(t *testing.T) {
	a := New(nil)
	if a.Pause() {
		t.Fatalf("pause from unarmed should fail")
	}
	if a.Resume() {
		t.Fatalf("resume from unarmed should fail")
	}
}

func TestPauseClampsTinyRemainder(t *testing.T) {
	a := New(nil)
	a.Arm(5 * time.Millisecond)
	time.Sleep(2 * time.Millisecond)
	if a.Pause() {
		if got := a.Remaining(); got < minPauseRemaining {
			t.Fatalf("remaining %s below clamp", got)
		}
	}
	// Pause may legitimately lose the race against the fire; either outcome
	// leaves the timer in a defined state.
	st := a.State()
	if st != Paused && st != Unarmed {
		t.Fatalf("unexpected state %v", st)
	}
}

func TestArmDurationSpotifyOffset(t *testing.T) {
	// Long track: plain subtraction.
	if got := ArmDuration(models.PlatformSpotify, 200); got != 196*time.Second {
		t.Fatalf("expected 196s, got %s", got)
	}
	// YouTube never shortened.
	if got := ArmDuration(models.PlatformYouTube, 200); got != 200*time.Second {
		t.Fatalf("expected 200s, got %s", got)
	}
	// Short track: subtraction would go under a second, fall back to 90%.
	got := ArmDuration(models.PlatformSpotify, 4.5)
	if want := time.Duration(4.5 * 0.9 * float64(time.Second)); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	// Tiny track: absolute floor.
	if got := ArmDuration(models.PlatformSpotify, 0.4); got != 500*time.Millisecond {
		t.Fatalf("expected floor 0.5s, got %s", got)
	}
	// Unknown duration: no timer.
	if got := ArmDuration(models.PlatformSpotify, 0); got != 0 {
		t.Fatalf("expected 0 for unknown duration, got %s", got)
	}
}
