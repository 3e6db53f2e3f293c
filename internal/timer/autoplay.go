/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package timer

import (
	"sync"
	"time"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

// State of the autoplay countdown.
type State int

const (
	Unarmed State = iota
	Armed
	Paused
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Paused:
		return "paused"
	default:
		return "unarmed"
	}
}

const minPauseRemaining = 100 * time.Millisecond

// Autoplay is the single end-of-track countdown for a playback session.
// Each arm allocates a fresh generation; cancellation bumps the generation
// so a timer that already fired against an older generation discards itself
// instead of advancing a session that has moved on.
type Autoplay struct {
	mu        sync.Mutex
	gen       uint64
	timer     *time.Timer
	state     State
	duration  time.Duration
	armedAt   time.Time
	remaining time.Duration
	onFire    func()
}

// New creates an unarmed autoplay timer. onFire runs on the timer goroutine
// when the countdown elapses, at most once per arm.
func New(onFire func()) *Autoplay {
	return &Autoplay{onFire: onFire}
}

// Arm cancels any live countdown and starts a new one for d. A non-positive
// duration leaves the timer unarmed.
func (a *Autoplay) Arm(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	if d <= 0 {
		return
	}

	a.state = Armed
	a.duration = d
	a.armedAt = time.Now()
	a.remaining = 0

	gen := a.gen
	a.timer = time.AfterFunc(d, func() { a.fire(gen) })
}

// Pause stops the countdown and records the exact remaining time, clamped
// to a small minimum. Only valid while armed.
func (a *Autoplay) Pause() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Armed {
		return false
	}

	remaining := a.duration - time.Since(a.armedAt)
	if remaining < minPauseRemaining {
		remaining = minPauseRemaining
	}

	a.stopTimerLocked()
	a.gen++
	a.state = Paused
	a.remaining = remaining
	return true
}

// Resume re-arms with the remaining time captured by Pause. Only valid
// while paused.
func (a *Autoplay) Resume() bool {
	a.mu.Lock()
	if a.state != Paused {
		a.mu.Unlock()
		return false
	}
	remaining := a.remaining
	a.mu.Unlock()

	a.Arm(remaining)
	return true
}

// Cancel disarms from any state.
func (a *Autoplay) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
}

// State returns the current countdown state.
func (a *Autoplay) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Remaining reports the time left before the countdown fires.
func (a *Autoplay) Remaining() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case Armed:
		left := a.duration - time.Since(a.armedAt)
		if left < 0 {
			left = 0
		}
		return left
	case Paused:
		return a.remaining
	default:
		return 0
	}
}

func (a *Autoplay) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.state != Armed {
		// Stale fire: the session cancelled or re-armed after this timer
		// was scheduled.
		a.mu.Unlock()
		return
	}
	a.state = Unarmed
	a.timer = nil
	onFire := a.onFire
	a.mu.Unlock()

	if onFire != nil {
		onFire()
	}
}

func (a *Autoplay) cancelLocked() {
	a.stopTimerLocked()
	a.gen++
	a.state = Unarmed
	a.remaining = 0
}

func (a *Autoplay) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// ArmDuration converts a track duration into the countdown to arm. Spotify
// signals end-of-media late, so its countdown is shortened to hand off just
// before the player actually finishes; the shortened value never drops
// below 90% of the original, with an absolute floor of half a second.
func ArmDuration(platform models.Platform, seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}

	adjusted := seconds
	if platform == models.PlatformSpotify {
		if seconds > spotifyEndOffset {
			adjusted = seconds - spotifyEndOffset
		}
		if adjusted < 1 {
			adjusted = seconds * 0.9
			if adjusted < 0.5 {
				adjusted = 0.5
			}
		}
	}

	return time.Duration(adjusted * float64(time.Second))
}

// Spotify's desktop client reports track end a few seconds after playback
// audibly stops; firing early keeps the handoff seamless.
const spotifyEndOffset = 4.0
