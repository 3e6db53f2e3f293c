/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package session runs one playback session at a time: it owns the
// currently playing track, the surface showing it, and the end-of-track
// countdown. Handing a new track to Start tears the previous session
// down first, so at most one track is ever audible.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_jukebox/internal/events"
	"github.com/friendsincode/skald_jukebox/internal/models"
	"github.com/friendsincode/skald_jukebox/internal/scheduler/state"
	"github.com/friendsincode/skald_jukebox/internal/surface"
	"github.com/friendsincode/skald_jukebox/internal/telemetry"
	"github.com/friendsincode/skald_jukebox/internal/timer"
)

// Phase of the playback session.
type Phase int

const (
	Idle Phase = iota
	Playing
	Paused
)

func (p Phase) String() string {
	switch p {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// CountSaver persists a play-count snapshot. Satisfied by ledger.FileStore.
type CountSaver interface {
	Save(counts map[string]int) error
}

// Recorder appends a spin to the play log. Satisfied by history.Store.
type Recorder interface {
	Record(track models.Track) error
}

// Controller drives playback sessions. All methods are safe for
// concurrent use; surface and persistence I/O happens outside the
// controller lock as well as outside the store lock.
type Controller struct {
	store   *state.Store
	driver  surface.Driver
	bus     *events.Bus
	counts  CountSaver
	history Recorder
	log     zerolog.Logger

	mu       sync.Mutex
	phase    Phase
	current  models.Track
	autoplay *timer.Autoplay

	// onEnded runs when the countdown fires and the session has been torn
	// down. The facade wires this to advance the queue.
	onEnded func()
}

// NewController creates an idle controller. counts and history may be nil
// when persistence is disabled.
func NewController(store *state.Store, driver surface.Driver, bus *events.Bus, counts CountSaver, history Recorder, log zerolog.Logger) *Controller {
	c := &Controller{
		store:   store,
		driver:  driver,
		bus:     bus,
		counts:  counts,
		history: history,
		log:     log.With().Str("component", "session").Logger(),
	}
	c.autoplay = timer.New(c.handleFired)
	return c
}

// OnEnded registers the callback invoked after a track finishes on its
// own. Must be set before the first Start.
func (c *Controller) OnEnded(fn func()) {
	c.mu.Lock()
	c.onEnded = fn
	c.mu.Unlock()
}

// Start plays the track, replacing whatever was playing. The previous
// surface is reused when the platform matches, which keeps the browser
// tab (and its fullscreen state) alive across consecutive tracks.
func (c *Controller) Start(track models.Track) {
	c.mu.Lock()
	prev := c.current
	prevPhase := c.phase
	c.autoplay.Cancel()
	c.current = track
	c.phase = Playing
	c.mu.Unlock()

	reused := false
	if prevPhase != Idle && prev.Platform == track.Platform {
		reused = c.driver.Reuse(prev.Title, track)
	}
	if !reused {
		if prevPhase != Idle {
			if err := c.driver.Stop(prev.Title); err != nil {
				c.log.Warn().Err(err).Str("title", prev.Title).Msg("stopping previous surface failed")
			}
		}
		if err := c.driver.Start(track); err != nil {
			c.log.Error().Err(err).Str("title", track.Title).Msg("starting surface failed")
		}
	}

	count, snapshot := c.store.RecordPlay(track)
	if c.counts != nil {
		if err := c.counts.Save(snapshot); err != nil {
			c.log.Error().Err(err).Msg("persisting play counts failed")
		}
	}
	if c.history != nil {
		if err := c.history.Record(track); err != nil {
			c.log.Error().Err(err).Msg("recording play history failed")
		}
	}

	telemetry.PlaysTotal.WithLabelValues(string(track.Platform)).Inc()
	c.log.Info().
		Str("title", track.Title).
		Str("platform", string(track.Platform)).
		Int("play_count", count).
		Bool("reused_surface", reused).
		Msg("now playing")

	if track.HasDuration() {
		c.autoplay.Arm(timer.ArmDuration(track.Platform, track.Duration))
	}

	c.bus.Publish(events.EventNowPlaying, events.Payload{
		"title":    track.Title,
		"artist":   track.Artist,
		"platform": string(track.Platform),
		"url":      track.URL,
		"added_by": track.AddedByName,
	})
}

// Stop tears down the current session. Stopping an idle controller is a
// no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.phase == Idle {
		c.mu.Unlock()
		return
	}
	prev := c.current
	c.autoplay.Cancel()
	c.current = models.Track{}
	c.phase = Idle
	c.mu.Unlock()

	if err := c.driver.Stop(prev.Title); err != nil {
		c.log.Warn().Err(err).Str("title", prev.Title).Msg("stopping surface failed")
	}
	c.log.Info().Str("title", prev.Title).Msg("playback stopped")
}

// PauseResume toggles between Playing and Paused. The surface gesture and
// the countdown move together: pausing holds the remaining time, resuming
// restarts it exactly where it left off. Returns false when no session is
// active.
func (c *Controller) PauseResume() bool {
	c.mu.Lock()
	switch c.phase {
	case Playing:
		c.autoplay.Pause()
		c.phase = Paused
	case Paused:
		c.autoplay.Resume()
		c.phase = Playing
	default:
		c.mu.Unlock()
		return false
	}
	track := c.current
	paused := c.phase == Paused
	c.mu.Unlock()

	if err := c.driver.PauseOrResume(track.Title); err != nil {
		c.log.Warn().Err(err).Str("title", track.Title).Msg("toggling surface failed")
	}
	c.log.Info().Str("title", track.Title).Bool("paused", paused).Msg("playback toggled")
	c.bus.Publish(events.EventPlaybackPaused, events.Payload{
		"title":  track.Title,
		"paused": paused,
	})
	return true
}

// Refresh reloads the current surface and restarts the countdown from the
// track's full duration, for when a player wedges mid-track.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.phase == Idle {
		c.mu.Unlock()
		return
	}
	track := c.current
	c.phase = Playing
	c.mu.Unlock()

	if err := c.driver.Refresh(track.Title); err != nil {
		c.log.Warn().Err(err).Str("title", track.Title).Msg("refreshing surface failed")
	}
	if track.HasDuration() {
		c.autoplay.Arm(timer.ArmDuration(track.Platform, track.Duration))
	}
	c.log.Info().Str("title", track.Title).Msg("surface refreshed")
}

// NowPlaying returns the current track and phase.
func (c *Controller) NowPlaying() (models.Track, Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.phase
}

// handleFired runs on the countdown goroutine when a track plays out.
func (c *Controller) handleFired() {
	c.mu.Lock()
	ended := c.current
	onEnded := c.onEnded
	c.current = models.Track{}
	c.phase = Idle
	c.mu.Unlock()

	telemetry.AutoplayFiresTotal.Inc()
	c.log.Debug().Str("title", ended.Title).Msg("track played out")

	if err := c.driver.Stop(ended.Title); err != nil {
		c.log.Warn().Err(err).Str("title", ended.Title).Msg("stopping finished surface failed")
	}

	c.bus.Publish(events.EventTrackEnded, events.Payload{
		"title":    ended.Title,
		"platform": string(ended.Platform),
	})

	if onEnded != nil {
		onEnded()
	}
}
