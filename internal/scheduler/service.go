/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduler is the facade over the queue store and the playback
// session. Every surface that wants to change what plays, the REPL, the
// HTTP API, the autoplay countdown, goes through a Service.
package scheduler

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_jukebox/internal/events"
	"github.com/friendsincode/skald_jukebox/internal/models"
	"github.com/friendsincode/skald_jukebox/internal/scheduler/state"
	"github.com/friendsincode/skald_jukebox/internal/session"
	"github.com/friendsincode/skald_jukebox/internal/telemetry"
)

// ErrEmptyCatalog is returned when an advance finds nothing to play.
var ErrEmptyCatalog = errors.New("nothing to play")

// Service coordinates queue operations with the playback session.
type Service struct {
	store *state.Store
	ctrl  *session.Controller
	bus   *events.Bus
	log   zerolog.Logger
}

// NewService wires the facade and registers it as the session's
// end-of-track handler, closing the autoplay loop.
func NewService(store *state.Store, ctrl *session.Controller, bus *events.Bus, log zerolog.Logger) *Service {
	s := &Service{
		store: store,
		ctrl:  ctrl,
		bus:   bus,
		log:   log.With().Str("component", "scheduler").Logger(),
	}
	ctrl.OnEnded(func() {
		if err := s.Advance(); err != nil {
			s.log.Warn().Err(err).Msg("autoplay advance found nothing to play")
		}
	})
	return s
}

// Advance pops the next queued track and plays it, refilling the queue
// from the whole catalog when it has run dry.
func (s *Service) Advance() error {
	track, ok := s.store.PopNext()
	if !ok {
		return ErrEmptyCatalog
	}
	s.ctrl.Start(track)
	s.publishQueue()
	return nil
}

// AdvanceFrom behaves like Advance but, when the queue is empty, refills
// only from the named platform's catalog slice.
func (s *Service) AdvanceFrom(platform models.Platform) error {
	if s.store.QueueLen() == 0 {
		if s.store.Refill(platform) == 0 {
			return ErrEmptyCatalog
		}
	}
	return s.Advance()
}

// Skip stops the current track and immediately advances.
func (s *Service) Skip() error {
	s.ctrl.Stop()
	return s.Advance()
}

// Stop ends playback without advancing.
func (s *Service) Stop() {
	s.ctrl.Stop()
}

// PauseResume toggles the current session. Returns false when nothing is
// playing.
func (s *Service) PauseResume() bool {
	return s.ctrl.PauseResume()
}

// Refresh reloads the current surface and restarts its countdown.
func (s *Service) Refresh() {
	s.ctrl.Refresh()
}

// PeekNext returns the upcoming track without consuming it.
func (s *Service) PeekNext() (models.Track, bool) {
	return s.store.Peek()
}

// NowPlaying returns the current track and session phase.
func (s *Service) NowPlaying() (models.Track, session.Phase) {
	return s.ctrl.NowPlaying()
}

// QueueSnapshot returns a copy of the queue for rendering.
func (s *Service) QueueSnapshot() []models.Track {
	return s.store.QueueSnapshot()
}

// Reorder moves a queued track from one position to another.
func (s *Service) Reorder(from, to int) bool {
	ok := s.store.Reorder(from, to)
	if ok {
		s.publishQueue()
	}
	return ok
}

// MoveToFront promotes the queued track at index to play next.
func (s *Service) MoveToFront(index int) bool {
	return s.Reorder(index, 0)
}

// Shuffle permutes the queue.
func (s *Service) Shuffle() {
	s.store.Shuffle()
	s.publishQueue()
}

func (s *Service) publishQueue() {
	n := s.store.QueueLen()
	telemetry.QueueLength.Set(float64(n))
	s.bus.Publish(events.EventQueueUpdated, events.Payload{"length": n})
}
