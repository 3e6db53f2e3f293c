/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package display serves the jukebox's HTTP face: a JSON API over the
// queue and playback controls, a websocket that pushes queue changes,
// and the metrics endpoint.
package display

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/friendsincode/skald_jukebox/internal/calibration"
	"github.com/friendsincode/skald_jukebox/internal/events"
	"github.com/friendsincode/skald_jukebox/internal/history"
	"github.com/friendsincode/skald_jukebox/internal/models"
	"github.com/friendsincode/skald_jukebox/internal/scheduler"
	"github.com/friendsincode/skald_jukebox/internal/telemetry"
)

// History serves the play log. Satisfied by history.Store; nil disables
// the history endpoint and the last-played field.
type History interface {
	Recent(limit int) ([]history.PlayRecord, error)
	MostRecent() (history.PlayRecord, bool, error)
}

// Service exposes the scheduler over HTTP.
type Service struct {
	sched     *scheduler.Service
	bus       *events.Bus
	hist      History
	calib     *calibration.Store
	log       zerolog.Logger
	showAdder bool
}

// NewService creates the HTTP service. showAdder controls whether the
// queue view names who added each track. hist and calib may be nil to
// disable their endpoints.
func NewService(sched *scheduler.Service, bus *events.Bus, hist History, calib *calibration.Store, showAdder bool, log zerolog.Logger) *Service {
	return &Service{
		sched:     sched,
		bus:       bus,
		hist:      hist,
		calib:     calib,
		log:       log.With().Str("component", "display").Logger(),
		showAdder: showAdder,
	}
}

// Router builds the chi router for the service.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/queue", s.handleQueue)
		r.Get("/now", s.handleNow)
		r.Get("/history", s.handleHistory)
		r.Post("/next", s.handleNext)
		r.Post("/skip", s.handleSkip)
		r.Post("/shuffle", s.handleShuffle)
		r.Post("/pause", s.handlePause)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/queue/reorder", s.handleReorder)
		r.Post("/queue/front", s.handleFront)
		r.Get("/calibration", s.handleCalibrationList)
		r.Post("/calibration", s.handleCalibrationSet)
	})

	r.Get("/ws/queue", s.handleQueueSocket)
	return r
}

// queueItem is the JSON shape of one queued or playing track.
type queueItem struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist,omitempty"`
	Platform string  `json:"platform"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"`
	AddedBy  string  `json:"added_by,omitempty"`
}

func (s *Service) item(t models.Track) queueItem {
	item := queueItem{
		Title:    t.Title,
		Artist:   t.Artist,
		Platform: string(t.Platform),
		URL:      t.URL,
		Duration: t.Duration,
	}
	if s.showAdder {
		item.AddedBy = t.Adder()
	}
	return item
}

// snapshot is the full display state, also the websocket push payload.
type snapshot struct {
	Now    *queueItem  `json:"now,omitempty"`
	Phase  string      `json:"phase"`
	Queue  []queueItem `json:"queue"`
	Length int         `json:"length"`
}

func (s *Service) snapshot() snapshot {
	tracks := s.sched.QueueSnapshot()
	items := make([]queueItem, 0, len(tracks))
	for _, t := range tracks {
		items = append(items, s.item(t))
	}

	snap := snapshot{Queue: items, Length: len(items)}
	now, phase := s.sched.NowPlaying()
	snap.Phase = phase.String()
	if now.URL != "" {
		item := s.item(now)
		snap.Now = &item
	}
	return snap
}

func (s *Service) handleQueue(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Service) handleNow(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	body := map[string]any{"now": snap.Now, "phase": snap.Phase}
	if s.hist != nil {
		if rec, ok, err := s.hist.MostRecent(); err != nil {
			s.log.Error().Err(err).Msg("loading last play failed")
		} else if ok {
			body["last_played"] = rec
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history disabled"})
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	recs, err := s.hist.Recent(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("loading history failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plays": recs})
}

func (s *Service) handleNext(w http.ResponseWriter, _ *http.Request) {
	if err := s.sched.Advance(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Service) handleSkip(w http.ResponseWriter, _ *http.Request) {
	if err := s.sched.Skip(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Service) handleShuffle(w http.ResponseWriter, _ *http.Request) {
	s.sched.Shuffle()
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Service) handlePause(w http.ResponseWriter, _ *http.Request) {
	if !s.sched.PauseResume() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "nothing is playing"})
		return
	}
	snap := s.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"phase": snap.Phase})
}

func (s *Service) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.sched.Refresh()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleReorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if !s.sched.Reorder(body.From, body.To) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "position out of range"})
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Service) handleFront(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if !s.sched.MoveToFront(body.Index) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "position out of range"})
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Service) handleCalibrationList(w http.ResponseWriter, _ *http.Request) {
	if s.calib == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "calibration disabled"})
		return
	}
	points := map[string]calibration.Point{}
	for _, name := range s.calib.Names() {
		if p, ok := s.calib.Get(name); ok {
			points[name] = p
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (s *Service) handleCalibrationSet(w http.ResponseWriter, r *http.Request) {
	if s.calib == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "calibration disabled"})
		return
	}
	var body struct {
		Name string  `json:"name"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := s.calib.Set(body.Name, calibration.Point{X: body.X, Y: body.Y}); err != nil {
		s.log.Error().Err(err).Msg("saving calibration failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQueueSocket streams display snapshots. The client gets one
// snapshot on connect and another whenever the queue or the playing
// track changes.
func (s *Service) handleQueueSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	queueSub := s.bus.Subscribe(events.EventQueueUpdated)
	nowSub := s.bus.Subscribe(events.EventNowPlaying)
	pauseSub := s.bus.Subscribe(events.EventPlaybackPaused)
	defer func() {
		s.bus.Unsubscribe(events.EventQueueUpdated, queueSub)
		s.bus.Unsubscribe(events.EventNowPlaying, nowSub)
		s.bus.Unsubscribe(events.EventPlaybackPaused, pauseSub)
	}()

	ctx := r.Context()
	if err := s.push(ctx, conn); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-queueSub:
		case <-nowSub:
		case <-pauseSub:
		}
		if err := s.push(ctx, conn); err != nil {
			return
		}
	}
}

func (s *Service) push(ctx context.Context, conn *websocket.Conn) error {
	data, err := json.Marshal(s.snapshot())
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
