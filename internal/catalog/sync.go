/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_jukebox/internal/events"
	"github.com/friendsincode/skald_jukebox/internal/models"
	"github.com/friendsincode/skald_jukebox/internal/scheduler/state"
	"github.com/friendsincode/skald_jukebox/internal/telemetry"
)

// Synchronizer refreshes the published catalog from the providers on an
// interval. Fetches happen outside the store lock; only the final swap
// and queue reconciliation run under it.
type Synchronizer struct {
	store     *state.Store
	providers []Provider
	bus       *events.Bus
	interval  time.Duration
	log       zerolog.Logger

	// lastKnown keeps each provider's previous successful fetch so a
	// silent cycle can ride out a transient API failure without emptying
	// the catalog slice.
	lastKnown map[string][]models.Track
}

// NewSynchronizer creates a synchronizer over the given providers.
func NewSynchronizer(store *state.Store, providers []Provider, bus *events.Bus, interval time.Duration, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		store:     store,
		providers: providers,
		bus:       bus,
		interval:  interval,
		log:       log.With().Str("component", "catalog").Logger(),
		lastKnown: make(map[string][]models.Track),
	}
}

// Run refreshes silently on the interval until the context is cancelled.
// The caller is expected to run one non-silent Cycle first so startup
// fails loudly when the playlists are unreachable.
func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Cycle(ctx, true); err != nil {
				s.log.Warn().Err(err).Msg("catalog refresh failed")
			}
		}
	}
}

// Cycle fetches every provider and swaps the result in. In silent mode a
// provider failure falls back to that provider's last successful fetch;
// in loud mode (startup) it aborts the cycle.
//
// Incoming lists are filtered to tracks at the minimum play count read
// before the fetches, so a refresh mid-round only queues tracks that the
// current fairness round would have picked anyway.
func (s *Synchronizer) Cycle(ctx context.Context, silent bool) error {
	preMin := s.store.MinCount()

	byPlatform := make(map[models.Platform][]models.Track, len(s.providers))
	for _, p := range s.providers {
		tracks, err := p.Fetch(ctx)
		if err != nil {
			telemetry.ProviderFailuresTotal.WithLabelValues(p.Name()).Inc()
			if !silent {
				telemetry.SyncCyclesTotal.WithLabelValues("failed").Inc()
				return fmt.Errorf("fetch %s: %w", p.Name(), err)
			}
			s.log.Warn().Err(err).Str("provider", p.Name()).Msg("fetch failed, keeping last known list")
			tracks = s.lastKnown[p.Name()]
		} else {
			s.lastKnown[p.Name()] = tracks
		}
		byPlatform[p.Platform()] = append(byPlatform[p.Platform()], tracks...)
	}

	youtube := s.store.FilterAtCount(byPlatform[models.PlatformYouTube], preMin)
	spotify := s.store.FilterAtCount(byPlatform[models.PlatformSpotify], preMin)

	added, removed := s.store.ReplaceCatalog(youtube, spotify)
	telemetry.SyncCyclesTotal.WithLabelValues("ok").Inc()
	telemetry.QueueLength.Set(float64(s.store.QueueLen()))

	if added > 0 || removed > 0 {
		s.log.Info().Int("added", added).Int("removed", removed).Msg("catalog reconciled")
		s.bus.Publish(events.EventCatalogSynced, events.Payload{
			"added":   added,
			"removed": removed,
		})
		s.bus.Publish(events.EventQueueUpdated, events.Payload{
			"length": s.store.QueueLen(),
		})
	}

	return nil
}
