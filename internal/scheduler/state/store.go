/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package state

import (
	"math/rand"
	"sync"

	"github.com/friendsincode/skald_jukebox/internal/ledger"
	"github.com/friendsincode/skald_jukebox/internal/models"
)

// Store owns the shared mutable triple: the published catalog, the fairness
// queue, and the play-count ledger. One mutex guards all three for the
// duration of each compound operation; nothing here performs I/O, so the
// lock is only ever held for in-memory work.
type Store struct {
	mu      sync.Mutex
	catalog models.Catalog
	queue   []models.Track
	ledger  *ledger.Ledger
}

// NewStore creates a store around a loaded ledger.
func NewStore(led *ledger.Ledger) *Store {
	if led == nil {
		led = ledger.New()
	}
	return &Store{ledger: led}
}

// Refill appends one fairness round to the queue: all tracks of the scoped
// catalog slice whose play count equals the slice minimum, uniformly
// shuffled. The existing queue is never replaced or truncated. An empty
// slice is a no-op.
func (s *Store) Refill(platform models.Platform) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refillLocked(platform)
}

func (s *Store) refillLocked(platform models.Platform) int {
	if platform != "" && !platform.Valid() {
		return 0
	}
	slice := s.catalog.Slice(platform)
	if len(slice) == 0 {
		return 0
	}

	min := s.ledger.Min(slice)
	candidates := s.ledger.AtMin(slice, min)
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	s.queue = append(s.queue, candidates...)
	return len(candidates)
}

// PopNext removes and returns the queue head, refilling from the full
// catalog first when the queue is empty. Returns false only when the
// catalog itself is empty.
func (s *Store) PopNext() (models.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		s.refillLocked("")
	}
	if len(s.queue) == 0 {
		return models.Track{}, false
	}

	head := s.queue[0]
	s.queue = append([]models.Track(nil), s.queue[1:]...)
	return head, true
}

// Peek returns the queue head without removing it.
func (s *Store) Peek() (models.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return models.Track{}, false
	}
	return s.queue[0], true
}

// Reorder moves the element at from to position to, interpreting to against
// the queue state after removal. The target is clamped to the current queue
// length so a racing removal cannot make the operation fail.
func (s *Store) Reorder(from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from < 0 || from >= len(s.queue) {
		return false
	}

	item := s.queue[from]
	s.queue = append(s.queue[:from], s.queue[from+1:]...)

	if to < 0 {
		to = 0
	}
	if to > len(s.queue) {
		to = len(s.queue)
	}

	s.queue = append(s.queue, models.Track{})
	copy(s.queue[to+1:], s.queue[to:])
	s.queue[to] = item
	return true
}

// Shuffle permutes the whole queue in place.
func (s *Store) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	rand.Shuffle(len(s.queue), func(i, j int) {
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	})
}

// QueueSnapshot returns a copy of the queue for rendering.
func (s *Store) QueueSnapshot() []models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Track, len(s.queue))
	copy(out, s.queue)
	return out
}

// QueueLen returns the current queue length.
func (s *Store) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// CatalogSnapshot returns the currently published catalog.
func (s *Store) CatalogSnapshot() models.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// MinCount returns the minimum play count across the current union catalog.
// The synchronizer reads this before a cycle's fetches so incoming lists
// are filtered against the pre-swap minimum.
func (s *Store) MinCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Min(s.catalog.All)
}

// FilterAtCount returns the subset of tracks whose ledger count equals count.
func (s *Store) FilterAtCount(tracks []models.Track, count int) []models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AtMin(tracks, count)
}

// ReplaceCatalog installs a new catalog and reconciles the queue against it:
// queue entries whose URL left the union are removed, union entries whose
// URL is new are appended unless already queued. Existing queue order is
// preserved. Returns how many entries were added and removed.
func (s *Store) ReplaceCatalog(youtube, spotify []models.Track) (added, removed int) {
	next := models.NewCatalog(youtube, spotify)

	s.mu.Lock()
	defer s.mu.Unlock()

	oldURLs := urlSet(s.catalog.All)
	s.catalog = next
	newURLs := urlSet(next.All)

	kept := s.queue[:0]
	for _, t := range s.queue {
		if _, ok := newURLs[t.URL]; ok {
			kept = append(kept, t)
		} else {
			removed++
		}
	}
	s.queue = kept

	queued := urlSet(s.queue)
	for _, t := range next.All {
		if _, existed := oldURLs[t.URL]; existed {
			continue
		}
		if _, inQueue := queued[t.URL]; inQueue {
			continue
		}
		s.queue = append(s.queue, t)
		queued[t.URL] = struct{}{}
		added++
	}

	return added, removed
}

// RecordPlay increments the ledger for the track and returns the new count
// together with a snapshot for out-of-lock persistence.
func (s *Store) RecordPlay(t models.Track) (int, map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := s.ledger.Increment(t.Key())
	return count, s.ledger.Snapshot()
}

// PlayCount returns the ledger count for a track.
func (s *Store) PlayCount(t models.Track) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Count(t.Key())
}

func urlSet(tracks []models.Track) map[string]struct{} {
	set := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		set[t.URL] = struct{}{}
	}
	return set
}
