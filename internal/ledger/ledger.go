/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ledger

import "github.com/friendsincode/skald_jukebox/internal/models"

// Ledger maps track identity keys to play counts. It carries no lock of its
// own: the scheduler state store guards it together with the catalog and
// the queue.
type Ledger struct {
	counts map[string]int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{counts: make(map[string]int)}
}

// FromCounts creates a ledger seeded with persisted counts.
func FromCounts(counts map[string]int) *Ledger {
	l := New()
	for key, count := range counts {
		if count > 0 {
			l.counts[key] = count
		}
	}
	return l
}

// Count returns the play count for key, zero for unseen keys.
func (l *Ledger) Count(key string) int {
	return l.counts[key]
}

// Increment bumps the count for key by one and returns the new value.
func (l *Ledger) Increment(key string) int {
	l.counts[key]++
	return l.counts[key]
}

// Min returns the minimum play count across tracks. An empty slice yields 0.
func (l *Ledger) Min(tracks []models.Track) int {
	if len(tracks) == 0 {
		return 0
	}
	min := l.counts[tracks[0].Key()]
	for _, t := range tracks[1:] {
		if c := l.counts[t.Key()]; c < min {
			min = c
		}
	}
	return min
}

// AtMin filters tracks down to those whose count equals min.
func (l *Ledger) AtMin(tracks []models.Track, min int) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if l.counts[t.Key()] == min {
			out = append(out, t)
		}
	}
	return out
}

// Snapshot returns a copy of the counts for persistence outside the lock.
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.counts))
	for key, count := range l.counts {
		out[key] = count
	}
	return out
}
