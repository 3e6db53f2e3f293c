/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package surface drives the playback surface, the browser tabs that
// actually render YouTube and Spotify. The scheduler never talks to a
// browser directly; it goes through a Driver so tests can swap in a fake.
package surface

import (
	"strings"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

// Driver abstracts the playback surface. All calls are best-effort: a
// missing or crashed tab is reported as an error but never takes the
// scheduler down with it.
type Driver interface {
	// Start opens a fresh surface for the track and begins playback.
	Start(track models.Track) error

	// Reuse tries to retarget an existing surface, identified by the
	// previous track's title, to the new track. Returns false when no
	// matching surface is alive and a fresh Start is needed.
	Reuse(previousTitle string, track models.Track) bool

	// Stop closes the surface identified by the title hint. Stopping a
	// surface that is already gone is not an error.
	Stop(titleHint string) error

	// PauseOrResume toggles playback on the surface.
	PauseOrResume(titleHint string) error

	// Refresh reloads the surface without changing what it points at.
	Refresh(titleHint string) error
}

// titleToken reduces a track title to its match key: the first three
// words, lowercased. Browser tabs decorate titles with player chrome
// ("- YouTube", notification counts), so exact comparison never works;
// the leading words survive the decoration.
func titleToken(title string) string {
	words := strings.Fields(strings.ToLower(title))
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// titlesMatch reports whether a live tab title belongs to the track title.
func titlesMatch(tabTitle, trackTitle string) bool {
	token := titleToken(trackTitle)
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(tabTitle), token)
}

// Noop is a surface driver that does nothing. Used when no browser is
// reachable so the scheduler can still exercise queue and timer logic.
type Noop struct{}

func (Noop) Start(models.Track) error        { return nil }
func (Noop) Reuse(string, models.Track) bool { return false }
func (Noop) Stop(string) error               { return nil }
func (Noop) PauseOrResume(string) error      { return nil }
func (Noop) Refresh(string) error            { return nil }
