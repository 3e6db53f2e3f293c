/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "fmt"

// Platform identifies the source catalog a track came from.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformSpotify Platform = "spotify"
)

// Valid reports whether the platform is one of the known sources.
func (p Platform) Valid() bool {
	return p == PlatformYouTube || p == PlatformSpotify
}

// Track is an immutable record of one playable item. Two tracks are the
// same iff their identity keys match.
type Track struct {
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	URI      string   `json:"uri,omitempty"`      // native platform URI, e.g. spotify:track:<id>
	Duration float64  `json:"duration,omitempty"` // seconds, 0 when unknown

	// Attribution from the source playlist, when the provider exposes it.
	AddedByID   string `json:"added_by_id,omitempty"`
	AddedByName string `json:"added_by_name,omitempty"`
	AddedAt     string `json:"added_at,omitempty"`
}

// Key derives the stable identity used for fairness counting and catalog
// delta detection. Priority: native URI, then canonical URL, then a
// platform/title/artist composite. Never empty for a non-zero track.
func (t Track) Key() string {
	if t.URI != "" {
		return t.URI
	}
	if t.URL != "" {
		return t.URL
	}
	return fmt.Sprintf("%s:%s - %s", t.Platform, t.Title, t.Artist)
}

// HasDuration reports whether the track length is known.
func (t Track) HasDuration() bool {
	return t.Duration > 0
}

// Adder returns the best available display value for who added the track.
func (t Track) Adder() string {
	if t.AddedByName != "" {
		return t.AddedByName
	}
	return t.AddedByID
}

// Catalog holds the two source lists and their union. Replaced as a unit on
// every successful synchronization cycle; read-only once published.
type Catalog struct {
	YouTube []Track
	Spotify []Track
	All     []Track
}

// NewCatalog builds a catalog from the two source lists.
func NewCatalog(youtube, spotify []Track) Catalog {
	all := make([]Track, 0, len(youtube)+len(spotify))
	all = append(all, youtube...)
	all = append(all, spotify...)
	return Catalog{YouTube: youtube, Spotify: spotify, All: all}
}

// Slice returns the catalog slice for the given platform, or the union for
// an empty platform.
func (c Catalog) Slice(p Platform) []Track {
	switch p {
	case PlatformYouTube:
		return c.YouTube
	case PlatformSpotify:
		return c.Spotify
	default:
		return c.All
	}
}
