/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIBase  = "https://api.spotify.com/v1"
)

// Spotify fetches a playlist through the Spotify Web API using the
// client-credentials flow.
type Spotify struct {
	client       *http.Client
	clientID     string
	clientSecret string
	playlistID   string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	userNames   map[string]string
}

// NewSpotify creates a provider for the playlist URL. Accepts full open
// URLs, spotify: URIs, or bare playlist IDs.
func NewSpotify(playlistURL, clientID, clientSecret string) (*Spotify, error) {
	id := spotifyPlaylistID(playlistURL)
	if id == "" {
		return nil, fmt.Errorf("spotify: no playlist id in %q", playlistURL)
	}
	return &Spotify{
		client:       &http.Client{Timeout: 15 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		playlistID:   id,
		userNames:    make(map[string]string),
	}, nil
}

func spotifyPlaylistID(raw string) string {
	if strings.HasPrefix(raw, "spotify:playlist:") {
		return strings.TrimPrefix(raw, "spotify:playlist:")
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, p := range parts {
			if p == "playlist" && i+1 < len(parts) {
				return parts[i+1]
			}
		}
		return ""
	}
	return raw
}

func (s *Spotify) Name() string              { return "spotify" }
func (s *Spotify) Platform() models.Platform { return models.PlatformSpotify }

type spotifyTracksPage struct {
	Next  string `json:"next"`
	Items []struct {
		AddedAt string `json:"added_at"`
		AddedBy struct {
			ID string `json:"id"`
		} `json:"added_by"`
		Track struct {
			Name    string `json:"name"`
			URI     string `json:"uri"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			DurationMS   int64 `json:"duration_ms"`
			ExternalURLs struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
		} `json:"track"`
	} `json:"items"`
}

// Fetch walks the playlist pages and resolves adder display names through
// a cached per-user lookup.
func (s *Spotify) Fetch(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=100", spotifyAPIBase, s.playlistID)
	for next != "" {
		var page spotifyTracksPage
		if err := s.get(ctx, next, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			t := item.Track
			if t.URI == "" || t.ExternalURLs.Spotify == "" {
				// Local files and removed tracks have no playable URL.
				continue
			}
			var artists []string
			for _, a := range t.Artists {
				artists = append(artists, a.Name)
			}
			tracks = append(tracks, models.Track{
				Title:       t.Name,
				Artist:      strings.Join(artists, ", "),
				Platform:    models.PlatformSpotify,
				URL:         t.ExternalURLs.Spotify,
				URI:         t.URI,
				Duration:    float64(t.DurationMS) / 1000,
				AddedByID:   item.AddedBy.ID,
				AddedByName: s.userName(ctx, item.AddedBy.ID),
				AddedAt:     item.AddedAt,
			})
		}

		next = page.Next
	}

	return tracks, nil
}

// userName resolves a user ID to its display name, caching results for
// the provider's lifetime. Failures fall back to the raw ID.
func (s *Spotify) userName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}

	s.mu.Lock()
	if name, ok := s.userNames[id]; ok {
		s.mu.Unlock()
		return name
	}
	s.mu.Unlock()

	var user struct {
		DisplayName string `json:"display_name"`
	}
	name := id
	if err := s.get(ctx, spotifyAPIBase+"/users/"+url.PathEscape(id), &user); err == nil && user.DisplayName != "" {
		name = user.DisplayName
	}

	s.mu.Lock()
	s.userNames[id] = name
	s.mu.Unlock()
	return name
}

func (s *Spotify) get(ctx context.Context, rawURL string, out any) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("spotify: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("spotify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify: decode response: %w", err)
	}
	return nil
}

// accessToken returns a valid client-credentials token, refreshing it a
// minute before expiry.
func (s *Spotify) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && time.Now().Before(s.tokenExpiry) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("spotify: build token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify: token status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("spotify: decode token: %w", err)
	}

	s.mu.Lock()
	s.token = body.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	s.mu.Unlock()
	return body.AccessToken, nil
}
