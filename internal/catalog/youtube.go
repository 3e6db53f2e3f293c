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
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

// YouTube fetches a playlist through the YouTube Data API v3.
type YouTube struct {
	client     *http.Client
	apiKey     string
	playlistID string
}

// NewYouTube creates a provider for the playlist URL. The playlist ID is
// taken from the URL's list parameter, or the raw value is used as an ID
// when it does not parse as a URL.
func NewYouTube(playlistURL, apiKey string) (*YouTube, error) {
	id := playlistURL
	if u, err := url.Parse(playlistURL); err == nil && u.Host != "" {
		if list := u.Query().Get("list"); list != "" {
			id = list
		}
	}
	if id == "" {
		return nil, fmt.Errorf("youtube: no playlist id in %q", playlistURL)
	}
	return &YouTube{
		client:     &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		playlistID: id,
	}, nil
}

func (y *YouTube) Name() string              { return "youtube" }
func (y *YouTube) Platform() models.Platform { return models.PlatformYouTube }

type youtubePlaylistPage struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title                 string `json:"title"`
			VideoOwnerChannelName string `json:"videoOwnerChannelTitle"`
			ChannelTitle          string `json:"channelTitle"`
			PublishedAt           string `json:"publishedAt"`
			ResourceID            struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosPage struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Fetch walks the playlist pages, then resolves durations in a second
// batched call since playlistItems does not carry them.
func (y *YouTube) Fetch(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	var videoIDs []string

	pageToken := ""
	for {
		q := url.Values{
			"part":       {"snippet"},
			"maxResults": {"50"},
			"playlistId": {y.playlistID},
			"key":        {y.apiKey},
		}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page youtubePlaylistPage
		if err := y.get(ctx, youtubeAPIBase+"/playlistItems?"+q.Encode(), &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			id := item.Snippet.ResourceID.VideoID
			if id == "" {
				continue
			}
			title := item.Snippet.Title
			// Deleted and private videos stay in the playlist with
			// placeholder titles; they cannot play, so skip them.
			if title == "Deleted video" || title == "Private video" {
				continue
			}
			tracks = append(tracks, models.Track{
				Title:       title,
				Artist:      item.Snippet.VideoOwnerChannelName,
				Platform:    models.PlatformYouTube,
				URL:         "https://www.youtube.com/watch?v=" + id,
				URI:         id,
				AddedByName: item.Snippet.ChannelTitle,
				AddedAt:     item.Snippet.PublishedAt,
			})
			videoIDs = append(videoIDs, id)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	durations, err := y.fetchDurations(ctx, videoIDs)
	if err != nil {
		return nil, err
	}
	for i := range tracks {
		tracks[i].Duration = durations[tracks[i].URI]
	}

	return tracks, nil
}

func (y *YouTube) fetchDurations(ctx context.Context, ids []string) (map[string]float64, error) {
	durations := make(map[string]float64, len(ids))
	for len(ids) > 0 {
		batch := ids
		if len(batch) > 50 {
			batch = batch[:50]
		}
		ids = ids[len(batch):]

		q := url.Values{
			"part": {"contentDetails"},
			"id":   {strings.Join(batch, ",")},
			"key":  {y.apiKey},
		}
		var page youtubeVideosPage
		if err := y.get(ctx, youtubeAPIBase+"/videos?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			durations[item.ID] = parseISODuration(item.ContentDetails.Duration)
		}
	}
	return durations, nil
}

func (y *YouTube) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("youtube: build request: %w", err)
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("youtube: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube: decode response: %w", err)
	}
	return nil
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO 8601 duration (PT4M13S) to
// seconds. Unparseable values come back as 0, meaning unknown.
func parseISODuration(s string) float64 {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return float64(hours*3600 + minutes*60 + seconds)
}
