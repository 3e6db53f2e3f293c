/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package surface

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

// Browser drives playback through a Chromium instance over the DevTools
// protocol. Each track plays in its own tab; tabs are located by title
// token since tab order is not stable across navigations.
type Browser struct {
	mu         sync.Mutex
	browser    *rod.Browser
	log        zerolog.Logger
	fullscreen bool
}

// Connect attaches to a running browser at controlURL, or launches a new
// one when controlURL is empty.
func Connect(controlURL string, log zerolog.Logger) (*Browser, error) {
	if controlURL == "" {
		url, err := launcher.New().Headless(false).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &Browser{browser: b, log: log.With().Str("component", "surface").Logger()}, nil
}

// Close detaches from the browser without closing its tabs.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.browser.Close()
}

// Start opens a new tab for the track and waits for it to load. The first
// track of a run also gets pushed to fullscreen so the display looks like
// a jukebox rather than a desktop.
func (b *Browser) Start(track models.Track) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: track.URL})
	if err != nil {
		return fmt.Errorf("open tab for %q: %w", track.Title, err)
	}
	if err := page.WaitLoad(); err != nil {
		b.log.Warn().Err(err).Str("title", track.Title).Msg("tab load incomplete")
	}

	if !b.fullscreen {
		if err := page.Keyboard.Type(input.F11); err == nil {
			b.fullscreen = true
		}
	}

	b.log.Debug().Str("title", track.Title).Str("platform", string(track.Platform)).Msg("surface started")
	return nil
}

// Reuse retargets the tab that played previousTitle to the new track.
// Navigating an existing tab keeps fullscreen and any player session
// state, which matters for Spotify's web player.
func (b *Browser) Reuse(previousTitle string, track models.Track) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	page := b.findTab(previousTitle)
	if page == nil {
		return false
	}

	if err := page.Navigate(track.URL); err != nil {
		b.log.Warn().Err(err).Str("title", track.Title).Msg("tab reuse failed")
		return false
	}
	if err := page.WaitLoad(); err != nil {
		b.log.Warn().Err(err).Str("title", track.Title).Msg("tab load incomplete")
	}

	b.log.Debug().Str("title", track.Title).Msg("surface reused")
	return true
}

// Stop closes the tab playing the hinted title. A tab that is already
// gone, because the user closed it or the browser restarted, is fine.
func (b *Browser) Stop(titleHint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page := b.findTab(titleHint)
	if page == nil {
		return nil
	}
	if err := page.Close(); err != nil {
		return fmt.Errorf("close tab %q: %w", titleHint, err)
	}
	return nil
}

// PauseOrResume sends a space key to the hinted tab. Both players bind
// space to play/pause, so the same gesture toggles either direction.
func (b *Browser) PauseOrResume(titleHint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page := b.findTab(titleHint)
	if page == nil {
		return fmt.Errorf("no surface matches %q", titleHint)
	}
	if _, err := page.Activate(); err != nil {
		return fmt.Errorf("focus tab %q: %w", titleHint, err)
	}
	if err := page.Keyboard.Type(input.Space); err != nil {
		return fmt.Errorf("toggle playback on %q: %w", titleHint, err)
	}
	return nil
}

// Refresh reloads the hinted tab in place.
func (b *Browser) Refresh(titleHint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	page := b.findTab(titleHint)
	if page == nil {
		return fmt.Errorf("no surface matches %q", titleHint)
	}
	if err := page.Reload(); err != nil {
		return fmt.Errorf("reload tab %q: %w", titleHint, err)
	}
	return nil
}

// findTab scans open tabs for one whose title carries the track's title
// token. Tabs that fail to report info (mid-navigation, crashed) are
// skipped rather than treated as errors.
func (b *Browser) findTab(titleHint string) *rod.Page {
	pages, err := b.browser.Pages()
	if err != nil {
		b.log.Warn().Err(err).Msg("listing tabs failed")
		return nil
	}
	for _, page := range pages {
		info, err := page.Info()
		if err != nil {
			continue
		}
		if titlesMatch(info.Title, titleHint) {
			return page
		}
	}
	return nil
}
