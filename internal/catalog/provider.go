/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog fetches playlist contents from the streaming platforms
// and keeps the scheduler's published catalog in sync with them.
package catalog

import (
	"context"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

// Provider fetches the current contents of one platform playlist.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Platform returns the platform this provider's tracks belong to.
	Platform() models.Platform

	// Fetch returns the playlist's tracks in playlist order.
	Fetch(ctx context.Context) ([]models.Track, error)
}
