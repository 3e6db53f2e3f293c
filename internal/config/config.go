/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config covers process level configuration. Values come from an optional
// YAML file (SKALD_CONFIG_FILE) with environment variables taking
// precedence over it.
type Config struct {
	Environment string `yaml:"environment"`
	HTTPBind    string `yaml:"http_bind"`
	HTTPPort    int    `yaml:"http_port"`

	YouTubePlaylistURL string `yaml:"youtube_playlist_url"`
	YouTubeAPIKey      string `yaml:"youtube_api_key"`

	SpotifyPlaylistURL  string `yaml:"spotify_playlist_url"`
	SpotifyClientID     string `yaml:"spotify_client_id"`
	SpotifyClientSecret string `yaml:"spotify_client_secret"`

	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"`
	StateDir               string `yaml:"state_dir"`
	BrowserControlURL      string `yaml:"browser_control_url"`
	ShowAdder              bool   `yaml:"show_adder"`

	NATSEnabled bool   `yaml:"nats_enabled"`
	NATSURL     string `yaml:"nats_url"`
}

// Load reads the optional config file and environment variables, applies
// defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:            "development",
		HTTPBind:               "0.0.0.0",
		HTTPPort:               8080,
		RefreshIntervalSeconds: 10,
		StateDir:               "./state",
		ShowAdder:              true,
		NATSURL:                "nats://localhost:4222",
	}

	if path := os.Getenv("SKALD_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Environment = getEnvAny([]string{"SKALD_ENV"}, cfg.Environment)
	cfg.HTTPBind = getEnvAny([]string{"SKALD_HTTP_BIND"}, cfg.HTTPBind)
	cfg.HTTPPort = getEnvIntAny([]string{"SKALD_HTTP_PORT"}, cfg.HTTPPort)

	cfg.YouTubePlaylistURL = getEnvAny([]string{"SKALD_YOUTUBE_PLAYLIST_URL", "YOUTUBE_PLAYLIST_URL"}, cfg.YouTubePlaylistURL)
	cfg.YouTubeAPIKey = getEnvAny([]string{"SKALD_YOUTUBE_API_KEY", "YOUTUBE_API_KEY"}, cfg.YouTubeAPIKey)

	cfg.SpotifyPlaylistURL = getEnvAny([]string{"SKALD_SPOTIFY_PLAYLIST_URL", "SPOTIFY_PLAYLIST_URL"}, cfg.SpotifyPlaylistURL)
	cfg.SpotifyClientID = getEnvAny([]string{"SKALD_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID"}, cfg.SpotifyClientID)
	cfg.SpotifyClientSecret = getEnvAny([]string{"SKALD_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET"}, cfg.SpotifyClientSecret)

	cfg.RefreshIntervalSeconds = getEnvIntAny([]string{"SKALD_REFRESH_INTERVAL_SECONDS"}, cfg.RefreshIntervalSeconds)
	cfg.StateDir = getEnvAny([]string{"SKALD_STATE_DIR"}, cfg.StateDir)
	cfg.BrowserControlURL = getEnvAny([]string{"SKALD_BROWSER_CONTROL_URL"}, cfg.BrowserControlURL)
	cfg.ShowAdder = getEnvBoolAny([]string{"SKALD_SHOW_ADDER"}, cfg.ShowAdder)

	cfg.NATSEnabled = getEnvBoolAny([]string{"SKALD_NATS_ENABLED"}, cfg.NATSEnabled)
	cfg.NATSURL = getEnvAny([]string{"SKALD_NATS_URL", "NATS_URL"}, cfg.NATSURL)

	if cfg.YouTubePlaylistURL == "" && cfg.SpotifyPlaylistURL == "" {
		return nil, fmt.Errorf("at least one of SKALD_YOUTUBE_PLAYLIST_URL or SKALD_SPOTIFY_PLAYLIST_URL must be provided")
	}
	if cfg.YouTubePlaylistURL != "" && cfg.YouTubeAPIKey == "" {
		return nil, fmt.Errorf("SKALD_YOUTUBE_API_KEY must be provided when a YouTube playlist is configured")
	}
	if cfg.SpotifyPlaylistURL != "" && (cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "") {
		return nil, fmt.Errorf("SKALD_SPOTIFY_CLIENT_ID and SKALD_SPOTIFY_CLIENT_SECRET must be provided when a Spotify playlist is configured")
	}
	if cfg.RefreshIntervalSeconds <= 0 {
		return nil, fmt.Errorf("SKALD_REFRESH_INTERVAL_SECONDS must be positive")
	}

	return cfg, nil
}

// RefreshInterval returns the catalog refresh interval as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// HTTPAddr returns the bind address for the display server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}
