/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package history persists the play log. Unlike the play-count ledger,
// which only tracks fairness, history keeps every individual spin with
// its timestamp so the display and the refresh command can answer "what
// just played".
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/skald_jukebox/internal/models"
)

// PlayRecord is one spin of one track.
type PlayRecord struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	TrackKey  string    `gorm:"index" json:"track_key"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	Duration  float64   `json:"duration"`
	AddedBy   string    `json:"added_by,omitempty"`
	StartedAt time.Time `gorm:"index" json:"started_at"`
}

// Store wraps the history database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the history database at path and migrates the
// schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.AutoMigrate(&PlayRecord{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends a spin for the track starting now.
func (s *Store) Record(track models.Track) error {
	rec := PlayRecord{
		ID:        uuid.NewString(),
		TrackKey:  track.Key(),
		Title:     track.Title,
		Artist:    track.Artist,
		Platform:  string(track.Platform),
		URL:       track.URL,
		Duration:  track.Duration,
		AddedBy:   track.AddedByName,
		StartedAt: time.Now(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	return nil
}

// MostRecent returns the latest spin, or false when history is empty.
func (s *Store) MostRecent() (PlayRecord, bool, error) {
	var rec PlayRecord
	err := s.db.Order("started_at DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PlayRecord{}, false, nil
	}
	if err != nil {
		return PlayRecord{}, false, fmt.Errorf("load history: %w", err)
	}
	return rec, true, nil
}

// Recent returns up to limit spins, newest first.
func (s *Store) Recent(limit int) ([]PlayRecord, error) {
	var recs []PlayRecord
	if err := s.db.Order("started_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return recs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
