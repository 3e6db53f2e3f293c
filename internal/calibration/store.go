/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package calibration persists named screen points. Playback surfaces
// that need a physical click (consent dialogs, play buttons on odd
// layouts) are calibrated once and the points reused across runs.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Point is a screen coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Store holds calibration points, persisted as a JSON mapping of name to
// point.
type Store struct {
	mu     sync.Mutex
	path   string
	points map[string]Point
}

// Open loads the calibration file at path. A missing file yields an
// empty store; a corrupt one is reported but still yields a usable store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, points: make(map[string]Point)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read calibration file: %w", err)
	}
	if err := json.Unmarshal(data, &s.points); err != nil {
		s.points = make(map[string]Point)
		return s, fmt.Errorf("parse calibration file: %w", err)
	}
	return s, nil
}

// Get returns the named point.
func (s *Store) Get(name string) (Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.points[name]
	return p, ok
}

// Set stores the named point and persists the file.
func (s *Store) Set(name string, p Point) error {
	s.mu.Lock()
	s.points[name] = p
	snapshot := make(map[string]Point, len(s.points))
	for k, v := range s.points {
		snapshot[k] = v
	}
	s.mu.Unlock()

	return s.save(snapshot)
}

// Names returns the calibrated point names.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.points))
	for name := range s.points {
		names = append(names, name)
	}
	return names
}

// save writes the snapshot with an atomic replace so a crash mid-write
// never corrupts the file.
func (s *Store) save(points map[string]Point) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create calibration dir: %w", err)
	}

	data, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("encode calibration: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write calibration: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace calibration: %w", err)
	}
	return nil
}
