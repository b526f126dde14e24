// Package store owns the in-memory reading snapshot every query runs against.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"water-quality-monitor/models"
)

// Snapshot is an immutable view of the readings, sorted by timestamp.
// Callers must not modify Readings.
type Snapshot struct {
	Readings   []models.Reading
	LoadedAt   time.Time
	Generation uint64
}

// Latest returns the newest reading, or nil for an empty snapshot.
func (s *Snapshot) Latest() *models.Reading {
	if len(s.Readings) == 0 {
		return nil
	}
	r := s.Readings[len(s.Readings)-1]
	return &r
}

// ReadingStore loads the snapshot on first use and swaps it atomically on
// Reload. Readers never block on a reload in progress.
type ReadingStore struct {
	source Source
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex // serializes loads
	generation uint64
	current    atomic.Pointer[Snapshot]
}

func NewReadingStore(source Source, logger *zap.Logger) *ReadingStore {
	return &ReadingStore{source: source, logger: logger, now: time.Now}
}

// Snapshot returns the current snapshot, loading it if none exists yet.
func (s *ReadingStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.loadLocked(ctx)
}

// Reload rebuilds the snapshot from the source. On failure the previous
// snapshot stays in place.
func (s *ReadingStore) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Loaded returns the current snapshot without loading. It is nil before
// the first successful load.
func (s *ReadingStore) Loaded() *Snapshot {
	return s.current.Load()
}

func (s *ReadingStore) loadLocked(ctx context.Context) (*Snapshot, error) {
	readings, err := s.source.LoadReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	s.generation++
	snap := &Snapshot{
		Readings:   readings,
		LoadedAt:   s.now(),
		Generation: s.generation,
	}
	s.current.Store(snap)

	s.logger.Info("Reading snapshot swapped",
		zap.Uint64("generation", snap.Generation),
		zap.Int("readings", len(readings)),
	)
	return snap, nil
}
