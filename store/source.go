package store

import (
	"context"

	"water-quality-monitor/models"
)

// Source loads the full reading history.
type Source interface {
	LoadReadings(ctx context.Context) ([]models.Reading, error)
}

// StaticSource serves a fixed slice. Each load returns a fresh copy.
type StaticSource struct {
	Readings []models.Reading
}

func (s StaticSource) LoadReadings(ctx context.Context) ([]models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Reading, len(s.Readings))
	copy(out, s.Readings)
	return out, nil
}
