// Package forecast builds time features from a parameter's history, fits a
// regression model and projects it onto future hourly timestamps.
package forecast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientData = errors.New("insufficient valid data")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrInvalidHorizon   = errors.New("forecast horizon must be a positive number of hours")
	ErrUnknownModel     = errors.New("unknown model")
)

// MinRows is the smallest dataset a model is trained on.
const MinRows = 10

type ModelKind int

const (
	Linear ModelKind = iota
	Ensemble
)

func (k ModelKind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Ensemble:
		return "random_forest"
	}
	return fmt.Sprintf("ModelKind(%d)", int(k))
}

// ParseModelKind accepts the wire names. An empty name means Linear.
func ParseModelKind(s string) (ModelKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "random_forest", "ensemble", "forest":
		return Ensemble, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// ModelConfig carries the hyperparameters shared by every fit.
type ModelConfig struct {
	Seed         int64
	TestFraction float64
	Trees        int
	MaxDepth     int
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Seed:         42,
		TestFraction: 0.2,
		Trees:        100,
		MaxDepth:     10,
	}
}

// Regressor is a model over fixed-width feature vectors.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
}

func newRegressor(kind ModelKind, cfg ModelConfig) (Regressor, error) {
	switch kind {
	case Linear:
		return &LinearRegression{}, nil
	case Ensemble:
		return NewRandomForest(cfg.Trees, cfg.MaxDepth, cfg.Seed), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, kind)
}

func predictAll(m Regressor, X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = m.Predict(x)
	}
	return out
}
