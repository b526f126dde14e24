package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestEvaluate_TemperatureTooLow(t *testing.T) {
	alert := Evaluate(models.Temperature, models.Float(3), jan1)

	require.NotNil(t, alert)
	assert.Equal(t, models.Temperature, alert.Parameter)
	assert.Equal(t, "critical", alert.Level)
	assert.Equal(t, "Temperature too low", alert.Message)
	assert.Equal(t, 3.0, alert.CurrentValue)
	assert.Equal(t, models.BoundMin, alert.Bound)
	assert.Equal(t, 5.0, alert.Threshold)
	assert.Equal(t, "°C", alert.Unit)
	assert.Equal(t, "2024-01-01 00:00:00", alert.Timestamp)
	assert.Equal(t, models.AlertStatusActive, alert.Status)
}

func TestEvaluate_InsideAllTiers(t *testing.T) {
	assert.Nil(t, Evaluate(models.Temperature, models.Float(20), jan1))
	assert.Nil(t, Evaluate(models.Temperature, models.Float(15), jan1))
	assert.Nil(t, Evaluate(models.Temperature, models.Float(28), jan1))
}

func TestEvaluate_NoAlertStrictlyInsideBounds(t *testing.T) {
	for _, p := range catalog.All() {
		if !p.Alertable() {
			continue
		}
		att := p.Rules[catalog.Attention]
		hi := *att.Max
		lo := hi - 1
		if att.Min != nil {
			lo = *att.Min
		}
		for _, v := range []float64{lo + 0.001, (lo + hi) / 2, hi - 0.001} {
			assert.Nil(t, Evaluate(p.ID, models.Float(v), jan1), "%s=%v", p.ID, v)
		}
	}
}

func TestEvaluate_HighestTierWins(t *testing.T) {
	tests := []struct {
		name    string
		param   models.ParameterID
		value   float64
		level   string
		message string
	}{
		{"attention only", models.Temperature, 29, "attention", "Temperature too high"},
		{"warning beats attention", models.Temperature, 31, "warning", "Temperature too high"},
		{"critical beats all", models.Temperature, 40, "critical", "Temperature too high"},
		{"oxygen warning low", models.DissolvedOxygen, 3.5, "warning", "Dissolved oxygen too low"},
		{"ph critical high", models.PH, 9.8, "critical", "pH too high"},
		{"turbidity upper only", models.Turbidity, 12, "warning", "Turbidity too high"},
		{"chlorophyll attention", models.Chlorophyll, 4, "attention", "Chlorophyll too high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := Evaluate(tt.param, models.Float(tt.value), jan1)
			require.NotNil(t, alert)
			assert.Equal(t, tt.level, alert.Level)
			assert.Equal(t, tt.message, alert.Message)
		})
	}
}

func TestEvaluate_MissingOrUnknown(t *testing.T) {
	assert.Nil(t, Evaluate(models.Temperature, nil, jan1))
	assert.Nil(t, Evaluate(models.Temperature, models.Float(math.NaN()), jan1))
	assert.Nil(t, Evaluate("conductivity", models.Float(100), jan1))
	assert.Nil(t, Evaluate(models.Salinity, models.Float(100), jan1))
}

func TestEvaluateRaw(t *testing.T) {
	assert.Nil(t, EvaluateRaw(models.Temperature, "abc", jan1))
	assert.Nil(t, EvaluateRaw(models.Temperature, nil, jan1))
	assert.Nil(t, EvaluateRaw(models.Temperature, []int{1}, jan1))

	alert := EvaluateRaw(models.Temperature, "3", jan1)
	require.NotNil(t, alert)
	assert.Equal(t, "critical", alert.Level)

	alert = EvaluateRaw(models.PH, 6.234, jan1)
	require.NotNil(t, alert)
	assert.Equal(t, 6.23, alert.CurrentValue)
	assert.Equal(t, "warning", alert.Level)
}

func TestViolation_InvertedRangeTieBreak(t *testing.T) {
	inverted := catalog.Bounds{Min: models.Float(10), Max: models.Float(5)}

	bound, threshold, ok := violation(inverted, 9)
	require.True(t, ok)
	assert.Equal(t, models.BoundMax, bound)
	assert.Equal(t, 5.0, threshold)

	bound, threshold, ok = violation(inverted, 6)
	require.True(t, ok)
	assert.Equal(t, models.BoundMin, bound)
	assert.Equal(t, 10.0, threshold)

	bound, _, ok = violation(inverted, 7.5)
	require.True(t, ok)
	assert.Equal(t, models.BoundMax, bound)
}

func TestHighest(t *testing.T) {
	alerts := []models.Alert{
		{Parameter: models.PH, Priority: 2},
		{Parameter: models.Temperature, Priority: 3},
		{Parameter: models.Turbidity, Priority: 3},
	}
	h := Highest(alerts)
	require.NotNil(t, h)
	assert.Equal(t, models.Temperature, h.Parameter)
	assert.Nil(t, Highest(nil))
}
