package analytics

import (
	"time"

	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

// Evaluate checks value against every tier of the parameter and returns the
// violation of the highest priority tier, or nil. Missing values and unknown
// parameters are not errors; they simply produce no alert.
func Evaluate(id models.ParameterID, value *float64, ts time.Time) *models.Alert {
	v, ok := models.Present(value)
	if !ok {
		return nil
	}
	p, ok := catalog.Lookup(id)
	if !ok || !p.Alertable() {
		return nil
	}

	var highest *models.Alert
	for _, tier := range catalog.Tiers {
		bounds, ok := p.Rules[tier]
		if !ok {
			continue
		}
		bound, threshold, violated := violation(bounds, v)
		if !violated {
			continue
		}
		if highest != nil && highest.Priority >= int(tier) {
			continue
		}
		highest = &models.Alert{
			Parameter:    p.ID,
			CurrentValue: models.Round(v, 2),
			Level:        tier.String(),
			Priority:     int(tier),
			Message:      message(p.Name, bound),
			Timestamp:    ts.Format(models.TimeLayout),
			Status:       models.AlertStatusActive,
			Unit:         p.Unit,
			Bound:        bound,
			Threshold:    threshold,
			Thresholds:   bounds.Thresholds(),
		}
	}
	return highest
}

// EvaluateRaw is Evaluate for loosely typed input such as decoded JSON.
func EvaluateRaw(id models.ParameterID, raw any, ts time.Time) *models.Alert {
	v, ok := models.ToFloat(raw)
	if !ok {
		return nil
	}
	return Evaluate(id, &v, ts)
}

// violation reports which bound of b the value breaks. With an inverted
// range both can break at once; the larger overshoot is reported and an
// exact tie goes to the upper bound.
func violation(b catalog.Bounds, v float64) (models.Bound, float64, bool) {
	low := b.Min != nil && v < *b.Min
	high := b.Max != nil && v > *b.Max
	switch {
	case low && high:
		if *b.Min-v > v-*b.Max {
			return models.BoundMin, *b.Min, true
		}
		return models.BoundMax, *b.Max, true
	case low:
		return models.BoundMin, *b.Min, true
	case high:
		return models.BoundMax, *b.Max, true
	}
	return "", 0, false
}

func message(name string, bound models.Bound) string {
	if bound == models.BoundMin {
		return name + " too low"
	}
	return name + " too high"
}

// Highest returns the alert with the highest priority. Ties keep the first.
func Highest(alerts []models.Alert) *models.Alert {
	var highest *models.Alert
	for i := range alerts {
		if highest == nil || alerts[i].Priority > highest.Priority {
			highest = &alerts[i]
		}
	}
	return highest
}
