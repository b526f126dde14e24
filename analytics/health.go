package analytics

import (
	"fmt"
	"math"

	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

type ParameterScore struct {
	Score   int    `json:"score"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type HealthReport struct {
	OverallScore    int                                   `json:"overall_score"`
	Level           string                                `json:"level"`
	Description     string                                `json:"description"`
	ParameterScores map[models.ParameterID]ParameterScore `json:"parameter_scores"`
	EffectiveWeight float64                               `json:"effective_weight"`
}

func jsRound(v float64) int {
	return int(math.Floor(v + 0.5))
}

func scoreParameter(p catalog.Parameter, v float64) ParameterScore {
	rule := p.Health
	if v > rule.Max || v < 0 {
		return ParameterScore{Score: 0, Level: "invalid", Message: "value outside the plausible range"}
	}
	if v >= rule.Optimal[0] && v <= rule.Optimal[1] {
		return ParameterScore{Score: 100, Level: "excellent", Message: "within the optimal range"}
	}

	label := fmt.Sprintf("%s %g%s", p.Name, v, p.Unit)
	if v >= rule.Acceptable[0] && v <= rule.Acceptable[1] {
		dist := math.Min(math.Abs(v-rule.Optimal[0]), math.Abs(v-rule.Optimal[1]))
		score := math.Max(100-dist*15, 70)
		level := "fair"
		if score >= 85 {
			level = "good"
		}
		return ParameterScore{Score: jsRound(score), Level: level, Message: label + " is acceptable"}
	}

	dist := math.Min(math.Abs(v-rule.Acceptable[0]), math.Abs(v-rule.Acceptable[1]))
	score := math.Max(60-dist*8, 0)
	level := "bad"
	if score >= 40 {
		level = "poor"
	}
	direction := "low"
	if v > rule.Acceptable[1] {
		direction = "high"
	}
	return ParameterScore{Score: jsRound(score), Level: level, Message: label + " is too " + direction}
}

// HealthScore computes a weighted score over the supplied values. Missing
// values and parameters without scoring rules are left out of the weighting.
func HealthScore(values map[models.ParameterID]*float64) (*HealthReport, error) {
	report := &HealthReport{ParameterScores: make(map[models.ParameterID]ParameterScore)}
	var total float64
	for id, raw := range values {
		p, ok := catalog.Lookup(id)
		if !ok || p.Health == nil {
			continue
		}
		v, ok := models.Present(raw)
		if !ok {
			continue
		}
		s := scoreParameter(p, v)
		report.ParameterScores[id] = s
		total += float64(s.Score) * p.Health.Weight
		report.EffectiveWeight += p.Health.Weight
	}
	if report.EffectiveWeight == 0 {
		return nil, ErrNoData
	}
	report.OverallScore = jsRound(total / report.EffectiveWeight)
	report.Level, report.Description = healthLevel(report.OverallScore)
	report.EffectiveWeight = models.Round(report.EffectiveWeight, 2)
	return report, nil
}

func healthLevel(score int) (string, string) {
	switch {
	case score >= 90:
		return "excellent", "water quality is excellent"
	case score >= 80:
		return "good", "water quality is good for most uses"
	case score >= 70:
		return "fair", "some parameters need attention"
	case score >= 60:
		return "poor", "water quality is poor, corrective action advised"
	}
	return "bad", "water quality is bad, urgent remediation required"
}
