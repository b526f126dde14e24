// Package catalog holds the static parameter table: display names, units,
// alert tiers, normal ranges and health scoring rules.
package catalog

import (
	"water-quality-monitor/models"
)

// Tier is an alert severity. Higher values win.
type Tier int

const (
	Attention Tier = iota + 1
	Warning
	Critical
)

// Tiers lists every tier from lowest to highest priority.
var Tiers = []Tier{Attention, Warning, Critical}

func (t Tier) String() string {
	switch t {
	case Attention:
		return "attention"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// Bounds is an inclusive valid range. Either side may be open.
type Bounds struct {
	Min *float64
	Max *float64
}

func (b Bounds) Thresholds() models.Thresholds {
	return models.Thresholds{Min: b.Min, Max: b.Max}
}

func (b Bounds) Contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// HealthRule scores a value against optimal and acceptable ranges.
type HealthRule struct {
	Optimal    [2]float64
	Acceptable [2]float64
	Max        float64
	Weight     float64
}

type Parameter struct {
	ID   models.ParameterID
	Name string
	Unit string
	// Rules is empty for parameters that never alert.
	Rules map[Tier]Bounds
	// Normal is the range the stream feed reports as "normal".
	Normal *Bounds
	Health *HealthRule
}

func (p Parameter) Alertable() bool {
	return len(p.Rules) > 0
}

func between(min, max float64) Bounds {
	return Bounds{Min: models.Float(min), Max: models.Float(max)}
}

func atMost(max float64) Bounds {
	return Bounds{Max: models.Float(max)}
}

func normal(min, max float64) *Bounds {
	b := between(min, max)
	return &b
}

var parameters = []Parameter{
	{
		ID: models.Temperature, Name: "Temperature", Unit: "°C",
		Rules: map[Tier]Bounds{
			Critical:  between(5, 35),
			Warning:   between(10, 30),
			Attention: between(15, 28),
		},
		Normal: normal(15, 28),
		Health: &HealthRule{Optimal: [2]float64{18, 25}, Acceptable: [2]float64{15, 28}, Max: 40, Weight: 0.15},
	},
	{
		ID: models.DissolvedOxygen, Name: "Dissolved oxygen", Unit: "mg/L",
		Rules: map[Tier]Bounds{
			Critical:  between(3, 15),
			Warning:   between(4, 12),
			Attention: between(5, 10),
		},
		Normal: normal(5, 10),
		Health: &HealthRule{Optimal: [2]float64{6, 9}, Acceptable: [2]float64{5, 10}, Max: 15, Weight: 0.25},
	},
	{
		ID: models.PH, Name: "pH", Unit: "",
		Rules: map[Tier]Bounds{
			Critical:  between(6.0, 9.5),
			Warning:   between(6.5, 9.0),
			Attention: between(7.0, 8.5),
		},
		Normal: normal(6.5, 8.5),
		Health: &HealthRule{Optimal: [2]float64{6.8, 8.2}, Acceptable: [2]float64{6.5, 8.5}, Max: 14, Weight: 0.20},
	},
	{
		ID: models.Turbidity, Name: "Turbidity", Unit: "NTU",
		Rules: map[Tier]Bounds{
			Critical:  atMost(20),
			Warning:   atMost(10),
			Attention: atMost(5),
		},
		Normal: normal(0, 5),
		Health: &HealthRule{Optimal: [2]float64{0, 2}, Acceptable: [2]float64{2, 5}, Max: 20, Weight: 0.25},
	},
	{
		ID: models.Chlorophyll, Name: "Chlorophyll", Unit: "μg/L",
		Rules: map[Tier]Bounds{
			Critical:  atMost(10),
			Warning:   atMost(5),
			Attention: atMost(3),
		},
		Normal: normal(0, 3),
		Health: &HealthRule{Optimal: [2]float64{0, 2}, Acceptable: [2]float64{2, 3}, Max: 10, Weight: 0.10},
	},
	{
		ID: models.Salinity, Name: "Salinity", Unit: "PSU",
		Normal: normal(0, 35),
		Health: &HealthRule{Optimal: [2]float64{33, 37}, Acceptable: [2]float64{30, 40}, Max: 50, Weight: 0.05},
	},
	{ID: models.SpecificConductance, Name: "Specific conductance", Unit: "mS/cm"},
	{ID: models.DissolvedOxygenSaturation, Name: "Dissolved oxygen saturation", Unit: "%"},
	{ID: models.AverageWaterSpeed, Name: "Average water speed", Unit: "m/s"},
	{ID: models.AverageWaterDirection, Name: "Average water direction", Unit: "°"},
}

var byID = func() map[models.ParameterID]*Parameter {
	m := make(map[models.ParameterID]*Parameter, len(parameters))
	for i := range parameters {
		m[parameters[i].ID] = &parameters[i]
	}
	return m
}()

// Lookup returns the parameter definition for id.
func Lookup(id models.ParameterID) (Parameter, bool) {
	p, ok := byID[id]
	if !ok {
		return Parameter{}, false
	}
	return *p, true
}

// All returns every parameter in catalog order.
func All() []Parameter {
	out := make([]Parameter, len(parameters))
	copy(out, parameters)
	return out
}

// Alertable returns the ids of parameters with tier rules, in catalog order.
func Alertable() []models.ParameterID {
	var ids []models.ParameterID
	for _, p := range parameters {
		if p.Alertable() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Monitored returns the ids shown on the stream feed.
func Monitored() []models.ParameterID {
	var ids []models.ParameterID
	for _, p := range parameters {
		if p.Normal != nil {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Name returns the display name of id, or id itself when unknown.
func Name(id models.ParameterID) string {
	if p, ok := byID[id]; ok {
		return p.Name
	}
	return string(id)
}

func Unit(id models.ParameterID) string {
	if p, ok := byID[id]; ok {
		return p.Unit
	}
	return ""
}

// RuleSet is the JSON form of the tier table, keyed by parameter then tier.
func RuleSet() map[models.ParameterID]map[string]models.Thresholds {
	out := make(map[models.ParameterID]map[string]models.Thresholds)
	for _, p := range parameters {
		if !p.Alertable() {
			continue
		}
		tiers := make(map[string]models.Thresholds, len(p.Rules))
		for tier, b := range p.Rules {
			tiers[tier.String()] = b.Thresholds()
		}
		out[p.ID] = tiers
	}
	return out
}
