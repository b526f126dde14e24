package models

type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// Thresholds is the display form of a tier's inclusive valid range.
type Thresholds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type Alert struct {
	Parameter    ParameterID `json:"parameter"`
	CurrentValue float64     `json:"current_value"`
	Level        string      `json:"level"`
	Priority     int         `json:"-"`
	Message      string      `json:"message"`
	Timestamp    string      `json:"timestamp"`
	Status       string      `json:"status"`
	Unit         string      `json:"unit"`
	Bound        Bound       `json:"bound"`
	Threshold    float64     `json:"threshold_value"`
	Thresholds   Thresholds  `json:"threshold"`
}

const AlertStatusActive = "active"
