package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the wire format for timestamps in responses and CSV exports.
const TimeLayout = "2006-01-02 15:04:05"

type ParameterID string

const (
	Temperature               ParameterID = "temperature"
	DissolvedOxygen           ParameterID = "dissolved_oxygen"
	DissolvedOxygenSaturation ParameterID = "dissolved_oxygen_saturation"
	PH                        ParameterID = "ph"
	Turbidity                 ParameterID = "turbidity"
	Chlorophyll               ParameterID = "chlorophyll"
	Salinity                  ParameterID = "salinity"
	SpecificConductance       ParameterID = "specific_conductance"
	AverageWaterSpeed         ParameterID = "average_water_speed"
	AverageWaterDirection     ParameterID = "average_water_direction"
)

// Reading is one sensor sample. Nil fields are missing measurements.
type Reading struct {
	Timestamp                 time.Time `json:"timestamp"`
	RecordNumber              int64     `json:"record_number"`
	Temperature               *float64  `json:"temperature"`
	DissolvedOxygen           *float64  `json:"dissolved_oxygen"`
	DissolvedOxygenSaturation *float64  `json:"dissolved_oxygen_saturation"`
	PH                        *float64  `json:"ph"`
	Turbidity                 *float64  `json:"turbidity"`
	Chlorophyll               *float64  `json:"chlorophyll"`
	Salinity                  *float64  `json:"salinity"`
	SpecificConductance       *float64  `json:"specific_conductance"`
	AverageWaterSpeed         *float64  `json:"average_water_speed"`
	AverageWaterDirection     *float64  `json:"average_water_direction"`
}

func (r *Reading) field(id ParameterID) *float64 {
	switch id {
	case Temperature:
		return r.Temperature
	case DissolvedOxygen:
		return r.DissolvedOxygen
	case DissolvedOxygenSaturation:
		return r.DissolvedOxygenSaturation
	case PH:
		return r.PH
	case Turbidity:
		return r.Turbidity
	case Chlorophyll:
		return r.Chlorophyll
	case Salinity:
		return r.Salinity
	case SpecificConductance:
		return r.SpecificConductance
	case AverageWaterSpeed:
		return r.AverageWaterSpeed
	case AverageWaterDirection:
		return r.AverageWaterDirection
	}
	return nil
}

// Value returns the measurement for id and whether it is present.
// NaN and infinities count as missing.
func (r *Reading) Value(id ParameterID) (float64, bool) {
	return Present(r.field(id))
}

// HasField reports whether id names a column of Reading.
func HasField(id ParameterID) bool {
	switch id {
	case Temperature, DissolvedOxygen, DissolvedOxygenSaturation, PH, Turbidity,
		Chlorophyll, Salinity, SpecificConductance, AverageWaterSpeed, AverageWaterDirection:
		return true
	}
	return false
}

func (r *Reading) Validate() error {
	if r.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	return nil
}

// Present unwraps an optional measurement.
func Present(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// Float returns a pointer to v, for building readings.
func Float(v float64) *float64 {
	return &v
}

// ToFloat converts loosely typed input (decoded JSON, query strings) into a
// measurement. Anything that is not a finite number yields false.
func ToFloat(raw any) (float64, bool) {
	var v float64
	switch x := raw.(type) {
	case nil:
		return 0, false
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = f
	case *float64:
		return Present(x)
	default:
		return 0, false
	}
	return Present(&v)
}

// Sample is a present (timestamp, value) pair of a single parameter.
type Sample struct {
	Time  time.Time
	Value float64
}

// Samples selects the present values of id, keeping the input order.
func Samples(readings []Reading, id ParameterID) []Sample {
	out := make([]Sample, 0, len(readings))
	for i := range readings {
		if readings[i].Timestamp.IsZero() {
			continue
		}
		if v, ok := readings[i].Value(id); ok {
			out = append(out, Sample{Time: readings[i].Timestamp, Value: v})
		}
	}
	return out
}

// Values is Samples without the timestamps.
func Values(readings []Reading, id ParameterID) []float64 {
	out := make([]float64, 0, len(readings))
	for i := range readings {
		if v, ok := readings[i].Value(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// TimeValue is one point of a chart series or forecast.
type TimeValue struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

func NewTimeValue(t time.Time, v float64) TimeValue {
	return TimeValue{Time: t.Format(TimeLayout), Value: v}
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
