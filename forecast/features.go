package forecast

import (
	"sort"
	"time"

	"water-quality-monitor/models"
)

const (
	featureHour = iota
	featureWeekday
	featureIndex
	featureCount
)

// Dataset is one parameter's cleaned history, sorted by time, with the
// feature vector (hour, weekday, sequential index) of every row.
type Dataset struct {
	Parameter models.ParameterID
	Times     []time.Time
	X         [][]float64
	Y         []float64
}

// Build selects the present values of id, sorts them by timestamp and
// derives the features. Fewer than MinRows rows is ErrInsufficientData.
func Build(id models.ParameterID, readings []models.Reading) (*Dataset, error) {
	if !models.HasField(id) {
		return nil, ErrUnknownParameter
	}
	samples := models.Samples(readings, id)
	if len(samples) < MinRows {
		return nil, ErrInsufficientData
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})

	ds := &Dataset{
		Parameter: id,
		Times:     make([]time.Time, len(samples)),
		X:         make([][]float64, len(samples)),
		Y:         make([]float64, len(samples)),
	}
	for i, s := range samples {
		ds.Times[i] = s.Time
		ds.X[i] = features(s.Time, float64(i))
		ds.Y[i] = s.Value
	}
	return ds, nil
}

func features(t time.Time, index float64) []float64 {
	x := make([]float64, featureCount)
	x[featureHour] = float64(t.Hour())
	x[featureWeekday] = float64(weekday(t))
	x[featureIndex] = index
	return x
}

// weekday numbers days from Monday=0 to Sunday=6.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func (d *Dataset) Len() int {
	return len(d.Y)
}

func (d *Dataset) LastTime() time.Time {
	return d.Times[len(d.Times)-1]
}

func (d *Dataset) MaxIndex() float64 {
	return d.X[len(d.X)-1][featureIndex]
}

// History returns the last n observations as chart points.
func (d *Dataset) History(n int) []models.TimeValue {
	start := len(d.Y) - n
	if n <= 0 || start < 0 {
		start = 0
	}
	out := make([]models.TimeValue, 0, len(d.Y)-start)
	for i := start; i < len(d.Y); i++ {
		out = append(out, models.NewTimeValue(d.Times[i], d.Y[i]))
	}
	return out
}

func (d *Dataset) subset(idx []int) ([][]float64, []float64) {
	X := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		X[i] = d.X[j]
		y[i] = d.Y[j]
	}
	return X, y
}
