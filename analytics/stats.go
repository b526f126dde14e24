package analytics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

var (
	ErrNoData           = errors.New("no data")
	ErrInsufficientData = errors.New("insufficient data")
)

const (
	trendDailyDays     = 30
	correlationRows    = 500
	correlationMinRows = 10
)

type Overview struct {
	AvgTemperature float64 `json:"avg_temperature"`
	AvgOxygen      float64 `json:"avg_oxygen"`
	AvgPH          float64 `json:"avg_ph"`
	TotalRecords   int     `json:"total_records"`
}

// Summarize averages the daily means of temperature, dissolved oxygen and pH.
// Parameters without any samples report 0.
func Summarize(readings []models.Reading) (Overview, error) {
	if len(readings) == 0 {
		return Overview{}, ErrNoData
	}
	daily := AggregateDaily(readings, models.Temperature, models.DissolvedOxygen, models.PH)
	return Overview{
		AvgTemperature: models.Round(meanOrZero(daily.Present(models.Temperature)), 1),
		AvgOxygen:      models.Round(meanOrZero(daily.Present(models.DissolvedOxygen)), 1),
		AvgPH:          models.Round(meanOrZero(daily.Present(models.PH)), 2),
		TotalRecords:   len(readings),
	}, nil
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

var trendParams = []models.ParameterID{
	models.Temperature, models.DissolvedOxygen, models.PH, models.Turbidity, models.Chlorophyll,
}

// Trend aggregates readings by day (last 30 days) or by month, two decimals.
func Trend(readings []models.Reading, g Granularity) (*Aggregate, error) {
	if len(readings) == 0 {
		return nil, ErrNoData
	}
	agg := AggregateBy(readings, g, trendParams...)
	if g == Daily {
		agg = agg.Tail(trendDailyDays)
	}
	return agg.Rounded(2), nil
}

type Distribution struct {
	Categories []string            `json:"categories"`
	Parameters []models.ParameterID `json:"parameters"`
	Min        []*float64          `json:"min"`
	Avg        []*float64          `json:"avg"`
	Max        []*float64          `json:"max"`
}

var distributionParams = []models.ParameterID{
	models.Temperature, models.DissolvedOxygen, models.PH, models.Turbidity,
}

func Distribute(readings []models.Reading) (*Distribution, error) {
	if len(readings) == 0 {
		return nil, ErrNoData
	}
	d := &Distribution{}
	for _, id := range distributionParams {
		d.Categories = append(d.Categories, catalog.Name(id))
		d.Parameters = append(d.Parameters, id)

		values := models.Values(readings, id)
		if len(values) == 0 {
			d.Min = append(d.Min, nil)
			d.Avg = append(d.Avg, nil)
			d.Max = append(d.Max, nil)
			continue
		}
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		d.Min = append(d.Min, models.Float(models.Round(lo, 2)))
		d.Avg = append(d.Avg, models.Float(models.Round(stat.Mean(values, nil), 2)))
		d.Max = append(d.Max, models.Float(models.Round(hi, 2)))
	}
	return d, nil
}

type CorrelationMatrix struct {
	Parameters []string             `json:"parameters"`
	IDs        []models.ParameterID `json:"ids"`
	Matrix     [][]float64          `json:"matrix"`
	Rows       int                  `json:"rows"`
}

// Correlate computes the Pearson correlation between the main parameters
// over readings where all of them are present.
func Correlate(readings []models.Reading) (*CorrelationMatrix, error) {
	ids := distributionParams
	columns := make([][]float64, len(ids))
	rows := 0
	for i := range readings {
		if rows == correlationRows {
			break
		}
		row := make([]float64, len(ids))
		complete := true
		for j, id := range ids {
			v, ok := readings[i].Value(id)
			if !ok {
				complete = false
				break
			}
			row[j] = v
		}
		if !complete {
			continue
		}
		for j := range ids {
			columns[j] = append(columns[j], row[j])
		}
		rows++
	}
	if rows < correlationMinRows {
		return nil, ErrInsufficientData
	}

	m := &CorrelationMatrix{IDs: ids, Rows: rows, Matrix: make([][]float64, len(ids))}
	for i, id := range ids {
		m.Parameters = append(m.Parameters, catalog.Name(id))
		m.Matrix[i] = make([]float64, len(ids))
		for j := range ids {
			if i == j {
				m.Matrix[i][j] = 1
				continue
			}
			c := stat.Correlation(columns[i], columns[j], nil)
			if math.IsNaN(c) || math.IsInf(c, 0) {
				c = 0
			}
			m.Matrix[i][j] = c
		}
	}
	return m, nil
}

type CalendarEntry struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Calendar reports the mean temperature per month, keyed by the first day.
func Calendar(readings []models.Reading) []CalendarEntry {
	monthly := AggregateBy(readings, Monthly, models.Temperature)
	out := make([]CalendarEntry, 0, monthly.Len())
	for i, month := range monthly.Dates {
		if v := monthly.Means[models.Temperature][i]; v != nil {
			out = append(out, CalendarEntry{Date: month + "-01", Value: models.Round(*v, 1)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
