package analytics

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

type Granularity int

const (
	Daily Granularity = iota
	Monthly
)

// ParseGranularity maps "daily" to Daily and anything else to Monthly.
func ParseGranularity(s string) Granularity {
	if s == "daily" {
		return Daily
	}
	return Monthly
}

func (g Granularity) key(t time.Time) string {
	if g == Daily {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01")
}

func (g Granularity) String() string {
	if g == Daily {
		return "daily"
	}
	return "monthly"
}

// Aggregate holds per-period means. Means[id][i] belongs to Dates[i];
// a nil entry means the parameter had no samples in that period.
type Aggregate struct {
	Dates  []string
	Params []models.ParameterID
	Means  map[models.ParameterID][]*float64
}

// AggregateDaily groups readings by calendar date of their timestamp and
// averages each parameter. With no params, every catalog parameter is used.
func AggregateDaily(readings []models.Reading, params ...models.ParameterID) *Aggregate {
	return AggregateBy(readings, Daily, params...)
}

func AggregateBy(readings []models.Reading, g Granularity, params ...models.ParameterID) *Aggregate {
	if len(params) == 0 {
		for _, p := range catalog.All() {
			params = append(params, p.ID)
		}
	}

	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string][]acc)
	for i := range readings {
		r := &readings[i]
		if r.Timestamp.IsZero() {
			continue
		}
		key := g.key(r.Timestamp)
		cells, ok := groups[key]
		if !ok {
			cells = make([]acc, len(params))
			groups[key] = cells
		}
		for j, id := range params {
			if v, ok := r.Value(id); ok {
				cells[j].sum += v
				cells[j].count++
			}
		}
	}

	dates := make([]string, 0, len(groups))
	for key := range groups {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	agg := &Aggregate{
		Dates:  dates,
		Params: params,
		Means:  make(map[models.ParameterID][]*float64, len(params)),
	}
	for j, id := range params {
		series := make([]*float64, len(dates))
		for i, date := range dates {
			if c := groups[date][j]; c.count > 0 {
				series[i] = models.Float(c.sum / float64(c.count))
			}
		}
		agg.Means[id] = series
	}
	return agg
}

func (a *Aggregate) Len() int {
	return len(a.Dates)
}

// Series returns the means of id aligned with Dates.
func (a *Aggregate) Series(id models.ParameterID) []*float64 {
	return a.Means[id]
}

// Present returns only the non-missing means of id.
func (a *Aggregate) Present(id models.ParameterID) []float64 {
	var out []float64
	for _, v := range a.Means[id] {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Tail keeps the last n periods.
func (a *Aggregate) Tail(n int) *Aggregate {
	if n < 0 || n >= len(a.Dates) {
		return a
	}
	start := len(a.Dates) - n
	out := &Aggregate{
		Dates:  a.Dates[start:],
		Params: a.Params,
		Means:  make(map[models.ParameterID][]*float64, len(a.Means)),
	}
	for id, series := range a.Means {
		out.Means[id] = series[start:]
	}
	return out
}

// Rounded returns a copy with every mean rounded to decimals.
func (a *Aggregate) Rounded(decimals int) *Aggregate {
	out := &Aggregate{
		Dates:  a.Dates,
		Params: a.Params,
		Means:  make(map[models.ParameterID][]*float64, len(a.Means)),
	}
	for id, series := range a.Means {
		rounded := make([]*float64, len(series))
		for i, v := range series {
			if v != nil {
				rounded[i] = models.Float(models.Round(*v, decimals))
			}
		}
		out.Means[id] = rounded
	}
	return out
}

// MarshalJSON renders {"dates": [...], "<param>": [...], ...} in parameter order.
func (a *Aggregate) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"dates":`)
	dates := a.Dates
	if dates == nil {
		dates = []string{}
	}
	b, err := json.Marshal(dates)
	if err != nil {
		return nil, err
	}
	buf.Write(b)
	for _, id := range a.Params {
		key, _ := json.Marshal(string(id))
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		series := a.Means[id]
		if series == nil {
			series = []*float64{}
		}
		if b, err = json.Marshal(series); err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
