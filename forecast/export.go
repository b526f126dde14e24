package forecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"water-quality-monitor/models"
)

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSingleCSV writes "Time,Predicted_Value" followed by one row per point.
func WriteSingleCSV(w io.Writer, predictions []models.TimeValue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Time", "Predicted_Value"}); err != nil {
		return err
	}
	for _, p := range predictions {
		if err := cw.Write([]string{p.Time, formatValue(p.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMultiCSV writes one column per parameter in order, rows aligned with
// the first parameter's timestamps. An empty order uses the sorted ids.
func WriteMultiCSV(w io.Writer, order []models.ParameterID, results map[models.ParameterID][]models.TimeValue) error {
	if len(order) == 0 {
		for id := range results {
			order = append(order, id)
		}
		sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	}
	columns := make([]models.ParameterID, 0, len(order))
	for _, id := range order {
		if _, ok := results[id]; ok {
			columns = append(columns, id)
		}
	}

	cw := csv.NewWriter(w)
	header := []string{"Time"}
	for _, id := range columns {
		header = append(header, string(id))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	if len(columns) > 0 {
		times := results[columns[0]]
		for i, first := range times {
			row := []string{first.Time}
			for _, id := range columns {
				series := results[id]
				if i >= len(series) {
					return fmt.Errorf("parameter %s has %d predictions, want %d", id, len(series), len(times))
				}
				row = append(row, formatValue(series[i].Value))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
