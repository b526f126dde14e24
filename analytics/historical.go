package analytics

import (
	"sort"
	"time"

	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

const DefaultHistoricalLimit = 50

type HistoricalReport struct {
	Alerts     []models.Alert `json:"alerts"`
	TotalCount int            `json:"total_count"`
	DataNote   string         `json:"data_note"`
	TimeRange  string         `json:"time_range"`
}

// HistoricalAlerts evaluates each day's mean of every alertable parameter at
// noon of that day and keeps the most severe alert per day. The result is
// newest first and capped at limit.
func HistoricalAlerts(readings []models.Reading, limit int) HistoricalReport {
	if limit <= 0 {
		limit = DefaultHistoricalLimit
	}

	params := catalog.Alertable()
	daily := AggregateDaily(readings, params...)

	alerts := make([]models.Alert, 0)
	for i, date := range daily.Dates {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		noon := day.Add(12 * time.Hour)

		var dayAlerts []models.Alert
		for _, id := range params {
			if alert := Evaluate(id, daily.Means[id][i], noon); alert != nil {
				dayAlerts = append(dayAlerts, *alert)
			}
		}
		if highest := Highest(dayAlerts); highest != nil {
			alerts = append(alerts, *highest)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Timestamp > alerts[j].Timestamp
	})
	if len(alerts) > limit {
		alerts = alerts[:limit]
	}

	report := HistoricalReport{
		Alerts:     alerts,
		TotalCount: len(alerts),
		DataNote:   "alerts derived from daily mean values",
		TimeRange:  "no data",
	}
	if n := len(daily.Dates); n > 0 {
		report.TimeRange = daily.Dates[0] + " to " + daily.Dates[n-1]
	}
	return report
}
