package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-quality-monitor/models"
)

func TestHistoricalAlerts_OnePerDayNewestFirst(t *testing.T) {
	readings := []models.Reading{
		// day 1: temperature attention, pH critical -> critical pH wins
		{Timestamp: at(1, 6), Temperature: models.Float(29), PH: models.Float(5.5)},
		// day 2: everything normal
		{Timestamp: at(2, 6), Temperature: models.Float(20), PH: models.Float(7.5)},
		// day 3: daily mean of turbidity 12 -> warning
		{Timestamp: at(3, 6), Turbidity: models.Float(10)},
		{Timestamp: at(3, 18), Turbidity: models.Float(14)},
	}

	report := HistoricalAlerts(readings, 0)

	require.Len(t, report.Alerts, 2)
	assert.Equal(t, 2, report.TotalCount)
	assert.Equal(t, "2024-03-01 to 2024-03-03", report.TimeRange)

	assert.Equal(t, models.Turbidity, report.Alerts[0].Parameter)
	assert.Equal(t, "warning", report.Alerts[0].Level)
	assert.Equal(t, "2024-03-03 12:00:00", report.Alerts[0].Timestamp)
	assert.Equal(t, 12.0, report.Alerts[0].CurrentValue)

	assert.Equal(t, models.PH, report.Alerts[1].Parameter)
	assert.Equal(t, "critical", report.Alerts[1].Level)
	assert.Equal(t, "2024-03-01 12:00:00", report.Alerts[1].Timestamp)
}

func TestHistoricalAlerts_TieKeepsCatalogOrder(t *testing.T) {
	readings := []models.Reading{
		{Timestamp: at(1, 6), Temperature: models.Float(1), DissolvedOxygen: models.Float(1)},
	}
	report := HistoricalAlerts(readings, 0)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, models.Temperature, report.Alerts[0].Parameter)
}

func TestHistoricalAlerts_Limit(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	var readings []models.Reading
	for i := 0; i < 60; i++ {
		readings = append(readings, models.Reading{
			Timestamp:   start.AddDate(0, 0, i),
			Chlorophyll: models.Float(11),
		})
	}
	report := HistoricalAlerts(readings, 0)
	require.Len(t, report.Alerts, DefaultHistoricalLimit)
	assert.Equal(t, "2024-02-29 12:00:00", report.Alerts[0].Timestamp)
}

func TestHistoricalAlerts_Empty(t *testing.T) {
	report := HistoricalAlerts(nil, 10)
	assert.Empty(t, report.Alerts)
	assert.NotNil(t, report.Alerts)
	assert.Equal(t, "no data", report.TimeRange)
}
