package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"water-quality-monitor/analytics"
)

// analysisError maps analytics errors to a response.
func (a *API) analysisError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, analytics.ErrNoData):
		writeError(w, http.StatusBadRequest, "no data")
	case errors.Is(err, analytics.ErrInsufficientData):
		writeError(w, http.StatusBadRequest, "insufficient data")
	default:
		a.logger.Error("Analysis failed", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *API) HandleOverview(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	overview, err := analytics.Summarize(snap.Readings)
	if err != nil {
		a.analysisError(w, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "metrics": overview})
}

// HandleTrend takes ?granularity=daily; anything else is monthly.
func (a *API) HandleTrend(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	g := analytics.ParseGranularity(r.URL.Query().Get("granularity"))
	trend, err := analytics.Trend(snap.Readings, g)
	if err != nil {
		a.analysisError(w, "trend", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"granularity": g.String(),
		"trend_data":  trend,
	})
}

func (a *API) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	dist, err := analytics.Distribute(snap.Readings)
	if err != nil {
		a.analysisError(w, "distribution", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "distribution_data": dist})
}

func (a *API) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	m, err := analytics.Correlate(snap.Readings)
	if err != nil {
		a.analysisError(w, "correlation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "correlation_data": m})
}

func (a *API) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	entries := analytics.Calendar(snap.Readings)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"calendar_data": map[string]any{"data": entries},
	})
}
