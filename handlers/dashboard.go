package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"water-quality-monitor/analytics"
	"water-quality-monitor/models"
)

func (a *API) HandleStreamData(w http.ResponseWriter, r *http.Request) {
	limit := analytics.DefaultStreamLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	points := analytics.StreamFeed(snap.Readings, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    points,
		"total":   len(points),
	})
}

func (a *API) HandleLatestData(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	latest := snap.Latest()
	if latest == nil {
		writeError(w, http.StatusNotFound, "no data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": latest})
}

// HandleHealthScore scores a JSON object of parameter => value. Values that
// do not convert to a number are ignored.
func (a *API) HandleHealthScore(w http.ResponseWriter, r *http.Request) {
	var body map[models.ParameterID]any
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	values := make(map[models.ParameterID]*float64, len(body))
	for id, raw := range body {
		if v, ok := models.ToFloat(raw); ok {
			values[id] = models.Float(v)
		}
	}
	report, err := analytics.HealthScore(values)
	if errors.Is(err, analytics.ErrNoData) {
		writeError(w, http.StatusBadRequest, "no scorable parameters supplied")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*analytics.HealthReport
	}{true, report})
}
