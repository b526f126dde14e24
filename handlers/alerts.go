package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"water-quality-monitor/analytics"
	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

func (a *API) HandleAlertRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"rules":   catalog.RuleSet(),
	})
}

type evaluateRequest struct {
	Parameter models.ParameterID `json:"parameter"`
	Value     any                `json:"value"`
	Timestamp string             `json:"timestamp"`
}

// HandleEvaluate checks one value against the tier rules. Unknown parameters
// and non-numeric values are not errors: they simply raise no alert.
func (a *API) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ts, err := parseTimestamp(req.Timestamp, a.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp")
		return
	}

	alert := analytics.EvaluateRaw(req.Parameter, req.Value, ts)
	if alert != nil {
		alertsRaisedTotal.WithLabelValues(string(alert.Parameter), alert.Level).Inc()
		if err := a.alerts.PublishAlert(r.Context(), alert); err != nil {
			a.logger.Warn("Failed to publish alert",
				zap.String("parameter", string(alert.Parameter)),
				zap.Error(err),
			)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"alert":   alert,
	})
}

func parseTimestamp(s string, now func() time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now(), nil
	}
	if t, err := time.Parse(models.TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (a *API) HandleHistoricalAlerts(w http.ResponseWriter, r *http.Request) {
	limit := analytics.DefaultHistoricalLimit
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
	report := analytics.HistoricalAlerts(snap.Readings, limit)
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		analytics.HistoricalReport
	}{true, report})
}
