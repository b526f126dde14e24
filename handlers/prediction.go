package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"water-quality-monitor/cache"
	"water-quality-monitor/catalog"
	"water-quality-monitor/forecast"
	"water-quality-monitor/models"
)

const (
	defaultHorizon = 24
	maxHorizon     = 24 * 30
)

// parseHorizon accepts a JSON number or numeric string; empty means 24.
func parseHorizon(n json.Number) (int, error) {
	if n == "" {
		return defaultHorizon, nil
	}
	h, err := strconv.Atoi(n.String())
	if err != nil || h <= 0 {
		return 0, forecast.ErrInvalidHorizon
	}
	if h > maxHorizon {
		return 0, fmt.Errorf("forecast horizon must not exceed %d hours", maxHorizon)
	}
	return h, nil
}

// forecastError maps forecast errors to a response.
func (a *API) forecastError(w http.ResponseWriter, param models.ParameterID, err error) {
	switch {
	case errors.Is(err, forecast.ErrUnknownParameter):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parameter %s does not exist", param))
	case errors.Is(err, forecast.ErrInsufficientData):
		writeError(w, http.StatusBadRequest, "insufficient valid data")
	case errors.Is(err, forecast.ErrInvalidHorizon), errors.Is(err, forecast.ErrUnknownModel):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Error("Forecast failed", zap.String("parameter", string(param)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "forecast failed: "+err.Error())
	}
}

type timestampRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (a *API) HandlePredictionStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	if len(snap.Readings) == 0 {
		writeError(w, http.StatusBadRequest, "data not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"status":     "success",
		"records":    len(snap.Readings),
		"generation": snap.Generation,
		"loaded_at":  snap.LoadedAt.UTC().Format(time.RFC3339),
		"timestamp_range": timestampRange{
			Start: snap.Readings[0].Timestamp.Format(models.TimeLayout),
			End:   snap.Readings[len(snap.Readings)-1].Timestamp.Format(models.TimeLayout),
		},
	})
}

type forecastableParameter struct {
	ID        models.ParameterID `json:"id"`
	Name      string             `json:"name"`
	Unit      string             `json:"unit"`
	DataCount int                `json:"data_count"`
}

// HandlePredictionParameters lists parameters with more than MinRows samples.
func (a *API) HandlePredictionParameters(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	if len(snap.Readings) == 0 {
		writeError(w, http.StatusBadRequest, "data not loaded")
		return
	}
	params := make([]forecastableParameter, 0)
	for _, p := range catalog.All() {
		if !models.HasField(p.ID) {
			continue
		}
		if n := len(models.Values(snap.Readings, p.ID)); n > forecast.MinRows {
			params = append(params, forecastableParameter{ID: p.ID, Name: p.Name, Unit: p.Unit, DataCount: n})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "parameters": params})
}

func (a *API) HandleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := a.store.Reload(r.Context())
	if err != nil {
		a.logger.Error("Reload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reload data: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("reloaded %d records", len(snap.Readings)),
		"generation": snap.Generation,
	})
}

type singleRequest struct {
	Parameter models.ParameterID `json:"parameter"`
	Model     string             `json:"model"`
	Hours     json.Number        `json:"hours"`
}

type singleResponse struct {
	Success bool `json:"success"`
	*forecast.Result
}

func (a *API) HandleSinglePrediction(w http.ResponseWriter, r *http.Request) {
	var req singleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	kind, err := forecast.ParseModelKind(req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hours, err := parseHorizon(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	key := cache.Key{Generation: snap.Generation, Parameter: req.Parameter, Model: kind, Hours: hours}
	if res := a.cachedForecast(r, key); res != nil {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, singleResponse{Success: true, Result: res})
		return
	}

	ds, err := forecast.Build(req.Parameter, snap.Readings)
	if err != nil {
		a.forecastError(w, req.Parameter, err)
		return
	}
	start := time.Now()
	res, err := a.trainer.TrainAndForecast(ds, kind, hours)
	forecastTrainingSeconds.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		a.forecastError(w, req.Parameter, err)
		return
	}

	if a.cache != nil {
		if err := a.cache.SaveForecast(r.Context(), key, res); err != nil {
			a.logger.Warn("Failed to cache forecast", zap.String("key", key.String()), zap.Error(err))
		}
	}
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, singleResponse{Success: true, Result: res})
}

func (a *API) cachedForecast(r *http.Request, key cache.Key) *forecast.Result {
	if a.cache == nil {
		return nil
	}
	res, err := a.cache.GetForecast(r.Context(), key)
	if err != nil {
		a.logger.Warn("Forecast cache lookup failed", zap.String("key", key.String()), zap.Error(err))
		return nil
	}
	return res
}

type multiRequest struct {
	Parameters []models.ParameterID `json:"parameters"`
	Hours      json.Number          `json:"hours"`
}

// HandleMultiPrediction runs the ensemble model for every requested
// parameter, leaving out the ones that cannot be forecast.
func (a *API) HandleMultiPrediction(w http.ResponseWriter, r *http.Request) {
	var req multiRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	hours, err := parseHorizon(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}

	start := time.Now()
	results, err := a.engine.ForecastMany(r.Context(), snap.Readings, req.Parameters, forecast.Ensemble, hours)
	forecastTrainingSeconds.WithLabelValues("multi_" + forecast.Ensemble.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		a.forecastError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
}

type exportRequest struct {
	Predictions struct {
		Single *struct {
			Predictions []models.TimeValue `json:"predictions"`
		} `json:"single"`
		Multi *struct {
			Parameters []models.ParameterID                              `json:"parameters"`
			Results    map[models.ParameterID]forecast.ParameterForecast `json:"results"`
		} `json:"multi"`
	} `json:"predictions"`
}

// HandleExport turns a previously returned forecast into a CSV download.
// Multi exports follow "parameters" for column order, else sorted ids.
func (a *API) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var buf bytes.Buffer
	switch p := req.Predictions; {
	case p.Single != nil:
		if err := forecast.WriteSingleCSV(&buf, p.Single.Predictions); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case p.Multi != nil:
		series := make(map[models.ParameterID][]models.TimeValue, len(p.Multi.Results))
		for id, res := range p.Multi.Results {
			series[id] = res.Predictions
		}
		if err := forecast.WriteMultiCSV(&buf, p.Multi.Parameters, series); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	default:
		writeError(w, http.StatusBadRequest, `predictions must contain "single" or "multi"`)
		return
	}

	name := fmt.Sprintf("water_quality_predictions_%s.csv", a.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
