package forecast

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"water-quality-monitor/models"
)

const maxWorkers = 16

// ParameterForecast is one entry of a multi-parameter forecast.
type ParameterForecast struct {
	R2Score     float64            `json:"r2_score"`
	Predictions []models.TimeValue `json:"predictions"`
}

// Engine trains one model per parameter on a bounded pool of workers.
type Engine struct {
	trainer *Trainer
	workers int
	logger  *zap.Logger
}

// NewEngine clamps workers to 1..16; zero means twice the CPU count.
func NewEngine(trainer *Trainer, workers int, logger *zap.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return &Engine{trainer: trainer, workers: workers, logger: logger}
}

func (e *Engine) Workers() int {
	return e.workers
}

type job struct {
	param models.ParameterID
}

type jobResult struct {
	param  models.ParameterID
	result *Result
	err    error
}

// ForecastMany forecasts every parameter in params with kind. Parameters
// that are unknown or lack data are skipped and logged.
func (e *Engine) ForecastMany(ctx context.Context, readings []models.Reading, params []models.ParameterID, kind ModelKind, horizon int) (map[models.ParameterID]ParameterForecast, error) {
	if horizon <= 0 {
		return nil, ErrInvalidHorizon
	}

	jobs := make(chan job, len(params))
	results := make(chan jobResult, len(params))

	numWorkers := e.workers
	if numWorkers > len(params) {
		numWorkers = len(params)
	}
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- jobResult{param: j.param, err: err}
					continue
				}
				results <- e.process(readings, j, kind, horizon)
			}
		}()
	}

	seen := make(map[models.ParameterID]bool, len(params))
	for _, p := range params {
		if seen[p] {
			continue
		}
		seen[p] = true
		jobs <- job{param: p}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make(map[models.ParameterID]ParameterForecast, len(params))
	for r := range results {
		if r.err != nil {
			if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
				return nil, r.err
			}
			e.logger.Info("Skipping parameter in multi forecast",
				zap.String("parameter", string(r.param)),
				zap.Error(r.err),
			)
			continue
		}
		out[r.param] = ParameterForecast{
			R2Score:     r.result.Performance.R2,
			Predictions: r.result.Predictions,
		}
	}
	return out, nil
}

func (e *Engine) process(readings []models.Reading, j job, kind ModelKind, horizon int) jobResult {
	ds, err := Build(j.param, readings)
	if err != nil {
		return jobResult{param: j.param, err: err}
	}
	res, err := e.trainer.TrainAndForecast(ds, kind, horizon)
	if err != nil {
		return jobResult{param: j.param, err: err}
	}
	return jobResult{param: j.param, result: res}
}
