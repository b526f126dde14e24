package forecast

import (
	"fmt"
	"time"

	"water-quality-monitor/models"
)

// HistoryPoints is how many observed points a result echoes back.
const HistoryPoints = 100

type Result struct {
	Parameter   models.ParameterID `json:"parameter"`
	ModelType   string             `json:"model_type"`
	Performance Performance        `json:"model_performance"`
	History     []models.TimeValue `json:"history"`
	Predictions []models.TimeValue `json:"predictions"`
}

type Trainer struct {
	cfg ModelConfig
}

func NewTrainer(cfg ModelConfig) *Trainer {
	def := DefaultModelConfig()
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = def.TestFraction
	}
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	return &Trainer{cfg: cfg}
}

func (t *Trainer) Config() ModelConfig {
	return t.cfg
}

// TrainAndForecast fits kind on a seeded 80/20 split of ds, scores it on
// the held-out rows and predicts horizon hourly points after the last
// observation. Identical inputs always give identical results.
func (t *Trainer) TrainAndForecast(ds *Dataset, kind ModelKind, horizon int) (*Result, error) {
	if horizon <= 0 {
		return nil, ErrInvalidHorizon
	}
	if ds == nil || ds.Len() < MinRows {
		return nil, ErrInsufficientData
	}

	trainIdx, testIdx := trainTestSplit(ds.Len(), t.cfg.TestFraction, t.cfg.Seed)
	xTrain, yTrain := ds.subset(trainIdx)
	xTest, yTest := ds.subset(testIdx)

	model, err := newRegressor(kind, t.cfg)
	if err != nil {
		return nil, err
	}
	if err := model.Fit(xTrain, yTrain); err != nil {
		return nil, fmt.Errorf("fit %s model: %w", kind, err)
	}

	last := ds.LastTime()
	maxIndex := ds.MaxIndex()
	predictions := make([]models.TimeValue, horizon)
	for i := 1; i <= horizon; i++ {
		at := last.Add(time.Duration(i) * time.Hour)
		x := features(at, maxIndex+at.Sub(last).Hours())
		predictions[i-1] = models.NewTimeValue(at, model.Predict(x))
	}

	return &Result{
		Parameter:   ds.Parameter,
		ModelType:   kind.String(),
		Performance: evaluate(yTest, predictAll(model, xTest)),
		History:     ds.History(HistoryPoints),
		Predictions: predictions,
	}, nil
}
