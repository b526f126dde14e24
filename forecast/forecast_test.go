package forecast

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"water-quality-monitor/models"
)

// spaced builds n readings step apart ending at last, with
// temperature = f(index).
func spaced(last time.Time, n int, step time.Duration, f func(i int) float64) []models.Reading {
	out := make([]models.Reading, n)
	for i := 0; i < n; i++ {
		out[i] = models.Reading{
			Timestamp:   last.Add(-time.Duration(n-1-i) * step),
			Temperature: models.Float(f(i)),
		}
	}
	return out
}

func hourly(last time.Time, n int, f func(i int) float64) []models.Reading {
	return spaced(last, n, time.Hour, f)
}

func TestBuild_MinimumRows(t *testing.T) {
	last := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := Build(models.Temperature, hourly(last, 9, func(i int) float64 { return 20 }))
	assert.ErrorIs(t, err, ErrInsufficientData)

	ds, err := Build(models.Temperature, hourly(last, 10, func(i int) float64 { return 20 }))
	require.NoError(t, err)
	assert.Equal(t, 10, ds.Len())
}

func TestBuild_DropsMissingAndSorts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday
	var readings []models.Reading
	for i := 11; i >= 0; i-- {
		r := models.Reading{Timestamp: base.Add(time.Duration(i) * 13 * time.Hour)}
		if i != 4 {
			r.PH = models.Float(7 + float64(i)/10)
		}
		readings = append(readings, r)
	}
	readings = append(readings, models.Reading{PH: models.Float(9)})

	ds, err := Build(models.PH, readings)
	require.NoError(t, err)
	require.Equal(t, 11, ds.Len())

	for i := 1; i < ds.Len(); i++ {
		assert.True(t, ds.Times[i].After(ds.Times[i-1]))
		assert.Equal(t, float64(i), ds.X[i][featureIndex])
	}
	assert.Equal(t, []float64{0, 0, 0}, ds.X[0])
	// 13h later: Monday 13:00
	assert.Equal(t, []float64{13, 0, 1}, ds.X[1])
	// 26h later: Tuesday 02:00
	assert.Equal(t, []float64{2, 1, 2}, ds.X[2])
	assert.InDelta(t, 7.5, ds.Y[4], 1e-9)
}

func TestBuild_UnknownParameter(t *testing.T) {
	_, err := Build("conductivity", nil)
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestWeekday(t *testing.T) {
	monday := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, weekday(monday.AddDate(0, 0, i)))
	}
}

func TestTrainTestSplit(t *testing.T) {
	train, test := trainTestSplit(10, 0.2, 42)
	assert.Len(t, train, 8)
	assert.Len(t, test, 2)

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	train2, test2 := trainTestSplit(10, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, test = trainTestSplit(11, 0.2, 42)
	assert.Len(t, test, 3)
}

func TestLinearRegression_ExactFit(t *testing.T) {
	X := [][]float64{{1, 0, 0}, {5, 1, 1}, {3, 2, 2}, {9, 3, 3}, {2, 4, 4}, {7, 5, 5}}
	y := make([]float64, len(X))
	for i, x := range X {
		y[i] = 1 + 0.5*x[0] - 2*x[1] + 3*x[2]
	}
	var m LinearRegression
	require.NoError(t, m.Fit(X, y))
	assert.InDelta(t, 1.0, m.Intercept, 1e-9)
	assert.InDelta(t, 0.5, m.Coef[0], 1e-9)
	assert.InDelta(t, 1.0, m.Coef[1]+m.Coef[2], 1e-9)
	assert.InDelta(t, 1+0.5*4+1.0*10, m.Predict([]float64{4, 10, 10}), 1e-9)
}

func TestLinearRegression_RankDeficient(t *testing.T) {
	// hour moves in lockstep with the index and the weekday is constant
	X := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range X {
		X[i] = []float64{float64(8 + i), 2, float64(i)}
		y[i] = 3*float64(i) + 1
	}
	var m LinearRegression
	require.NoError(t, m.Fit(X, y))
	assert.InDelta(t, 0.0, m.Coef[1], 1e-9)
	assert.InDelta(t, 1.5, m.Coef[0], 1e-9)
	assert.InDelta(t, 1.5, m.Coef[2], 1e-9)
	for i := range X {
		assert.InDelta(t, y[i], m.Predict(X[i]), 1e-9)
	}
}

func TestLinearRegression_ConstantFeatures(t *testing.T) {
	X := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	var m LinearRegression
	require.NoError(t, m.Fit(X, []float64{2, 4, 6}))
	assert.InDelta(t, 4.0, m.Predict([]float64{9, 9, 9}), 1e-9)
}

func stepData(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = []float64{0, 0, float64(i)}
		if i >= n/2 {
			y[i] = 10
		}
	}
	return X, y
}

func TestRandomForest_FitsStep(t *testing.T) {
	X, y := stepData(20)
	f := NewRandomForest(100, 10, 42)
	require.NoError(t, f.Fit(X, y))

	assert.InDelta(t, 0.0, f.Predict([]float64{0, 0, -5}), 0.5)
	assert.InDelta(t, 10.0, f.Predict([]float64{0, 0, 100}), 0.5)
}

func TestRandomForest_Deterministic(t *testing.T) {
	X, y := stepData(30)
	for i := range y {
		y[i] += math.Sin(float64(i))
	}
	a := NewRandomForest(20, 4, 7)
	b := NewRandomForest(20, 4, 7)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	for _, x := range [][]float64{{0, 0, 3.5}, {0, 0, 14.2}, {0, 0, 40}} {
		assert.Equal(t, a.Predict(x), b.Predict(x))
	}
}

func TestR2Score(t *testing.T) {
	assert.Equal(t, 1.0, r2Score([]float64{1, 2, 3}, []float64{1, 2, 3}))
	assert.InDelta(t, 0.75, r2Score([]float64{1, 2, 3}, []float64{1.5, 2, 2.5}), 1e-9)
	assert.Equal(t, 1.0, r2Score([]float64{4, 4}, []float64{4, 4}))
	assert.Equal(t, 0.0, r2Score([]float64{4, 4}, []float64{3, 5}))
}

func TestTrainAndForecast_HourlyHorizon(t *testing.T) {
	// five-hour spacing keeps hour, weekday and index linearly independent
	last := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	ds, err := Build(models.Temperature, spaced(last, 24, 5*time.Hour, func(i int) float64 { return 10 + 0.5*float64(i) }))
	require.NoError(t, err)

	res, err := NewTrainer(DefaultModelConfig()).TrainAndForecast(ds, Linear, 24)
	require.NoError(t, err)

	require.Len(t, res.Predictions, 24)
	assert.Equal(t, "2024-01-10 01:00:00", res.Predictions[0].Time)
	assert.Equal(t, "2024-01-11 00:00:00", res.Predictions[23].Time)

	prev := last
	for i, p := range res.Predictions {
		ts, err := time.Parse(models.TimeLayout, p.Time)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, ts.Sub(prev))
		prev = ts
		assert.InDelta(t, 10+0.5*float64(23+i+1), p.Value, 1e-6)
	}

	assert.InDelta(t, 0.0, res.Performance.MSE, 1e-9)
	assert.InDelta(t, 0.0, res.Performance.MAE, 1e-6)
	assert.InDelta(t, 1.0, res.Performance.R2, 1e-9)
	assert.Equal(t, "linear", res.ModelType)
	assert.Len(t, res.History, 24)
}

func TestTrainAndForecast_Deterministic(t *testing.T) {
	last := time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC)
	readings := hourly(last, 60, func(i int) float64 { return 20 + 3*math.Sin(float64(i)/4) })
	ds, err := Build(models.Temperature, readings)
	require.NoError(t, err)

	trainer := NewTrainer(DefaultModelConfig())
	for _, kind := range []ModelKind{Linear, Ensemble} {
		a, err := trainer.TrainAndForecast(ds, kind, 12)
		require.NoError(t, err)
		b, err := trainer.TrainAndForecast(ds, kind, 12)
		require.NoError(t, err)
		assert.Equal(t, a, b, kind.String())

		for _, v := range []float64{a.Performance.MSE, a.Performance.R2, a.Performance.MAE} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func TestTrainAndForecast_Errors(t *testing.T) {
	trainer := NewTrainer(DefaultModelConfig())
	_, err := trainer.TrainAndForecast(&Dataset{}, Linear, 24)
	assert.ErrorIs(t, err, ErrInsufficientData)

	last := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	ds, err := Build(models.Temperature, hourly(last, 12, func(i int) float64 { return 1 }))
	require.NoError(t, err)
	_, err = trainer.TrainAndForecast(ds, Linear, 0)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
	_, err = trainer.TrainAndForecast(ds, ModelKind(9), 5)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestParseModelKind(t *testing.T) {
	k, err := ParseModelKind("")
	require.NoError(t, err)
	assert.Equal(t, Linear, k)

	k, err = ParseModelKind("random_forest")
	require.NoError(t, err)
	assert.Equal(t, Ensemble, k)

	_, err = ParseModelKind("xgboost")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestEngine_ForecastMany(t *testing.T) {
	last := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	readings := hourly(last, 30, func(i int) float64 { return 20 + float64(i%5) })
	for i := 0; i < 5; i++ {
		readings[i].PH = models.Float(7)
	}

	engine := NewEngine(NewTrainer(DefaultModelConfig()), 4, zap.NewNop())
	out, err := engine.ForecastMany(context.Background(), readings,
		[]models.ParameterID{models.Temperature, models.PH, "unknown", models.Temperature}, Ensemble, 6)
	require.NoError(t, err)

	require.Len(t, out, 1)
	require.Contains(t, out, models.Temperature)
	assert.Len(t, out[models.Temperature].Predictions, 6)
}

func TestEngine_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := NewEngine(NewTrainer(DefaultModelConfig()), 2, zap.NewNop())
	_, err := engine.ForecastMany(ctx, nil, []models.ParameterID{models.Temperature}, Linear, 6)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngine_ClampsWorkers(t *testing.T) {
	assert.Equal(t, maxWorkers, NewEngine(nil, 100, zap.NewNop()).Workers())
	assert.Equal(t, 3, NewEngine(nil, 3, zap.NewNop()).Workers())
	assert.Greater(t, NewEngine(nil, 0, zap.NewNop()).Workers(), 0)
}

func TestWriteSingleCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSingleCSV(&buf, []models.TimeValue{
		{Time: "2024-01-10 01:00:00", Value: 7.25},
		{Time: "2024-01-10 02:00:00", Value: 8},
	})
	require.NoError(t, err)
	assert.Equal(t, "Time,Predicted_Value\n2024-01-10 01:00:00,7.25\n2024-01-10 02:00:00,8\n", buf.String())
}

func TestWriteMultiCSV(t *testing.T) {
	results := map[models.ParameterID][]models.TimeValue{
		models.Temperature: {{Time: "2024-01-10 01:00:00", Value: 20.5}, {Time: "2024-01-10 02:00:00", Value: 21}},
		models.PH:          {{Time: "2024-01-10 01:00:00", Value: 7.1}, {Time: "2024-01-10 02:00:00", Value: 7.2}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMultiCSV(&buf, []models.ParameterID{models.Temperature, models.PH}, results))
	assert.Equal(t, "Time,temperature,ph\n2024-01-10 01:00:00,20.5,7.1\n2024-01-10 02:00:00,21,7.2\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteMultiCSV(&buf, nil, results))
	assert.Equal(t, "Time,ph,temperature\n2024-01-10 01:00:00,7.1,20.5\n2024-01-10 02:00:00,7.2,21\n", buf.String())

	results[models.PH] = results[models.PH][:1]
	buf.Reset()
	assert.Error(t, WriteMultiCSV(&buf, []models.ParameterID{models.Temperature, models.PH}, results))
}
