package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type Performance struct {
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
}

func evaluate(actual, predicted []float64) Performance {
	return Performance{
		MSE: meanSquaredError(actual, predicted),
		R2:  r2Score(actual, predicted),
		MAE: meanAbsoluteError(actual, predicted),
	}
}

func meanSquaredError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual))
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// r2Score is the coefficient of determination. A constant target has no
// variance to explain: a perfect fit scores 1 and anything else 0.
func r2Score(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mean := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		ssRes += r * r
		d := actual[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
