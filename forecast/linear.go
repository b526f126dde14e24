package forecast

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rankTolerance drops singular values below this fraction of the largest.
const rankTolerance = 1e-10

// LinearRegression is ordinary least squares with an intercept. The
// coefficients are the minimum-norm solution, so collinear or constant
// features (all rows on one weekday, say) still fit.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
}

func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return errors.New("forecast: linear fit needs matching non-empty X and y")
	}
	p := len(X[0])

	xMean := make([]float64, p)
	column := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		xMean[j] = stat.Mean(column, nil)
	}
	yMean := stat.Mean(y, nil)

	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i := range X {
		for j := 0; j < p; j++ {
			a.Set(i, j, X[i][j]-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	m.Coef = make([]float64, p)
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return errors.New("forecast: least squares factorization failed")
	}
	if rank := svd.Rank(rankTolerance); rank > 0 {
		var beta mat.VecDense
		svd.SolveVecTo(&beta, b, rank)
		for j := range m.Coef {
			m.Coef[j] = beta.AtVec(j)
		}
	}

	m.Intercept = yMean
	for j, c := range m.Coef {
		m.Intercept -= c * xMean[j]
	}
	return nil
}

func (m *LinearRegression) Predict(x []float64) float64 {
	v := m.Intercept
	for j, c := range m.Coef {
		v += c * x[j]
	}
	return v
}
