package analytics

import "math"

// RollingWindow keeps the last windowSize samples of one parameter.
type RollingWindow struct {
	windowSize int
	values     []float64
	index      int
	count      int
	sum        float64
}

func NewRollingWindow(size int) *RollingWindow {
	if size < 1 {
		size = 1
	}
	return &RollingWindow{
		windowSize: size,
		values:     make([]float64, size),
	}
}

func (rw *RollingWindow) Add(value float64) {
	if rw.count < rw.windowSize {
		rw.count++
	} else {
		rw.sum -= rw.values[rw.index]
	}
	rw.values[rw.index] = value
	rw.sum += value
	rw.index = (rw.index + 1) % rw.windowSize
}

func (rw *RollingWindow) Len() int {
	return rw.count
}

func (rw *RollingWindow) Average() float64 {
	if rw.count == 0 {
		return 0.0
	}
	return rw.sum / float64(rw.count)
}

// StdDev is the population standard deviation of the window.
func (rw *RollingWindow) StdDev() float64 {
	if rw.count < 2 {
		return 0.0
	}
	avg := rw.Average()
	var variance float64
	for _, v := range rw.GetValues() {
		diff := v - avg
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(rw.count))
}

// GetValues returns the samples oldest first.
func (rw *RollingWindow) GetValues() []float64 {
	out := make([]float64, 0, rw.count)
	if rw.count < rw.windowSize {
		return append(out, rw.values[:rw.count]...)
	}
	out = append(out, rw.values[rw.index:]...)
	return append(out, rw.values[:rw.index]...)
}
