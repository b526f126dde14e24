package analytics

import (
	"math"
)

const (
	defaultAnomalyWindow    = 50
	defaultAnomalyThreshold = 2.0 // 2σ
)

// AnomalyDetector flags samples whose z-score against the rolling window
// exceeds threshold. Samples must be fed in chronological order.
type AnomalyDetector struct {
	window    *RollingWindow
	threshold float64
}

func NewAnomalyDetector(windowSize int, threshold float64) *AnomalyDetector {
	if threshold <= 0 {
		threshold = defaultAnomalyThreshold
	}
	return &AnomalyDetector{
		window:    NewRollingWindow(windowSize),
		threshold: threshold,
	}
}

// Detect adds value to the window and reports whether it is anomalous.
func (ad *AnomalyDetector) Detect(value float64) (bool, float64) {
	ad.window.Add(value)

	stdDev := ad.window.StdDev()
	if stdDev == 0 {
		return false, 0.0
	}

	zScore := math.Abs((value - ad.window.Average()) / stdDev)
	return zScore > ad.threshold, zScore
}
