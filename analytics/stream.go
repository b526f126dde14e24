package analytics

import (
	"water-quality-monitor/catalog"
	"water-quality-monitor/models"
)

const DefaultStreamLimit = 50

const (
	StatusNormal  = "normal"
	StatusWarning = "warning"
)

type StreamPoint struct {
	Timestamp string             `json:"timestamp"`
	Parameter models.ParameterID `json:"parameter"`
	Name      string             `json:"name"`
	Value     float64            `json:"value"`
	Status    string             `json:"status"`
	Unit      string             `json:"unit"`
	Anomaly   bool               `json:"is_anomaly"`
	ZScore    float64            `json:"z_score"`
}

// StreamFeed describes the latest limit readings, newest first, one point per
// present monitored parameter. readings must be sorted by timestamp. The
// anomaly detectors are warmed up on the readings preceding the feed.
func StreamFeed(readings []models.Reading, limit int) []StreamPoint {
	if limit <= 0 {
		limit = DefaultStreamLimit
	}
	params := catalog.Monitored()

	start := len(readings) - limit
	if start < 0 {
		start = 0
	}
	warmup := start - defaultAnomalyWindow
	if warmup < 0 {
		warmup = 0
	}

	detectors := make(map[models.ParameterID]*AnomalyDetector, len(params))
	for _, id := range params {
		detectors[id] = NewAnomalyDetector(defaultAnomalyWindow, defaultAnomalyThreshold)
	}

	var feed [][]StreamPoint
	for i := warmup; i < len(readings); i++ {
		r := &readings[i]
		var points []StreamPoint
		for _, id := range params {
			v, ok := r.Value(id)
			if !ok {
				continue
			}
			anomaly, z := detectors[id].Detect(v)
			if i < start {
				continue
			}
			p, _ := catalog.Lookup(id)
			status := StatusNormal
			if !p.Normal.Contains(v) {
				status = StatusWarning
			}
			points = append(points, StreamPoint{
				Timestamp: r.Timestamp.Format("2006-01-02T15:04:05"),
				Parameter: id,
				Name:      p.Name,
				Value:     v,
				Status:    status,
				Unit:      p.Unit,
				Anomaly:   anomaly,
				ZScore:    models.Round(z, 3),
			})
		}
		if i >= start {
			feed = append(feed, points)
		}
	}

	out := make([]StreamPoint, 0, len(feed)*len(params))
	for i := len(feed) - 1; i >= 0; i-- {
		out = append(out, feed[i]...)
	}
	return out
}
