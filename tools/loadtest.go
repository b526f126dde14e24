// Command loadtest drives POST /api/alerts/evaluate with random readings.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// sampleRanges spans values on both sides of the alert tiers.
var sampleRanges = map[string][2]float64{
	"temperature":      {0, 40},
	"dissolved_oxygen": {1, 16},
	"ph":               {5.5, 10},
	"turbidity":        {0, 25},
	"chlorophyll":      {0, 12},
}

type stats struct {
	requests atomic.Int64
	failed   atomic.Int64
	alerts   atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (s *stats) record(d time.Duration) {
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func (s *stats) percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	url := flag.String("url", "http://localhost:8080/api/alerts/evaluate", "evaluate endpoint")
	workers := flag.Int("workers", 50, "concurrent clients")
	duration := flag.Duration("duration", 30*time.Second, "test length")
	flag.Parse()

	if *workers < 1 {
		fmt.Fprintln(os.Stderr, "workers must be positive")
		os.Exit(1)
	}

	fmt.Printf("Load test: %s, %d workers, %v\n", *url, *workers, *duration)

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *workers,
			MaxIdleConnsPerHost: *workers,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	params := make([]string, 0, len(sampleRanges))
	for p := range sampleRanges {
		params = append(params, p)
	}
	sort.Strings(params)

	s := &stats{latencies: make([]time.Duration, 0, 10000)}
	start := time.Now()
	deadline := start.Add(*duration)

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				send(client, *url, params, rng, s)
			}
		}(start.UnixNano() + int64(i))
	}
	wg.Wait()

	report(s, time.Since(start))
}

func send(client *http.Client, url string, params []string, rng *rand.Rand, s *stats) {
	param := params[rng.Intn(len(params))]
	r := sampleRanges[param]
	body, _ := json.Marshal(map[string]any{
		"parameter": param,
		"value":     r[0] + rng.Float64()*(r[1]-r[0]),
		"timestamp": time.Now().Format("2006-01-02 15:04:05"),
	})

	begin := time.Now()
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	latency := time.Since(begin)
	s.requests.Add(1)
	if err != nil {
		s.failed.Add(1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.failed.Add(1)
		return
	}

	var out struct {
		Alert json.RawMessage `json:"alert"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && len(out.Alert) > 0 && string(out.Alert) != "null" {
		s.alerts.Add(1)
	}
	s.record(latency)
}

func report(s *stats, elapsed time.Duration) {
	s.mu.Lock()
	sorted := append([]time.Duration(nil), s.latencies...)
	s.mu.Unlock()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	total := s.requests.Load()
	failed := s.failed.Load()
	var avg time.Duration
	if len(sorted) > 0 {
		var sum time.Duration
		for _, d := range sorted {
			sum += d
		}
		avg = sum / time.Duration(len(sorted))
	}

	fmt.Println("==========================================")
	fmt.Printf("Duration:       %v\n", elapsed)
	fmt.Printf("Requests:       %d\n", total)
	fmt.Printf("Failed:         %d\n", failed)
	fmt.Printf("Alerts raised:  %d\n", s.alerts.Load())
	fmt.Printf("Requests/sec:   %.2f\n", float64(total)/elapsed.Seconds())
	if len(sorted) > 0 {
		fmt.Printf("Latency min/avg/max: %v / %v / %v\n", sorted[0], avg, sorted[len(sorted)-1])
		fmt.Printf("p50 %v  p95 %v  p99 %v\n",
			s.percentile(sorted, 50), s.percentile(sorted, 95), s.percentile(sorted, 99))
	}
	fmt.Println("==========================================")
}
