package pipeline

import (
	"slices"
	"sync"
	"time"
)

type docSample struct {
	at       time.Time
	took     time.Duration
	failed   bool
	numLines int
}

// StatsSnapshot aggregates the documents processed within the window.
type StatsSnapshot struct {
	Documents int     `json:"documents"`
	Failed    int     `json:"failed"`
	AvgLines  float64 `json:"avg_lines"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// LatencyStats keeps per-document extraction timings for a rolling window.
// It is safe for concurrent use.
type LatencyStats struct {
	mu      sync.Mutex
	samples []docSample
	window  time.Duration
	now     func() time.Time
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{
		samples: make([]docSample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Observe records one processed document.
func (s *LatencyStats) Observe(r Result) {
	took := max(r.Duration, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, docSample{
		at:       now,
		took:     took,
		failed:   r.Err != nil,
		numLines: r.Lines,
	})
}

func (s *LatencyStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	ms := make([]int64, 0, len(s.samples))
	var sumMs int64
	var lines, failed int
	for _, sm := range s.samples {
		v := sm.took.Milliseconds()
		ms = append(ms, v)
		sumMs += v
		lines += sm.numLines
		if sm.failed {
			failed++
		}
	}
	slices.Sort(ms)

	n := float64(len(ms))
	return StatsSnapshot{
		Documents: len(ms),
		Failed:    failed,
		AvgLines:  float64(lines) / n,
		MinMs:     ms[0],
		MaxMs:     ms[len(ms)-1],
		AvgMs:     float64(sumMs) / n,
		P50Ms:     percentile(ms, 50),
		P95Ms:     percentile(ms, 95),
		P99Ms:     percentile(ms, 99),
	}
}

func (s *LatencyStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm docSample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[lo+1])-float64(sorted[lo]))*frac
}
