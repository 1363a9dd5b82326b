package chunkuploader

import (
	"sync"
	"time"
)

// Stats accumulates completed chunk requests. Safe for concurrent use.
type Stats struct {
	mu    sync.Mutex
	total StatsSnapshot
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Chunks int64
	Bytes  int64
	// RequestTime is the summed duration of the chunk requests. Parallel
	// requests overlap, so it can exceed the wall-clock time of the upload.
	RequestTime time.Duration
}

// Record adds a completed chunk request of size bytes that took d.
func (s *Stats) Record(d time.Duration, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total.Chunks++
	s.total.Bytes += size
	s.total.RequestTime += d
}

// Snapshot returns the totals recorded so far.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Average is the mean duration of a chunk request.
func (s StatsSnapshot) Average() time.Duration {
	if s.Chunks == 0 {
		return 0
	}
	return s.RequestTime / time.Duration(s.Chunks)
}

// BytesPerSecond is the per-request throughput, not the wall-clock one.
func (s StatsSnapshot) BytesPerSecond() float64 {
	if s.RequestTime <= 0 {
		return 0
	}
	return float64(s.Bytes) / s.RequestTime.Seconds()
}
