// Package profiler - Per-stage timing for the detection pipeline.
package profiler

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pipeline stage names recorded by the session.
const (
	StagePreprocess = "preprocess"
	StageInference  = "inference"
	StageDecode     = "decode"
	StageCompile    = "compile"
)

// DefaultMaxSamples is the number of durations kept per operation when none is configured.
const DefaultMaxSamples = 600

// Profiler records operation durations. It is safe for concurrent use.
type Profiler struct {
	mu         sync.Mutex
	startTime  time.Time
	maxSamples int
	operations map[string]*TimeTracker
}

// TimeTracker tracks operation timing statistics over a sliding window.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a snapshot of one operation's timings.
type OperationStats struct {
	Name  string
	Count int64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
}

// New creates a profiler that keeps at most maxSamples durations per operation.
//
// Arguments:
// - maxSamples: Window size, DefaultMaxSamples when zero or negative.
//
// Returns:
// - A configured Profiler instance
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}

	return &Profiler{
		startTime:  time.Now(),
		maxSamples: maxSamples,
		operations: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	if p == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one completed operation duration.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operations[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		p.operations[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > p.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Snapshot returns the statistics of every recorded operation, sorted by name.
func (p *Profiler) Snapshot() []OperationStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make([]OperationStats, 0, len(p.operations))
	for name, tracker := range p.operations {
		if len(tracker.durations) == 0 {
			continue
		}
		stats = append(stats, OperationStats{
			Name:  name,
			Count: tracker.count,
			Avg:   tracker.totalTime / time.Duration(len(tracker.durations)),
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Report logs one line per operation plus a memory summary.
func (p *Profiler) Report(logger *logrus.Entry) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	logger.WithFields(logrus.Fields{
		"uptime":     time.Since(p.startTime).Truncate(time.Millisecond),
		"heap_alloc": formatBytes(mem.HeapAlloc),
		"sys":        formatBytes(mem.Sys),
		"gc_cycles":  mem.NumGC,
	}).Info("profiler status")

	for _, s := range p.Snapshot() {
		logger.WithFields(logrus.Fields{
			"operation": s.Name,
			"count":     s.Count,
			"avg":       s.Avg.Truncate(time.Microsecond),
			"min":       s.Min.Truncate(time.Microsecond),
			"max":       s.Max.Truncate(time.Microsecond),
		}).Info("operation timing")
	}
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
