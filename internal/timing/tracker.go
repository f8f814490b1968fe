package timing

import (
	"sort"
	"sync"
	"time"

	"fiducial-detector/internal/logger"
)

// Span is an operation in flight, returned by Start and closed by End.
type Span struct {
	Operation string
	StartTime time.Time
}

// Stats summarizes the recorded durations of one operation.
type Stats struct {
	Count int
	Total time.Duration
	Mean  time.Duration
	Min   time.Duration
	Max   time.Duration
}

type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	enabled bool
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		enabled: true,
		now:     time.Now,
	}
}

func (tt *Tracker) Start(operation string) Span {
	return Span{Operation: operation, StartTime: tt.now()}
}

// End records the span's duration and returns it. Disabled trackers record nothing.
func (tt *Tracker) End(span Span) time.Duration {
	duration := tt.now().Sub(span.StartTime)

	tt.mu.Lock()
	defer tt.mu.Unlock()
	if !tt.enabled || span.Operation == "" {
		return duration
	}
	tt.timings[span.Operation] = append(tt.timings[span.Operation], duration)
	return duration
}

func (tt *Tracker) Timings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) Stats(operation string) Stats {
	timings := tt.Timings(operation)
	if len(timings) == 0 {
		return Stats{}
	}

	s := Stats{Count: len(timings), Min: timings[0], Max: timings[0]}
	for _, d := range timings {
		s.Total += d
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
	}
	s.Mean = s.Total / time.Duration(s.Count)
	return s
}

// Operations lists recorded operation names in sorted order.
func (tt *Tracker) Operations() []string {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	ops := make([]string, 0, len(tt.timings))
	for op := range tt.timings {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Report logs one line of statistics per operation.
func (tt *Tracker) Report(log logger.Logger) {
	for _, op := range tt.Operations() {
		s := tt.Stats(op)
		fields := map[string]interface{}{
			"operation": op,
			"count":     s.Count,
			"mean_ms":   float64(s.Mean.Microseconds()) / 1000,
			"min_ms":    float64(s.Min.Microseconds()) / 1000,
			"max_ms":    float64(s.Max.Microseconds()) / 1000,
		}
		if s.Total > 0 {
			fields["per_second"] = float64(s.Count) / s.Total.Seconds()
		}
		log.Info("TimingTracker", "operation timings", fields)
	}
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}
