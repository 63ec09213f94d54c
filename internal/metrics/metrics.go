package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// CallbackStats counts reconciliation outcomes of notify/return/cancel
// callbacks since process start.
type CallbackStats struct {
	Completed        Counter
	AlreadyCompleted Counter
	Declined         Counter
	Invalid          Counter
	Failed           Counter
	Cancelled        Counter
	Initiated        Counter

	totalNanos Counter
	timed      Counter
}

// Observe records how long one reconciliation took.
func (s *CallbackStats) Observe(t *Timer) {
	s.totalNanos.Add(uint64(t.Duration()))
	s.timed.Inc()
}

func (s *CallbackStats) Snapshot() map[string]uint64 {
	snap := map[string]uint64{
		"completed":         s.Completed.Load(),
		"already_completed": s.AlreadyCompleted.Load(),
		"declined":          s.Declined.Load(),
		"invalid":           s.Invalid.Load(),
		"failed":            s.Failed.Load(),
		"cancelled":         s.Cancelled.Load(),
		"initiated":         s.Initiated.Load(),
		"avg_reconcile_us":  0,
	}
	if n := s.timed.Load(); n > 0 {
		snap["avg_reconcile_us"] = s.totalNanos.Load() / n / uint64(time.Microsecond)
	}
	return snap
}
