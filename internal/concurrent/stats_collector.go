package concurrent

import (
	"sync/atomic"
	"time"

	"cookingsecret/pkg/metrics"
)

type Stats struct {
	Submitted      int64         `json:"submitted"`
	Completed      int64         `json:"completed"`
	Failed         int64         `json:"failed"`
	Rejected       int64         `json:"rejected"`
	AvgProcessTime time.Duration `json:"avg_process_time_ns"`
	QueueLength    int           `json:"queue_length"`
	QueueCapacity  int           `json:"queue_capacity"`
}

// StatsCollector counts job outcomes for a worker pool and mirrors them to
// Prometheus. Only successful jobs contribute to the average duration.
type StatsCollector struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	busyNanos atomic.Int64
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

func (sc *StatsCollector) jobSubmitted() {
	sc.submitted.Add(1)
}

func (sc *StatsCollector) jobRejected() {
	sc.rejected.Add(1)
	metrics.RecordBackgroundJob("rejected", 0)
}

func (sc *StatsCollector) jobFinished(d time.Duration, err error) {
	if err != nil {
		sc.failed.Add(1)
		metrics.RecordBackgroundJob("failed", d)
		return
	}
	sc.completed.Add(1)
	sc.busyNanos.Add(d.Nanoseconds())
	metrics.RecordBackgroundJob("completed", d)
}

func (sc *StatsCollector) GetStats() Stats {
	stats := Stats{
		Submitted: sc.submitted.Load(),
		Completed: sc.completed.Load(),
		Failed:    sc.failed.Load(),
		Rejected:  sc.rejected.Load(),
	}
	if stats.Completed > 0 {
		stats.AvgProcessTime = time.Duration(sc.busyNanos.Load() / stats.Completed)
	}
	return stats
}
