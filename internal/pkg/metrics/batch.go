package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

var (
	batchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_batch_items_total",
			Help: "Employees handled by payroll batch jobs, by outcome.",
		},
		[]string{"job", "outcome"},
	)
	batchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_batch_runs_total",
			Help: "Finished payroll batch job executions, by terminal status.",
		},
		[]string{"job", "status"},
	)
	batchChunkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroll_batch_chunk_duration_seconds",
			Help:    "Time to process and commit one chunk of employees.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
	cronTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroll_cron_ticks_total",
			Help: "Scheduled job ticks, by result: ok, failed or skipped.",
		},
		[]string{"job", "result"},
	)
)

func AddItems(job, outcome string, n int) {
	if n <= 0 {
		return
	}
	batchItemsTotal.WithLabelValues(job, outcome).Add(float64(n))
}

func RecordRun(job, status string) {
	batchRunsTotal.WithLabelValues(job, status).Inc()
}

func ObserveChunk(job string, elapsed time.Duration) {
	batchChunkDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func RecordTick(job, result string) {
	cronTicksTotal.WithLabelValues(job, result).Inc()
}
