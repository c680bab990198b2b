package core

import (
	"sync"
	"time"

	"github.com/ArnoldoM23/pess/schema"
)

// latencyAlpha is the smoothing factor for the per-stage moving average latency.
const latencyAlpha = 0.1

type stageCounters struct {
	processed  int64
	failed     int64
	avgLatency time.Duration
}

// stageTracker accumulates per-stage health counters. It is the pipeline's
// only mutable shared state besides the history store, and batch workers
// update it concurrently, so every access goes through the mutex.
type stageTracker struct {
	mu     sync.Mutex
	stages map[schema.Stage]*stageCounters
}

func newStageTracker() *stageTracker {
	t := &stageTracker{}
	t.reset()
	return t
}

func (t *stageTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages = make(map[schema.Stage]*stageCounters, len(schema.PipelineStages))
	for _, stage := range schema.PipelineStages {
		t.stages[stage] = &stageCounters{}
	}
}

func (t *stageTracker) record(stage schema.Stage, success bool, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.stages[stage]
	c.processed++
	if !success {
		c.failed++
	}
	if c.avgLatency == 0 {
		c.avgLatency = latency
	} else {
		c.avgLatency = time.Duration(float64(c.avgLatency)*(1-latencyAlpha) + float64(latency)*latencyAlpha)
	}
}

// health derives the aggregate status: unhealthy if any stage success rate is
// below 0.9, warning below 0.95, else healthy. Stages with no traffic count
// as healthy.
func (t *stageTracker) health() schema.PipelineHealth {
	t.mu.Lock()
	defer t.mu.Unlock()

	overall := schema.HealthyStatus
	snapshot := make([]schema.StageMetrics, 0, len(schema.PipelineStages))

	for _, stage := range schema.PipelineStages {
		c := t.stages[stage]
		rate := 1.0
		if c.processed > 0 {
			rate = float64(c.processed-c.failed) / float64(c.processed)
		}
		snapshot = append(snapshot, schema.StageMetrics{
			Stage:       stage,
			Processed:   c.processed,
			Failed:      c.failed,
			SuccessRate: rate,
			AvgLatency:  c.avgLatency,
		})

		switch {
		case rate < 0.9:
			overall = schema.UnhealthyStatus
		case rate < 0.95 && overall == schema.HealthyStatus:
			overall = schema.WarningStatus
		}
	}

	return schema.PipelineHealth{Status: overall, Stages: snapshot}
}
