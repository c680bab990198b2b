package core

import (
	"context"
	"sync"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// Pipeline orchestrates the five scoring stages per request and in
// stage-batched mode for batches, and tracks per-stage health counters.
type Pipeline struct {
	ingestor   *Ingestor
	normalizer *Normalizer
	evaluator  *Evaluator
	versioner  *Versioner
	emitter    *Emitter

	store        contract.RecordStore
	storeTimeout time.Duration

	workers int
	metrics *stageTracker
}

// NewPipeline wires the five stages from the validated config and the injected
// dependencies. Store may be nil (persistence disabled), history may be nil,
// and sinks may be empty.
func NewPipeline(cfg *contract.Config, store contract.RecordStore, history contract.HistoryStore, sinks []contract.NotifySink) (*Pipeline, error) {
	versioner, err := NewVersioner(cfg.ScoreVersion, history)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}

	storeTimeout := cfg.PersistTimeout
	if storeTimeout <= 0 {
		storeTimeout = contract.DefaultPersistTimeout
	}

	return &Pipeline{
		ingestor:     NewIngestor(),
		normalizer:   NewNormalizer(),
		evaluator:    NewEvaluator(NewAlgorithm(cfg.ComputedWeights)),
		versioner:    versioner,
		emitter:      NewEmitter(store, sinks, cfg.NotifyTimeout, cfg.PersistTimeout),
		store:        store,
		storeTimeout: storeTimeout,
		workers:      workers,
		metrics:      newStageTracker(),
	}, nil
}

// lookupFeedback returns the caller-supplied feedback, falling back to the
// session's stored feedback when the caller provides none. The lookup rides
// the ingest phase so evaluation itself stays free of I/O; a failed lookup
// only means scoring proceeds without feedback.
func (p *Pipeline) lookupFeedback(ctx context.Context, sessionID string, provided []schema.FeedbackData) []schema.FeedbackData {
	if len(provided) > 0 || p.store == nil {
		return provided
	}

	fbCtx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	stored, err := p.store.GetSessionFeedback(fbCtx, sessionID)
	if err != nil {
		contract.LogWarn("session feedback lookup", err)
		return nil
	}
	return stored
}

// Versioner exposes the pipeline's versioner for version management commands.
func (p *Pipeline) Versioner() *Versioner {
	return p.versioner
}

// Process runs one scoring request through all five stages sequentially.
// A stage error aborts only this request; the returned result records which
// stages completed before the failure.
func (p *Pipeline) Process(ctx context.Context, source schema.SourceTag, payload map[string]any, feedback []schema.FeedbackData) *schema.PipelineResult {
	start := time.Now()
	result := &schema.PipelineResult{Source: source}
	if sid, ok := payload["session_id"].(string); ok {
		result.SessionID = sid
	}

	// Stage 1: Ingest
	in, err := p.runIngest(source, payload, result)
	if err != nil {
		result.Err = err
		result.ProcessingTime = time.Since(start)
		return result
	}
	result.SessionID = in.SessionID
	feedback = p.lookupFeedback(ctx, in.SessionID, feedback)

	// Stage 2: Normalize
	normalized, report := p.runNormalize(in, result)

	// Stage 3: Evaluate
	out := p.runEvaluate(normalized, report, feedback, result)

	// Stage 4: Version
	versioned := p.runVersion(out, result)

	// Stage 5: Emit
	emission := p.runEmit(ctx, versioned, normalized, result)

	result.ScoringID = versioned.ScoringID
	result.FinalScore = versioned.Metrics.FinalScore
	result.Output = versioned
	result.Emission = emission
	result.ProcessingTime = time.Since(start)
	return result
}

// ProcessBatch runs each stage across the whole batch before advancing to the
// next stage. Items are independent within a stage and processed by a bounded
// worker pool; a failed item carries its error forward without touching the
// rest of the batch. The returned slice aligns with payloads by index, and
// each result also carries its session and scoring IDs for identity matching.
func (p *Pipeline) ProcessBatch(ctx context.Context, source schema.SourceTag, payloads []map[string]any, feedback map[string][]schema.FeedbackData) []*schema.PipelineResult {
	start := time.Now()
	n := len(payloads)

	results := make([]*schema.PipelineResult, n)
	inputs := make([]*schema.ScoringInput, n)
	reports := make([]*schema.QualityReport, n)
	outputs := make([]*schema.ScoringOutput, n)

	for i := range results {
		results[i] = &schema.PipelineResult{Source: source}
		if sid, ok := payloads[i]["session_id"].(string); ok {
			results[i].SessionID = sid
		}
	}

	// Stage 1: Ingest. Stored feedback is fetched here too, so evaluation
	// stays free of I/O.
	itemFeedback := make([][]schema.FeedbackData, n)
	p.forEachItem(ctx, n, results, func(i int) {
		inputs[i], results[i].Err = p.runIngest(source, payloads[i], results[i])
		if results[i].Err == nil {
			results[i].SessionID = inputs[i].SessionID
			itemFeedback[i] = p.lookupFeedback(ctx, inputs[i].SessionID, feedback[inputs[i].SessionID])
		}
	})

	// Stage 2: Normalize
	p.forEachItem(ctx, n, results, func(i int) {
		inputs[i], reports[i] = p.runNormalize(inputs[i], results[i])
	})

	// Stage 3: Evaluate
	p.forEachItem(ctx, n, results, func(i int) {
		outputs[i] = p.runEvaluate(inputs[i], reports[i], itemFeedback[i], results[i])
	})

	// Stage 4: Version
	p.forEachItem(ctx, n, results, func(i int) {
		outputs[i] = p.runVersion(outputs[i], results[i])
	})

	// Stage 5: Emit
	p.forEachItem(ctx, n, results, func(i int) {
		emission := p.runEmit(ctx, outputs[i], inputs[i], results[i])
		results[i].ScoringID = outputs[i].ScoringID
		results[i].FinalScore = outputs[i].Metrics.FinalScore
		results[i].Output = outputs[i]
		results[i].Emission = emission
	})

	elapsed := time.Since(start)
	for _, r := range results {
		r.ProcessingTime = elapsed
	}
	return results
}

// forEachItem fans the still-successful items of the current stage out to the
// worker pool. Cancellation stops starting new items but lets in-flight work
// complete, so a started persistence write is never abandoned half-way.
func (p *Pipeline) forEachItem(ctx context.Context, n int, results []*schema.PipelineResult, fn func(i int)) {
	itemCh := make(chan int, n)
	var wg sync.WaitGroup

	for range min(p.workers, n) {
		wg.Go(func() {
			for i := range itemCh {
				fn(i)
			}
		})
	}

	for i := range n {
		if results[i].Err != nil {
			continue
		}
		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		default:
		}
		itemCh <- i
	}
	close(itemCh)
	wg.Wait()
}

func (p *Pipeline) runIngest(source schema.SourceTag, payload map[string]any, result *schema.PipelineResult) (*schema.ScoringInput, error) {
	stageStart := time.Now()
	in, err := p.ingestor.Ingest(source, payload)
	p.metrics.record(schema.IngestStage, err == nil, time.Since(stageStart))
	if err != nil {
		return nil, err
	}
	result.StagesCompleted = append(result.StagesCompleted, schema.IngestStage)
	return in, nil
}

func (p *Pipeline) runNormalize(in *schema.ScoringInput, result *schema.PipelineResult) (*schema.ScoringInput, *schema.QualityReport) {
	stageStart := time.Now()
	normalized, report := p.normalizer.Normalize(in)
	p.metrics.record(schema.NormalizeStage, true, time.Since(stageStart))
	result.StagesCompleted = append(result.StagesCompleted, schema.NormalizeStage)
	return normalized, report
}

func (p *Pipeline) runEvaluate(in *schema.ScoringInput, report *schema.QualityReport, feedback []schema.FeedbackData, result *schema.PipelineResult) *schema.ScoringOutput {
	stageStart := time.Now()
	out := p.evaluator.Evaluate(in, report, feedback)
	// A defensive zero-score output carries a zero base score.
	p.metrics.record(schema.EvaluateStage, out.Metrics.BaseScore > 0, time.Since(stageStart))
	result.StagesCompleted = append(result.StagesCompleted, schema.EvaluateStage)
	return out
}

func (p *Pipeline) runVersion(out *schema.ScoringOutput, result *schema.PipelineResult) *schema.ScoringOutput {
	stageStart := time.Now()
	versioned := p.versioner.VersionScore(out)
	p.metrics.record(schema.VersionStage, true, time.Since(stageStart))
	result.StagesCompleted = append(result.StagesCompleted, schema.VersionStage)
	return versioned
}

func (p *Pipeline) runEmit(ctx context.Context, out *schema.ScoringOutput, in *schema.ScoringInput, result *schema.PipelineResult) *schema.EmissionResult {
	stageStart := time.Now()
	emission := p.emitter.Emit(ctx, out, in)
	p.metrics.record(schema.EmitStage, len(emission.Errors) == 0, time.Since(stageStart))
	result.StagesCompleted = append(result.StagesCompleted, schema.EmitStage)
	return emission
}

// Health returns the aggregate health snapshot across the five stages.
func (p *Pipeline) Health() schema.PipelineHealth {
	return p.metrics.health()
}

// ResetMetrics clears the per-stage health counters.
func (p *Pipeline) ResetMetrics() {
	p.metrics.reset()
}
