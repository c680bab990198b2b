package core

import (
	"context"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// Emitter persists scoring outputs and fans results out to downstream sinks.
// Persistence is transactional per record; sink delivery is best-effort and
// never fails the emit call.
type Emitter struct {
	store          contract.RecordStore
	sinks          []contract.NotifySink
	notifyTimeout  time.Duration
	persistTimeout time.Duration
}

// NewEmitter builds an emitter. Store may be nil when persistence is disabled;
// sinks may be empty.
func NewEmitter(store contract.RecordStore, sinks []contract.NotifySink, notifyTimeout, persistTimeout time.Duration) *Emitter {
	if notifyTimeout <= 0 {
		notifyTimeout = contract.DefaultNotifyTimeout
	}
	if persistTimeout <= 0 {
		persistTimeout = contract.DefaultPersistTimeout
	}
	return &Emitter{store: store, sinks: sinks, notifyTimeout: notifyTimeout, persistTimeout: persistTimeout}
}

// Emit persists one output and notifies the enabled sinks. A persistence
// failure is reported in the result and does not block the notification phase.
func (e *Emitter) Emit(ctx context.Context, out *schema.ScoringOutput, in *schema.ScoringInput) *schema.EmissionResult {
	out.PipelineStage = schema.EmitStage

	result := &schema.EmissionResult{
		ScoringID: out.ScoringID,
		SessionID: out.SessionID,
	}

	if e.store != nil {
		rec := BuildScoreRecord(out, in)
		saveCtx, cancel := context.WithTimeout(ctx, e.persistTimeout)
		err := e.store.SaveScore(saveCtx, rec)
		cancel()
		if err != nil {
			perr := &PersistenceError{ScoringID: out.ScoringID, Err: err}
			contract.LogWarn("score persistence", perr)
			result.Errors = append(result.Errors, perr)
		} else {
			result.Persisted = true
		}
	}

	result.Notifications = e.notify(ctx, out)
	return result
}

// EmitBatch emits outputs independently, one result per output. Inputs align
// with outputs by index; a nil slot is allowed.
func (e *Emitter) EmitBatch(ctx context.Context, outputs []*schema.ScoringOutput, inputs []*schema.ScoringInput) []*schema.EmissionResult {
	results := make([]*schema.EmissionResult, len(outputs))
	for i, out := range outputs {
		var in *schema.ScoringInput
		if i < len(inputs) {
			in = inputs[i]
		}
		results[i] = e.Emit(ctx, out, in)
	}
	return results
}

func (e *Emitter) notify(ctx context.Context, out *schema.ScoringOutput) []schema.NotifyResult {
	var results []schema.NotifyResult
	if len(e.sinks) == 0 {
		return results
	}

	payload := &schema.Notification{
		SessionID:         out.SessionID,
		ScoringID:         out.ScoringID,
		FinalScore:        out.Metrics.FinalScore,
		DimensionalScores: out.Metrics.DimensionalScores,
		TemplateInfo:      out.TemplateCorrelation,
		Alerts:            out.Alerts,
		Recommendations:   out.Recommendations,
		Timestamp:         out.Timestamp,
	}

	for _, sink := range e.sinks {
		if !sink.Enabled() {
			continue
		}

		sinkCtx, cancel := context.WithTimeout(ctx, e.notifyTimeout)
		err := sink.Notify(sinkCtx, payload)
		cancel()

		if err != nil {
			nerr := &DownstreamNotifyError{Sink: sink.Name(), Err: err}
			contract.LogWarn("downstream notification", nerr)
			results = append(results, schema.NotifyResult{Sink: sink.Name(), Error: nerr.Error()})
			continue
		}
		results = append(results, schema.NotifyResult{Sink: sink.Name(), Success: true})
	}
	return results
}

// BuildScoreRecord flattens a scoring output (and, when available, its
// normalized input) into the persisted record shape.
func BuildScoreRecord(out *schema.ScoringOutput, in *schema.ScoringInput) *schema.ScoreRecord {
	rec := &schema.ScoreRecord{
		ScoringID:         out.ScoringID,
		SessionID:         out.SessionID,
		TemplateName:      out.TemplateCorrelation.TemplateName,
		TemplateVersion:   out.TemplateCorrelation.TemplateVersion,
		PromptHash:        out.TemplateCorrelation.PromptHash,
		TaskType:          out.TemplateCorrelation.TaskType,
		BaseScore:         out.Metrics.BaseScore,
		FinalScore:        out.Metrics.FinalScore,
		DimensionalScores: out.Metrics.DimensionalScores,
		Adjustments:       out.Metrics.Adjustments,
		Penalties:         out.Metrics.Penalties,
		Bonuses:           out.Metrics.Bonuses,
		PipelineStage:     out.PipelineStage,
		ProcessingTime:    out.ProcessingTime,
		ScoreVersion:      out.ScoreVersion,
		VersionHash:       out.TemplateCorrelation.VersionHash,
		ConfidenceScore:   out.ConfidenceScore,
		DataQuality:       out.DataQuality,
		Recommendations:   out.Recommendations,
		Alerts:            out.Alerts,
		CreatedAt:         out.Timestamp,
	}
	if in != nil {
		rec.TicketID = in.TicketID
		rec.RetryCount = in.RetryCount
		rec.EditSimilarity = in.EditSimilarity
		rec.ComplexityScore = in.ComplexityScore
		rec.TestCoverage = in.TestCoverage
		rec.PerfBefore = in.PerfBefore
		rec.PerfAfter = in.PerfAfter
		rec.GenerationTime = in.GenerationTime
		rec.ExecutionTime = in.ExecutionTime
		rec.FilesReferenced = in.FilesReferenced
	}
	return rec
}
