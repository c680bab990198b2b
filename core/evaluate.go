package core

import (
	"fmt"
	"math"
	"time"

	"github.com/ArnoldoM23/pess/schema"
)

// Evaluator invokes the scoring algorithm and derives recommendations, alerts,
// and a confidence score from the result.
type Evaluator struct {
	algorithm *Algorithm
}

// NewEvaluator returns an evaluator using the given algorithm.
func NewEvaluator(algorithm *Algorithm) *Evaluator {
	return &Evaluator{algorithm: algorithm}
}

// Evaluate scores one normalized input. Algorithm failures are defensive-only:
// they are converted to a zero-score output carrying an alert, never
// propagated, so batch evaluation cannot abort a batch.
func (e *Evaluator) Evaluate(in *schema.ScoringInput, report *schema.QualityReport, feedback []schema.FeedbackData) *schema.ScoringOutput {
	start := time.Now()

	metrics, err := e.algorithm.CalculateScore(in, feedback)
	if err != nil {
		return e.zeroScoreOutput(in, start, err)
	}

	out := &schema.ScoringOutput{
		ScoringID:      schema.NewScoringID(),
		SessionID:      in.SessionID,
		Timestamp:      time.Now().UTC(),
		Metrics:        metrics,
		PipelineStage:  schema.EvaluateStage,
		ProcessingTime: time.Since(start),
		TemplateCorrelation: schema.TemplateCorrelation{
			TemplateName:    in.TemplateName,
			TemplateVersion: in.TemplateVersion,
			PromptHash:      in.PromptHash,
			TaskType:        in.TaskType,
		},
		ConfidenceScore: confidenceScore(in, report),
		DataQuality:     report.Score,
		QualityTier:     report.Tier,
		Recommendations: recommendations(metrics),
		Alerts:          alerts(in, metrics),
	}
	return out
}

// EvaluateBatch evaluates inputs independently, one output per input.
func (e *Evaluator) EvaluateBatch(inputs []*schema.ScoringInput, reports []*schema.QualityReport, feedback map[string][]schema.FeedbackData) []*schema.ScoringOutput {
	outputs := make([]*schema.ScoringOutput, len(inputs))
	for i, in := range inputs {
		outputs[i] = e.Evaluate(in, reports[i], feedback[in.SessionID])
	}
	return outputs
}

func (e *Evaluator) zeroScoreOutput(in *schema.ScoringInput, start time.Time, err error) *schema.ScoringOutput {
	out := &schema.ScoringOutput{
		ScoringID:      schema.NewScoringID(),
		Timestamp:      time.Now().UTC(),
		Metrics:        schema.ScoringMetrics{},
		PipelineStage:  schema.EvaluateStage,
		ProcessingTime: time.Since(start),
		QualityTier:    schema.LowQuality,
		Alerts:         []string{fmt.Sprintf("Evaluation failed: %v", err)},
	}
	if in != nil {
		out.SessionID = in.SessionID
		out.TemplateCorrelation = schema.TemplateCorrelation{
			TemplateName:    in.TemplateName,
			TemplateVersion: in.TemplateVersion,
			PromptHash:      in.PromptHash,
			TaskType:        in.TaskType,
		}
	}
	return out
}

// recommendations derives one improvement suggestion per underperforming
// dimension, plus overall-score guidance.
func recommendations(metrics schema.ScoringMetrics) []string {
	dims := metrics.DimensionalScores
	var recs []string

	if dims.Clarity < 0.7 {
		recs = append(recs, "Improve template structure and instruction clarity")
	}
	if dims.Coverage < 0.6 {
		recs = append(recs, "Include more relevant file references and test cases")
	}
	if dims.RetryPenalty < 0.5 {
		recs = append(recs, "Reduce retry attempts by improving initial prompt quality")
	}
	if dims.EditPenalty < 0.6 {
		recs = append(recs, "Minimize manual edits by improving code generation accuracy")
	}
	if dims.ComplexityHandling < 0.6 {
		recs = append(recs, "Better handle task complexity with more detailed prompts")
	}
	if dims.PerformanceImpact < 0.5 {
		recs = append(recs, "Monitor and optimize performance impact of generated code")
	}
	if dims.ReviewQuality < 0.7 {
		recs = append(recs, "Focus on generating code that passes review with minimal feedback")
	}
	if dims.DeveloperSatisfaction < 0.6 {
		recs = append(recs, "Gather more developer feedback to improve satisfaction")
	}

	if metrics.FinalScore < 60 {
		recs = append(recs, "Consider revising template or prompt generation strategy")
	} else if metrics.FinalScore < 80 {
		recs = append(recs, "Minor improvements needed to reach optimal performance")
	}

	return recs
}

// alerts derives severity-tagged warnings for concerning scoring patterns.
func alerts(in *schema.ScoringInput, metrics schema.ScoringMetrics) []string {
	dims := metrics.DimensionalScores
	var out []string

	if metrics.FinalScore < 40 {
		out = append(out, "CRITICAL: Very low final score detected")
	}
	if in.RetryCount >= 3 {
		out = append(out, "HIGH: Multiple retries detected - template may need revision")
	}
	if dims.EditPenalty < 0.3 {
		out = append(out, "HIGH: Significant manual edits required")
	}
	if dims.PerformanceImpact < 0.4 {
		out = append(out, "MEDIUM: Performance regression detected")
	}
	if dims.ReviewQuality < 0.5 {
		out = append(out, "MEDIUM: Poor review quality - code quality concerns")
	}
	if dims.Clarity < 0.4 {
		out = append(out, "HIGH: Template clarity issues detected")
	}
	if dims.Coverage < 0.3 {
		out = append(out, "MEDIUM: Poor test and file coverage")
	}
	if in.ComplexityScore > 0.8 && dims.ComplexityHandling < 0.5 {
		out = append(out, "HIGH: Complex task handled poorly")
	}

	return out
}

// confidenceScore starts at the data quality score and is multiplied down for
// missing optional signals, extreme values, and accumulated warnings.
func confidenceScore(in *schema.ScoringInput, report *schema.QualityReport) float64 {
	confidence := report.Score

	if len(in.FilesReferenced) == 0 {
		confidence *= 0.9
	}
	if in.TestCoverage == 0 {
		confidence *= 0.9
	}
	if in.GenerationTime == 0 {
		confidence *= 0.95
	}
	if in.ExecutionTime == 0 {
		confidence *= 0.95
	}
	if in.RetryCount > 5 {
		confidence *= 0.8
	}
	if in.EditSimilarity < 0.3 {
		confidence *= 0.8
	}
	if count := report.WarningCount(); count > 0 {
		confidence *= math.Max(0.7, 1.0-0.1*float64(count))
	}

	return schema.Clamp01(confidence)
}
