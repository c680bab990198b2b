package core

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ArnoldoM23/pess/schema"
)

// Per-field range rules applied by the normalizer.
const (
	maxRetryCount     = 10
	maxGenerationTime = 3600.0 // 1 hour
	maxExecutionTime  = 7200.0 // 2 hours
)

var (
	ticketIDPattern   = regexp.MustCompile(`^[A-Z]+-\d+$`)
	semverPattern     = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)
	promptHashPattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
)

// Normalizer clamps ranges, coerces shapes, and checks cross-field consistency.
// It never fails an input: every issue is either repaired or recorded as a
// warning in the quality report.
type Normalizer struct{}

// NewNormalizer returns a ready normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns a normalized copy of the input plus its quality report.
// The argument is never mutated, preserving the raw input for auditing.
// Normalize is idempotent: normalizing an already-normalized input applies no
// further changes.
func (n *Normalizer) Normalize(in *schema.ScoringInput) (*schema.ScoringInput, *schema.QualityReport) {
	out := in.Clone()
	report := schema.NewQualityReport()

	n.normalizeNumericFields(out, report)
	n.normalizeStringFields(out, report)
	n.normalizeFileList(out, report)
	n.checkConsistency(out, report)
	n.scoreQuality(report)

	return out, report
}

// NormalizeBatch normalizes inputs independently, one report per input.
func (n *Normalizer) NormalizeBatch(inputs []*schema.ScoringInput) ([]*schema.ScoringInput, []*schema.QualityReport) {
	outs := make([]*schema.ScoringInput, len(inputs))
	reports := make([]*schema.QualityReport, len(inputs))
	for i, in := range inputs {
		outs[i], reports[i] = n.Normalize(in)
	}
	return outs, reports
}

func (n *Normalizer) normalizeNumericFields(in *schema.ScoringInput, report *schema.QualityReport) {
	// retry_count: clamp [0, 10]
	report.SetFieldQuality("retry_count", 1.0)
	if in.RetryCount < 0 {
		report.AddNormalization(fmt.Sprintf("retry_count: clamped %d to 0", in.RetryCount))
		report.SetFieldQuality("retry_count", 0.8)
		in.RetryCount = 0
	} else if in.RetryCount > maxRetryCount {
		report.AddNormalization(fmt.Sprintf("retry_count: clamped %d to %d", in.RetryCount, maxRetryCount))
		report.SetFieldQuality("retry_count", 0.8)
		in.RetryCount = maxRetryCount
	}

	// edit_similarity: percentage reinterpretation before clamping
	report.SetFieldQuality("edit_similarity", 1.0)
	if in.EditSimilarity > 1.0 {
		report.AddNormalization("edit_similarity: converted percentage to decimal")
		report.SetFieldQuality("edit_similarity", 0.9)
		in.EditSimilarity /= 100.0
	}
	clampUnit(&in.EditSimilarity, "edit_similarity", report)

	report.SetFieldQuality("complexity_score", 1.0)
	clampUnit(&in.ComplexityScore, "complexity_score", report)

	report.SetFieldQuality("test_coverage", 1.0)
	clampUnit(&in.TestCoverage, "test_coverage", report)

	// perf_before/perf_after: negative values floored to 0
	for _, f := range []struct {
		name  string
		value *float64
	}{{"perf_before", &in.PerfBefore}, {"perf_after", &in.PerfAfter}} {
		report.SetFieldQuality(f.name, 1.0)
		if *f.value < 0 {
			report.AddNormalization(fmt.Sprintf("%s: converted negative value to 0", f.name))
			report.SetFieldQuality(f.name, 0.7)
			*f.value = 0
		}
	}

	report.SetFieldQuality("generation_time", 1.0)
	clampSeconds(&in.GenerationTime, "generation_time", maxGenerationTime, report)

	report.SetFieldQuality("execution_time", 1.0)
	clampSeconds(&in.ExecutionTime, "execution_time", maxExecutionTime, report)
}

func clampUnit(v *float64, field string, report *schema.QualityReport) {
	if *v < 0 {
		report.AddNormalization(fmt.Sprintf("%s: clamped %.3f to 0", field, *v))
		report.SetFieldQuality(field, 0.8)
		*v = 0
	} else if *v > 1 {
		report.AddNormalization(fmt.Sprintf("%s: clamped %.3f to 1", field, *v))
		report.SetFieldQuality(field, 0.8)
		*v = 1
	}
}

func clampSeconds(v *float64, field string, maxSeconds float64, report *schema.QualityReport) {
	if *v < 0 {
		report.AddNormalization(fmt.Sprintf("%s: clamped %.1f to 0", field, *v))
		report.SetFieldQuality(field, 0.8)
		*v = 0
	} else if *v > maxSeconds {
		report.AddNormalization(fmt.Sprintf("%s: clamped %.1f to %.0f", field, *v, maxSeconds))
		report.SetFieldQuality(field, 0.8)
		*v = maxSeconds
	}
}

func (n *Normalizer) normalizeStringFields(in *schema.ScoringInput, report *schema.QualityReport) {
	fields := []struct {
		name  string
		value *string
	}{
		{"session_id", &in.SessionID},
		{"ticket_id", &in.TicketID},
		{"template_name", &in.TemplateName},
		{"template_version", &in.TemplateVersion},
		{"prompt_hash", &in.PromptHash},
	}

	for _, f := range fields {
		report.SetFieldQuality(f.name, 1.0)
		trimmed := strings.TrimSpace(*f.value)
		if trimmed != *f.value {
			report.AddNormalization(fmt.Sprintf("%s: trimmed whitespace", f.name))
			report.SetFieldQuality(f.name, 0.9)
			*f.value = trimmed
		}
		if trimmed == "" {
			report.AddWarning(fmt.Sprintf("%s: empty string found", f.name))
			report.SetFieldQuality(f.name, 0.3)
			continue
		}

		switch f.name {
		case "session_id":
			if len(trimmed) < 8 {
				report.AddWarning("session_id: unusually short session ID")
				report.SetFieldQuality(f.name, 0.6)
			}
		case "ticket_id":
			if !ticketIDPattern.MatchString(trimmed) {
				report.AddWarning("ticket_id: unusual ticket ID format")
				report.SetFieldQuality(f.name, 0.8)
			}
		case "template_name":
			if len(trimmed) < 5 {
				report.AddWarning("template_name: very short template name")
				report.SetFieldQuality(f.name, 0.7)
			}
		case "template_version":
			if !semverPattern.MatchString(trimmed) {
				report.AddWarning("template_version: non-standard version format")
				report.SetFieldQuality(f.name, 0.8)
			}
		case "prompt_hash":
			// Length was already enforced at ingest; a malformed hash here is
			// only a quality signal.
			if !promptHashPattern.MatchString(trimmed) {
				report.AddWarning("prompt_hash: invalid hash format")
				report.SetFieldQuality(f.name, 0.3)
			}
		}
	}
}

func (n *Normalizer) normalizeFileList(in *schema.ScoringInput, report *schema.QualityReport) {
	if v, ok := in.Metadata[droppedFilesKey]; ok {
		if droppedAtIngest, err := toFloat(v); err == nil && droppedAtIngest > 0 {
			report.DroppedFiles += int(droppedAtIngest)
			report.AddWarning("files_referenced: non-string file path found")
		}
		delete(in.Metadata, droppedFilesKey)
	}
	if len(in.FilesReferenced) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(in.FilesReferenced))
	deduped := make([]string, 0, len(in.FilesReferenced))
	for _, path := range in.FilesReferenced {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		deduped = append(deduped, trimmed)
	}

	dropped := len(in.FilesReferenced) - len(deduped)
	in.FilesReferenced = deduped
	if dropped > 0 {
		report.DroppedFiles += dropped
		report.AddNormalization(fmt.Sprintf("files_referenced: removed %d invalid/duplicate entries", dropped))
		report.SetFieldQuality("files_referenced", 0.9)
	} else {
		report.SetFieldQuality("files_referenced", 1.0)
	}
}

func (n *Normalizer) checkConsistency(in *schema.ScoringInput, report *schema.QualityReport) {
	if in.PerfBefore > 0 && in.PerfAfter > 0 {
		ratio := in.PerfAfter / in.PerfBefore
		if ratio > 10.0 || ratio < 0.1 {
			report.AddWarning("performance: extreme performance change detected")
		}
	}
	if in.GenerationTime > in.ExecutionTime && in.ExecutionTime > 0 {
		report.AddWarning("timing: generation time exceeds execution time")
	}
	if in.ComplexityScore > 0.8 && in.RetryCount == 0 {
		report.AddWarning("consistency: high complexity with no retries")
	}
	if in.EditSimilarity < 0.5 && in.RetryCount == 0 {
		report.AddWarning("consistency: low edit similarity with no retries")
	}
	if in.TaskType == schema.TestGenerationTask && in.TestCoverage < 0.1 {
		report.AddWarning("consistency: test generation task with low test coverage")
	}
}

// scoreQuality combines the per-field multipliers, the warning penalty, and a
// small credit for repaired fields into the overall data quality score.
func (n *Normalizer) scoreQuality(report *schema.QualityReport) {
	if len(report.FieldQuality) == 0 {
		report.Score = 0.0
		report.Tier = schema.LowQuality
		return
	}

	sum := 0.0
	for _, q := range report.FieldQuality {
		sum += q
	}
	mean := sum / float64(len(report.FieldQuality))

	warningPenalty := float64(report.WarningCount()) * 0.1
	normalizationBonus := math.Min(float64(len(report.Normalizations))*0.05, 0.2)

	report.Score = schema.Clamp01(mean - warningPenalty + normalizationBonus)
	report.Tier = schema.TierFor(report.Score)
}
