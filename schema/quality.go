package schema

// QualityReport captures everything the normalizer learned about one input: a
// per-field quality multiplier, the normalizations it applied, and the non-fatal
// warnings it raised. None of it blocks scoring; it feeds the overall data quality
// score and the evaluator's confidence calculation.
type QualityReport struct {
	Score          float64            `json:"data_quality_score"`
	Tier           QualityTier        `json:"overall_quality"`
	FieldQuality   map[string]float64 `json:"field_quality"`
	Normalizations []string           `json:"normalization_applied"`
	Warnings       []string           `json:"validation_warnings"`
	DroppedFiles   int                `json:"dropped_files,omitempty"`
}

// NewQualityReport returns an empty report with nominal quality.
func NewQualityReport() *QualityReport {
	return &QualityReport{
		Score:        1.0,
		Tier:         HighQuality,
		FieldQuality: make(map[string]float64),
	}
}

// SetFieldQuality records the quality multiplier for a field, keeping the lowest
// value when a field is assessed more than once.
func (r *QualityReport) SetFieldQuality(field string, quality float64) {
	if existing, ok := r.FieldQuality[field]; !ok || quality < existing {
		r.FieldQuality[field] = quality
	}
}

// AddNormalization records that a normalization rule fired.
func (r *QualityReport) AddNormalization(note string) {
	r.Normalizations = append(r.Normalizations, note)
}

// AddWarning records a non-fatal validation warning.
func (r *QualityReport) AddWarning(note string) {
	r.Warnings = append(r.Warnings, note)
}

// WarningCount returns the number of accumulated warnings.
func (r *QualityReport) WarningCount() int {
	return len(r.Warnings)
}

// TierFor buckets a data quality score into a tier.
func TierFor(score float64) QualityTier {
	switch {
	case score >= 0.9:
		return HighQuality
	case score >= 0.7:
		return MediumQuality
	default:
		return LowQuality
	}
}
