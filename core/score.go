package core

import (
	"errors"
	"math"

	"github.com/ArnoldoM23/pess/schema"
)

// Scoring constants shared by the algorithm and its audit maps.
const (
	baseScore = 100.0

	retryPenaltyFactor   = 10.0 // points deducted per retry
	editPenaltyThreshold = 0.7  // similarity threshold for penalties
	editPenaltyPoints    = 20.0
	perfPenaltyPoints    = 15.0

	complexityBonusThreshold = 0.7
	coverageBonusThreshold   = 0.8
	coverageBonusPoints      = 5.0
	speedBonusSeconds        = 30.0
	speedBonusPoints         = 3.0

	// dimensionScale converts weighted [0,1] dimension sums to score points.
	dimensionScale = 20.0
)

// Algorithm computes the eight dimensional scores and the final 0-100 score.
// It is a pure function of its input; the same input and feedback always
// produce the same metrics.
type Algorithm struct {
	weights map[schema.Dimension]float64
}

// NewAlgorithm returns an algorithm using the given dimension weights.
// A nil weights map falls back to the defaults.
func NewAlgorithm(weights map[schema.Dimension]float64) *Algorithm {
	if weights == nil {
		weights = schema.GetDefaultWeights()
	}
	return &Algorithm{weights: weights}
}

// CalculateScore computes the full scoring metrics for one normalized input.
// Feedback entries are optional and only influence the review quality and
// developer satisfaction dimensions.
func (a *Algorithm) CalculateScore(in *schema.ScoringInput, feedback []schema.FeedbackData) (schema.ScoringMetrics, error) {
	if in == nil {
		return schema.ScoringMetrics{}, &AlgorithmComputeError{Err: errors.New("nil scoring input")}
	}

	dims := a.dimensionalScores(in, feedback)
	penalties := calculatePenalties(in)
	bonuses := calculateBonuses(in)
	adjustments := a.calculateAdjustments(dims)

	score := baseScore
	for _, v := range penalties {
		score -= v
	}
	for _, v := range bonuses {
		score += v
	}
	for _, v := range adjustments {
		score += v
	}

	return schema.ScoringMetrics{
		BaseScore:         baseScore,
		FinalScore:        schema.ClampRange(score, 0, 100),
		DimensionalScores: dims,
		Adjustments:       adjustments,
		Penalties:         penalties,
		Bonuses:           bonuses,
	}, nil
}

func (a *Algorithm) dimensionalScores(in *schema.ScoringInput, feedback []schema.FeedbackData) schema.DimensionalScores {
	return schema.DimensionalScores{
		Clarity:               clarityScore(in),
		Coverage:              coverageScore(in),
		RetryPenalty:          retryPenaltyScore(in),
		EditPenalty:           editPenaltyScore(in),
		ComplexityHandling:    complexityHandlingScore(in),
		PerformanceImpact:     performanceImpactScore(in),
		ReviewQuality:         reviewQualityScore(feedback),
		DeveloperSatisfaction: satisfactionScore(feedback),
	}
}

// clarityScore reflects template structure and instruction completeness.
func clarityScore(in *schema.ScoringInput) float64 {
	score := 1.0
	if len(in.TemplateName) < 5 {
		score -= 0.2
	}
	if !schema.IsPromptHash(in.PromptHash) {
		score -= 0.3
	}
	if len(in.Metadata) == 0 {
		score -= 0.1
	}
	switch in.TaskType {
	case schema.FeatureTask, schema.BugfixTask, schema.RefactorTask:
		score += 0.1
	}
	return schema.Clamp01(score)
}

// coverageScore reflects file references and test case inclusion. The optimal
// file count is 3-8; more suggests poor focus, fewer suggests thin context.
func coverageScore(in *schema.ScoringInput) float64 {
	score := 0.5
	switch n := len(in.FilesReferenced); {
	case n >= 3 && n <= 8:
		score += 0.3
	case n > 8:
		score += 0.2
	case n > 0:
		score += 0.1
	}
	if in.TestCoverage > 0 {
		score += math.Min(0.3, in.TestCoverage*0.3)
	}
	if in.TaskType == schema.TestGenerationTask {
		score += 0.2
	}
	return schema.Clamp01(score)
}

// retryPenaltyScore decays exponentially with the retry count.
func retryPenaltyScore(in *schema.ScoringInput) float64 {
	if in.RetryCount == 0 {
		return 1.0
	}
	return schema.Clamp01(math.Exp(-0.5 * float64(in.RetryCount)))
}

// editPenaltyScore penalizes heavy manual edits linearly below the threshold.
func editPenaltyScore(in *schema.ScoringInput) float64 {
	if in.EditSimilarity >= editPenaltyThreshold {
		return 1.0
	}
	return schema.Clamp01(in.EditSimilarity / editPenaltyThreshold)
}

func complexityHandlingScore(in *schema.ScoringInput) float64 {
	score := 0.5
	switch {
	case in.ComplexityScore > 0.7:
		score += 0.3
	case in.ComplexityScore > 0.5:
		score += 0.2
	default:
		score += 0.1
	}
	if in.ExecutionTime > 300 {
		score -= 0.2
	} else if in.ExecutionTime > 120 {
		score -= 0.1
	}
	return schema.Clamp01(score)
}

// performanceImpactScore bands the after/before ratio. With no baseline the
// result is a neutral default rather than a penalty.
func performanceImpactScore(in *schema.ScoringInput) float64 {
	if in.PerfBefore == 0 && in.PerfAfter == 0 {
		return 0.8
	}
	if in.PerfBefore == 0 {
		return 0.5
	}
	ratio := in.PerfAfter / in.PerfBefore
	switch {
	case ratio > 1.1:
		return 1.0
	case ratio >= 0.9:
		return 0.8
	case ratio >= 0.8:
		return 0.6
	default:
		return 0.3
	}
}

func reviewQualityScore(feedback []schema.FeedbackData) float64 {
	reviewed := false
	score := 0.5
	for _, fb := range feedback {
		if fb.Type != schema.PRReviewFeedback {
			continue
		}
		reviewed = true
		if fb.PRApproved != nil && *fb.PRApproved {
			score += 0.3
		}
		if fb.ReviewComments != nil {
			switch n := *fb.ReviewComments; {
			case n == 0:
				score += 0.2
			case n <= 3:
				score += 0.1
			default:
				score -= 0.1
			}
		}
		if fb.ChangesRequested != nil && !*fb.ChangesRequested {
			score += 0.2
		}
	}
	if !reviewed {
		return 0.7
	}
	return schema.Clamp01(score)
}

func satisfactionScore(feedback []schema.FeedbackData) float64 {
	totalScore := 0.0
	totalWeight := 0.0
	for _, fb := range feedback {
		if fb.Type != schema.DeveloperSatisfactionFeedback {
			continue
		}
		const weight = 1.0
		if fb.SatisfactionScore != nil {
			totalScore += *fb.SatisfactionScore * weight
			totalWeight += weight
		} else if fb.Rating != nil {
			totalScore += (*fb.Rating / 5.0) * weight
			totalWeight += weight
		}
		if fb.WouldRecommend != nil && *fb.WouldRecommend {
			totalScore += 0.2
			totalWeight += 0.2
		}
	}
	if totalWeight == 0 {
		return 0.6
	}
	return schema.Clamp01(totalScore / totalWeight)
}

func calculatePenalties(in *schema.ScoringInput) map[string]float64 {
	penalties := make(map[string]float64)
	if in.RetryCount > 0 {
		penalties["retry"] = float64(in.RetryCount) * retryPenaltyFactor
	}
	if in.EditSimilarity < editPenaltyThreshold {
		penalties["edit_similarity"] = editPenaltyPoints
	}
	if in.PerfBefore > 0 && in.PerfAfter < in.PerfBefore {
		penalties["performance"] = perfPenaltyPoints
	}
	return penalties
}

func calculateBonuses(in *schema.ScoringInput) map[string]float64 {
	bonuses := make(map[string]float64)
	if in.ComplexityScore > complexityBonusThreshold {
		bonuses["complexity"] = in.ComplexityScore * 10.0
	}
	if in.TestCoverage > coverageBonusThreshold {
		bonuses["test_coverage"] = coverageBonusPoints
	}
	if in.ExecutionTime > 0 && in.ExecutionTime < speedBonusSeconds {
		bonuses["speed"] = speedBonusPoints
	}
	return bonuses
}

// calculateAdjustments converts the weighted dimensional scores into score
// points: penalty dimensions contribute their weighted shortfall from 1.0 as
// a reduction, everything else contributes its weighted value as a boost.
func (a *Algorithm) calculateAdjustments(dims schema.DimensionalScores) map[string]float64 {
	boost := 0.0
	penalty := 0.0
	for _, dim := range schema.AllDimensions {
		w := a.weights[dim]
		if _, isPenalty := schema.PenaltyDimensions[dim]; isPenalty {
			penalty += (1.0 - dims.Get(dim)) * w
		} else {
			boost += dims.Get(dim) * w
		}
	}
	return map[string]float64{
		"dimensional_boost": boost * dimensionScale,
		"penalty_reduction": -penalty * dimensionScale,
	}
}
