package core

import (
	"testing"

	"github.com/ArnoldoM23/pess/schema"
)

// FuzzCalculateScore fuzzes the scoring algorithm with random inputs, checking
// the bounds invariants: the final score stays in [0, 100] and every
// dimensional score stays in [0, 1], no matter how malformed the input.
func FuzzCalculateScore(f *testing.F) {
	seeds := []schema.ScoringInput{
		{
			SessionID:       "sess-20260815-001",
			TemplateName:    "feature_default",
			PromptHash:      schema.HashPrompt("seed"),
			TaskType:        schema.FeatureTask,
			RetryCount:      0,
			EditSimilarity:  1.0,
			ComplexityScore: 0.5,
			TestCoverage:    0.85,
			GenerationTime:  12,
			ExecutionTime:   25,
		},
		{
			// All-zero edge case.
			SessionID: "s",
		},
		{
			RetryCount:      10,
			EditSimilarity:  -5,
			ComplexityScore: 99,
			PerfBefore:      100,
			PerfAfter:       1,
			TestCoverage:    2,
			ExecutionTime:   7200,
		},
	}
	for _, seed := range seeds {
		f.Add(seed.TemplateName, seed.PromptHash, string(seed.TaskType),
			seed.RetryCount, seed.EditSimilarity, seed.ComplexityScore,
			seed.PerfBefore, seed.PerfAfter, seed.TestCoverage,
			seed.GenerationTime, seed.ExecutionTime)
	}

	algo := NewAlgorithm(nil)
	f.Fuzz(func(t *testing.T,
		templateName string,
		promptHash string,
		taskType string,
		retryCount int,
		editSimilarity float64,
		complexityScore float64,
		perfBefore float64,
		perfAfter float64,
		testCoverage float64,
		generationTime float64,
		executionTime float64,
	) {
		in := &schema.ScoringInput{
			SessionID:       "fuzz-session",
			TemplateName:    templateName,
			PromptHash:      promptHash,
			TaskType:        schema.TaskType(taskType),
			RetryCount:      retryCount,
			EditSimilarity:  editSimilarity,
			ComplexityScore: complexityScore,
			PerfBefore:      perfBefore,
			PerfAfter:       perfAfter,
			TestCoverage:    testCoverage,
			GenerationTime:  generationTime,
			ExecutionTime:   executionTime,
		}
		metrics, err := algo.CalculateScore(in, nil)
		if err != nil {
			t.Fatalf("CalculateScore failed: %v", err)
		}
		if metrics.FinalScore < 0 || metrics.FinalScore > 100 {
			t.Errorf("final score %f out of [0,100]", metrics.FinalScore)
		}
		for dim, v := range metrics.DimensionalScores.AsMap() {
			if v < 0 || v > 1 {
				t.Errorf("dimension %s score %f out of [0,1]", dim, v)
			}
		}
	})
}

// FuzzRetryPenaltyMonotonic checks that the retry penalty score never
// increases as the retry count grows.
func FuzzRetryPenaltyMonotonic(f *testing.F) {
	for _, seed := range []int{0, 1, 2, 5, 9} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, retryCount int) {
		if retryCount < 0 || retryCount >= 10 {
			return
		}
		lower := retryPenaltyScore(&schema.ScoringInput{RetryCount: retryCount})
		higher := retryPenaltyScore(&schema.ScoringInput{RetryCount: retryCount + 1})
		if higher > lower {
			t.Errorf("retry penalty increased: score(%d)=%f > score(%d)=%f",
				retryCount+1, higher, retryCount, lower)
		}
	})
}
