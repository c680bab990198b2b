package schema

// defaultDimensionWeights is the canonical weighting of the eight dimensions.
// The weights sum to 1.0.
var defaultDimensionWeights = map[Dimension]float64{
	ClarityDim:               0.15,
	CoverageDim:              0.15,
	RetryPenaltyDim:          0.20,
	EditPenaltyDim:           0.15,
	ComplexityHandlingDim:    0.10,
	PerformanceImpactDim:     0.10,
	ReviewQualityDim:         0.10,
	DeveloperSatisfactionDim: 0.05,
}

// GetDefaultWeights returns a copy of the default dimension weights.
func GetDefaultWeights() map[Dimension]float64 {
	weights := make(map[Dimension]float64, len(defaultDimensionWeights))
	for dim, w := range defaultDimensionWeights {
		weights[dim] = w
	}
	return weights
}

// PenaltyDimensions lists the dimensions where a higher value means a smaller
// penalty; their weighted shortfall from 1.0 is subtracted from the final score,
// while every other dimension contributes its weighted value as a boost.
var PenaltyDimensions = map[Dimension]struct{}{
	RetryPenaltyDim: {},
	EditPenaltyDim:  {},
}
