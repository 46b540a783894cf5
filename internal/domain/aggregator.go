package domain

// Bounds and defaults used by the aggregation engine.
const (
	// MinTotalScore is the lower clamp bound for the final total.
	MinTotalScore = 0.0
	// MaxTotalScore is the upper clamp bound for the final total.
	MaxTotalScore = 10.0
	// DefaultCategoryWeight is applied when the model reports a category that
	// does not exist in the rubric. Such results are accepted, not rejected.
	DefaultCategoryWeight = 1.0
	// DefaultPointsPossible is reported for categories outside the rubric.
	DefaultPointsPossible = 10.0
)

// ScorePayload combines a validated model payload with the rubric to produce
// per-category results and the final total score.
//
// Category results are emitted in payload order; order matters for display
// but not for the numeric result. Weights are resolved by exact category-name
// equality against the rubric, falling back to DefaultCategoryWeight for
// unknown names. Raw scores are not range-checked against bands or
// max_points, and penalty points are added literally with no sign
// normalization: a penalty meant as a deduction must already be non-positive.
// Only the grand total is clamped; individual categories never are.
func ScorePayload(rubric Rubric, payload LLMScoringPayload) ([]CategoryResult, float64) {
	results := make([]CategoryResult, 0, len(payload.CategoryResults))
	total := 0.0

	for _, reported := range payload.CategoryResults {
		weight := DefaultCategoryWeight
		pointsPossible := DefaultPointsPossible
		if category, ok := rubric.CategoryByName(reported.CategoryName); ok {
			weight = category.Weight
			pointsPossible = float64(category.MaxPoints)
		}

		weighted := reported.RawScore * weight
		total += weighted

		results = append(results, CategoryResult{
			CategoryName:   reported.CategoryName,
			RawScore:       reported.RawScore,
			PointsPossible: pointsPossible,
			Weight:         weight,
			WeightedScore:  weighted,
			BandDecision: CategoryBandDecision{
				MinScore:    reported.BandDecision.MinScore,
				MaxScore:    reported.BandDecision.MaxScore,
				Description: reported.BandDecision.Description,
				Rationale:   reported.BandDecision.Rationale,
			},
		})
	}

	for _, penalty := range payload.PenaltiesApplied {
		total += penalty.Points
	}

	return results, ClampScore(total)
}

// ClampScore bounds a total into the closed interval
// [MinTotalScore, MaxTotalScore]. Values already inside are unchanged.
func ClampScore(score float64) float64 {
	if score < MinTotalScore {
		return MinTotalScore
	}
	if score > MaxTotalScore {
		return MaxTotalScore
	}
	return score
}

// BuildResponse assembles the trusted ScoringResponse from the aggregation
// output and the payload's relayed penalties and feedback.
func BuildResponse(
	results []CategoryResult,
	total float64,
	payload LLMScoringPayload,
	provider ProviderKind,
) *ScoringResponse {
	penalties := make([]PenaltyApplied, 0, len(payload.PenaltiesApplied))
	for _, p := range payload.PenaltiesApplied {
		penalties = append(penalties, PenaltyApplied{
			Code:   p.Code,
			Points: p.Points,
			Reason: p.Reason,
		})
	}

	return &ScoringResponse{
		TotalScore:       total,
		CategoryResults:  results,
		PenaltiesApplied: penalties,
		ProviderUsed:     provider,
		Feedback:         payload.Feedback,
	}
}
