package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRubric() Rubric {
	return Rubric{
		Categories: []RubricCategory{
			{
				Name:      "correctness",
				MaxPoints: 10,
				Weight:    0.6,
				Bands: []RubricBand{
					{MinScore: 0, MaxScore: 4, Description: "does not solve the problem"},
					{MinScore: 5, MaxScore: 10, Description: "solves the problem"},
				},
			},
			{
				Name:      "readability",
				MaxPoints: 10,
				Weight:    0.4,
			},
		},
		Penalties: []PenaltyRule{
			{Code: "NO_IO", Description: "missing input/output handling", Points: 1},
		},
	}
}

func TestScorePayloadUsesRubricWeights(t *testing.T) {
	payload := LLMScoringPayload{
		CategoryResults: []LLMCategoryResult{
			{CategoryName: "correctness", RawScore: 8},
			{CategoryName: "readability", RawScore: 5},
		},
	}

	results, total := ScorePayload(testRubric(), payload)

	require.Len(t, results, 2)
	assert.Equal(t, 0.6, results[0].Weight)
	assert.InDelta(t, 4.8, results[0].WeightedScore, 1e-9)
	assert.Equal(t, 0.4, results[1].Weight)
	assert.InDelta(t, 2.0, results[1].WeightedScore, 1e-9)
	assert.InDelta(t, 6.8, total, 1e-9)
}

func TestScorePayloadUnknownCategoryGetsDefaultWeight(t *testing.T) {
	payload := LLMScoringPayload{
		CategoryResults: []LLMCategoryResult{
			{CategoryName: "creativity", RawScore: 3},
		},
	}

	results, total := ScorePayload(testRubric(), payload)

	require.Len(t, results, 1)
	assert.Equal(t, DefaultCategoryWeight, results[0].Weight)
	assert.Equal(t, DefaultPointsPossible, results[0].PointsPossible)
	assert.InDelta(t, 3.0, results[0].WeightedScore, 1e-9)
	assert.InDelta(t, 3.0, total, 1e-9)
}

func TestScorePayloadDoesNotClampCategoryScores(t *testing.T) {
	payload := LLMScoringPayload{
		CategoryResults: []LLMCategoryResult{
			{CategoryName: "correctness", RawScore: 12},
		},
	}

	results, total := ScorePayload(testRubric(), payload)

	require.Len(t, results, 1)
	assert.InDelta(t, 12.0, results[0].RawScore, 1e-9)
	assert.InDelta(t, 7.2, results[0].WeightedScore, 1e-9)
	assert.InDelta(t, 7.2, total, 1e-9)
}

func TestScorePayloadAddsPenaltiesLiterally(t *testing.T) {
	tests := []struct {
		name    string
		points  float64
		want    float64
		rawBase float64
	}{
		{name: "negative penalty deducts", points: -1, rawBase: 8, want: 3.8},
		{name: "positive penalty increases", points: 1, rawBase: 8, want: 5.8},
		{name: "zero penalty is neutral", points: 0, rawBase: 8, want: 4.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := LLMScoringPayload{
				CategoryResults: []LLMCategoryResult{
					{CategoryName: "correctness", RawScore: tt.rawBase},
				},
				PenaltiesApplied: []LLMPenaltyApplied{
					{Code: "NO_IO", Points: tt.points},
				},
			}

			_, total := ScorePayload(testRubric(), payload)
			assert.InDelta(t, tt.want, total, 1e-9)
		})
	}
}

func TestScorePayloadClampsTotalOnly(t *testing.T) {
	payload := LLMScoringPayload{
		CategoryResults: []LLMCategoryResult{
			{CategoryName: "correctness", RawScore: 8},
		},
		PenaltiesApplied: []LLMPenaltyApplied{
			{Code: "PLAGIARISM", Points: -20},
		},
	}

	results, total := ScorePayload(testRubric(), payload)

	assert.Equal(t, MinTotalScore, total)
	// The category result still shows the unclamped contribution.
	assert.InDelta(t, 4.8, results[0].WeightedScore, 1e-9)
}

func TestScorePayloadPreservesPayloadOrder(t *testing.T) {
	payload := LLMScoringPayload{
		CategoryResults: []LLMCategoryResult{
			{CategoryName: "readability", RawScore: 5},
			{CategoryName: "creativity", RawScore: 2},
			{CategoryName: "correctness", RawScore: 8},
		},
	}

	results, _ := ScorePayload(testRubric(), payload)

	require.Len(t, results, 3)
	assert.Equal(t, "readability", results[0].CategoryName)
	assert.Equal(t, "creativity", results[1].CategoryName)
	assert.Equal(t, "correctness", results[2].CategoryName)
}

func TestScorePayloadCopiesBandDecisionVerbatim(t *testing.T) {
	payload := LLMScoringPayload{
		CategoryResults: []LLMCategoryResult{
			{
				CategoryName: "correctness",
				RawScore:     8,
				BandDecision: LLMBandDecision{
					MinScore:    5,
					MaxScore:    10,
					Description: "solves the problem",
					Rationale:   "all test cases pass",
				},
			},
		},
	}

	results, _ := ScorePayload(testRubric(), payload)

	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0].BandDecision.MinScore)
	assert.Equal(t, 10, results[0].BandDecision.MaxScore)
	assert.Equal(t, "solves the problem", results[0].BandDecision.Description)
	assert.Equal(t, "all test cases pass", results[0].BandDecision.Rationale)
}

func TestScorePayloadEndToEndExample(t *testing.T) {
	// One category at 8 raw with weight 0.6, plus a -1 penalty:
	// 8*0.6 - 1 = 3.8.
	rubric := Rubric{
		Categories: []RubricCategory{
			{Name: "correctness", MaxPoints: 10, Weight: 0.6},
		},
	}
	payload := LLMScoringPayload{
		CategoryResults: []LLMCategoryResult{
			{CategoryName: "correctness", RawScore: 8},
		},
		PenaltiesApplied: []LLMPenaltyApplied{
			{Code: "NO_IO", Points: -1},
		},
	}

	_, total := ScorePayload(rubric, payload)
	assert.InDelta(t, 3.8, total, 1e-9)
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{name: "below minimum", score: -2.5, want: 0},
		{name: "above maximum", score: 14.2, want: 10},
		{name: "in range unchanged", score: 6.8, want: 6.8},
		{name: "exact minimum", score: 0, want: 0},
		{name: "exact maximum", score: 10, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampScore(tt.score))
		})
	}
}

func TestBuildResponseRelaysPenaltiesAndFeedback(t *testing.T) {
	payload := LLMScoringPayload{
		PenaltiesApplied: []LLMPenaltyApplied{
			{Code: "NO_IO", Points: -1, Reason: "stdin never read"},
		},
		Feedback: "good structure overall",
	}

	resp := BuildResponse(nil, 3.8, payload, ProviderGemini)

	require.Len(t, resp.PenaltiesApplied, 1)
	assert.Equal(t, "NO_IO", resp.PenaltiesApplied[0].Code)
	assert.Equal(t, -1.0, resp.PenaltiesApplied[0].Points)
	assert.Equal(t, "stdin never read", resp.PenaltiesApplied[0].Reason)
	assert.Equal(t, "good structure overall", resp.Feedback)
	assert.Equal(t, ProviderGemini, resp.ProviderUsed)
	assert.InDelta(t, 3.8, resp.TotalScore, 1e-9)
}
