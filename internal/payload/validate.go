package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/code-scoring/engine/internal/domain"
)

var validate = validator.New()

// Wire types mirror the expected payload schema with pointer fields so that
// absent keys are distinguishable from zero values. A raw_score of 0 or a
// min_score of 0 is valid; a missing one is not.

type wireBandDecision struct {
	MinScore    *int    `json:"min_score" validate:"required"`
	MaxScore    *int    `json:"max_score" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Rationale   *string `json:"rationale" validate:"required"`
}

type wireCategoryResult struct {
	CategoryName *string           `json:"category_name" validate:"required"`
	RawScore     *float64          `json:"raw_score" validate:"required"`
	BandDecision *wireBandDecision `json:"band_decision" validate:"required"`
}

type wirePenaltyApplied struct {
	Code   *string  `json:"code" validate:"required"`
	Points *float64 `json:"points" validate:"required"`
	Reason *string  `json:"reason"`
}

type wirePayload struct {
	CategoryResults  *[]wireCategoryResult `json:"category_results"`
	PenaltiesApplied []wirePenaltyApplied  `json:"penalties_applied"`
	Feedback         *string               `json:"feedback"`
}

// Parse decodes sanitized JSON text into a scoring payload and validates it
// against the expected schema.
//
// category_results must be present and be a sequence, and every element
// needs category_name, raw_score, and a band_decision carrying all four band
// fields. penalties_applied and feedback may be omitted and default to empty.
// Any parse or structural failure is reported as a
// *domain.SchemaValidationError carrying the underlying complaint.
func Parse(jsonText string) (domain.LLMScoringPayload, error) {
	var wire wirePayload

	decoder := json.NewDecoder(strings.NewReader(jsonText))
	if err := decoder.Decode(&wire); err != nil {
		return domain.LLMScoringPayload{}, domain.NewSchemaValidationError(
			fmt.Errorf("invalid JSON: %w", err))
	}

	if wire.CategoryResults == nil {
		return domain.LLMScoringPayload{}, domain.NewSchemaValidationError(
			fmt.Errorf("category_results is required and must be a sequence"))
	}

	result := domain.LLMScoringPayload{
		CategoryResults:  make([]domain.LLMCategoryResult, 0, len(*wire.CategoryResults)),
		PenaltiesApplied: make([]domain.LLMPenaltyApplied, 0, len(wire.PenaltiesApplied)),
	}

	for i, category := range *wire.CategoryResults {
		if err := validate.Struct(category); err != nil {
			return domain.LLMScoringPayload{}, domain.NewSchemaValidationError(
				fmt.Errorf("category_results[%d]: %w", i, err))
		}

		result.CategoryResults = append(result.CategoryResults, domain.LLMCategoryResult{
			CategoryName: *category.CategoryName,
			RawScore:     *category.RawScore,
			BandDecision: domain.LLMBandDecision{
				MinScore:    *category.BandDecision.MinScore,
				MaxScore:    *category.BandDecision.MaxScore,
				Description: *category.BandDecision.Description,
				Rationale:   *category.BandDecision.Rationale,
			},
		})
	}

	for i, penalty := range wire.PenaltiesApplied {
		if err := validate.Struct(penalty); err != nil {
			return domain.LLMScoringPayload{}, domain.NewSchemaValidationError(
				fmt.Errorf("penalties_applied[%d]: %w", i, err))
		}

		applied := domain.LLMPenaltyApplied{
			Code:   *penalty.Code,
			Points: *penalty.Points,
		}
		if penalty.Reason != nil {
			applied.Reason = *penalty.Reason
		}
		result.PenaltiesApplied = append(result.PenaltiesApplied, applied)
	}

	if wire.Feedback != nil {
		result.Feedback = *wire.Feedback
	}

	return result, nil
}
