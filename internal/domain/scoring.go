package domain

// ProviderKind identifies a specific LLM backend. The set is closed and fixed
// at deployment; adapters exist for each kind.
type ProviderKind string

// Supported provider kinds.
const (
	ProviderOpenAI   ProviderKind = "openai"
	ProviderGemini   ProviderKind = "gemini"
	ProviderDeepSeek ProviderKind = "deepseek"
	ProviderGrok     ProviderKind = "grok"
	ProviderLMStudio ProviderKind = "lmstudio"
	ProviderOllama   ProviderKind = "ollama"
)

// String returns the wire representation of the provider kind.
func (p ProviderKind) String() string { return string(p) }

// IsValid reports whether the provider kind is one of the supported backends.
func (p ProviderKind) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderGemini, ProviderDeepSeek,
		ProviderGrok, ProviderLMStudio, ProviderOllama:
		return true
	}
	return false
}

// ScoringRequest is one grading call: the problem, the submitted code, and
// the rubric to grade against. It is constructed per incoming call and
// discarded after the response is produced.
type ScoringRequest struct {
	// LLMProvider selects the backend that performs the grading.
	LLMProvider ProviderKind `json:"llm_provider" validate:"required"`
	// ProblemDescription is the statement of the exercise being graded.
	ProblemDescription string `json:"problem_description" validate:"required"`
	// StudentCode is the submission under evaluation.
	StudentCode string `json:"student_code" validate:"required"`
	// ProgrammingLanguage is the language of the submission.
	ProgrammingLanguage string `json:"programming_language" validate:"required,oneof=cpp python javascript java"`
	// Rubric is the grading schema the score is computed from.
	Rubric Rubric `json:"rubric" validate:"required"`
	// Language is the natural language the feedback should be written in.
	Language string `json:"language,omitempty"`
	// Model optionally overrides the provider's configured model.
	Model string `json:"model,omitempty"`
}

// Validate checks that the request is structurally complete.
// An incomplete request is a client-side fault and is never retried.
func (r *ScoringRequest) Validate() error {
	verr := NewValidationError("scoring request")

	if err := validate.Struct(r); err != nil {
		verr.AddError(err.Error())
	}
	if !r.LLMProvider.IsValid() {
		verr.AddError("llm_provider is not a supported provider")
	}
	if err := r.Rubric.Validate(); err != nil {
		verr.AddError(err.Error())
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// LLMBandDecision is the band a model claims to have selected for a category,
// together with its rationale. It is untrusted: the referenced band may not
// exist in the rubric.
type LLMBandDecision struct {
	MinScore    int    `json:"min_score"`
	MaxScore    int    `json:"max_score"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

// LLMCategoryResult is one category grade reported by the model. The category
// name is not guaranteed to match any rubric category and the raw score is
// not range-checked; the aggregation engine tolerates both.
type LLMCategoryResult struct {
	CategoryName string          `json:"category_name"`
	RawScore     float64         `json:"raw_score"`
	BandDecision LLMBandDecision `json:"band_decision"`
}

// LLMPenaltyApplied is a penalty the model chose to apply. Points are taken
// literally: a deduction must already be encoded as a non-positive number.
type LLMPenaltyApplied struct {
	Code   string  `json:"code"`
	Points float64 `json:"points"`
	Reason string  `json:"reason,omitempty"`
}

// LLMScoringPayload is the structured data recovered from the model's
// free-text reply. It has passed schema validation but nothing in it is
// trusted to reference valid rubric entries.
type LLMScoringPayload struct {
	CategoryResults  []LLMCategoryResult `json:"category_results"`
	PenaltiesApplied []LLMPenaltyApplied `json:"penalties_applied"`
	Feedback         string              `json:"feedback,omitempty"`
}

// CategoryBandDecision is the band decision relayed into the trusted
// response. Text and rationale are copied verbatim from the model payload,
// never recomputed.
type CategoryBandDecision struct {
	MinScore    int    `json:"min_score"`
	MaxScore    int    `json:"max_score"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

// CategoryResult is one category's contribution to the final score.
type CategoryResult struct {
	CategoryName string `json:"category_name"`
	// RawScore is the model-reported score before weighting.
	RawScore float64 `json:"raw_score"`
	// PointsPossible is the category maximum from the rubric, or the default
	// when the model named a category outside the rubric.
	PointsPossible float64 `json:"points_possible"`
	// Weight is the resolved rubric weight, or 1.0 for unknown categories.
	Weight float64 `json:"weight"`
	// WeightedScore is RawScore * Weight.
	WeightedScore float64              `json:"weighted_score"`
	BandDecision  CategoryBandDecision `json:"band_decision"`
}

// PenaltyApplied is a penalty relayed into the trusted response.
type PenaltyApplied struct {
	Code   string  `json:"code"`
	Points float64 `json:"points"`
	Reason string  `json:"reason,omitempty"`
}

// ScoringResponse is the trusted output of a grading call. It is constructed
// once by the aggregation engine and immutable thereafter.
type ScoringResponse struct {
	// TotalScore is the weighted, penalized total clamped to [0, 10].
	TotalScore       float64          `json:"total_score"`
	CategoryResults  []CategoryResult `json:"category_results"`
	PenaltiesApplied []PenaltyApplied `json:"penalties_applied"`
	ProviderUsed     ProviderKind     `json:"provider_used"`
	Feedback         string           `json:"feedback,omitempty"`
}
