package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/payload"
	"github.com/code-scoring/engine/internal/ports"
)

// DefaultFeedbackLanguage is used when a request does not specify the natural
// language for feedback.
const DefaultFeedbackLanguage = "Vietnamese"

// ScoringService runs the full grading pipeline for one submission: validate
// the request, render the prompt, call the selected provider, recover the
// structured payload from the model's reply, and aggregate the final score.
type ScoringService struct {
	registry  ports.AdapterRegistry
	caller    ports.CompletionCaller
	templates *TemplateStore
	logger    zerolog.Logger
}

// NewScoringService wires the grading pipeline together.
func NewScoringService(
	registry ports.AdapterRegistry,
	caller ports.CompletionCaller,
	templates *TemplateStore,
	logger zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		registry:  registry,
		caller:    caller,
		templates: templates,
		logger:    logger,
	}
}

// Score grades one submission.
//
// Request validation failures, an unsupported provider, and unrecoverable
// model replies surface as typed errors; callers map them to client or
// upstream faults. The returned response is fully aggregated and clamped.
func (s *ScoringService) Score(ctx context.Context, req *domain.ScoringRequest) (*domain.ScoringResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Language == "" {
		req.Language = DefaultFeedbackLanguage
	}

	adapter, ok := s.registry.Adapter(req.LLMProvider)
	if !ok {
		verr := domain.NewValidationError("scoring request")
		verr.AddError(fmt.Sprintf("provider %q is not configured", req.LLMProvider))
		return nil, verr
	}

	prompt, err := s.templates.RenderScorePrompt(req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("provider", req.LLMProvider.String()).
		Int("prompt_length", len(prompt)).
		Msg("built scoring prompt")

	rawText, err := s.caller.Call(ctx, adapter, prompt, req.Model)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int("response_length", len(rawText)).
		Msg("received model reply")

	jsonText, err := payload.ExtractJSONObject(rawText)
	if err != nil {
		return nil, err
	}

	llmPayload, err := payload.Parse(jsonText)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int("categories", len(llmPayload.CategoryResults)).
		Int("penalties", len(llmPayload.PenaltiesApplied)).
		Msg("parsed model payload")

	results, total := domain.ScorePayload(req.Rubric, llmPayload)
	s.logger.Debug().
		Float64("total_score", total).
		Msg("aggregated final score")

	return domain.BuildResponse(results, total, llmPayload, req.LLMProvider), nil
}
