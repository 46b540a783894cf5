package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/code-scoring/engine/internal/domain"
)

// DefaultBatchConcurrency bounds how many submissions of one batch are graded
// at the same time when no limit is configured.
const DefaultBatchConcurrency = 4

// BatchScoringRequest grades several submissions in one call. Each submission
// is an independent grading request and may target a different provider.
type BatchScoringRequest struct {
	Requests []domain.ScoringRequest `json:"requests" validate:"required,min=1"`
}

// BatchScoringResponse collects the successful results of a batch. Failed
// submissions are logged and excluded; TotalProcessed counts successes only.
type BatchScoringResponse struct {
	Results        []domain.ScoringResponse `json:"results"`
	TotalProcessed int                      `json:"total_processed"`
}

// ScoreBatch grades every submission in the batch with bounded concurrency.
//
// A submission that fails for any reason is dropped from the results; one bad
// submission never aborts the batch. Input order is preserved among the
// survivors. The batch itself fails only when the request carries no
// submissions at all.
func (s *ScoringService) ScoreBatch(ctx context.Context, req *BatchScoringRequest, concurrency int) (*BatchScoringResponse, error) {
	if len(req.Requests) == 0 {
		verr := domain.NewValidationError("batch scoring request")
		verr.AddError("requests is required and must contain at least one submission")
		return nil, verr
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	slots := make([]*domain.ScoringResponse, len(req.Requests))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i := range req.Requests {
		group.Go(func() error {
			submission := req.Requests[i]
			resp, err := s.Score(groupCtx, &submission)
			if err != nil {
				s.logger.Error().
					Err(err).
					Int("index", i).
					Str("provider", submission.LLMProvider.String()).
					Msg("submission failed, excluding from batch results")
				return nil
			}
			slots[i] = resp
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes.
	_ = group.Wait()

	results := make([]domain.ScoringResponse, 0, len(slots))
	for _, resp := range slots {
		if resp != nil {
			results = append(results, *resp)
		}
	}

	s.logger.Debug().
		Int("total_processed", len(results)).
		Int("submitted", len(req.Requests)).
		Msg("batch grading complete")

	return &BatchScoringResponse{
		Results:        results,
		TotalProcessed: len(results),
	}, nil
}
