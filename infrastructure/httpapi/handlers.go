// Package httpapi exposes the grading pipeline over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/code-scoring/engine/internal/application"
	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/ports"
)

// Handler serves the scoring endpoints.
type Handler struct {
	service     *application.ScoringService
	metrics     ports.MetricsCollector
	concurrency int
	logger      zerolog.Logger
}

// NewHandler creates the HTTP handler around the scoring service.
func NewHandler(
	service *application.ScoringService,
	metrics ports.MetricsCollector,
	batchConcurrency int,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		service:     service,
		metrics:     metrics,
		concurrency: batchConcurrency,
		logger:      logger,
	}
}

// errorBody is the JSON error envelope returned on failures.
type errorBody struct {
	Detail string `json:"detail"`
}

// Score handles POST /score: grade one submission.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req domain.ScoringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Score(r.Context(), &req)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.metrics.RecordHistogram("scoring_total_score", resp.TotalScore,
		map[string]string{"provider": resp.ProviderUsed.String()})
	writeJSON(w, http.StatusOK, resp)
}

// ScoreBatch handles POST /score/batch: grade several submissions, dropping
// individual failures.
func (h *Handler) ScoreBatch(w http.ResponseWriter, r *http.Request) {
	var req application.BatchScoringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.ScoreBatch(r.Context(), &req, h.concurrency)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeFailure maps pipeline errors onto HTTP statuses. Client-side faults
// (bad request, unrecoverable model reply) are 400; provider-side faults are
// 502; everything else is 500.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		malformedErr  *domain.MalformedResponseError
		schemaErr     *domain.SchemaValidationError
		shapeErr      *ports.UnexpectedProviderShapeError
		transportErr  *ports.ProviderTransportError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &malformedErr),
		errors.As(err, &schemaErr):
		h.logger.Warn().Err(err).Msg("rejected scoring request")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &shapeErr),
		errors.As(err, &transportErr),
		errors.Is(err, ports.ErrProviderNotConfigured),
		errors.Is(err, ports.ErrEmptyCompletion):
		h.logger.Error().Err(err).Msg("provider call failed")
		writeError(w, http.StatusBadGateway, "Scoring failed: "+err.Error())
	default:
		h.logger.Error().Err(err).Msg("unexpected scoring failure")
		writeError(w, http.StatusInternalServerError, "Scoring failed: "+err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
