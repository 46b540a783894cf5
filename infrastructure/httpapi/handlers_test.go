package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-scoring/engine/internal/application"
	"github.com/code-scoring/engine/internal/domain"
	"github.com/code-scoring/engine/internal/ports"
)

type fakeAdapter struct {
	kind domain.ProviderKind
}

func (a *fakeAdapter) Provider() domain.ProviderKind     { return a.kind }
func (a *fakeAdapter) Endpoint(baseURL, _ string) string { return baseURL }
func (a *fakeAdapter) BuildRequest(_, _ string) (http.Header, []byte, error) {
	return http.Header{}, nil, nil
}
func (a *fakeAdapter) ExtractCompletionText(_ []byte) (string, error) { return "", nil }

type fakeRegistry struct{}

func (fakeRegistry) Adapter(kind domain.ProviderKind) (ports.ProviderAdapter, bool) {
	return &fakeAdapter{kind: kind}, true
}

type fakeCaller struct {
	reply string
	err   error
}

func (c *fakeCaller) Call(context.Context, ports.ProviderAdapter, string, string) (string, error) {
	return c.reply, c.err
}

type noopMetrics struct{}

func (noopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (noopMetrics) RecordCounter(string, float64, map[string]string)      {}
func (noopMetrics) RecordHistogram(string, float64, map[string]string)    {}

const modelReply = `{
	"category_results": [
		{
			"category_name": "correctness",
			"raw_score": 8,
			"band_decision": {"min_score": 5, "max_score": 10, "description": "solves it", "rationale": "works"}
		}
	],
	"penalties_applied": [{"code": "NO_IO", "points": -1}],
	"feedback": "well done"
}`

func newTestRouter(t *testing.T, caller ports.CompletionCaller) http.Handler {
	t.Helper()

	templates, err := application.NewTemplateStore("")
	require.NoError(t, err)

	service := application.NewScoringService(fakeRegistry{}, caller, templates, zerolog.Nop())
	handler := NewHandler(service, noopMetrics{}, 2, zerolog.Nop())
	return NewRouter(handler, nil)
}

func scoringRequestBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(domain.ScoringRequest{
		LLMProvider:         domain.ProviderGemini,
		ProblemDescription:  "sum two integers",
		StudentCode:         "print(sum(map(int, input().split())))",
		ProgrammingLanguage: "python",
		Rubric: domain.Rubric{
			Categories: []domain.RubricCategory{
				{Name: "correctness", MaxPoints: 10, Weight: 0.6},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestScoreEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{reply: modelReply})

	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewReader(scoringRequestBody(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ScoringResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 3.8, resp.TotalScore, 1e-9)
	assert.Equal(t, domain.ProviderGemini, resp.ProviderUsed)
	assert.Equal(t, "well done", resp.Feedback)
}

func TestScoreEndpointRejectsInvalidRequest(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{reply: modelReply})

	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "validation")
}

func TestScoreEndpointRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{reply: modelReply})

	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewReader([]byte(`not json`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpointMapsUnparseableReplyTo400(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{reply: "no JSON here"})

	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewReader(scoringRequestBody(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpointMapsTransportFailureTo502(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{err: &ports.ProviderTransportError{
		Provider:   domain.ProviderGemini,
		StatusCode: 503,
		Body:       "overloaded",
	}})

	req := httptest.NewRequest(http.MethodPost, "/score", bytes.NewReader(scoringRequestBody(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "Scoring failed")
}

func TestScoreBatchEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{reply: modelReply})

	single := json.RawMessage(scoringRequestBody(t))
	body, err := json.Marshal(map[string]any{
		"requests": []json.RawMessage{single, single},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/score/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp application.BatchScoringResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalProcessed)
	require.Len(t, resp.Results, 2)
}

func TestScoreBatchEndpointRejectsEmpty(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{reply: modelReply})

	req := httptest.NewRequest(http.MethodPost, "/score/batch", bytes.NewReader([]byte(`{"requests": []}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthzEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeCaller{reply: modelReply})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
