package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-scoring/engine/internal/domain"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare object passes through",
			raw:  `{"feedback":"ok"}`,
			want: `{"feedback":"ok"}`,
		},
		{
			name: "object inside prose",
			raw:  `Here is my grading: {"feedback":"ok"} hope that helps!`,
			want: `{"feedback":"ok"}`,
		},
		{
			name: "json fence preferred over prose",
			raw:  "noise {\"wrong\":1} before\n```json\n{\"feedback\":\"ok\"}\n```\ntrailing",
			want: `{"feedback":"ok"}`,
		},
		{
			name: "generic fence with language id",
			raw:  "```javascript\n{\"feedback\":\"ok\"}\n```",
			want: `{"feedback":"ok"}`,
		},
		{
			name: "braces inside strings do not terminate",
			raw:  `{"feedback":"use {x} carefully","score":1}`,
			want: `{"feedback":"use {x} carefully","score":1}`,
		},
		{
			name: "escaped quote inside string",
			raw:  `{"feedback":"he said \"hi\"","score":1}`,
			want: `{"feedback":"he said \"hi\"","score":1}`,
		},
		{
			name: "nested objects balance",
			raw:  `answer: {"a":{"b":{"c":1}},"d":2} done`,
			want: `{"a":{"b":{"c":1}},"d":2}`,
		},
		{
			name: "unterminated object falls back to remainder",
			raw:  `{"feedback":"truncated`,
			want: `{"feedback":"truncated`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONObjectNoObject(t *testing.T) {
	_, err := ExtractJSONObject("I cannot grade this submission.")
	require.Error(t, err)

	var malformed *domain.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, len("I cannot grade this submission."), malformed.ResponseLength)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips line comments",
			in:   "{\n\"a\": 1, // the score\n\"b\": 2\n}",
			want: "{\n\"a\": 1,\n\"b\": 2\n}",
		},
		{
			name: "removes trailing comma before brace",
			in:   `{"a": 1, "b": 2,}`,
			want: `{"a": 1, "b": 2}`,
		},
		{
			name: "removes trailing comma before bracket",
			in:   `{"a": [1, 2,]}`,
			want: `{"a": [1, 2]}`,
		},
		{
			name: "clean input unchanged",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestExtractWellFormedPayloadIsIdentity(t *testing.T) {
	clean := `{"category_results":[],"penalties_applied":[],"feedback":"ok"}`

	got, err := ExtractJSONObject(clean)
	require.NoError(t, err)
	assert.Equal(t, clean, got)

	payload, err := Parse(got)
	require.NoError(t, err)
	assert.Empty(t, payload.CategoryResults)
	assert.Equal(t, "ok", payload.Feedback)
}

func TestExtractFencedPayloadWithSurroundingNoise(t *testing.T) {
	raw := "noise ```json\n{\"category_results\":[],\"penalties_applied\":[],\"feedback\":\"ok\"}\n``` trailing"

	got, err := ExtractJSONObject(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"category_results":[],"penalties_applied":[],"feedback":"ok"}`, got)

	payload, err := Parse(got)
	require.NoError(t, err)
	assert.Empty(t, payload.CategoryResults)
	assert.Empty(t, payload.PenaltiesApplied)
	assert.Equal(t, "ok", payload.Feedback)
}

func TestExtractThenParseRoundTrip(t *testing.T) {
	raw := "Sure! Here is the grading:\n```json\n" +
		"{\n" +
		"  \"category_results\": [\n" +
		"    {\n" +
		"      \"category_name\": \"correctness\", // main category\n" +
		"      \"raw_score\": 8,\n" +
		"      \"band_decision\": {\"min_score\": 5, \"max_score\": 10, \"description\": \"solves it\", \"rationale\": \"works\"},\n" +
		"    }\n" +
		"  ],\n" +
		"  \"feedback\": \"nice work\"\n" +
		"}\n" +
		"```"

	jsonText, err := ExtractJSONObject(raw)
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(jsonText)), "sanitized output must be valid JSON: %s", jsonText)

	payload, err := Parse(jsonText)
	require.NoError(t, err)
	require.Len(t, payload.CategoryResults, 1)
	assert.Equal(t, "correctness", payload.CategoryResults[0].CategoryName)
	assert.Equal(t, 8.0, payload.CategoryResults[0].RawScore)
	assert.Equal(t, "nice work", payload.Feedback)
}
