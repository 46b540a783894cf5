// Package application orchestrates the grading pipeline: it renders the
// scoring prompt, drives the provider call, normalizes and validates the
// model's reply, and aggregates the final score.
package application

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/code-scoring/engine/internal/domain"
)

// ScoreTemplateName is the template used for single-submission grading.
const ScoreTemplateName = "score"

// defaultScoreTemplate instructs the model to grade against the rubric and
// reply with a bare JSON object. The sanitizer downstream tolerates fenced
// and commented replies anyway, but asking for clean JSON keeps most models
// honest.
const defaultScoreTemplate = `You are an experienced {{.ProgrammingLanguage}} instructor grading a student submission.

Problem statement:
{{.ProblemDescription}}

Student code ({{.ProgrammingLanguage}}):
{{.StudentCode}}

Grade the submission against this rubric:
{{.RubricText}}

Respond with a single JSON object and nothing else, using exactly this shape:
{
  "category_results": [
    {
      "category_name": "<rubric category name>",
      "raw_score": <number>,
      "band_decision": {
        "min_score": <int>,
        "max_score": <int>,
        "description": "<text of the chosen band>",
        "rationale": "<why this band and score>"
      }
    }
  ],
  "penalties_applied": [
    {"code": "<penalty code>", "points": <number>, "reason": "<why>"}
  ],
  "feedback": "<overall feedback for the student>"
}

Use the exact category names from the rubric. Omit penalties_applied if no penalty applies.
Write all reasons and feedback in {{.Language}}.`

// promptData is the input to a score template.
type promptData struct {
	ProblemDescription  string
	StudentCode         string
	ProgrammingLanguage string
	Language            string
	RubricText          string
}

// TemplateStore holds parsed prompt templates. Templates load once at
// startup; rendering is safe for concurrent use.
type TemplateStore struct {
	templates map[string]*template.Template
}

// NewTemplateStore parses the built-in templates and, when dir is non-empty,
// overrides them with any .tmpl files found there (file stem is the template
// name). A template that fails to parse is a fatal configuration error.
func NewTemplateStore(dir string) (*TemplateStore, error) {
	store := &TemplateStore{templates: make(map[string]*template.Template)}

	builtin, err := template.New(ScoreTemplateName).Parse(defaultScoreTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in score template: %w", err)
	}
	store.templates[ScoreTemplateName] = builtin

	if dir == "" {
		return store, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt templates in %s: %w", dir, err)
	}
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".tmpl")
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template %s: %w", path, err)
		}
		tmpl, err := template.New(name).Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", path, err)
		}
		store.templates[name] = tmpl
	}

	return store, nil
}

// RenderScorePrompt produces the grading prompt for one submission.
func (s *TemplateStore) RenderScorePrompt(req *domain.ScoringRequest) (string, error) {
	tmpl, ok := s.templates[ScoreTemplateName]
	if !ok {
		return "", fmt.Errorf("prompt template %q not loaded", ScoreTemplateName)
	}

	data := promptData{
		ProblemDescription:  req.ProblemDescription,
		StudentCode:         req.StudentCode,
		ProgrammingLanguage: req.ProgrammingLanguage,
		Language:            req.Language,
		RubricText:          RubricText(req.Rubric),
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render score prompt: %w", err)
	}
	return sb.String(), nil
}

// RubricText renders a rubric as the plain-text block embedded in prompts:
// one category per section with its weight, point ceiling, and bands,
// followed by the penalty rules.
func RubricText(rubric domain.Rubric) string {
	var sb strings.Builder

	for _, category := range rubric.Categories {
		fmt.Fprintf(&sb, "Category %q (max %d points, weight %g):\n",
			category.Name, category.MaxPoints, category.Weight)
		for _, band := range category.Bands {
			fmt.Fprintf(&sb, "  %d-%d: %s\n", band.MinScore, band.MaxScore, band.Description)
		}
	}

	if len(rubric.Penalties) > 0 {
		sb.WriteString("Penalties:\n")
		for _, penalty := range rubric.Penalties {
			fmt.Fprintf(&sb, "  %s (%d points): %s\n",
				penalty.Code, penalty.Points, penalty.Description)
		}
	}

	return sb.String()
}
