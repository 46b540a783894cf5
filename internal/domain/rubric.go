// Package domain defines the data model for rubric-based code grading:
// rubrics supplied by the caller, requests and responses of a grading call,
// the untrusted payload recovered from a language model's reply, and the
// deterministic aggregation that turns both into a final score.
package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RubricBand is one scoring tier within a category. A grader selects a band
// and justifies the choice; the band text itself is free-form.
type RubricBand struct {
	// MinScore is the lower bound of the band, inclusive.
	MinScore int `json:"min_score" yaml:"min_score" validate:"min=0,max=10"`
	// MaxScore is the upper bound of the band, inclusive.
	// Must be greater than or equal to MinScore.
	MaxScore int `json:"max_score" yaml:"max_score" validate:"min=0,max=10,gtefield=MinScore"`
	// Description explains what kind of submission falls into this band.
	Description string `json:"description" yaml:"description"`
}

// RubricCategory is a single graded dimension of a submission, such as
// correctness or readability. Bands within a category need not be contiguous
// or exhaustive.
type RubricCategory struct {
	// Name identifies the category. Names must be unique within a rubric.
	Name string `json:"name" yaml:"name" validate:"required"`
	// MaxPoints is the maximum raw score the category can earn.
	MaxPoints int `json:"max_points" yaml:"max_points" validate:"min=0,max=10"`
	// Weight scales the category's contribution to the total score.
	Weight float64 `json:"weight" yaml:"weight" validate:"min=0,max=1"`
	// Bands are the selectable scoring tiers for this category.
	Bands []RubricBand `json:"bands" yaml:"bands" validate:"dive"`
}

// PenaltyRule describes a deduction the grader may apply, such as missing
// input/output handling. Points are sign-free in the rule; they are always
// meant as a deduction.
type PenaltyRule struct {
	Code        string `json:"code" yaml:"code" validate:"required"`
	Description string `json:"description" yaml:"description"`
	Points      int    `json:"points" yaml:"points"`
}

// Rubric is the caller-supplied grading schema: an ordered list of weighted
// categories plus optional penalty rules.
type Rubric struct {
	Categories []RubricCategory `json:"categories" yaml:"categories" validate:"required,min=1,dive"`
	Penalties  []PenaltyRule    `json:"penalties" yaml:"penalties" validate:"dive"`
}

// Validate checks structural constraints and the category-name uniqueness
// invariant. It returns a *ValidationError describing every violation found.
func (r *Rubric) Validate() error {
	verr := NewValidationError("rubric")

	if err := validate.Struct(r); err != nil {
		verr.AddError(err.Error())
	}

	seen := make(map[string]bool, len(r.Categories))
	for _, category := range r.Categories {
		if seen[category.Name] {
			verr.AddError(fmt.Sprintf("duplicate category name %q", category.Name))
		}
		seen[category.Name] = true
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// CategoryByName returns the category with the given name and true when it
// exists. Lookup is by exact name equality.
func (r *Rubric) CategoryByName(name string) (RubricCategory, bool) {
	for _, category := range r.Categories {
		if category.Name == name {
			return category, true
		}
	}
	return RubricCategory{}, false
}
