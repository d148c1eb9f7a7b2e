// Package problems holds the problem-set model and its two backing sources:
// a REST API (api.Client) and a local directory of JSON files for static
// deployments, plus a read-through cache shared by both.
package problems

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound reports that no problem exists under the requested ID,
// regardless of which source was asked.
var ErrNotFound = errors.New("problem not found")

// Sample is one example input/output pair shown under a statement.
type Sample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Problem is the full statement as served by the detail endpoint. Field
// names follow that endpoint's camelCase contract. Statement, Input,
// Output, Constraints and VJLink must always be present on the wire even
// when empty; the create and update endpoints reject documents missing
// any of them. Origin, the limits and Note are genuinely optional.
type Problem struct {
	ID          string   `json:"id" validate:"required,problemid"`
	Title       string   `json:"title" validate:"required"`
	Origin      string   `json:"origin,omitempty"`
	TimeLimit   string   `json:"timeLimit,omitempty"`
	MemoryLimit string   `json:"memoryLimit,omitempty"`
	Statement   string   `json:"statement" validate:"required"`
	Input       string   `json:"input"`
	Output      string   `json:"output"`
	Constraints string   `json:"constraints"`
	Note        string   `json:"note,omitempty"`
	VJLink      string   `json:"vjLink"`
	Samples     []Sample `json:"samples"`
}

// Summary is a list-view row. The list endpoint keeps the database's
// snake_case column names, unlike the detail endpoint.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Origin      string `json:"origin,omitempty"`
	TimeLimit   string `json:"time_limit,omitempty"`
	MemoryLimit string `json:"memory_limit,omitempty"`
}

// Summary projects the list-view row out of a full problem.
func (p Problem) Summary() Summary {
	return Summary{
		ID:          p.ID,
		Title:       p.Title,
		Origin:      p.Origin,
		TimeLimit:   p.TimeLimit,
		MemoryLimit: p.MemoryLimit,
	}
}

// Normalize canonicalizes fields an admin may have typed loosely: the ID is
// trimmed and uppercased, and a nil sample list becomes an empty one so the
// wire always carries an array. Call before Validate.
func (p *Problem) Normalize() {
	p.ID = strings.ToUpper(strings.TrimSpace(p.ID))
	p.Title = strings.TrimSpace(p.Title)
	if p.Samples == nil {
		p.Samples = []Sample{}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Problem IDs are single contest letters: A, B, C, ...
	must(v.RegisterValidation("problemid", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		return len(id) == 1 && id[0] >= 'A' && id[0] <= 'Z'
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks the rules the admin form enforces before a problem is
// saved: an ID of one uppercase letter and a non-empty title and statement.
func (p Problem) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid problem: %w", err)
	}
	return nil
}

// ValidID reports whether id is a well-formed problem ID. Sources use it to
// reject lookups before touching the filesystem or network.
func ValidID(id string) bool {
	return len(id) == 1 && id[0] >= 'A' && id[0] <= 'Z'
}
