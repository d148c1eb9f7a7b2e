package admin

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
)

// ProblemForm is the editable state behind the problem editor. Fields hold
// whatever the admin typed; Problem() turns them into a validated problem.
type ProblemForm struct {
	ID          string
	Title       string
	Origin      string
	TimeLimit   string
	MemoryLimit string
	Statement   string
	Input       string
	Output      string
	Constraints string
	Note        string
	VJLink      string
	Samples     []problems.Sample
}

// NewProblemForm returns an empty form with one blank sample row, the way
// the editor opens.
func NewProblemForm() *ProblemForm {
	f := &ProblemForm{}
	f.Reset()
	return f
}

// Reset clears the form back to its opening state.
func (f *ProblemForm) Reset() {
	*f = ProblemForm{Samples: []problems.Sample{{}}}
}

// Load fills the form from an existing problem for editing.
func (f *ProblemForm) Load(p problems.Problem) {
	f.ID = p.ID
	f.Title = p.Title
	f.Origin = p.Origin
	f.TimeLimit = p.TimeLimit
	f.MemoryLimit = p.MemoryLimit
	f.Statement = p.Statement
	f.Input = p.Input
	f.Output = p.Output
	f.Constraints = p.Constraints
	f.Note = p.Note
	f.VJLink = p.VJLink
	f.Samples = append([]problems.Sample{}, p.Samples...)
	if len(f.Samples) == 0 {
		f.Samples = []problems.Sample{{}}
	}
}

// AddSample appends a blank sample row.
func (f *ProblemForm) AddSample() {
	f.Samples = append(f.Samples, problems.Sample{})
}

// RemoveSample deletes row i, keeping at least one row on the form.
func (f *ProblemForm) RemoveSample(i int) bool {
	if i < 0 || i >= len(f.Samples) || len(f.Samples) == 1 {
		return false
	}
	f.Samples = append(f.Samples[:i], f.Samples[i+1:]...)
	return true
}

// PopulateJSON fills the form from pasted problem JSON. Only keys present
// in the document are assigned; everything else keeps its current value,
// so a partial paste augments rather than clears. Limits given as bare
// numbers are accepted and rendered as their decimal text.
func (f *ProblemForm) PopulateJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse problem JSON: %w", err)
	}

	assign := func(key string, dst *string) error {
		rawValue, ok := raw[key]
		if !ok {
			return nil
		}
		s, err := flexString(rawValue)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		*dst = s
		return nil
	}

	fields := []struct {
		key string
		dst *string
	}{
		{"id", &f.ID},
		{"title", &f.Title},
		{"origin", &f.Origin},
		{"timeLimit", &f.TimeLimit},
		{"memoryLimit", &f.MemoryLimit},
		{"statement", &f.Statement},
		{"input", &f.Input},
		{"output", &f.Output},
		{"constraints", &f.Constraints},
		{"note", &f.Note},
		{"vjLink", &f.VJLink},
	}
	for _, field := range fields {
		if err := assign(field.key, field.dst); err != nil {
			return err
		}
	}

	if rawSamples, ok := raw["samples"]; ok {
		var samples []problems.Sample
		if err := json.Unmarshal(rawSamples, &samples); err != nil {
			return fmt.Errorf("field \"samples\": %w", err)
		}
		if len(samples) == 0 {
			samples = []problems.Sample{{}}
		}
		f.Samples = samples
	}
	return nil
}

// flexString decodes a string, a bare number, or null (which clears: the
// no-op unmarshal leaves the zero string).
func flexString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("expected string or number, got %s", string(raw))
}

// Problem builds and validates the problem the form describes. Sample rows
// left entirely blank are dropped rather than saved.
func (f *ProblemForm) Problem() (problems.Problem, error) {
	samples := make([]problems.Sample, 0, len(f.Samples))
	for _, s := range f.Samples {
		if strings.TrimSpace(s.Input) == "" && strings.TrimSpace(s.Output) == "" {
			continue
		}
		samples = append(samples, s)
	}
	p := problems.Problem{
		ID:          f.ID,
		Title:       f.Title,
		Origin:      f.Origin,
		TimeLimit:   f.TimeLimit,
		MemoryLimit: f.MemoryLimit,
		Statement:   f.Statement,
		Input:       f.Input,
		Output:      f.Output,
		Constraints: f.Constraints,
		Note:        f.Note,
		VJLink:      f.VJLink,
		Samples:     samples,
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return problems.Problem{}, err
	}
	return p, nil
}
