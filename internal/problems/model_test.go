package problems

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	p := Problem{ID: " b ", Title: " Two Sum ", Statement: "s"}
	p.Normalize()
	if p.ID != "B" {
		t.Errorf("ID = %q, want B", p.ID)
	}
	if p.Title != "Two Sum" {
		t.Errorf("Title = %q, want trimmed", p.Title)
	}
	if p.Samples == nil {
		t.Error("Samples still nil after Normalize")
	}
}

func TestValidate(t *testing.T) {
	valid := Problem{ID: "A", Title: "Two Sum", Statement: "Find two numbers."}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid problem rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Problem)
	}{
		{"empty id", func(p *Problem) { p.ID = "" }},
		{"two letter id", func(p *Problem) { p.ID = "AB" }},
		{"lowercase id", func(p *Problem) { p.ID = "a" }},
		{"digit id", func(p *Problem) { p.ID = "1" }},
		{"empty title", func(p *Problem) { p.Title = "" }},
		{"empty statement", func(p *Problem) { p.Statement = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("%s accepted", tc.name)
			}
		})
	}
}

func TestValidID(t *testing.T) {
	for _, id := range []string{"A", "M", "Z"} {
		if !ValidID(id) {
			t.Errorf("ValidID(%q) = false", id)
		}
	}
	for _, id := range []string{"", "a", "AA", "1", "A/", "../A"} {
		if ValidID(id) {
			t.Errorf("ValidID(%q) = true", id)
		}
	}
}

func TestProblemWireFormat(t *testing.T) {
	p := Problem{ID: "A", Title: "Two Sum", Statement: "Find two numbers."}
	p.Normalize()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)

	// The detail contract always carries these keys, even empty.
	for _, key := range []string{`"input":`, `"output":`, `"statement":`, `"constraints":`, `"vjLink":`, `"samples":[]`} {
		if !strings.Contains(s, key) {
			t.Errorf("detail JSON missing %s: %s", key, s)
		}
	}
	// Optional fields stay off the wire when unset.
	for _, key := range []string{`"origin"`, `"timeLimit"`, `"note"`} {
		if strings.Contains(s, key) {
			t.Errorf("detail JSON carries unset %s: %s", key, s)
		}
	}
}

func TestSummaryWireFormat(t *testing.T) {
	// List rows use snake_case, unlike the camelCase detail.
	raw := `{"id":"B","title":"Graphs","origin":"Regional 2019","time_limit":"2 seconds","memory_limit":"256 megabytes"}`
	var s Summary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.ID != "B" || s.TimeLimit != "2 seconds" || s.MemoryLimit != "256 megabytes" {
		t.Errorf("decoded summary = %+v", s)
	}
}

func TestProblemSummaryProjection(t *testing.T) {
	p := Problem{
		ID:          "C",
		Title:       "Strings",
		Origin:      "ICPC",
		TimeLimit:   "1 second",
		MemoryLimit: "64 megabytes",
		Statement:   "...",
		Samples:     []Sample{{Input: "1", Output: "2"}},
	}
	got := p.Summary()
	want := Summary{ID: "C", Title: "Strings", Origin: "ICPC", TimeLimit: "1 second", MemoryLimit: "64 megabytes"}
	if got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
}
