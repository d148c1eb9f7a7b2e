package problems

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirStore serves problems from a directory of JSON files, one per problem
// (A.json, B.json, ...). It backs the static deployment, where the problem
// set ships alongside the pages and there is no API server.
type DirStore struct {
	dir string
}

// NewDirStore opens dir, creating it if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create problems dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// ListProblems returns summaries of every problem in the directory, ordered
// by ID.
func (s *DirStore) ListProblems(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read problems dir: %w", err)
	}
	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		if !ValidID(id) {
			continue
		}
		p, err := s.GetProblem(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, p.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

// GetProblem reads one problem file. Returns ErrNotFound when the ID is
// malformed or no file exists for it.
func (s *DirStore) GetProblem(ctx context.Context, id string) (Problem, error) {
	if err := ctx.Err(); err != nil {
		return Problem{}, err
	}
	if !ValidID(id) {
		return Problem{}, fmt.Errorf("problem %q: %w", id, ErrNotFound)
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Problem{}, fmt.Errorf("problem %q: %w", id, ErrNotFound)
		}
		return Problem{}, fmt.Errorf("failed to read problem %q: %w", id, err)
	}
	var p Problem
	if err := json.Unmarshal(data, &p); err != nil {
		return Problem{}, fmt.Errorf("failed to decode problem %q: %w", id, err)
	}
	return p, nil
}

// PutProblem validates p and writes it, replacing any existing file. The
// write goes through a temp file and rename so readers never see a partial
// problem.
func (s *DirStore) PutProblem(ctx context.Context, p Problem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode problem %q: %w", p.ID, err)
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write problem %q: %w", p.ID, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write problem %q: %w", p.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write problem %q: %w", p.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(p.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write problem %q: %w", p.ID, err)
	}
	return nil
}

// DeleteProblem removes the problem file. Deleting an absent problem is not
// an error, matching the API's tolerant delete.
func (s *DirStore) DeleteProblem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidID(id) {
		return fmt.Errorf("problem %q: %w", id, ErrNotFound)
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete problem %q: %w", id, err)
	}
	return nil
}

func (s *DirStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
