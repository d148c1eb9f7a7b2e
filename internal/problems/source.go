package problems

import "context"

// Source defines what the pages need from a problem backend: the list for
// the landing page and full statements for the problem view.
type Source interface {
	ListProblems(ctx context.Context) ([]Summary, error)
	GetProblem(ctx context.Context, id string) (Problem, error)
}
