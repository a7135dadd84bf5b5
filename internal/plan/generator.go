package plan

import "context"

// Generator produces raw plan text for a request. Implementations may
// call a model or return prepared text; Parse tolerates any output, so
// a generator error is the only way planning can be reported upstream.
type Generator interface {
	GeneratePlan(ctx context.Context, request string) (string, error)
}

// StaticGenerator returns fixed plan text. It backs plan-file runs and
// tests that need a predetermined plan.
type StaticGenerator struct {
	Text string
}

// GeneratePlan returns the stored text unchanged.
func (s StaticGenerator) GeneratePlan(_ context.Context, _ string) (string, error) {
	return s.Text, nil
}
