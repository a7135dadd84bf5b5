package llm

import (
	"context"
	"fmt"
)

// PlanGenerator asks the model to decompose a research request into the
// task-tree interchange format. It satisfies plan.Generator; the parser
// decides whether the output is usable.
type PlanGenerator struct {
	client *Client
}

// NewPlanGenerator creates a plan generator backed by the given client.
func NewPlanGenerator(client *Client) *PlanGenerator {
	return &PlanGenerator{client: client}
}

// GeneratePlan returns the model's raw plan output for the request.
func (p *PlanGenerator) GeneratePlan(ctx context.Context, request string) (string, error) {
	return p.client.Complete(ctx, plannerSystem, fmt.Sprintf(plannerPrompt, request))
}
