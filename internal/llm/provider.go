package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quantfoundry/vantage/internal/executor"
	"github.com/quantfoundry/vantage/pkg/models"
)

// Provider executes tasks of one kind by delegating to the model with a
// role-specific system prompt. One Provider instance is registered per
// executor kind; they share a client and therefore a token tracker.
type Provider struct {
	client *Client
	kind   string
}

// NewProvider creates a model-backed provider for the given kind.
func NewProvider(client *Client, kind string) *Provider {
	return &Provider{client: client, kind: kind}
}

// Execute implements executor.Provider.
func (p *Provider) Execute(ctx context.Context, req executor.Request) (string, error) {
	system, ok := rolePrompts[p.kind]
	if !ok {
		system = rolePrompts[models.KindDataCollector]
	}

	out, err := p.client.Complete(ctx, system, taskPrompt(req))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errors.New("model returned an empty result")
	}
	return out, nil
}

// taskPrompt renders the user prompt for one task: the original request,
// the task itself, its parameters, and the results of its dependencies.
func taskPrompt(req executor.Request) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Original request: %s\n\n", req.UserQuery))
	sb.WriteString(fmt.Sprintf("Your task: %s\n", req.Task.Name))
	if req.Task.Description != "" {
		sb.WriteString(req.Task.Description + "\n")
	}

	if len(req.Task.Parameters) > 0 {
		keys := make([]string, 0, len(req.Task.Parameters))
		for k := range req.Task.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nParameters:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", k, req.Task.Parameters[k]))
		}
	}

	upstream := false
	for _, depID := range req.Task.Dependencies {
		result, ok := req.Completed[depID]
		if !ok || result == "" {
			continue
		}
		if !upstream {
			sb.WriteString("\nUpstream results:\n")
			upstream = true
		}
		sb.WriteString(fmt.Sprintf("[%s]\n%s\n\n", depID, result))
	}

	sb.WriteString("\nRespond with the analysis text only, no preamble.")
	return sb.String()
}
