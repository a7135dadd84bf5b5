package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/quantfoundry/vantage/internal/config"
	"github.com/quantfoundry/vantage/internal/executor"
	"github.com/quantfoundry/vantage/internal/llm"
	"github.com/quantfoundry/vantage/internal/market"
	"github.com/quantfoundry/vantage/internal/plan"
	"github.com/quantfoundry/vantage/pkg/models"
)

// executionStack bundles what a run needs for the chosen executor mode.
// generator and client are nil in canned mode.
type executionStack struct {
	registry  *executor.Registry
	generator plan.Generator
	client    *llm.Client
}

// buildStack wires the executor registry and plan generator for the
// requested mode. The llm stack shares one API client between the
// planner and all providers so token accounting covers the whole run.
func buildStack(cfg *config.Config, mode string) (*executionStack, error) {
	switch mode {
	case "", config.ModeCanned:
		catalog, err := market.Load()
		if err != nil {
			return nil, fmt.Errorf("load market catalog: %w", err)
		}
		return &executionStack{registry: executor.NewBuiltinRegistry(catalog)}, nil

	case config.ModeLLM:
		apiKey := ""
		if !cfg.UseAWSBedrock {
			key, err := config.GetAPIKey(cfg)
			if err != nil {
				return nil, err
			}
			apiKey = key
		}

		client, err := llm.NewClient(llm.ClientConfig{
			Model:         anthropic.Model(cfg.Model),
			APIKey:        apiKey,
			UseAWSBedrock: cfg.UseAWSBedrock,
			AWSRegion:     cfg.AWSRegion,
			AWSProfile:    cfg.AWSProfile,
		})
		if err != nil {
			return nil, fmt.Errorf("create API client: %w", err)
		}

		registry := executor.NewRegistry()
		for _, kind := range []string{
			models.KindDataCollector,
			models.KindTechnicalAnalyst,
			models.KindNewsAnalyst,
			models.KindRiskAssessor,
			models.KindReportGenerator,
		} {
			registry.Register(kind, llm.NewProvider(client, kind))
		}

		return &executionStack{
			registry:  registry,
			generator: llm.NewPlanGenerator(client),
			client:    client,
		}, nil

	default:
		return nil, fmt.Errorf("unknown executor mode %q: must be %s or %s",
			mode, config.ModeCanned, config.ModeLLM)
	}
}
