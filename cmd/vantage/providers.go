package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfoundry/vantage/internal/config"
	"github.com/quantfoundry/vantage/internal/executor"
	"github.com/quantfoundry/vantage/internal/market"
	"github.com/quantfoundry/vantage/pkg/models"
)

// kindDescriptions explains what each executor kind produces.
var kindDescriptions = map[string]string{
	models.KindDataCollector:    "quote, fundamentals, and trading history",
	models.KindTechnicalAnalyst: "trend, momentum, and key price levels",
	models.KindNewsAnalyst:      "headlines, sentiment, and catalysts",
	models.KindRiskAssessor:     "drawdown, volatility, and position sizing",
	models.KindReportGenerator:  "final recommendation assembly",
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the available executor kinds",
	Long: `List the executor kinds tasks can be routed to.

Both modes register the same kinds; the mode only changes whether a
kind is served by a canned analyst or by the model. Tasks with an
unknown kind are routed to the data collector.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// The canned registry lists the same kinds as the llm one and
		// needs no credentials.
		catalog, err := market.Load()
		if err != nil {
			return fmt.Errorf("load market catalog: %w", err)
		}
		registry := executor.NewBuiltinRegistry(catalog)

		fmt.Printf("Executor mode: %s\n\n", cfg.Executors.Mode)
		for _, kind := range registry.Kinds() {
			fmt.Printf("  %-18s %s\n", kind, kindDescriptions[kind])
		}
		fmt.Printf("\nCatalog symbols: %v\n", catalog.Symbols())
		return nil
	},
}
