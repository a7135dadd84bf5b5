package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quantfoundry/vantage/internal/config"
	"github.com/quantfoundry/vantage/internal/orchestrator"
	"github.com/quantfoundry/vantage/internal/plan"
	"github.com/quantfoundry/vantage/internal/report"
)

var (
	planModeFlag string
	planFile     string
	planShowRaw  bool
)

var planCmd = &cobra.Command{
	Use:   "plan <request>",
	Short: "Plan a request without executing it",
	Long: `Build and display the task graph for a request without running it.

In llm mode the plan comes from the model; in canned mode, or whenever
generation fails or produces an unusable plan, the fixed default plan
is used. --plan-file skips generation and parses the given file.

Structural problems that would stall a run, like dependency cycles or
references to missing tasks, are listed after the plan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: planRequest,
}

func init() {
	planCmd.Flags().StringVar(&planModeFlag, "mode", "", "Executor mode: canned or llm (defaults to config)")
	planCmd.Flags().StringVar(&planFile, "plan-file", "", "Parse a pre-written plan file instead of generating one")
	planCmd.Flags().BoolVar(&planShowRaw, "raw", false, "Also print the raw plan text before parsing")
}

func planRequest(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mode := cfg.Executors.Mode
	if cmd.Flags().Changed("mode") {
		mode = planModeFlag
	}

	raw := ""
	switch {
	case planFile != "":
		data, err := os.ReadFile(planFile)
		if err != nil {
			return fmt.Errorf("read plan file: %w", err)
		}
		raw = string(data)
	case mode == config.ModeLLM:
		stack, err := buildStack(cfg, mode)
		if err != nil {
			return err
		}
		text, err := stack.generator.GeneratePlan(cmd.Context(), request)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: plan generation failed: %v, using fallback plan\n", err)
		} else {
			raw = text
		}
	}

	if planShowRaw && raw != "" {
		fmt.Println(raw)
		fmt.Println()
	}

	source := orchestrator.PlanSourceFallback
	if plan.Usable(raw) {
		source = orchestrator.PlanSourceGenerated
	}

	g := plan.Parse(raw, request)

	fmt.Printf("Plan source: %s\n\n", source)
	fmt.Print(report.Summary(g))

	if problems := g.Validate(); len(problems) > 0 {
		fmt.Println()
		fmt.Println(color.YellowString("Problems:"))
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
	}
	return nil
}
