package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quantfoundry/vantage/internal/config"
	"github.com/quantfoundry/vantage/internal/control"
	"github.com/quantfoundry/vantage/internal/logging"
	"github.com/quantfoundry/vantage/internal/orchestrator"
	"github.com/quantfoundry/vantage/internal/plan"
	"github.com/quantfoundry/vantage/internal/scheduler"
)

var (
	runMode     string
	runPlanFile string
	runQuiet    bool
)

var runCmd = &cobra.Command{
	Use:   "run <request>",
	Short: "Run a research request",
	Long: `Run an investment research request end to end.

The request is planned into a task graph, executed in dependency order
with bounded parallelism, and assembled into a markdown report. Failed
tasks are retried; tasks whose dependencies failed are blocked and the
report covers whatever finished.

Executor mode (--mode, defaults to the configured mode):
  canned  offline analysts backed by the bundled market catalog
  llm     Claude-backed analysts (requires an API key or Bedrock access)

A running request can be aborted with Ctrl-C or from another terminal
with 'vantage cancel'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRequest,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "Executor mode: canned or llm (defaults to config)")
	runCmd.Flags().StringVar(&runPlanFile, "plan-file", "", "Execute a pre-written plan file instead of generating one")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress live task events, print only the final report")
}

func runRequest(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mode := cfg.Executors.Mode
	if cmd.Flags().Changed("mode") {
		mode = runMode
	}

	logger, err := logging.New(cfg.DebugLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
		logger = logging.Nop()
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nReceived interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// File-based cancellation for callers that cannot signal the process.
	watcher, err := control.NewWatcher(cfg.SignalsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cancel watcher unavailable: %v\n", err)
	} else {
		defer watcher.Close()
		// A cancel file left over from an earlier run must not abort this one.
		watcher.Clear()
		go func() {
			select {
			case <-watcher.Done():
				fmt.Println("\nCancel signal received, shutting down...")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	stack, err := buildStack(cfg, mode)
	if err != nil {
		return err
	}

	generator := stack.generator
	if runPlanFile != "" {
		data, err := os.ReadFile(runPlanFile)
		if err != nil {
			return fmt.Errorf("read plan file: %w", err)
		}
		generator = plan.StaticGenerator{Text: string(data)}
	}

	orch, err := orchestrator.New(
		orchestrator.RequiredConfig{Registry: stack.registry},
		orchestrator.WithGenerator(generator),
		orchestrator.WithLogger(logger),
		orchestrator.WithSchedulerOptions(scheduler.Options{
			MaxParallel: cfg.Scheduler.MaxParallel,
			MaxAttempts: cfg.Scheduler.MaxAttempts,
			TaskTimeout: cfg.Scheduler.TaskTimeout,
			RunTimeout:  cfg.Scheduler.RunTimeout,
		}),
	)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	eventsDone := make(chan struct{})
	go func() {
		consumeEvents(orch.Events(), runQuiet)
		close(eventsDone)
	}()

	fmt.Printf("Starting research run: %s\n", request)
	fmt.Printf("  Mode: %s\n", mode)
	fmt.Printf("  Max parallel: %d\n", cfg.Scheduler.MaxParallel)
	fmt.Println()

	res, runErr := orch.Run(ctx, request)
	orch.Close()
	<-eventsDone

	fmt.Println()
	fmt.Println(res.Report())
	printRunFooter(res, stack)

	if runErr != nil {
		return fmt.Errorf("run ended early: %w", runErr)
	}
	return nil
}

// consumeEvents prints orchestrator events to stdout. It always drains
// the channel so the emitter never backs up, even in quiet mode.
func consumeEvents(events <-chan orchestrator.OrchestratorEvent, quiet bool) {
	for event := range events {
		if quiet {
			continue
		}
		switch event.Type {
		case orchestrator.EventPlanReady:
			fmt.Printf("%s\n%s\n", color.CyanString("[PLAN]"), event.Message)
		case orchestrator.EventTaskCompleted:
			fmt.Printf("%s %s\n", color.GreenString("[DONE]"), event.TaskName)
		case orchestrator.EventTaskFailed:
			fmt.Printf("%s %s: %v\n", color.RedString("[FAILED]"), event.TaskName, event.Error)
		case orchestrator.EventTaskBlocked:
			fmt.Printf("%s %s: %s\n", color.YellowString("[BLOCKED]"), event.TaskName, event.Message)
		case orchestrator.EventRunDone:
			fmt.Printf("%s %s\n", color.CyanString("[RUN]"), event.Message)
		}
	}
}

// printRunFooter summarizes the run and, for LLM-backed runs, the token
// spend.
func printRunFooter(res *orchestrator.RunResult, stack *executionStack) {
	fmt.Printf("Done! (%s, plan: %s, %d completed, %d failed, %d blocked)\n",
		res.Duration.Round(100*time.Millisecond), res.PlanSource,
		res.Completed, res.Failed, res.Blocked)

	if stack.client != nil {
		tracker := stack.client.Tracker()
		input, output := tracker.Total()
		fmt.Printf("Tokens: %d in / %d out across %d calls ($%.4f)\n",
			input, output, tracker.Calls(), tracker.Cost())
	}
}
