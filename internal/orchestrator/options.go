package orchestrator

import (
	"github.com/quantfoundry/vantage/internal/executor"
	"github.com/quantfoundry/vantage/internal/logging"
	"github.com/quantfoundry/vantage/internal/plan"
	"github.com/quantfoundry/vantage/internal/scheduler"
)

// RequiredConfig contains the minimal required configuration for an
// Orchestrator. All fields are required and have no defaults.
type RequiredConfig struct {
	// Registry supplies the capability providers tasks dispatch to.
	Registry *executor.Registry
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

// orchestratorOptions holds all optional configuration.
type orchestratorOptions struct {
	generator   plan.Generator
	logger      *logging.DebugLogger
	sched       scheduler.Options
	eventBuffer int
}

// WithGenerator sets the plan generator. Without one every run uses the
// fallback plan.
func WithGenerator(g plan.Generator) Option {
	return func(o *orchestratorOptions) { o.generator = g }
}

// WithLogger sets the debug logger.
func WithLogger(l *logging.DebugLogger) Option {
	return func(o *orchestratorOptions) { o.logger = l }
}

// WithSchedulerOptions sets the dispatch limits for runs.
func WithSchedulerOptions(opts scheduler.Options) Option {
	return func(o *orchestratorOptions) { o.sched = opts }
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(n int) Option {
	return func(o *orchestratorOptions) { o.eventBuffer = n }
}
