// Package scenario loads Lua calculator scenarios and runs them against an
// in-process session.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/louisbranch/tally/internal/session"
)

// Config controls scenario execution.
type Config struct {
	Timeout         time.Duration
	Assertions      AssertionMode
	Verbose         bool
	HistoryCapacity int
	Logger          *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
	}
}

// Runner executes scenarios against a fresh in-process calculator session.
type Runner struct {
	assertions      *Assertions
	logger          *log.Logger
	verbose         bool
	timeout         time.Duration
	historyCapacity int
}

// NewRunner prepares a scenario runner, applying config defaults.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Runner{
		assertions:      &Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:          logger,
		verbose:         cfg.Verbose,
		timeout:         timeout,
		historyCapacity: cfg.HistoryCapacity,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// Failures returns the expectations that failed in log-only mode.
func (r *Runner) Failures() int {
	return r.assertions.Failures()
}

// RunScenario executes the scenario steps on a new session.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))

	var opts []session.Option
	if r.historyCapacity > 0 {
		opts = append(opts, session.WithHistoryCapacity(r.historyCapacity))
	}
	calculator := session.New(opts...)

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, calculator, step)
		cancel()
		if err != nil {
			return fmt.Errorf("%s: step %d (%s): %w", scenario.Name, stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
