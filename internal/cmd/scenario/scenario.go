// Package scenario runs Lua calculator scenarios from the command line.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/tally/internal/platform/cmd"
	"github.com/louisbranch/tally/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario        string        `env:"TALLY_SCENARIO_FILE"`
	Assertions      bool          `env:"TALLY_SCENARIO_ASSERT"           envDefault:"true"`
	Verbose         bool          `env:"TALLY_SCENARIO_VERBOSE"`
	Timeout         time.Duration `env:"TALLY_SCENARIO_TIMEOUT"          envDefault:"10s"`
	HistoryCapacity int           `env:"TALLY_SCENARIO_HISTORY_CAPACITY" envDefault:"50"`

	// Paths are extra scenario files or directories given as arguments.
	Paths []string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.IntVar(&cfg.HistoryCapacity, "history", cfg.HistoryCapacity, "history entries to keep")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Paths = fs.Args()
	return cfg, nil
}

// Run executes every configured scenario, stopping at the first failure.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	files, err := scenarioFiles(cfg)
	if err != nil {
		return err
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	logger := log.New(errOut, "", 0)

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScenario, func(ctx context.Context) error {
		for _, path := range files {
			loaded, err := scenario.LoadScenarioFromFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			runner := scenario.NewRunner(scenario.Config{
				Timeout:         cfg.Timeout,
				Assertions:      mode,
				Verbose:         cfg.Verbose,
				HistoryCapacity: cfg.HistoryCapacity,
				Logger:          logger,
			})
			if err := runner.RunScenario(ctx, loaded); err != nil {
				return err
			}
			if failures := runner.Failures(); failures > 0 {
				fmt.Fprintf(out, "FAIL %s (%d expectations)\n", loaded.Name, failures)
				continue
			}
			fmt.Fprintf(out, "ok   %s\n", loaded.Name)
		}
		return nil
	})
}

// scenarioFiles expands the configured paths; directories contribute their
// .lua files in name order.
func scenarioFiles(cfg Config) ([]string, error) {
	var paths []string
	if strings.TrimSpace(cfg.Scenario) != "" {
		paths = append(paths, cfg.Scenario)
	}
	paths = append(paths, cfg.Paths...)
	if len(paths) == 0 {
		return nil, errors.New("scenario path is required")
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("scenario path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(path, "*.lua"))
		if err != nil {
			return nil, fmt.Errorf("list scenarios in %s: %w", path, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errors.New("no scenario files found")
	}
	return files, nil
}
