// Package calculator parses calculator command flags and starts the gRPC
// service.
package calculator

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/tally/internal/platform/cmd"
	server "github.com/louisbranch/tally/internal/services/calculator/app"
)

// Config holds calculator command configuration.
type Config struct {
	Port int    `env:"TALLY_CALCULATOR_PORT" envDefault:"8090"`
	Addr string `env:"TALLY_CALCULATOR_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The calculator server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The calculator server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the calculator gRPC service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCalculator, func(ctx context.Context) error {
		if cfg.Addr != "" {
			return server.RunWithAddr(ctx, cfg.Addr)
		}
		return server.Run(ctx, cfg.Port)
	})
}
