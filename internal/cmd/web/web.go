// Package web parses keypad web command flags and starts the HTTP server.
package web

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/tally/internal/platform/cmd"
	"github.com/louisbranch/tally/internal/services/web"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr        string `env:"TALLY_WEB_HTTP_ADDR"        envDefault:"localhost:8086"`
	HistoryCapacity int    `env:"TALLY_WEB_HISTORY_CAPACITY" envDefault:"50"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.IntVar(&cfg.HistoryCapacity, "history", cfg.HistoryCapacity, "History entries kept per keypad session")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web keypad server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		return web.Run(ctx, web.Config{
			HTTPAddr:        cfg.HTTPAddr,
			HistoryCapacity: cfg.HistoryCapacity,
		})
	})
}
