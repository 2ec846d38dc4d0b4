package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	calculatorcmd "github.com/louisbranch/tally/internal/cmd/calculator"
	entrypoint "github.com/louisbranch/tally/internal/platform/cmd"
)

func main() {
	cfg, err := calculatorcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceCalculator))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := calculatorcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
