// Command simulate floods a running rating service with synthetic
// match results.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JericNisperos/pvparena/internal/simulator"
	"github.com/JericNisperos/pvparena/pkg/logger"
)

func main() {
	baseURL := flag.String("url", "http://localhost:9080", "base URL of the rating service")
	matches := flag.Int("matches", 100, "number of matches to submit")
	players := flag.Int("players", 20, "size of the synthetic player pool")
	workers := flag.Int("workers", 4, "parallel submitters")
	arenas := flag.String("arenas", "", "comma-separated arena ids (optional)")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []simulator.Option{
		simulator.WithMatchCount(*matches),
		simulator.WithPlayerCount(*players),
		simulator.WithWorkers(*workers),
	}
	if *arenas != "" {
		opts = append(opts, simulator.WithArenas(strings.Split(*arenas, ",")))
	}

	sim := simulator.New(*baseURL, opts...)
	if _, err := sim.Run(ctx); err != nil {
		logger.Get().Error(ctx, "simulation aborted", logger.Error(err))
		os.Exit(1)
	}
}
