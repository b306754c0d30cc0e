package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/viva/internal/simulate"
)

// Default configuration constants.
const (
	defaultCandidates = 10
	defaultMaxTurns   = 40
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		candidates = flag.Int("candidates", defaultCandidates, "Number of candidate sessions to run")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		maxTurns   = flag.Int("max-turns", defaultMaxTurns, "Safety cap on answers per session")
		logFile    = flag.String("log", "", "Log file for simulation output (default: simulation_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:    *baseURL,
		Candidates: *candidates,
		Workers:    *workers,
		Timeout:    *timeout,
		MaxTurns:   *maxTurns,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
