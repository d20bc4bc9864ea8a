package loadtest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/hackmatch/pkg/logger"
)

// SetupLogging initializes the global logger, teeing into logFile.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "load_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	if err := logger.Init(logger.WithFile(logFile)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	os.Stdout.WriteString(`hackmatch load tool
===================

Registers generated participants against a running hackmatch service,
forms teams concurrently and checks the resulting rosters.

Usage:
  go run ./cmd/hackmatch-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -hackathon string
        Hackathon id to create (default: load-TIMESTAMP)
  -participants int
        Number of participants to register (default 200)
  -teams int
        Number of teams; the first N participants lead them (default 40)
  -team-size int
        Seats per team including the leader (default 4)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -settle duration
        How long to wait for notifications (default 5s)
  -log string
        Log file for run output (default: load_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run ./cmd/hackmatch-load

  # Oversubscribe teams so some joins are rejected as full
  go run ./cmd/hackmatch-load -participants 500 -teams 20 -team-size 5
`)
}
