package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/hackmatch/internal/loadtest"
)

// Default configuration constants.
const (
	defaultParticipants = 200
	defaultTeams        = 40
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		hackathonID  = flag.String("hackathon", "", "Hackathon id to create (default: load-TIMESTAMP)")
		participants = flag.Int("participants", defaultParticipants, "Number of participants to register")
		teams        = flag.Int("teams", defaultTeams, "Number of teams")
		teamSize     = flag.Int("team-size", loadtest.DefaultTeamSize, "Seats per team including the leader")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", loadtest.DefaultTimeout, "HTTP request timeout")
		settle       = flag.Duration("settle", loadtest.DefaultSettle, "How long to wait for notifications")
		logFile      = flag.String("log", "", "Log file for run output (default: load_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := loadtest.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:      *baseURL,
		HackathonID:  *hackathonID,
		Participants: *participants,
		Teams:        *teams,
		TeamSize:     *teamSize,
		Workers:      *workers,
		Timeout:      *timeout,
		Settle:       *settle,
		Verbose:      *verbose,
	}

	if _, err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
