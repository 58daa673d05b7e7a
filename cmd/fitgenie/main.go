// FitGenie terminal client.
//
// Usage:
//
//	fitgenie [-verbose] [-quiet] [-log-file PATH]
package main

import (
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"fitgenie/internal/chat"
	"fitgenie/internal/config"
	"fitgenie/internal/logger"
	"fitgenie/internal/metrics"
	"fitgenie/internal/plan"
	"fitgenie/internal/profile"
	"fitgenie/internal/tui"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".fitgenie-logs/fitgenie.log", "file to write logs to (use \"stderr\" to log to console)")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the TUI stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		if dir := filepath.Dir(*logFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)
	log := logger.New(logLevel, logOut)

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	store := metrics.NewStore()
	transport := chat.NewHTTPTransport(cfg.AssistantURL, cfg.AssistantAPIKey, cfg.ChatTimeout, log)
	manager := chat.NewManager(transport, store, log)

	var source plan.Source
	if cfg.PlanSource == config.PlanSourceRemote {
		source = plan.NewRemoteSource(cfg.PlanAPIURL, cfg.ChatTimeout, log)
	} else {
		source = plan.NewStaticSource(log)
	}

	log.Info("fitgenie starting (plan source: %s, assistant: %s)", cfg.PlanSource, cfg.AssistantURL)

	model := tui.New(manager, source, profile.Default(), log)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fitgenie: %v\n", err)
		os.Exit(1)
	}

	sum := store.Summary()
	log.Info("session summary: %d turns, %d fallbacks, avg latency %dms", sum.Turns, sum.Fallbacks, sum.AvgLatencyMS)
}
