// FitGenie Telegram bot.
//
// Usage:
//
//	telegram-bot [-verbose] [-quiet] [-log-file PATH]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"fitgenie/internal/chat"
	"fitgenie/internal/config"
	"fitgenie/internal/logger"
	"fitgenie/internal/metrics"
	"fitgenie/internal/plan"
	"fitgenie/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".fitgenie-logs/telegram-bot.log", "file to write logs to (use \"stderr\" to log to console)")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	var logOut io.Writer = os.Stderr
	logPath := ""
	if *logFile != "" && *logFile != "stderr" {
		if dir := filepath.Dir(*logFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			logPath = *logFile
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
	if cfg.TelegramBotToken == "" {
		fmt.Fprintln(os.Stderr, "TELEGRAM_BOT_TOKEN environment variable not set")
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

	bot, err := telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramAllowUserID, manager, source, store, logPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telegram init failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("telegram bot running")
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "telegram bot: %v\n", err)
		os.Exit(1)
	}
	log.Info("telegram bot stopped")
}
