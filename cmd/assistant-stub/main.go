// Local assistant stub for development and demos. Serves the chat
// endpoint with canned replies plus the bundled plans.
//
// Usage:
//
//	assistant-stub [-addr :8090] [-verbose] [-quiet]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fitgenie/internal/assistantstub"
	"fitgenie/internal/logger"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8090", "address to listen on")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}
	log := logger.New(logLevel, os.Stderr)

	stub := assistantstub.NewServer(os.Getenv("ASSISTANT_API_KEY"), log)
	server := &http.Server{
		Addr:              *addr,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("assistant stub listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "assistant-stub: %v\n", err)
		os.Exit(1)
	}
	log.Info("assistant stub stopped")
}
