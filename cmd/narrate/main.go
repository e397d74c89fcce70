// Command narrate asks a hosted language model for a natural-disaster risk
// assessment of one location's current weather.
//
// Usage:
//
//	go run ./cmd/narrate '{"city":"Austin","temperature":31.4,"feels_like":35.2,
//	  "pressure":1009,"humidity":62,"weather":"scattered clouds","wind_speed":5.66,
//	  "wind_deg":160,"visibility":10000,"clouds":40}'
//
// The generated text is printed to stdout. Logs go to stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/config"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/narrator"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
	"github.com/joho/godotenv"
)

// providerFactory builds the chat provider selected by the configuration.
type providerFactory func(ctx context.Context, cfg *config.NarratorConfig, logger *slog.Logger) (narrator.ChatProvider, error)

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, narrator.NewProvider))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, factory providerFactory) int {
	cfg, err := config.LoadNarrator()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if len(args) != 1 {
		fmt.Fprintf(stderr, "usage: narrate '<weather snapshot JSON>'\nrequired keys: %s\n", strings.Join(domain.SnapshotKeys(), ", "))
		return 1
	}

	snap, err := domain.ParseSnapshot([]byte(args[0]))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logger := observability.NewLoggerTo(stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	provider, err := factory(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create chat provider", "provider", cfg.Provider, "error", err)
		return 1
	}

	if err := narrator.New(provider, cfg.Model, stdout, logger).Run(ctx, snap); err != nil {
		logger.Error("failed to write narrative", "error", err)
		return 1
	}
	return 0
}
