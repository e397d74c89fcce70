// Command enrich reads a workbook of historical disaster records, attaches the
// nearest NWS station and its observation on each disaster's start date, and
// exports the result to CSV.
//
// Usage:
//
//	go run ./cmd/enrich -input assets/usa.xlsx -output assets/usa_with_weather_data.csv
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/csvexport"
	httpadapter "github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/http"
	kafkaadapter "github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/kafka"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/nws"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/sqlite"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/xlsx"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/config"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	input := flag.String("input", "", "input workbook (overrides INPUT_PATH)")
	output := flag.String("output", "", "output CSV file (overrides OUTPUT_PATH)")
	sheet := flag.String("sheet", "", "worksheet name (overrides SHEET_NAME, default first sheet)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.InputPath = *input
	}
	if *output != "" {
		cfg.OutputPath = *output
	}
	if *sheet != "" {
		cfg.SheetName = *sheet
	}

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := nws.NewClient(cfg.NWSBaseURL, cfg.NWSUserAgent, cfg.NWSTimeout, metrics, logger)
	enricher := pipeline.NewEnricher(client, client, logger, metrics)
	reader := xlsx.NewReader(cfg.InputPath, cfg.SheetName, logger)

	loaders := pipeline.Loaders{csvexport.NewWriter(cfg.OutputPath, logger)}
	var checkers []sharedobs.ReadinessChecker

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("failed to open sqlite store", "path", cfg.SQLitePath, "error", err)
			return 1
		}
		defer store.Close()
		loaders = append(loaders, store)
		checkers = append(checkers, store)
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}

	p := pipeline.New(reader, enricher, loaders, logger, metrics)
	checkers = append(checkers, p)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, checkers...)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	err := p.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrMissingCoordinateColumns):
		// Already reported by the pipeline; there is nothing to export.
		return 0
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted, no export written")
		return 130
	case err != nil:
		logger.Error("pipeline error", "error", err)
		return 1
	}

	logger.Info("enrichment complete", "output", cfg.OutputPath)
	return 0
}
