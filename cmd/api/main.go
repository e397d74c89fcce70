// Command api serves the enriched disaster records stored in SQLite, scrapes
// and serves current city weather, and generates risk narratives on request.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/api"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/openweather"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/sqlite"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/adapter/worldcities"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/config"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/narrator"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrapeWriteTimeout bounds a /scrape response, which fetches every selected
// city before replying.
const scrapeWriteTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

func run(cfg *config.APIConfig) int {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.SQLitePath, logger)
	if err != nil {
		logger.Error("failed to open sqlite store", "path", cfg.SQLitePath, "error", err)
		return 1
	}
	defer store.Close()

	provider, err := narrator.NewProvider(ctx, cfg.Narrator, logger)
	if err != nil {
		logger.Error("failed to create chat provider", "provider", cfg.Narrator.Provider, "error", err)
		return 1
	}
	// Narratives are returned in responses, never printed.
	narr := narrator.New(provider, cfg.Narrator.Model, io.Discard, logger)

	metrics := observability.NewMetrics()
	writeTimeout := cfg.Narrator.Timeout + 10*time.Second
	var scraper api.Scraper
	if cfg.Weather.APIKey != "" {
		weather := openweather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout, metrics, logger)
		cities := worldcities.NewReader(cfg.Weather.CitiesPath, logger)
		scraper = pipeline.NewScraper(cities, weather, store, cfg.Weather.ScrapeLimit, clockwork.NewRealClock(), logger, metrics)
		writeTimeout = max(writeTimeout, scrapeWriteTimeout)
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set, scraping disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Use(api.RateLimitMiddleware(cfg.RateLimit))

	api.NewHandler(store, store, scraper, narr, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", srv.Addr, "provider", cfg.Narrator.Provider, "model", cfg.Narrator.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		logger.Error("api server error", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return exitCode
}
