package main

//
//  @title           spimex-scraper API
//  @version         1.0
//  @description     SPIMEX oil-products trading-bulletin ingestion & query service.
//  @termsOfService  https://github.com/etchedheadplate/spimex-scraper
//  @contact.name    API Support
//  @contact.url     https://github.com/etchedheadplate/spimex-scraper
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        trades
//  @tag.description Endpoints for querying loaded trading results
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etchedheadplate/spimex-scraper/config"
	_ "github.com/etchedheadplate/spimex-scraper/docs" // swagger docs
	"github.com/etchedheadplate/spimex-scraper/internal/app"
	"github.com/etchedheadplate/spimex-scraper/internal/ingestion"
	"github.com/etchedheadplate/spimex-scraper/internal/logger"
)

const flagDateLayout = "2006-01-02"

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown terminates the HTTP server and cleans up resources when an
// OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// parseWindow resolves the ingestion window from the --start/--end flags.
// An empty end means today; an empty start means 30 days before the end.
func parseWindow(startFlag, endFlag string) (start, end time.Time, err error) {
	end = time.Now().UTC().Truncate(24 * time.Hour).Add(24*time.Hour - time.Second)
	if endFlag != "" {
		d, perr := time.Parse(flagDateLayout, endFlag)
		if perr != nil {
			return start, end, perr
		}
		// include the whole end day
		end = d.Add(24*time.Hour - time.Second)
	}

	start = end.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	if startFlag != "" {
		d, perr := time.Parse(flagDateLayout, startFlag)
		if perr != nil {
			return start, end, perr
		}
		start = d
	}
	return start, end, nil
}

// main is the entry point of the spimex-scraper application.
//
// Modes (selected via --mode flag):
//   - ingest: Scrapes, parses, and loads bulletins for a publication window.
//   - api:    Starts the REST API exposing loaded trading results.
func main() {
	ctx := context.Background()

	config.LoadConfig()

	logger.Init()

	mode := flag.String("mode", "ingest", "Mode: ingest or api")
	startDate := flag.String("start", "", "Window start in YYYY-MM-DD (default: 30 days before end)")
	endDate := flag.String("end", "", "Window end in YYYY-MM-DD, inclusive (default: today)")
	dir := flag.String("dir", config.AppConfig.Scraper.DownloadDir, "Directory for downloaded bulletins")
	workers := flag.Int("workers", config.AppConfig.Scraper.Workers, "Number of download workers")
	chunkSize := flag.Int("chunk-size", config.AppConfig.Loader.ChunkSize, "Rows per load transaction")
	update := flag.Bool("update-on-conflict", false, "Upsert rows on the natural key instead of plain inserts")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "ingest":
		logger.L().Info().Msg("running ingestion")

		start, end, err := parseWindow(*startDate, *endDate)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("invalid window flags, expected YYYY-MM-DD")
		}

		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		sum, err := ingestion.Run(ctx, db, ingestion.Options{
			BaseURL:                config.AppConfig.Scraper.BaseURL,
			DownloadDir:            *dir,
			StartDate:              start,
			EndDate:                end,
			Workers:                *workers,
			MaxConcurrentDownloads: config.AppConfig.Scraper.MaxConcurrentDownloads,
			HTTPTimeout:            config.AppConfig.Scraper.HTTPTimeout,
			ChunkSize:              *chunkSize,
			MaxParallelChunks:      config.AppConfig.Loader.MaxParallelChunks,
			UpdateOnConflict:       *update,
		})
		if err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().
			Int("links", sum.LinksFound).
			Int("files", sum.FilesDownloaded).
			Int("rows_parsed", sum.RowsParsed).
			Int("rows_loaded", sum.RowsLoaded).
			Msg("ingestion completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
