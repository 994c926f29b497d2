package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/etchedheadplate/spimex-scraper/internal/bulletin"
	"github.com/etchedheadplate/spimex-scraper/internal/domain/models"
	"github.com/etchedheadplate/spimex-scraper/internal/loader"
	"github.com/etchedheadplate/spimex-scraper/internal/logger"
	"github.com/etchedheadplate/spimex-scraper/internal/scraper"
	"github.com/etchedheadplate/spimex-scraper/internal/storage"
)

// Options configures one ingestion run end to end: where to scrape, where to
// store bulletins, and how aggressively to download and load.
type Options struct {
	BaseURL     string
	DownloadDir string

	// StartDate and EndDate bound the publication window, inclusive.
	StartDate time.Time
	EndDate   time.Time

	Workers                int
	MaxConcurrentDownloads int
	HTTPTimeout            time.Duration

	ChunkSize         int
	MaxParallelChunks int
	// UpdateOnConflict makes the load upsert on the natural key instead of
	// plain inserting, for windows that overlap already-loaded data.
	UpdateOnConflict bool
}

// Summary reports what one run actually did at each stage.
type Summary struct {
	LinksFound      int
	FilesDownloaded int
	RowsParsed      int
	RowsLoaded      int
}

type bulletinScraper interface {
	Scrape(ctx context.Context, startDate, endDate time.Time) ([]string, int, error)
}

type rowLoader interface {
	Load(ctx context.Context, rows []models.TradingRow) (int, error)
}

// Indirections for tests to swap out stage constructors.
var (
	repoCtor = func(db *sql.DB) storage.ResultsRepository {
		return storage.NewResultsRepository(db)
	}
	newScraper = func(client *http.Client, baseURL, dir string, workers, maxConcurrent int) bulletinScraper {
		return scraper.New(client, baseURL, dir, workers, maxConcurrent)
	}
	newLoader = func(repo storage.ResultsRepository, opts loader.Options) rowLoader {
		return loader.New(repo, opts)
	}
	parseFiles = func(paths []string) ([]models.TradingRow, error) {
		return bulletin.NewParser().Parse(paths)
	}
)

// Run executes the full pipeline: ensure schema, scrape the window's
// bulletins, parse the freshly downloaded files, and load the parsed rows.
//
// Only files downloaded during this run are parsed; bulletins already on disk
// were handled by the run that fetched them. An empty window is not an error,
// the summary simply reports zeros.
func Run(ctx context.Context, db *sql.DB, opts Options) (Summary, error) {
	log := logger.With("ingestion")
	start := time.Now()

	repo := repoCtor(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return Summary{}, fmt.Errorf("ensure schema: %w", err)
	}

	client := &http.Client{Timeout: opts.HTTPTimeout}
	s := newScraper(client, opts.BaseURL, opts.DownloadDir, opts.Workers, opts.MaxConcurrentDownloads)
	files, links, err := s.Scrape(ctx, opts.StartDate, opts.EndDate)
	if err != nil {
		return Summary{}, fmt.Errorf("scrape: %w", err)
	}
	sum := Summary{LinksFound: links, FilesDownloaded: len(files)}
	if len(files) == 0 {
		log.Info().Int("links", links).Msg("no new bulletins, nothing to load")
		return sum, nil
	}

	rows, err := parseFiles(files)
	if err != nil {
		return sum, fmt.Errorf("parse: %w", err)
	}
	sum.RowsParsed = len(rows)
	if len(rows) == 0 {
		log.Info().Int("files", len(files)).Msg("bulletins held no loadable rows")
		return sum, nil
	}

	l := newLoader(repo, loader.Options{
		ChunkSize:         opts.ChunkSize,
		MaxParallelChunks: opts.MaxParallelChunks,
		UpdateOnConflict:  opts.UpdateOnConflict,
	})
	sum.RowsLoaded, err = l.Load(ctx, rows)
	if err != nil {
		return sum, fmt.Errorf("load: %w", err)
	}

	log.Info().
		Int("links", sum.LinksFound).
		Int("files", sum.FilesDownloaded).
		Int("rows_parsed", sum.RowsParsed).
		Int("rows_loaded", sum.RowsLoaded).
		Dur("elapsed", time.Since(start)).
		Msg("ingestion done")
	return sum, nil
}
