package scraper

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/etchedheadplate/spimex-scraper/internal/logger"
)

const (
	defaultWorkers       = 3
	defaultMaxConcurrent = 5

	// queueCapacity bounds the link queue so a fast collector cannot run
	// arbitrarily far ahead of slow downloads.
	queueCapacity = 64
)

// Scraper owns the queue shared by one Collector and a pool of download
// workers, and runs them as one concurrent unit.
type Scraper struct {
	client        *http.Client
	baseURL       string
	dir           string
	workers       int
	maxConcurrent int
}

// New builds a Scraper. The HTTP client is shared by the collector and all
// downloads; callers configure its timeout.
func New(client *http.Client, baseURL, dir string, workers, maxConcurrent int) *Scraper {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Scraper{
		client:        client,
		baseURL:       baseURL,
		dir:           dir,
		workers:       workers,
		maxConcurrent: maxConcurrent,
	}
}

// Scrape collects and downloads every bulletin published inside
// [startDate, endDate]. It returns the files downloaded during this run (in
// completion order, deduplicated) and the number of links discovered.
//
// Per-link and per-download failures are absorbed inside the collector and
// downloader; Scrape itself fails only on catastrophic setup problems or
// context cancellation.
func (s *Scraper) Scrape(ctx context.Context, startDate, endDate time.Time) (files []string, linksFound int, err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("create download dir %s: %w", s.dir, err)
	}

	collector, err := NewCollector(s.client, s.baseURL, startDate, endDate)
	if err != nil {
		return nil, 0, err
	}
	downloader := NewDownloader(s.client, s.dir, int64(s.maxConcurrent))

	log := logger.With("scraper")
	log.Info().
		Time("start", startDate).
		Time("end", endDate).
		Int("workers", s.workers).
		Int("max_concurrent", s.maxConcurrent).
		Msg("scrape start")

	queue := make(chan string, queueCapacity)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return collector.Run(gctx, queue) })
	for i := 1; i <= s.workers; i++ {
		workerID := i
		g.Go(func() error { return downloader.Run(gctx, workerID, queue) })
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	files = dedup(downloader.Files())
	log.Info().Int("links", collector.Found()).Int("files", len(files)).Msg("scrape done")
	return files, collector.Found(), nil
}

// dedup removes repeated paths preserving first-seen order.
func dedup(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
