package scraper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/etchedheadplate/spimex-scraper/internal/logger"
)

// Downloader is the consuming side of the scrape queue: a set of workers
// share one Downloader, popping URLs and streaming the files to disk.
//
// Two limits apply independently: the number of workers controls queue-pop
// parallelism, while the transfer gate bounds simultaneous in-flight
// transfers whatever the worker count is.
type Downloader struct {
	client *http.Client
	dir    string
	gate   *semaphore.Weighted
	log    zerolog.Logger

	mu    sync.Mutex
	files []string
}

// NewDownloader builds a downloader storing files in dir with at most
// maxConcurrent transfers in flight.
func NewDownloader(client *http.Client, dir string, maxConcurrent int64) *Downloader {
	return &Downloader{
		client: client,
		dir:    dir,
		gate:   semaphore.NewWeighted(maxConcurrent),
		log:    logger.With("downloader"),
	}
}

// Run consumes the queue until it closes. Per-item failures are logged and
// dropped; one bad link never aborts the run. The only error Run itself
// returns is context cancellation.
func (d *Downloader) Run(ctx context.Context, workerID int, queue <-chan string) error {
	log := d.log.With().Int("worker", workerID).Logger()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rawURL, ok := <-queue:
			if !ok {
				log.Debug().Msg("queue closed, worker stopping")
				return nil
			}
			d.fetch(ctx, log, rawURL)
		}
	}
}

// Files returns the paths downloaded so far, in completion order.
func (d *Downloader) Files() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.files))
	copy(out, d.files)
	return out
}

func (d *Downloader) fetch(ctx context.Context, log zerolog.Logger, rawURL string) {
	name := localName(rawURL)
	if name == "" {
		log.Warn().Str("url", rawURL).Msg("cannot derive filename, dropping")
		return
	}
	dest := filepath.Join(d.dir, name)

	// Presence of a same-named file is the sole dedup signal: re-running an
	// overlapping window never re-downloads what is already on disk.
	if _, err := os.Stat(dest); err == nil {
		log.Debug().Str("file", dest).Msg("already downloaded, skipping")
		return
	}

	if err := d.gate.Acquire(ctx, 1); err != nil {
		return
	}
	defer d.gate.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.Warn().Str("url", rawURL).Err(err).Msg("build request failed")
		return
	}
	resp, err := d.client.Do(req)
	if err != nil {
		log.Warn().Str("url", rawURL).Err(err).Msg("download failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Str("url", rawURL).Int("status", resp.StatusCode).Msg("download failed")
		return
	}

	f, err := os.Create(dest)
	if err != nil {
		log.Warn().Str("file", dest).Err(err).Msg("create file failed")
		return
	}
	// io.Copy streams in bounded buffers; the payload never sits in memory.
	_, err = io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A truncated file would defeat dedup on the next run.
		_ = os.Remove(dest)
		log.Warn().Str("file", dest).Err(err).Msg("write failed, partial file removed")
		return
	}

	d.mu.Lock()
	d.files = append(d.files, dest)
	d.mu.Unlock()
	log.Info().Str("file", dest).Msg("downloaded")
}

// localName derives the stored filename from the URL's final path segment,
// ignoring any query string.
func localName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
