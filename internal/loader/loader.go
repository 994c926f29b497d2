package loader

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/etchedheadplate/spimex-scraper/internal/domain/models"
	"github.com/etchedheadplate/spimex-scraper/internal/logger"
	"github.com/etchedheadplate/spimex-scraper/internal/storage"
)

const (
	defaultChunkSize         = 1000
	defaultMaxParallelChunks = 5
)

// ErrNoRows is returned when Load is called with nothing to persist.
var ErrNoRows = errors.New("loader: no rows to load")

// Options tune how parsed rows are written to the database.
type Options struct {
	// ChunkSize is the number of rows committed per transaction.
	ChunkSize int
	// MaxParallelChunks caps how many chunk transactions run at once.
	MaxParallelChunks int
	// UpdateOnConflict switches from COPY bulk inserts to per-row upserts on
	// the natural key, for re-ingesting windows that may already be loaded.
	UpdateOnConflict bool
}

// Loader persists parsed trading rows in concurrent chunked transactions.
type Loader struct {
	repo storage.ResultsRepository
	opts Options
	log  zerolog.Logger
}

func New(repo storage.ResultsRepository, opts Options) *Loader {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.MaxParallelChunks <= 0 {
		opts.MaxParallelChunks = defaultMaxParallelChunks
	}
	return &Loader{
		repo: repo,
		opts: opts,
		log:  logger.With("loader"),
	}
}

// Load writes rows in chunks of ChunkSize, each inside its own transaction,
// with at most MaxParallelChunks in flight. A failing chunk is rolled back
// and reported, but it does not cancel chunks already running: the returned
// count is the number of rows actually committed, which on error may be any
// multiple of ChunkSize.
func (l *Loader) Load(ctx context.Context, rows []models.TradingRow) (int, error) {
	if len(rows) == 0 {
		return 0, ErrNoRows
	}

	// One timestamp for the whole run so every row of a load shares
	// identical created_on/updated_on values.
	records, err := l.toRecords(rows, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	chunks := chunkRecords(records, l.opts.ChunkSize)
	l.log.Info().
		Int("rows", len(records)).
		Int("chunks", len(chunks)).
		Int("chunk_size", l.opts.ChunkSize).
		Bool("update_on_conflict", l.opts.UpdateOnConflict).
		Msg("load start")

	var committed atomic.Int64

	// A plain group rather than a context-bound one: sibling chunks keep
	// committing when one fails, so a transient error loses one chunk, not
	// the whole run.
	var g errgroup.Group
	g.SetLimit(l.opts.MaxParallelChunks)
	for i, chunk := range chunks {
		idx, chunk := i, chunk
		g.Go(func() error {
			if err := l.loadChunk(ctx, chunk); err != nil {
				l.log.Error().Int("chunk", idx).Err(err).Msg("chunk failed")
				return fmt.Errorf("chunk %d: %w", idx, err)
			}
			committed.Add(int64(len(chunk)))
			return nil
		})
	}
	err = g.Wait()

	n := int(committed.Load())
	l.log.Info().Int("rows_committed", n).Msg("load done")
	return n, err
}

func (l *Loader) loadChunk(ctx context.Context, chunk []models.TradingResult) error {
	tx, err := l.repo.Begin(ctx)
	if err != nil {
		return err
	}

	if l.opts.UpdateOnConflict {
		for _, rec := range chunk {
			if err := l.repo.MergeRow(tx, rec); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	} else if err := l.repo.InsertChunk(tx, chunk); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// toRecords maps parsed rows onto the repository's writable columns. Parsed
// fields without a column (the instrument name) are dropped; a writable
// column without a mapped field is a schema drift bug and fails the load
// before any transaction opens.
func (l *Loader) toRecords(rows []models.TradingRow, now time.Time) ([]models.TradingResult, error) {
	mapped := map[string]struct{}{
		"exchange_product_id": {},
		"oil_id":              {},
		"delivery_basis_id":   {},
		"delivery_basis_name": {},
		"delivery_type_id":    {},
		"volume":              {},
		"total":               {},
		"count":               {},
		"date":                {},
		"created_on":          {},
		"updated_on":          {},
	}
	for _, col := range l.repo.Columns() {
		if _, ok := mapped[col]; !ok {
			return nil, fmt.Errorf("loader: no value mapped for column %q", col)
		}
	}

	records := make([]models.TradingResult, len(rows))
	for i, row := range rows {
		records[i] = models.TradingResult{
			ExchangeProductID: row.ExchangeProductID,
			OilID:             row.OilID,
			DeliveryBasisID:   row.DeliveryBasisID,
			DeliveryBasisName: row.DeliveryBasisName,
			DeliveryTypeID:    row.DeliveryTypeID,
			Volume:            row.Volume,
			Total:             row.Total,
			Count:             row.Count,
			Date:              row.Date,
			CreatedOn:         now,
			UpdatedOn:         now,
		}
	}
	return records, nil
}

func chunkRecords(records []models.TradingResult, size int) [][]models.TradingResult {
	chunks := make([][]models.TradingResult, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
