package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/etchedheadplate/spimex-scraper/internal/domain/models"
	pq "github.com/lib/pq"
)

const resultsTable = "spimex_trading_results"

// resultColumns is the set of columns the loader may write, in insert order.
// The surrogate id is excluded; the database assigns it.
var resultColumns = []string{
	"exchange_product_id",
	"oil_id",
	"delivery_basis_id",
	"delivery_basis_name",
	"delivery_type_id",
	"volume",
	"total",
	"count",
	"date",
	"created_on",
	"updated_on",
}

// DynamicsFilter narrows trading results by the three derived code fields
// within an inclusive date window.
type DynamicsFilter struct {
	OilID           string
	DeliveryTypeID  string
	DeliveryBasisID string
	StartDate       time.Time
	EndDate         time.Time
}

// ResultsFilter narrows trading results by the three derived code fields only.
type ResultsFilter struct {
	OilID           string
	DeliveryTypeID  string
	DeliveryBasisID string
}

// ResultsRepository defines the contract for trading-result persistence.
//
// The write side is transaction-scoped: the loader opens one transaction per
// chunk via Begin and hands it back to InsertChunk/MergeRow, so concurrent
// chunks never share a session.
type ResultsRepository interface {
	EnsureSchema(ctx context.Context) error
	Columns() []string
	Begin(ctx context.Context) (*sql.Tx, error)
	InsertChunk(tx *sql.Tx, rows []models.TradingResult) error
	MergeRow(tx *sql.Tx, row models.TradingResult) error

	LastTradingDates(ctx context.Context, days int) ([]time.Time, error)
	Dynamics(ctx context.Context, f DynamicsFilter) ([]models.TradingResult, error)
	LatestResults(ctx context.Context, f ResultsFilter) ([]models.TradingResult, error)
}

type resultsRepository struct {
	db *sql.DB
}

func NewResultsRepository(db *sql.DB) ResultsRepository {
	return &resultsRepository{db: db}
}

// EnsureSchema creates the results table and its indexes if absent.
//
// The natural key (date, exchange_product_id, delivery_basis_id,
// delivery_type_id) backs the merge path of the loader; a plain insert into
// an overlapping window trips it instead of silently duplicating rows.
func (r *resultsRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS spimex_trading_results (
			id                  BIGSERIAL PRIMARY KEY,
			exchange_product_id VARCHAR(20)  NOT NULL,
			oil_id              VARCHAR(10)  NOT NULL,
			delivery_basis_id   VARCHAR(10)  NOT NULL,
			delivery_basis_name VARCHAR(250),
			delivery_type_id    VARCHAR(10)  NOT NULL,
			volume              BIGINT,
			total               BIGINT,
			"count"             BIGINT       NOT NULL,
			date                DATE         NOT NULL,
			created_on          TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_on          TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			CONSTRAINT spimex_trading_results_natural_key
				UNIQUE (date, exchange_product_id, delivery_basis_id, delivery_type_id)
		)
	`)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_trading_results_codes
		ON spimex_trading_results (oil_id, delivery_basis_id, delivery_type_id, date)
	`)
	return err
}

// Columns returns the writable column names. The loader uses this set to
// align parsed rows with the schema before building records.
func (r *resultsRepository) Columns() []string {
	out := make([]string, len(resultColumns))
	copy(out, resultColumns)
	return out
}

// Begin opens a new transaction. Each loader chunk gets its own; *sql.Tx is
// not safe for concurrent use across chunk goroutines.
func (r *resultsRepository) Begin(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// InsertChunk bulk-inserts one chunk of rows inside the given transaction
// using the Postgres COPY protocol. The caller commits or rolls back.
func (r *resultsRepository) InsertChunk(tx *sql.Tx, rows []models.TradingResult) error {
	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn(resultsTable, resultColumns...))
	if err != nil {
		return err
	}

	for _, rec := range rows {
		if _, err := stmt.Exec(
			rec.ExchangeProductID,
			rec.OilID,
			rec.DeliveryBasisID,
			rec.DeliveryBasisName,
			rec.DeliveryTypeID,
			rec.Volume,
			rec.Total,
			rec.Count,
			rec.Date,
			rec.CreatedOn,
			rec.UpdatedOn,
		); err != nil {
			_ = stmt.Close()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		return err
	}
	return stmt.Close()
}

// MergeRow upserts a single row by the natural key inside the given
// transaction. Existing rows keep their created_on; updated_on moves.
func (r *resultsRepository) MergeRow(tx *sql.Tx, row models.TradingResult) error {
	_, err := tx.Exec(`
		INSERT INTO spimex_trading_results
			(exchange_product_id, oil_id, delivery_basis_id, delivery_basis_name,
			 delivery_type_id, volume, total, "count", date, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT ON CONSTRAINT spimex_trading_results_natural_key
		DO UPDATE SET delivery_basis_name = EXCLUDED.delivery_basis_name,
					  volume = EXCLUDED.volume,
					  total = EXCLUDED.total,
					  "count" = EXCLUDED."count",
					  updated_on = EXCLUDED.updated_on
	`,
		row.ExchangeProductID,
		row.OilID,
		row.DeliveryBasisID,
		row.DeliveryBasisName,
		row.DeliveryTypeID,
		row.Volume,
		row.Total,
		row.Count,
		row.Date,
		row.CreatedOn,
		row.UpdatedOn,
	)
	return err
}

// LastTradingDates returns the most recent distinct trading dates, newest
// first, capped at days.
func (r *resultsRepository) LastTradingDates(ctx context.Context, days int) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM spimex_trading_results
		ORDER BY date DESC
		LIMIT $1
	`, days)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Dynamics returns results matching the code filters within the inclusive
// date window, oldest first.
func (r *resultsRepository) Dynamics(ctx context.Context, f DynamicsFilter) ([]models.TradingResult, error) {
	rows, err := r.db.QueryContext(ctx, selectResults+`
		WHERE oil_id = $1 AND delivery_type_id = $2 AND delivery_basis_id = $3
		  AND date >= $4 AND date <= $5
		ORDER BY date, id
	`, f.OilID, f.DeliveryTypeID, f.DeliveryBasisID, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	return scanResults(rows)
}

// LatestResults returns results for the most recent trading date matching the
// code filters.
func (r *resultsRepository) LatestResults(ctx context.Context, f ResultsFilter) ([]models.TradingResult, error) {
	rows, err := r.db.QueryContext(ctx, selectResults+`
		WHERE date = (SELECT MAX(date) FROM spimex_trading_results)
		  AND oil_id = $1 AND delivery_type_id = $2 AND delivery_basis_id = $3
		ORDER BY id
	`, f.OilID, f.DeliveryTypeID, f.DeliveryBasisID)
	if err != nil {
		return nil, err
	}
	return scanResults(rows)
}

const selectResults = `
		SELECT id, exchange_product_id, oil_id, delivery_basis_id, delivery_basis_name,
			   delivery_type_id, volume, total, "count", date, created_on, updated_on
		FROM spimex_trading_results
`

func scanResults(rows *sql.Rows) ([]models.TradingResult, error) {
	defer func() { _ = rows.Close() }()

	var out []models.TradingResult
	for rows.Next() {
		var (
			rec   models.TradingResult
			basis sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.ExchangeProductID,
			&rec.OilID,
			&rec.DeliveryBasisID,
			&basis,
			&rec.DeliveryTypeID,
			&rec.Volume,
			&rec.Total,
			&rec.Count,
			&rec.Date,
			&rec.CreatedOn,
			&rec.UpdatedOn,
		); err != nil {
			return nil, err
		}
		rec.DeliveryBasisName = basis.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
