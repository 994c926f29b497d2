package bulletin

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/etchedheadplate/spimex-scraper/internal/domain/models"
	"github.com/etchedheadplate/spimex-scraper/internal/logger"
)

const (
	// dateMarker prefixes the cell holding the bulletin's trading date,
	// e.g. "Дата торгов: 09.01.2023".
	dateMarker = "Дата торгов:"

	// startMarker is the measurement-unit label that precedes the metric-ton
	// trading table in every known bulletin layout.
	startMarker = "Единица измерения: Метрическая тонна"

	// endMarker is the totals line that closes the table.
	endMarker = "Итого:"

	// headerRowsAfterStartMarker is the fixed number of rows between the
	// measurement-unit label and the first data row (the column-header block
	// every known bulletin carries). Data begins this many rows below the
	// marker; if the exchange ever changes the header block this constant is
	// the thing to fix.
	headerRowsAfterStartMarker = 3

	// tradeDateLayout is the day-first date format used inside bulletins.
	tradeDateLayout = "02.01.2006"
)

// Fixed zero-based column positions of the seven logical columns in the raw
// sheet. Bulletins vary in row offsets but not in column layout.
const (
	colProductID   = 1
	colProductName = 2
	colBasisName   = 3
	colVolume      = 4
	colTotal       = 5
	colCount       = 14
)

var (
	// ErrNoFiles is returned when Parse receives an empty file list.
	ErrNoFiles = errors.New("no bulletin files to parse")

	// Structural errors: the file cannot be attributed a table at all.
	ErrNoDateMarker  = errors.New("date marker not found")
	ErrNoStartMarker = errors.New("start-of-table marker not found")
	ErrNoEndMarker   = errors.New("end-of-table marker not found")
)

// openGrid is an indirection for reading workbook files; tests can override it.
var openGrid = OpenGrid

// Parser extracts the fixed-shape trading table from bulletin files.
//
// One instance is safe for reuse across files; it holds no per-file state.
type Parser struct{}

// NewParser returns a ready Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts trading rows from every file, concatenating the per-file
// tables in the order given. It fails fast with ErrNoFiles on empty input and
// propagates the first structural error wrapped with its file path; callers
// that want per-file isolation can use ParseFile directly.
func (p *Parser) Parse(paths []string) ([]models.TradingRow, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	log := logger.With("parser")
	log.Info().Int("files", len(paths)).Msg("parsing bulletins")

	var all []models.TradingRow
	for _, path := range paths {
		rows, err := p.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		all = append(all, rows...)
	}

	log.Info().Int("rows", len(all)).Msg("parsing done")
	return all, nil
}

// ParseFile extracts the trading table from a single bulletin file.
func (p *Parser) ParseFile(path string) ([]models.TradingRow, error) {
	grid, err := openGrid(path)
	if err != nil {
		return nil, err
	}
	return p.parseGrid(grid)
}

func (p *Parser) parseGrid(g *Grid) ([]models.TradingRow, error) {
	// The whole file carries exactly one trading date.
	dr, dc, ok := g.Find(func(s string) bool { return strings.Contains(s, dateMarker) })
	if !ok {
		return nil, ErrNoDateMarker
	}
	dateText := strings.TrimSpace(strings.ReplaceAll(g.Cell(dr, dc), dateMarker, ""))
	tradeDate, err := time.Parse(tradeDateLayout, dateText)
	if err != nil {
		return nil, fmt.Errorf("invalid trading date %q: %w", dateText, err)
	}

	markerRow, _, ok := g.Find(func(s string) bool { return strings.TrimSpace(s) == startMarker })
	if !ok {
		return nil, ErrNoStartMarker
	}
	start := markerRow + headerRowsAfterStartMarker

	end, _, ok := g.FindFrom(start, func(s string) bool { return strings.TrimSpace(s) == endMarker })
	if !ok {
		return nil, ErrNoEndMarker
	}

	var rows []models.TradingRow
	for r := start; r < end; r++ {
		// Line-validity filter: blank and separator rows inside the nominal
		// range have no numeric count.
		count, ok := coerceInt(g.Cell(r, colCount))
		if !ok {
			continue
		}

		productID := strings.TrimSpace(g.Cell(r, colProductID))
		row := models.TradingRow{
			ExchangeProductID:   productID,
			ExchangeProductName: strings.TrimSpace(g.Cell(r, colProductName)),
			DeliveryBasisName:   strings.TrimSpace(g.Cell(r, colBasisName)),
			Volume:              coerceNullInt(g.Cell(r, colVolume)),
			Total:               coerceNullInt(g.Cell(r, colTotal)),
			Count:               count,
			Date:                tradeDate,
		}
		row.OilID, row.DeliveryBasisID, row.DeliveryTypeID = deriveIDs(productID)
		rows = append(rows, row)
	}
	return rows, nil
}

// deriveIDs slices the composite product code by fixed offsets:
// first four characters, next three, and the last one.
func deriveIDs(productID string) (oilID, basisID, typeID string) {
	if len(productID) >= 4 {
		oilID = productID[:4]
	} else {
		oilID = productID
	}
	if len(productID) >= 7 {
		basisID = productID[4:7]
	} else if len(productID) > 4 {
		basisID = productID[4:]
	}
	if len(productID) > 0 {
		typeID = productID[len(productID)-1:]
	}
	return oilID, basisID, typeID
}

// coerceInt parses a cell as an integer, tolerating spreadsheet formatting:
// surrounding whitespace, space and non-breaking-space thousand separators,
// and a decimal tail produced by float-typed cells.
func coerceInt(s string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(cleaned, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// coerceNullInt is coerceInt with non-numeric mapping to SQL NULL.
func coerceNullInt(s string) sql.NullInt64 {
	v, ok := coerceInt(s)
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
