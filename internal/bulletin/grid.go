package bulletin

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Grid is a raw two-dimensional view of a spreadsheet: no header row, no
// typing, just cells addressed by zero-based row/column. Rows may be ragged
// (workbook readers trim trailing empty cells), so Cell is the only accessor
// and it is total: anything out of range reads as the empty string.
type Grid struct {
	rows [][]string
}

// NewGrid wraps raw cell data. The slice is used as-is, not copied.
func NewGrid(rows [][]string) *Grid {
	return &Grid{rows: rows}
}

// OpenGrid reads the first sheet of a workbook file into a Grid.
func OpenGrid(path string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return NewGrid(rows), nil
}

// RowCount returns the number of rows in the grid.
func (g *Grid) RowCount() int {
	return len(g.rows)
}

// Cell returns the cell at (row, col), or "" when the address lies outside
// the stored data.
func (g *Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Find scans the grid in row-major order and returns the coordinates of the
// first cell whose text satisfies match.
func (g *Grid) Find(match func(string) bool) (row, col int, ok bool) {
	return g.FindFrom(0, match)
}

// FindFrom is Find restricted to rows at or below startRow.
func (g *Grid) FindFrom(startRow int, match func(string) bool) (row, col int, ok bool) {
	if startRow < 0 {
		startRow = 0
	}
	for r := startRow; r < len(g.rows); r++ {
		for c := range g.rows[r] {
			if match(g.rows[r][c]) {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}
