package domain

import "fmt"

// BBox is a pixel-space bounding box, when the engine reports one.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// TypeHint classifies a cell's literal content for exporter formatting.
// Hints never alter content; they only guide number/date formatting in
// serializers that support it.
type TypeHint int

// Cell type hints.
const (
	// HintNone means the content matched no literal pattern.
	HintNone TypeHint = iota

	// HintNumeric means the content looks like an integer or decimal.
	HintNumeric

	// HintPercent means the content looks like a percentage literal.
	HintPercent

	// HintDate means the content parsed as a calendar date.
	HintDate
)

// String returns a short name for the hint.
func (h TypeHint) String() string {
	switch h {
	case HintNumeric:
		return "numeric"
	case HintPercent:
		return "percent"
	case HintDate:
		return "date"
	default:
		return "none"
	}
}

// CellRecord is a raw cell as delivered by an engine payload, 0-based,
// unordered. The table builder normalizes records into a Table.
type CellRecord struct {
	// Row and Col locate the cell's top-left origin.
	Row int
	Col int

	// RowSpan and ColSpan count covered rows/columns, minimum 1.
	RowSpan int
	ColSpan int

	// Content is the cell text.
	Content string

	// BBox is the source region, when known.
	BBox BBox
}

// Cell is an owned grid cell stored once at its top-left origin.
type Cell struct {
	// Row and Col are the owning coordinate.
	Row int
	Col int

	// RowSpan and ColSpan count covered rows/columns after clamping.
	RowSpan int
	ColSpan int

	// Content is the cell text.
	Content string

	// Hint guides exporter formatting. Derived, never authoritative.
	Hint TypeHint

	// BBox is the source region, when known.
	BBox BBox
}

// GridEntry resolves one grid coordinate: either an owning cell or a
// covered marker pointing at its owner. Exactly one of the fields is
// set for occupied coordinates; both nil means the coordinate is empty
// (no engine record claimed it).
type GridEntry struct {
	// Owner is non-nil at a cell's top-left origin.
	Owner *Cell

	// CoveredBy is non-nil at coordinates inside another cell's span.
	CoveredBy *CellRef
}

// CellRef names an owning coordinate.
type CellRef struct {
	Row int
	Col int
}

// TableWarning records a repair made while building a grid: a span
// conflict or a bounds overrun. Warnings are logged, never raised.
type TableWarning struct {
	// Kind is "conflict" or "clamp".
	Kind string

	// Row and Col locate the affected cell's declared origin.
	Row int
	Col int

	// Detail describes the repair.
	Detail string
}

// String formats the warning for logs.
func (w TableWarning) String() string {
	return fmt.Sprintf("%s at (%d,%d): %s", w.Kind, w.Row, w.Col, w.Detail)
}

// Table is the canonical grid consumed identically by every exporter.
// Every coordinate in [0,Rows)x[0,Cols) resolves through Grid.
type Table struct {
	// Label names the table, when the engine reports one.
	Label string

	// Page is the 1-based source page number.
	Page int

	// Rows and Cols are the grid dimensions.
	Rows int
	Cols int

	// Grid is indexed [row][col].
	Grid [][]GridEntry

	// Warnings lists repairs made during building.
	Warnings []TableWarning
}

// CellAt returns the owning cell covering the coordinate, resolving
// covered markers to their owner. Returns nil for empty or
// out-of-bounds coordinates.
func (t *Table) CellAt(row, col int) *Cell {
	if row < 0 || row >= t.Rows || col < 0 || col >= t.Cols {
		return nil
	}
	entry := t.Grid[row][col]
	if entry.Owner != nil {
		return entry.Owner
	}
	if entry.CoveredBy != nil {
		return t.Grid[entry.CoveredBy.Row][entry.CoveredBy.Col].Owner
	}
	return nil
}

// OwnerAt returns the cell whose top-left origin is exactly this
// coordinate, or nil.
func (t *Table) OwnerAt(row, col int) *Cell {
	if row < 0 || row >= t.Rows || col < 0 || col >= t.Cols {
		return nil
	}
	return t.Grid[row][col].Owner
}

// Cells returns every owned cell in row-major order.
func (t *Table) Cells() []*Cell {
	var cells []*Cell
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			if owner := t.Grid[r][c].Owner; owner != nil {
				cells = append(cells, owner)
			}
		}
	}
	return cells
}

// RowTexts returns the visible text of one row, with covered
// coordinates resolved to their owner's content.
func (t *Table) RowTexts(row int) []string {
	if row < 0 || row >= t.Rows {
		return nil
	}
	texts := make([]string, t.Cols)
	for c := 0; c < t.Cols; c++ {
		if cell := t.CellAt(row, c); cell != nil {
			texts[c] = cell.Content
		}
	}
	return texts
}

// Empty reports whether the table has no owned cells with content.
func (t *Table) Empty() bool {
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			if owner := t.Grid[r][c].Owner; owner != nil && owner.Content != "" {
				return false
			}
		}
	}
	return true
}
