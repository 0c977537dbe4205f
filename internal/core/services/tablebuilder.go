package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// TableBuilder normalises the flat, unordered cell records engines
// emit into canonical grids. Every coordinate of the result resolves
// to an owning cell, a covered marker, or empty; exporters consume
// the grid without re-deriving structure.
type TableBuilder struct{}

// NewTableBuilder creates a table builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// Build assembles a canonical grid from engine cell records. Records
// are 0-based and may arrive in any order; placement follows the
// declared order, and on overlap the earlier record wins. Declared
// dimensions of zero are derived from record extents. Malformed
// records are repaired or dropped with a warning, never raised.
func (b *TableBuilder) Build(label string, page, declaredRows, declaredCols int, records []domain.CellRecord) *domain.Table {
	rows := declaredRows
	cols := declaredCols
	for _, rec := range records {
		if declaredRows <= 0 && rec.Row+spanOf(rec.RowSpan) > rows {
			rows = rec.Row + spanOf(rec.RowSpan)
		}
		if declaredCols <= 0 && rec.Col+spanOf(rec.ColSpan) > cols {
			cols = rec.Col + spanOf(rec.ColSpan)
		}
	}
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}

	t := &domain.Table{
		Label: label,
		Page:  page,
		Rows:  rows,
		Cols:  cols,
		Grid:  make([][]domain.GridEntry, rows),
	}
	for r := 0; r < rows; r++ {
		t.Grid[r] = make([]domain.GridEntry, cols)
	}

	for _, rec := range records {
		b.place(t, rec)
	}

	for _, w := range t.Warnings {
		logger.Warn("table %q page %d: %s", label, page, w)
	}
	return t
}

// place resolves one record into the grid: bounds check, span clamp,
// overlap check, then ownership and coverage markers.
func (b *TableBuilder) place(t *domain.Table, rec domain.CellRecord) {
	if rec.Row < 0 || rec.Row >= t.Rows || rec.Col < 0 || rec.Col >= t.Cols {
		t.Warnings = append(t.Warnings, domain.TableWarning{
			Kind: "clamp",
			Row:  rec.Row,
			Col:  rec.Col,
			Detail: fmt.Sprintf("origin outside %dx%d grid, record dropped",
				t.Rows, t.Cols),
		})
		return
	}

	rowSpan := spanOf(rec.RowSpan)
	if rec.Row+rowSpan > t.Rows {
		clamped := t.Rows - rec.Row
		t.Warnings = append(t.Warnings, domain.TableWarning{
			Kind: "clamp",
			Row:  rec.Row,
			Col:  rec.Col,
			Detail: fmt.Sprintf("row span %d exceeds %d rows, clamped to %d",
				rowSpan, t.Rows, clamped),
		})
		rowSpan = clamped
	}
	colSpan := spanOf(rec.ColSpan)
	if rec.Col+colSpan > t.Cols {
		clamped := t.Cols - rec.Col
		t.Warnings = append(t.Warnings, domain.TableWarning{
			Kind: "clamp",
			Row:  rec.Row,
			Col:  rec.Col,
			Detail: fmt.Sprintf("col span %d exceeds %d cols, clamped to %d",
				colSpan, t.Cols, clamped),
		})
		colSpan = clamped
	}

	for r := rec.Row; r < rec.Row+rowSpan; r++ {
		for c := rec.Col; c < rec.Col+colSpan; c++ {
			entry := t.Grid[r][c]
			if entry.Owner == nil && entry.CoveredBy == nil {
				continue
			}
			owner := domain.CellRef{Row: r, Col: c}
			if entry.CoveredBy != nil {
				owner = *entry.CoveredBy
			}
			t.Warnings = append(t.Warnings, domain.TableWarning{
				Kind: "conflict",
				Row:  rec.Row,
				Col:  rec.Col,
				Detail: fmt.Sprintf("span overlaps cell at (%d,%d), record dropped",
					owner.Row, owner.Col),
			})
			return
		}
	}

	content := strings.TrimSpace(rec.Content)
	cell := &domain.Cell{
		Row:     rec.Row,
		Col:     rec.Col,
		RowSpan: rowSpan,
		ColSpan: colSpan,
		Content: content,
		Hint:    classifyCell(content),
		BBox:    rec.BBox,
	}
	t.Grid[rec.Row][rec.Col] = domain.GridEntry{Owner: cell}
	ref := domain.CellRef{Row: rec.Row, Col: rec.Col}
	for r := rec.Row; r < rec.Row+rowSpan; r++ {
		for c := rec.Col; c < rec.Col+colSpan; c++ {
			if r == rec.Row && c == rec.Col {
				continue
			}
			covered := ref
			t.Grid[r][c] = domain.GridEntry{CoveredBy: &covered}
		}
	}
}

// spanOf treats missing or nonsensical spans as 1.
func spanOf(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Literal patterns for cell classification, checked against trimmed,
// width-folded content. Kept narrow: a wrong hint misformats a cell,
// so unclear content stays HintNone.
var (
	percentLiteral = regexp.MustCompile(`^-?\d[\d,.]*%$`)
	intLiteral     = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})*$`)
	floatLiteral   = regexp.MustCompile(`^-?\d*[.,]?\d+$`)
)

// dateLayouts accepts both padded and unpadded components.
var dateLayouts = []string{"2006-1-2", "2006/1/2", "2006.1.2"}

// classifyCell derives a formatting hint from literal cell content.
// Percent is checked before numeric, and dates are validated by a real
// calendar parse so "2024/13/45" never hints as a date.
func classifyCell(content string) domain.TypeHint {
	s := strings.TrimSpace(width.Fold.String(content))
	if s == "" {
		return domain.HintNone
	}

	if percentLiteral.MatchString(s) {
		return domain.HintPercent
	}
	if intLiteral.MatchString(s) || floatLiteral.MatchString(s) {
		return domain.HintNumeric
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return domain.HintDate
		}
	}
	return domain.HintNone
}
