package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// headerSimilarityThreshold is the fraction of matching header columns
// below which a same-width table starts a new group.
const headerSimilarityThreshold = 0.5

// maxHeaderRows bounds how many leading rows a spanned header may
// claim.
const maxHeaderRows = 3

// gapMarker renders a failed page in the merged document.
const gapMarker = "> OCR failed for this page; content omitted."

// DocumentBuilder assembles processed pages into the final document:
// it merges page texts with page-boundary markers, flags suspect
// formula lines for review, and in table mode regroups same-structure
// tables across pages into logical table groups.
type DocumentBuilder struct {
	normaliser driven.TextNormaliser
}

// NewDocumentBuilder creates a document builder. The normaliser is
// applied once to the merged text; per-page artifacts stay raw.
func NewDocumentBuilder(normaliser driven.TextNormaliser) *DocumentBuilder {
	return &DocumentBuilder{normaliser: normaliser}
}

// BuildDocument merges pages in order. Failed pages become explicit
// gaps, empty pages are skipped without a marker, and every other page
// contributes its text under a "# Page N" heading. Math issues are
// detected on the raw page texts, before normalisation moves lines
// around.
func (b *DocumentBuilder) BuildDocument(title string, pages []*domain.Page, mode domain.TableMode) *domain.Document {
	doc := &domain.Document{Title: title, Pages: pages}

	var sections []string
	for _, page := range pages {
		if page.Status == domain.PageFailed {
			sections = append(sections, fmt.Sprintf("# Page %d\n\n%s", page.Number, gapMarker))
			continue
		}
		if page.Result == nil {
			continue
		}
		text := strings.TrimSpace(page.Result.Text)
		if text == "" {
			continue
		}
		doc.MathIssues = append(doc.MathIssues, detectMathIssues(page.Number, text)...)
		sections = append(sections, fmt.Sprintf("# Page %d\n\n%s", page.Number, text))
	}

	merged := strings.Join(sections, "\n\n")
	if b.normaliser != nil && merged != "" {
		merged = b.normaliser.Normalise(merged)
	}
	doc.Merged = merged

	if mode == domain.TableModeTable {
		tables := doc.Tables()
		doc.Groups = b.groupTables(tables)
		logger.Debug("grouped %d page tables into %d groups", len(tables), len(doc.Groups))
	}
	return doc
}

// ==== Table grouping ====

// groupState accumulates one logical table while scanning.
type groupState struct {
	name   string
	header []string
	cols   int
	rows   [][]string
	pages  []int
}

// groupTables scans page tables in order and concatenates tables that
// continue the same structure. A new group starts when the column
// count changes, or when a table opens with its own header that no
// longer resembles the group's header.
func (b *DocumentBuilder) groupTables(tables []*domain.Table) []domain.TableGroup {
	var groups []domain.TableGroup
	var cur *groupState

	flush := func() {
		if cur == nil {
			return
		}
		groups = append(groups, domain.TableGroup{
			Name:   cur.name,
			Header: cur.header,
			Rows:   cur.rows,
			Pages:  cur.pages,
			Hints:  columnHints(cur.rows, cur.cols),
		})
		cur = nil
	}

	for _, t := range tables {
		if t.Cols == 0 || t.Empty() {
			continue
		}
		if cur == nil || t.Cols != cur.cols || startsNewGroup(cur, t) {
			flush()
			cur = newGroupState(t, len(groups)+1)
			continue
		}
		absorb(cur, t)
	}
	flush()
	return groups
}

// startsNewGroup decides whether a same-width table opens a new
// logical table. A table that opens with its own header splits when
// that header has drifted from the group's; headerless tables always
// continue the group, and a headed table after a headerless group is
// always a split.
func startsNewGroup(cur *groupState, t *domain.Table) bool {
	if !tableHasHeader(t) {
		return false
	}
	if cur.header == nil {
		return true
	}
	sim := headerSimilarity(flattenHeader(t, headerDepth(t)), cur.header)
	return sim < headerSimilarityThreshold
}

// newGroupState opens a group from its first table.
func newGroupState(t *domain.Table, ordinal int) *groupState {
	cur := &groupState{
		name:  groupName(t, ordinal),
		cols:  t.Cols,
		pages: []int{t.Page},
	}

	start := 0
	if tableHasHeader(t) {
		depth := headerDepth(t)
		cur.header = flattenHeader(t, depth)
		start = depth
	}
	for r := start; r < t.Rows; r++ {
		cur.rows = append(cur.rows, t.RowTexts(r))
	}
	return cur
}

// absorb appends a continuation table's data rows, dropping a repeated
// header when the table carries one.
func absorb(cur *groupState, t *domain.Table) {
	start := 0
	if cur.header != nil && tableHasHeader(t) {
		start = headerDepth(t)
	}
	for r := start; r < t.Rows; r++ {
		cur.rows = append(cur.rows, t.RowTexts(r))
	}
	if cur.pages[len(cur.pages)-1] != t.Page {
		cur.pages = append(cur.pages, t.Page)
	}
}

// tableHasHeader reports whether a table opens with a header: either
// its first row reads as column labels, or a first-row cell spans
// downward, which only headers do. The span test catches numeric
// labels like year columns that the content test rejects.
func tableHasHeader(t *domain.Table) bool {
	if headerLike(t.RowTexts(0)) {
		return true
	}
	for c := 0; c < t.Cols; c++ {
		if owner := t.OwnerAt(0, c); owner != nil && owner.RowSpan > 1 && owner.RowSpan < t.Rows {
			return true
		}
	}
	return false
}

// headerLike reports whether a row reads as column labels: at least
// one non-empty cell and nothing that classifies as data.
func headerLike(texts []string) bool {
	nonEmpty := 0
	for _, s := range texts {
		if strings.TrimSpace(s) == "" {
			continue
		}
		nonEmpty++
		if classifyCell(s) != domain.HintNone {
			return false
		}
	}
	return nonEmpty > 0
}

// headerDepth counts the rows a spanned header claims: the deepest
// row span declared on the first row, bounded by maxHeaderRows.
func headerDepth(t *domain.Table) int {
	depth := 1
	for c := 0; c < t.Cols; c++ {
		if owner := t.OwnerAt(0, c); owner != nil && owner.RowSpan > depth {
			depth = owner.RowSpan
		}
	}
	if depth > maxHeaderRows {
		depth = maxHeaderRows
	}
	if depth > t.Rows {
		depth = t.Rows
	}
	return depth
}

// flattenHeader joins a multi-row header top to bottom, one label per
// column, skipping blanks and vertical-span repeats.
func flattenHeader(t *domain.Table, depth int) []string {
	header := make([]string, t.Cols)
	for c := 0; c < t.Cols; c++ {
		var parts []string
		last := ""
		for r := 0; r < depth; r++ {
			cell := t.CellAt(r, c)
			if cell == nil {
				continue
			}
			text := strings.TrimSpace(cell.Content)
			if text == "" || text == last {
				continue
			}
			parts = append(parts, text)
			last = text
		}
		header[c] = strings.Join(parts, " / ")
	}
	return header
}

// headerSimilarity is the fraction of columns whose labels match after
// case and whitespace folding.
func headerSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	matches := 0
	for i := range a {
		if headerKey(a[i]) == headerKey(b[i]) {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

func headerKey(s string) string {
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), "")
}

// groupName picks the first owned cell with content from the group's
// first table, truncated for use as a sheet or file name. Falls back
// to a positional name when the table has no textual cell.
func groupName(t *domain.Table, ordinal int) string {
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			owner := t.OwnerAt(r, c)
			if owner == nil {
				continue
			}
			name := strings.Join(strings.Fields(owner.Content), " ")
			if name == "" {
				continue
			}
			if utf8.RuneCountInString(name) > 31 {
				name = string([]rune(name)[:31])
			}
			return name
		}
	}
	return fmt.Sprintf("table_%d", ordinal)
}

// columnHints assigns a formatting hint to each column when at least
// 80% of its non-empty cells classify the same way. Mixed columns get
// no hint.
func columnHints(rows [][]string, cols int) []domain.TypeHint {
	hints := make([]domain.TypeHint, cols)
	for c := 0; c < cols; c++ {
		counts := make(map[domain.TypeHint]int)
		total := 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			s := strings.TrimSpace(row[c])
			if s == "" {
				continue
			}
			total++
			counts[classifyCell(s)]++
		}
		if total == 0 {
			continue
		}
		for _, h := range []domain.TypeHint{domain.HintNumeric, domain.HintPercent, domain.HintDate} {
			if counts[h]*5 >= total*4 {
				hints[c] = h
				break
			}
		}
	}
	return hints
}

// ==== Math issue detection ====

var (
	fractionKeywords = []string{"比率", "割合", "分数", "率", "比"}
	fractionSymbols  = []string{"/", "÷", "×", "%", "％"}
	equalitySymbols  = []string{"=", "≒", "≠"}
)

// detectMathIssues scans raw page text for lines that look like
// mangled formulas. Line numbers are 1-based within the page.
func detectMathIssues(page int, text string) []domain.MathIssue {
	var issues []domain.MathIssue
	for idx, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		kind := ""
		switch {
		case looksLikeFraction(stripped):
			kind = "fraction_like"
		case noisyDollar(stripped):
			kind = "noisy_dollar"
		}
		if kind != "" {
			issues = append(issues, domain.MathIssue{
				Page:    page,
				Line:    idx + 1,
				Kind:    kind,
				Excerpt: stripped,
			})
		}
	}
	return issues
}

// looksLikeFraction flags prose that states a ratio with an equality
// but whose fraction survived OCR as flat symbols.
func looksLikeFraction(line string) bool {
	if !containsAny(line, equalitySymbols) {
		return false
	}
	if !containsAny(line, fractionSymbols) {
		return false
	}
	return containsAny(line, fractionKeywords)
}

// noisyDollar flags lines mixing math delimiters into CJK prose.
func noisyDollar(line string) bool {
	if strings.Count(line, "$") < 2 {
		return false
	}
	for _, r := range line {
		if r >= 0x3040 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
