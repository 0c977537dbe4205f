package domain

// TableGroup is an independently exportable logical table assembled by
// the structure-split engine from same-label tables across pages.
type TableGroup struct {
	// Name labels the group, derived from the first owned cell of the
	// group's first table, with a positional fallback.
	Name string

	// Header holds the flattened header row, when one was detected.
	// Multi-row headers are joined top-to-bottom with " / ".
	Header []string

	// Rows are the concatenated data rows of the group's tables.
	Rows [][]string

	// Pages lists the 1-based source pages contributing to the group,
	// in order.
	Pages []int

	// Hints carries per-column formatting hints sampled from the
	// group's data cells.
	Hints []TypeHint
}

// Document is the merged result of a job: ordered pages, merged
// normalized text, and zero or more table groups. Built incrementally
// as chunks complete; immutable once the job reaches a terminal state.
type Document struct {
	// Title is derived from the input file stem.
	Title string

	// Pages holds every processed page in order.
	Pages []*Page

	// Merged is the full normalized markdown with page boundary
	// markers and gap markers for failed pages.
	Merged string

	// Groups holds logical tables in table mode; empty in layout mode.
	Groups []TableGroup

	// MathIssues lists suspect formula lines found during merge.
	MathIssues []MathIssue
}

// MathIssue flags a line that looks like a broken formula, collected
// during merge for the review CSV.
type MathIssue struct {
	// Page is the 1-based source page.
	Page int

	// Line is the 1-based line number within that page's text.
	Line int

	// Kind is "fraction_like" or "noisy_dollar".
	Kind string

	// Excerpt is the offending line, trimmed.
	Excerpt string
}

// FailedPages returns the numbers of pages that produced no output.
func (d *Document) FailedPages() []int {
	var failed []int
	for _, p := range d.Pages {
		if p.Status == PageFailed {
			failed = append(failed, p.Number)
		}
	}
	return failed
}

// RecoveredPages returns the numbers of pages rescued by fallback.
func (d *Document) RecoveredPages() []int {
	var recovered []int
	for _, p := range d.Pages {
		if p.Status == PageRecovered {
			recovered = append(recovered, p.Number)
		}
	}
	return recovered
}

// Tables returns every page table in page order, regardless of mode.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, p := range d.Pages {
		if p.Result == nil {
			continue
		}
		tables = append(tables, p.Result.Tables...)
	}
	return tables
}
