package domain

// PageStatus tracks a single page's OCR outcome.
type PageStatus string

// Page states.
const (
	// PagePending means the page has not been dispatched yet.
	PagePending PageStatus = "pending"

	// PageDone means the primary engine produced usable output.
	PageDone PageStatus = "done"

	// PageFailed means every engine failed; the page renders as an
	// explicit gap marker in the merged document.
	PageFailed PageStatus = "failed"

	// PageRecovered means the fallback engine appended output after
	// the primary failed or returned too little content.
	PageRecovered PageStatus = "recovered"
)

// IsValid returns true if the status is recognised.
func (s PageStatus) IsValid() bool {
	switch s {
	case PagePending, PageDone, PageFailed, PageRecovered:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s PageStatus) String() string {
	return string(s)
}

// Figure is an image region extracted from a page by the engine.
type Figure struct {
	// Path is the asset location inside the workspace.
	Path string

	// Page is the 1-based source page number.
	Page int

	// Index orders figures within a page, 1-based.
	Index int

	// Width and Height are pixel dimensions, when known.
	Width  int
	Height int
}

// PageResult is the structured output of one OCR invocation after
// normalization.
type PageResult struct {
	// Text is the normalized markdown content.
	Text string

	// Tables holds the canonical grids built from the engine payload.
	Tables []*Table

	// Figures lists extracted image regions.
	Figures []Figure

	// Confidence is the engine-reported recognition confidence in
	// [0,1], or zero when the engine does not report one.
	Confidence float64

	// Engine names the engine (or engines, for recovered pages) that
	// produced this result.
	Engine string

	// Recovered is true when the fallback engine contributed content
	// after the primary failed or fell below the content threshold.
	Recovered bool
}

// Page is a single page flowing through the pipeline. Created at
// dispatch, mutated only on the OCR invocation path, frozen once
// merged into the Document.
type Page struct {
	// Number is the 1-based page number in the source document.
	Number int

	// ImagePath is the rasterized page image inside the workspace.
	ImagePath string

	// Status is the OCR outcome.
	Status PageStatus

	// Result holds the structured output for done/recovered pages.
	Result *PageResult

	// Err records the failure cause for failed pages.
	Err string
}

// Empty reports whether the page produced no visible content. Empty
// successful pages are skipped during merge without a gap marker.
func (p *Page) Empty() bool {
	if p.Status == PageFailed {
		return false
	}
	return p.Result == nil || (p.Result.Text == "" && len(p.Result.Tables) == 0)
}
