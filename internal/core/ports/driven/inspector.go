package driven

import "context"

// InputKind classifies a supported input file.
type InputKind string

// Supported input kinds.
const (
	// InputPDF is a paginated PDF document.
	InputPDF InputKind = "pdf"

	// InputImage is a single-page raster image.
	InputImage InputKind = "image"
)

// InputInspector validates and classifies input files before a job is
// created.
type InputInspector interface {
	// Inspect validates the input and returns its classification.
	// Returns an error wrapping domain.ErrUnsupportedInput for file
	// types the pipeline cannot process, and domain.ErrInvalidInput
	// for missing, unreadable, or corrupt files.
	Inspect(ctx context.Context, path string) (*InputInfo, error)
}

// InputInfo is the result of input inspection.
type InputInfo struct {
	// Path is the inspected file.
	Path string

	// Kind is the classified input type.
	Kind InputKind

	// Pages is the page count. Always 1 for images.
	Pages int
}
