package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Workspace is the deterministic artifact layout for one job:
//
//	<root>/<stem>[_<label>]/
//	    page_images/page_%03d.png    rasterized pages
//	    figures/fig_page%03d_%02d.*  extracted figure assets
//	    formats/json/page_%03d.json  engine table payloads
//	    formats/csv/page_%03d.csv    engine CSV payloads
//	    page_%03d.md                 per-page markdown (pre-merge)
//	    ocr.log                      engine invocation log
//	    <stem>.md / .csv / ...       final exports
//
// Workspace computes paths only; adapters do the I/O.
type Workspace struct {
	// Dir is the job's output directory.
	Dir string

	// Stem is the input file name without extension.
	Stem string
}

// NewWorkspace derives the workspace for an input file. label, when
// non-empty, suffixes the directory name so repeated runs with
// different page ranges do not collide.
func NewWorkspace(root, inputPath, label string) Workspace {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	name := stem
	if label != "" {
		name = stem + "_" + label
	}
	return Workspace{
		Dir:  filepath.Join(root, name),
		Stem: stem,
	}
}

// PageImagesDir is where rasterized pages live.
func (w Workspace) PageImagesDir() string {
	return filepath.Join(w.Dir, "page_images")
}

// PageImage is the rasterized image for a 1-based page number.
func (w Workspace) PageImage(page int) string {
	return filepath.Join(w.PageImagesDir(), fmt.Sprintf("page_%03d.png", page))
}

// FiguresDir is where extracted figure assets live.
func (w Workspace) FiguresDir() string {
	return filepath.Join(w.Dir, "figures")
}

// FigurePath is the stable name for a figure asset.
func (w Workspace) FigurePath(page, index int, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(w.FiguresDir(), fmt.Sprintf("fig_page%03d_%02d%s", page, index, ext))
}

// PageMarkdown is the per-page markdown artifact before merging.
func (w Workspace) PageMarkdown(page int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("page_%03d.md", page))
}

// JSONDir is where engine JSON payloads live.
func (w Workspace) JSONDir() string {
	return filepath.Join(w.Dir, "formats", "json")
}

// PageJSON is the engine JSON payload for a page.
func (w Workspace) PageJSON(page int) string {
	return filepath.Join(w.JSONDir(), fmt.Sprintf("page_%03d.json", page))
}

// CSVDir is where engine CSV payloads live.
func (w Workspace) CSVDir() string {
	return filepath.Join(w.Dir, "formats", "csv")
}

// PageCSV is the engine CSV payload for a page.
func (w Workspace) PageCSV(page int) string {
	return filepath.Join(w.CSVDir(), fmt.Sprintf("page_%03d.csv", page))
}

// InvocationLog records every engine command with its output.
func (w Workspace) InvocationLog() string {
	return filepath.Join(w.Dir, "ocr.log")
}

// DecisionLog records icon-filter classifications in review mode.
func (w Workspace) DecisionLog() string {
	return filepath.Join(w.Dir, "icon_decisions.log")
}

// MathReviewCSV lists suspect formula lines found during merge.
func (w Workspace) MathReviewCSV() string {
	return filepath.Join(w.Dir, w.Stem+"_math_review.csv")
}

// ExportPath is the final artifact for a format.
func (w Workspace) ExportPath(format ExportFormat) string {
	return filepath.Join(w.Dir, w.Stem+"."+format.String())
}

// TablesDir holds the per-group CSV files written in table mode.
func (w Workspace) TablesDir() string {
	return filepath.Join(w.Dir, w.Stem+"_tables")
}

// RangeLabel formats the conventional label suffix for a bounded page
// range, e.g. "p3-7".
func RangeLabel(start, end int) string {
	return fmt.Sprintf("p%d-%d", start, end)
}

// ParsePageRange parses a user-facing page range. Accepted forms:
// "3-7", a single page "5", and the open-ended "3-" where end 0 means
// the last page. An empty string selects every page.
func ParsePageRange(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}

	first, rest, dashed := strings.Cut(s, "-")
	start, err = strconv.Atoi(strings.TrimSpace(first))
	if err != nil || start < 1 {
		return 0, 0, fmt.Errorf("%w: bad page range %q", ErrInvalidInput, s)
	}

	switch {
	case !dashed:
		end = start
	case strings.TrimSpace(rest) == "":
		end = 0
	default:
		end, err = strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || end < start {
			return 0, 0, fmt.Errorf("%w: bad page range %q", ErrInvalidInput, s)
		}
	}
	return start, end, nil
}
