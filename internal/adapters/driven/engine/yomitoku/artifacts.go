package yomitoku

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// The CLI derives artifact names from the input path, so the same page
// can surface as page_003_p1.md, prefixed variants, or the bare
// canonical name. Multi-part pages carry a _pNN suffix.
var (
	artifactPattern = regexp.MustCompile(`^(?:.*_)?page_?(\d+)(?:_p(\d+))?\.([a-z]+)$`)
	figurePattern   = regexp.MustCompile(`^(?:.*_)?page_(\d+)(?:_p(\d+))?_figure_(\d+)(\.[A-Za-z0-9]+)$`)
	imgTagPattern   = regexp.MustCompile(`<img[^>]*?src="([^"]+)"[^>]*?(?:alt="([^"]*)")?[^>]*?>`)
)

type pageArtifact struct {
	part int
	path string
}

// findPageArtifacts lists the raw outputs for one page and extension,
// ordered by part number. Artifacts for other pages are left alone.
func findPageArtifacts(dir string, page int, ext string) ([]pageArtifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var arts []pageArtifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := artifactPattern.FindStringSubmatch(entry.Name())
		if m == nil || m[3] != ext {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num != page {
			continue
		}
		part := 1
		if m[2] != "" {
			part, _ = strconv.Atoi(m[2])
		}
		arts = append(arts, pageArtifact{part: part, path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].part < arts[j].part })
	return arts, nil
}

// collectPageMarkdown joins the page's markdown parts in order and
// removes the raw files. No markdown output is a valid blank page.
func collectPageMarkdown(ws domain.Workspace, page int) (string, error) {
	arts, err := findPageArtifacts(ws.Dir, page, "md")
	if err != nil {
		return "", err
	}

	var parts []string
	for _, art := range arts {
		data, err := os.ReadFile(art.path)
		if err != nil {
			return "", err
		}
		if s := strings.TrimSpace(string(data)); s != "" {
			parts = append(parts, s)
		}
		os.Remove(art.path)
	}
	return strings.Join(parts, "\n\n"), nil
}

// canonicalizeArtifact renames the page's first raw artifact to the
// canonical path and drops duplicates. Returns "" when the engine
// emitted nothing.
func canonicalizeArtifact(dir string, page int, ext, canonical string) (string, error) {
	arts, err := findPageArtifacts(dir, page, ext)
	if err != nil || len(arts) == 0 {
		return "", err
	}

	if arts[0].path != canonical {
		if err := os.Rename(arts[0].path, canonical); err != nil {
			return "", err
		}
	}
	for _, extra := range arts[1:] {
		if extra.path != canonical {
			os.Remove(extra.path)
		}
	}
	return canonical, nil
}

// renameFigures gives the page's extracted figure assets stable names
// and returns the old-to-new name mapping for link rewriting.
func renameFigures(ws domain.Workspace, page int) (map[string]string, error) {
	dir := ws.FiguresDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type rawFigure struct {
		part  int
		index int
		name  string
	}
	var raws []rawFigure
	for _, entry := range entries {
		m := figurePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num != page {
			continue
		}
		part := 0
		if m[2] != "" {
			part, _ = strconv.Atoi(m[2])
		}
		index, _ := strconv.Atoi(m[3])
		raws = append(raws, rawFigure{part: part, index: index, name: entry.Name()})
	}
	if len(raws) == 0 {
		return nil, nil
	}

	sort.Slice(raws, func(i, j int) bool {
		if raws[i].part != raws[j].part {
			return raws[i].part < raws[j].part
		}
		return raws[i].index < raws[j].index
	})

	mapping := make(map[string]string, len(raws))
	for i, raw := range raws {
		ext := strings.ToLower(filepath.Ext(raw.name))
		dest := ws.FigurePath(page, i+1, ext)
		if err := os.Rename(filepath.Join(dir, raw.name), dest); err != nil {
			return mapping, err
		}
		mapping[raw.name] = filepath.Base(dest)
	}
	return mapping, nil
}

// rewriteFigureLinks points every reference at the renamed asset. The
// raw name appears in several shapes (img src attributes, markdown
// links, bare paths), all normalised to ./figures/<new>.
func rewriteFigureLinks(text string, mapping map[string]string) string {
	olds := make([]string, 0, len(mapping))
	for old := range mapping {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	for _, old := range olds {
		dest := "./figures/" + mapping[old]
		r := strings.NewReplacer(
			`src="./figures/`+old+`"`, `src="`+dest+`"`,
			`src="figures/`+old+`"`, `src="`+dest+`"`,
			`src="`+old+`"`, `src="`+dest+`"`,
			"](./figures/"+old+")", "]("+dest+")",
			"](figures/"+old+")", "]("+dest+")",
			"]("+old+")", "]("+dest+")",
			"./figures/"+old, dest,
			"figures/"+old, dest,
			old, dest,
		)
		text = r.Replace(text)
	}
	return text
}

// imgTagsToMarkdown converts HTML img tags to markdown image syntax.
func imgTagsToMarkdown(text string) string {
	return imgTagPattern.ReplaceAllStringFunc(text, func(tag string) string {
		m := imgTagPattern.FindStringSubmatch(tag)
		if m == nil {
			return tag
		}
		return fmt.Sprintf("![%s](%s)", m[2], m[1])
	})
}

// stripFigureReferences removes links to figures the icon filter
// deleted.
func stripFigureReferences(text string, removed []string) string {
	for _, name := range removed {
		esc := regexp.QuoteMeta(name)
		re := regexp.MustCompile(`!\[[^\]]*\]\((?:\./)?figures/` + esc + `\)|<img[^>]+src="(?:\./)?figures/` + esc + `"[^>]*>`)
		text = re.ReplaceAllString(text, "")
	}
	return text
}

// jsonPayload mirrors the table section of the engine's JSON output.
// Cell coordinates are 1-based in the payload.
type jsonPayload struct {
	Tables []jsonTable `json:"tables"`
}

type jsonTable struct {
	NRow  int        `json:"n_row"`
	NCol  int        `json:"n_col"`
	Cells []jsonCell `json:"cells"`
}

type jsonCell struct {
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	RowSpan  int       `json:"row_span"`
	ColSpan  int       `json:"col_span"`
	Contents string    `json:"contents"`
	Box      []float64 `json:"box"`
}

// parseTables converts the JSON payload into canonical grids.
func (e *Engine) parseTables(page int, payload []byte) ([]*domain.Table, error) {
	var doc jsonPayload
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("parse table payload: %w", err)
	}

	var tables []*domain.Table
	for i, jt := range doc.Tables {
		records := make([]domain.CellRecord, 0, len(jt.Cells))
		for _, c := range jt.Cells {
			rec := domain.CellRecord{
				Row:     max(0, c.Row-1),
				Col:     max(0, c.Col-1),
				RowSpan: max(1, c.RowSpan),
				ColSpan: max(1, c.ColSpan),
				Content: strings.TrimSpace(c.Contents),
			}
			if len(c.Box) == 4 {
				rec.BBox = domain.BBox{
					X:      c.Box[0],
					Y:      c.Box[1],
					Width:  c.Box[2] - c.Box[0],
					Height: c.Box[3] - c.Box[1],
				}
			}
			records = append(records, rec)
		}
		if len(records) == 0 {
			continue
		}
		label := fmt.Sprintf("page%03d_table%02d", page, i+1)
		tables = append(tables, e.tables.Build(label, page, jt.NRow, jt.NCol, records))
	}
	return tables, nil
}
