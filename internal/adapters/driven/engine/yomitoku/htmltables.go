package yomitoku

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// parseHTMLTables extracts cell records from <table> fragments the
// engine embeds in its markdown when the layout model renders a table
// inline instead of reporting it in the JSON payload. Records are
// 0-based; spans are honoured through an occupied-coordinate walk, so
// a rowspan in one row shifts cell placement in the rows below it the
// way a browser lays the table out.
func parseHTMLTables(text string) [][]domain.CellRecord {
	if !strings.Contains(strings.ToLower(text), "<table") {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil
	}

	var tables [][]domain.CellRecord
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			if records := tableCellRecords(n); len(records) > 0 {
				tables = append(tables, records)
			}
			// The engines never nest tables; don't descend.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

// tableCellRecords walks one table element row by row. occupied marks
// coordinates claimed by earlier spans; the column cursor skips them
// before placing the next cell.
func tableCellRecords(table *html.Node) []domain.CellRecord {
	type coord struct{ row, col int }
	occupied := make(map[coord]bool)
	var records []domain.CellRecord

	row := 0
	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walkRows(c)
			case atom.Tr:
				col := 0
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode {
						continue
					}
					if cell.DataAtom != atom.Td && cell.DataAtom != atom.Th {
						continue
					}
					for occupied[coord{row, col}] {
						col++
					}
					rowSpan := spanAttr(cell, "rowspan")
					colSpan := spanAttr(cell, "colspan")
					records = append(records, domain.CellRecord{
						Row:     row,
						Col:     col,
						RowSpan: rowSpan,
						ColSpan: colSpan,
						Content: cellText(cell),
					})
					for r := row; r < row+rowSpan; r++ {
						for cc := col; cc < col+colSpan; cc++ {
							occupied[coord{r, cc}] = true
						}
					}
					col += colSpan
				}
				row++
			}
		}
	}
	walkRows(table)
	return records
}

// spanAttr reads a rowspan/colspan attribute. Missing or malformed
// values mean 1.
func spanAttr(n *html.Node, name string) int {
	for _, a := range n.Attr {
		if a.Key != name {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil && v > 0 {
			return v
		}
	}
	return 1
}

// cellText flattens a cell subtree to text, with <br> as a newline.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
