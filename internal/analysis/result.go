// Package analysis defines the boundary between external document-understanding
// services and the invoice normalizer.
//
// Every service adapter (Azure Document Intelligence JSON, Google Document AI,
// Google Vision OCR) converts its native response into a Result once, at
// ingestion. Downstream code never inspects service-specific shapes.
//
// All parts of a Result are optional: a Result may carry structured documents,
// only OCR pages, or nothing at all.
package analysis

import (
	"sort"
	"strings"
)

// Result is a document-understanding response in service-neutral form.
type Result struct {
	// Documents holds structured extractions; only the first one is used.
	Documents []Document `json:"documents,omitempty"`

	// KeyValuePairs holds the raw key/value pairs detected on the pages.
	KeyValuePairs []KeyValuePair `json:"key_value_pairs,omitempty"`

	// Pages holds OCR text lines and table grids in page order.
	Pages []Page `json:"pages,omitempty"`
}

// Document is one structured extraction, keyed by field name
// (VendorName, InvoiceTotal, Items, ...).
type Document struct {
	Fields map[string]Field `json:"fields,omitempty"`
}

// Field is a single extracted value. Value carries the service's typed value
// rendered as text, Content the verbatim text the value was read from.
type Field struct {
	Value   string `json:"value,omitempty"`
	Content string `json:"content,omitempty"`

	// Items is set for list-valued fields whose entries are field maps.
	Items []map[string]Field `json:"items,omitempty"`
}

// Text returns the typed value when present, the raw content otherwise.
func (f Field) Text() string {
	if f.Value != "" {
		return f.Value
	}
	return f.Content
}

// HasText reports whether Text would return a non-empty string.
func (f Field) HasText() bool {
	return f.Text() != ""
}

// KeyValuePair is a raw key/value detection. Either side may be missing.
type KeyValuePair struct {
	Key   *string `json:"key,omitempty"`
	Value *string `json:"value,omitempty"`
}

// Page is one OCR page.
type Page struct {
	Number int      `json:"number"`
	Lines  []string `json:"lines,omitempty"`
	Tables []Table  `json:"tables,omitempty"`
}

// Table is a detected table as a sparse list of cells.
type Table struct {
	Cells []Cell `json:"cells,omitempty"`
}

// Cell is one table cell addressed by zero-based row and column.
type Cell struct {
	RowIndex    int    `json:"row_index"`
	ColumnIndex int    `json:"column_index"`
	Content     string `json:"content"`
}

// StructuredDocument returns the first document when it carries at least one
// field.
func (r *Result) StructuredDocument() (Document, bool) {
	if r == nil || len(r.Documents) == 0 {
		return Document{}, false
	}
	doc := r.Documents[0]
	if len(doc.Fields) == 0 {
		return Document{}, false
	}
	return doc, true
}

// TextLines returns every OCR line of every page, in order.
func (r *Result) TextLines() []string {
	if r == nil {
		return nil
	}
	var lines []string
	for _, p := range r.Pages {
		lines = append(lines, p.Lines...)
	}
	return lines
}

// Tables returns every table of every page as a rectangular grid, skipping
// tables without cells.
func (r *Result) Tables() [][][]string {
	if r == nil {
		return nil
	}
	var grids [][][]string
	for _, p := range r.Pages {
		for _, t := range p.Tables {
			if len(t.Cells) == 0 {
				continue
			}
			grids = append(grids, t.Grid())
		}
	}
	return grids
}

// maxGridCells bounds the size of one table grid.
const maxGridCells = 1 << 20

// Grid lays the cells out as rows x columns. Missing cells are empty strings
// and content is trimmed. Indices come from the analyzer, so a dimension that
// spans more positions than there are cells is compacted to its distinct
// indices, and rows past maxGridCells are dropped.
func (t Table) Grid() [][]string {
	rowIndex := gridIndex(t.Cells, func(c Cell) int { return c.RowIndex })
	colIndex := gridIndex(t.Cells, func(c Cell) int { return c.ColumnIndex })
	rows, cols := len(rowIndex), len(colIndex)
	if cols == 0 {
		return [][]string{}
	}
	rows = min(rows, maxGridCells/cols)

	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	for _, c := range t.Cells {
		r, ok := rowIndex[c.RowIndex]
		if !ok || r >= rows {
			continue
		}
		col, ok := colIndex[c.ColumnIndex]
		if !ok {
			continue
		}
		grid[r][col] = strings.TrimSpace(c.Content)
	}
	return grid
}

// gridIndex maps the non-negative indices of one dimension to grid
// positions. Indices are kept as positions when their span does not exceed
// the cell count; otherwise the distinct indices are numbered in order.
func gridIndex(cells []Cell, index func(Cell) int) map[int]int {
	distinct := make(map[int]bool, len(cells))
	span := 0
	for _, c := range cells {
		i := index(c)
		if i < 0 {
			continue
		}
		distinct[i] = true
		span = max(span, i+1)
	}

	positions := make(map[int]int, len(distinct))
	if span <= len(cells) {
		for i := 0; i < span; i++ {
			positions[i] = i
		}
		return positions
	}

	sorted := make([]int, 0, len(distinct))
	for i := range distinct {
		sorted = append(sorted, i)
	}
	sort.Ints(sorted)
	for pos, i := range sorted {
		positions[i] = pos
	}
	return positions
}
