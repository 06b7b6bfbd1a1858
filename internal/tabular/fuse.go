package tabular

import "strings"

// UnnamedColumn is the fused name of a position with no label in either row.
const UnnamedColumn = "Unnamed"

// placeholderPrefix marks labels synthesized by upstream exporters for
// positions that had no header text ("Unnamed: 3").
const placeholderPrefix = "Unnamed"

// Column is one logical column of a fused header.
type Column struct {
	Name      string // fused label
	Index     int    // position in the source grid
	Synthetic bool   // no real label in either header row
}

// Header is the fused header of a grid together with where its body starts.
type Header struct {
	Row       int // index of the anchor row
	BodyStart int // first data row (Row + 2)
	Columns   []Column
}

// Names returns the fused column names in order.
func (h Header) Names() []string {
	names := make([]string, len(h.Columns))
	for i, c := range h.Columns {
		names[i] = c.Name
	}
	return names
}

// isPlaceholder reports whether a header cell carries no real label.
func isPlaceholder(s string) bool {
	return s == "" || strings.HasPrefix(s, placeholderPrefix)
}

// FuseRows combines a header row and its sub-header into one column per
// position. The shorter row is padded with empty cells, so the result always
// has max(len(top), len(next)) columns.
func FuseRows(top, next []string) []Column {
	n := max(len(top), len(next))
	cols := make([]Column, n)
	for i := range n {
		var a, b string
		if i < len(top) {
			a = strings.TrimSpace(top[i])
		}
		if i < len(next) {
			b = strings.TrimSpace(next[i])
		}
		if isPlaceholder(a) {
			a = ""
		}
		if isPlaceholder(b) {
			b = ""
		}

		name := strings.TrimSpace(a + " " + b)
		cols[i] = Column{Name: name, Index: i}
		if name == "" {
			cols[i].Name = UnnamedColumn
			cols[i].Synthetic = true
		}
	}
	return cols
}

// Fuse builds the header whose anchor row is headerRow, reading the row
// below it as the sub-header. Unnamed columns with no data anywhere in the
// body are dropped; unnamed columns that carry data are kept.
func Fuse(g Grid, headerRow int) Header {
	h := Header{Row: headerRow, BodyStart: headerRow + 2}
	for _, c := range FuseRows(g.Row(headerRow), g.Row(headerRow+1)) {
		if c.Synthetic && g.ColumnEmpty(c.Index, h.BodyStart) {
			continue
		}
		h.Columns = append(h.Columns, c)
	}
	return h
}
