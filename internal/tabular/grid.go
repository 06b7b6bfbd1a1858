// Package tabular locates, fuses, and resolves the header of loosely
// structured report tables read as ragged grids of text cells.
package tabular

import "strings"

// Grid is a ragged table of text cells. Rows may have different lengths;
// a missing trailing cell reads the same as an empty one.
type Grid [][]string

// Cell returns the cell at (row, col), or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Row returns row i, or nil when out of range.
func (g Grid) Row(i int) []string {
	if i < 0 || i >= len(g) {
		return nil
	}
	return g[i]
}

// Width returns the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// ColumnEmpty reports whether every cell of column col in rows [from, len(g))
// is blank.
func (g Grid) ColumnEmpty(col, from int) bool {
	for i := max(from, 0); i < len(g); i++ {
		if strings.TrimSpace(g.Cell(i, col)) != "" {
			return false
		}
	}
	return true
}
