package tabular

import "strings"

// Locate returns the index of the first row in [0, scanLimit) with a cell
// containing anchor (case-sensitive). A non-positive scanLimit scans nothing.
func Locate(g Grid, anchor string, scanLimit int) (int, error) {
	n := min(scanLimit, len(g))
	for i := 0; i < n; i++ {
		for _, cell := range g[i] {
			if strings.Contains(cell, anchor) {
				return i, nil
			}
		}
	}
	return -1, &HeaderNotFoundError{Anchor: anchor, ScanLimit: scanLimit, RowsScanned: max(n, 0)}
}
