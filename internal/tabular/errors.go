package tabular

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHeaderNotFound matches any *HeaderNotFoundError via errors.Is.
	ErrHeaderNotFound = errors.New("header not found")

	// ErrRequiredColumnMissing matches any *RequiredColumnMissingError via errors.Is.
	ErrRequiredColumnMissing = errors.New("required column missing")
)

// HeaderNotFoundError reports that no row in the scan window held the anchor.
type HeaderNotFoundError struct {
	Anchor      string
	ScanLimit   int
	RowsScanned int
}

func (e *HeaderNotFoundError) Error() string {
	if e.RowsScanned == 0 {
		return fmt.Sprintf("tabular: no row containing %q: no rows to scan (scan limit %d)", e.Anchor, e.ScanLimit)
	}
	return fmt.Sprintf("tabular: no row containing %q in rows 0..%d (scan limit %d)",
		e.Anchor, e.RowsScanned-1, e.ScanLimit)
}

// Is lets errors.Is(err, ErrHeaderNotFound) match.
func (e *HeaderNotFoundError) Is(target error) bool { return target == ErrHeaderNotFound }

// RequiredColumnMissingError reports a mandatory field with no matching column.
// Seen lists the fused column names that were available.
type RequiredColumnMissingError struct {
	Field   string
	Phrases []string
	Seen    []string
}

func (e *RequiredColumnMissingError) Error() string {
	return fmt.Sprintf("tabular: no column for required field %q (phrases %q); columns seen: %s",
		e.Field, e.Phrases, strings.Join(e.Seen, " | "))
}

// Is lets errors.Is(err, ErrRequiredColumnMissing) match.
func (e *RequiredColumnMissingError) Is(target error) bool { return target == ErrRequiredColumnMissing }
