package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/affordability-cli/internal/tabular"
)

// CSVOptions configures the CSV grid reader.
type CSVOptions struct {
	Delimiter rune   // default ','
	Comment   rune   // comment character (0 = none)
	Encoding  string // "utf-8" (default), "windows-1252", or "latin1"
}

// decoderFor returns the decoder for a named source encoding. UTF-8 input
// has a leading byte order mark stripped.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, eris.Errorf("csv: unsupported encoding %q", name)
	}
}

// ReadCSV reads the whole CSV into a grid. Rows keep their own lengths and
// quotes are parsed leniently. Blank lines between records are kept as empty
// rows so row indexes match the file's line layout; with a comment character
// set, blank and comment lines are both dropped.
func ReadCSV(r io.Reader, opts CSVOptions) (tabular.Grid, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, dec))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	var (
		grid tabular.Grid
		next = 1 // first line after the previous record
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", len(grid)+1)
		}

		start, _ := reader.FieldPos(0)
		if opts.Comment == 0 {
			for ; next < start; next++ {
				grid = append(grid, []string{})
			}
		}
		end, _ := reader.FieldPos(len(record) - 1)
		next = end + strings.Count(record[len(record)-1], "\n") + 1

		grid = append(grid, record)
	}
	return grid, nil
}
