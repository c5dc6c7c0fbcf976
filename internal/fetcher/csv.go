package fetcher

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoHeader is returned when a delimited file has no header row.
var ErrNoHeader = eris.New("csv: no header row")

// CSVOptions configures the delimited text parser.
type CSVOptions struct {
	Delimiter  rune // default ';'
	LazyQuotes bool
}

// RowWidth notes a data row whose field count differed from the header.
type RowWidth struct {
	Row  int // 1-based data row number
	Got  int
	Want int
}

// Records is a parsed delimited file with a trimmed, de-duplicated header.
// Every record has exactly len(Header) fields.
type Records struct {
	Header []string
	Rows   [][]string
	Widths []RowWidth
}

// ReadDelimited parses already-decoded text. Header names are trimmed and
// repeated names receive ".1", ".2" suffixes. Short rows are padded with
// empty fields and long rows truncated; each is reported in Widths.
func ReadDelimited(text []byte, opts CSVOptions) (*Records, error) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = ';'
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	header = uniqueHeader(header)

	recs := &Records{Header: header}
	for n := 1; ; n++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", n)
		}
		if len(rec) != len(header) {
			recs.Widths = append(recs.Widths, RowWidth{Row: n, Got: len(rec), Want: len(header)})
			fixed := make([]string, len(header))
			copy(fixed, rec)
			rec = fixed
		}
		recs.Rows = append(recs.Rows, rec)
	}
	return recs, nil
}

func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	suffix := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		name := h
		for taken[name] {
			suffix[h]++
			name = h + "." + strconv.Itoa(suffix[h])
		}
		taken[name] = true
		out[i] = name
	}
	return out
}
