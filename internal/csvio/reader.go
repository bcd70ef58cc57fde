// Package csvio adapts the streaming CSV tokenizer to field-keyed records and
// serializes record sets back to spreadsheet-compatible CSV.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Record is one CSV row keyed by canonical column name. Columns absent from
// the file do not appear in the map.
type Record map[string]string

// utf8BOM is the byte-order mark some spreadsheet applications prepend to
// UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader yields field-keyed records from a raw CSV byte buffer. The header
// row is consumed on construction; header names are matched case-sensitively
// against the expected column set, unknown columns are ignored, and expected
// columns missing from the header simply never appear in the records.
type Reader struct {
	cr   *csv.Reader
	cols map[string]int
}

// NewReader parses the header row and prepares the column mapping. A buffer
// without a readable header row is a malformed file.
func NewReader(data []byte, columns []string) (*Reader, error) {
	cr := csv.NewReader(bytes.NewReader(stripBOM(data)))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	expected := make(map[string]bool, len(columns))
	for _, c := range columns {
		expected[c] = true
	}
	cols := make(map[string]int)
	for i, name := range header {
		if expected[name] {
			cols[name] = i
		}
	}
	return &Reader{cr: cr, cols: cols}, nil
}

// Next returns the next record. It returns io.EOF when the file is exhausted
// and a non-EOF error when the byte stream is structurally malformed; the
// sequence is not restartable after either.
func (r *Reader) Next() (Record, error) {
	row, err := r.cr.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV row: %w", err)
	}
	rec := make(Record, len(r.cols))
	for name, idx := range r.cols {
		if idx < len(row) {
			rec[name] = row[idx]
		}
	}
	return rec, nil
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}
