package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Row is one data line keyed by trimmed header cell.
type Row map[string]string

// Get returns the trimmed value of a column, or "" when absent.
func (r Row) Get(column string) string {
	return r[column]
}

// Parse reads a CSV document whose first non-blank record is the header.
//
// Quoted cells may contain commas and newlines. Rows shorter than the
// header map their missing trailing cells to "". Cells past the header
// width and columns with a blank header are ignored. Rows whose cells are
// all blank are skipped. A leading UTF-8 byte order mark is removed.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(transform.NewReader(r, xunicode.BOMOverride(transform.Nop)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if blankRecord(record) {
			continue
		}

		if header == nil {
			header = make([]string, len(record))
			for i, cell := range record {
				header[i] = strings.TrimSpace(cell)
			}
			continue
		}

		row := make(Row, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[column] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
