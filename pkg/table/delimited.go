package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DelimitedParser handles csv and tsv files. Lines starting with '#' are
// comments and blank rows are dropped.
type DelimitedParser struct {
	Comma rune
}

func (p *DelimitedParser) Parse(r io.Reader, filename string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.Comma
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	// Surveyors write seconds as 26" inside unquoted cells.
	reader.LazyQuotes = true

	t := &Table{File: filename}
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
		if blank(cells) || isComment(cells) {
			continue
		}
		line, _ := reader.FieldPos(0)

		if t.Headers == nil {
			cells[0] = strings.TrimPrefix(cells[0], "\ufeff")
			t.Headers = trimAll(cells)
			continue
		}
		t.Rows = append(t.Rows, Row{Num: line, Cells: cells})
	}
	return t, nil
}
