package table

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser handles Excel workbooks. Rows whose first cell starts with '#'
// are comments.
type XLSXParser struct {
	Sheet string
}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &InfileError{Message: "Workbook has no sheets.", File: filename}
	}
	sheet := p.Sheet
	switch {
	case sheet == "":
		sheet = sheets[0]
	case !slices.Contains(sheets, sheet) && len(sheets) == 1:
		// A lone sheet is taken whatever it is called.
		sheet = sheets[0]
	case !slices.Contains(sheets, sheet):
		return nil, &InfileError{
			Message: fmt.Sprintf("Excel sheet [%s] not found. Available sheets: [%s].", p.Sheet, strings.Join(sheets, ", ")),
			File:    filename,
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheet, filename, err)
	}

	t := &Table{File: filename, Sheet: sheet}
	for i, cells := range rows {
		if blank(cells) || isComment(cells) {
			continue
		}
		if t.Headers == nil {
			t.Headers = trimAll(cells)
			continue
		}
		t.Rows = append(t.Rows, Row{Num: i + 1, Cells: cells})
	}
	return t, nil
}
