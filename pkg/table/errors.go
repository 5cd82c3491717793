package table

import (
	"fmt"
	"strings"
)

// FileFormatError reports an input file whose type cannot be read.
type FileFormatError struct {
	File string
	Ext  string
}

func (e *FileFormatError) Error() string {
	return fmt.Sprintf("invalid file type %q for file [%s], expected one of %s",
		e.Ext, e.File, strings.Join(SupportedExtensions(), ", "))
}

// InvalidHeadersError reports required columns missing from the header row.
type InvalidHeadersError struct {
	File     string
	Headers  []string
	Expected []string
	Missing  []string
}

func (e *InvalidHeadersError) Error() string {
	return fmt.Sprintf("file [%s] is missing headers %s (found headers %s, required %s)",
		e.File, bracket(e.Missing), bracket(e.Headers), bracket(e.Expected))
}

// DuplicateHeadersError reports a header row that names a column twice.
type DuplicateHeadersError struct {
	File       string
	Headers    []string
	Duplicates []string
}

func (e *DuplicateHeadersError) Error() string {
	return fmt.Sprintf("column headers are not unique in [%s]: %d columns, duplicated %s",
		e.File, len(e.Headers), bracket(e.Duplicates))
}

// InfileError reports a problem with one cell, row or sheet of an input file.
type InfileError struct {
	Message string
	File    string
	Sheet   string
	Column  string
	Row     int
}

func (e *InfileError) Error() string {
	return fmt.Sprintf("%s  Location: %s.", e.Message, Location(e.Column, e.Row, e.Sheet, e.File))
}

// Location describes a place in an input file, e.g.
// "column [distance] on row [4] in file [plat.tsv]". Empty parts and a zero
// row are left out.
func Location(column string, row int, sheet, file string) string {
	var b strings.Builder
	if column != "" {
		fmt.Fprintf(&b, "column [%s] ", column)
	}
	if row > 0 {
		if b.Len() > 0 {
			b.WriteString("on ")
		}
		fmt.Fprintf(&b, "row [%d] ", row)
	}
	if sheet != "" {
		if b.Len() > 0 {
			b.WriteString("of ")
		}
		fmt.Fprintf(&b, "sheet [%s] ", sheet)
	}
	if b.Len() > 0 {
		b.WriteString("in ")
	}
	if file != "" {
		fmt.Fprintf(&b, "file [%s]", file)
	} else {
		b.WriteString("the load file data")
	}
	return b.String()
}

func bracket(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
