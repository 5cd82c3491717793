// Package table reads survey tables (bearing, distance and optional comment
// columns) from csv, tsv, xlsx and yaml files.
package table

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kass/go-bearings/pkg/models"
)

const (
	ColumnBearing  = "bearing"
	ColumnDistance = "distance"
	ColumnComment  = "comment"
)

// RequiredHeaders are the columns every survey table must have. Matching is
// case-sensitive.
var RequiredHeaders = []string{ColumnBearing, ColumnDistance}

// Row is one data row. Num is the row's position in the source (line,
// spreadsheet row or yaml line), 1-based.
type Row struct {
	Num   int
	Cells []string
}

// Table is the header row and data rows of one input sheet.
type Table struct {
	File    string
	Sheet   string
	Headers []string
	Rows    []Row
}

// Value returns the trimmed cell under header, or "" when the row has no
// such cell or the cell holds "nan".
func (t *Table) Value(row Row, header string) string {
	for i, h := range t.Headers {
		if h != header {
			continue
		}
		if i >= len(row.Cells) {
			return ""
		}
		v := strings.TrimSpace(row.Cells[i])
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}
	return ""
}

// Parser converts raw file bytes into a Table.
type Parser interface {
	Parse(r io.Reader, filename string) (*Table, error)
}

// Options adjust how a file is read.
type Options struct {
	// FileType overrides extension detection: csv, tsv, xlsx or yaml.
	FileType string
	// Sheet selects a worksheet in xlsx files. Empty means the first sheet.
	Sheet string
}

var extensionTypes = map[string]string{
	".csv":  "csv",
	".tsv":  "tsv",
	".txt":  "tsv",
	".xlsx": "xlsx",
	".yaml": "yaml",
	".yml":  "yaml",
}

// SupportedExtensions lists the file extensions ForFile recognises.
func SupportedExtensions() []string {
	return []string{".csv", ".tsv", ".txt", ".xlsx", ".yaml", ".yml"}
}

// ForFile returns the parser for a file, chosen by opts.FileType or else by
// extension.
func ForFile(filename string, opts Options) (Parser, error) {
	kind := strings.ToLower(opts.FileType)
	ext := strings.ToLower(filepath.Ext(filename))
	if kind == "" {
		kind = extensionTypes[ext]
	} else {
		ext = kind
	}

	switch kind {
	case "csv":
		return &DelimitedParser{Comma: ','}, nil
	case "tsv":
		return &DelimitedParser{Comma: '\t'}, nil
	case "xlsx", "excel":
		return &XLSXParser{Sheet: opts.Sheet}, nil
	case "yaml", "yml":
		return &YAMLParser{}, nil
	default:
		return nil, &FileFormatError{File: filename, Ext: ext}
	}
}

// ReadFile parses path into a Table. Files with an unknown extension are
// tried as xlsx workbooks before giving up.
func ReadFile(path string, opts Options) (*Table, error) {
	p, err := ForFile(path, opts)
	var formatErr *FileFormatError
	probe := errors.As(err, &formatErr) && opts.FileType == ""
	if err != nil && !probe {
		return nil, err
	}

	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("failed to open input: %w", openErr)
	}
	defer f.Close()

	if probe {
		t, xlsxErr := (&XLSXParser{Sheet: opts.Sheet}).Parse(f, path)
		if xlsxErr != nil {
			return nil, err
		}
		return t, nil
	}
	return p.Parse(f, path)
}

// Validate checks the header row: no duplicated names and every required
// column present.
func (t *Table) Validate(required []string) error {
	seen := make(map[string]bool, len(t.Headers))
	var dups []string
	for _, h := range t.Headers {
		if seen[h] {
			dups = append(dups, h)
		}
		seen[h] = true
	}
	if len(dups) > 0 {
		return &DuplicateHeadersError{File: t.File, Headers: t.Headers, Duplicates: dups}
	}

	var missing []string
	for _, r := range required {
		if !seen[r] {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return &InvalidHeadersError{File: t.File, Headers: t.Headers, Expected: required, Missing: missing}
	}
	return nil
}

// Records converts every row into a survey record. Bearings are kept as raw
// text; distances must be numbers.
func (t *Table) Records() ([]models.Record, error) {
	records := make([]models.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		cellErr := func(column, format string, args ...any) error {
			return &InfileError{
				Message: fmt.Sprintf(format, args...),
				File:    t.File,
				Sheet:   t.Sheet,
				Column:  column,
				Row:     row.Num,
			}
		}

		b := t.Value(row, ColumnBearing)
		if b == "" {
			return nil, cellErr(ColumnBearing, "Missing bearing.")
		}
		raw := t.Value(row, ColumnDistance)
		if raw == "" {
			return nil, cellErr(ColumnDistance, "Missing distance for bearing %q.", b)
		}
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, cellErr(ColumnDistance, "Invalid distance %q.", raw)
		}

		records = append(records, models.Record{
			Row:      row.Num,
			Bearing:  b,
			Distance: d,
			Comment:  t.Value(row, ColumnComment),
		})
	}
	return records, nil
}

// ReadRecords reads, validates and converts a survey table in one step.
func ReadRecords(path string, opts Options) ([]models.Record, error) {
	t, err := ReadFile(path, opts)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(RequiredHeaders); err != nil {
		return nil, err
	}
	return t.Records()
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isComment(cells []string) bool {
	return len(cells) > 0 && strings.HasPrefix(strings.TrimSpace(cells[0]), "#")
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
