package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kass/go-bearings/pkg/models"
)

const platTSV = "# Comment lines begin with \"#\".  Header line required:\n" +
	"bearing\tdistance\tcomment\n" +
	"north 77° 15' 00\" east\t103.75\tcase insensitive cardinal directions allowed\n" +
	"S 46° 59' 26\" E\t95\tExtra columns are ignored\n" +
	"\n" +
	"S 33 10 3 E\t50\n" +
	"# a comment in the middle\n" +
	"N 22.1d E\t60\tMinutes and seconds are optional\n" +
	"S\t5.7\tDue south needs no degrees\n" +
	"340 55 03\t5.7\tNorth is assumed\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRecordsTSV(t *testing.T) {
	path := writeFile(t, "plat.tsv", platTSV)

	records, err := ReadRecords(path, Options{})
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, models.Record{
		Row:      3,
		Bearing:  "north 77° 15' 00\" east",
		Distance: 103.75,
		Comment:  "case insensitive cardinal directions allowed",
	}, records[0])
	assert.Equal(t, `S 46° 59' 26" E`, records[1].Bearing)
	assert.Equal(t, 6, records[2].Row)
	assert.Empty(t, records[2].Comment)
	assert.Equal(t, "N 22.1d E", records[3].Bearing)
	assert.Equal(t, "340 55 03", records[5].Bearing)
	assert.InDelta(t, 5.7, records[5].Distance, 1e-9)
}

func TestReadRecordsCSV(t *testing.T) {
	path := writeFile(t, "plat.csv", "\ufeffbearing, distance ,landmark\nS 5 E, 10 ,oak\n,,\nN 10 W,20,\n")

	records, err := ReadRecords(path, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "S 5 E", records[0].Bearing)
	assert.InDelta(t, 10.0, records[0].Distance, 1e-9)
	assert.Equal(t, 4, records[1].Row)
}

func TestReadRecordsFileTypeOverride(t *testing.T) {
	path := writeFile(t, "plat.dat", "bearing,distance\nN,1\n")

	records, err := ReadRecords(path, Options{FileType: "csv"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadRecordsMissingHeaders(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		missing []string
	}{
		{"no distance", "bearing\tlength\nN\t1\n", []string{"distance"}},
		{"header case matters", "Bearing\tDistance\nN\t1\n", []string{"bearing", "distance"}},
		{"empty file", "", []string{"bearing", "distance"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "plat.tsv", tc.content)

			_, err := ReadRecords(path, Options{})
			var headersErr *InvalidHeadersError
			require.True(t, errors.As(err, &headersErr), "got %v", err)
			assert.Equal(t, tc.missing, headersErr.Missing)
			assert.Equal(t, path, headersErr.File)
			assert.Contains(t, err.Error(), "is missing headers")
		})
	}
}

func TestReadRecordsDuplicateHeaders(t *testing.T) {
	path := writeFile(t, "plat.csv", "bearing,distance,bearing\nN,1,S\n")

	_, err := ReadRecords(path, Options{})
	var dupErr *DuplicateHeadersError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, []string{"bearing"}, dupErr.Duplicates)
}

func TestReadRecordsBadCells(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		contains string
	}{
		{"unparseable distance", "bearing,distance\nN,1\nS,ten\n", "Invalid distance \"ten\".  Location: column [distance] on row [3] in file ["},
		{"missing distance", "bearing,distance\nN,nan\n", "Missing distance"},
		{"missing bearing", "bearing,distance,comment\n,4,gate\n", "Location: column [bearing] on row [2]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "plat.csv", tc.content)

			_, err := ReadRecords(path, Options{})
			var cellErr *InfileError
			require.True(t, errors.As(err, &cellErr), "got %v", err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestReadFileUnsupportedType(t *testing.T) {
	path := writeFile(t, "plat.json", `{"bearing": "N"}`)

	_, err := ReadFile(path, Options{})
	var formatErr *FileFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, ".json", formatErr.Ext)

	_, err = ReadFile(path, Options{FileType: "parquet"})
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "parquet", formatErr.Ext)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.ErrorContains(t, err, "failed to open input")
}

func writeWorkbook(t *testing.T, name string, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for sheet, rows := range sheets {
		if sheet != "Sheet1" {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadRecordsXLSX(t *testing.T) {
	path := writeWorkbook(t, "plat.xlsx", map[string][][]any{
		"Sheet1": {
			{"# traverse of lot 7"},
			{"bearing", "distance", "comment"},
			{"S 46 59 26 E", 95, "fence"},
			{"N 22.1d E", 60.5},
		},
		"Other": {
			{"bearing", "distance"},
			{"W", 3},
		},
	})

	records, err := ReadRecords(path, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.Record{Row: 3, Bearing: "S 46 59 26 E", Distance: 95, Comment: "fence"}, records[0])
	assert.InDelta(t, 60.5, records[1].Distance, 1e-9)

	records, err = ReadRecords(path, Options{Sheet: "Other"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "W", records[0].Bearing)

	_, err = ReadRecords(path, Options{Sheet: "Missing"})
	assert.ErrorContains(t, err, "Excel sheet [Missing] not found")
}

func TestReadFileProbesUnknownExtensionAsWorkbook(t *testing.T) {
	src := writeWorkbook(t, "plat.xlsx", map[string][][]any{
		"Sheet1": {{"bearing", "distance"}, {"N", 1}},
	})
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	path := writeFile(t, "plat.survey", string(data))

	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bearing", "distance"}, tbl.Headers)
	assert.Len(t, tbl.Rows, 1)
}

func TestReadRecordsYAML(t *testing.T) {
	path := writeFile(t, "plat.yaml", `
- bearing: S 46 59 26 E
  distance: 95
  comment: fence post
- distance: 60
  bearing: N 22.1d E
`)

	records, err := ReadRecords(path, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.Record{Row: 2, Bearing: "S 46 59 26 E", Distance: 95, Comment: "fence post"}, records[0])
	assert.Equal(t, "N 22.1d E", records[1].Bearing)
	assert.Equal(t, 5, records[1].Row)
}

func TestReadRecordsYAMLErrors(t *testing.T) {
	path := writeFile(t, "plat.yml", "bearing: N\ndistance: 1\n")
	_, err := ReadRecords(path, Options{})
	assert.ErrorContains(t, err, "Expected a list of records")

	path = writeFile(t, "plat.yml", "- bearing: N\n")
	_, err = ReadRecords(path, Options{})
	var headersErr *InvalidHeadersError
	require.True(t, errors.As(err, &headersErr))
	assert.Equal(t, []string{"distance"}, headersErr.Missing)
}

func TestLocation(t *testing.T) {
	testCases := []struct {
		column   string
		row      int
		sheet    string
		file     string
		expected string
	}{
		{"distance", 4, "", "plat.tsv", "column [distance] on row [4] in file [plat.tsv]"},
		{"", 4, "", "plat.tsv", "row [4] in file [plat.tsv]"},
		{"bearing", 2, "Sheet1", "plat.xlsx", "column [bearing] on row [2] of sheet [Sheet1] in file [plat.xlsx]"},
		{"", 0, "", "plat.csv", "file [plat.csv]"},
		{"", 0, "", "", "the load file data"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, Location(tc.column, tc.row, tc.sheet, tc.file))
		})
	}
}
