package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/lepinkainen/flicklog/internal/csvutil"
)

// Required columns of an import file.
const (
	ColumnName = "Name"
	ColumnYear = "Year"
)

// Row is one title to import.
type Row struct {
	Name string `csv:"Name"`
	Year string `csv:"Year"`
}

// YearHint returns the year as an int, or 0 when it is not a number.
func (r Row) YearHint() int {
	y := strings.TrimSuffix(strings.TrimSpace(r.Year), ".0")
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return n
}

// MissingColumnsError reports required columns absent from an import file.
type MissingColumnsError struct {
	Path    string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s must contain %s columns (missing %s)",
		filepath.Base(e.Path), strings.Join([]string{ColumnName, ColumnYear}, " and "), strings.Join(e.Missing, ", "))
}

// ReadRows reads import rows from a CSV file or, for .xlsx files, from the
// first sheet of the workbook.
func ReadRows(path string) ([]Row, error) {
	var (
		rows   []Row
		header []string
		err    error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, header, err = readXLSX(path)
	} else {
		rows, header, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &MissingColumnsError{Path: path, Missing: missing}
	}
	return rows, nil
}

func readCSV(path string) ([]Row, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open import file")
	}
	defer func() { _ = f.Close() }()

	rows, header, err := csvutil.DecodeStructs[Row](f)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "read %s", path)
	}
	return rows, header, nil
}

func readXLSX(path string) ([]Row, []string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.Errorf("xlsx: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil, eris.Errorf("xlsx: %s is empty", path)
	}

	header := rowToStrings(sheet.Rows[0])
	nameIdx, yearIdx := indexOf(header, ColumnName), indexOf(header, ColumnYear)

	var rows []Row
	for _, r := range sheet.Rows[1:] {
		cells := rowToStrings(r)
		row := Row{Name: cellAt(cells, nameIdx), Year: cellAt(cells, yearIdx)}
		if row.Name == "" && row.Year == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = strings.TrimSpace(cell.String())
	}
	return cells
}

func missingColumns(header []string) []string {
	var missing []string
	for _, col := range []string{ColumnName, ColumnYear} {
		if indexOf(header, col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if strings.TrimSpace(v) == want {
			return i
		}
	}
	return -1
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}
