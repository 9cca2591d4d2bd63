package export

import (
	"fmt"
	"log/slog"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/lepinkainen/flicklog/internal/dataset"
)

// MoviesSheet holds the wide table in the workbook.
const MoviesSheet = "movies"

// WriteWorkbook saves the wide table and every derived table to an XLSX
// file, one sheet each. Sheets of empty tables carry only the header.
func WriteWorkbook(path string, store *dataset.Store) error {
	if store.Len() == 0 {
		return dataset.ErrEmpty
	}

	f := xlsx.NewFile()

	wide := Table{Name: MoviesSheet, Columns: store.Columns()}
	for _, rec := range store.Records() {
		row := make([]any, len(wide.Columns))
		for i, col := range wide.Columns {
			row[i] = rec.Field(col)
		}
		wide.Rows = append(wide.Rows, row)
	}

	for _, t := range append([]Table{wide}, Build(store.Tables())...) {
		if err := addSheet(f, t); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	slog.Info("Workbook saved", "path", path, "movies", store.Len())
	return nil
}

func addSheet(f *xlsx.File, t Table) error {
	sheet, err := f.AddSheet(t.Name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %s", t.Name)
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetString(col)
	}
	for _, values := range t.Rows {
		row := sheet.AddRow()
		for _, v := range values {
			setCell(row.AddCell(), v)
		}
	}
	return nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch val := v.(type) {
	case nil:
		cell.SetString("")
	case int:
		cell.SetInt(val)
	case string:
		cell.SetString(val)
	default:
		cell.SetString(fmt.Sprint(val))
	}
}
