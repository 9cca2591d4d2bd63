// Package csvutil reads and writes the CSV tables of the dataset.
package csvutil

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"

	jcsv "github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// FieldsPerRecord sets the expected number of fields per record.
	// If 0, it's set to the number of fields in the first record.
	FieldsPerRecord int

	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
}

// Row is one CSV record addressed by header name.
type Row struct {
	header []string
	index  map[string]int
	Line   int
	Record []string
}

// Get returns the cell under column and whether the column exists.
func (r Row) Get(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok || i >= len(r.Record) {
		return "", false
	}
	return r.Record[i], true
}

// Columns returns the header of the file the row came from.
func (r Row) Columns() []string {
	return r.header
}

// ProcessCSV reads a CSV file with a header line and parses each record into
// type T. It returns the parsed items and the header.
func ProcessCSV[T any](filename string, parser func(Row) (T, error), opts ProcessorOptions) ([]T, []string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, eris.Wrap(err, "failed to open CSV file")
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, eris.Errorf("CSV file %s is empty", filename)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	if opts.FieldsPerRecord > 0 {
		reader.FieldsPerRecord = opts.FieldsPerRecord
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil, eris.Wrap(err, "failed to read header")
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	var items []T
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Error reading record", "line", line, "error", err)
				continue
			}
			return nil, nil, eris.Wrapf(err, "read record on line %d", line)
		}

		item, err := parser(Row{header: header, index: index, Line: line, Record: record})
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "line", line, "error", err)
				continue
			}
			return nil, nil, eris.Wrapf(err, "invalid record on line %d", line)
		}

		items = append(items, item)
	}

	return items, header, nil
}

// WriteTable writes header and rows to filename, replacing it.
func WriteTable(filename string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "write header")
	}
	if err := w.WriteAll(rows); err != nil {
		return eris.Wrap(err, "write rows")
	}
	return writeFile(filename, buf.Bytes())
}

// WriteStructs encodes rows with their csv struct tags as header and writes
// them to filename.
func WriteStructs[T any](filename string, rows []T) error {
	data, err := jcsv.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "encode %s", filename)
	}
	return writeFile(filename, data)
}

// DecodeStructs decodes every record of r into T by header name. The header
// is returned so callers can check for required columns.
func DecodeStructs[T any](r io.Reader) ([]T, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, eris.Wrap(err, "read CSV")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	dec, err := jcsv.NewDecoder(csv.NewReader(bytes.NewReader(data)))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, eris.New("CSV file is empty")
		}
		return nil, nil, eris.Wrap(err, "read CSV header")
	}

	var items []T
	for {
		var item T
		if err := dec.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, eris.Wrap(err, "decode CSV record")
		}
		items = append(items, item)
	}
	return items, dec.Header(), nil
}

func writeFile(filename string, data []byte) error {
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", filename)
	}
	return nil
}
