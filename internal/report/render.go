package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Encode.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

const barWidth = 40

// WriteSummary prints the statistics block followed by bar charts of the top
// entries of each list column.
func WriteSummary(w io.Writer, s Summary, top int) {
	fmt.Fprintln(w, "Dataset Statistics:")
	fmt.Fprintf(w, "   Total movies: %d\n", s.Total)
	if s.MeanRuntime != nil {
		fmt.Fprintf(w, "   Average runtime: %.2f minutes\n", *s.MeanRuntime)
	}
	writeTop(w, "genre", "genres", "Most common", s.Genres)
	writeTop(w, "director", "directors", "Most frequent", s.Directors)
	writeTop(w, "actor", "actors", "Most frequent", s.Cast)
	writeTop(w, "country", "countries", "Most common", s.Countries)
	if s.IMDb.Mean != nil {
		fmt.Fprintf(w, "   Average IMDb rating: %.2f (%d rated)\n", *s.IMDb.Mean, s.IMDb.Count)
	}
	if s.RT.Mean != nil {
		fmt.Fprintf(w, "   Average Rotten Tomatoes: %.1f%% (%d rated)\n", *s.RT.Mean, s.RT.Count)
	}
	if s.OscarWins != nil {
		fmt.Fprintf(w, "   Oscar-winning movies: %d / %d\n", *s.OscarWins, s.Total)
	}

	if top <= 0 {
		return
	}
	WriteBars(w, "Most watched genres", s.Genres.Head(top).Counts)
	WriteBars(w, "Most watched directors", s.Directors.Head(top).Counts)
	WriteBars(w, "Most watched actors", s.Cast.Head(top).Counts)
}

func writeTop(w io.Writer, singular, plural, adjective string, f Frequency) {
	if f.Unique == 0 {
		return
	}
	fmt.Fprintf(w, "   %s %s: %s (%d movies)\n", adjective, singular, f.Top, f.TopCount)
	fmt.Fprintf(w, "   Total unique %s: %d\n", plural, f.Unique)
}

// WriteBars prints a horizontal bar chart, highest count first.
func WriteBars(w io.Writer, title string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)

	maxCount, nameWidth := 0, 0
	for _, c := range counts {
		maxCount = max(maxCount, c.Count)
		nameWidth = max(nameWidth, utf8.RuneCountInString(c.Name))
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %s  %s %d\n", pad(c.Name, nameWidth), bar(c.Count, maxCount), c.Count)
	}
}

// WriteHistogram prints one line per bin.
func WriteHistogram(w io.Writer, title string, bins []Bin) {
	if len(bins) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)

	maxCount := 0
	for _, b := range bins {
		maxCount = max(maxCount, b.Count)
	}
	for _, b := range bins {
		fmt.Fprintf(w, "  %6.1f-%-6.1f %s %d\n", b.Lower, b.Upper, bar(b.Count, maxCount), b.Count)
	}
}

// WriteMatrix prints the matrix as an aligned grid.
func WriteMatrix(w io.Writer, m Matrix) {
	if len(m.Labels) == 0 {
		fmt.Fprintln(w, "No genres to compare")
		return
	}

	labelWidth := 0
	cellWidth := 3
	for i, l := range m.Labels {
		labelWidth = max(labelWidth, utf8.RuneCountInString(l))
		for _, c := range m.Cells[i] {
			cellWidth = max(cellWidth, len(strconv.Itoa(c))+1)
		}
	}

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelWidth))
	for i := range m.Labels {
		fmt.Fprintf(&header, "%*s", cellWidth, columnLabel(i))
	}
	fmt.Fprintln(w, header.String())

	for i, l := range m.Labels {
		var row strings.Builder
		row.WriteString(pad(l, labelWidth))
		for _, c := range m.Cells[i] {
			fmt.Fprintf(&row, "%*d", cellWidth, c)
		}
		fmt.Fprintln(w, row.String())
	}

	fmt.Fprintln(w)
	for i, l := range m.Labels {
		fmt.Fprintf(w, "  %s = %s\n", columnLabel(i), l)
	}
}

// WriteMatrixCSV writes the matrix with a leading genre column.
func WriteMatrixCSV(w io.Writer, m Matrix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"genre"}, m.Labels...)); err != nil {
		return eris.Wrap(err, "write matrix header")
	}
	for i, l := range m.Labels {
		row := make([]string, 0, len(m.Labels)+1)
		row = append(row, l)
		for _, c := range m.Cells[i] {
			row = append(row, strconv.Itoa(c))
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "write matrix row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode writes v as YAML or JSON.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode json")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return eris.Errorf("unsupported format %q", format)
	}
}

func bar(count, maxCount int) string {
	if maxCount == 0 {
		return ""
	}
	n := count * barWidth / maxCount
	if count > 0 && n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// columnLabel names grid columns G1, G2, ...
func columnLabel(i int) string {
	return "G" + strconv.Itoa(i+1)
}
