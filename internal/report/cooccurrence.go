package report

import (
	"sort"

	"github.com/lepinkainen/flicklog/internal/movie"
)

// Matrix is a symmetric genre by genre count matrix.
type Matrix struct {
	Labels []string
	Cells  [][]int
}

// CoOccurrence counts, for every pair of genres, the records containing
// both. The diagonal holds the number of records containing the genre.
// Labels are sorted; repeated genres within a record count once.
func CoOccurrence(records []movie.Record) Matrix {
	seen := map[string]bool{}
	var labels []string
	for _, rec := range records {
		for _, g := range rec.Genres {
			if !seen[g] {
				seen[g] = true
				labels = append(labels, g)
			}
		}
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, g := range labels {
		index[g] = i
	}
	cells := make([][]int, len(labels))
	for i := range cells {
		cells[i] = make([]int, len(labels))
	}

	for _, rec := range records {
		genres := unique(rec.Genres)
		for i, g1 := range genres {
			a := index[g1]
			cells[a][a]++
			for _, g2 := range genres[i+1:] {
				b := index[g2]
				cells[a][b]++
				cells[b][a]++
			}
		}
	}

	return Matrix{Labels: labels, Cells: cells}
}

// Get returns the cell for genres a and b, or 0 when either is unknown.
func (m Matrix) Get(a, b string) int {
	i, j := -1, -1
	for k, l := range m.Labels {
		if l == a {
			i = k
		}
		if l == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0
	}
	return m.Cells[i][j]
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
