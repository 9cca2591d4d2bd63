// Package report computes read-only statistics over movie records.
package report

import (
	"sort"
)

// Count is one entry of a frequency table.
type Count struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

// Frequencies flattens lists and counts each value. The result is sorted by
// count, highest first; ties keep first-appearance order.
func Frequencies(lists [][]string) []Count {
	counts := []Count{}
	index := map[string]int{}
	for _, list := range lists {
		for _, v := range list {
			if i, ok := index[v]; ok {
				counts[i].Count++
				continue
			}
			index[v] = len(counts)
			counts = append(counts, Count{Name: v, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// Frequency summarizes one flattened list column.
type Frequency struct {
	Top      string  `yaml:"top,omitempty" json:"top,omitempty"`
	TopCount int     `yaml:"top_count" json:"top_count"`
	Unique   int     `yaml:"unique" json:"unique"`
	Counts   []Count `yaml:"counts" json:"counts"`
}

// NewFrequency builds a Frequency from lists.
func NewFrequency(lists [][]string) Frequency {
	counts := Frequencies(lists)
	f := Frequency{Unique: len(counts), Counts: counts}
	if len(counts) > 0 {
		f.Top = counts[0].Name
		f.TopCount = counts[0].Count
	}
	return f
}

// Head returns a copy of f with at most n counts. n <= 0 keeps all.
func (f Frequency) Head(n int) Frequency {
	if n > 0 && len(f.Counts) > n {
		f.Counts = f.Counts[:n]
	}
	return f
}
