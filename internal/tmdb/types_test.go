package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchResult_Year(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		wantYear string
		wantInt  int
	}{
		{name: "full date", date: "1999-03-30", wantYear: "1999", wantInt: 1999},
		{name: "empty", date: "", wantYear: "Unknown", wantInt: 0},
		{name: "short", date: "19", wantYear: "19", wantInt: 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SearchResult{ReleaseDate: tt.date}
			assert.Equal(t, tt.wantYear, r.Year())
			assert.Equal(t, tt.wantInt, r.YearInt())
		})
	}
}

func TestSearchResult_Label(t *testing.T) {
	assert.Equal(t, "The Matrix (1999)", SearchResult{Title: "The Matrix", ReleaseDate: "1999-03-30"}.Label())
	assert.Equal(t, "Untitled (Unknown)", SearchResult{Title: "Untitled"}.Label())
}
