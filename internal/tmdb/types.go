package tmdb

import (
	"strconv"
)

// SearchResult is a single movie candidate returned by the search endpoint.
type SearchResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	OriginalLang string  `json:"original_language"`
}

// Year returns the first four characters of the release date, or "Unknown".
func (r SearchResult) Year() string {
	if r.ReleaseDate == "" {
		return "Unknown"
	}
	if len(r.ReleaseDate) >= 4 {
		return r.ReleaseDate[:4]
	}
	return r.ReleaseDate
}

// YearInt returns the release year as an int, or 0 when unknown.
func (r SearchResult) YearInt() int {
	if year, err := strconv.Atoi(r.Year()); err == nil {
		return year
	}
	return 0
}

// Label formats the result as "Title (Year)".
func (r SearchResult) Label() string {
	return r.Title + " (" + r.Year() + ")"
}
