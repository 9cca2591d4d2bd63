package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/lepinkainen/flicklog/internal/movie"
)

// oscarWinsColumn is an optional extra column counted when present.
const oscarWinsColumn = "oscar_wins"

// RatingStats describes the parsed values of one rating column.
type RatingStats struct {
	Count int      `yaml:"count" json:"count"`
	Mean  *float64 `yaml:"mean,omitempty" json:"mean,omitempty"`
}

// Summary is the statistics report over a set of records.
type Summary struct {
	Total       int         `yaml:"total" json:"total"`
	MeanRuntime *float64    `yaml:"mean_runtime,omitempty" json:"mean_runtime,omitempty"`
	Genres      Frequency   `yaml:"genres" json:"genres"`
	Directors   Frequency   `yaml:"directors" json:"directors"`
	Cast        Frequency   `yaml:"cast" json:"cast"`
	Countries   Frequency   `yaml:"countries" json:"countries"`
	IMDb        RatingStats `yaml:"imdb_rating" json:"imdb_rating"`
	RT          RatingStats `yaml:"rt_rating" json:"rt_rating"`
	OscarWins   *int        `yaml:"oscar_winners,omitempty" json:"oscar_winners,omitempty"`
}

// Summarize aggregates records. Null runtimes and ratings are ignored.
func Summarize(records []movie.Record) Summary {
	s := Summary{Total: len(records)}

	var runtimes []float64
	genres := make([][]string, 0, len(records))
	directors := make([][]string, 0, len(records))
	cast := make([][]string, 0, len(records))
	countries := make([][]string, 0, len(records))
	oscarColumn := false
	winners := 0

	for _, rec := range records {
		if rec.Runtime != nil {
			runtimes = append(runtimes, float64(*rec.Runtime))
		}
		genres = append(genres, rec.Genres)
		directors = append(directors, rec.Directors)
		cast = append(cast, rec.Cast)
		countries = append(countries, rec.Countries)

		if v, ok := rec.Extra[oscarWinsColumn]; ok {
			oscarColumn = true
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && n > 0 {
				winners++
			}
		}
	}

	s.MeanRuntime = mean(runtimes)
	s.Genres = NewFrequency(genres)
	s.Directors = NewFrequency(directors)
	s.Cast = NewFrequency(cast)
	s.Countries = NewFrequency(countries)

	imdb := IMDbValues(records)
	s.IMDb = RatingStats{Count: len(imdb), Mean: mean(imdb)}
	rt := RTValues(records)
	s.RT = RatingStats{Count: len(rt), Mean: mean(rt)}

	if oscarColumn {
		s.OscarWins = &winners
	}
	return s
}

// IMDbValues parses the IMDb ratings that are present and numeric.
func IMDbValues(records []movie.Record) []float64 {
	var values []float64
	for _, rec := range records {
		if v, ok := parseRating(rec.IMDbRating); ok {
			values = append(values, v)
		}
	}
	return values
}

// RTValues parses Rotten Tomatoes percentages such as "83%".
func RTValues(records []movie.Record) []float64 {
	var values []float64
	for _, rec := range records {
		if v, ok := parseRating(strings.TrimSuffix(rec.RTRating, "%")); ok {
			values = append(values, v)
		}
	}
	return values
}

func parseRating(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}
