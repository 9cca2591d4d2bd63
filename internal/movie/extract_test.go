package movie

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/flicklog/internal/omdb"
	"github.com/lepinkainen/flicklog/internal/testutil"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func matrixDetails() map[string]any {
	return testutil.Movie{
		ID:          603,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-30",
		Runtime:     136,
		Genres:      []string{"Action", "Science Fiction"},
		Directors:   []string{"Lana Wachowski", "Lilly Wachowski"},
		Cast:        []string{"Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"},
		Countries:   []string{"United States of America"},
	}.Details()
}

func TestExtract_FullRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 45, 999, time.Local)
	ratings := &omdb.Response{
		ImdbRating: "8.7",
		Ratings:    []omdb.Rating{{Source: "Rotten Tomatoes", Value: "83%"}},
		Response:   "True",
	}

	rec := Extract(matrixDetails(), ratings, ExtractOptions{Now: fixedClock(now)})

	assert.Equal(t, 603, rec.ID)
	assert.Equal(t, "The Matrix", rec.Title)
	assert.Equal(t, "1999", rec.ReleaseYear)
	assert.Equal(t, "1999-03-30", rec.ReleaseDate)
	require.NotNil(t, rec.Runtime)
	assert.Equal(t, 136, *rec.Runtime)
	assert.Equal(t, []string{"Action", "Science Fiction"}, rec.Genres)
	assert.Equal(t, []string{"Lana Wachowski", "Lilly Wachowski"}, rec.Directors)
	assert.Equal(t, []string{"Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"}, rec.Cast)
	assert.Equal(t, []string{"United States of America"}, rec.Countries)
	assert.Equal(t, "8.7", rec.IMDbRating)
	assert.Equal(t, "83%", rec.RTRating)
	assert.Equal(t, now.Truncate(time.Second), rec.CollectedAt)
}

func TestExtract_MissingFields(t *testing.T) {
	rec := Extract(map[string]any{"id": float64(42)}, nil, ExtractOptions{})

	assert.Equal(t, 42, rec.ID)
	assert.Equal(t, Unknown, rec.Title)
	assert.Equal(t, Unknown, rec.ReleaseYear)
	assert.Empty(t, rec.ReleaseDate)
	assert.Nil(t, rec.Runtime)
	assert.Equal(t, []string{}, rec.Genres)
	assert.Equal(t, []string{}, rec.Directors)
	assert.Equal(t, []string{}, rec.Cast)
	assert.Equal(t, []string{}, rec.Countries)
	assert.Empty(t, rec.IMDbRating)
	assert.Empty(t, rec.RTRating)
	assert.True(t, rec.MissingRatings())
	assert.False(t, rec.CollectedAt.IsZero())
}

func TestExtract_EmptyReleaseDate(t *testing.T) {
	rec := Extract(map[string]any{"id": float64(1), "release_date": ""}, nil, ExtractOptions{})
	assert.Equal(t, Unknown, rec.ReleaseYear)
}

func TestExtract_CastLimit(t *testing.T) {
	cast := make([]string, 20)
	for i := range cast {
		cast[i] = fmt.Sprintf("Actor %d", i+1)
	}
	details := testutil.Movie{ID: 1, Title: "Ensemble", Cast: cast}.Details()

	rec := Extract(details, nil, ExtractOptions{})
	require.Len(t, rec.Cast, DefaultCastLimit)
	assert.Equal(t, "Actor 1", rec.Cast[0])
	assert.Equal(t, "Actor 10", rec.Cast[9])

	rec = Extract(details, nil, ExtractOptions{CastLimit: 15})
	assert.Len(t, rec.Cast, 15)
}

func TestExtract_DirectorsOnly(t *testing.T) {
	details := map[string]any{
		"id": float64(1),
		"credits": map[string]any{
			"crew": []any{
				map[string]any{"name": "A Writer", "job": "Screenplay"},
				map[string]any{"name": "First Director", "job": "Director"},
				map[string]any{"name": "A Producer", "job": "Producer"},
				map[string]any{"name": "Second Director", "job": "Director"},
			},
		},
	}

	rec := Extract(details, nil, ExtractOptions{})
	assert.Equal(t, []string{"First Director", "Second Director"}, rec.Directors)
}

func TestExtract_RatingsNotAvailable(t *testing.T) {
	ratings := &omdb.Response{
		ImdbRating: "N/A",
		Ratings: []omdb.Rating{
			{Source: "Metacritic", Value: "73/100"},
			{Source: "Rotten Tomatoes", Value: "88%"},
			{Source: "Rotten Tomatoes", Value: "10%"},
		},
	}

	rec := Extract(matrixDetails(), ratings, ExtractOptions{})
	assert.Empty(t, rec.IMDbRating)
	assert.Equal(t, "88%", rec.RTRating)
}

func TestExtract_Deterministic(t *testing.T) {
	details := matrixDetails()
	ratings := &omdb.Response{ImdbRating: "8.7"}

	first := Extract(details, ratings, ExtractOptions{Now: fixedClock(time.Unix(1000, 0))})
	second := Extract(details, ratings, ExtractOptions{Now: fixedClock(time.Unix(2000, 0))})

	assert.NotEqual(t, first.CollectedAt, second.CollectedAt)
	second.CollectedAt = first.CollectedAt
	assert.Equal(t, first, second)
}
