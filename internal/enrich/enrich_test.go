package enrich

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/flicklog/internal/dataset"
	flerrors "github.com/lepinkainen/flicklog/internal/errors"
	"github.com/lepinkainen/flicklog/internal/movie"
	"github.com/lepinkainen/flicklog/internal/omdb"
)

type fakeSource struct {
	ratings map[string]omdb.Ratings
	errs    map[string]error
	calls   []string
}

func (f *fakeSource) Ratings(_ context.Context, title, year string) (omdb.Ratings, bool, error) {
	f.calls = append(f.calls, title+"|"+year)
	if err, ok := f.errs[title]; ok {
		return omdb.Ratings{}, false, err
	}
	r, ok := f.ratings[title]
	return r, ok, nil
}

func newStore(records ...movie.Record) *dataset.Store {
	s := dataset.New()
	for _, r := range records {
		s.Add(r)
	}
	return s
}

func TestRun_UpdatesAndClears(t *testing.T) {
	store := newStore(
		movie.Record{ID: 1, Title: "Complete", ReleaseYear: "2000", IMDbRating: "7.0", RTRating: "70%"},
		movie.Record{ID: 2, Title: "Found", ReleaseYear: "2001"},
		movie.Record{ID: 3, Title: "Gone", ReleaseYear: "2002", IMDbRating: "5.0"},
		movie.Record{ID: 4, Title: "Broken", ReleaseYear: "Unknown"},
	)
	source := &fakeSource{
		ratings: map[string]omdb.Ratings{"Found": {IMDb: "8.1", RottenTomatoes: "95%"}},
		errs:    map[string]error{"Broken": assert.AnError},
	}

	res, err := NewPass(store, source).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Candidates: 3, Updated: 1, Cleared: 2}, res)
	assert.Equal(t, []string{"Found|2001", "Gone|2002", "Broken|Unknown"}, source.calls)

	found, _ := store.Get(2)
	assert.Equal(t, "8.1", found.IMDbRating)
	assert.Equal(t, "95%", found.RTRating)

	gone, _ := store.Get(3)
	assert.Empty(t, gone.IMDbRating, "failure clears both ratings")
	assert.Empty(t, gone.RTRating)

	complete, _ := store.Get(1)
	assert.Equal(t, "7.0", complete.IMDbRating)
}

func TestRun_Idempotent(t *testing.T) {
	store := newStore(
		movie.Record{ID: 1, Title: "Partial", ReleaseYear: "2000"},
		movie.Record{ID: 2, Title: "Missing", ReleaseYear: "2001"},
	)
	source := &fakeSource{ratings: map[string]omdb.Ratings{"Partial": {IMDb: "6.6"}}}

	_, err := NewPass(store, source).Run(context.Background())
	require.NoError(t, err)
	afterFirst := store.Records()

	_, err = NewPass(store, source).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, afterFirst, store.Records())
}

func TestRun_NothingMissing(t *testing.T) {
	store := newStore(movie.Record{ID: 1, Title: "Done", IMDbRating: "7", RTRating: "70%"})
	source := &fakeSource{}

	res, err := NewPass(store, source).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, source.calls)
}

func TestRun_StopsOnRateLimit(t *testing.T) {
	store := newStore(
		movie.Record{ID: 1, Title: "Limited", ReleaseYear: "2000", IMDbRating: "5.5"},
		movie.Record{ID: 2, Title: "Later", ReleaseYear: "2001", IMDbRating: "6.5"},
	)
	source := &fakeSource{errs: map[string]error{"Limited": flerrors.NewRateLimitError("omdb", "request limit reached")}}

	res, err := NewPass(store, source).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Len(t, source.calls, 1)

	later, _ := store.Get(2)
	assert.Equal(t, "6.5", later.IMDbRating, "records after the limit are untouched")
	assert.Len(t, store.MissingRatings(), 2, "untouched records are retried on the next run")
}

func TestSourceFunc(t *testing.T) {
	store := newStore(movie.Record{ID: 1, Title: "Heat", ReleaseYear: "1995", IMDbRating: "8.3"})
	var asked []string
	source := SourceFunc(func(_ context.Context, title, year string) (omdb.Ratings, bool, error) {
		asked = append(asked, title+"|"+year)
		return omdb.Ratings{IMDb: "8.3", RottenTomatoes: "83%"}, true, nil
	})

	res, err := NewPass(store, source).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Candidates: 1, Updated: 1}, res)
	assert.Equal(t, []string{"Heat|1995"}, asked)

	heat, _ := store.Get(1)
	assert.Equal(t, "83%", heat.RTRating)
}

func TestRun_NoAPIKey(t *testing.T) {
	store := newStore(movie.Record{ID: 1, Title: "Keyless", IMDbRating: "5.5"})
	source := &fakeSource{errs: map[string]error{"Keyless": omdb.ErrNoAPIKey}}

	_, err := NewPass(store, source).Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "API key"))

	rec, _ := store.Get(1)
	assert.Equal(t, "5.5", rec.IMDbRating)
}

func TestRun_ContextCanceled(t *testing.T) {
	store := newStore(movie.Record{ID: 1, Title: "Any"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPass(store, &fakeSource{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
