package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/flicklog/internal/config"
	"github.com/lepinkainen/flicklog/internal/testutil"
)

var testMovies = []testutil.Movie{
	{
		ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", Runtime: 136,
		Genres: []string{"Action", "Science Fiction"}, Directors: []string{"Lana Wachowski", "Lilly Wachowski"},
		Cast: []string{"Keanu Reeves", "Laurence Fishburne"}, Countries: []string{"United States of America"},
	},
	{
		ID: 604, Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15", Runtime: 138,
		Genres: []string{"Action", "Science Fiction"}, Directors: []string{"Lana Wachowski", "Lilly Wachowski"},
		Cast: []string{"Keanu Reeves"}, Countries: []string{"United States of America"},
	},
	{
		ID: 78, Title: "Blade Runner", ReleaseDate: "1982-06-25", Runtime: 117,
		Genres: []string{"Science Fiction", "Drama"}, Directors: []string{"Ridley Scott"},
		Cast: []string{"Harrison Ford"}, Countries: []string{"United States of America"},
	},
}

var testRatings = map[string]testutil.OMDbRatings{
	"The Matrix":   {IMDb: "8.7", RottenTomatoes: "83%"},
	"Blade Runner": {IMDb: "8.1", RottenTomatoes: "89%"},
}

type testApp struct {
	*App
	env      *testutil.TestEnv
	output   *bytes.Buffer
	fakeTMDB *testutil.FakeTMDB
	fakeOMDb *testutil.FakeOMDb
}

type testOption func(*config.Config)

func withoutOMDbKey() testOption {
	return func(c *config.Config) { c.OMDBAPIKey = "" }
}

func withCache() testOption {
	return func(c *config.Config) { c.CacheEnabled = true }
}

// newTestApp builds an App against fake APIs in a sandbox. input feeds the
// interactive prompts.
func newTestApp(t *testing.T, input string, opts ...testOption) *testApp {
	t.Helper()

	env := testutil.NewTestEnv(t)
	fakeTMDB := testutil.NewFakeTMDB(t, testMovies...)
	fakeOMDb := testutil.NewFakeOMDb(t, testRatings)

	cfg := &config.Config{
		TMDBAPIKey:   "tmdb-key",
		TMDBBaseURL:  fakeTMDB.URL(),
		OMDBAPIKey:   "omdb-key",
		OMDBBaseURL:  fakeOMDb.URL(),
		OMDBTimeout:  time.Second,
		DatasetPath:  env.Path("movie_dataset.csv"),
		CastLimit:    config.DefaultCastLimit,
		CacheEnabled: false,
		CacheDBFile:  env.Path("cache.db"),
		CacheTTL:     time.Hour,
		SQLitePath:   env.Path("flicklog.db"),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return newTestAppWithConfig(t, env, cfg, input, fakeTMDB, fakeOMDb)
}

func newTestAppWithConfig(t *testing.T, env *testutil.TestEnv, cfg *config.Config, input string, fakeTMDB *testutil.FakeTMDB, fakeOMDb *testutil.FakeOMDb) *testApp {
	t.Helper()

	out := &bytes.Buffer{}
	app, err := NewApp(cfg, strings.NewReader(input), out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &testApp{App: app, env: env, output: out, fakeTMDB: fakeTMDB, fakeOMDb: fakeOMDb}
}

func withoutTMDBKey() testOption {
	return func(c *config.Config) { c.TMDBAPIKey = "" }
}
