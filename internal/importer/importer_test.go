package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/lepinkainen/flicklog/internal/collector"
	"github.com/lepinkainen/flicklog/internal/dataset"
	flerrors "github.com/lepinkainen/flicklog/internal/errors"
	"github.com/lepinkainen/flicklog/internal/movie"
	"github.com/lepinkainen/flicklog/internal/omdb"
	"github.com/lepinkainen/flicklog/internal/ratelimit"
	"github.com/lepinkainen/flicklog/internal/testutil"
	"github.com/lepinkainen/flicklog/internal/tmdb"
	"github.com/lepinkainen/flicklog/internal/tui"
)

var movies = []testutil.Movie{
	{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", Genres: []string{"Action"}},
	{ID: 604, Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15", Genres: []string{"Action"}},
	{ID: 78, Title: "Blade Runner", ReleaseDate: "1982-06-25", Genres: []string{"Science Fiction"}},
}

func newImporter(t *testing.T, opts Options) (*Importer, *dataset.Store) {
	t.Helper()
	fakeTMDB := testutil.NewFakeTMDB(t, movies...)
	fakeOMDb := testutil.NewFakeOMDb(t, map[string]testutil.OMDbRatings{"Blade Runner": {IMDb: "8.1", RottenTomatoes: "89%"}})

	meta := tmdb.NewClient("key", tmdb.WithBaseURL(fakeTMDB.URL()), tmdb.WithRateLimiter(ratelimit.New("TMDB", 0)))
	ratings := omdb.NewClient("key", omdb.WithBaseURL(fakeOMDb.URL()), omdb.WithRateLimiter(ratelimit.New("OMDB", 0)))
	store := dataset.New()
	return New(collector.New(meta, ratings, store, movie.ExtractOptions{}), opts), store
}

func writeXLSX(t *testing.T, env *testutil.TestEnv, name string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, data := range rows {
		row := sheet.AddRow()
		for _, v := range data {
			row.AddCell().SetString(v)
		}
	}
	path := env.Path(name)
	require.NoError(t, f.Save(path))
	return path
}

func TestImportFile_CSV(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.WriteCSV("watched.csv", "Date,Name,Year,Letterboxd URI",
		"2024-01-01,The Matrix,1999,https://boxd.it/a",
		"2024-01-02,Blade Runner,1982,https://boxd.it/b",
		"2024-01-03,Totally Unknown Film,2020,https://boxd.it/c",
		"2024-01-04,The Matrix,1999,https://boxd.it/d")

	im, store := newImporter(t, Options{})
	res, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, Result{Rows: 4, Added: 2, Duplicates: 1, Skipped: 1}, res)
	assert.Equal(t, 2, store.Len())

	br, ok := store.Get(78)
	require.True(t, ok)
	assert.Equal(t, "8.1", br.IMDbRating)
}

func TestImportFile_UnmatchedRowLeavesStoreUnchanged(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("one.csv", "Name,Year\nNo Such Movie,1990\n")

	im, store := newImporter(t, Options{})
	res, err := im.ImportFile(context.Background(), env.Path("one.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, store.Len())
}

func TestImportFile_XLSXMatchesCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)
	rows := [][]string{
		{"Name", "Year"},
		{"The Matrix", "1999"},
		{"Blade Runner", "1982"},
		{"", ""},
	}
	env.WriteFileString("list.csv", "Name,Year\nThe Matrix,1999\nBlade Runner,1982\n")
	xlsxPath := writeXLSX(t, env, "list.xlsx", rows)

	csvImporter, csvStore := newImporter(t, Options{})
	csvRes, err := csvImporter.ImportFile(context.Background(), env.Path("list.csv"))
	require.NoError(t, err)

	xlsxImporter, xlsxStore := newImporter(t, Options{})
	xlsxRes, err := xlsxImporter.ImportFile(context.Background(), xlsxPath)
	require.NoError(t, err)

	assert.Equal(t, csvRes, xlsxRes)
	require.Equal(t, csvStore.Len(), xlsxStore.Len())
	for i, rec := range csvStore.Records() {
		assert.Equal(t, rec.ID, xlsxStore.Records()[i].ID)
	}
}

func TestReadRows_MissingColumns(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("bad.csv", "Title,Released\nThe Matrix,1999\n")

	_, err := ReadRows(env.Path("bad.csv"))
	require.Error(t, err)

	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Name", "Year"}, missing.Missing)
	assert.Contains(t, err.Error(), "must contain Name and Year columns")

	xlsxPath := writeXLSX(t, env, "bad.xlsx", [][]string{{"Name"}, {"The Matrix"}})
	_, err = ReadRows(xlsxPath)
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Year"}, missing.Missing)
}

func TestReadRows_Unreadable(t *testing.T) {
	_, err := ReadRows("/nonexistent/watched.csv")
	assert.Error(t, err)

	env := testutil.NewTestEnv(t)
	env.WriteFileString("broken.xlsx", "not a zip")
	_, err = ReadRows(env.Path("broken.xlsx"))
	assert.Error(t, err)
}

func TestRow_YearHint(t *testing.T) {
	assert.Equal(t, 1999, Row{Year: "1999"}.YearHint())
	assert.Equal(t, 1999, Row{Year: "1999.0"}.YearHint())
	assert.Equal(t, 0, Row{Year: ""}.YearHint())
	assert.Equal(t, 0, Row{Year: "n/a"}.YearHint())
}

type failingMeta struct{}

func (failingMeta) SearchMovies(context.Context, string, int, int) ([]tmdb.SearchResult, error) {
	return []tmdb.SearchResult{{ID: 1, Title: "Ghost"}}, nil
}

func (failingMeta) GetMovieDetails(context.Context, int) (map[string]any, error) {
	return nil, assert.AnError
}

type erroringMeta struct{ failingMeta }

func (erroringMeta) SearchMovies(context.Context, string, int, int) ([]tmdb.SearchResult, error) {
	return nil, assert.AnError
}

func TestImport_FailuresAreCounted(t *testing.T) {
	store := dataset.New()
	im := New(collector.New(failingMeta{}, nil, store, movie.ExtractOptions{}), Options{})

	res, err := im.Import(context.Background(), []Row{{Name: "Ghost", Year: "2000"}, {Name: "", Year: "2001"}})
	require.NoError(t, err)
	assert.Equal(t, Result{Rows: 2, Failed: 1, Skipped: 1}, res)

	im = New(collector.New(erroringMeta{}, nil, store, movie.ExtractOptions{}), Options{})
	res, err = im.Import(context.Background(), []Row{{Name: "Ghost"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, store.Len())
}

func TestImport_Interactive(t *testing.T) {
	var offered [][]tmdb.SearchResult
	choose := func(title string, results []tmdb.SearchResult) (tui.SelectionResult, error) {
		offered = append(offered, results)
		switch title {
		case "Matrix":
			second := results[1]
			return tui.SelectionResult{Action: tui.ActionSelected, Selection: &second}, nil
		case "Blade Runner":
			return tui.SelectionResult{Action: tui.ActionSkipped}, nil
		default:
			return tui.SelectionResult{Action: tui.ActionStopped}, nil
		}
	}

	im, store := newImporter(t, Options{Interactive: true, Choose: choose})
	res, err := im.Import(context.Background(), []Row{
		{Name: "Matrix"},
		{Name: "Blade Runner"},
		{Name: "The Matrix"},
		{Name: "Never reached"},
	})

	require.Error(t, err)
	assert.True(t, flerrors.IsStopProcessingError(err))
	assert.Equal(t, Result{Rows: 4, Added: 1, Skipped: 1}, res)
	assert.Len(t, offered, 3)
	assert.Len(t, offered[0], 2)

	rec, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, 604, rec.ID)
}
