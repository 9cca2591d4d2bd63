package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/cache"
	"github.com/lepinkainen/flicklog/internal/dataset"
	"github.com/lepinkainen/flicklog/internal/datastore"
	"github.com/lepinkainen/flicklog/internal/enrich"
	flerrors "github.com/lepinkainen/flicklog/internal/errors"
	"github.com/lepinkainen/flicklog/internal/export"
	"github.com/lepinkainen/flicklog/internal/importer"
	"github.com/lepinkainen/flicklog/internal/movie"
	"github.com/lepinkainen/flicklog/internal/omdb"
	"github.com/lepinkainen/flicklog/internal/report"
	"github.com/lepinkainen/flicklog/internal/tmdb"
)

// searchLimit is how many candidates a search shows.
const searchLimit = 5

// exportDatabase names the database in Datasette insert URLs.
const exportDatabase = "flicklog"

// MenuCmd runs the interactive menu
type MenuCmd struct{}

func (m *MenuCmd) Run(ctx context.Context, app *App) error {
	return app.RunMenu(ctx)
}

// SearchCmd represents the search command
type SearchCmd struct {
	Title string `arg:"" help:"Movie title to search for"`
	Year  int    `help:"Release year hint"`
	Pick  int    `help:"Which result to add (1-based)" default:"1"`
	Save  bool   `help:"Save the dataset after adding the movie"`
}

func (s *SearchCmd) Run(ctx context.Context, app *App) error {
	results, err := app.collector.Search(ctx, s.Title, s.Year, searchLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no movies found for %q", s.Title)
	}
	app.printResults(results)

	if s.Pick < 1 || s.Pick > len(results) {
		return fmt.Errorf("pick must be between 1 and %d", len(results))
	}
	rec, added, err := app.collector.Collect(ctx, results[s.Pick-1].ID)
	if err != nil {
		return err
	}
	app.printRecord(rec, added)

	if s.Save && added {
		return app.save()
	}
	return nil
}

// ImportCmd represents the bulk import command
type ImportCmd struct {
	File        string `short:"f" help:"CSV or XLSX file with Name and Year columns" required:"" type:"path"`
	Interactive bool   `short:"i" help:"Pick among candidates for each title instead of taking the first"`
	NoSave      bool   `help:"Do not save the dataset afterwards"`
}

func (c *ImportCmd) Run(ctx context.Context, app *App) error {
	res, err := app.importFile(ctx, c.File, c.Interactive)
	if err != nil && !flerrors.IsStopProcessingError(err) {
		return err
	}
	if !c.NoSave && res.Added > 0 {
		return app.save()
	}
	return nil
}

// UpdateRatingsCmd represents the rating backfill command
type UpdateRatingsCmd struct {
	NoSave bool `help:"Do not save the dataset afterwards"`
}

func (c *UpdateRatingsCmd) Run(ctx context.Context, app *App) error {
	res, err := app.updateRatings(ctx)
	if err != nil {
		return err
	}
	if !c.NoSave && res.Updated+res.Cleared > 0 {
		return app.save()
	}
	return nil
}

// StatsCmd represents the statistics command
type StatsCmd struct {
	Format string `help:"Output format" enum:"text,yaml,json" default:"text"`
	Top    int    `help:"Number of entries in the bar charts" default:"10"`
}

func (c *StatsCmd) Run(app *App) error {
	return app.writeStats(c.Format, c.Top)
}

// HeatmapCmd represents the genre co-occurrence command
type HeatmapCmd struct {
	Out string `help:"Output format" enum:"text,csv" default:"text"`
}

func (c *HeatmapCmd) Run(app *App) error {
	if app.store.Len() == 0 {
		app.printf("Dataset is empty\n")
		return nil
	}
	m := report.CoOccurrence(app.store.Records())
	if c.Out == "csv" {
		return report.WriteMatrixCSV(app.out, m)
	}
	app.printf("Genre co-occurrence\n")
	report.WriteMatrix(app.out, m)
	return nil
}

// ExportCmd represents the export command
type ExportCmd struct {
	Split     bool   `help:"Write the wide table and the derived tables as CSV files next to the dataset"`
	XLSX      string `name:"xlsx" help:"Write every table to this XLSX workbook" type:"path"`
	SQLite    bool   `name:"sqlite" help:"Write the derived tables to the SQLite database set in export.sqlite"`
	Postgres  bool   `help:"Upsert the movies into the Postgres database set in export.postgres_dsn"`
	Datasette bool   `help:"Send the derived tables to the Datasette instance set in datasette.url"`
}

func (c *ExportCmd) Run(ctx context.Context, app *App) error {
	if !c.Split && c.XLSX == "" && !c.SQLite && !c.Postgres && !c.Datasette {
		return errors.New("nothing to export: choose at least one of --split, --xlsx, --sqlite, --postgres, --datasette")
	}
	if app.store.Len() == 0 {
		return dataset.ErrEmpty
	}

	if c.Split {
		paths, err := app.store.SaveSplit(app.cfg.DatasetPath)
		if err != nil {
			return err
		}
		app.printf("Wrote %d files: %s\n", len(paths), strings.Join(paths, ", "))
	}

	if c.XLSX != "" {
		if err := export.WriteWorkbook(c.XLSX, app.store); err != nil {
			return err
		}
		app.printf("Wrote workbook %s\n", c.XLSX)
	}

	tables := export.Build(app.store.Tables())
	if c.SQLite {
		if err := exportToStore(ctx, datastore.NewSQLiteStore(app.cfg.SQLitePath), exportDatabase, tables); err != nil {
			return err
		}
		app.printf("Wrote tables to %s\n", app.cfg.SQLitePath)
	}

	if c.Datasette {
		if app.cfg.DatasetteURL == "" {
			return errors.New("datasette.url is not configured")
		}
		client := datastore.NewDatasetteClient(app.cfg.DatasetteURL, app.cfg.DatasetteToken)
		if err := exportToStore(ctx, client, exportDatabase, tables); err != nil {
			return err
		}
		app.printf("Sent tables to %s\n", app.cfg.DatasetteURL)
	}

	if c.Postgres {
		if app.cfg.PostgresDSN == "" {
			return errors.New("export.postgres_dsn is not configured")
		}
		pg, err := datastore.OpenPostgres(ctx, app.cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		n, err := pg.UpsertMovies(ctx, app.store.Records())
		if err != nil {
			return err
		}
		app.printf("Upserted %d movies to Postgres\n", n)
	}
	return nil
}

func exportToStore(ctx context.Context, store datastore.Store, database string, tables []export.Table) error {
	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	_, err := export.ToStore(ctx, store, database, tables)
	return err
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate CacheInvalidateCmd `cmd:"" help:"Delete every cached response of one source"`
}

// CacheInvalidateCmd represents the cache invalidate command
type CacheInvalidateCmd struct {
	Source string `arg:"" help:"Cache to clear" enum:"tmdb,omdb"`
}

func (c *CacheInvalidateCmd) Run(app *App) error {
	if app.cache == nil {
		return errors.New("cache is disabled")
	}
	table, ok := cache.SourceTables[c.Source]
	if !ok {
		return fmt.Errorf("unknown cache source %q", c.Source)
	}
	n, err := app.cache.Invalidate(table)
	if err != nil {
		return err
	}
	app.printf("Removed %d cached %s responses\n", n, c.Source)
	return nil
}

// importFile runs a bulk import and prints its outcome.
func (a *App) importFile(ctx context.Context, path string, interactive bool) (importer.Result, error) {
	im := importer.New(a.collector, importer.Options{Interactive: interactive, Choose: selectMovie})
	res, err := im.ImportFile(ctx, path)

	var missing *importer.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return res, err
	case err != nil && !flerrors.IsStopProcessingError(err):
		return res, eris.Wrapf(err, "import %s", path)
	}

	a.printf("Import finished: %d rows, %d added, %d already in dataset, %d without match, %d failed\n",
		res.Rows, res.Added, res.Duplicates, res.Skipped, res.Failed)
	if err != nil {
		a.printf("Import stopped before the end of the file\n")
	}
	return res, err
}

// updateRatings runs the enrichment pass and prints its outcome.
func (a *App) updateRatings(ctx context.Context) (enrich.Result, error) {
	res, err := enrich.NewPass(a.store, enrich.SourceFunc(a.omdb.RefreshRatings)).Run(ctx)
	if errors.Is(err, omdb.ErrNoAPIKey) {
		return res, errors.New("OMDb API key not configured; set OMDB_API_KEY to update ratings")
	}
	if err != nil {
		return res, err
	}

	if res.Candidates == 0 {
		a.printf("All movies already have ratings\n")
		return res, nil
	}
	a.printf("Updated ratings for %d of %d movies\n", res.Updated, res.Candidates)
	if res.Stopped {
		a.printf("OMDb request limit reached; the remaining movies were left unchanged\n")
	}
	return res, nil
}

// writeStats prints the summary in format.
func (a *App) writeStats(format string, top int) error {
	records := a.store.Records()
	if len(records) == 0 {
		a.printf("Dataset is empty\n")
		return nil
	}

	s := report.Summarize(records)
	if format != report.FormatText {
		return report.Encode(a.out, format, s)
	}

	report.WriteSummary(a.out, s, top)
	if s.IMDb.Count > 0 {
		report.WriteHistogram(a.out, "IMDb rating distribution", report.Histogram(report.IMDbValues(records), 0, 10, 10))
	}
	if s.RT.Count > 0 {
		report.WriteHistogram(a.out, "Rotten Tomatoes distribution", report.Histogram(report.RTValues(records), 0, 100, 10))
	}
	return nil
}

func (a *App) printResults(results []tmdb.SearchResult) {
	a.printf("Found %d movies:\n", len(results))
	for i, r := range results {
		a.printf("%d. %s\n", i+1, r.Label())
	}
}

func (a *App) printRecord(rec movie.Record, added bool) {
	if !added {
		a.printf("%s is already in the dataset\n", rec.Label())
		return
	}
	a.printf("Added %s\n", rec.Label())
	if rec.Runtime != nil {
		a.printf("   Runtime: %d min\n", *rec.Runtime)
	}
	if len(rec.Genres) > 0 {
		a.printf("   Genres: %s\n", strings.Join(rec.Genres, ", "))
	}
	if len(rec.Directors) > 0 {
		a.printf("   Directors: %s\n", strings.Join(rec.Directors, ", "))
	}
	if rec.IMDbRating != "" {
		a.printf("   IMDb: %s\n", rec.IMDbRating)
	}
	if rec.RTRating != "" {
		a.printf("   Rotten Tomatoes: %s\n", rec.RTRating)
	}
}
