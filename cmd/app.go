package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/cache"
	"github.com/lepinkainen/flicklog/internal/collector"
	"github.com/lepinkainen/flicklog/internal/config"
	"github.com/lepinkainen/flicklog/internal/dataset"
	"github.com/lepinkainen/flicklog/internal/movie"
	"github.com/lepinkainen/flicklog/internal/omdb"
	"github.com/lepinkainen/flicklog/internal/tmdb"
	"github.com/lepinkainen/flicklog/internal/tui"
)

// selectMovie is the candidate picker used by interactive imports.
var selectMovie = tui.Select

// App holds the resolved configuration and the collaborators every command
// works with.
type App struct {
	cfg *config.Config

	in  *bufio.Reader
	out io.Writer

	cache     *cache.DB
	tmdb      *tmdb.Client
	omdb      *omdb.Client
	store     *dataset.Store
	collector *collector.Collector
}

// NewApp loads the dataset and builds the API clients from cfg. A cache that
// fails to open is logged and disabled.
func NewApp(cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	app := &App{cfg: cfg, in: bufio.NewReader(in), out: out}

	if cfg.CacheEnabled {
		db, err := cache.Open(cfg.CacheDBFile, cfg.CacheTTL)
		if err != nil {
			slog.Warn("Cache unavailable, continuing without it", "path", cfg.CacheDBFile, "error", err)
		} else {
			app.cache = db
		}
	}

	tmdbOpts := []tmdb.Option{tmdb.WithCache(app.cache)}
	if cfg.TMDBBaseURL != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.TMDBBaseURL))
	}
	app.tmdb = tmdb.NewClient(cfg.TMDBAPIKey, tmdbOpts...)

	omdbOpts := []omdb.Option{omdb.WithCache(app.cache), omdb.WithTimeout(cfg.OMDBTimeout)}
	if cfg.OMDBBaseURL != "" {
		omdbOpts = append(omdbOpts, omdb.WithBaseURL(cfg.OMDBBaseURL))
	}
	app.omdb = omdb.NewClient(cfg.OMDBAPIKey, omdbOpts...)
	if cfg.OMDBAPIKey == "" {
		slog.Warn("OMDb API key not configured, movies will be stored without ratings")
	}

	store, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		_ = app.Close()
		return nil, eris.Wrapf(err, "load dataset %s", cfg.DatasetPath)
	}
	app.store = store

	var ratings collector.RatingsSource = app.omdb
	if cfg.OMDBAPIKey == "" {
		ratings = nil
	}
	app.collector = collector.New(app.tmdb, ratings, store, movie.ExtractOptions{CastLimit: cfg.CastLimit})
	return app, nil
}

// Close releases the cache database.
func (a *App) Close() error {
	return a.cache.Close()
}

// save writes the dataset to the configured path.
func (a *App) save() error {
	if err := a.store.Save(a.cfg.DatasetPath); err != nil {
		return err
	}
	a.printf("Dataset saved to %s (%d movies)\n", a.cfg.DatasetPath, a.store.Len())
	return nil
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (a *App) prompt(label string) (string, bool) {
	a.printf("%s", label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
