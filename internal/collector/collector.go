// Package collector fetches a movie from the metadata and ratings APIs and
// stores it in the dataset.
package collector

import (
	"context"
	"log/slog"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/dataset"
	"github.com/lepinkainen/flicklog/internal/movie"
	"github.com/lepinkainen/flicklog/internal/omdb"
	"github.com/lepinkainen/flicklog/internal/tmdb"
)

// MetadataSource searches movies and fetches their detail documents.
type MetadataSource interface {
	SearchMovies(ctx context.Context, query string, year int, limit int) ([]tmdb.SearchResult, error)
	GetMovieDetails(ctx context.Context, movieID int) (map[string]any, error)
}

// RatingsSource looks up ratings by title and year. A nil response means no
// match.
type RatingsSource interface {
	LookupRatings(ctx context.Context, title, year string) (*omdb.Response, error)
}

// Collector drives the extractor and the store for single movies.
type Collector struct {
	meta    MetadataSource
	ratings RatingsSource
	store   *dataset.Store
	opts    movie.ExtractOptions
}

// New creates a Collector. ratings may be nil, in which case records are
// stored without ratings.
func New(meta MetadataSource, ratings RatingsSource, store *dataset.Store, opts movie.ExtractOptions) *Collector {
	return &Collector{meta: meta, ratings: ratings, store: store, opts: opts}
}

// Store returns the dataset the collector writes to.
func (c *Collector) Store() *dataset.Store {
	return c.store
}

// Search returns up to limit candidates for title in API order. year > 0 is
// passed as a hint.
func (c *Collector) Search(ctx context.Context, title string, year int, limit int) ([]tmdb.SearchResult, error) {
	results, err := c.meta.SearchMovies(ctx, title, year, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "search %q", title)
	}
	return results, nil
}

// Collect fetches the movie with movieID, looks up its ratings and adds the
// record. added is false when the id was already stored; the stored record
// is returned in that case and no API call is made.
func (c *Collector) Collect(ctx context.Context, movieID int) (movie.Record, bool, error) {
	if existing, ok := c.store.Get(movieID); ok {
		slog.Warn("Movie already in dataset, skipping", "title", existing.Title, "movie_id", movieID)
		return existing, false, nil
	}

	details, err := c.meta.GetMovieDetails(ctx, movieID)
	if err != nil {
		return movie.Record{}, false, eris.Wrapf(err, "fetch details for movie %d", movieID)
	}

	// title and year for the ratings lookup come from the same extraction
	base := movie.Extract(details, nil, c.opts)
	ratings := c.lookupRatings(ctx, base.Title, base.ReleaseYear)

	rec := movie.Extract(details, ratings, c.opts)
	if !c.store.Add(rec) {
		existing, _ := c.store.Get(rec.ID)
		return existing, false, nil
	}
	slog.Info("Added movie", "title", rec.Title, "movie_id", rec.ID, "total", c.store.Len())
	return rec, true, nil
}

func (c *Collector) lookupRatings(ctx context.Context, title, year string) *omdb.Response {
	if c.ratings == nil {
		return nil
	}
	slog.Debug("Fetching OMDb ratings", "title", title, "year", year)
	resp, err := c.ratings.LookupRatings(ctx, title, year)
	if err != nil {
		slog.Warn("Ratings lookup failed, storing without ratings", "title", title, "error", err)
		return nil
	}
	if resp == nil {
		slog.Info("No OMDb match", "title", title, "year", year)
		return nil
	}
	r := omdb.ExtractRatings(resp)
	slog.Info("Found ratings", "title", title, "imdb", r.IMDb, "rt", r.RottenTomatoes)
	return resp
}
