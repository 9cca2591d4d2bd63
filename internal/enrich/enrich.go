// Package enrich backfills missing ratings of stored movies.
package enrich

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lepinkainen/flicklog/internal/dataset"
	flerrors "github.com/lepinkainen/flicklog/internal/errors"
	"github.com/lepinkainen/flicklog/internal/omdb"
)

// RatingsSource looks up ratings by title and year. found is false when the
// source has no match.
type RatingsSource interface {
	Ratings(ctx context.Context, title, year string) (ratings omdb.Ratings, found bool, err error)
}

// SourceFunc adapts a lookup function such as omdb.Client.RefreshRatings.
type SourceFunc func(ctx context.Context, title, year string) (omdb.Ratings, bool, error)

func (f SourceFunc) Ratings(ctx context.Context, title, year string) (omdb.Ratings, bool, error) {
	return f(ctx, title, year)
}

// Result summarizes one enrichment run.
type Result struct {
	// Candidates is the number of records that had a missing rating.
	Candidates int
	// Updated is the number of records whose ratings were found.
	Updated int
	// Cleared is the number of records whose lookup failed.
	Cleared int
	// Stopped is set when the source hit its rate limit and the run ended
	// early. Records after that point were neither updated nor cleared and
	// still count as missing ratings on the next run.
	Stopped bool
}

// Pass re-queries ratings for records with a missing rating.
type Pass struct {
	store  *dataset.Store
	source RatingsSource
}

// NewPass creates an enrichment pass over store.
func NewPass(store *dataset.Store, source RatingsSource) *Pass {
	return &Pass{store: store, source: source}
}

// Run looks up every record with a missing rating. A match overwrites both
// ratings; a miss or lookup error sets both to null. Running again with an
// unchanged source leaves the store unchanged.
func (p *Pass) Run(ctx context.Context) (Result, error) {
	candidates := p.store.MissingRatings()
	res := Result{Candidates: len(candidates)}
	if len(candidates) == 0 {
		slog.Info("All movies already have ratings")
		return res, nil
	}

	slog.Info("Found movies missing ratings", "count", len(candidates))
	for _, rec := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		slog.Info("Processing", "title", rec.Title, "year", rec.ReleaseYear)
		ratings, found, err := p.source.Ratings(ctx, rec.Title, rec.ReleaseYear)
		switch {
		case errors.Is(err, omdb.ErrNoAPIKey):
			return res, err
		case flerrors.IsRateLimitError(err):
			slog.Warn("Ratings source rate limited, stopping", "remaining", res.Candidates-res.Updated-res.Cleared)
			res.Stopped = true
			return res, nil
		case err != nil:
			slog.Warn("Ratings lookup failed", "title", rec.Title, "movie_id", rec.ID, "error", err)
			found = false
		}

		if found {
			p.store.SetRatings(rec.ID, ratings)
			res.Updated++
			continue
		}
		p.store.SetRatings(rec.ID, omdb.Ratings{})
		res.Cleared++
	}

	slog.Info("Updated movies with ratings", "updated", res.Updated, "cleared", res.Cleared)
	return res, nil
}
