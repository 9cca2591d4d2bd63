// Package importer adds every title of a watch-list export to the dataset.
package importer

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/flicklog/internal/collector"
	"github.com/lepinkainen/flicklog/internal/errors"
	"github.com/lepinkainen/flicklog/internal/tmdb"
	"github.com/lepinkainen/flicklog/internal/tui"
)

// interactiveLimit is how many candidates the picker shows per title.
const interactiveLimit = 10

// Chooser asks the user to pick one of results for title.
type Chooser func(title string, results []tmdb.SearchResult) (tui.SelectionResult, error)

// Options controls an import run.
type Options struct {
	// Interactive lets the user pick among the candidates of each title
	// instead of taking the first search result.
	Interactive bool
	// Choose overrides the picker; nil means tui.Select.
	Choose Chooser
}

// Result counts the outcome of an import run.
type Result struct {
	Rows       int
	Added      int
	Duplicates int
	Skipped    int
	Failed     int
}

// Importer drives the collector for each row of an import file.
type Importer struct {
	collector *collector.Collector
	opts      Options
}

// New creates an Importer.
func New(c *collector.Collector, opts Options) *Importer {
	if opts.Choose == nil {
		opts.Choose = tui.Select
	}
	return &Importer{collector: c, opts: opts}
}

// ImportFile reads path and imports its rows. Unreadable files and files
// without Name and Year columns are errors; per-row failures are counted.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return Result{}, err
	}
	slog.Info("Importing titles", "file", path, "rows", len(rows))
	return im.Import(ctx, rows)
}

// Import processes rows in order. A row without a search match is skipped,
// search and fetch errors count as failed, and nothing is retried. When the
// user stops an interactive run a StopProcessingError is returned together
// with the counts so far.
func (im *Importer) Import(ctx context.Context, rows []Row) (Result, error) {
	res := Result{Rows: len(rows)}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		log := slog.With("row", i+1, "of", len(rows), "title", row.Name, "year", row.Year)
		if row.Name == "" {
			log.Warn("Row has no title, skipping")
			res.Skipped++
			continue
		}
		log.Info("Processing")

		limit := 1
		if im.opts.Interactive {
			limit = interactiveLimit
		}
		results, err := im.collector.Search(ctx, row.Name, row.YearHint(), limit)
		if err != nil {
			log.Warn("Search failed", "error", err)
			res.Failed++
			continue
		}
		if len(results) == 0 {
			log.Info("No search match, skipping")
			res.Skipped++
			continue
		}

		pick := results[0]
		if im.opts.Interactive {
			choice, err := im.opts.Choose(row.Name, results)
			if err != nil {
				log.Warn("Selection failed", "error", err)
				res.Failed++
				continue
			}
			switch choice.Action {
			case tui.ActionSelected:
				pick = *choice.Selection
			case tui.ActionStopped:
				log.Info("Import stopped by user")
				return res, errors.NewStopProcessingError("import stopped by user")
			default:
				log.Info("Skipped by user")
				res.Skipped++
				continue
			}
		}

		_, added, err := im.collector.Collect(ctx, pick.ID)
		if err != nil {
			log.Warn("Fetching movie failed", "movie_id", pick.ID, "error", err)
			res.Failed++
			continue
		}
		if added {
			res.Added++
		} else {
			res.Duplicates++
		}
	}

	slog.Info("Import finished", "rows", res.Rows, "added", res.Added, "duplicates", res.Duplicates,
		"skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}
