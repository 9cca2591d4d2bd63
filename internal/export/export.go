// Package export writes the derived movie tables to workbooks and SQL sinks.
package export

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/dataset"
	"github.com/lepinkainen/flicklog/internal/datastore"
)

// Table is one derived table ready for a sink.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Records returns the rows as column maps.
func (t Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			rec[col] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Build flattens the derived tables in a fixed order. Table names are the
// split-file suffixes without the leading underscore.
func Build(t dataset.Tables) []Table {
	tables := []Table{
		{Name: tableName(dataset.SuffixBasicInfo), Columns: []string{"movie_id", "title", "release_year", "runtime"}},
		{Name: tableName(dataset.SuffixGenres), Columns: []string{"movie_id", "title", "genre"}},
		{Name: tableName(dataset.SuffixDirectors), Columns: []string{"movie_id", "title", "director"}},
		{Name: tableName(dataset.SuffixCast), Columns: []string{"movie_id", "title", "actor", "cast_position"}},
		{Name: tableName(dataset.SuffixReleaseYears), Columns: []string{"movie_id", "title", "release_year"}},
		{Name: tableName(dataset.SuffixRuntime), Columns: []string{"movie_id", "title", "runtime"}},
	}
	for _, r := range t.BasicInfo {
		tables[0].Rows = append(tables[0].Rows, []any{r.MovieID, r.Title, r.ReleaseYear, intOrNil(r.Runtime)})
	}
	for _, r := range t.Genres {
		tables[1].Rows = append(tables[1].Rows, []any{r.MovieID, r.Title, r.Genre})
	}
	for _, r := range t.Directors {
		tables[2].Rows = append(tables[2].Rows, []any{r.MovieID, r.Title, r.Director})
	}
	for _, r := range t.Cast {
		tables[3].Rows = append(tables[3].Rows, []any{r.MovieID, r.Title, r.Actor, r.CastPosition})
	}
	for _, r := range t.ReleaseYears {
		tables[4].Rows = append(tables[4].Rows, []any{r.MovieID, r.Title, r.ReleaseYear})
	}
	for _, r := range t.Runtime {
		tables[5].Rows = append(tables[5].Rows, []any{r.MovieID, r.Title, intOrNil(r.Runtime)})
	}
	return tables
}

// sqliteSchemas are keyed by table name. Relationship tables use the
// relationship instance as primary key so a re-export replaces rows.
var sqliteSchemas = map[string]string{
	"basic_info": `CREATE TABLE IF NOT EXISTS basic_info (
		movie_id INTEGER PRIMARY KEY,
		title TEXT,
		release_year TEXT,
		runtime INTEGER
	)`,
	"genres": `CREATE TABLE IF NOT EXISTS genres (
		movie_id INTEGER,
		title TEXT,
		genre TEXT,
		PRIMARY KEY (movie_id, genre)
	)`,
	"directors": `CREATE TABLE IF NOT EXISTS directors (
		movie_id INTEGER,
		title TEXT,
		director TEXT,
		PRIMARY KEY (movie_id, director)
	)`,
	"cast": `CREATE TABLE IF NOT EXISTS "cast" (
		movie_id INTEGER,
		title TEXT,
		actor TEXT,
		cast_position INTEGER,
		PRIMARY KEY (movie_id, cast_position)
	)`,
	"release_years": `CREATE TABLE IF NOT EXISTS release_years (
		movie_id INTEGER PRIMARY KEY,
		title TEXT,
		release_year TEXT
	)`,
	"runtime": `CREATE TABLE IF NOT EXISTS runtime (
		movie_id INTEGER PRIMARY KEY,
		title TEXT,
		runtime INTEGER
	)`,
}

// ToStore creates the tables in store and inserts every non-empty table.
// It returns the number of rows written.
func ToStore(ctx context.Context, store datastore.Store, database string, tables []Table) (int, error) {
	written := 0
	for _, t := range tables {
		if schema, ok := sqliteSchemas[t.Name]; ok {
			if err := store.CreateTable(schema); err != nil {
				return written, eris.Wrapf(err, "create %s", t.Name)
			}
		}
		if len(t.Rows) == 0 {
			slog.Debug("Skipping empty table", "table", t.Name)
			continue
		}
		if err := store.BatchInsert(ctx, database, t.Name, t.Records()); err != nil {
			return written, eris.Wrapf(err, "write %s", t.Name)
		}
		slog.Info("Table exported", "table", t.Name, "rows", len(t.Rows))
		written += len(t.Rows)
	}
	return written, nil
}

func tableName(suffix string) string {
	return strings.TrimPrefix(suffix, "_")
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
