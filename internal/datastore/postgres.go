package datastore

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/movie"
)

// Pool is the subset of pgxpool.Pool the Postgres store uses.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		movie_id     INTEGER PRIMARY KEY,
		title        TEXT NOT NULL,
		release_year TEXT,
		release_date TEXT,
		runtime      INTEGER,
		imdb_rating  NUMERIC(3,1),
		rt_rating    INTEGER,
		collected_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id INTEGER NOT NULL REFERENCES movies(movie_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		genre    TEXT NOT NULL,
		PRIMARY KEY (movie_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS movie_directors (
		movie_id INTEGER NOT NULL REFERENCES movies(movie_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		director TEXT NOT NULL,
		PRIMARY KEY (movie_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS movie_cast (
		movie_id      INTEGER NOT NULL REFERENCES movies(movie_id) ON DELETE CASCADE,
		cast_position INTEGER NOT NULL,
		actor         TEXT NOT NULL,
		PRIMARY KEY (movie_id, cast_position)
	)`,
	`CREATE TABLE IF NOT EXISTS movie_countries (
		movie_id INTEGER NOT NULL REFERENCES movies(movie_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		country  TEXT NOT NULL,
		PRIMARY KEY (movie_id, position)
	)`,
}

const upsertMovieSQL = `INSERT INTO movies (movie_id, title, release_year, release_date, runtime, imdb_rating, rt_rating, collected_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (movie_id) DO UPDATE SET
	title = EXCLUDED.title,
	release_year = EXCLUDED.release_year,
	release_date = EXCLUDED.release_date,
	runtime = EXCLUDED.runtime,
	imdb_rating = EXCLUDED.imdb_rating,
	rt_rating = EXCLUDED.rt_rating,
	collected_at = EXCLUDED.collected_at`

// relation is a child table holding one ordered list of a record.
type relation struct {
	table    string
	position string
	value    string
	values   func(movie.Record) []string
}

var relations = []relation{
	{"movie_genres", "position", "genre", func(r movie.Record) []string { return r.Genres }},
	{"movie_directors", "position", "director", func(r movie.Record) []string { return r.Directors }},
	{"movie_cast", "cast_position", "actor", func(r movie.Record) []string { return r.Cast }},
	{"movie_countries", "position", "country", func(r movie.Record) []string { return r.Countries }},
}

// PostgresStore mirrors the dataset into normalized Postgres tables.
type PostgresStore struct {
	pool Pool
}

// OpenPostgres connects to the database at connString.
func OpenPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the movie tables when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "postgres: create schema")
		}
	}
	return nil
}

// UpsertMovies writes each record in its own transaction: one upsert of the
// movie row, then its genre, director, cast and country rows are replaced.
// It returns the number of movies written before the first failure.
func (s *PostgresStore) UpsertMovies(ctx context.Context, records []movie.Record) (int, error) {
	for i, rec := range records {
		if err := s.upsertMovie(ctx, rec); err != nil {
			return i, eris.Wrapf(err, "postgres: upsert movie %d", rec.ID)
		}
	}
	slog.Info("Movies written to Postgres", "count", len(records))
	return len(records), nil
}

func (s *PostgresStore) upsertMovie(ctx context.Context, rec movie.Record) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var collected any
	if !rec.CollectedAt.IsZero() {
		collected = rec.CollectedAt
	}
	if _, err = tx.Exec(ctx, upsertMovieSQL,
		rec.ID, rec.Title, rec.ReleaseYear, rec.ReleaseDate, rec.Runtime,
		decimalRating(rec.IMDbRating), percentRating(rec.RTRating), collected,
	); err != nil {
		return eris.Wrap(err, "upsert movie row")
	}

	for _, rel := range relations {
		if _, err = tx.Exec(ctx, "DELETE FROM "+rel.table+" WHERE movie_id = $1", rec.ID); err != nil {
			return eris.Wrapf(err, "clear %s", rel.table)
		}
		insert := "INSERT INTO " + rel.table + " (movie_id, " + rel.position + ", " + rel.value + ") VALUES ($1, $2, $3)"
		for pos, v := range rel.values(rec) {
			if _, err = tx.Exec(ctx, insert, rec.ID, pos+1, v); err != nil {
				return eris.Wrapf(err, "insert into %s", rel.table)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "commit tx")
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// decimalRating converts "8.7" to a float, nil when absent or malformed.
func decimalRating(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

// percentRating converts "83%" to 83, nil when absent or malformed.
func percentRating(s string) *int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return nil
	}
	return &n
}
