// Package dataset holds the in-memory movie table and persists it as CSV.
package dataset

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/csvutil"
	"github.com/lepinkainen/flicklog/internal/movie"
	"github.com/lepinkainen/flicklog/internal/omdb"
)

// ErrEmpty is returned when saving a store without records.
var ErrEmpty = eris.New("no data to save")

// Store is an ordered collection of movie records keyed by movie_id.
type Store struct {
	records []movie.Record
	index   map[int]int
	extra   []string
}

// New returns an empty store.
func New() *Store {
	return &Store{index: map[int]int{}}
}

// Load reads the wide table at path. A missing file yields an empty store.
// Missing canonical columns load as nulls; unknown columns are preserved.
func Load(path string) (*Store, error) {
	s := New()

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("No dataset found, starting a new one", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "stat dataset %s", path)
	}
	if info.Size() == 0 {
		slog.Warn("Dataset file is empty, starting a new one", "path", path)
		return s, nil
	}

	records, header, err := csvutil.ProcessCSV(path, parseRecord, csvutil.ProcessorOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "load dataset %s", path)
	}

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
		if !movie.IsCanonical(col) {
			s.extra = append(s.extra, col)
		}
	}
	for _, col := range movie.Columns {
		if !present[col] {
			slog.Info("Added missing column", "column", col)
		}
	}

	for _, rec := range records {
		if !s.Add(rec) {
			slog.Warn("Dropped duplicate row from dataset file", "movie_id", rec.ID)
		}
	}

	slog.Info("Loaded dataset", "path", path, "movies", s.Len())
	return s, nil
}

func parseRecord(row csvutil.Row) (movie.Record, error) {
	rec := movie.Record{
		Genres:    []string{},
		Directors: []string{},
		Cast:      []string{},
		Countries: []string{},
	}
	if _, ok := row.Get(movie.ColID); !ok {
		return rec, eris.Errorf("missing %s column", movie.ColID)
	}

	for _, col := range row.Columns() {
		value, _ := row.Get(col)
		if err := rec.SetField(col, value); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns the records in insertion order. The slice is a copy.
func (s *Store) Records() []movie.Record {
	out := make([]movie.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record for id.
func (s *Store) Get(id int) (movie.Record, bool) {
	i, ok := s.index[id]
	if !ok {
		return movie.Record{}, false
	}
	return s.records[i], true
}

// Contains reports whether id is stored.
func (s *Store) Contains(id int) bool {
	_, ok := s.index[id]
	return ok
}

// Last returns the most recently added record.
func (s *Store) Last() (movie.Record, bool) {
	if len(s.records) == 0 {
		return movie.Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// Add appends rec unless its movie_id is already stored, in which case it
// logs and returns false without changing the store.
func (s *Store) Add(rec movie.Record) bool {
	if existing, ok := s.Get(rec.ID); ok {
		slog.Warn("Movie already in dataset, skipping", "title", existing.Title, "movie_id", rec.ID)
		return false
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	for col := range rec.Extra {
		s.addExtraColumn(col)
	}
	return true
}

func (s *Store) addExtraColumn(col string) {
	for _, c := range s.extra {
		if c == col {
			return
		}
	}
	s.extra = append(s.extra, col)
}

// MissingRatings returns the records with at least one absent rating.
func (s *Store) MissingRatings() []movie.Record {
	var out []movie.Record
	for _, rec := range s.records {
		if rec.MissingRatings() {
			out = append(out, rec)
		}
	}
	return out
}

// SetRatings overwrites both ratings of the record with id.
func (s *Store) SetRatings(id int, ratings omdb.Ratings) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.records[i].SetRatings(ratings)
	return true
}

// Columns returns the canonical columns followed by preserved extra columns.
func (s *Store) Columns() []string {
	cols := make([]string, 0, len(movie.Columns)+len(s.extra))
	cols = append(cols, movie.Columns...)
	return append(cols, s.extra...)
}

// Save writes the full wide table to path.
func (s *Store) Save(path string) error {
	if s.Len() == 0 {
		return ErrEmpty
	}

	cols := s.Columns()
	rows := make([][]string, 0, len(s.records))
	for _, rec := range s.records {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = rec.Field(col)
		}
		rows = append(rows, row)
	}

	if err := csvutil.WriteTable(path, cols, rows); err != nil {
		return eris.Wrap(err, "save dataset")
	}
	slog.Info("Dataset saved", "path", path, "movies", s.Len())
	return nil
}
