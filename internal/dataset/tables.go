package dataset

import (
	"log/slog"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/csvutil"
)

// BasicInfoRow is one row of the basic_info table.
type BasicInfoRow struct {
	MovieID     int    `csv:"movie_id" json:"movie_id"`
	Title       string `csv:"title" json:"title"`
	ReleaseYear string `csv:"release_year" json:"release_year"`
	Runtime     *int   `csv:"runtime" json:"runtime"`
}

// GenreRow links a movie to one genre.
type GenreRow struct {
	MovieID int    `csv:"movie_id" json:"movie_id"`
	Title   string `csv:"title" json:"title"`
	Genre   string `csv:"genre" json:"genre"`
}

// DirectorRow links a movie to one director.
type DirectorRow struct {
	MovieID  int    `csv:"movie_id" json:"movie_id"`
	Title    string `csv:"title" json:"title"`
	Director string `csv:"director" json:"director"`
}

// CastRow links a movie to one actor. CastPosition is 1-based.
type CastRow struct {
	MovieID      int    `csv:"movie_id" json:"movie_id"`
	Title        string `csv:"title" json:"title"`
	Actor        string `csv:"actor" json:"actor"`
	CastPosition int    `csv:"cast_position" json:"cast_position"`
}

// ReleaseYearRow is one row of the release_years table.
type ReleaseYearRow struct {
	MovieID     int    `csv:"movie_id" json:"movie_id"`
	Title       string `csv:"title" json:"title"`
	ReleaseYear string `csv:"release_year" json:"release_year"`
}

// RuntimeRow is one row of the runtime table.
type RuntimeRow struct {
	MovieID int    `csv:"movie_id" json:"movie_id"`
	Title   string `csv:"title" json:"title"`
	Runtime *int   `csv:"runtime" json:"runtime"`
}

// Tables are the narrow tables derived from the wide table.
type Tables struct {
	BasicInfo    []BasicInfoRow
	Genres       []GenreRow
	Directors    []DirectorRow
	Cast         []CastRow
	ReleaseYears []ReleaseYearRow
	Runtime      []RuntimeRow
}

// Table name suffixes appended to the base file name.
const (
	SuffixBasicInfo    = "_basic_info"
	SuffixGenres       = "_genres"
	SuffixDirectors    = "_directors"
	SuffixCast         = "_cast"
	SuffixReleaseYears = "_release_years"
	SuffixRuntime      = "_runtime"
)

// Tables derives one row per movie for the per-movie tables and one row per
// relationship instance for genres, directors and cast.
func (s *Store) Tables() Tables {
	var t Tables
	for _, rec := range s.records {
		t.BasicInfo = append(t.BasicInfo, BasicInfoRow{MovieID: rec.ID, Title: rec.Title, ReleaseYear: rec.ReleaseYear, Runtime: rec.Runtime})
		t.ReleaseYears = append(t.ReleaseYears, ReleaseYearRow{MovieID: rec.ID, Title: rec.Title, ReleaseYear: rec.ReleaseYear})
		t.Runtime = append(t.Runtime, RuntimeRow{MovieID: rec.ID, Title: rec.Title, Runtime: rec.Runtime})

		for _, g := range rec.Genres {
			t.Genres = append(t.Genres, GenreRow{MovieID: rec.ID, Title: rec.Title, Genre: g})
		}
		for _, d := range rec.Directors {
			t.Directors = append(t.Directors, DirectorRow{MovieID: rec.ID, Title: rec.Title, Director: d})
		}
		for i, a := range rec.Cast {
			t.Cast = append(t.Cast, CastRow{MovieID: rec.ID, Title: rec.Title, Actor: a, CastPosition: i + 1})
		}
	}
	return t
}

// SaveSplit writes base.csv plus the derived tables next to it and returns
// the written paths. A trailing ".csv" on base is ignored. Relationship
// tables without rows are not written.
func (s *Store) SaveSplit(base string) ([]string, error) {
	if s.Len() == 0 {
		return nil, ErrEmpty
	}
	base = strings.TrimSuffix(base, ".csv")

	mainPath := base + ".csv"
	if err := s.Save(mainPath); err != nil {
		return nil, err
	}
	written := []string{mainPath}

	t := s.Tables()
	steps := []struct {
		suffix string
		rows   int
		write  func(path string) error
	}{
		{SuffixBasicInfo, len(t.BasicInfo), func(p string) error { return csvutil.WriteStructs(p, t.BasicInfo) }},
		{SuffixGenres, len(t.Genres), func(p string) error { return csvutil.WriteStructs(p, t.Genres) }},
		{SuffixDirectors, len(t.Directors), func(p string) error { return csvutil.WriteStructs(p, t.Directors) }},
		{SuffixCast, len(t.Cast), func(p string) error { return csvutil.WriteStructs(p, t.Cast) }},
		{SuffixReleaseYears, len(t.ReleaseYears), func(p string) error { return csvutil.WriteStructs(p, t.ReleaseYears) }},
		{SuffixRuntime, len(t.Runtime), func(p string) error { return csvutil.WriteStructs(p, t.Runtime) }},
	}

	for _, step := range steps {
		if step.rows == 0 {
			slog.Debug("Skipping empty table", "table", step.suffix)
			continue
		}
		path := base + step.suffix + ".csv"
		if err := step.write(path); err != nil {
			return written, eris.Wrapf(err, "save %s table", step.suffix)
		}
		slog.Info("Table saved", "path", path, "rows", step.rows)
		written = append(written, path)
	}
	return written, nil
}
