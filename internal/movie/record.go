// Package movie defines the flat movie record and how it is built from API
// responses and serialized to table cells.
package movie

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/omdb"
)

// TimeLayout is the collection_date format.
const TimeLayout = "2006-01-02 15:04:05"

// Unknown fills title and release_year when the API omits them.
const Unknown = "Unknown"

// Column names of the wide table.
const (
	ColID             = "movie_id"
	ColTitle          = "title"
	ColReleaseYear    = "release_year"
	ColReleaseDate    = "release_date"
	ColRuntime        = "runtime"
	ColGenres         = "genres"
	ColDirectors      = "directors"
	ColCast           = "cast"
	ColCountries      = "countries"
	ColIMDbRating     = "imdb_rating"
	ColRTRating       = "rt_rating"
	ColCollectionDate = "collection_date"
)

// Columns is the canonical column order of the wide table.
var Columns = []string{
	ColID, ColTitle, ColReleaseYear, ColReleaseDate, ColRuntime,
	ColGenres, ColDirectors, ColCast, ColCountries,
	ColIMDbRating, ColRTRating, ColCollectionDate,
}

// ListColumns hold serialized string lists.
var ListColumns = []string{ColGenres, ColDirectors, ColCast, ColCountries}

// IsCanonical reports whether column is one of Columns.
func IsCanonical(column string) bool {
	for _, c := range Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Record is one row of the wide movie table.
type Record struct {
	ID          int
	Title       string
	ReleaseYear string
	ReleaseDate string
	Runtime     *int
	Genres      []string
	Directors   []string
	Cast        []string
	Countries   []string
	IMDbRating  string
	RTRating    string
	CollectedAt time.Time

	// Extra holds cells of non-canonical columns found in a loaded file.
	Extra map[string]string
}

// MissingRatings reports whether either rating is absent.
func (r Record) MissingRatings() bool {
	return r.IMDbRating == "" || r.RTRating == ""
}

// SetRatings overwrites both rating fields.
func (r *Record) SetRatings(ratings omdb.Ratings) {
	r.IMDbRating = ratings.IMDb
	r.RTRating = ratings.RottenTomatoes
}

// Label formats the record as "Title (Year)".
func (r Record) Label() string {
	return r.Title + " (" + r.ReleaseYear + ")"
}

// Field returns the serialized cell for column.
func (r Record) Field(column string) string {
	switch column {
	case ColID:
		return strconv.Itoa(r.ID)
	case ColTitle:
		return r.Title
	case ColReleaseYear:
		return r.ReleaseYear
	case ColReleaseDate:
		return r.ReleaseDate
	case ColRuntime:
		if r.Runtime == nil {
			return ""
		}
		return strconv.Itoa(*r.Runtime)
	case ColGenres:
		return EncodeList(r.Genres)
	case ColDirectors:
		return EncodeList(r.Directors)
	case ColCast:
		return EncodeList(r.Cast)
	case ColCountries:
		return EncodeList(r.Countries)
	case ColIMDbRating:
		return r.IMDbRating
	case ColRTRating:
		return r.RTRating
	case ColCollectionDate:
		if r.CollectedAt.IsZero() {
			return ""
		}
		return r.CollectedAt.Format(TimeLayout)
	default:
		return r.Extra[column]
	}
}

// SetField parses a serialized cell into the field for column. Unknown
// columns are kept in Extra.
func (r *Record) SetField(column, value string) error {
	var err error
	switch column {
	case ColID:
		r.ID, err = parseInt(value)
		if err != nil {
			return eris.Wrapf(err, "invalid %s %q", column, value)
		}
	case ColTitle:
		r.Title = value
	case ColReleaseYear:
		r.ReleaseYear = strings.TrimSuffix(value, ".0")
	case ColReleaseDate:
		r.ReleaseDate = nullable(value)
	case ColRuntime:
		if nullable(value) == "" {
			r.Runtime = nil
			return nil
		}
		n, err := parseInt(value)
		if err != nil {
			return eris.Wrapf(err, "invalid %s %q", column, value)
		}
		r.Runtime = &n
	case ColGenres, ColDirectors, ColCast, ColCountries:
		list, err := DecodeList(value)
		if err != nil {
			return eris.Wrapf(err, "invalid %s", column)
		}
		switch column {
		case ColGenres:
			r.Genres = list
		case ColDirectors:
			r.Directors = list
		case ColCast:
			r.Cast = list
		default:
			r.Countries = list
		}
	case ColIMDbRating:
		r.IMDbRating = nullable(value)
	case ColRTRating:
		r.RTRating = nullable(value)
	case ColCollectionDate:
		if nullable(value) == "" {
			r.CollectedAt = time.Time{}
			return nil
		}
		r.CollectedAt, err = time.ParseInLocation(TimeLayout, value, time.Local)
		if err != nil {
			return eris.Wrapf(err, "invalid %s %q", column, value)
		}
	default:
		if r.Extra == nil {
			r.Extra = map[string]string{}
		}
		r.Extra[column] = value
	}
	return nil
}

// parseInt accepts "603" as well as float renderings like "603.0".
func parseInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// nullable maps the null spellings written by spreadsheet tools to "".
func nullable(value string) string {
	switch strings.TrimSpace(value) {
	case "", "nan", "NaN", "None", "null", "N/A":
		return ""
	}
	return value
}
