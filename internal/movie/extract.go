package movie

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/lepinkainen/flicklog/internal/omdb"
)

// DefaultCastLimit is how many cast members are kept per movie.
const DefaultCastLimit = 10

// ExtractOptions controls Extract.
type ExtractOptions struct {
	// CastLimit caps the cast list; <= 0 means DefaultCastLimit.
	CastLimit int
	// Now stamps collection_date; nil means time.Now.
	Now func() time.Time
}

// Extract flattens a TMDB detail document (with credits appended) and an
// optional OMDb response into a Record. A nil ratings response leaves both
// ratings absent.
func Extract(details map[string]any, ratings *omdb.Response, opts ExtractOptions) Record {
	castLimit := opts.CastLimit
	if castLimit <= 0 {
		castLimit = DefaultCastLimit
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rec := Record{
		Title:       Unknown,
		ReleaseYear: Unknown,
		CollectedAt: now().Truncate(time.Second),
	}

	if id, ok := getInt(details, "id"); ok {
		rec.ID = id
	}
	if title, ok := getString(details, "title"); ok {
		rec.Title = title
	}
	if date, ok := getString(details, "release_date"); ok && date != "" {
		rec.ReleaseDate = date
		if len(date) >= 4 {
			rec.ReleaseYear = date[:4]
		} else {
			rec.ReleaseYear = date
		}
	}
	if runtime, ok := getInt(details, "runtime"); ok {
		rec.Runtime = &runtime
	}

	rec.Genres = names(getSlice(details, "genres"), nil, -1)
	rec.Countries = names(getSlice(details, "production_countries"), nil, -1)

	credits, _ := details["credits"].(map[string]any)
	rec.Directors = names(getSlice(credits, "crew"), func(m map[string]any) bool {
		job, _ := getString(m, "job")
		return job == "Director"
	}, -1)
	rec.Cast = names(getSlice(credits, "cast"), nil, castLimit)

	rec.SetRatings(omdb.ExtractRatings(ratings))
	return rec
}

// names collects the "name" field of each object in items that passes keep,
// stopping after limit entries when limit >= 0.
func names(items []any, keep func(map[string]any) bool, limit int) []string {
	out := []string{}
	for _, item := range items {
		if limit >= 0 && len(out) >= limit {
			break
		}
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if keep != nil && !keep(m) {
			continue
		}
		if name, ok := getString(m, "name"); ok {
			out = append(out, name)
		}
	}
	return out
}

func getSlice(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	s, _ := m[key].([]any)
	return s
}

func getInt(m map[string]any, key string) (int, bool) {
	val, ok := m[key]
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		i, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func getString(m map[string]any, key string) (string, bool) {
	val, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}
