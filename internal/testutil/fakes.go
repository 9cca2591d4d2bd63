package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Movie describes a movie served by the fake TMDB and OMDb servers.
type Movie struct {
	ID          int
	Title       string
	ReleaseDate string
	Runtime     int
	Genres      []string
	Directors   []string
	Cast        []string
	Countries   []string
}

// Details returns the movie as a TMDB detail document with credits embedded.
func (m Movie) Details() map[string]any {
	genres := make([]any, 0, len(m.Genres))
	for i, g := range m.Genres {
		genres = append(genres, map[string]any{"id": float64(i + 1), "name": g})
	}
	countries := make([]any, 0, len(m.Countries))
	for _, c := range m.Countries {
		countries = append(countries, map[string]any{"iso_3166_1": "XX", "name": c})
	}
	crew := make([]any, 0, len(m.Directors)+1)
	crew = append(crew, map[string]any{"name": "Some Producer", "job": "Producer"})
	for _, d := range m.Directors {
		crew = append(crew, map[string]any{"name": d, "job": "Director"})
	}
	cast := make([]any, 0, len(m.Cast))
	for i, c := range m.Cast {
		cast = append(cast, map[string]any{"name": c, "order": float64(i)})
	}

	details := map[string]any{
		"id":                   float64(m.ID),
		"title":                m.Title,
		"release_date":         m.ReleaseDate,
		"genres":               genres,
		"production_countries": countries,
		"credits":              map[string]any{"cast": cast, "crew": crew},
	}
	if m.Runtime > 0 {
		details["runtime"] = float64(m.Runtime)
	}
	return details
}

// FakeTMDB is an httptest server answering /search/movie and /movie/{id}.
type FakeTMDB struct {
	Server *httptest.Server

	mu       sync.Mutex
	movies   []Movie
	requests map[string]int
}

// NewFakeTMDB starts a fake TMDB server serving movies. It is closed when the
// test completes.
func NewFakeTMDB(t *testing.T, movies ...Movie) *FakeTMDB {
	t.Helper()

	f := &FakeTMDB{movies: movies, requests: map[string]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the server.
func (f *FakeTMDB) URL() string {
	return f.Server.URL
}

// Requests returns how many requests hit the given path prefix.
func (f *FakeTMDB) Requests(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for path, n := range f.requests {
		if strings.HasPrefix(path, prefix) {
			total += n
		}
	}
	return total
}

func (f *FakeTMDB) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests[r.URL.Path]++
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/search/movie":
		query := strings.ToLower(r.URL.Query().Get("query"))
		results := []map[string]any{}
		for _, m := range f.movies {
			if strings.Contains(strings.ToLower(m.Title), query) {
				results = append(results, map[string]any{
					"id":           m.ID,
					"title":        m.Title,
					"release_date": m.ReleaseDate,
				})
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": 1, "results": results})
	case strings.HasPrefix(r.URL.Path, "/movie/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/movie/"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"status_message": "not found"})
			return
		}
		for _, m := range f.movies {
			if m.ID == id {
				writeJSON(w, http.StatusOK, m.Details())
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"status_message": "The resource you requested could not be found."})
	default:
		http.NotFound(w, r)
	}
}

// OMDbRatings is the ratings payload served for one title.
type OMDbRatings struct {
	IMDb           string
	RottenTomatoes string
}

// FakeOMDb is an httptest server answering OMDb title lookups.
type FakeOMDb struct {
	Server *httptest.Server

	mu          sync.Mutex
	ratings     map[string]OMDbRatings
	rateLimited bool
	requests    int
}

// NewFakeOMDb starts a fake OMDb server keyed by lowercase title.
func NewFakeOMDb(t *testing.T, ratings map[string]OMDbRatings) *FakeOMDb {
	t.Helper()

	normalized := make(map[string]OMDbRatings, len(ratings))
	for title, r := range ratings {
		normalized[strings.ToLower(title)] = r
	}
	f := &FakeOMDb{ratings: normalized}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the server.
func (f *FakeOMDb) URL() string {
	return f.Server.URL
}

// SetRateLimited makes every following request answer with the quota error.
func (f *FakeOMDb) SetRateLimited(limited bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateLimited = limited
}

// SetRatings changes what the server answers for title.
func (f *FakeOMDb) SetRatings(title string, r OMDbRatings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[strings.ToLower(title)] = r
}

// Requests returns the number of lookups served.
func (f *FakeOMDb) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeOMDb) handle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("t")

	f.mu.Lock()
	f.requests++
	limited := f.rateLimited
	rating, ok := f.ratings[strings.ToLower(title)]
	f.mu.Unlock()

	if limited {
		writeJSON(w, http.StatusOK, map[string]any{"Response": "False", "Error": "Request limit reached!"})
		return
	}

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"Response": "False", "Error": "Movie not found!"})
		return
	}

	sources := []map[string]string{
		{"Source": "Internet Movie Database", "Value": rating.IMDb + "/10"},
	}
	if rating.RottenTomatoes != "" {
		sources = append(sources, map[string]string{"Source": "Rotten Tomatoes", "Value": rating.RottenTomatoes})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"Title":      title,
		"Year":       r.URL.Query().Get("y"),
		"imdbRating": rating.IMDb,
		"Ratings":    sources,
		"Response":   "True",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
