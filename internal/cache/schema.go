package cache

// All cache tables share one layout keyed by cache_key.

// TMDBTable caches TMDB search results and movie details.
const TMDBTable = "tmdb_cache"

// OMDBTable caches OMDb title/year lookups, including "not found" answers.
const OMDBTable = "omdb_cache"

const tableSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_cached_at ON %[1]s(cached_at);
`

// Tables lists every cache table created by Open.
var Tables = []string{TMDBTable, OMDBTable}

// SourceTables maps the user-facing source names to their tables.
var SourceTables = map[string]string{
	"tmdb": TMDBTable,
	"omdb": OMDBTable,
}

func validTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}
