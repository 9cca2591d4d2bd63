package tmdb

import (
	"fmt"

	"github.com/lepinkainen/flicklog/internal/cache"
)

// cachedSearchResults wraps a SearchResult slice for caching.
type cachedSearchResults struct {
	Results []SearchResult `json:"results"`
}

// cachedMovieDetails wraps a movie details map for caching.
type cachedMovieDetails struct {
	Details map[string]any `json:"details"`
}

// Cache key format: movies_{normalized_query}_{year}_{limit}
func searchCacheKey(query string, year, limit int) string {
	return fmt.Sprintf("movies_%s_%d_%d", cache.NormalizeKey(query), year, limit)
}

// Cache key format: movie_{id}
func detailsCacheKey(movieID int) string {
	return fmt.Sprintf("movie_%d", movieID)
}
