package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lepinkainen/flicklog/internal/cache"
)

// SearchMovies searches movies by title. Results keep the API ranking; year > 0
// is passed as a hint and limit <= 0 returns every result of the first page.
// Non-empty result lists are cached when the client has a cache.
func (c *Client) SearchMovies(ctx context.Context, query string, year int, limit int) ([]SearchResult, error) {
	result, _, err := cache.GetOrFetch(c.cache, cache.TMDBTable, searchCacheKey(query, year, limit), func() (*cachedSearchResults, error) {
		results, err := c.searchMovies(ctx, query, year, limit)
		if err != nil {
			return nil, err
		}
		return &cachedSearchResults{Results: results}, nil
	}, func(r *cachedSearchResults) bool {
		return r != nil && len(r.Results) > 0
	})
	if err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *Client) searchMovies(ctx context.Context, query string, year int, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	endpoint := fmt.Sprintf("%s/search/movie?%s", c.baseURL, params.Encode())

	var response struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	results := response.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []SearchResult{}
	}
	return results, nil
}
