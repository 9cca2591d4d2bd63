package tmdb

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lepinkainen/flicklog/internal/cache"
)

// GetMovieDetails fetches the full detail document for a movie with its
// credits embedded. The raw map is returned for the record extractor.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int) (map[string]any, error) {
	result, _, err := cache.GetOrFetch(c.cache, cache.TMDBTable, detailsCacheKey(movieID), func() (*cachedMovieDetails, error) {
		details, err := c.getMovieDetails(ctx, movieID)
		if err != nil {
			return nil, err
		}
		return &cachedMovieDetails{Details: details}, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return result.Details, nil
}

func (c *Client) getMovieDetails(ctx context.Context, movieID int) (map[string]any, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "credits")
	endpoint := fmt.Sprintf("%s/movie/%d?%s", c.baseURL, movieID, params.Encode())

	var details map[string]any
	if err := c.getJSON(ctx, endpoint, &details); err != nil {
		return nil, err
	}
	return details, nil
}
