// Package ratelimit throttles outgoing API requests.
package ratelimit

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Limiter is a named token bucket shared by all requests to one API.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a limiter allowing requestsPerSecond with an equal burst.
// A non-positive rate disables throttling.
func New(name string, requestsPerSecond int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0), name: name}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		name:    name,
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "rate limit wait for %s", l.name)
	}
	return nil
}

// Name returns the API name the limiter guards.
func (l *Limiter) Name() string {
	return l.name
}
