package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinefav/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// HeaderRequestID carries a per-request uuid for correlating client and service logs.
const HeaderRequestID = "X-Request-ID"

// Middleware wraps an [http.RoundTripper] and returns a new one with additional behavior.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to [http.RoundTripper].
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with the given middleware.
//
// Middleware is applied in reverse order (last listed wraps first), so the first listed sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			wrapped = mws[i](wrapped)
		}
	}
	return wrapped
}

// WithRequestID stamps X-Request-ID and a permissive Accept header on requests that lack them.
func WithRequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(HeaderRequestID) == "" || r.Header.Get("Accept") == "" {
				r = r.Clone(r.Context())
				if r.Header.Get(HeaderRequestID) == "" {
					r.Header.Set(HeaderRequestID, shared.GenerateID())
				}
				if r.Header.Get("Accept") == "" {
					r.Header.Set("Accept", "*/*")
				}
			}
			return next.RoundTrip(r)
		})
	}
}

// WithLogging logs every exchange at debug level and transport failures at warn level.
func WithLogging(logger *log.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if logger == nil {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			kv := []any{"method", r.Method, "path", r.URL.Path, "request_id", r.Header.Get(HeaderRequestID), "elapsed", time.Since(start)}
			if err != nil {
				logger.Warn("request failed", append(kv, "err", err)...)
				return resp, err
			}
			logger.Debug("request", append(kv, "status", resp.StatusCode)...)
			return resp, nil
		})
	}
}

// WithRateLimit blocks each request until limiter admits it. A nil limiter disables limiting.
func WithRateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if limiter == nil {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
			return next.RoundTrip(r)
		})
	}
}

// WithBearer authorizes requests with the token held by creds via [oauth2.Transport].
func WithBearer(creds CredentialProvider) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &oauth2.Transport{Source: NewTokenSource(creds), Base: next}
	}
}

// NewLimiter builds a limiter admitting rps requests per second with a burst of one.
// A non-positive rps returns nil (unlimited).
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// tokenSource adapts a [CredentialProvider] to [oauth2.TokenSource].
//
// The provider is read on every request; it is not wrapped in [oauth2.ReuseTokenSource].
type tokenSource struct {
	creds CredentialProvider
}

// NewTokenSource returns an [oauth2.TokenSource] backed by creds.
func NewTokenSource(creds CredentialProvider) oauth2.TokenSource {
	return &tokenSource{creds: creds}
}

// Token implements [oauth2.TokenSource].
func (s *tokenSource) Token() (*oauth2.Token, error) {
	if s.creds == nil {
		return nil, shared.ErrNotAuthenticated
	}

	raw, err := s.creds.Token(context.Background())
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, shared.ErrNotAuthenticated
	}

	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if claims, err := shared.InspectToken(raw); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}
