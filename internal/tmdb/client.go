// Package tmdb is a client for the parts of The Movie Database API used to
// populate the catalog.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/metrics"
	"github.com/mantonx/moviecat/internal/types"
)

// maxBodySize bounds a single API response
const maxBodySize = 10 << 20

// APIError is a non-200 response from the API
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tmdb %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tmdb %s: status %d", e.Endpoint, e.StatusCode)
}

// Is classifies every API error as an upstream failure
func (e *APIError) Is(target error) bool {
	return target == types.ErrUpstream
}

// Client calls the TMDB API. Calls are rate limited and pass through a
// circuit breaker that opens after consecutive failures.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	timeout  time.Duration

	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     hclog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client from cfg
func NewClient(cfg config.TMDBConfig, log hclog.Logger, opts ...Option) *Client {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	log = log.Named("tmdb")

	c := &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		timeout:  cfg.RequestTimeout,
		http:     &http.Client{},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		log:      log,
	}

	threshold := cfg.Breaker.FailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 4xx responses other than 429 do not count as failures
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Genres returns the genre names keyed by id
func (c *Client) Genres(ctx context.Context) (map[int]string, error) {
	var list genreList
	if err := c.get(ctx, "genres", "genre/movie/list", nil, &list); err != nil {
		return nil, err
	}
	genres := make(map[int]string, len(list.Genres))
	for _, g := range list.Genres {
		genres[g.ID] = g.Name
	}
	return genres, nil
}

// Discover returns one page of movies sorted by popularity
func (c *Client) Discover(ctx context.Context, page int) (*DiscoverPage, error) {
	params := url.Values{
		"sort_by":       {"popularity.desc"},
		"include_adult": {"false"},
		"page":          {strconv.Itoa(page)},
	}
	var result DiscoverPage
	if err := c.get(ctx, "discover", "discover/movie", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieDetails returns a movie with its credits
func (c *Client) MovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	params := url.Values{"append_to_response": {"credits"}}
	var result MovieDetails
	if err := c.get(ctx, "movie", "movie/"+strconv.Itoa(id), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Collection returns a collection and its parts
func (c *Client) Collection(ctx context.Context, id int) (*Collection, error) {
	var result Collection
	if err := c.get(ctx, "collection", "collection/"+strconv.Itoa(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// State returns the circuit breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint, path, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.TMDBRequests.WithLabelValues(endpoint, "open").Inc()
			return types.NewUpstreamError("metadata provider unavailable", err)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tmdb %s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", c.apiKey)
	if c.language != "" {
		query.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.TMDBRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.TMDBRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("tmdb %s: read response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
		var status struct {
			Message string `json:"status_message"`
		}
		if json.Unmarshal(body, &status) == nil {
			apiErr.Message = status.Message
		}
		c.log.Debug("request failed", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, apiErr
	}
	return body, nil
}
