package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cinelist/movie"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.omdbapi.com/"
	defaultTimeout = 10 * time.Second
)

var ErrMissingAPIKey = errors.New("omdb: api key is required")

type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RatePerSec caps outbound requests. Zero or less disables the limit.
	RatePerSec float64
}

// StatusError is returned when OMDb answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("omdb: unexpected status %d from %s", e.StatusCode, e.URL)
}

// Client implements movie.Provider over the OMDb HTTP API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("omdb: invalid base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: limiter,
	}, nil
}

// Fetch loads a single title by imdb id. A negative answer from OMDb is
// reported as movie.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, imdbID string) (movie.Movie, error) {
	var p payload
	if err := c.get(ctx, url.Values{"i": {imdbID}}, &p); err != nil {
		return movie.Movie{}, err
	}
	if !p.ok() {
		return movie.Movie{}, movie.ErrNotFound
	}
	return p.toMovie(), nil
}

// Search returns the imdb ids of the movies matching query, in OMDb order.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	var p searchPayload
	if err := c.get(ctx, url.Values{"s": {query}, "type": {"movie"}}, &p); err != nil {
		return nil, err
	}
	if !p.ok() {
		return nil, movie.ErrNotFound
	}

	ids := make([]string, 0, len(p.Search))
	for _, hit := range p.Search {
		if hit.ImdbID != "" {
			ids = append(ids, hit.ImdbID)
		}
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("omdb: rate limit wait: %w", err)
	}

	u, _ := url.Parse(c.baseURL)
	params.Set("apikey", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("omdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error carries the full url, key included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("omdb: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		// never leak the key into logs
		u.RawQuery = ""
		return &StatusError{StatusCode: resp.StatusCode, URL: u.String()}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("omdb: decode response: %w", err)
	}
	return nil
}
