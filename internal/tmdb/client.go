package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"movie-discovery-picker/internal/metrics"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
	defaultCacheTTL = time.Hour
	maxBodyBytes    = 4 << 20
)

// ErrUnavailable wraps transport failures and an open circuit breaker.
var ErrUnavailable = errors.New("tmdb unavailable")

// Client is the TMDB API client. Responses are cached by exact request.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	retry    RetryConfig
}

// Config configures a Client. Zero values fall back to defaults; a nil
// Cache uses an in-process MemoryCache.
type Config struct {
	APIKey     string
	BaseURL    string
	Language   string
	CacheTTL   time.Duration
	Timeout    time.Duration
	RateLimit  float64
	HTTPClient *http.Client
	Cache      Cache
	Retry      RetryConfig
}

// NewClient creates a new TMDB API client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = max(1, int(cfg.RateLimit))
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}

	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http:     httpClient,
		cache:    cache,
		cacheTTL: cacheTTL,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  newBreaker(),
		retry:    retry,
	}
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 4xx answers mean TMDB is up; only transport errors and 5xx trip it.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var catalogErr *CatalogError
			if errors.As(err, &catalogErr) {
				return catalogErr.Status < http.StatusInternalServerError
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				metrics.CatalogBreakerOpen.Set(1)
			} else {
				metrics.CatalogBreakerOpen.Set(0)
			}
		},
	})
}

// Query performs a GET against endpoint (e.g. "/discover/movie") and returns
// the raw response body. The API key and language are appended here and are
// not part of the cache key.
func (c *Client) Query(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	if query.Get("language") == "" {
		query.Set("language", c.language)
	}
	cacheKey := endpoint + "?" + query.Encode()

	if body, ok, err := c.cache.Get(ctx, cacheKey); err != nil {
		slog.Warn("catalog cache read failed", "error", err)
	} else if ok {
		metrics.CacheHitsTotal.Inc()
		return body, nil
	}
	metrics.CacheMissesTotal.Inc()

	query.Set("api_key", c.apiKey)
	reqURL := c.baseURL + endpoint + "?" + query.Encode()
	group := endpointGroup(endpoint)

	slog.Debug("fetching TMDB", "endpoint", endpoint)
	start := time.Now()

	var body []byte
	err := retryWithBackoff(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		body, err = c.breaker.Execute(func() ([]byte, error) {
			return c.doGet(ctx, reqURL)
		})
		return err
	})
	metrics.CatalogRequestDuration.WithLabelValues(group).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(group, "error").Inc()
		var catalogErr *CatalogError
		if !errors.As(err, &catalogErr) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}
	metrics.CatalogRequestsTotal.WithLabelValues(group, "ok").Inc()

	if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
		slog.Warn("catalog cache write failed", "error", err)
	}
	return body, nil
}

func (c *Client) doGet(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &CatalogError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// endpointGroup reduces an endpoint to its first path segment for metric labels.
func endpointGroup(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// ---- Client Methods ----

// Results runs a list endpoint and returns its results array.
func (c *Client) Results(ctx context.Context, endpoint string, params url.Values) ([]Item, error) {
	body, err := c.Query(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	list, err := decode[ListResponse](body, endpoint)
	if err != nil {
		return nil, err
	}
	return list.Results, nil
}

// SearchMulti searches movies, series and people in one call.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]Item, error) {
	return c.Results(ctx, "/search/multi", url.Values{
		"query":         {strings.TrimSpace(query)},
		"include_adult": {"false"},
	})
}

// Discover runs /discover/{media} with the given filters.
func (c *Client) Discover(ctx context.Context, media string, params url.Values) ([]Item, error) {
	return c.Results(ctx, "/discover/"+media, params)
}

// Trending returns the weekly trending list for media.
func (c *Client) Trending(ctx context.Context, media string) ([]Item, error) {
	return c.Results(ctx, "/trending/"+media+"/week", nil)
}

// Recommendations returns TMDB's recommendations for a title.
func (c *Client) Recommendations(ctx context.Context, media string, id int) ([]Item, error) {
	return c.Results(ctx, "/"+media+"/"+strconv.Itoa(id)+"/recommendations", nil)
}

// Detail fetches a title with videos, credits and recommendations appended.
func (c *Client) Detail(ctx context.Context, media string, id int) (*Detail, error) {
	body, err := c.Query(ctx, "/"+media+"/"+strconv.Itoa(id), url.Values{
		"append_to_response": {"videos,credits,recommendations"},
	})
	if err != nil {
		return nil, err
	}
	return decode[Detail](body, "detail")
}

// Genres fetches the genre list for media.
func (c *Client) Genres(ctx context.Context, media string) ([]Genre, error) {
	body, err := c.Query(ctx, "/genre/"+media+"/list", nil)
	if err != nil {
		return nil, err
	}
	list, err := decode[GenreListResponse](body, "genres")
	if err != nil {
		return nil, err
	}
	return list.Genres, nil
}
