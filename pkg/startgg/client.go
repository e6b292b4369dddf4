// Package startgg provides the start.gg GraphQL client with retry,
// response caching, and error classification.
package startgg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeahokpal/tuesday-trials-grid/pkg/cache"
)

// DefaultEndpoint is the public start.gg GraphQL endpoint.
const DefaultEndpoint = "https://api.start.gg/gql/alpha"

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "startgg_requests_total",
		Help: "Total start.gg requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "startgg_request_duration_seconds",
		Help:    "start.gg request duration in seconds by operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "startgg_errors_total",
		Help: "Total start.gg errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is the start.gg GraphQL client.
type Client struct {
	httpClient *http.Client
	cache      *cache.Cache
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Token is the start.gg bearer credential (REQUIRED).
	Token string

	// Endpoint overrides the GraphQL endpoint (tests, proxies).
	Endpoint string

	// TournamentSearch narrows the Tournaments query on the remote side.
	// The ingestion stage applies its own name filter on top of this.
	TournamentSearch string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry behavior for transport-level failures.
	Retry RetryConfig

	// Redis enables response caching when set; nil disables it.
	Redis *redis.Client

	// CacheTTL is how long cached responses stay valid.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(token string) Config {
	return Config{
		Token:    token,
		Endpoint: DefaultEndpoint,
		Timeout:  30 * time.Second,
		Retry:    DefaultRetryConfig(),
		CacheTTL: 10 * time.Minute,
	}
}

// New creates a new start.gg client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bearer token is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	logger := log.With().Str("component", "startgg-client").Logger()

	var responseCache *cache.Cache
	if cfg.Redis != nil {
		responseCache = cache.New(cfg.Redis, cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  responseCache,
		config: cfg,
		logger: logger,
	}, nil
}

// request is the GraphQL request envelope.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// response is the GraphQL response envelope.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do executes one GraphQL operation and returns the raw data payload.
//
// Transport failures, 5xx and 429 responses are retried with backoff; other
// 4xx responses are not. An error payload in an otherwise successful response
// is returned as *QueryError and never retried.
func (c *Client) Do(ctx context.Context, operation, query string, variables map[string]any) (json.RawMessage, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	key := cache.Key{Operation: operation, Variables: variables}
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, key); err == nil {
			c.logger.Debug().
				Str("operation", operation).
				Msg("Response served from cache")
			requestsTotal.WithLabelValues(operation, "cache_hit").Inc()
			return data, nil
		} else if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("operation", operation).Msg("Cache get error")
		}
	}

	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	c.logger.Debug().
		Str("operation", operation).
		Msg("Executing start.gg request")

	var envelope response
	retryErr := retryWithBackoff(ctx, c.config.Retry, func() (ErrorClass, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
		if err != nil {
			return ErrorClassClient, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("operation", operation).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(operation, "network_error").Inc()
			return ErrorClassNetwork, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			errClass := classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(operation, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("operation", operation).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("start.gg request error")

			return errClass, &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return ErrorClassNetwork, fmt.Errorf("read response body: %w", err)
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			requestsTotal.WithLabelValues(operation, "bad_payload").Inc()
			return ErrorClassClient, fmt.Errorf("decode response: %w", err)
		}

		requestsTotal.WithLabelValues(operation, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return "", nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	if len(envelope.Errors) > 0 {
		return nil, &QueryError{Operation: operation, Message: envelope.Errors[0].Message}
	}

	if c.cache != nil && envelope.Data != nil {
		if err := c.cache.Set(ctx, key, envelope.Data); err != nil {
			c.logger.Warn().Err(err).Str("operation", operation).Msg("Failed to cache response")
		}
	}

	return envelope.Data, nil
}

// classifyStatus categorizes an HTTP status for observability and retry.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
