// Package arcgis provides a small ArcGIS REST client: portal token
// generation and feature layer queries.
package arcgis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sigab-tools/rotacio-diff/pkg/cache"
)

// Prometheus metrics for ArcGIS requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcgis_requests_total",
		Help: "Total ArcGIS REST requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arcgis_request_duration_seconds",
		Help:    "ArcGIS REST request duration in seconds by operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcgis_errors_total",
		Help: "Total ArcGIS errors by class",
	}, []string{"class"})
)

// TokenCache stores portal tokens between runs. *cache.Manager implements it.
type TokenCache interface {
	Get(ctx context.Context, key cache.Key) (*cache.Entry, error)
	Set(ctx context.Context, key cache.Key, entry *cache.Entry) error
}

// Client talks to ArcGIS portals and feature services.
type Client struct {
	httpClient *http.Client
	tokens     TokenCache
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Timeout for a single HTTP request
	Timeout time.Duration

	// TokenExpiration is the token lifetime requested from the portal
	TokenExpiration time.Duration

	// Referer the token is bound to; defaults to the portal URL
	Referer string

	// TokenCache is optional; nil means a fresh login on every run
	TokenCache TokenCache
}

// DefaultConfig returns a default configuration without token caching.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:       userAgent,
		Timeout:         30 * time.Second,
		TokenExpiration: 60 * time.Minute,
	}
}

// New creates a new ArcGIS client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	if cfg.TokenExpiration < time.Minute {
		return nil, fmt.Errorf("token_expiration must be >= 1m (got %s)", cfg.TokenExpiration)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tokens: cfg.TokenCache,
		config: cfg,
		logger: log.With().Str("component", "arcgis").Logger(),
	}, nil
}

// errorEnvelope is the error object ArcGIS embeds in JSON responses.
type errorEnvelope struct {
	Error *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

// Do executes req and decodes the JSON response into out (which may be nil).
// Error objects in the response body are returned as *ServiceError even when
// the HTTP status is 200. Nothing is retried.
func (c *Client) Do(req *http.Request, out any) error {
	operation := path.Base(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("operation", operation).
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Msg("Executing ArcGIS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", operation).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(operation, "network_error").Inc()
		return &ServiceError{
			ErrorClass: ErrorClassNetwork,
			Message:    fmt.Sprintf("%s %s", req.Method, operation),
			Err:        err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(operation, "network_error").Inc()
		return fmt.Errorf("read %s response: %w", operation, err)
	}

	var envelope errorEnvelope
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode >= 400 || (decodeErr == nil && envelope.Error != nil) {
		svcErr := &ServiceError{
			StatusCode: resp.StatusCode,
			Code:       resp.StatusCode,
			Message:    resp.Status,
		}
		if decodeErr == nil && envelope.Error != nil {
			svcErr.Message = envelope.Error.Message
			svcErr.Details = envelope.Error.Details
			if envelope.Error.Code != 0 {
				svcErr.Code = envelope.Error.Code
			}
		}
		svcErr.ErrorClass = classifyCode(svcErr.Code)

		errorsTotal.WithLabelValues(string(svcErr.ErrorClass)).Inc()
		requestsTotal.WithLabelValues(operation, strconv.Itoa(svcErr.Code)).Inc()

		c.logger.Warn().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Int("code", svcErr.Code).
			Str("error_class", string(svcErr.ErrorClass)).
			Msg("ArcGIS request error")

		return svcErr
	}

	if decodeErr != nil {
		requestsTotal.WithLabelValues(operation, "invalid_body").Inc()
		return fmt.Errorf("decode %s response: %w", operation, decodeErr)
	}

	requestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
