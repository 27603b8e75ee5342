package containersearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sony/gobreaker"
	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/metrics"
	"github.com/wms-platform/dropzone-service/pkg/resilience"
	"github.com/wms-platform/dropzone-service/pkg/tracing"
)

// Request constants of the container-search endpoint
const (
	DefaultEndpointPath = "/api/container/search"
	DefaultLocale       = "pl-PL"
	DefaultTimeout      = 20 * time.Second
	searchMode          = "SEARCH"
	maxErrorBodyBytes   = 4 << 10
)

// Search outcomes used as metric labels
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeHTTP     = "http_error"
	OutcomeNetwork  = "network_error"
	OutcomeParse    = "parse_error"
	OutcomeRejected = "circuit_open"
)

// CookieSource supplies the ambient session cookie header
type CookieSource interface {
	Cookie() string
}

// Config holds container-search client configuration
type Config struct {
	BaseURL        string
	EndpointPath   string
	Locale         string
	Timeout        time.Duration
	CircuitBreaker *resilience.CircuitBreakerConfig
}

// DefaultConfig returns the default client configuration for baseURL
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:        baseURL,
		EndpointPath:   DefaultEndpointPath,
		Locale:         DefaultLocale,
		Timeout:        DefaultTimeout,
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig("container-search"),
	}
}

// searchRequest is the fixed request body of the endpoint
type searchRequest struct {
	ContainerID      string   `json:"containerId"`
	WarehouseID      string   `json:"warehouseId"`
	Associate        string   `json:"associate"`
	IncludeChildren  bool     `json:"includeChildren"`
	Mode             string   `json:"mode"`
	Locale           string   `json:"locale"`
	MovingContainers []string `json:"movingContainers"`
}

// Client performs container searches. It implements domain.ContainerSearcher.
type Client struct {
	url        string
	locale     string
	httpClient *http.Client
	cookies    CookieSource
	breaker    *resilience.CircuitBreaker
	validator  *responseValidator
	logger     *logging.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithMetrics records search metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer used for search spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// NewClient creates a new container-search client
func NewClient(config *Config, cookies CookieSource, logger *logging.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, errors.New("container search base URL is required")
	}

	validator, err := newResponseValidator()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.NewNop()
	}

	endpoint := config.EndpointPath
	if endpoint == "" {
		endpoint = DefaultEndpointPath
	}
	locale := config.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		url:        strings.TrimRight(config.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/"),
		locale:     locale,
		httpClient: &http.Client{Timeout: timeout},
		cookies:    cookies,
		validator:  validator,
		logger:     logger.WithComponent("container-search"),
		tracer:     otel.Tracer("container-search"),
	}
	for _, opt := range opts {
		opt(c)
	}

	breakerConfig := config.CircuitBreaker
	if breakerConfig == nil {
		breakerConfig = resilience.DefaultCircuitBreakerConfig("container-search")
	}
	cfg := *breakerConfig
	cfg.IsSuccessful = countsAsSuccess
	cfg.OnStateChange = c.onBreakerStateChange
	c.breaker = resilience.NewCircuitBreaker(&cfg, c.logger.Logger)

	return c, nil
}

// countsAsSuccess keeps client-side answers (including the empty-zone 400)
// and caller cancellation from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var searchErr *domain.SearchError
	if errors.As(err, &searchErr) && searchErr.Kind == domain.SearchErrorHTTP {
		return searchErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

func (c *Client) onBreakerStateChange(name string, from, to gobreaker.State) {
	if c.metrics == nil {
		return
	}
	c.metrics.SetCircuitBreakerState(name, resilience.StateValue(to))
	if to == gobreaker.StateOpen {
		c.metrics.RecordCircuitBreakerTrip(name)
	}
}

// Search performs one POST for containerID using the session snapshot
func (c *Client) Search(ctx context.Context, containerID string, session domain.SessionContext, opts domain.SearchOptions) (*domain.ContainerRecord, error) {
	ctx, span := c.tracer.Start(ctx, "containersearch.Search",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.ContainerSearchSpanAttributes(containerID, session.ZoneID)...),
	)

	if c.metrics != nil {
		done := c.metrics.ContainerSearchStarted()
		defer done()
	}

	start := time.Now()
	status := 0
	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		record, code, err := c.do(ctx, containerID, session)
		status = code
		return record, err
	})
	duration := time.Since(start)

	if err != nil && errors.Is(err, resilience.ErrCircuitOpen) {
		err = domain.NewNetworkError(containerID, err)
		c.recordOutcome(OutcomeRejected, duration)
	} else {
		c.recordOutcome(outcomeOf(err), duration)
	}

	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil && domain.IsEmptyContainerError(err) {
		// The empty-zone answer is data, not a failed span.
		tracing.EndSpan(span, nil)
	} else {
		tracing.EndSpan(span, err)
	}

	if !opts.Silent {
		c.logger.ContainerSearch(ctx, containerID, status, duration, err)
	}

	if err != nil {
		return nil, err
	}
	return result.(*domain.ContainerRecord), nil
}

func (c *Client) do(ctx context.Context, containerID string, session domain.SessionContext) (*domain.ContainerRecord, int, error) {
	body, err := json.Marshal(searchRequest{
		ContainerID:      containerID,
		WarehouseID:      session.ZoneID,
		Associate:        session.OperatorID,
		IncludeChildren:  true,
		Mode:             searchMode,
		Locale:           c.locale,
		MovingContainers: []string{},
	})
	if err != nil {
		return nil, 0, domain.NewNetworkError(containerID, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, domain.NewNetworkError(containerID, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cookies != nil {
		if cookie := c.cookies.Cookie(); cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, domain.NewNetworkError(containerID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, domain.NewHTTPError(containerID, resp.StatusCode, upstreamMessage(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, domain.NewNetworkError(containerID, fmt.Errorf("failed to read response: %w", err))
	}

	if err := c.validator.Validate(raw); err != nil {
		return nil, resp.StatusCode, domain.NewParseError(containerID, err)
	}

	var record domain.ContainerRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, resp.StatusCode, domain.NewParseError(containerID, fmt.Errorf("failed to decode response: %w", err))
	}

	return &record, resp.StatusCode, nil
}

func (c *Client) recordOutcome(outcome string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordContainerSearch(outcome, duration)
	}
}

// upstreamMessage extracts a "message" or "error" field from an error body
func upstreamMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if domain.IsEmptyContainerError(err) {
		return OutcomeEmpty
	}
	switch domain.SearchErrorKindOf(err) {
	case domain.SearchErrorHTTP:
		return OutcomeHTTP
	case domain.SearchErrorParse:
		return OutcomeParse
	default:
		return OutcomeNetwork
	}
}

// BreakerStatus exposes the circuit breaker state for readiness checks
func (c *Client) BreakerStatus() resilience.CircuitBreakerStatus {
	return c.breaker.Status()
}
