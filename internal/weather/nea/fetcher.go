package nea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/nea-sg-weather/internal/common"
	"github.com/i474232898/nea-sg-weather/internal/metrics"
	"github.com/i474232898/nea-sg-weather/internal/weather"
)

// MinPrimaryLength is the size a primary response must exceed to be used. Shorter
// bodies are error or empty payloads and trigger the fallback. The size is the byte
// length of the body after json.Compact, so upstream whitespace never counts and a
// body of up to 120 compact bytes falls back.
const MinPrimaryLength = 120

var (
	// ErrUnexpectedStatus is returned for any non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrShape is returned when a payload is not JSON or misses expected keys.
	ErrShape = errors.New("unexpected payload shape")
	// ErrCircuitOpen is returned when the endpoint's circuit breaker rejects the call.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrNoEndpoint is returned for a metric without a configured endpoint.
	ErrNoEndpoint = errors.New("no endpoint configured")
)

// Parser turns one dataset's primary or secondary payload into its normalized reading.
// ParseSecondary receives nil when the primary was insufficient and no secondary exists.
type Parser interface {
	ParsePrimary(body []byte) error
	ParseSecondary(body []byte) error
}

// Fetcher performs the primary/secondary fetch protocol shared by every dataset.
// It never retries; a failed call fails the cycle.
type Fetcher struct {
	client    *http.Client
	endpoints map[weather.Metric]EndpointPair
	headers   map[string]string
	breakers  map[weather.Metric]*gobreaker.CircuitBreaker
	metrics   *metrics.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithEndpoints replaces the endpoint table.
func WithEndpoints(endpoints map[weather.Metric]EndpointPair) FetcherOption {
	return func(f *Fetcher) { f.endpoints = endpoints }
}

// WithHeaders replaces the request headers.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) { f.headers = headers }
}

// WithMetrics records request and fallback counters on c.
func WithMetrics(c *metrics.Collector) FetcherOption {
	return func(f *Fetcher) { f.metrics = c }
}

// WithClock overrides the time source used for query timestamps and date labels.
func WithClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher creates a Fetcher with the default endpoints and headers.
func NewFetcher(client *http.Client, logger *zap.Logger, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		client:    client,
		endpoints: DefaultEndpoints(),
		headers:   DefaultHeaders(),
		logger:    logger.Named("nea"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.breakers = make(map[weather.Metric]*gobreaker.CircuitBreaker, len(f.endpoints))
	for m := range f.endpoints {
		f.breakers[m] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        string(m),
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		})
	}
	return f
}

// Now returns the fetcher's current time.
func (f *Fetcher) Now() time.Time {
	return f.now()
}

// Run fetches the metric's primary endpoint and hands a sufficient body to
// p.ParsePrimary. Otherwise the secondary endpoint, if any, is fetched and its
// body handed to p.ParseSecondary. The returned source says which parse ran.
func (f *Fetcher) Run(ctx context.Context, metric weather.Metric, p Parser) (weather.Source, error) {
	pair, ok := f.endpoints[metric]
	if !ok || pair.Primary == "" {
		return "", fmt.Errorf("%w: %s", ErrNoEndpoint, metric)
	}

	now := f.now()
	primaryURL, err := url.Parse(pair.Primary)
	if err != nil {
		return "", fmt.Errorf("invalid primary endpoint for %s: %w", metric, err)
	}
	params := primaryURL.Query()
	params.Set("date_time", now.In(common.Singapore).Truncate(time.Second).Format(time.RFC3339))
	primaryURL.RawQuery = params.Encode()

	body, err := f.get(ctx, metric, weather.SourcePrimary, primaryURL.String())
	if err != nil {
		return "", err
	}

	f.logger.Debug("response received",
		zap.String("metric", string(metric)),
		zap.Int("length", len(body)),
	)

	if len(body) > MinPrimaryLength {
		if err := p.ParsePrimary(body); err != nil {
			return "", err
		}
		return weather.SourcePrimary, nil
	}

	f.logger.Warn("response too short",
		zap.String("metric", string(metric)),
		zap.String("url", pair.Primary),
		zap.Int("length", len(body)),
	)
	f.metrics.RecordFallback(string(metric))

	source := weather.SourceNone
	var secondary []byte
	if pair.Secondary != "" {
		secondaryURL := pair.Secondary + strconv.FormatInt(now.Unix(), 10)
		f.logger.Warn("scraping NEA website for alternative data",
			zap.String("metric", string(metric)),
			zap.String("url", secondaryURL),
		)
		secondary, err = f.get(ctx, metric, weather.SourceSecondary, secondaryURL)
		if err != nil {
			return "", err
		}
		source = weather.SourceSecondary
	}

	if err := p.ParseSecondary(secondary); err != nil {
		return "", err
	}
	return source, nil
}

// get issues one GET through the metric's circuit breaker and returns the body
// in compact JSON form.
func (f *Fetcher) get(ctx context.Context, metric weather.Metric, source weather.Source, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	status := "error"
	execute := func() (interface{}, error) {
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func(Body io.ReadCloser) {
			if err := Body.Close(); err != nil {
				f.logger.Error("failed to close response body", zap.Error(err))
			}
		}(resp.Body)

		status = strconv.Itoa(resp.StatusCode)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, req.URL.Redacted())
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return body, nil
	}

	var result interface{}
	if cb, ok := f.breakers[metric]; ok {
		result, err = cb.Execute(execute)
	} else {
		result, err = execute()
	}
	f.metrics.RecordFetch(string(metric), string(source), status)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, metric, err)
	}
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, fmt.Errorf("%w: %s body is not JSON: %v", ErrShape, source, err)
	}
	return compact.Bytes(), nil
}
