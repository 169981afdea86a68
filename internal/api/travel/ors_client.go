package travel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/planner"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	maxAttempts    = 2
	retryBackoff   = 150 * time.Millisecond
)

var _ planner.TravelTimeOracle = (*ORSClient)(nil)

// ORSClient answers travel-time questions from the OpenRouteService
// directions API. Legs are cached by rounded coordinates and mode.
// Safe for concurrent use.
type ORSClient struct {
	http    *http.Client
	apiKey  string
	baseURL string
	cache   *cache.Cache
	logger  *slog.Logger
}

type ORSOption func(*ORSClient)

func WithBaseURL(u string) ORSOption {
	return func(c *ORSClient) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) ORSOption {
	return func(c *ORSClient) { c.http = h }
}

func NewORSClient(apiKey string, cacheTTL time.Duration, logger *slog.Logger, opts ...ORSOption) (*ORSClient, error) {
	if apiKey == "" {
		return nil, errors.New("routing api key is empty")
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	c := &ORSClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		cache:   cache.New(cacheTTL, time.Hour),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("routing service returned %d: %s", e.Code, e.Body)
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"` // metres
				Duration float64 `json:"duration"` // seconds
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// TravelTime returns nil, nil when the service found no route.
func (c *ORSClient) TravelTime(ctx context.Context, origin, destination types.Location, mode types.TravelMode) (*types.TravelInfo, error) {
	ctx, span := otel.Tracer("TravelTimeOracle").Start(ctx, "TravelTime", trace.WithAttributes(
		attribute.String("travel.mode", string(mode)),
	))
	defer span.End()

	key := legKey(origin, destination, mode)
	if cached, found := c.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		info := cached.(types.TravelInfo)
		return &info, nil
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s?start=%s&end=%s",
		c.baseURL, profileFor(mode),
		url.QueryEscape(coord(origin)), url.QueryEscape(coord(destination)))

	resp, err := c.doWithRetry(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "directions request failed")
		return nil, fmt.Errorf("directions lookup: %w", err)
	}
	defer resp.Body.Close()

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decoding directions response: %w", err)
	}
	if len(body.Features) == 0 {
		span.AddEvent("no route")
		return nil, nil
	}

	summary := body.Features[0].Properties.Summary
	info := types.TravelInfo{
		DistanceKm:      summary.Distance / 1000,
		DurationMinutes: int((summary.Duration + 59) / 60),
		Mode:            mode,
	}
	c.cache.Set(key, info, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "")
	return &info, nil
}

// doWithRetry retries 429, 5xx and network errors once, respecting ctx.
func (c *ORSClient) doWithRetry(ctx context.Context, endpoint string) (*http.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Accept", "application/json, application/geo+json")

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) || attempt == maxAttempts {
			break
		}

		c.logger.DebugContext(ctx, "Retrying directions request", slog.Int("attempt", attempt), slog.Any("error", err))
		timer := time.NewTimer(retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (c *ORSClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// profileFor maps a travel mode to a routing profile. Transit has no
// profile of its own and is routed by road.
func profileFor(mode types.TravelMode) string {
	if mode == types.ModeWalking {
		return "foot-walking"
	}
	return "driving-car"
}

// coord is ORS's lng,lat order.
func coord(l types.Location) string {
	return fmt.Sprintf("%.6f,%.6f", l.Lng, l.Lat)
}

func legKey(o, d types.Location, mode types.TravelMode) string {
	return fmt.Sprintf("%.4f,%.4f>%.4f,%.4f:%s", o.Lat, o.Lng, d.Lat, d.Lng, mode)
}
