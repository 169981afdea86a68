package metrics

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/FACorreiaa/go-travel-planner"

// AppMetrics holds the planner's metric instruments.
type AppMetrics struct {
	ItinerariesBuiltTotal  metric.Int64Counter
	BuildDurationSeconds   metric.Float64Histogram
	ScheduledItems         metric.Int64Histogram
	TravelFallbacksTotal   metric.Int64Counter
	AdvisoryFailuresTotal  metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
	initErr    error
)

// New creates every instrument on the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var err error

	if m.ItinerariesBuiltTotal, err = meter.Int64Counter("itineraries_built_total",
		metric.WithDescription("Itinerary builds by outcome status"),
		metric.WithUnit("{itinerary}")); err != nil {
		return nil, fmt.Errorf("itineraries_built_total: %w", err)
	}
	if m.BuildDurationSeconds, err = meter.Float64Histogram("itinerary_build_duration_seconds",
		metric.WithDescription("Time spent gathering candidates and building an itinerary"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("itinerary_build_duration_seconds: %w", err)
	}
	if m.ScheduledItems, err = meter.Int64Histogram("itinerary_scheduled_items",
		metric.WithDescription("Items scheduled per itinerary"),
		metric.WithUnit("{item}")); err != nil {
		return nil, fmt.Errorf("itinerary_scheduled_items: %w", err)
	}
	if m.TravelFallbacksTotal, err = meter.Int64Counter("travel_fallbacks_total",
		metric.WithDescription("Legs that used the straight-line estimate"),
		metric.WithUnit("{leg}")); err != nil {
		return nil, fmt.Errorf("travel_fallbacks_total: %w", err)
	}
	if m.AdvisoryFailuresTotal, err = meter.Int64Counter("advisory_failures_total",
		metric.WithDescription("Advisory generations that failed and fell back to built-in tips"),
		metric.WithUnit("{error}")); err != nil {
		return nil, fmt.Errorf("advisory_failures_total: %w", err)
	}
	if m.DbQueryDurationSeconds, err = meter.Float64Histogram("db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("db_query_duration_seconds: %w", err)
	}
	if m.DbQueryErrorsTotal, err = meter.Int64Counter("db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}")); err != nil {
		return nil, fmt.Errorf("db_query_errors_total: %w", err)
	}
	return m, nil
}

// InitAppMetrics creates the global instruments once, from the global
// MeterProvider. Call it after the provider is installed.
func InitAppMetrics() error {
	once.Do(func() {
		appMetrics, initErr = New(otel.GetMeterProvider().Meter(meterName))
	})
	return initErr
}

// Get returns the global instruments, or no-op ones when InitAppMetrics
// has not run.
func Get() *AppMetrics {
	if appMetrics == nil {
		return Noop()
	}
	return appMetrics
}

// Noop returns instruments that record nothing.
func Noop() *AppMetrics {
	m, _ := New(noop.NewMeterProvider().Meter(meterName))
	return m
}
