package planner

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// TravelTimeOracle answers point-to-point travel questions. A nil result
// with a nil error means the oracle had no answer.
type TravelTimeOracle interface {
	TravelTime(ctx context.Context, origin, destination types.Location, mode types.TravelMode) (*types.TravelInfo, error)
}

const (
	earthRadiusKm = 6371.0

	walkingThresholdKm = 2.0
	walkingSpeedKmh    = 5.0
	transitSpeedKmh    = 20.0

	defaultLookupTimeout = 3 * time.Second
)

// HaversineKm is the great-circle distance between two points.
func HaversineKm(a, b types.Location) float64 {
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// ChooseMode picks walking for short hops, transit otherwise.
func ChooseMode(distanceKm float64) types.TravelMode {
	if distanceKm < walkingThresholdKm {
		return types.ModeWalking
	}
	return types.ModeTransit
}

// EstimateTravel derives a leg from straight-line distance alone.
func EstimateTravel(origin, destination types.Location, mode types.TravelMode) types.TravelInfo {
	d := HaversineKm(origin, destination)
	speed := transitSpeedKmh
	if mode == types.ModeWalking {
		speed = walkingSpeedKmh
	}
	return types.TravelInfo{
		DistanceKm:      round2(d),
		DurationMinutes: int(math.Ceil(d / speed * 60)),
		Mode:            mode,
		Estimated:       true,
	}
}

// travelResolver wraps an oracle with a per-call timeout and the
// straight-line fallback. It never returns an error.
type travelResolver struct {
	oracle  TravelTimeOracle
	timeout time.Duration
	logger  *slog.Logger
}

func (r *travelResolver) resolve(ctx context.Context, origin, destination types.Location) types.TravelInfo {
	mode := ChooseMode(HaversineKm(origin, destination))
	if r.oracle == nil {
		return EstimateTravel(origin, destination, mode)
	}

	timeout := r.timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	info, err := r.oracle.TravelTime(callCtx, origin, destination, mode)
	if err != nil || info == nil {
		if err != nil {
			r.logger.WarnContext(ctx, "Travel lookup failed, using straight-line estimate",
				slog.String("mode", string(mode)), slog.Any("error", err))
		}
		return EstimateTravel(origin, destination, mode)
	}

	out := *info
	out.DistanceKm = round2(out.DistanceKm)
	if out.Mode == "" {
		out.Mode = mode
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
