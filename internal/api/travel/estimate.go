package travel

import (
	"context"

	"github.com/FACorreiaa/go-travel-planner/internal/planner"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ planner.TravelTimeOracle = EstimateOracle{}

// EstimateOracle answers from straight-line distance. It is used when no
// routing key is configured.
type EstimateOracle struct{}

func (EstimateOracle) TravelTime(ctx context.Context, origin, destination types.Location, mode types.TravelMode) (*types.TravelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := planner.EstimateTravel(origin, destination, mode)
	return &info, nil
}
