package in

import (
	"context"

	"vecino/internal/modules/location/dto"
)

// Usecase always yields a coordinate. Sensor failures end in a fallback
// point inside the service area and are never returned as errors; only an
// invalid explicit coordinate is.
type Usecase interface {
	Resolve(ctx context.Context, input dto.ResolveInput) (dto.ResolutionOutput, error)
}
