package out

import (
	"context"
	"time"

	"vecino/internal/modules/location/domain"
	locationout "vecino/internal/modules/location/port/out"
	"vecino/internal/platform/clock"
)

// DeniedSensor stands in for hosts without a position source.
type DeniedSensor struct{}

func NewDeniedSensor() locationout.Sensor {
	return DeniedSensor{}
}

func (DeniedSensor) RequestPermission(context.Context) (domain.Permission, error) {
	return domain.PermissionDenied, nil
}

func (DeniedSensor) CurrentPosition(context.Context, time.Duration) (domain.Fix, error) {
	return domain.Fix{}, domain.ErrInvalidCoordinate
}

// StaticSensor reports a fixed coordinate, typically from command-line
// flags, stamped with the current time.
type StaticSensor struct {
	coordinate domain.Coordinate
	clock      clock.Clock
}

func NewStaticSensor(coordinate domain.Coordinate, clk clock.Clock) locationout.Sensor {
	return &StaticSensor{coordinate: coordinate, clock: clk}
}

func (s *StaticSensor) RequestPermission(context.Context) (domain.Permission, error) {
	return domain.PermissionGranted, nil
}

func (s *StaticSensor) CurrentPosition(ctx context.Context, _ time.Duration) (domain.Fix, error) {
	if err := ctx.Err(); err != nil {
		return domain.Fix{}, err
	}
	return domain.Fix{Coordinate: s.coordinate, Timestamp: s.clock.Now()}, nil
}
