package out

import (
	"context"
	"time"

	"vecino/internal/modules/location/domain"
)

type Sensor interface {
	RequestPermission(ctx context.Context) (domain.Permission, error)
	// CurrentPosition may return a cached fix no older than maxAge.
	CurrentPosition(ctx context.Context, maxAge time.Duration) (domain.Fix, error)
}
