package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"vecino/internal/modules/location/domain"
	locationout "vecino/internal/modules/location/port/out"
	"vecino/internal/platform/clock"
	"vecino/internal/platform/logging"
)

var errStale = errors.New("stale fix")

type ResolverConfig struct {
	Timeout time.Duration
	MaxAge  time.Duration
}

type Resolver struct {
	sensor   locationout.Sensor
	fallback *Fallback
	clock    clock.Clock
	cfg      ResolverConfig
	logger   hclog.Logger
}

func NewResolver(sensor locationout.Sensor, fallback *Fallback, clk clock.Clock, cfg ResolverConfig, logger hclog.Logger) *Resolver {
	return &Resolver{sensor: sensor, fallback: fallback, clock: clk, cfg: cfg, logger: logging.OrDiscard(logger)}
}

type acquisition struct {
	fix    domain.Fix
	reason domain.Reason
	err    error
}

// Resolve runs permission and acquisition under one deadline. It returns
// once the deadline passes even if the sensor keeps blocking.
func (r *Resolver) Resolve(ctx context.Context) domain.Resolution {
	m := domain.NewMachine()
	_ = m.To(domain.StateRequestingPermission)

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	var granted atomic.Bool
	done := make(chan acquisition, 1)
	go func() {
		done <- r.acquire(ctx, &granted)
	}()

	var got acquisition
	select {
	case got = <-done:
	case <-ctx.Done():
		got = acquisition{reason: domain.ReasonTimeout, err: ctx.Err()}
	}

	if got.reason == domain.ReasonDenied {
		_ = m.To(domain.StateDenied)
		return r.fallbackResolution(m, got)
	}
	if granted.Load() {
		_ = m.To(domain.StateAcquiring)
	}
	if got.reason != domain.ReasonNone {
		_ = m.To(domain.StateAcquisitionFailed)
		return r.fallbackResolution(m, got)
	}
	_ = m.To(domain.StateResolved)
	coord := got.fix.Coordinate.Rounded()
	r.logger.Debug("device location resolved", "coordinate", coord.String(), "accuracy", got.fix.Accuracy)
	return domain.Resolution{Coordinate: coord, WasDeviceLocation: true, Trace: m.Trace()}
}

func (r *Resolver) acquire(ctx context.Context, granted *atomic.Bool) acquisition {
	permission, err := r.sensor.RequestPermission(ctx)
	if err != nil {
		return acquisition{reason: reasonFor(ctx, err), err: fmt.Errorf("request permission: %w", err)}
	}
	if permission != domain.PermissionGranted {
		return acquisition{reason: domain.ReasonDenied}
	}
	granted.Store(true)
	fix, err := r.sensor.CurrentPosition(ctx, r.cfg.MaxAge)
	if err != nil {
		return acquisition{reason: reasonFor(ctx, err), err: fmt.Errorf("current position: %w", err)}
	}
	if err := fix.Coordinate.Validate(); err != nil {
		return acquisition{reason: domain.ReasonError, err: err}
	}
	if r.cfg.MaxAge > 0 && !fix.Timestamp.IsZero() && r.clock.Now().Sub(fix.Timestamp) > r.cfg.MaxAge {
		return acquisition{reason: domain.ReasonStale, err: fmt.Errorf("%w: taken at %s", errStale, fix.Timestamp.Format(time.RFC3339))}
	}
	return acquisition{fix: fix}
}

func (r *Resolver) fallbackResolution(m *domain.Machine, got acquisition) domain.Resolution {
	_ = m.To(domain.StateResolved)
	coord := r.fallback.Next()
	if got.reason == domain.ReasonDenied {
		r.logger.Debug("location permission denied, using fallback", "coordinate", coord.String())
	} else {
		r.logger.Warn("device location unavailable, using fallback", "reason", string(got.reason), "error", got.err, "coordinate", coord.String())
	}
	return domain.Resolution{Coordinate: coord, Trace: m.Trace(), Reason: got.reason}
}

func reasonFor(ctx context.Context, err error) domain.Reason {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	return domain.ReasonError
}
