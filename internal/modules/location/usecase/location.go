package usecase

import (
	"context"

	"vecino/internal/modules/location/domain"
	locationdto "vecino/internal/modules/location/dto"
	locationin "vecino/internal/modules/location/port/in"
	"vecino/internal/modules/location/service"
	apperrors "vecino/internal/platform/errors"
)

const reasonExplicit = "explicit"

type Interactor struct {
	resolver *service.Resolver
}

func NewInteractor(resolver *service.Resolver) locationin.Usecase {
	return &Interactor{resolver: resolver}
}

func (i *Interactor) Resolve(ctx context.Context, input locationdto.ResolveInput) (locationdto.ResolutionOutput, error) {
	if input.Explicit != nil {
		coord := domain.Coordinate{Latitude: input.Explicit.Latitude, Longitude: input.Explicit.Longitude}
		if err := coord.Validate(); err != nil {
			return locationdto.ResolutionOutput{}, apperrors.Invalid("ubicacion", err.Error())
		}
		coord = coord.Rounded()
		return locationdto.ResolutionOutput{Latitude: coord.Latitude, Longitude: coord.Longitude, Reason: reasonExplicit}, nil
	}
	res := i.resolver.Resolve(ctx)
	trace := make([]string, 0, len(res.Trace))
	for _, s := range res.Trace {
		trace = append(trace, string(s))
	}
	return locationdto.ResolutionOutput{
		Latitude:          res.Coordinate.Latitude,
		Longitude:         res.Coordinate.Longitude,
		WasDeviceLocation: res.WasDeviceLocation,
		Trace:             trace,
		Reason:            string(res.Reason),
	}, nil
}
