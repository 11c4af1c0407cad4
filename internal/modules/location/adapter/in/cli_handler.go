package in

import (
	"context"

	locationdto "vecino/internal/modules/location/dto"
	locationin "vecino/internal/modules/location/port/in"
)

type CLIHandler struct {
	usecase locationin.Usecase
}

func NewCLIHandler(usecase locationin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Locate(ctx context.Context) (locationdto.ResolutionOutput, error) {
	return h.usecase.Resolve(ctx, locationdto.ResolveInput{})
}
