package in

import (
	"context"

	catalogdto "vecino/internal/modules/catalog/dto"
	catalogin "vecino/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]catalogdto.CategoryOutput, error) {
	dir, err := h.usecase.OpenDirectory(ctx)
	if err != nil {
		return nil, err
	}
	return dir.List(), nil
}
