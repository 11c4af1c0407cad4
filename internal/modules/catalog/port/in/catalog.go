package in

import (
	"context"

	"vecino/internal/modules/catalog/dto"
)

type Usecase interface {
	// OpenDirectory fetches the categories once; the directory then answers
	// from memory. Each call fetches again.
	OpenDirectory(ctx context.Context) (dto.Directory, error)
}
