package out

import (
	"context"

	"vecino/internal/modules/catalog/domain"
)

type CategorySource interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}
