package usecase

import (
	"context"

	hclog "github.com/hashicorp/go-hclog"

	catalogdto "vecino/internal/modules/catalog/dto"
	catalogin "vecino/internal/modules/catalog/port/in"
	catalogout "vecino/internal/modules/catalog/port/out"
	"vecino/internal/platform/logging"
)

type Interactor struct {
	source catalogout.CategorySource
	logger hclog.Logger
}

func NewInteractor(source catalogout.CategorySource, logger hclog.Logger) catalogin.Usecase {
	return &Interactor{source: source, logger: logging.OrDiscard(logger)}
}

func (i *Interactor) OpenDirectory(ctx context.Context) (catalogdto.Directory, error) {
	categories, err := i.source.FetchCategories(ctx)
	if err != nil {
		return catalogdto.Directory{}, err
	}
	out := make([]catalogdto.CategoryOutput, 0, len(categories))
	for _, c := range categories {
		if err := c.Validate(); err != nil {
			i.logger.Warn("skipping category", "error", err)
			continue
		}
		out = append(out, catalogdto.CategoryOutput{
			ID:             c.ID,
			Name:           c.Name,
			Description:    c.Description,
			DepartmentID:   c.Department.ID,
			DepartmentName: c.Department.Name,
		})
	}
	return catalogdto.NewDirectory(out), nil
}
