package out

import (
	"context"
	"net/http"

	"vecino/internal/modules/catalog/domain"
	catalogout "vecino/internal/modules/catalog/port/out"
	"vecino/internal/platform/httpapi"
)

type categoryPayload struct {
	ID          int    `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Department  struct {
		ID   int    `json:"id"`
		Name string `json:"nombre"`
	} `json:"departamento"`
}

type HTTPCategorySource struct {
	client  *httpapi.Client
	headers httpapi.HeaderSource
}

func NewHTTPCategorySource(client *httpapi.Client, headers httpapi.HeaderSource) catalogout.CategorySource {
	return &HTTPCategorySource{client: client, headers: headers}
}

func (s *HTTPCategorySource) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	header, err := s.headers.AuthHeaders(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/categorias/", Header: header})
	if err != nil {
		return nil, err
	}
	payload, err := httpapi.DecodeList[categoryPayload](resp)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(payload))
	for _, p := range payload {
		out = append(out, domain.Category{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Department:  domain.Department{ID: p.Department.ID, Name: p.Department.Name},
		})
	}
	return out, nil
}
