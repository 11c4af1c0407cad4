package out

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"vecino/internal/modules/feed/domain"
	feedout "vecino/internal/modules/feed/port/out"
	"vecino/internal/platform/httpapi"
)

type namedPayload struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

type publicationPayload struct {
	ID          int          `json:"id"`
	Code        string       `json:"codigo"`
	Title       string       `json:"titulo"`
	Description string       `json:"descripcion"`
	PublishedAt string       `json:"fecha_publicacion"`
	User        namedPayload `json:"usuario"`
	Status      namedPayload `json:"situacion"`
	Category    namedPayload `json:"categoria"`
	Location    string       `json:"ubicacion"`
}

type imagePayload struct {
	ID        int    `json:"id"`
	URL       string `json:"imagen"`
	Date      string `json:"fecha"`
	Extension string `json:"extension"`
}

type announcementPayload struct {
	ID          int            `json:"id"`
	Title       string         `json:"titulo"`
	Subtitle    string         `json:"subtitulo"`
	Status      string         `json:"estado"`
	Description string         `json:"descripcion"`
	Date        string         `json:"fecha"`
	Category    namedPayload   `json:"categoria"`
	User        namedPayload   `json:"usuario"`
	Images      []imagePayload `json:"imagenes"`
}

type HTTPFeedSource struct {
	client *httpapi.Client
}

func NewHTTPFeedSource(client *httpapi.Client) feedout.FeedSource {
	return &HTTPFeedSource{client: client}
}

func (s *HTTPFeedSource) Publications(ctx context.Context, header http.Header, userID int) ([]domain.Publication, error) {
	resp, err := s.client.Do(ctx, httpapi.Request{
		Method: http.MethodGet,
		Path:   "/publicaciones/",
		Query:  url.Values{"usuario": {strconv.Itoa(userID)}},
		Header: header,
	})
	if err != nil {
		return nil, err
	}
	payload, err := httpapi.DecodeResults[publicationPayload](resp)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Publication, 0, len(payload))
	for _, p := range payload {
		out = append(out, domain.Publication{
			ID:          p.ID,
			Code:        p.Code,
			Title:       p.Title,
			Description: p.Description,
			PublishedAt: p.PublishedAt,
			User:        domain.Named(p.User),
			Status:      domain.Named(p.Status),
			Category:    domain.Named(p.Category),
			Location:    p.Location,
		})
	}
	return out, nil
}

func (s *HTTPFeedSource) Announcements(ctx context.Context, header http.Header) ([]domain.Announcement, error) {
	resp, err := s.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/anuncios-municipales/", Header: header})
	if err != nil {
		return nil, err
	}
	payload, err := httpapi.DecodeResults[announcementPayload](resp)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Announcement, 0, len(payload))
	for _, a := range payload {
		item := domain.Announcement{
			ID:          a.ID,
			Title:       a.Title,
			Subtitle:    a.Subtitle,
			Status:      a.Status,
			Description: a.Description,
			Date:        a.Date,
			Category:    domain.Named(a.Category),
			User:        domain.Named(a.User),
		}
		for _, img := range a.Images {
			item.Images = append(item.Images, domain.Image(img))
		}
		out = append(out, item)
	}
	return out, nil
}
