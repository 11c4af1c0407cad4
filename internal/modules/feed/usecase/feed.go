package usecase

import (
	"context"
	"net/http"

	authin "vecino/internal/modules/auth/port/in"
	"vecino/internal/modules/feed/domain"
	feeddto "vecino/internal/modules/feed/dto"
	feedin "vecino/internal/modules/feed/port/in"
	feedout "vecino/internal/modules/feed/port/out"
)

type Interactor struct {
	auth   authin.Usecase
	source feedout.FeedSource
}

func NewInteractor(auth authin.Usecase, source feedout.FeedSource) feedin.Usecase {
	return &Interactor{auth: auth, source: source}
}

func (i *Interactor) History(ctx context.Context) ([]feeddto.PublicationOutput, error) {
	session, header, err := i.session(ctx)
	if err != nil {
		return nil, err
	}
	items, err := i.source.Publications(ctx, header, session)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(items, func(p domain.Publication) string { return p.PublishedAt })
	out := make([]feeddto.PublicationOutput, 0, len(items))
	for _, p := range items {
		at, _ := domain.ParseDate(p.PublishedAt)
		out = append(out, feeddto.PublicationOutput{
			ID:          p.ID,
			Code:        p.Code,
			Title:       p.Title,
			Description: p.Description,
			Status:      domain.NormalizeStatus(p.Status.Name),
			Category:    p.Category.Name,
			Location:    p.Location,
			PublishedAt: at,
			RawDate:     p.PublishedAt,
		})
	}
	return out, nil
}

func (i *Interactor) Announcements(ctx context.Context) ([]feeddto.AnnouncementOutput, error) {
	_, header, err := i.session(ctx)
	if err != nil {
		return nil, err
	}
	items, err := i.source.Announcements(ctx, header)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(items, func(a domain.Announcement) string { return a.Date })
	out := make([]feeddto.AnnouncementOutput, 0, len(items))
	for _, a := range items {
		at, _ := domain.ParseDate(a.Date)
		item := feeddto.AnnouncementOutput{
			ID:          a.ID,
			Title:       a.Title,
			Subtitle:    a.Subtitle,
			Status:      domain.NormalizeStatus(a.Status),
			Description: a.Description,
			Category:    a.Category.Name,
			Author:      a.User.Name,
			Date:        at,
			RawDate:     a.Date,
		}
		for _, img := range a.Images {
			item.Images = append(item.Images, feeddto.ImageOutput{ID: img.ID, URL: img.URL, Extension: img.Extension})
		}
		out = append(out, item)
	}
	return out, nil
}

// session fails with ErrNoSession before any request is made.
func (i *Interactor) session(ctx context.Context) (int, http.Header, error) {
	current, err := i.auth.Current(ctx)
	if err != nil {
		return 0, nil, err
	}
	header, err := i.auth.AuthHeaders(ctx)
	if err != nil {
		return 0, nil, err
	}
	return current.UserID, header, nil
}
