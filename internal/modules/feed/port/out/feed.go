package out

import (
	"context"
	"net/http"

	"vecino/internal/modules/feed/domain"
)

type FeedSource interface {
	Publications(ctx context.Context, header http.Header, userID int) ([]domain.Publication, error)
	Announcements(ctx context.Context, header http.Header) ([]domain.Announcement, error)
}
