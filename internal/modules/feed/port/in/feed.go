package in

import (
	"context"

	"vecino/internal/modules/feed/dto"
)

type Usecase interface {
	// History lists the signed-in citizen's reports, newest first.
	History(ctx context.Context) ([]dto.PublicationOutput, error)
	// Announcements lists municipal announcements, newest first.
	Announcements(ctx context.Context) ([]dto.AnnouncementOutput, error)
}
