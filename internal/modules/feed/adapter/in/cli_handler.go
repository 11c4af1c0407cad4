package in

import (
	"context"

	feeddto "vecino/internal/modules/feed/dto"
	feedin "vecino/internal/modules/feed/port/in"
)

type CLIHandler struct {
	usecase feedin.Usecase
}

func NewCLIHandler(usecase feedin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) History(ctx context.Context) ([]feeddto.PublicationOutput, error) {
	return h.usecase.History(ctx)
}

func (h CLIHandler) Announcements(ctx context.Context) ([]feeddto.AnnouncementOutput, error) {
	return h.usecase.Announcements(ctx)
}
