package in

import (
	"context"
	"net/http"

	"vecino/internal/modules/auth/dto"
)

type Usecase interface {
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	// Logout never fails; storage errors are logged.
	Logout(ctx context.Context)
	IsAuthenticated(ctx context.Context) bool
	AuthHeaders(ctx context.Context) (http.Header, error)
	Current(ctx context.Context) (dto.SessionOutput, error)
	Register(ctx context.Context, input dto.RegisterInput) (dto.RegisterOutput, error)
}
