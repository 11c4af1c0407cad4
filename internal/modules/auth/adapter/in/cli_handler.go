package in

import (
	"context"

	authdto "vecino/internal/modules/auth/dto"
	authin "vecino/internal/modules/auth/port/in"
)

type CLIHandler struct {
	usecase authin.Usecase
}

func NewCLIHandler(usecase authin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, rut, password string) (authdto.SessionOutput, error) {
	return h.usecase.Login(ctx, authdto.LoginInput{Identifier: rut, Secret: password})
}

func (h CLIHandler) Logout(ctx context.Context) {
	h.usecase.Logout(ctx)
}

func (h CLIHandler) Whoami(ctx context.Context) (authdto.SessionOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Register(ctx context.Context, input authdto.RegisterInput) (authdto.RegisterOutput, error) {
	return h.usecase.Register(ctx, input)
}
