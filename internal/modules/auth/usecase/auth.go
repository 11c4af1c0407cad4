package usecase

import (
	"context"
	"errors"
	"net/http"

	hclog "github.com/hashicorp/go-hclog"

	"vecino/internal/modules/auth/domain"
	authdto "vecino/internal/modules/auth/dto"
	authin "vecino/internal/modules/auth/port/in"
	authout "vecino/internal/modules/auth/port/out"
	"vecino/internal/modules/auth/service"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/httpapi"
	"vecino/internal/platform/logging"
)

type Interactor struct {
	svc     *service.AuthService
	store   authout.CredentialStore
	gateway authout.TokenGateway
	logger  hclog.Logger
}

func NewInteractor(svc *service.AuthService, store authout.CredentialStore, gateway authout.TokenGateway, logger hclog.Logger) authin.Usecase {
	return &Interactor{svc: svc, store: store, gateway: gateway, logger: logging.OrDiscard(logger)}
}

func (i *Interactor) Login(ctx context.Context, input authdto.LoginInput) (authdto.SessionOutput, error) {
	identifier, secret, err := i.svc.Credentials(input.Identifier, input.Secret)
	if err != nil {
		return authdto.SessionOutput{}, err
	}
	session, err := i.gateway.Obtain(ctx, identifier, secret)
	if err != nil {
		return authdto.SessionOutput{}, err
	}
	if !session.Complete() {
		return authdto.SessionOutput{}, &apperrors.RemoteError{Kind: apperrors.ErrMalformedResponse, Detail: "token response is missing tokens"}
	}
	if err := i.store.Save(ctx, session); err != nil {
		return authdto.SessionOutput{}, err
	}
	i.logger.Info("logged in", "user_id", session.UserID, "admin", session.IsAdmin)
	return toOutput(session), nil
}

func (i *Interactor) Logout(ctx context.Context) {
	if err := i.store.Clear(ctx); err != nil {
		i.logger.Warn("clear credentials failed", "error", err)
		return
	}
	i.logger.Debug("logged out")
}

func (i *Interactor) IsAuthenticated(ctx context.Context) bool {
	session, err := i.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoSession) {
			i.logger.Warn("load credentials failed", "error", err)
		}
		return false
	}
	return session.AccessToken != ""
}

func (i *Interactor) AuthHeaders(ctx context.Context) (http.Header, error) {
	session, err := i.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return http.Header{
		"Authorization": {"Bearer " + session.AccessToken},
		"Content-Type":  {httpapi.ContentTypeJSON},
	}, nil
}

func (i *Interactor) Current(ctx context.Context) (authdto.SessionOutput, error) {
	session, err := i.store.Load(ctx)
	if err != nil {
		return authdto.SessionOutput{}, err
	}
	return toOutput(session), nil
}

func (i *Interactor) Register(ctx context.Context, input authdto.RegisterInput) (authdto.RegisterOutput, error) {
	profile, err := i.svc.Profile(domain.RegistrationProfile{
		RUT:      input.RUT,
		Password: input.Password,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
	})
	if err != nil {
		return authdto.RegisterOutput{}, err
	}
	userID, err := i.gateway.Register(ctx, profile)
	if err != nil {
		return authdto.RegisterOutput{}, err
	}
	i.logger.Info("registered", "user_id", userID)
	return authdto.RegisterOutput{UserID: userID, RUT: profile.RUT}, nil
}

func toOutput(session domain.Session) authdto.SessionOutput {
	return authdto.SessionOutput{AccessToken: session.AccessToken, UserID: session.UserID, IsAdmin: session.IsAdmin}
}
