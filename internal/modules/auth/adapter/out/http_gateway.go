package out

import (
	"context"
	"errors"
	"net/http"

	"vecino/internal/modules/auth/domain"
	authout "vecino/internal/modules/auth/port/out"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/httpapi"
)

type tokenRequest struct {
	RUT      string `json:"rut"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	ID      int    `json:"id"`
	IsAdmin bool   `json:"es_administrador"`
}

type registerResponse struct {
	ID int `json:"id"`
}

type HTTPTokenGateway struct {
	client *httpapi.Client
}

func NewHTTPTokenGateway(client *httpapi.Client) authout.TokenGateway {
	return &HTTPTokenGateway{client: client}
}

// Obtain exchanges credentials for tokens. A 400 or 401 from /token/ means
// the credentials were rejected.
func (g *HTTPTokenGateway) Obtain(ctx context.Context, identifier, secret string) (domain.Session, error) {
	out := tokenResponse{}
	err := g.client.DoJSON(ctx, http.MethodPost, "/token/", nil, nil, tokenRequest{RUT: identifier, Password: secret}, &out)
	if err != nil {
		var remote *apperrors.RemoteError
		if errors.As(err, &remote) && (remote.Status == http.StatusBadRequest || remote.Status == http.StatusUnauthorized) {
			return domain.Session{}, &apperrors.RemoteError{
				Kind:   apperrors.ErrInvalidCredentials,
				Status: remote.Status,
				Detail: remote.Detail,
				Fields: remote.Fields,
			}
		}
		return domain.Session{}, err
	}
	return domain.Session{
		AccessToken:  out.Access,
		RefreshToken: out.Refresh,
		UserID:       out.ID,
		IsAdmin:      out.IsAdmin,
	}, nil
}

func (g *HTTPTokenGateway) Register(ctx context.Context, profile domain.RegistrationProfile) (int, error) {
	out := registerResponse{}
	if err := g.client.DoJSON(ctx, http.MethodPost, "/registro/", nil, nil, profile, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}
