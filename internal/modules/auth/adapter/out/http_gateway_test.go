package out_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	authout "vecino/internal/modules/auth/adapter/out"
	"vecino/internal/modules/auth/domain"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/httpapi"
	"vecino/internal/platform/stubapi"
)

func newGateway(t *testing.T) (*stubapi.Server, *authout.HTTPTokenGateway) {
	t.Helper()
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	client, err := httpapi.New(srv.URL+stubapi.Prefix, time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return stub, authout.NewHTTPTokenGateway(client).(*authout.HTTPTokenGateway)
}

func TestObtainMapsRejectedCredentials(t *testing.T) {
	t.Parallel()
	stub, gateway := newGateway(t)
	stub.AddUser("12345678-5", "clave", true)

	session, err := gateway.Obtain(context.Background(), "12345678-5", "clave")
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	if !session.Complete() || session.UserID != 1 || !session.IsAdmin {
		t.Fatalf("unexpected session %+v", session)
	}

	_, err = gateway.Obtain(context.Background(), "12345678-5", "otra")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if apperrors.RequiresLogin(err) {
		t.Fatalf("rejected credentials must not be treated as an expired session")
	}
}

func TestRegisterSurfacesFieldErrors(t *testing.T) {
	t.Parallel()
	stub, gateway := newGateway(t)
	stub.AddUser("12345678-5", "clave", false)
	profile := domain.RegistrationProfile{RUT: "12345678-5", Password: "x", Name: "Ana", Email: "ana@example.cl"}
	_, err := gateway.Register(context.Background(), profile)
	if !errors.Is(err, apperrors.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if msg := apperrors.UserMessage(err); msg != "usuario con este rut ya existe." {
		t.Fatalf("unexpected message %q", msg)
	}

	profile.RUT = "1-9"
	id, err := gateway.Register(context.Background(), profile)
	if err != nil || id == 0 {
		t.Fatalf("register: %d %v", id, err)
	}
}
