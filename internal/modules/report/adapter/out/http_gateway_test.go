package out_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	reportadapter "vecino/internal/modules/report/adapter/out"
	"vecino/internal/modules/report/domain"
	reportout "vecino/internal/modules/report/port/out"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/httpapi"
	"vecino/internal/platform/stubapi"
)

func newStubGateway(t *testing.T) (*stubapi.Server, reportout.ReportGateway, domain.Principal) {
	t.Helper()
	stub := stubapi.New()
	userID := stub.AddUser("12345678-5", "clave", false)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	client, err := httpapi.New(srv.URL+stubapi.Prefix, time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return stub, reportadapter.NewHTTPReportGateway(client), domain.Principal{AccessToken: stub.IssueToken(userID), UserID: userID}
}

func TestCreateSendsReportFields(t *testing.T) {
	t.Parallel()
	stub, gateway, principal := newStubGateway(t)
	draft := domain.Draft{
		Title:               "Luminaria apagada",
		Description:         "Toda la cuadra a oscuras",
		StreetName:          "Granaderos",
		StreetNumber:        "2140",
		Coordinate:          &domain.Coordinate{Latitude: -22.459831, Longitude: -68.92038},
		CategoryID:          12,
		DepartmentID:        3,
		NeighborhoodBoardID: 12,
	}
	reportID, err := gateway.Create(context.Background(), principal, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if reportID != 101 {
		t.Fatalf("expected first publication id 101, got %d", reportID)
	}
	body := stub.LastCreateBody()
	checks := map[string]any{
		"titulo":        "Luminaria apagada",
		"categoria":     float64(12),
		"departamento":  float64(3),
		"junta_vecinal": float64(12),
		"usuario":       float64(principal.UserID),
		"latitud":       -22.459831,
		"longitud":      -68.92038,
		"nombre_calle":  "Granaderos",
		"numero_calle":  "2140",
		"ubicacion":     "Granaderos 2140",
	}
	for field, want := range checks {
		if body[field] != want {
			t.Fatalf("field %s: expected %v, got %v", field, want, body[field])
		}
	}
}

func TestCreateRejectedIsRemoteError(t *testing.T) {
	t.Parallel()
	stub, gateway, principal := newStubGateway(t)
	stub.RejectCreate(http.StatusBadRequest, "departamento no corresponde")
	draft := domain.Draft{Title: "x", StreetName: "y", CategoryID: 11, DepartmentID: 3, Coordinate: &domain.Coordinate{}}
	_, err := gateway.Create(context.Background(), principal, draft)
	var remote *apperrors.RemoteError
	if !errors.As(err, &remote) || remote.Detail != "departamento no corresponde" {
		t.Fatalf("expected remote error with detail, got %v", err)
	}

	stub.RevokeAll()
	_, err = gateway.Create(context.Background(), principal, draft)
	if !errors.Is(err, apperrors.ErrUnauthorized) || !apperrors.RequiresLogin(err) {
		t.Fatalf("revoked token must require login, got %v", err)
	}
}

func TestUploadEvidenceSendsMultipartFields(t *testing.T) {
	t.Parallel()
	stub, gateway, principal := newStubGateway(t)
	draft := domain.Draft{Title: "Bache", StreetName: "Prat", CategoryID: 11, DepartmentID: 3, Coordinate: &domain.Coordinate{}}
	reportID, err := gateway.Create(context.Background(), principal, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = gateway.UploadEvidence(context.Background(), principal, reportID, reportout.Upload{
		FileName:  "foto.png",
		MimeType:  "image/png",
		Extension: "png",
		Content:   strings.NewReader("not really a png"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	evidence := stub.Evidence()
	if len(evidence) != 1 {
		t.Fatalf("expected one stored evidence, got %+v", evidence)
	}
	got := evidence[0]
	if got.FileName != "foto.png" || got.Extension != "png" || got.ContentType != "image/png" || got.Size != int64(len("not really a png")) {
		t.Fatalf("unexpected evidence %+v", got)
	}

	err = gateway.UploadEvidence(context.Background(), principal, 999, reportout.Upload{FileName: "a.jpg", MimeType: "image/jpeg", Extension: "jpg", Content: strings.NewReader("x")})
	if !errors.Is(err, apperrors.ErrServer) {
		t.Fatalf("unknown publication must be a server error, got %v", err)
	}
}
