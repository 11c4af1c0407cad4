package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	authout "vecino/internal/modules/auth/adapter/out"
	authdto "vecino/internal/modules/auth/dto"
	authservice "vecino/internal/modules/auth/service"
	authusecase "vecino/internal/modules/auth/usecase"
	catalogout "vecino/internal/modules/catalog/adapter/out"
	catalogusecase "vecino/internal/modules/catalog/usecase"
	locationout "vecino/internal/modules/location/adapter/out"
	locationdomain "vecino/internal/modules/location/domain"
	locationservice "vecino/internal/modules/location/service"
	locationusecase "vecino/internal/modules/location/usecase"
	reportout "vecino/internal/modules/report/adapter/out"
	reportdto "vecino/internal/modules/report/dto"
	reportin "vecino/internal/modules/report/port/in"
	"vecino/internal/modules/report/service"
	"vecino/internal/modules/report/usecase"
	"vecino/internal/platform/clock"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/httpapi"
	"vecino/internal/platform/id"
	"vecino/internal/platform/stubapi"
)

var calama = locationdomain.Bounds{MinLat: -22.50, MaxLat: -22.42, MinLon: -68.96, MaxLon: -68.88}

type harness struct {
	stub   *stubapi.Server
	report reportin.Usecase
	dir    string
}

func newHarness(t *testing.T, login bool) harness {
	t.Helper()
	ctx := context.Background()
	stub := stubapi.New()
	stub.AddUser("12345678-5", "clave", false)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	client, err := httpapi.New(srv.URL+stubapi.Prefix, 2*time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	auth := authusecase.NewInteractor(authservice.NewAuthService(authout.NewRUTChecker()), authout.NewMemoryCredentialStore(), authout.NewHTTPTokenGateway(client), nil)
	if login {
		if _, err := auth.Login(ctx, authdto.LoginInput{Identifier: "12345678-5", Secret: "clave"}); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	catalog := catalogusecase.NewInteractor(catalogout.NewHTTPCategorySource(client, auth), nil)
	seed := uint64(7)
	resolver := locationservice.NewResolver(locationout.NewDeniedSensor(), locationservice.NewFallback(calama, &seed), clock.SystemClock{},
		locationservice.ResolverConfig{Timeout: time.Second}, nil)
	location := locationusecase.NewInteractor(resolver)

	dir := t.TempDir()
	ledger, err := reportout.NewSQLiteLedger(filepath.Join(dir, "vecino.db"))
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })
	orchestrator := service.NewOrchestrator(reportout.NewHTTPReportGateway(client), reportout.NewLocalFileSource(), id.UUID{}, clock.SystemClock{},
		service.WithLedger(ledger), service.WithConcurrency(2))
	return harness{stub: stub, report: usecase.NewInteractor(orchestrator, auth, catalog, location), dir: dir}
}

func (h harness) photo(t *testing.T, name string) reportdto.EvidenceInput {
	t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte("\xff\xd8\xff\xe0 jpeg body "+name), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return reportdto.EvidenceInput{Path: path}
}

func TestSubmitDerivesDepartmentAndRetriesFailedEvidence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, true)
	h.stub.RejectUpload("b.jpg", http.StatusInternalServerError)

	out, err := h.report.Submit(ctx, reportdto.SubmitInput{
		Title:      "  Microbasural en pasaje  ",
		StreetName: "Pasaje Los Aromos",
		CategoryID: 21,
		Evidence:   []reportdto.EvidenceInput{h.photo(t, "a.jpg"), h.photo(t, "b.jpg")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Outcome != "created_with_evidence_failures" || out.ReportID == 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(out.Failures) != 1 || out.Failures[0].FileName != "b.jpg" || out.Failures[0].Index != 1 {
		t.Fatalf("unexpected failures %+v", out.Failures)
	}
	if out.Location.WasDeviceLocation || !calama.Contains(locationdomain.Coordinate{Latitude: out.Location.Latitude, Longitude: out.Location.Longitude}) {
		t.Fatalf("fallback location must stay inside the city bounds: %+v", out.Location)
	}

	body := h.stub.LastCreateBody()
	if body["titulo"] != "Microbasural en pasaje" || body["categoria"] != float64(21) || body["departamento"] != float64(5) || body["junta_vecinal"] != float64(21) {
		t.Fatalf("unexpected create body %+v", body)
	}
	if h.stub.CreateCalls() != 1 || h.stub.UploadCalls() != 2 {
		t.Fatalf("expected one create and two uploads, got %d and %d", h.stub.CreateCalls(), h.stub.UploadCalls())
	}

	h.stub.AcceptUploads()
	retried, err := h.report.RetryEvidence(ctx, reportdto.RetryInput{ReportID: out.ReportID})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.Outcome != "created" || retried.ReportID != out.ReportID {
		t.Fatalf("unexpected retry %+v", retried)
	}
	if h.stub.CreateCalls() != 1 || len(h.stub.Evidence()) != 2 {
		t.Fatalf("retry must only upload the missing file: creates=%d evidence=%+v", h.stub.CreateCalls(), h.stub.Evidence())
	}

	attempts, err := h.report.Attempts(ctx, 10)
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 2 || attempts[0].Kind != "retry" || attempts[0].Uploaded != 1 {
		t.Fatalf("unexpected attempts %+v", attempts)
	}
	if attempts[1].Title != "Microbasural en pasaje" || len(attempts[1].Failed) != 1 || attempts[1].Failed[0].FileName != "b.jpg" {
		t.Fatalf("unexpected submit attempt %+v", attempts[1])
	}
}

func TestSubmitUsesExplicitCoordinate(t *testing.T) {
	t.Parallel()
	h := newHarness(t, true)
	out, err := h.report.Submit(context.Background(), reportdto.SubmitInput{
		Title:        "Luminaria",
		StreetName:   "Vivar",
		StreetNumber: "1630",
		CategoryID:   12,
		Coordinate:   &reportdto.CoordinateInput{Latitude: -22.4566781, Longitude: -68.9237012},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Outcome != "created" || out.Location.Reason != "explicit" {
		t.Fatalf("unexpected result %+v", out)
	}
	body := h.stub.LastCreateBody()
	if body["latitud"] != -22.456678 || body["longitud"] != -68.923701 || body["ubicacion"] != "Vivar 1630" {
		t.Fatalf("coordinates must be rounded to six decimals: %+v", body)
	}
}

func TestSubmitRejectsBeforeCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newHarness(t, true)
	_, err := h.report.Submit(ctx, reportdto.SubmitInput{Title: "Bache", StreetName: "Latorre", CategoryID: 99})
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) || verr.Field != "categoria" {
		t.Fatalf("expected categoria validation error, got %v", err)
	}
	if _, err := h.report.Submit(ctx, reportdto.SubmitInput{Title: "   ", StreetName: "Latorre", CategoryID: 11}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("blank title must fail validation, got %v", err)
	}

	h.stub.RevokeAll()
	_, err = h.report.Submit(ctx, reportdto.SubmitInput{Title: "Bache", StreetName: "Latorre", CategoryID: 11})
	if !apperrors.RequiresLogin(err) {
		t.Fatalf("revoked token must require login, got %v", err)
	}
	if h.stub.CreateCalls() != 0 {
		t.Fatalf("no create may be sent, got %d", h.stub.CreateCalls())
	}

	anonymous := newHarness(t, false)
	if _, err := anonymous.report.Submit(ctx, reportdto.SubmitInput{Title: "Bache", StreetName: "Latorre", CategoryID: 11}); !errors.Is(err, apperrors.ErrNoSession) {
		t.Fatalf("expected no session, got %v", err)
	}
	if _, err := anonymous.report.RetryEvidence(ctx, reportdto.RetryInput{ReportID: 101}); !errors.Is(err, apperrors.ErrNoSession) {
		t.Fatalf("expected no session on retry, got %v", err)
	}
}

func TestSubmitRejectedByServerIsFailed(t *testing.T) {
	t.Parallel()
	h := newHarness(t, true)
	h.stub.RejectCreate(http.StatusInternalServerError, "base de datos no disponible")
	out, err := h.report.Submit(context.Background(), reportdto.SubmitInput{
		Title: "Vehículo", StreetName: "Balmaceda", CategoryID: 31,
		Evidence: []reportdto.EvidenceInput{h.photo(t, "auto.jpg")},
	})
	if !errors.Is(err, apperrors.ErrServer) || apperrors.UserMessage(err) != "base de datos no disponible" {
		t.Fatalf("expected server error with detail, got %v", err)
	}
	if out.Outcome != "failed" || out.ReportID != 0 || h.stub.UploadCalls() != 0 {
		t.Fatalf("unexpected result %+v uploads=%d", out, h.stub.UploadCalls())
	}
	attempts, err := h.report.Attempts(context.Background(), 0)
	if err != nil || len(attempts) != 1 || attempts[0].Cause != "base de datos no disponible" {
		t.Fatalf("failed create must be recorded: %v %+v", err, attempts)
	}
}
