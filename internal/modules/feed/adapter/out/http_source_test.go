package out_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	feedout "vecino/internal/modules/feed/adapter/out"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/httpapi"
	"vecino/internal/platform/stubapi"
)

func newSource(t *testing.T) (*stubapi.Server, *httpapi.Client) {
	t.Helper()
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	client, err := httpapi.New(srv.URL+stubapi.Prefix, time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return stub, client
}

func post(t *testing.T, client *httpapi.Client, header http.Header, title string) {
	t.Helper()
	body := map[string]any{"titulo": title, "categoria": 11, "departamento": 3}
	if err := client.DoJSON(context.Background(), http.MethodPost, "/publicaciones/", nil, header, body, &map[string]any{}); err != nil {
		t.Fatalf("seed publication: %v", err)
	}
}

func TestPublicationsAreScopedToUser(t *testing.T) {
	t.Parallel()
	stub, client := newSource(t)
	mine := stub.AddUser("1-9", "x", false)
	other := stub.AddUser("2-7", "y", false)
	mineHeader := http.Header{"Authorization": {"Bearer " + stub.IssueToken(mine)}}
	otherHeader := http.Header{"Authorization": {"Bearer " + stub.IssueToken(other)}}
	post(t, client, mineHeader, "Bache en Prat")
	post(t, client, otherHeader, "Ajeno")
	post(t, client, mineHeader, "Luminaria")

	source := feedout.NewHTTPFeedSource(client)
	items, err := source.Publications(context.Background(), mineHeader, mine)
	if err != nil {
		t.Fatalf("publications: %v", err)
	}
	if len(items) != 2 || items[0].Title != "Bache en Prat" || items[1].Title != "Luminaria" {
		t.Fatalf("unexpected publications %+v", items)
	}
	if items[0].Status.Name != "Recibido" || items[0].Category.Name != "Bache" || items[0].User.ID != mine {
		t.Fatalf("unexpected nested fields %+v", items[0])
	}
}

func TestAnnouncementsFailures(t *testing.T) {
	t.Parallel()
	stub, client := newSource(t)
	token := stub.IssueToken(stub.AddUser("1-9", "x", false))
	header := http.Header{"Authorization": {"Bearer " + token}}
	source := feedout.NewHTTPFeedSource(client)

	items, err := source.Announcements(context.Background(), header)
	if err != nil || len(items) != 3 {
		t.Fatalf("announcements: %v %d", err, len(items))
	}
	if items[1].Images[0].URL != "/media/anuncios/corte.jpg" {
		t.Fatalf("images not decoded: %+v", items[1])
	}

	stub.ServeAnnouncementsAsHTML()
	if _, err := source.Announcements(context.Background(), header); !errors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("html must be malformed, got %v", err)
	}

	stub.RevokeAll()
	if _, err := source.Announcements(context.Background(), header); !apperrors.RequiresLogin(err) {
		t.Fatalf("revoked token must require login, got %v", err)
	}
}
