package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/stubapi"
)

func TestDescribe(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", fmt.Errorf("list: %w", apperrors.ErrUnauthorized), "session expired, run `vecino login`"},
		{"validation", apperrors.Required("titulo"), apperrors.Required("titulo").Error()},
		{"remote detail", &apperrors.RemoteError{Kind: apperrors.ErrServer, Status: 400, Detail: "base de datos no disponible"}, "base de datos no disponible"},
		{"plain", errors.New("--rut is required"), "--rut is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := describe(tc.err); got != tc.want {
				t.Fatalf("describe: got %q want %q", got, tc.want)
			}
		})
	}
}

type cli struct {
	t    *testing.T
	home string
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--home", c.home}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("vecino %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func newCLI(t *testing.T, baseURL string) cli {
	t.Helper()
	home := t.TempDir()
	cfg := fmt.Sprintf(`api:
  base_url: %s
location:
  provider: static
  fixed:
    latitude: -22.4512
    longitude: -68.9101
log:
  level: error
`, baseURL)
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cli{t: t, home: home}
}

func TestReportLifecycleAgainstStub(t *testing.T) {
	t.Parallel()
	stub := stubapi.New()
	stub.AddUser("12345678-5", "vecino", false)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	c := newCLI(t, srv.URL+stubapi.Prefix)

	if out := c.mustRun("login", "--rut", "12345678-5", "--password", "vecino"); !strings.Contains(out, "logged in as user 1") {
		t.Fatalf("unexpected login output %q", out)
	}

	evidenceDir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(evidenceDir, name), png, 0o600); err != nil {
			t.Fatalf("write evidence: %v", err)
		}
	}
	stub.RejectUpload("b.png", http.StatusInternalServerError)

	out := c.mustRun("report", "submit",
		"--title", "Luminaria apagada",
		"--category", "12",
		"--street", "Granaderos",
		"--number", "2140",
		"--evidence", filepath.Join(evidenceDir, "a.png"),
		"--evidence", filepath.Join(evidenceDir, "b.png"),
	)
	if !strings.Contains(out, "report 101 created, 1 evidence file(s) failed") || !strings.Contains(out, "b.png") {
		t.Fatalf("unexpected submit output %q", out)
	}
	if !strings.Contains(out, "-22.451200,-68.910100 device=true") {
		t.Fatalf("expected the static fix in %q", out)
	}
	body := stub.LastCreateBody()
	if body["departamento"] != float64(3) || body["ubicacion"] != "Granaderos 2140" {
		t.Fatalf("unexpected create body %+v", body)
	}

	stub.AcceptUploads()
	if out := c.mustRun("report", "retry-evidence", "101"); !strings.Contains(out, "report 101 created") {
		t.Fatalf("unexpected retry output %q", out)
	}
	if ev := stub.Evidence(); len(ev) != 2 || ev[1].FileName != "b.png" {
		t.Fatalf("unexpected evidence %+v", ev)
	}

	if out := c.mustRun("report", "attempts"); strings.Count(out, "report=101") != 2 {
		t.Fatalf("expected two attempts in %q", out)
	}
	if out := c.mustRun("history"); !strings.Contains(out, "Luminaria apagada") || !strings.Contains(out, "Recibido") {
		t.Fatalf("unexpected history %q", out)
	}
}

func TestRevokedTokenClearsSession(t *testing.T) {
	t.Parallel()
	stub := stubapi.New()
	stub.AddUser("12345678-5", "vecino", false)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	c := newCLI(t, srv.URL+stubapi.Prefix)

	c.mustRun("login", "--rut", "12345678-5", "--password", "vecino")
	stub.RevokeAll()

	_, err := c.run("announcements")
	if !apperrors.RequiresLogin(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := describe(err); !strings.Contains(got, "vecino login") {
		t.Fatalf("unexpected message %q", got)
	}
	if _, err := c.run("whoami"); !errors.Is(err, apperrors.ErrNoSession) {
		t.Fatalf("expected the session to be cleared, got %v", err)
	}
}

func TestSubmitWithoutSessionMakesNoRequest(t *testing.T) {
	t.Parallel()
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	c := newCLI(t, srv.URL+stubapi.Prefix)

	_, err := c.run("report", "submit", "--title", "Bache", "--category", "11", "--street", "Sotomayor")
	if !errors.Is(err, apperrors.ErrNoSession) {
		t.Fatalf("expected no session, got %v", err)
	}
	if stub.CreateCalls() != 0 {
		t.Fatalf("expected no create calls, got %d", stub.CreateCalls())
	}
}

func breakDatabase(t *testing.T, home string) {
	t.Helper()
	db := filepath.Join(home, "vecino.db")
	if err := os.RemoveAll(db); err != nil {
		t.Fatalf("remove db: %v", err)
	}
	if err := os.Mkdir(db, 0o700); err != nil {
		t.Fatalf("replace db with a directory: %v", err)
	}
}

func TestLogoutSurvivesBrokenDatabase(t *testing.T) {
	t.Parallel()
	stub := stubapi.New()
	stub.AddUser("12345678-5", "vecino", false)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	c := newCLI(t, srv.URL+stubapi.Prefix)

	c.mustRun("login", "--rut", "12345678-5", "--password", "vecino")
	breakDatabase(t, c.home)

	if out := c.mustRun("whoami"); !strings.Contains(out, "user 1") {
		t.Fatalf("whoami without a ledger: %q", out)
	}
	if out := c.mustRun("logout"); !strings.Contains(out, "logged out") {
		t.Fatalf("unexpected logout output %q", out)
	}
	if _, err := os.Stat(filepath.Join(c.home, "credentials.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("credentials must be removed, stat err=%v", err)
	}
}

func TestLogoutWithUnopenableSQLiteStore(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "http://127.0.0.1:1/api/v1")
	f, err := os.OpenFile(filepath.Join(c.home, "config.yaml"), os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	if _, err := f.WriteString("store:\n  backend: sqlite\n"); err != nil {
		t.Fatalf("append config: %v", err)
	}
	_ = f.Close()
	breakDatabase(t, c.home)

	if out := c.mustRun("logout"); !strings.Contains(out, "logged out") {
		t.Fatalf("unexpected logout output %q", out)
	}
}
