package stubapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"vecino/internal/platform/stubapi"
)

func TestTokenAndProtectedRoutes(t *testing.T) {
	t.Parallel()
	stub := stubapi.New()
	stub.AddUser("12345678-5", "secreto", false)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + stubapi.Prefix + "/categorias/")
	if err != nil {
		t.Fatalf("get categories: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	body, _ := json.Marshal(map[string]string{"rut": "12345678-5", "password": "secreto"})
	resp, err = http.Post(srv.URL+stubapi.Prefix+"/token/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post token: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if out["access"] == "" || out["refresh"] == "" || out["id"].(float64) != 1 {
		t.Fatalf("unexpected token payload %+v", out)
	}
}

func TestCreateThenUploadEvidence(t *testing.T) {
	t.Parallel()
	stub := stubapi.New()
	userID := stub.AddUser("1-9", "x", false)
	token := stub.IssueToken(userID)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	payload, _ := json.Marshal(map[string]any{"titulo": "Bache", "categoria": 11, "departamento": 3})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+stubapi.Prefix+"/publicaciones/", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := stubapi.Publication{}
	_ = json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || created.ID == 0 {
		t.Fatalf("unexpected create response %d %+v", resp.StatusCode, created)
	}

	stub.RejectUpload("b.png", http.StatusInternalServerError)
	for _, name := range []string{"a.jpg", "b.png"} {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		fw, _ := mw.CreateFormFile("archivo", name)
		_, _ = fw.Write([]byte("data"))
		_ = mw.WriteField("publicacion_id", strconv.Itoa(created.ID))
		_ = mw.WriteField("extension", "jpg")
		_ = mw.Close()
		req, _ := http.NewRequest(http.MethodPost, srv.URL+stubapi.Prefix+"/evidencias/", buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload %s: %v", name, err)
		}
		resp.Body.Close()
	}
	if stub.UploadCalls() != 2 || len(stub.Evidence()) != 1 || stub.Evidence()[0].FileName != "a.jpg" {
		t.Fatalf("unexpected evidence state: calls=%d %+v", stub.UploadCalls(), stub.Evidence())
	}
	if stub.CreateCalls() != 1 || stub.LastCreateBody()["titulo"] != "Bache" {
		t.Fatalf("unexpected create state %+v", stub.LastCreateBody())
	}
}
