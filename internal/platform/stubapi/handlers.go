package stubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

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

type registerRequest struct {
	RUT      string `json:"rut"`
	Password string `json:"password"`
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Phone    string `json:"numero_telefonico_movil,omitempty"`
}

type resultsEnvelope[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Las credenciales de autenticación no se proveyeron.")
			return
		}
		s.mu.Lock()
		userID, known := s.tokens[token]
		s.mu.Unlock()
		if !known {
			writeDetail(w, http.StatusUnauthorized, "El token dado no es valido para ningun tipo de token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	req := tokenRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.RUT]
	if !ok || u.password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	access := uuid.NewString()
	s.tokens[access] = u.id
	s.logger.Debug("token issued", "user_id", u.id)
	writeJSON(w, http.StatusOK, tokenResponse{Access: access, Refresh: uuid.NewString(), ID: u.id, IsAdmin: u.admin})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req := registerRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}
	fields := map[string][]string{}
	if req.RUT == "" {
		fields["rut"] = []string{"Este campo es requerido."}
	}
	if req.Password == "" {
		fields["password"] = []string{"Este campo es requerido."}
	}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = []string{"Introduzca una dirección de correo electrónico válida."}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.RUT]; exists {
		fields["rut"] = []string{"usuario con este rut ya existe."}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	id := s.addUserLocked(req.RUT, req.Password, req.Name, req.Email, false)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "rut": req.RUT, "nombre": req.Name, "email": req.Email})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	categories := append([]Category(nil), s.categories...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListPublications(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("usuario")
	s.mu.Lock()
	out := []Publication{}
	for _, p := range s.publications {
		if filter == "" || strconv.Itoa(p.User.ID) == filter {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resultsEnvelope[Publication]{Count: len(out), Results: out})
}

func (s *Server) handleCreatePublication(w http.ResponseWriter, r *http.Request) {
	raw := map[string]any{}
	decodeErr := json.NewDecoder(r.Body).Decode(&raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.rejectCreate != 0 {
		writeDetail(w, s.rejectCreate, s.rejectDetail)
		return
	}
	if decodeErr != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}
	title, _ := raw["titulo"].(string)
	if strings.TrimSpace(title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"titulo": {"Este campo no puede estar en blanco."}})
		return
	}
	categoryID := intField(raw["categoria"])
	categoryName := ""
	for _, c := range s.categories {
		if c.ID == categoryID {
			categoryName = c.Name
		}
	}
	userID, _ := r.Context().Value(ctxKey{}).(int)
	userName := ""
	for _, u := range s.users {
		if u.id == userID {
			userName = u.name
		}
	}
	s.nextPubID++
	description, _ := raw["descripcion"].(string)
	location, _ := raw["ubicacion"].(string)
	pub := Publication{
		ID:          s.nextPubID,
		Code:        fmt.Sprintf("PUB-%05d", s.nextPubID),
		Title:       title,
		Description: description,
		PublishedAt: s.epoch.Add(time.Duration(s.nextPubID) * time.Minute).Format(time.RFC3339),
		User:        Named{ID: userID, Name: userName},
		Status:      Named{Name: "Recibido"},
		Category:    Named{ID: categoryID, Name: categoryName},
		Location:    location,
		raw:         raw,
	}
	s.publications = append(s.publications, pub)
	s.logger.Debug("publication created", "id", pub.ID, "user_id", userID)
	writeJSON(w, http.StatusCreated, pub)
}

func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.uploads++
	s.mu.Unlock()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "multipart form expected")
		return
	}
	file, header, err := r.FormFile("archivo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"archivo": {"No se envió ningún archivo."}})
		return
	}
	defer file.Close()
	size, _ := io.Copy(io.Discard, file)

	pubID := r.FormValue("publicacion_id")
	ext := r.FormValue("extension")
	name := filepath.Base(header.Filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, rejected := s.rejectUploads[name]; rejected {
		writeDetail(w, status, "no se pudo guardar "+name)
		return
	}
	found := false
	for _, p := range s.publications {
		if strconv.Itoa(p.ID) == pubID {
			found = true
		}
	}
	if !found {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"publicacion_id": {"Publicación no existe."}})
		return
	}
	s.evidence = append(s.evidence, Evidence{
		PublicationID: pubID,
		FileName:      name,
		Extension:     ext,
		ContentType:   header.Header.Get("Content-Type"),
		Size:          size,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"id": len(s.evidence), "publicacion": pubID, "extension": ext})
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	html := s.nonJSONAnnounc
	announcements := append([]Announcement(nil), s.announcements...)
	s.mu.Unlock()
	if html {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html><body>mantención</body></html>")
		return
	}
	writeJSON(w, http.StatusOK, resultsEnvelope[Announcement]{Count: len(announcements), Results: announcements})
}

func intField(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}
