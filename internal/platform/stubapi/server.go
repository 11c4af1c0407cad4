// Package stubapi is an in-memory stand-in for the municipal backend. It
// serves the same routes and payload shapes under /api/v1 and is used by the
// `vecino stub` command and by adapter tests.
package stubapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	hclog "github.com/hashicorp/go-hclog"

	"vecino/internal/platform/logging"
)

const Prefix = "/api/v1"

type Department struct {
	ID          int    `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

type Category struct {
	ID          int        `json:"id"`
	Name        string     `json:"nombre"`
	Description string     `json:"descripcion"`
	Department  Department `json:"departamento"`
}

type Named struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"nombre"`
}

type Publication struct {
	ID          int    `json:"id"`
	Code        string `json:"codigo"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	PublishedAt string `json:"fecha_publicacion"`
	User        Named  `json:"usuario"`
	Status      Named  `json:"situacion"`
	Category    Named  `json:"categoria"`
	Location    string `json:"ubicacion"`

	raw map[string]any
}

type Image struct {
	ID        int    `json:"id"`
	URL       string `json:"imagen"`
	Date      string `json:"fecha"`
	Extension string `json:"extension"`
}

type Announcement struct {
	ID          int     `json:"id"`
	Title       string  `json:"titulo"`
	Subtitle    string  `json:"subtitulo"`
	Status      string  `json:"estado"`
	Description string  `json:"descripcion"`
	Date        string  `json:"fecha"`
	Category    Named   `json:"categoria"`
	User        Named   `json:"usuario"`
	Images      []Image `json:"imagenes"`
}

// Evidence is one accepted upload.
type Evidence struct {
	PublicationID string
	FileName      string
	Extension     string
	ContentType   string
	Size          int64
}

type user struct {
	id       int
	rut      string
	password string
	name     string
	email    string
	admin    bool
}

type Server struct {
	mu sync.Mutex

	users         map[string]*user
	tokens        map[string]int
	categories    []Category
	publications  []Publication
	announcements []Announcement
	evidence      []Evidence

	nextUserID int
	nextPubID  int
	creates    int
	uploads    int
	epoch      time.Time

	rejectCreate   int
	rejectDetail   string
	rejectUploads  map[string]int
	nonJSONAnnounc bool

	logger hclog.Logger
}

type Option func(*Server)

func WithLogger(logger hclog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New returns a server seeded with the default categories and announcements.
func New(opts ...Option) *Server {
	s := &Server{
		users:         map[string]*user{},
		tokens:        map[string]int{},
		rejectUploads: map[string]int{},
		nextUserID:    1,
		nextPubID:     100,
		epoch:         time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDiscard(s.logger)
	s.categories = defaultCategories()
	s.announcements = defaultAnnouncements()
	return s
}

// Router mounts every route under Prefix.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix(Prefix).Subrouter()
	api.HandleFunc("/token/", s.handleToken).Methods(http.MethodPost)
	api.HandleFunc("/registro/", s.handleRegister).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(s.requireToken)
	private.HandleFunc("/categorias/", s.handleCategories).Methods(http.MethodGet)
	private.HandleFunc("/publicaciones/", s.handleListPublications).Methods(http.MethodGet)
	private.HandleFunc("/publicaciones/", s.handleCreatePublication).Methods(http.MethodPost)
	private.HandleFunc("/evidencias/", s.handleEvidence).Methods(http.MethodPost)
	private.HandleFunc("/anuncios-municipales/", s.handleAnnouncements).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	return r
}

// AddUser registers a citizen and returns its id.
func (s *Server) AddUser(rut, password string, admin bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(rut, password, "", "", admin)
}

func (s *Server) addUserLocked(rut, password, name, email string, admin bool) int {
	u := &user{id: s.nextUserID, rut: rut, password: password, name: name, email: email, admin: admin}
	s.nextUserID++
	s.users[rut] = u
	return u.id
}

// IssueToken mints an access token for userID without going through /token/.
func (s *Server) IssueToken(userID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// RevokeAll invalidates every issued access token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]int{}
}

// RejectCreate makes POST /publicaciones/ answer status with detail.
func (s *Server) RejectCreate(status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectCreate = status
	s.rejectDetail = detail
}

// RejectUpload makes uploads of fileName answer status.
func (s *Server) RejectUpload(fileName string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectUploads[fileName] = status
}

// AcceptUploads clears every upload rejection.
func (s *Server) AcceptUploads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectUploads = map[string]int{}
}

// ServeAnnouncementsAsHTML makes the announcement feed answer with HTML.
func (s *Server) ServeAnnouncementsAsHTML() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonJSONAnnounc = true
}

func (s *Server) SetCategories(categories []Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]Category(nil), categories...)
}

func (s *Server) SetAnnouncements(announcements []Announcement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append([]Announcement(nil), announcements...)
}

// CreateCalls counts POST /publicaciones/ requests, accepted or not.
func (s *Server) CreateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// UploadCalls counts POST /evidencias/ requests, accepted or not.
func (s *Server) UploadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

// Evidence lists accepted uploads in arrival order.
func (s *Server) Evidence() []Evidence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Evidence(nil), s.evidence...)
}

// LastCreateBody is the decoded body of the latest accepted create.
func (s *Server) LastCreateBody() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.publications) == 0 {
		return nil
	}
	return s.publications[len(s.publications)-1].raw
}

func defaultCategories() []Category {
	obras := Department{ID: 3, Name: "Obras Municipales", Description: "Infraestructura y vía pública"}
	aseo := Department{ID: 5, Name: "Aseo y Ornato", Description: "Limpieza y áreas verdes"}
	seguridad := Department{ID: 8, Name: "Seguridad Ciudadana", Description: "Prevención y seguridad"}
	return []Category{
		{ID: 11, Name: "Bache", Description: "Daño en calzada", Department: obras},
		{ID: 12, Name: "Luminaria", Description: "Alumbrado público apagado", Department: obras},
		{ID: 21, Name: "Microbasural", Description: "Acumulación de basura", Department: aseo},
		{ID: 31, Name: "Vehículo abandonado", Description: "Vehículo sin movimiento", Department: seguridad},
	}
}

func defaultAnnouncements() []Announcement {
	return []Announcement{
		{ID: 1, Title: "Operativo de vacunación", Subtitle: "Plaza 23 de Marzo", Status: "publicado", Description: "Vacunación gratuita para mascotas.", Date: "2024-10-01T10:00:00Z", Category: Named{Name: "Salud"}, User: Named{Name: "Municipalidad"}},
		{ID: 2, Title: "Corte programado de agua", Subtitle: "Villa Ayquina", Status: "publicado", Description: "Corte entre 09:00 y 13:00.", Date: "2024-11-02T08:00:00Z", Category: Named{Name: "Servicios"}, User: Named{Name: "Municipalidad"},
			Images: []Image{{ID: 7, URL: "/media/anuncios/corte.jpg", Date: "2024-11-02", Extension: "jpg"}}},
		{ID: 3, Title: "Feria costumbrista", Subtitle: "Parque El Loa", Status: "publicado", Description: "Tres días de feria.", Date: "2024-09-15T12:00:00Z", Category: Named{Name: "Cultura"}, User: Named{Name: "Municipalidad"}},
	}
}
