package demoserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/pkg/auth"
	"github.com/shashiranjanraj/mapstack/pkg/logger"
	"github.com/shashiranjanraj/mapstack/pkg/middleware"
	"github.com/shashiranjanraj/mapstack/pkg/reqid"
)

// Default demo credentials.
const (
	DemoEmail    = "admin@mapstack.local"
	DemoPassword = "admin"
)

const tokenTTL = 12 * time.Hour

// Server is the demo backend.
type Server struct {
	store        *memStore
	passwordHash string
}

// New builds a demo server seeded with the given products.
func New(seed ...models.Product) *Server {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		panic(err) // static input, cannot fail
	}

	s := &Server{
		store:        newMemStore(),
		passwordHash: hash,
	}
	for _, p := range seed {
		s.store.addProduct(p)
	}
	return s
}

// Handler returns the chi router implementing the backend contract.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(reqid.Middleware())
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken)

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleCreateProduct)
			r.Put("/{id}", s.handleUpdateProduct)
			r.Delete("/delete-multiple", s.handleDeleteProducts)
			r.Delete("/{id}/image/{imageName}", s.handleDeleteImage)
		})

		r.Route("/api/tickets", func(r chi.Router) {
			r.Get("/", s.handleListTickets)
			r.Post("/", s.handleCreateTicket)
			r.Post("/deduct-many", s.handleDeduct)
			r.Delete("/clear", s.handleClearDeducted)
			r.Put("/{id}", s.handleUpdateTicket)
			r.Delete("/{id}", s.handleDeleteTicket)
		})
	})

	return r
}

// ListenAndServe runs the demo backend on addr until the process exits.
func (s *Server) ListenAndServe(addr string) error {
	logger.Info("demoserver: listening", "addr", addr, "email", DemoEmail)
	return http.ListenAndServe(addr, s.Handler())
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed login request")
		return
	}

	if creds.Email != DemoEmail || !auth.CheckPassword(s.passwordHash, creds.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.IssueToken(creds.Email, tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("demoserver: encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
