package simbackend

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fleetrent/fleetrent-client/internal/middleware"
	"github.com/fleetrent/fleetrent-client/internal/pkg/jwt"
	"github.com/fleetrent/fleetrent-client/internal/pkg/response"
)

// Config carries what the simulator needs to serve.
type Config struct {
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
}

// Server bundles the simulator's router and collaborators.
type Server struct {
	Router chi.Router
	Store  *Store
	Hub    *Hub
	JWT    *jwt.Service
}

// New wires the simulator around the given store.
func New(store *Store, cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.TokenTTL)
	hub := NewHub()
	h := NewHandler(store, jwtService, hub)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Post("/api/public/authentication/login", h.Login)
	r.Get("/api/public/branch/branches", h.ListBranches)
	r.Get("/ws/reservations", h.Feed)

	authMiddleware := middleware.Auth(jwtService)
	r.Route("/api/private", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/reservations", h.ListReservations)
		r.With(middleware.RequireManager()).Put("/reservations/{id}/status", h.TransitionStatus)

		r.Get("/car/cars", h.ListCars)
		r.With(middleware.RequireManager()).Get("/revenues", h.ListRevenues)
		r.With(middleware.RequireManager()).Get("/expenses", h.ListExpenses)
	})

	return &Server{Router: r, Store: store, Hub: hub, JWT: jwtService}
}
