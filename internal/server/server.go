package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adboard/server/config"
	"github.com/adboard/server/internal/db"
	"github.com/adboard/server/internal/handlers"
	"github.com/adboard/server/internal/metrics"
	"github.com/adboard/server/internal/middleware"
	"github.com/adboard/server/internal/services"
	"github.com/adboard/server/internal/store"
	"github.com/adboard/server/internal/web"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with the full middleware stack and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	view, err := web.NewRenderer()
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	listingRepo := store.NewListingRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)

	listingService := services.NewListingService(listingRepo)
	userService := services.NewUserService(userRepo)

	authHandler := handlers.NewAuthHandler(userService, view, jwtSecret, cfg.CookieSecure)
	listingHandler := handlers.NewListingHandler(listingService, view)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := chi.NewRouter()
	router.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Logger,
		chimiddleware.Timeout(60*time.Second),
		collector.Middleware,
	)
	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	// Board and account pages share the session and CSRF middleware.
	router.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(cfg.CookieSecure))
		r.Use(authHandler.WithUser)
		handlers.AuthRouter(r, authHandler)
		handlers.ListingRouter(r, listingHandler, handlers.RequireAuth)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
