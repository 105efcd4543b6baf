package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/cyberquest/apiserver/config"
	"github.com/cyberquest/apiserver/internal/db"
	"github.com/cyberquest/apiserver/internal/events"
	"github.com/cyberquest/apiserver/internal/handlers"
	"github.com/cyberquest/apiserver/internal/services"
	"github.com/cyberquest/apiserver/internal/storage"
	"github.com/cyberquest/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *events.Bus
}

// New constructs a Server: opens the database, seeds the game catalog,
// and wires repositories, services, and routers.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.Auth.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus, err := newEventBus(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	attachments, err := newAttachmentStore(ctx, cfg.Attachments)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	gameRepo := store.NewGameRepository(dbConn)
	scoreRepo := store.NewScoreRepository(dbConn)
	feedbackRepo := store.NewFeedbackRepository(dbConn)

	var publisher services.Publisher
	if bus != nil {
		publisher = bus
	}

	userService := services.NewUserService(userRepo, cfg.Registration)
	gameService := services.NewGameService(gameRepo)
	scoreService := services.NewScoreService(scoreRepo, userRepo, gameRepo, cfg.Scoring, publisher)
	adminService := services.NewAdminService(userRepo, scoreRepo, publisher)
	feedbackService := services.NewFeedbackService(feedbackRepo, publisher)

	if err := gameService.EnsureSeeded(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("seed game catalog: %w", err)
	}

	tokenTTL := time.Duration(cfg.Auth.TokenTTL) * time.Hour
	authHandler := handlers.NewAuthHandler(userService, cfg.Auth.Secret, tokenTTL)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/account", func(r chi.Router) {
		r.Use(authHandler.RequireAuth)
		handlers.AccountRouter(r, handlers.NewAccountHandler(userService))
	})
	router.Route("/games", func(r chi.Router) {
		handlers.GameRouter(r, handlers.NewGameHandler(gameService, userService))
	})
	router.Route("/scores", func(r chi.Router) {
		handlers.ScoreRouter(r, handlers.NewScoreHandler(scoreService), authHandler.RequireAuth)
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(authHandler.RequireAuth, authHandler.RequireAdmin)
		handlers.AdminRouter(r, handlers.NewAdminHandler(adminService))
	})
	router.Route("/feedback", func(r chi.Router) {
		handlers.FeedbackRouter(
			r,
			handlers.NewFeedbackHandler(feedbackService, attachments),
			authHandler.RequireAuth,
			authHandler.RequireAdmin,
		)
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
		events:     bus,
	}, nil
}

// newEventBus constructs the configured event broker, or nil when
// events are disabled.
func newEventBus(ctx context.Context, cfg config.EventsConfig) (*events.Bus, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.New(backend), nil
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// newAttachmentStore constructs the configured attachment store, or nil
// when attachments are disabled.
func newAttachmentStore(ctx context.Context, cfg config.AttachmentsConfig) (*storage.AttachmentStore, error) {
	var backend storage.ObjectStorage
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "minio":
		minioBackend, err := storage.NewMinioBackend(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = minioBackend
	case "gcs":
		gcsBackend, err := storage.NewGCSBackend(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = gcsBackend
	default:
		return nil, fmt.Errorf("unknown attachment backend %q", cfg.Backend)
	}

	attachments := storage.NewAttachmentStore(backend)
	if err := attachments.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return attachments, nil
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
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
