// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It decides:
//   - which store backs the repositories (SQLite or MongoDB)
//   - which URL patterns map to which handler functions
//   - what middleware runs on which routes
//   - how the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go loads config.Config → server.New
//	server.New creates: store → services → handlers → routes
//
// This is the "composition root" pattern: every dependency is wired here,
// nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/minisocial/internal/auth"
	"github.com/sakif/minisocial/internal/config"
	"github.com/sakif/minisocial/internal/handler"
	"github.com/sakif/minisocial/internal/middleware"
	"github.com/sakif/minisocial/internal/repository"
	"github.com/sakif/minisocial/internal/repository/mongodb"
	sqliteRepo "github.com/sakif/minisocial/internal/repository/sqlite"
	"github.com/sakif/minisocial/internal/service"
	"github.com/sakif/minisocial/internal/upload"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. Start closes it during graceful shutdown;
// callers that never Start (tests) call Close themselves.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the configured store and builds the router.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.StoreDriver, err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close() // clean up the store if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore picks the repository backend.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it does not read like the
// modernc.org/sqlite driver package.
func openStore(cfg config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return mongodb.New(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverSQLite, "":
		if cfg.DBPath != ":memory:" {
			// like `mkdir -p`; 0755 = owner rwx, others rx
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		return sqliteRepo.New(cfg.DBPath)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/register             public
//	POST   /api/auth/login                public
//	GET    /uploads/*                     public, uploaded images
//
//	GET    /api/users/profile             caller's profile
//	PUT    /api/users/profile
//	POST   /api/users/profile/avatar
//	PUT    /api/users/password
//	GET    /api/users/{id}
//	POST   /api/users/{id}/follow
//	POST   /api/users/{id}/unfollow
//
//	POST   /api/posts
//	GET    /api/posts
//	GET    /api/posts/user/{userId}
//	GET    /api/posts/{id}
//	PUT    /api/posts/{id}
//	DELETE /api/posts/{id}
//
//	POST   /api/comments/{postId}
//	GET    /api/comments/{postId}
//	PUT    /api/comments/{id}
//	DELETE /api/comments/{id}
//
//	POST   /api/likes/post/{postId}       DELETE to unlike
//	POST   /api/likes/comment/{commentId} DELETE to unlike
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID, so every log line and 500 can be traced
// 2. RealIP
// 3. Recoverer turns a panic into a 500
// 4. Logger
// The auth gate is applied only to the protected group.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)
	images, err := upload.NewStore(s.config.UploadDir, s.config.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("creating upload store: %w", err)
	}
	gate := auth.NewGate(tokens, s.store, s.logger)

	// === SERVICES ===
	// Every service receives repository interfaces; s.store satisfies all of them.
	authService := service.NewAuthService(s.store, tokens, passwords, s.logger)
	userService := service.NewUserService(s.store, passwords, images, s.logger)
	relationshipService := service.NewRelationshipService(s.store, s.store, s.logger)
	postService := service.NewPostService(s.store, s.store, images, s.logger)
	commentService := service.NewCommentService(s.store, s.store, s.logger)
	engagementService := service.NewEngagementService(s.store, s.store, s.store, s.logger)

	// === HANDLERS ===
	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, relationshipService, images.MaxBytes(), s.logger)
	postHandler := handler.NewPostHandler(postService, images.MaxBytes(), s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	likeHandler := handler.NewLikeHandler(engagementService, s.logger)

	// === Uploaded files ===
	// GET /uploads/image-abc.png → serves {UploadDir}/image-abc.png
	fileServer := http.FileServer(http.Dir(images.Dir()))
	s.router.Handle(upload.PublicPrefix+"*", http.StripPrefix(upload.PublicPrefix, fileServer))

	s.router.Route("/api", func(r chi.Router) {
		// public
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// protected
		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAuth)

			r.Get("/users/profile", userHandler.HandleMe)
			r.Put("/users/profile", userHandler.HandleUpdateProfile)
			r.Post("/users/profile/avatar", userHandler.HandleUploadAvatar)
			r.Put("/users/password", userHandler.HandleChangePassword)
			r.Get("/users/{id}", userHandler.HandleGetByID)
			r.Post("/users/{id}/follow", userHandler.HandleFollow)
			r.Post("/users/{id}/unfollow", userHandler.HandleUnfollow)

			r.Post("/posts", postHandler.HandleCreate)
			r.Get("/posts", postHandler.HandleList)
			r.Get("/posts/user/{userId}", postHandler.HandleListByUser)
			r.Get("/posts/{id}", postHandler.HandleGetByID)
			r.Put("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)

			r.Post("/comments/{postId}", commentHandler.HandleCreate)
			r.Get("/comments/{postId}", commentHandler.HandleList)
			r.Put("/comments/{id}", commentHandler.HandleUpdate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Post("/likes/post/{postId}", likeHandler.HandleLikePost)
			r.Delete("/likes/post/{postId}", likeHandler.HandleUnlikePost)
			r.Post("/likes/comment/{commentId}", likeHandler.HandleLikeComment)
			r.Delete("/likes/comment/{commentId}", likeHandler.HandleUnlikeComment)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store (flushes the SQLite WAL or disconnects from MongoDB)
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("store", s.config.StoreDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
