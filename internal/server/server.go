package server

import (
	"context"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/campuslearn-be/internal/auth"
	"github.com/hongminglow/campuslearn-be/internal/blob"
	"github.com/hongminglow/campuslearn-be/internal/config"
	"github.com/hongminglow/campuslearn-be/internal/http/handlers"
	"github.com/hongminglow/campuslearn-be/internal/middleware"
	"github.com/hongminglow/campuslearn-be/internal/service"
	"github.com/hongminglow/campuslearn-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, blobs blob.Store, logger zerolog.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, blobs, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewHandler builds the full route tree with its middleware chain.
func NewHandler(cfg config.Config, store storage.Store, blobs blob.Store, logger zerolog.Logger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	protect := middleware.Authenticate(tokens, logger)

	router := mux.NewRouter()
	handlers.NewHealthHandler(time.Now()).Register(router)

	api := router.PathPrefix("/api").Subrouter()
	handlers.NewAuthHandler(service.NewAuthService(store, tokens)).Register(api, protect)

	notes := api.PathPrefix("/notes").Subrouter()
	notes.Use(protect)
	noteService := service.NewNoteService(store, blobs, logger)
	handlers.NewNoteHandler(noteService, cfg.MaxUploadBytes).Register(notes)

	if local, ok := blobs.(*blob.LocalStore); ok {
		mountUploads(router, cfg.PublicBaseURL, local.Dir(), logger)
	}

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, middleware.Recover(logger, router)))
}

// mountUploads serves stored files under the path of publicBase. An absolute
// base still mounts on its path, so links handed to another origin resolve
// back to this server.
func mountUploads(router *mux.Router, publicBase, dir string, logger zerolog.Logger) {
	u, err := url.Parse(publicBase)
	if err != nil {
		logger.Warn().Err(err).Str("public_base_url", publicBase).Msg("uploads not served")
		return
	}
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		logger.Warn().Str("public_base_url", publicBase).Msg("uploads not served: base url has no path")
		return
	}
	prefix := "/" + trimmed + "/"
	files := http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(dir)}))
	router.PathPrefix(prefix).Handler(files).Methods(http.MethodGet, http.MethodHead)
}

// filesOnly hides directory listings.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
