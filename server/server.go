// Package server exposes outline extraction over HTTP.
//
// Uploaded PDFs are stored in an input directory and their outlines in an
// output directory, using the same <stem>.pdf / <stem>.json layout as a
// batch run, so a server and the batch command can share directories.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/batch"
)

// Config configures a Server
type Config struct {
	// InputDir stores uploaded PDFs. Created when missing.
	InputDir string

	// OutputDir stores <stem>.json outlines. Created when missing.
	OutputDir string

	// AllowedOrigins for CORS. Default: any origin.
	AllowedOrigins []string

	// MaxUploadBytes limits the request body of an upload. Default: 50 MiB.
	MaxUploadBytes int64

	// Indent is the JSON indentation of stored outlines. Default: two spaces.
	Indent string

	// Settings configures the extraction of every upload.
	// Default: pdfoutline.DefaultSettings()
	Settings pdfoutline.Settings

	// Logger receives request and processing logs. Default: slog.Default()
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 50 << 20
	}
	if c.Indent == "" {
		c.Indent = "  "
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Settings == (pdfoutline.Settings{}) {
		c.Settings = pdfoutline.DefaultSettings()
	}
}

// Server serves the outline API
type Server struct {
	config Config
	runner *batch.Runner
	router *chi.Mux
	logger *slog.Logger
}

// New creates a Server and its directories
func New(cfg Config) (*Server, error) {
	cfg.defaults()

	if cfg.InputDir == "" || cfg.OutputDir == "" {
		return nil, errors.New("server: input and output directories are required")
	}
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("server: create %s: %w", dir, err)
		}
	}

	s := &Server{
		config: cfg,
		logger: cfg.Logger,
		runner: batch.New(batch.Config{
			InputDir:  cfg.InputDir,
			OutputDir: cfg.OutputDir,
			Workers:   1,
			Indent:    cfg.Indent,
			Settings:  cfg.Settings,
			Logger:    cfg.Logger,
		}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	s.Attach(r)
	s.router = r

	return s, nil
}

// Attach registers the API routes on r
func (s *Server) Attach(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/files", s.handleFiles)
		r.Get("/outline/{stem}", s.handleOutline)
		r.Get("/pdf/{stem}", s.handlePDF)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server: listening", "addr", addr,
			"input_dir", s.config.InputDir, "output_dir", s.config.OutputDir)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.logger.Info("server: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}
