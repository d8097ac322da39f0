// Package server exposes the render pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	hcpdf "github.com/alnah/go-hcpdf"
	"github.com/alnah/go-hcpdf/internal/logger"
)

// VersionHeader carries the build version on liveness responses.
const VersionHeader = "X-Hcpdf-Version"

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Renderer is the render pipeline consumed by the handlers.
// *hcpdf.Renderer is the production implementation.
type Renderer interface {
	PDFFromURL(ctx context.Context, req hcpdf.URLRequest) ([]byte, error)
	PDFFromHTML(ctx context.Context, req hcpdf.HTMLRequest) ([]byte, error)
	ScreenshotFromURL(ctx context.Context, req hcpdf.URLRequest) ([]byte, error)
	ScreenshotFromHTML(ctx context.Context, req hcpdf.HTMLRequest) ([]byte, error)
	Presets() map[string]hcpdf.PDFOptions
}

// StatsProvider reports page pool usage. *hcpdf.PagePool implements it.
type StatsProvider interface {
	Stats() hcpdf.PoolStats
}

// Compile-time interface checks
var (
	_ Renderer      = (*hcpdf.Renderer)(nil)
	_ StatsProvider = (*hcpdf.PagePool)(nil)
)

// Config configures the HTTP surface.
type Config struct {
	Version      string        // sent in VersionHeader by /hc; empty omits it
	BearerSecret string        // empty disables authentication
	BodyLimit    int64         // max POST body size in bytes; <= 0 uses 1 MiB
	Stats        StatsProvider // optional; enables GET /stats
}

// Server routes requests to a Renderer.
type Server struct {
	cfg     Config
	render  Renderer
	log     *logger.Logger
	handler http.Handler
}

// New builds the router and middleware chain.
func New(render Renderer, log *logger.Logger, cfg Config) *Server {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1 << 20
	}

	s := &Server{
		cfg:    cfg,
		render: render,
		log:    log.WithComponent("server"),
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(Logging(s.log))
	r.Use(Recovery(s.log))
	if s.cfg.BearerSecret != "" {
		r.Use(BearerAuth(s.cfg.BearerSecret))
	}

	r.Get("/hc", s.health)
	r.Get("/", s.pdfFromURL)
	r.Post("/", s.pdfFromHTML)
	r.Get("/screenshot", s.screenshotFromURL)
	r.Post("/screenshot", s.screenshotFromHTML)
	r.Get("/pdf_options", s.pdfOptions)
	if s.cfg.Stats != nil {
		r.Get("/stats", s.stats)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
