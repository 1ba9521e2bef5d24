package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const (
	// uploadField is the multipart field carrying the email container
	uploadField = "msgfile"

	defaultMaxUploadSize int64 = 64 << 20
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	staticDir     string
	corsOrigins   []string
	maxUploadSize int64
	extractRate   rate.Limit
	extractBurst  int
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithStaticDir serves files of dir for every path not matched by the API
func WithStaticDir(dir string) Option {
	return func(c *config) {
		c.staticDir = dir
	}
}

// WithCORSOrigins enables CORS for the given origins
func WithCORSOrigins(origins ...string) Option {
	return func(c *config) {
		c.corsOrigins = origins
	}
}

// WithMaxUploadSize limits the request body of /extract in bytes
func WithMaxUploadSize(n int64) Option {
	return func(c *config) {
		c.maxUploadSize = n
	}
}

// WithExtractRate limits /extract to perSecond requests with the given burst.
// A non-positive rate disables limiting.
func WithExtractRate(perSecond float64, burst int) Option {
	return func(c *config) {
		c.extractRate = rate.Limit(perSecond)
		c.extractBurst = burst
	}
}

// UseCases bundles the use cases served over HTTP
type UseCases struct {
	Extraction interfaces.ExtractionUseCase
	Files      interfaces.FileUseCase
	Bundle     interfaces.BundleUseCase
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	uc UseCases,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:          "localhost:8080",
		maxUploadSize: defaultMaxUploadSize,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	if uc.Extraction == nil || uc.Files == nil || uc.Bundle == nil {
		return nil, goerr.New("all use cases are required")
	}

	apiDoc, err := loadAPIDocument(ctx)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.extractRate > 0 {
		burst := cfg.extractBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.extractRate, burst)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(EscapedRoutePath)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)
	router.Get("/openapi.json", handleAPIDocument(apiDoc))

	extractHandler := NewExtractHandler(uc.Extraction, cfg.maxUploadSize, limiter)
	router.Post("/extract", extractHandler.Handle)

	fileHandler := NewFileHandler(uc.Files)
	router.Get("/preview/{folder}/{filePath}", fileHandler.Preview)
	router.Get("/download/{folder}/{filePath}", fileHandler.Download)

	bundleHandler := NewBundleHandler(uc.Bundle)
	router.Post("/zip", bundleHandler.Handle)

	if cfg.staticDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(cfg.staticDir)))
	}

	var handler http.Handler = router
	if len(cfg.corsOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
			ExposedHeaders: []string{"Content-Disposition"},
		}).Handler(handler)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
