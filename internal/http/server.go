package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"controle/internal/core"
	"controle/internal/locale"
	applog "controle/internal/log"
	"controle/internal/middleware/ratelimit"
	"controle/internal/middleware/security"
	"controle/internal/middleware/trace"
	"controle/internal/report"
	appweb "controle/web"
)

// Ledger is what the handlers need from the ledger service.
type Ledger interface {
	Record(ctx context.Context, e core.Entry) (string, error)
	Report(ctx context.Context, p core.Period) (report.Report, error)
	Ping(ctx context.Context) error
}

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	Locale             locale.Locale
	RateLimitPerMinute int
	Logger             *applog.Logger
	// Today overrides the clock used for default periods and form dates.
	Today func() core.Date
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    Ledger
	loc       locale.Locale
	today     func() core.Date
	limiter   *ratelimit.Limiter
	guard     *security.Guard

	stopCleanup  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. Templates are parsed from the
// embedded filesystem at startup.
func NewServer(addr string, ledger Ledger, opts Options) (*Server, error) {
	if opts.Locale.Symbol == "" {
		opts.Locale = locale.Default
	}
	if opts.Today == nil {
		opts.Today = locale.Today
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		ledger:    ledger,
		loc:       opts.Locale,
		today:     opts.Today,
		limiter:   ratelimit.NewLimiter(opts.RateLimitPerMinute),
		guard:     security.NewGuard(),
	}

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssets(3600)(static))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /entries", s.handleCreateEntry)
	mux.HandleFunc("GET /ui/report", s.handleReportPartial)
	mux.HandleFunc("GET /chart.png", s.handleChart)
	mux.HandleFunc("GET /export/{format}", s.handleExport)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.guard.ClientIP, http.MethodPost)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.guard.Middleware(h)
	h = applog.Middleware(opts.Logger, trace.FromRequest, s.guard.ClientIP)(h)
	h = trace.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel
	go s.limiter.Run(ctx, 5*time.Minute)

	return s, nil
}

// Shutdown stops the rate limiter cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.InfoContext(ctx, "Starting graceful shutdown")
		s.stopCleanup()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
