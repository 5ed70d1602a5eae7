package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	custommw "finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/httpserver/ui"
	"finitefield.org/stock-admin/internal/admin/inventory"
	"finitefield.org/stock-admin/internal/platform/config"
	"finitefield.org/stock-admin/internal/platform/observability"
)

const defaultRequestTimeout = 60 * time.Second

// Config holds runtime options for the inventory HTTP server.
type Config struct {
	Address     string
	BasePath    string
	LoginURL    string
	Environment string

	// Authenticator protects every inventory route when set. Leave nil for a
	// single-operator deployment behind a trusted proxy.
	Authenticator custommw.Authenticator

	Controller     *inventory.Controller
	PageTitle      string
	CurrencySymbol string
	Theme          config.Theme

	Logger         *zap.Logger
	RequestTimeout time.Duration

	CSRFCookieName   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
}

// New constructs the HTTP server with its middleware stack.
func New(cfg Config) *http.Server {
	if cfg.Controller == nil {
		panic("inventory controller is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.RequestLogger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(timeout))

	router.Get("/healthz", ui.Healthz)

	basePath := normalizeBasePath(cfg.BasePath)
	handlers := ui.NewHandlers(ui.Dependencies{
		Controller:     cfg.Controller,
		PageTitle:      cfg.PageTitle,
		CurrencySymbol: cfg.CurrencySymbol,
		Theme:          cfg.Theme,
	})

	mountInventoryRoutes(router, basePath, handlers, routeOptions{
		Authenticator: cfg.Authenticator,
		LoginURL:      firstNonEmpty(cfg.LoginURL, "/login"),
		Environment:   cfg.Environment,
		CSRF: custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			CookiePath: basePath,
			HeaderName: cfg.CSRFHeaderName,
			Secure:     cfg.CSRFCookieSecure,
		},
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	LoginURL      string
	Environment   string
	CSRF          custommw.CSRFConfig
}

func mountInventoryRoutes(router chi.Router, base string, h *ui.Handlers, opts routeOptions) {
	router.Route(base, func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.RequestInfoMiddleware(base, opts.Environment))
		if opts.Authenticator != nil {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginURL))
		}
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get("/", h.InventoryPage)
		r.Get("/inventory", h.InventoryPage)
		RegisterFragment(r, "/inventory/table", h.InventoryTable)
		r.Post("/inventory/refresh", h.Refresh)
		r.Get("/inventory/export/{format}", h.Export)

		RegisterFragment(r, "/inventory/products/new", h.NewProductForm)
		r.Post("/inventory/products", h.CreateProduct)
		RegisterFragment(r, "/inventory/products/edit", h.EditProductForm)
		r.Post("/inventory/products/edit", h.UpdateProduct)

		RegisterFragment(r, "/inventory/stock", h.StockForm)
		r.Post("/inventory/stock", h.AdjustStock)

		r.Post("/inventory/deletions", h.BeginDelete)
		r.Post("/inventory/deletions/{ticketID}/proceed", h.ProceedDelete)
		r.Post("/inventory/deletions/{ticketID}/confirm", h.ConfirmDelete)
		r.Post("/inventory/deletions/{ticketID}/cancel", h.CancelDelete)
	})
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
