package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"finitefield.org/stock-admin/internal/admin/catalog"
	"finitefield.org/stock-admin/internal/admin/httpserver"
	"finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/inventory"
)

const (
	csrfCookieName = "stock_csrf"
	csrfHeaderName = "X-CSRF-Token"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*serverSetup)

type serverSetup struct {
	cfg     httpserver.Config
	service catalog.Service
	options inventory.Options
}

// WithAuthenticator protects the inventory routes with auth.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(s *serverSetup) {
		s.cfg.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the inventory routes.
func WithBasePath(path string) ServerOption {
	return func(s *serverSetup) {
		s.cfg.BasePath = path
	}
}

// WithCatalogService replaces the demo catalog.
func WithCatalogService(service catalog.Service) ServerOption {
	return func(s *serverSetup) {
		s.service = service
	}
}

// WithRecordLimit overrides the create limit.
func WithRecordLimit(limit int) ServerOption {
	return func(s *serverSetup) {
		s.options.RecordLimit = limit
	}
}

// Server is a running inventory server plus the controller behind it.
type Server struct {
	*httptest.Server
	Controller *inventory.Controller
	BasePath   string
}

// NewServer constructs an httptest server running the inventory HTTP stack with
// the demo catalog loaded.
func NewServer(t testing.TB, opts ...ServerOption) *Server {
	t.Helper()

	setup := serverSetup{
		cfg: httpserver.Config{
			Address:        ":0",
			BasePath:       "/admin",
			Environment:    "Test",
			CSRFCookieName: csrfCookieName,
			CSRFHeaderName: csrfHeaderName,
		},
	}
	for _, opt := range opts {
		opt(&setup)
	}
	if setup.service == nil {
		setup.service = catalog.NewStaticService(nil)
	}
	setup.options.Service = setup.service

	ctrl, err := inventory.NewController(setup.options)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	setup.cfg.Controller = ctrl

	srv := httpserver.New(setup.cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return &Server{Server: ts, Controller: ctrl, BasePath: setup.cfg.BasePath}
}

// Endpoint joins path onto the server's base path.
func (s *Server) Endpoint(path string) string {
	return s.Server.URL + strings.TrimRight(s.BasePath, "/") + path
}

// NoRedirectClient returns a client that reports redirects instead of following them.
func NoRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Session carries the CSRF token issued by a page visit.
type Session struct {
	t      testing.TB
	server *Server
	client *http.Client
	cookie *http.Cookie
}

// NewSession visits the inventory page and captures the CSRF cookie.
func (s *Server) NewSession(t testing.TB) *Session {
	t.Helper()

	client := NoRedirectClient()
	resp, err := client.Get(s.Endpoint("/inventory"))
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from inventory page, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == csrfCookieName {
			return &Session{t: t, server: s, client: client, cookie: c}
		}
	}
	t.Fatalf("csrf cookie not issued")
	return nil
}

// Token returns the CSRF token.
func (s *Session) Token() string {
	return s.cookie.Value
}

// Get issues an htmx GET for path.
func (s *Session) Get(path string) *http.Response {
	s.t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.server.Endpoint(path), nil)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("HX-Request", "true")
	req.AddCookie(s.cookie)
	return s.do(req)
}

// Post submits form to path as an htmx request carrying the CSRF token.
func (s *Session) Post(path string, form url.Values) *http.Response {
	s.t.Helper()
	req, err := http.NewRequest(http.MethodPost, s.server.Endpoint(path), strings.NewReader(form.Encode()))
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set(csrfHeaderName, s.cookie.Value)
	req.AddCookie(s.cookie)
	return s.do(req)
}

func (s *Session) do(req *http.Request) *http.Response {
	s.t.Helper()
	resp, err := s.client.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}
