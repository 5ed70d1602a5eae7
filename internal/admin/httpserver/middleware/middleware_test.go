package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

type mockAuthenticator struct {
	token    string
	operator *Operator
	err      error
}

func (m *mockAuthenticator) Authenticate(_ *http.Request, token string) (*Operator, error) {
	if token != m.token {
		return nil, ErrUnauthorized
	}
	return m.operator, m.err
}

func TestAuthMiddleware(t *testing.T) {
	auth := &mockAuthenticator{
		token:    "valid",
		operator: &Operator{UID: "op-1", Email: "ops@example.com"},
	}

	handler := HTMX()(Auth(auth, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator, ok := OperatorFromContext(r.Context())
		if !ok {
			t.Fatalf("expected operator in context")
		}
		if operator.DisplayName() != "ops@example.com" {
			t.Fatalf("unexpected display name %q", operator.DisplayName())
		}
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("missing token redirects with next", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/inventory?category=bebidas", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rr.Code)
		}
		location, err := url.Parse(rr.Header().Get("Location"))
		if err != nil {
			t.Fatalf("parse location: %v", err)
		}
		if location.Path != "/login" {
			t.Fatalf("expected redirect to /login, got %s", location.Path)
		}
		if next := location.Query().Get("next"); next != "/inventory?category=bebidas" {
			t.Fatalf("unexpected next %q", next)
		}
	})

	t.Run("htmx unauthorized returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if rr.Header().Get("HX-Redirect") != "/login" {
			t.Fatalf("expected HX-Redirect header to /login")
		}
	})

	t.Run("valid token passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
		req.Header.Set("Authorization", "Bearer valid")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("token from cookie passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
		req.AddCookie(&http.Cookie{Name: "__session", Value: "valid"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("expired token triggers refresh header", func(t *testing.T) {
		auth.err = NewAuthError(ReasonTokenExpired, errors.New("expired"))
		defer func() { auth.err = nil }()
		req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
		req.Header.Set("Authorization", "Bearer valid")
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if rr.Header().Get("HX-Refresh") != "true" {
			t.Fatalf("expected HX-Refresh header")
		}
	})
}

func TestCSRFMiddleware(t *testing.T) {
	mw := CSRF(CSRFConfig{CookieName: "csrf", HeaderName: "X-CSRF-Token"})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("issues cookie on GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CSRFTokenFromContext(r.Context()) == "" {
				t.Fatalf("expected token in context")
			}
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		found := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == "csrf" && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected csrf cookie to be issued")
		}
	})

	t.Run("rejects POST without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/inventory/products", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "abc"})
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("accepts POST with matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/inventory/products", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "abc"})
		req.Header.Set("X-CSRF-Token", "abc")
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("accepts POST with matching form field", func(t *testing.T) {
		form := url.Values{CSRFFormField: {"abc"}}
		req := httptest.NewRequest(http.MethodPost, "/inventory/products", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "abc"})
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("rejects mismatched token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/inventory/products", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "abc"})
		req.Header.Set("X-CSRF-Token", "xyz")
		rr := httptest.NewRecorder()
		mw(ok).ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})
}

func TestRequireHTMX(t *testing.T) {
	handler := HTMX()(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/inventory/table", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for direct navigation, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/inventory/table", nil)
	req.Header.Set("HX-Request", "true")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("Vary") != "HX-Request" {
		t.Fatalf("expected Vary header for htmx responses")
	}
}

func TestNoStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/inventory", nil))

	if got := rr.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
		t.Fatalf("unexpected cache-control %q", got)
	}
	if got := rr.Header().Get("Pragma"); got != "no-cache" {
		t.Fatalf("unexpected pragma %q", got)
	}
}

func TestRequestInfoMiddleware(t *testing.T) {
	handler := RequestInfoMiddleware("stock/", " Staging ")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, ok := RequestInfoFromContext(r.Context())
		if !ok {
			t.Fatalf("expected request info")
		}
		if info.BasePath != "/stock" {
			t.Fatalf("unexpected base path %q", info.BasePath)
		}
		if info.Environment != "Staging" {
			t.Fatalf("unexpected environment %q", info.Environment)
		}
		if BasePathFromContext(r.Context()) != "/stock" {
			t.Fatalf("unexpected base path from context")
		}
		if EnvironmentFromContext(r.Context()) != "Staging" {
			t.Fatalf("unexpected environment from context")
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stock/inventory", nil))
}

func TestEnvironmentDefaults(t *testing.T) {
	if got := EnvironmentFromContext(context.Background()); got != "Development" {
		t.Fatalf("expected Development outside middleware, got %q", got)
	}

	var got string
	handler := RequestInfoMiddleware("", "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = EnvironmentFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "Development" {
		t.Fatalf("expected Development for blank label, got %q", got)
	}
}
