package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/stock-admin/internal/platform/observability"
)

type authContextKey string

const operatorContextKey authContextKey = "auth.operator"

// Operator is the signed-in person managing stock.
type Operator struct {
	UID   string
	Email string
	Token string
}

// DisplayName returns the email when known, otherwise the uid.
func (o *Operator) DisplayName() string {
	if o == nil {
		return ""
	}
	if o.Email != "" {
		return o.Email
	}
	return o.UID
}

// Authenticator resolves an incoming Bearer token into an Operator.
type Authenticator interface {
	Authenticate(r *http.Request, token string) (*Operator, error)
}

var (
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	// ReasonMissingToken indicates an auth attempt without credentials.
	ReasonMissingToken = "missing_token"
	// ReasonTokenInvalid indicates a malformed or invalid token.
	ReasonTokenInvalid = "token_invalid"
	// ReasonTokenExpired indicates an expired token which may be recoverable.
	ReasonTokenExpired = "token_expired"
)

// Auth validates incoming requests and either attaches an Operator to context or
// redirects to loginURL.
func Auth(authenticator Authenticator, loginURL string) func(http.Handler) http.Handler {
	if authenticator == nil {
		panic("authenticator is required")
	}
	if loginURL == "" {
		loginURL = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = cookieToken(r)
			}
			if strings.TrimSpace(token) == "" {
				logger.Info("auth failure", zap.String("reason", ReasonMissingToken))
				handleUnauthorized(w, r, loginURL, ReasonMissingToken)
				return
			}

			operator, err := authenticator.Authenticate(r, token)
			if err != nil || operator == nil {
				reason := ReasonTokenInvalid
				var authErr *AuthError
				if errors.As(err, &authErr) {
					if authErr.Reason != "" {
						reason = authErr.Reason
					}
					err = authErr.Err
				}
				if err == nil {
					err = ErrUnauthorized
				}
				logger.Info("auth failure", zap.String("reason", reason), zap.Error(err))
				handleUnauthorized(w, r, loginURL, reason)
				return
			}

			ctx := context.WithValue(r.Context(), operatorContextKey, operator)
			ctx = observability.WithLogger(ctx, logger.With(zap.String("operator_uid", operator.UID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorFromContext retrieves the authenticated operator if present.
func OperatorFromContext(ctx context.Context) (*Operator, bool) {
	operator, ok := ctx.Value(operatorContextKey).(*Operator)
	return operator, ok && operator != nil
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func cookieToken(r *http.Request) string {
	for _, name := range []string{"__session", "idToken"} {
		c, err := r.Cookie(name)
		if err != nil {
			continue
		}
		val := strings.TrimSpace(c.Value)
		if val == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(val), "bearer ") {
			return strings.TrimSpace(val[7:])
		}
		return val
	}
	return ""
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginURL, reason string) {
	if IsHTMXRequest(r.Context()) {
		if reason == ReasonTokenExpired {
			w.Header().Set("HX-Refresh", "true")
		} else {
			w.Header().Set("HX-Redirect", loginURL)
		}
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	redirectURL := loginURL
	if u, err := url.Parse(loginURL); err == nil {
		q := u.Query()
		q.Set("next", r.URL.RequestURI())
		if reason == ReasonTokenExpired {
			q.Set("reason", "expired")
		}
		u.RawQuery = q.Encode()
		redirectURL = u.String()
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}
