package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/metrics"
	"github.com/AchilleasB/rentals/marketplace-service/internal/adapters/respond"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
)

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

type AuthMiddleware struct {
	resolver SessionResolver
	errors   *respond.Errors
	metrics  *metrics.Metrics
}

func NewAuthMiddleware(resolver SessionResolver, errs *respond.Errors, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, errors: errs, metrics: m}
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession stores the resolved session on ctx.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session stored by Authenticated or
// RequireRoles.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.Session)
	return s, ok && s != nil
}

// Authenticated resolves the caller and rejects the request if that
// fails. No role check is applied.
func (m *AuthMiddleware) Authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := m.resolve(r)
		if err != nil {
			if domain.KindOf(err) == domain.KindUnauthenticated {
				m.metrics.ObserveDenial(domain.ReasonNoIdentity.String())
			}
			m.errors.Write(w, r, err)
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), session)))
	}
}

// RequireRoles resolves the caller and runs the authorization engine for
// roles before calling next.
func (m *AuthMiddleware) RequireRoles(next http.HandlerFunc, roles ...domain.Role) http.HandlerFunc {
	return m.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())
		decision := domain.Authorize(&session.Identity, roles...)
		if !decision.Allowed {
			m.metrics.ObserveDenial(decision.Reason.String())
			m.errors.Write(w, r, decision.Err())
			return
		}
		next(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*domain.Session, error) {
	token, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return m.resolver.Resolve(r.Context(), token)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", domain.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}
