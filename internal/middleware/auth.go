package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-survey-admin/internal/metrics"
	"go-survey-admin/internal/model"
)

type tokenDecoder interface {
	Decode(tokenString string) (*model.Claims, error)
}

type identityLoader interface {
	LoadIdentity(ctx context.Context, username string) (model.Identity, error)
}

// RejectReasoner labels a token failure for logs and metrics.
type RejectReasoner func(err error) string

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	decoder    tokenDecoder
	identities identityLoader
	reason     RejectReasoner
}

func NewAuthMiddleware(decoder tokenDecoder, identities identityLoader, reason RejectReasoner) *AuthMiddleware {
	if reason == nil {
		reason = func(error) string { return "invalid" }
	}
	return &AuthMiddleware{decoder: decoder, identities: identities, reason: reason}
}

// Authenticate attaches the caller's identity when a valid bearer token is
// present. Bad or missing tokens never fail the request here; RequireRoles
// decides.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.decoder.Decode(token)
		if err != nil {
			m.reject(r, m.reason(err), err)
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.identities.LoadIdentity(r.Context(), claims.Username)
		if err != nil {
			m.reject(r, m.reason(err), err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *AuthMiddleware) reject(r *http.Request, reason string, err error) {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	slog.Warn("bearer token rejected",
		"request_id", RequestIDFromContext(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"error", err,
	)
}

// RequireRoles lets the request through only when the attached identity
// holds one of the roles. Role names are compared in ROLE_ form.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		roleSet[model.Authority(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				metrics.GuardRejectionsTotal.WithLabelValues("401").Inc()
				writeFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if _, allowed := roleSet[identity.Authority()]; !allowed {
				metrics.GuardRejectionsTotal.WithLabelValues("403").Inc()
				writeFailure(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
