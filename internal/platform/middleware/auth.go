package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "multigremial/pkg/domain-errors"
	"multigremial/pkg/platform/httputil"
)

// TokenValidator is the interface the auth gate needs from the JWT service.
type TokenValidator interface {
	ValidateToken(tokenString string) (*AdminClaims, error)
}

// AdminClaims is the identity the gate attaches to authenticated requests.
type AdminClaims struct {
	AdminID string
	Rol     string
}

type contextKeyAdminID struct{}

// ContextKeyAdminID is exported for use in handlers.
var ContextKeyAdminID = contextKeyAdminID{}

// GetAdminID retrieves the authenticated administrator id from the context.
func GetAdminID(ctx context.Context) string {
	adminID, ok := ctx.Value(ContextKeyAdminID).(string)
	if !ok {
		return ""
	}
	return adminID
}

// RequireAuth rejects requests without a valid bearer token and stores the
// administrator identity in context for downstream handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", GetRequestID(r.Context()),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token requerido"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token inválido"))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminID, claims.AdminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
