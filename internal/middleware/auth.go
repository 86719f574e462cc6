package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"taskmanager/internal/auth"
	"taskmanager/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const callerKey contextKey = "caller"

// Caller is the identity resolved from a verified token. It comes from the
// claims alone; the guard never touches the store.
type Caller struct {
	ID    uuid.UUID
	Email string
}

// Auth guards every protected route. A missing token is reported with a
// distinct code from an invalid or expired one, but both answer 401.
func Auth(tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, r, "MISSING_TOKEN", "authorization token is required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, r, "INVALID_TOKEN", "authorization header format must be Bearer {token}")
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				logger.Warn("HTTP: token rejected",
					zap.Error(err),
					zap.String("request_id", GetRequestID(r.Context())))
				unauthorized(w, r, "INVALID_TOKEN", "invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				unauthorized(w, r, "INVALID_TOKEN", "invalid user id in token claims")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, Caller{
				ID:    userID,
				Email: claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCaller returns the identity the Auth middleware stored for this request.
func GetCaller(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok
}

// WithCaller puts a caller identity into the context. Handler tests use it
// to bypass the middleware.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

func unauthorized(w http.ResponseWriter, r *http.Request, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      code,
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}
