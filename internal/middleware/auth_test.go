package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestAuth(t *testing.T) {
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()

	var seenCaller middleware.Caller
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.GetCaller(r.Context())
		require.True(t, ok)
		seenCaller = caller
		w.WriteHeader(http.StatusOK)
	})
	guarded := middleware.Auth(tokens)(next)

	t.Run("success - valid bearer token", func(t *testing.T) {
		token, err := tokens.Issue(userID, "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, seenCaller.ID)
		assert.Equal(t, "alice@example.com", seenCaller.Email)
	})

	t.Run("error - missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		rec := httptest.NewRecorder()

		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_TOKEN")
	})

	t.Run("error - non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	})

	t.Run("error - expired token", func(t *testing.T) {
		expired := auth.NewJWTManager("test-secret", -time.Minute)
		token, err := expired.Issue(userID, "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	})

	t.Run("error - foreign signature", func(t *testing.T) {
		other := auth.NewJWTManager("another-secret", time.Hour)
		token, err := other.Issue(userID, "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := middleware.GetCaller(req.Context())
	assert.False(t, ok)

	caller := middleware.Caller{ID: uuid.New(), Email: "alice@example.com"}
	ctx := middleware.WithCaller(req.Context(), caller)

	got, ok := middleware.GetCaller(ctx)
	require.True(t, ok)
	assert.Equal(t, caller, got)
}
