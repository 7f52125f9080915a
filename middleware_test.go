package fbsr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func callerHandler(t *testing.T, seen *Caller, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if caller, ok := CallerFromContext(r.Context()); ok {
			*seen = caller
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware_BindsCaller(t *testing.T) {
	app := newTestApplication(t, "")
	token, err := app.GenerateSignedRequest(Claims{Algorithm: "HMAC-SHA256", UserID: Int64(42)})
	require.NoError(t, err)

	var (
		seen   Caller
		called bool
	)
	handler := Middleware(app, WithLogger(zaptest.NewLogger(t)))(callerHandler(t, &seen, &called))

	r := httptest.NewRequest(http.MethodGet, "/?signed_request="+token, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.True(t, called)
	assert.False(t, seen.DevBypass)
	require.NotNil(t, seen.Claims.UserID)
	assert.Equal(t, int64(42), *seen.Claims.UserID)
}

func TestMiddleware_RejectsAndLogsCodeOnly(t *testing.T) {
	app := newTestApplication(t, "")
	other, err := Generate([]byte("other-secret"), Claims{Algorithm: "HMAC-SHA256", UserID: Int64(1)})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	var (
		seen   Caller
		called bool
	)
	handler := Middleware(app, WithLogger(zap.New(core)))(callerHandler(t, &seen, &called))

	r := httptest.NewRequest(http.MethodGet, "/canvas", nil)
	r.AddCookie(&http.Cookie{Name: app.CookieName(), Value: other})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)

	entries := logs.FilterMessage("signed request rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(ErrCodeIntegrity), fields["code"])
	assert.Equal(t, "/canvas", fields["path"])
	for _, v := range fields {
		assert.NotEqual(t, other, v)
		assert.NotEqual(t, "app-secret", v)
	}
}

func TestMiddleware_Missing(t *testing.T) {
	app := newTestApplication(t, "")

	t.Run("required", func(t *testing.T) {
		var (
			seen   Caller
			called bool
		)
		handler := Middleware(app)(callerHandler(t, &seen, &called))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("optional", func(t *testing.T) {
		var (
			seen   Caller
			called bool
		)
		handler := Middleware(app, WithOptional(true))(callerHandler(t, &seen, &called))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, called)
		assert.Equal(t, Caller{}, seen)
	})

	t.Run("optional still rejects invalid", func(t *testing.T) {
		var (
			seen   Caller
			called bool
		)
		handler := Middleware(app, WithOptional(true))(callerHandler(t, &seen, &called))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?signed_request=a.b.c", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})
}

func TestMiddleware_DevBypass(t *testing.T) {
	app := newTestApplication(t, "")
	var (
		seen   Caller
		called bool
	)
	handler := Middleware(app, WithDevBypass(DevBypassClaims{UserID: 7, OAuthToken: "dev-token"}))(callerHandler(t, &seen, &called))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, seen.DevBypass)
	require.NotNil(t, seen.Claims.UserID)
	assert.Equal(t, int64(7), *seen.Claims.UserID)
	require.NotNil(t, seen.Claims.OAuthToken)
	assert.Equal(t, "dev-token", *seen.Claims.OAuthToken)
}

func TestDefaultDevBypassClaims(t *testing.T) {
	caller := DefaultDevBypassClaims().ToCaller()
	assert.True(t, caller.DevBypass)
	require.NotNil(t, caller.Claims.UserID)
	assert.Equal(t, int64(1), *caller.Claims.UserID)
	assert.Nil(t, caller.Claims.OAuthToken)
}

func TestCallerFromContext(t *testing.T) {
	_, ok := CallerFromContext(context.Background())
	assert.False(t, ok)

	ctx := BindCaller(context.Background(), Caller{Claims: Claims{Algorithm: "x"}})
	caller, ok := CallerFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "x", caller.Claims.Algorithm)
}
