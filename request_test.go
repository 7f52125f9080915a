package fbsr

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSignedRequest(t *testing.T) {
	t.Run("query parameter", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?signed_request=from-query", nil)
		r.AddCookie(&http.Cookie{Name: "fbsr_1", Value: "from-cookie"})
		got, err := ExtractSignedRequest(r, 1)
		require.NoError(t, err)
		assert.Equal(t, "from-query", got)
	})

	t.Run("form body", func(t *testing.T) {
		form := url.Values{SignedRequestParam: {"from-form"}}
		r := httptest.NewRequest(http.MethodPost, "/canvas", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		got, err := ExtractSignedRequest(r, 1)
		require.NoError(t, err)
		assert.Equal(t, "from-form", got)
	})

	t.Run("json body is restored", func(t *testing.T) {
		body := `{"signed_request":"from-json","other":1}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")
		r.AddCookie(&http.Cookie{Name: "fbsr_1", Value: "from-cookie"})

		got, err := ExtractSignedRequest(r, 1)
		require.NoError(t, err)
		assert.Equal(t, "from-json", got)

		rest, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, body, string(rest))
	})

	t.Run("json body without member falls back to cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
		r.Header.Set("Content-Type", "application/json")
		r.AddCookie(&http.Cookie{Name: "fbsr_1", Value: "from-cookie"})
		got, err := ExtractSignedRequest(r, 1)
		require.NoError(t, err)
		assert.Equal(t, "from-cookie", got)
	})

	t.Run("cookie of another application is ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "fbsr_2", Value: "other-app"})
		_, err := ExtractSignedRequest(r, 1)
		requireCode(t, err, ErrCodeMissing)
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := ExtractSignedRequest(r, 1)
		requireCode(t, err, ErrCodeMissing)
	})
}

func TestApplication_SignedRequestFromRequest(t *testing.T) {
	app := newTestApplication(t, "")
	token, err := app.GenerateSignedRequest(Claims{Algorithm: "HMAC-SHA256", UserID: Int64(42)})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: app.CookieName(), Value: token})
	claims, err := app.SignedRequestFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, int64(42), *claims.UserID)

	r = httptest.NewRequest(http.MethodGet, "/?signed_request=garbage", nil)
	_, err = app.SignedRequestFromRequest(r)
	requireCode(t, err, ErrCodeFormat)
}
