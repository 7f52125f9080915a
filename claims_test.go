package fbsr

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaims_Equal(t *testing.T) {
	base := fullClaims()
	assert.True(t, base.Equal(fullClaims()))
	assert.True(t, Claims{}.Equal(Claims{}))

	mutations := map[string]func(c *Claims){
		"algorithm":          func(c *Claims) { c.Algorithm = "other" },
		"code absent":        func(c *Claims) { c.Code = nil },
		"code value":         func(c *Claims) { c.Code = String("other") },
		"oauth token":        func(c *Claims) { c.OAuthToken = String("other") },
		"token for business": func(c *Claims) { c.TokenForBusiness = nil },
		"expires":            func(c *Claims) { c.Expires = Int64(1) },
		"issued at":          func(c *Claims) { c.IssuedAt = nil },
		"user id":            func(c *Claims) { c.UserID = Int64(7) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			other := fullClaims()
			mutate(&other)
			assert.False(t, base.Equal(other))
			assert.False(t, other.Equal(base))
		})
	}
}

func TestClaims_EqualComparesValuesNotPointers(t *testing.T) {
	a := Claims{Algorithm: "x", UserID: Int64(1)}
	b := Claims{Algorithm: "x", UserID: Int64(1)}
	assert.NotSame(t, a.UserID, b.UserID)
	assert.True(t, a.Equal(b))
}

func TestClaims_MarshalJSONMemberOrder(t *testing.T) {
	data, err := json.Marshal(fullClaims())
	require.NoError(t, err)
	assert.Equal(t,
		`{"algorithm":"HMAC-SHA256","code":"AQDx-code","oauth_token":"EAAB/oauth+token==",`+
			`"token_for_business":"business-token","expires":1735689600,"issued_at":1735686000,`+
			`"user_id":100004123456789}`,
		string(data))
}

func TestClaims_MarshalJSONRejectsInvalidUTF8(t *testing.T) {
	_, err := Claims{Algorithm: "HMAC-SHA256", OAuthToken: String("\xff")}.MarshalJSON()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"oauth_token"`)
	assert.NotContains(t, err.Error(), "\xff")
}

func TestClaims_UnmarshalJSON(t *testing.T) {
	var c Claims
	err := json.Unmarshal([]byte(`{"user_id":5,"algorithm":"HMAC-SHA256","oauth_token":"t"}`), &c)
	require.NoError(t, err)
	want := Claims{Algorithm: "HMAC-SHA256", OAuthToken: String("t"), UserID: Int64(5)}
	assert.True(t, want.Equal(c))
}

func TestClaims_TimeAccessors(t *testing.T) {
	c := Claims{Expires: Int64(1735689600)}
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), c.ExpiresAt())
	assert.True(t, c.IssuedAtTime().IsZero())
}
