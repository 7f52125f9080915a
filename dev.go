package fbsr

// DevBypassClaims holds attributes used when issuing synthetic claims in dev mode.
type DevBypassClaims struct {
	UserID     int64
	OAuthToken string
}

// ToCaller converts the dev bypass configuration into a caller.
func (d DevBypassClaims) ToCaller() Caller {
	claims := Claims{Algorithm: "HMAC-SHA256"}
	if d.UserID != 0 {
		claims.UserID = Int64(d.UserID)
	}
	if d.OAuthToken != "" {
		claims.OAuthToken = String(d.OAuthToken)
	}
	return Caller{
		Claims:    claims,
		DevBypass: true,
	}
}

// DefaultDevBypassClaims returns a baseline set of claims suitable for local development.
func DefaultDevBypassClaims() DevBypassClaims {
	return DevBypassClaims{UserID: 1}
}
