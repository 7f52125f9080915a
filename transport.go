package fbsr

import (
	"encoding/hex"
	"net/http"
	"strings"
)

const appSecretProofParam = "appsecret_proof"

// AppSecretProof returns hex(HMAC-SHA-256(secret, accessToken)), the value the
// Graph API expects in the appsecret_proof parameter.
func AppSecretProof(secret []byte, accessToken string) (string, error) {
	mac, err := signHMAC(secret, []byte(accessToken))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(mac), nil
}

// proofTransport adds appsecret_proof to every request that carries a bearer
// token. It sits below oauth2.Transport, which sets the Authorization header.
type proofTransport struct {
	secret []byte
	base   http.RoundTripper
}

func (t *proofTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := bearerToken(req.Header.Get("Authorization"))
	if token == "" {
		return t.base.RoundTrip(req)
	}
	proof, err := AppSecretProof(t.secret, token)
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	clone := req.Clone(req.Context())
	query := clone.URL.Query()
	query.Set(appSecretProofParam, proof)
	clone.URL.RawQuery = query.Encode()
	return t.base.RoundTrip(clone)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
