package fbsr

import (
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// Algorithm names the MAC used to sign and verify signed requests. It is fixed
// and does not follow the algorithm claim carried in the payload.
const Algorithm = "HMAC-SHA-256"

var errEmptySecret = errors.New("application secret is empty")

// signHMAC returns HMAC-SHA-256(secret, payload).
func signHMAC(secret, payload []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, newError(ErrCodeConfiguration, errEmptySecret)
	}
	signer, err := jws.NewSigner(jwa.HS256)
	if err != nil {
		return nil, newError(ErrCodeConfiguration, fmt.Errorf("hmac signer: %w", err))
	}
	sig, err := signer.Sign(payload, secret)
	if err != nil {
		return nil, newError(ErrCodeConfiguration, err)
	}
	return sig, nil
}

// verifyHMAC checks signature against HMAC-SHA-256(secret, payload) in constant time.
func verifyHMAC(secret, payload, signature []byte) error {
	if len(secret) == 0 {
		return newError(ErrCodeConfiguration, errEmptySecret)
	}
	verifier, err := jws.NewVerifier(jwa.HS256)
	if err != nil {
		return newError(ErrCodeConfiguration, fmt.Errorf("hmac verifier: %w", err))
	}
	if err := verifier.Verify(payload, signature, secret); err != nil {
		return newError(ErrCodeIntegrity, errors.New("signature mismatch"))
	}
	return nil
}
