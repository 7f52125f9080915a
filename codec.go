package fbsr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const segmentSeparator = "."

var (
	paddedEncoding   = base64.StdEncoding.Strict()
	unpaddedEncoding = base64.RawStdEncoding.Strict()
)

// Parse verifies a signed request token with secret and returns its claims.
//
// The token has the form <signature>.<payload>, both segments URL-safe Base64
// with optional padding. The signature is HMAC-SHA-256 over the payload segment
// in standard Base64 form, exactly as received.
// The payload is only decoded after the signature matched. Expiry hints are not
// checked.
func Parse(secret []byte, token string) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, newError(ErrCodeConfiguration, errEmptySecret)
	}

	parts := strings.Split(strings.TrimSpace(token), segmentSeparator)
	if len(parts) != 2 {
		return Claims{}, newError(ErrCodeFormat, fmt.Errorf("expected 2 segments, got %d", len(parts)))
	}
	encodedSig, err := fromURLSafe(parts[0])
	if err != nil {
		return Claims{}, newError(ErrCodeFormat, fmt.Errorf("signature segment: %w", err))
	}
	encodedPayload, err := fromURLSafe(parts[1])
	if err != nil {
		return Claims{}, newError(ErrCodeFormat, fmt.Errorf("payload segment: %w", err))
	}

	sig, err := decodeSegment(encodedSig)
	if err != nil {
		return Claims{}, newError(ErrCodeFormat, fmt.Errorf("signature segment: %w", err))
	}
	if err := verifyHMAC(secret, []byte(encodedPayload), sig); err != nil {
		return Claims{}, err
	}

	payload, err := decodeSegment(encodedPayload)
	if err != nil {
		return Claims{}, newError(ErrCodeFormat, fmt.Errorf("payload segment: %w", err))
	}
	var claims Claims
	if err := claims.UnmarshalJSON(payload); err != nil {
		return Claims{}, newError(ErrCodeDecode, err)
	}
	return claims, nil
}

// Generate signs claims with secret and returns the token. The output is
// deterministic for a given secret and claim set.
func Generate(secret []byte, claims Claims) (string, error) {
	if len(secret) == 0 {
		return "", newError(ErrCodeConfiguration, errEmptySecret)
	}
	payload, err := claims.MarshalJSON()
	if err != nil {
		return "", newError(ErrCodeEncode, err)
	}
	encodedPayload := base64.StdEncoding.EncodeToString(payload)
	sig, err := signHMAC(secret, []byte(encodedPayload))
	if err != nil {
		return "", err
	}
	encodedSig := base64.StdEncoding.EncodeToString(sig)
	return toURLSafe(encodedSig) + segmentSeparator + toURLSafe(encodedPayload), nil
}

var urlSafeReplacer = strings.NewReplacer("+", "-", "/", "_")

func toURLSafe(s string) string {
	return urlSafeReplacer.Replace(s)
}

// decodeSegment decodes standard Base64 with or without trailing padding.
// Non-zero trailing bits are rejected either way.
func decodeSegment(s string) ([]byte, error) {
	if len(s)%4 != 0 {
		return unpaddedEncoding.DecodeString(s)
	}
	return paddedEncoding.DecodeString(s)
}

var errEmptySegment = errors.New("segment is empty")

// fromURLSafe maps a URL-safe segment back to the standard Base64 alphabet.
// Bytes outside the URL-safe alphabet (including '+' and '/') are rejected.
func fromURLSafe(s string) (string, error) {
	if s == "" {
		return "", errEmptySegment
	}
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '=':
			out[i] = c
		case c == '-':
			out[i] = '+'
		case c == '_':
			out[i] = '/'
		default:
			return "", fmt.Errorf("illegal character at offset %d", i)
		}
	}
	return string(out), nil
}
