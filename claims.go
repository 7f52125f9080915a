package fbsr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

// Claims represents the fields carried inside a signed request.
// Optional fields are nil when absent.
type Claims struct {
	Algorithm        string
	Code             *string
	OAuthToken       *string
	TokenForBusiness *string
	Expires          *int64
	IssuedAt         *int64
	UserID           *int64
}

// String returns a pointer to v, for populating optional string claims.
func String(v string) *string { return &v }

// Int64 returns a pointer to v, for populating optional integer claims.
func Int64(v int64) *int64 { return &v }

// Equal reports whether both claim sets carry the same values for all fields.
func (c Claims) Equal(other Claims) bool {
	return c.Algorithm == other.Algorithm &&
		equalPtr(c.Code, other.Code) &&
		equalPtr(c.OAuthToken, other.OAuthToken) &&
		equalPtr(c.TokenForBusiness, other.TokenForBusiness) &&
		equalPtr(c.Expires, other.Expires) &&
		equalPtr(c.IssuedAt, other.IssuedAt) &&
		equalPtr(c.UserID, other.UserID)
}

// ExpiresAt returns the expiry hint as UTC time, or the zero time when absent.
// It is informational only; nothing in this package enforces it.
func (c Claims) ExpiresAt() time.Time {
	return unixTime(c.Expires)
}

// IssuedAtTime returns the issue time hint as UTC time, or the zero time when absent.
func (c Claims) IssuedAtTime() time.Time {
	return unixTime(c.IssuedAt)
}

// MarshalJSON renders the claims with snake_case member names in a fixed order.
// Absent optional fields are omitted. String members must be valid UTF-8.
func (c Claims) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, field := range claimFields {
		value, ok := field.encode(c)
		if !ok {
			continue
		}
		if str, isString := value.(string); isString && !utf8.ValidString(str) {
			return nil, fmt.Errorf("member %q: invalid UTF-8", field.key)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", field.key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(field.key)
		buf.WriteString(`":`)
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads claims from a JSON object. Unknown members are ignored.
func (c *Claims) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	if members == nil {
		return errors.New("payload is not a JSON object")
	}
	if _, ok := members[algorithmKey]; !ok {
		return fmt.Errorf("member %q is required", algorithmKey)
	}

	var out Claims
	for _, field := range claimFields {
		raw, ok := members[field.key]
		if !ok {
			continue
		}
		if err := field.decode(&out, raw); err != nil {
			return fmt.Errorf("member %q: %w", field.key, err)
		}
	}
	*c = out
	return nil
}

const algorithmKey = "algorithm"

// claimField binds one Claims field to its wire key.
type claimField struct {
	key    string
	encode func(c Claims) (any, bool)
	decode func(c *Claims, raw json.RawMessage) error
}

// claimFields is ordered as the members appear on the wire.
var claimFields = []claimField{
	{
		key:    algorithmKey,
		encode: func(c Claims) (any, bool) { return c.Algorithm, true },
		decode: func(c *Claims, raw json.RawMessage) error {
			if isNull(raw) {
				return errors.New("must be a string")
			}
			return json.Unmarshal(raw, &c.Algorithm)
		},
	},
	optionalString("code", func(c *Claims) **string { return &c.Code }),
	optionalString("oauth_token", func(c *Claims) **string { return &c.OAuthToken }),
	optionalString("token_for_business", func(c *Claims) **string { return &c.TokenForBusiness }),
	optionalInt64("expires", func(c *Claims) **int64 { return &c.Expires }),
	optionalInt64("issued_at", func(c *Claims) **int64 { return &c.IssuedAt }),
	optionalInt64("user_id", func(c *Claims) **int64 { return &c.UserID }),
}

func optionalString(key string, field func(*Claims) **string) claimField {
	return claimField{
		key: key,
		encode: func(c Claims) (any, bool) {
			v := *field(&c)
			if v == nil {
				return nil, false
			}
			return *v, true
		},
		decode: func(c *Claims, raw json.RawMessage) error {
			if isNull(raw) {
				return nil
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			*field(c) = &s
			return nil
		},
	}
}

func optionalInt64(key string, field func(*Claims) **int64) claimField {
	return claimField{
		key: key,
		encode: func(c Claims) (any, bool) {
			v := *field(&c)
			if v == nil {
				return nil, false
			}
			return *v, true
		},
		decode: func(c *Claims, raw json.RawMessage) error {
			if isNull(raw) {
				return nil
			}
			n, err := decodeInt64(raw)
			if err != nil {
				return err
			}
			*field(c) = &n
			return nil
		},
	}
}

// decodeInt64 accepts a JSON number or a string holding a decimal integer;
// the platform sends user_id as a string.
func decodeInt64(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", s)
		}
		return n, nil
	}
	var n int64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func unixTime(v *int64) time.Time {
	if v == nil {
		return time.Time{}
	}
	return time.Unix(*v, 0).UTC()
}
