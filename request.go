package fbsr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
)

// SignedRequestParam is the query, form and JSON body key carrying a signed request.
const SignedRequestParam = "signed_request"

const maxJSONBody = 1 << 20

// ExtractSignedRequest finds the raw signed request in r. It looks at the
// signed_request query or form parameter, then at a signed_request member of a
// JSON object body, then at the fbsr_<appID> cookie. A JSON body is restored
// after reading so handlers can still consume it.
func ExtractSignedRequest(r *http.Request, appID int64) (string, error) {
	if v := r.FormValue(SignedRequestParam); v != "" {
		return v, nil
	}
	if v, ok := signedRequestFromJSONBody(r); ok {
		return v, nil
	}
	if c, err := r.Cookie(CookiePrefix + strconv.FormatInt(appID, 10)); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", newError(ErrCodeMissing, errors.New("no signed_request parameter, body member or cookie"))
}

// SignedRequestFromRequest extracts and verifies the signed request sent with r.
func (a *Application) SignedRequestFromRequest(r *http.Request) (Claims, error) {
	token, err := ExtractSignedRequest(r, a.cfg.ID)
	if err != nil {
		return Claims{}, err
	}
	return a.ParseSignedRequest(token)
}

func signedRequestFromJSONBody(r *http.Request) (string, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return "", false
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(data), r.Body), Closer: r.Body}
	if err != nil {
		return "", false
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return "", false
	}
	value, ok := body[SignedRequestParam]
	if !ok || value == nil {
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}
	return s, s != ""
}

type readCloser struct {
	io.Reader
	io.Closer
}
