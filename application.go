package fbsr

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

// CookiePrefix is prepended to the application id to name the signed request cookie.
const CookiePrefix = "fbsr_"

// Application binds one application configuration to the signed request codec
// and builds Graph API clients.
type Application struct {
	cfg       ApplicationConfig
	provider  *Provider
	transport http.RoundTripper
}

// ApplicationOption customizes an Application.
type ApplicationOption func(*Application)

// WithProvider sets the provider used for application access tokens.
func WithProvider(p *Provider) ApplicationOption {
	return func(a *Application) {
		a.provider = p
	}
}

// WithTransport sets the base transport used by clients returned from Client.
func WithTransport(rt http.RoundTripper) ApplicationOption {
	return func(a *Application) {
		a.transport = rt
	}
}

// NewApplication validates cfg, applies defaults and returns an Application.
func NewApplication(cfg ApplicationConfig, opts ...ApplicationOption) (*Application, error) {
	clone := cfg
	clone.Permissions = append([]string(nil), cfg.Permissions...)
	clone.normalize()
	if err := clone.validate(); err != nil {
		return nil, newError(ErrCodeConfiguration, err)
	}
	app := &Application{cfg: clone}
	for _, opt := range opts {
		opt(app)
	}
	if app.provider == nil {
		app.provider = NewProvider(ProviderConfig{})
	}
	if app.transport == nil {
		app.transport = &http.Transport{Proxy: http.ProxyFromEnvironment}
	}
	return app, nil
}

// Config returns a copy of the normalized configuration.
func (a *Application) Config() ApplicationConfig {
	cfg := a.cfg
	cfg.Permissions = append([]string(nil), a.cfg.Permissions...)
	return cfg
}

// APIVersion returns the Graph API version, always prefixed with "v".
func (a *Application) APIVersion() string {
	return a.cfg.Version
}

// CookieName returns the name of the cookie carrying this application's signed request.
func (a *Application) CookieName() string {
	return CookiePrefix + strconv.FormatInt(a.cfg.ID, 10)
}

// GraphURL returns the versioned Graph API URL for path, e.g. "me/accounts".
func (a *Application) GraphURL(path string) string {
	return a.cfg.GraphEndpoint + "/" + a.cfg.Version + "/" + strings.TrimLeft(path, "/")
}

// ParseSignedRequest verifies token with the application secret.
func (a *Application) ParseSignedRequest(token string) (Claims, error) {
	return Parse([]byte(a.cfg.Secret), token)
}

// GenerateSignedRequest signs claims with the application secret.
func (a *Application) GenerateSignedRequest(claims Claims) (string, error) {
	return Generate([]byte(a.cfg.Secret), claims)
}

// Client returns an HTTP client authorized for the Graph API. An empty
// accessToken uses the application access token. Every request is sent with
// the bearer token and its appsecret_proof.
func (a *Application) Client(ctx context.Context, accessToken string) (*http.Client, error) {
	var ts oauth2.TokenSource
	if accessToken != "" {
		ts = oauth2.ReuseTokenSource(nil, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	} else {
		appTS, err := a.provider.TokenSource(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		ts = appTS
	}
	return &http.Client{
		Timeout: a.cfg.HTTPTimeout,
		Transport: &oauth2.Transport{
			Source: ts,
			Base: &proofTransport{
				secret: []byte(a.cfg.Secret),
				base:   a.transport,
			},
		},
	}, nil
}

// String never includes the secret.
func (a *Application) String() string {
	return "Application[id:" + strconv.FormatInt(a.cfg.ID, 10) + "]"
}
