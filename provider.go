package fbsr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenFactory allows callers to override how application access tokens are obtained.
type TokenFactory func(context.Context, ApplicationConfig) (oauth2.TokenSource, error)

// ProviderConfig defines how application tokens are issued.
type ProviderConfig struct {
	TokenFactory TokenFactory
}

// Provider issues application access tokens for Graph API calls made without a
// user token. It caches one token source per (application id, secret).
type Provider struct {
	mu      sync.RWMutex
	factory TokenFactory
	entries map[providerKey]*tokenSourceEntry
}

type providerKey struct {
	AppID  int64
	Secret string
}

type tokenSourceEntry struct {
	source oauth2.TokenSource
}

// NewProvider constructs a Provider. Without a TokenFactory the application
// token is the static "{app-id}|{app-secret}" pair accepted by the Graph API.
func NewProvider(cfg ProviderConfig) *Provider {
	factory := cfg.TokenFactory
	if factory == nil {
		factory = defaultFactory
	}
	return &Provider{
		factory: factory,
		entries: make(map[providerKey]*tokenSourceEntry),
	}
}

// TokenSource returns the cached token source for the application.
func (p *Provider) TokenSource(ctx context.Context, cfg ApplicationConfig) (oauth2.TokenSource, error) {
	if cfg.ID == 0 || cfg.Secret == "" {
		return nil, newError(ErrCodeConfiguration, errors.New("application id and secret are required"))
	}
	entry, err := p.getOrCreate(ctx, providerKey{AppID: cfg.ID, Secret: cfg.Secret}, cfg)
	if err != nil {
		return nil, err
	}
	return entry.source, nil
}

// Token returns an application access token.
func (p *Provider) Token(ctx context.Context, cfg ApplicationConfig) (string, error) {
	ts, err := p.TokenSource(ctx, cfg)
	if err != nil {
		return "", err
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("empty access token returned")
	}
	return tok.AccessToken, nil
}

func (p *Provider) getOrCreate(ctx context.Context, key providerKey, cfg ApplicationConfig) (*tokenSourceEntry, error) {
	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()
	if ok {
		return entry, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok = p.entries[key]; ok {
		return entry, nil
	}

	ts, err := p.factory(persistentContext(ctx), cfg)
	if err != nil {
		return nil, err
	}
	entry = &tokenSourceEntry{source: oauth2.ReuseTokenSource(nil, ts)}
	p.entries[key] = entry
	return entry, nil
}

func defaultFactory(_ context.Context, cfg ApplicationConfig) (oauth2.TokenSource, error) {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: strconv.FormatInt(cfg.ID, 10) + "|" + cfg.Secret,
		TokenType:   "Bearer",
	}), nil
}

func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	if _, ok := ctx.(*detachedContext); ok {
		return ctx
	}
	return &detachedContext{parent: ctx}
}

// detachedContext keeps the parent's values but never expires, so a cached
// token source outlives the request that created it.
type detachedContext struct {
	parent context.Context
}

func (d *detachedContext) Deadline() (time.Time, bool) {
	return time.Time{}, false
}

func (d *detachedContext) Done() <-chan struct{} {
	return nil
}

func (d *detachedContext) Err() error {
	return nil
}

func (d *detachedContext) Value(key any) any {
	if d.parent == nil {
		return nil
	}
	return d.parent.Value(key)
}
