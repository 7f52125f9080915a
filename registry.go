package fbsr

import (
	"errors"
	"fmt"
	"sort"
)

// Registry holds several named applications. It is immutable after
// NewRegistry and safe for concurrent use.
type Registry struct {
	apps       map[string]*Application
	defaultApp string
}

// NewRegistry builds a registry from the given configuration. Options apply to
// every application.
func NewRegistry(cfg RegistryConfig, opts ...ApplicationOption) (*Registry, error) {
	index, err := cfg.applicationIndex()
	if err != nil {
		return nil, newError(ErrCodeConfiguration, err)
	}

	defaultApp := ""
	if len(index) == 1 {
		for name := range index {
			defaultApp = name
		}
	}

	r := &Registry{
		apps:       make(map[string]*Application, len(index)),
		defaultApp: defaultApp,
	}
	for name, appCfg := range index {
		app, err := NewApplication(appCfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("application %q: %w", name, err)
		}
		r.apps[name] = app
	}
	return r, nil
}

// Application returns the application registered under name. An empty name
// selects the only application when exactly one is configured.
func (r *Registry) Application(name string) (*Application, error) {
	if name == "" {
		name = r.defaultApp
	}
	if name == "" {
		return nil, newError(ErrCodeAppNotRegistered, errors.New("application not specified"))
	}
	app, ok := r.apps[name]
	if !ok {
		return nil, newError(ErrCodeAppNotRegistered, fmt.Errorf("application %q not found", name))
	}
	return app, nil
}

// Names returns the registered application names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.apps))
	for name := range r.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseSignedRequest verifies token with the secret of the named application.
func (r *Registry) ParseSignedRequest(name, token string) (Claims, error) {
	app, err := r.Application(name)
	if err != nil {
		return Claims{}, err
	}
	return app.ParseSignedRequest(token)
}
