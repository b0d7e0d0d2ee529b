// Package provider holds the OAuth login entry points. Providers build
// authorization URLs from their oauth2 configuration; the code exchange
// and identity mapping are not implemented, so redirect handlers answer
// with a placeholder until a provider grows a full flow.
package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProvider is returned by the registry for a name no provider
// was registered under.
var ErrUnknownProvider = errors.New("unknown oauth provider")

// Provider is a single external OAuth login source.
type Provider interface {
	// Name is the lowercase identifier used in routes and the registry.
	Name() string
	// LoginURL builds the authorization URL the client is redirected to.
	LoginURL(state string) string
}

// Registry maps provider names to configured providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from the given providers. Nil entries
// are skipped so callers can pass conditionally constructed providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
