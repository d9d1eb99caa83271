package provider

import (
	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"
)

// Registry resolves a provider name to its gateway and exposes the subsets
// of gateways that support polling and redirect verification.
type Registry struct {
	gateways map[domain.Provider]ports.ProviderGateway
}

// NewRegistry builds the lookup table from the wired gateways.
func NewRegistry(gateways ...ports.ProviderGateway) *Registry {
	m := make(map[domain.Provider]ports.ProviderGateway, len(gateways))
	for _, g := range gateways {
		m[g.Name()] = g
	}
	return &Registry{gateways: m}
}

// Get resolves a gateway by provider name.
func (r *Registry) Get(name domain.Provider) (ports.ProviderGateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, apperror.ErrUnknownProvider(string(name))
	}
	return g, nil
}

// PollSources returns every gateway that can report recent transactions.
func (r *Registry) PollSources() []ports.PollSource {
	var sources []ports.PollSource
	for _, g := range r.gateways {
		if src, ok := g.(ports.PollSource); ok {
			sources = append(sources, src)
		}
	}
	return sources
}

// RedirectVerifier returns the gateway serving the redirect-return callback,
// or nil when no redirect rail is wired.
func (r *Registry) RedirectVerifier() ports.RedirectVerifier {
	for _, g := range r.gateways {
		if v, ok := g.(ports.RedirectVerifier); ok {
			return v
		}
	}
	return nil
}
