package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ZaguanLabs/cliptl"
	"github.com/ZaguanLabs/cliptl/config"
)

// Registry holds the providers built at startup and resolves the active one
// from the configuration on every request. A failing provider is reported as
// is; there is no fallback to another provider.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string

	current  func() string
	onSelect func(id string) error
}

// NewRegistry creates an empty registry. current names the active provider;
// onSelect persists a manual switch and may be nil.
func NewRegistry(current func() string, onSelect func(id string) error) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		current:   current,
		onSelect:  onSelect,
	}
}

// FromConfig builds every configured provider once and follows store for the
// active one. A mock provider is registered only when it is selected.
func FromConfig(store *config.Store) *Registry {
	cfg := store.Snapshot()
	r := NewRegistry(
		func() string { return store.Snapshot().Provider },
		store.SetProvider,
	)

	providers := []Provider{
		NewGoogle(GoogleConfig{
			Endpoint: cfg.Credentials.Google.Endpoint,
			Timeout:  cfg.RequestTimeout,
		}),
		NewCloudTranslate(CloudConfig{
			APIKey:   cfg.Credentials.Cloud.APIKey,
			Endpoint: cfg.Credentials.Cloud.Endpoint,
			Timeout:  cfg.RequestTimeout,
		}),
		NewOpenAIProvider(OpenAIConfig{
			APIKey:       cfg.Credentials.OpenAI.APIKey,
			Model:        cfg.Credentials.OpenAI.Model,
			Temperature:  cfg.Credentials.OpenAI.Temperature,
			BaseURL:      cfg.Credentials.OpenAI.BaseURL,
			SystemPrompt: cfg.Credentials.OpenAI.SystemPrompt,
		}),
	}
	if cfg.Provider == config.ProviderMock {
		providers = append(providers, NewMockProvider())
	}

	rl, limited := cfg.RateLimit()
	for _, p := range providers {
		if limited {
			p = cliptl.NewRateLimitedProvider(p, rl)
		}
		r.Register(p)
	}
	return r
}

// Register adds p under its id, keeping registration order for Select.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.providers[p.ID()] = p
}

// Get returns the provider registered under id.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// Active returns the provider named by the configuration.
func (r *Registry) Active() (cliptl.Provider, error) {
	id := r.current()
	p, ok := r.Get(id)
	if !ok {
		return nil, &cliptl.ProviderError{
			Provider: id,
			Kind:     cliptl.KindAuth,
			Message:  "provider not configured",
		}
	}
	return p, nil
}

// IDs returns provider ids in selection order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Select makes the provider at index (in IDs order) active.
func (r *Registry) Select(index int) (string, error) {
	ids := r.IDs()
	if index < 0 || index >= len(ids) {
		return "", fmt.Errorf("provider index %d out of range (0-%d)", index, len(ids)-1)
	}
	id := ids[index]
	if r.onSelect != nil {
		if err := r.onSelect(id); err != nil {
			return "", err
		}
	}
	return id, nil
}

// Info describes a registered provider for display.
type Info struct {
	ID           string
	Name         string
	Capabilities cliptl.Capability
	Configured   bool
	Active       bool
	Languages    []string // nil means any language
}

// Infos describes every registered provider in selection order.
func (r *Registry) Infos() []Info {
	active := r.current()
	ids := r.IDs()
	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		p, _ := r.Get(id)
		out = append(out, describe(p, id == active))
	}
	return out
}

func describe(p Provider, active bool) Info {
	inner := unwrap(p)
	info := Info{
		ID:           p.ID(),
		Name:         p.ID(),
		Capabilities: p.Capabilities(),
		Configured:   true,
		Active:       active,
	}
	if n, ok := inner.(interface{ Name() string }); ok {
		info.Name = n.Name()
	}
	if c, ok := inner.(interface{ Configured() bool }); ok {
		info.Configured = c.Configured()
	}
	if l, ok := inner.(interface{ Languages() LanguageSet }); ok {
		if set := l.Languages(); set != nil {
			info.Languages = set.Codes()
			sort.Strings(info.Languages)
		}
	}
	return info
}

func unwrap(p Provider) Provider {
	for {
		u, ok := p.(interface{ Unwrap() cliptl.Provider })
		if !ok {
			return p
		}
		p = u.Unwrap()
	}
}
