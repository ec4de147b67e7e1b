package rtpext

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/aulev/internal/core"
)

// Factory constructs a fresh extension instance with default
// configuration.
type Factory func() Extension

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an extension available for lookup by URI. Extension
// packages call this from init(). Registering the same URI twice fails.
func Register(uri string, f Factory) error {
	if uri == "" || f == nil {
		return fmt.Errorf("%w: empty uri or nil factory", core.ErrInvalidExtmap)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[uri]; ok {
		return fmt.Errorf("%w: %s", core.ErrExtensionRegistered, uri)
	}
	registry[uri] = f
	return nil
}

// MustRegister is Register for init-time use; a duplicate is a wiring
// bug and panics.
func MustRegister(uri string, f Factory) {
	if err := Register(uri, f); err != nil {
		panic(err)
	}
}

// Lookup constructs a new instance of the extension registered under uri.
func Lookup(uri string) (Extension, error) {
	registryMu.RLock()
	f, ok := registry[uri]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrExtensionNotFound, uri)
	}
	return f(), nil
}

// URIs returns the registered extension URIs in sorted order.
func URIs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	uris := make([]string, 0, len(registry))
	for uri := range registry {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// NewFromExtmap constructs and configures an extension from a negotiated
// extmap entry: registry lookup by URI, then attribute application.
func NewFromExtmap(m Extmap) (Extension, error) {
	ext, err := Lookup(m.URI)
	if err != nil {
		return nil, err
	}
	if err := ext.SetAttributes(m.Direction, m.Attributes); err != nil {
		return nil, fmt.Errorf("configuring %s: %w", m.URI, err)
	}
	return ext, nil
}
