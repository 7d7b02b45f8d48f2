package transform

import (
	"fmt"
	"sync"
)

// Constructor builds a transformer instance for a registered kind.
type Constructor func(name string, sel Selector) Transformer

var (
	registry      = make(map[string]Constructor)
	registryMutex sync.RWMutex
)

// Register adds a transformer kind to the global registry. Built-in
// kinds are registered at package init; custom transformers register
// here so they can be constructed by kind name.
func Register(kind string, ctor Constructor) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry[kind] = ctor
}

// New constructs a transformer by registered kind name.
func New(kind, name string, sel Selector) (Transformer, error) {
	registryMutex.RLock()
	ctor, ok := registry[kind]
	registryMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transform: unknown transformer kind %q", kind)
	}
	return ctor(name, sel), nil
}
