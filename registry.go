// go-devio
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-devio.
//
// go-devio is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-devio is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-devio; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package devio

import (
	"slices"
	"sync"
)

// Registry maps provider names to factories. Resolution is a table lookup;
// there is no cache of opened providers, so every device opens its own.
type Registry struct {
	factories map[ProviderType]ProviderFactory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[ProviderType]ProviderFactory)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry provider packages register into
// when imported.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterProvider adds a factory to the default registry.
func RegisterProvider(name ProviderType, factory ProviderFactory) {
	defaultRegistry.Register(name, factory)
}

// Register installs factory under name. It panics on an empty name, a nil
// factory, or a duplicate registration to catch mistakes at start-up.
func (r *Registry) Register(name ProviderType, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		panic("devio: empty provider name")
	}
	if factory == nil {
		panic("devio: nil factory for provider " + string(name))
	}
	if _, dup := r.factories[name]; dup {
		panic("devio: duplicate provider " + string(name))
	}
	r.factories[name] = factory
	debugf("registered provider %s", name)
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name ProviderType) (ProviderFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]ProviderType, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve picks the factory for io. A direct io.Factory wins, then the
// io.Provider name, then defaultProvider. The returned name is empty for a
// direct factory.
func (r *Registry) Resolve(io IOOptions, defaultProvider ProviderType) (ProviderFactory, ProviderType, error) {
	if io.Factory != nil {
		return io.Factory, "", nil
	}

	name := io.Provider
	if name == "" {
		name = defaultProvider
	}
	if name == "" {
		return nil, "", NewProviderError("resolve", "", ErrProviderNotFound)
	}

	factory, ok := r.Lookup(name)
	if !ok {
		return nil, name, NewProviderError("resolve", string(name), ErrProviderNotFound)
	}
	return factory, name, nil
}
