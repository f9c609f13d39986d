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
	"context"
	"fmt"

	"github.com/ZaparooProject/go-devio/animation"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Builder holds a device's normalized configuration. Nothing touches
// hardware until the device-specific Open is called.
type Builder struct {
	io              IOOptions
	device          DeviceOptions
	kind            string
	defaultProvider ProviderType
	settings
}

func newBuilder(kind string, defaultProvider ProviderType, io, device any, opts []Option) (*Builder, error) {
	ioOpts, devOpts, err := Normalize(io, device)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		io:              ioOpts,
		device:          devOpts,
		kind:            kind,
		defaultProvider: defaultProvider,
		settings:        settings{registry: defaultRegistry},
	}

	for _, opt := range opts {
		if err := opt(&b.settings); err != nil {
			return nil, NewParameterError("new "+kind, "option", nil, fmt.Errorf("failed to apply option: %w", err))
		}
	}

	if b.provider != "" {
		b.defaultProvider = b.provider
	}
	if b.logger == nil {
		b.logger = Logger().Named(kind)
	}
	if b.scheduler == nil {
		b.scheduler = animation.NewClockScheduler(nil)
	}

	return b, nil
}

// IO returns the canonical IO options.
func (b *Builder) IO() IOOptions {
	return b.io.Clone()
}

// Device returns the device options.
func (b *Builder) Device() DeviceOptions {
	return b.device.Clone()
}

// openProvider resolves and opens the provider. On failure any provider the
// factory handed back is closed so the device never keeps a partial one.
func (b *Builder) openProvider(ctx context.Context, cfg ProviderConfig) (Provider, ProviderType, error) {
	factory, name, err := b.registry.Resolve(b.io, b.defaultProvider)
	if err != nil {
		b.logger.Debug("provider resolution failed", zap.Error(err))
		return nil, name, err
	}

	if err := ctx.Err(); err != nil {
		return nil, name, NewProviderError("open", string(name), err)
	}

	cfg.IO = b.io.Clone()
	p, err := factory(ctx, cfg)
	if err != nil {
		if p != nil {
			err = multierr.Append(err, p.Close())
		}
		b.logger.Debug("provider open failed",
			zap.String("provider", string(name)),
			zap.Stringer("pin", b.io.Pin),
			zap.Error(err))
		return nil, name, NewProviderError("open", string(name), err)
	}
	if p == nil {
		return nil, name, NewProviderError("open", string(name), ErrProviderUnusable)
	}

	b.logger.Debug("provider opened",
		zap.String("provider", string(name)),
		zap.String("type", string(p.Type())),
		zap.Stringer("pin", b.io.Pin))
	return p, name, nil
}

// openAs opens the provider and checks it offers capability T.
func openAs[T Provider](ctx context.Context, b *Builder, cfg ProviderConfig) (T, error) {
	var zero T

	p, name, err := b.openProvider(ctx, cfg)
	if err != nil {
		return zero, err
	}

	typed, ok := p.(T)
	if !ok {
		err := fmt.Errorf("%w: %s provider cannot serve a %s", ErrProviderUnusable, p.Type(), b.kind)
		return zero, NewProviderError("open", string(name), multierr.Append(err, p.Close()))
	}
	return typed, nil
}
