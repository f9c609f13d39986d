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

// Package gpio provides a digital output provider backed by periph.io.
//
// Importing the package registers the provider as "gpio":
//
//	import _ "github.com/ZaparooProject/go-devio/provider/gpio"
package gpio

import (
	"context"
	"fmt"
	"sync"

	devio "github.com/ZaparooProject/go-devio"
	"github.com/ZaparooProject/go-devio/internal/periphpin"
	pgpio "periph.io/x/conn/v3/gpio"
)

func init() {
	devio.RegisterProvider(devio.ProviderGPIO, Open)
}

// Provider drives a single pin high or low.
type Provider struct {
	pin    pgpio.PinIO
	mu     sync.Mutex
	closed bool
}

// Open looks up cfg.IO.Pin. The pin is not driven until the first Write.
func Open(ctx context.Context, cfg devio.ProviderConfig) (devio.Provider, error) {
	pin, err := periphpin.Lookup(ctx, cfg.IO.Pin)
	if err != nil {
		return nil, err
	}
	return New(pin), nil
}

// New wraps an already resolved pin.
func New(pin pgpio.PinIO) *Provider {
	return &Provider{pin: pin}
}

// Write drives the pin low for zero and high for anything else.
func (p *Provider) Write(value int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return devio.ErrDeviceClosed
	}

	level := pgpio.Low
	if value != 0 {
		level = pgpio.High
	}
	if err := p.pin.Out(level); err != nil {
		return fmt.Errorf("failed to drive %s: %w", p.pin.Name(), err)
	}
	return nil
}

// Mode returns devio.ModeOutput.
func (*Provider) Mode() devio.Mode {
	return devio.ModeOutput
}

// Type returns devio.ProviderGPIO.
func (*Provider) Type() devio.ProviderType {
	return devio.ProviderGPIO
}

// Close halts the pin. Later writes fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.pin.Halt(); err != nil {
		return fmt.Errorf("failed to halt %s: %w", p.pin.Name(), err)
	}
	return nil
}

var _ devio.Output = (*Provider)(nil)
