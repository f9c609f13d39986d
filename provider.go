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

import "context"

// ProviderType names a registered provider implementation.
type ProviderType string

const (
	// ProviderGPIO is a digital output pin.
	ProviderGPIO ProviderType = "gpio"
	// ProviderPWM is a pulse width modulated output pin.
	ProviderPWM ProviderType = "pwm"
	// ProviderSerial is a serial port.
	ProviderSerial ProviderType = "serial"
	// ProviderMock is an in-memory provider for testing.
	ProviderMock ProviderType = "mock"
)

// Mode is the IO mode a device asks its provider for.
type Mode string

const (
	ModeInput  Mode = "input"
	ModeOutput Mode = "output"
	ModePWM    Mode = "pwm"
	ModeSerial Mode = "serial"
)

// Provider is the low-level IO implementation a device is bound to. A
// provider instance is owned by exactly one device and closed with it.
type Provider interface {
	// Type returns the provider type
	Type() ProviderType

	// Close releases the underlying hardware
	Close() error
}

// Output is implemented by digital and PWM providers.
type Output interface {
	Provider

	// Write drives the output to value. Digital outputs treat any non-zero
	// value as high.
	Write(value int) error

	// Mode returns the mode the output was configured with.
	Mode() Mode
}

// ResolutionReporter is implemented by outputs that support more than two
// levels. Resolution is the bit depth of the output.
type ResolutionReporter interface {
	Resolution() int
}

// SerialPort is implemented by serial providers. Incoming bytes are pushed
// to ProviderConfig.OnReadable.
type SerialPort interface {
	Provider

	// SerialWrite writes p to the port.
	SerialWrite(p []byte) error
}

// ProviderConfig is passed to a ProviderFactory when a device is opened.
type ProviderConfig struct {
	// OnReadable receives incoming data for serial providers. It may be
	// called from a provider goroutine.
	OnReadable func(p []byte)
	Mode       Mode
	IO         IOOptions
}

// ProviderFactory opens a provider. Opening may block on hardware
// initialization and should honour ctx.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig) (Provider, error)
