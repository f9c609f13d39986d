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

// Package periphpin looks up periph.io pins for the GPIO and PWM providers.
package periphpin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	devio "github.com/ZaparooProject/go-devio"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when no registered pin matches the name.
var ErrPinNotFound = errors.New("pin not found")

var (
	hostOnce sync.Once
	hostErr  error
)

// Lookup initializes the periph host drivers once and returns the pin
// registered under id.
func Lookup(ctx context.Context, id devio.PinID) (gpio.PinIO, error) {
	if id == "" {
		return nil, devio.NewParameterError("open", "pin", id, errors.New("no pin configured"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hostOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			hostErr = fmt.Errorf("failed to initialize periph host: %w", err)
		}
	})
	if hostErr != nil {
		return nil, hostErr
	}

	pin := gpioreg.ByName(string(id))
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, id)
	}
	return pin, nil
}
