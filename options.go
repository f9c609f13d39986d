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
	"errors"

	"github.com/ZaparooProject/go-devio/animation"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// settings holds the construction options shared by all devices.
type settings struct {
	registry  *Registry
	scheduler animation.Scheduler
	logger    *zap.Logger
	onError   func(error)
	provider  ProviderType
}

// Option is a functional option for configuring a device
type Option func(*settings) error

// WithRegistry resolves providers from r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(s *settings) error {
		if r == nil {
			return errors.New("nil registry")
		}
		s.registry = r
		return nil
	}
}

// WithProvider replaces the device's default provider. An explicit provider
// in the IO options still takes precedence.
func WithProvider(name ProviderType) Option {
	return func(s *settings) error {
		s.provider = name
		return nil
	}
}

// WithScheduler sets the timer facility used for animations.
func WithScheduler(scheduler animation.Scheduler) Option {
	return func(s *settings) error {
		if scheduler == nil {
			return errors.New("nil scheduler")
		}
		s.scheduler = scheduler
		return nil
	}
}

// WithClock drives animations from clk.
func WithClock(clk clock.Clock) Option {
	return func(s *settings) error {
		if clk == nil {
			return errors.New("nil clock")
		}
		s.scheduler = animation.NewClockScheduler(clk)
		return nil
	}
}

// WithLogger sets the device logger
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) error {
		s.logger = l
		return nil
	}
}

// WithErrorHandler receives errors raised on timer ticks, where there is no
// caller to return them to. The handler runs with the device locked and
// must not call back into the device.
func WithErrorHandler(fn func(error)) Option {
	return func(s *settings) error {
		s.onError = fn
		return nil
	}
}
