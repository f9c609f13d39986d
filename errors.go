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
	"fmt"
)

// Error categories. Typed errors below match these through errors.Is.
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrProviderResolution = errors.New("provider resolution failed")
	ErrProviderNotFound   = errors.New("provider not registered")
	ErrProviderUnusable   = errors.New("provider lacks required capability")
	ErrDeviceClosed       = errors.New("device closed")
	ErrNoSerialPorts      = errors.New("no usable serial ports found")
)

// ParameterError reports malformed constructor input or animation arguments.
type ParameterError struct {
	Value any
	Err   error
	Op    string
	Param string
}

// NewParameterError creates a ParameterError for param of op.
func NewParameterError(op, param string, value any, err error) *ParameterError {
	return &ParameterError{Op: op, Param: param, Value: value, Err: err}
}

func (e *ParameterError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s %v", e.Op, e.Param, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ParameterError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidParameter as a match.
func (*ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// ProviderError reports a provider that could not be resolved, opened or
// used by a device.
type ProviderError struct {
	Err      error
	Op       string
	Provider string
}

// NewProviderError creates a ProviderError for the named provider.
func NewProviderError(op, provider string, err error) *ProviderError {
	return &ProviderError{Op: op, Provider: provider, Err: err}
}

func (e *ProviderError) Error() string {
	name := e.Provider
	if name == "" {
		name = "<direct factory>"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: provider %s: %v", e.Op, name, ErrProviderResolution)
	}
	return fmt.Sprintf("%s: provider %s: %v", e.Op, name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports ErrProviderResolution as a match.
func (*ProviderError) Is(target error) bool {
	return target == ErrProviderResolution
}

// IsInvalidParameter reports whether err is an invalid parameter error.
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

// IsProviderResolution reports whether err is a provider resolution error.
func IsProviderResolution(err error) bool {
	return errors.Is(err, ErrProviderResolution)
}
