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
	"bytes"
	"context"
	"errors"
	"sync"
)

var errMockClosed = errors.New("mock provider closed")

// MockOutput is an in-memory Output that records every write.
type MockOutput struct {
	writeErr   error
	closeErr   error
	config     ProviderConfig
	mode       Mode
	writes     []int
	resolution int
	mu         sync.Mutex
	closed     bool
}

// NewMockOutput creates a binary digital output.
func NewMockOutput() *MockOutput {
	return &MockOutput{mode: ModeOutput}
}

// NewMockPWMOutput creates an output reporting the given bit depth.
func NewMockPWMOutput(resolution int) *MockOutput {
	return &MockOutput{mode: ModePWM, resolution: resolution}
}

// Factory returns a ProviderFactory handing out m.
func (m *MockOutput) Factory() ProviderFactory {
	return func(_ context.Context, cfg ProviderConfig) (Provider, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.config = cfg
		return m, nil
	}
}

// Write records value, or fails with the configured write error.
func (m *MockOutput) Write(value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMockClosed
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes = append(m.writes, value)
	return nil
}

// Writes returns a copy of all recorded writes.
func (m *MockOutput) Writes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.writes...)
}

// LastWrite returns the most recent write, or -1 if nothing was written.
func (m *MockOutput) LastWrite() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return -1
	}
	return m.writes[len(m.writes)-1]
}

// ResetWrites clears the write log.
func (m *MockOutput) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// SetWriteError makes subsequent writes fail with err.
func (m *MockOutput) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetCloseError makes Close fail with err.
func (m *MockOutput) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// Config returns the configuration the factory was called with.
func (m *MockOutput) Config() ProviderConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Closed reports whether Close was called.
func (m *MockOutput) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Mode returns the configured mode.
func (m *MockOutput) Mode() Mode {
	return m.mode
}

// Resolution returns the configured bit depth, zero for binary outputs.
func (m *MockOutput) Resolution() int {
	return m.resolution
}

// Type returns ProviderMock
func (*MockOutput) Type() ProviderType {
	return ProviderMock
}

// Close marks the output closed.
func (m *MockOutput) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

// MockSerial is an in-memory SerialPort. Feed delivers bytes to the reader
// registered by the device.
type MockSerial struct {
	writeErr   error
	onReadable func([]byte)
	config     ProviderConfig
	written    bytes.Buffer
	mu         sync.Mutex
	closed     bool
}

// NewMockSerial creates an empty serial double.
func NewMockSerial() *MockSerial {
	return &MockSerial{}
}

// Factory returns a ProviderFactory handing out m.
func (m *MockSerial) Factory() ProviderFactory {
	return func(_ context.Context, cfg ProviderConfig) (Provider, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.config = cfg
		m.onReadable = cfg.OnReadable
		return m, nil
	}
}

// Feed simulates incoming data.
func (m *MockSerial) Feed(p []byte) {
	m.mu.Lock()
	fn := m.onReadable
	closed := m.closed
	m.mu.Unlock()
	if fn != nil && !closed {
		fn(append([]byte(nil), p...))
	}
}

// SerialWrite records p.
func (m *MockSerial) SerialWrite(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMockClosed
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	_, _ = m.written.Write(p)
	return nil
}

// SetWriteError makes subsequent writes fail with err.
func (m *MockSerial) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Written returns everything written so far.
func (m *MockSerial) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written.String()
}

// Config returns the configuration the factory was called with.
func (m *MockSerial) Config() ProviderConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Closed reports whether Close was called.
func (m *MockSerial) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Type returns ProviderMock
func (*MockSerial) Type() ProviderType {
	return ProviderMock
}

// Close marks the port closed.
func (m *MockSerial) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var (
	_ Output             = (*MockOutput)(nil)
	_ ResolutionReporter = (*MockOutput)(nil)
	_ SerialPort         = (*MockSerial)(nil)
)
