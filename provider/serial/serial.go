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

// Package serial provides a serial line provider backed by go.bug.st/serial.
//
// Importing the package registers the provider as "serial". When the IO
// options name no port, the first USB serial port found by the detection
// package is used.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	devio "github.com/ZaparooProject/go-devio"
	"github.com/ZaparooProject/go-devio/detection"
	ser "go.bug.st/serial"
	"go.uber.org/zap"
)

// DefaultBaud is used when the IO options name no baud rate.
const DefaultBaud = 9600

const readBufferSize = 256

func init() {
	devio.RegisterProvider(devio.ProviderSerial, Open)
}

// Provider owns an open serial line and a goroutine that pushes received
// bytes to the device.
type Provider struct {
	port       io.ReadWriteCloser
	onReadable func([]byte)
	logger     *zap.Logger
	name       string
	done       chan struct{}

	activeBackgroundWorkers sync.WaitGroup
	mu                      sync.Mutex
	closed                  bool

	// delivering is set while onReadable runs on the read goroutine.
	delivering atomic.Bool
}

// Open opens cfg.IO.Port at cfg.IO.Baud, 8N1.
func Open(ctx context.Context, cfg devio.ProviderConfig) (devio.Provider, error) {
	name := string(cfg.IO.Port)
	if name == "" {
		info, err := detection.FirstSerialPort(ctx, detection.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to find a serial port: %w", err)
		}
		name = info.Path
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baud := cfg.IO.Baud
	if baud == 0 {
		baud = DefaultBaud
	}

	port, err := ser.Open(name, &ser.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   ser.NoParity,
		StopBits: ser.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	return New(port, name, cfg.OnReadable), nil
}

// New starts reading from an already open line. onReadable may be nil, in
// which case received bytes are discarded.
func New(port io.ReadWriteCloser, name string, onReadable func([]byte)) *Provider {
	p := &Provider{
		port:       port,
		onReadable: onReadable,
		logger:     devio.Logger().Named("serial").With(zap.String("port", name)),
		name:       name,
		done:       make(chan struct{}),
	}
	p.activeBackgroundWorkers.Add(1)
	go p.readLoop()
	return p
}

// Name returns the port path.
func (p *Provider) Name() string {
	return p.name
}

// SerialWrite writes b in full.
func (p *Provider) SerialWrite(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return devio.ErrDeviceClosed
	}
	if _, err := p.port.Write(b); err != nil {
		return fmt.Errorf("failed to write to %s: %w", p.name, err)
	}
	return nil
}

// Type returns devio.ProviderSerial.
func (*Provider) Type() devio.ProviderType {
	return devio.ProviderSerial
}

// Close closes the line and waits for the reader to exit. Called from
// within onReadable, it returns without waiting; the reader exits once the
// callback returns.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	err := p.port.Close()
	p.mu.Unlock()

	if !p.delivering.Load() {
		p.activeBackgroundWorkers.Wait()
	}
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", p.name, err)
	}
	return nil
}

func (p *Provider) readLoop() {
	defer p.activeBackgroundWorkers.Done()

	buf := make([]byte, readBufferSize)
	for {
		n, err := p.port.Read(buf)
		if n > 0 && p.onReadable != nil {
			p.delivering.Store(true)
			p.onReadable(append([]byte(nil), buf[:n]...))
			p.delivering.Store(false)
		}

		select {
		case <-p.done:
			return
		default:
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.logger.Warn("serial read failed", zap.Error(err))
			}
			return
		}
	}
}

var _ devio.SerialPort = (*Provider)(nil)
