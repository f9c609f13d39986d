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

// Package detection finds serial ports a device can be opened on.
package detection

import (
	"context"
	"fmt"
	"strings"

	devio "github.com/ZaparooProject/go-devio"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

// PortInfo describes a discovered serial port.
type PortInfo struct {
	Path         string
	VIDPID       string
	Product      string
	SerialNumber string
	USB          bool
}

// Options filters discovered ports.
type Options struct {
	// Blocklist holds USB devices to skip, as VID:PID.
	Blocklist []string
	// IgnorePaths holds port paths to skip.
	IgnorePaths []string
	// USBOnly skips built-in UARTs, which are usually consoles.
	USBOnly bool
}

// DefaultOptions returns the options used when a serial provider is opened
// without a port.
func DefaultOptions() Options {
	return Options{
		Blocklist: DefaultBlocklist(),
		USBOnly:   true,
	}
}

// SerialPorts lists the ports that pass opts.
func SerialPorts(ctx context.Context, opts Options) ([]PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return filterPorts(details, opts), nil
}

// FirstSerialPort returns the first port that passes opts.
func FirstSerialPort(ctx context.Context, opts Options) (PortInfo, error) {
	ports, err := SerialPorts(ctx, opts)
	if err != nil {
		return PortInfo{}, err
	}
	if len(ports) == 0 {
		return PortInfo{}, devio.ErrNoSerialPorts
	}
	return ports[0], nil
}

func filterPorts(details []*enumerator.PortDetails, opts Options) []PortInfo {
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}
		if opts.USBOnly && !d.IsUSB {
			continue
		}

		info := PortInfo{
			Path:         d.Name,
			Product:      d.Product,
			SerialNumber: d.SerialNumber,
			USB:          d.IsUSB,
		}
		if d.IsUSB && d.VID != "" && d.PID != "" {
			info.VIDPID = strings.ToUpper(d.VID + ":" + d.PID)
		}

		if info.VIDPID != "" && IsBlocked(info.VIDPID, opts.Blocklist) {
			devio.Logger().Debug("skipping blocked port",
				zap.String("port", info.Path),
				zap.String("vidpid", info.VIDPID))
			continue
		}
		if IsPathIgnored(info.Path, opts.IgnorePaths) {
			continue
		}
		ports = append(ports, info)
	}
	return ports
}
