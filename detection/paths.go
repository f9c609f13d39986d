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

package detection

import (
	"path"
	"strings"
)

// IsPathIgnored reports whether portPath names the same serial port as an
// entry of ignorePaths. Windows COM names match case-insensitively and with
// or without the \\.\ device namespace prefix. Unix paths are cleaned but
// stay case-sensitive.
func IsPathIgnored(portPath string, ignorePaths []string) bool {
	key := portKey(portPath)
	if key == "" {
		return false
	}
	for _, ignored := range ignorePaths {
		if portKey(ignored) == key {
			return true
		}
	}
	return false
}

// portKey reduces a port name to the form used for comparison.
func portKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, prefix := range []string{`\\.\`, "//./"} {
		if len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = name[len(prefix):]
			break
		}
	}
	if isCOMPort(name) {
		return strings.ToUpper(name)
	}
	if strings.HasPrefix(name, "/") {
		return path.Clean(name)
	}
	return name
}

func isCOMPort(name string) bool {
	if len(name) < 4 || !strings.EqualFold(name[:3], "COM") {
		return false
	}
	for _, r := range name[3:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
