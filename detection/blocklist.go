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

import "strings"

// DefaultBlocklist returns USB serial devices that are never sensors or
// peripherals and should not be picked when no port is configured.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"1366:0105", // SEGGER J-Link debug probe
		"0483:374B", // ST-LINK/V2-1 debug probe
	}
}

// IsBlocked checks if a USB device is in the blocklist. Blocklist entries
// may use any format ParseVIDPID understands.
func IsBlocked(vidpid string, blocklist []string) bool {
	id := ParseVIDPID(vidpid)
	if id == "" {
		return false
	}
	for _, blocked := range blocklist {
		if ParseVIDPID(blocked) == id {
			return true
		}
	}
	return false
}

// ParseVIDPID returns the USB vendor and product IDs in descriptor as
// upper case "VVVV:PPPP", or "" if it holds no pair. Besides the bare
// "10c4:ea60" form it reads "VID:10C4 PID:EA60", "vid=10c4 pid=ea60",
// "vendor=10c4 product=ea60" and the hardware ID string some enumerators
// report, "USB VID:PID=10C4:EA60 SER=0001".
func ParseVIDPID(descriptor string) string {
	d := strings.ToUpper(strings.TrimSpace(descriptor))

	if _, rest, ok := strings.Cut(d, "VID:PID="); ok {
		d, _, _ = strings.Cut(rest, " ")
	}
	if vid, pid, ok := strings.Cut(d, ":"); ok && isUSBID(vid) && isUSBID(pid) {
		return vid + ":" + pid
	}

	vid := idAfter(d, "VID:", "VID=", "VENDOR=")
	pid := idAfter(d, "PID:", "PID=", "PRODUCT=")
	if vid == "" || pid == "" {
		return ""
	}
	return vid + ":" + pid
}

// idAfter returns the hex ID following the first key found in d.
func idAfter(d string, keys ...string) string {
	for _, key := range keys {
		_, rest, ok := strings.Cut(d, key)
		if !ok {
			continue
		}
		rest = strings.TrimLeft(rest, " ")
		end := strings.IndexFunc(rest, func(r rune) bool { return !isHexDigit(r) })
		if end < 0 {
			end = len(rest)
		}
		if id := rest[:end]; isUSBID(id) {
			return id
		}
	}
	return ""
}

// isUSBID reports whether s is one to four upper case hex digits.
func isUSBID(s string) bool {
	if s == "" || len(s) > 4 {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !isHexDigit(r) }) < 0
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
}
