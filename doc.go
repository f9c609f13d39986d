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

/*
Package devio provides device abstractions for LEDs, GPS receivers and other
peripherals on top of interchangeable IO providers.

A device never talks to hardware directly. It is configured from loose
constructor input (a pin number, a pin name, or an options mapping), resolves
a provider by name through a Registry, and drives the provider's capability
interfaces: Output for digital and PWM pins, SerialPort for serial lines.
Provider packages register themselves when imported:

	import (
	    devio "github.com/ZaparooProject/go-devio"
	    _ "github.com/ZaparooProject/go-devio/provider/gpio"
	    _ "github.com/ZaparooProject/go-devio/provider/pwm"
	    _ "github.com/ZaparooProject/go-devio/provider/serial"
	)

Basic Usage:

	// Digital LED on GPIO17
	led, err := devio.OpenLED(ctx, "GPIO17", nil)
	if err != nil {
	    log.Fatal(err)
	}
	defer led.Close()

	if err := led.Blink(500*time.Millisecond, nil); err != nil {
	    log.Fatal(err)
	}

	// Dimmable LED with a 10 bit PWM, wired to sink current
	dim, err := devio.OpenLED(ctx,
	    map[string]any{"pin": "GPIO18", "provider": "pwm", "resolution": 10},
	    map[string]any{"sink": true})
	if err != nil {
	    log.Fatal(err)
	}
	_ = dim.Pulse(devio.DefaultFadeDuration, nil)

	// GPS receiver on the first USB serial port
	gps, err := devio.OpenGPS(ctx, map[string]any{"baud": 9600},
	    map[string]any{"breakout": "ADAFRUIT_ULTIMATE_GPS"})
	if err != nil {
	    log.Fatal(err)
	}
	gps.OnFix(func(f devio.Fix) {
	    fmt.Printf("%.5f %.5f\n", f.Latitude, f.Longitude)
	})

Animations (blink, fade, pulse) run on an animation.Scheduler. A device has at
most one running animation; starting another replaces it. Tests can supply an
animation.ManualScheduler through WithScheduler to step time by hand.

Construction is split in two phases. NewLED and NewGPS only normalize input
and can fail with a ParameterError. Open resolves and opens the provider and
can fail with a ProviderError. OpenLED and OpenGPS do both.
*/
package devio
