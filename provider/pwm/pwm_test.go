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

package pwm

import (
	"context"
	"testing"
	"time"

	devio "github.com/ZaparooProject/go-devio"
	"github.com/ZaparooProject/go-devio/animation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

func TestParseOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		extra map[string]any
		name  string
		want  Options
	}{
		{name: "defaults", extra: nil, want: Options{Frequency: physic.KiloHertz, Resolution: 8}},
		{name: "integer hertz", extra: map[string]any{"frequency": 500}, want: Options{Frequency: 500 * physic.Hertz, Resolution: 8}},
		{name: "float hertz", extra: map[string]any{"frequency": 50.0}, want: Options{Frequency: 50 * physic.Hertz, Resolution: 8}},
		{name: "unit string", extra: map[string]any{"frequency": "25kHz"}, want: Options{Frequency: 25 * physic.KiloHertz, Resolution: 8}},
		{name: "resolution", extra: map[string]any{"resolution": 10}, want: Options{Frequency: physic.KiloHertz, Resolution: 10}},
		{name: "resolution from json", extra: map[string]any{"resolution": 12.0}, want: Options{Frequency: physic.KiloHertz, Resolution: 12}},
		{name: "unrelated keys ignored", extra: map[string]any{"color": "red"}, want: Options{Frequency: physic.KiloHertz, Resolution: 8}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOptions(tt.extra)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptionsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		extra map[string]any
		name  string
	}{
		{name: "zero resolution", extra: map[string]any{"resolution": 0}},
		{name: "resolution too large", extra: map[string]any{"resolution": 17}},
		{name: "negative frequency", extra: map[string]any{"frequency": -5}},
		{name: "bad unit", extra: map[string]any{"frequency": "fast"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseOptions(tt.extra)
			assert.ErrorIs(t, err, devio.ErrInvalidParameter)
		})
	}
}

func TestProviderWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resolution int
		value      int
		want       gpio.Duty
	}{
		{name: "off", resolution: 8, value: 0, want: 0},
		{name: "full 8 bit", resolution: 8, value: 255, want: gpio.DutyMax},
		{name: "full 10 bit", resolution: 10, value: 1023, want: gpio.DutyMax},
		{name: "full 1 bit", resolution: 1, value: 1, want: gpio.DutyMax},
		{name: "above range clamps", resolution: 8, value: 400, want: gpio.DutyMax},
		{name: "below range clamps", resolution: 8, value: -3, want: 0},
		{name: "mid 8 bit", resolution: 8, value: 51, want: gpio.DutyMax / 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pin := &gpiotest.Pin{N: "TEST", Num: 1}
			p := New(pin, Options{Frequency: physic.KiloHertz, Resolution: tt.resolution})

			require.NoError(t, p.Write(tt.value))
			assert.Equal(t, tt.want, pin.D)
			assert.Equal(t, physic.KiloHertz, pin.F)
			assert.Equal(t, tt.resolution, p.Resolution())
		})
	}
}

func TestProviderClose(t *testing.T) {
	t.Parallel()

	p := New(&gpiotest.Pin{N: "TEST", Num: 1}, Options{Frequency: DefaultFrequency, Resolution: DefaultResolution})
	assert.Equal(t, devio.ModePWM, p.Mode())
	assert.Equal(t, devio.ProviderPWM, p.Type())
	assert.Equal(t, DefaultFrequency, p.Frequency())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Write(1), devio.ErrDeviceClosed)
}

func TestLEDFadeOnRegisteredPin(t *testing.T) {
	t.Parallel()

	pin := &gpiotest.Pin{N: "DEVIO_PWM_LED", Num: 9301}
	require.NoError(t, gpioreg.Register(pin))

	sched := animation.NewManualScheduler()
	led, err := devio.OpenLED(context.Background(),
		map[string]any{"pin": "DEVIO_PWM_LED", "provider": "pwm", "resolution": 10, "frequency": "20kHz"},
		nil, devio.WithScheduler(sched))
	require.NoError(t, err)
	assert.Equal(t, 1023, led.High())
	assert.Equal(t, devio.ModePWM, led.Mode())

	require.NoError(t, led.FadeIn(100*time.Millisecond, nil))
	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, gpio.DutyMax, pin.D)
	assert.Equal(t, 20*physic.KiloHertz, pin.F)

	require.NoError(t, led.Close())
}
