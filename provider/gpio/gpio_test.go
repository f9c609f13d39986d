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

package gpio

import (
	"context"
	"testing"
	"time"

	devio "github.com/ZaparooProject/go-devio"
	"github.com/ZaparooProject/go-devio/animation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestProviderWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value int
		want  pgpio.Level
	}{
		{name: "zero is low", value: 0, want: pgpio.Low},
		{name: "one is high", value: 1, want: pgpio.High},
		{name: "any non-zero is high", value: 255, want: pgpio.High},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pin := &gpiotest.Pin{N: "TEST", Num: 1, L: !tt.want}
			p := New(pin)

			require.NoError(t, p.Write(tt.value))
			assert.Equal(t, tt.want, pin.Read())
		})
	}
}

func TestProviderClose(t *testing.T) {
	t.Parallel()

	p := New(&gpiotest.Pin{N: "TEST", Num: 1})
	assert.Equal(t, devio.ModeOutput, p.Mode())
	assert.Equal(t, devio.ProviderGPIO, p.Type())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Write(1), devio.ErrDeviceClosed)
}

func TestProviderRegistered(t *testing.T) {
	t.Parallel()

	_, ok := devio.DefaultRegistry().Lookup(devio.ProviderGPIO)
	assert.True(t, ok)
}

func TestLEDOnRegisteredPin(t *testing.T) {
	t.Parallel()

	pin := &gpiotest.Pin{N: "DEVIO_GPIO_LED", Num: 9201}
	require.NoError(t, gpioreg.Register(pin))

	sched := animation.NewManualScheduler()
	led, err := devio.OpenLED(context.Background(), "DEVIO_GPIO_LED", nil, devio.WithScheduler(sched))
	require.NoError(t, err)
	assert.Equal(t, 1, led.High())

	require.NoError(t, led.On())
	assert.Equal(t, pgpio.High, pin.Read())

	require.NoError(t, led.Blink(100*time.Millisecond, nil))
	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, pgpio.Low, pin.Read())

	require.NoError(t, led.Close())
}

func TestOpenUnknownPin(t *testing.T) {
	t.Parallel()

	_, err := devio.OpenLED(context.Background(), "DEVIO_GPIO_MISSING", nil)
	require.Error(t, err)
	assert.True(t, devio.IsProviderResolution(err))
}
