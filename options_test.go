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
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithClock(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	out := NewMockOutput()
	led, err := OpenLED(context.Background(), IOOptions{Pin: "1", Factory: out.Factory()}, nil, WithClock(mock))
	require.NoError(t, err)
	defer func() { _ = led.Close() }()

	require.NoError(t, led.Blink(100*time.Millisecond, nil))
	assert.Empty(t, out.Writes())

	mock.Add(100 * time.Millisecond)
	assert.Eventually(t, func() bool { return len(out.Writes()) == 1 }, time.Second, time.Millisecond)
}

func TestOptionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opt  Option
		name string
	}{
		{name: "nil registry", opt: WithRegistry(nil)},
		{name: "nil scheduler", opt: WithScheduler(nil)},
		{name: "nil clock", opt: WithClock(nil)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLED(1, nil, tt.opt)
			assert.ErrorIs(t, err, ErrInvalidParameter)

			_, err = NewGPS("COM1", nil, tt.opt)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestWithProviderKeepsExplicitProvider(t *testing.T) {
	t.Parallel()

	gpio := NewMockOutput()
	pwm := NewMockPWMOutput(8)
	r := NewRegistry()
	r.Register(ProviderGPIO, gpio.Factory())
	r.Register(ProviderPWM, pwm.Factory())

	led, err := OpenLED(context.Background(), map[string]any{"pin": 2, "provider": "gpio"}, nil,
		WithRegistry(r), WithProvider(ProviderPWM))
	require.NoError(t, err)
	assert.Equal(t, 1, led.High())
	require.NoError(t, led.Close())
}
