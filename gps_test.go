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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sentenceRMC     = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,150326,003.1,W*66\r\n"
	sentenceRMCVoid = "$GPRMC,123519,V,4807.038,N,01131.000,E,000.0,000.0,150326,003.1,W*7D\r\n"
	sentenceGGA     = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"
	sentenceVTG     = "$GPVTG,054.7,T,034.4,M,005.5,N,010.2,K*48\r\n"
	sentenceGSA     = "$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39\r\n"
)

func newTestGPS(t *testing.T, device any) (*GPS, *MockSerial) {
	t.Helper()
	port := NewMockSerial()
	g, err := OpenGPS(context.Background(), map[string]any{"port": "/dev/ttyUSB0", "provider": port.Factory()}, device)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g, port
}

func TestGPSDecodesFix(t *testing.T) {
	t.Parallel()

	g, port := newTestGPS(t, nil)

	var fixes []Fix
	g.OnFix(func(f Fix) {
		_ = g.Fix()
		fixes = append(fixes, f)
	})

	port.Feed([]byte(sentenceRMC + sentenceGGA))
	require.Len(t, fixes, 2)

	fix := g.Fix()
	assert.True(t, fix.Valid)
	assert.InDelta(t, 48.1173, fix.Latitude, 1e-4)
	assert.InDelta(t, 11.5167, fix.Longitude, 1e-4)
	assert.InDelta(t, 545.4, fix.Altitude, 1e-9)
	assert.InDelta(t, 22.4, fix.Speed, 1e-9)
	assert.InDelta(t, 84.4, fix.Course, 1e-9)
	assert.Equal(t, 8, fix.Satellites)
	assert.Equal(t, "1", fix.Quality)
	assert.Equal(t, time.Date(2026, time.March, 15, 12, 35, 19, 0, time.UTC), fix.Time)

	assert.InDelta(t, fix.Latitude, g.Latitude(), 0)
	assert.InDelta(t, fix.Longitude, g.Longitude(), 0)
	assert.InDelta(t, fix.Altitude, g.Altitude(), 0)

	port.Feed([]byte(sentenceVTG))
	require.Len(t, fixes, 3)
	assert.InDelta(t, 5.5, g.Fix().Speed, 1e-9)
	assert.InDelta(t, 54.7, g.Fix().Course, 1e-9)

	assert.Equal(t, GPSStats{Sentences: 3}, g.Stats())
}

func TestGPSInvalidFix(t *testing.T) {
	t.Parallel()

	g, port := newTestGPS(t, nil)
	port.Feed([]byte(sentenceRMC))
	require.True(t, g.Fix().Valid)

	port.Feed([]byte(sentenceRMCVoid))
	assert.False(t, g.Fix().Valid)
}

func TestGPSSplitReads(t *testing.T) {
	t.Parallel()

	g, port := newTestGPS(t, nil)

	var updates int
	g.OnFix(func(Fix) { updates++ })

	data := []byte(sentenceGGA)
	for i := range data {
		port.Feed(data[i : i+1])
		if i < len(data)-1 {
			assert.Equal(t, 0, updates)
		}
	}
	assert.Equal(t, 1, updates)
	assert.Equal(t, 8, g.Fix().Satellites)
}

func TestGPSDiscardsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  GPSStats
	}{
		{
			name:  "bad checksum",
			input: strings.Replace(sentenceGGA, "*47", "*00", 1),
			want:  GPSStats{Errors: 1},
		},
		{
			name:  "garbage",
			input: "hello world\r\n",
			want:  GPSStats{Errors: 1},
		},
		{
			name:  "unhandled sentence",
			input: sentenceGSA,
			want:  GPSStats{Sentences: 1},
		},
		{
			name:  "blank lines",
			input: "\r\n\r\n\n",
			want:  GPSStats{},
		},
		{
			name:  "overlong line",
			input: strings.Repeat("A", maxSentenceLength+10) + "\n",
			want:  GPSStats{Errors: 1, Dropped: 1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, port := newTestGPS(t, nil)

			var updates int
			g.OnFix(func(Fix) { updates++ })

			port.Feed([]byte(tt.input))
			assert.Equal(t, 0, updates)
			assert.Equal(t, Fix{}, g.Fix())
			assert.Equal(t, tt.want, g.Stats())

			// The reader recovers on the next good sentence.
			port.Feed([]byte(sentenceGGA))
			assert.Equal(t, 1, updates)
		})
	}
}

func TestGPSSendSentence(t *testing.T) {
	t.Parallel()

	g, port := newTestGPS(t, nil)

	require.NoError(t, g.SendSentence("PMTK220,1000"))
	require.NoError(t, g.SendSentence("$PMTK220,1000"))
	assert.Equal(t, "$PMTK220,1000*1F\r\n$PMTK220,1000*1F\r\n", port.Written())

	for _, body := range []string{"", "$", "PMTK*1F", "PMTK\r\n"} {
		err := g.SendSentence(body)
		assert.ErrorIs(t, err, ErrInvalidParameter, "body %q", body)
	}
}

func TestGPSBreakoutInit(t *testing.T) {
	t.Parallel()

	g, port := newTestGPS(t, map[string]any{"breakout": "adafruit_ultimate_gps"})
	assert.NotNil(t, g)

	assert.Equal(t,
		"$PMTK314,0,1,0,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0*28\r\n$PMTK220,1000*1F\r\n",
		port.Written())
	assert.Equal(t, 9600, port.Config().IO.Baud)
	assert.Equal(t, ModeSerial, port.Config().Mode)
	assert.NotNil(t, port.Config().OnReadable)
}

func TestGPSBreakoutInitFailureClosesPort(t *testing.T) {
	t.Parallel()

	port := NewMockSerial()
	port.SetWriteError(assert.AnError)

	g, err := OpenGPS(context.Background(),
		map[string]any{"port": "/dev/ttyS0", "provider": port.Factory()},
		map[string]any{"breakout": "ADAFRUIT_ULTIMATE_GPS"})
	require.Error(t, err)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, port.Closed())
}

func TestNewGPSOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		io       any
		device   any
		name     string
		wantPort PinID
		wantBaud int
	}{
		{name: "port name", io: "/dev/ttyUSB0", wantPort: "/dev/ttyUSB0", wantBaud: DefaultGPSBaud},
		{name: "explicit baud", io: map[string]any{"port": "COM4", "baud": 4800}, wantPort: "COM4", wantBaud: 4800},
		{
			name:     "breakout baud",
			io:       map[string]any{"port": "/dev/serial0"},
			device:   map[string]any{"breakout": "UBLOX_NEO_6M"},
			wantPort: "/dev/serial0",
			wantBaud: 9600,
		},
		{name: "discovered port", io: map[string]any{}, wantBaud: DefaultGPSBaud},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gb, err := NewGPS(tt.io, tt.device)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, gb.Builder().IO().Port)
			assert.Equal(t, tt.wantBaud, gb.Builder().IO().Baud)
		})
	}
}

func TestNewGPSRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewGPS(map[string]any{"port": "COM1", "baud": -1}, nil)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewGPS("COM1", map[string]any{"breakout": "NO_SUCH_BOARD"})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestOpenGPSProviderErrors(t *testing.T) {
	t.Parallel()

	out := NewMockOutput()
	_, err := OpenGPS(context.Background(), map[string]any{"port": "COM1", "provider": out.Factory()}, nil)
	require.ErrorIs(t, err, ErrProviderUnusable)
	assert.True(t, out.Closed())

	_, err = OpenGPS(context.Background(), "COM1", nil, WithRegistry(NewRegistry()))
	require.ErrorIs(t, err, ErrProviderNotFound)
}

func TestOpenGPSDefaultsToSerialProvider(t *testing.T) {
	t.Parallel()

	port := NewMockSerial()
	r := NewRegistry()
	r.Register(ProviderSerial, port.Factory())

	g, err := OpenGPS(context.Background(), "/dev/ttyACM0", nil, WithRegistry(r))
	require.NoError(t, err)
	assert.Equal(t, PinID("/dev/ttyACM0"), port.Config().IO.Port)
	require.NoError(t, g.Close())
	assert.True(t, port.Closed())
}

func TestGPSClose(t *testing.T) {
	t.Parallel()

	g, port := newTestGPS(t, nil)
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	assert.True(t, port.Closed())
	assert.ErrorIs(t, g.SendSentence("PMTK220,1000"), ErrDeviceClosed)
}
