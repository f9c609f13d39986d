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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultGPSBaud is used when neither the IO options nor a breakout
	// preset name a baud rate.
	DefaultGPSBaud = 9600

	// maxSentenceLength bounds a buffered line. NMEA caps sentences at 82
	// characters; anything much longer is line noise.
	maxSentenceLength = 256
)

// GPSBreakout is a preset for a known receiver board.
type GPSBreakout struct {
	// Init sentences are sent, without '$' and checksum, right after open.
	Init []string
	Baud int
}

var gpsBreakouts = map[string]GPSBreakout{
	"ADAFRUIT_ULTIMATE_GPS": {
		Baud: 9600,
		Init: []string{
			// RMC and GGA only, at 1 Hz.
			"PMTK314,0,1,0,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0",
			"PMTK220,1000",
		},
	},
	"SPARKFUN_GP_20U7": {Baud: 9600},
	"UBLOX_NEO_6M":     {Baud: 9600},
}

// Fix is the most recent position report.
type Fix struct {
	Time       time.Time
	Quality    string
	Latitude   float64
	Longitude  float64
	Altitude   float64
	Speed      float64 // knots
	Course     float64 // degrees true
	Satellites int
	Valid      bool
}

// GPSStats counts received sentences.
type GPSStats struct {
	Sentences uint64
	Errors    uint64
	Dropped   uint64
}

// GPSBuilder captures a GPS receiver's configuration until Open.
type GPSBuilder struct {
	b        *Builder
	onFix    func(Fix)
	breakout GPSBreakout
}

// NewGPS normalizes io and device into a GPS configuration. io is usually a
// mapping with "port" and "baud"; a bare string is taken as the port.
func NewGPS(io, device any, opts ...Option) (*GPSBuilder, error) {
	if s, ok := io.(string); ok && s != "" {
		io = map[string]any{"port": s}
	}

	b, err := newBuilder("gps", ProviderSerial, io, device, opts)
	if err != nil {
		return nil, err
	}

	var breakout GPSBreakout
	if name := b.device.Breakout; name != "" {
		preset, ok := gpsBreakouts[strings.ToUpper(name)]
		if !ok {
			return nil, NewParameterError("new gps", "breakout", name, nil)
		}
		breakout = preset
	}

	switch {
	case b.io.Baud < 0:
		return nil, NewParameterError("new gps", "baud", b.io.Baud, nil)
	case b.io.Baud == 0 && breakout.Baud > 0:
		b.io.Baud = breakout.Baud
	case b.io.Baud == 0:
		b.io.Baud = DefaultGPSBaud
	}

	return &GPSBuilder{b: b, breakout: breakout}, nil
}

// OpenGPS creates and opens a GPS receiver in one step.
func OpenGPS(ctx context.Context, io, device any, opts ...Option) (*GPS, error) {
	gb, err := NewGPS(io, device, opts...)
	if err != nil {
		return nil, err
	}
	return gb.Open(ctx)
}

// Builder exposes the normalized configuration.
func (gb *GPSBuilder) Builder() *Builder {
	return gb.b
}

// OnFix sets the listener the receiver starts with, so fixes decoded while
// Open is still sending init sentences are not missed.
func (gb *GPSBuilder) OnFix(fn func(Fix)) *GPSBuilder {
	gb.onFix = fn
	return gb
}

// Open resolves and opens the serial provider and sends the breakout's
// init sentences.
func (gb *GPSBuilder) Open(ctx context.Context) (*GPS, error) {
	g := &GPS{logger: gb.b.logger, onFix: gb.onFix}

	port, err := openAs[SerialPort](ctx, gb.b, ProviderConfig{
		Mode:       ModeSerial,
		OnReadable: g.receive,
	})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.port = port
	g.mu.Unlock()

	for _, body := range gb.breakout.Init {
		if err := g.SendSentence(body); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to initialize receiver: %w", err), port.Close())
		}
	}

	g.logger.Debug("gps opened",
		zap.Stringer("port", gb.b.io.Port),
		zap.Int("baud", gb.b.io.Baud))
	return g, nil
}

// GPS decodes NMEA sentences arriving on a serial provider.
type GPS struct {
	port   SerialPort
	logger *zap.Logger
	onFix  func(Fix)
	line   []byte
	fix    Fix
	stats  GPSStats
	mu     sync.Mutex
	closed bool
}

// Fix returns the latest position report.
func (g *GPS) Fix() Fix {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fix
}

// Latitude returns the latest latitude in decimal degrees.
func (g *GPS) Latitude() float64 {
	return g.Fix().Latitude
}

// Longitude returns the latest longitude in decimal degrees.
func (g *GPS) Longitude() float64 {
	return g.Fix().Longitude
}

// Altitude returns the latest altitude in meters.
func (g *GPS) Altitude() float64 {
	return g.Fix().Altitude
}

// Stats returns sentence counters.
func (g *GPS) Stats() GPSStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// OnFix registers fn to receive every position update. fn runs on the
// provider's read goroutine.
func (g *GPS) OnFix(fn func(Fix)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onFix = fn
}

// SendSentence frames body as an NMEA sentence and writes it to the
// receiver. A leading '$' in body is ignored.
func (g *GPS) SendSentence(body string) error {
	body = strings.TrimPrefix(body, "$")
	if body == "" || strings.ContainsAny(body, "*\r\n") {
		return NewParameterError("send sentence", "body", body, nil)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrDeviceClosed
	}
	return g.port.SerialWrite([]byte("$" + body + "*" + nmea.Checksum(body) + "\r\n"))
}

// Close releases the serial provider. The provider's reader may still be
// delivering bytes, so the lock is released before closing it.
func (g *GPS) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	port := g.port
	g.mu.Unlock()

	if port == nil {
		return nil
	}
	if err := port.Close(); err != nil {
		return fmt.Errorf("failed to close provider: %w", err)
	}
	return nil
}

// receive frames incoming bytes into lines.
func (g *GPS) receive(p []byte) {
	var updates []Fix

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	for _, c := range p {
		switch c {
		case '\n':
			if g.handleLine(string(g.line)) {
				updates = append(updates, g.fix)
			}
			g.line = g.line[:0]
		case '\r':
		default:
			if len(g.line) >= maxSentenceLength {
				g.line = g.line[:0]
				g.stats.Dropped++
			}
			g.line = append(g.line, c)
		}
	}
	fn := g.onFix
	g.mu.Unlock()

	if fn == nil {
		return
	}
	for _, fix := range updates {
		fn(fix)
	}
}

// handleLine folds one sentence into the fix and reports whether the fix
// changed.
func (g *GPS) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	s, err := nmea.Parse(line)
	if err != nil {
		g.stats.Errors++
		g.logger.Debug("discarding sentence", zap.String("sentence", line), zap.Error(err))
		return false
	}
	g.stats.Sentences++

	switch m := s.(type) {
	case nmea.RMC:
		g.fix.Valid = m.Validity == nmea.ValidRMC
		g.fix.Latitude = m.Latitude
		g.fix.Longitude = m.Longitude
		g.fix.Speed = m.Speed
		g.fix.Course = m.Course
		if t, ok := fixTime(m.Date, m.Time); ok {
			g.fix.Time = t
		}
		return true
	case nmea.GGA:
		g.fix.Latitude = m.Latitude
		g.fix.Longitude = m.Longitude
		g.fix.Altitude = m.Altitude
		g.fix.Satellites = int(m.NumSatellites)
		g.fix.Quality = m.FixQuality
		return true
	case nmea.VTG:
		g.fix.Speed = m.GroundSpeedKnots
		g.fix.Course = m.TrueTrack
		return true
	default:
		return false
	}
}

func fixTime(d nmea.Date, t nmea.Time) (time.Time, bool) {
	if !d.Valid || !t.Valid {
		return time.Time{}, false
	}
	return time.Date(2000+d.YY, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC), true
}
