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
	"math"
	"sync"
	"time"

	"github.com/ZaparooProject/go-devio/animation"
	"go.uber.org/zap"
)

const (
	// DefaultBlinkInterval is the conventional blink half-period.
	DefaultBlinkInterval = 100 * time.Millisecond
	// DefaultFadeDuration is the conventional fade and pulse half-cycle time.
	DefaultFadeDuration = time.Second

	// maxResolution keeps the derived high level within an int.
	maxResolution = 31
)

// pulsePhase is the state of a running pulse.
type pulsePhase int

const (
	fadingUp pulsePhase = iota
	fadingDown
)

var pulseTransitions = map[pulsePhase]pulsePhase{
	fadingUp:   fadingDown,
	fadingDown: fadingUp,
}

// LEDBuilder captures an LED's configuration until Open.
type LEDBuilder struct {
	b *Builder
}

// NewLED normalizes io and device into an LED configuration. io is a pin
// number, pin name, or options mapping; device is nil or an options mapping.
func NewLED(io, device any, opts ...Option) (*LEDBuilder, error) {
	b, err := newBuilder("led", ProviderGPIO, io, device, opts)
	if err != nil {
		return nil, err
	}
	return &LEDBuilder{b: b}, nil
}

// OpenLED creates and opens an LED in one step.
//
// Example usage:
//
//	// Digital LED on pin 13
//	led, err := devio.OpenLED(ctx, 13, nil)
//
//	// Dimmable LED wired to sink current
//	led, err := devio.OpenLED(ctx, map[string]any{"pin": "GPIO18", "provider": "pwm"},
//	    map[string]any{"sink": true})
func OpenLED(ctx context.Context, io, device any, opts ...Option) (*LED, error) {
	lb, err := NewLED(io, device, opts...)
	if err != nil {
		return nil, err
	}
	return lb.Open(ctx)
}

// Builder exposes the normalized configuration.
func (lb *LEDBuilder) Builder() *Builder {
	return lb.b
}

// Open resolves and opens the LED's output provider.
func (lb *LEDBuilder) Open(ctx context.Context) (*LED, error) {
	out, err := openAs[Output](ctx, lb.b, ProviderConfig{Mode: ModeOutput})
	if err != nil {
		return nil, err
	}

	high := 1
	if rr, ok := out.(ResolutionReporter); ok && rr.Resolution() > 0 {
		res := rr.Resolution()
		if res > maxResolution {
			_ = out.Close()
			return nil, NewProviderError("open", string(out.Type()),
				fmt.Errorf("%w: resolution %d out of range", ErrProviderUnusable, res))
		}
		high = 1<<res - 1
	}

	led := &LED{
		provider: out,
		logger:   lb.b.logger,
		onError:  lb.b.onError,
		high:     float64(high),
		sink:     lb.b.device.Sink,
	}
	led.engine = animation.NewEngine(&led.mu, lb.b.scheduler)

	led.logger.Debug("led opened",
		zap.Stringer("pin", lb.b.io.Pin),
		zap.String("mode", string(out.Mode())),
		zap.Int("high", high),
		zap.Bool("sink", led.sink))
	return led, nil
}

// LED is a single light emitting diode on a digital or PWM output.
//
// LED methods are safe for concurrent use. Animation ticks run on the
// scheduler's goroutines and are serialized with method calls; callbacks
// passed to Blink, Fade and Pulse run without the LED locked.
type LED struct {
	provider Output
	engine   *animation.Engine
	logger   *zap.Logger
	onError  func(error)
	high     float64
	value    float64
	phase    pulsePhase
	mu       sync.Mutex
	sink     bool
	closed   bool
}

// High returns the level of a fully lit LED.
func (l *LED) High() int {
	return int(l.high)
}

// Low returns the level of an unlit LED.
func (*LED) Low() int {
	return 0
}

// Value returns the current logical level.
func (l *LED) Value() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Mode returns the provider's output mode.
func (l *LED) Mode() Mode {
	return l.provider.Mode()
}

// Sink reports whether the LED is wired to sink current.
func (l *LED) Sink() bool {
	return l.sink
}

// IsOn reports whether the LED is lit at any level.
func (l *LED) IsOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value > 0
}

// IsRunning reports whether an animation or blink is active.
func (l *LED) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Running()
}

// On lights the LED fully.
func (l *LED) On() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrDeviceClosed
	}
	return l.set(l.high)
}

// Off turns the LED off.
func (l *LED) Off() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrDeviceClosed
	}
	return l.set(0)
}

// Toggle switches between on and off.
func (l *LED) Toggle() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrDeviceClosed
	}
	return l.toggle()
}

// Brightness writes value immediately, without animation. Values outside
// [Low, High] are clamped.
func (l *LED) Brightness(value float64) error {
	if err := checkLevel("brightness", value); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrDeviceClosed
	}
	return l.set(value)
}

// Blink toggles the LED every interval until stopped. callback, if set,
// runs after every toggle.
func (l *LED) Blink(interval time.Duration, callback func()) error {
	if err := checkDuration("blink", interval); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrDeviceClosed
	}

	l.logger.Debug("blink", zap.Duration("interval", interval))
	return l.engine.Repeat(interval, func() {
		if err := l.toggle(); err != nil {
			l.reportError(err)
		}
	}, callback)
}

// Fade moves linearly from the current level to target over d. callback,
// if set, runs once the target is reached.
func (l *LED) Fade(target float64, d time.Duration, callback func()) error {
	if err := checkLevel("fade", target); err != nil {
		return err
	}
	if err := checkDuration("fade", d); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrDeviceClosed
	}
	return l.fade(target, d, nil, callback)
}

// FadeIn fades to High over d.
func (l *LED) FadeIn(d time.Duration, callback func()) error {
	return l.Fade(l.high, d, callback)
}

// FadeOut fades to Low over d.
func (l *LED) FadeOut(d time.Duration, callback func()) error {
	return l.Fade(0, d, callback)
}

// Pulse fades back and forth between Low and High, taking d for each half
// cycle, until stopped. callback, if set, runs at every change of direction.
func (l *LED) Pulse(d time.Duration, callback func()) error {
	if err := checkDuration("pulse", d); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrDeviceClosed
	}

	phase := fadingUp
	if l.value >= l.high {
		phase = fadingDown
	}
	l.logger.Debug("pulse", zap.Duration("half_cycle", d))
	return l.pulse(phase, d, callback)
}

// Stop halts any running animation or blink. The LED keeps its level.
func (l *LED) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.Stop()
}

// Close stops animations and releases the provider.
func (l *LED) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.engine.Stop()
	l.closed = true
	if err := l.provider.Close(); err != nil {
		return fmt.Errorf("failed to close provider: %w", err)
	}
	return nil
}

func (l *LED) pulse(phase pulsePhase, d time.Duration, callback func()) error {
	l.phase = phase
	target := 0.0
	if phase == fadingUp {
		target = l.high
	}
	return l.fade(target, d, func() {
		if err := l.pulse(pulseTransitions[l.phase], d, callback); err != nil {
			l.reportError(err)
		}
	}, callback)
}

func (l *LED) fade(target float64, d time.Duration, onComplete, notify func()) error {
	from := l.value
	return l.engine.Animate(animation.Descriptor{
		Step: func(v float64) {
			if err := l.set(v); err != nil {
				l.reportError(err)
			}
		},
		Delta: func(progress float64) float64 {
			if progress >= 1 {
				return target
			}
			return from + (target-from)*progress
		},
		OnComplete: onComplete,
		Notify:     notify,
		Duration:   d,
	})
}

func (l *LED) toggle() error {
	if l.value > 0 {
		return l.set(0)
	}
	return l.set(l.high)
}

func (l *LED) set(value float64) error {
	l.value = value
	return l.write()
}

// write is the only path to the provider: it clamps the level and inverts
// it for sink wiring.
func (l *LED) write() error {
	l.value = animation.Constrain(l.value, 0, l.high)
	out := l.value
	if l.sink {
		out = l.high - out
	}
	return l.provider.Write(int(math.Round(out)))
}

func (l *LED) reportError(err error) {
	l.logger.Warn("led write failed", zap.Error(err))
	if l.onError != nil {
		l.onError(err)
	}
}

func checkDuration(op string, d time.Duration) error {
	if d <= 0 {
		return NewParameterError(op, "duration", d, nil)
	}
	return nil
}

func checkLevel(op string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewParameterError(op, "value", v, nil)
	}
	return nil
}
