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

// Package pwm provides a dimmable output provider backed by periph.io PWM
// pins.
//
// Importing the package registers the provider as "pwm". Two extra IO
// options are understood: "resolution" (bit depth, default 8) and
// "frequency" (a number of hertz or a string such as "25kHz", default 1kHz).
package pwm

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	devio "github.com/ZaparooProject/go-devio"
	"github.com/ZaparooProject/go-devio/internal/periphpin"
	"github.com/go-viper/mapstructure/v2"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultResolution is the bit depth used when none is configured.
	DefaultResolution = 8
	// DefaultFrequency is the carrier frequency used when none is configured.
	DefaultFrequency = physic.KiloHertz

	maxResolution = 16
)

func init() {
	devio.RegisterProvider(devio.ProviderPWM, Open)
}

// Options configures a PWM output.
type Options struct {
	Frequency  physic.Frequency `mapstructure:"frequency"`
	Resolution int              `mapstructure:"resolution"`
}

// ParseOptions reads Options out of the provider specific IO fields.
func ParseOptions(extra map[string]any) (Options, error) {
	opts := Options{Frequency: DefaultFrequency, Resolution: DefaultResolution}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       frequencyHook,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(extra); err != nil {
		return Options{}, devio.NewParameterError("open pwm", "options", extra, err)
	}

	if opts.Resolution < 1 || opts.Resolution > maxResolution {
		return Options{}, devio.NewParameterError("open pwm", "resolution", opts.Resolution,
			fmt.Errorf("must be between 1 and %d", maxResolution))
	}
	if opts.Frequency <= 0 {
		return Options{}, devio.NewParameterError("open pwm", "frequency", opts.Frequency,
			errors.New("must be positive"))
	}
	return opts, nil
}

var frequencyType = reflect.TypeOf(physic.Frequency(0))

// frequencyHook accepts plain hertz or a unit string.
func frequencyHook(from, to reflect.Type, data any) (any, error) {
	if to != frequencyType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		var f physic.Frequency
		if err := f.Set(reflect.ValueOf(data).String()); err != nil {
			return nil, fmt.Errorf("failed to parse frequency: %w", err)
		}
		return f, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return physic.Frequency(reflect.ValueOf(data).Int()) * physic.Hertz, nil
	case reflect.Float32, reflect.Float64:
		return physic.Frequency(reflect.ValueOf(data).Float() * float64(physic.Hertz)), nil
	default:
		return data, nil
	}
}

// Provider writes duty cycles to a PWM capable pin.
type Provider struct {
	pin    gpio.PinIO
	opts   Options
	max    int64
	mu     sync.Mutex
	closed bool
}

// Open looks up cfg.IO.Pin and parses cfg.IO.Extra.
func Open(ctx context.Context, cfg devio.ProviderConfig) (devio.Provider, error) {
	opts, err := ParseOptions(cfg.IO.Extra)
	if err != nil {
		return nil, err
	}
	pin, err := periphpin.Lookup(ctx, cfg.IO.Pin)
	if err != nil {
		return nil, err
	}
	return New(pin, opts), nil
}

// New wraps an already resolved pin.
func New(pin gpio.PinIO, opts Options) *Provider {
	return &Provider{pin: pin, opts: opts, max: 1<<opts.Resolution - 1}
}

// Write sets the duty cycle to value out of the maximum for the resolution.
func (p *Provider) Write(value int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return devio.ErrDeviceClosed
	}

	v := min(max(int64(value), 0), p.max)
	duty := gpio.Duty(v * int64(gpio.DutyMax) / p.max)
	if err := p.pin.PWM(duty, p.opts.Frequency); err != nil {
		return fmt.Errorf("failed to set duty on %s: %w", p.pin.Name(), err)
	}
	return nil
}

// Resolution returns the configured bit depth.
func (p *Provider) Resolution() int {
	return p.opts.Resolution
}

// Frequency returns the carrier frequency.
func (p *Provider) Frequency() physic.Frequency {
	return p.opts.Frequency
}

// Mode returns devio.ModePWM.
func (*Provider) Mode() devio.Mode {
	return devio.ModePWM
}

// Type returns devio.ProviderPWM.
func (*Provider) Type() devio.ProviderType {
	return devio.ProviderPWM
}

// Close halts the pin. Later writes fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.pin.Halt(); err != nil {
		return fmt.Errorf("failed to halt %s: %w", p.pin.Name(), err)
	}
	return nil
}

var (
	_ devio.Output             = (*Provider)(nil)
	_ devio.ResolutionReporter = (*Provider)(nil)
)
