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
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// PinID identifies a pin or port. Numeric pins are stored in decimal form,
// so PinNumber(14) and PinID("14") are equal.
type PinID string

// PinNumber returns the PinID for a numeric pin.
func PinNumber(n int) PinID {
	return PinID(strconv.Itoa(n))
}

// Number returns the numeric pin, if the identifier is numeric.
func (p PinID) Number() (int, bool) {
	n, err := strconv.Atoi(string(p))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p PinID) String() string {
	return string(p)
}

// IOOptions is the canonical provider configuration of a device.
type IOOptions struct {
	// Factory opens the provider directly, bypassing registry lookup.
	Factory ProviderFactory `mapstructure:"-"`
	// Extra holds provider specific fields.
	Extra    map[string]any `mapstructure:",remain"`
	Provider ProviderType   `mapstructure:"provider"`
	Pin      PinID          `mapstructure:"pin"`
	Port     PinID          `mapstructure:"port"`
	Pins     []PinID        `mapstructure:"pins"`
	Baud     int            `mapstructure:"baud"`
}

// Clone returns a copy that shares no slices or maps with o.
func (o IOOptions) Clone() IOOptions {
	o.Pins = slices.Clone(o.Pins)
	o.Extra = maps.Clone(o.Extra)
	return o
}

// DeviceOptions configures device behaviour independent of the provider.
type DeviceOptions struct {
	Extra    map[string]any `mapstructure:",remain"`
	Breakout string         `mapstructure:"breakout"`
	Sink     bool           `mapstructure:"sink"`
}

// Clone returns a copy that shares no maps with o.
func (o DeviceOptions) Clone() DeviceOptions {
	o.Extra = maps.Clone(o.Extra)
	return o
}

var pinIDType = reflect.TypeOf(PinID(""))

// Normalize turns constructor input into canonical options.
//
// io may be a non-negative pin number, a pin name, a string keyed map of any
// value type, or IOOptions (value or pointer). device may be nil, a string
// keyed map, or DeviceOptions (value or pointer). The results never alias
// the inputs.
func Normalize(io, device any) (IOOptions, DeviceOptions, error) {
	ioOpts, err := normalizeIO(io)
	if err != nil {
		return IOOptions{}, DeviceOptions{}, err
	}
	devOpts, err := normalizeDevice(device)
	if err != nil {
		return IOOptions{}, DeviceOptions{}, err
	}
	return ioOpts, devOpts, nil
}

func normalizeIO(io any) (IOOptions, error) {
	switch v := io.(type) {
	case IOOptions:
		return v.Clone(), nil
	case *IOOptions:
		if v == nil {
			break
		}
		return v.Clone(), nil
	case PinID:
		if v == "" {
			break
		}
		return IOOptions{Pin: v}, nil
	case string:
		if v == "" {
			break
		}
		return IOOptions{Pin: PinID(v)}, nil
	default:
		if m, ok := stringKeyedMap(io); ok {
			return decodeIOMap(m)
		}
		if isNegative(io) {
			return IOOptions{}, NewParameterError("normalize", "io", io, errNegativePin)
		}
		if pin, ok := numericPin(io); ok {
			return IOOptions{Pin: pin}, nil
		}
	}
	return IOOptions{}, NewParameterError("normalize", "io", io,
		errors.New("expected a pin number, pin name or options mapping"))
}

var errNegativePin = errors.New("pin numbers cannot be negative")

// stringKeyedMap copies any map whose key kind is string, such as
// map[string]string or map[string]int, into a map[string]any.
func stringKeyedMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func decodeIOMap(m map[string]any) (IOOptions, error) {
	var opts IOOptions

	// A factory under "provider" selects the provider directly.
	src := maps.Clone(m)
	if f, ok := asFactory(src["provider"]); ok {
		opts.Factory = f
		delete(src, "provider")
	}

	if err := decode(src, &opts); err != nil {
		return IOOptions{}, NewParameterError("normalize", "io", m, err)
	}
	return opts, nil
}

func asFactory(v any) (ProviderFactory, bool) {
	switch f := v.(type) {
	case ProviderFactory:
		return f, f != nil
	case func(ctx context.Context, cfg ProviderConfig) (Provider, error):
		return f, f != nil
	}
	return nil, false
}

func normalizeDevice(device any) (DeviceOptions, error) {
	switch v := device.(type) {
	case nil:
		return DeviceOptions{}, nil
	case DeviceOptions:
		return v.Clone(), nil
	case *DeviceOptions:
		if v == nil {
			return DeviceOptions{}, nil
		}
		return v.Clone(), nil
	}
	if m, ok := stringKeyedMap(device); ok {
		var opts DeviceOptions
		if err := decode(m, &opts); err != nil {
			return DeviceOptions{}, NewParameterError("normalize", "device", device, err)
		}
		return opts, nil
	}
	return DeviceOptions{}, NewParameterError("normalize", "device", device,
		errors.New("expected an options mapping"))
}

func decode(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: pinIDHook,
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}
	return nil
}

// pinIDHook lets mapping inputs carry pins as numbers or names.
func pinIDHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != pinIDType {
		return data, nil
	}
	if s, ok := data.(string); ok {
		return PinID(s), nil
	}
	if isNegative(data) {
		return nil, fmt.Errorf("pin %v: %w", data, errNegativePin)
	}
	if pin, ok := numericPin(data); ok {
		return pin, nil
	}
	return data, nil
}

func isNegative(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() < 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() < 0
	default:
		return false
	}
}

// numericPin converts non-negative integer values, and floats holding whole
// numbers as decoded JSON does, into a PinID.
func numericPin(v any) (PinID, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return "", false
		}
		return PinID(strconv.FormatInt(rv.Int(), 10)), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return PinID(strconv.FormatUint(rv.Uint(), 10)), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) {
			return "", false
		}
		return PinID(strconv.FormatInt(int64(f), 10)), true
	default:
		return "", false
	}
}
