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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	devio "github.com/ZaparooProject/go-devio"
	_ "github.com/ZaparooProject/go-devio/provider/gpio"
	_ "github.com/ZaparooProject/go-devio/provider/pwm"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type config struct {
	pins       *string
	provider   *string
	mode       *string
	interval   *time.Duration
	duration   *time.Duration
	runFor     *time.Duration
	level      *float64
	resolution *int
	sink       *bool
	debug      *bool
}

func parseFlags() *config {
	cfg := &config{
		pins:     flag.String("pins", "", "Comma separated pins (e.g., 17,27 or GPIO18)"),
		provider: flag.String("provider", "gpio", "Provider: gpio or pwm"),
		mode:     flag.String("mode", "blink", "Mode: on, off, toggle, blink, pulse or fade"),
		interval: flag.Duration("interval", devio.DefaultBlinkInterval, "Blink interval"),
		duration: flag.Duration("duration", devio.DefaultFadeDuration,
			"Fade time, or half cycle time for pulse"),
		runFor: flag.Duration("run", 0, "Stop after this long (default: until interrupted)"),
		level:  flag.Float64("level", -1, "Fade target level (default: fully on)"),
		resolution: flag.Int("resolution", 8,
			"PWM bit depth, used with -provider pwm"),
		sink:  flag.Bool("sink", false, "LEDs are wired to sink current"),
		debug: flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()

	if *cfg.debug {
		devio.SetDebugEnabled(true)
	}

	return cfg
}

func parsePins(s string) ([]devio.PinID, error) {
	var pins []devio.PinID
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		pins = append(pins, devio.PinID(field))
	}
	if len(pins) == 0 {
		return nil, errors.New("no pins given")
	}
	return pins, nil
}

func ioOptions(cfg *config, pin devio.PinID) map[string]any {
	io := map[string]any{
		"pin":      string(pin),
		"provider": *cfg.provider,
	}
	if devio.ProviderType(*cfg.provider) == devio.ProviderPWM {
		io["resolution"] = *cfg.resolution
	}
	return io
}

// openLEDs opens every pin concurrently. If any pin fails, the ones that
// did open are closed again.
func openLEDs(ctx context.Context, cfg *config, pins []devio.PinID, opts ...devio.Option) ([]*devio.LED, error) {
	leds := make([]*devio.LED, len(pins))
	device := map[string]any{"sink": *cfg.sink}

	g, gctx := errgroup.WithContext(ctx)
	for i, pin := range pins {
		i, pin := i, pin
		g.Go(func() error {
			led, err := devio.OpenLED(gctx, ioOptions(cfg, pin), device, opts...)
			if err != nil {
				return fmt.Errorf("pin %s: %w", pin, err)
			}
			leds[i] = led
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_ = closeLEDs(leds)
		return nil, err
	}
	return leds, nil
}

func applyMode(led *devio.LED, cfg *config) error {
	switch *cfg.mode {
	case "on":
		return led.On()
	case "off":
		return led.Off()
	case "toggle":
		return led.Toggle()
	case "blink":
		return led.Blink(*cfg.interval, nil)
	case "pulse":
		return led.Pulse(*cfg.duration, nil)
	case "fade":
		target := *cfg.level
		if target < 0 {
			target = float64(led.High())
		}
		return led.Fade(target, *cfg.duration, nil)
	default:
		return fmt.Errorf("unknown mode %q", *cfg.mode)
	}
}

func closeLEDs(leds []*devio.LED) error {
	var err error
	for _, led := range leds {
		if led == nil {
			continue
		}
		led.Stop()
		err = multierr.Append(err, led.Off())
		err = multierr.Append(err, led.Close())
	}
	return err
}

func run(ctx context.Context, cfg *config) error {
	pins, err := parsePins(*cfg.pins)
	if err != nil {
		return err
	}

	leds, err := openLEDs(ctx, cfg, pins)
	if err != nil {
		return fmt.Errorf("failed to open LEDs: %w", err)
	}

	for i, led := range leds {
		if err := applyMode(led, cfg); err != nil {
			return multierr.Append(fmt.Errorf("pin %s: %w", pins[i], err), closeLEDs(leds))
		}
	}
	_, _ = fmt.Printf("Driving %d LED(s) in %s mode, press Ctrl+C to stop\n", len(leds), *cfg.mode)

	if *cfg.runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *cfg.runFor)
		defer cancel()
	}
	<-ctx.Done()

	return closeLEDs(leds)
}

func main() {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ledctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
