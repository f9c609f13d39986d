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
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	devio "github.com/ZaparooProject/go-devio"
	"github.com/ZaparooProject/go-devio/detection"
	_ "github.com/ZaparooProject/go-devio/provider/serial"
)

type config struct {
	port     *string
	breakout *string
	timeout  *time.Duration
	baud     *int
	list     *bool
	debug    *bool
}

func parseFlags() *config {
	cfg := &config{
		port: flag.String("port", "",
			"Serial port path (e.g., /dev/ttyUSB0 or COM3). Leave empty for auto-detection."),
		breakout: flag.String("breakout", "", "Receiver preset (e.g., ADAFRUIT_ULTIMATE_GPS)"),
		timeout:  flag.Duration("timeout", 0, "Stop after this long (default: until interrupted)"),
		baud:     flag.Int("baud", 0, "Baud rate (default: preset or 9600)"),
		list:     flag.Bool("list", false, "List candidate serial ports and exit"),
		debug:    flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()

	if *cfg.debug {
		devio.SetDebugEnabled(true)
	}

	return cfg
}

func listPorts(ctx context.Context, w io.Writer) error {
	ports, err := detection.SerialPorts(ctx, detection.Options{})
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		_, _ = fmt.Fprintln(w, "No serial ports found")
		return nil
	}
	for _, p := range ports {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Path, p.VIDPID, p.Product)
	}
	return nil
}

func formatFix(f devio.Fix) string {
	status := "no fix"
	if f.Valid {
		status = "fix"
	}
	return fmt.Sprintf("%s %s lat=%.6f lon=%.6f alt=%.1fm speed=%.1fkn course=%.1f sats=%d",
		f.Time.Format(time.RFC3339), status, f.Latitude, f.Longitude, f.Altitude, f.Speed, f.Course, f.Satellites)
}

// openReceiver prints every fix to w, including those decoded during open.
func openReceiver(ctx context.Context, ioOpts, device any, w io.Writer) (*devio.GPS, error) {
	gb, err := devio.NewGPS(ioOpts, device)
	if err != nil {
		return nil, fmt.Errorf("invalid receiver options: %w", err)
	}
	gb.OnFix(func(f devio.Fix) {
		_, _ = fmt.Fprintln(w, formatFix(f))
	})

	gps, err := gb.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open receiver: %w", err)
	}
	return gps, nil
}

func run(ctx context.Context, cfg *config) error {
	if *cfg.list {
		return listPorts(ctx, os.Stdout)
	}

	ioOpts := map[string]any{"port": *cfg.port, "baud": *cfg.baud}
	device := map[string]any{"breakout": *cfg.breakout}

	if *cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *cfg.timeout)
		defer cancel()
	}

	gps, err := openReceiver(ctx, ioOpts, device, os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = gps.Close() }()

	_, _ = fmt.Println("Waiting for NMEA sentences, press Ctrl+C to stop...")
	<-ctx.Done()

	stats := gps.Stats()
	_, _ = fmt.Printf("Read %d sentences (%d rejected, %d dropped)\n", stats.Sentences, stats.Errors, stats.Dropped)
	return nil
}

func main() {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "gpsread: %v\n", err)
		stop()
		os.Exit(1)
	}
}
