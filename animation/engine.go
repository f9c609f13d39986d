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

package animation

import (
	"errors"
	"sync"
	"time"
)

// DefaultInterval is the tick interval used when a Descriptor leaves it unset.
const DefaultInterval = 10 * time.Millisecond

// ErrInvalidDescriptor is returned when an animation cannot be started with
// the given parameters.
var ErrInvalidDescriptor = errors.New("invalid animation descriptor")

// Descriptor describes one progress-based animation.
type Descriptor struct {
	// Step receives the value computed by Delta on every tick.
	Step func(delta float64)

	// Delta maps progress in [0, 1] to an output value.
	Delta func(progress float64) float64

	// OnComplete runs with the engine lock held once progress reaches 1.
	// It may start a new animation on the same engine.
	OnComplete func()

	// Notify runs after OnComplete once the engine lock has been released.
	// User callbacks belong here so they can call back into the device.
	// Another goroutine may start a new animation between the release and
	// the call, so Notify can run after its animation was superseded.
	Notify func()

	// Duration is the total animation time.
	Duration time.Duration

	// Interval is the tick interval, DefaultInterval if zero.
	Interval time.Duration
}

// Engine owns at most one running timer on behalf of a device.
//
// All methods must be called with the engine's lock held.
// Tick callbacks acquire the same lock, so they never interleave with the
// device's own methods.
type Engine struct {
	mu        sync.Locker
	scheduler Scheduler
	handle    Handle
}

// NewEngine creates an engine that serializes ticks through mu.
func NewEngine(mu sync.Locker, scheduler Scheduler) *Engine {
	return &Engine{mu: mu, scheduler: scheduler}
}

// Animate cancels any running timer and starts d.
func (e *Engine) Animate(d Descriptor) error {
	if d.Step == nil || d.Delta == nil || d.Duration <= 0 || d.Interval < 0 {
		return ErrInvalidDescriptor
	}
	if d.Interval == 0 {
		d.Interval = DefaultInterval
	}

	e.Stop()

	start := e.scheduler.Now()
	var h Handle
	h = e.scheduler.Every(d.Interval, func() {
		e.mu.Lock()
		if e.handle != h {
			e.mu.Unlock()
			return
		}

		elapsed := e.scheduler.Now().Sub(start)
		progress := min(float64(elapsed)/float64(d.Duration), 1)
		d.Step(d.Delta(progress))

		if progress < 1 {
			e.mu.Unlock()
			return
		}

		e.Stop()
		if d.OnComplete != nil {
			d.OnComplete()
		}
		e.mu.Unlock()

		if d.Notify != nil {
			d.Notify()
		}
	})
	e.handle = h
	return nil
}

// Repeat cancels any running timer and calls fn every interval until
// stopped. notify runs after each fn, outside the lock, unless fn stopped
// or replaced the timer. As with Descriptor.Notify, a timer started by
// another goroutine after the lock is released does not suppress it.
func (e *Engine) Repeat(interval time.Duration, fn, notify func()) error {
	if fn == nil || interval <= 0 {
		return ErrInvalidDescriptor
	}

	e.Stop()

	var h Handle
	h = e.scheduler.Every(interval, func() {
		e.mu.Lock()
		if e.handle != h {
			e.mu.Unlock()
			return
		}
		fn()
		current := e.handle == h
		e.mu.Unlock()

		if notify != nil && current {
			notify()
		}
	})
	e.handle = h
	return nil
}

// Stop cancels the running timer, if any.
func (e *Engine) Stop() {
	if e.handle == 0 {
		return
	}
	e.scheduler.Cancel(e.handle)
	e.handle = 0
}

// Running reports whether a timer is active.
func (e *Engine) Running() bool {
	return e.handle != 0
}
