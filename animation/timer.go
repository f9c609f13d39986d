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

// Package animation drives timed value changes for devices: a repeating
// timer facility and a progress-based animation engine on top of it.
package animation

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Handle identifies a repeating callback registered with a Scheduler.
// The zero Handle is never issued.
type Handle uint64

// Scheduler runs callbacks repeatedly at a fixed interval.
//
// Calls to the callback for a single Handle never overlap. Cancel on an
// unknown or already cancelled Handle is a no-op.
type Scheduler interface {
	// Every schedules fn to run once per elapsed interval until cancelled.
	Every(interval time.Duration, fn func()) Handle

	// Cancel stops further invocations for h.
	Cancel(h Handle)

	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}

// ClockScheduler implements Scheduler with one ticker goroutine per handle.
type ClockScheduler struct {
	clock  clock.Clock
	active map[Handle]chan struct{}
	next   Handle
	mu     sync.Mutex
}

// NewClockScheduler creates a scheduler driven by clk. A nil clk uses the
// wall clock.
func NewClockScheduler(clk clock.Clock) *ClockScheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &ClockScheduler{
		clock:  clk,
		active: make(map[Handle]chan struct{}),
	}
}

// Every schedules fn every interval. interval must be positive.
func (s *ClockScheduler) Every(interval time.Duration, fn func()) Handle {
	done := make(chan struct{})

	s.mu.Lock()
	s.next++
	h := s.next
	s.active[h] = done
	s.mu.Unlock()

	ticker := s.clock.Ticker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// A tick may race with Cancel; cancellation wins.
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return h
}

// Cancel stops the ticker behind h.
func (s *ClockScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if done, ok := s.active[h]; ok {
		close(done)
		delete(s.active, h)
	}
}

// Now returns the current time of the underlying clock.
func (s *ClockScheduler) Now() time.Time {
	return s.clock.Now()
}

var _ Scheduler = (*ClockScheduler)(nil)
