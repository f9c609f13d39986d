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
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ManualScheduler is a deterministic Scheduler for tests. Time only moves
// when Advance is called, and due callbacks run synchronously on the
// caller's goroutine in due-time order.
type ManualScheduler struct {
	clock   *clock.Mock
	entries map[Handle]*manualEntry
	next    Handle
	mu      sync.Mutex
}

type manualEntry struct {
	due      time.Time
	fn       func()
	interval time.Duration
}

// NewManualScheduler creates a scheduler on a fresh mock clock.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		clock:   clock.NewMock(),
		entries: make(map[Handle]*manualEntry),
	}
}

// Every registers fn to run every interval of mock time.
func (s *ManualScheduler) Every(interval time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.entries[s.next] = &manualEntry{
		due:      s.clock.Now().Add(interval),
		fn:       fn,
		interval: interval,
	}
	return s.next
}

// Cancel removes h.
func (s *ManualScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, h)
}

// Now returns the mock time.
func (s *ManualScheduler) Now() time.Time {
	return s.clock.Now()
}

// Clock exposes the mock clock.
func (s *ManualScheduler) Clock() *clock.Mock {
	return s.clock
}

// Active returns the number of registered callbacks.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Advance moves mock time forward by d, firing every callback that falls due
// on the way. Callbacks registered while advancing fire too if they fall due
// before the end.
func (s *ManualScheduler) Advance(d time.Duration) {
	end := s.clock.Now().Add(d)
	for {
		due, fn, ok := s.popDue(end)
		if !ok {
			break
		}
		s.clock.Set(due)
		fn()
	}
	s.clock.Set(end)
}

// popDue finds the earliest entry due at or before end and reschedules it.
func (s *ManualScheduler) popDue(end time.Time) (time.Time, func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best  *manualEntry
		bestH Handle
	)
	for h, e := range s.entries {
		if e.due.After(end) {
			continue
		}
		if best == nil || e.due.Before(best.due) || (e.due.Equal(best.due) && h < bestH) {
			best, bestH = e, h
		}
	}
	if best == nil {
		return time.Time{}, nil, false
	}

	due := best.due
	best.due = best.due.Add(best.interval)
	return due, best.fn, true
}

var _ Scheduler = (*ManualScheduler)(nil)
