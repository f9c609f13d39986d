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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstrain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		low   float64
		high  float64
		want  float64
	}{
		{name: "below range", value: -5, low: 0, high: 255, want: 0},
		{name: "above range", value: 300, low: 0, high: 255, want: 255},
		{name: "inside range", value: 128.5, low: 0, high: 255, want: 128.5},
		{name: "at low bound", value: 0, low: 0, high: 1, want: 0},
		{name: "at high bound", value: 1, low: 0, high: 1, want: 1},
		{name: "negative range", value: -20, low: -10, high: -1, want: -10},
		{name: "positive infinity", value: math.Inf(1), low: 0, high: 1, want: 1},
		{name: "negative infinity", value: math.Inf(-1), low: 0, high: 1, want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Constrain(tt.value, tt.low, tt.high), 0)
		})
	}
}

func TestConstrain_StaysInRange(t *testing.T) {
	t.Parallel()

	const low, high = 0.0, 1023.0
	for v := -2048.0; v <= 2048; v += 0.75 {
		got := Constrain(v, low, high)
		assert.GreaterOrEqual(t, got, low)
		assert.LessOrEqual(t, got, high)
		if v >= low && v <= high {
			assert.InDelta(t, v, got, 0)
		}
	}
}

func TestConstrain_NaNPropagates(t *testing.T) {
	t.Parallel()
	assert.True(t, math.IsNaN(Constrain(math.NaN(), 0, 1)))
}
