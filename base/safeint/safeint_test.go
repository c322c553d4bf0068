// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package safeint_test

import (
	"math"
	"testing"

	"github.com/mpx-org/mpx/base/safeint"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		a, b     int32
		want     int32
		overflow bool
	}{
		{0, 0, 0, false},
		{1, 2, 3, false},
		{-1, -2, -3, false},
		{math.MaxInt32, 0, math.MaxInt32, false},
		{math.MaxInt32, 1, 0, true},
		{math.MaxInt32 - 1, 1, math.MaxInt32, false},
		{math.MinInt32, -1, 0, true},
		{math.MinInt32, 1, math.MinInt32 + 1, false},
		{math.MaxInt32, math.MaxInt32, 0, true},
	}
	for _, test := range tests {
		got, err := safeint.Add(test.a, test.b)
		if test.overflow {
			if err == nil {
				t.Errorf("Add(%d, %d): want overflow, got %d", test.a, test.b, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Add(%d, %d): unexpected error: %v", test.a, test.b, err)
			continue
		}
		if got != test.want {
			t.Errorf("Add(%d, %d) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestMul(t *testing.T) {
	tests := []struct {
		a, b     int
		want     int
		overflow bool
	}{
		{0, math.MaxInt, 0, false},
		{3, 5, 15, false},
		{-3, 5, -15, false},
		{math.MaxInt, 2, 0, true},
		{math.MaxInt, 1, math.MaxInt, false},
		{math.MinInt, -1, 0, true},
	}
	for _, test := range tests {
		got, err := safeint.Mul(test.a, test.b)
		if test.overflow {
			if err == nil {
				t.Errorf("Mul(%d, %d): want overflow, got %d", test.a, test.b, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Mul(%d, %d): unexpected error: %v", test.a, test.b, err)
			continue
		}
		if got != test.want {
			t.Errorf("Mul(%d, %d) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
