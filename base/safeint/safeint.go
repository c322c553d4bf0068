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

// Package safeint provides integer arithmetic with overflow checking.
//
// Sizes derived from untrusted problem headers go through this package so
// that an overflowing size surfaces as an error instead of wrapping silently.
package safeint

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// ErrOverflow is returned when the result of an operation does not fit
// in the operand type.
var ErrOverflow = errors.New("integer overflow")

// Add returns a+b or ErrOverflow if the sum wraps.
func Add[T constraints.Signed](a, b T) (T, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrOverflow
	}
	return s, nil
}

// Mul returns a*b or ErrOverflow if the product wraps.
func Mul[T constraints.Signed](a, b T) (T, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	// -minT wraps back to minT, which the division check below cannot see.
	if b == -1 {
		if -a == a {
			return 0, ErrOverflow
		}
		return -a, nil
	}
	p := a * b
	if p/b != a {
		return 0, ErrOverflow
	}
	return p, nil
}
