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

package flat_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpx-org/mpx/flat"
)

// TestLinearDefiningToLinear checks the default lowering
// r = 2 x0 - x1 + 5  ->  2 x0 - x1 - r = -5.
func TestLinearDefiningToLinear(t *testing.T) {
	affine := flat.Constant(5)
	affine.AddTerm(0, 2)
	affine.AddTerm(1, -1)
	defining := &flat.LinearDefining{Affine: affine, R: 7}
	linear := defining.ToLinear()
	if diff := cmp.Diff([]float64{2, -1, -1}, linear.Coefs); diff != "" {
		t.Errorf("coefs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 7}, linear.Vars); diff != "" {
		t.Errorf("vars mismatch (-want +got):\n%s", diff)
	}
	if linear.LB != -5 || linear.UB != -5 {
		t.Errorf("bounds = (%g, %g) but want (-5, -5)", linear.LB, linear.UB)
	}
}

func TestRemoveIsSticky(t *testing.T) {
	con := flat.NewLinearConstraint([]float64{1}, []int{0}, 0, 1)
	if con.Removed() {
		t.Fatal("fresh constraint is removed")
	}
	con.Remove()
	if !con.Removed() {
		t.Fatal("Remove did not mark the constraint")
	}
}

func TestConstraintRanks(t *testing.T) {
	ordered := [][]flat.Constraint{
		{flat.NewLinearConstraint(nil, nil, 0, 0)},
		{&flat.LinearDefining{}},
		{&flat.IndicatorLeq{}},
		{&flat.Maximum{}, &flat.Minimum{}, &flat.NotEqual{}, &flat.LessOrEqual{}, &flat.Disjunction{}},
	}
	for level, cons := range ordered {
		for _, con := range cons {
			if con.Rank() != level {
				t.Errorf("%s rank = %d but want %d", con.Class(), con.Rank(), level)
			}
		}
	}
}
