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
	"math"
	"testing"

	"go.uber.org/multierr"

	"github.com/mpx-org/mpx/flat"
	"github.com/mpx-org/mpx/problem"
)

func TestMakeFixedVar(t *testing.T) {
	m := flat.NewModel()
	a := m.MakeFixedVar(3)
	b := m.MakeFixedVar(-1.5)
	if a == b {
		t.Fatal("distinct values share a fixed variable")
	}
	if again := m.MakeFixedVar(3); again != a {
		t.Errorf("MakeFixedVar(3) = %d on the second call but %d on the first", again, a)
	}
	v := m.Var(a)
	if v.LB != 3 || v.UB != 3 {
		t.Errorf("fixed var bounds = (%g, %g)", v.LB, v.UB)
	}
	if m.NumVars() != 2 {
		t.Errorf("num vars = %d", m.NumVars())
	}
}

func TestAffineBounds(t *testing.T) {
	infinity := math.Inf(1)
	m := flat.NewModel()
	m.AddVar(1, 3, problem.Integer)       // x0
	m.AddVar(-2, 5, problem.Continuous)   // x1
	m.AddVar(0, infinity, problem.Integer) // x2

	affine := func(constant float64, terms ...flat.Term) flat.EExpr {
		e := flat.Constant(constant)
		for _, t := range terms {
			e.AddTerm(t.Var, t.Coef)
		}
		return e
	}

	tests := []struct {
		name   string
		ae     flat.EExpr
		lb, ub float64
		typ    problem.VarType
	}{
		{
			name: "integer combination",
			ae:   affine(1, flat.Term{Var: 0, Coef: 2}),
			lb:   3, ub: 7, typ: problem.Integer,
		},
		{
			name: "negative coefficient swaps bounds",
			ae:   affine(0, flat.Term{Var: 0, Coef: -1}),
			lb:   -3, ub: -1, typ: problem.Integer,
		},
		{
			name: "continuous variable downgrades",
			ae:   affine(1, flat.Term{Var: 0, Coef: 2}, flat.Term{Var: 1, Coef: -3}),
			lb:   -12, ub: 13, typ: problem.Continuous,
		},
		{
			name: "fractional coefficient downgrades",
			ae:   affine(0, flat.Term{Var: 0, Coef: 0.5}),
			lb:   0.5, ub: 1.5, typ: problem.Continuous,
		},
		{
			name: "infinity absorbs",
			ae:   affine(2, flat.Term{Var: 2, Coef: 1}),
			lb:   2, ub: infinity, typ: problem.Integer,
		},
		{
			name: "constant only",
			ae:   affine(4),
			lb:   4, ub: 4, typ: problem.Integer,
		},
	}
	for _, test := range tests {
		lb, ub, typ := m.AffineBounds(test.ae)
		if lb != test.lb || ub != test.ub || typ != test.typ {
			t.Errorf("%s: got (%g, %g, %d) but want (%g, %g, %d)",
				test.name, lb, ub, typ, test.lb, test.ub, test.typ)
		}
	}
}

// TestAffineBoundsSound checks soundness on a grid of feasible points:
// the derived interval contains every attainable value.
func TestAffineBoundsSound(t *testing.T) {
	m := flat.NewModel()
	m.AddVar(-1, 2, problem.Integer)
	m.AddVar(0, 3, problem.Integer)
	ae := flat.Constant(1)
	ae.AddTerm(0, 2)
	ae.AddTerm(1, -3)
	lb, ub, typ := m.AffineBounds(ae)
	for x0 := -1.0; x0 <= 2; x0++ {
		for x1 := 0.0; x1 <= 3; x1++ {
			value := 1 + 2*x0 - 3*x1
			if value < lb || value > ub {
				t.Errorf("value %g at (%g, %g) outside [%g, %g]", value, x0, x1, lb, ub)
			}
		}
	}
	if typ != problem.Integer {
		t.Errorf("type = %d but want integer", typ)
	}
}

func TestModelValidate(t *testing.T) {
	m := flat.NewModel()
	m.AddVar(0, 1, problem.Continuous)
	m.AddCon(0, 1, []flat.Term{{Var: 0, Coef: 1}}, -1)
	m.AddCustomCon(flat.NewLinearConstraint([]float64{1}, []int{0}, 0, 1))
	if err := m.Validate(); err != nil {
		t.Errorf("valid model reported: %v", err)
	}

	bad := flat.NewModel()
	bad.AddVar(2, 1, problem.Continuous)
	bad.AddCon(0, 1, []flat.Term{{Var: 5, Coef: 1}}, -1)
	bad.AddCustomCon(&flat.Maximum{R: 7, Args: []int{0, 9}})
	err := bad.Validate()
	if err == nil {
		t.Fatal("invalid model accepted")
	}
	if got := len(multierr.Errors(err)); got != 4 {
		t.Errorf("got %d defects: %v", got, err)
	}
}

func TestAddConResultVar(t *testing.T) {
	m := flat.NewModel()
	m.AddVar(0, 1, problem.Continuous)
	r := m.AddVar(0, 5, problem.Continuous)
	m.AddCon(0, 0, []flat.Term{{Var: 0, Coef: 2}}, r)
	row := m.Row(0)
	want := []flat.Term{{Var: 0, Coef: 2}, {Var: r, Coef: 1}}
	if len(row.Terms) != 2 || row.Terms[1] != want[1] {
		t.Errorf("terms = %v but want %v", row.Terms, want)
	}
}
