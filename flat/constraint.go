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

package flat

import (
	"math"

	log "github.com/golang/glog"

	"github.com/mpx-org/mpx/problem"
)

// Constraint is a custom constraint of the flat model: a named
// relation between variables emitted by the flattening converter.
// Marking a constraint removed is irreversible within a conversion run.
type Constraint interface {
	// Class names the constraint class for backend capability tables
	// and diagnostics.
	Class() string
	// Rank orders constraint classes: every rewrite emits only
	// constraints of strictly smaller rank, which bounds the rewrite
	// loop.
	Rank() int
	// Removed reports whether the constraint was rewritten away.
	Removed() bool
	// Remove marks the constraint removed.
	Remove()
	// Convert applies the default rewrite of the class, appending
	// replacement constraints through the converter. Classes without
	// a default rewrite return errNoRewrite.
	Convert(c *Converter) error
}

// Rewrite ranks, strictly decreasing along every rewrite chain:
// functional relations lower to indicators and linear rows, indicators
// lower to linear rows only.
const (
	rankLinear     = 0
	rankDefining   = 1
	rankIndicator  = 2
	rankFunctional = 3
)

// removable implements the removal flag shared by all constraints.
type removable struct {
	removed bool
}

// Removed reports whether the constraint was rewritten away.
func (r *removable) Removed() bool { return r.removed }

// Remove marks the constraint removed.
func (r *removable) Remove() { r.removed = true }

// LinearConstraint is lb <= coefs . vars <= ub.
type LinearConstraint struct {
	removable
	Coefs []float64
	Vars  []int
	LB    float64
	UB    float64
}

// NewLinearConstraint returns a linear constraint over parallel
// coefficient and variable slices.
func NewLinearConstraint(coefs []float64, vars []int, lb, ub float64) *LinearConstraint {
	if len(coefs) != len(vars) {
		log.Fatalf("NewLinearConstraint: coefs and vars must be the same length: %v != %v",
			len(coefs), len(vars))
	}
	return &LinearConstraint{Coefs: coefs, Vars: vars, LB: lb, UB: ub}
}

// Class returns "linear".
func (*LinearConstraint) Class() string { return "linear" }

// Rank returns the rewrite rank of the class.
func (*LinearConstraint) Rank() int { return rankLinear }

// Convert reports that linear constraints have no further rewrite.
func (con *LinearConstraint) Convert(c *Converter) error { return errNoRewrite }

// LinearDefining is r = affine.
type LinearDefining struct {
	removable
	Affine EExpr
	R      int
}

// Class returns "lindef".
func (*LinearDefining) Class() string { return "lindef" }

// Rank returns the rewrite rank of the class.
func (*LinearDefining) Rank() int { return rankDefining }

// ToLinear lowers the defining constraint to a linear constraint:
// affine - r = 0 with the constant moved to the bounds.
func (con *LinearDefining) ToLinear() *LinearConstraint {
	terms := con.Affine.Terms()
	coefs := make([]float64, 0, len(terms)+1)
	vars := make([]int, 0, len(terms)+1)
	for _, t := range terms {
		coefs = append(coefs, t.Coef)
		vars = append(vars, t.Var)
	}
	coefs = append(coefs, -1)
	vars = append(vars, con.R)
	rhs := -con.Affine.ConstantTerm()
	return NewLinearConstraint(coefs, vars, rhs, rhs)
}

// Convert lowers the constraint to its linear form.
func (con *LinearDefining) Convert(c *Converter) error {
	return c.AddCustomCon(con.ToLinear())
}

// Maximum is r = max(args).
type Maximum struct {
	removable
	R    int
	Args []int
}

// Class returns "max".
func (*Maximum) Class() string { return "max" }

// Rank returns the rewrite rank of the class.
func (*Maximum) Rank() int { return rankFunctional }

// Convert lowers the maximum to envelope rows and indicator
// constraints: r >= arg for every argument, and a binary selector per
// argument forcing r <= arg for the selected one.
func (con *Maximum) Convert(c *Converter) error {
	return convertEnvelope(c, con.R, con.Args, true)
}

// Minimum is r = min(args).
type Minimum struct {
	removable
	R    int
	Args []int
}

// Class returns "min".
func (*Minimum) Class() string { return "min" }

// Rank returns the rewrite rank of the class.
func (*Minimum) Rank() int { return rankFunctional }

// Convert lowers the minimum symmetrically to Maximum.Convert.
func (con *Minimum) Convert(c *Converter) error {
	return convertEnvelope(c, con.R, con.Args, false)
}

// convertEnvelope emits the MIP encoding shared by Maximum and
// Minimum. For a maximum: r - arg >= 0 for every arg, selector b
// forcing r - arg <= 0, and sum of selectors = 1. A minimum swaps the
// inequality directions.
func convertEnvelope(c *Converter, r int, args []int, isMax bool) error {
	infinity := math.Inf(1)
	selectors := make([]int, 0, len(args))
	for _, arg := range args {
		lb, ub := 0.0, infinity
		if !isMax {
			lb, ub = -infinity, 0
		}
		if err := c.AddCustomCon(NewLinearConstraint(
			[]float64{1, -1}, []int{r, arg}, lb, ub)); err != nil {
			return err
		}
		b := c.Model().AddVar(0, 1, problem.Integer)
		coefs := []float64{1, -1}
		if !isMax {
			coefs = []float64{-1, 1}
		}
		if err := c.AddCustomCon(&IndicatorLeq{
			B: b, BV: 1, Coefs: coefs, Vars: []int{r, arg}, RHS: 0,
		}); err != nil {
			return err
		}
		selectors = append(selectors, b)
	}
	ones := make([]float64, len(selectors))
	for i := range ones {
		ones[i] = 1
	}
	return c.AddCustomCon(NewLinearConstraint(ones, selectors, 1, 1))
}

// NotEqual is r = (v1 != v2).
type NotEqual struct {
	removable
	R  int
	V1 int
	V2 int
}

// Class returns "ne".
func (*NotEqual) Class() string { return "ne" }

// Rank returns the rewrite rank of the class.
func (*NotEqual) Rank() int { return rankFunctional }

// Convert reports that the class has no default rewrite.
func (con *NotEqual) Convert(c *Converter) error { return errNoRewrite }

// LessOrEqual is r = (v1 <= v2).
type LessOrEqual struct {
	removable
	R  int
	V1 int
	V2 int
}

// Class returns "le".
func (*LessOrEqual) Class() string { return "le" }

// Rank returns the rewrite rank of the class.
func (*LessOrEqual) Rank() int { return rankFunctional }

// Convert reports that the class has no default rewrite.
func (con *LessOrEqual) Convert(c *Converter) error { return errNoRewrite }

// Disjunction is r = (v1 or v2).
type Disjunction struct {
	removable
	R  int
	V1 int
	V2 int
}

// Class returns "or".
func (*Disjunction) Class() string { return "or" }

// Rank returns the rewrite rank of the class.
func (*Disjunction) Rank() int { return rankFunctional }

// Convert reports that the class has no default rewrite.
func (con *Disjunction) Convert(c *Converter) error { return errNoRewrite }

// IndicatorLeq is b == bv implies coefs . vars <= rhs.
type IndicatorLeq struct {
	removable
	// B is the indicator variable, BV the triggering value, 0 or 1.
	B     int
	BV    int
	Coefs []float64
	Vars  []int
	RHS   float64
}

// Class returns "indleq".
func (*IndicatorLeq) Class() string { return "indleq" }

// Rank returns the rewrite rank of the class.
func (*IndicatorLeq) Rank() int { return rankIndicator }

// Convert reports that the class has no default rewrite.
func (con *IndicatorLeq) Convert(c *Converter) error { return errNoRewrite }
