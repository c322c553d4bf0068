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
	"sort"

	log "github.com/golang/glog"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"

	"github.com/pkg/errors"

	"github.com/mpx-org/mpx/base/ordered"
	"github.com/mpx-org/mpx/nl"
	"github.com/mpx-org/mpx/problem"
)

// Var is a variable of the flat model.
type Var struct {
	LB   float64
	UB   float64
	Type problem.VarType
}

// Objective is a linear objective of the flat model.
type Objective struct {
	Sense nl.ObjSense
	Terms []Term
}

// Row is a linear constraint row of the flat model.
type Row struct {
	LB    float64
	UB    float64
	Terms []Term
}

// Model is the flat mixed-integer model the converter produces:
// variables, linear objectives and rows, and an append-only list of
// custom constraints. Variables and custom constraints grow
// monotonically during conversion.
type Model struct {
	vars       []Var
	objs       []Objective
	rows       []Row
	customCons []Constraint

	// fixedVars memoizes the auxiliary variable pinned at [v, v] that
	// represents the constant v where a variable reference is
	// required. Insertion order is part of the deterministic output.
	fixedVars *ordered.Map[float64, int]
}

// NewModel returns an empty flat model.
func NewModel() *Model {
	return &Model{fixedVars: ordered.NewMap[float64, int]()}
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// Var returns the variable at index.
func (m *Model) Var(index int) Var { return m.vars[index] }

// AddVar appends a variable and returns its index.
func (m *Model) AddVar(lb, ub float64, typ problem.VarType) int {
	m.vars = append(m.vars, Var{LB: lb, UB: ub, Type: typ})
	return len(m.vars) - 1
}

// NumObjs returns the number of objectives.
func (m *Model) NumObjs() int { return len(m.objs) }

// Obj returns the objective at index.
func (m *Model) Obj(index int) *Objective { return &m.objs[index] }

// AddObj appends a linear objective. nonlinearResultVar is the result
// variable standing for the lowered nonlinear part, or -1.
func (m *Model) AddObj(sense nl.ObjSense, terms []Term, nonlinearResultVar int) int {
	if nonlinearResultVar >= 0 {
		terms = append(terms, Term{Var: nonlinearResultVar, Coef: 1})
	}
	m.objs = append(m.objs, Objective{Sense: sense, Terms: terms})
	return len(m.objs) - 1
}

// NumRows returns the number of linear constraint rows.
func (m *Model) NumRows() int { return len(m.rows) }

// Row returns the row at index.
func (m *Model) Row(index int) *Row { return &m.rows[index] }

// AddCon appends a linear constraint row. nonlinearResultVar is the
// result variable standing for the lowered nonlinear part, or -1.
func (m *Model) AddCon(lb, ub float64, terms []Term, nonlinearResultVar int) int {
	if nonlinearResultVar >= 0 {
		terms = append(terms, Term{Var: nonlinearResultVar, Coef: 1})
	}
	m.rows = append(m.rows, Row{LB: lb, UB: ub, Terms: terms})
	return len(m.rows) - 1
}

// NumCustomCons returns the number of custom constraints, removed ones
// included.
func (m *Model) NumCustomCons() int { return len(m.customCons) }

// CustomCon returns the custom constraint at index.
func (m *Model) CustomCon(index int) Constraint { return m.customCons[index] }

// AddCustomCon appends a custom constraint, taking ownership, and
// returns its index.
func (m *Model) AddCustomCon(con Constraint) int {
	if con == nil {
		log.Fatalf("AddCustomCon: nil constraint")
	}
	m.customCons = append(m.customCons, con)
	return len(m.customCons) - 1
}

// MakeFixedVar returns the variable pinned at [value, value],
// allocating it on first use.
func (m *Model) MakeFixedVar(value float64) int {
	if index, ok := m.fixedVars.Load(value); ok {
		return index
	}
	index := m.AddVar(value, value, problem.Continuous)
	m.fixedVars.Store(value, index)
	return index
}

// AffineBounds derives the bounds and type of a variable standing for
// an affine expression by interval arithmetic over the terms. The
// result is integer only if every referenced variable is integer and
// every coefficient and the constant are integral.
func (m *Model) AffineBounds(ae EExpr) (lb, ub float64, typ problem.VarType) {
	lb, ub = ae.ConstantTerm(), ae.ConstantTerm()
	typ = problem.Integer
	if math.Floor(ae.ConstantTerm()) != math.Ceil(ae.ConstantTerm()) {
		typ = problem.Continuous
	}
	for _, t := range ae.Terms() {
		if t.Coef == 0 {
			continue
		}
		v := m.vars[t.Var]
		if t.Coef >= 0 {
			lb += t.Coef * v.LB
			ub += t.Coef * v.UB
		} else {
			lb += t.Coef * v.UB
			ub += t.Coef * v.LB
		}
		if v.Type != problem.Integer || math.Floor(t.Coef) != math.Ceil(t.Coef) {
			typ = problem.Continuous
		}
	}
	return lb, ub, typ
}

// Classes returns the classes of live custom constraints, sorted.
func (m *Model) Classes() []string {
	seen := make(map[string]bool)
	for _, con := range m.customCons {
		if !con.Removed() {
			seen[con.Class()] = true
		}
	}
	classes := maps.Keys(seen)
	sort.Strings(classes)
	return classes
}

// Validate checks the structural integrity of the model and returns
// every defect found.
func (m *Model) Validate() error {
	var errs error
	for i, v := range m.vars {
		if v.LB > v.UB {
			errs = multierr.Append(errs, errors.Errorf(
				"variable %d: lower bound %g above upper bound %g", i, v.LB, v.UB))
		}
	}
	checkVar := func(what string, i, index int) {
		if index < 0 || index >= len(m.vars) {
			errs = multierr.Append(errs, errors.Errorf(
				"%s %d: variable %d out of range", what, i, index))
		}
	}
	for i, row := range m.rows {
		for _, t := range row.Terms {
			checkVar("row", i, t.Var)
		}
	}
	for i, obj := range m.objs {
		for _, t := range obj.Terms {
			checkVar("objective", i, t.Var)
		}
	}
	for i, con := range m.customCons {
		if con.Removed() {
			continue
		}
		switch con := con.(type) {
		case *LinearConstraint:
			for _, v := range con.Vars {
				checkVar("constraint", i, v)
			}
		case *LinearDefining:
			checkVar("constraint", i, con.R)
			for _, t := range con.Affine.Terms() {
				checkVar("constraint", i, t.Var)
			}
		case *Maximum:
			checkVar("constraint", i, con.R)
			for _, v := range con.Args {
				checkVar("constraint", i, v)
			}
		case *Minimum:
			checkVar("constraint", i, con.R)
			for _, v := range con.Args {
				checkVar("constraint", i, v)
			}
		case *NotEqual:
			checkVar("constraint", i, con.R)
			checkVar("constraint", i, con.V1)
			checkVar("constraint", i, con.V2)
		case *LessOrEqual:
			checkVar("constraint", i, con.R)
			checkVar("constraint", i, con.V1)
			checkVar("constraint", i, con.V2)
		case *Disjunction:
			checkVar("constraint", i, con.R)
			checkVar("constraint", i, con.V1)
			checkVar("constraint", i, con.V2)
		case *IndicatorLeq:
			checkVar("constraint", i, con.B)
			for _, v := range con.Vars {
				checkVar("constraint", i, v)
			}
		}
	}
	return errs
}
