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

// Term is one coefficient-variable product of an affine expression or
// a linear row.
type Term struct {
	Var  int
	Coef float64
}

// EExpr is the canonical result of lowering an expression: an affine
// expression, constant + sum of coefficient-variable products.
type EExpr struct {
	terms    []Term
	constant float64
}

// Constant returns an EExpr holding a constant.
func Constant(value float64) EExpr {
	return EExpr{constant: value}
}

// VarRef returns an EExpr holding a single variable.
func VarRef(index int) EExpr {
	return EExpr{terms: []Term{{Var: index, Coef: 1}}}
}

// AddTerm adds coef times the variable at index.
func (e *EExpr) AddTerm(index int, coef float64) {
	e.terms = append(e.terms, Term{Var: index, Coef: coef})
}

// AddConstant adds a constant.
func (e *EExpr) AddConstant(value float64) {
	e.constant += value
}

// Negate negates the expression in place.
func (e *EExpr) Negate() {
	e.constant = -e.constant
	for i := range e.terms {
		e.terms[i].Coef = -e.terms[i].Coef
	}
}

// Add adds another affine expression in place. Terms are concatenated,
// not merged: the result variable bound computation tolerates repeated
// variables.
func (e *EExpr) Add(other EExpr) {
	e.constant += other.constant
	e.terms = append(e.terms, other.terms...)
}

// ConstantTerm returns the constant part of the expression.
func (e *EExpr) ConstantTerm() float64 { return e.constant }

// Terms returns the coefficient-variable products of the expression.
func (e *EExpr) Terms() []Term { return e.terms }

// IsConstant returns true if the expression has no variable terms.
func (e *EExpr) IsConstant() bool { return len(e.terms) == 0 }

// IsVariable returns true if the expression is a plain reference to a
// single variable.
func (e *EExpr) IsVariable() bool {
	return e.constant == 0 && len(e.terms) == 1 && e.terms[0].Coef == 1
}

// RepresentingVariable returns the index of the variable the
// expression stands for. Valid only when IsVariable reports true.
func (e *EExpr) RepresentingVariable() int {
	return e.terms[0].Var
}
