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

package nl

import (
	"github.com/mpx-org/mpx/expr"
	"github.com/mpx-org/mpx/expr/exprkind"
)

// ObjSense is the sense of an objective.
type ObjSense int

const (
	// ObjMin is a minimization objective.
	ObjMin ObjSense = iota
	// ObjMax is a maximization objective.
	ObjMax
)

// String returns "minimize" or "maximize".
func (s ObjSense) String() string {
	if s == ObjMax {
		return "maximize"
	}
	return "minimize"
}

// Suffix kinds and flags.
const (
	// SuffixVar applies to variables.
	SuffixVar = 0
	// SuffixCon applies to algebraic constraints.
	SuffixCon = 1
	// SuffixObj applies to objectives.
	SuffixObj = 2
	// SuffixProblem applies to the whole problem.
	SuffixProblem = 3
	// SuffixNumKinds is the number of suffix kinds.
	SuffixNumKinds = 4
	// SuffixKindMask extracts the kind from a suffix descriptor.
	SuffixKindMask = 3
	// SuffixFloat marks floating-point suffix values.
	SuffixFloat = 4
	// SuffixIODecl tells AMPL to make this an INOUT suffix.
	SuffixIODecl = 8
	// SuffixOutput marks values returned to AMPL.
	SuffixOutput = 16
	// SuffixInput marks values received from AMPL.
	SuffixInput = 32
	// SuffixOutOnly rejects the suffix as an input value.
	SuffixOutOnly = 64
)

// Complementarity flags: which bound of the complemented variable is
// infinite.
const (
	ComplInfLB = 1
	ComplInfUB = 2
)

type (
	// TermBuilder receives the terms of a linear expression.
	TermBuilder interface {
		AddTerm(varIndex int, coef float64) error
	}

	// ColumnSizeBuilder receives Jacobian column sizes.
	ColumnSizeBuilder interface {
		Add(size int) error
	}

	// SuffixBuilder receives the values of one suffix block.
	SuffixBuilder interface {
		SetIntValue(index, value int) error
		SetDblValue(index int, value float64) error
	}

	// NumericArgBuilder receives the arguments of an iterated numeric
	// expression.
	NumericArgBuilder interface {
		AddArg(arg expr.NumericExpr) error
	}

	// LogicalArgBuilder receives the arguments of a count or iterated
	// logical expression.
	LogicalArgBuilder interface {
		AddArg(arg expr.LogicalExpr) error
	}

	// CallArgBuilder receives the mixed numeric and string arguments
	// of a function call.
	CallArgBuilder interface {
		AddArg(arg expr.Expr) error
	}

	// PLTermBuilder receives the slopes and breakpoints of a
	// piecewise-linear term in interleaved order.
	PLTermBuilder interface {
		AddSlope(slope float64) error
		AddBreakpoint(breakpoint float64) error
	}
)

// Handler is the sink the reader dispatches build events to. Events
// arrive in the order the reader encounters them in the input. Any
// error returned from a hook aborts the read and propagates to the
// caller unchanged; a handler that cannot accept a valid construct
// returns an UnsupportedError.
//
// NullHandler accepts the BeginBuild/EndBuild bracket and rejects every
// other hook; embed it and override the hooks of interest.
type Handler interface {
	// BeginBuild starts receiving events for the problem described by
	// the header.
	BeginBuild(name string, header *Header) error
	// EndBuild reports that the input was fully consumed.
	EndBuild() error

	SetVarBounds(index int, lb, ub float64) error
	SetConBounds(index int, lb, ub float64) error
	// SetComplement associates algebraic constraint conIndex with
	// variable varIndex; flags is a combination of ComplInfLB and
	// ComplInfUB.
	SetComplement(conIndex, varIndex, flags int) error

	SetObj(index int, sense ObjSense, e expr.NumericExpr) error
	SetCon(index int, e expr.NumericExpr) error
	SetLogicalCon(index int, e expr.LogicalExpr) error
	// SetCommonExpr defines common expression index; position is the
	// scope partition tag from the defined-variable segment.
	SetCommonExpr(index int, e expr.NumericExpr, position int) error

	LinearObjTerms(objIndex, numTerms int) (TermBuilder, error)
	LinearConTerms(conIndex, numTerms int) (TermBuilder, error)
	LinearCommonExprTerms(index, numTerms int) (TermBuilder, error)

	SetInitialValue(varIndex int, value float64) error
	SetInitialDualValue(conIndex int, value float64) error

	ColumnSizes() (ColumnSizeBuilder, error)
	SetFunction(index int, name string, numArgs int, ftype expr.FuncType) error
	AddSuffix(kind, numValues int, name string) (SuffixBuilder, error)

	// Expression factory hooks.
	MakeNumericConstant(value float64) (expr.NumericExpr, error)
	MakeVariable(index int) (expr.NumericExpr, error)
	MakeCommonExprRef(index int) (expr.NumericExpr, error)
	MakeUnary(kind exprkind.Kind, arg expr.NumericExpr) (expr.NumericExpr, error)
	MakeBinary(kind exprkind.Kind, lhs, rhs expr.NumericExpr) (expr.NumericExpr, error)
	MakeIf(condition expr.LogicalExpr, trueExpr, falseExpr expr.NumericExpr) (expr.NumericExpr, error)

	BeginPLTerm(numBreakpoints int) (PLTermBuilder, error)
	EndPLTerm(b PLTermBuilder, arg expr.NumericExpr) (expr.NumericExpr, error)

	BeginCall(funcIndex, numArgs int) (CallArgBuilder, error)
	EndCall(b CallArgBuilder) (expr.NumericExpr, error)

	BeginVarArg(kind exprkind.Kind, numArgs int) (NumericArgBuilder, error)
	EndVarArg(b NumericArgBuilder) (expr.NumericExpr, error)
	BeginSum(numArgs int) (NumericArgBuilder, error)
	EndSum(b NumericArgBuilder) (expr.NumericExpr, error)
	BeginCount(numArgs int) (LogicalArgBuilder, error)
	EndCount(b LogicalArgBuilder) (expr.NumericExpr, error)
	BeginNumberOf(numArgs int, value expr.NumericExpr) (NumericArgBuilder, error)
	EndNumberOf(b NumericArgBuilder) (expr.NumericExpr, error)

	MakeLogicalConstant(value bool) (expr.LogicalExpr, error)
	MakeNot(arg expr.LogicalExpr) (expr.LogicalExpr, error)
	MakeBinaryLogical(kind exprkind.Kind, lhs, rhs expr.LogicalExpr) (expr.LogicalExpr, error)
	MakeRelational(kind exprkind.Kind, lhs, rhs expr.NumericExpr) (expr.LogicalExpr, error)
	MakeLogicalCount(kind exprkind.Kind, lhs expr.NumericExpr, count expr.NumericExpr) (expr.LogicalExpr, error)
	MakeImplication(condition, trueExpr, falseExpr expr.LogicalExpr) (expr.LogicalExpr, error)

	BeginIteratedLogical(kind exprkind.Kind, numArgs int) (LogicalArgBuilder, error)
	EndIteratedLogical(b LogicalArgBuilder) (expr.LogicalExpr, error)
	BeginPairwise(kind exprkind.Kind, numArgs int) (NumericArgBuilder, error)
	EndPairwise(b NumericArgBuilder) (expr.LogicalExpr, error)

	MakeStringLiteral(value string) (expr.Expr, error)
	MakeSymbolicIf(condition expr.LogicalExpr, trueExpr, falseExpr expr.Expr) (expr.Expr, error)
}

// NullHandler rejects every event other than BeginBuild and EndBuild
// with an UnsupportedError naming the construct. Builders interested only in a subset of the input embed it
// and override the hooks they support.
type NullHandler struct{}

var _ Handler = NullHandler{}

func unsupported(construct string) error {
	return &UnsupportedError{Construct: construct}
}

// BeginBuild accepts the header.
func (NullHandler) BeginBuild(name string, header *Header) error { return nil }

// EndBuild accepts the end of the input.
func (NullHandler) EndBuild() error { return nil }

func (NullHandler) SetVarBounds(index int, lb, ub float64) error {
	return unsupported("variable bound")
}

func (NullHandler) SetConBounds(index int, lb, ub float64) error {
	return unsupported("constraint bound")
}

func (NullHandler) SetComplement(conIndex, varIndex, flags int) error {
	return unsupported("complementarity constraint")
}

func (NullHandler) SetObj(index int, sense ObjSense, e expr.NumericExpr) error {
	return unsupported("objective")
}

func (NullHandler) SetCon(index int, e expr.NumericExpr) error {
	return unsupported("nonlinear constraint")
}

func (NullHandler) SetLogicalCon(index int, e expr.LogicalExpr) error {
	return unsupported("logical constraint")
}

func (NullHandler) SetCommonExpr(index int, e expr.NumericExpr, position int) error {
	return unsupported("nonlinear defined variable")
}

func (NullHandler) LinearObjTerms(objIndex, numTerms int) (TermBuilder, error) {
	return nil, unsupported("linear objective")
}

func (NullHandler) LinearConTerms(conIndex, numTerms int) (TermBuilder, error) {
	return nil, unsupported("linear constraint")
}

func (NullHandler) LinearCommonExprTerms(index, numTerms int) (TermBuilder, error) {
	return nil, unsupported("linear defined variable")
}

func (NullHandler) SetInitialValue(varIndex int, value float64) error {
	return unsupported("initial value")
}

func (NullHandler) SetInitialDualValue(conIndex int, value float64) error {
	return unsupported("initial dual value")
}

func (NullHandler) ColumnSizes() (ColumnSizeBuilder, error) {
	return nil, unsupported("Jacobian column size")
}

func (NullHandler) SetFunction(index int, name string, numArgs int, ftype expr.FuncType) error {
	return unsupported("function")
}

func (NullHandler) AddSuffix(kind, numValues int, name string) (SuffixBuilder, error) {
	return nil, unsupported("suffix")
}

func (NullHandler) MakeNumericConstant(value float64) (expr.NumericExpr, error) {
	return nil, unsupported("numeric constant in nonlinear expression")
}

func (NullHandler) MakeVariable(index int) (expr.NumericExpr, error) {
	return nil, unsupported("variable in nonlinear expression")
}

func (NullHandler) MakeCommonExprRef(index int) (expr.NumericExpr, error) {
	return nil, unsupported("common expression reference")
}

func (NullHandler) MakeUnary(kind exprkind.Kind, arg expr.NumericExpr) (expr.NumericExpr, error) {
	return nil, unsupported("unary expression")
}

func (NullHandler) MakeBinary(kind exprkind.Kind, lhs, rhs expr.NumericExpr) (expr.NumericExpr, error) {
	return nil, unsupported("binary expression")
}

func (NullHandler) MakeIf(condition expr.LogicalExpr, trueExpr, falseExpr expr.NumericExpr) (expr.NumericExpr, error) {
	return nil, unsupported("if expression")
}

func (NullHandler) BeginPLTerm(numBreakpoints int) (PLTermBuilder, error) {
	return nil, unsupported("piecewise-linear term")
}

func (NullHandler) EndPLTerm(b PLTermBuilder, arg expr.NumericExpr) (expr.NumericExpr, error) {
	return nil, unsupported("piecewise-linear term")
}

func (NullHandler) BeginCall(funcIndex, numArgs int) (CallArgBuilder, error) {
	return nil, unsupported("function call")
}

func (NullHandler) EndCall(b CallArgBuilder) (expr.NumericExpr, error) {
	return nil, unsupported("function call")
}

func (NullHandler) BeginVarArg(kind exprkind.Kind, numArgs int) (NumericArgBuilder, error) {
	return nil, unsupported("vararg expression")
}

func (NullHandler) EndVarArg(b NumericArgBuilder) (expr.NumericExpr, error) {
	return nil, unsupported("vararg expression")
}

func (NullHandler) BeginSum(numArgs int) (NumericArgBuilder, error) {
	return nil, unsupported("sum")
}

func (NullHandler) EndSum(b NumericArgBuilder) (expr.NumericExpr, error) {
	return nil, unsupported("sum")
}

func (NullHandler) BeginCount(numArgs int) (LogicalArgBuilder, error) {
	return nil, unsupported("count expression")
}

func (NullHandler) EndCount(b LogicalArgBuilder) (expr.NumericExpr, error) {
	return nil, unsupported("count expression")
}

func (NullHandler) BeginNumberOf(numArgs int, value expr.NumericExpr) (NumericArgBuilder, error) {
	return nil, unsupported("numberof expression")
}

func (NullHandler) EndNumberOf(b NumericArgBuilder) (expr.NumericExpr, error) {
	return nil, unsupported("numberof expression")
}

func (NullHandler) MakeLogicalConstant(value bool) (expr.LogicalExpr, error) {
	return nil, unsupported("logical constant")
}

func (NullHandler) MakeNot(arg expr.LogicalExpr) (expr.LogicalExpr, error) {
	return nil, unsupported("logical not")
}

func (NullHandler) MakeBinaryLogical(kind exprkind.Kind, lhs, rhs expr.LogicalExpr) (expr.LogicalExpr, error) {
	return nil, unsupported("binary logical expression")
}

func (NullHandler) MakeRelational(kind exprkind.Kind, lhs, rhs expr.NumericExpr) (expr.LogicalExpr, error) {
	return nil, unsupported("relational expression")
}

func (NullHandler) MakeLogicalCount(kind exprkind.Kind, lhs expr.NumericExpr, count expr.NumericExpr) (expr.LogicalExpr, error) {
	return nil, unsupported("logical count expression")
}

func (NullHandler) MakeImplication(condition, trueExpr, falseExpr expr.LogicalExpr) (expr.LogicalExpr, error) {
	return nil, unsupported("implication expression")
}

func (NullHandler) BeginIteratedLogical(kind exprkind.Kind, numArgs int) (LogicalArgBuilder, error) {
	return nil, unsupported("iterated logical expression")
}

func (NullHandler) EndIteratedLogical(b LogicalArgBuilder) (expr.LogicalExpr, error) {
	return nil, unsupported("iterated logical expression")
}

func (NullHandler) BeginPairwise(kind exprkind.Kind, numArgs int) (NumericArgBuilder, error) {
	return nil, unsupported("pairwise expression")
}

func (NullHandler) EndPairwise(b NumericArgBuilder) (expr.LogicalExpr, error) {
	return nil, unsupported("pairwise expression")
}

func (NullHandler) MakeStringLiteral(value string) (expr.Expr, error) {
	return nil, unsupported("string literal")
}

func (NullHandler) MakeSymbolicIf(condition expr.LogicalExpr, trueExpr, falseExpr expr.Expr) (expr.Expr, error) {
	return nil, unsupported("symbolic if expression")
}
