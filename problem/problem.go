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

// Package problem provides a tree-shaped optimization problem built
// from .nl reader events.
//
// A Problem retains the model at the expression level: variables with
// bounds and types, objectives and algebraic constraints with linear
// and nonlinear parts, logical constraints, common expressions,
// complementarity conditions, initial values and suffixes. Visitor
// consumers walk the retained expressions; the flattening converter
// lowers them instead.
package problem

import (
	"math"

	"github.com/pkg/errors"

	"github.com/mpx-org/mpx/expr"
	"github.com/mpx-org/mpx/expr/exprkind"
	"github.com/mpx-org/mpx/nl"
)

// VarType is the type of a variable.
type VarType int

const (
	// Continuous variables take any value within their bounds.
	Continuous VarType = iota
	// Integer variables take integer values within their bounds.
	Integer
)

// Term is one term of a linear expression.
type Term struct {
	Var  int
	Coef float64
}

// Var is a decision variable.
type Var struct {
	LB   float64
	UB   float64
	Type VarType
}

// Objective is an optimization objective with a linear part and an
// optional nonlinear part.
type Objective struct {
	Sense nl.ObjSense
	Terms []Term
	// Expr is the nonlinear part, nil for linear objectives.
	Expr expr.NumericExpr
}

// AlgebraicCon is an algebraic constraint. Bounds follow the .nl
// conventions: equal bounds mean equality, one infinite bound a
// one-sided constraint, both infinite a free row, otherwise a range.
type AlgebraicCon struct {
	LB    float64
	UB    float64
	Terms []Term
	// Expr is the nonlinear part, nil for linear constraints.
	Expr expr.NumericExpr
}

// LogicalCon is a logical constraint asserting its expression.
type LogicalCon struct {
	Expr expr.LogicalExpr
}

// CommonExpr is a common expression (defined variable) with a linear
// and a nonlinear part. Position is the scope partition tag from the
// defined-variable segment.
type CommonExpr struct {
	Terms    []Term
	Expr     expr.NumericExpr
	Position int
}

// Complement is a complementarity condition between an algebraic
// constraint and a variable. Flags combines nl.ComplInfLB and
// nl.ComplInfUB.
type Complement struct {
	Con   int
	Var   int
	Flags int
}

// InitialValue is an initial primal or dual value.
type InitialValue struct {
	Index int
	Value float64
}

// Problem is a complete in-memory problem. It implements nl.Handler:
// reading an .nl file into a fresh Problem populates it.
type Problem struct {
	factory *expr.Factory
	header  nl.Header

	vars        []Var
	objs        []Objective
	cons        []AlgebraicCon
	logicalCons []LogicalCon
	commonExprs []CommonExpr
	complements []Complement

	initialValues     []InitialValue
	initialDualValues []InitialValue

	funcs    []*expr.Function
	suffixes [nl.SuffixNumKinds]SuffixSet
	colSizes []int
}

var _ nl.Handler = (*Problem)(nil)

// New returns an empty problem using a fresh expression factory.
func New() *Problem {
	return &Problem{factory: expr.NewFactory()}
}

// Factory returns the expression factory backing the problem.
func (p *Problem) Factory() *expr.Factory { return p.factory }

// Header returns the header the problem was built from.
func (p *Problem) Header() *nl.Header { return &p.header }

// NumVars returns the number of variables.
func (p *Problem) NumVars() int { return len(p.vars) }

// Var returns the variable at index.
func (p *Problem) Var(index int) *Var { return &p.vars[index] }

// NumObjs returns the number of objectives.
func (p *Problem) NumObjs() int { return len(p.objs) }

// Obj returns the objective at index.
func (p *Problem) Obj(index int) *Objective { return &p.objs[index] }

// NumAlgebraicCons returns the number of algebraic constraints.
func (p *Problem) NumAlgebraicCons() int { return len(p.cons) }

// AlgebraicCon returns the algebraic constraint at index.
func (p *Problem) AlgebraicCon(index int) *AlgebraicCon { return &p.cons[index] }

// NumLogicalCons returns the number of logical constraints.
func (p *Problem) NumLogicalCons() int { return len(p.logicalCons) }

// LogicalCon returns the logical constraint at index.
func (p *Problem) LogicalCon(index int) *LogicalCon { return &p.logicalCons[index] }

// NumCommonExprs returns the number of common expressions.
func (p *Problem) NumCommonExprs() int { return len(p.commonExprs) }

// CommonExpr returns the common expression at index.
func (p *Problem) CommonExpr(index int) *CommonExpr { return &p.commonExprs[index] }

// Complements returns the complementarity conditions in input order.
func (p *Problem) Complements() []Complement { return p.complements }

// InitialValues returns the initial primal values in input order.
func (p *Problem) InitialValues() []InitialValue { return p.initialValues }

// InitialDualValues returns the initial dual values in input order.
func (p *Problem) InitialDualValues() []InitialValue { return p.initialDualValues }

// Suffixes returns the suffixes attached to the given kind of item.
func (p *Problem) Suffixes(kind int) *SuffixSet {
	return &p.suffixes[kind&nl.SuffixKindMask]
}

// JacobianColumnSizes returns the Jacobian column sizes, when present.
func (p *Problem) JacobianColumnSizes() []int { return p.colSizes }

// varTypes assigns variable types following the .nl column order:
// nonlinear variables first with integer ones at the end of each of
// the three nonlinear groups, then linear continuous variables, then
// linear binary and linear integer variables at the very end.
func varTypes(h *nl.Header) []VarType {
	types := make([]VarType, h.NumVars)
	markTail := func(end, count int) {
		for i := end - count; i < end && i >= 0; i++ {
			if i < len(types) {
				types[i] = Integer
			}
		}
	}
	nlBoth := h.NumNLVarsInBoth
	if nlBoth < 0 {
		nlBoth = 0
	}
	nlCons := h.NumNLVarsInCons
	nlTotal := nlCons
	if extra := h.NumNLVarsInObjs - nlBoth; extra > 0 {
		nlTotal += extra
	}
	markTail(nlBoth, h.NumNLIntegerVarsInBoth)
	markTail(nlCons, h.NumNLIntegerVarsInCons)
	markTail(nlTotal, h.NumNLIntegerVarsInObjs)
	markTail(h.NumVars, h.NumLinearIntegerVars+h.NumLinearBinaryVars)
	return types
}

// BeginBuild allocates the problem items declared by the header.
// Variables start with infinite bounds.
func (p *Problem) BeginBuild(name string, header *nl.Header) error {
	p.header = *header
	infinity := math.Inf(1)
	types := varTypes(header)
	p.vars = make([]Var, header.NumVars)
	for i := range p.vars {
		p.vars[i] = Var{LB: -infinity, UB: infinity, Type: types[i]}
	}
	p.objs = make([]Objective, header.NumObjs)
	p.cons = make([]AlgebraicCon, header.NumAlgebraicCons)
	for i := range p.cons {
		p.cons[i] = AlgebraicCon{LB: -infinity, UB: infinity}
	}
	p.logicalCons = make([]LogicalCon, header.NumLogicalCons)
	p.commonExprs = make([]CommonExpr, header.NumCommonExprs())
	p.funcs = make([]*expr.Function, header.NumFuncs)
	for kind := range p.suffixes {
		p.suffixes[kind] = SuffixSet{}
	}
	return nil
}

// EndBuild reports the end of the input.
func (p *Problem) EndBuild() error { return nil }

// SetVarBounds sets the bounds of a variable.
func (p *Problem) SetVarBounds(index int, lb, ub float64) error {
	p.vars[index].LB = lb
	p.vars[index].UB = ub
	return nil
}

// SetConBounds sets the bounds of an algebraic constraint.
func (p *Problem) SetConBounds(index int, lb, ub float64) error {
	p.cons[index].LB = lb
	p.cons[index].UB = ub
	return nil
}

// SetComplement records a complementarity condition.
func (p *Problem) SetComplement(conIndex, varIndex, flags int) error {
	p.complements = append(p.complements, Complement{Con: conIndex, Var: varIndex, Flags: flags})
	return nil
}

// nonzeroExpr returns e unless it is the constant zero placeholder the
// writer emits for purely linear rows.
func nonzeroExpr(e expr.NumericExpr) expr.NumericExpr {
	if e == nil || expr.IsZero(e) {
		return nil
	}
	return e
}

// SetObj sets the sense and nonlinear part of an objective.
func (p *Problem) SetObj(index int, sense nl.ObjSense, e expr.NumericExpr) error {
	p.objs[index].Sense = sense
	p.objs[index].Expr = nonzeroExpr(e)
	return nil
}

// SetCon sets the nonlinear part of an algebraic constraint.
func (p *Problem) SetCon(index int, e expr.NumericExpr) error {
	p.cons[index].Expr = nonzeroExpr(e)
	return nil
}

// SetLogicalCon sets the expression of a logical constraint.
func (p *Problem) SetLogicalCon(index int, e expr.LogicalExpr) error {
	p.logicalCons[index].Expr = e
	return nil
}

// SetCommonExpr sets the nonlinear part of a common expression.
func (p *Problem) SetCommonExpr(index int, e expr.NumericExpr, position int) error {
	p.commonExprs[index].Expr = nonzeroExpr(e)
	p.commonExprs[index].Position = position
	return nil
}

type termBuilder struct {
	terms *[]Term
}

func (tb termBuilder) AddTerm(varIndex int, coef float64) error {
	*tb.terms = append(*tb.terms, Term{Var: varIndex, Coef: coef})
	return nil
}

// LinearObjTerms returns a builder for the linear terms of an objective.
func (p *Problem) LinearObjTerms(objIndex, numTerms int) (nl.TermBuilder, error) {
	p.objs[objIndex].Terms = make([]Term, 0, numTerms)
	return termBuilder{terms: &p.objs[objIndex].Terms}, nil
}

// LinearConTerms returns a builder for the linear terms of a constraint.
func (p *Problem) LinearConTerms(conIndex, numTerms int) (nl.TermBuilder, error) {
	p.cons[conIndex].Terms = make([]Term, 0, numTerms)
	return termBuilder{terms: &p.cons[conIndex].Terms}, nil
}

// LinearCommonExprTerms returns a builder for the linear part of a
// common expression.
func (p *Problem) LinearCommonExprTerms(index, numTerms int) (nl.TermBuilder, error) {
	p.commonExprs[index].Terms = make([]Term, 0, numTerms)
	return termBuilder{terms: &p.commonExprs[index].Terms}, nil
}

// SetInitialValue records an initial primal value.
func (p *Problem) SetInitialValue(varIndex int, value float64) error {
	p.initialValues = append(p.initialValues, InitialValue{Index: varIndex, Value: value})
	return nil
}

// SetInitialDualValue records an initial dual value.
func (p *Problem) SetInitialDualValue(conIndex int, value float64) error {
	p.initialDualValues = append(p.initialDualValues, InitialValue{Index: conIndex, Value: value})
	return nil
}

type columnSizeBuilder struct {
	sizes *[]int
}

func (cb columnSizeBuilder) Add(size int) error {
	*cb.sizes = append(*cb.sizes, size)
	return nil
}

// ColumnSizes returns a builder receiving Jacobian column sizes.
func (p *Problem) ColumnSizes() (nl.ColumnSizeBuilder, error) {
	p.colSizes = p.colSizes[:0]
	return columnSizeBuilder{sizes: &p.colSizes}, nil
}

// SetFunction declares the function at index.
func (p *Problem) SetFunction(index int, name string, numArgs int, ftype expr.FuncType) error {
	p.funcs[index] = p.factory.AddFunction(name, numArgs, ftype)
	return nil
}

// AddSuffix starts a suffix block of the given kind.
func (p *Problem) AddSuffix(kind, numValues int, name string) (nl.SuffixBuilder, error) {
	itemCount := 1
	switch kind & nl.SuffixKindMask {
	case nl.SuffixVar:
		itemCount = p.header.NumVars
	case nl.SuffixCon:
		itemCount = p.header.NumAlgebraicCons
	case nl.SuffixObj:
		itemCount = p.header.NumObjs
	}
	return p.suffixes[kind&nl.SuffixKindMask].add(kind, itemCount, name)
}

// ----------------------------------------------------------------------------
// Expression factory hooks.

// MakeNumericConstant returns a numeric constant node.
func (p *Problem) MakeNumericConstant(value float64) (expr.NumericExpr, error) {
	return p.factory.MakeNumericConstant(value), nil
}

// MakeVariable returns a reference to a variable.
func (p *Problem) MakeVariable(index int) (expr.NumericExpr, error) {
	return p.factory.MakeVariable(index), nil
}

// MakeCommonExprRef returns a reference to a common expression.
func (p *Problem) MakeCommonExprRef(index int) (expr.NumericExpr, error) {
	return p.factory.MakeCommonExprRef(index), nil
}

// MakeUnary returns a unary expression.
func (p *Problem) MakeUnary(kind exprkind.Kind, arg expr.NumericExpr) (expr.NumericExpr, error) {
	return p.factory.MakeUnary(kind, arg), nil
}

// MakeBinary returns a binary expression.
func (p *Problem) MakeBinary(kind exprkind.Kind, lhs, rhs expr.NumericExpr) (expr.NumericExpr, error) {
	return p.factory.MakeBinary(kind, lhs, rhs), nil
}

// MakeIf returns an if-then-else expression.
func (p *Problem) MakeIf(condition expr.LogicalExpr, trueExpr, falseExpr expr.NumericExpr) (expr.NumericExpr, error) {
	return p.factory.MakeIf(condition, trueExpr, falseExpr), nil
}

type plTermBuilder struct {
	b *expr.PLTermBuilder
}

func (pb plTermBuilder) AddSlope(slope float64) error {
	pb.b.AddSlope(slope)
	return nil
}

func (pb plTermBuilder) AddBreakpoint(breakpoint float64) error {
	pb.b.AddBreakpoint(breakpoint)
	return nil
}

// BeginPLTerm starts a piecewise-linear term.
func (p *Problem) BeginPLTerm(numBreakpoints int) (nl.PLTermBuilder, error) {
	return plTermBuilder{b: p.factory.BeginPLTerm(numBreakpoints)}, nil
}

// EndPLTerm completes a piecewise-linear term over a variable.
func (p *Problem) EndPLTerm(b nl.PLTermBuilder, arg expr.NumericExpr) (expr.NumericExpr, error) {
	v, ok := arg.(*expr.Variable)
	if !ok {
		return nil, errors.Errorf("piecewise-linear term applied to %s", arg.Kind())
	}
	return p.factory.EndPLTerm(b.(plTermBuilder).b, v), nil
}

type callArgBuilder struct {
	b *expr.CallExprBuilder
}

func (cb callArgBuilder) AddArg(arg expr.Expr) error {
	cb.b.AddArg(arg)
	return nil
}

// BeginCall starts a call of the function declared at funcIndex.
func (p *Problem) BeginCall(funcIndex, numArgs int) (nl.CallArgBuilder, error) {
	fn := p.funcs[funcIndex]
	if fn == nil {
		return nil, errors.Errorf("function %d is not defined", funcIndex)
	}
	if fn.NumArgs() >= 0 && fn.NumArgs() != numArgs {
		return nil, errors.Errorf(
			"function %s expects %d arguments, got %d", fn.Name(), fn.NumArgs(), numArgs)
	}
	return callArgBuilder{b: p.factory.BeginCall(fn, numArgs)}, nil
}

// EndCall completes a call expression.
func (p *Problem) EndCall(b nl.CallArgBuilder) (expr.NumericExpr, error) {
	return p.factory.EndCall(b.(callArgBuilder).b), nil
}

type numericArgBuilder struct {
	b *expr.IteratedExprBuilder
}

func (nb numericArgBuilder) AddArg(arg expr.NumericExpr) error {
	nb.b.AddArg(arg)
	return nil
}

// BeginVarArg starts a min or max expression.
func (p *Problem) BeginVarArg(kind exprkind.Kind, numArgs int) (nl.NumericArgBuilder, error) {
	return numericArgBuilder{b: p.factory.BeginIterated(kind, numArgs)}, nil
}

// EndVarArg completes a min or max expression.
func (p *Problem) EndVarArg(b nl.NumericArgBuilder) (expr.NumericExpr, error) {
	return p.factory.EndIterated(b.(numericArgBuilder).b), nil
}

// BeginSum starts a sum expression.
func (p *Problem) BeginSum(numArgs int) (nl.NumericArgBuilder, error) {
	return numericArgBuilder{b: p.factory.BeginIterated(exprkind.Sum, numArgs)}, nil
}

// EndSum completes a sum expression.
func (p *Problem) EndSum(b nl.NumericArgBuilder) (expr.NumericExpr, error) {
	return p.factory.EndIterated(b.(numericArgBuilder).b), nil
}

type countArgBuilder struct {
	b *expr.CountExprBuilder
}

func (cb countArgBuilder) AddArg(arg expr.LogicalExpr) error {
	cb.b.AddArg(arg)
	return nil
}

// BeginCount starts a count expression.
func (p *Problem) BeginCount(numArgs int) (nl.LogicalArgBuilder, error) {
	return countArgBuilder{b: p.factory.BeginCount(numArgs)}, nil
}

// EndCount completes a count expression.
func (p *Problem) EndCount(b nl.LogicalArgBuilder) (expr.NumericExpr, error) {
	return p.factory.EndCount(b.(countArgBuilder).b), nil
}

// BeginNumberOf starts a numberof expression searching for value.
func (p *Problem) BeginNumberOf(numArgs int, value expr.NumericExpr) (nl.NumericArgBuilder, error) {
	return numericArgBuilder{b: p.factory.BeginNumberOf(numArgs, value)}, nil
}

// EndNumberOf completes a numberof expression.
func (p *Problem) EndNumberOf(b nl.NumericArgBuilder) (expr.NumericExpr, error) {
	return p.factory.EndIterated(b.(numericArgBuilder).b), nil
}

// MakeLogicalConstant returns a logical constant node.
func (p *Problem) MakeLogicalConstant(value bool) (expr.LogicalExpr, error) {
	return p.factory.MakeLogicalConstant(value), nil
}

// MakeNot returns a negation.
func (p *Problem) MakeNot(arg expr.LogicalExpr) (expr.LogicalExpr, error) {
	return p.factory.MakeNot(arg), nil
}

// MakeBinaryLogical returns a binary logical expression.
func (p *Problem) MakeBinaryLogical(kind exprkind.Kind, lhs, rhs expr.LogicalExpr) (expr.LogicalExpr, error) {
	return p.factory.MakeBinaryLogical(kind, lhs, rhs), nil
}

// MakeRelational returns a relational expression.
func (p *Problem) MakeRelational(kind exprkind.Kind, lhs, rhs expr.NumericExpr) (expr.LogicalExpr, error) {
	return p.factory.MakeRelational(kind, lhs, rhs), nil
}

// MakeLogicalCount returns a logical count expression.
func (p *Problem) MakeLogicalCount(kind exprkind.Kind, lhs expr.NumericExpr, count expr.NumericExpr) (expr.LogicalExpr, error) {
	c, ok := count.(*expr.CountExpr)
	if !ok {
		return nil, errors.Errorf("logical count applied to %s", count.Kind())
	}
	return p.factory.MakeLogicalCount(kind, lhs, c), nil
}

// MakeImplication returns an implication expression.
func (p *Problem) MakeImplication(condition, trueExpr, falseExpr expr.LogicalExpr) (expr.LogicalExpr, error) {
	return p.factory.MakeImplication(condition, trueExpr, falseExpr), nil
}

type logicalArgBuilder struct {
	b *expr.IteratedLogicalExprBuilder
}

func (lb logicalArgBuilder) AddArg(arg expr.LogicalExpr) error {
	lb.b.AddArg(arg)
	return nil
}

// BeginIteratedLogical starts an exists or forall expression.
func (p *Problem) BeginIteratedLogical(kind exprkind.Kind, numArgs int) (nl.LogicalArgBuilder, error) {
	return logicalArgBuilder{b: p.factory.BeginIteratedLogical(kind, numArgs)}, nil
}

// EndIteratedLogical completes an exists or forall expression.
func (p *Problem) EndIteratedLogical(b nl.LogicalArgBuilder) (expr.LogicalExpr, error) {
	return p.factory.EndIteratedLogical(b.(logicalArgBuilder).b), nil
}

type pairwiseArgBuilder struct {
	b *expr.PairwiseExprBuilder
}

func (pb pairwiseArgBuilder) AddArg(arg expr.NumericExpr) error {
	pb.b.AddArg(arg)
	return nil
}

// BeginPairwise starts an alldiff or !alldiff expression.
func (p *Problem) BeginPairwise(kind exprkind.Kind, numArgs int) (nl.NumericArgBuilder, error) {
	return pairwiseArgBuilder{b: p.factory.BeginPairwise(kind, numArgs)}, nil
}

// EndPairwise completes an alldiff or !alldiff expression.
func (p *Problem) EndPairwise(b nl.NumericArgBuilder) (expr.LogicalExpr, error) {
	return p.factory.EndPairwise(b.(pairwiseArgBuilder).b), nil
}

// MakeStringLiteral returns a string literal node.
func (p *Problem) MakeStringLiteral(value string) (expr.Expr, error) {
	return p.factory.MakeStringLiteral(value), nil
}

// MakeSymbolicIf returns a symbolic if-then-else expression.
func (p *Problem) MakeSymbolicIf(condition expr.LogicalExpr, trueExpr, falseExpr expr.Expr) (expr.Expr, error) {
	return p.factory.MakeSymbolicIf(condition, trueExpr, falseExpr), nil
}
