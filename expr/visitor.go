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

package expr

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mpx-org/mpx/expr/exprkind"
)

// Visitor visits expressions by kind. Numeric hooks return R, logical
// hooks return L. Embed VisitorBase and override only the hooks for the
// kinds handled: the dispatchers VisitNumeric and VisitLogical reroute
// every unhandled kind to VisitUnhandledNumeric or
// VisitUnhandledLogical, whose default behavior is to fail with an
// UnsupportedExprError naming the kind.
//
// Dispatch is strictly depth-first and left-to-right over child arrays;
// the dispatcher holds no state between calls.
type Visitor[R, L any] interface {
	VisitNumericConstant(e *NumericConstant) (R, error)
	VisitVariable(e *Variable) (R, error)
	VisitCommonExprRef(e *CommonExprRef) (R, error)

	// Unary expressions.
	VisitMinus(e *UnaryExpr) (R, error)
	VisitAbs(e *UnaryExpr) (R, error)
	VisitFloor(e *UnaryExpr) (R, error)
	VisitCeil(e *UnaryExpr) (R, error)
	VisitSqrt(e *UnaryExpr) (R, error)
	VisitPow2(e *UnaryExpr) (R, error)
	VisitExp(e *UnaryExpr) (R, error)
	VisitLog(e *UnaryExpr) (R, error)
	VisitLog10(e *UnaryExpr) (R, error)
	VisitSin(e *UnaryExpr) (R, error)
	VisitSinh(e *UnaryExpr) (R, error)
	VisitCos(e *UnaryExpr) (R, error)
	VisitCosh(e *UnaryExpr) (R, error)
	VisitTan(e *UnaryExpr) (R, error)
	VisitTanh(e *UnaryExpr) (R, error)
	VisitAsin(e *UnaryExpr) (R, error)
	VisitAsinh(e *UnaryExpr) (R, error)
	VisitAcos(e *UnaryExpr) (R, error)
	VisitAcosh(e *UnaryExpr) (R, error)
	VisitAtan(e *UnaryExpr) (R, error)
	VisitAtanh(e *UnaryExpr) (R, error)

	// Binary expressions.
	VisitAdd(e *BinaryExpr) (R, error)
	VisitSub(e *BinaryExpr) (R, error)
	VisitLess(e *BinaryExpr) (R, error)
	VisitMul(e *BinaryExpr) (R, error)
	VisitDiv(e *BinaryExpr) (R, error)
	VisitIntDiv(e *BinaryExpr) (R, error)
	VisitMod(e *BinaryExpr) (R, error)
	VisitPow(e *BinaryExpr) (R, error)
	VisitPowConstBase(e *BinaryExpr) (R, error)
	VisitPowConstExp(e *BinaryExpr) (R, error)
	VisitAtan2(e *BinaryExpr) (R, error)
	VisitPrecision(e *BinaryExpr) (R, error)
	VisitRound(e *BinaryExpr) (R, error)
	VisitTrunc(e *BinaryExpr) (R, error)

	VisitIf(e *IfExpr) (R, error)
	VisitPLTerm(e *PLTerm) (R, error)
	VisitCall(e *CallExpr) (R, error)
	VisitMin(e *IteratedExpr) (R, error)
	VisitMax(e *IteratedExpr) (R, error)
	VisitSum(e *IteratedExpr) (R, error)
	VisitNumberOf(e *IteratedExpr) (R, error)
	VisitCount(e *CountExpr) (R, error)

	VisitLogicalConstant(e *LogicalConstant) (L, error)
	VisitNot(e *NotExpr) (L, error)

	// Binary logical expressions.
	VisitOr(e *BinaryLogicalExpr) (L, error)
	VisitAnd(e *BinaryLogicalExpr) (L, error)
	VisitIff(e *BinaryLogicalExpr) (L, error)

	// Relational expressions.
	VisitLT(e *RelationalExpr) (L, error)
	VisitLE(e *RelationalExpr) (L, error)
	VisitEQ(e *RelationalExpr) (L, error)
	VisitGE(e *RelationalExpr) (L, error)
	VisitGT(e *RelationalExpr) (L, error)
	VisitNE(e *RelationalExpr) (L, error)

	// Logical count expressions.
	VisitAtLeast(e *LogicalCountExpr) (L, error)
	VisitAtMost(e *LogicalCountExpr) (L, error)
	VisitExactly(e *LogicalCountExpr) (L, error)
	VisitNotAtLeast(e *LogicalCountExpr) (L, error)
	VisitNotAtMost(e *LogicalCountExpr) (L, error)
	VisitNotExactly(e *LogicalCountExpr) (L, error)

	VisitImplication(e *ImplicationExpr) (L, error)
	VisitExists(e *IteratedLogicalExpr) (L, error)
	VisitForAll(e *IteratedLogicalExpr) (L, error)
	VisitAllDiff(e *PairwiseExpr) (L, error)
	VisitNotAllDiff(e *PairwiseExpr) (L, error)

	// VisitUnhandledNumeric is called for every numeric kind whose hook
	// is not overridden.
	VisitUnhandledNumeric(e NumericExpr) (R, error)
	// VisitUnhandledLogical is called for every logical kind whose hook
	// is not overridden.
	VisitUnhandledLogical(e LogicalExpr) (L, error)
}

// UnsupportedExprError reports an expression kind a visitor declared it
// cannot handle.
type UnsupportedExprError struct {
	Kind exprkind.Kind
}

// Error returns the name of the unsupported construct.
func (e *UnsupportedExprError) Error() string {
	return fmt.Sprintf("unsupported expression: %s", e.Kind)
}

// unhandledError signals that the default hook of a kind ran. The
// dispatcher intercepts it and reroutes to the fallback hook.
type unhandledError struct {
	e Expr
}

func (e *unhandledError) Error() string {
	return fmt.Sprintf("unhandled expression: %s", e.e.Kind())
}

func unhandled[T any](e Expr) (T, error) {
	var zero T
	return zero, &unhandledError{e: e}
}

// VisitNumeric routes e to the hook of v matching the expression kind.
func VisitNumeric[R, L any](v Visitor[R, L], e NumericExpr) (R, error) {
	r, err := dispatchNumeric(v, e)
	if u, ok := err.(*unhandledError); ok && u.e == e {
		return v.VisitUnhandledNumeric(e)
	}
	return r, err
}

// VisitLogical routes e to the hook of v matching the expression kind.
func VisitLogical[R, L any](v Visitor[R, L], e LogicalExpr) (L, error) {
	l, err := dispatchLogical(v, e)
	if u, ok := err.(*unhandledError); ok && u.e == e {
		return v.VisitUnhandledLogical(e)
	}
	return l, err
}

func dispatchNumeric[R, L any](v Visitor[R, L], e NumericExpr) (R, error) {
	switch e := e.(type) {
	case *NumericConstant:
		return v.VisitNumericConstant(e)
	case *Variable:
		return v.VisitVariable(e)
	case *CommonExprRef:
		return v.VisitCommonExprRef(e)
	case *UnaryExpr:
		return dispatchUnary(v, e)
	case *BinaryExpr:
		return dispatchBinary(v, e)
	case *IfExpr:
		return v.VisitIf(e)
	case *PLTerm:
		return v.VisitPLTerm(e)
	case *CallExpr:
		return v.VisitCall(e)
	case *IteratedExpr:
		switch e.kind {
		case exprkind.Min:
			return v.VisitMin(e)
		case exprkind.Max:
			return v.VisitMax(e)
		case exprkind.Sum:
			return v.VisitSum(e)
		case exprkind.NumberOf:
			return v.VisitNumberOf(e)
		}
	case *CountExpr:
		return v.VisitCount(e)
	}
	var zero R
	return zero, errors.Errorf("cannot visit expression of type %T", e)
}

func dispatchUnary[R, L any](v Visitor[R, L], e *UnaryExpr) (R, error) {
	switch e.kind {
	case exprkind.Minus:
		return v.VisitMinus(e)
	case exprkind.Abs:
		return v.VisitAbs(e)
	case exprkind.Floor:
		return v.VisitFloor(e)
	case exprkind.Ceil:
		return v.VisitCeil(e)
	case exprkind.Sqrt:
		return v.VisitSqrt(e)
	case exprkind.Pow2:
		return v.VisitPow2(e)
	case exprkind.Exp:
		return v.VisitExp(e)
	case exprkind.Log:
		return v.VisitLog(e)
	case exprkind.Log10:
		return v.VisitLog10(e)
	case exprkind.Sin:
		return v.VisitSin(e)
	case exprkind.Sinh:
		return v.VisitSinh(e)
	case exprkind.Cos:
		return v.VisitCos(e)
	case exprkind.Cosh:
		return v.VisitCosh(e)
	case exprkind.Tan:
		return v.VisitTan(e)
	case exprkind.Tanh:
		return v.VisitTanh(e)
	case exprkind.Asin:
		return v.VisitAsin(e)
	case exprkind.Asinh:
		return v.VisitAsinh(e)
	case exprkind.Acos:
		return v.VisitAcos(e)
	case exprkind.Acosh:
		return v.VisitAcosh(e)
	case exprkind.Atan:
		return v.VisitAtan(e)
	case exprkind.Atanh:
		return v.VisitAtanh(e)
	}
	var zero R
	return zero, errors.Errorf("invalid unary expression kind %s", e.kind)
}

func dispatchBinary[R, L any](v Visitor[R, L], e *BinaryExpr) (R, error) {
	switch e.kind {
	case exprkind.Add:
		return v.VisitAdd(e)
	case exprkind.Sub:
		return v.VisitSub(e)
	case exprkind.Less:
		return v.VisitLess(e)
	case exprkind.Mul:
		return v.VisitMul(e)
	case exprkind.Div:
		return v.VisitDiv(e)
	case exprkind.IntDiv:
		return v.VisitIntDiv(e)
	case exprkind.Mod:
		return v.VisitMod(e)
	case exprkind.Pow:
		return v.VisitPow(e)
	case exprkind.PowConstBase:
		return v.VisitPowConstBase(e)
	case exprkind.PowConstExp:
		return v.VisitPowConstExp(e)
	case exprkind.Atan2:
		return v.VisitAtan2(e)
	case exprkind.Precision:
		return v.VisitPrecision(e)
	case exprkind.Round:
		return v.VisitRound(e)
	case exprkind.Trunc:
		return v.VisitTrunc(e)
	}
	var zero R
	return zero, errors.Errorf("invalid binary expression kind %s", e.kind)
}

func dispatchLogical[R, L any](v Visitor[R, L], e LogicalExpr) (L, error) {
	switch e := e.(type) {
	case *LogicalConstant:
		return v.VisitLogicalConstant(e)
	case *NotExpr:
		return v.VisitNot(e)
	case *BinaryLogicalExpr:
		switch e.kind {
		case exprkind.Or:
			return v.VisitOr(e)
		case exprkind.And:
			return v.VisitAnd(e)
		case exprkind.Iff:
			return v.VisitIff(e)
		}
	case *RelationalExpr:
		switch e.kind {
		case exprkind.LT:
			return v.VisitLT(e)
		case exprkind.LE:
			return v.VisitLE(e)
		case exprkind.EQ:
			return v.VisitEQ(e)
		case exprkind.GE:
			return v.VisitGE(e)
		case exprkind.GT:
			return v.VisitGT(e)
		case exprkind.NE:
			return v.VisitNE(e)
		}
	case *LogicalCountExpr:
		switch e.kind {
		case exprkind.AtLeast:
			return v.VisitAtLeast(e)
		case exprkind.AtMost:
			return v.VisitAtMost(e)
		case exprkind.Exactly:
			return v.VisitExactly(e)
		case exprkind.NotAtLeast:
			return v.VisitNotAtLeast(e)
		case exprkind.NotAtMost:
			return v.VisitNotAtMost(e)
		case exprkind.NotExactly:
			return v.VisitNotExactly(e)
		}
	case *ImplicationExpr:
		return v.VisitImplication(e)
	case *IteratedLogicalExpr:
		switch e.kind {
		case exprkind.Exists:
			return v.VisitExists(e)
		case exprkind.ForAll:
			return v.VisitForAll(e)
		}
	case *PairwiseExpr:
		switch e.kind {
		case exprkind.AllDiff:
			return v.VisitAllDiff(e)
		case exprkind.NotAllDiff:
			return v.VisitNotAllDiff(e)
		}
	}
	var zero L
	return zero, errors.Errorf("cannot visit expression of type %T", e)
}

// VisitorBase implements every hook of Visitor by delegating to the
// unhandled-kind fallbacks. Embed it and override the hooks handled.
type VisitorBase[R, L any] struct{}

func (VisitorBase[R, L]) VisitNumericConstant(e *NumericConstant) (R, error) {
	return unhandled[R](e)
}
func (VisitorBase[R, L]) VisitVariable(e *Variable) (R, error)           { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitCommonExprRef(e *CommonExprRef) (R, error) { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitMinus(e *UnaryExpr) (R, error)             { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAbs(e *UnaryExpr) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitFloor(e *UnaryExpr) (R, error)             { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitCeil(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitSqrt(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitPow2(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitExp(e *UnaryExpr) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitLog(e *UnaryExpr) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitLog10(e *UnaryExpr) (R, error)             { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitSin(e *UnaryExpr) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitSinh(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitCos(e *UnaryExpr) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitCosh(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitTan(e *UnaryExpr) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitTanh(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAsin(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAsinh(e *UnaryExpr) (R, error)             { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAcos(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAcosh(e *UnaryExpr) (R, error)             { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAtan(e *UnaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAtanh(e *UnaryExpr) (R, error)             { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAdd(e *BinaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitSub(e *BinaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitLess(e *BinaryExpr) (R, error)             { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitMul(e *BinaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitDiv(e *BinaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitIntDiv(e *BinaryExpr) (R, error)           { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitMod(e *BinaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitPow(e *BinaryExpr) (R, error)              { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitPowConstBase(e *BinaryExpr) (R, error)     { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitPowConstExp(e *BinaryExpr) (R, error)      { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitAtan2(e *BinaryExpr) (R, error)            { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitPrecision(e *BinaryExpr) (R, error)        { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitRound(e *BinaryExpr) (R, error)            { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitTrunc(e *BinaryExpr) (R, error)            { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitIf(e *IfExpr) (R, error)                   { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitPLTerm(e *PLTerm) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitCall(e *CallExpr) (R, error)               { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitMin(e *IteratedExpr) (R, error)            { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitMax(e *IteratedExpr) (R, error)            { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitSum(e *IteratedExpr) (R, error)            { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitNumberOf(e *IteratedExpr) (R, error)       { return unhandled[R](e) }
func (VisitorBase[R, L]) VisitCount(e *CountExpr) (R, error)             { return unhandled[R](e) }

func (VisitorBase[R, L]) VisitLogicalConstant(e *LogicalConstant) (L, error) {
	return unhandled[L](e)
}
func (VisitorBase[R, L]) VisitNot(e *NotExpr) (L, error)               { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitOr(e *BinaryLogicalExpr) (L, error)      { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitAnd(e *BinaryLogicalExpr) (L, error)     { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitIff(e *BinaryLogicalExpr) (L, error)     { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitLT(e *RelationalExpr) (L, error)         { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitLE(e *RelationalExpr) (L, error)         { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitEQ(e *RelationalExpr) (L, error)         { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitGE(e *RelationalExpr) (L, error)         { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitGT(e *RelationalExpr) (L, error)         { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitNE(e *RelationalExpr) (L, error)         { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitAtLeast(e *LogicalCountExpr) (L, error)  { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitAtMost(e *LogicalCountExpr) (L, error)   { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitExactly(e *LogicalCountExpr) (L, error)  { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitNotAtLeast(e *LogicalCountExpr) (L, error) {
	return unhandled[L](e)
}
func (VisitorBase[R, L]) VisitNotAtMost(e *LogicalCountExpr) (L, error) {
	return unhandled[L](e)
}
func (VisitorBase[R, L]) VisitNotExactly(e *LogicalCountExpr) (L, error) {
	return unhandled[L](e)
}
func (VisitorBase[R, L]) VisitImplication(e *ImplicationExpr) (L, error) {
	return unhandled[L](e)
}
func (VisitorBase[R, L]) VisitExists(e *IteratedLogicalExpr) (L, error) { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitForAll(e *IteratedLogicalExpr) (L, error) { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitAllDiff(e *PairwiseExpr) (L, error)       { return unhandled[L](e) }
func (VisitorBase[R, L]) VisitNotAllDiff(e *PairwiseExpr) (L, error)    { return unhandled[L](e) }

// VisitUnhandledNumeric fails with the kind of the unhandled expression.
func (VisitorBase[R, L]) VisitUnhandledNumeric(e NumericExpr) (R, error) {
	var zero R
	return zero, &UnsupportedExprError{Kind: e.Kind()}
}

// VisitUnhandledLogical fails with the kind of the unhandled expression.
func (VisitorBase[R, L]) VisitUnhandledLogical(e LogicalExpr) (L, error) {
	var zero L
	return zero, &UnsupportedExprError{Kind: e.Kind()}
}
