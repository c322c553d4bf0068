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
	"strconv"
	"strings"

	"github.com/mpx-org/mpx/expr/exprkind"
)

// Format renders an expression in AMPL-like syntax, inserting
// parentheses only where precedence and associativity require them,
// except for potentially confusing cases such as "!x = y" which is
// written as "!(x = y)".
func Format(e Expr) string {
	w := &exprWriter{prec: exprkind.PrecUnknown}
	w.writeExpr(e, exprkind.PrecUnknown)
	return w.sb.String()
}

type exprWriter struct {
	VisitorBase[struct{}, struct{}]
	sb   strings.Builder
	prec int
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (w *exprWriter) writeExpr(e Expr, prec int) {
	switch e := e.(type) {
	case NumericExpr:
		w.visitNumeric(e, prec)
	case LogicalExpr:
		w.visitLogical(e, prec)
	case *StringLiteral:
		w.writeString(e)
	case *SymbolicIfExpr:
		w.writeIf(e.Condition(), e.TrueExpr(), e.FalseExpr(), prec)
	}
}

// visitNumeric writes e surrounded by parentheses if its precedence is
// lower than prec. Passing -1 keeps the enclosing precedence.
func (w *exprWriter) visitNumeric(e NumericExpr, prec int) {
	defer w.parenthesize(e, prec)()
	VisitNumeric[struct{}, struct{}](w, e)
}

func (w *exprWriter) visitLogical(e LogicalExpr, prec int) {
	defer w.parenthesize(e, prec)()
	VisitLogical[struct{}, struct{}](w, e)
}

func (w *exprWriter) parenthesize(e Expr, prec int) func() {
	saved := w.prec
	if prec == -1 {
		prec = w.prec
	}
	own := exprkind.Precedence(e.Kind())
	paren := own < prec
	if paren {
		w.sb.WriteByte('(')
	}
	w.prec = own
	return func() {
		w.prec = saved
		if paren {
			w.sb.WriteByte(')')
		}
	}
}

func (w *exprWriter) writeFunc(op string, write func(yield func(func()))) {
	w.sb.WriteString(op)
	w.writeArgList(write, ", ")
}

// writeArgList writes a parenthesized separated list. Each element is
// yielded as a closure writing itself.
func (w *exprWriter) writeArgList(write func(yield func(func())), sep string) {
	w.sb.WriteByte('(')
	first := true
	write(func(f func()) {
		if !first {
			w.sb.WriteString(sep)
		}
		first = false
		f()
	})
	w.sb.WriteByte(')')
}

func (w *exprWriter) numericArgs(args []NumericExpr, prec int) func(yield func(func())) {
	return func(yield func(func())) {
		for _, a := range args {
			a := a
			yield(func() { w.visitNumeric(a, prec) })
		}
	}
}

func (w *exprWriter) logicalArgs(args []LogicalExpr, prec int) func(yield func(func())) {
	return func(yield func(func())) {
		for _, a := range args {
			a := a
			yield(func() { w.visitLogical(a, prec) })
		}
	}
}

func (w *exprWriter) writeUnaryFunc(e *UnaryExpr) (struct{}, error) {
	w.sb.WriteString(exprkind.Str(e.Kind()))
	w.sb.WriteByte('(')
	w.visitNumeric(e.Arg(), exprkind.PrecUnknown)
	w.sb.WriteByte(')')
	return struct{}{}, nil
}

// writeBinary writes an infix binary expression. Exponentiation is
// right-associative, everything else is left-associative.
func (w *exprWriter) writeBinary(kind exprkind.Kind, lhs, rhs func(prec int)) (struct{}, error) {
	prec := exprkind.Precedence(kind)
	rightAssoc := 0
	if prec == exprkind.PrecExponentiation {
		rightAssoc = 1
	}
	lhs(prec + rightAssoc)
	w.sb.WriteByte(' ')
	w.sb.WriteString(exprkind.Str(kind))
	w.sb.WriteByte(' ')
	rhs(prec + 1 - rightAssoc)
	return struct{}{}, nil
}

func (w *exprWriter) writeBinaryExpr(e *BinaryExpr) (struct{}, error) {
	return w.writeBinary(e.Kind(),
		func(p int) { w.visitNumeric(e.LHS(), p) },
		func(p int) { w.visitNumeric(e.RHS(), p) })
}

func (w *exprWriter) writeBinaryFunc(e *BinaryExpr) (struct{}, error) {
	w.sb.WriteString(exprkind.Str(e.Kind()))
	w.sb.WriteByte('(')
	w.visitNumeric(e.LHS(), exprkind.PrecUnknown)
	w.sb.WriteString(", ")
	w.visitNumeric(e.RHS(), exprkind.PrecUnknown)
	w.sb.WriteByte(')')
	return struct{}{}, nil
}

func (w *exprWriter) writeIf(condition LogicalExpr, trueExpr, falseExpr Expr, prec int) {
	w.sb.WriteString("if ")
	w.visitLogical(condition, exprkind.PrecUnknown)
	w.sb.WriteString(" then ")
	hasElse := true
	if n, ok := falseExpr.(NumericExpr); ok && IsZero(n) {
		hasElse = false
	}
	branchPrec := exprkind.PrecConditional
	if hasElse {
		branchPrec++
	}
	w.writeExpr(trueExpr, branchPrec)
	if hasElse {
		w.sb.WriteString(" else ")
		w.writeExpr(falseExpr, -1)
	}
}

func (w *exprWriter) writeString(e *StringLiteral) {
	w.sb.WriteByte('\'')
	for _, c := range []byte(e.Value()) {
		switch c {
		case '\n':
			w.sb.WriteByte('\\')
			w.sb.WriteByte(c)
		case '\'':
			// Escape quote by doubling.
			w.sb.WriteByte(c)
			w.sb.WriteByte(c)
		default:
			w.sb.WriteByte(c)
		}
	}
	w.sb.WriteByte('\'')
}

func (w *exprWriter) VisitNumericConstant(e *NumericConstant) (struct{}, error) {
	w.sb.WriteString(formatFloat(e.Value()))
	return struct{}{}, nil
}

func (w *exprWriter) VisitVariable(e *Variable) (struct{}, error) {
	fmt.Fprintf(&w.sb, "x%d", e.Index()+1)
	return struct{}{}, nil
}

func (w *exprWriter) VisitCommonExprRef(e *CommonExprRef) (struct{}, error) {
	fmt.Fprintf(&w.sb, "e%d", e.Index()+1)
	return struct{}{}, nil
}

func (w *exprWriter) VisitMinus(e *UnaryExpr) (struct{}, error) {
	w.sb.WriteByte('-')
	w.visitNumeric(e.Arg(), -1)
	return struct{}{}, nil
}

func (w *exprWriter) VisitPow2(e *UnaryExpr) (struct{}, error) {
	w.visitNumeric(e.Arg(), exprkind.PrecExponentiation+1)
	w.sb.WriteString(" ^ 2")
	return struct{}{}, nil
}

func (w *exprWriter) VisitAbs(e *UnaryExpr) (struct{}, error)   { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitFloor(e *UnaryExpr) (struct{}, error) { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitCeil(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitSqrt(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitExp(e *UnaryExpr) (struct{}, error)   { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitLog(e *UnaryExpr) (struct{}, error)   { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitLog10(e *UnaryExpr) (struct{}, error) { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitSin(e *UnaryExpr) (struct{}, error)   { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitSinh(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitCos(e *UnaryExpr) (struct{}, error)   { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitCosh(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitTan(e *UnaryExpr) (struct{}, error)   { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitTanh(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitAsin(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitAsinh(e *UnaryExpr) (struct{}, error) { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitAcos(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitAcosh(e *UnaryExpr) (struct{}, error) { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitAtan(e *UnaryExpr) (struct{}, error)  { return w.writeUnaryFunc(e) }
func (w *exprWriter) VisitAtanh(e *UnaryExpr) (struct{}, error) { return w.writeUnaryFunc(e) }

func (w *exprWriter) VisitAdd(e *BinaryExpr) (struct{}, error)  { return w.writeBinaryExpr(e) }
func (w *exprWriter) VisitSub(e *BinaryExpr) (struct{}, error)  { return w.writeBinaryExpr(e) }
func (w *exprWriter) VisitLess(e *BinaryExpr) (struct{}, error) { return w.writeBinaryExpr(e) }
func (w *exprWriter) VisitMul(e *BinaryExpr) (struct{}, error)  { return w.writeBinaryExpr(e) }
func (w *exprWriter) VisitDiv(e *BinaryExpr) (struct{}, error)  { return w.writeBinaryExpr(e) }
func (w *exprWriter) VisitIntDiv(e *BinaryExpr) (struct{}, error) {
	return w.writeBinaryExpr(e)
}
func (w *exprWriter) VisitMod(e *BinaryExpr) (struct{}, error) { return w.writeBinaryExpr(e) }
func (w *exprWriter) VisitPow(e *BinaryExpr) (struct{}, error) { return w.writeBinaryExpr(e) }
func (w *exprWriter) VisitPowConstBase(e *BinaryExpr) (struct{}, error) {
	return w.writeBinaryExpr(e)
}
func (w *exprWriter) VisitPowConstExp(e *BinaryExpr) (struct{}, error) {
	return w.writeBinaryExpr(e)
}
func (w *exprWriter) VisitAtan2(e *BinaryExpr) (struct{}, error) { return w.writeBinaryFunc(e) }
func (w *exprWriter) VisitPrecision(e *BinaryExpr) (struct{}, error) {
	return w.writeBinaryFunc(e)
}
func (w *exprWriter) VisitRound(e *BinaryExpr) (struct{}, error) { return w.writeBinaryFunc(e) }
func (w *exprWriter) VisitTrunc(e *BinaryExpr) (struct{}, error) { return w.writeBinaryFunc(e) }

func (w *exprWriter) VisitIf(e *IfExpr) (struct{}, error) {
	w.writeIf(e.Condition(), e.TrueExpr(), e.FalseExpr(), -1)
	return struct{}{}, nil
}

func (w *exprWriter) VisitPLTerm(e *PLTerm) (struct{}, error) {
	w.sb.WriteString("<<")
	for i := 0; i < e.NumBreakpoints(); i++ {
		if i != 0 {
			w.sb.WriteString(", ")
		}
		w.sb.WriteString(formatFloat(e.Breakpoint(i)))
	}
	w.sb.WriteString("; ")
	for i := 0; i < e.NumSlopes(); i++ {
		if i != 0 {
			w.sb.WriteString(", ")
		}
		w.sb.WriteString(formatFloat(e.Slope(i)))
	}
	fmt.Fprintf(&w.sb, ">> x%d", e.Arg().Index()+1)
	return struct{}{}, nil
}

func (w *exprWriter) VisitCall(e *CallExpr) (struct{}, error) {
	w.sb.WriteString(e.Function().Name())
	w.writeArgList(func(yield func(func())) {
		for i := 0; i < e.NumArgs(); i++ {
			arg := e.Arg(i)
			yield(func() { w.writeExpr(arg, exprkind.PrecUnknown) })
		}
	}, ", ")
	return struct{}{}, nil
}

func (w *exprWriter) VisitMin(e *IteratedExpr) (struct{}, error) {
	w.writeFunc("min", w.numericArgs(e.Args(), exprkind.PrecUnknown))
	return struct{}{}, nil
}

func (w *exprWriter) VisitMax(e *IteratedExpr) (struct{}, error) {
	w.writeFunc("max", w.numericArgs(e.Args(), exprkind.PrecUnknown))
	return struct{}{}, nil
}

func (w *exprWriter) VisitSum(e *IteratedExpr) (struct{}, error) {
	// The indexing of the original sum is gone, so write the expanded
	// form with a reminder of where it came from.
	w.sb.WriteString("/* sum */ (")
	for i, a := range e.Args() {
		if i != 0 {
			w.sb.WriteString(" + ")
		}
		w.visitNumeric(a, -1)
	}
	w.sb.WriteByte(')')
	return struct{}{}, nil
}

func (w *exprWriter) VisitNumberOf(e *IteratedExpr) (struct{}, error) {
	w.sb.WriteString("numberof ")
	w.visitNumeric(e.Arg(0), exprkind.PrecUnknown)
	w.sb.WriteString(" in ")
	w.writeArgList(w.numericArgs(e.Args()[1:], exprkind.PrecUnknown), ", ")
	return struct{}{}, nil
}

func (w *exprWriter) VisitCount(e *CountExpr) (struct{}, error) {
	w.writeFunc("count", w.logicalArgs(e.Args(), exprkind.PrecUnknown))
	return struct{}{}, nil
}

func (w *exprWriter) VisitLogicalConstant(e *LogicalConstant) (struct{}, error) {
	if e.Value() {
		w.sb.WriteByte('1')
	} else {
		w.sb.WriteByte('0')
	}
	return struct{}{}, nil
}

func (w *exprWriter) VisitNot(e *NotExpr) (struct{}, error) {
	w.sb.WriteByte('!')
	// Use a precedence higher than relational to print expressions
	// as "!(x = y)" instead of "!x = y".
	arg := e.Arg()
	prec := -1
	if exprkind.Precedence(arg.Kind()) == exprkind.PrecRelational {
		prec = exprkind.PrecRelational + 1
	}
	w.visitLogical(arg, prec)
	return struct{}{}, nil
}

func (w *exprWriter) writeBinaryLogical(e *BinaryLogicalExpr) (struct{}, error) {
	return w.writeBinary(e.Kind(),
		func(p int) { w.visitLogical(e.LHS(), p) },
		func(p int) { w.visitLogical(e.RHS(), p) })
}

func (w *exprWriter) writeRelational(e *RelationalExpr) (struct{}, error) {
	return w.writeBinary(e.Kind(),
		func(p int) { w.visitNumeric(e.LHS(), p) },
		func(p int) { w.visitNumeric(e.RHS(), p) })
}

func (w *exprWriter) VisitOr(e *BinaryLogicalExpr) (struct{}, error) {
	return w.writeBinaryLogical(e)
}
func (w *exprWriter) VisitAnd(e *BinaryLogicalExpr) (struct{}, error) {
	return w.writeBinaryLogical(e)
}
func (w *exprWriter) VisitIff(e *BinaryLogicalExpr) (struct{}, error) {
	return w.writeBinaryLogical(e)
}

func (w *exprWriter) VisitLT(e *RelationalExpr) (struct{}, error) { return w.writeRelational(e) }
func (w *exprWriter) VisitLE(e *RelationalExpr) (struct{}, error) { return w.writeRelational(e) }
func (w *exprWriter) VisitEQ(e *RelationalExpr) (struct{}, error) { return w.writeRelational(e) }
func (w *exprWriter) VisitGE(e *RelationalExpr) (struct{}, error) { return w.writeRelational(e) }
func (w *exprWriter) VisitGT(e *RelationalExpr) (struct{}, error) { return w.writeRelational(e) }
func (w *exprWriter) VisitNE(e *RelationalExpr) (struct{}, error) { return w.writeRelational(e) }

func (w *exprWriter) writeLogicalCount(e *LogicalCountExpr) (struct{}, error) {
	w.sb.WriteString(exprkind.Str(e.Kind()))
	w.sb.WriteByte(' ')
	w.visitNumeric(e.LHS(), -1)
	w.sb.WriteByte(' ')
	w.writeArgList(w.logicalArgs(e.Count().Args(), exprkind.PrecUnknown), ", ")
	return struct{}{}, nil
}

func (w *exprWriter) VisitAtLeast(e *LogicalCountExpr) (struct{}, error) {
	return w.writeLogicalCount(e)
}
func (w *exprWriter) VisitAtMost(e *LogicalCountExpr) (struct{}, error) {
	return w.writeLogicalCount(e)
}
func (w *exprWriter) VisitExactly(e *LogicalCountExpr) (struct{}, error) {
	return w.writeLogicalCount(e)
}
func (w *exprWriter) VisitNotAtLeast(e *LogicalCountExpr) (struct{}, error) {
	return w.writeLogicalCount(e)
}
func (w *exprWriter) VisitNotAtMost(e *LogicalCountExpr) (struct{}, error) {
	return w.writeLogicalCount(e)
}
func (w *exprWriter) VisitNotExactly(e *LogicalCountExpr) (struct{}, error) {
	return w.writeLogicalCount(e)
}

func (w *exprWriter) VisitImplication(e *ImplicationExpr) (struct{}, error) {
	w.visitLogical(e.Condition(), -1)
	w.sb.WriteString(" ==> ")
	w.visitLogical(e.TrueExpr(), exprkind.PrecImplication+1)
	falseExpr := e.FalseExpr()
	if c, ok := falseExpr.(*LogicalConstant); !ok || c.Value() {
		w.sb.WriteString(" else ")
		w.visitLogical(falseExpr, -1)
	}
	return struct{}{}, nil
}

// writeIteratedLogical expands an iterated logical expression into its
// binary form: the indexing of the original is not available any more.
func (w *exprWriter) writeIteratedLogical(e *IteratedLogicalExpr) (struct{}, error) {
	prec := exprkind.PrecLogicalAnd + 1
	op := " && "
	if e.Kind() == exprkind.Exists {
		prec = exprkind.PrecLogicalOr + 1
		op = " || "
	}
	fmt.Fprintf(&w.sb, "/* %s */ ", exprkind.Str(e.Kind()))
	w.writeArgList(w.logicalArgs(e.Args(), prec), op)
	return struct{}{}, nil
}

func (w *exprWriter) VisitExists(e *IteratedLogicalExpr) (struct{}, error) {
	return w.writeIteratedLogical(e)
}
func (w *exprWriter) VisitForAll(e *IteratedLogicalExpr) (struct{}, error) {
	return w.writeIteratedLogical(e)
}

func (w *exprWriter) VisitAllDiff(e *PairwiseExpr) (struct{}, error) {
	w.writeFunc(exprkind.Str(e.Kind()), w.numericArgs(e.Args(), exprkind.PrecUnknown))
	return struct{}{}, nil
}

func (w *exprWriter) VisitNotAllDiff(e *PairwiseExpr) (struct{}, error) {
	w.writeFunc(exprkind.Str(e.Kind()), w.numericArgs(e.Args(), exprkind.PrecUnknown))
	return struct{}{}, nil
}
