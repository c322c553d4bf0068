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

package expr_test

import (
	"testing"

	"github.com/mpx-org/mpx/expr"
	"github.com/mpx-org/mpx/expr/exprkind"
)

func TestMakeNumericConstant(t *testing.T) {
	f := expr.NewFactory()
	e := f.MakeNumericConstant(42)
	if e.Kind() != exprkind.Number {
		t.Errorf("kind = %s but want %s", e.Kind(), exprkind.Number)
	}
	if e.Value() != 42 {
		t.Errorf("value = %g but want 42", e.Value())
	}
}

func TestMakeVariable(t *testing.T) {
	f := expr.NewFactory()
	e := f.MakeVariable(3)
	if e.Kind() != exprkind.Variable || e.Index() != 3 {
		t.Errorf("got kind %s index %d", e.Kind(), e.Index())
	}
}

func TestMakeCommonExprRef(t *testing.T) {
	f := expr.NewFactory()
	e := f.MakeCommonExprRef(1)
	if e.Kind() != exprkind.CommonExpr || e.Index() != 1 {
		t.Errorf("got kind %s index %d", e.Kind(), e.Index())
	}
}

func TestMakeUnary(t *testing.T) {
	f := expr.NewFactory()
	arg := f.MakeVariable(0)
	for kind := exprkind.FirstUnary; kind <= exprkind.LastUnary; kind++ {
		e := f.MakeUnary(kind, arg)
		if e.Kind() != kind {
			t.Errorf("kind = %s but want %s", e.Kind(), kind)
		}
		if e.Arg() != expr.NumericExpr(arg) {
			t.Errorf("%s: argument is not the one supplied", kind)
		}
	}
}

func TestMakeBinary(t *testing.T) {
	f := expr.NewFactory()
	lhs, rhs := f.MakeVariable(0), f.MakeNumericConstant(2)
	for kind := exprkind.FirstBinary; kind <= exprkind.LastBinary; kind++ {
		e := f.MakeBinary(kind, lhs, rhs)
		if e.Kind() != kind {
			t.Errorf("kind = %s but want %s", e.Kind(), kind)
		}
		if e.LHS() != expr.NumericExpr(lhs) || e.RHS() != expr.NumericExpr(rhs) {
			t.Errorf("%s: children are not the ones supplied", kind)
		}
	}
}

func TestMakeIf(t *testing.T) {
	f := expr.NewFactory()
	cond := f.MakeLogicalConstant(true)
	a, b := f.MakeVariable(0), f.MakeVariable(1)
	e := f.MakeIf(cond, a, b)
	if e.Kind() != exprkind.If {
		t.Errorf("kind = %s", e.Kind())
	}
	if e.Condition() != expr.LogicalExpr(cond) || e.TrueExpr() != expr.NumericExpr(a) || e.FalseExpr() != expr.NumericExpr(b) {
		t.Error("children are not the ones supplied")
	}
}

func TestPLTermBuilder(t *testing.T) {
	f := expr.NewFactory()
	b := f.BeginPLTerm(2)
	b.AddSlope(-1)
	b.AddBreakpoint(0)
	b.AddSlope(0)
	b.AddBreakpoint(1)
	b.AddSlope(1)
	v := f.MakeVariable(4)
	e := f.EndPLTerm(b, v)
	if e.Kind() != exprkind.PLTerm {
		t.Errorf("kind = %s", e.Kind())
	}
	if e.NumBreakpoints() != 2 || e.NumSlopes() != 3 {
		t.Fatalf("got %d breakpoints, %d slopes", e.NumBreakpoints(), e.NumSlopes())
	}
	wantBreaks := []float64{0, 1}
	wantSlopes := []float64{-1, 0, 1}
	for i, want := range wantBreaks {
		if got := e.Breakpoint(i); got != want {
			t.Errorf("breakpoint %d = %g but want %g", i, got, want)
		}
	}
	for i, want := range wantSlopes {
		if got := e.Slope(i); got != want {
			t.Errorf("slope %d = %g but want %g", i, got, want)
		}
	}
	if e.Arg() != v {
		t.Error("variable is not the one supplied")
	}
}

func TestCallBuilder(t *testing.T) {
	f := expr.NewFactory()
	fn := f.AddFunction("foo", 2, expr.FuncSymbolic)
	b := f.BeginCall(fn, 2)
	arg0 := f.MakeVariable(0)
	arg1 := f.MakeStringLiteral("abc")
	b.AddArg(arg0)
	b.AddArg(arg1)
	e := f.EndCall(b)
	if e.Kind() != exprkind.Call || e.Function() != fn || e.NumArgs() != 2 {
		t.Fatalf("got kind %s, function %v, %d args", e.Kind(), e.Function(), e.NumArgs())
	}
	if e.Arg(0) != expr.Expr(arg0) || e.Arg(1) != expr.Expr(arg1) {
		t.Error("arguments are not the ones supplied")
	}
}

func TestAddFunctionDedup(t *testing.T) {
	f := expr.NewFactory()
	fn := f.AddFunction("foo", 2, expr.FuncNumeric)
	if again := f.AddFunction("foo", 3, expr.FuncSymbolic); again != fn {
		t.Error("second declaration of foo returned a new reference")
	}
	if fn.NumArgs() != 2 || fn.Type() != expr.FuncNumeric {
		t.Errorf("first declaration was overwritten: %d args, type %d", fn.NumArgs(), fn.Type())
	}
	if f.Function("bar") != nil {
		t.Error("undeclared function found")
	}
}

func TestIteratedBuilder(t *testing.T) {
	f := expr.NewFactory()
	for _, kind := range []exprkind.Kind{exprkind.Min, exprkind.Max, exprkind.Sum} {
		b := f.BeginIterated(kind, 2)
		args := []expr.NumericExpr{f.MakeVariable(0), f.MakeNumericConstant(5)}
		for _, a := range args {
			b.AddArg(a)
		}
		e := f.EndIterated(b)
		if e.Kind() != kind || e.NumArgs() != 2 {
			t.Fatalf("got kind %s with %d args", e.Kind(), e.NumArgs())
		}
		for i, a := range args {
			if e.Arg(i) != a {
				t.Errorf("%s: argument %d is not the one supplied", kind, i)
			}
		}
	}
}

func TestNumberOfBuilder(t *testing.T) {
	f := expr.NewFactory()
	value := f.MakeVariable(2)
	b := f.BeginNumberOf(3, value)
	b.AddArg(f.MakeNumericConstant(1))
	b.AddArg(f.MakeVariable(0))
	e := f.EndIterated(b)
	if e.Kind() != exprkind.NumberOf || e.NumArgs() != 3 {
		t.Fatalf("got kind %s with %d args", e.Kind(), e.NumArgs())
	}
	if e.Arg(0) != expr.NumericExpr(value) {
		t.Error("first argument is not the searched value")
	}
}

func TestCountBuilder(t *testing.T) {
	f := expr.NewFactory()
	b := f.BeginCount(1)
	arg := f.MakeLogicalConstant(false)
	b.AddArg(arg)
	e := f.EndCount(b)
	if e.Kind() != exprkind.Count || e.NumArgs() != 1 || e.Arg(0) != expr.LogicalExpr(arg) {
		t.Errorf("got kind %s with %d args", e.Kind(), e.NumArgs())
	}
}

func TestLogicalFactory(t *testing.T) {
	f := expr.NewFactory()
	tr := f.MakeLogicalConstant(true)
	fa := f.MakeLogicalConstant(false)
	if !tr.Value() || fa.Value() {
		t.Error("logical constant values are wrong")
	}
	not := f.MakeNot(tr)
	if not.Kind() != exprkind.Not || not.Arg() != expr.LogicalExpr(tr) {
		t.Error("not expression is wrong")
	}
	for kind := exprkind.FirstBinaryLogical; kind <= exprkind.LastBinaryLogical; kind++ {
		e := f.MakeBinaryLogical(kind, tr, fa)
		if e.Kind() != kind || e.LHS() != expr.LogicalExpr(tr) || e.RHS() != expr.LogicalExpr(fa) {
			t.Errorf("%s: wrong node", kind)
		}
	}
	v := f.MakeVariable(0)
	n := f.MakeNumericConstant(0)
	for kind := exprkind.FirstRelational; kind <= exprkind.LastRelational; kind++ {
		e := f.MakeRelational(kind, v, n)
		if e.Kind() != kind || e.LHS() != expr.NumericExpr(v) || e.RHS() != expr.NumericExpr(n) {
			t.Errorf("%s: wrong node", kind)
		}
	}
	cb := f.BeginCount(1)
	cb.AddArg(fa)
	count := f.EndCount(cb)
	for kind := exprkind.FirstLogicalCount; kind <= exprkind.LastLogicalCount; kind++ {
		e := f.MakeLogicalCount(kind, n, count)
		if e.Kind() != kind || e.LHS() != expr.NumericExpr(n) || e.Count() != count {
			t.Errorf("%s: wrong node", kind)
		}
	}
	imp := f.MakeImplication(tr, fa, tr)
	if imp.Kind() != exprkind.Implication || imp.Condition() != expr.LogicalExpr(tr) {
		t.Error("implication is wrong")
	}
	for kind := exprkind.FirstIteratedLogical; kind <= exprkind.LastIteratedLogical; kind++ {
		b := f.BeginIteratedLogical(kind, 3)
		b.AddArg(tr)
		b.AddArg(fa)
		b.AddArg(tr)
		e := f.EndIteratedLogical(b)
		if e.Kind() != kind || e.NumArgs() != 3 {
			t.Errorf("%s: wrong node", kind)
		}
	}
	for kind := exprkind.FirstPairwise; kind <= exprkind.LastPairwise; kind++ {
		b := f.BeginPairwise(kind, 3)
		b.AddArg(f.MakeVariable(0))
		b.AddArg(f.MakeVariable(1))
		b.AddArg(n)
		e := f.EndPairwise(b)
		if e.Kind() != kind || e.NumArgs() != 3 {
			t.Errorf("%s: wrong node", kind)
		}
	}
}

func TestMakeStringLiteral(t *testing.T) {
	f := expr.NewFactory()
	value := "ab\x00c\n"
	e := f.MakeStringLiteral(value)
	if e.Kind() != exprkind.String || e.Value() != value {
		t.Errorf("got kind %s value %q", e.Kind(), e.Value())
	}
}

func TestMakeSymbolicIf(t *testing.T) {
	f := expr.NewFactory()
	cond := f.MakeLogicalConstant(true)
	a := f.MakeStringLiteral("a")
	b := f.MakeNumericConstant(0)
	e := f.MakeSymbolicIf(cond, a, b)
	if e.Kind() != exprkind.SymbolicIf {
		t.Errorf("kind = %s", e.Kind())
	}
	if e.TrueExpr() != expr.Expr(a) || e.FalseExpr() != expr.Expr(b) {
		t.Error("branches are not the ones supplied")
	}
}
