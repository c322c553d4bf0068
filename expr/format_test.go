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

func TestFormat(t *testing.T) {
	f := expr.NewFactory()
	x1 := f.MakeVariable(0)
	x2 := f.MakeVariable(1)
	n42 := f.MakeNumericConstant(42)

	sum := func(args ...expr.NumericExpr) expr.NumericExpr {
		b := f.BeginIterated(exprkind.Sum, len(args))
		for _, a := range args {
			b.AddArg(a)
		}
		return f.EndIterated(b)
	}

	plb := f.BeginPLTerm(2)
	plb.AddSlope(-1)
	plb.AddBreakpoint(0)
	plb.AddSlope(0)
	plb.AddBreakpoint(1)
	plb.AddSlope(1)
	pl := f.EndPLTerm(plb, x1)

	fn := f.AddFunction("foo", -1, expr.FuncSymbolic)
	cb := f.BeginCall(fn, 2)
	cb.AddArg(x1)
	cb.AddArg(f.MakeStringLiteral("a'b\nc"))
	call := f.EndCall(cb)

	countB := f.BeginCount(2)
	countB.AddArg(f.MakeRelational(exprkind.LT, x1, n42))
	countB.AddArg(f.MakeLogicalConstant(true))
	count := f.EndCount(countB)

	maxB := f.BeginIterated(exprkind.Max, 2)
	maxB.AddArg(x1)
	maxB.AddArg(n42)
	maxE := f.EndIterated(maxB)

	forallB := f.BeginIteratedLogical(exprkind.ForAll, 2)
	forallB.AddArg(f.MakeRelational(exprkind.GE, x1, n42))
	forallB.AddArg(f.MakeLogicalConstant(false))
	forall := f.EndIteratedLogical(forallB)

	alldiffB := f.BeginPairwise(exprkind.AllDiff, 3)
	alldiffB.AddArg(x1)
	alldiffB.AddArg(x2)
	alldiffB.AddArg(n42)
	alldiff := f.EndPairwise(alldiffB)

	tests := []struct {
		expr expr.Expr
		want string
	}{
		{n42, "42"},
		{f.MakeNumericConstant(-1.23e-4), "-0.000123"},
		{x1, "x1"},
		{f.MakeCommonExprRef(0), "e1"},
		{f.MakeUnary(exprkind.Minus, x1), "-x1"},
		{f.MakeUnary(exprkind.Abs, x1), "abs(x1)"},
		{f.MakeUnary(exprkind.Pow2, f.MakeBinary(exprkind.Add, x1, x2)), "(x1 + x2) ^ 2"},
		{f.MakeBinary(exprkind.Add, x1, x2), "x1 + x2"},
		{f.MakeBinary(exprkind.Sub, x1, f.MakeBinary(exprkind.Sub, x2, n42)), "x1 - (x2 - 42)"},
		{f.MakeBinary(exprkind.Mul, f.MakeBinary(exprkind.Add, x1, x2), n42), "(x1 + x2) * 42"},
		{f.MakeBinary(exprkind.Pow, x1, f.MakeBinary(exprkind.Pow, x2, n42)), "x1 ^ x2 ^ 42"},
		{f.MakeBinary(exprkind.Pow, f.MakeBinary(exprkind.Pow, x1, x2), n42), "(x1 ^ x2) ^ 42"},
		{f.MakeBinary(exprkind.Atan2, x1, x2), "atan2(x1, x2)"},
		{f.MakeBinary(exprkind.IntDiv, x1, x2), "x1 div x2"},
		{f.MakeIf(f.MakeRelational(exprkind.NE, x1, n42), x2, f.MakeNumericConstant(0)),
			"if x1 != 42 then x2"},
		{f.MakeIf(f.MakeRelational(exprkind.EQ, x1, n42), x2, n42),
			"if x1 = 42 then x2 else 42"},
		{pl, "<<0, 1; -1, 0, 1>> x1"},
		{call, "foo(x1, 'a''b\\\nc')"},
		{maxE, "max(x1, 42)"},
		{sum(x1, x2, n42), "/* sum */ (x1 + x2 + 42)"},
		{count, "count(x1 < 42, 1)"},
		{f.MakeLogicalConstant(false), "0"},
		{f.MakeNot(f.MakeRelational(exprkind.EQ, x1, n42)), "!(x1 = 42)"},
		{f.MakeBinaryLogical(exprkind.Or, f.MakeLogicalConstant(true), f.MakeLogicalConstant(false)),
			"1 || 0"},
		{f.MakeLogicalCount(exprkind.AtLeast, n42, count), "atleast 42 (x1 < 42, 1)"},
		{f.MakeImplication(f.MakeLogicalConstant(true), f.MakeLogicalConstant(false),
			f.MakeLogicalConstant(false)), "1 ==> 0"},
		{f.MakeImplication(f.MakeLogicalConstant(true), f.MakeLogicalConstant(false),
			f.MakeLogicalConstant(true)), "1 ==> 0 else 1"},
		{forall, "/* forall */ (x1 >= 42 && 0)"},
		{alldiff, "alldiff(x1, x2, 42)"},
		{f.MakeStringLiteral("abc"), "'abc'"},
	}
	for _, test := range tests {
		if got := expr.Format(test.expr); got != test.want {
			t.Errorf("Format(%s) = %q but want %q", test.expr.Kind(), got, test.want)
		}
	}
}

func TestNumberOfFormat(t *testing.T) {
	f := expr.NewFactory()
	b := f.BeginNumberOf(3, f.MakeVariable(0))
	b.AddArg(f.MakeNumericConstant(1))
	b.AddArg(f.MakeVariable(1))
	e := f.EndIterated(b)
	want := "numberof x1 in (1, x2)"
	if got := expr.Format(e); got != want {
		t.Errorf("Format = %q but want %q", got, want)
	}
}
