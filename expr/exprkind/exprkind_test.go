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

package exprkind_test

import (
	"testing"

	"github.com/mpx-org/mpx/expr/exprkind"
)

func TestOpcodeBijection(t *testing.T) {
	seen := make(map[int]exprkind.Kind)
	for k := exprkind.FirstExpr; k <= exprkind.LastExpr; k++ {
		op := exprkind.Opcode(k)
		if op < 0 || op > exprkind.MaxOpcode {
			t.Errorf("Opcode(%s) = %d, out of [0, %d]", k, op, exprkind.MaxOpcode)
			continue
		}
		if prev, ok := seen[op]; ok {
			t.Errorf("kinds %s and %s share opcode %d", prev, k, op)
		}
		seen[op] = k
		if got := exprkind.KindForOpcode(op); got != k {
			t.Errorf("KindForOpcode(Opcode(%s)) = %s", k, got)
		}
	}
}

func TestKindRanges(t *testing.T) {
	for k := exprkind.FirstExpr; k <= exprkind.LastExpr; k++ {
		numeric := k >= exprkind.FirstNumeric && k <= exprkind.LastNumeric
		logical := k >= exprkind.FirstLogical && k <= exprkind.LastLogical
		if numeric && logical {
			t.Errorf("kind %s is both numeric and logical", k)
		}
		if got := k.IsNumeric(); got != numeric {
			t.Errorf("%s.IsNumeric() = %t but want %t", k, got, numeric)
		}
		if got := k.IsLogical(); got != logical {
			t.Errorf("%s.IsLogical() = %t but want %t", k, got, logical)
		}
		if !k.IsValid() {
			t.Errorf("%s.IsValid() = false", k)
		}
	}
	if exprkind.Unknown.IsValid() {
		t.Error("Unknown.IsValid() = true")
	}
}

func TestClassPredicates(t *testing.T) {
	tests := []struct {
		kind exprkind.Kind
		pred func(exprkind.Kind) bool
		want bool
	}{
		{exprkind.Minus, exprkind.Kind.IsUnary, true},
		{exprkind.Atanh, exprkind.Kind.IsUnary, true},
		{exprkind.Add, exprkind.Kind.IsUnary, false},
		{exprkind.Add, exprkind.Kind.IsBinary, true},
		{exprkind.Trunc, exprkind.Kind.IsBinary, true},
		{exprkind.If, exprkind.Kind.IsBinary, false},
		{exprkind.Min, exprkind.Kind.IsVarArg, true},
		{exprkind.Max, exprkind.Kind.IsVarArg, true},
		{exprkind.Sum, exprkind.Kind.IsVarArg, false},
		{exprkind.Sum, exprkind.Kind.IsIterated, true},
		{exprkind.NumberOf, exprkind.Kind.IsIterated, true},
		{exprkind.Count, exprkind.Kind.IsIterated, false},
		{exprkind.Or, exprkind.Kind.IsBinaryLogical, true},
		{exprkind.Iff, exprkind.Kind.IsBinaryLogical, true},
		{exprkind.LT, exprkind.Kind.IsRelational, true},
		{exprkind.NE, exprkind.Kind.IsRelational, true},
		{exprkind.AtLeast, exprkind.Kind.IsLogicalCount, true},
		{exprkind.NotExactly, exprkind.Kind.IsLogicalCount, true},
		{exprkind.Exists, exprkind.Kind.IsIteratedLogical, true},
		{exprkind.ForAll, exprkind.Kind.IsIteratedLogical, true},
		{exprkind.AllDiff, exprkind.Kind.IsPairwise, true},
		{exprkind.NotAllDiff, exprkind.Kind.IsPairwise, true},
		{exprkind.Number, exprkind.Kind.IsLeaf, true},
		{exprkind.Bool, exprkind.Kind.IsLeaf, true},
		{exprkind.CommonExpr, exprkind.Kind.IsLeaf, true},
		{exprkind.String, exprkind.Kind.IsLeaf, true},
		{exprkind.Minus, exprkind.Kind.IsLeaf, false},
	}
	for _, test := range tests {
		if got := test.pred(test.kind); got != test.want {
			t.Errorf("predicate on %s = %t but want %t", test.kind, got, test.want)
		}
	}
}

func TestWireOpcodes(t *testing.T) {
	// Persistent opcodes of the wire format.
	tests := []struct {
		kind exprkind.Kind
		op   int
	}{
		{exprkind.Add, 0},
		{exprkind.Sub, 1},
		{exprkind.Mul, 2},
		{exprkind.Div, 3},
		{exprkind.Mod, 4},
		{exprkind.Pow, 5},
		{exprkind.Less, 6},
		{exprkind.Min, 11},
		{exprkind.Max, 12},
		{exprkind.Floor, 13},
		{exprkind.Ceil, 14},
		{exprkind.Abs, 15},
		{exprkind.Minus, 16},
		{exprkind.Or, 20},
		{exprkind.And, 21},
		{exprkind.LT, 22},
		{exprkind.LE, 23},
		{exprkind.EQ, 24},
		{exprkind.GE, 28},
		{exprkind.GT, 29},
		{exprkind.NE, 30},
		{exprkind.Not, 34},
		{exprkind.If, 35},
		{exprkind.Sum, 54},
		{exprkind.IntDiv, 55},
		{exprkind.Count, 59},
		{exprkind.NumberOf, 60},
		{exprkind.AtLeast, 62},
		{exprkind.AtMost, 63},
		{exprkind.PLTerm, 64},
		{exprkind.SymbolicIf, 65},
		{exprkind.Exactly, 66},
		{exprkind.ForAll, 70},
		{exprkind.Exists, 71},
		{exprkind.Implication, 72},
		{exprkind.Iff, 73},
		{exprkind.AllDiff, 74},
		{exprkind.PowConstExp, 75},
		{exprkind.Pow2, 76},
		{exprkind.PowConstBase, 77},
		{exprkind.Call, 78},
		{exprkind.Number, 79},
		{exprkind.String, 80},
		{exprkind.Variable, 81},
		{exprkind.NotAllDiff, 82},
	}
	for _, test := range tests {
		if got := exprkind.Opcode(test.kind); got != test.op {
			t.Errorf("Opcode(%s) = %d but want %d", test.kind, got, test.op)
		}
	}
}

func TestStr(t *testing.T) {
	// Kinds of different classes can share a symbol.
	for _, k := range []exprkind.Kind{exprkind.Pow, exprkind.PowConstBase, exprkind.PowConstExp} {
		if got := exprkind.Str(k); got != "^" {
			t.Errorf("Str(%d) = %q but want %q", int(k), got, "^")
		}
	}
	if got := exprkind.Str(exprkind.Unknown); got != "unknown" {
		t.Errorf("Str(Unknown) = %q but want %q", got, "unknown")
	}
}

func TestFirstKindForOpcode(t *testing.T) {
	tests := []struct {
		op   int
		want exprkind.Kind
	}{
		{15, exprkind.FirstUnary},      // abs
		{55, exprkind.FirstBinary},     // div
		{12, exprkind.FirstVarArg},     // max
		{24, exprkind.FirstRelational}, // =
		{68, exprkind.FirstLogicalCount},
		{70, exprkind.FirstIteratedLogical},
		{82, exprkind.FirstPairwise},
		{54, exprkind.Sum},
		{35, exprkind.If},
		{8, exprkind.Unknown},
		{-1, exprkind.Unknown},
		{exprkind.MaxOpcode + 1, exprkind.Unknown},
	}
	for _, test := range tests {
		if got := exprkind.FirstKindForOpcode(test.op); got != test.want {
			t.Errorf("FirstKindForOpcode(%d) = %s but want %s", test.op, got, test.want)
		}
	}
}
