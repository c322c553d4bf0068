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

// Equal returns true if two expressions are structurally equal.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case *NumericConstant:
		return a.value == b.(*NumericConstant).value
	case *Variable:
		return a.index == b.(*Variable).index
	case *CommonExprRef:
		return a.index == b.(*CommonExprRef).index
	case *UnaryExpr:
		return Equal(a.arg, b.(*UnaryExpr).arg)
	case *BinaryExpr:
		b := b.(*BinaryExpr)
		return Equal(a.lhs, b.lhs) && Equal(a.rhs, b.rhs)
	case *IfExpr:
		b := b.(*IfExpr)
		return Equal(a.condition, b.condition) &&
			Equal(a.trueExpr, b.trueExpr) && Equal(a.falseExpr, b.falseExpr)
	case *PLTerm:
		b := b.(*PLTerm)
		if len(a.breakpoints) != len(b.breakpoints) {
			return false
		}
		for i, bp := range a.breakpoints {
			if bp != b.breakpoints[i] {
				return false
			}
		}
		for i, s := range a.slopes {
			if s != b.slopes[i] {
				return false
			}
		}
		return a.arg.index == b.arg.index
	case *CallExpr:
		b := b.(*CallExpr)
		if a.function != b.function || len(a.args) != len(b.args) {
			return false
		}
		return equalExprs(a.args, b.args)
	case *IteratedExpr:
		return equalNumericExprs(a.args, b.(*IteratedExpr).args)
	case *CountExpr:
		return equalLogicalExprs(a.args, b.(*CountExpr).args)
	case *LogicalConstant:
		return a.value == b.(*LogicalConstant).value
	case *NotExpr:
		return Equal(a.arg, b.(*NotExpr).arg)
	case *BinaryLogicalExpr:
		b := b.(*BinaryLogicalExpr)
		return Equal(a.lhs, b.lhs) && Equal(a.rhs, b.rhs)
	case *RelationalExpr:
		b := b.(*RelationalExpr)
		return Equal(a.lhs, b.lhs) && Equal(a.rhs, b.rhs)
	case *LogicalCountExpr:
		b := b.(*LogicalCountExpr)
		return Equal(a.lhs, b.lhs) && Equal(a.count, b.count)
	case *ImplicationExpr:
		b := b.(*ImplicationExpr)
		return Equal(a.condition, b.condition) &&
			Equal(a.trueExpr, b.trueExpr) && Equal(a.falseExpr, b.falseExpr)
	case *IteratedLogicalExpr:
		return equalLogicalExprs(a.args, b.(*IteratedLogicalExpr).args)
	case *PairwiseExpr:
		return equalNumericExprs(a.args, b.(*PairwiseExpr).args)
	case *StringLiteral:
		return a.value == b.(*StringLiteral).value
	case *SymbolicIfExpr:
		b := b.(*SymbolicIfExpr)
		return Equal(a.condition, b.condition) &&
			Equal(a.trueExpr, b.trueExpr) && Equal(a.falseExpr, b.falseExpr)
	}
	return false
}

func equalExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalNumericExprs(a, b []NumericExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalLogicalExprs(a, b []LogicalExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
