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

// Package expr provides immutable expression trees for mathematical
// programming models and a factory constructing them.
//
// Expressions form two disjoint families, numeric and logical, joined by
// the common Expr supertype only where heterogeneous argument lists
// require it (function calls and symbolic conditionals). Every argument
// position of every node has a fixed family; the factory rejects
// constructions that violate it.
//
// Nodes are created by a Factory and shared by reference. A node is
// valid as long as the factory that created it.
package expr

import "github.com/mpx-org/mpx/expr/exprkind"

type (
	// Expr is an expression node.
	Expr interface {
		// Kind of the expression.
		Kind() exprkind.Kind

		// expr marks a structure as an expression node.
		// It prevents external implementations of the interface.
		expr()
	}

	// NumericExpr is an expression producing a numeric value.
	NumericExpr interface {
		Expr
		numericExpr()
	}

	// LogicalExpr is an expression producing a logical value.
	LogicalExpr interface {
		Expr
		logicalExpr()
	}
)

// FuncType is the type of a declared function.
type FuncType int

const (
	// FuncNumeric is a function accepting numeric arguments only.
	FuncNumeric FuncType = iota
	// FuncSymbolic is a function accepting numeric and string arguments.
	FuncSymbolic
)

// Function is a function declared for use in call expressions.
type Function struct {
	name    string
	numArgs int
	ftype   FuncType
}

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// NumArgs returns the declared number of arguments, or -1 if the
// function is variadic.
func (f *Function) NumArgs() int { return f.numArgs }

// Type returns the function type.
func (f *Function) Type() FuncType { return f.ftype }

// ----------------------------------------------------------------------------
// Numeric expressions.
type (
	// NumericConstant is a numeric constant such as 42 or -1.23e-4.
	NumericConstant struct {
		value float64
	}

	// Variable is a reference to a variable by zero-based index.
	Variable struct {
		index int
	}

	// CommonExprRef is a reference to a common expression (defined
	// variable) by zero-based index.
	CommonExprRef struct {
		index int
	}

	// UnaryExpr is a unary numeric expression such as -x or abs(x).
	UnaryExpr struct {
		kind exprkind.Kind
		arg  NumericExpr
	}

	// BinaryExpr is a binary numeric expression such as x + y.
	BinaryExpr struct {
		kind exprkind.Kind
		lhs  NumericExpr
		rhs  NumericExpr
	}

	// IfExpr is an if-then-else expression with numeric branches.
	IfExpr struct {
		condition LogicalExpr
		trueExpr  NumericExpr
		falseExpr NumericExpr
	}

	// PLTerm is a piecewise-linear term over a single variable:
	// n strictly increasing breakpoints and n+1 slopes.
	PLTerm struct {
		breakpoints []float64
		slopes      []float64
		arg         *Variable
	}

	// CallExpr is a function call with mixed numeric and string
	// arguments.
	CallExpr struct {
		function *Function
		args     []Expr
	}

	// IteratedExpr is an iterated numeric expression: min, max, sum
	// or numberof. The first argument of a numberof expression is the
	// value searched for.
	IteratedExpr struct {
		kind exprkind.Kind
		args []NumericExpr
	}

	// CountExpr counts the logical arguments that hold.
	CountExpr struct {
		args []LogicalExpr
	}
)

// Kind returns exprkind.Number.
func (*NumericConstant) Kind() exprkind.Kind { return exprkind.Number }

// Value returns the value of the constant.
func (e *NumericConstant) Value() float64 { return e.value }

// Kind returns exprkind.Variable.
func (*Variable) Kind() exprkind.Kind { return exprkind.Variable }

// Index returns the zero-based variable index.
func (e *Variable) Index() int { return e.index }

// Kind returns exprkind.CommonExpr.
func (*CommonExprRef) Kind() exprkind.Kind { return exprkind.CommonExpr }

// Index returns the zero-based common expression index.
func (e *CommonExprRef) Index() int { return e.index }

// Kind returns the kind of the unary expression.
func (e *UnaryExpr) Kind() exprkind.Kind { return e.kind }

// Arg returns the argument of the expression.
func (e *UnaryExpr) Arg() NumericExpr { return e.arg }

// Kind returns the kind of the binary expression.
func (e *BinaryExpr) Kind() exprkind.Kind { return e.kind }

// LHS returns the left-hand side of the expression.
func (e *BinaryExpr) LHS() NumericExpr { return e.lhs }

// RHS returns the right-hand side of the expression.
func (e *BinaryExpr) RHS() NumericExpr { return e.rhs }

// Kind returns exprkind.If.
func (*IfExpr) Kind() exprkind.Kind { return exprkind.If }

// Condition returns the condition of the expression.
func (e *IfExpr) Condition() LogicalExpr { return e.condition }

// TrueExpr returns the value of the expression when the condition holds.
func (e *IfExpr) TrueExpr() NumericExpr { return e.trueExpr }

// FalseExpr returns the value of the expression when the condition
// does not hold.
func (e *IfExpr) FalseExpr() NumericExpr { return e.falseExpr }

// Kind returns exprkind.PLTerm.
func (*PLTerm) Kind() exprkind.Kind { return exprkind.PLTerm }

// NumBreakpoints returns the number of breakpoints.
func (e *PLTerm) NumBreakpoints() int { return len(e.breakpoints) }

// Breakpoint returns the i-th breakpoint.
func (e *PLTerm) Breakpoint(i int) float64 { return e.breakpoints[i] }

// NumSlopes returns the number of slopes, one more than the number of
// breakpoints.
func (e *PLTerm) NumSlopes() int { return len(e.slopes) }

// Slope returns the i-th slope.
func (e *PLTerm) Slope(i int) float64 { return e.slopes[i] }

// Arg returns the variable the term applies to.
func (e *PLTerm) Arg() *Variable { return e.arg }

// Kind returns exprkind.Call.
func (*CallExpr) Kind() exprkind.Kind { return exprkind.Call }

// Function returns the called function.
func (e *CallExpr) Function() *Function { return e.function }

// NumArgs returns the number of call arguments.
func (e *CallExpr) NumArgs() int { return len(e.args) }

// Arg returns the i-th call argument, numeric or string.
func (e *CallExpr) Arg(i int) Expr { return e.args[i] }

// Kind returns the kind of the iterated expression.
func (e *IteratedExpr) Kind() exprkind.Kind { return e.kind }

// NumArgs returns the number of arguments.
func (e *IteratedExpr) NumArgs() int { return len(e.args) }

// Arg returns the i-th argument.
func (e *IteratedExpr) Arg(i int) NumericExpr { return e.args[i] }

// Args returns all arguments in order.
func (e *IteratedExpr) Args() []NumericExpr { return e.args }

// Kind returns exprkind.Count.
func (*CountExpr) Kind() exprkind.Kind { return exprkind.Count }

// NumArgs returns the number of arguments.
func (e *CountExpr) NumArgs() int { return len(e.args) }

// Arg returns the i-th argument.
func (e *CountExpr) Arg(i int) LogicalExpr { return e.args[i] }

// Args returns all arguments in order.
func (e *CountExpr) Args() []LogicalExpr { return e.args }

// ----------------------------------------------------------------------------
// Logical expressions.
type (
	// LogicalConstant is a logical constant, false or true.
	LogicalConstant struct {
		value bool
	}

	// NotExpr is logical negation.
	NotExpr struct {
		arg LogicalExpr
	}

	// BinaryLogicalExpr is a binary logical expression: or, and, iff.
	BinaryLogicalExpr struct {
		kind exprkind.Kind
		lhs  LogicalExpr
		rhs  LogicalExpr
	}

	// RelationalExpr compares two numeric expressions.
	RelationalExpr struct {
		kind exprkind.Kind
		lhs  NumericExpr
		rhs  NumericExpr
	}

	// LogicalCountExpr relates a numeric expression to a count:
	// atleast, atmost, exactly and their negations.
	LogicalCountExpr struct {
		kind  exprkind.Kind
		lhs   NumericExpr
		count *CountExpr
	}

	// ImplicationExpr is "condition ==> trueExpr else falseExpr".
	ImplicationExpr struct {
		condition LogicalExpr
		trueExpr  LogicalExpr
		falseExpr LogicalExpr
	}

	// IteratedLogicalExpr is an iterated logical expression:
	// exists or forall.
	IteratedLogicalExpr struct {
		kind exprkind.Kind
		args []LogicalExpr
	}

	// PairwiseExpr asserts that its arguments are pairwise different
	// (alldiff) or not (!alldiff).
	PairwiseExpr struct {
		kind exprkind.Kind
		args []NumericExpr
	}
)

// Kind returns exprkind.Bool.
func (*LogicalConstant) Kind() exprkind.Kind { return exprkind.Bool }

// Value returns the value of the constant.
func (e *LogicalConstant) Value() bool { return e.value }

// Kind returns exprkind.Not.
func (*NotExpr) Kind() exprkind.Kind { return exprkind.Not }

// Arg returns the negated expression.
func (e *NotExpr) Arg() LogicalExpr { return e.arg }

// Kind returns the kind of the binary logical expression.
func (e *BinaryLogicalExpr) Kind() exprkind.Kind { return e.kind }

// LHS returns the left-hand side of the expression.
func (e *BinaryLogicalExpr) LHS() LogicalExpr { return e.lhs }

// RHS returns the right-hand side of the expression.
func (e *BinaryLogicalExpr) RHS() LogicalExpr { return e.rhs }

// Kind returns the kind of the relational expression.
func (e *RelationalExpr) Kind() exprkind.Kind { return e.kind }

// LHS returns the left-hand side of the comparison.
func (e *RelationalExpr) LHS() NumericExpr { return e.lhs }

// RHS returns the right-hand side of the comparison.
func (e *RelationalExpr) RHS() NumericExpr { return e.rhs }

// Kind returns the kind of the logical count expression.
func (e *LogicalCountExpr) Kind() exprkind.Kind { return e.kind }

// LHS returns the numeric left-hand side.
func (e *LogicalCountExpr) LHS() NumericExpr { return e.lhs }

// Count returns the count expression the left-hand side is compared to.
func (e *LogicalCountExpr) Count() *CountExpr { return e.count }

// Kind returns exprkind.Implication.
func (*ImplicationExpr) Kind() exprkind.Kind { return exprkind.Implication }

// Condition returns the antecedent of the implication.
func (e *ImplicationExpr) Condition() LogicalExpr { return e.condition }

// TrueExpr returns the consequent of the implication.
func (e *ImplicationExpr) TrueExpr() LogicalExpr { return e.trueExpr }

// FalseExpr returns the alternative of the implication.
func (e *ImplicationExpr) FalseExpr() LogicalExpr { return e.falseExpr }

// Kind returns the kind of the iterated logical expression.
func (e *IteratedLogicalExpr) Kind() exprkind.Kind { return e.kind }

// NumArgs returns the number of arguments.
func (e *IteratedLogicalExpr) NumArgs() int { return len(e.args) }

// Arg returns the i-th argument.
func (e *IteratedLogicalExpr) Arg(i int) LogicalExpr { return e.args[i] }

// Args returns all arguments in order.
func (e *IteratedLogicalExpr) Args() []LogicalExpr { return e.args }

// Kind returns the kind of the pairwise expression.
func (e *PairwiseExpr) Kind() exprkind.Kind { return e.kind }

// NumArgs returns the number of arguments.
func (e *PairwiseExpr) NumArgs() int { return len(e.args) }

// Arg returns the i-th argument.
func (e *PairwiseExpr) Arg(i int) NumericExpr { return e.args[i] }

// Args returns all arguments in order.
func (e *PairwiseExpr) Args() []NumericExpr { return e.args }

// ----------------------------------------------------------------------------
// String expressions.
type (
	// StringLiteral is a byte string. The value may contain NUL bytes
	// and newlines.
	StringLiteral struct {
		value string
	}

	// SymbolicIfExpr is an if-then-else expression whose branches can
	// be numeric or string expressions.
	SymbolicIfExpr struct {
		condition LogicalExpr
		trueExpr  Expr
		falseExpr Expr
	}
)

// Kind returns exprkind.String.
func (*StringLiteral) Kind() exprkind.Kind { return exprkind.String }

// Value returns the literal bytes.
func (e *StringLiteral) Value() string { return e.value }

// Kind returns exprkind.SymbolicIf.
func (*SymbolicIfExpr) Kind() exprkind.Kind { return exprkind.SymbolicIf }

// Condition returns the condition of the expression.
func (e *SymbolicIfExpr) Condition() LogicalExpr { return e.condition }

// TrueExpr returns the value of the expression when the condition holds.
func (e *SymbolicIfExpr) TrueExpr() Expr { return e.trueExpr }

// FalseExpr returns the value of the expression when the condition
// does not hold.
func (e *SymbolicIfExpr) FalseExpr() Expr { return e.falseExpr }

// ----------------------------------------------------------------------------
// Family markers.

func (*NumericConstant) expr() {}
func (*Variable) expr()        {}
func (*CommonExprRef) expr()   {}
func (*UnaryExpr) expr()       {}
func (*BinaryExpr) expr()      {}
func (*IfExpr) expr()          {}
func (*PLTerm) expr()          {}
func (*CallExpr) expr()        {}
func (*IteratedExpr) expr()    {}
func (*CountExpr) expr()       {}

func (*NumericConstant) numericExpr() {}
func (*Variable) numericExpr()        {}
func (*CommonExprRef) numericExpr()   {}
func (*UnaryExpr) numericExpr()       {}
func (*BinaryExpr) numericExpr()      {}
func (*IfExpr) numericExpr()          {}
func (*PLTerm) numericExpr()          {}
func (*CallExpr) numericExpr()        {}
func (*IteratedExpr) numericExpr()    {}
func (*CountExpr) numericExpr()       {}

func (*LogicalConstant) expr()     {}
func (*NotExpr) expr()             {}
func (*BinaryLogicalExpr) expr()   {}
func (*RelationalExpr) expr()      {}
func (*LogicalCountExpr) expr()    {}
func (*ImplicationExpr) expr()     {}
func (*IteratedLogicalExpr) expr() {}
func (*PairwiseExpr) expr()        {}

func (*LogicalConstant) logicalExpr()     {}
func (*NotExpr) logicalExpr()             {}
func (*BinaryLogicalExpr) logicalExpr()   {}
func (*RelationalExpr) logicalExpr()      {}
func (*LogicalCountExpr) logicalExpr()    {}
func (*ImplicationExpr) logicalExpr()     {}
func (*IteratedLogicalExpr) logicalExpr() {}
func (*PairwiseExpr) logicalExpr()        {}

func (*StringLiteral) expr()  {}
func (*SymbolicIfExpr) expr() {}

// IsZero returns true if e is the numeric constant 0.
func IsZero(e NumericExpr) bool {
	c, ok := e.(*NumericConstant)
	return ok && c.value == 0
}
