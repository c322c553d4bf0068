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
	log "github.com/golang/glog"

	"github.com/mpx-org/mpx/base/ordered"
	"github.com/mpx-org/mpx/expr/exprkind"
)

// Factory constructs expression nodes and owns the function registry.
// Passing a kind outside the bucket an operation declares, a nil
// argument, or completing a builder with the wrong number of elements is
// a programmer error and aborts the process.
//
// A Factory must not be copied after first use. Nodes remain valid as
// long as the factory they came from.
type Factory struct {
	funcs *ordered.Map[string, *Function]
}

// NewFactory returns a new expression factory.
func NewFactory() *Factory {
	return &Factory{funcs: ordered.NewMap[string, *Function]()}
}

// AddFunction declares a function. numArgs is the number of arguments
// the function accepts, or -1 if the function is variadic. Declaring a
// name again returns the reference created by the first declaration.
func (f *Factory) AddFunction(name string, numArgs int, ftype FuncType) *Function {
	fn, _ := f.funcs.LoadOrStore(name, &Function{name: name, numArgs: numArgs, ftype: ftype})
	return fn
}

// Function returns the function declared under name, or nil.
func (f *Factory) Function(name string) *Function {
	fn, _ := f.funcs.Load(name)
	return fn
}

func checkKind(k exprkind.Kind, ok bool, op string) {
	if !ok {
		log.Fatalf("%s: invalid expression kind %q", op, k)
	}
}

func checkArg(arg Expr, op string) {
	if arg == nil {
		log.Fatalf("%s: nil argument", op)
	}
}

// MakeNumericConstant returns a numeric constant node.
func (f *Factory) MakeNumericConstant(value float64) *NumericConstant {
	return &NumericConstant{value: value}
}

// MakeVariable returns a reference to the variable at index.
func (f *Factory) MakeVariable(index int) *Variable {
	if index < 0 {
		log.Fatalf("MakeVariable: negative index %d", index)
	}
	return &Variable{index: index}
}

// MakeCommonExprRef returns a reference to the common expression at index.
func (f *Factory) MakeCommonExprRef(index int) *CommonExprRef {
	if index < 0 {
		log.Fatalf("MakeCommonExprRef: negative index %d", index)
	}
	return &CommonExprRef{index: index}
}

// MakeUnary returns a unary expression of the given kind.
func (f *Factory) MakeUnary(kind exprkind.Kind, arg NumericExpr) *UnaryExpr {
	checkKind(kind, kind.IsUnary(), "MakeUnary")
	checkArg(arg, "MakeUnary")
	return &UnaryExpr{kind: kind, arg: arg}
}

// MakeBinary returns a binary expression of the given kind.
func (f *Factory) MakeBinary(kind exprkind.Kind, lhs, rhs NumericExpr) *BinaryExpr {
	checkKind(kind, kind.IsBinary(), "MakeBinary")
	checkArg(lhs, "MakeBinary")
	checkArg(rhs, "MakeBinary")
	return &BinaryExpr{kind: kind, lhs: lhs, rhs: rhs}
}

// MakeIf returns an if-then-else expression with numeric branches.
func (f *Factory) MakeIf(condition LogicalExpr, trueExpr, falseExpr NumericExpr) *IfExpr {
	checkArg(condition, "MakeIf")
	checkArg(trueExpr, "MakeIf")
	checkArg(falseExpr, "MakeIf")
	return &IfExpr{condition: condition, trueExpr: trueExpr, falseExpr: falseExpr}
}

// MakeLogicalConstant returns a logical constant node.
func (f *Factory) MakeLogicalConstant(value bool) *LogicalConstant {
	return &LogicalConstant{value: value}
}

// MakeNot returns the negation of arg.
func (f *Factory) MakeNot(arg LogicalExpr) *NotExpr {
	checkArg(arg, "MakeNot")
	return &NotExpr{arg: arg}
}

// MakeBinaryLogical returns a binary logical expression of the given kind.
func (f *Factory) MakeBinaryLogical(kind exprkind.Kind, lhs, rhs LogicalExpr) *BinaryLogicalExpr {
	checkKind(kind, kind.IsBinaryLogical(), "MakeBinaryLogical")
	checkArg(lhs, "MakeBinaryLogical")
	checkArg(rhs, "MakeBinaryLogical")
	return &BinaryLogicalExpr{kind: kind, lhs: lhs, rhs: rhs}
}

// MakeRelational returns a relational expression of the given kind.
func (f *Factory) MakeRelational(kind exprkind.Kind, lhs, rhs NumericExpr) *RelationalExpr {
	checkKind(kind, kind.IsRelational(), "MakeRelational")
	checkArg(lhs, "MakeRelational")
	checkArg(rhs, "MakeRelational")
	return &RelationalExpr{kind: kind, lhs: lhs, rhs: rhs}
}

// MakeLogicalCount returns a logical count expression of the given kind.
func (f *Factory) MakeLogicalCount(kind exprkind.Kind, lhs NumericExpr, count *CountExpr) *LogicalCountExpr {
	checkKind(kind, kind.IsLogicalCount(), "MakeLogicalCount")
	checkArg(lhs, "MakeLogicalCount")
	checkArg(count, "MakeLogicalCount")
	return &LogicalCountExpr{kind: kind, lhs: lhs, count: count}
}

// MakeImplication returns an implication expression.
func (f *Factory) MakeImplication(condition, trueExpr, falseExpr LogicalExpr) *ImplicationExpr {
	checkArg(condition, "MakeImplication")
	checkArg(trueExpr, "MakeImplication")
	checkArg(falseExpr, "MakeImplication")
	return &ImplicationExpr{condition: condition, trueExpr: trueExpr, falseExpr: falseExpr}
}

// MakeStringLiteral returns a string literal node. The value may
// contain NUL bytes and newlines.
func (f *Factory) MakeStringLiteral(value string) *StringLiteral {
	return &StringLiteral{value: value}
}

// MakeSymbolicIf returns an if-then-else expression with symbolic
// branches.
func (f *Factory) MakeSymbolicIf(condition LogicalExpr, trueExpr, falseExpr Expr) *SymbolicIfExpr {
	checkArg(condition, "MakeSymbolicIf")
	checkArg(trueExpr, "MakeSymbolicIf")
	checkArg(falseExpr, "MakeSymbolicIf")
	return &SymbolicIfExpr{condition: condition, trueExpr: trueExpr, falseExpr: falseExpr}
}

// ----------------------------------------------------------------------------
// Builders for variadic expressions. A builder bounds-checks additions
// against the arity declared to Begin* and is consumed exactly once by
// the matching End*.

// PLTermBuilder builds a piecewise-linear term. Slopes and breakpoints
// are added in interleaved order: slope, breakpoint, slope, ...
type PLTermBuilder struct {
	term           *PLTerm
	numBreakpoints int
}

// BeginPLTerm starts building a piecewise-linear term with
// numBreakpoints breakpoints and numBreakpoints+1 slopes.
func (f *Factory) BeginPLTerm(numBreakpoints int) *PLTermBuilder {
	if numBreakpoints < 1 {
		log.Fatalf("BeginPLTerm: too few breakpoints: %d", numBreakpoints)
	}
	return &PLTermBuilder{
		term: &PLTerm{
			breakpoints: make([]float64, 0, numBreakpoints),
			slopes:      make([]float64, 0, numBreakpoints+1),
		},
		numBreakpoints: numBreakpoints,
	}
}

// AddSlope adds the next slope.
func (b *PLTermBuilder) AddSlope(slope float64) {
	if len(b.term.slopes) > b.numBreakpoints {
		log.Fatalf("AddSlope: too many slopes")
	}
	b.term.slopes = append(b.term.slopes, slope)
}

// AddBreakpoint adds the next breakpoint.
func (b *PLTermBuilder) AddBreakpoint(breakpoint float64) {
	if len(b.term.breakpoints) >= b.numBreakpoints {
		log.Fatalf("AddBreakpoint: too many breakpoints")
	}
	b.term.breakpoints = append(b.term.breakpoints, breakpoint)
}

// EndPLTerm completes the term over the given variable.
func (f *Factory) EndPLTerm(b *PLTermBuilder, arg *Variable) *PLTerm {
	checkArg(arg, "EndPLTerm")
	if len(b.term.breakpoints) != b.numBreakpoints {
		log.Fatalf("EndPLTerm: %d breakpoints but want %d", len(b.term.breakpoints), b.numBreakpoints)
	}
	if len(b.term.slopes) != b.numBreakpoints+1 {
		log.Fatalf("EndPLTerm: %d slopes but want %d", len(b.term.slopes), b.numBreakpoints+1)
	}
	term := b.term
	b.term = nil
	term.arg = arg
	return term
}

// CallExprBuilder builds a function call expression.
type CallExprBuilder struct {
	call    *CallExpr
	numArgs int
}

// BeginCall starts building a call of fn with numArgs arguments.
// A non-variadic function demands exactly its declared arity.
func (f *Factory) BeginCall(fn *Function, numArgs int) *CallExprBuilder {
	if fn == nil {
		log.Fatalf("BeginCall: nil function")
	}
	if fn.numArgs >= 0 && fn.numArgs != numArgs {
		log.Fatalf("BeginCall: function %s expects %d arguments, got %d", fn.name, fn.numArgs, numArgs)
	}
	return &CallExprBuilder{
		call:    &CallExpr{function: fn, args: make([]Expr, 0, numArgs)},
		numArgs: numArgs,
	}
}

// AddArg adds the next call argument, numeric or string.
func (b *CallExprBuilder) AddArg(arg Expr) {
	checkArg(arg, "CallExprBuilder.AddArg")
	if len(b.call.args) >= b.numArgs {
		log.Fatalf("CallExprBuilder.AddArg: too many arguments")
	}
	b.call.args = append(b.call.args, arg)
}

// EndCall completes the call expression.
func (f *Factory) EndCall(b *CallExprBuilder) *CallExpr {
	if len(b.call.args) != b.numArgs {
		log.Fatalf("EndCall: %d arguments but want %d", len(b.call.args), b.numArgs)
	}
	call := b.call
	b.call = nil
	return call
}

// IteratedExprBuilder builds an iterated numeric expression.
type IteratedExprBuilder struct {
	expr    *IteratedExpr
	numArgs int
}

// BeginIterated starts building an iterated expression: min, max or
// sum. Min and max demand at least one argument.
func (f *Factory) BeginIterated(kind exprkind.Kind, numArgs int) *IteratedExprBuilder {
	checkKind(kind, kind.IsVarArg() || kind == exprkind.Sum, "BeginIterated")
	if kind.IsVarArg() && numArgs < 1 {
		log.Fatalf("BeginIterated: %s: too few arguments: %d", kind, numArgs)
	}
	if numArgs < 0 {
		log.Fatalf("BeginIterated: negative argument count %d", numArgs)
	}
	return &IteratedExprBuilder{
		expr:    &IteratedExpr{kind: kind, args: make([]NumericExpr, 0, numArgs)},
		numArgs: numArgs,
	}
}

// BeginNumberOf starts building a numberof expression searching for
// firstArg among numArgs-1 further arguments.
func (f *Factory) BeginNumberOf(numArgs int, firstArg NumericExpr) *IteratedExprBuilder {
	checkArg(firstArg, "BeginNumberOf")
	if numArgs < 1 {
		log.Fatalf("BeginNumberOf: too few arguments: %d", numArgs)
	}
	b := &IteratedExprBuilder{
		expr:    &IteratedExpr{kind: exprkind.NumberOf, args: make([]NumericExpr, 0, numArgs)},
		numArgs: numArgs,
	}
	b.expr.args = append(b.expr.args, firstArg)
	return b
}

// AddArg adds the next argument.
func (b *IteratedExprBuilder) AddArg(arg NumericExpr) {
	checkArg(arg, "IteratedExprBuilder.AddArg")
	if len(b.expr.args) >= b.numArgs {
		log.Fatalf("IteratedExprBuilder.AddArg: too many arguments")
	}
	b.expr.args = append(b.expr.args, arg)
}

// EndIterated completes the iterated expression.
func (f *Factory) EndIterated(b *IteratedExprBuilder) *IteratedExpr {
	if len(b.expr.args) != b.numArgs {
		log.Fatalf("EndIterated: %d arguments but want %d", len(b.expr.args), b.numArgs)
	}
	e := b.expr
	b.expr = nil
	return e
}

// CountExprBuilder builds a count expression.
type CountExprBuilder struct {
	expr    *CountExpr
	numArgs int
}

// BeginCount starts building a count expression with numArgs arguments.
func (f *Factory) BeginCount(numArgs int) *CountExprBuilder {
	if numArgs < 0 {
		log.Fatalf("BeginCount: negative argument count %d", numArgs)
	}
	return &CountExprBuilder{
		expr:    &CountExpr{args: make([]LogicalExpr, 0, numArgs)},
		numArgs: numArgs,
	}
}

// AddArg adds the next argument.
func (b *CountExprBuilder) AddArg(arg LogicalExpr) {
	checkArg(arg, "CountExprBuilder.AddArg")
	if len(b.expr.args) >= b.numArgs {
		log.Fatalf("CountExprBuilder.AddArg: too many arguments")
	}
	b.expr.args = append(b.expr.args, arg)
}

// EndCount completes the count expression.
func (f *Factory) EndCount(b *CountExprBuilder) *CountExpr {
	if len(b.expr.args) != b.numArgs {
		log.Fatalf("EndCount: %d arguments but want %d", len(b.expr.args), b.numArgs)
	}
	e := b.expr
	b.expr = nil
	return e
}

// IteratedLogicalExprBuilder builds an iterated logical expression.
type IteratedLogicalExprBuilder struct {
	expr    *IteratedLogicalExpr
	numArgs int
}

// BeginIteratedLogical starts building an exists or forall expression.
func (f *Factory) BeginIteratedLogical(kind exprkind.Kind, numArgs int) *IteratedLogicalExprBuilder {
	checkKind(kind, kind.IsIteratedLogical(), "BeginIteratedLogical")
	if numArgs < 1 {
		log.Fatalf("BeginIteratedLogical: too few arguments: %d", numArgs)
	}
	return &IteratedLogicalExprBuilder{
		expr:    &IteratedLogicalExpr{kind: kind, args: make([]LogicalExpr, 0, numArgs)},
		numArgs: numArgs,
	}
}

// AddArg adds the next argument.
func (b *IteratedLogicalExprBuilder) AddArg(arg LogicalExpr) {
	checkArg(arg, "IteratedLogicalExprBuilder.AddArg")
	if len(b.expr.args) >= b.numArgs {
		log.Fatalf("IteratedLogicalExprBuilder.AddArg: too many arguments")
	}
	b.expr.args = append(b.expr.args, arg)
}

// EndIteratedLogical completes the iterated logical expression.
func (f *Factory) EndIteratedLogical(b *IteratedLogicalExprBuilder) *IteratedLogicalExpr {
	if len(b.expr.args) != b.numArgs {
		log.Fatalf("EndIteratedLogical: %d arguments but want %d", len(b.expr.args), b.numArgs)
	}
	e := b.expr
	b.expr = nil
	return e
}

// PairwiseExprBuilder builds an alldiff or !alldiff expression.
type PairwiseExprBuilder struct {
	expr    *PairwiseExpr
	numArgs int
}

// BeginPairwise starts building a pairwise expression.
func (f *Factory) BeginPairwise(kind exprkind.Kind, numArgs int) *PairwiseExprBuilder {
	checkKind(kind, kind.IsPairwise(), "BeginPairwise")
	if numArgs < 1 {
		log.Fatalf("BeginPairwise: too few arguments: %d", numArgs)
	}
	return &PairwiseExprBuilder{
		expr:    &PairwiseExpr{kind: kind, args: make([]NumericExpr, 0, numArgs)},
		numArgs: numArgs,
	}
}

// AddArg adds the next argument.
func (b *PairwiseExprBuilder) AddArg(arg NumericExpr) {
	checkArg(arg, "PairwiseExprBuilder.AddArg")
	if len(b.expr.args) >= b.numArgs {
		log.Fatalf("PairwiseExprBuilder.AddArg: too many arguments")
	}
	b.expr.args = append(b.expr.args, arg)
}

// EndPairwise completes the pairwise expression.
func (f *Factory) EndPairwise(b *PairwiseExprBuilder) *PairwiseExpr {
	if len(b.expr.args) != b.numArgs {
		log.Fatalf("EndPairwise: %d arguments but want %d", len(b.expr.args), b.numArgs)
	}
	e := b.expr
	b.expr = nil
	return e
}
