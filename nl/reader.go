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

// Package nl reads optimization problems in the AMPL .nl interchange
// format.
//
// The reader is a streaming parser: it consumes the ten-line header
// and the tagged body segments of a text or binary .nl file and
// dispatches structured build events to a Handler. It keeps no model
// of its own; the handler decides what to retain. Reading never backs
// up, and every failure carries the file name, line and column of the
// offending input.
package nl

import (
	"math"
	"os"
	"strings"

	"github.com/mpx-org/mpx/base/safeint"
	"github.com/mpx-org/mpx/expr"
	"github.com/mpx-org/mpx/expr/exprkind"
)

// ReadString parses the .nl model in data and dispatches build events
// to handler. name appears in error messages; an empty name reads as
// "(input)".
func ReadString(data string, handler Handler, name string) error {
	if name == "" {
		name = "(input)"
	}
	r := &reader{handler: handler}
	return r.read(data, name)
}

// ReadFile reads the .nl file at path, appending the .nl extension if
// path is a stub without it, and dispatches build events to handler.
func ReadFile(path string, handler Handler) error {
	if !strings.HasSuffix(path, ".nl") {
		path += ".nl"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return ReadString(string(data), handler, path)
}

type reader struct {
	lx      lexer
	handler Handler
	header  Header
	// totalVars is num_vars plus the number of common expressions:
	// references at or beyond num_vars denote common expressions.
	totalVars int
}

func (r *reader) read(data, name string) error {
	tlx := newTextLexer(data, name)
	r.lx = tlx
	if err := r.readHeader(tlx); err != nil {
		return err
	}
	if err := r.handler.BeginBuild(name, &r.header); err != nil {
		return err
	}
	if r.header.Format != Text {
		r.lx = newBinaryLexer(data, name, tlx.offset(), r.header.Format == BinarySwapped)
	}
	if err := r.readBody(); err != nil {
		return err
	}
	return r.handler.EndBuild()
}

// ----------------------------------------------------------------------------
// Header. The header is always text, even for binary files.

func (r *reader) readHeader(lx *textLexer) error {
	h := &r.header

	// Format and options.
	c, err := lx.readChar()
	if err != nil {
		return lx.errorf("expected format specifier")
	}
	switch c {
	case 'g':
	case 'b':
		h.Format = Binary
	default:
		return lx.errorf("expected format specifier")
	}
	if ok, err := lx.readOptionalUInt(&h.NumOptions); err != nil {
		return err
	} else if ok && h.NumOptions > MaxOptions {
		return lx.errorf("too many options")
	}
	for i := 0; i < h.NumOptions; i++ {
		if ok, err := lx.readOptionalInt(&h.Options[i]); err != nil {
			return err
		} else if !ok {
			break
		}
	}
	if h.Options[vbtolOption] == ReadVBTol {
		if _, err := lx.readOptionalDouble(&h.AMPLVBTol); err != nil {
			return err
		}
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Problem dimensions.
	if err := readUInts(lx, &h.NumVars, &h.NumAlgebraicCons, &h.NumObjs); err != nil {
		return err
	}
	h.NumEqns = -1
	if ok, err := lx.readOptionalUInt(&h.NumRanges); err != nil {
		return err
	} else if ok {
		if ok, err := lx.readOptionalUInt(&h.NumEqns); err != nil {
			return err
		} else if ok {
			if _, err := lx.readOptionalUInt(&h.NumLogicalCons); err != nil {
				return err
			}
		}
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Nonlinear and complementarity information.
	if err := readUInts(lx, &h.NumNLCons, &h.NumNLObjs); err != nil {
		return err
	}
	allCompl := true
	for _, v := range []*int{
		&h.NumComplConds, &h.NumNLComplConds,
		&h.NumComplDblIneqs, &h.NumComplVarsWithNZLB,
	} {
		ok, err := lx.readOptionalUInt(v)
		if err != nil {
			return err
		}
		allCompl = allCompl && ok
	}
	h.NumComplConds += h.NumNLComplConds
	if h.NumComplConds > 0 && !allCompl {
		h.NumComplDblIneqs = -1
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Network constraints.
	if err := readUInts(lx, &h.NumNLNetCons, &h.NumLinearNetCons); err != nil {
		return err
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Nonlinear variables.
	if err := readUInts(lx, &h.NumNLVarsInCons, &h.NumNLVarsInObjs); err != nil {
		return err
	}
	h.NumNLVarsInBoth = -1
	if _, err := lx.readOptionalUInt(&h.NumNLVarsInBoth); err != nil {
		return err
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Linear network variables, functions and arithmetic kind.
	if err := readUInts(lx, &h.NumLinearNetVars, &h.NumFuncs); err != nil {
		return err
	}
	arith := 0
	if ok, err := lx.readOptionalUInt(&arith); err != nil {
		return err
	} else if ok {
		if arith > int(ArithLast) {
			return lx.errorf("unknown floating-point arithmetic kind")
		}
		h.ArithKind = ArithKind(arith)
		if h.Format != Text && arith != 0 && h.ArithKind != NativeArith() {
			if h.ArithKind.IsIEEE() && arith+int(NativeArith()) == 3 {
				h.Format = BinarySwapped
			} else {
				return lx.errorf("unrecognized binary format")
			}
		}
		if _, err := lx.readOptionalUInt(&h.Flags); err != nil {
			return err
		}
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Discrete variables.
	if err := readUInts(lx, &h.NumLinearBinaryVars, &h.NumLinearIntegerVars); err != nil {
		return err
	}
	if h.NumNLVarsInBoth >= 0 { // ampl versions >= 19930630
		if err := readUInts(lx, &h.NumNLIntegerVarsInBoth,
			&h.NumNLIntegerVarsInCons, &h.NumNLIntegerVarsInObjs); err != nil {
			return err
		}
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Nonzeros.
	if err := readUInts(lx, &h.NumConNonzeros, &h.NumObjNonzeros); err != nil {
		return err
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Name lengths.
	if err := readUInts(lx, &h.MaxConNameLen, &h.MaxVarNameLen); err != nil {
		return err
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}

	// Common expressions. The total index space num_vars + common
	// expressions must fit a 32-bit index, checked field by field so
	// that the error points at the overflowing count.
	total := int32(h.NumVars)
	for _, v := range []*int{
		&h.NumCommonExprsInBoth, &h.NumCommonExprsInCons,
		&h.NumCommonExprsInObjs, &h.NumCommonExprsInSingleCons,
		&h.NumCommonExprsInSingleObjs,
	} {
		value, err := lx.readUInt()
		if err != nil {
			return err
		}
		*v = value
		if total, err = safeint.Add(total, int32(value)); err != nil {
			return lx.errorf("integer overflow")
		}
	}
	if err := lx.readTillEndOfLine(); err != nil {
		return err
	}
	r.totalVars = int(total)
	return nil
}

func readUInts(lx *textLexer, fields ...*int) error {
	for _, f := range fields {
		value, err := lx.readUInt()
		if err != nil {
			return err
		}
		*f = value
	}
	return nil
}

// ----------------------------------------------------------------------------
// Body segments.

func (r *reader) readBody() error {
	for !r.lx.eof() {
		c, err := r.lx.readChar()
		if err != nil {
			return err
		}
		switch c {
		case 'C':
			err = r.readConExpr()
		case 'O':
			err = r.readObj()
		case 'L':
			err = r.readLogicalCon()
		case 'V':
			err = r.readCommonExpr()
		case 'F':
			err = r.readFunction()
		case 'G':
			err = r.readLinearTerms('G')
		case 'J':
			err = r.readLinearTerms('J')
		case 'S':
			err = r.readSuffix()
		case 'r':
			err = r.readConBounds()
		case 'b':
			err = r.readVarBounds()
		case 'k':
			err = r.readColumnSizes(true)
		case 'K':
			err = r.readColumnSizes(false)
		case 'x':
			err = r.readInitialValues(true)
		case 'd':
			err = r.readInitialValues(false)
		default:
			err = r.lx.errorf("invalid segment type")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readIndex(bound int) (int, error) {
	index, err := r.lx.readUInt()
	if err != nil {
		return 0, err
	}
	if index >= bound {
		return 0, r.lx.errorf("integer %d out of bounds", index)
	}
	return index, nil
}

func (r *reader) readConExpr() error {
	index, err := r.readIndex(r.header.NumAlgebraicCons)
	if err != nil {
		return err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	e, err := r.readNumericExpr()
	if err != nil {
		return err
	}
	return r.handler.SetCon(index, e)
}

func (r *reader) readObj() error {
	index, err := r.readIndex(r.header.NumObjs)
	if err != nil {
		return err
	}
	senseValue, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	sense := ObjMin
	if senseValue != 0 {
		sense = ObjMax
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	e, err := r.readNumericExpr()
	if err != nil {
		return err
	}
	return r.handler.SetObj(index, sense, e)
}

func (r *reader) readLogicalCon() error {
	index, err := r.readIndex(r.header.NumLogicalCons)
	if err != nil {
		return err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	e, err := r.readLogicalExpr()
	if err != nil {
		return err
	}
	return r.handler.SetLogicalCon(index, e)
}

func (r *reader) readCommonExpr() error {
	index, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if index < r.header.NumVars || index >= r.totalVars {
		return r.lx.errorf("integer %d out of bounds", index)
	}
	numLinear, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	position, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	if numLinear > 0 {
		tb, err := r.handler.LinearCommonExprTerms(index-r.header.NumVars, numLinear)
		if err != nil {
			return err
		}
		if err := r.readTerms(tb, numLinear, r.totalVars); err != nil {
			return err
		}
	}
	e, err := r.readNumericExpr()
	if err != nil {
		return err
	}
	return r.handler.SetCommonExpr(index-r.header.NumVars, e, position)
}

func (r *reader) readFunction() error {
	index, err := r.readIndex(r.header.NumFuncs)
	if err != nil {
		return err
	}
	ftype, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if ftype != 0 && ftype != 1 {
		return r.lx.errorf("invalid function type")
	}
	numArgs, err := r.lx.readInt()
	if err != nil {
		return err
	}
	name, err := r.lx.readName()
	if err != nil {
		return err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	return r.handler.SetFunction(index, name, numArgs, expr.FuncType(ftype))
}

func (r *reader) readLinearTerms(segment byte) error {
	bound := r.header.NumObjs
	if segment == 'J' {
		bound = r.header.NumAlgebraicCons
	}
	index, err := r.readIndex(bound)
	if err != nil {
		return err
	}
	numTerms, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if numTerms < 1 || numTerms > r.header.NumVars {
		return r.lx.errorf("integer %d out of bounds", numTerms)
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	var tb TermBuilder
	if segment == 'J' {
		tb, err = r.handler.LinearConTerms(index, numTerms)
	} else {
		tb, err = r.handler.LinearObjTerms(index, numTerms)
	}
	if err != nil {
		return err
	}
	return r.readTerms(tb, numTerms, r.header.NumVars)
}

func (r *reader) readTerms(tb TermBuilder, numTerms, varBound int) error {
	for i := 0; i < numTerms; i++ {
		varIndex, err := r.readIndex(varBound)
		if err != nil {
			return err
		}
		coef, err := r.lx.readDouble()
		if err != nil {
			return err
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return err
		}
		if err := tb.AddTerm(varIndex, coef); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) suffixItemCount(kind int) int {
	switch kind & SuffixKindMask {
	case SuffixVar:
		return r.header.NumVars
	case SuffixCon:
		return r.header.NumAlgebraicCons
	case SuffixObj:
		return r.header.NumObjs
	}
	return 1
}

func (r *reader) readSuffix() error {
	kind, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if kind > SuffixKindMask|SuffixFloat {
		return r.lx.errorf("invalid suffix kind")
	}
	itemCount := r.suffixItemCount(kind)
	numValues, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if numValues < 1 || numValues > itemCount {
		return r.lx.errorf("integer %d out of bounds", numValues)
	}
	name, err := r.lx.readName()
	if err != nil {
		return err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	sb, err := r.handler.AddSuffix(kind, numValues, name)
	if err != nil {
		return err
	}
	for i := 0; i < numValues; i++ {
		index, err := r.readIndex(itemCount)
		if err != nil {
			return err
		}
		if kind&SuffixFloat != 0 {
			value, err := r.lx.readDouble()
			if err != nil {
				return err
			}
			if err := sb.SetDblValue(index, value); err != nil {
				return err
			}
		} else {
			value, err := r.lx.readInt()
			if err != nil {
				return err
			}
			if err := sb.SetIntValue(index, value); err != nil {
				return err
			}
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readConBounds() error {
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	for i := 0; i < r.header.NumAlgebraicCons; i++ {
		boundType, err := r.lx.readUInt()
		if err != nil {
			return err
		}
		if boundType == 5 {
			// Complementarity: the constraint complements a variable.
			flags, err := r.lx.readUInt()
			if err != nil {
				return err
			}
			varIndex, err := r.lx.readUInt()
			if err != nil {
				return err
			}
			if varIndex < 1 || varIndex > r.header.NumVars {
				return r.lx.errorf("integer %d out of bounds", varIndex)
			}
			if err := r.lx.readTillEndOfLine(); err != nil {
				return err
			}
			if err := r.handler.SetComplement(i, varIndex-1, flags&(ComplInfLB|ComplInfUB)); err != nil {
				return err
			}
			continue
		}
		lb, ub, err := r.readBounds(boundType)
		if err != nil {
			return err
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return err
		}
		if err := r.handler.SetConBounds(i, lb, ub); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readVarBounds() error {
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	for i := 0; i < r.header.NumVars; i++ {
		boundType, err := r.lx.readUInt()
		if err != nil {
			return err
		}
		lb, ub, err := r.readBounds(boundType)
		if err != nil {
			return err
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return err
		}
		if err := r.handler.SetVarBounds(i, lb, ub); err != nil {
			return err
		}
	}
	return nil
}

// readBounds reads the payload of one bound record. Types: 0 range,
// 1 upper bound only, 2 lower bound only, 3 free, 4 equality.
func (r *reader) readBounds(boundType int) (lb, ub float64, err error) {
	infinity := math.Inf(1)
	switch boundType {
	case 0:
		if lb, err = r.lx.readDouble(); err != nil {
			return
		}
		ub, err = r.lx.readDouble()
	case 1:
		lb = -infinity
		ub, err = r.lx.readDouble()
	case 2:
		ub = infinity
		lb, err = r.lx.readDouble()
	case 3:
		lb, ub = -infinity, infinity
	case 4:
		if lb, err = r.lx.readDouble(); err != nil {
			return
		}
		ub = lb
	default:
		err = r.lx.errorf("invalid bound type")
	}
	return
}

func (r *reader) readColumnSizes(cumulative bool) error {
	numSizes, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if expected := r.header.NumVars - 1; numSizes != expected {
		return r.lx.errorf("expected %d", expected)
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	csb, err := r.handler.ColumnSizes()
	if err != nil {
		return err
	}
	prev := 0
	for i := 0; i < numSizes; i++ {
		value, err := r.lx.readUInt()
		if err != nil {
			return err
		}
		size := value
		if cumulative {
			if value < prev {
				return r.lx.errorf("invalid column offset")
			}
			size = value - prev
			prev = value
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return err
		}
		if err := csb.Add(size); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readInitialValues(primal bool) error {
	itemCount := r.header.NumVars
	if !primal {
		itemCount = r.header.NumAlgebraicCons
	}
	numValues, err := r.lx.readUInt()
	if err != nil {
		return err
	}
	if numValues > itemCount {
		return r.lx.errorf("too many initial values")
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return err
	}
	for i := 0; i < numValues; i++ {
		index, err := r.readIndex(itemCount)
		if err != nil {
			return err
		}
		value, err := r.lx.readDouble()
		if err != nil {
			return err
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return err
		}
		if primal {
			err = r.handler.SetInitialValue(index, value)
		} else {
			err = r.handler.SetInitialDualValue(index, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Expressions. The grammar is prefix: a tag character identifies a
// leaf or an operator; variadic operators carry their argument count
// on the following line.

func (r *reader) readNumArgs(min int, message string) (int, error) {
	numArgs, err := r.lx.readUInt()
	if err != nil {
		return 0, err
	}
	if numArgs < min {
		return 0, r.lx.errorf("%s", message)
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return 0, err
	}
	return numArgs, nil
}

func (r *reader) readNumericExpr() (expr.NumericExpr, error) {
	c, err := r.lx.readChar()
	if err != nil {
		return nil, err
	}
	return r.readNumericExprTag(c)
}

func (r *reader) readNumericExprTag(c byte) (expr.NumericExpr, error) {
	switch c {
	case 'n', 's', 'l':
		value, err := r.lx.readConstant(c)
		if err != nil {
			return nil, err
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return nil, err
		}
		return r.handler.MakeNumericConstant(value)
	case 'v':
		return r.readReference()
	case 'f':
		return r.readCall()
	case 'o':
		kind, err := r.readOpcode()
		if err != nil {
			return nil, err
		}
		if !kind.IsNumeric() {
			return nil, r.lx.errorf("expected numeric expression opcode")
		}
		return r.readNumericOp(kind)
	}
	return nil, r.lx.errorf("expected expression")
}

func (r *reader) readReference() (expr.NumericExpr, error) {
	index, err := r.readIndex(r.totalVars)
	if err != nil {
		return nil, err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return nil, err
	}
	if index < r.header.NumVars {
		return r.handler.MakeVariable(index)
	}
	return r.handler.MakeCommonExprRef(index - r.header.NumVars)
}

// readOpcode reads and validates an operator opcode, returning its
// kind. Leaf kinds never appear as operator tags.
func (r *reader) readOpcode() (exprkind.Kind, error) {
	opcode, err := r.lx.readUInt()
	if err != nil {
		return exprkind.Unknown, err
	}
	kind := exprkind.KindForOpcode(opcode)
	if kind == exprkind.Unknown || kind.IsLeaf() {
		return exprkind.Unknown, r.lx.errorf("invalid opcode %d", opcode)
	}
	if kind == exprkind.NumberOfSym {
		return exprkind.Unknown, r.lx.errorf("unsupported expression: %s", exprkind.Str(kind))
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return exprkind.Unknown, err
	}
	return kind, nil
}

func (r *reader) readNumericOp(kind exprkind.Kind) (expr.NumericExpr, error) {
	switch {
	case kind.IsUnary():
		arg, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeUnary(kind, arg)
	case kind.IsBinary():
		lhs, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		rhs, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeBinary(kind, lhs, rhs)
	case kind == exprkind.If:
		condition, err := r.readLogicalExpr()
		if err != nil {
			return nil, err
		}
		trueExpr, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		falseExpr, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeIf(condition, trueExpr, falseExpr)
	case kind == exprkind.PLTerm:
		return r.readPLTerm()
	case kind.IsVarArg():
		numArgs, err := r.readNumArgs(1, "too few arguments")
		if err != nil {
			return nil, err
		}
		b, err := r.handler.BeginVarArg(kind, numArgs)
		if err != nil {
			return nil, err
		}
		if err := r.readNumericArgs(b, numArgs); err != nil {
			return nil, err
		}
		return r.handler.EndVarArg(b)
	case kind == exprkind.Sum:
		numArgs, err := r.readNumArgs(3, "too few arguments")
		if err != nil {
			return nil, err
		}
		b, err := r.handler.BeginSum(numArgs)
		if err != nil {
			return nil, err
		}
		if err := r.readNumericArgs(b, numArgs); err != nil {
			return nil, err
		}
		return r.handler.EndSum(b)
	case kind == exprkind.Count:
		return r.readCount()
	case kind == exprkind.NumberOf:
		numArgs, err := r.readNumArgs(1, "too few arguments")
		if err != nil {
			return nil, err
		}
		value, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		b, err := r.handler.BeginNumberOf(numArgs, value)
		if err != nil {
			return nil, err
		}
		if err := r.readNumericArgs(b, numArgs-1); err != nil {
			return nil, err
		}
		return r.handler.EndNumberOf(b)
	}
	return nil, r.lx.errorf("expected numeric expression opcode")
}

func (r *reader) readNumericArgs(b NumericArgBuilder, numArgs int) error {
	for i := 0; i < numArgs; i++ {
		arg, err := r.readNumericExpr()
		if err != nil {
			return err
		}
		if err := b.AddArg(arg); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readLogicalArgs(b LogicalArgBuilder, numArgs int) error {
	for i := 0; i < numArgs; i++ {
		arg, err := r.readLogicalExpr()
		if err != nil {
			return err
		}
		if err := b.AddArg(arg); err != nil {
			return err
		}
	}
	return nil
}

// readCount reads a count expression body: its opcode is already
// consumed.
func (r *reader) readCount() (expr.NumericExpr, error) {
	numArgs, err := r.readNumArgs(1, "too few arguments")
	if err != nil {
		return nil, err
	}
	b, err := r.handler.BeginCount(numArgs)
	if err != nil {
		return nil, err
	}
	if err := r.readLogicalArgs(b, numArgs); err != nil {
		return nil, err
	}
	return r.handler.EndCount(b)
}

func (r *reader) readPLTerm() (expr.NumericExpr, error) {
	numSlopes, err := r.readNumArgs(2, "too few slopes in piecewise-linear term")
	if err != nil {
		return nil, err
	}
	b, err := r.handler.BeginPLTerm(numSlopes - 1)
	if err != nil {
		return nil, err
	}
	// Slopes and breakpoints interleave: slope, breakpoint, ..., slope.
	for i := 0; i < 2*numSlopes-1; i++ {
		c, err := r.lx.readChar()
		if err != nil {
			return nil, err
		}
		if c != 'n' && c != 's' && c != 'l' {
			return nil, r.lx.errorf("expected constant")
		}
		value, err := r.lx.readConstant(c)
		if err != nil {
			return nil, err
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return nil, err
		}
		if i%2 == 0 {
			err = b.AddSlope(value)
		} else {
			err = b.AddBreakpoint(value)
		}
		if err != nil {
			return nil, err
		}
	}
	c, err := r.lx.readChar()
	if err != nil {
		return nil, err
	}
	if c != 'v' {
		return nil, r.lx.errorf("expected variable")
	}
	index, err := r.readIndex(r.header.NumVars)
	if err != nil {
		return nil, err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return nil, err
	}
	arg, err := r.handler.MakeVariable(index)
	if err != nil {
		return nil, err
	}
	return r.handler.EndPLTerm(b, arg)
}

func (r *reader) readCall() (expr.NumericExpr, error) {
	funcIndex, err := r.readIndex(r.header.NumFuncs)
	if err != nil {
		return nil, err
	}
	numArgs, err := r.lx.readUInt()
	if err != nil {
		return nil, err
	}
	if err := r.lx.readTillEndOfLine(); err != nil {
		return nil, err
	}
	b, err := r.handler.BeginCall(funcIndex, numArgs)
	if err != nil {
		return nil, err
	}
	for i := 0; i < numArgs; i++ {
		arg, err := r.readSymbolicExpr()
		if err != nil {
			return nil, err
		}
		if err := b.AddArg(arg); err != nil {
			return nil, err
		}
	}
	return r.handler.EndCall(b)
}

// readSymbolicExpr reads a call argument or a symbolic branch: a
// string literal, a symbolic if, or a numeric expression.
func (r *reader) readSymbolicExpr() (expr.Expr, error) {
	c, err := r.lx.readChar()
	if err != nil {
		return nil, err
	}
	switch c {
	case 'h':
		value, err := r.lx.readStringLiteral()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeStringLiteral(value)
	case 'o':
		opcodeStart := r.lx.offset()
		kind, err := r.readOpcode()
		if err != nil {
			return nil, err
		}
		if kind == exprkind.SymbolicIf {
			return r.readSymbolicIf()
		}
		if !kind.IsNumeric() {
			return nil, r.lx.errorAtf(opcodeStart, "expected numeric expression opcode")
		}
		return r.readNumericOp(kind)
	}
	return r.readNumericExprTag(c)
}

func (r *reader) readSymbolicIf() (expr.Expr, error) {
	condition, err := r.readLogicalExpr()
	if err != nil {
		return nil, err
	}
	trueExpr, err := r.readSymbolicExpr()
	if err != nil {
		return nil, err
	}
	falseExpr, err := r.readSymbolicExpr()
	if err != nil {
		return nil, err
	}
	return r.handler.MakeSymbolicIf(condition, trueExpr, falseExpr)
}

func (r *reader) readLogicalExpr() (expr.LogicalExpr, error) {
	c, err := r.lx.readChar()
	if err != nil {
		return nil, err
	}
	switch c {
	case 'n', 's', 'l':
		value, err := r.lx.readConstant(c)
		if err != nil {
			return nil, err
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return nil, err
		}
		return r.handler.MakeLogicalConstant(value != 0)
	case 'o':
		kind, err := r.readOpcode()
		if err != nil {
			return nil, err
		}
		if !kind.IsLogical() {
			return nil, r.lx.errorf("expected logical expression opcode")
		}
		return r.readLogicalOp(kind)
	}
	return nil, r.lx.errorf("expected logical expression")
}

func (r *reader) readLogicalOp(kind exprkind.Kind) (expr.LogicalExpr, error) {
	switch {
	case kind == exprkind.Not:
		arg, err := r.readLogicalExpr()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeNot(arg)
	case kind.IsBinaryLogical():
		lhs, err := r.readLogicalExpr()
		if err != nil {
			return nil, err
		}
		rhs, err := r.readLogicalExpr()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeBinaryLogical(kind, lhs, rhs)
	case kind.IsRelational():
		lhs, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		rhs, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeRelational(kind, lhs, rhs)
	case kind.IsLogicalCount():
		lhs, err := r.readNumericExpr()
		if err != nil {
			return nil, err
		}
		c, err := r.lx.readChar()
		if err != nil {
			return nil, err
		}
		if c != 'o' {
			return nil, r.lx.errorf("expected count expression")
		}
		opcode, err := r.lx.readUInt()
		if err != nil {
			return nil, err
		}
		if exprkind.KindForOpcode(opcode) != exprkind.Count {
			return nil, r.lx.errorf("expected count expression opcode")
		}
		if err := r.lx.readTillEndOfLine(); err != nil {
			return nil, err
		}
		count, err := r.readCount()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeLogicalCount(kind, lhs, count)
	case kind == exprkind.Implication:
		condition, err := r.readLogicalExpr()
		if err != nil {
			return nil, err
		}
		trueExpr, err := r.readLogicalExpr()
		if err != nil {
			return nil, err
		}
		falseExpr, err := r.readLogicalExpr()
		if err != nil {
			return nil, err
		}
		return r.handler.MakeImplication(condition, trueExpr, falseExpr)
	case kind.IsIteratedLogical():
		numArgs, err := r.readNumArgs(3, "too few arguments")
		if err != nil {
			return nil, err
		}
		b, err := r.handler.BeginIteratedLogical(kind, numArgs)
		if err != nil {
			return nil, err
		}
		if err := r.readLogicalArgs(b, numArgs); err != nil {
			return nil, err
		}
		return r.handler.EndIteratedLogical(b)
	case kind.IsPairwise():
		numArgs, err := r.readNumArgs(3, "too few arguments")
		if err != nil {
			return nil, err
		}
		b, err := r.handler.BeginPairwise(kind, numArgs)
		if err != nil {
			return nil, err
		}
		if err := r.readNumericArgs(b, numArgs); err != nil {
			return nil, err
		}
		return r.handler.EndPairwise(b)
	}
	return nil, r.lx.errorf("expected logical expression opcode")
}
