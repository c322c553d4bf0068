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

package nl

import (
	"fmt"
	"strconv"
	"strings"
)

// Format of the body of an .nl file.
type Format int

const (
	// Text is the ASCII format.
	Text Format = iota
	// Binary is the binary format in the reader's byte order.
	Binary
	// BinarySwapped is the binary format in the opposite byte order.
	BinarySwapped
)

// MaxOptions is the maximum number of options in the first header line.
const MaxOptions = 9

// ReadVBTol is the option value requesting that the variable bound
// tolerance follows the options.
const ReadVBTol = 3

// vbtolOption is the index of the option controlling ReadVBTol.
const vbtolOption = 1

// WantOutputSuffixes is the header flag asking solvers to return
// output suffixes.
const WantOutputSuffixes = 1

// Header is the problem-dimension preamble of an .nl file: ten lines
// carrying the sizes every consumer needs before the body starts.
type Header struct {
	Format     Format
	NumOptions int
	Options    [MaxOptions]int

	// AMPLVBTol is the variable bound tolerance, present when
	// Options[1] == ReadVBTol.
	AMPLVBTol float64

	NumVars          int
	NumAlgebraicCons int
	NumObjs          int
	NumRanges        int
	// NumEqns is the number of equality constraints, or -1 if unknown
	// (AMPL prior to 19970627).
	NumEqns        int
	NumLogicalCons int

	NumNLCons     int
	NumNLObjs     int
	NumComplConds int
	// NumNLComplConds is the number of nonlinear complementarity
	// conditions, included in NumComplConds.
	NumNLComplConds      int
	NumComplDblIneqs     int
	NumComplVarsWithNZLB int

	NumNLNetCons     int
	NumLinearNetCons int

	NumNLVarsInCons int
	NumNLVarsInObjs int
	// NumNLVarsInBoth is the number of nonlinear variables in both
	// constraints and objectives, or -1 for files written before the
	// field existed.
	NumNLVarsInBoth int

	NumLinearNetVars int
	NumFuncs         int
	ArithKind        ArithKind
	Flags            int

	NumLinearBinaryVars    int
	NumLinearIntegerVars   int
	NumNLIntegerVarsInBoth int
	NumNLIntegerVarsInCons int
	NumNLIntegerVarsInObjs int

	NumConNonzeros int
	NumObjNonzeros int

	MaxConNameLen int
	MaxVarNameLen int

	NumCommonExprsInBoth       int
	NumCommonExprsInCons       int
	NumCommonExprsInObjs       int
	NumCommonExprsInSingleCons int
	NumCommonExprsInSingleObjs int
}

// NumIntegerVars returns the number of integer variables, binary
// variables included.
func (h *Header) NumIntegerVars() int {
	return h.NumLinearBinaryVars + h.NumLinearIntegerVars +
		h.NumNLIntegerVarsInBoth + h.NumNLIntegerVarsInCons +
		h.NumNLIntegerVarsInObjs
}

// NumContinuousVars returns the number of continuous variables.
func (h *Header) NumContinuousVars() int {
	return h.NumVars - h.NumIntegerVars()
}

// NumCommonExprs returns the total number of common expressions.
func (h *Header) NumCommonExprs() int {
	return h.NumCommonExprsInBoth + h.NumCommonExprsInCons +
		h.NumCommonExprsInObjs + h.NumCommonExprsInSingleCons +
		h.NumCommonExprsInSingleObjs
}

// String renders the header in its canonical ten-line form.
// Parsing the result reproduces the header.
func (h *Header) String() string {
	var sb strings.Builder
	if h.Format == Text {
		sb.WriteByte('g')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteString(strconv.Itoa(h.NumOptions))
	for i := 0; i < h.NumOptions && i < MaxOptions; i++ {
		fmt.Fprintf(&sb, " %d", h.Options[i])
	}
	if h.Options[vbtolOption] == ReadVBTol {
		fmt.Fprintf(&sb, " %s", strconv.FormatFloat(h.AMPLVBTol, 'g', -1, 64))
	}
	sb.WriteByte('\n')
	arith := 0
	if h.Format != Text {
		arith = int(h.ArithKind)
	}
	fmt.Fprintf(&sb, " %d %d %d %d %d %d\n",
		h.NumVars, h.NumAlgebraicCons, h.NumObjs,
		h.NumRanges, h.NumEqns, h.NumLogicalCons)
	fmt.Fprintf(&sb, " %d %d %d %d %d %d\n",
		h.NumNLCons, h.NumNLObjs,
		h.NumComplConds-h.NumNLComplConds,
		h.NumNLComplConds, h.NumComplDblIneqs,
		h.NumComplVarsWithNZLB)
	fmt.Fprintf(&sb, " %d %d\n", h.NumNLNetCons, h.NumLinearNetCons)
	fmt.Fprintf(&sb, " %d %d %d\n",
		h.NumNLVarsInCons, h.NumNLVarsInObjs, h.NumNLVarsInBoth)
	fmt.Fprintf(&sb, " %d %d %d %d\n",
		h.NumLinearNetVars, h.NumFuncs, arith, h.Flags)
	fmt.Fprintf(&sb, " %d %d %d %d %d\n",
		h.NumLinearBinaryVars, h.NumLinearIntegerVars,
		h.NumNLIntegerVarsInBoth, h.NumNLIntegerVarsInCons,
		h.NumNLIntegerVarsInObjs)
	fmt.Fprintf(&sb, " %d %d\n", h.NumConNonzeros, h.NumObjNonzeros)
	fmt.Fprintf(&sb, " %d %d\n", h.MaxConNameLen, h.MaxVarNameLen)
	fmt.Fprintf(&sb, " %d %d %d %d %d\n",
		h.NumCommonExprsInBoth, h.NumCommonExprsInCons,
		h.NumCommonExprsInObjs, h.NumCommonExprsInSingleCons,
		h.NumCommonExprsInSingleObjs)
	return sb.String()
}
