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

package nl_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpx-org/mpx/nl"
)

// headerHandler captures the parsed header and accepts nothing else.
type headerHandler struct {
	nl.NullHandler
	header nl.Header
}

func (h *headerHandler) BeginBuild(name string, header *nl.Header) error {
	h.header = *header
	return nil
}

// primeHeader fills every field with a distinct value.
func primeHeader() nl.Header {
	var h nl.Header
	h.NumOptions = 9
	h.Options = [nl.MaxOptions]int{2, 3, 5, 7, 11, 13, 17, 19, 23}
	h.AMPLVBTol = 1.23
	h.NumVars = 29
	h.NumAlgebraicCons = 47
	h.NumObjs = 37
	h.NumRanges = 41
	h.NumEqns = 43
	h.NumLogicalCons = 31
	h.NumNLCons = 53
	h.NumNLObjs = 59
	h.NumComplConds = 67
	h.NumNLComplConds = 61
	h.NumComplDblIneqs = 71
	h.NumComplVarsWithNZLB = 73
	h.NumNLNetCons = 79
	h.NumLinearNetCons = 83
	h.NumNLVarsInCons = 89
	h.NumNLVarsInObjs = 97
	h.NumNLVarsInBoth = 101
	h.NumLinearNetVars = 103
	h.NumFuncs = 107
	h.ArithKind = nl.ArithIEEELittleEndian
	h.Flags = 109
	h.NumLinearBinaryVars = 113
	h.NumLinearIntegerVars = 127
	h.NumNLIntegerVarsInBoth = 131
	h.NumNLIntegerVarsInCons = 137
	h.NumNLIntegerVarsInObjs = 139
	h.NumConNonzeros = 149
	h.NumObjNonzeros = 151
	h.MaxConNameLen = 157
	h.MaxVarNameLen = 163
	h.NumCommonExprsInBoth = 167
	h.NumCommonExprsInCons = 173
	h.NumCommonExprsInObjs = 179
	h.NumCommonExprsInSingleCons = 181
	h.NumCommonExprsInSingleObjs = 191
	return h
}

func TestWriteTextHeader(t *testing.T) {
	want := "g9 2 3 5 7 11 13 17 19 23 1.23\n" +
		" 29 47 37 41 43 31\n" +
		" 53 59 6 61 71 73\n" +
		" 79 83\n" +
		" 89 97 101\n" +
		" 103 107 0 109\n" +
		" 113 127 131 137 139\n" +
		" 149 151\n" +
		" 157 163\n" +
		" 167 173 179 181 191\n"
	header := primeHeader()
	if got := header.String(); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteBinaryHeader(t *testing.T) {
	var h nl.Header
	h.Format = nl.Binary
	h.NumOptions = 3
	h.Options[0], h.Options[1], h.Options[2] = 11, 22, 33
	h.ArithKind = nl.ArithCray
	want := "b3 11 22 33\n" +
		" 0 0 0 0 0 0\n" +
		" 0 0 0 0 0 0\n" +
		" 0 0\n" +
		" 0 0 0\n" +
		" 0 0 5 0\n" +
		" 0 0 0 0 0\n" +
		" 0 0\n" +
		" 0 0\n" +
		" 0 0 0 0 0\n"
	if got := h.String(); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

// replaceLine replaces the 0-based line of a header rendering.
func replaceLine(s string, index int, line string) string {
	lines := strings.Split(s, "\n")
	lines[index] = line
	return strings.Join(lines, "\n")
}

// parseHeader reads a header rendering and returns the parsed header.
func parseHeader(t *testing.T, s string) (nl.Header, error) {
	t.Helper()
	h := &headerHandler{}
	err := nl.ReadString(s, h, "(input)")
	return h.header, err
}

// readHeaderLine parses a zero header with one replaced line.
func readHeaderLine(t *testing.T, index int, line string) (nl.Header, error) {
	t.Helper()
	var zero nl.Header
	return parseHeader(t, replaceLine(zero.String(), index, line))
}

func expectHeaderError(t *testing.T, index int, line, want string) {
	t.Helper()
	_, err := readHeaderLine(t, index, line)
	if err == nil {
		t.Errorf("line %d = %q: no error, want %q", index, line, want)
		return
	}
	if err.Error() != want {
		t.Errorf("line %d = %q:\ngot error  %q\nwant error %q", index, line, err.Error(), want)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	headers := []nl.Header{
		{},
		primeHeader(),
	}
	// An unknown equation count round-trips as long as no logical
	// constraints follow it on the line.
	old := primeHeader()
	old.NumEqns = -1
	old.NumLogicalCons = 0
	headers = append(headers, old)
	for i, header := range headers {
		got, err := parseHeader(t, header.String())
		if err != nil {
			t.Errorf("header %d: %v", i, err)
			continue
		}
		// The writer does not persist the arithmetic kind of text
		// headers.
		want := header
		want.ArithKind = 0
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("header %d round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestInvalidFormat(t *testing.T) {
	expectHeaderError(t, 0, "x", "(input):1:1: expected format specifier")
	expectHeaderError(t, 0, "", "(input):1:1: expected format specifier")
}

func TestInvalidNumOptions(t *testing.T) {
	for _, line := range []string{"ga", "g-1"} {
		h, err := readHeaderLine(t, 0, line)
		if err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
		if h.NumOptions != 0 {
			t.Errorf("line %q: num options = %d", line, h.NumOptions)
		}
	}
	expectHeaderError(t, 0, "g10", "(input):1:2: too many options")
	expectHeaderError(t, 0, fmt.Sprintf("g%d", uint(math.MaxInt32)+1),
		"(input):1:2: number is too big")
}

func TestReadOptions(t *testing.T) {
	h, err := readHeaderLine(t, 0, "g3 5 7 11")
	if err != nil {
		t.Fatal(err)
	}
	if h.NumOptions != 3 || h.Options[0] != 5 || h.Options[1] != 7 || h.Options[2] != 11 {
		t.Errorf("got %d options %v", h.NumOptions, h.Options)
	}
	// Options stop at the first non-integer token.
	h, err = readHeaderLine(t, 0, "g3 5 x 11")
	if err != nil {
		t.Fatal(err)
	}
	if h.NumOptions != 3 || h.Options[0] != 5 || h.Options[1] != 0 {
		t.Errorf("got %d options %v", h.NumOptions, h.Options)
	}
	if h, _ := readHeaderLine(t, 0, "g"); h.NumOptions != 0 {
		t.Errorf("got %d options", h.NumOptions)
	}
}

func TestReadAMPLVBTol(t *testing.T) {
	tests := []struct {
		line string
		want float64
	}{
		{"g2 0 3 4.2", 4.2},
		{"g2 0 0 4.2", 0},
		{"g2 0 3", 0},
	}
	for _, test := range tests {
		h, err := readHeaderLine(t, 0, test.line)
		if err != nil {
			t.Fatalf("line %q: %v", test.line, err)
		}
		if h.AMPLVBTol != test.want {
			t.Errorf("line %q: vbtol = %g but want %g", test.line, h.AMPLVBTol, test.want)
		}
	}
}

func TestNumComplDblIneq(t *testing.T) {
	if h, _ := readHeaderLine(t, 2, " 0 0 0 0 42"); h.NumComplDblIneqs != 42 {
		t.Errorf("got %d but want 42", h.NumComplDblIneqs)
	}
	// Partially present complementarity counts are unusable.
	if h, _ := readHeaderLine(t, 2, " 0 0 70 0 42"); h.NumComplDblIneqs != -1 {
		t.Errorf("got %d but want -1", h.NumComplDblIneqs)
	}
}

func TestReadArithKind(t *testing.T) {
	for _, line := range []string{" 0 0", " 0 0 0", fmt.Sprintf(" 0 0 %d", int(nl.ArithLast))} {
		h, err := readHeaderLine(t, 5, line)
		if err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
		if h.Format != nl.Text {
			t.Errorf("line %q: format = %d", line, h.Format)
		}
	}
	expectHeaderError(t, 5, fmt.Sprintf(" 0 0 %d", int(nl.ArithLast)+1),
		"(input):6:6: unknown floating-point arithmetic kind")
}

func TestReadSwappedArithKind(t *testing.T) {
	var header nl.Header
	header.Format = nl.Binary
	swapped := nl.ArithKind(3 - int(nl.NativeArith()))
	s := replaceLine(header.String(), 5, fmt.Sprintf(" 0 0 %d 0", int(swapped)))
	h, err := parseHeader(t, s)
	if err != nil {
		t.Fatal(err)
	}
	if h.Format != nl.BinarySwapped {
		t.Errorf("format = %d but want swapped", h.Format)
	}
	// A non-IEEE kind cannot encode a binary body.
	s = replaceLine(header.String(), 5, fmt.Sprintf(" 0 0 %d 0", int(nl.ArithCray)))
	if _, err := parseHeader(t, s); err == nil ||
		err.Error() != "(input):6:6: unrecognized binary format" {
		t.Errorf("got error %v", err)
	}
}

func TestIncompleteHeader(t *testing.T) {
	if _, err := readHeaderLine(t, 0, "g"); err != nil {
		t.Error(err)
	}
	expectHeaderError(t, 0, "\n", "(input):1:1: expected format specifier")
	if _, err := readHeaderLine(t, 1, " 1 0 0"); err != nil {
		t.Error(err)
	}
	expectHeaderError(t, 1, " 1 0", "(input):2:5: expected unsigned integer")
	for i := 2; i <= 8; i++ {
		if i == 6 {
			continue
		}
		if _, err := readHeaderLine(t, i, " 0 0"); err != nil {
			t.Errorf("line %d: %v", i, err)
		}
		expectHeaderError(t, i, " 0",
			fmt.Sprintf("(input):%d:3: expected unsigned integer", i+1))
	}
	for _, i := range []int{6, 9} {
		expectHeaderError(t, i, " 0 0 0 0",
			fmt.Sprintf("(input):%d:9: expected unsigned integer", i+1))
	}
	// Without the nonlinear-vars-in-both count the discrete-variable
	// line shrinks to its first two fields.
	var zero nl.Header
	input := replaceLine(zero.String(), 4, " 0 0")
	if _, err := parseHeader(t, replaceLine(input, 6, " 0 0")); err != nil {
		t.Error(err)
	}
	if _, err := parseHeader(t, replaceLine(input, 6, " 0")); err == nil ||
		err.Error() != "(input):7:3: expected unsigned integer" {
		t.Errorf("got error %v", err)
	}
}

func TestReadHeaderIntegerOverflow(t *testing.T) {
	fields := []struct {
		set func(*nl.Header)
		col int
	}{
		{func(h *nl.Header) { h.NumCommonExprsInBoth = 1 }, 2},
		{func(h *nl.Header) { h.NumCommonExprsInCons = 1 }, 4},
		{func(h *nl.Header) { h.NumCommonExprsInObjs = 1 }, 6},
		{func(h *nl.Header) { h.NumCommonExprsInSingleCons = 1 }, 8},
		{func(h *nl.Header) { h.NumCommonExprsInSingleObjs = 1 }, 10},
	}
	for _, field := range fields {
		var h nl.Header
		h.NumVars = math.MaxInt32
		field.set(&h)
		err := nl.ReadString(h.String(), &headerHandler{}, "in")
		want := fmt.Sprintf("in:10:%d: integer overflow", field.col)
		if err == nil || err.Error() != want {
			t.Errorf("got error %v but want %q", err, want)
		}
	}
}
