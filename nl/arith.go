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

import "encoding/binary"

// ArithKind identifies the floating-point arithmetic a binary .nl file
// was written with. Zero stands for the writer's native arithmetic.
type ArithKind int

// Arithmetic kinds.
const (
	ArithUnknown ArithKind = iota
	ArithIEEEBigEndian
	ArithIEEELittleEndian
	ArithIBM
	ArithVAX
	ArithCray

	// ArithLast is the largest valid arithmetic kind.
	ArithLast = ArithCray
)

// IsIEEE returns true if k is an IEEE-754 arithmetic kind.
func (k ArithKind) IsIEEE() bool {
	return k == ArithIEEEBigEndian || k == ArithIEEELittleEndian
}

// NativeArith returns the IEEE arithmetic kind of this machine.
func NativeArith() ArithKind {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return ArithIEEELittleEndian
	}
	return ArithIEEEBigEndian
}
