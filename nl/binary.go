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
	"encoding/binary"
	"math"
)

// binaryLexer tokenizes the binary body of an .nl file. Record tags
// stay single ASCII bytes; integer payloads are fixed-width two's
// complement and floating-point payloads are IEEE-754 doubles, both in
// the byte order announced by the header's arithmetic kind. The header
// itself is always text and is consumed by a textLexer before the
// binary lexer takes over.
type binaryLexer struct {
	data  string
	name  string
	pos   int
	tok   int
	order binary.ByteOrder
}

func newBinaryLexer(data, name string, pos int, swapped bool) *binaryLexer {
	var order binary.ByteOrder = binary.NativeEndian
	if swapped {
		if NativeArith() == ArithIEEELittleEndian {
			order = binary.BigEndian
		} else {
			order = binary.LittleEndian
		}
	}
	return &binaryLexer{data: data, name: name, pos: pos, order: order}
}

func (lx *binaryLexer) fileName() string { return lx.name }
func (lx *binaryLexer) tokenStart() int  { return lx.tok }
func (lx *binaryLexer) offset() int      { return lx.pos }

func (lx *binaryLexer) eof() bool { return lx.pos >= len(lx.data) }

func (lx *binaryLexer) errorAtf(offset int, format string, args ...any) error {
	return positionedErrorf(lx.name, lx.data, offset, format, args...)
}

func (lx *binaryLexer) errorf(format string, args ...any) error {
	return lx.errorAtf(lx.tok, format, args...)
}

func (lx *binaryLexer) readChar() (byte, error) {
	if lx.pos >= len(lx.data) {
		return 0, lx.errorAtf(lx.pos, "unexpected end of file")
	}
	lx.tok = lx.pos
	c := lx.data[lx.pos]
	lx.pos++
	return c, nil
}

func (lx *binaryLexer) peekChar() (byte, bool) {
	if lx.pos >= len(lx.data) {
		return 0, false
	}
	return lx.data[lx.pos], true
}

func (lx *binaryLexer) readBytes(n int) ([]byte, error) {
	if lx.pos+n > len(lx.data) {
		return nil, lx.errorAtf(lx.pos, "unexpected end of file")
	}
	b := []byte(lx.data[lx.pos : lx.pos+n])
	lx.tok = lx.pos
	lx.pos += n
	return b, nil
}

func (lx *binaryLexer) readInt32() (int32, error) {
	b, err := lx.readBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(lx.order.Uint32(b)), nil
}

func (lx *binaryLexer) readUInt() (int, error) {
	value, err := lx.readInt32()
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, lx.errorf("expected unsigned integer")
	}
	return int(value), nil
}

func (lx *binaryLexer) readOptionalUInt(v *int) (bool, error) {
	if lx.eof() {
		return false, nil
	}
	value, err := lx.readUInt()
	if err != nil {
		return false, err
	}
	*v = value
	return true, nil
}

func (lx *binaryLexer) readInt() (int, error) {
	value, err := lx.readInt32()
	return int(value), err
}

func (lx *binaryLexer) readDouble() (float64, error) {
	b, err := lx.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(lx.order.Uint64(b)), nil
}

func (lx *binaryLexer) readOptionalDouble(v *float64) (bool, error) {
	if lx.eof() {
		return false, nil
	}
	value, err := lx.readDouble()
	if err != nil {
		return false, err
	}
	*v = value
	return true, nil
}

func (lx *binaryLexer) readConstant(tag byte) (float64, error) {
	switch tag {
	case 'n':
		return lx.readDouble()
	case 's':
		b, err := lx.readBytes(2)
		if err != nil {
			return 0, err
		}
		return float64(int16(lx.order.Uint16(b))), nil
	case 'l':
		b, err := lx.readBytes(8)
		if err != nil {
			return 0, err
		}
		return float64(int64(lx.order.Uint64(b))), nil
	}
	return 0, lx.errorf("expected constant")
}

func (lx *binaryLexer) readCounted() (string, error) {
	length, err := lx.readUInt()
	if err != nil {
		return "", err
	}
	b, err := lx.readBytes(length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (lx *binaryLexer) readName() (string, error) {
	return lx.readCounted()
}

func (lx *binaryLexer) readStringLiteral() (string, error) {
	return lx.readCounted()
}

// readTillEndOfLine is a no-op: binary records carry no terminators.
func (lx *binaryLexer) readTillEndOfLine() error { return nil }
