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

package problem

import (
	"github.com/pkg/errors"

	"github.com/mpx-org/mpx/nl"
)

// Suffix is a named annotation on variables, constraints, objectives
// or the whole problem, exchanging solver-specific side data. Values
// are integers or floating-point numbers depending on the nl.SuffixFloat
// flag in Kind.
type Suffix struct {
	Name string
	// Kind combines the item kind with the modal flags.
	Kind      int
	IntValues []int
	DblValues []float64
}

// IsFloat returns true if the suffix carries floating-point values.
func (s *Suffix) IsFloat() bool { return s.Kind&nl.SuffixFloat != 0 }

// SuffixSet holds the suffixes of one item kind, unique by name.
type SuffixSet struct {
	suffixes map[string]*Suffix
}

// Find returns the suffix declared under name, or nil.
func (s *SuffixSet) Find(name string) *Suffix {
	return s.suffixes[name]
}

// Len returns the number of suffixes in the set.
func (s *SuffixSet) Len() int { return len(s.suffixes) }

// add declares a suffix and returns a builder filling its values.
// Value storage is dense over the itemCount items of the kind;
// indexes missing from the input stay zero.
func (s *SuffixSet) add(kind, itemCount int, name string) (nl.SuffixBuilder, error) {
	if s.suffixes == nil {
		s.suffixes = make(map[string]*Suffix)
	}
	if _, ok := s.suffixes[name]; ok {
		return nil, errors.Errorf("duplicate suffix %q", name)
	}
	suffix := &Suffix{Name: name, Kind: kind}
	if suffix.IsFloat() {
		suffix.DblValues = make([]float64, itemCount)
	} else {
		suffix.IntValues = make([]int, itemCount)
	}
	s.suffixes[name] = suffix
	return &suffixBuilder{suffix: suffix}, nil
}

type suffixBuilder struct {
	suffix *Suffix
}

func (b *suffixBuilder) SetIntValue(index, value int) error {
	if b.suffix.IsFloat() {
		return errors.Errorf("suffix %s: integer value in a float suffix", b.suffix.Name)
	}
	b.suffix.IntValues[index] = value
	return nil
}

func (b *suffixBuilder) SetDblValue(index int, value float64) error {
	if !b.suffix.IsFloat() {
		return errors.Errorf("suffix %s: float value in an integer suffix", b.suffix.Name)
	}
	b.suffix.DblValues[index] = value
	return nil
}
