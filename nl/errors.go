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

import "fmt"

// Error is a read error with the position of the offending input.
// Lines and columns are 1-based. A read error is raised at the point of
// discovery and aborts the translation; the reader never recovers
// locally and never backs up.
type Error struct {
	Name    string
	Line    int
	Column  int
	Message string
}

// Error formats the error as "file:line:column: message".
func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Name, e.Line, e.Column, e.Message)
}

// UnsupportedError is raised by a handler for a valid construct it
// declared it cannot accept. It terminates the translation.
type UnsupportedError struct {
	Construct string
}

// Error returns the name of the unsupported construct.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Construct)
}
