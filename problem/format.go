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
	"fmt"
	"strconv"
	"strings"

	"github.com/mpx-org/mpx/expr"
)

// FormatRow renders the body of an objective or constraint: the linear
// terms followed by the nonlinear part, "0" when both are empty.
func FormatRow(terms []Term, nonlinear expr.NumericExpr) string {
	var sb strings.Builder
	haveTerms := false
	for _, t := range terms {
		if t.Coef == 0 {
			continue
		}
		if haveTerms {
			sb.WriteString(" + ")
		}
		haveTerms = true
		if t.Coef != 1 {
			sb.WriteString(strconv.FormatFloat(t.Coef, 'g', -1, 64))
			sb.WriteString(" * ")
		}
		fmt.Fprintf(&sb, "x%d", t.Var+1)
	}
	if nonlinear == nil || expr.IsZero(nonlinear) {
		if !haveTerms {
			return "0"
		}
		return sb.String()
	}
	if haveTerms {
		sb.WriteString(" + ")
	}
	sb.WriteString(expr.Format(nonlinear))
	return sb.String()
}

// BodyString renders the linear and nonlinear parts of the objective.
func (o *Objective) BodyString() string {
	return FormatRow(o.Terms, o.Expr)
}

// BodyString renders the linear and nonlinear parts of the constraint.
func (c *AlgebraicCon) BodyString() string {
	return FormatRow(c.Terms, c.Expr)
}
