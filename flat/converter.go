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

// Package flat lowers nonlinear optimization models to flat
// mixed-integer models.
//
// The Converter consumes .nl reader events, lowers every composite
// expression to a fresh result variable plus a named custom
// constraint, and then rewrites custom constraints breadth-first until
// every remaining one is recommended by the backend capability table.
package flat

import (
	"fmt"
	"math"

	"github.com/mpx-org/mpx/expr"
	"github.com/mpx-org/mpx/expr/exprkind"
	"github.com/mpx-org/mpx/nl"
	"github.com/mpx-org/mpx/problem"
)

// RewriteLimitError reports a rewrite table that cannot make progress:
// a constraint class the backend rejects with no rewrite, a rewrite
// that does not reduce the class rank, or too many rewrite rounds.
type RewriteLimitError struct {
	Class string
}

// Error names the stuck constraint class.
func (e *RewriteLimitError) Error() string {
	if e.Class == "" {
		return "constraint rewriting did not reach a fixed point"
	}
	return fmt.Sprintf("constraint class %q not accepted by the backend and not rewritable", e.Class)
}

// InvalidOptionError reports an option value outside its range.
type InvalidOptionError struct {
	Name  string
	Value int
}

// Error names the option and the offending value.
func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid value %d for option %s", e.Value, e.Name)
}

// errNoRewrite signals that a constraint class has no default rewrite.
var errNoRewrite = fmt.Errorf("no default rewrite")

// Options configure a conversion.
type Options struct {
	// MaxRewriteRounds bounds the number of breadth-first rewrite
	// rounds, a guard against non-terminating rewrite tables.
	MaxRewriteRounds int
}

// DefaultMaxRewriteRounds is the default round bound. Every supplied
// rewrite strictly decreases the class rank, so the bound is only ever
// reached by a faulty backend rewriter.
const DefaultMaxRewriteRounds = 100

// Converter lowers a problem to a flat model. It is an nl.Handler:
// feed it to nl.ReadString or nl.ReadFile and the flat model is built
// when the read returns. It is also an expression visitor producing
// affine EExpr results.
//
// A converter is single use and not safe for concurrent use; run
// independent translations with independent converters.
type Converter struct {
	*problem.Problem
	expr.VisitorBase[EExpr, EExpr]

	backend Backend
	opts    Options
	model   *Model

	// rewriteRank is the rank of the constraint currently being
	// rewritten; appended constraints must rank strictly below it.
	// Negative means no rewrite is in progress.
	rewriteRank int
}

var _ nl.Handler = (*Converter)(nil)
var _ expr.Visitor[EExpr, EExpr] = (*Converter)(nil)

// NewConverter returns a converter targeting the given backend with
// default options.
func NewConverter(backend Backend) *Converter {
	c, err := NewConverterOpts(backend, Options{MaxRewriteRounds: DefaultMaxRewriteRounds})
	if err != nil {
		panic(err)
	}
	return c
}

// NewConverterOpts returns a converter targeting the given backend.
func NewConverterOpts(backend Backend, opts Options) (*Converter, error) {
	if opts.MaxRewriteRounds < 1 {
		return nil, &InvalidOptionError{Name: "rewrite_rounds", Value: opts.MaxRewriteRounds}
	}
	return &Converter{
		Problem:     problem.New(),
		backend:     backend,
		opts:        opts,
		model:       NewModel(),
		rewriteRank: -1,
	}, nil
}

// Model returns the flat model under construction.
func (c *Converter) Model() *Model { return c.model }

// EndBuild runs the conversion once the reader has delivered the whole
// problem.
func (c *Converter) EndBuild() error {
	if err := c.Problem.EndBuild(); err != nil {
		return err
	}
	return c.Flatten()
}

// Flatten lowers the received problem into the flat model and runs the
// rewrite loop to its fixed point.
func (c *Converter) Flatten() error {
	p := c.Problem
	if p.NumCommonExprs() > 0 {
		return &nl.UnsupportedError{Construct: "common expressions"}
	}
	if p.NumLogicalCons() > 0 {
		return &nl.UnsupportedError{Construct: "logical constraints"}
	}
	for i := 0; i < p.NumVars(); i++ {
		v := p.Var(i)
		c.model.AddVar(v.LB, v.UB, v.Type)
	}
	for i := 0; i < p.NumObjs(); i++ {
		obj := p.Obj(i)
		if obj.Expr != nil {
			return &nl.UnsupportedError{Construct: "nonlinear objective"}
		}
		c.model.AddObj(obj.Sense, convertTerms(obj.Terms), -1)
	}
	for i := 0; i < p.NumAlgebraicCons(); i++ {
		con := p.AlgebraicCon(i)
		lb, ub := con.LB, con.UB
		terms := convertTerms(con.Terms)
		if con.Expr != nil {
			ee, err := c.Convert2EExpr(con.Expr)
			if err != nil {
				return err
			}
			terms = append(terms, ee.Terms()...)
			// The lowered constant shifts both bounds.
			lb -= ee.ConstantTerm()
			ub -= ee.ConstantTerm()
		}
		c.model.AddCon(lb, ub, terms, -1)
	}
	return c.ConvertExtraItems()
}

func convertTerms(terms []problem.Term) []Term {
	if len(terms) == 0 {
		return nil
	}
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = Term{Var: t.Var, Coef: t.Coef}
	}
	return out
}

// ConvertExtraItems runs the breadth-first rewrite loop: every round
// processes the custom constraints appended by the previous round,
// rewriting each one the backend does not recommend, until no round
// appends anything. Running it again on a fully converted model adds
// nothing.
func (c *Converter) ConvertExtraItems() error {
	prev := 0
	for round := 0; ; round++ {
		end := c.model.NumCustomCons()
		if end <= prev {
			break
		}
		if round >= c.opts.MaxRewriteRounds {
			return &RewriteLimitError{}
		}
		c.preprocessIntermediate()
		if err := c.convertRange(prev, end); err != nil {
			return err
		}
		prev = end
	}
	c.preprocessFinal()
	return nil
}

func (c *Converter) convertRange(first, afterLast int) error {
	for ; first < afterLast; first++ {
		con := c.model.CustomCon(first)
		if con.Removed() {
			continue
		}
		acceptance := c.backend.Acceptance(con)
		if acceptance == Recommended {
			continue
		}
		if err := c.convertConstraint(con, acceptance); err != nil {
			return err
		}
	}
	return nil
}

// convertConstraint rewrites one constraint: a backend rewriter takes
// precedence over the class default. A class without any rewrite
// passes through when merely not recommended and fails when not
// accepted.
func (c *Converter) convertConstraint(con Constraint, acceptance Acceptance) error {
	c.rewriteRank = con.Rank()
	defer func() { c.rewriteRank = -1 }()
	if rw, ok := c.backend.(ConstraintRewriter); ok {
		handled, err := rw.RewriteConstraint(con, c)
		if err != nil {
			return err
		}
		if handled {
			con.Remove()
			return nil
		}
	}
	err := con.Convert(c)
	if err == errNoRewrite {
		if acceptance == NotAccepted {
			return &RewriteLimitError{Class: con.Class()}
		}
		return nil
	}
	if err != nil {
		return err
	}
	con.Remove()
	return nil
}

// AddCustomCon appends a custom constraint to the model. During a
// rewrite the new constraint must rank strictly below the constraint
// being rewritten, the invariant that makes the loop terminate.
func (c *Converter) AddCustomCon(con Constraint) error {
	if c.rewriteRank >= 0 && con.Rank() >= c.rewriteRank {
		return &RewriteLimitError{Class: con.Class()}
	}
	c.model.AddCustomCon(con)
	return nil
}

// preprocessIntermediate runs before each rewrite round.
func (c *Converter) preprocessIntermediate() {}

// preprocessFinal runs once the rewrite loop reaches its fixed point.
func (c *Converter) preprocessFinal() {}

// ----------------------------------------------------------------------------
// Expression lowering.

// Convert2EExpr lowers an expression to its affine form, emitting
// custom constraints for composite subexpressions.
func (c *Converter) Convert2EExpr(e expr.NumericExpr) (EExpr, error) {
	return expr.VisitNumeric[EExpr, EExpr](c, e)
}

// Convert2Var returns the index of a variable representing the
// expression: the variable itself for plain references, the memoized
// fixed variable for constants, and otherwise a fresh variable defined
// by a LinearDefining constraint with bounds and type derived from the
// affine form.
func (c *Converter) Convert2Var(ee EExpr) (int, error) {
	if ee.IsVariable() {
		return ee.RepresentingVariable(), nil
	}
	if ee.IsConstant() {
		return c.model.MakeFixedVar(ee.ConstantTerm()), nil
	}
	lb, ub, typ := c.model.AffineBounds(ee)
	r := c.model.AddVar(lb, ub, typ)
	if err := c.AddCustomCon(&LinearDefining{Affine: ee, R: r}); err != nil {
		return 0, err
	}
	return r, nil
}

// VisitNumericConstant absorbs the constant.
func (c *Converter) VisitNumericConstant(e *expr.NumericConstant) (EExpr, error) {
	return Constant(e.Value()), nil
}

// VisitVariable absorbs the reference.
func (c *Converter) VisitVariable(e *expr.Variable) (EExpr, error) {
	return VarRef(e.Index()), nil
}

// VisitMinus negates the lowered argument.
func (c *Converter) VisitMinus(e *expr.UnaryExpr) (EExpr, error) {
	ee, err := c.Convert2EExpr(e.Arg())
	if err != nil {
		return EExpr{}, err
	}
	ee.Negate()
	return ee, nil
}

// VisitAdd adds the lowered operands.
func (c *Converter) VisitAdd(e *expr.BinaryExpr) (EExpr, error) {
	lhs, err := c.Convert2EExpr(e.LHS())
	if err != nil {
		return EExpr{}, err
	}
	rhs, err := c.Convert2EExpr(e.RHS())
	if err != nil {
		return EExpr{}, err
	}
	lhs.Add(rhs)
	return lhs, nil
}

// VisitSub adds the negated right operand.
func (c *Converter) VisitSub(e *expr.BinaryExpr) (EExpr, error) {
	lhs, err := c.Convert2EExpr(e.LHS())
	if err != nil {
		return EExpr{}, err
	}
	rhs, err := c.Convert2EExpr(e.RHS())
	if err != nil {
		return EExpr{}, err
	}
	rhs.Negate()
	lhs.Add(rhs)
	return lhs, nil
}

// VisitMax lowers a maximum to a result variable and a Maximum
// constraint.
func (c *Converter) VisitMax(e *expr.IteratedExpr) (EExpr, error) {
	return c.visitVarArg(e)
}

// VisitMin lowers a minimum to a result variable and a Minimum
// constraint.
func (c *Converter) VisitMin(e *expr.IteratedExpr) (EExpr, error) {
	return c.visitVarArg(e)
}

// visitVarArg converts every child to a variable, allocates a result
// variable bounded by interval arithmetic over the children, and
// appends the matching functional constraint.
func (c *Converter) visitVarArg(e *expr.IteratedExpr) (EExpr, error) {
	args := make([]int, 0, e.NumArgs())
	for _, arg := range e.Args() {
		ee, err := c.Convert2EExpr(arg)
		if err != nil {
			return EExpr{}, err
		}
		v, err := c.Convert2Var(ee)
		if err != nil {
			return EExpr{}, err
		}
		args = append(args, v)
	}
	isMax := e.Kind() == exprkind.Max
	infinity := math.Inf(1)
	lb, ub := infinity, infinity
	if isMax {
		lb, ub = -infinity, -infinity
	}
	typ := problem.Integer
	for _, v := range args {
		bounds := c.model.Var(v)
		if isMax {
			lb = math.Max(lb, bounds.LB)
			ub = math.Max(ub, bounds.UB)
		} else {
			lb = math.Min(lb, bounds.LB)
			ub = math.Min(ub, bounds.UB)
		}
		if bounds.Type != problem.Integer {
			typ = problem.Continuous
		}
	}
	r := c.model.AddVar(lb, ub, typ)
	var con Constraint
	if isMax {
		con = &Maximum{R: r, Args: args}
	} else {
		con = &Minimum{R: r, Args: args}
	}
	if err := c.AddCustomCon(con); err != nil {
		return EExpr{}, err
	}
	return VarRef(r), nil
}
