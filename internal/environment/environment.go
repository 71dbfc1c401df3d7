// Package environment implements the append-only list of named
// definitions against which constants are resolved, unfolded, and
// ranked.
package environment

import (
	"fmt"

	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/term"
)

// Definition binds a name to a parameterized term: a context of
// parameters, the bound value, and the value's type. A primitive
// definition (Value == nil) has no unfolding — delta-reduction stops
// at it.
type Definition struct {
	Name  string
	Ctx   context.Context
	Value term.Term // nil for a primitive (undefined) constant
	Type  term.Term
}

// IsPrimitive reports whether d has no underlying value.
func (d Definition) IsPrimitive() bool { return d.Value == nil }

// Environment is the ordered, append-only sequence of Definitions.
// Index position is a definition's rank: later definitions may only
// refer to earlier ones, so index order is a valid dependency order.
type Environment struct {
	defs    []Definition
	indexOf map[string]int
}

// New returns the empty environment.
func New() *Environment {
	return &Environment{indexOf: map[string]int{}}
}

// Len reports the number of definitions.
func (e *Environment) Len() int { return len(e.defs) }

// At returns the definition at index i.
func (e *Environment) At(i int) Definition { return e.defs[i] }

// Append adds d to the end of the environment. It returns an error if
// d's name is already bound.
func (e *Environment) Append(d Definition) error {
	if _, ok := e.indexOf[d.Name]; ok {
		return fmt.Errorf("environment: constant %q already defined", d.Name)
	}
	e.indexOf[d.Name] = len(e.defs)
	e.defs = append(e.defs, d)
	return nil
}

// LookupIndex returns the rank of constant name, or (-1, false) if it
// is not bound.
func (e *Environment) LookupIndex(name string) (int, bool) {
	i, ok := e.indexOf[name]
	if !ok {
		return -1, false
	}
	return i, true
}

// HasConstant reports whether name is bound in e.
func (e *Environment) HasConstant(name string) bool {
	_, ok := e.indexOf[name]
	return ok
}

// Lookup returns the Definition bound to name.
func (e *Environment) Lookup(name string) (Definition, bool) {
	i, ok := e.indexOf[name]
	if !ok {
		return Definition{}, false
	}
	return e.defs[i], true
}

// IsConstantDefined reports whether name is bound and non-primitive.
func (e *Environment) IsConstantDefined(name string) bool {
	d, ok := e.Lookup(name)
	return ok && !d.IsPrimitive()
}

// IsConstantPrimitive reports whether name is bound and primitive.
func (e *Environment) IsConstantPrimitive(name string) bool {
	d, ok := e.Lookup(name)
	return ok && d.IsPrimitive()
}

// ToConstant builds the Constant reference for the named definition,
// applied to the identity arguments taken from its own parameter
// context — the "self-reference" form used when re-exposing a
// definition's bound value for delta-unfolding checks.
func (e *Environment) ToConstant(name string) (term.Term, error) {
	d, ok := e.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("environment: no such constant %q", name)
	}
	args := make([]term.Term, d.Ctx.Len())
	for i := 0; i < d.Ctx.Len(); i++ {
		args[i] = d.Ctx.At(i).Var
	}
	return term.Constant{Name: name, Args: args}, nil
}

// Rank computes the delta-unfolding rank of t: the highest environment
// index of any non-primitive Constant within it, or -1 if none is
// present. A primitive constant (one with no value to unfold into)
// contributes no rank of its own, but its arguments still do.
func (e *Environment) Rank(t term.Term) int {
	switch x := t.(type) {
	case term.Star, term.Square, term.Variable:
		return -1
	case term.Application:
		return max(e.Rank(x.Fn), e.Rank(x.Arg))
	case term.AbstLambda:
		return max(e.Rank(x.BoundType), e.Rank(x.Body))
	case term.AbstPi:
		return max(e.Rank(x.BoundType), e.Rank(x.Body))
	case term.Constant:
		r := -1
		if idx, ok := e.indexOf[x.Name]; ok && e.IsConstantDefined(x.Name) {
			r = idx
		}
		for _, a := range x.Args {
			r = max(r, e.Rank(a))
		}
		return r
	default:
		panic(fmt.Sprintf("environment.Rank: unhandled variant %T", t))
	}
}

// EquivEnv reports whether e1 and e2 bind the same sequence of names
// to alpha-equivalent definitions (contexts and values/types).
func EquivEnv(e1, e2 *Environment) bool {
	if e1.Len() != e2.Len() {
		return false
	}
	for i := 0; i < e1.Len(); i++ {
		a, b := e1.defs[i], e2.defs[i]
		if a.Name != b.Name || !context.Equiv(a.Ctx, b.Ctx) || !term.Alpha(a.Type, b.Type) {
			return false
		}
		switch {
		case a.IsPrimitive() != b.IsPrimitive():
			return false
		case a.IsPrimitive():
			// both primitive: nothing further to compare
		default:
			if !term.Alpha(a.Value, b.Value) {
				return false
			}
		}
	}
	return true
}

// DeltaReduce unfolds a single Constant one step by substituting its
// arguments for its definition's parameters into the definition's
// value. It panics if name is primitive or unbound — callers must
// check IsConstantDefined first.
func (e *Environment) DeltaReduce(c term.Constant) term.Term {
	d, ok := e.Lookup(c.Name)
	if !ok || d.IsPrimitive() {
		panic(fmt.Sprintf("environment.DeltaReduce: %q is not an unfoldable constant", c.Name))
	}
	names := make([]byte, d.Ctx.Len())
	for i := 0; i < d.Ctx.Len(); i++ {
		names[i] = d.Ctx.At(i).Var.Name
	}
	return term.SubstituteAll(term.Copy(d.Value), names, c.Args)
}
