// Package context implements the ordered list of typed variable
// declarations under which a term is checked.
package context

import (
	"strings"

	"github.com/lambdadelta/proofkit/internal/term"
)

// Context is an ordered, duplicate-free list of typed variable
// declarations: x1:A1, x2:A2, ..., xn:An. Order matters — a later
// entry's type may depend on an earlier variable.
type Context struct {
	entries []term.TypedVar
}

// Empty returns the empty context.
func Empty() Context {
	return Context{}
}

// Len reports the number of declarations.
func (c Context) Len() int { return len(c.entries) }

// At returns the i-th declaration.
func (c Context) At(i int) term.TypedVar { return c.entries[i] }

// Entries returns the declarations in order. The slice is owned by
// the caller's copy; mutating it does not affect c.
func (c Context) Entries() []term.TypedVar {
	out := make([]term.TypedVar, len(c.entries))
	copy(out, c.entries)
	return out
}

// FromEntries builds a Context from an explicit entry slice, copying
// it so the caller's backing array can be reused afterward.
func FromEntries(entries []term.TypedVar) Context {
	out := make([]term.TypedVar, len(entries))
	copy(out, entries)
	return Context{entries: out}
}

// Append returns a new Context with (v, ty) added at the end.
func (c Context) Append(v term.Variable, ty term.Term) Context {
	next := make([]term.TypedVar, len(c.entries)+1)
	copy(next, c.entries)
	next[len(c.entries)] = term.TypedVar{Var: v, Type: ty}
	return Context{entries: next}
}

// HasVariable reports whether name is declared anywhere in c.
func (c Context) HasVariable(name byte) bool {
	for _, e := range c.entries {
		if e.Var.Name == name {
			return true
		}
	}
	return false
}

// TypeOf returns the declared type of name and true, or the zero
// value and false if name is not declared.
func (c Context) TypeOf(name byte) (term.Term, bool) {
	for _, e := range c.entries {
		if e.Var.Name == name {
			return e.Type, true
		}
	}
	return nil, false
}

// FreeVars returns the union of free variables occurring across every
// declared type, deduplicated in first-occurrence order.
func (c Context) FreeVars() []byte {
	seen := map[byte]bool{}
	var out []byte
	for _, e := range c.entries {
		for _, v := range term.FV(e.Type) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Fresh picks a variable name free in none of c's declared types and
// not itself declared in c.
func Fresh(c Context, extra ...term.Term) (byte, error) {
	avoid := make([]term.Term, 0, c.Len()+len(extra))
	for _, e := range c.entries {
		avoid = append(avoid, e.Type)
		avoid = append(avoid, e.Var)
	}
	avoid = append(avoid, extra...)
	return term.Fresh(avoid...)
}

// EquivN reports whether the first n declarations of c1 and c2 are
// pairwise equal in variable name and alpha-equivalent in type.
func EquivN(c1, c2 Context, n int) bool {
	if n > c1.Len() || n > c2.Len() {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := c1.entries[i], c2.entries[i]
		if a.Var.Name != b.Var.Name || !term.Alpha(a.Type, b.Type) {
			return false
		}
	}
	return true
}

// Equiv reports whether c1 and c2 declare the same sequence of
// variables with alpha-equivalent types.
func Equiv(c1, c2 Context) bool {
	return c1.Len() == c2.Len() && EquivN(c1, c2, c1.Len())
}

func (c Context) String() string {
	parts := make([]string, len(c.entries))
	for i, e := range c.entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
