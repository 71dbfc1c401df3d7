// Package term implements the kernel expression algebra: the seven-shape
// Term variant, structural copy, free variables, capture-avoiding
// substitution, and alpha-equivalence. Terms are immutable values;
// every transformation returns a new tree rather than mutating in place.
package term

import (
	"fmt"
	"strings"
)

// Term is the sealed seven-shape kernel expression. The interface is
// sealed with an unexported marker method so the only implementations
// are the ones in this package; every consumer switches exhaustively
// on the concrete type rather than on a redundant Kind() discriminator.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Star is the sort of types.
type Star struct{}

func (Star) isTerm()        {}
func (Star) String() string { return "*" }

// Square is the sort of kinds. Not itself typable.
type Square struct{}

func (Square) isTerm()        {}
func (Square) String() string { return "@" }

// Variable is a single-character variable occurrence.
type Variable struct {
	Name byte
}

func (Variable) isTerm()          {}
func (v Variable) String() string { return string(v.Name) }

// Application is a function applied to an argument.
type Application struct {
	Fn  Term
	Arg Term
}

func (Application) isTerm() {}
func (a Application) String() string {
	return "%" + a.Fn.String() + " " + a.Arg.String()
}

// AbstLambda is a value abstraction, $x:A.M.
type AbstLambda struct {
	Bound     Variable
	BoundType Term
	Body      Term
}

func (AbstLambda) isTerm() {}
func (a AbstLambda) String() string {
	return "$" + a.Bound.String() + ":" + a.BoundType.String() + "." + a.Body.String()
}

// AbstPi is a dependent function type, ?x:A.B.
type AbstPi struct {
	Bound     Variable
	BoundType Term
	Body      Term
}

func (AbstPi) isTerm() {}
func (a AbstPi) String() string {
	return "?" + a.Bound.String() + ":" + a.BoundType.String() + "." + a.Body.String()
}

// Constant is a reference to a named definition with substituted
// arguments: name[arg1, ..., argn].
type Constant struct {
	Name string
	Args []Term
}

func (Constant) isTerm() {}
func (c Constant) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "[" + strings.Join(parts, ", ") + "]"
}

// TypedVar is a (Variable, Type) pair, the unit of a Context.
type TypedVar struct {
	Var  Variable
	Type Term
}

func (tv TypedVar) String() string {
	return tv.Var.String() + ":" + tv.Type.String()
}

// IsSort reports whether t is Star or Square.
func IsSort(t Term) bool {
	switch t.(type) {
	case Star, Square:
		return true
	default:
		return false
	}
}

// Copy produces a structurally fresh tree, never sharing any interior
// node with t. Sharing between independently-constructed terms is
// otherwise permitted (terms are immutable), but Copy exists for
// callers — notably delta unfolding and constant instantiation — that
// build a new tree in place of one they must not alias.
func Copy(t Term) Term {
	switch x := t.(type) {
	case Star:
		return Star{}
	case Square:
		return Square{}
	case Variable:
		return Variable{Name: x.Name}
	case Application:
		return Application{Fn: Copy(x.Fn), Arg: Copy(x.Arg)}
	case AbstLambda:
		return AbstLambda{Bound: Variable{Name: x.Bound.Name}, BoundType: Copy(x.BoundType), Body: Copy(x.Body)}
	case AbstPi:
		return AbstPi{Bound: Variable{Name: x.Bound.Name}, BoundType: Copy(x.BoundType), Body: Copy(x.Body)}
	case Constant:
		args := make([]Term, len(x.Args))
		for i, a := range x.Args {
			args[i] = Copy(a)
		}
		return Constant{Name: x.Name, Args: args}
	default:
		panic(fmt.Sprintf("term.Copy: unhandled variant %T", t))
	}
}

// ExactEqual is structural identity including binder names. Used only
// in debugging contexts; callers wanting term equality under renaming
// should use Alpha instead.
func ExactEqual(a, b Term) bool {
	switch x := a.(type) {
	case Star:
		_, ok := b.(Star)
		return ok
	case Square:
		_, ok := b.(Square)
		return ok
	case Variable:
		y, ok := b.(Variable)
		return ok && x.Name == y.Name
	case Application:
		y, ok := b.(Application)
		return ok && ExactEqual(x.Fn, y.Fn) && ExactEqual(x.Arg, y.Arg)
	case AbstLambda:
		y, ok := b.(AbstLambda)
		return ok && x.Bound.Name == y.Bound.Name && ExactEqual(x.BoundType, y.BoundType) && ExactEqual(x.Body, y.Body)
	case AbstPi:
		y, ok := b.(AbstPi)
		return ok && x.Bound.Name == y.Bound.Name && ExactEqual(x.BoundType, y.BoundType) && ExactEqual(x.Body, y.Body)
	case Constant:
		y, ok := b.(Constant)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !ExactEqual(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("term.ExactEqual: unhandled variant %T", a))
	}
}

// FV returns the free variables of t, in first-occurrence order with
// no duplicates.
func FV(t Term) []byte {
	var out []byte
	seen := map[byte]bool{}
	var walk func(Term, map[byte]bool)
	walk = func(t Term, bound map[byte]bool) {
		switch x := t.(type) {
		case Star, Square:
		case Variable:
			if !bound[x.Name] && !seen[x.Name] {
				seen[x.Name] = true
				out = append(out, x.Name)
			}
		case Application:
			walk(x.Fn, bound)
			walk(x.Arg, bound)
		case AbstLambda:
			walk(x.BoundType, bound)
			inner := cloneBound(bound)
			inner[x.Bound.Name] = true
			walk(x.Body, inner)
		case AbstPi:
			walk(x.BoundType, bound)
			inner := cloneBound(bound)
			inner[x.Bound.Name] = true
			walk(x.Body, inner)
		case Constant:
			for _, a := range x.Args {
				walk(a, bound)
			}
		default:
			panic(fmt.Sprintf("term.FV: unhandled variant %T", t))
		}
	}
	walk(t, map[byte]bool{})
	return out
}

func cloneBound(m map[byte]bool) map[byte]bool {
	n := make(map[byte]bool, len(m)+1)
	for k, v := range m {
		n[k] = v
	}
	return n
}

// IsFree reports whether name occurs free in t.
func IsFree(name byte, t Term) bool {
	for _, v := range FV(t) {
		if v == name {
			return true
		}
	}
	return false
}

// Constants returns the distinct constant names occurring anywhere in
// t, in first-occurrence order.
func Constants(t Term) []string {
	return collectConstants(t, nil, map[string]bool{})
}

func collectConstants(t Term, out []string, seen map[string]bool) []string {
	switch x := t.(type) {
	case Star, Square, Variable:
		return out
	case Application:
		out = collectConstants(x.Fn, out, seen)
		return collectConstants(x.Arg, out, seen)
	case AbstLambda:
		out = collectConstants(x.BoundType, out, seen)
		return collectConstants(x.Body, out, seen)
	case AbstPi:
		out = collectConstants(x.BoundType, out, seen)
		return collectConstants(x.Body, out, seen)
	case Constant:
		if !seen[x.Name] {
			seen[x.Name] = true
			out = append(out, x.Name)
		}
		for _, a := range x.Args {
			out = collectConstants(a, out, seen)
		}
		return out
	default:
		panic(fmt.Sprintf("term.Constants: unhandled variant %T", t))
	}
}

// preferredFresh is the order in which candidate variable names are
// tried before falling back to the full alphabet.
const preferredFresh = "xyzwvu"

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Fresh returns a variable name occurring free in none of the given
// terms, trying the preferred list "xyzwvu" first and then the rest
// of the alphabet, a…z then A…Z. It returns an error if every
// candidate is taken — the 52-letter supply is exhausted.
func Fresh(avoid ...Term) (byte, error) {
	taken := map[byte]bool{}
	for _, t := range avoid {
		for _, v := range FV(t) {
			taken[v] = true
		}
	}
	for i := 0; i < len(preferredFresh); i++ {
		c := preferredFresh[i]
		if !taken[c] {
			return c, nil
		}
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if !taken[c] {
			return c, nil
		}
	}
	return 0, fmt.Errorf("term.Fresh: exhausted the 52-letter variable supply")
}

// Substitute replaces free occurrences of name with value in t,
// renaming bound variables as needed to avoid capturing value's free
// variables (alpha-conversion on the fly).
func Substitute(t Term, name byte, value Term) Term {
	switch x := t.(type) {
	case Star:
		return Star{}
	case Square:
		return Square{}
	case Variable:
		if x.Name == name {
			return value
		}
		return Variable{Name: x.Name}
	case Application:
		return Application{Fn: Substitute(x.Fn, name, value), Arg: Substitute(x.Arg, name, value)}
	case AbstLambda:
		bound, body := substituteBinder(x.Bound, x.Body, name, value)
		return AbstLambda{Bound: bound, BoundType: Substitute(x.BoundType, name, value), Body: body}
	case AbstPi:
		bound, body := substituteBinder(x.Bound, x.Body, name, value)
		return AbstPi{Bound: bound, BoundType: Substitute(x.BoundType, name, value), Body: body}
	case Constant:
		args := make([]Term, len(x.Args))
		for i, a := range x.Args {
			args[i] = Substitute(a, name, value)
		}
		return Constant{Name: x.Name, Args: args}
	default:
		panic(fmt.Sprintf("term.Substitute: unhandled variant %T", t))
	}
}

func substituteBinder(bound Variable, body Term, name byte, value Term) (Variable, Term) {
	if bound.Name == name {
		// name is shadowed inside this abstraction: the substitution
		// does not reach the body at all.
		return bound, Copy(body)
	}
	if !IsFree(bound.Name, value) {
		return bound, Substitute(body, name, value)
	}
	// bound.Name occurs free in value: rename the binder to a fresh
	// variable avoiding value, body, and the substitution variable
	// itself before substituting.
	fresh, err := Fresh(value, body, Variable{Name: name})
	if err != nil {
		panic(err)
	}
	renamedBody := Substitute(body, bound.Name, Variable{Name: fresh})
	return Variable{Name: fresh}, Substitute(renamedBody, name, value)
}

// SubstituteAll performs the given substitutions as iterated single
// substitution, in list order — the parallel-substitution convention
// used when instantiating a definition's parameters.
func SubstituteAll(t Term, names []byte, values []Term) Term {
	for i := range names {
		t = Substitute(t, names[i], values[i])
	}
	return t
}

// Alpha reports whether a and b are equivalent up to the naming of
// bound variables.
func Alpha(a, b Term) bool {
	return alphaEqual(a, b, map[byte]byte{}, map[byte]byte{})
}

func alphaEqual(a, b Term, aToB, bToA map[byte]byte) bool {
	switch x := a.(type) {
	case Star:
		_, ok := b.(Star)
		return ok
	case Square:
		_, ok := b.(Square)
		return ok
	case Variable:
		y, ok := b.(Variable)
		if !ok {
			return false
		}
		if mapped, bound := aToB[x.Name]; bound {
			return mapped == y.Name
		}
		if _, boundOther := bToA[y.Name]; boundOther {
			return false
		}
		// both free: must be literally the same name
		return x.Name == y.Name
	case Application:
		y, ok := b.(Application)
		return ok && alphaEqual(x.Fn, y.Fn, aToB, bToA) && alphaEqual(x.Arg, y.Arg, aToB, bToA)
	case AbstLambda:
		y, ok := b.(AbstLambda)
		if !ok || !alphaEqual(x.BoundType, y.BoundType, aToB, bToA) {
			return false
		}
		return alphaEqualBinder(x.Bound.Name, x.Body, y.Bound.Name, y.Body, aToB, bToA)
	case AbstPi:
		y, ok := b.(AbstPi)
		if !ok || !alphaEqual(x.BoundType, y.BoundType, aToB, bToA) {
			return false
		}
		return alphaEqualBinder(x.Bound.Name, x.Body, y.Bound.Name, y.Body, aToB, bToA)
	case Constant:
		y, ok := b.(Constant)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !alphaEqual(x.Args[i], y.Args[i], aToB, bToA) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("term.Alpha: unhandled variant %T", a))
	}
}

func alphaEqualBinder(an byte, abody Term, bn byte, bbody Term, aToB, bToA map[byte]byte) bool {
	nextAToB := cloneByteMap(aToB)
	nextBToA := cloneByteMap(bToA)
	nextAToB[an] = bn
	nextBToA[bn] = an
	return alphaEqual(abody, bbody, nextAToB, nextBToA)
}

func cloneByteMap(m map[byte]byte) map[byte]byte {
	n := make(map[byte]byte, len(m)+1)
	for k, v := range m {
		n[k] = v
	}
	return n
}
