// Package printer renders terms, contexts, and definitions in any of
// the three surface notations, picking Unicode glyphs over ASCII
// fallbacks depending on whether the output stream is an interactive
// terminal.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/term"
)

// Notation selects a term rendering convention.
type Notation int

const (
	// Conventional is the original prefix notation: * @ %f a $x:T.M ?x:T.B.
	Conventional Notation = iota
	// New is a slightly more readable ASCII infix-leaning rendering.
	New
	// Rich uses Unicode glyphs (λ, Π, □) unless ASCIIOnly is set.
	Rich
)

// Printer renders terms under one Notation, optionally forcing ASCII
// even in Rich mode (Rich with ASCIIOnly prints the conventional form).
type Printer struct {
	Notation  Notation
	ASCIIOnly bool
}

// ForStream picks Rich notation when w is an interactive terminal
// capable of Unicode and ASCIIOnly was not requested, Conventional
// otherwise.
func ForStream(w io.Writer, asciiOnly bool) Printer {
	if asciiOnly {
		return Printer{Notation: Conventional, ASCIIOnly: true}
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return Printer{Notation: Rich}
	}
	return Printer{Notation: Conventional}
}

// Term renders t under p's notation.
func (p Printer) Term(t term.Term) string {
	switch p.Notation {
	case Rich:
		if p.ASCIIOnly {
			return t.String()
		}
		return p.rich(t)
	case New:
		return p.new_(t)
	default:
		return t.String()
	}
}

func (p Printer) rich(t term.Term) string {
	switch x := t.(type) {
	case term.Star:
		return "*"
	case term.Square:
		return "□"
	case term.Variable:
		return string(x.Name)
	case term.Application:
		return "(" + p.rich(x.Fn) + " " + p.rich(x.Arg) + ")"
	case term.AbstLambda:
		return "λ" + string(x.Bound.Name) + ":" + p.rich(x.BoundType) + "." + p.rich(x.Body)
	case term.AbstPi:
		return "Π" + string(x.Bound.Name) + ":" + p.rich(x.BoundType) + "." + p.rich(x.Body)
	case term.Constant:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = p.rich(a)
		}
		return x.Name + "⟨" + strings.Join(parts, ", ") + "⟩"
	default:
		return t.String()
	}
}

func (p Printer) new_(t term.Term) string {
	switch x := t.(type) {
	case term.Star:
		return "Type"
	case term.Square:
		return "Kind"
	case term.Variable:
		return string(x.Name)
	case term.Application:
		return "(" + p.new_(x.Fn) + " " + p.new_(x.Arg) + ")"
	case term.AbstLambda:
		return "fun " + string(x.Bound.Name) + ":" + p.new_(x.BoundType) + " => " + p.new_(x.Body)
	case term.AbstPi:
		return "forall " + string(x.Bound.Name) + ":" + p.new_(x.BoundType) + ", " + p.new_(x.Body)
	case term.Constant:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = p.new_(a)
		}
		return x.Name + "(" + strings.Join(parts, ", ") + ")"
	default:
		return t.String()
	}
}

// Context renders a context under p's notation.
func (p Printer) Context(c context.Context) string {
	entries := c.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = string(e.Var.Name) + ":" + p.Term(e.Type)
	}
	return strings.Join(parts, ", ")
}

// Definition renders a single environment entry as "name[ctx] := v : T"
// or, for a primitive, "name[ctx] : T".
func (p Printer) Definition(d environment.Definition) string {
	if d.IsPrimitive() {
		return fmt.Sprintf("%s[%s] : %s", d.Name, p.Context(d.Ctx), p.Term(d.Type))
	}
	return fmt.Sprintf("%s[%s] := %s : %s", d.Name, p.Context(d.Ctx), p.Term(d.Value), p.Term(d.Type))
}
