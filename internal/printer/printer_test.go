package printer

import (
	"testing"

	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/term"
)

func TestConventionalFallsBackToStringer(t *testing.T) {
	p := Printer{Notation: Conventional}
	tm := term.AbstLambda{Bound: term.Variable{Name: 'x'}, BoundType: term.Star{}, Body: term.Variable{Name: 'x'}}
	if got := p.Term(tm); got != tm.String() {
		t.Errorf("Term() under Conventional = %q, want %q", got, tm.String())
	}
}

func TestRichNotation(t *testing.T) {
	p := Printer{Notation: Rich}
	tests := []struct {
		name string
		term term.Term
		want string
	}{
		{"star", term.Star{}, "*"},
		{"square", term.Square{}, "□"},
		{"lambda", term.AbstLambda{Bound: term.Variable{Name: 'x'}, BoundType: term.Star{}, Body: term.Variable{Name: 'x'}}, "λx:*.x"},
		{"pi", term.AbstPi{Bound: term.Variable{Name: 'x'}, BoundType: term.Star{}, Body: term.Variable{Name: 'x'}}, "Πx:*.x"},
		{"constant", term.Constant{Name: "nat", Args: []term.Term{term.Variable{Name: 'x'}}}, "nat⟨x⟩"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Term(tt.term); got != tt.want {
				t.Errorf("Term() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewNotation(t *testing.T) {
	p := Printer{Notation: New}
	tests := []struct {
		name string
		term term.Term
		want string
	}{
		{"star", term.Star{}, "Type"},
		{"square", term.Square{}, "Kind"},
		{"lambda", term.AbstLambda{Bound: term.Variable{Name: 'x'}, BoundType: term.Star{}, Body: term.Variable{Name: 'x'}}, "fun x:Type => x"},
		{"pi", term.AbstPi{Bound: term.Variable{Name: 'x'}, BoundType: term.Star{}, Body: term.Variable{Name: 'x'}}, "forall x:Type, x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Term(tt.term); got != tt.want {
				t.Errorf("Term() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextRendering(t *testing.T) {
	p := Printer{Notation: Conventional}
	c := context.Empty().Append(term.Variable{Name: 'x'}, term.Star{})
	if got := p.Context(c); got != "x:*" {
		t.Errorf("Context() = %q, want x:*", got)
	}
}

func TestDefinitionRenderingPrimitiveVsValued(t *testing.T) {
	p := Printer{Notation: Conventional}
	prim := environment.Definition{Name: "nat", Type: term.Star{}}
	if got := p.Definition(prim); got != "nat[] : *" {
		t.Errorf("Definition(primitive) = %q, want %q", got, "nat[] : *")
	}
	valued := environment.Definition{Name: "star_alias", Value: term.Star{}, Type: term.Square{}}
	if got := p.Definition(valued); got != "star_alias[] := * : @" {
		t.Errorf("Definition(valued) = %q, want %q", got, "star_alias[] := * : @")
	}
}

func TestForStreamNonTerminalFallsBackToConventional(t *testing.T) {
	// a writerStub is never an *os.File, so ForStream cannot detect a
	// terminal and must fall back to Conventional.
	var buf writerStub
	p := ForStream(&buf, false)
	if p.Notation != Conventional {
		t.Errorf("ForStream on a non-file writer should fall back to Conventional, got %v", p.Notation)
	}
}

func TestForStreamASCIIOnlyForcesConventional(t *testing.T) {
	var buf writerStub
	p := ForStream(&buf, true)
	if p.Notation != Conventional || !p.ASCIIOnly {
		t.Errorf("ForStream(asciiOnly=true) should force Conventional+ASCIIOnly, got %+v", p)
	}
}

type writerStub struct{}

func (writerStub) Write(p []byte) (int, error) { return len(p), nil }
