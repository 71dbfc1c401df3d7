// Package diagnostics implements the structured error values produced
// across the tokenizer, parser, type synthesizer, inference rules, and
// script synthesizer. Every kind carries a source Position (when derived
// from input) and renders with a source excerpt, following the original
// BaseError/puterror convention of the reference implementation.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/lambdadelta/proofkit/internal/token"
)

// Kind is one of the six structured error kinds named by the spec.
type Kind string

const (
	Tokenize  Kind = "TokenizeError"
	Parse     Kind = "ParseError"
	Expr      Kind = "ExprError"
	Type      Kind = "TypeError"
	Inference Kind = "InferenceError"
	Deduction Kind = "DeductionError"
)

// Error is the one structured error value every core subsystem raises.
// HasTok false means "abstract locus" — the error did not originate
// from tokenized input (e.g. a rule applicability check against an
// already-parsed Book).
type Error struct {
	Kind    Kind
	File    string
	Tok     token.Token // zero value for abstract-locus errors
	HasTok  bool
	Message string
	Note    *Error // secondary pointer, e.g. the matching opener
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.HasTok {
		if e.File != "" {
			b.WriteString(e.File)
			b.WriteString(":")
		}
		b.WriteString(e.Tok.Pos())
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Note != nil {
		b.WriteString("\n")
		b.WriteString(e.Note.Error())
	}
	return b.String()
}

// Render writes a human-readable rendering with a source excerpt, in
// the style of the original implementation's BaseError::puterror: the
// message line, the offending source line, and a "^~~~" underline
// spanning the token.
func (e *Error) Render(source []string) string {
	var b strings.Builder
	b.WriteString(e.Error())
	if e.HasTok && e.Tok.Line >= 1 && e.Tok.Line <= len(source) {
		b.WriteString("\n")
		line := source[e.Tok.Line-1]
		lineNo := fmt.Sprintf("%d", e.Tok.Line)
		b.WriteString(lineNo)
		b.WriteString(" | ")
		b.WriteString(line)
		width := e.Tok.EndColumn - e.Tok.Column
		if width < 1 {
			width = 1
		}
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", len(lineNo)))
		b.WriteString(" | ")
		if e.Tok.Column-1 > 0 {
			b.WriteString(strings.Repeat(" ", e.Tok.Column-1))
		}
		b.WriteString("^")
		if width > 1 {
			b.WriteString(strings.Repeat("~", width-1))
		}
	}
	return b.String()
}

// New creates an error anchored to a token.
func New(kind Kind, file string, tok token.Token, format string, args ...any) *Error {
	return &Error{Kind: kind, File: file, Tok: tok, HasTok: true, Message: fmt.Sprintf(format, args...)}
}

// Newf creates an error with no source locus (an "abstract locus"),
// for failures raised deep in the core (rule predicates, conversion)
// that are not directly tied to a tokenized position.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithNote chains a secondary error, e.g. pointing at a matching
// opening delimiter for an "unterminated X" message.
func (e *Error) WithNote(note *Error) *Error {
	e.Note = note
	return e
}
