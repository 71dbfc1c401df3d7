// Package parser implements the recursive-descent parsers for all
// three surface grammars: definition files, the prefix term syntax
// embedded within them, and proof script files.
package parser

import (
	"strconv"

	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/diagnostics"
	"github.com/lambdadelta/proofkit/internal/lexer"
	"github.com/lambdadelta/proofkit/internal/term"
	"github.com/lambdadelta/proofkit/internal/token"
)

// DefEntry is one def2/edef2 statement: a name bound to a parameter
// context and a type, with Value nil for a primitive (edef2) entry.
type DefEntry struct {
	Name  string
	Ctx   context.Context
	Value term.Term
	Type  term.Term
}

// parser holds the shared token-stream machinery used by all three
// entry points.
type parser struct {
	file   string
	tokens []token.Token
	pos    int
}

func newParser(file, source string) *parser {
	return &parser{file: file, tokens: lexer.Tokenize(source)}
}

func (p *parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}
func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(typ token.Type, what string) (token.Token, error) {
	if p.cur().Type != typ {
		return token.Token{}, diagnostics.New(diagnostics.Parse, p.file, p.cur(), "expected %s, found %q", what, p.cur().Lexeme)
	}
	return p.advance(), nil
}

// ParseDefFile parses a complete definition file: a sequence of
// def2/edef2 statements terminated by an END keyword.
func ParseDefFile(file, source string) ([]DefEntry, error) {
	p := newParser(file, source)
	var entries []DefEntry
	for p.cur().Type != token.END {
		if p.cur().Type == token.EOF {
			return nil, diagnostics.New(diagnostics.Parse, file, p.cur(), "unexpected end of file, expected END")
		}
		entry, err := p.parseDefEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p *parser) parseDefEntry() (DefEntry, error) {
	switch p.cur().Type {
	case token.DEF2:
		return p.parseDef2(false)
	case token.EDEF2:
		return p.parseDef2(true)
	default:
		return DefEntry{}, diagnostics.New(diagnostics.Parse, p.file, p.cur(), "expected def2 or edef2, found %q", p.cur().Lexeme)
	}
}

func (p *parser) parseDef2(primitive bool) (DefEntry, error) {
	p.advance() // consume def2/edef2
	nameTok, err := p.expectIdent("a constant name")
	if err != nil {
		return DefEntry{}, err
	}
	ctx, err := p.parseCtxLiteral()
	if err != nil {
		return DefEntry{}, err
	}
	var value term.Term
	if !primitive {
		if _, err := p.expect(token.ASSIGN, "\":=\""); err != nil {
			return DefEntry{}, err
		}
		value, err = p.parseTerm()
		if err != nil {
			return DefEntry{}, err
		}
	}
	if _, err := p.expect(token.COLON, "\":\""); err != nil {
		return DefEntry{}, err
	}
	ty, err := p.parseTerm()
	if err != nil {
		return DefEntry{}, err
	}
	if _, err := p.expect(token.SEMICOLON, "\";\""); err != nil {
		return DefEntry{}, err
	}
	return DefEntry{Name: nameTok.Lexeme, Ctx: ctx, Value: value, Type: ty}, nil
}

func (p *parser) expectIdent(what string) (token.Token, error) {
	if p.cur().Type != token.IDENT && p.cur().Type != token.VAR {
		return token.Token{}, diagnostics.New(diagnostics.Parse, p.file, p.cur(), "expected %s, found %q", what, p.cur().Lexeme)
	}
	return p.advance(), nil
}

// parseCtxLiteral parses [x1:T1, x2:T2, ...] or [] for an empty
// parameter context.
func (p *parser) parseCtxLiteral() (context.Context, error) {
	opener := p.cur()
	if _, err := p.expect(token.LBRACKET, "\"[\""); err != nil {
		return context.Context{}, err
	}
	ctx := context.Empty()
	if p.cur().Type == token.RBRACKET {
		p.advance()
		return ctx, nil
	}
	for {
		varTok, err := p.expect(token.VAR, "a variable name")
		if err != nil {
			return context.Context{}, err
		}
		if _, err := p.expect(token.COLON, "\":\""); err != nil {
			return context.Context{}, err
		}
		ty, err := p.parseTerm()
		if err != nil {
			return context.Context{}, err
		}
		ctx = ctx.Append(term.Variable{Name: varTok.Lexeme[0]}, ty)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.cur().Type != token.RBRACKET {
		return context.Context{}, diagnostics.New(diagnostics.Parse, p.file, p.cur(), "expected \"]\" to close the context opened here, found %q", p.cur().Lexeme).
			WithNote(diagnostics.New(diagnostics.Parse, p.file, opener, "opening \"[\" here"))
	}
	p.advance()
	return ctx, nil
}

// ParseTerm parses a single standalone term.
func ParseTerm(file, source string) (term.Term, error) {
	p := newParser(file, source)
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.EOF {
		return nil, diagnostics.New(diagnostics.Expr, file, p.cur(), "unexpected trailing input %q after term", p.cur().Lexeme)
	}
	return t, nil
}

func (p *parser) parseTerm() (term.Term, error) {
	switch p.cur().Type {
	case token.ASTERISK:
		p.advance()
		return term.Star{}, nil
	case token.AT:
		p.advance()
		return term.Square{}, nil
	case token.VAR:
		v := p.advance()
		return term.Variable{Name: v.Lexeme[0]}, nil
	case token.PERCENT:
		p.advance()
		fn, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return term.Application{Fn: fn, Arg: arg}, nil
	case token.DOLLAR:
		return p.parseAbst(false)
	case token.QUESTION:
		return p.parseAbst(true)
	case token.LPAREN:
		p.advance()
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "\")\""); err != nil {
			return nil, err
		}
		return t, nil
	case token.IDENT:
		return p.parseConstant()
	default:
		return nil, diagnostics.New(diagnostics.Expr, p.file, p.cur(), "expected a term, found %q", p.cur().Lexeme)
	}
}

func (p *parser) parseAbst(pi bool) (term.Term, error) {
	p.advance() // consume $ or ?
	varTok, err := p.expect(token.VAR, "a bound variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON, "\":\""); err != nil {
		return nil, err
	}
	domain, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.PERIOD, "\".\""); err != nil {
		return nil, err
	}
	body, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	bound := term.Variable{Name: varTok.Lexeme[0]}
	if pi {
		return term.AbstPi{Bound: bound, BoundType: domain, Body: body}, nil
	}
	return term.AbstLambda{Bound: bound, BoundType: domain, Body: body}, nil
}

func (p *parser) parseConstant() (term.Term, error) {
	nameTok := p.advance()
	if _, err := p.expect(token.LBRACKET, "\"[\""); err != nil {
		return nil, err
	}
	var args []term.Term
	if p.cur().Type != token.RBRACKET {
		for {
			a, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RBRACKET, "\"]\""); err != nil {
		return nil, err
	}
	return term.Constant{Name: nameTok.Lexeme, Args: args}, nil
}

// ScriptLine is one non-sentinel line of a proof script: a 1-based
// line number, a rule opcode, and its raw operand tokens (rule
// indices and names), left for the synthesizer's replay driver to
// interpret against the opcode's expected arity.
type ScriptLine struct {
	LineNo   int
	Opcode   string
	Operands []string
}

// ParseScript parses a proof script: a sequence of lines each shaped
// "lineno opcode operand...", terminated by a literal "-1" line.
func ParseScript(file, source string) ([]ScriptLine, error) {
	p := newParser(file, source)
	var lines []ScriptLine
	for {
		if p.cur().Type == token.EOF {
			return nil, diagnostics.New(diagnostics.Parse, file, p.cur(), "unexpected end of file, expected the -1 sentinel")
		}
		if isSentinel(p) {
			p.advance() // '-'
			p.advance() // '1'
			return lines, nil
		}
		lineTok, err := p.expect(token.NUMBER, "a line number")
		if err != nil {
			return nil, err
		}
		lineNo, convErr := strconv.Atoi(lineTok.Lexeme)
		if convErr != nil {
			return nil, diagnostics.New(diagnostics.Parse, file, lineTok, "invalid line number %q", lineTok.Lexeme)
		}
		opTok, err := p.expectIdent("a rule opcode")
		if err != nil {
			return nil, err
		}
		var operands []string
		for p.cur().Type != token.SEMICOLON && p.cur().Type != token.EOF {
			operands = append(operands, p.advance().Lexeme)
		}
		if _, err := p.expect(token.SEMICOLON, "\";\" to terminate the script line"); err != nil {
			return nil, err
		}
		lines = append(lines, ScriptLine{LineNo: lineNo, Opcode: opTok.Lexeme, Operands: operands})
	}
}

// isSentinel reports whether the parser sits at a "-1" end marker:
// a hyphen-led identifier was not produced by the lexer (hyphens are
// identifier body characters, not identifier starts), so the
// sentinel always surfaces as an ILLEGAL '-' token followed by a
// NUMBER "1".
func isSentinel(p *parser) bool {
	return p.cur().Type == token.ILLEGAL && p.cur().Lexeme == "-" && p.peek().Type == token.NUMBER && p.peek().Lexeme == "1"
}
