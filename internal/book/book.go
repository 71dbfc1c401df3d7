// Package book implements the append-only Book of Judgements built up
// by the ten core inference rules (sort, var, weak, form, appl, abst,
// conv, def, defpr, inst) plus the three bookkeeping utility rules
// (cp, sp, tp). Every rule either extends the Book by one judgement
// or returns a *diagnostics.Error of Kind Inference naming exactly
// which premise failed and why.
package book

import (
	"fmt"
	"strconv"

	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/convert"
	"github.com/lambdadelta/proofkit/internal/diagnostics"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/reducer"
	"github.com/lambdadelta/proofkit/internal/term"
)

// Judgement is one line of the book: Ctx |- Term : Type.
type Judgement struct {
	Ctx  context.Context
	Term term.Term
	Type term.Term
}

func (j Judgement) String() string {
	return j.Ctx.String() + " |- " + j.Term.String() + " : " + j.Type.String()
}

// TraceEntry records one successful rule application: which opcode
// produced which judgement index, citing which earlier indices. The
// script synthesizer walks this log backward from a target
// definition's producing entry to compute its dependency closure.
type TraceEntry struct {
	Opcode string
	Index  int
	Cited  []int
	Name   string   // bound constant name, for def/defpr/inst
	Extra  []string // rule-specific literal operands: the variable for var/weak, the position for sp
}

// Book is the append-only sequence of derived Judgements, together
// with the Environment of named definitions that def/defpr populate.
type Book struct {
	Judgements []Judgement
	Env        *environment.Environment
	Trace      []TraceEntry

	// SkipChecks disables applicability predicates, trusting the
	// caller's rule indices and arguments outright. cmd/verify sets it
	// from the skip_checks preference to replay a script without
	// re-verifying every rule.
	SkipChecks bool
}

// New returns an empty book over env.
func New(env *environment.Environment) *Book {
	return &Book{Env: env}
}

// Len reports the number of judgements derived so far.
func (b *Book) Len() int { return len(b.Judgements) }

// At returns the i-th judgement (0-based).
func (b *Book) At(i int) Judgement { return b.Judgements[i] }

func (b *Book) ierr(rule string, format string, args ...any) error {
	return diagnostics.Newf(diagnostics.Inference, "%s: %s", rule, fmt.Sprintf(format, args...))
}

func (b *Book) valid(i int) bool { return i >= 0 && i < len(b.Judgements) }

func (b *Book) append(j Judgement) int {
	b.Judgements = append(b.Judgements, j)
	return len(b.Judgements) - 1
}

func (b *Book) record(opcode string, idx int, name string, cited ...int) int {
	b.Trace = append(b.Trace, TraceEntry{Opcode: opcode, Index: idx, Cited: cited, Name: name})
	return idx
}

func (b *Book) recordExtra(opcode string, idx int, name string, extra []string, cited ...int) int {
	b.Trace = append(b.Trace, TraceEntry{Opcode: opcode, Index: idx, Cited: cited, Name: name, Extra: extra})
	return idx
}

// Sort derives <> |- * : @, the single axiom of the system.
func (b *Book) Sort() (int, error) {
	idx := b.append(Judgement{Ctx: context.Empty(), Term: term.Star{}, Type: term.Square{}})
	return b.record("sort", idx, ""), nil
}

// Var derives, from j = Ctx |- A : s, the judgement
// Ctx,x:A |- x : A, provided s is a sort and x is not already
// declared in Ctx.
func (b *Book) Var(j int, x byte) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("var", "judgement %d does not exist", j+1)
	}
	if !b.SkipChecks {
		if !term.IsSort(b.Judgements[j].Type) {
			return -1, b.ierr("var", "type of judgement %d is not a sort", j+1)
		}
		if b.Judgements[j].Ctx.HasVariable(x) {
			return -1, b.ierr("var", "variable %q is already declared in the context of judgement %d", string(x), j+1)
		}
	}
	premise := b.Judgements[j]
	newCtx := premise.Ctx.Append(term.Variable{Name: x}, premise.Term)
	idx := b.append(Judgement{Ctx: newCtx, Term: term.Variable{Name: x}, Type: premise.Term})
	return b.recordExtra("var", idx, "", []string{string(x)}, j), nil
}

// Weak derives, from j = Ctx |- A : B and k = Ctx |- C : s, the
// judgement Ctx,x:C |- A : B, provided the two premises share a
// context, s is a sort, and x is fresh.
func (b *Book) Weak(j, k int, x byte) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("weak", "judgement %d does not exist", j+1)
	}
	if !b.valid(k) {
		return -1, b.ierr("weak", "judgement %d does not exist", k+1)
	}
	if !b.SkipChecks {
		if !context.Equiv(b.Judgements[j].Ctx, b.Judgements[k].Ctx) {
			return -1, b.ierr("weak", "judgements %d and %d do not share a context", j+1, k+1)
		}
		if !term.IsSort(b.Judgements[k].Type) {
			return -1, b.ierr("weak", "type of judgement %d is not a sort", k+1)
		}
		if b.Judgements[j].Ctx.HasVariable(x) {
			return -1, b.ierr("weak", "variable %q is already declared in the shared context", string(x))
		}
	}
	pj, pk := b.Judgements[j], b.Judgements[k]
	newCtx := pj.Ctx.Append(term.Variable{Name: x}, pk.Term)
	idx := b.append(Judgement{Ctx: newCtx, Term: pj.Term, Type: pj.Type})
	return b.recordExtra("weak", idx, "", []string{string(x)}, j, k), nil
}

// Form derives, from j = Ctx |- A : s1 and k = Ctx,x:A |- B : s2, the
// judgement Ctx |- ?x:A.B : s2 (pi formation).
func (b *Book) Form(j, k int) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("form", "judgement %d does not exist", j+1)
	}
	if !b.valid(k) {
		return -1, b.ierr("form", "judgement %d does not exist", k+1)
	}
	if !b.SkipChecks {
		if !term.IsSort(b.Judgements[j].Type) {
			return -1, b.ierr("form", "type of judgement %d is not a sort", j+1)
		}
		if !term.IsSort(b.Judgements[k].Type) {
			return -1, b.ierr("form", "type of judgement %d is not a sort", k+1)
		}
		kCtx := b.Judgements[k].Ctx
		if kCtx.Len() != b.Judgements[j].Ctx.Len()+1 || !context.EquivN(b.Judgements[j].Ctx, kCtx, b.Judgements[j].Ctx.Len()) {
			return -1, b.ierr("form", "context of judgement %d does not extend the context of judgement %d by exactly one declaration", k+1, j+1)
		}
		if !term.Alpha(kCtx.At(kCtx.Len()-1).Type, b.Judgements[j].Term) {
			return -1, b.ierr("form", "last declaration in the context of judgement %d is not typed by the term of judgement %d", k+1, j+1)
		}
	}
	pj, pk := b.Judgements[j], b.Judgements[k]
	last := pk.Ctx.At(pk.Ctx.Len() - 1)
	pi := term.AbstPi{Bound: last.Var, BoundType: pj.Term, Body: pk.Term}
	idx := b.append(Judgement{Ctx: pj.Ctx, Term: pi, Type: pk.Type})
	return b.record("form", idx, "", j, k), nil
}

// Appl derives, from j = Ctx |- M : ?x:A.B and k = Ctx |- N : A', the
// judgement Ctx |- M N : B[x:=N], provided A' is convertible to A.
func (b *Book) Appl(j, k int) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("appl", "judgement %d does not exist", j+1)
	}
	if !b.valid(k) {
		return -1, b.ierr("appl", "judgement %d does not exist", k+1)
	}
	pj, pk := b.Judgements[j], b.Judgements[k]
	piNF := reducer.NF(b.Env, pj.Type)
	pi, ok := piNF.(term.AbstPi)
	if !ok {
		return -1, b.ierr("appl", "type of judgement %d is not a pi abstraction", j+1)
	}
	if !b.SkipChecks {
		if !context.Equiv(pj.Ctx, pk.Ctx) {
			return -1, b.ierr("appl", "judgements %d and %d do not share a context", j+1, k+1)
		}
		if !convert.Conv(b.Env, pk.Type, pi.BoundType) {
			return -1, b.ierr("appl", "type of judgement %d is not convertible to the domain of judgement %d", k+1, j+1)
		}
	}
	resultType := reducer.NF(b.Env, term.Substitute(pi.Body, pi.Bound.Name, pk.Term))
	idx := b.append(Judgement{Ctx: pj.Ctx, Term: term.Application{Fn: pj.Term, Arg: pk.Term}, Type: resultType})
	return b.record("appl", idx, "", j, k), nil
}

// Abst derives, from j = Ctx,x:A |- M : B and k = Ctx |- ?x:A.B : s,
// the judgement Ctx |- $x:A.M : ?x:A.B.
func (b *Book) Abst(j, k int) (int, error) {
	if !b.valid(j) || !b.valid(k) {
		return -1, b.ierr("abst", "a cited judgement does not exist")
	}
	pj, pk := b.Judgements[j], b.Judgements[k]
	pi, ok := pk.Term.(term.AbstPi)
	if !ok {
		return -1, b.ierr("abst", "term of judgement %d is not a pi abstraction", k+1)
	}
	if !b.SkipChecks {
		if !term.IsSort(pk.Type) {
			return -1, b.ierr("abst", "type of judgement %d is not a sort", k+1)
		}
		if pj.Ctx.Len() != pk.Ctx.Len()+1 {
			return -1, b.ierr("abst", "context of judgement %d does not extend judgement %d's context", j+1, k+1)
		}
		last := pj.Ctx.At(pj.Ctx.Len() - 1)
		if !context.EquivN(pk.Ctx, pj.Ctx, pk.Ctx.Len()) || last.Var.Name != pi.Bound.Name || !term.Alpha(last.Type, pi.BoundType) {
			return -1, b.ierr("abst", "context of judgement %d does not extend judgement %d's context by x:A", j+1, k+1)
		}
		if !term.Alpha(pj.Type, pi.Body) {
			return -1, b.ierr("abst", "type of judgement %d does not match the body of the pi abstraction in judgement %d", j+1, k+1)
		}
	}
	lam := term.AbstLambda{Bound: pi.Bound, BoundType: pi.BoundType, Body: pj.Term}
	idx := b.append(Judgement{Ctx: pk.Ctx, Term: lam, Type: pi})
	return b.record("abst", idx, "", j, k), nil
}

// Conv derives, from j = Ctx |- A : B and k = Ctx |- B' : s, the
// judgement Ctx |- A : B', provided B and B' are convertible.
func (b *Book) Conv(j, k int) (int, error) {
	if !b.valid(j) || !b.valid(k) {
		return -1, b.ierr("conv", "a cited judgement does not exist")
	}
	pj, pk := b.Judgements[j], b.Judgements[k]
	if !b.SkipChecks {
		if !context.Equiv(pj.Ctx, pk.Ctx) {
			return -1, b.ierr("conv", "judgements %d and %d do not share a context", j+1, k+1)
		}
		if !term.IsSort(pk.Type) {
			return -1, b.ierr("conv", "type of judgement %d is not a sort", k+1)
		}
		if !convert.Conv(b.Env, pj.Type, pk.Term) {
			return -1, b.ierr("conv", "type of judgement %d is not convertible to the term of judgement %d", j+1, k+1)
		}
	}
	idx := b.append(Judgement{Ctx: pj.Ctx, Term: pj.Term, Type: pk.Term})
	return b.record("conv", idx, "", j, k), nil
}

// Def derives, from j = Ctx |- M : A, a new environment definition
// name[Ctx] = M : A and appends the judgement Ctx |- name[Ctx] : A
// citing the freshly-bound constant.
func (b *Book) Def(j int, name string) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("def", "judgement %d does not exist", j+1)
	}
	if b.Env.HasConstant(name) {
		return -1, b.ierr("def", "constant %q is already defined", name)
	}
	pj := b.Judgements[j]
	if err := b.Env.Append(environment.Definition{Name: name, Ctx: pj.Ctx, Value: pj.Term, Type: pj.Type}); err != nil {
		return -1, b.ierr("def", "%s", err)
	}
	c, err := b.Env.ToConstant(name)
	if err != nil {
		return -1, b.ierr("def", "%s", err)
	}
	idx := b.append(Judgement{Ctx: pj.Ctx, Term: c, Type: pj.Type})
	return b.record("def", idx, name, j), nil
}

// Defpr derives, from j = Ctx |- A : s, a new primitive environment
// definition name[Ctx] : A (with no value) and appends the judgement
// Ctx |- name[Ctx] : A. Unlike Def, the premise's term A must itself
// type as a sort — a primitive constant is only ever bound to a type
// or kind, never to a value in need of an independent type check.
func (b *Book) Defpr(j int, name string) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("defpr", "judgement %d does not exist", j+1)
	}
	if b.Env.HasConstant(name) {
		return -1, b.ierr("defpr", "constant %q is already defined", name)
	}
	pj := b.Judgements[j]
	if !b.SkipChecks && !term.IsSort(pj.Type) {
		return -1, b.ierr("defpr", "type of judgement %d is not a sort; defpr requires a type- or kind-level premise", j+1)
	}
	if err := b.Env.Append(environment.Definition{Name: name, Ctx: pj.Ctx, Value: nil, Type: pj.Term}); err != nil {
		return -1, b.ierr("defpr", "%s", err)
	}
	c, err := b.Env.ToConstant(name)
	if err != nil {
		return -1, b.ierr("defpr", "%s", err)
	}
	idx := b.append(Judgement{Ctx: pj.Ctx, Term: c, Type: pj.Term})
	return b.record("defpr", idx, name, j), nil
}

// Assert directly inserts a judgement whose well-typedness the caller
// has already established by other means (typeinfer.TypeOf), citing
// the producing indices of every constant name in refs so the script
// synthesizer's dependency closure still sees the real dependency
// edges of a definition loaded straight from a .def file rather than
// replayed from an explicit proof script.
func (b *Book) Assert(ctx context.Context, subject, ty term.Term, refs []string) int {
	cited := make([]int, 0, len(refs))
	for _, name := range refs {
		if e, ok := b.TraceEntryForName(name); ok {
			cited = append(cited, e.Index)
		}
	}
	idx := b.append(Judgement{Ctx: ctx, Term: subject, Type: ty})
	return b.record("assert", idx, "", cited...)
}

// Inst derives an instantiation of a previously defined constant:
// given name bound to parameter context Γd = x1:T1,...,xn:Tn and
// judgements args[i] = Ctx |- Ni : Ai, with each Ai convertible to
// Ti under the preceding substitutions, the judgement
// Ctx |- name[N1,...,Nn] : T[x1:=N1,...,xn:=Nn].
func (b *Book) Inst(name string, args []int) (int, error) {
	def, ok := b.Env.Lookup(name)
	if !ok {
		return -1, b.ierr("inst", "constant %q is not defined", name)
	}
	if len(args) != def.Ctx.Len() {
		return -1, b.ierr("inst", "constant %q expects %d argument(s), got %d", name, def.Ctx.Len(), len(args))
	}
	for _, a := range args {
		if !b.valid(a) {
			return -1, b.ierr("inst", "judgement %d does not exist", a+1)
		}
	}
	var ctx context.Context
	values := make([]term.Term, len(args))
	names := make([]byte, len(args))
	for i, a := range args {
		pa := b.Judgements[a]
		if i == 0 {
			ctx = pa.Ctx
		} else if !b.SkipChecks && !context.Equiv(ctx, pa.Ctx) {
			return -1, b.ierr("inst", "argument judgement %d does not share the context of the earlier arguments", a+1)
		}
		paramType := def.Ctx.At(i).Type
		paramType = term.SubstituteAll(paramType, names[:i], values[:i])
		if !b.SkipChecks && !convert.Conv(b.Env, pa.Type, paramType) {
			return -1, b.ierr("inst", "argument judgement %d does not match parameter %d of %q", a+1, i+1, name)
		}
		names[i] = def.Ctx.At(i).Var.Name
		values[i] = pa.Term
	}
	result := term.SubstituteAll(term.Copy(def.Type), names, values)
	c := term.Constant{Name: name, Args: values}
	idx := b.append(Judgement{Ctx: ctx, Term: c, Type: reducer.NF(b.Env, result)})
	return b.record("inst", idx, name, args...), nil
}

// Cp (copy) derives a duplicate of judgement j: the same env, ctx,
// term and type, recorded as its own trace entry so later rules may
// cite it independently of j.
func (b *Book) Cp(j int) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("cp", "judgement %d does not exist", j+1)
	}
	pj := b.Judgements[j]
	idx := b.append(Judgement{Ctx: pj.Ctx, Term: pj.Term, Type: pj.Type})
	return b.record("cp", idx, "", j), nil
}

// Sp (select) derives, from j with context Ctx = x0:T0,...,xn:Tn, the
// judgement for the n-th declaration in isolation: env_j, ctx_j,
// xn : Tn.
func (b *Book) Sp(j, n int) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("sp", "judgement %d does not exist", j+1)
	}
	ctx := b.Judgements[j].Ctx
	if n < 0 || n >= ctx.Len() {
		return -1, b.ierr("sp", "context of judgement %d has no declaration at position %d", j+1, n+1)
	}
	entry := ctx.At(n)
	idx := b.append(Judgement{Ctx: ctx, Term: entry.Var, Type: entry.Type})
	return b.recordExtra("sp", idx, "", []string{strconv.Itoa(n)}, j), nil
}

// Tp (top) derives, from j = Ctx |- Star : Square, the bookkeeping
// judgement Ctx |- Square : Square — not well-typed in the underlying
// theory, but accepted as an explicit convenience for the script
// synthesizer (spec's own open question on this rule).
func (b *Book) Tp(j int) (int, error) {
	if !b.valid(j) {
		return -1, b.ierr("tp", "judgement %d does not exist", j+1)
	}
	pj := b.Judgements[j]
	if !b.SkipChecks {
		if _, ok := pj.Term.(term.Star); !ok {
			return -1, b.ierr("tp", "term of judgement %d is not Star", j+1)
		}
		if _, ok := pj.Type.(term.Square); !ok {
			return -1, b.ierr("tp", "type of judgement %d is not Square", j+1)
		}
	}
	idx := b.append(Judgement{Ctx: pj.Ctx, Term: term.Square{}, Type: term.Square{}})
	return b.record("tp", idx, "", j), nil
}

// TraceEntryForName returns the def/defpr trace entry that bound
// name, or false if name was never bound through this book.
func (b *Book) TraceEntryForName(name string) (TraceEntry, bool) {
	for i := len(b.Trace) - 1; i >= 0; i-- {
		if b.Trace[i].Name == name && (b.Trace[i].Opcode == "def" || b.Trace[i].Opcode == "defpr") {
			return b.Trace[i], true
		}
	}
	return TraceEntry{}, false
}

// TraceEntryForIndex returns the trace entry whose Index equals idx.
func (b *Book) TraceEntryForIndex(idx int) (TraceEntry, bool) {
	for _, e := range b.Trace {
		if e.Index == idx {
			return e, true
		}
	}
	return TraceEntry{}, false
}
