package book

import (
	"testing"

	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/term"
)

func newBook() *Book {
	return New(environment.New())
}

func TestSort(t *testing.T) {
	b := newBook()
	idx, err := b.Sort()
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	j := b.At(idx)
	if j.Ctx.Len() != 0 || !term.ExactEqual(j.Term, term.Star{}) || !term.ExactEqual(j.Type, term.Square{}) {
		t.Errorf("Sort() judgement = %s, want <> |- * : @", j)
	}
}

func TestVarExtendsContext(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	idx, err := b.Var(s, 'x')
	if err != nil {
		t.Fatalf("Var() error = %v", err)
	}
	j := b.At(idx)
	if j.Ctx.Len() != 1 || j.Ctx.At(0).Var.Name != 'x' {
		t.Fatalf("Var() judgement context = %s, want x:*", j.Ctx)
	}
	if !term.ExactEqual(j.Term, term.Variable{Name: 'x'}) || !term.ExactEqual(j.Type, term.Star{}) {
		t.Errorf("Var() judgement = %s, want x:* |- x : *", j)
	}
}

func TestVarRejectsAlreadyDeclaredVariable(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	x, _ := b.Var(s, 'x')
	if _, err := b.Var(x, 'x'); err == nil {
		t.Errorf("Var() should reject re-declaring an already-present variable")
	}
}

func TestVarRejectsInvalidIndex(t *testing.T) {
	b := newBook()
	if _, err := b.Var(5, 'x'); err == nil {
		t.Errorf("Var() should reject an out-of-range judgement index")
	}
}

func TestWeakSharesContextAndWeakensInPlace(t *testing.T) {
	b := newBook()
	s1, _ := b.Sort()
	s2, _ := b.Sort()
	idx, err := b.Weak(s1, s2, 'y')
	if err != nil {
		t.Fatalf("Weak() error = %v", err)
	}
	j := b.At(idx)
	if j.Ctx.Len() != 1 || j.Ctx.At(0).Var.Name != 'y' {
		t.Fatalf("Weak() judgement context = %s, want y:*", j.Ctx)
	}
	if !term.ExactEqual(j.Term, term.Star{}) || !term.ExactEqual(j.Type, term.Square{}) {
		t.Errorf("Weak() judgement = %s, want y:* |- * : @", j)
	}
}

func TestWeakRejectsMismatchedContexts(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	x, _ := b.Var(s, 'x')
	if _, err := b.Weak(s, x, 'y'); err == nil {
		t.Errorf("Weak() should reject premises that do not share a context")
	}
}

func TestFormBuildsPiOfSorts(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	weakened, _ := b.Weak(s, s, 'x') // x:* |- * : @
	idx, err := b.Form(s, weakened)
	if err != nil {
		t.Fatalf("Form() error = %v", err)
	}
	j := b.At(idx)
	pi, ok := j.Term.(term.AbstPi)
	if !ok {
		t.Fatalf("Form() judgement term = %s, want a pi abstraction", j.Term)
	}
	if !term.ExactEqual(pi.BoundType, term.Star{}) || !term.ExactEqual(pi.Body, term.Star{}) {
		t.Errorf("Form() built %s, want ?x:*.*", pi)
	}
}

func TestFormRejectsNonExtendingContext(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	if _, err := b.Form(s, s); err == nil {
		t.Errorf("Form() should reject a second premise whose context does not extend the first's by one declaration")
	}
}

func buildPiOfSorts(t *testing.T, b *Book) (sort, weakened, pi int) {
	t.Helper()
	var err error
	sort, err = b.Sort()
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	weakened, err = b.Weak(sort, sort, 'x')
	if err != nil {
		t.Fatalf("Weak() error = %v", err)
	}
	pi, err = b.Form(sort, weakened)
	if err != nil {
		t.Fatalf("Form() error = %v", err)
	}
	return
}

func TestAbstBuildsIdentityLambda(t *testing.T) {
	b := newBook()
	s, _, pi := buildPiOfSorts(t, b)
	x, err := b.Var(s, 'x')
	if err != nil {
		t.Fatalf("Var() error = %v", err)
	}
	idx, err := b.Abst(x, pi)
	if err != nil {
		t.Fatalf("Abst() error = %v", err)
	}
	j := b.At(idx)
	lam, ok := j.Term.(term.AbstLambda)
	if !ok {
		t.Fatalf("Abst() judgement term = %s, want a lambda abstraction", j.Term)
	}
	if !term.ExactEqual(lam.Body, term.Variable{Name: 'x'}) {
		t.Errorf("Abst() built %s, want body x", lam)
	}
}

func TestApplAppliesLambdaToConstant(t *testing.T) {
	b := newBook()
	s, _, pi := buildPiOfSorts(t, b)
	x, _ := b.Var(s, 'x')
	lam, err := b.Abst(x, pi)
	if err != nil {
		t.Fatalf("Abst() error = %v", err)
	}
	nat, err := b.Defpr(s, "nat")
	if err != nil {
		t.Fatalf("Defpr() error = %v", err)
	}
	idx, err := b.Appl(lam, nat)
	if err != nil {
		t.Fatalf("Appl() error = %v", err)
	}
	j := b.At(idx)
	if !term.ExactEqual(j.Type, term.Star{}) {
		t.Errorf("Appl() result type = %s, want *", j.Type)
	}
}

func TestApplRejectsNonPiFunction(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	if _, err := b.Appl(s, s); err == nil {
		t.Errorf("Appl() should reject a function whose type is not a pi abstraction")
	}
}

func TestConvRewritesType(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	nat, _ := b.Defpr(s, "nat")
	idx, err := b.Conv(nat, s)
	if err != nil {
		t.Fatalf("Conv() error = %v", err)
	}
	j := b.At(idx)
	if !term.ExactEqual(j.Type, term.Star{}) {
		t.Errorf("Conv() result type = %s, want *", j.Type)
	}
}

func TestDefBindsNewConstant(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	idx, err := b.Def(s, "star_alias")
	if err != nil {
		t.Fatalf("Def() error = %v", err)
	}
	if !b.Env.IsConstantDefined("star_alias") {
		t.Errorf("Def() should have bound star_alias in the environment")
	}
	j := b.At(idx)
	c, ok := j.Term.(term.Constant)
	if !ok || c.Name != "star_alias" {
		t.Errorf("Def() judgement term = %s, want star_alias[]", j.Term)
	}
}

func TestDefRejectsDuplicateName(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	b.Def(s, "dup")
	if _, err := b.Def(s, "dup"); err == nil {
		t.Errorf("Def() should reject a name already bound")
	}
}

func TestDefprRequiresSortedPremise(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	nat, _ := b.Defpr(s, "nat")
	zero, _ := b.Defpr(nat, "zero")
	// zero[]'s type is nat[], not a sort: defpr on it should fail
	if _, err := b.Defpr(zero, "oops"); err == nil {
		t.Errorf("Defpr() should reject a premise whose term is not sorted")
	}
}

func TestInstInstantiatesNoArgConstant(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	b.Def(s, "star_alias")
	idx, err := b.Inst("star_alias", nil)
	if err != nil {
		t.Fatalf("Inst() error = %v", err)
	}
	j := b.At(idx)
	if !term.ExactEqual(j.Type, term.Square{}) {
		t.Errorf("Inst() result type = %s, want @", j.Type)
	}
}

func TestInstRejectsArityMismatch(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	b.Def(s, "star_alias")
	if _, err := b.Inst("star_alias", []int{s}); err == nil {
		t.Errorf("Inst() should reject a wrong argument count")
	}
}

func TestCpDuplicatesJudgement(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	x, _ := b.Var(s, 'x')
	idx, err := b.Cp(x)
	if err != nil {
		t.Fatalf("Cp() error = %v", err)
	}
	orig, dup := b.At(x), b.At(idx)
	if !context.Equiv(orig.Ctx, dup.Ctx) || !term.ExactEqual(orig.Term, dup.Term) || !term.ExactEqual(orig.Type, dup.Type) {
		t.Errorf("Cp() judgement = %s, want a duplicate of %s", dup, orig)
	}
	if idx == x {
		t.Errorf("Cp() should append a new judgement, not reuse the original index")
	}
}

func TestCpRejectsInvalidIndex(t *testing.T) {
	b := newBook()
	if _, err := b.Cp(5); err == nil {
		t.Errorf("Cp() should reject an out-of-range judgement index")
	}
}

func TestSpSelectsContextEntry(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	x, _ := b.Var(s, 'x')
	idx, err := b.Sp(x, 0)
	if err != nil {
		t.Fatalf("Sp() error = %v", err)
	}
	j := b.At(idx)
	if j.Ctx.Len() != 1 || j.Ctx.At(0).Var.Name != 'x' {
		t.Errorf("Sp() judgement context = %s, want x:* (env_m's own context)", j.Ctx)
	}
	if !term.ExactEqual(j.Term, term.Variable{Name: 'x'}) || !term.ExactEqual(j.Type, term.Star{}) {
		t.Errorf("Sp() judgement = %s, want x:* |- x : *", j)
	}
}

func TestSpRejectsOutOfRangePosition(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	x, _ := b.Var(s, 'x')
	if _, err := b.Sp(x, 5); err == nil {
		t.Errorf("Sp() should reject an out-of-range context position")
	}
}

func TestTpRequiresStarSquarePremise(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	idx, err := b.Tp(s)
	if err != nil {
		t.Fatalf("Tp() error = %v", err)
	}
	j := b.At(idx)
	if !term.ExactEqual(j.Term, term.Square{}) || !term.ExactEqual(j.Type, term.Square{}) {
		t.Errorf("Tp() judgement = %s, want <> |- @ : @", j)
	}
}

func TestTpRejectsNonStarSquarePremise(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	x, _ := b.Var(s, 'x')
	if _, err := b.Tp(x); err == nil {
		t.Errorf("Tp() should reject a premise whose term is not Star and type is not Square")
	}
}

func TestSkipChecksBypassesApplicabilityPredicates(t *testing.T) {
	b := newBook()
	b.SkipChecks = true
	s, _ := b.Sort()
	x, _ := b.Var(s, 'x')
	// re-declaring x would normally be rejected; with SkipChecks it is trusted
	if _, err := b.Var(x, 'x'); err != nil {
		t.Errorf("Var() with SkipChecks should not re-validate: got error %v", err)
	}
}

func TestTraceEntryForName(t *testing.T) {
	b := newBook()
	s, _ := b.Sort()
	b.Def(s, "star_alias")
	e, ok := b.TraceEntryForName("star_alias")
	if !ok {
		t.Fatalf("TraceEntryForName() should find the def entry for star_alias")
	}
	if e.Opcode != "def" || e.Name != "star_alias" {
		t.Errorf("TraceEntryForName() = %+v, want opcode def, name star_alias", e)
	}
	if _, ok := b.TraceEntryForName("missing"); ok {
		t.Errorf("TraceEntryForName() should report false for an unbound name")
	}
}
