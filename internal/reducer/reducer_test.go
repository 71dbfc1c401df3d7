package reducer

import (
	"testing"

	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/term"
)

func v(name byte) term.Variable { return term.Variable{Name: name} }

func TestIsBetaRedex(t *testing.T) {
	redex := term.Application{Fn: term.AbstLambda{Bound: v('x'), BoundType: term.Star{}, Body: v('x')}, Arg: term.Star{}}
	if !IsBetaRedex(redex) {
		t.Errorf("application of a lambda should be a redex")
	}
	if IsBetaRedex(term.Application{Fn: v('f'), Arg: v('x')}) {
		t.Errorf("application of a variable should not be a redex")
	}
}

func TestBetaStepContractsLeftmostOutermost(t *testing.T) {
	// (%($x:*.x) *) steps to *
	redex := term.Application{Fn: term.AbstLambda{Bound: v('x'), BoundType: term.Star{}, Body: v('x')}, Arg: term.Star{}}
	got, changed := BetaStep(redex)
	if !changed {
		t.Fatalf("BetaStep should report a change")
	}
	if !term.ExactEqual(got, term.Star{}) {
		t.Errorf("BetaStep() = %s, want *", got)
	}
}

func TestBetaNFReachesNormalForm(t *testing.T) {
	redex := term.Application{Fn: term.AbstLambda{Bound: v('x'), BoundType: term.Star{}, Body: v('x')}, Arg: term.Star{}}
	nf := BetaNF(redex)
	if !term.ExactEqual(nf, term.Star{}) {
		t.Errorf("BetaNF() = %s, want *", nf)
	}
	if !IsBetaNormalForm(nf) {
		t.Errorf("result of BetaNF should itself be in normal form")
	}
}

func TestIsBetaNormalFormOnIrreducible(t *testing.T) {
	if !IsBetaNormalForm(v('x')) {
		t.Errorf("a bare variable is already in normal form")
	}
}

func newEnvWithNat() *environment.Environment {
	e := environment.New()
	e.Append(environment.Definition{Name: "nat", Type: term.Star{}}) // index 0, primitive
	e.Append(environment.Definition{
		Name:  "id",
		Ctx:   context.Empty().Append(v('x'), term.Star{}),
		Value: v('x'),
		Type:  term.Star{},
	}) // index 1
	return e
}

func TestDeltaNFAboveUnfoldsAtOrAboveGate(t *testing.T) {
	e := newEnvWithNat()
	c := term.Constant{Name: "id", Args: []term.Term{term.Constant{Name: "nat"}}}

	unfolded := DeltaNFAbove(e, c, 1)
	want := term.Constant{Name: "nat"}
	if !term.ExactEqual(unfolded, want) {
		t.Errorf("DeltaNFAbove(gate=1) = %s, want %s", unfolded, want)
	}

	folded := DeltaNFAbove(e, c, 2)
	if !term.ExactEqual(folded, c) {
		t.Errorf("DeltaNFAbove(gate=2) should leave a rank-1 constant folded, got %s", folded)
	}
}

func TestIsDeltaReducibleAbove(t *testing.T) {
	e := newEnvWithNat()
	c := term.Constant{Name: "id", Args: []term.Term{term.Constant{Name: "nat"}}}
	if !IsDeltaReducibleAbove(e, c, 1) {
		t.Errorf("id[...] should be delta-reducible at gate 1")
	}
	if IsDeltaReducibleAbove(e, c, 2) {
		t.Errorf("id[...] should not be delta-reducible at gate 2")
	}
}

func TestNFAboveIsIdempotent(t *testing.T) {
	e := newEnvWithNat()
	c := term.Constant{Name: "id", Args: []term.Term{term.Constant{Name: "nat"}}}
	nf := NFAbove(e, c, 0)
	nf2 := NFAbove(e, nf, 0)
	if !term.Alpha(nf, nf2) {
		t.Errorf("NFAbove should be idempotent: %s vs %s", nf, nf2)
	}
}

func TestNFUnfoldsEverything(t *testing.T) {
	e := newEnvWithNat()
	c := term.Constant{Name: "id", Args: []term.Term{term.Constant{Name: "nat"}}}
	if got := NF(e, c); !term.ExactEqual(got, term.Constant{Name: "nat"}) {
		t.Errorf("NF() = %s, want nat[]", got)
	}
}

func TestIsNormalForm(t *testing.T) {
	e := newEnvWithNat()
	if !IsNormalForm(e, term.Constant{Name: "nat"}, 0) {
		t.Errorf("a primitive constant application is already normal")
	}
	c := term.Constant{Name: "id", Args: []term.Term{term.Constant{Name: "nat"}}}
	if IsNormalForm(e, c, 0) {
		t.Errorf("id[nat[]] is delta-reducible, should not be reported normal")
	}
}

func TestReduceApplicationExposesHead(t *testing.T) {
	e := newEnvWithNat()
	c := term.Constant{Name: "id", Args: []term.Term{term.Constant{Name: "nat"}}}
	next, changed := ReduceApplication(e, c)
	if !changed {
		t.Fatalf("ReduceApplication should unfold a defined constant")
	}
	if !term.ExactEqual(next, term.Constant{Name: "nat"}) {
		t.Errorf("ReduceApplication() = %s, want nat[]", next)
	}

	_, changed = ReduceApplication(e, term.Constant{Name: "nat"})
	if changed {
		t.Errorf("ReduceApplication on a primitive constant should report no change")
	}
}
