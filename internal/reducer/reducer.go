// Package reducer implements beta- and delta-reduction, rank-gated
// delta-unfolding, and the combined normal-form computation used by
// convertibility checking and type synthesis.
package reducer

import (
	"fmt"

	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/term"
)

// IsBetaRedex reports whether t is an immediate beta redex: an
// Application whose function position is an AbstLambda.
func IsBetaRedex(t term.Term) bool {
	app, ok := t.(term.Application)
	if !ok {
		return false
	}
	_, ok = app.Fn.(term.AbstLambda)
	return ok
}

// BetaStep performs a single leftmost-outermost beta contraction and
// reports whether t changed.
func BetaStep(t term.Term) (term.Term, bool) {
	switch x := t.(type) {
	case term.Star, term.Square, term.Variable:
		return t, false
	case term.Application:
		if lam, ok := x.Fn.(term.AbstLambda); ok {
			return term.Substitute(lam.Body, lam.Bound.Name, x.Arg), true
		}
		if fn, changed := BetaStep(x.Fn); changed {
			return term.Application{Fn: fn, Arg: x.Arg}, true
		}
		if arg, changed := BetaStep(x.Arg); changed {
			return term.Application{Fn: x.Fn, Arg: arg}, true
		}
		return t, false
	case term.AbstLambda:
		if bt, changed := BetaStep(x.BoundType); changed {
			return term.AbstLambda{Bound: x.Bound, BoundType: bt, Body: x.Body}, true
		}
		if body, changed := BetaStep(x.Body); changed {
			return term.AbstLambda{Bound: x.Bound, BoundType: x.BoundType, Body: body}, true
		}
		return t, false
	case term.AbstPi:
		if bt, changed := BetaStep(x.BoundType); changed {
			return term.AbstPi{Bound: x.Bound, BoundType: bt, Body: x.Body}, true
		}
		if body, changed := BetaStep(x.Body); changed {
			return term.AbstPi{Bound: x.Bound, BoundType: x.BoundType, Body: body}, true
		}
		return t, false
	case term.Constant:
		args := make([]term.Term, len(x.Args))
		changedAny := false
		for i, a := range x.Args {
			if changedAny {
				args[i] = a
				continue
			}
			na, changed := BetaStep(a)
			args[i] = na
			if changed {
				changedAny = true
			}
		}
		if changedAny {
			return term.Constant{Name: x.Name, Args: args}, true
		}
		return t, false
	default:
		panic(fmt.Sprintf("reducer.BetaStep: unhandled variant %T", t))
	}
}

// BetaNF reduces t to beta normal form by repeated BetaStep.
func BetaNF(t term.Term) term.Term {
	for {
		next, changed := BetaStep(t)
		if !changed {
			return t
		}
		t = next
	}
}

// IsBetaNormalForm reports whether t admits no further beta step.
func IsBetaNormalForm(t term.Term) bool {
	_, changed := BetaStep(t)
	return !changed
}

// Rank is re-exported from environment for callers that only import
// reducer.
func Rank(env *environment.Environment, t term.Term) int {
	return env.Rank(t)
}

// DeltaNFAbove unfolds every Constant subterm whose rank is >= idx and
// which is not primitive, repeating until no further unfolding
// applies at this gate. Constants below the gate, and primitive
// constants, are left folded.
func DeltaNFAbove(env *environment.Environment, t term.Term, idx int) term.Term {
	for {
		next, changed := deltaStepAbove(env, t, idx)
		if !changed {
			return t
		}
		t = next
	}
}

func deltaStepAbove(env *environment.Environment, t term.Term, idx int) (term.Term, bool) {
	switch x := t.(type) {
	case term.Star, term.Square, term.Variable:
		return t, false
	case term.Application:
		if fn, changed := deltaStepAbove(env, x.Fn, idx); changed {
			return term.Application{Fn: fn, Arg: x.Arg}, true
		}
		if arg, changed := deltaStepAbove(env, x.Arg, idx); changed {
			return term.Application{Fn: x.Fn, Arg: arg}, true
		}
		return t, false
	case term.AbstLambda:
		if bt, changed := deltaStepAbove(env, x.BoundType, idx); changed {
			return term.AbstLambda{Bound: x.Bound, BoundType: bt, Body: x.Body}, true
		}
		if body, changed := deltaStepAbove(env, x.Body, idx); changed {
			return term.AbstLambda{Bound: x.Bound, BoundType: x.BoundType, Body: body}, true
		}
		return t, false
	case term.AbstPi:
		if bt, changed := deltaStepAbove(env, x.BoundType, idx); changed {
			return term.AbstPi{Bound: x.Bound, BoundType: bt, Body: x.Body}, true
		}
		if body, changed := deltaStepAbove(env, x.Body, idx); changed {
			return term.AbstPi{Bound: x.Bound, BoundType: x.BoundType, Body: body}, true
		}
		return t, false
	case term.Constant:
		if env.IsConstantDefined(x.Name) && env.Rank(x) >= idx {
			return env.DeltaReduce(x), true
		}
		args := make([]term.Term, len(x.Args))
		changedAny := false
		for i, a := range x.Args {
			if changedAny {
				args[i] = a
				continue
			}
			na, changed := deltaStepAbove(env, a, idx)
			args[i] = na
			if changed {
				changedAny = true
			}
		}
		if changedAny {
			return term.Constant{Name: x.Name, Args: args}, true
		}
		return t, false
	default:
		panic(fmt.Sprintf("reducer.deltaStepAbove: unhandled variant %T", t))
	}
}

// IsDeltaReducibleAbove reports whether t has a Constant subterm
// eligible for unfolding at gate idx.
func IsDeltaReducibleAbove(env *environment.Environment, t term.Term, idx int) bool {
	_, changed := deltaStepAbove(env, t, idx)
	return changed
}

// NFAbove computes the joint beta/delta normal form of t, unfolding
// only constants ranked >= idx, by interleaving BetaNF and
// DeltaNFAbove until a round changes nothing. It self-checks that the
// result is idempotent under one more round, panicking otherwise —
// a defect in the reduction rules would otherwise silently produce a
// term that is not actually normal.
func NFAbove(env *environment.Environment, t term.Term, idx int) term.Term {
	for {
		afterBeta := BetaNF(t)
		afterDelta := DeltaNFAbove(env, afterBeta, idx)
		if term.Alpha(afterDelta, t) {
			checked := BetaNF(afterDelta)
			checked = DeltaNFAbove(env, checked, idx)
			if !term.Alpha(checked, afterDelta) {
				panic("reducer.NFAbove: normal form is not idempotent")
			}
			return afterDelta
		}
		t = afterDelta
	}
}

// NF computes the full normal form, unfolding every constant
// (equivalent to NFAbove with idx 0).
func NF(env *environment.Environment, t term.Term) term.Term {
	return NFAbove(env, t, 0)
}

// IsNormalForm reports whether t is already in NFAbove(idx) form.
func IsNormalForm(env *environment.Environment, t term.Term, idx int) bool {
	return IsBetaNormalForm(t) && !IsDeltaReducibleAbove(env, t, idx)
}

// ReduceApplication exposes the head of t one step, unfolding
// whatever delta-reducible constant stands in function position of an
// outermost application until either a lambda is exposed (enabling a
// beta step) or no more unfolding is possible. This is the entry
// point convertibility uses to compare two applications whose heads
// are folded constants.
func ReduceApplication(env *environment.Environment, t term.Term) (term.Term, bool) {
	switch x := t.(type) {
	case term.Application:
		if IsBetaRedex(t) {
			next, _ := BetaStep(t)
			return next, true
		}
		if fn, changed := ReduceApplication(env, x.Fn); changed {
			return term.Application{Fn: fn, Arg: x.Arg}, true
		}
		return t, false
	case term.Constant:
		if env.IsConstantDefined(x.Name) {
			return env.DeltaReduce(x), true
		}
		return t, false
	default:
		return t, false
	}
}
