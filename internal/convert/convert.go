// Package convert implements beta-delta convertibility: the decision
// procedure comparing two terms up to reduction and constant
// unfolding, used by the conv inference rule and type synthesis.
package convert

import (
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/reducer"
	"github.com/lambdadelta/proofkit/internal/term"
)

// Conv reports whether a and b are convertible in env: equal after
// some sequence of beta and delta steps on either side.
func Conv(env *environment.Environment, a, b term.Term) bool {
	if term.Alpha(a, b) {
		return true
	}

	switch x := a.(type) {
	case term.Star:
		_, ok := b.(term.Star)
		return ok
	case term.Square:
		_, ok := b.(term.Square)
		return ok
	case term.Variable:
		y, ok := b.(term.Variable)
		return ok && x.Name == y.Name
	case term.Application:
		if y, ok := b.(term.Application); ok {
			if Conv(env, x.Fn, y.Fn) && Conv(env, x.Arg, y.Arg) {
				return true
			}
		}
		return convByUnfolding(env, a, b)
	case term.AbstLambda:
		y, ok := b.(term.AbstLambda)
		if !ok {
			return false
		}
		return convBinder(env, x.Bound, x.BoundType, x.Body, y.Bound, y.BoundType, y.Body)
	case term.AbstPi:
		y, ok := b.(term.AbstPi)
		if !ok {
			return false
		}
		return convBinder(env, x.Bound, x.BoundType, x.Body, y.Bound, y.BoundType, y.Body)
	case term.Constant:
		if y, ok := b.(term.Constant); ok && x.Name == y.Name && len(x.Args) == len(y.Args) {
			allConv := true
			for i := range x.Args {
				if !Conv(env, x.Args[i], y.Args[i]) {
					allConv = false
					break
				}
			}
			if allConv {
				return true
			}
		}
		return convByUnfolding(env, a, b)
	default:
		return false
	}
}

func convBinder(env *environment.Environment, an term.Variable, at, abody term.Term, bn term.Variable, bt, bbody term.Term) bool {
	if !Conv(env, at, bt) {
		return false
	}
	if an.Name == bn.Name {
		return Conv(env, abody, bbody)
	}
	fresh, err := term.Fresh(abody, bbody)
	if err != nil {
		return false
	}
	renamedA := term.Substitute(abody, an.Name, term.Variable{Name: fresh})
	renamedB := term.Substitute(bbody, bn.Name, term.Variable{Name: fresh})
	return Conv(env, renamedA, renamedB)
}

// convByUnfolding is reached when two terms of matching or differing
// shape failed structural convertibility: unfold whichever side
// carries the higher rank constant and retry. If neither side has
// anything left to unfold, the terms are not convertible.
func convByUnfolding(env *environment.Environment, a, b term.Term) bool {
	rankA, rankB := env.Rank(a), env.Rank(b)

	switch {
	case rankA == -1 && rankB == -1:
		return false
	case rankA >= rankB:
		next, changed := reducer.ReduceApplication(env, a)
		if !changed {
			next, changed = unfoldAny(env, a, rankA)
			if !changed {
				return unfoldOtherSide(env, a, b, rankB)
			}
		}
		return Conv(env, next, b)
	default:
		next, changed := reducer.ReduceApplication(env, b)
		if !changed {
			next, changed = unfoldAny(env, b, rankB)
			if !changed {
				return false
			}
		}
		return Conv(env, a, next)
	}
}

func unfoldOtherSide(env *environment.Environment, a, b term.Term, rankB int) bool {
	next, changed := reducer.ReduceApplication(env, b)
	if !changed {
		next, changed = unfoldAny(env, b, rankB)
		if !changed {
			return false
		}
	}
	return Conv(env, a, next)
}

// unfoldAny runs a full delta-nf pass over t, gated at t's own rank,
// whenever t has a delta-reducible constant anywhere (including one
// that sits only in an application's argument). It reports false and
// returns t unchanged when there is nothing to unfold.
func unfoldAny(env *environment.Environment, t term.Term, rank int) (term.Term, bool) {
	if !reducer.IsDeltaReducibleAbove(env, t, rank) {
		return t, false
	}
	return reducer.DeltaNFAbove(env, t, rank), true
}
