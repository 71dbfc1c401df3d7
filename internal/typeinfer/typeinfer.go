// Package typeinfer computes the normal-form type of a term under a
// context and environment, the type_of operation at the heart of the
// kernel.
package typeinfer

import (
	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/convert"
	"github.com/lambdadelta/proofkit/internal/diagnostics"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/reducer"
	"github.com/lambdadelta/proofkit/internal/term"
)

// TypeOf computes the type of t under ctx and env, in normal form.
// It returns a *diagnostics.Error of Kind Type on any ill-typedness.
func TypeOf(env *environment.Environment, ctx context.Context, t term.Term) (term.Term, error) {
	switch x := t.(type) {
	case term.Square:
		return nil, diagnostics.Newf(diagnostics.Type, "the kind square has no type")

	case term.Star:
		return term.Square{}, nil

	case term.Variable:
		ty, ok := ctx.TypeOf(x.Name)
		if !ok {
			return nil, diagnostics.Newf(diagnostics.Type, "variable %q is not declared in the context", string(x.Name))
		}
		return reducer.NF(env, ty), nil

	case term.Application:
		tFn, err := TypeOf(env, ctx, x.Fn)
		if err != nil {
			return nil, err
		}
		piNF := reducer.NF(env, tFn)
		pi, ok := piNF.(term.AbstPi)
		if !ok {
			return nil, diagnostics.Newf(diagnostics.Type, "type of the function in an application is not a pi abstraction")
		}
		tArg, err := TypeOf(env, ctx, x.Arg)
		if err != nil {
			return nil, err
		}
		if !convert.Conv(env, tArg, pi.BoundType) {
			return nil, diagnostics.Newf(diagnostics.Type, "argument type does not match the domain of the applied pi abstraction")
		}
		result := term.Substitute(pi.Body, pi.Bound.Name, x.Arg)
		return reducer.NF(env, result), nil

	case term.AbstLambda:
		boundSort, err := TypeOf(env, ctx, x.BoundType)
		if err != nil {
			return nil, err
		}
		if !term.IsSort(reducer.NF(env, boundSort)) {
			return nil, diagnostics.Newf(diagnostics.Type, "the domain of a lambda abstraction is not itself a type or kind")
		}
		bound, boundType, body := renameIfShadowed(ctx, x.Bound, x.BoundType, x.Body)
		innerCtx := ctx.Append(bound, boundType)
		tBody, err := TypeOf(env, innerCtx, body)
		if err != nil {
			return nil, err
		}
		return reducer.NF(env, term.AbstPi{Bound: bound, BoundType: boundType, Body: tBody}), nil

	case term.AbstPi:
		domSort, err := TypeOf(env, ctx, x.BoundType)
		if err != nil {
			return nil, err
		}
		if !term.IsSort(reducer.NF(env, domSort)) {
			return nil, diagnostics.Newf(diagnostics.Type, "the domain of a pi abstraction is not itself a type or kind")
		}
		bound, boundType, body := renameIfShadowed(ctx, x.Bound, x.BoundType, x.Body)
		innerCtx := ctx.Append(bound, boundType)
		codSort, err := TypeOf(env, innerCtx, body)
		if err != nil {
			return nil, err
		}
		codSortNF := reducer.NF(env, codSort)
		if !term.IsSort(codSortNF) {
			return nil, diagnostics.Newf(diagnostics.Type, "the codomain of a pi abstraction is not itself a type or kind")
		}
		return codSortNF, nil

	case term.Constant:
		def, ok := env.Lookup(x.Name)
		if !ok {
			return nil, diagnostics.Newf(diagnostics.Type, "constant %q is not defined", x.Name)
		}
		if len(x.Args) != def.Ctx.Len() {
			return nil, diagnostics.Newf(diagnostics.Type, "constant %q expects %d argument(s), got %d", x.Name, def.Ctx.Len(), len(x.Args))
		}
		for i, arg := range x.Args {
			tArg, err := TypeOf(env, ctx, arg)
			if err != nil {
				return nil, err
			}
			paramType := def.Ctx.At(i).Type
			names := make([]byte, i)
			values := make([]term.Term, i)
			for j := 0; j < i; j++ {
				names[j] = def.Ctx.At(j).Var.Name
				values[j] = x.Args[j]
			}
			paramType = term.SubstituteAll(paramType, names, values)
			if !convert.Conv(env, tArg, paramType) {
				return nil, diagnostics.Newf(diagnostics.Type, "argument %d to constant %q does not match its declared parameter type", i+1, x.Name)
			}
		}
		names := make([]byte, def.Ctx.Len())
		for i := 0; i < def.Ctx.Len(); i++ {
			names[i] = def.Ctx.At(i).Var.Name
		}
		result := term.SubstituteAll(term.Copy(def.Type), names, x.Args)
		return reducer.NF(env, result), nil

	default:
		return nil, diagnostics.Newf(diagnostics.Type, "cannot compute the type of an unrecognized term shape")
	}
}

// renameIfShadowed renames bound to a context-fresh variable,
// rewriting boundType and body accordingly, when bound already occurs
// free in ctx — avoiding accidental capture of an outer declaration
// of the same name.
func renameIfShadowed(ctx context.Context, bound term.Variable, boundType, body term.Term) (term.Variable, term.Term, term.Term) {
	if !ctx.HasVariable(bound.Name) {
		return bound, boundType, body
	}
	fresh, err := context.Fresh(ctx, boundType, body)
	if err != nil {
		return bound, boundType, body
	}
	renamed := term.Variable{Name: fresh}
	return renamed, boundType, term.Substitute(body, bound.Name, renamed)
}
