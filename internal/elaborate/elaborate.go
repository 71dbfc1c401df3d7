// Package elaborate loads a parsed definition file into a Book and
// Environment: each entry is type-checked directly (rather than
// replayed rule-by-rule from an explicit script) and then recorded
// via Book.Assert/Def/Defpr so later script synthesis still sees a
// faithful dependency graph between definitions.
package elaborate

import (
	"github.com/lambdadelta/proofkit/internal/book"
	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/convert"
	"github.com/lambdadelta/proofkit/internal/diagnostics"
	"github.com/lambdadelta/proofkit/internal/parser"
	"github.com/lambdadelta/proofkit/internal/term"
	"github.com/lambdadelta/proofkit/internal/typeinfer"
)

// File loads every entry of entries, in order, into b. It returns the
// first type error encountered, wrapped with the offending entry's
// name.
func File(b *book.Book, file string, entries []parser.DefEntry) error {
	for _, e := range entries {
		if err := one(b, file, e); err != nil {
			return err
		}
	}
	return nil
}

func one(b *book.Book, file string, e parser.DefEntry) error {
	refs := contextRefs(e.Ctx)
	refs = append(refs, term.Constants(e.Type)...)

	if e.Value == nil {
		sort, err := typeinfer.TypeOf(b.Env, e.Ctx, e.Type)
		if err != nil {
			return annotate(file, e.Name, err)
		}
		if !term.IsSort(sort) {
			return diagnostics.Newf(diagnostics.Type, "%s: declared type of primitive %q is not itself a type or kind", file, e.Name)
		}
		idx := b.Assert(e.Ctx, e.Type, sort, refs)
		if _, err := b.Defpr(idx, e.Name); err != nil {
			return annotate(file, e.Name, err)
		}
		return nil
	}

	refs = append(refs, term.Constants(e.Value)...)
	valueType, err := typeinfer.TypeOf(b.Env, e.Ctx, e.Value)
	if err != nil {
		return annotate(file, e.Name, err)
	}
	if !convert.Conv(b.Env, valueType, e.Type) {
		return diagnostics.Newf(diagnostics.Type, "%s: declared type of %q does not match its inferred type", file, e.Name)
	}
	idx := b.Assert(e.Ctx, e.Value, e.Type, refs)
	if _, err := b.Def(idx, e.Name); err != nil {
		return annotate(file, e.Name, err)
	}
	return nil
}

func contextRefs(ctx context.Context) []string {
	var out []string
	for _, entry := range ctx.Entries() {
		out = append(out, term.Constants(entry.Type)...)
	}
	return out
}

func annotate(file, name string, err error) error {
	if de, ok := err.(*diagnostics.Error); ok {
		return diagnostics.Newf(de.Kind, "%s: while elaborating %q: %s", file, name, de.Message)
	}
	return err
}
