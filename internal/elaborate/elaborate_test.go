package elaborate

import (
	"testing"

	"github.com/lambdadelta/proofkit/internal/book"
	"github.com/lambdadelta/proofkit/internal/context"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/parser"
	"github.com/lambdadelta/proofkit/internal/term"
)

func TestFilePrimitiveEntryDefpr(t *testing.T) {
	b := book.New(environment.New())
	entries := []parser.DefEntry{
		{Name: "nat", Ctx: context.Empty(), Value: nil, Type: term.Star{}},
	}
	if err := File(b, "test.def", entries); err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if !b.Env.HasConstant("nat") {
		t.Fatalf("File() should have defined the primitive constant nat")
	}
	entry, ok := b.TraceEntryForName("nat")
	if !ok || entry.Opcode != "defpr" {
		t.Errorf("trace entry for nat = %+v, want opcode defpr", entry)
	}
}

func TestFileValuedEntryDef(t *testing.T) {
	b := book.New(environment.New())
	entries := []parser.DefEntry{
		{Name: "star_alias", Ctx: context.Empty(), Value: term.Star{}, Type: term.Square{}},
	}
	if err := File(b, "test.def", entries); err != nil {
		t.Fatalf("File() error = %v", err)
	}
	entry, ok := b.TraceEntryForName("star_alias")
	if !ok || entry.Opcode != "def" {
		t.Errorf("trace entry for star_alias = %+v, want opcode def", entry)
	}
}

func TestFileRejectsTypeMismatch(t *testing.T) {
	b := book.New(environment.New())
	entries := []parser.DefEntry{
		// Star{} synthesizes to Square{}, which does not convert to
		// the declared type Star{}.
		{Name: "bad", Ctx: context.Empty(), Value: term.Star{}, Type: term.Star{}},
	}
	if err := File(b, "test.def", entries); err == nil {
		t.Errorf("File() should reject a value whose inferred type does not convert to its declared type")
	}
}

func TestFileReportsUndeclaredVariable(t *testing.T) {
	b := book.New(environment.New())
	entries := []parser.DefEntry{
		{Name: "bad", Ctx: context.Empty(), Value: nil, Type: term.Variable{Name: 'y'}},
	}
	err := File(b, "test.def", entries)
	if err == nil {
		t.Fatalf("File() should fail to type an undeclared free variable")
	}
}

func TestFileStopsAtFirstErrorAndAnnotatesEntryName(t *testing.T) {
	b := book.New(environment.New())
	entries := []parser.DefEntry{
		{Name: "nat", Ctx: context.Empty(), Value: nil, Type: term.Star{}},
		{Name: "bad", Ctx: context.Empty(), Value: nil, Type: term.Variable{Name: 'z'}},
		{Name: "never", Ctx: context.Empty(), Value: nil, Type: term.Star{}},
	}
	err := File(b, "test.def", entries)
	if err == nil {
		t.Fatalf("File() should surface the second entry's error")
	}
	if b.Env.HasConstant("never") {
		t.Errorf("File() should not process entries after the failing one")
	}
	if got := err.Error(); !contains(got, "bad") {
		t.Errorf("error %q should mention the offending entry name", got)
	}
}

func TestContextRefsCollectsConstantsFromEntryTypes(t *testing.T) {
	b := book.New(environment.New())
	if err := File(b, "nat.def", []parser.DefEntry{
		{Name: "nat", Ctx: context.Empty(), Value: nil, Type: term.Star{}},
	}); err != nil {
		t.Fatalf("setup File() error = %v", err)
	}
	ctx := context.Empty().Append(term.Variable{Name: 'x'}, term.Constant{Name: "nat"})
	refs := contextRefs(ctx)
	if len(refs) != 1 || refs[0] != "nat" {
		t.Errorf("contextRefs() = %v, want [nat]", refs)
	}
}

func TestAssertCitesReferencedDependencies(t *testing.T) {
	b := book.New(environment.New())
	if err := File(b, "nat.def", []parser.DefEntry{
		{Name: "nat", Ctx: context.Empty(), Value: nil, Type: term.Star{}},
	}); err != nil {
		t.Fatalf("setup File() error = %v", err)
	}
	ctx := context.Empty().Append(term.Variable{Name: 'x'}, term.Constant{Name: "nat"})
	entries := []parser.DefEntry{
		{Name: "id_nat", Ctx: ctx, Value: term.Variable{Name: 'x'}, Type: term.Constant{Name: "nat"}},
	}
	if err := File(b, "test.def", entries); err != nil {
		t.Fatalf("File() error = %v", err)
	}
	entry, ok := b.TraceEntryForName("id_nat")
	if !ok {
		t.Fatalf("expected a trace entry for id_nat")
	}
	// id_nat's def entry cites the asserted judgement; that assert entry
	// carries the edges to the constants it references.
	if len(entry.Cited) != 1 {
		t.Fatalf("id_nat's trace entry %+v should cite exactly its asserted judgement", entry)
	}
	assertEntry, ok := b.TraceEntryForIndex(entry.Cited[0])
	if !ok || assertEntry.Opcode != "assert" {
		t.Fatalf("id_nat's trace entry should cite an assert entry, got %+v", assertEntry)
	}
	natEntry, _ := b.TraceEntryForName("nat")
	found := false
	for _, c := range assertEntry.Cited {
		if c == natEntry.Index {
			found = true
		}
	}
	if !found {
		t.Errorf("id_nat's assert entry %+v should cite nat's producing index %d", assertEntry, natEntry.Index)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
