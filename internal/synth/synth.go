// Package synth implements the proof-script synthesizer: given a book
// already built while processing a definition file, and a target
// constant name, it computes that constant's dependency closure over
// the book's own rule-application trace and serializes the closure as
// a script, renumbered and terminated by the -1 sentinel. Steps that
// entered the book through Book.Assert are emitted as "assert" lines,
// which cmd/verify does not accept, so only a closure made entirely of
// book-rule steps replays.
package synth

import (
	"strconv"
	"strings"

	"github.com/lambdadelta/proofkit/internal/book"
	"github.com/lambdadelta/proofkit/internal/config"
	"github.com/lambdadelta/proofkit/internal/diagnostics"
)

// Op is one renumbered script line ready for serialization.
type Op struct {
	LineNo   int
	Opcode   string
	Operands []string
}

// Line renders op as "lineno opcode operand...;".
func (op Op) Line() string {
	parts := make([]string, 0, len(op.Operands)+2)
	parts = append(parts, strconv.Itoa(op.LineNo), op.Opcode)
	parts = append(parts, op.Operands...)
	return strings.Join(parts, " ") + ";"
}

// ForName computes the dependency closure of target within b's own
// trace log and returns it as a renumbered script. The
// closure is found by walking backward from target's def/defpr entry
// across every cited judgement index, memoized by index so a shared
// sub-derivation is only ever visited once — the "alpha-equivalence
// keyed subgoal cache" collapses here to a plain index cache, since
// two trace entries sharing a book index are by construction the same
// derivation, not merely alpha-equivalent ones.
func ForName(b *book.Book, target string) ([]Op, error) {
	entry, ok := b.TraceEntryForName(target)
	if !ok {
		return nil, diagnostics.Newf(diagnostics.Deduction, "no definition named %q was derived in this book", target)
	}

	visited := map[int]bool{}
	var order []book.TraceEntry
	var walk func(idx int) error
	walk = func(idx int) error {
		if visited[idx] {
			return nil
		}
		visited[idx] = true
		e, ok := b.TraceEntryForIndex(idx)
		if !ok {
			return diagnostics.Newf(diagnostics.Deduction, "judgement %d has no recorded derivation to replay", idx+1)
		}
		for _, cited := range e.Cited {
			if err := walk(cited); err != nil {
				return err
			}
		}
		order = append(order, e)
		return nil
	}
	if err := walk(entry.Index); err != nil {
		return nil, err
	}

	renumber := map[int]int{}
	ops := make([]Op, 0, len(order))
	for i, e := range order {
		lineNo := i + 1
		renumber[e.Index] = lineNo
		operands := make([]string, 0, len(e.Cited)+len(e.Extra)+1)
		switch e.Opcode {
		case "var":
			operands = append(operands, strconv.Itoa(renumber[e.Cited[0]]))
			operands = append(operands, e.Extra...)
		case "weak":
			operands = append(operands, strconv.Itoa(renumber[e.Cited[0]]), strconv.Itoa(renumber[e.Cited[1]]))
			operands = append(operands, e.Extra...)
		case "def", "defpr":
			operands = append(operands, strconv.Itoa(renumber[e.Cited[0]]), e.Name)
		case "inst":
			operands = append(operands, e.Name)
			for _, c := range e.Cited {
				operands = append(operands, strconv.Itoa(renumber[c]))
			}
		case "sp":
			operands = append(operands, strconv.Itoa(renumber[e.Cited[0]]))
			operands = append(operands, e.Extra...)
		default:
			for _, c := range e.Cited {
				operands = append(operands, strconv.Itoa(renumber[c]))
			}
		}
		ops = append(ops, Op{LineNo: lineNo, Opcode: e.Opcode, Operands: operands})
	}
	return ops, nil
}

// Serialize renders a full script: one line per Op followed by the
// config-defined end sentinel.
func Serialize(ops []Op) string {
	var b strings.Builder
	for _, op := range ops {
		b.WriteString(op.Line())
		b.WriteString("\n")
	}
	b.WriteString(config.ScriptEndSentinel)
	b.WriteString("\n")
	return b.String()
}
