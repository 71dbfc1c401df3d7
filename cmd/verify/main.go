// Command verify replays a proof script against an empty book,
// applying each line's rule in order and failing loudly at the first
// inference error.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lambdadelta/proofkit/internal/book"
	"github.com/lambdadelta/proofkit/internal/config"
	"github.com/lambdadelta/proofkit/internal/diagnostics"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/parser"
	"github.com/lambdadelta/proofkit/internal/trace"
)

// preferencesFile is the optional per-project configuration consulted
// for defaults before flags are applied, per the working directory.
const preferencesFile = ".proofkit.yaml"

func usage() {
	fmt.Fprintf(os.Stderr, `usage: verify [-v] [-s] [FILE]

Replays the script in FILE (or stdin, if omitted) line by line,
applying each cited inference rule and reporting the first failure.

  -v  verbose: trace every successful rule application to stderr
  -s  silent: suppress the summary line on success
  -h  show this help
`)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	prefs, err := config.Load(preferencesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %s: %v\n", preferencesFile, err)
		return 1
	}

	var file string
	verbose, silent := prefs.Verbose, false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v":
			verbose = true
		case "-s":
			silent = true
		case "-h", "--help":
			usage()
			return 0
		default:
			if len(args[i]) > 0 && args[i][0] == '-' {
				fmt.Fprintf(os.Stderr, "verify: unrecognized flag %q\n", args[i])
				usage()
				return 2
			}
			if file != "" {
				fmt.Fprintln(os.Stderr, "verify: only one script file may be given")
				return 2
			}
			file = args[i]
		}
	}

	var source []byte
	name := file
	if file == "" {
		name = "<stdin>"
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(file)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 1
	}

	lines, err := parser.ParseScript(name, string(source))
	if err != nil {
		reportError(err, string(source))
		return 1
	}

	env := environment.New()
	b := book.New(env)
	b.SkipChecks = prefs.SkipChecks
	tr := trace.New(os.Stderr, verbose)

	bookIdx := map[int]int{} // script line number -> book judgement index

	for _, line := range lines {
		idx, err := applyLine(b, bookIdx, line)
		if err != nil {
			tr.Fail(line.Opcode, err)
			reportError(err, string(source))
			return 1
		}
		bookIdx[line.LineNo] = idx
		tr.Rule(line.Opcode, idx)
	}

	if !silent {
		fmt.Fprintf(os.Stderr, "verify: %s ok, %d judgement(s) derived, %d constant(s) defined\n", name, b.Len(), env.Len())
	}
	return 0
}

func applyLine(b *book.Book, bookIdx map[int]int, line parser.ScriptLine) (int, error) {
	cite := func(n int) (int, error) {
		idx, ok := bookIdx[n]
		if !ok {
			return -1, diagnostics.Newf(diagnostics.Deduction, "line %d cites undefined script line %d", line.LineNo, n)
		}
		return idx, nil
	}
	citeOperand := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return -1, diagnostics.Newf(diagnostics.Deduction, "line %d: %q is not a valid line-number operand", line.LineNo, s)
		}
		return cite(n)
	}

	switch line.Opcode {
	case "sort":
		return b.Sort()
	case "var":
		if len(line.Operands) != 2 {
			return -1, arityErr(line, 2)
		}
		j, err := citeOperand(line.Operands[0])
		if err != nil {
			return -1, err
		}
		return b.Var(j, line.Operands[1][0])
	case "weak":
		if len(line.Operands) != 3 {
			return -1, arityErr(line, 3)
		}
		j, err := citeOperand(line.Operands[0])
		if err != nil {
			return -1, err
		}
		k, err := citeOperand(line.Operands[1])
		if err != nil {
			return -1, err
		}
		return b.Weak(j, k, line.Operands[2][0])
	case "form":
		return binaryRule(line, citeOperand, b.Form)
	case "appl":
		return binaryRule(line, citeOperand, b.Appl)
	case "abst":
		return binaryRule(line, citeOperand, b.Abst)
	case "conv":
		return binaryRule(line, citeOperand, b.Conv)
	case "def":
		if len(line.Operands) != 2 {
			return -1, arityErr(line, 2)
		}
		j, err := citeOperand(line.Operands[0])
		if err != nil {
			return -1, err
		}
		return b.Def(j, line.Operands[1])
	case "defpr":
		if len(line.Operands) != 2 {
			return -1, arityErr(line, 2)
		}
		j, err := citeOperand(line.Operands[0])
		if err != nil {
			return -1, err
		}
		return b.Defpr(j, line.Operands[1])
	case "inst":
		if len(line.Operands) < 1 {
			return -1, arityErr(line, 1)
		}
		name := line.Operands[0]
		args := make([]int, 0, len(line.Operands)-1)
		for _, op := range line.Operands[1:] {
			idx, err := citeOperand(op)
			if err != nil {
				return -1, err
			}
			args = append(args, idx)
		}
		return b.Inst(name, args)
	case "cp":
		return unaryRule(line, citeOperand, b.Cp)
	case "sp":
		if len(line.Operands) != 2 {
			return -1, arityErr(line, 2)
		}
		j, err := citeOperand(line.Operands[0])
		if err != nil {
			return -1, err
		}
		pos, err := strconv.Atoi(line.Operands[1])
		if err != nil {
			return -1, diagnostics.Newf(diagnostics.Deduction, "line %d: %q is not a valid position operand", line.LineNo, line.Operands[1])
		}
		return b.Sp(j, pos)
	case "tp":
		return unaryRule(line, citeOperand, b.Tp)
	default:
		return -1, diagnostics.Newf(diagnostics.Deduction, "line %d: unrecognized opcode %q", line.LineNo, line.Opcode)
	}
}

func arityErr(line parser.ScriptLine, want int) error {
	return diagnostics.Newf(diagnostics.Deduction, "line %d: %q expects %d operand(s), got %d", line.LineNo, line.Opcode, want, len(line.Operands))
}

func binaryRule(line parser.ScriptLine, citeOperand func(string) (int, error), rule func(int, int) (int, error)) (int, error) {
	if len(line.Operands) != 2 {
		return -1, arityErr(line, 2)
	}
	j, err := citeOperand(line.Operands[0])
	if err != nil {
		return -1, err
	}
	k, err := citeOperand(line.Operands[1])
	if err != nil {
		return -1, err
	}
	return rule(j, k)
}

func unaryRule(line parser.ScriptLine, citeOperand func(string) (int, error), rule func(int) (int, error)) (int, error) {
	if len(line.Operands) != 1 {
		return -1, arityErr(line, 1)
	}
	j, err := citeOperand(line.Operands[0])
	if err != nil {
		return -1, err
	}
	return rule(j)
}

func reportError(err error, source string) {
	if de, ok := err.(*diagnostics.Error); ok {
		fmt.Fprintln(os.Stderr, de.Render(splitLines(source)))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
