// Command genscript reads a definition file, elaborates it into a
// book, and emits a proof script — either the whole book or, with -t,
// just the dependency closure of one named constant. Definition-file
// entries enter the book as "assert" steps, which appear as such in
// the output; cmd/verify does not accept them.
package main

import (
	"fmt"
	"os"

	"github.com/lambdadelta/proofkit/internal/book"
	"github.com/lambdadelta/proofkit/internal/config"
	"github.com/lambdadelta/proofkit/internal/diagnostics"
	"github.com/lambdadelta/proofkit/internal/elaborate"
	"github.com/lambdadelta/proofkit/internal/environment"
	"github.com/lambdadelta/proofkit/internal/parser"
	"github.com/lambdadelta/proofkit/internal/synth"
	"github.com/lambdadelta/proofkit/internal/trace"
)

// preferencesFile is the optional per-project configuration consulted
// for defaults before flags are applied, per the working directory.
const preferencesFile = ".proofkit.yaml"

func usage() {
	fmt.Fprintf(os.Stderr, `usage: genscript -f FILE [-o OUTFILE] [-t NAME] [-v] [-s] [-h]

  -f FILE    definition file to read (required)
  -o OUTFILE script output path (default: stdout)
  -t NAME    emit only the dependency closure of constant NAME
             (default: the closure of the file's last definition)
  -v         verbose: trace elaboration and closure search to stderr
  -s         silent: suppress the summary line on success
  -h         show this help
`)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	prefs, err := config.Load(preferencesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genscript: %s: %v\n", preferencesFile, err)
		return 1
	}

	var file, outFile, target string
	verbose, silent := prefs.Verbose, false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-f":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "genscript: -f requires an argument")
				return 2
			}
			file = args[i]
		case "-o":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "genscript: -o requires an argument")
				return 2
			}
			outFile = args[i]
		case "-t":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "genscript: -t requires an argument")
				return 2
			}
			target = args[i]
		case "-v":
			verbose = true
		case "-s":
			silent = true
		case "-h", "--help":
			usage()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "genscript: unrecognized argument %q\n", args[i])
			usage()
			return 2
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "genscript: -f FILE is required")
		usage()
		return 2
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genscript: %v\n", err)
		return 1
	}

	entries, err := parser.ParseDefFile(file, string(source))
	if err != nil {
		reportError(err, string(source))
		return 1
	}
	if target == "" {
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "genscript: definition file is empty, nothing to target")
			return 1
		}
		target = entries[len(entries)-1].Name
	}

	env := environment.New()
	b := book.New(env)
	tr := trace.New(os.Stderr, verbose)

	if err := elaborate.File(b, file, entries); err != nil {
		reportError(err, string(source))
		return 1
	}
	tr.Event("elaborated %d definition(s), searching closure of %q", len(entries), target)

	ops, err := synth.ForName(b, target)
	if err != nil {
		reportError(err, string(source))
		return 1
	}
	tr.Event("closure of %q has %d step(s)", target, len(ops))

	script := synth.Serialize(ops)

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "genscript: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, script)

	if !silent {
		fmt.Fprintf(os.Stderr, "genscript: wrote %d step(s) for %q\n", len(ops), target)
	}
	return 0
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
