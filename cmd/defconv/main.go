// Command defconv reads a definition file, type-checks every entry,
// and re-emits it under a chosen term notation.
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
	"github.com/lambdadelta/proofkit/internal/printer"
	"github.com/lambdadelta/proofkit/internal/trace"
)

// preferencesFile is the optional per-project configuration consulted
// for defaults before flags are applied, per the working directory.
const preferencesFile = ".proofkit.yaml"

func notationFromPreferences(n string) printer.Notation {
	switch n {
	case "new":
		return printer.New
	case "rich":
		return printer.Rich
	default:
		return printer.Conventional
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: defconv -f FILE [-c | -n | -r] [-v] [-s] [-h]

  -f FILE   definition file to read (required)
  -c        emit in conventional notation (default)
  -n        emit in the new notation
  -r        emit in rich Unicode notation
  -v        verbose: trace elaboration to stderr
  -s        silent: suppress notice output, errors only
  -h        show this help
`)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	prefs, err := config.Load(preferencesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "defconv: %s: %v\n", preferencesFile, err)
		return 1
	}

	var file string
	notation := notationFromPreferences(prefs.Notation)
	verbose, silent := prefs.Verbose, false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-f":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "defconv: -f requires an argument")
				return 2
			}
			file = args[i]
		case "-c":
			notation = printer.Conventional
		case "-n":
			notation = printer.New
		case "-r":
			notation = printer.Rich
		case "-v":
			verbose = true
		case "-s":
			silent = true
		case "-h", "--help":
			usage()
			return 0
		default:
			fmt.Fprintf(os.Stderr, "defconv: unrecognized argument %q\n", args[i])
			usage()
			return 2
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "defconv: -f FILE is required")
		usage()
		return 2
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "defconv: %v\n", err)
		return 1
	}

	entries, err := parser.ParseDefFile(file, string(source))
	if err != nil {
		reportError(err, string(source))
		return 1
	}

	env := environment.New()
	b := book.New(env)
	tr := trace.New(os.Stderr, verbose)

	if err := elaborate.File(b, file, entries); err != nil {
		reportError(err, string(source))
		return 1
	}
	tr.Event("elaborated %d definition(s) from %s", len(entries), file)

	p := printer.Printer{Notation: notation}
	for i := 0; i < env.Len(); i++ {
		fmt.Println(p.Definition(env.At(i)))
	}
	if !silent {
		fmt.Fprintf(os.Stderr, "defconv: %d definition(s) ok\n", env.Len())
	}
	return 0
}

func reportError(err error, source string) {
	if de, ok := err.(*diagnostics.Error); ok {
		lines := splitLines(source)
		fmt.Fprintln(os.Stderr, de.Render(lines))
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
