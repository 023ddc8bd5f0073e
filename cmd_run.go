package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"

	"phase/compiler"
	"phase/diagnostics"
	"phase/lexer"
	"phase/parser"
	"phase/vm"
)

// runCmd lexes, parses, emits, and executes a single source file.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "lex, parse, emit, and execute a phase source file" }
func (*runCmd) Usage() string {
	return "run <file>:\n\tExecute a phase program.\n"
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (*runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		return reportCLI(diagnostics.MissingArgument("file"), subcommands.ExitUsageError)
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return reportCLI(diagnostics.InputFileNotFound(path), subcommands.ExitFailure)
	}

	reporter := newCLIReporter(os.Stderr, path)

	bc, ok := compile(reporter, path, string(data))
	if !ok {
		return subcommands.ExitFailure
	}

	if err := vm.New(bc).Run(os.Stdout); err != nil {
		reporter.Fatal(err.(diagnostics.Diagnostic))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// newCLIReporter builds a Reporter whose Exit is a no-op, so Fatal renders
// a diagnostic without terminating the process; the caller decides the
// subcommands.ExitStatus to return instead.
func newCLIReporter(w io.Writer, sourceFile string) *diagnostics.Reporter {
	reporter := diagnostics.New(w)
	reporter.Exit = func(int) {}
	reporter.SetSource(sourceFile)
	return reporter
}

// compile runs the lex/parse/emit pipeline shared by run and emit, stopping
// at the first stage that fails and reporting its failure through reporter:
// the lexer's or emitter's single diagnostic, or every parse diagnostic.
func compile(reporter *diagnostics.Reporter, path, source string) (compiler.Bytecode, bool) {
	toks, err := lexer.New(path, source).Scan()
	if err != nil {
		reporter.Fatal(err.(diagnostics.Diagnostic))
		return compiler.Bytecode{}, false
	}

	program, errs := parser.New(path, toks).Parse()
	if len(errs) > 0 {
		for _, perr := range errs {
			reporter.Fatal(perr.(diagnostics.Diagnostic))
		}
		return compiler.Bytecode{}, false
	}

	bc, err := compiler.New().Emit(program)
	if err != nil {
		reporter.Fatal(err.(diagnostics.Diagnostic))
		return compiler.Bytecode{}, false
	}
	return bc, true
}

// reportCLI renders a CLI-boundary diagnostic to stderr without exiting the
// process, returning status so the caller's exit code matches the
// distinction subcommands itself draws between a usage error (bad or
// missing arguments) and an operational failure (e.g. a file that can't be
// read).
func reportCLI(d diagnostics.Diagnostic, status subcommands.ExitStatus) subcommands.ExitStatus {
	reporter := newCLIReporter(os.Stderr, "")
	reporter.Fatal(d)
	return status
}
