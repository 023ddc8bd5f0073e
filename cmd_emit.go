package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"phase/compiler"
	"phase/diagnostics"
)

// emitCmd lexes, parses, and emits a source file, then disassembles the
// resulting bytecode to stdout instead of running it.
type emitCmd struct{}

func (*emitCmd) Name() string { return "emit" }
func (*emitCmd) Synopsis() string {
	return "compile a phase source file and print its disassembled bytecode"
}
func (*emitCmd) Usage() string {
	return "emit <file>:\n\tPrint the disassembled bytecode for a phase program.\n"
}
func (*emitCmd) SetFlags(f *flag.FlagSet) {}

func (*emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	disassembleTo(os.Stdout, bc)
	return subcommands.ExitSuccess
}

// disassembleTo prints every function's entry point and the full
// instruction stream in order, one instruction per line.
func disassembleTo(w *os.File, bc compiler.Bytecode) {
	fmt.Fprintf(w, "; constants: %v\n", bc.ConstantsPool)
	fmt.Fprintf(w, "; globals: %d\n", len(bc.Globals))
	for _, fn := range bc.Functions {
		fmt.Fprintf(w, "; func %s entry=%04d locals=%d\n", fn.Name, fn.EntryIP, fn.LocalCount)
	}
	fmt.Fprintln(w, "; entry block starts at 0000")

	for ip := 0; ip < len(bc.Instructions); {
		line, width := compiler.Disassemble(bc.Instructions, ip)
		fmt.Fprintln(w, line)
		ip += width
	}
}
