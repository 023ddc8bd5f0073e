package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"phase/compiler"
	"phase/lexer"
	"phase/parser"
	"phase/token"
	"phase/vm"
)

// replCmd is an interactive read-eval-print loop. Each accepted statement
// is appended to a persistent entry block; every line, the whole block is
// recompiled and rerun from scratch and only the output produced past what
// the previous run already printed is shown, so the session behaves as if
// each statement ran in one long-lived entry frame.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive phase session" }
func (*replCmd) Usage() string {
	return "repl:\n\tRead, compile, and run phase statements one at a time.\n"
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return subcommands.ExitFailure
	}
	defer rl.Close()

	session := newReplSession()
	var pending strings.Builder

	for {
		if pending.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			pending.Reset()
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && pending.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if pending.Len() > 0 {
			pending.WriteString("\n")
		}
		pending.WriteString(line)

		toks, lexErr := lexer.New("repl", pending.String()).Scan()
		if lexErr != nil {
			fmt.Fprintln(rl.Stderr(), lexErr)
			pending.Reset()
			continue
		}
		if !bracesBalanced(toks) {
			continue
		}

		out, err := session.submit(pending.String())
		pending.Reset()
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		fmt.Fprint(rl.Stdout(), out)
	}
}

// replSession accumulates accepted statements into one growing entry
// block, since the compiled pipeline only knows how to compile a whole
// program: locals declared in earlier statements remain live
// because every resubmission recompiles the same, ever-larger entry body.
type replSession struct {
	statements []string
	printedLen int
}

func newReplSession() *replSession {
	return &replSession{}
}

// submit tries statement as the next line of the session's entry block. On
// success it returns only the output produced by this statement (the
// portion of the rerun's stdout past what earlier statements already
// printed); on failure the statement is discarded and the session is left
// exactly as it was.
func (s *replSession) submit(statement string) (string, error) {
	trial := append(append([]string{}, s.statements...), statement)
	source := "entry {\n" + strings.Join(trial, "\n") + "\n}"

	toks, err := lexer.New("repl", source).Scan()
	if err != nil {
		return "", err
	}
	program, errs := parser.New("repl", toks).Parse()
	if len(errs) > 0 {
		return "", errs[0]
	}
	bc, err := compiler.New().Emit(program)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := vm.New(bc).Run(&buf); err != nil {
		return "", err
	}

	full := buf.String()
	if len(full) < s.printedLen {
		s.printedLen = 0
	}
	fresh := full[s.printedLen:]
	s.statements = trial
	s.printedLen = len(full)
	return fresh, nil
}

// bracesBalanced reports whether tokens contain no unmatched '{', meaning
// the REPL should try to compile what it has instead of waiting for more
// input.
func bracesBalanced(tokens []token.Token) bool {
	balance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			balance++
		case token.RCUR:
			balance--
		}
	}
	return balance <= 0
}
