package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"phase/compiler"
	"phase/diagnostics"
	"phase/lexer"
	"phase/parser"
	"phase/vm"
)

func run(t *testing.T, source string) (stdout string, err error) {
	t.Helper()
	toks, lexErr := lexer.New("test.phase", source).Scan()
	require.NoError(t, lexErr)

	program, errs := parser.New("test.phase", toks).Parse()
	require.Empty(t, errs)

	bc, emitErr := compiler.New().Emit(program)
	require.NoError(t, emitErr)

	var buf bytes.Buffer
	err = vm.New(bc).Run(&buf)
	return buf.String(), err
}

// Scenario A.
func TestRunHello(t *testing.T) {
	out, err := run(t, `entry { out("hello"); }`)
	require.NoError(t, err)
	require.Equal(t, "hello\n", out)
}

// Scenario B.
func TestRunArithmeticAndVariables(t *testing.T) {
	out, err := run(t, `entry {
		let x: int = 2;
		let y: int = 3;
		out(x + y * 4);
	}`)
	require.NoError(t, err)
	require.Equal(t, "14\n", out)
}

// Scenario C.
func TestRunFunctionCallAndReturn(t *testing.T) {
	out, err := run(t, `func add(a: int, b: int): int { return a + b; } entry { out(add(40, 2)); }`)
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}

// Scenario D.
func TestRunWhileLoop(t *testing.T) {
	out, err := run(t, `entry {
		let i: int = 0;
		while (i < 3) { out(i); i = i + 1; }
	}`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

// Scenario F.
func TestRunDivisionByZeroDiagnostic(t *testing.T) {
	_, err := run(t, `entry { out(1 / 0); }`)
	require.Error(t, err)
	diag, ok := err.(diagnostics.Diagnostic)
	require.True(t, ok, "expected a diagnostics.Diagnostic, got %T", err)
	require.True(t, diag.Location.HasPosition(), "division-by-zero diagnostic has no source location")
	require.Equal(t, 1, diag.Location.Line)
}

func TestRunFloatDivisionByZeroYieldsInfinity(t *testing.T) {
	out, err := run(t, `entry { out(1.0 / 0.0); }`)
	require.NoError(t, err)
	require.Equal(t, "+Inf\n", out)
}

func TestRunIntOverflowWraps(t *testing.T) {
	out, err := run(t, `entry { out(2147483647 + 1); }`)
	require.NoError(t, err)
	require.Equal(t, "-2147483648\n", out)
}

func TestRunEmptyEntryPrintsNothing(t *testing.T) {
	out, err := run(t, `entry {}`)
	require.NoError(t, err)
	require.Equal(t, "", out)
}

func TestRunStrictLogicalEvaluatesBothOperands(t *testing.T) {
	out, err := run(t, `entry { out(false && true); out(true || false); }`)
	require.NoError(t, err)
	require.Equal(t, "false\ntrue\n", out)
}

func TestRunGlobalsPersistAcrossCalls(t *testing.T) {
	out, err := run(t, `let total: int;
		func bump(): void { total = total + 1; return; }
		entry { total = 0; bump(); bump(); bump(); out(total); }`)
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestRunRecursiveCall(t *testing.T) {
	out, err := run(t, `func fact(n: int): int {
		if (n <= 1) { return 1; } else { return n * fact(n - 1); }
	}
	entry { out(fact(5)); }`)
	require.NoError(t, err)
	require.Equal(t, "120\n", out)
}

func TestRunStringAndBoolFormatting(t *testing.T) {
	out, err := run(t, `entry { out("phase"); out(true); out(false); out(3.5); }`)
	require.NoError(t, err)
	require.Equal(t, "phase\ntrue\nfalse\n3.5\n", out)
}
