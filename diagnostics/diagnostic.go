package diagnostics

import (
	"fmt"
	"strings"

	"phase/source"
)

// Diagnostic is a fully-formed, fatal failure report: a kind, the source
// location it points at, a rendered primary message and help hint, and an
// optional suggestion that can rewrite the offending line.
//
// Diagnostic implements error so it can travel through normal Go error
// returns from the lexer, parser, emitter, and VM; the CLI boundary is the
// only place that renders it and exits the process (see Fatal).
type Diagnostic struct {
	Kind       Kind
	Location   source.Location
	Message    string
	Help       string
	Suggestion func(line string) (string, bool)
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("[%d] %s: %s", d.Kind.Code(), d.Kind.Name(), d.Message)
}

func newDiagnostic(kind Kind, loc source.Location, message, help string) Diagnostic {
	return Diagnostic{Kind: kind, Location: loc, Message: message, Help: help}
}

// --- Lexical ---

func UnterminatedString(loc source.Location) Diagnostic {
	return newDiagnostic(KindUnterminatedString, loc,
		"unterminated string literal",
		"close the string with a matching '\"' before the end of the line")
}

// --- Syntactic ---

func ExpectSymbol(loc source.Location, expected string) Diagnostic {
	return newDiagnostic(KindExpectSymbol, loc,
		fmt.Sprintf("expected '%s'", expected),
		fmt.Sprintf("insert '%s' here", expected))
}

func ExpectExpression(loc source.Location) Diagnostic {
	return newDiagnostic(KindExpectExpression, loc,
		"expected an expression",
		"a literal, variable, call, or parenthesized expression was expected here")
}

func ExpectStatement(loc source.Location) Diagnostic {
	return newDiagnostic(KindExpectStatement, loc,
		"expected a statement",
		"a declaration, assignment, or control-flow statement was expected here")
}

func InvalidToken(loc source.Location, lexeme string) Diagnostic {
	return newDiagnostic(KindInvalidToken, loc,
		fmt.Sprintf("invalid top-level token '%s'", lexeme),
		"only 'entry', 'let', and 'func' declarations are valid at the top level")
}

func DuplicateEntry(loc source.Location) Diagnostic {
	return newDiagnostic(KindDuplicateEntry, loc,
		"a program may declare only one 'entry' block",
		"remove this 'entry' block or merge it into the existing one")
}

func NoEntry() Diagnostic {
	return newDiagnostic(KindNoEntry, source.NoLocation,
		"program has no 'entry' block",
		"add an 'entry { ... }' block; it is the program's starting point")
}

// --- Semantic ---

func UndefinedVariable(loc source.Location, name string) Diagnostic {
	return newDiagnostic(KindUndefinedVariable, loc,
		fmt.Sprintf("undefined variable '%s'", name),
		fmt.Sprintf("declare '%s' with 'let' before using it", name))
}

func DuplicateFunction(loc source.Location, name string) Diagnostic {
	return newDiagnostic(KindDuplicateFunction, loc,
		fmt.Sprintf("function '%s' is already defined", name),
		"rename one of the two definitions")
}

// TypeMismatch reports that a declaration, assignment, or expression's
// inferred type does not match what the surrounding context requires. When
// the mismatch concerns a local or global declaration, the source line can
// be rewritten to swap the declared type annotation for the actual one.
func TypeMismatch(loc source.Location, context, expected, actual string) Diagnostic {
	d := newDiagnostic(KindTypeMismatch, loc,
		fmt.Sprintf("type mismatch in %s: expected '%s', found '%s'", context, expected, actual),
		fmt.Sprintf("change the type to '%s', or change the value to a '%s'", actual, expected))
	d.Suggestion = func(line string) (string, bool) {
		needle := ": " + expected
		if !strings.Contains(line, needle) {
			return "", false
		}
		return strings.Replace(line, needle, ": "+actual, 1), true
	}
	return d
}

func ReturnTypeMismatch(loc source.Location, fn, expected, actual string) Diagnostic {
	return newDiagnostic(KindReturnTypeMismatch, loc,
		fmt.Sprintf("function '%s' returns '%s' but this statement returns '%s'", fn, expected, actual),
		fmt.Sprintf("change the returned expression to type '%s'", expected))
}

func MissingReturn(loc source.Location, fn, returnType string) Diagnostic {
	return newDiagnostic(KindMissingReturn, loc,
		fmt.Sprintf("function '%s' must return a value of type '%s' on every path", fn, returnType),
		"add a 'return' statement that produces this type at the end of the function")
}

func ArityMismatch(loc source.Location, fn string, expected, actual int) Diagnostic {
	return newDiagnostic(KindArityMismatch, loc,
		fmt.Sprintf("function '%s' expects %d argument(s), found %d", fn, expected, actual),
		"add or remove call arguments to match the function's declared parameters")
}

func WrongVarInit(loc source.Location, nameCount, initCount int) Diagnostic {
	return newDiagnostic(KindWrongVarInit, loc,
		fmt.Sprintf("declared %d variable(s) but %d initializer(s)", nameCount, initCount),
		"provide exactly one initializer per declared name; a local declaration without initializers is not accepted")
}

func UnexpectedIdentifier(loc source.Location, lexeme string) Diagnostic {
	return newDiagnostic(KindUnexpectedIdentifier, loc,
		fmt.Sprintf("unexpected identifier '%s'", lexeme),
		"this name is neither a keyword nor a declared variable or function")
}

func BytecodeTooLarge(loc source.Location) Diagnostic {
	return newDiagnostic(KindBytecodeTooLarge, loc,
		"compiled bytecode exceeds the 65535-byte instruction stream limit",
		"split the program into smaller functions")
}

// --- Runtime ---

func InvalidConstIndex(index, poolLen int) Diagnostic {
	return newDiagnostic(KindInvalidConstIndex, source.NoLocation,
		fmt.Sprintf("constant index %d is out of range (pool has %d entries)", index, poolLen),
		"this indicates a bug in the emitter; the bytecode was not produced by this toolchain")
}

func InvalidVarIndex(index, count int, scope string) Diagnostic {
	return newDiagnostic(KindInvalidVarIndex, source.NoLocation,
		fmt.Sprintf("%s variable index %d is out of range (%d declared)", scope, index, count),
		"this indicates a bug in the emitter; the bytecode was not produced by this toolchain")
}

func InvalidOpcode(ip int, op byte) Diagnostic {
	return newDiagnostic(KindInvalidOpcode, source.NoLocation,
		fmt.Sprintf("invalid opcode 0x%02x at instruction offset %d", op, ip),
		"this indicates a bug in the emitter; the bytecode was not produced by this toolchain")
}

func IPOutOfBounds(ip, length int) Diagnostic {
	return newDiagnostic(KindIPOutOfBounds, source.NoLocation,
		fmt.Sprintf("instruction pointer %d is out of bounds (code length %d)", ip, length),
		"this indicates a bug in the emitter; the bytecode was not produced by this toolchain")
}

func DivisionByZero(loc source.Location) Diagnostic {
	return newDiagnostic(KindDivisionByZero, loc,
		"division by zero",
		"guard the divisor with an 'if' before dividing")
}

func RuntimeTypeGuard(loc source.Location, op string) Diagnostic {
	return newDiagnostic(KindRuntimeTypeGuard, loc,
		fmt.Sprintf("runtime type guard failed for '%s'", op),
		"this indicates a bug in the emitter's type checking; please file a report")
}

// --- System ---

func OutOfMemory() Diagnostic {
	return newDiagnostic(KindOutOfMemory, source.NoLocation,
		"out of memory",
		"reduce the size of the program or the data it allocates")
}

// --- CLI (external collaborator; kept for interface completeness) ---

func MissingArgument(name string) Diagnostic {
	return newDiagnostic(KindMissingArgument, source.NoLocation,
		fmt.Sprintf("missing required argument '%s'", name),
		"see --help for usage")
}

func UnknownArgument(name string) Diagnostic {
	return newDiagnostic(KindUnknownArgument, source.NoLocation,
		fmt.Sprintf("unknown argument '%s'", name),
		"see --help for usage")
}

func InputFileNotFound(path string) Diagnostic {
	return newDiagnostic(KindInputFileNotFound, source.NoLocation,
		fmt.Sprintf("input file not found: %s", path),
		"check the path and try again")
}
