package diagnostics

// Kind classifies a diagnostic. Numeric codes follow the source language's
// own error enumeration (lexical/syntactic/semantic errors start at 100,
// runtime errors continue the same block, CLI errors start at 200) so that
// a code printed in a banner is stable across releases.
type Kind int

const (
	// Lexical
	KindUnterminatedString Kind = iota + 100

	// Syntactic
	KindExpectSymbol
	KindExpectExpression
	KindExpectStatement
	KindInvalidToken
	KindDuplicateEntry
	KindNoEntry

	// Semantic (emission time)
	KindUndefinedVariable
	KindDuplicateFunction
	KindTypeMismatch
	KindReturnTypeMismatch
	KindMissingReturn
	KindArityMismatch
	KindWrongVarInit
	KindUnexpectedIdentifier
	KindBytecodeTooLarge

	// Runtime (VM execution time)
	KindInvalidConstIndex
	KindInvalidVarIndex
	KindInvalidOpcode
	KindIPOutOfBounds
	KindDivisionByZero
	KindRuntimeTypeGuard

	// System
	KindOutOfMemory
)

const (
	// CLI (external collaborator; included for interface completeness)
	KindMissingArgument Kind = iota + 200
	KindUnknownArgument
	KindInputFileNotFound
)

// names gives each kind a short label used by Diagnostic.Error; the rendered
// "Fatal Error [code]: ..." banner shows only the numeric code.
var names = map[Kind]string{
	KindUnterminatedString:   "unterminated-string",
	KindExpectSymbol:         "expected-symbol",
	KindExpectExpression:     "expected-expression",
	KindExpectStatement:      "expected-statement",
	KindInvalidToken:         "invalid-token",
	KindDuplicateEntry:       "duplicate-entry",
	KindNoEntry:              "no-entry",
	KindUndefinedVariable:    "undefined-variable",
	KindDuplicateFunction:    "duplicate-function",
	KindTypeMismatch:         "type-mismatch",
	KindReturnTypeMismatch:   "return-type-mismatch",
	KindMissingReturn:        "missing-return",
	KindArityMismatch:        "arity-mismatch",
	KindWrongVarInit:         "init-count-mismatch",
	KindUnexpectedIdentifier: "unexpected-identifier",
	KindBytecodeTooLarge:     "bytecode-too-large",
	KindInvalidConstIndex:    "invalid-constant-index",
	KindInvalidVarIndex:      "invalid-variable-index",
	KindInvalidOpcode:        "invalid-opcode",
	KindIPOutOfBounds:        "ip-out-of-bounds",
	KindDivisionByZero:       "division-by-zero",
	KindRuntimeTypeGuard:     "runtime-type-guard",
	KindOutOfMemory:          "out-of-memory",
	KindMissingArgument:      "missing-argument",
	KindUnknownArgument:      "unknown-argument",
	KindInputFileNotFound:    "input-file-not-found",
}

// Name returns the kind's short label, e.g. "type-mismatch".
func (k Kind) Name() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "unknown"
}

// Code returns the kind's stable numeric code, e.g. 109 for type-mismatch.
func (k Kind) Code() int {
	return int(k)
}
