package compiler_test

import (
	"testing"

	"phase/compiler"
	"phase/diagnostics"
	"phase/lexer"
	"phase/parser"
)

func mustEmit(t *testing.T, source string) compiler.Bytecode {
	t.Helper()
	toks, err := lexer.New("test.phase", source).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, errs := parser.New("test.phase", toks).Parse()
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	bc, err := compiler.New().Emit(program)
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	return bc
}

func opcodes(t *testing.T, ins compiler.Instructions) []string {
	t.Helper()
	var names []string
	for ip := 0; ip < len(ins); {
		s, width := compiler.Disassemble(ins, ip)
		_ = s
		def, err := compiler.Get(compiler.Opcode(ins[ip]))
		if err != nil {
			t.Fatalf("bad opcode at %d: %v", ip, err)
		}
		names = append(names, def.Name)
		ip += width
	}
	return names
}

func emitErr(t *testing.T, source string) diagnostics.Diagnostic {
	t.Helper()
	toks, err := lexer.New("test.phase", source).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, errs := parser.New("test.phase", toks).Parse()
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	_, err = compiler.New().Emit(program)
	if err == nil {
		t.Fatal("expected an emit error, got none")
	}
	diag, ok := err.(diagnostics.Diagnostic)
	if !ok {
		t.Fatalf("expected a diagnostics.Diagnostic, got %T", err)
	}
	return diag
}

// Scenario A: hello.
func TestEmitHelloWorld(t *testing.T) {
	bc := mustEmit(t, `entry { out("hello"); }`)

	want := []string{"PUSH_CONST", "PRINT", "HALT"}
	got := opcodes(t, bc.Instructions)
	if len(got) != len(want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opcode[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if len(bc.ConstantsPool) != 1 || bc.ConstantsPool[0] != "hello" {
		t.Errorf("constants = %v, want [hello]", bc.ConstantsPool)
	}
}

// Scenario B: arithmetic and variables.
func TestEmitArithmeticAndVariables(t *testing.T) {
	bc := mustEmit(t, `entry {
		let x: int = 2;
		let y: int = 3;
		out(x + y * 4);
	}`)

	if bc.EntryLocalCount != 2 {
		t.Errorf("entry local count = %d, want 2", bc.EntryLocalCount)
	}
	got := opcodes(t, bc.Instructions)
	wantTail := []string{"MUL", "ADD", "PRINT", "HALT"}
	if len(got) < len(wantTail) {
		t.Fatalf("opcodes too short: %v", got)
	}
	for i, name := range wantTail {
		if got[len(got)-len(wantTail)+i] != name {
			t.Errorf("opcode tail = %v, want suffix %v", got, wantTail)
			break
		}
	}
}

// Scenario C: function call and return.
func TestEmitFunctionCallAndReturn(t *testing.T) {
	bc := mustEmit(t, `func add(a: int, b: int): int { return a + b; } entry { out(add(40, 2)); }`)

	if len(bc.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(bc.Functions))
	}
	fn := bc.Functions[0]
	if fn.Name != "add" || fn.LocalCount != 2 {
		t.Errorf("got %+v", fn)
	}
	got := opcodes(t, bc.Instructions)
	foundCall := false
	for _, name := range got {
		if name == "CALL" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Errorf("expected a CALL opcode in %v", got)
	}
}

// Scenario D: control flow.
func TestEmitWhileLoop(t *testing.T) {
	bc := mustEmit(t, `entry {
		let i: int = 0;
		while (i < 3) { out(i); i = i + 1; }
	}`)

	got := opcodes(t, bc.Instructions)
	hasLess, hasJump, hasJumpIfFalse := false, false, false
	for _, name := range got {
		switch name {
		case "LESS":
			hasLess = true
		case "JUMP":
			hasJump = true
		case "JUMP_IF_FALSE":
			hasJumpIfFalse = true
		}
	}
	if !hasLess || !hasJump || !hasJumpIfFalse {
		t.Errorf("opcodes = %v, want LESS, JUMP, and JUMP_IF_FALSE present", got)
	}
}

// Scenario E: type error at emission time.
func TestEmitTypeMismatchDiagnostic(t *testing.T) {
	diag := emitErr(t, `entry { let x: int = "hi"; }`)
	if diag.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("kind = %v, want type-mismatch", diag.Kind)
	}
}

func TestEmitUndefinedVariable(t *testing.T) {
	diag := emitErr(t, `entry { out(missing); }`)
	if diag.Kind != diagnostics.KindUndefinedVariable {
		t.Errorf("kind = %v, want undefined-variable", diag.Kind)
	}
}

func TestEmitUndefinedCallTargetIsUnexpectedIdentifier(t *testing.T) {
	diag := emitErr(t, `entry { out(missing(1, 2)); }`)
	if diag.Kind != diagnostics.KindUnexpectedIdentifier {
		t.Errorf("kind = %v, want unexpected-identifier", diag.Kind)
	}
}

func TestEmitDuplicateFunction(t *testing.T) {
	diag := emitErr(t, `func f(): void { return; } func f(): void { return; } entry {}`)
	if diag.Kind != diagnostics.KindDuplicateFunction {
		t.Errorf("kind = %v, want duplicate-function", diag.Kind)
	}
}

func TestEmitArityMismatch(t *testing.T) {
	diag := emitErr(t, `func add(a: int, b: int): int { return a + b; } entry { out(add(1)); }`)
	if diag.Kind != diagnostics.KindArityMismatch {
		t.Errorf("kind = %v, want arity-mismatch", diag.Kind)
	}
}

func TestEmitMissingReturn(t *testing.T) {
	diag := emitErr(t, `func f(): int { let x: int = 1; } entry {}`)
	if diag.Kind != diagnostics.KindMissingReturn {
		t.Errorf("kind = %v, want missing-return", diag.Kind)
	}
}

func TestEmitPrintVoidRejected(t *testing.T) {
	diag := emitErr(t, `func f(): void { return; } entry { out(f()); }`)
	if diag.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("kind = %v, want type-mismatch", diag.Kind)
	}
}

func TestEmitLocalShadowingRejected(t *testing.T) {
	diag := emitErr(t, `entry { let x: int = 1; let x: int = 2; }`)
	if diag.Kind != diagnostics.KindDuplicateFunction {
		t.Errorf("kind = %v, want the reused duplicate-name kind", diag.Kind)
	}
}

func TestEmitIntLiteralRejectedAsFloatInitializer(t *testing.T) {
	diag := emitErr(t, `entry { let x: float = 1; }`)
	if diag.Kind != diagnostics.KindTypeMismatch {
		t.Errorf("kind = %v, want type-mismatch", diag.Kind)
	}
}

func TestEmitStrictLogicalEvaluatesBothSides(t *testing.T) {
	bc := mustEmit(t, `entry { out(true || false); }`)
	got := opcodes(t, bc.Instructions)
	// Strict evaluation means no JUMP_IF_FALSE around the right operand: both
	// PUSH_CONST sites run unconditionally before OR.
	pushes := 0
	for _, name := range got {
		if name == "PUSH_CONST" {
			pushes++
		}
		if name == "JUMP_IF_FALSE" {
			t.Errorf("logical '||' must not short-circuit, found JUMP_IF_FALSE in %v", got)
		}
	}
	if pushes != 2 {
		t.Errorf("expected both operands pushed (2 PUSH_CONST), got %d in %v", pushes, got)
	}
}

func TestEmitNotEqualCompilesToEqualThenNot(t *testing.T) {
	bc := mustEmit(t, `entry { out(1 != 2); }`)
	got := opcodes(t, bc.Instructions)
	foundEqual, foundNot := false, false
	for _, name := range got {
		if name == "EQUAL" {
			foundEqual = true
		}
		if name == "NOT" {
			foundNot = true
		}
	}
	if !foundEqual || !foundNot {
		t.Errorf("'!=' should emit EQUAL then NOT, got %v", got)
	}
}

func TestEmitGlobalRoundTrip(t *testing.T) {
	bc := mustEmit(t, `let total: int; func bump(): void { total = total + 1; return; } entry { bump(); out(total); }`)
	if len(bc.Globals) != 1 || bc.Globals[0].Name != "total" {
		t.Fatalf("globals = %+v", bc.Globals)
	}
}
