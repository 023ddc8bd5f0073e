// emitter.go implements the two-pass compiler: pass one registers every
// function signature and global (name, type) pair so forward references
// resolve regardless of declaration order; pass two walks the entry block
// and each function body, type-checking every expression and statement as
// it emits the matching instructions.
package compiler

import (
	"encoding/binary"
	"fmt"

	"phase/ast"
	"phase/diagnostics"
	"phase/source"
	"phase/token"
)

// maxInstructionBytes is the wire format's instruction-stream size limit: a
// jump operand is a u16 byte offset, so no reachable offset can exceed it.
const maxInstructionBytes = 65535

// local is one entry in a function's flat local table. The language has no
// nested lexical scoping: a local is visible from its declaration to the
// end of its function, and its name may not be reused anywhere else in
// that function.
type local struct {
	name string
	typ  ast.Type
	slot int
}

// funcScope tracks the local table and return type of whichever body the
// emitter is currently walking: one function, or the entry block.
type funcScope struct {
	name      string
	returnTyp ast.Type
	locals    []local
	nextSlot  int
}

var arithmeticOps = map[string]Opcode{
	"+": OpAdd,
	"-": OpSub,
	"*": OpMul,
	"/": OpDiv,
}

var comparisonOps = map[string]Opcode{
	"<":  OpLess,
	">":  OpGreater,
	"<=": OpLessEqual,
	">=": OpGreaterEqual,
}

// Emitter compiles one already-parsed program into Bytecode. It implements
// ast.ExpressionVisitor and ast.StmtVisitor; every Visit method both emits
// the instructions for its node and returns the node's static type, which
// its caller uses to type-check the surrounding context.
type Emitter struct {
	code      Instructions
	constants []any
	functions []FunctionDef
	globals   []GlobalDef

	funcIndex   map[string]int
	globalIndex map[string]int

	entryLocalCount int
	scope           *funcScope

	// locations maps each instruction's starting offset to the source
	// location of the AST node that emitted it, a line-table alongside the
	// flat instruction stream. locStack holds the location of whichever
	// node emitExpr/emitStmt is currently inside, innermost last, so that
	// an instruction emitted after a node's children finish is still
	// attributed to the node itself rather than to its last child.
	locations map[int]source.Location
	locStack  []source.Location
}

// New returns an Emitter ready to compile a single program.
func New() *Emitter {
	return &Emitter{
		funcIndex:   make(map[string]int),
		globalIndex: make(map[string]int),
		locations:   make(map[int]source.Location),
	}
}

// Emit runs both passes over program and returns the finished bytecode, or
// the first diagnostic raised by either pass. Every failure path inside the
// two passes panics with a diagnostics.Diagnostic; this is the only place
// that recovers it back into a normal error return.
func (e *Emitter) Emit(program ast.Program) (bc Bytecode, err error) {
	defer func() {
		if r := recover(); r != nil {
			diag, ok := r.(diagnostics.Diagnostic)
			if !ok {
				panic(r)
			}
			err = diag
		}
	}()

	if program.Entry == nil {
		panic(diagnostics.NoEntry())
	}

	e.registerGlobals(program.Globals)
	e.registerFunctions(program.Functions)

	e.emitEntry(*program.Entry)
	for _, fn := range program.Functions {
		e.emitFunction(fn)
	}

	if len(e.code) > maxInstructionBytes {
		panic(diagnostics.BytecodeTooLarge(program.Entry.Location))
	}

	return Bytecode{
		Instructions:    e.code,
		ConstantsPool:   e.constants,
		Functions:       e.functions,
		Globals:         e.globals,
		EntryLocalCount: e.entryLocalCount,
		Locations:       e.locations,
	}, nil
}

// --- Pass one: registration ---

func (e *Emitter) registerGlobals(globals []ast.GlobalVarDecl) {
	for _, g := range globals {
		if _, exists := e.globalIndex[g.Name.Lexeme]; exists {
			panic(duplicateName(g.Location, "global variable", g.Name.Lexeme))
		}
		e.globalIndex[g.Name.Lexeme] = len(e.globals)
		e.globals = append(e.globals, GlobalDef{Name: g.Name.Lexeme, Type: g.Type})
	}
}

func (e *Emitter) registerFunctions(funcs []ast.FuncDecl) {
	for _, fn := range funcs {
		if _, exists := e.funcIndex[fn.Name.Lexeme]; exists {
			panic(diagnostics.DuplicateFunction(fn.Location, fn.Name.Lexeme))
		}
		paramTypes := make([]ast.Type, len(fn.Params))
		for i, p := range fn.Params {
			paramTypes[i] = p.Type
		}
		e.funcIndex[fn.Name.Lexeme] = len(e.functions)
		e.functions = append(e.functions, FunctionDef{
			Name:       fn.Name.Lexeme,
			ReturnType: fn.ReturnType,
			ParamTypes: paramTypes,
		})
	}
}

// duplicateName reports a redeclared local or global. The wire format's
// closed diagnostic taxonomy has no dedicated kind for this - it only names
// "duplicate function" - so this reuses that kind's code with a message
// fitted to the actual binding being redeclared.
func duplicateName(loc source.Location, kind, name string) diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Kind:     diagnostics.KindDuplicateFunction,
		Location: loc,
		Message:  fmt.Sprintf("%s '%s' is already declared", kind, name),
		Help:     "rename one of the two declarations",
	}
}

// --- Pass two: emission ---

// emitEntry compiles the program's single entry block. It always starts at
// instruction 0, since it is the first thing Emit compiles, and it always
// ends in HALT rather than RET: there is no caller to return to.
func (e *Emitter) emitEntry(entry ast.EntryDecl) {
	e.scope = &funcScope{name: "entry", returnTyp: ast.Void}
	for _, stmt := range entry.Body.Statements {
		e.emitStmt(stmt)
	}
	e.emit(OpHalt)
	e.entryLocalCount = e.scope.nextSlot
	e.scope = nil
}

func (e *Emitter) emitFunction(fn ast.FuncDecl) {
	idx := e.funcIndex[fn.Name.Lexeme]
	entryIP := len(e.code)

	e.scope = &funcScope{name: fn.Name.Lexeme, returnTyp: fn.ReturnType}
	for _, p := range fn.Params {
		e.declareLocal(p.Name, p.Type, fn.Location)
	}

	if fn.ReturnType != ast.Void && !blockAlwaysReturns(fn.Body) {
		panic(diagnostics.MissingReturn(fn.Location, fn.Name.Lexeme, fn.ReturnType.String()))
	}

	for _, stmt := range fn.Body.Statements {
		e.emitStmt(stmt)
	}
	e.emit(OpRet)

	def := e.functions[idx]
	def.EntryIP = entryIP
	def.LocalCount = e.scope.nextSlot
	e.functions[idx] = def
	e.scope = nil
}

// blockAlwaysReturns decides, by static structure alone, whether every path
// through stmts ends in a return statement. A while loop is never trusted
// to run its body, so it never counts; an if only counts when it has an
// else and both branches return.
func blockAlwaysReturns(block ast.BlockStmt) bool {
	stmts := block.Statements
	if len(stmts) == 0 {
		return false
	}
	return stmtAlwaysReturns(stmts[len(stmts)-1])
}

func stmtAlwaysReturns(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case ast.ReturnStmt:
		return true
	case ast.BlockStmt:
		return blockAlwaysReturns(s)
	case ast.IfStmt:
		if s.Else == nil {
			return false
		}
		return blockAlwaysReturns(s.Then) && stmtAlwaysReturns(s.Else)
	default:
		return false
	}
}

// declareLocal appends name to the current function's local table,
// rejecting a name already declared anywhere earlier in the same function.
func (e *Emitter) declareLocal(name string, typ ast.Type, loc source.Location) local {
	for _, l := range e.scope.locals {
		if l.name == name {
			panic(duplicateName(loc, "local variable", name))
		}
	}
	l := local{name: name, typ: typ, slot: e.scope.nextSlot}
	e.scope.nextSlot++
	e.scope.locals = append(e.scope.locals, l)
	return l
}

func (e *Emitter) resolveLocal(name string) (local, bool) {
	if e.scope == nil {
		return local{}, false
	}
	for _, l := range e.scope.locals {
		if l.name == name {
			return l, true
		}
	}
	return local{}, false
}

// emit appends one instruction and returns its starting offset, used as
// the jump position to patch later. The offset is recorded against
// whichever AST node emitStmt/emitExpr is currently inside, so the VM can
// later recover a source location for the instruction at fault.
func (e *Emitter) emit(op Opcode, operands ...int) int {
	pos := len(e.code)
	e.code = append(e.code, MakeInstruction(op, operands...)...)
	if n := len(e.locStack); n > 0 {
		e.locations[pos] = e.locStack[n-1]
	}
	return pos
}

// emitPlaceholderJump emits a jump with a zero operand and returns its
// offset; patchJump overwrites the operand once the target is known. See
// the "Forward jump patching" note in the bytecode layout description this
// mirrors.
func (e *Emitter) emitPlaceholderJump(op Opcode) int {
	return e.emit(op, 0)
}

func (e *Emitter) patchJump(pos int) {
	target := uint16(len(e.code))
	binary.BigEndian.PutUint16(e.code[pos+1:pos+3], target)
}

func (e *Emitter) addConstant(value any) int {
	e.constants = append(e.constants, value)
	return len(e.constants) - 1
}

func tokenLoc(tok token.Token) source.Location {
	return source.New("", tok.Line, tok.Column, tok.EndColumn())
}

// emitStmt dispatches stmt to its Visit method, discarding the nil it
// always returns. Pushing stmt's own location before dispatch, and popping
// it after, means any instruction emitted directly by stmt (as opposed to
// by a nested expression) is attributed to stmt itself.
func (e *Emitter) emitStmt(stmt ast.Stmt) {
	e.locStack = append(e.locStack, stmt.Loc())
	defer func() { e.locStack = e.locStack[:len(e.locStack)-1] }()
	stmt.Accept(e)
}

// emitExpr dispatches expr to its Visit method and recovers the static
// type every expression visitor returns. Composite expressions (Binary,
// Call, ...) emit their children before their own opcode, so without this
// push/pop their own instruction would be mis-attributed to the location
// of whichever child emitted last.
func (e *Emitter) emitExpr(expr ast.Expression) ast.Type {
	e.locStack = append(e.locStack, expr.Loc())
	defer func() { e.locStack = e.locStack[:len(e.locStack)-1] }()
	return expr.Accept(e).(ast.Type)
}

// --- ast.StmtVisitor ---

func (e *Emitter) VisitExpressionStmt(s ast.ExpressionStmt) any {
	typ := e.emitExpr(s.Expression)
	if typ != ast.Void {
		e.emit(OpPop)
	}
	return nil
}

func (e *Emitter) VisitPrintStmt(p ast.PrintStmt) any {
	typ := e.emitExpr(p.Expression)
	if typ == ast.Void {
		panic(diagnostics.TypeMismatch(p.Loc(), "'out' argument", "int, float, bool, or str", "void"))
	}
	e.emit(OpPrint)
	return nil
}

func (e *Emitter) VisitLetStmt(l ast.LetStmt) any {
	for i, name := range l.Names {
		init := l.Initializers[i]
		actual := e.emitExpr(init)
		if actual != l.Type {
			panic(diagnostics.TypeMismatch(init.Loc(), fmt.Sprintf("initializer for '%s'", name.Lexeme), l.Type.String(), actual.String()))
		}
		lc := e.declareLocal(name.Lexeme, l.Type, tokenLoc(name))
		e.emit(OpSetLocal, lc.slot)
	}
	return nil
}

func (e *Emitter) VisitAssignStmt(a ast.AssignStmt) any {
	name := a.Name.Lexeme
	actual := e.emitExpr(a.Value)

	if lc, ok := e.resolveLocal(name); ok {
		if actual != lc.typ {
			panic(diagnostics.TypeMismatch(a.Loc(), fmt.Sprintf("assignment to '%s'", name), lc.typ.String(), actual.String()))
		}
		e.emit(OpSetLocal, lc.slot)
		return nil
	}
	if gi, ok := e.globalIndex[name]; ok {
		g := e.globals[gi]
		if actual != g.Type {
			panic(diagnostics.TypeMismatch(a.Loc(), fmt.Sprintf("assignment to '%s'", name), g.Type.String(), actual.String()))
		}
		e.emit(OpSetGlobal, gi)
		return nil
	}
	panic(diagnostics.UndefinedVariable(a.Loc(), name))
}

func (e *Emitter) VisitReturnStmt(r ast.ReturnStmt) any {
	if r.Value == nil {
		if e.scope.returnTyp != ast.Void {
			panic(diagnostics.ReturnTypeMismatch(r.Loc(), e.scope.name, e.scope.returnTyp.String(), "void"))
		}
		e.emit(OpRet)
		return nil
	}
	actual := e.emitExpr(r.Value)
	if actual != e.scope.returnTyp {
		panic(diagnostics.ReturnTypeMismatch(r.Loc(), e.scope.name, e.scope.returnTyp.String(), actual.String()))
	}
	e.emit(OpRet)
	return nil
}

func (e *Emitter) VisitIfStmt(s ast.IfStmt) any {
	condType := e.emitExpr(s.Condition)
	if condType != ast.Bool {
		panic(diagnostics.TypeMismatch(s.Condition.Loc(), "'if' condition", "bool", condType.String()))
	}

	elseJump := e.emitPlaceholderJump(OpJumpIfFalse)
	e.emitStmt(s.Then)

	if s.Else == nil {
		e.patchJump(elseJump)
		return nil
	}
	endJump := e.emitPlaceholderJump(OpJump)
	e.patchJump(elseJump)
	e.emitStmt(s.Else)
	e.patchJump(endJump)
	return nil
}

func (e *Emitter) VisitWhileStmt(s ast.WhileStmt) any {
	loopStart := len(e.code)
	condType := e.emitExpr(s.Condition)
	if condType != ast.Bool {
		panic(diagnostics.TypeMismatch(s.Condition.Loc(), "'while' condition", "bool", condType.String()))
	}

	exitJump := e.emitPlaceholderJump(OpJumpIfFalse)
	e.emitStmt(s.Body)
	e.emit(OpJump, loopStart)
	e.patchJump(exitJump)
	return nil
}

func (e *Emitter) VisitBlockStmt(b ast.BlockStmt) any {
	for _, stmt := range b.Statements {
		e.emitStmt(stmt)
	}
	return nil
}

// --- ast.ExpressionVisitor ---

func (e *Emitter) VisitLiteral(lit ast.Literal) any {
	var typ ast.Type
	switch lit.Value.(type) {
	case int32:
		typ = ast.Int
	case float64:
		typ = ast.Float
	case bool:
		typ = ast.Bool
	case string:
		typ = ast.Str
	default:
		panic(fmt.Sprintf("emitter: literal holds unexpected Go type %T", lit.Value))
	}
	idx := e.addConstant(lit.Value)
	e.emit(OpPushConst, idx)
	return typ
}

func (e *Emitter) VisitVariable(v ast.Variable) any {
	name := v.Name.Lexeme
	if lc, ok := e.resolveLocal(name); ok {
		e.emit(OpGetLocal, lc.slot)
		return lc.typ
	}
	if gi, ok := e.globalIndex[name]; ok {
		e.emit(OpGetGlobal, gi)
		return e.globals[gi].Type
	}
	panic(diagnostics.UndefinedVariable(v.Loc(), name))
}

func (e *Emitter) VisitCall(c ast.Call) any {
	name := c.Callee.Lexeme
	idx, ok := e.funcIndex[name]
	if !ok {
		panic(diagnostics.UnexpectedIdentifier(c.Loc(), name))
	}
	fn := e.functions[idx]
	if len(c.Arguments) != len(fn.ParamTypes) {
		panic(diagnostics.ArityMismatch(c.Loc(), name, len(fn.ParamTypes), len(c.Arguments)))
	}
	for i, arg := range c.Arguments {
		actual := e.emitExpr(arg)
		if actual != fn.ParamTypes[i] {
			panic(diagnostics.TypeMismatch(arg.Loc(), fmt.Sprintf("argument %d to '%s'", i+1, name), fn.ParamTypes[i].String(), actual.String()))
		}
	}
	e.emit(OpCall, idx)
	return fn.ReturnType
}

func (e *Emitter) VisitUnary(u ast.Unary) any {
	typ := e.emitExpr(u.Right)
	switch u.Operator.Lexeme {
	case "-":
		if typ != ast.Int && typ != ast.Float {
			panic(diagnostics.TypeMismatch(u.Loc(), "unary '-'", "int or float", typ.String()))
		}
		e.emit(OpNeg)
		return typ
	case "!":
		if typ != ast.Bool {
			panic(diagnostics.TypeMismatch(u.Loc(), "unary '!'", "bool", typ.String()))
		}
		e.emit(OpNot)
		return ast.Bool
	default:
		panic(fmt.Sprintf("emitter: unknown unary operator %q", u.Operator.Lexeme))
	}
}

func (e *Emitter) VisitBinary(b ast.Binary) any {
	leftType := e.emitExpr(b.Left)
	rightType := e.emitExpr(b.Right)
	op := b.Operator.Lexeme

	if arithOp, ok := arithmeticOps[op]; ok {
		e.checkNumericOperands(b.Loc(), op, leftType, rightType)
		e.emit(arithOp)
		return leftType
	}
	if cmpOp, ok := comparisonOps[op]; ok {
		e.checkNumericOperands(b.Loc(), op, leftType, rightType)
		e.emit(cmpOp)
		return ast.Bool
	}
	if op == "==" || op == "!=" {
		if leftType != rightType {
			panic(diagnostics.TypeMismatch(b.Loc(), fmt.Sprintf("operands of '%s'", op), leftType.String(), rightType.String()))
		}
		e.emit(OpEqual)
		if op == "!=" {
			e.emit(OpNot)
		}
		return ast.Bool
	}
	panic(fmt.Sprintf("emitter: unknown binary operator %q", op))
}

// checkNumericOperands enforces that both sides of an arithmetic or
// ordering comparison share the same type and that the type is numeric.
// The wire format has one ADD/SUB/MUL/DIV/LESS/... opcode per operator,
// not one per type, so the VM relies on this static guarantee rather than
// branching on a runtime tag.
func (e *Emitter) checkNumericOperands(loc source.Location, op string, left, right ast.Type) {
	if left != right {
		panic(diagnostics.TypeMismatch(loc, fmt.Sprintf("operands of '%s'", op), left.String(), right.String()))
	}
	if left != ast.Int && left != ast.Float {
		panic(diagnostics.TypeMismatch(loc, fmt.Sprintf("operands of '%s'", op), "int or float", left.String()))
	}
}

func (e *Emitter) VisitLogical(l ast.Logical) any {
	leftType := e.emitExpr(l.Left)
	if leftType != ast.Bool {
		panic(diagnostics.TypeMismatch(l.Left.Loc(), fmt.Sprintf("operand of '%s'", l.Operator.Lexeme), "bool", leftType.String()))
	}
	rightType := e.emitExpr(l.Right)
	if rightType != ast.Bool {
		panic(diagnostics.TypeMismatch(l.Right.Loc(), fmt.Sprintf("operand of '%s'", l.Operator.Lexeme), "bool", rightType.String()))
	}
	switch l.Operator.Lexeme {
	case "&&":
		e.emit(OpAnd)
	case "||":
		e.emit(OpOr)
	}
	return ast.Bool
}
