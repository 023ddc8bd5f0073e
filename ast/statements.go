// statements.go contains all the statement AST nodes. A statement node
// never produces a value; it only has an effect (binding a name, printing,
// branching, looping, returning).

package ast

import (
	"phase/source"
	"phase/token"
)

// ExpressionStmt represents a statement that consists of a single
// expression evaluated for its side effect, e.g. a bare call "tick();".
// The emitter pops the result unless the expression is void.
type ExpressionStmt struct {
	Expression Expression
}

func (e ExpressionStmt) Accept(v StmtVisitor) any { return v.VisitExpressionStmt(e) }
func (e ExpressionStmt) Loc() source.Location     { return e.Expression.Loc() }

// PrintStmt represents "out(expr);": it prints the result of evaluating
// expr followed by a newline.
type PrintStmt struct {
	Expression Expression
	Location   source.Location
}

func (p PrintStmt) Accept(v StmtVisitor) any { return v.VisitPrintStmt(p) }
func (p PrintStmt) Loc() source.Location     { return p.Location }

// LetStmt represents a local variable declaration: "let x: int = 1;" or,
// for a batch of same-typed locals, "let x, y: int = 1, 2;". Names and
// Initializers are parallel; every declared name is always initialized —
// the language has no uninitialized local declarations.
type LetStmt struct {
	Names        []token.Token
	Type         Type
	Initializers []Expression
}

func (l LetStmt) Accept(v StmtVisitor) any { return v.VisitLetStmt(l) }
func (l LetStmt) Loc() source.Location {
	first := l.Names[0]
	return source.New("", first.Line, first.Column, first.EndColumn())
}

// AssignStmt represents "x = expr;", rebinding an already-declared local or
// global. Unlike the expression-oriented languages this interpreter was
// adapted from, assignment here is a statement and cannot be nested inside
// a larger expression.
type AssignStmt struct {
	Name  token.Token
	Value Expression
}

func (a AssignStmt) Accept(v StmtVisitor) any { return v.VisitAssignStmt(a) }
func (a AssignStmt) Loc() source.Location {
	return source.New("", a.Name.Line, a.Name.Column, a.Name.EndColumn())
}

// ReturnStmt represents "return expr;" or a bare "return;" inside a
// function body. Value is nil for a bare return from a void function.
type ReturnStmt struct {
	Value    Expression
	Location source.Location
}

func (r ReturnStmt) Accept(v StmtVisitor) any { return v.VisitReturnStmt(r) }
func (r ReturnStmt) Loc() source.Location     { return r.Location }

// IfStmt represents "if (cond) { ... } else { ... }". Else may be nil.
type IfStmt struct {
	Condition Expression
	Then      BlockStmt
	Else      Stmt // BlockStmt, IfStmt (else-if chain), or nil
	Location  source.Location
}

func (i IfStmt) Accept(v StmtVisitor) any { return v.VisitIfStmt(i) }
func (i IfStmt) Loc() source.Location     { return i.Location }

// WhileStmt represents "while (cond) { ... }".
type WhileStmt struct {
	Condition Expression
	Body      BlockStmt
	Location  source.Location
}

func (w WhileStmt) Accept(v StmtVisitor) any { return v.VisitWhileStmt(w) }
func (w WhileStmt) Loc() source.Location     { return w.Location }

// BlockStmt represents a brace-delimited list of statements. It does not
// introduce a scope: a local declared inside it stays visible to the end of
// the enclosing function.
type BlockStmt struct {
	Statements []Stmt
	Location   source.Location
}

func (b BlockStmt) Accept(v StmtVisitor) any { return v.VisitBlockStmt(b) }
func (b BlockStmt) Loc() source.Location     { return b.Location }
