// interfaces.go contains the Expression and Stmt base interfaces together
// with the visitor interfaces that any code traversing the AST — the
// emitter first and foremost — must implement. It follows the visitor
// design pattern: each node type knows only how to dispatch itself to a
// visitor, never how to compile or evaluate itself.

package ast

import "phase/source"

// ExpressionVisitor is the interface for operating on all Expression AST
// nodes. The emitter implements this to type-check and compile expressions.
//
// Each Visit method corresponds to a distinct Expression type.
type ExpressionVisitor interface {
	VisitLiteral(lit Literal) any
	VisitVariable(v Variable) any
	VisitCall(c Call) any
	VisitUnary(u Unary) any
	VisitBinary(b Binary) any
	VisitLogical(l Logical) any
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
// Like ExpressionVisitor, it defines one Visit method per statement type.
type StmtVisitor interface {
	VisitPrintStmt(p PrintStmt) any
	VisitLetStmt(l LetStmt) any
	VisitAssignStmt(a AssignStmt) any
	VisitReturnStmt(r ReturnStmt) any
	VisitExpressionStmt(e ExpressionStmt) any
	VisitIfStmt(i IfStmt) any
	VisitWhileStmt(w WhileStmt) any
	VisitBlockStmt(b BlockStmt) any
}

// Stmt is the base interface for all statement nodes in the AST. Like
// Expression, it follows the visitor design pattern where each statement
// type implements Accept, calling back into the correct Visit method on a
// StmtVisitor. Loc reports the span of source text the statement was
// parsed from, used to anchor diagnostics.
type Stmt interface {
	Accept(v StmtVisitor) any
	Loc() source.Location
}

// Expression is the core interface for all expression nodes in the AST.
// The Accept method enables the visitor design pattern so that operations
// can be performed on expressions without the expression types needing to
// know the details of those operations.
type Expression interface {
	Accept(v ExpressionVisitor) any
	Loc() source.Location
}
