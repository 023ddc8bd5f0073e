// expressions.go contains all the expression AST nodes. An expression node
// evaluates to one value, except a call to a void function, which leaves
// none; the emitter's Visit methods in compiler/emitter.go infer the type of
// each production.

package ast

import (
	"phase/source"
	"phase/token"
)

// Literal represents a literal value in the source code: an int, float,
// bool, or str constant. Value holds the interpreted Go value (int32,
// float64, bool, or string) produced by the lexer.
type Literal struct {
	Value    any
	Location source.Location
}

func (lit Literal) Accept(v ExpressionVisitor) any { return v.VisitLiteral(lit) }
func (lit Literal) Loc() source.Location           { return lit.Location }

// Variable represents a variable reference: the retrieval of a value
// previously bound to a local or global name.
type Variable struct {
	Name token.Token // an IDENTIFIER token
}

func (variable Variable) Accept(v ExpressionVisitor) any { return v.VisitVariable(variable) }
func (variable Variable) Loc() source.Location {
	return source.New("", variable.Name.Line, variable.Name.Column, variable.Name.EndColumn())
}

// Call represents a function call expression, e.g. "add(1, 2)".
type Call struct {
	Callee    token.Token // the IDENTIFIER token naming the function
	Arguments []Expression
	Location  source.Location
}

func (call Call) Accept(v ExpressionVisitor) any { return v.VisitCall(call) }
func (call Call) Loc() source.Location           { return call.Location }

// Unary represents a unary operation expression: "-e" (numeric negate) or
// "!e" (boolean negate).
type Unary struct {
	Operator token.Token
	Right    Expression
}

func (unary Unary) Accept(v ExpressionVisitor) any { return v.VisitUnary(unary) }
func (unary Unary) Loc() source.Location {
	return source.New("", unary.Operator.Line, unary.Operator.Column, unary.Right.Loc().ColEnd)
}

// Binary represents a binary arithmetic, comparison, or equality
// expression, e.g. "a + b" or "a <= b".
type Binary struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (binary Binary) Accept(v ExpressionVisitor) any { return v.VisitBinary(binary) }
func (binary Binary) Loc() source.Location {
	return source.New("", binary.Left.Loc().Line, binary.Left.Loc().ColStart, binary.Right.Loc().ColEnd)
}

// Logical represents a "&&" or "||" expression. Both operands are always
// evaluated (the language specifies strict, non-short-circuit evaluation
// for these operators so that bytecode emission remains single-pass; see
// DESIGN.md's note on strict logical operators).
type Logical struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (logical Logical) Accept(v ExpressionVisitor) any { return v.VisitLogical(logical) }
func (logical Logical) Loc() source.Location {
	return source.New("", logical.Left.Loc().Line, logical.Left.Loc().ColStart, logical.Right.Loc().ColEnd)
}
