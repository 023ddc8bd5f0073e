// declarations.go contains the top-level AST nodes: the single entry
// block, global variable declarations, and function declarations. These
// form a flat, non-recursive list at the root of a parsed program, so they
// are walked directly by the emitter via a type switch rather than through
// a dedicated visitor interface — adding a third visitor for a handful of
// top-level shapes that are never nested would be ceremony without payoff.

package ast

import (
	"phase/source"
	"phase/token"
)

// FuncDecl represents a top-level function declaration:
// "func add(a: int, b: int): int { ... }".
type FuncDecl struct {
	Name       token.Token
	Params     []Param
	ReturnType Type
	Body       BlockStmt
	Location   source.Location
}

func (f FuncDecl) Loc() source.Location { return f.Location }

// GlobalVarDecl represents a top-level "let name: type;" declaration.
// Unlike a local declaration, a global carries no initializer: the global
// table only records a (name, type) pair, and its VM slot starts as void
// until the first assignment.
type GlobalVarDecl struct {
	Name     token.Token
	Type     Type
	Location source.Location
}

func (g GlobalVarDecl) Loc() source.Location { return g.Location }

// EntryDecl represents the program's single "entry { ... }" block, the
// first code executed when the program runs.
type EntryDecl struct {
	Body     BlockStmt
	Location source.Location
}

func (e EntryDecl) Loc() source.Location { return e.Location }

// Program is the root AST node: the full set of top-level declarations
// parsed from one source file, in source order.
type Program struct {
	Globals   []GlobalVarDecl
	Functions []FuncDecl
	Entry     *EntryDecl // nil if the source declared no entry block
}
