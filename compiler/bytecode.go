package compiler

import (
	"phase/ast"
	"phase/source"
)

// FunctionDef is the emitter's record of one compiled function: its
// signature, where its locals live, and where its body starts in the
// instruction stream.
type FunctionDef struct {
	Name       string
	ReturnType ast.Type
	ParamTypes []ast.Type
	LocalCount int
	EntryIP    int
}

// GlobalDef is a single entry in the global table: a name and its
// declared type. The VM's globals array has one void-initialized slot per
// entry, in the same order.
type GlobalDef struct {
	Name string
	Type ast.Type
}

// Bytecode is everything the emitter produces and the VM needs to run a
// program: the instruction stream, the constant pool referenced by
// PUSH_CONST, the function table, and the global table. Execution begins
// at instruction 0, which is always the entry block's first instruction.
type Bytecode struct {
	Instructions  Instructions
	ConstantsPool []any
	Functions     []FunctionDef
	Globals       []GlobalDef

	// EntryLocalCount is the number of local slots the entry block's frame
	// needs; it has no FunctionDef of its own since it is never called.
	EntryLocalCount int

	// Locations maps an instruction's starting offset to the source
	// location of the AST node that emitted it. Not every offset has an
	// entry (e.g. a trailing implicit HALT/RET emitted outside any
	// expression or statement); callers fall back to source.NoLocation for
	// those.
	Locations map[int]source.Location
}
