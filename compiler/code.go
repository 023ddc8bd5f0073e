// Package compiler turns a type-checked AST into bytecode: a flat
// instruction stream plus the constant pool, function table, and global
// table the virtual machine needs to execute it.
package compiler

import (
	"encoding/binary"
	"fmt"
)

// Opcode identifies a single bytecode instruction. Values are assigned in
// the declaration order reserved by the wire format, one byte each.
type Opcode byte

// Instructions is a flat byte stream: one opcode byte optionally followed
// by a big-endian u16 operand, with no alignment or framing.
type Instructions []byte

const (
	OpPushConst Opcode = iota
	OpPrint
	OpSetGlobal
	OpGetGlobal
	OpSetLocal
	OpGetLocal
	OpCall
	OpRet
	OpJump
	OpJumpIfFalse
	OpPop
	OpNot
	OpNeg
	OpAnd
	OpOr
	OpEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpHalt
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands, used both to encode and to disassemble instructions.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OpPushConst:    {"PUSH_CONST", []int{2}},
	OpPrint:        {"PRINT", nil},
	OpSetGlobal:    {"SET_GLOBAL", []int{2}},
	OpGetGlobal:    {"GET_GLOBAL", []int{2}},
	OpSetLocal:     {"SET_LOCAL", []int{2}},
	OpGetLocal:     {"GET_LOCAL", []int{2}},
	OpCall:         {"CALL", []int{2}},
	OpRet:          {"RET", nil},
	OpJump:         {"JUMP", []int{2}},
	OpJumpIfFalse:  {"JUMP_IF_FALSE", []int{2}},
	OpPop:          {"POP", nil},
	OpNot:          {"NOT", nil},
	OpNeg:          {"NEG", nil},
	OpAnd:          {"AND", nil},
	OpOr:           {"OR", nil},
	OpEqual:        {"EQUAL", nil},
	OpLess:         {"LESS", nil},
	OpGreater:      {"GREATER", nil},
	OpLessEqual:    {"LESS_EQUAL", nil},
	OpGreaterEqual: {"GREATER_EQUAL", nil},
	OpAdd:          {"ADD", nil},
	OpSub:          {"SUB", nil},
	OpMul:          {"MUL", nil},
	OpDiv:          {"DIV", nil},
	OpHalt:         {"HALT", nil},
}

// Get looks up an opcode's definition, failing for any byte value the
// format doesn't reserve.
func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction encodes op and its operands into a single instruction:
// the opcode byte followed by each operand written big-endian at its
// defined width.
func MakeInstruction(op Opcode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return nil
	}

	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		}
		offset += width
	}
	return instruction
}

// ReadUint16 decodes the big-endian u16 operand starting at offset.
func ReadUint16(ins Instructions, offset int) uint16 {
	return binary.BigEndian.Uint16(ins[offset:])
}

// Disassemble renders a single instruction at ip in human-readable form,
// e.g. "0004 PUSH_CONST 2". Used by the "emit" CLI subcommand.
func Disassemble(ins Instructions, ip int) (string, int) {
	op := Opcode(ins[ip])
	def, err := Get(op)
	if err != nil {
		return fmt.Sprintf("%04d ERROR: %s", ip, err), 1
	}

	width := 1
	for _, w := range def.OperandWidths {
		width += w
	}

	if len(def.OperandWidths) == 0 {
		return fmt.Sprintf("%04d %s", ip, def.Name), width
	}

	operand := ReadUint16(ins, ip+1)
	return fmt.Sprintf("%04d %s %d", ip, def.Name, operand), width
}
