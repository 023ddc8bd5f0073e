// Package vm executes compiler.Bytecode: a flat dispatch loop over a value
// stack, a globals array, and a call-frame stack with owned per-frame
// local arrays.
package vm

import (
	"fmt"
	"io"

	"phase/compiler"
	"phase/diagnostics"
	"phase/source"
)

// frame is one call-frame: the instruction to resume at in the caller,
// and this call's own local variable array. The entry block gets a seed
// frame the same shape as a real call's, with returnIP unused - HALT, not
// a stray RET, is what actually terminates it.
type frame struct {
	returnIP int
	locals   []Value
}

// VM is a stack-based virtual machine: one instruction pointer, one
// operand stack, one globals array sized from the bytecode's global
// table, and a LIFO call-frame stack seeded with the entry block's frame.
type VM struct {
	bytecode compiler.Bytecode
	stack    Stack
	globals  []Value
	frames   []frame
	ip       int
}

// New prepares a VM to run bytecode from instruction 0. Globals start
// void (their zero Value) until first assigned, exactly as the global
// table promises.
func New(bytecode compiler.Bytecode) *VM {
	return &VM{
		bytecode: bytecode,
		globals:  make([]Value, len(bytecode.Globals)),
		frames:   []frame{{returnIP: -1, locals: make([]Value, bytecode.EntryLocalCount)}},
	}
}

// currentLoc looks up the source location of the instruction at vm.ip, for
// attaching to a runtime diagnostic. Not every offset has an entry (e.g.
// bytecode.Locations is nil for hand-built test fixtures, or the offset is
// a trailing implicit HALT/RET); those fall back to source.NoLocation.
func (vm *VM) currentLoc() source.Location {
	return vm.bytecode.Locations[vm.ip]
}

// Run executes the bytecode to completion, writing PRINT output to out. It
// returns nil on HALT (or on a RET that pops the outermost frame), or the
// first runtime diagnostic raised.
func (vm *VM) Run(out io.Writer) error {
	code := vm.bytecode.Instructions

	for {
		if vm.ip < 0 || vm.ip >= len(code) {
			return diagnostics.IPOutOfBounds(vm.ip, len(code))
		}
		loc := vm.currentLoc()

		op := compiler.Opcode(code[vm.ip])
		switch op {
		case compiler.OpPushConst:
			idx := int(compiler.ReadUint16(code, vm.ip+1))
			if idx < 0 || idx >= len(vm.bytecode.ConstantsPool) {
				return diagnostics.InvalidConstIndex(idx, len(vm.bytecode.ConstantsPool))
			}
			vm.push(valueFromConstant(vm.bytecode.ConstantsPool[idx]))
			vm.ip += 3

		case compiler.OpPrint:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", v.Format())
			vm.ip++

		case compiler.OpSetGlobal:
			idx := int(compiler.ReadUint16(code, vm.ip+1))
			if idx < 0 || idx >= len(vm.globals) {
				return diagnostics.InvalidVarIndex(idx, len(vm.globals), "global")
			}
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.globals[idx] = v
			vm.ip += 3

		case compiler.OpGetGlobal:
			idx := int(compiler.ReadUint16(code, vm.ip+1))
			if idx < 0 || idx >= len(vm.globals) {
				return diagnostics.InvalidVarIndex(idx, len(vm.globals), "global")
			}
			vm.push(vm.globals[idx])
			vm.ip += 3

		case compiler.OpSetLocal:
			idx := int(compiler.ReadUint16(code, vm.ip+1))
			locals := vm.currentFrame().locals
			if idx < 0 || idx >= len(locals) {
				return diagnostics.InvalidVarIndex(idx, len(locals), "local")
			}
			v, err := vm.pop()
			if err != nil {
				return err
			}
			locals[idx] = v
			vm.ip += 3

		case compiler.OpGetLocal:
			idx := int(compiler.ReadUint16(code, vm.ip+1))
			locals := vm.currentFrame().locals
			if idx < 0 || idx >= len(locals) {
				return diagnostics.InvalidVarIndex(idx, len(locals), "local")
			}
			vm.push(locals[idx])
			vm.ip += 3

		case compiler.OpCall:
			idx := int(compiler.ReadUint16(code, vm.ip+1))
			if idx < 0 || idx >= len(vm.bytecode.Functions) {
				return diagnostics.InvalidVarIndex(idx, len(vm.bytecode.Functions), "function")
			}
			fn := vm.bytecode.Functions[idx]
			locals := make([]Value, fn.LocalCount)
			for i := len(fn.ParamTypes) - 1; i >= 0; i-- {
				v, err := vm.pop()
				if err != nil {
					return err
				}
				locals[i] = v
			}
			vm.frames = append(vm.frames, frame{returnIP: vm.ip + 3, locals: locals})
			vm.ip = fn.EntryIP

		case compiler.OpRet:
			returning := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}
			vm.ip = returning.returnIP

		case compiler.OpJump:
			target := int(compiler.ReadUint16(code, vm.ip+1))
			if target < 0 || target >= len(code) {
				return diagnostics.IPOutOfBounds(target, len(code))
			}
			vm.ip = target

		case compiler.OpJumpIfFalse:
			target := int(compiler.ReadUint16(code, vm.ip+1))
			v, err := vm.pop()
			if err != nil {
				return err
			}
			b, ok := v.AsBool()
			if !ok {
				return diagnostics.RuntimeTypeGuard(loc, "JUMP_IF_FALSE")
			}
			if !b {
				if target < 0 || target >= len(code) {
					return diagnostics.IPOutOfBounds(target, len(code))
				}
				vm.ip = target
			} else {
				vm.ip += 3
			}

		case compiler.OpPop:
			if _, err := vm.pop(); err != nil {
				return err
			}
			vm.ip++

		case compiler.OpNot:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			b, ok := v.AsBool()
			if !ok {
				return diagnostics.RuntimeTypeGuard(loc, "NOT")
			}
			vm.push(BoolValue(!b))
			vm.ip++

		case compiler.OpNeg:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			switch v.Kind {
			case KindInt:
				vm.push(IntValue(-v.Int))
			case KindFloat:
				vm.push(FloatValue(-v.Float))
			default:
				return diagnostics.RuntimeTypeGuard(loc, "NEG")
			}
			vm.ip++

		case compiler.OpAnd:
			right, left, err := vm.popPair()
			if err != nil {
				return err
			}
			lb, ok1 := left.AsBool()
			rb, ok2 := right.AsBool()
			if !ok1 || !ok2 {
				return diagnostics.RuntimeTypeGuard(loc, "AND")
			}
			vm.push(BoolValue(lb && rb))
			vm.ip++

		case compiler.OpOr:
			right, left, err := vm.popPair()
			if err != nil {
				return err
			}
			lb, ok1 := left.AsBool()
			rb, ok2 := right.AsBool()
			if !ok1 || !ok2 {
				return diagnostics.RuntimeTypeGuard(loc, "OR")
			}
			vm.push(BoolValue(lb || rb))
			vm.ip++

		case compiler.OpEqual:
			right, left, err := vm.popPair()
			if err != nil {
				return err
			}
			eq, err := left.Equal(right)
			if err != nil {
				return diagnostics.RuntimeTypeGuard(loc, "EQUAL")
			}
			vm.push(BoolValue(eq))
			vm.ip++

		case compiler.OpLess, compiler.OpGreater, compiler.OpLessEqual, compiler.OpGreaterEqual:
			right, left, err := vm.popPair()
			if err != nil {
				return err
			}
			cmp, err := left.Compare(right)
			if err != nil {
				return diagnostics.RuntimeTypeGuard(loc, "comparison")
			}
			var result bool
			switch op {
			case compiler.OpLess:
				result = cmp < 0
			case compiler.OpGreater:
				result = cmp > 0
			case compiler.OpLessEqual:
				result = cmp <= 0
			case compiler.OpGreaterEqual:
				result = cmp >= 0
			}
			vm.push(BoolValue(result))
			vm.ip++

		case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv:
			right, left, err := vm.popPair()
			if err != nil {
				return err
			}
			result, err := arithmetic(op, left, right, loc)
			if err != nil {
				return err
			}
			vm.push(result)
			vm.ip++

		case compiler.OpHalt:
			return nil

		default:
			return diagnostics.InvalidOpcode(vm.ip, code[vm.ip])
		}
	}
}

// arithmetic implements ADD/SUB/MUL/DIV. int division truncates toward
// zero the way Go's own / already does; int division by zero is a
// diagnostic, float division by zero is not - it produces IEEE-754
// infinity or NaN, which Go's float64 division already does unassisted.
// loc is the calling instruction's source location, attached to any
// diagnostic raised here.
func arithmetic(op compiler.Opcode, left, right Value, loc source.Location) (Value, error) {
	switch left.Kind {
	case KindInt:
		r, ok := right.AsInt()
		if !ok {
			return Value{}, diagnostics.RuntimeTypeGuard(loc, "int arithmetic")
		}
		switch op {
		case compiler.OpAdd:
			return IntValue(left.Int + r), nil
		case compiler.OpSub:
			return IntValue(left.Int - r), nil
		case compiler.OpMul:
			return IntValue(left.Int * r), nil
		case compiler.OpDiv:
			if r == 0 {
				return Value{}, diagnostics.DivisionByZero(loc)
			}
			return IntValue(left.Int / r), nil
		}
	case KindFloat:
		if right.Kind != KindFloat {
			return Value{}, diagnostics.RuntimeTypeGuard(loc, "float arithmetic")
		}
		switch op {
		case compiler.OpAdd:
			return FloatValue(left.Float + right.Float), nil
		case compiler.OpSub:
			return FloatValue(left.Float - right.Float), nil
		case compiler.OpMul:
			return FloatValue(left.Float * right.Float), nil
		case compiler.OpDiv:
			return FloatValue(left.Float / right.Float), nil
		}
	}
	return Value{}, diagnostics.RuntimeTypeGuard(loc, "arithmetic")
}

func (vm *VM) currentFrame() *frame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) push(v Value) {
	vm.stack.Push(v)
}

func (vm *VM) pop() (Value, error) {
	v, ok := vm.stack.Pop()
	if !ok {
		return Value{}, diagnostics.RuntimeTypeGuard(vm.currentLoc(), "stack underflow")
	}
	return v, nil
}

// popPair pops the right operand then the left, matching the stack order
// a binary expression's post-order emission leaves behind.
func (vm *VM) popPair() (right, left Value, err error) {
	right, err = vm.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	left, err = vm.pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	return right, left, nil
}
