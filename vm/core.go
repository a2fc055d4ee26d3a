// This file is part of mjvm.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/cafebabevm/mjvm/classfile"
)

func float32Bits(f float32) uint32 { return math.Float32bits(f) }

func asFloat32(s slot) float32 { return math.Float32frombits(s.asFloatBits()) }

// Opcode values. These are the real JVM opcode values, not a renumbering.
const (
	opNop   = 0x00
	opIconst0 = 0x03
	opIconst1 = 0x04
	opIconst2 = 0x05
	opIconst3 = 0x06
	opIconst4 = 0x07
	opIconst5 = 0x08
	opBipush  = 0x10
	opLdc     = 0x12
	opIload   = 0x15
	opIload0  = 0x1a
	opIload1  = 0x1b
	opIload2  = 0x1c
	opIload3  = 0x1d
	opAload   = 0x19
	opAload0  = 0x2a
	opAload1  = 0x2b
	opAload2  = 0x2c
	opAload3  = 0x2d
	opIstore  = 0x36
	opIstore0 = 0x3b
	opIstore1 = 0x3c
	opIstore2 = 0x3d
	opIstore3 = 0x3e
	opAstore  = 0x3a
	opAstore0 = 0x4b
	opAstore1 = 0x4c
	opAstore2 = 0x4d
	opAstore3 = 0x4e
	opDup     = 0x59
	opPop     = 0x57
	opIadd    = 0x60
	opFadd    = 0x62
	opIsub    = 0x64
	opFmul    = 0x6a
	opIdiv    = 0x6c
	opFdiv    = 0x6e
	opI2s     = 0x93
	opIinc    = 0x84
	opIfEq    = 0x99
	opIfNe    = 0x9a
	opIfLt    = 0x9b
	opIfGe    = 0x9c
	opIfGt    = 0x9d
	opIfLe    = 0x9e
	opIfIcmpeq = 0x9f
	opIfIcmpne = 0xa0
	opIfIcmplt = 0xa1
	opIfIcmpge = 0xa2
	opIfIcmpgt = 0xa3
	opIfIcmple = 0xa4
	opIfAcmpeq = 0xa5
	opIfAcmpne = 0xa6
	opGoto     = 0xa7
	opIreturn  = 0xac
	opFreturn  = 0xae
	opAreturn  = 0xb0
	opVreturn  = 0xb1
	opGetfield = 0xb4
	opPutfield = 0xb5
	opInvokevirtual = 0xb6
	opInvokespecial = 0xb7
	opInvokestatic  = 0xb8
	opNew      = 0xbb
	opIfNull    = 0xc6
	opIfNonnull = 0xc7
	opGotoW     = 0xc8
	opFconst0 = 0x0b
	opFconst1 = 0x0c
	opFconst2 = 0x0d
)

// run executes the Code attribute's raw bytecode of one method, against the
// constant pool of class (so that constant-pool-indexed opcodes resolve
// against the right class). PC is local to this call: it does not survive
// across invocations, matching the fact that the reference interpreter's
// execute_bytecode starts every call at pc=0.
//
// Dispatch is a single switch over an unsigned byte; there is no
// instruction-length table because each case advances pc by its own
// instruction's length.
func (i *Instance) run(class *classfile.Class, code []byte) (err error) {
	defer func() {
		if e := recover(); e != nil {
			if re, ok := e.(error); ok {
				err = errors.Wrapf(re, "vm: recovered panic in %s, ins %d", class.Name, i.insCount)
				return
			}
			panic(e)
		}
	}()

	pc := 0
	for pc < len(code) {
		op := code[pc]
		switch op {
		case opNop:
			pc++

		case opPop:
			i.pop()
			pc++

		case opDup:
			i.push(i.load(0))
			pc++

		case opBipush:
			i.push(intSlot(int32(code[pc+1])))
			pc += 2

		case opLdc:
			if err := i.execLdc(class, code[pc+1]); err != nil {
				return err
			}
			pc += 2

		case opIconst0, opIconst1, opIconst2, opIconst3, opIconst4, opIconst5:
			i.push(intSlot(int32(op - opIconst0)))
			pc++

		case opFconst0:
			i.push(floatBitsSlot(float32Bits(0)))
			pc++
		case opFconst1:
			i.push(floatBitsSlot(float32Bits(1)))
			pc++
		case opFconst2:
			i.push(floatBitsSlot(float32Bits(2)))
			pc++

		case opIload, opAload:
			i.push(i.loadLocal(int(code[pc+1])))
			pc += 2
		case opIload0, opAload0:
			i.push(i.loadLocal(0))
			pc++
		case opIload1, opAload1:
			i.push(i.loadLocal(1))
			pc++
		case opIload2, opAload2:
			i.push(i.loadLocal(2))
			pc++
		case opIload3, opAload3:
			i.push(i.loadLocal(3))
			pc++

		case opIstore, opAstore:
			i.storeLocal(int(code[pc+1]), i.pop())
			pc += 2
		case opIstore0, opAstore0:
			i.storeLocal(0, i.pop())
			pc++
		case opIstore1, opAstore1:
			i.storeLocal(1, i.pop())
			pc++
		case opIstore2, opAstore2:
			i.storeLocal(2, i.pop())
			pc++
		case opIstore3, opAstore3:
			i.storeLocal(3, i.pop())
			pc++

		case opIinc:
			idx := int(code[pc+1])
			delta := int8(code[pc+2])
			v := i.loadLocal(idx).asInt()
			i.storeLocal(idx, intSlot(v+int32(delta)))
			pc += 3

		case opIadd:
			a, b := i.pop().asInt(), i.pop().asInt()
			i.push(intSlot(a + b))
			pc++
		case opIsub:
			b, a := i.pop().asInt(), i.pop().asInt()
			i.push(intSlot(b - a))
			pc++
		case opIdiv:
			b, a := i.pop().asInt(), i.pop().asInt()
			i.push(intSlot(b / a))
			pc++
		case opI2s:
			v := int16(i.pop().asInt())
			i.push(intSlot(int32(v)))
			pc++

		case opFadd:
			a, b := asFloat32(i.pop()), asFloat32(i.pop())
			i.push(floatBitsSlot(float32Bits(a + b)))
			pc++
		case opFmul:
			a, b := asFloat32(i.pop()), asFloat32(i.pop())
			i.push(floatBitsSlot(float32Bits(a * b)))
			pc++
		case opFdiv:
			b, a := asFloat32(i.pop()), asFloat32(i.pop())
			i.push(floatBitsSlot(float32Bits(b / a)))
			pc++

		case opIfAcmpeq, opIfAcmpne:
			b, a := i.pop(), i.pop()
			eq := a.asRef() == b.asRef()
			if op == opIfAcmpne {
				eq = !eq
			}
			pc = branch(pc, code, eq)

		case opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple:
			b, a := i.pop().asInt(), i.pop().asInt()
			pc = branch(pc, code, intCompare(op, b, a))

		case opIfEq, opIfNe, opIfLt, opIfGe, opIfGt, opIfLe:
			v := i.pop().asInt()
			pc = branch(pc, code, zeroCompare(op, v))

		case opIfNull, opIfNonnull:
			v := i.pop()
			null := v.isNull()
			if op == opIfNonnull {
				null = !null
			}
			pc = branch(pc, code, null)

		case opGoto:
			pc += int(int16(binary.BigEndian.Uint16(code[pc+1:])))
		case opGotoW:
			pc += int(int32(binary.BigEndian.Uint32(code[pc+1:])))

		case opGetfield:
			obj := i.pop().asRef()
			offset, _, ok := class.Pool.SubstitutionField(binary.BigEndian.Uint16(code[pc+1:]))
			if !ok {
				return errors.Errorf("vm: getfield at pc=%d targets an unresolved field", pc)
			}
			i.push(obj.getField(offset))
			pc += 3

		case opPutfield:
			v := i.pop()
			obj := i.pop().asRef()
			offset, _, ok := class.Pool.SubstitutionField(binary.BigEndian.Uint16(code[pc+1:]))
			if !ok {
				return errors.Errorf("vm: putfield at pc=%d targets an unresolved field", pc)
			}
			obj.putField(offset, v)
			pc += 3

		case opNew:
			obj, err := i.newInstance(class, binary.BigEndian.Uint16(code[pc+1:]))
			if err != nil {
				return err
			}
			i.push(refSlot(obj))
			pc += 3

		case opInvokestatic:
			if err := i.dispatchMethod(class, nil, binary.BigEndian.Uint16(code[pc+1:])); err != nil {
				return err
			}
			pc += 3

		case opInvokevirtual:
			self := i.pop().asRef()
			if err := i.dispatchMethod(class, self, binary.BigEndian.Uint16(code[pc+1:])); err != nil {
				return err
			}
			pc += 3

		case opInvokespecial:
			self := i.pop().asRef()
			if err := i.dispatchMethod(class, self, binary.BigEndian.Uint16(code[pc+1:])); err != nil {
				return err
			}
			pc += 3

		case opIreturn, opFreturn, opAreturn:
			return nil
		case opVreturn:
			return nil

		default:
			return errors.Wrapf(ErrUnknownOpcode, "%#02x at pc=%d in %s", op, pc, class.Name)
		}
		i.insCount++
	}
	return nil
}

// execLdc pushes a Float or Integer constant from the pool. A String
// constant, and every other tag, is rejected with ErrUnsupported.
func (i *Instance) execLdc(class *classfile.Class, poolIdx8 byte) error {
	idx := uint16(poolIdx8)
	tag, err := class.Pool.Tag(idx)
	if err != nil {
		return err
	}
	switch tag {
	case classfile.TagFloat:
		v, err := class.Pool.Float(idx)
		if err != nil {
			return err
		}
		i.push(floatBitsSlot(float32Bits(v)))
	case classfile.TagInteger:
		v, err := class.Pool.Integer(idx)
		if err != nil {
			return err
		}
		i.push(intSlot(v))
	case classfile.TagString:
		return errors.Wrapf(classfile.ErrUnsupported, "ldc of a String constant (no string objects in this subset)")
	default:
		return errors.Wrapf(classfile.ErrUnsupported, "ldc of pool tag %d", tag)
	}
	return nil
}

// branch applies the signed 16-bit displacement at code[pc+1:pc+3] when
// take is true, relative to the opcode's own address (pc), otherwise skips
// past the 3-byte instruction. Every if_* case pops its operand(s) before
// calling this; this function only ever touches pc.
func branch(pc int, code []byte, take bool) int {
	if take {
		return pc + int(int16(binary.BigEndian.Uint16(code[pc+1:])))
	}
	return pc + 3
}

// intCompare evaluates one of the if_icmp* predicates. Operand order
// matches the reference interpreter's literal comparison (top compared
// against second-from-top, i.e. the more recently pushed value on the
// left), not the "first pushed is the left operand" convention a reader
// might expect from the arithmetic ops.
func intCompare(op byte, top, second int32) bool {
	switch op {
	case opIfIcmpeq:
		return top == second
	case opIfIcmpne:
		return top != second
	case opIfIcmplt:
		return top < second
	case opIfIcmpge:
		return top >= second
	case opIfIcmpgt:
		return top > second
	case opIfIcmple:
		return top <= second
	default:
		panic("vm: intCompare called with a non-if_icmp opcode")
	}
}

func zeroCompare(op byte, v int32) bool {
	switch op {
	case opIfEq:
		return v == 0
	case opIfNe:
		return v != 0
	case opIfLt:
		return v < 0
	case opIfGe:
		return v >= 0
	case opIfGt:
		return v > 0
	case opIfLe:
		return v <= 0
	default:
		panic("vm: zeroCompare called with a non-if_eq-family opcode")
	}
}
