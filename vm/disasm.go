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
	"fmt"
	"io"
	"strconv"

	"github.com/cafebabevm/mjvm/internal/errio"
)

// mnemonics names every opcode this interpreter implements, keyed by the
// real JVM opcode byte rather than a dense enum.
var mnemonics = map[byte]string{
	opNop: "nop", opPop: "pop", opDup: "dup",
	opIconst0: "iconst_0", opIconst1: "iconst_1", opIconst2: "iconst_2",
	opIconst3: "iconst_3", opIconst4: "iconst_4", opIconst5: "iconst_5",
	opFconst0: "fconst_0", opFconst1: "fconst_1", opFconst2: "fconst_2",
	opBipush: "bipush", opLdc: "ldc",
	opIload: "iload", opIload0: "iload_0", opIload1: "iload_1", opIload2: "iload_2", opIload3: "iload_3",
	opAload: "aload", opAload0: "aload_0", opAload1: "aload_1", opAload2: "aload_2", opAload3: "aload_3",
	opIstore: "istore", opIstore0: "istore_0", opIstore1: "istore_1", opIstore2: "istore_2", opIstore3: "istore_3",
	opAstore: "astore", opAstore0: "astore_0", opAstore1: "astore_1", opAstore2: "astore_2", opAstore3: "astore_3",
	opIinc: "iinc",
	opIadd: "iadd", opIsub: "isub", opIdiv: "idiv", opI2s: "i2s",
	opFadd: "fadd", opFmul: "fmul", opFdiv: "fdiv",
	opIfEq: "ifeq", opIfNe: "ifne", opIfLt: "iflt", opIfGe: "ifge", opIfGt: "ifgt", opIfLe: "ifle",
	opIfIcmpeq: "if_icmpeq", opIfIcmpne: "if_icmpne", opIfIcmplt: "if_icmplt",
	opIfIcmpge: "if_icmpge", opIfIcmpgt: "if_icmpgt", opIfIcmple: "if_icmple",
	opIfAcmpeq: "if_acmpeq", opIfAcmpne: "if_acmpne",
	opIfNull: "ifnull", opIfNonnull: "ifnonnull",
	opGoto: "goto", opGotoW: "goto_w",
	opGetfield: "getfield", opPutfield: "putfield", opNew: "new",
	opInvokestatic: "invokestatic", opInvokevirtual: "invokevirtual", opInvokespecial: "invokespecial",
	opIreturn: "ireturn", opFreturn: "freturn", opAreturn: "areturn", opVreturn: "vreturn",
}

// operandBytes is the operand width (not counting the opcode byte itself)
// for every opcode in mnemonics; it is what lets Disassemble advance to
// the next instruction without a full interpreter alongside it.
var operandBytes = map[byte]int{
	opBipush: 1, opLdc: 1, opIload: 1, opAload: 1,
	opIstore: 1, opAstore: 1,
	opIinc: 2,
	opIfEq: 2, opIfNe: 2, opIfLt: 2, opIfGe: 2, opIfGt: 2, opIfLe: 2,
	opIfIcmpeq: 2, opIfIcmpne: 2, opIfIcmplt: 2, opIfIcmpge: 2, opIfIcmpgt: 2, opIfIcmple: 2,
	opIfAcmpeq: 2, opIfAcmpne: 2, opIfNull: 2, opIfNonnull: 2,
	opGoto: 2, opGotoW: 4,
	opGetfield: 2, opPutfield: 2, opNew: 2,
	opInvokestatic: 2, opInvokevirtual: 2, opInvokespecial: 2,
}

// Disassemble writes a textual rendering of the instruction at code[pc] to
// w and returns the offset of the next instruction. It reuses an
// *errio.Writer across repeated calls when the caller passes one in, so a
// full-method disassembly loop checks one error instead of one per
// instruction.
func Disassemble(code []byte, pc int, w io.Writer) (next int, err error) {
	ew, ok := w.(*errio.Writer)
	if !ok {
		ew = errio.New(w)
	}

	op := code[pc]
	name, known := mnemonics[op]
	if !known {
		io.WriteString(ew, "unknown ")
		io.WriteString(ew, strconv.Itoa(int(op)))
		return pc + 1, ew.Err
	}
	io.WriteString(ew, name)

	n := operandBytes[op]
	if n == 0 {
		return pc + 1, ew.Err
	}
	io.WriteString(ew, " ")
	switch n {
	case 1:
		io.WriteString(ew, strconv.Itoa(int(code[pc+1])))
	case 2:
		// Pool indices are printed unsigned; every other 2-byte operand
		// (branch displacements in particular) is printed as signed.
		v := binary.BigEndian.Uint16(code[pc+1:])
		switch op {
		case opGetfield, opPutfield, opNew, opInvokestatic, opInvokevirtual, opInvokespecial:
			io.WriteString(ew, strconv.Itoa(int(v)))
		default:
			io.WriteString(ew, strconv.Itoa(int(int16(v))))
		}
	case 4:
		io.WriteString(ew, strconv.Itoa(int(int32(binary.BigEndian.Uint32(code[pc+1:])))))
	}
	return pc + 1 + n, ew.Err
}

// DisassembleAll writes a disassembly of an entire Code body to w, one
// instruction per line prefixed with its offset.
func DisassembleAll(code []byte, w io.Writer) error {
	ew := errio.New(w)
	for pc := 0; pc < len(code); {
		fmt.Fprintf(ew, "% 6d\t", pc)
		next, _ := Disassemble(code, pc, ew)
		io.WriteString(ew, "\n")
		if ew.Err != nil {
			return ew.Err
		}
		pc = next
	}
	return nil
}
