package cftest

import "encoding/binary"

// Opcode bytes, re-exported for test bytecode bodies. These mirror the vm
// package's unexported opcode constants; duplicated here because tests
// build bytecode as plain []byte and have no access to vm's internals.
const (
	OpNop     = 0x00
	OpIconst0 = 0x03
	OpIconst1 = 0x04
	OpIconst2 = 0x05
	OpIconst3 = 0x06
	OpIconst4 = 0x07
	OpIconst5 = 0x08
	OpFconst0 = 0x0b
	OpFconst1 = 0x0c
	OpFconst2 = 0x0d
	OpBipush  = 0x10
	OpLdc     = 0x12
	OpIload   = 0x15
	OpAload   = 0x19
	OpIload0  = 0x1a
	OpIload1  = 0x1b
	OpIload2  = 0x1c
	OpIload3  = 0x1d
	OpAload0  = 0x2a
	OpAload1  = 0x2b
	OpAload2  = 0x2c
	OpAload3  = 0x2d
	OpIstore  = 0x36
	OpAstore  = 0x3a
	OpIstore0 = 0x3b
	OpIstore1 = 0x3c
	OpIstore2 = 0x3d
	OpIstore3 = 0x3e
	OpAstore0 = 0x4b
	OpAstore1 = 0x4c
	OpAstore2 = 0x4d
	OpAstore3 = 0x4e
	OpPop     = 0x57
	OpDup     = 0x59
	OpIadd    = 0x60
	OpFadd    = 0x62
	OpIsub    = 0x64
	OpFmul    = 0x6a
	OpIdiv    = 0x6c
	OpFdiv    = 0x6e
	OpI2s      = 0x93
	OpIinc     = 0x84
	OpIfEq     = 0x99
	OpIfNe     = 0x9a
	OpIfLt     = 0x9b
	OpIfGe     = 0x9c
	OpIfGt     = 0x9d
	OpIfLe     = 0x9e
	OpIfIcmpeq = 0x9f
	OpIfIcmpne = 0xa0
	OpIfIcmplt = 0xa1
	OpIfIcmpge = 0xa2
	OpIfIcmpgt = 0xa3
	OpIfIcmple = 0xa4
	OpIfAcmpeq = 0xa5
	OpIfAcmpne = 0xa6
	OpGoto     = 0xa7
	OpIreturn  = 0xac
	OpFreturn  = 0xae
	OpAreturn  = 0xb0
	OpVreturn  = 0xb1
	OpGetfield = 0xb4
	OpPutfield = 0xb5
	OpInvokevirtual = 0xb6
	OpInvokespecial = 0xb7
	OpInvokestatic  = 0xb8
	OpNew        = 0xbb
	OpIfNull     = 0xc6
	OpIfNonnull  = 0xc7
	OpGotoW      = 0xc8
)

// U16 appends the big-endian encoding of v, for 16-bit opcode operands
// (pool indices, if_* displacements treated as unsigned here).
func U16(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

// S16 appends the big-endian two's-complement encoding of a signed 16-bit
// branch displacement.
func S16(v int16) []byte {
	return binary.BigEndian.AppendUint16(nil, uint16(v))
}

// S32 appends the big-endian two's-complement encoding of a signed 32-bit
// goto_w displacement.
func S32(v int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(v))
}

// Code concatenates opcode bytes and operand byte slices into one
// bytecode body, so a test can write e.g.
//
//	cftest.Code(cftest.OpIconst2, cftest.OpIconst1, cftest.OpIdiv, cftest.OpIreturn)
func Code(parts ...any) []byte {
	var out []byte
	for _, p := range parts {
		switch v := p.(type) {
		case int:
			out = append(out, byte(v))
		case byte:
			out = append(out, v)
		case []byte:
			out = append(out, v...)
		default:
			panic("cftest: Code: unsupported part type")
		}
	}
	return out
}
