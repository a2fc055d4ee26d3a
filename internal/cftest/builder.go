// Package cftest builds class-file byte buffers programmatically, for
// tests that need a CAFEBABE-format input without a real compiler in the
// loop. Its incremental, index-returning style is adapted from asm's
// parser.write-based image construction (asm/parser.go), generalized from
// a Forth image's flat Cell array to this format's constant-pool-plus-
// sections binary layout.
package cftest

import (
	"encoding/binary"
)

// Builder accumulates constant pool entries, fields and methods, then
// serializes them into a class file with Bytes. Pool entries are appended
// in the order requested and never deduplicated — tests that want to
// exercise duplicate constants can simply call e.g. Utf8 twice.
type Builder struct {
	thisClassName string
	pool          [][]byte // encoded entries (tag byte + payload), 1-indexed by position+1
	fields        []fieldSpec
	methods       []methodSpec
	sourceFile    string
}

type fieldSpec struct {
	nameIdx, descIdx uint16
}

type methodSpec struct {
	nameIdx, descIdx   uint16
	maxStack, maxLocals uint16
	code               []byte // nil means no Code attribute
}

// New returns a Builder for a class whose this_class constant names
// thisClassName.
func New(thisClassName string) *Builder {
	return &Builder{thisClassName: thisClassName}
}

func (b *Builder) add(entry []byte) uint16 {
	b.pool = append(b.pool, entry)
	return uint16(len(b.pool)) // pool is 1-based; len() after append is the new entry's index
}

// Utf8 adds a Utf8 constant and returns its pool index.
func (b *Builder) Utf8(s string) uint16 {
	buf := []byte{1} // TagUtf8
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	buf = append(buf, s...)
	return b.add(buf)
}

// Class adds a Utf8 for name plus a Class constant referencing it, and
// returns the Class constant's pool index.
func (b *Builder) Class(name string) uint16 {
	nameIdx := b.Utf8(name)
	buf := []byte{7} // TagClass
	buf = binary.BigEndian.AppendUint16(buf, nameIdx)
	return b.add(buf)
}

// NameAndType adds a NameAndType constant and returns its pool index.
func (b *Builder) NameAndType(name, descriptor string) uint16 {
	nameIdx := b.Utf8(name)
	descIdx := b.Utf8(descriptor)
	buf := []byte{12} // TagNameAndType
	buf = binary.BigEndian.AppendUint16(buf, nameIdx)
	buf = binary.BigEndian.AppendUint16(buf, descIdx)
	return b.add(buf)
}

// FieldRef adds a FieldRef naming (class, name, descriptor) and returns its
// pool index.
func (b *Builder) FieldRef(class, name, descriptor string) uint16 {
	return b.ref(9, class, name, descriptor)
}

// MethodRef adds a MethodRef naming (class, name, descriptor) and returns
// its pool index.
func (b *Builder) MethodRef(class, name, descriptor string) uint16 {
	return b.ref(10, class, name, descriptor)
}

func (b *Builder) ref(tag byte, class, name, descriptor string) uint16 {
	classIdx := b.Class(class)
	natIdx := b.NameAndType(name, descriptor)
	buf := []byte{tag}
	buf = binary.BigEndian.AppendUint16(buf, classIdx)
	buf = binary.BigEndian.AppendUint16(buf, natIdx)
	return b.add(buf)
}

// Integer adds an Integer constant and returns its pool index.
func (b *Builder) Integer(v int32) uint16 {
	buf := []byte{3} // TagInteger
	buf = binary.BigEndian.AppendUint32(buf, uint32(v))
	return b.add(buf)
}

// Float adds a Float constant (bit pattern) and returns its pool index.
func (b *Builder) Float(bits uint32) uint16 {
	buf := []byte{4} // TagFloat
	buf = binary.BigEndian.AppendUint32(buf, bits)
	return b.add(buf)
}

// Field declares an instance field of the class being built. Fields are
// emitted in the order declared, which is also the order the loader will
// assign increasing byte offsets.
func (b *Builder) Field(name, descriptor string) {
	b.fields = append(b.fields, fieldSpec{
		nameIdx: b.Utf8(name),
		descIdx: b.Utf8(descriptor),
	})
}

// Method declares a method with a Code attribute. code is the raw
// bytecode body; maxLocals must cover every local slot the body
// addresses (the interpreter floors this at 4 regardless).
func (b *Builder) Method(name, descriptor string, maxStack, maxLocals uint16, code []byte) {
	b.methods = append(b.methods, methodSpec{
		nameIdx:   b.Utf8(name),
		descIdx:   b.Utf8(descriptor),
		maxStack:  maxStack,
		maxLocals: maxLocals,
		code:      code,
	})
}

// SourceFile sets the class-level SourceFile attribute.
func (b *Builder) SourceFile(name string) {
	b.sourceFile = name
}

// Bytes serializes the accumulated pool/fields/methods into a complete
// class file: magic, versions, constant pool, access_flags, this_class,
// super_class, an empty interfaces list, fields, methods, and class
// attributes.
func (b *Builder) Bytes() []byte {
	// Every pool mutation must happen before the constant pool section is
	// serialized below, so resolve this_class/"Code"/SourceFile indices
	// first instead of adding them inline while writing later sections.
	thisIdx := b.Class(b.thisClassName)

	var codeNameIdx uint16
	for _, m := range b.methods {
		if m.code != nil {
			codeNameIdx = b.Utf8("Code")
			break
		}
	}
	var sfNameIdx, sfValIdx uint16
	if b.sourceFile != "" {
		sfNameIdx = b.Utf8("SourceFile")
		sfValIdx = b.Utf8(b.sourceFile)
	}

	var out []byte
	out = binary.BigEndian.AppendUint32(out, 0xcafebabe)
	out = binary.BigEndian.AppendUint16(out, 0) // minor_version
	out = binary.BigEndian.AppendUint16(out, 0) // major_version

	out = binary.BigEndian.AppendUint16(out, uint16(len(b.pool)+1)) // constant_count
	for _, e := range b.pool {
		out = append(out, e...)
	}

	out = binary.BigEndian.AppendUint16(out, 0)       // access_flags
	out = binary.BigEndian.AppendUint16(out, thisIdx) // this_class
	out = binary.BigEndian.AppendUint16(out, 0)       // super_class
	out = binary.BigEndian.AppendUint16(out, 0)       // interfaces_count

	out = binary.BigEndian.AppendUint16(out, uint16(len(b.fields)))
	for _, f := range b.fields {
		out = binary.BigEndian.AppendUint16(out, 0) // access_flags
		out = binary.BigEndian.AppendUint16(out, f.nameIdx)
		out = binary.BigEndian.AppendUint16(out, f.descIdx)
		out = binary.BigEndian.AppendUint16(out, 0) // attributes_count
	}

	out = binary.BigEndian.AppendUint16(out, uint16(len(b.methods)))
	for _, m := range b.methods {
		out = binary.BigEndian.AppendUint16(out, 0) // access_flags
		out = binary.BigEndian.AppendUint16(out, m.nameIdx)
		out = binary.BigEndian.AppendUint16(out, m.descIdx)
		if m.code == nil {
			out = binary.BigEndian.AppendUint16(out, 0) // attributes_count
			continue
		}
		out = binary.BigEndian.AppendUint16(out, 1) // attributes_count

		var body []byte
		body = binary.BigEndian.AppendUint16(body, m.maxStack)
		body = binary.BigEndian.AppendUint16(body, m.maxLocals)
		body = binary.BigEndian.AppendUint32(body, uint32(len(m.code)))
		body = append(body, m.code...)
		body = binary.BigEndian.AppendUint16(body, 0) // exception_table_length
		body = binary.BigEndian.AppendUint16(body, 0) // attributes_count (nested, unused)

		out = binary.BigEndian.AppendUint16(out, codeNameIdx)
		out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
		out = append(out, body...)
	}

	if b.sourceFile == "" {
		out = binary.BigEndian.AppendUint16(out, 0) // attributes_count
		return out
	}
	out = binary.BigEndian.AppendUint16(out, 1)
	out = binary.BigEndian.AppendUint16(out, sfNameIdx)
	out = binary.BigEndian.AppendUint32(out, 2)
	out = binary.BigEndian.AppendUint16(out, sfValIdx)
	return out
}
