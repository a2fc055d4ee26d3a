package classfile

import (
	"unsafe"

	"github.com/pkg/errors"
)

const magic = 0xcafebabe

// cursor walks a byte buffer sequentially, failing with ErrTruncated as soon
// as a read would run past the end. This is the loader's only notion of
// "where am I" — there is no separate lexer/token stream.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) u8() (byte, error) {
	if c.pos+1 > len(c.buf) {
		return 0, errTruncated("u8", c.pos, len(c.buf))
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	v, err := checkedU16(c.buf, c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	v, err := checkedU32(c.buf, c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += 4
	return v, nil
}

func (c *cursor) skip(n int) error {
	if c.pos+n > len(c.buf) {
		return errTruncated("skip", c.pos, len(c.buf))
	}
	c.pos += n
	return nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, errTruncated("bytes", c.pos, len(c.buf))
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Parse parses bytes as a class file and, on success, registers the
// resulting Class under className in the DefaultRegistry.
// bytes becomes owned by the returned Class: its attribute payloads and
// pool Utf8 entries alias it directly, so the caller must not mutate or
// discard it while the Class is in use.
func Parse(className string, bytes []byte) (*Class, error) {
	c := &cursor{buf: bytes}

	m, err := c.u32()
	if err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}
	if m != magic {
		return nil, errors.Wrapf(ErrBadMagic, "got %#08x", m)
	}

	if _, err := c.u16(); err != nil { // minor_version, retained but unchecked
		return nil, errors.Wrap(err, "reading minor_version")
	}
	if _, err := c.u16(); err != nil { // major_version, retained but unchecked
		return nil, errors.Wrap(err, "reading major_version")
	}

	constantCount, err := c.u16()
	if err != nil {
		return nil, errors.Wrap(err, "reading constant_count")
	}

	pool, err := parsePool(c, int(constantCount))
	if err != nil {
		return nil, errors.Wrap(err, "parsing constant pool")
	}

	if _, err := c.u16(); err != nil { // access_flags
		return nil, errors.Wrap(err, "reading access_flags")
	}
	thisClass, err := c.u16()
	if err != nil {
		return nil, errors.Wrap(err, "reading this_class")
	}
	if _, err := c.u16(); err != nil { // super_class
		return nil, errors.Wrap(err, "reading super_class")
	}
	interfacesCount, err := c.u16()
	if err != nil {
		return nil, errors.Wrap(err, "reading interfaces_count")
	}
	if interfacesCount > 0 {
		return nil, errors.Wrapf(ErrUnsupported, "interfaces_count=%d", interfacesCount)
	}

	selfName, err := pool.ClassName(thisClass)
	if err != nil {
		return nil, errors.Wrap(err, "resolving this_class")
	}

	layout, err := parseFields(c, pool, selfName)
	if err != nil {
		return nil, errors.Wrap(err, "parsing fields")
	}

	methods, err := parseMethods(c, pool)
	if err != nil {
		return nil, errors.Wrap(err, "parsing methods")
	}

	sourceFile, err := parseClassAttributes(c, pool)
	if err != nil {
		return nil, errors.Wrap(err, "parsing class attributes")
	}

	class := &Class{
		Name:       className,
		Pool:       pool,
		Methods:    methods,
		Layout:     layout,
		SourceFile: sourceFile,
		buf:        bytes,
	}
	defaultRegistry.Register(className, class)
	return class, nil
}

// parsePool walks constantCount-1 entries, recording each entry's starting
// byte offset: this offset table is a pure function of the input bytes, so
// parsing is deterministic across runs.
func parsePool(c *cursor, constantCount int) (*ConstantPool, error) {
	pool := &ConstantPool{entries: make([]entry, constantCount)}
	pool.Offsets = make([]int, constantCount)

	for idx := 1; idx < constantCount; idx++ {
		pool.Offsets[idx] = c.pos
		tagByte, err := c.u8()
		if err != nil {
			return nil, errors.Wrapf(err, "reading tag at pool index %d", idx)
		}
		e, err := parseEntry(c, Tag(tagByte))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing entry at pool index %d", idx)
		}
		pool.entries[idx] = e
	}
	return pool, nil
}

func parseEntry(c *cursor, tag Tag) (entry, error) {
	switch tag {
	case TagUtf8:
		length, err := c.u16()
		if err != nil {
			return entry{}, err
		}
		start := c.pos
		if _, err := c.bytes(int(length)); err != nil {
			return entry{}, err
		}
		return entry{tag: tag, text: SliceOf(c.buf, start, start+int(length))}, nil
	case TagInteger, TagFloat:
		v, err := c.u32()
		if err != nil {
			return entry{}, err
		}
		return entry{tag: tag, raw32: v}, nil
	case TagLong, TagDouble:
		hi, err := c.u32()
		if err != nil {
			return entry{}, err
		}
		lo, err := c.u32()
		if err != nil {
			return entry{}, err
		}
		return entry{tag: tag, raw64: uint64(hi)<<32 | uint64(lo)}, nil
	case TagClass, TagString, TagMethodType:
		idx, err := c.u16()
		if err != nil {
			return entry{}, err
		}
		return entry{tag: tag, index1: idx}, nil
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef, TagInvokeDynamic:
		i1, err := c.u16()
		if err != nil {
			return entry{}, err
		}
		i2, err := c.u16()
		if err != nil {
			return entry{}, err
		}
		return entry{tag: tag, index1: i1, index2: i2}, nil
	case TagNameAndType:
		nameIdx, err := c.u16()
		if err != nil {
			return entry{}, err
		}
		descIdx, err := c.u16()
		if err != nil {
			return entry{}, err
		}
		// stored as index1=descriptor, index2=name to match pool.go's NameAndType accessor
		return entry{tag: tag, index1: descIdx, index2: nameIdx}, nil
	case TagMethodHandle:
		kind, err := c.u8()
		if err != nil {
			return entry{}, err
		}
		refIdx, err := c.u16()
		if err != nil {
			return entry{}, err
		}
		return entry{tag: tag, kind: kind, index1: refIdx}, nil
	default:
		return entry{}, errors.Wrapf(ErrUnknownTag, "tag %d", tag)
	}
}

// sizeClass returns the 2-logarithm of a field's byte size given its
// descriptor.
func sizeClass(descriptor string) (int, error) {
	if descriptor == "" {
		return 0, errors.New("classfile: empty field descriptor")
	}
	switch descriptor[0] {
	case 'J', 'D':
		return 3, nil
	case 'I', 'F', 'Z', 'B', 'C', 'S':
		return 2, nil
	case 'L', '[':
		return pointerSizeClass, nil
	default:
		return 0, errors.Wrapf(ErrUnsupported, "field descriptor %q", descriptor)
	}
}

var pointerSizeClass = log2(int(unsafe.Sizeof(uintptr(0))))

func log2(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// parseFields parses the fields_count section, assigning each field a byte
// offset by cumulative summation and rewriting any FieldRef in the pool
// that names (selfName, field name) into a SubstitutionField.
func parseFields(c *cursor, pool *ConstantPool, selfName Slice) (LayoutSummary, error) {
	count, err := c.u16()
	if err != nil {
		return LayoutSummary{}, errors.Wrap(err, "reading fields_count")
	}

	layout := LayoutSummary{Offset: -1}
	offset := 0

	for i := 0; i < int(count); i++ {
		if _, err := c.u16(); err != nil { // access_flags
			return LayoutSummary{}, errors.Wrapf(err, "field %d access_flags", i)
		}
		nameIdx, err := c.u16()
		if err != nil {
			return LayoutSummary{}, errors.Wrapf(err, "field %d name_index", i)
		}
		descIdx, err := c.u16()
		if err != nil {
			return LayoutSummary{}, errors.Wrapf(err, "field %d descriptor_index", i)
		}
		if err := skipAttributes(c, pool); err != nil {
			return LayoutSummary{}, errors.Wrapf(err, "field %d attributes", i)
		}

		descriptor, err := pool.Utf8String(descIdx)
		if err != nil {
			return LayoutSummary{}, errors.Wrapf(err, "field %d descriptor", i)
		}
		sc, err := sizeClass(descriptor)
		if err != nil {
			return LayoutSummary{}, errors.Wrapf(err, "field %d", i)
		}

		fieldOffset := offset
		offset += 1 << sc
		if fieldOffset >= layout.Offset {
			layout.Offset, layout.SizeClass = fieldOffset, sc
		}

		fieldName, err := pool.Utf8(nameIdx)
		if err != nil {
			return LayoutSummary{}, errors.Wrapf(err, "field %d name", i)
		}
		substituteMatchingFieldRefs(pool, selfName, fieldName, fieldOffset, sc)
	}
	return layout, nil
}

// substituteMatchingFieldRefs scans the whole pool for FieldRef entries
// that resolve to (selfName, fieldName) and rewrites each one found into a
// SubstitutionField. This is the "pool slot rewriting" design from spec
// §4.3/§9: the pool already exists, so no separate resolved-field table is
// allocated.
func substituteMatchingFieldRefs(pool *ConstantPool, selfName, fieldName Slice, offset, sc int) {
	for idx := 1; idx < len(pool.entries); idx++ {
		if pool.entries[idx].tag != TagFieldRef {
			continue
		}
		className, memberName, _, err := pool.ResolveRef(uint16(idx))
		if err != nil {
			continue
		}
		if className.Equal(selfName) && memberName.Equal(fieldName) {
			pool.substituteField(uint16(idx), offset, sc)
		}
	}
}

// skipAttributes reads and discards an attributes_count-prefixed attribute
// list without interpreting any of them. Used for fields, whose attributes
// (ConstantValue, Synthetic, ...) carry no semantics in this subset.
func skipAttributes(c *cursor, pool *ConstantPool) error {
	count, err := c.u16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := c.u16(); err != nil { // attribute_name_index
			return err
		}
		length, err := c.u32()
		if err != nil {
			return err
		}
		if err := c.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

// parseMethods parses the methods_count section into MethodDescriptors,
// decoding the Code attribute when present and retaining every other
// attribute by reference to the source buffer.
func parseMethods(c *cursor, pool *ConstantPool) ([]MethodDescriptor, error) {
	count, err := c.u16()
	if err != nil {
		return nil, errors.Wrap(err, "reading methods_count")
	}
	methods := make([]MethodDescriptor, count)
	for i := 0; i < int(count); i++ {
		accessFlags, err := c.u16()
		if err != nil {
			return nil, errors.Wrapf(err, "method %d access_flags", i)
		}
		nameIdx, err := c.u16()
		if err != nil {
			return nil, errors.Wrapf(err, "method %d name_index", i)
		}
		descIdx, err := c.u16()
		if err != nil {
			return nil, errors.Wrapf(err, "method %d descriptor_index", i)
		}

		attrs, code, err := parseAttributes(c, pool)
		if err != nil {
			return nil, errors.Wrapf(err, "method %d attributes", i)
		}

		methods[i] = MethodDescriptor{
			AccessFlags:     accessFlags,
			NameIndex:       nameIdx,
			DescriptorIndex: descIdx,
			Attributes:      attrs,
			Code:            code,
		}
	}
	return methods, nil
}

const codeAttributeName = "Code"
const sourceFileAttributeName = "SourceFile"

// parseAttributes reads a method's attribute list, decoding Code and
// retaining the rest unparsed.
func parseAttributes(c *cursor, pool *ConstantPool) ([]Attribute, *CodeAttribute, error) {
	count, err := c.u16()
	if err != nil {
		return nil, nil, err
	}
	attrs := make([]Attribute, 0, count)
	var code *CodeAttribute

	for i := 0; i < int(count); i++ {
		nameIdx, err := c.u16()
		if err != nil {
			return nil, nil, err
		}
		length, err := c.u32()
		if err != nil {
			return nil, nil, err
		}
		info, err := c.bytes(int(length))
		if err != nil {
			return nil, nil, err
		}

		name, err := pool.Utf8String(nameIdx)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "attribute %d name", i)
		}
		if name == codeAttributeName {
			decoded, err := decodeCodeAttribute(info)
			if err != nil {
				return nil, nil, errors.Wrapf(ErrUnsupported, "attribute %d (Code): %v", i, err)
			}
			code = decoded
		}
		attrs = append(attrs, Attribute{NameIndex: nameIdx, Info: info})
	}
	return attrs, code, nil
}

// decodeCodeAttribute decodes {max_stack, max_locals, code_length, code[]}
// from a Code attribute's payload, ignoring the exception table and any
// attributes nested after the bytecode.
func decodeCodeAttribute(info []byte) (*CodeAttribute, error) {
	cc := &cursor{buf: info}
	maxStack, err := cc.u16()
	if err != nil {
		return nil, errors.Wrap(err, "max_stack")
	}
	maxLocals, err := cc.u16()
	if err != nil {
		return nil, errors.Wrap(err, "max_locals")
	}
	codeLength, err := cc.u32()
	if err != nil {
		return nil, errors.Wrap(err, "code_length")
	}
	code, err := cc.bytes(int(codeLength))
	if err != nil {
		return nil, errors.Wrap(err, "code")
	}
	return &CodeAttribute{MaxStack: maxStack, MaxLocals: maxLocals, Code: code}, nil
}

// parseClassAttributes reads the class-level attribute list, recognizing
// SourceFile and skipping everything else.
func parseClassAttributes(c *cursor, pool *ConstantPool) (string, error) {
	count, err := c.u16()
	if err != nil {
		return "", errors.Wrap(err, "reading attributes_count")
	}
	var sourceFile string
	for i := 0; i < int(count); i++ {
		nameIdx, err := c.u16()
		if err != nil {
			return "", errors.Wrapf(err, "attribute %d name_index", i)
		}
		length, err := c.u32()
		if err != nil {
			return "", errors.Wrapf(err, "attribute %d attribute_length", i)
		}
		info, err := c.bytes(int(length))
		if err != nil {
			return "", errors.Wrapf(err, "attribute %d info", i)
		}

		name, err := pool.Utf8String(nameIdx)
		if err != nil {
			return "", errors.Wrapf(err, "attribute %d name", i)
		}
		if name == sourceFileAttributeName {
			ac := &cursor{buf: info}
			idx, err := ac.u16()
			if err != nil {
				return "", errors.Wrapf(ErrUnsupported, "SourceFile sourcefile_index: %v", err)
			}
			sourceFile, err = pool.Utf8String(idx)
			if err != nil {
				return "", errors.Wrap(err, "SourceFile name")
			}
		}
	}
	return sourceFile, nil
}
