package classfile

import (
	"math"

	"github.com/pkg/errors"
)

// Tag discriminates a constant pool entry's payload shape.
type Tag byte

// Recognized constant pool tags. tagSubstitutionField is not a classfile
// wire value; it marks a FieldRef slot the loader has rewritten in place
// after field-layout resolution.
const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldRef           Tag = 9
	TagMethodRef          Tag = 10
	TagInterfaceMethodRef Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagInvokeDynamic      Tag = 18

	tagSubstitutionField Tag = 0xf0
)

// entry is the union of every payload shape a pool slot can carry. Only the
// fields relevant to the entry's current tag are meaningful; a resolved
// FieldRef becomes a SubstitutionField by changing tag and payload in
// place, so resolution never needs a separate Go interface per variant,
// which would cost an allocation and an indirection per pool slot on a
// memory-constrained target.
type entry struct {
	tag Tag

	text Slice // Utf8

	raw32 uint32 // Integer, Float
	raw64 uint64 // Long, Double

	index1 uint16 // Class.name_index, String.utf8_index, NameAndType/MethodType.descriptor_index
	index2 uint16 // *Ref.name_and_type_index, NameAndType.name_index, InvokeDynamic.name_and_type_index
	kind   byte   // MethodHandle.reference_kind

	offset    int // SubstitutionField
	sizeClass int // SubstitutionField
}

// ConstantPool is the one-based, positionally indexed collection of a
// class file's constants. Index 0 is never used.
type ConstantPool struct {
	entries []entry

	// Offsets records each entry's starting byte offset in the source
	// buffer, indexed the same way as entries. Parsing is a pure function
	// of the input bytes, so this table is identical across repeated
	// parses of the same classfile.
	Offsets []int
}

// Count returns the number of addressable entries, i.e. constant_count-1.
func (p *ConstantPool) Count() int {
	if len(p.entries) == 0 {
		return 0
	}
	return len(p.entries) - 1
}

func (p *ConstantPool) checkIndex(idx uint16) (*entry, error) {
	if int(idx) <= 0 || int(idx) >= len(p.entries) {
		return nil, errors.Errorf("classfile: constant pool index %d out of range (count %d)", idx, p.Count())
	}
	return &p.entries[idx], nil
}

func (p *ConstantPool) expect(idx uint16, want Tag) (*entry, error) {
	e, err := p.checkIndex(idx)
	if err != nil {
		return nil, err
	}
	if e.tag != want {
		return nil, errors.Errorf("classfile: constant pool index %d has tag %d, want %d", idx, e.tag, want)
	}
	return e, nil
}

// Tag returns the tag of the entry at idx.
func (p *ConstantPool) Tag(idx uint16) (Tag, error) {
	e, err := p.checkIndex(idx)
	if err != nil {
		return 0, err
	}
	return e.tag, nil
}

// Utf8 returns the decoded bytes of a Utf8 entry.
func (p *ConstantPool) Utf8(idx uint16) (Slice, error) {
	e, err := p.expect(idx, TagUtf8)
	if err != nil {
		return Slice{}, err
	}
	return e.text, nil
}

// Utf8String is a convenience wrapper around Utf8 returning a Go string.
func (p *ConstantPool) Utf8String(idx uint16) (string, error) {
	s, err := p.Utf8(idx)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// ClassName resolves a Class entry's name_index to its Utf8 bytes.
func (p *ConstantPool) ClassName(idx uint16) (Slice, error) {
	e, err := p.expect(idx, TagClass)
	if err != nil {
		return Slice{}, err
	}
	return p.Utf8(e.index1)
}

// String resolves a String entry's utf8_index to its Utf8 bytes.
func (p *ConstantPool) String(idx uint16) (Slice, error) {
	e, err := p.expect(idx, TagString)
	if err != nil {
		return Slice{}, err
	}
	return p.Utf8(e.index1)
}

// Integer returns the raw 32-bit value of an Integer entry.
func (p *ConstantPool) Integer(idx uint16) (int32, error) {
	e, err := p.expect(idx, TagInteger)
	if err != nil {
		return 0, err
	}
	return int32(e.raw32), nil
}

// Float returns the IEEE-754 value of a Float entry.
func (p *ConstantPool) Float(idx uint16) (float32, error) {
	e, err := p.expect(idx, TagFloat)
	if err != nil {
		return 0, err
	}
	return float32FromBits(e.raw32), nil
}

// Long returns the raw 64-bit value of a Long entry. Long occupies a
// single logical pool slot in this implementation, unlike the two-slot
// convention of the reference platform.
func (p *ConstantPool) Long(idx uint16) (int64, error) {
	e, err := p.expect(idx, TagLong)
	if err != nil {
		return 0, err
	}
	return int64(e.raw64), nil
}

// Double returns the IEEE-754 value of a Double entry.
func (p *ConstantPool) Double(idx uint16) (float64, error) {
	e, err := p.expect(idx, TagDouble)
	if err != nil {
		return 0, err
	}
	return float64FromBits(e.raw64), nil
}

// RefParts returns the (class_index, name_and_type_index) pair shared by
// FieldRef, MethodRef and InterfaceMethodRef entries.
func (p *ConstantPool) RefParts(idx uint16) (classIndex, natIndex uint16, err error) {
	e, err := p.checkIndex(idx)
	if err != nil {
		return 0, 0, err
	}
	switch e.tag {
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
		return e.index1, e.index2, nil
	default:
		return 0, 0, errors.Errorf("classfile: constant pool index %d is not a ref (tag %d)", idx, e.tag)
	}
}

// NameAndType returns the (name, descriptor) Utf8 Slices of a NameAndType
// entry.
func (p *ConstantPool) NameAndType(idx uint16) (name, descriptor Slice, err error) {
	e, err := p.expect(idx, TagNameAndType)
	if err != nil {
		return Slice{}, Slice{}, err
	}
	name, err = p.Utf8(e.index2)
	if err != nil {
		return Slice{}, Slice{}, err
	}
	descriptor, err = p.Utf8(e.index1)
	if err != nil {
		return Slice{}, Slice{}, err
	}
	return name, descriptor, nil
}

// ResolveRef resolves a FieldRef/MethodRef/InterfaceMethodRef all the way
// down to the (class name, member name, descriptor) triple that method
// lookup and field resolution operate on.
func (p *ConstantPool) ResolveRef(idx uint16) (className, memberName, descriptor Slice, err error) {
	classIdx, natIdx, err := p.RefParts(idx)
	if err != nil {
		return Slice{}, Slice{}, Slice{}, err
	}
	className, err = p.ClassName(classIdx)
	if err != nil {
		return Slice{}, Slice{}, Slice{}, err
	}
	memberName, descriptor, err = p.NameAndType(natIdx)
	if err != nil {
		return Slice{}, Slice{}, Slice{}, err
	}
	return className, memberName, descriptor, nil
}

// SubstitutionField returns the resolved (byte offset, size-class log2) pair
// stored at idx, and whether idx currently holds a SubstitutionField at all
// (it may still be an unresolved FieldRef belonging to another class).
func (p *ConstantPool) SubstitutionField(idx uint16) (offset, sizeClass int, ok bool) {
	e, err := p.checkIndex(idx)
	if err != nil {
		return 0, 0, false
	}
	if e.tag != tagSubstitutionField {
		return 0, 0, false
	}
	return e.offset, e.sizeClass, true
}

// substituteField overwrites the FieldRef at idx with a SubstitutionField.
// Only the loader calls this, during field-layout resolution.
func (p *ConstantPool) substituteField(idx uint16, offset, sizeClass int) {
	p.entries[idx] = entry{tag: tagSubstitutionField, offset: offset, sizeClass: sizeClass}
}

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}
