package classfile

import (
	"math"
	"testing"
)

func TestConstantPoolIndexOutOfRange(t *testing.T) {
	p := &ConstantPool{entries: make([]entry, 3)}
	if _, err := p.checkIndex(0); err == nil {
		t.Error("index 0 must never be addressable")
	}
	if _, err := p.checkIndex(3); err == nil {
		t.Error("index == len(entries) must be out of range")
	}
	if _, err := p.checkIndex(1); err != nil {
		t.Errorf("index 1 should be in range: %v", err)
	}
}

func TestConstantPoolTagMismatch(t *testing.T) {
	p := &ConstantPool{entries: []entry{{}, {tag: TagInteger, raw32: 42}}}
	if _, err := p.Utf8(1); err == nil {
		t.Error("expected a tag-mismatch error reading an Integer entry as Utf8")
	}
	v, err := p.Integer(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Errorf("Integer(1) = %d, want 42", v)
	}
}

func TestConstantPoolFloat(t *testing.T) {
	p := &ConstantPool{entries: []entry{{}, {tag: TagFloat, raw32: math.Float32bits(1.5)}}}
	v, err := p.Float(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1.5 {
		t.Errorf("Float(1) = %v, want 1.5", v)
	}
}

func TestConstantPoolCount(t *testing.T) {
	p := &ConstantPool{}
	if p.Count() != 0 {
		t.Errorf("Count() of an empty pool = %d, want 0", p.Count())
	}
	p = &ConstantPool{entries: make([]entry, 5)}
	if p.Count() != 4 {
		t.Errorf("Count() = %d, want 4", p.Count())
	}
}

func TestSubstituteFieldRoundTrip(t *testing.T) {
	p := &ConstantPool{entries: make([]entry, 2)}
	p.entries[1] = entry{tag: TagFieldRef, index1: 0, index2: 0}

	if _, _, ok := p.SubstitutionField(1); ok {
		t.Fatal("an unresolved FieldRef must not report as a SubstitutionField")
	}

	p.substituteField(1, 8, 2)
	offset, sc, ok := p.SubstitutionField(1)
	if !ok {
		t.Fatal("expected SubstitutionField to report ok after substitution")
	}
	if offset != 8 || sc != 2 {
		t.Errorf("SubstitutionField = (%d, %d), want (8, 2)", offset, sc)
	}
}

func TestRefPartsRejectsNonRef(t *testing.T) {
	p := &ConstantPool{entries: []entry{{}, {tag: TagUtf8}}}
	if _, _, err := p.RefParts(1); err == nil {
		t.Error("expected an error resolving RefParts on a non-ref entry")
	}
}
