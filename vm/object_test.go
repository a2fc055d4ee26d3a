package vm

import (
	"testing"

	"github.com/cafebabevm/mjvm/classfile"
)

func TestNewObjectFieldAreaSize(t *testing.T) {
	c := &classfile.Class{
		Name:   "Point",
		Layout: classfile.LayoutSummary{Offset: 4, SizeClass: 2}, // two 4-byte fields
	}
	o := NewObject(c)
	if len(o.fields) != 2 {
		t.Errorf("len(fields) = %d, want 2", len(o.fields))
	}
	if o.Class != c {
		t.Error("NewObject did not retain the class pointer")
	}
}

func TestNewObjectNoFields(t *testing.T) {
	c := &classfile.Class{
		Name:   "Empty",
		Layout: classfile.LayoutSummary{Offset: -1},
	}
	o := NewObject(c)
	if len(o.fields) != 0 {
		t.Errorf("len(fields) = %d, want 0 for a class with no instance fields", len(o.fields))
	}
}

func TestGetPutField(t *testing.T) {
	c := &classfile.Class{Layout: classfile.LayoutSummary{Offset: 4, SizeClass: 2}}
	o := NewObject(c)

	o.putField(0, intSlot(7))
	o.putField(4, intSlot(9))

	if got := o.getField(0).asInt(); got != 7 {
		t.Errorf("getField(0) = %d, want 7", got)
	}
	if got := o.getField(4).asInt(); got != 9 {
		t.Errorf("getField(4) = %d, want 9", got)
	}
}
