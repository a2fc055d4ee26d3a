package vm

import "testing"

func TestPushPopLoad(t *testing.T) {
	i := &Instance{}
	i.push(intSlot(1))
	i.push(intSlot(2))
	i.push(intSlot(3))

	if got := i.load(0).asInt(); got != 3 {
		t.Errorf("load(0) = %d, want 3", got)
	}
	if got := i.load(2).asInt(); got != 1 {
		t.Errorf("load(2) = %d, want 1", got)
	}
	if got := i.depth(); got != 3 {
		t.Errorf("depth() = %d, want 3", got)
	}

	if got := i.pop().asInt(); got != 3 {
		t.Errorf("pop() = %d, want 3", got)
	}
	if got := i.depth(); got != 2 {
		t.Errorf("depth() after pop = %d, want 2", got)
	}
}

func TestSlotZeroValueIsNullAndZero(t *testing.T) {
	var s slot
	if !s.isNull() {
		t.Error("the zero slot should read as null")
	}
	if s.asInt() != 0 {
		t.Errorf("asInt() of the zero slot = %d, want 0", s.asInt())
	}
}

func TestRefSlotRoundTrip(t *testing.T) {
	obj := &Object{}
	s := refSlot(obj)
	if s.isNull() {
		t.Error("a slot wrapping a non-nil ref must not read as null")
	}
	if s.asRef() != obj {
		t.Error("asRef() did not return the original object")
	}
}

func TestFloatBitsSlotRoundTrip(t *testing.T) {
	s := floatBitsSlot(0x3f800000) // 1.0f
	if asFloat32(s) != 1.0 {
		t.Errorf("asFloat32() = %v, want 1.0", asFloat32(s))
	}
}
