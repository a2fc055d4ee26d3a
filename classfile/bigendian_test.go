package classfile

import "testing"

func TestU16U32(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	if got := u16(b, 0); got != 0x0102 {
		t.Errorf("u16(0) = %#04x, want 0x0102", got)
	}
	if got := u16(b, 2); got != 0x0304 {
		t.Errorf("u16(2) = %#04x, want 0x0304", got)
	}
	if got := u32(b, 0); got != 0x01020304 {
		t.Errorf("u32(0) = %#08x, want 0x01020304", got)
	}
}

func TestS16Negative(t *testing.T) {
	// -3 in two's complement 16-bit is 0xfffd.
	b := []byte{0xff, 0xfd}
	if got := s16(b, 0); got != -3 {
		t.Errorf("s16 = %d, want -3", got)
	}
}

func TestS32Negative(t *testing.T) {
	b := []byte{0xff, 0xff, 0xff, 0xf0}
	if got := s32(b, 0); got != -16 {
		t.Errorf("s32 = %d, want -16", got)
	}
}

func TestCheckedU16Truncated(t *testing.T) {
	b := []byte{0x01}
	if _, err := checkedU16(b, 0); err == nil {
		t.Fatal("expected truncation error, got nil")
	}
	if _, err := checkedU16(b, 2); err == nil {
		t.Fatal("expected truncation error for out-of-range offset, got nil")
	}
}

func TestCheckedU32Truncated(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03}
	if _, err := checkedU32(b, 0); err == nil {
		t.Fatal("expected truncation error, got nil")
	}
}

func TestCheckedU16OK(t *testing.T) {
	b := []byte{0x12, 0x34}
	v, err := checkedU16(b, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("v = %#04x, want 0x1234", v)
	}
}
