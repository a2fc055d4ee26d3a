package classfile

import "testing"

func TestSliceOfBytesAndString(t *testing.T) {
	buf := []byte("hello, world")
	s := SliceOf(buf, 0, 5)
	if s.String() != "hello" {
		t.Errorf("String() = %q, want %q", s.String(), "hello")
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
	if string(s.Bytes()) != "hello" {
		t.Errorf("Bytes() = %q, want %q", s.Bytes(), "hello")
	}
}

func TestSliceOfPanicsOutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected SliceOf to panic on an out-of-bounds range")
		}
	}()
	SliceOf([]byte("short"), 0, 100)
}

func TestSliceEqual(t *testing.T) {
	a := SliceOf([]byte("foo.bar"), 0, 3)
	b := SliceOf([]byte("xxxfooyyy"), 3, 6)
	if !a.Equal(b) {
		t.Errorf("expected %q and %q to be equal despite different backing buffers", a.String(), b.String())
	}

	c := SliceOf([]byte("baz"), 0, 3)
	if a.Equal(c) {
		t.Errorf("expected %q and %q to differ", a.String(), c.String())
	}

	d := SliceOf([]byte("fo"), 0, 2)
	if a.Equal(d) {
		t.Error("slices of different lengths must not be equal")
	}
}

func TestSliceEqualString(t *testing.T) {
	s := SliceOf([]byte("<init>"), 0, 6)
	if !s.EqualString("<init>") {
		t.Error("EqualString should match identical content")
	}
	if s.EqualString("<init") {
		t.Error("EqualString should not match a differing length")
	}
	if s.EqualString("<inti>") {
		t.Error("EqualString should not match differing content of the same length")
	}
}
