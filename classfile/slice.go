package classfile

// Slice is a non-owning view over a contiguous byte range of some backing
// buffer. It is the type used for UTF-8 constant-pool entries and method
// name/descriptor comparisons: method lookup compares Slices by content,
// never by identity, since two Utf8 entries with the same bytes may live at
// different pool offsets in different classes.
type Slice struct {
	buf        []byte
	start, end int
}

// SliceOf returns a Slice over buf[start:end]. It panics if the range is out
// of bounds, mirroring the precondition that callers have already validated
// the range while walking the pool.
func SliceOf(buf []byte, start, end int) Slice {
	_ = buf[start:end]
	return Slice{buf: buf, start: start, end: end}
}

// Bytes returns the slice's bytes. The returned slice aliases the backing
// buffer and must not be mutated.
func (s Slice) Bytes() []byte {
	return s.buf[s.start:s.end]
}

// String decodes the slice as a UTF-8 string. Class files only ever put
// ASCII or modified-UTF-8 text in these positions; this implementation does
// not special-case the modified encoding's two byte-pairs for NUL and
// supplementary characters, which real-world class names and descriptors
// never use.
func (s Slice) String() string {
	return string(s.Bytes())
}

// Len returns the number of bytes in the slice.
func (s Slice) Len() int {
	return s.end - s.start
}

// Equal reports whether two Slices have identical content, regardless of
// which buffer or offset they were taken from.
func (s Slice) Equal(o Slice) bool {
	if s.Len() != o.Len() {
		return false
	}
	a, b := s.Bytes(), o.Bytes()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EqualString reports whether the slice's content equals str.
func (s Slice) EqualString(str string) bool {
	if s.Len() != len(str) {
		return false
	}
	b := s.Bytes()
	for i := 0; i < len(str); i++ {
		if b[i] != str[i] {
			return false
		}
	}
	return true
}
