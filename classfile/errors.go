package classfile

import "github.com/pkg/errors"

// Parse error taxonomy. A failed Parse always returns one of these,
// wrapped with positional context, and registers no Class.
var (
	// ErrBadMagic is returned when the first 4 bytes are not 0xCAFEBABE.
	ErrBadMagic = errors.New("classfile: bad magic")
	// ErrTruncated is returned when a read would run past the end of the
	// supplied buffer.
	ErrTruncated = errors.New("classfile: truncated")
	// ErrUnknownTag is returned when a constant pool entry carries a tag
	// byte this implementation does not recognize.
	ErrUnknownTag = errors.New("classfile: unknown constant tag")
	// ErrUnsupported is returned for constructs explicitly out of scope:
	// non-empty interfaces lists, or malformed attribute payloads. An
	// attribute whose length runs past the end of the buffer is ErrTruncated.
	ErrUnsupported = errors.New("classfile: unsupported classfile construct")
)

func errTruncated(what string, off, length int) error {
	return errors.Wrapf(ErrTruncated, "reading %s at offset %d (buffer length %d)", what, off, length)
}
