package classfile_test

import (
	"testing"

	"github.com/cafebabevm/mjvm/classfile"
	"github.com/cafebabevm/mjvm/internal/cftest"
)

func TestParseBadMagic(t *testing.T) {
	_, err := classfile.Parse("Bogus", []byte{0xde, 0xad, 0xbe, 0xef})
	if !errorsIs(err, classfile.ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestParseTruncated(t *testing.T) {
	_, err := classfile.Parse("Truncated", []byte{0xca, 0xfe, 0xba})
	if !errorsIs(err, classfile.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestParseMinimalClass(t *testing.T) {
	b := cftest.New("Minimal")
	b.SourceFile("Minimal.java")
	b.Method("main", "()V", 0, 1, cftest.Code(cftest.OpVreturn))

	c, err := classfile.Parse("Minimal", b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %+v", err)
	}
	if c.Name != "Minimal" {
		t.Errorf("Name = %q, want %q", c.Name, "Minimal")
	}
	if c.SourceFile != "Minimal.java" {
		t.Errorf("SourceFile = %q, want %q", c.SourceFile, "Minimal.java")
	}
	m, ok := c.LookupMethodByName("main", "()V")
	if !ok {
		t.Fatal("expected to find method main()V")
	}
	if m.Code == nil {
		t.Fatal("expected a decoded Code attribute")
	}
	if len(m.Code.Code) != 1 || m.Code.Code[0] != cftest.OpVreturn {
		t.Errorf("Code.Code = %v, want [vreturn]", m.Code.Code)
	}
}

func TestParseFieldLayoutAndSubstitution(t *testing.T) {
	b := cftest.New("Point")
	b.Field("x", "I")
	b.Field("y", "I")
	fr := b.FieldRef("Point", "y", "I")
	b.Method("get", "()I", 2, 1, cftest.Code(
		cftest.OpAload0, cftest.OpGetfield, cftest.U16(fr), cftest.OpIreturn,
	))

	c, err := classfile.Parse("Point", b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %+v", err)
	}

	// x at offset 0, y at offset 4; instance size should span both.
	if c.Layout.Offset != 4 {
		t.Errorf("Layout.Offset = %d, want 4 (second field, since fields are assigned increasing offsets)", c.Layout.Offset)
	}
	if c.Layout.InstanceSize() != 8 {
		t.Errorf("InstanceSize() = %d, want 8", c.Layout.InstanceSize())
	}

	offset, _, ok := c.Pool.SubstitutionField(fr)
	if !ok {
		t.Fatal("expected the FieldRef for Point.y to be rewritten into a SubstitutionField")
	}
	if offset != 4 {
		t.Errorf("substituted offset = %d, want 4", offset)
	}
}

func TestParseRegistersResult(t *testing.T) {
	b := cftest.New("RegistersResultProbe")
	c, err := classfile.Parse("RegistersResultProbe", b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %+v", err)
	}
	got, ok := classfile.DefaultRegistry().Lookup("RegistersResultProbe")
	if !ok {
		t.Fatal("expected Parse to register its result in DefaultRegistry")
	}
	if got != c {
		t.Error("DefaultRegistry holds a different *Class than Parse returned")
	}
}

func TestParseUnknownTag(t *testing.T) {
	b := cftest.New("BadTag")
	raw := b.Bytes()
	// Overwrite the first constant pool entry's tag byte (right after the
	// 2-byte constant_count, itself right after the 8-byte magic+versions
	// header) with a value no TagXxx constant uses.
	raw[10] = 0xfe
	if _, err := classfile.Parse("BadTag", raw); !errorsIs(err, classfile.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

// errorsIs avoids importing errors/github.com/pkg/errors just for Is in this
// file; github.com/pkg/errors.Cause-wrapped errors satisfy errors.Is against
// their sentinel since pkg/errors implements Unwrap.
func errorsIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
