package classfile_test

import (
	"fmt"
	"testing"

	"pgregory.net/rand"

	"github.com/cafebabevm/mjvm/classfile"
	"github.com/cafebabevm/mjvm/internal/cftest"
)

// TestProperty_PoolOffsetsAreDeterministic checks that parsing is a pure
// function of the input bytes, so the pool's Offsets table is identical
// across repeated parses of the same buffer, for any buffer shape.
func TestProperty_PoolOffsetsAreDeterministic(t *testing.T) {
	const trials = 200
	rnd := rand.New(0)

	for trial := 0; trial < trials; trial++ {
		b := cftest.New(fmt.Sprintf("Det%d", trial))
		n := rnd.Intn(8)
		for i := 0; i < n; i++ {
			b.Utf8(fmt.Sprintf("field%d", i))
		}
		raw := b.Bytes()

		c1, err := classfile.Parse(fmt.Sprintf("Det%d_a", trial), raw)
		if err != nil {
			t.Fatalf("trial %d: first parse failed: %+v", trial, err)
		}
		c2, err := classfile.Parse(fmt.Sprintf("Det%d_b", trial), append([]byte(nil), raw...))
		if err != nil {
			t.Fatalf("trial %d: second parse failed: %+v", trial, err)
		}

		if len(c1.Pool.Offsets) != len(c2.Pool.Offsets) {
			t.Fatalf("trial %d: offsets length differs: %d vs %d", trial, len(c1.Pool.Offsets), len(c2.Pool.Offsets))
		}
		for i := range c1.Pool.Offsets {
			if c1.Pool.Offsets[i] != c2.Pool.Offsets[i] {
				t.Fatalf("trial %d: offset %d differs: %d vs %d", trial, i, c1.Pool.Offsets[i], c2.Pool.Offsets[i])
			}
		}
	}
}

// TestProperty_RegistryIdentityIsStable checks that repeated lookups of an
// already-registered class name return the same *Class identity, never a
// copy.
func TestProperty_RegistryIdentityIsStable(t *testing.T) {
	const trials = 50
	rnd := rand.New(1)

	for trial := 0; trial < trials; trial++ {
		name := fmt.Sprintf("Stable%d", trial)
		b := cftest.New(name)
		for i := 0; i < rnd.Intn(4); i++ {
			b.Field(fmt.Sprintf("f%d", i), "I")
		}
		c, err := classfile.Parse(name, b.Bytes())
		if err != nil {
			t.Fatalf("trial %d: Parse failed: %+v", trial, err)
		}

		for lookup := 0; lookup < 3; lookup++ {
			got, ok := classfile.DefaultRegistry().Lookup(name)
			if !ok {
				t.Fatalf("trial %d: lookup %d missed", trial, lookup)
			}
			if got != c {
				t.Fatalf("trial %d: lookup %d returned a different identity", trial, lookup)
			}
		}
	}
}
