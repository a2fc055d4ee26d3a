package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cafebabevm/mjvm/internal/cftest"
	"github.com/cafebabevm/mjvm/vm"
)

func TestDisassembleSingleInstruction(t *testing.T) {
	code := cftest.Code(cftest.OpBipush, 42)
	buf := &bytes.Buffer{}
	next, err := vm.Disassemble(code, 0, buf)
	if err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}
	if next != 2 {
		t.Errorf("next = %d, want 2", next)
	}
	if got := buf.String(); got != "bipush 42" {
		t.Errorf("output = %q, want %q", got, "bipush 42")
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	buf := &bytes.Buffer{}
	next, err := vm.Disassemble([]byte{0xff}, 0, buf)
	if err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}
	if next != 1 {
		t.Errorf("next = %d, want 1", next)
	}
	if !strings.Contains(buf.String(), "unknown") {
		t.Errorf("output = %q, want it to mention an unknown opcode", buf.String())
	}
}

func TestDisassembleAll(t *testing.T) {
	code := cftest.Code(cftest.OpIconst1, cftest.OpIconst2, cftest.OpIadd, cftest.OpIreturn)
	buf := &bytes.Buffer{}
	if err := vm.DisassembleAll(code, buf); err != nil {
		t.Fatalf("DisassembleAll failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"iconst_1", "iconst_2", "iadd", "ireturn"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "\n") != 4 {
		t.Errorf("expected 4 lines of output, got:\n%s", out)
	}
}

func TestDisassembleWideOperand(t *testing.T) {
	code := cftest.Code(cftest.OpGotoW, cftest.S32(-1))
	buf := &bytes.Buffer{}
	if _, err := vm.Disassemble(code, 0, buf); err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}
	if got := buf.String(); got != "goto_w -1" {
		t.Errorf("output = %q, want %q", got, "goto_w -1")
	}
}
