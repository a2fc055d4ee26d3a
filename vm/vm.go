// This file is part of mjvm.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cafebabevm/mjvm/classfile"
	"github.com/cafebabevm/mjvm/internal/errio"
)

// minLocals is the floor on a frame's reserved local slots, independent of
// the Code attribute's own max_locals: istore_0..istore_3/aload_0..aload_3
// address up to local 3 directly, so a frame needs at least four slots to
// be addressable even when the method body declares fewer.
const minLocals = 4

// Instance is one interpreter: a shared operand stack, a shared locals
// stack spanning every currently active call frame, and the class registry
// it dispatches against. There is exactly one of these per running VM;
// nothing about it is safe for concurrent use.
type Instance struct {
	Registry *classfile.Registry

	operand []slot
	locals  []slot

	insCount int64
}

// New returns an Instance dispatching against reg. A nil reg defaults to
// classfile.DefaultRegistry(), matching how Parse registers classes when
// the caller never constructs a Registry of its own.
func New(reg *classfile.Registry) *Instance {
	if reg == nil {
		reg = classfile.DefaultRegistry()
	}
	return &Instance{Registry: reg}
}

// Top returns the value currently on top of the operand stack, for a host
// harness to read a top-level invocation's return value. It panics on an
// empty stack, matching the rest of this package's trust-the-caller stance:
// bytecode verification is out of scope.
func (i *Instance) Top() int32 {
	return i.load(0).asInt()
}

// InstructionCount returns the number of bytecode instructions executed so
// far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// Invoke is the interpreter's external entry point: look up name/descriptor
// on class and run it with self as the receiver (nil for a static entry
// point). Any return value is left on the operand stack.
func (i *Instance) Invoke(class *classfile.Class, name, descriptor string, self *Object) error {
	m, ok := class.LookupMethodByName(name, descriptor)
	if !ok {
		return errors.Wrapf(ErrMethodNotFound, "%s.%s%s", class.Name, name, descriptor)
	}
	return i.invokeMethod(class, self, m)
}

// invokeMethod is the common frame-entry/frame-exit sequence used by both
// Invoke and the invoke* opcodes: reserve a frame, seed local 0 with the
// receiver, run the method's Code, release the frame. Arguments beyond the
// receiver are never moved into locals here — they are left on the shared
// operand stack for the callee's own istore/astore prologue to consume.
func (i *Instance) invokeMethod(class *classfile.Class, self *Object, m *classfile.MethodDescriptor) error {
	if m.Code == nil {
		return errors.Errorf("vm: %s has no Code attribute (abstract/native methods are unsupported)", class.Name)
	}
	n := int(m.Code.MaxLocals)
	if n < minLocals {
		n = minLocals
	}
	i.localsAlloc(n)
	i.storeLocal(0, refSlot(self))

	err := i.run(class, m.Code.Code)

	i.localsFree(n)
	return err
}

// dispatchMethod resolves a Method-ref-shaped pool index to a class and
// method, and invokes it with self as the receiver. It backs
// invokestatic/invokevirtual/invokespecial; the three opcodes differ only
// in how they obtain self, not in dispatch itself — there is no vtable
// lookup.
func (i *Instance) dispatchMethod(caller *classfile.Class, self *Object, methodRefIdx uint16) error {
	classNameSlice, methodNameSlice, descSlice, err := caller.Pool.ResolveRef(methodRefIdx)
	if err != nil {
		return errors.Wrapf(err, "resolving method ref %d", methodRefIdx)
	}
	className := classNameSlice.String()
	target, ok := i.Registry.Lookup(className)
	if !ok {
		return errors.Wrapf(ErrClassNotFound, "%s", className)
	}
	m, ok := target.LookupMethod(methodNameSlice, descSlice)
	if !ok {
		return errors.Wrapf(ErrMethodNotFound, "%s.%s%s", className, methodNameSlice.String(), descSlice.String())
	}
	return i.invokeMethod(target, self, m)
}

// newInstance resolves a Class constant to a registered Class and
// allocates a zeroed Object of it.
func (i *Instance) newInstance(caller *classfile.Class, classIdx uint16) (*Object, error) {
	nameSlice, err := caller.Pool.ClassName(classIdx)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving class ref %d", classIdx)
	}
	name := nameSlice.String()
	target, ok := i.Registry.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrClassNotFound, "%s", name)
	}
	return NewObject(target), nil
}

func dumpSlots(w io.Writer, a []slot) {
	for k := len(a) - 1; k >= 0; k-- {
		s := a[k]
		if s.ref != nil {
			io.WriteString(w, "ref ")
			io.WriteString(w, s.ref.Class.Name)
		} else {
			io.WriteString(w, strconv.Itoa(int(s.asInt())))
		}
		io.WriteString(w, "\n")
	}
}

// Dump writes a human-readable snapshot of the operand stack and locals
// stack to w, top of each stack first. It has no effect on interpreter
// state or semantics; it exists purely as a debugging aid for a host
// harness, and reuses a single errio.Writer for both sections so the
// caller checks one error instead of one per write.
func (i *Instance) Dump(w io.Writer) error {
	ew := errio.New(w)
	io.WriteString(ew, "operand:\n")
	dumpSlots(ew, i.operand)
	io.WriteString(ew, "locals:\n")
	dumpSlots(ew, i.locals)
	return ew.Err
}
