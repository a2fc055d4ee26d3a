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

// Package vm implements the interpreter: the operand stack, the locals
// stack, opcode dispatch, method lookup/dispatch, and instance allocation
// on top of classes produced by the classfile package.
//
// An Instance owns one operand stack and one locals stack shared across
// nested method invocations, both flat slices indexed from their own top.
// For performance reasons the program counter is not incremented in a
// single place; each opcode's case in run advances pc by its own
// instruction length. This should be of no concern to callers.
//
// The operand and locals stacks grow without bound; stack overflow is not
// detected.
package vm
