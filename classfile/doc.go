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

// Package classfile parses the CAFEBABE class-file binary format into an
// in-memory Class: a constant pool addressable by one-based index, a method
// table, and a field-layout summary.
//
// Parsing is the only way to produce a Class. A successful Parse also
// registers the Class in the package-level Registry so that the vm package
// can resolve class names seen in MethodRef/Class constants during
// invocation and allocation.
//
// This package does not read files. Callers supply the raw bytes; see the
// BytesProvider interface in internal/hostio for the conventional way to
// source them.
package classfile
