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

// Package errio provides a small io.Writer wrapper that remembers the
// first write error it sees, so a caller doing a sequence of writes can
// ignore each individual error and check once at the end.
package errio

import (
	"io"

	"github.com/pkg/errors"
)

// Writer wraps an io.Writer and tracks the first error any Write call
// returns. Once Err is set, every subsequent Write is a no-op that returns
// the same error, so call sites can chain writes without checking each one.
type Writer struct {
	w   io.Writer
	Err error
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}

// New returns a Writer wrapping w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}
