package vm

import "github.com/pkg/errors"

// Interpreter-time error taxonomy. All three are fatal: Invoke returns them
// to its caller, which is expected to report and halt.
// There is no exception mechanism or stack unwind in this subset.
var (
	// ErrClassNotFound is returned when a Class constant names a class
	// absent from the registry, during dispatch or new.
	ErrClassNotFound = errors.New("vm: class not found")
	// ErrMethodNotFound is returned when method lookup misses.
	ErrMethodNotFound = errors.New("vm: method not found")
	// ErrUnknownOpcode is returned when the interpreter encounters a byte
	// it does not implement.
	ErrUnknownOpcode = errors.New("vm: unknown opcode")
)
