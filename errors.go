package venice

import "fmt"

// ErrorKind classifies the fatal conditions the runtime can raise.
type ErrorKind int

const (
	// AllocationExhausted is raised when the allocation guard cannot
	// satisfy a request: the underlying allocator failed, the configured
	// memory limit would be exceeded, or a size computation overflowed.
	AllocationExhausted ErrorKind = iota

	// BoundsViolation is raised by list indexing on out-of-range access.
	BoundsViolation

	// IOFailure is raised by the I/O primitives when an underlying read
	// or open fails. Compiled programs have no recoverable error channel,
	// so I/O failures share the fatal path.
	IOFailure
)

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case AllocationExhausted:
		return "allocation exhausted"
	case BoundsViolation:
		return "bounds violation"
	case IOFailure:
		return "I/O failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// RuntimeError is a fatal runtime condition.
//
// The runtime has no recoverable-error channel: operations that fail report
// the failure by panicking with a *RuntimeError. [Run] recovers the panic at
// the program boundary, writes the diagnostic to the error stream, and turns
// it into a non-zero exit code. Code that calls runtime operations outside
// of [Run] may recover the typed value itself:
//
//	defer func() {
//		if rerr, ok := recover().(*venice.RuntimeError); ok {
//			// rerr.Kind, rerr.Message
//		}
//	}()
type RuntimeError struct {
	Kind    ErrorKind
	Message string
}

// Error formats the diagnostic exactly as it appears on the error stream.
func (e *RuntimeError) Error() string {
	return "runtime error: " + e.Message
}

// raise reports a fatal runtime condition. It does not return.
func raise(kind ErrorKind, message string) {
	panic(&RuntimeError{Kind: kind, Message: message})
}
