package venice

import (
	"bufio"
	"io"
	"os"
)

// Runtime is a Venice runtime instance: the allocation guard, the standard
// streams, and the foreign function registry that compiled programs and
// embedders call into.
//
// Create one with [New]. A Runtime is not safe for concurrent use from
// multiple goroutines; Venice programs execute single-threaded.
//
//	rt := venice.New()
//	s := rt.NewString("Hello")
//	t := rt.NewString(", world!")
//	fmt.Println(s.Concat(t).String()) // "Hello, world!"
type Runtime struct {
	guard   *guard
	foreign map[string]ForeignFunc

	in            *bufio.Reader
	out           io.Writer
	errOut        io.Writer
	readChunkSize int
}

// New creates a runtime with the heap allocator, no memory limit, and the
// process standard streams.
func New() *Runtime {
	return &Runtime{
		guard:   newGuard(),
		foreign: make(map[string]ForeignFunc),
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetInput redirects the stream [Runtime.Input] reads from.
func (rt *Runtime) SetInput(r io.Reader) {
	rt.in = bufio.NewReader(r)
}

// SetOutput redirects the stream the print primitives write to.
func (rt *Runtime) SetOutput(w io.Writer) {
	rt.out = w
}

// SetErrorOutput redirects the stream fatal diagnostics are written to.
func (rt *Runtime) SetErrorOutput(w io.Writer) {
	rt.errOut = w
}

// SetReadChunkSize sets the chunk size [Runtime.ReadAll] grows its buffer
// by. If n is 0 or negative, the default (4096) is used. Small sizes exist
// for testing the growth path; they are not useful otherwise.
func (rt *Runtime) SetReadChunkSize(n int) {
	if n <= 0 {
		rt.readChunkSize = DefaultReadChunkSize
	} else {
		rt.readChunkSize = n
	}
}

// readChunk returns the effective read chunk size.
func (rt *Runtime) readChunk() int {
	if rt.readChunkSize <= 0 {
		return DefaultReadChunkSize
	}
	return rt.readChunkSize
}
