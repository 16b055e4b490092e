package venice

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultReadChunkSize is the default growth step for [Runtime.ReadAll].
const DefaultReadChunkSize = 4096

// Println writes the string's contents and a newline to the output stream.
func (rt *Runtime) Println(s *StringBuffer) {
	fmt.Fprintf(rt.out, "%s\n", s.Bytes())
}

// Print writes the string's contents to the output stream.
func (rt *Runtime) Print(s *StringBuffer) {
	fmt.Fprintf(rt.out, "%s", s.Bytes())
}

// PrintInt writes the integer and a newline to the output stream.
func (rt *Runtime) PrintInt(x int64) {
	fmt.Fprintf(rt.out, "%d\n", x)
}

// Input writes the prompt to the output stream, reads one line from the
// input stream, and returns it as a fresh StringBuffer with the trailing
// newline stripped. A read failure before any byte arrives is fatal.
func (rt *Runtime) Input(prompt *StringBuffer) *StringBuffer {
	rt.Print(prompt)
	line, err := rt.in.ReadString('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		raise(IOFailure, "failed to read input")
	}
	line = strings.TrimSuffix(line, "\n")
	return rt.NewString(line)
}

// OpenFile opens the named file for reading. Failure is fatal.
func (rt *Runtime) OpenFile(path *StringBuffer) *os.File {
	f, err := os.Open(path.String())
	if err != nil {
		raise(IOFailure, "failed to open file")
	}
	return f
}

// ReadAll reads r to the end and returns the contents as a StringBuffer.
//
// The buffer grows by whole chunks through the guard's reallocation path,
// the same growth discipline lists use; the chunk size is configurable via
// [Runtime.SetReadChunkSize] so tests can force the growth path with tiny
// chunks. A read error (other than end of input) is fatal.
func (rt *Runtime) ReadAll(r io.Reader) *StringBuffer {
	chunk := uint64(rt.readChunk())
	var length uint64
	buf := rt.guard.bytes(chunk + 1)
	for {
		n, err := io.ReadFull(r, buf[length:length+chunk])
		length += uint64(n)
		if err == nil {
			// Filled the whole chunk; make room for the next one.
			buf = rt.guard.growBytes(buf, length+chunk+1)
			continue
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		raise(IOFailure, "failed to read from file")
	}
	buf[length] = 0
	return rt.TakeString(buf[:length+1])
}

// CloseFile closes a file opened with [Runtime.OpenFile].
func (rt *Runtime) CloseFile(f *os.File) {
	f.Close()
}
