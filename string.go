package venice

// StringBuffer is an owned, length-tagged byte buffer.
//
// The buffer is always null-terminated: data holds length+1 bytes and
// data[length] is 0, so the contents interoperate with terminator-scanning
// consumers. The tracked length excludes the terminator.
//
// A StringBuffer exclusively owns its bytes. It is created either by
// copying ([Runtime.NewString]) or by adopting an already-owned buffer
// ([Runtime.TakeString]); the two are distinct operations with distinct
// ownership contracts, never a flag. Destroy releases the buffer; using a
// StringBuffer after Destroy is a precondition violation and fails loudly.
type StringBuffer struct {
	data   []byte // length+1 bytes, data[length] == 0
	length uint64
	rt     *Runtime
}

// NewString constructs a StringBuffer by copying s.
//
// The guard allocates length+1 bytes so the terminator always has room;
// the source is left untouched and the new buffer is independent of it.
//
//	s := rt.NewString("Hello")
//	s.Length() // 5
//	s.String() // "Hello"
func (rt *Runtime) NewString(s string) *StringBuffer {
	length := uint64(len(s))
	data := rt.guard.bytes(length + 1)
	copy(data, s)
	data[length] = 0
	return &StringBuffer{data: data, length: length, rt: rt}
}

// TakeString constructs a StringBuffer by adopting data without copying.
//
// data must be a guard-owned buffer (from [Runtime.AllocBytes] or
// [Runtime.GrowBytes]) whose final byte is the 0 terminator; the buffer's
// length is len(data)-1. Ownership transfers to the StringBuffer: the
// caller must not touch data afterward.
func (rt *Runtime) TakeString(data []byte) *StringBuffer {
	if len(data) == 0 || data[len(data)-1] != 0 {
		panic("Runtime.TakeString: buffer is not null-terminated")
	}
	return &StringBuffer{data: data, length: uint64(len(data)) - 1, rt: rt}
}

// Length returns the number of bytes in the buffer, excluding the
// terminator.
func (s *StringBuffer) Length() uint64 {
	return s.length
}

// String returns a copy of the buffer's contents.
func (s *StringBuffer) String() string {
	return string(s.data[:s.length])
}

// Bytes returns the buffer's contents without the terminator. The slice
// aliases the buffer: it is valid until Destroy and must not be modified.
func (s *StringBuffer) Bytes() []byte {
	return s.data[:s.length]
}

// Concat builds a new StringBuffer holding s's bytes followed by right's.
//
// The result is allocated fresh (s.length + right.length + 1 bytes); both
// inputs are unmodified and remain independently owned and destroyable.
//
//	a := rt.NewString("Hello")
//	b := rt.NewString(", world!")
//	c := a.Concat(b)
//	c.String() // "Hello, world!"
//	c.Length() // 13
func (s *StringBuffer) Concat(right *StringBuffer) *StringBuffer {
	if s.data == nil || right.data == nil {
		panic("StringBuffer.Concat: use after destroy")
	}
	length := s.length + right.length
	data := s.rt.guard.bytes(length + 1)
	copy(data, s.data[:s.length])
	copy(data[s.length:], right.data[:right.length+1])
	return &StringBuffer{data: data, length: length, rt: s.rt}
}

// Destroy releases the buffer. The StringBuffer must not be used again;
// destroying twice panics.
func (s *StringBuffer) Destroy() {
	if s.data == nil {
		panic("StringBuffer.Destroy: already destroyed")
	}
	s.rt.guard.release(uint64(cap(s.data)))
	s.data = nil
	s.length = 0
}
