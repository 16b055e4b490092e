package wasmffi_test

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/venice-lang/venice"
	"github.com/venice-lang/venice/wasmffi"
)

// fakeMemory is a flat in-process stand-in for a module's linear memory.
type fakeMemory struct {
	data []byte
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(m.data)) {
		return nil, false
	}
	return m.data[offset : offset+byteCount], true
}

func (m *fakeMemory) Write(offset uint32, data []byte) bool {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.data)) {
		return false
	}
	copy(m.data[offset:], data)
	return true
}

// bumpAlloc hands out consecutive offsets, starting past address zero so
// that 0 stays distinguishable as "no allocation".
func bumpAlloc(m *fakeMemory) wasmffi.AllocFunc {
	next := uint32(16)
	return func(size uint32) (uint32, error) {
		offset := next
		next += size
		return offset, nil
	}
}

func roundTrip(t *testing.T, rt *venice.Runtime, v venice.Value) venice.Value {
	t.Helper()
	mem := newFakeMemory(1 << 20)
	offset, err := wasmffi.EncodeValue(mem, bumpAlloc(mem), v)
	if err != nil {
		t.Fatalf("EncodeValue failed: %v", err)
	}
	decoded, err := wasmffi.DecodeValue(rt, mem, offset)
	if err != nil {
		t.Fatalf("DecodeValue failed: %v", err)
	}
	return decoded
}

func TestRoundTripInteger(t *testing.T) {
	rt := venice.New()

	for _, n := range []int64{0, 42, -7, 1 << 40, -(1 << 40)} {
		v := rt.IntValue(n)
		decoded := roundTrip(t, rt, v)
		if !decoded.Equal(v) {
			t.Errorf("expected %d, got %s", n, decoded.String())
		}
	}
}

func TestRoundTripString(t *testing.T) {
	rt := venice.New()

	v := rt.StringValue("hello venice")
	decoded := roundTrip(t, rt, v)

	if !decoded.IsString() {
		t.Fatalf("expected a string, got %v", decoded.Tag())
	}
	if decoded.Str().String() != "hello venice" {
		t.Errorf("expected 'hello venice', got %q", decoded.Str().String())
	}

	v.Destroy()
	decoded.Destroy()
	if live := rt.Stats().Live; live != 0 {
		t.Errorf("expected 0 live bytes, got %d", live)
	}
}

func TestRoundTripNestedList(t *testing.T) {
	rt := venice.New()

	v := rt.ListValue(
		rt.IntValue(1),
		rt.StringValue("two"),
		rt.ListValue(rt.IntValue(3), rt.StringValue("four")),
	)
	decoded := roundTrip(t, rt, v)

	if !decoded.Equal(v) {
		t.Errorf("expected %s, got %s", v.String(), decoded.String())
	}

	v.Destroy()
	decoded.Destroy()
	if live := rt.Stats().Live; live != 0 {
		t.Errorf("expected 0 live bytes, got %d", live)
	}
}

func TestDecodeInvalidTag(t *testing.T) {
	rt := venice.New()
	mem := newFakeMemory(64)

	var cell [16]byte
	binary.LittleEndian.PutUint32(cell[0:], 9)
	mem.Write(16, cell[:])

	_, err := wasmffi.DecodeValue(rt, mem, 16)
	if err == nil {
		t.Fatal("expected an error for an invalid tag")
	}
	if !strings.Contains(err.Error(), "invalid tag 9") {
		t.Errorf("expected an invalid-tag error, got %q", err.Error())
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	rt := venice.New()
	mem := newFakeMemory(8)

	_, err := wasmffi.DecodeValue(rt, mem, 4)
	if err == nil {
		t.Fatal("expected an error for a truncated cell")
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("expected an out-of-range error, got %q", err.Error())
	}
}

func TestDecodeCorruptStringLength(t *testing.T) {
	rt := venice.New()
	mem := newFakeMemory(64)

	// A string cell whose header claims an absurd length.
	var header [12]byte
	binary.LittleEndian.PutUint64(header[0:], 1<<40)
	binary.LittleEndian.PutUint32(header[8:], 48)
	mem.Write(32, header[:])

	var cell [16]byte
	binary.LittleEndian.PutUint32(cell[0:], uint32(venice.TagString))
	binary.LittleEndian.PutUint64(cell[8:], 32)
	mem.Write(16, cell[:])

	_, err := wasmffi.DecodeValue(rt, mem, 16)
	if err == nil {
		t.Fatal("expected an error for a hostile length")
	}
	if !strings.Contains(err.Error(), "exceeds limit") {
		t.Errorf("expected a limit error, got %q", err.Error())
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	rt := venice.New()

	// Deeper than the decoder is willing to follow.
	v := rt.IntValue(0)
	for i := 0; i < 1100; i++ {
		v = rt.ListValue(v)
	}

	mem := newFakeMemory(1 << 20)
	offset, err := wasmffi.EncodeValue(mem, bumpAlloc(mem), v)
	if err != nil {
		t.Fatalf("EncodeValue failed: %v", err)
	}

	_, err = wasmffi.DecodeValue(rt, mem, offset)
	if err == nil {
		t.Fatal("expected an error for excessive nesting")
	}
	if !strings.Contains(err.Error(), "nesting") {
		t.Errorf("expected a nesting error, got %q", err.Error())
	}
	v.Destroy()
}

func TestEncodeRejectsOversizedString(t *testing.T) {
	rt := venice.New()
	mem := newFakeMemory(64)

	v := rt.StringValue(strings.Repeat("x", 1<<20+1))
	defer v.Destroy()

	_, err := wasmffi.EncodeValue(mem, bumpAlloc(mem), v)
	if err == nil {
		t.Fatal("expected an error for an oversized string")
	}
	if !strings.Contains(err.Error(), "exceeds limit") {
		t.Errorf("expected a limit error, got %q", err.Error())
	}
}

func TestEncodeReportsGuestExhaustion(t *testing.T) {
	rt := venice.New()
	mem := newFakeMemory(64)

	errExhausted := errors.New("guest memory exhausted")
	failAlloc := func(size uint32) (uint32, error) {
		return 0, errExhausted
	}

	v := rt.StringValue("anything")
	defer v.Destroy()

	_, err := wasmffi.EncodeValue(mem, failAlloc, v)
	if err != errExhausted {
		t.Errorf("expected the allocator error to surface, got %v", err)
	}
}
