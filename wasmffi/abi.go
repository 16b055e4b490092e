// Package wasmffi hosts Venice foreign functions in WebAssembly modules.
//
// A foreign module is a wasm binary that exports one function per foreign
// function, each with the signature (args u32) -> u32: the parameter and
// the result are offsets of value cells in the module's linear memory,
// preserving the one-value-in, one-value-out convention. The module must
// also export
//
//	venice_alloc(size u32) -> u32
//
// which the host calls to place argument values in guest memory; returning
// 0 reports exhaustion. The host encodes the argument value before the
// call and decodes the result value after it, so guest memory holds only
// copies: the caller keeps ownership of the argument on the host side and
// receives ownership of the decoded result.
package wasmffi

import (
	"encoding/binary"
	"fmt"

	"github.com/venice-lang/venice"
)

// Value cell layout in guest memory (little-endian, wasm32 offsets):
//
//	cell:   u32 tag | u32 pad | u64 payload            (16 bytes)
//	string: u64 length | u32 data                      (12 bytes)
//	list:   u64 length | u64 capacity | u32 items      (20 bytes)
//
// An integer's payload is the value itself; a string's or list's payload
// is the offset of its header. String data is null-terminated at length.
// List items are an array of u32 cell offsets, one per element.
const (
	cellSize         = 16
	stringHeaderSize = 12
	listHeaderSize   = 20
	itemSize         = 4
)

// Decode limits. A corrupt or hostile guest can hand back arbitrary
// headers; lengths and nesting beyond these are an error, not a crash.
const (
	maxStringLength = 1 << 20
	maxListLength   = 1 << 20
	maxValueDepth   = 1000
)

// GuestMemory is the slice of a wasm module's linear memory the codec
// needs. wazero's api.Memory satisfies it.
type GuestMemory interface {
	// Read returns byteCount bytes at offset, or false if out of range.
	Read(offset, byteCount uint32) ([]byte, bool)
	// Write writes data at offset, or returns false if out of range.
	Write(offset uint32, data []byte) bool
}

// AllocFunc allocates size bytes in guest memory and returns the offset.
type AllocFunc func(size uint32) (uint32, error)

// -----------------------------------------------------------------------------
// Encoding (host values into guest memory)
// -----------------------------------------------------------------------------

// EncodeValue writes v into guest memory, allocating through alloc, and
// returns the offset of the value cell. The host value is copied, not
// consumed; the caller still owns it.
func EncodeValue(mem GuestMemory, alloc AllocFunc, v venice.Value) (uint32, error) {
	switch v.Tag() {
	case venice.TagInteger:
		return writeCell(mem, alloc, venice.TagInteger, uint64(v.Int()))

	case venice.TagString:
		header, err := encodeString(mem, alloc, v.Str())
		if err != nil {
			return 0, err
		}
		return writeCell(mem, alloc, venice.TagString, uint64(header))

	case venice.TagList:
		header, err := encodeList(mem, alloc, v.List())
		if err != nil {
			return 0, err
		}
		return writeCell(mem, alloc, venice.TagList, uint64(header))

	default:
		return 0, fmt.Errorf("encode value: invalid tag %d", v.Tag())
	}
}

func writeCell(mem GuestMemory, alloc AllocFunc, tag venice.Tag, payload uint64) (uint32, error) {
	offset, err := alloc(cellSize)
	if err != nil {
		return 0, err
	}
	var cell [cellSize]byte
	binary.LittleEndian.PutUint32(cell[0:], uint32(tag))
	binary.LittleEndian.PutUint64(cell[8:], payload)
	if !mem.Write(offset, cell[:]) {
		return 0, fmt.Errorf("write value cell at %#x: out of range", offset)
	}
	return offset, nil
}

func encodeString(mem GuestMemory, alloc AllocFunc, s *venice.StringBuffer) (uint32, error) {
	if s.Length() > maxStringLength {
		return 0, fmt.Errorf("encode string: length %d exceeds limit", s.Length())
	}
	contents := make([]byte, s.Length()+1)
	copy(contents, s.Bytes())

	data, err := alloc(uint32(len(contents)))
	if err != nil {
		return 0, err
	}
	if !mem.Write(data, contents) {
		return 0, fmt.Errorf("write string data at %#x: out of range", data)
	}

	header, err := alloc(stringHeaderSize)
	if err != nil {
		return 0, err
	}
	var buf [stringHeaderSize]byte
	binary.LittleEndian.PutUint64(buf[0:], s.Length())
	binary.LittleEndian.PutUint32(buf[8:], data)
	if !mem.Write(header, buf[:]) {
		return 0, fmt.Errorf("write string header at %#x: out of range", header)
	}
	return header, nil
}

func encodeList(mem GuestMemory, alloc AllocFunc, l *venice.List) (uint32, error) {
	length := l.Length()
	capacity := l.Capacity()
	if capacity > maxListLength {
		return 0, fmt.Errorf("encode list: capacity %d exceeds limit", capacity)
	}

	items, err := alloc(uint32(capacity) * itemSize)
	if err != nil {
		return 0, err
	}
	itemBuf := make([]byte, capacity*itemSize)
	for i := uint64(0); i < length; i++ {
		cell, err := EncodeValue(mem, alloc, l.Index(i))
		if err != nil {
			return 0, err
		}
		binary.LittleEndian.PutUint32(itemBuf[i*itemSize:], cell)
	}
	if !mem.Write(items, itemBuf) {
		return 0, fmt.Errorf("write list items at %#x: out of range", items)
	}

	header, err := alloc(listHeaderSize)
	if err != nil {
		return 0, err
	}
	var buf [listHeaderSize]byte
	binary.LittleEndian.PutUint64(buf[0:], length)
	binary.LittleEndian.PutUint64(buf[8:], capacity)
	binary.LittleEndian.PutUint32(buf[16:], items)
	if !mem.Write(header, buf[:]) {
		return 0, fmt.Errorf("write list header at %#x: out of range", header)
	}
	return header, nil
}

// -----------------------------------------------------------------------------
// Decoding (guest memory into host values)
// -----------------------------------------------------------------------------

// DecodeValue reads the value cell at offset from guest memory and
// constructs the equivalent host value, which the caller owns. Guest
// memory is unaffected.
func DecodeValue(rt *venice.Runtime, mem GuestMemory, offset uint32) (venice.Value, error) {
	return decodeValue(rt, mem, offset, 0)
}

func decodeValue(rt *venice.Runtime, mem GuestMemory, offset uint32, depth int) (venice.Value, error) {
	if depth > maxValueDepth {
		return venice.Value{}, fmt.Errorf("decode value at %#x: nesting deeper than %d", offset, maxValueDepth)
	}
	cell, ok := mem.Read(offset, cellSize)
	if !ok {
		return venice.Value{}, fmt.Errorf("read value cell at %#x: out of range", offset)
	}
	tag := venice.Tag(binary.LittleEndian.Uint32(cell[0:]))
	payload := binary.LittleEndian.Uint64(cell[8:])

	switch tag {
	case venice.TagInteger:
		return rt.IntValue(int64(payload)), nil

	case venice.TagString:
		s, err := decodeString(rt, mem, uint32(payload))
		if err != nil {
			return venice.Value{}, err
		}
		return rt.WrapString(s), nil

	case venice.TagList:
		return decodeList(rt, mem, uint32(payload), depth)

	default:
		return venice.Value{}, fmt.Errorf("decode value at %#x: invalid tag %d", offset, uint32(tag))
	}
}

func decodeString(rt *venice.Runtime, mem GuestMemory, header uint32) (*venice.StringBuffer, error) {
	buf, ok := mem.Read(header, stringHeaderSize)
	if !ok {
		return nil, fmt.Errorf("read string header at %#x: out of range", header)
	}
	length := binary.LittleEndian.Uint64(buf[0:])
	data := binary.LittleEndian.Uint32(buf[8:])
	if length > maxStringLength {
		return nil, fmt.Errorf("read string at %#x: length %d exceeds limit", header, length)
	}
	contents, ok := mem.Read(data, uint32(length))
	if !ok {
		return nil, fmt.Errorf("read string data at %#x: out of range", data)
	}
	return rt.NewString(string(contents)), nil
}

func decodeList(rt *venice.Runtime, mem GuestMemory, header uint32, depth int) (venice.Value, error) {
	buf, ok := mem.Read(header, listHeaderSize)
	if !ok {
		return venice.Value{}, fmt.Errorf("read list header at %#x: out of range", header)
	}
	length := binary.LittleEndian.Uint64(buf[0:])
	items := binary.LittleEndian.Uint32(buf[16:])
	if length > maxListLength {
		return venice.Value{}, fmt.Errorf("read list at %#x: length %d exceeds limit", header, length)
	}

	itemBuf, ok := mem.Read(items, uint32(length)*itemSize)
	if !ok {
		return venice.Value{}, fmt.Errorf("read list items at %#x: out of range", items)
	}
	elems := make([]venice.Value, length)
	for i := uint64(0); i < length; i++ {
		cell := binary.LittleEndian.Uint32(itemBuf[i*itemSize:])
		elem, err := decodeValue(rt, mem, cell, depth+1)
		if err != nil {
			return venice.Value{}, err
		}
		elems[i] = elem
	}
	return rt.ListValue(elems...), nil
}
