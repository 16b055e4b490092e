package venice

import (
	"math"
	"unsafe"

	"github.com/tliron/commonlog"
)

var allocLog = commonlog.GetLogger("venice.alloc")

// slotSize is the accounted size of one list slot.
var slotSize = uint64(unsafe.Sizeof(Value{}))

// -----------------------------------------------------------------------------
// Allocator - Swappable Backing Allocator
// -----------------------------------------------------------------------------

// Allocator supplies backing memory for runtime-owned buffers. A method
// returns nil to report that the request cannot be satisfied; the guard
// turns that into the fatal AllocationExhausted condition.
//
// The runtime starts with [HeapAllocator]. Swap in another implementation
// with [Runtime.SetAllocator], for example to inject failures in tests:
//
//	rt := venice.New()
//	rt.SetAllocator(myFailingAllocator)
type Allocator interface {
	// Bytes returns a zeroed buffer of exactly n bytes, or nil.
	Bytes(n int) []byte

	// GrowBytes returns a buffer of exactly n bytes carrying the contents
	// of buf (truncated if n < len(buf)), or nil. The old buffer must not
	// be used afterward.
	GrowBytes(buf []byte, n int) []byte

	// Slots returns a zeroed buffer of exactly n value slots, or nil.
	Slots(n int) []Value

	// GrowSlots returns a buffer of exactly n value slots carrying the
	// contents of items, or nil. The old buffer must not be used afterward.
	GrowSlots(items []Value, n int) []Value
}

// HeapAllocator allocates from the Go heap. It never reports failure; the
// fatal allocation path is still reachable through the guard's memory limit.
type HeapAllocator struct{}

func (HeapAllocator) Bytes(n int) []byte { return make([]byte, n) }

func (HeapAllocator) GrowBytes(buf []byte, n int) []byte {
	grown := make([]byte, n)
	copy(grown, buf)
	return grown
}

func (HeapAllocator) Slots(n int) []Value { return make([]Value, n) }

func (HeapAllocator) GrowSlots(items []Value, n int) []Value {
	grown := make([]Value, n)
	copy(grown, items)
	return grown
}

// -----------------------------------------------------------------------------
// Allocation Guard
// -----------------------------------------------------------------------------

// AllocStats describes the guard's accounting of runtime-owned buffers.
type AllocStats struct {
	Allocs uint64 // buffers handed out
	Frees  uint64 // buffers released by destruction
	Live   uint64 // bytes currently owned
	Peak   uint64 // high-water mark of Live
}

// guard meters every runtime-owned buffer and fails fast when a request
// cannot be satisfied. All allocation in the package funnels through it;
// no component calls the backing allocator directly.
type guard struct {
	alloc Allocator
	limit uint64 // bytes, 0 means unlimited
	trace bool
	stats AllocStats
}

func newGuard() *guard {
	return &guard{alloc: HeapAllocator{}}
}

// fits reports whether releasing `release` bytes and acquiring `acquire`
// bytes keeps the guard within its configured limit.
func (g *guard) fits(release, acquire uint64) bool {
	if acquire > math.MaxInt {
		return false
	}
	if g.limit == 0 {
		return true
	}
	return g.stats.Live-release+acquire <= g.limit
}

// fail reports allocation exhaustion. It does not return.
func (g *guard) fail() {
	raise(AllocationExhausted, "out of memory")
}

func (g *guard) account(release, acquire uint64) {
	g.stats.Live -= release
	g.stats.Live += acquire
	if g.stats.Live > g.stats.Peak {
		g.stats.Peak = g.stats.Live
	}
	if g.trace {
		allocLog.Debugf("account -%d +%d bytes (live=%d peak=%d)", release, acquire, g.stats.Live, g.stats.Peak)
	}
}

// bytes allocates a zeroed byte buffer of exactly n bytes. The returned
// slice is capped at n so that cap() always matches the accounted size.
func (g *guard) bytes(n uint64) []byte {
	var buf []byte
	if g.fits(0, n) {
		buf = g.alloc.Bytes(int(n))
	}
	if buf == nil {
		g.fail()
	}
	g.stats.Allocs++
	g.account(0, n)
	return buf[:n:n]
}

// growBytes reallocates buf to exactly n bytes, preserving its contents.
// On failure the old buffer's accounting is released before the guard
// raises, so the failed growth is not double-reported as a leak.
func (g *guard) growBytes(buf []byte, n uint64) []byte {
	old := uint64(cap(buf))
	var grown []byte
	if g.fits(old, n) {
		grown = g.alloc.GrowBytes(buf, int(n))
	}
	if grown == nil {
		g.release(old)
		g.fail()
	}
	g.account(old, n)
	return grown[:n:n]
}

// slots allocates a zeroed buffer of exactly n value slots.
func (g *guard) slots(n uint64) []Value {
	if n > math.MaxUint64/slotSize {
		g.fail()
	}
	var items []Value
	if g.fits(0, n*slotSize) {
		items = g.alloc.Slots(int(n))
	}
	if items == nil {
		g.fail()
	}
	g.stats.Allocs++
	g.account(0, n*slotSize)
	return items[:n:n]
}

// growSlots reallocates items to exactly n slots, preserving contents.
// Failure releases the old buffer's accounting first, as in growBytes.
func (g *guard) growSlots(items []Value, n uint64) []Value {
	if n > math.MaxUint64/slotSize {
		g.release(uint64(cap(items)) * slotSize)
		g.fail()
	}
	old := uint64(cap(items)) * slotSize
	var grown []Value
	if g.fits(old, n*slotSize) {
		grown = g.alloc.GrowSlots(items, int(n))
	}
	if grown == nil {
		g.release(old)
		g.fail()
	}
	g.account(old, n*slotSize)
	return grown[:n:n]
}

// release returns n bytes of accounting. Destruction paths call this; it
// panics if the books would go negative, which means a buffer was adopted
// that the guard never allocated.
func (g *guard) release(n uint64) {
	if n > g.stats.Live {
		panic("venice: allocation accounting underflow")
	}
	g.stats.Frees++
	g.account(n, 0)
}

// -----------------------------------------------------------------------------
// Runtime Allocation Surface
// -----------------------------------------------------------------------------

// AllocBytes allocates a zeroed, guard-owned byte buffer of exactly n bytes.
//
// This and [Runtime.GrowBytes] are the only allocation entry points; every
// buffer the runtime owns is obtained through them. A buffer obtained here
// may be handed to [Runtime.TakeString] once filled and terminated.
//
// On exhaustion the guard raises AllocationExhausted instead of returning.
func (rt *Runtime) AllocBytes(n uint64) []byte {
	return rt.guard.bytes(n)
}

// GrowBytes reallocates a guard-owned buffer to exactly n bytes, preserving
// its contents. The old buffer must not be used afterward. If the request
// cannot be satisfied, the old buffer's accounting is released and the
// guard raises AllocationExhausted.
func (rt *Runtime) GrowBytes(buf []byte, n uint64) []byte {
	return rt.guard.growBytes(buf, n)
}

// Stats returns a snapshot of the guard's allocation accounting.
//
//	before := rt.Stats()
//	v := rt.ListValue(rt.IntValue(1))
//	v.Destroy()
//	after := rt.Stats()
//	// after.Live == before.Live
func (rt *Runtime) Stats() AllocStats {
	return rt.guard.stats
}

// SetMemoryLimit caps the bytes the guard may have live at once.
// A limit of 0 (the default) means unlimited.
func (rt *Runtime) SetMemoryLimit(limit uint64) {
	rt.guard.limit = limit
}

// SetAllocTrace enables debug logging of every accounting change on the
// "venice.alloc" logger.
func (rt *Runtime) SetAllocTrace(on bool) {
	rt.guard.trace = on
}

// SetAllocator swaps the backing allocator. Buffers already handed out
// remain valid; only future requests go through a.
func (rt *Runtime) SetAllocator(a Allocator) {
	rt.guard.alloc = a
}
