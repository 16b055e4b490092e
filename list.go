package venice

// MinListCapacity is the floor every list's capacity is clamped to.
// Requests below it would cause pathological repeated tiny reallocations.
const MinListCapacity = 8

// List is an owned, growable array of values.
//
// The backing buffer is sized for exactly capacity slots; length counts the
// slots in use and never exceeds capacity. Growth doubles the capacity and
// never shrinks it, so appending is amortized O(1).
//
// Appended values are moved into the list: the list owns every element
// reachable through it, and Destroy releases the elements before the
// backing buffer. A List is created by [Runtime.NewList] or
// [Runtime.ListOf] and must be destroyed exactly once.
type List struct {
	items    []Value
	length   uint64
	capacity uint64
	rt       *Runtime
}

// NewList constructs an empty list. The requested capacity is clamped to
// [MinListCapacity].
//
//	l := rt.NewList(1)
//	l.Length()   // 0
//	l.Capacity() // 8
func (rt *Runtime) NewList(capacity uint64) *List {
	if capacity < MinListCapacity {
		capacity = MinListCapacity
	}
	return &List{
		items:    rt.guard.slots(capacity),
		capacity: capacity,
		rt:       rt,
	}
}

// ListOf constructs a list holding the given values, in order. The capacity
// is the larger of the value count and [MinListCapacity]. List literals
// compile to this.
//
//	l := rt.ListOf(rt.IntValue(10), rt.IntValue(20), rt.IntValue(30))
//	l.Length()        // 3
//	l.Index(2).Int()  // 30
func (rt *Runtime) ListOf(values ...Value) *List {
	capacity := uint64(len(values))
	if capacity < MinListCapacity {
		capacity = MinListCapacity
	}
	items := rt.guard.slots(capacity)
	copy(items, values)
	return &List{
		items:    items,
		length:   uint64(len(values)),
		capacity: capacity,
		rt:       rt,
	}
}

// Append moves v into the list, growing the backing buffer if it is full.
// Growth always exactly doubles the capacity; a doubling that would
// overflow is rejected through the fatal allocation path rather than
// wrapping around.
func (l *List) Append(v Value) {
	if l.items == nil {
		panic("List.Append: use after destroy")
	}
	if l.length == l.capacity {
		l.grow()
	}
	l.items[l.length] = v
	l.length++
}

func (l *List) grow() {
	const maxCapacity = ^uint64(0) / 2
	if l.capacity > maxCapacity {
		raise(AllocationExhausted, "list capacity overflow")
	}
	newCapacity := l.capacity * 2
	l.items = l.rt.guard.growSlots(l.items, newCapacity)
	l.capacity = newCapacity
}

// Index returns the value at position n. Out-of-range access is fatal: the
// compiler emitting calls into the runtime has either already checked the
// bounds or accepted the crash.
func (l *List) Index(n uint64) Value {
	if n >= l.length {
		raise(BoundsViolation, "index out of bounds")
	}
	return l.items[n]
}

// Length returns the number of values in the list.
func (l *List) Length() uint64 {
	return l.length
}

// Capacity returns the size of the backing buffer in slots.
func (l *List) Capacity() uint64 {
	return l.capacity
}

// Destroy releases every value in the list, depth-first, then the backing
// buffer. The List must not be used again; destroying twice panics.
func (l *List) Destroy() {
	if l.items == nil {
		panic("List.Destroy: already destroyed")
	}
	for i := uint64(0); i < l.length; i++ {
		l.items[i].Destroy()
	}
	l.rt.guard.release(uint64(cap(l.items)) * slotSize)
	l.items = nil
	l.length = 0
	l.capacity = 0
}
