// Package arena provides a bump allocator with a fixed byte budget.
//
// Byte storage (Alloc) and typed storage (Make) draw from the same budget.
// Nothing is freed individually: Unalloc rewinds the most recent byte
// allocation and FreeAll releases everything at once. Memory handed out by an
// arena must not be used after FreeAll.
package arena

import (
	"reflect"
	"unsafe"
)

const slabChunk = 64

// Arena is a single-owner bump allocator. It is not safe for concurrent use.
type Arena struct {
	buf      []byte
	off      int
	used     int
	capacity int
	peak     int
	failures int
	gen      uint64
	slabs    map[reflect.Type]resetter
}

// New returns an arena that can hand out at most capacity bytes.
func New(capacity int) *Arena {
	return &Arena{capacity: max(capacity, 0)}
}

// Alloc returns n bytes of storage, or false when the budget is exhausted.
func (a *Arena) Alloc(n int) ([]byte, bool) {
	if n < 0 {
		return nil, false
	}
	if n == 0 {
		return []byte{}, true
	}
	if !a.charge(n) {
		return nil, false
	}

	if a.off+n > cap(a.buf) {
		newCap := min(max(cap(a.buf)*2, a.off+n, 256), a.capacity)
		buf := make([]byte, a.off+n, newCap)
		copy(buf, a.buf[:a.off])
		a.buf = buf
	} else if a.off+n > len(a.buf) {
		a.buf = a.buf[:a.off+n]
	}

	out := a.buf[a.off : a.off+n : a.off+n]
	a.off += n
	return out, true
}

// Dup copies b into the arena.
func (a *Arena) Dup(b []byte) ([]byte, bool) {
	out, ok := a.Alloc(len(b))
	if !ok {
		return nil, false
	}
	copy(out, b)
	return out, true
}

// Unalloc rewinds the most recent n bytes of byte storage. Allocations must be
// released in reverse order.
func (a *Arena) Unalloc(n int) {
	n = min(max(n, 0), a.off)
	a.off -= n
	a.used -= n
}

// FreeAll releases every allocation. Typed storage is recycled.
func (a *Arena) FreeAll() {
	a.off = 0
	a.used = 0
	a.gen++
	for _, s := range a.slabs {
		s.reset()
	}
}

// Used is the number of bytes currently allocated.
func (a *Arena) Used() int {
	return a.used
}

// Cap is the byte budget.
func (a *Arena) Cap() int {
	return a.capacity
}

// Available is the remaining budget.
func (a *Arena) Available() int {
	return a.capacity - a.used
}

// Peak is the highest Used value observed since the arena was created.
func (a *Arena) Peak() int {
	return a.peak
}

// Failures counts allocations refused for lack of budget.
func (a *Arena) Failures() int {
	return a.failures
}

// Generation changes on every FreeAll. Holders of arena memory compare it to
// detect that their storage was released.
func (a *Arena) Generation() uint64 {
	return a.gen
}

func (a *Arena) charge(n int) bool {
	if a.used+n > a.capacity {
		a.failures++
		return false
	}
	a.used += n
	a.peak = max(a.peak, a.used)
	return true
}

// Make returns a zeroed *T charged against the arena budget, or nil when the
// budget is exhausted.
func Make[T any](a *Arena) *T {
	var zero T
	if !a.charge(int(unsafe.Sizeof(zero))) {
		return nil
	}
	return slabFor[T](a).next()
}

type resetter interface {
	reset()
}

type slab[T any] struct {
	chunks [][]T
	chunk  int
	idx    int
}

func slabFor[T any](a *Arena) *slab[T] {
	key := reflect.TypeFor[T]()
	if s, ok := a.slabs[key]; ok {
		return s.(*slab[T])
	}
	if a.slabs == nil {
		a.slabs = make(map[reflect.Type]resetter)
	}
	s := &slab[T]{}
	a.slabs[key] = s
	return s
}

func (s *slab[T]) next() *T {
	for s.chunk < len(s.chunks) && s.idx == len(s.chunks[s.chunk]) {
		s.chunk++
		s.idx = 0
	}
	if s.chunk == len(s.chunks) {
		s.chunks = append(s.chunks, make([]T, slabChunk))
	}

	var zero T
	p := &s.chunks[s.chunk][s.idx]
	*p = zero
	s.idx++
	return p
}

func (s *slab[T]) reset() {
	s.chunk = 0
	s.idx = 0
}
