package tree

import (
	"bytes"

	"github.com/jacoelho/pulljson/internal/arena"
)

// Pool deduplicates strings. Lookups scan every pooled string, trading time
// for arena space on documents that repeat the same names and values.
type Pool struct {
	arena *arena.Arena
	gen   uint64
	head  *poolEntry
	hits  int
}

type poolEntry struct {
	text []byte
	next *poolEntry
}

// NewPool returns a pool whose strings live in a. The pool empties itself when
// a is freed.
func NewPool(a *arena.Arena) *Pool {
	return &Pool{arena: a, gen: a.Generation()}
}

// Intern returns pooled storage equal to b, copying b into the arena on first
// sight.
func (p *Pool) Intern(b []byte) ([]byte, bool) {
	if p.gen != p.arena.Generation() {
		p.head = nil
		p.gen = p.arena.Generation()
	}

	for entry := p.head; entry != nil; entry = entry.next {
		if bytes.Equal(entry.text, b) {
			p.hits++
			return entry.text, true
		}
	}

	text, ok := p.arena.Dup(b)
	if !ok {
		return nil, false
	}
	entry := arena.Make[poolEntry](p.arena)
	if entry == nil {
		p.arena.Unalloc(len(text))
		return nil, false
	}
	entry.text = text
	entry.next = p.head
	p.head = entry
	return text, true
}

// Hits counts lookups answered from the pool.
func (p *Pool) Hits() int {
	return p.hits
}
