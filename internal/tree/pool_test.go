package tree

import (
	"testing"
	"unsafe"

	"github.com/jacoelho/pulljson/internal/arena"
)

func TestPool_Intern(t *testing.T) {
	t.Parallel()

	a := arena.New(1 << 10)
	p := NewPool(a)

	first, ok := p.Intern([]byte("name"))
	if !ok {
		t.Fatal("Intern() refused the first string")
	}
	used := a.Used()

	second, ok := p.Intern([]byte("name"))
	if !ok {
		t.Fatal("Intern() refused a pooled string")
	}
	if &first[0] != &second[0] {
		t.Error("equal strings do not share storage")
	}
	if a.Used() != used {
		t.Errorf("Used() = %d after a hit, want %d", a.Used(), used)
	}
	if p.Hits() != 1 {
		t.Errorf("Hits() = %d, want 1", p.Hits())
	}

	other, ok := p.Intern([]byte("nam"))
	if !ok || string(other) != "nam" {
		t.Fatalf("Intern(nam) = %q, %t", other, ok)
	}
	if p.Hits() != 1 {
		t.Errorf("prefix counted as a hit")
	}
}

func TestPool_ResetsWithArena(t *testing.T) {
	t.Parallel()

	a := arena.New(1 << 10)
	p := NewPool(a)

	if _, ok := p.Intern([]byte("id")); !ok {
		t.Fatal("Intern() refused the first string")
	}
	a.FreeAll()

	text, ok := p.Intern([]byte("id"))
	if !ok || string(text) != "id" {
		t.Fatalf("Intern() after FreeAll = %q, %t", text, ok)
	}
	if p.Hits() != 0 {
		t.Errorf("Hits() = %d, want entries dropped by FreeAll", p.Hits())
	}
	if a.Used() == 0 {
		t.Error("string was not copied into the freed arena")
	}
}

func TestPool_OutOfMemory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity int
	}{
		{name: "no room for the text", capacity: 2},
		{name: "no room for the entry", capacity: 8 + int(unsafe.Sizeof(poolEntry{})) - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := arena.New(tt.capacity)
			p := NewPool(a)
			if _, ok := p.Intern([]byte("abcdefgh")); ok {
				t.Fatal("Intern() succeeded without budget")
			}
			if a.Used() != 0 {
				t.Errorf("Used() = %d after a refused intern, want 0", a.Used())
			}
		})
	}
}
