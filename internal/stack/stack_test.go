package stack

import (
	"testing"
)

func TestStack_NewWithCapacity(t *testing.T) {
	s := NewWithCapacity[int](4)

	if s.Size() != 0 {
		t.Errorf("NewWithCapacity() stack size = %d, want 0", s.Size())
	}
	if _, ok := s.Peek(); ok {
		t.Error("NewWithCapacity() stack should be empty")
	}
}

func TestStack_PushAndPop(t *testing.T) {
	s := NewWithCapacity[byte](2)

	s.Push('{', '[')
	s.Push('{')

	if s.Size() != 3 {
		t.Errorf("Push() stack size = %d, want 3", s.Size())
	}

	for _, want := range []byte{'{', '[', '{'} {
		val, ok := s.Pop()
		if !ok || val != want {
			t.Errorf("Pop() = %q, %t, want %q, true", val, ok, want)
		}
	}

	val, ok := s.Pop()
	if ok || val != 0 {
		t.Errorf("Pop() from empty stack = %d, %t, want 0, false", val, ok)
	}
}

func TestStack_Peek(t *testing.T) {
	s := NewWithCapacity[string](0)

	val, ok := s.Peek()
	if ok || val != "" {
		t.Errorf("Peek() on empty stack = %q, %t, want \"\", false", val, ok)
	}

	s.Push("first", "second")

	val, ok = s.Peek()
	if !ok || val != "second" {
		t.Errorf("Peek() = %q, %t, want \"second\", true", val, ok)
	}
	if s.Size() != 2 {
		t.Errorf("Peek() changed stack size to %d, want 2", s.Size())
	}
}

func TestStack_Reset(t *testing.T) {
	s := NewWithCapacity[int](8)
	s.Push(1, 2, 3)

	s.Reset()
	if s.Size() != 0 {
		t.Fatalf("Reset() left %d items on the stack", s.Size())
	}

	s.Push(9)
	if top, ok := s.Peek(); !ok || top != 9 {
		t.Errorf("Peek() after Reset = %d, %t, want 9, true", top, ok)
	}
}
