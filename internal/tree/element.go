// Package tree holds materialized JSON values whose storage lives in an arena.
//
// An Element is a closed sum type: its kind and payload are always replaced
// together through the setters. Arrays and objects keep singly linked entry
// lists with a tail pointer, so appends are O(1) and document order is kept.
package tree

import (
	"iter"
	"math"
	"unsafe"

	"github.com/jacoelho/pulljson/internal/arena"
)

// Kind is the variant held by an Element.
type Kind uint8

const (
	Undefined Kind = iota
	Null
	String
	Real
	Integer
	Boolean
	Array
	Object
)

var kindNames = [...]string{
	Undefined: "undefined",
	Null:      "null",
	String:    "string",
	Real:      "real",
	Integer:   "integer",
	Boolean:   "boolean",
	Array:     "array",
	Object:    "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Element is one JSON value. The zero value is Undefined.
type Element struct {
	kind Kind
	bits uint64
	text []byte

	items     *ArrayEntry
	lastItem  *ArrayEntry
	fields    *FieldEntry
	lastField *FieldEntry
	length    int
}

// ArrayEntry links one array item to the next.
type ArrayEntry struct {
	Value *Element
	Next  *ArrayEntry
}

// FieldEntry links one object member to the next.
type FieldEntry struct {
	Name  []byte
	Value *Element
	Next  *FieldEntry
}

// NewElement allocates an Undefined element in a.
func NewElement(a *arena.Arena) *Element {
	return arena.Make[Element](a)
}

func (e *Element) Kind() Kind {
	return e.kind
}

func (e *Element) IsUndefined() bool {
	return e.kind == Undefined
}

// Reset makes e Undefined.
func (e *Element) Reset() {
	*e = Element{}
}

func (e *Element) SetNull() {
	*e = Element{kind: Null}
}

func (e *Element) SetBoolean(v bool) {
	var bits uint64
	if v {
		bits = 1
	}
	*e = Element{kind: Boolean, bits: bits}
}

func (e *Element) SetInteger(v int64) {
	*e = Element{kind: Integer, bits: uint64(v)}
}

func (e *Element) SetReal(v float64) {
	*e = Element{kind: Real, bits: math.Float64bits(v)}
}

// SetString makes e a string referencing b. b must outlive e; it is normally
// arena storage.
func (e *Element) SetString(b []byte) {
	*e = Element{kind: String, text: b}
}

// SetArray makes e an empty array.
func (e *Element) SetArray() {
	*e = Element{kind: Array}
}

// SetObject makes e an empty object.
func (e *Element) SetObject() {
	*e = Element{kind: Object}
}

// Boolean returns false for any non-boolean element.
func (e *Element) Boolean() bool {
	return e.kind == Boolean && e.bits == 1
}

// Integer converts a real by truncation and returns 0 for non-numeric kinds.
func (e *Element) Integer() int64 {
	switch e.kind {
	case Integer:
		return int64(e.bits)
	case Real:
		return int64(math.Float64frombits(e.bits))
	}
	return 0
}

// Real returns NaN for non-numeric kinds.
func (e *Element) Real() float64 {
	switch e.kind {
	case Real:
		return math.Float64frombits(e.bits)
	case Integer:
		return float64(int64(e.bits))
	}
	return math.NaN()
}

// Text returns the string payload without copying. The result shares arena
// storage and must not be kept past the arena's FreeAll.
func (e *Element) Text() string {
	if e.kind != String || len(e.text) == 0 {
		return ""
	}
	return unsafe.String(&e.text[0], len(e.text))
}

// Bytes returns the string payload.
func (e *Element) Bytes() []byte {
	if e.kind != String {
		return nil
	}
	return e.text
}

// Len is the number of items or fields, or the byte length of a string.
func (e *Element) Len() int {
	switch e.kind {
	case Array, Object:
		return e.length
	case String:
		return len(e.text)
	}
	return 0
}

// Append adds v to the end of an array. It fails when e is not an array or the
// arena is exhausted.
func (e *Element) Append(a *arena.Arena, v *Element) bool {
	if e.kind != Array {
		return false
	}
	entry := arena.Make[ArrayEntry](a)
	if entry == nil {
		return false
	}
	entry.Value = v

	if e.lastItem == nil {
		e.items = entry
	} else {
		e.lastItem.Next = entry
	}
	e.lastItem = entry
	e.length++
	return true
}

// AddField adds a member to the end of an object. name must outlive e.
// Duplicate names are kept.
func (e *Element) AddField(a *arena.Arena, name []byte, v *Element) bool {
	if e.kind != Object {
		return false
	}
	entry := arena.Make[FieldEntry](a)
	if entry == nil {
		return false
	}
	entry.Name = name
	entry.Value = v

	if e.lastField == nil {
		e.fields = entry
	} else {
		e.lastField.Next = entry
	}
	e.lastField = entry
	e.length++
	return true
}

// Index returns the i-th array item, or nil.
func (e *Element) Index(i int) *Element {
	if e.kind != Array || i < 0 || i >= e.length {
		return nil
	}
	entry := e.items
	for ; i > 0; i-- {
		entry = entry.Next
	}
	return entry.Value
}

// Field returns the first member called name, or nil.
func (e *Element) Field(name string) *Element {
	if e.kind != Object {
		return nil
	}
	for entry := e.fields; entry != nil; entry = entry.Next {
		if string(entry.Name) == name {
			return entry.Value
		}
	}
	return nil
}

// Items iterates over array items in document order.
func (e *Element) Items() iter.Seq2[int, *Element] {
	return func(yield func(int, *Element) bool) {
		if e.kind != Array {
			return
		}
		i := 0
		for entry := e.items; entry != nil; entry = entry.Next {
			if !yield(i, entry.Value) {
				return
			}
			i++
		}
	}
}

// Fields iterates over object members in document order.
func (e *Element) Fields() iter.Seq2[string, *Element] {
	return func(yield func(string, *Element) bool) {
		if e.kind != Object {
			return
		}
		for entry := e.fields; entry != nil; entry = entry.Next {
			if !yield(string(entry.Name), entry.Value) {
				return
			}
		}
	}
}
