package pull

import (
	"errors"
	"strings"
	"testing"

	"github.com/jacoelho/pulljson/internal/arena"
	"github.com/jacoelho/pulljson/internal/lex"
	"github.com/jacoelho/pulljson/internal/tree"
)

func TestExtract_Fields(t *testing.T) {
	t.Parallel()

	r := newReader(`{"id":7,"tags":["a","b"],"ok":true}`)
	a := arena.New(1024)

	var id, ok tree.Element
	q := SelectFields([]string{"id", "ok"}, Leaf(&id), Leaf(&ok))
	if err := r.Extract(a, &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if id.Kind() != tree.Integer || id.Integer() != 7 {
		t.Errorf("id = %s, want 7", id.String())
	}
	if ok.Kind() != tree.Boolean || !ok.Boolean() {
		t.Errorf("ok = %s, want true", ok.String())
	}
	if a.Used() != 0 {
		t.Errorf("Used() = %d, want scalars extracted without allocating", a.Used())
	}
	if r.NodeType() != EndObject {
		t.Errorf("NodeType() = %v, want EndObject", r.NodeType())
	}
	if len(r.scratch) != 0 {
		t.Errorf("scratch holds %d flags after Extract", len(r.scratch))
	}
	if r.Read() || r.NodeType() != EndDocument {
		t.Errorf("document not finished: %v", r.NodeType())
	}
}

func TestExtract_Leaves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		field    string
		want     string
		wantUsed bool
	}{
		{name: "array", input: `{"id":7,"tags":["a","b"],"ok":true}`, field: "tags", want: `["a","b"]`, wantUsed: true},
		{name: "string", input: `{"name":"abc"}`, field: "name", want: `"abc"`, wantUsed: true},
		{name: "null", input: `{"n":null,"m":1}`, field: "n", want: `null`},
		{name: "real", input: `{"r":2.5}`, field: "r", want: `2.5`},
		{name: "object", input: `{"o":{"p":[{}]}}`, field: "o", want: `{"p":[{}]}`, wantUsed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newReader(tt.input)
			a := arena.New(4096)

			var dst tree.Element
			q := SelectFields([]string{tt.field}, Leaf(&dst))
			if err := r.Extract(a, &q); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got := dst.String(); got != tt.want {
				t.Errorf("result = %s, want %s", got, tt.want)
			}
			if (a.Used() > 0) != tt.wantUsed {
				t.Errorf("Used() = %d, want allocation %t", a.Used(), tt.wantUsed)
			}
			if r.NodeType() != EndObject || r.ObjectDepth() != 0 {
				t.Errorf("reader on %v depth %d", r.NodeType(), r.ObjectDepth())
			}
		})
	}
}

func TestExtract_StringUsesExactBytes(t *testing.T) {
	t.Parallel()

	r := newReader(`{"name":"abc"}`)
	a := arena.New(64)

	var name tree.Element
	q := SelectFields([]string{"name"}, Leaf(&name))
	if err := r.Extract(a, &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if a.Used() != 3 {
		t.Errorf("Used() = %d, want 3", a.Used())
	}
}

func TestExtract_UnmatchedValuesDoNotAllocate(t *testing.T) {
	t.Parallel()

	materialized := func(input string) int {
		a := arena.New(4096)
		var e tree.Element
		if err := newReader(input).ParseSubtree(a, &e); err != nil {
			t.Fatalf("ParseSubtree(%s) error = %v", input, err)
		}
		return a.Used()
	}
	want := materialized(`"xx"`) + materialized(`["yyy",{"k":"v"}]`)

	tests := []struct {
		name  string
		input string
	}{
		{name: "matches only", input: `{"a":"xx","b":["yyy",{"k":"v"}]}`},
		{name: "unmatched between", input: `{"a":"xx","x":"unmatched text","b":["yyy",{"k":"v"}],"y":{"k":["z","zz"]}}`},
		{name: "unmatched first", input: `{"x":["p",{"q":"r"}],"y":"s","a":"xx","b":["yyy",{"k":"v"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newReader(tt.input)
			a := arena.New(4096)

			var first, second tree.Element
			q := SelectFields([]string{"a", "b"}, Leaf(&first), Leaf(&second))
			if err := r.Extract(a, &q); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if first.String() != `"xx"` || second.String() != `["yyy",{"k":"v"}]` {
				t.Fatalf("a = %s, b = %s", first.String(), second.String())
			}
			if a.Used() != want {
				t.Errorf("Used() = %d, want %d for a and b only", a.Used(), want)
			}
		})
	}
}

func TestExtract_NameOverflowsCapture(t *testing.T) {
	t.Parallel()

	r := NewReader(lex.New(strings.NewReader(`{"abcdefgh":"v"}`), 4))
	a := arena.New(64)

	var v tree.Element
	q := SelectFields([]string{"abcdefgh"}, Leaf(&v))
	if err := r.Extract(a, &q); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Extract() error = %v, want ErrOutOfMemory", err)
	}
	if !v.IsUndefined() {
		t.Errorf("leaf = %s, want Undefined", v.String())
	}
	if len(r.scratch) != 0 {
		t.Errorf("scratch holds %d flags after a failed Extract", len(r.scratch))
	}
}

func TestExtract_Nested(t *testing.T) {
	t.Parallel()

	r := newReader(`{"title":"T","created_by":[{"name":"ann"},{"id":4,"name":"bob"},{"name":"cy"}],"tail":[1]}`)
	a := arena.New(1024)

	var name, title tree.Element
	q := SelectFields(
		[]string{"created_by", "title"},
		SelectIndices([]int{1}, SelectFields([]string{"name"}, Leaf(&name))),
		Leaf(&title),
	)
	if err := r.Extract(a, &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if name.Text() != "bob" {
		t.Errorf("created_by[1].name = %s, want \"bob\"", name.String())
	}
	if title.Text() != "T" {
		t.Errorf("title = %s, want \"T\"", title.String())
	}
	if r.NodeType() != EndObject || r.ObjectDepth() != 0 {
		t.Errorf("reader on %v depth %d", r.NodeType(), r.ObjectDepth())
	}
}

func TestExtract_Indices(t *testing.T) {
	t.Parallel()

	r := newReader(`[[1,2],{"a":"x"},3,4]`)
	a := arena.New(1024)

	var last, first, second tree.Element
	q := SelectIndices(
		[]int{3, 0, 1},
		Leaf(&last),
		SelectIndices([]int{1}, Leaf(&second)),
		SelectFields([]string{"a"}, Leaf(&first)),
	)
	if err := r.Extract(a, &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if last.Integer() != 4 || second.Integer() != 2 || first.Text() != "x" {
		t.Errorf("results = %s %s %s", last.String(), second.String(), first.String())
	}
	if r.NodeType() != EndArray {
		t.Errorf("NodeType() = %v, want EndArray", r.NodeType())
	}
}

func TestExtract_Missing(t *testing.T) {
	t.Parallel()

	r := newReader(`{"id":7,"list":[0]}`)

	var id, missing, item tree.Element
	q := SelectFields(
		[]string{"id", "missing", "list"},
		Leaf(&id),
		Leaf(&missing),
		SelectIndices([]int{5}, Leaf(&item)),
	)
	if err := r.Extract(arena.New(256), &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if id.Integer() != 7 {
		t.Errorf("id = %s, want 7", id.String())
	}
	if !missing.IsUndefined() || !item.IsUndefined() {
		t.Errorf("missing = %v, item = %v, want undefined", missing.Kind(), item.Kind())
	}
	if r.NodeType() != EndObject {
		t.Errorf("NodeType() = %v, want EndObject", r.NodeType())
	}
}

func TestExtract_ShapeMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		query func(*tree.Element) Extraction
		next  NodeType
	}{
		{
			name:  "fields on array",
			input: `{"v":[1,{"a":2}],"w":0}`,
			query: func(dst *tree.Element) Extraction {
				return SelectFields([]string{"v"}, SelectFields([]string{"a"}, Leaf(dst)))
			},
			next: EndDocument,
		},
		{
			name:  "indices on object",
			input: `{"v":{"0":1},"w":0}`,
			query: func(dst *tree.Element) Extraction {
				return SelectFields([]string{"v"}, SelectIndices([]int{0}, Leaf(dst)))
			},
			next: EndDocument,
		},
		{
			name:  "selector on scalar",
			input: `{"v":"text","w":0}`,
			query: func(dst *tree.Element) Extraction {
				return SelectFields([]string{"v"}, SelectFields([]string{"a"}, Leaf(dst)))
			},
			next: EndDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newReader(tt.input)
			var dst tree.Element
			dst.SetInteger(99)

			q := tt.query(&dst)
			if err := r.Extract(arena.New(256), &q); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if dst.Integer() != 99 {
				t.Errorf("leaf = %s, want untouched 99", dst.String())
			}
			if r.Read() || r.NodeType() != tt.next {
				t.Errorf("after Extract on %v, want %v", r.NodeType(), tt.next)
			}
		})
	}
}

func TestExtract_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	r := newReader(`{"a":1,"a":2,"b":[5,6]}`)

	var a1 tree.Element
	q := SelectFields([]string{"a"}, Leaf(&a1))
	if err := r.Extract(arena.New(64), &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if a1.Integer() != 1 {
		t.Errorf("a = %s, want 1", a1.String())
	}
}

func TestExtract_PrefixNames(t *testing.T) {
	t.Parallel()

	r := newReader(`{"ab":1,"a":2,"abc":3}`)

	var a, ab, abc tree.Element
	q := SelectFields([]string{"abc", "a", "ab"}, Leaf(&abc), Leaf(&a), Leaf(&ab))
	if err := r.Extract(arena.New(64), &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if a.Integer() != 2 || ab.Integer() != 1 || abc.Integer() != 3 {
		t.Errorf("a=%s ab=%s abc=%s", a.String(), ab.String(), abc.String())
	}
}

func TestExtract_InvalidQuery(t *testing.T) {
	t.Parallel()

	var dst tree.Element
	tests := []struct {
		name  string
		query Extraction
	}{
		{name: "leaf without result", query: Leaf(nil)},
		{name: "missing child", query: SelectFields([]string{"a", "b"}, Leaf(&dst))},
		{name: "fields and indices", query: Extraction{Fields: []string{"a"}, Indices: []int{0}, Children: []Extraction{Leaf(&dst), Leaf(&dst)}}},
		{name: "negative index", query: SelectIndices([]int{-1}, Leaf(&dst))},
		{name: "invalid child", query: SelectFields([]string{"a"}, SelectIndices([]int{0}))},
		{name: "leaf with children", query: Extraction{Result: &dst, Children: []Extraction{Leaf(&dst)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newReader(`{"a":1}`)
			q := tt.query
			err := r.Extract(arena.New(64), &q)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("Extract() error = %v, want ErrInvalidArgument", err)
			}
			if !r.Read() || r.NodeType() != Object {
				t.Errorf("reader did not recover: %v", r.NodeType())
			}
		})
	}
}

func TestExtract_ErrorResetsLeaves(t *testing.T) {
	t.Parallel()

	r := newReader(`{"a":1,"b":[1,`)

	var a, b tree.Element
	q := SelectFields([]string{"a", "b"}, Leaf(&a), Leaf(&b))
	err := r.Extract(arena.New(1024), &q)
	if !errors.Is(err, ErrUnterminatedObjectOrArray) {
		t.Fatalf("Extract() error = %v, want ErrUnterminatedObjectOrArray", err)
	}
	if !a.IsUndefined() || !b.IsUndefined() {
		t.Errorf("a = %v, b = %v, want both reset", a.Kind(), b.Kind())
	}
	if r.NodeType() != Error {
		t.Errorf("NodeType() = %v, want Error", r.NodeType())
	}
	if len(r.scratch) != 0 {
		t.Errorf("scratch holds %d flags after failure", len(r.scratch))
	}
}

func TestExtract_FromField(t *testing.T) {
	t.Parallel()

	r := newReader(`{"meta":{"v":2,"w":3},"z":1}`)
	if ok, err := r.SkipToField("meta", Siblings, nil); !ok || err != nil {
		t.Fatalf("SkipToField(meta) = %t, %v", ok, err)
	}

	var v tree.Element
	q := SelectFields([]string{"v"}, Leaf(&v))
	if err := r.Extract(arena.New(64), &q); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if v.Integer() != 2 {
		t.Errorf("v = %s, want 2", v.String())
	}
	if !r.Read() || r.NodeType() != Field || r.Value() != "z" {
		t.Errorf("next token %v %q, want Field \"z\"", r.NodeType(), r.Value())
	}
}

func TestExtract_EachItem(t *testing.T) {
	t.Parallel()

	r := newReader(`[{"id":1,"name":"one"},{"id":2},{"name":"three","id":3}]`)
	a := arena.New(64)

	var id, name tree.Element
	q := SelectFields([]string{"id", "name"}, Leaf(&id), Leaf(&name))

	if !r.Read() || r.NodeType() != Array {
		t.Fatalf("Read() = %v, want Array", r.NodeType())
	}

	var ids []int64
	var names []string
	for r.Read() && r.NodeType() == Object {
		q.Reset()
		a.FreeAll()
		if err := r.Extract(a, &q); err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		ids = append(ids, id.Integer())
		names = append(names, string(name.Bytes()))
		if a.Used() != len(name.Text()) {
			t.Errorf("Used() = %d, want %d", a.Used(), len(name.Text()))
		}
	}

	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("ids = %v, want [1 2 3]", ids)
	}
	if len(names) != 3 || names[0] != "one" || names[1] != "" || names[2] != "three" {
		t.Errorf("names = %q, want [one  three]", names)
	}
	if r.NodeType() != EndArray {
		t.Errorf("NodeType() = %v, want EndArray", r.NodeType())
	}
}

func TestExtractionReset(t *testing.T) {
	t.Parallel()

	var a, b tree.Element
	a.SetInteger(1)
	b.SetNull()

	q := SelectFields([]string{"x", "y"}, Leaf(&a), SelectIndices([]int{0}, Leaf(&b)))
	q.Reset()

	if !a.IsUndefined() || !b.IsUndefined() {
		t.Errorf("a = %v, b = %v, want undefined", a.Kind(), b.Kind())
	}
}
