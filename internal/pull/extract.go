package pull

import (
	"github.com/jacoelho/pulljson/internal/arena"
	"github.com/jacoelho/pulljson/internal/tree"
)

// Extraction describes what to copy out of a value. A leaf receives the
// whole value in Result. A selector lists either Fields or Indices, with one
// child per entry at the same position.
type Extraction struct {
	Result   *tree.Element
	Fields   []string
	Indices  []int
	Children []Extraction
}

// Leaf returns an extraction that materializes into dst.
func Leaf(dst *tree.Element) Extraction {
	return Extraction{Result: dst}
}

// SelectFields pairs each field name with the extraction for its value.
func SelectFields(names []string, children ...Extraction) Extraction {
	return Extraction{Fields: names, Children: children}
}

// SelectIndices pairs each array index with the extraction for its item.
func SelectIndices(indices []int, children ...Extraction) Extraction {
	return Extraction{Indices: indices, Children: children}
}

func (q *Extraction) isLeaf() bool {
	return len(q.Fields) == 0 && len(q.Indices) == 0
}

func (q *Extraction) valid() bool {
	if q == nil {
		return false
	}
	if q.isLeaf() {
		return q.Result != nil && len(q.Children) == 0
	}
	if len(q.Fields) > 0 && len(q.Indices) > 0 {
		return false
	}
	if len(q.Children) != len(q.Fields)+len(q.Indices) {
		return false
	}
	for _, i := range q.Indices {
		if i < 0 {
			return false
		}
	}
	for i := range q.Children {
		if !q.Children[i].valid() {
			return false
		}
	}
	return true
}

// Reset makes every leaf result Undefined.
func (q *Extraction) Reset() {
	if q.isLeaf() {
		if q.Result != nil {
			q.Result.Reset()
		}
		return
	}
	for i := range q.Children {
		q.Children[i].Reset()
	}
}

// Extract runs q against the value the reader is on, in one pass. Only
// matched leaves allocate from a; everything else is skipped. A selector that
// does not fit the value (fields on an array, anything on a scalar) leaves its
// leaves untouched. Each requested name or index is taken from its first
// occurrence, and once all have been seen the rest of the container is
// skipped. On success the reader is on the value's last token; on failure
// every leaf of q is reset.
func (r *Reader) Extract(a *arena.Arena, q *Extraction) error {
	if r.state == Error {
		return r.err
	}
	r.err = nil
	if !q.valid() {
		return r.note(ErrInvalidArgument)
	}

	if r.state == Initial || r.state == Field {
		if err := r.advance(); err != nil {
			q.Reset()
			return err
		}
	}

	base := len(r.scratch)
	err := r.extract(a, q)
	r.scratch = r.scratch[:base]
	if err != nil {
		q.Reset()
		return err
	}
	return nil
}

func (r *Reader) extract(a *arena.Arena, q *Extraction) error {
	if q.isLeaf() {
		return r.materialize(a, q.Result, true)
	}

	switch r.state {
	case Object:
		if len(q.Fields) == 0 {
			return r.skipRest()
		}
		return r.extractFields(a, q)
	case Array:
		if len(q.Indices) == 0 {
			return r.skipRest()
		}
		return r.extractIndices(a, q)
	case Value:
		return nil
	case EndDocument:
		return r.note(ErrEndOfDocument)
	}
	return r.note(ErrNoData)
}

func (r *Reader) extractFields(a *arena.Arena, q *Extraction) error {
	found := r.reserve(len(q.Fields))
	defer r.release(found)

	remaining := len(q.Fields)
	afterValue := false
	for {
		if afterValue {
			if remaining == 0 {
				return r.skipRest()
			}
			if r.lc.Current() == '}' {
				return r.closeContainer(inObject)
			}
			if r.lc.Current() != ',' {
				return r.structural()
			}
			r.lc.Advance()
			if !r.lc.TrySkipWhiteSpace() {
				return r.fail(ErrUnterminatedObjectOrArray)
			}
		} else if r.lc.Current() == '}' {
			return r.closeContainer(inObject)
		}

		m, err := r.matchFields(q.Fields, found)
		if err != nil {
			return err
		}
		if m < 0 {
			if err := r.skipValue(); err != nil {
				return err
			}
		} else {
			remaining--
			if err := r.readValue(false); err != nil {
				return err
			}
			if err := r.extract(a, &q.Children[m]); err != nil {
				return err
			}
		}
		afterValue = true
	}
}

func (r *Reader) extractIndices(a *arena.Arena, q *Extraction) error {
	found := r.reserve(len(q.Indices))
	defer r.release(found)

	remaining := len(q.Indices)
	for idx := 0; ; idx++ {
		if idx > 0 {
			if remaining == 0 {
				return r.skipRest()
			}
			if r.lc.Current() == ']' {
				return r.closeContainer(inArray)
			}
			if r.lc.Current() != ',' {
				return r.structural()
			}
			r.lc.Advance()
			if !r.lc.TrySkipWhiteSpace() {
				return r.fail(ErrUnterminatedObjectOrArray)
			}
			if r.lc.Current() == ']' {
				return r.fail(ErrUnexpectedValue)
			}
		} else if r.lc.Current() == ']' {
			return r.closeContainer(inArray)
		}

		m := -1
		for i, want := range q.Indices {
			if want == idx && !r.scratch[found+i] {
				m = i
				break
			}
		}
		if m < 0 {
			if err := r.skipValue(); err != nil {
				return err
			}
			continue
		}

		r.scratch[found+m] = true
		remaining--
		if err := r.readValue(false); err != nil {
			return err
		}
		if err := r.extract(a, &q.Children[m]); err != nil {
			return err
		}
	}
}

// matchFields reads the field name at the cursor and compares it with every
// name not yet found in one pass. It returns the position of the match, or -1,
// and leaves the reader on the Field.
func (r *Reader) matchFields(names []string, found int) (int, error) {
	if r.lc.Current() != '"' {
		return -1, r.fail(ErrUnexpectedValue)
	}

	alive := r.reserve(len(names))
	live := 0
	for i := range names {
		if !r.scratch[found+i] {
			r.scratch[alive+i] = true
			live++
		}
	}

	r.lc.ClearCapture()
	r.lc.Advance()
	pos := 0
	for r.lc.Current() != '"' && live > 0 {
		if r.lc.AtEnd() {
			r.release(alive)
			return -1, r.fail(ErrUnterminatedString)
		}
		ch, err := r.decodeChar()
		if err != nil {
			r.release(alive)
			return -1, err
		}
		for i, name := range names {
			if r.scratch[alive+i] && (pos >= len(name) || name[pos] != ch) {
				r.scratch[alive+i] = false
				live--
			}
		}
		if !r.lc.CaptureByte(ch) {
			r.release(alive)
			return -1, r.fail(ErrOutOfMemory)
		}
		pos++
	}
	if r.lc.Current() != '"' && !r.lc.TrySkipUntilEscaped('"', '\\', false) {
		r.release(alive)
		return -1, r.fail(ErrUnterminatedString)
	}
	r.lc.Advance()

	m := -1
	for i, name := range names {
		if r.scratch[alive+i] && len(name) == pos {
			m = i
			break
		}
	}
	r.release(alive)

	if err := r.expectFieldValue(); err != nil {
		return -1, err
	}
	if m >= 0 {
		r.scratch[found+m] = true
	}
	return m, nil
}

// reserve pushes n cleared flags onto the scratch stack and returns their
// base. Frames are released in reverse order.
func (r *Reader) reserve(n int) int {
	base := len(r.scratch)
	for range n {
		r.scratch = append(r.scratch, false)
	}
	return base
}

func (r *Reader) release(base int) {
	r.scratch = r.scratch[:base]
}
