package pull

import (
	"github.com/jacoelho/pulljson/internal/arena"
	"github.com/jacoelho/pulljson/internal/tree"
)

// ParseSubtree materializes the value the reader is on into dst and reads
// the token after it. From Initial the whole document is materialized.
// Containers, entries and strings are allocated from a; on failure dst is
// reset to Undefined and whatever was allocated stays in a until FreeAll.
func (r *Reader) ParseSubtree(a *arena.Arena, dst *tree.Element) error {
	if r.state == Error {
		return r.err
	}
	r.err = nil
	if r.state == Initial {
		if err := r.advance(); err != nil {
			return err
		}
	}

	if err := r.materialize(a, dst, false); err != nil {
		dst.Reset()
		return err
	}
	return nil
}

// materialize builds the value at the current token. In place, the reader is
// left on the value's last token instead of reading past it.
func (r *Reader) materialize(a *arena.Arena, dst *tree.Element, inPlace bool) error {
	switch r.state {
	case Value:
		if err := r.scalar(a, dst); err != nil {
			return err
		}
	case Array:
		dst.SetArray()
		if err := r.advance(); err != nil {
			return err
		}
		for r.state != EndArray {
			item := tree.NewElement(a)
			if item == nil {
				return r.fail(ErrOutOfMemory)
			}
			if err := r.materialize(a, item, true); err != nil {
				return err
			}
			if !dst.Append(a, item) {
				return r.fail(ErrOutOfMemory)
			}
			if err := r.advance(); err != nil {
				return err
			}
		}
	case Object:
		dst.SetObject()
		if err := r.advance(); err != nil {
			return err
		}
		for r.state != EndObject {
			if r.state != Field {
				return r.fail(ErrUnknownState)
			}
			name, ok := r.store(a, r.lc.Captured())
			if !ok {
				return r.fail(ErrOutOfMemory)
			}
			if err := r.advance(); err != nil {
				return err
			}
			value := tree.NewElement(a)
			if value == nil {
				return r.fail(ErrOutOfMemory)
			}
			if err := r.materialize(a, value, true); err != nil {
				return err
			}
			if !dst.AddField(a, name, value) {
				return r.fail(ErrOutOfMemory)
			}
			if err := r.advance(); err != nil {
				return err
			}
		}
	case Field:
		return r.note(ErrFieldNotSupported)
	case EndDocument:
		return r.note(ErrEndOfDocument)
	default:
		return r.note(ErrNoData)
	}

	if inPlace {
		return nil
	}
	return r.advance()
}

func (r *Reader) scalar(a *arena.Arena, dst *tree.Element) error {
	switch r.valueType {
	case Null:
		dst.SetNull()
	case Boolean:
		dst.SetBoolean(r.BooleanValue())
	case Integer:
		dst.SetInteger(r.IntegerValue())
	case Real:
		dst.SetReal(r.RealValue())
	case String:
		text, ok := r.store(a, r.lc.Captured())
		if !ok {
			return r.fail(ErrOutOfMemory)
		}
		dst.SetString(text)
	default:
		dst.Reset()
	}
	return nil
}

func (r *Reader) store(a *arena.Arena, b []byte) ([]byte, bool) {
	if r.pool != nil {
		return r.pool.Intern(b)
	}
	return a.Dup(b)
}
