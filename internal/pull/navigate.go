package pull

import "github.com/jacoelho/pulljson/internal/lex"

// SkipToField moves to the next field called name along axis and leaves the
// reader on that Field, with the name in the capture buffer. A field that is
// not there is reported as false with a nil error.
//
// Siblings only inspects members of the current object; on a miss the reader
// ends on that object's EndObject. Forward scans to the end of the document.
// Descendants scans the container the reader is in, at any depth, and stops
// on its closer. depth must point at a zero int for the first call of a
// search and be passed unchanged to the following calls; it records the
// nesting level of the searched container, so reads made between calls do
// not move the bound.
func (r *Reader) SkipToField(name string, axis Axis, depth *int) (bool, error) {
	if r.state == Error {
		return false, r.err
	}
	r.err = nil
	if name == "" {
		return false, r.note(ErrInvalidArgument)
	}

	switch axis {
	case Siblings:
		return r.siblingField(name)
	case Forward:
		return r.scanField(name, nil)
	case Descendants:
		if depth == nil {
			return false, r.note(ErrInvalidArgument)
		}
		if r.state == Initial {
			if err := r.advance(); err != nil {
				return false, err
			}
		}
		if *depth == 0 {
			*depth = r.open.Size()
		}
		if *depth == 0 || r.open.Size() < *depth {
			return false, nil
		}
		return r.scanField(name, depth)
	}
	return false, r.note(ErrInvalidArgument)
}

// SkipToFieldValue is SkipToField followed by a read of the field's value.
func (r *Reader) SkipToFieldValue(name string, axis Axis, depth *int) (bool, error) {
	ok, err := r.SkipToField(name, axis, depth)
	if !ok || err != nil {
		return false, err
	}
	if err := r.advance(); err != nil {
		return false, err
	}
	return true, nil
}

// SkipToIndex moves to item n of the current array, skipping the items before
// it. The reader may be on the Array token, or on a Field or Initial whose
// value is an array. A short array ends on EndArray and returns false.
func (r *Reader) SkipToIndex(n int) (bool, error) {
	if r.state == Error {
		return false, r.err
	}
	r.err = nil
	if n < 0 {
		return false, r.note(ErrInvalidArgument)
	}
	if r.state == Initial || r.state == Field {
		if err := r.advance(); err != nil {
			return false, err
		}
	}
	if r.state != Array {
		return false, nil
	}

	for range n {
		if r.lc.Current() == ']' {
			return false, r.closeContainer(inArray)
		}
		if err := r.skipValue(); err != nil {
			return false, err
		}
		switch r.lc.Current() {
		case ',':
			r.lc.Advance()
			if !r.lc.TrySkipWhiteSpace() {
				return false, r.fail(ErrUnterminatedObjectOrArray)
			}
			if r.lc.Current() == ']' {
				return false, r.fail(ErrUnexpectedValue)
			}
		case ']':
		default:
			return false, r.structural()
		}
	}

	if err := r.advance(); err != nil {
		return false, err
	}
	return r.state != EndArray, nil
}

// SkipSubtree skips the current node with everything below it and reads the
// token that follows. It returns false once the document is exhausted.
func (r *Reader) SkipSubtree() (bool, error) {
	if r.state == Error {
		return false, r.err
	}
	r.err = nil

	switch r.state {
	case EndDocument:
		return false, nil
	case Initial:
		if err := r.advance(); err != nil {
			return false, err
		}
		if r.state == EndDocument {
			return false, nil
		}
		return r.SkipSubtree()
	case Field:
		if err := r.skipValue(); err != nil {
			return false, err
		}
		r.state = Value
		r.valueType = Undefined
	case Object, Array:
		if err := r.skipRest(); err != nil {
			return false, err
		}
	}

	if err := r.advance(); err != nil {
		return false, err
	}
	return r.state != EndDocument, nil
}

// SkipToEndObject skips to the EndObject of the innermost open object.
func (r *Reader) SkipToEndObject() error {
	return r.skipToEnd(inObject)
}

// SkipToEndArray skips to the EndArray of the innermost open array.
func (r *Reader) SkipToEndArray() error {
	return r.skipToEnd(inArray)
}

func (r *Reader) skipToEnd(kind containerKind) error {
	if r.state == Error {
		return r.err
	}
	r.err = nil

	for {
		top, ok := r.open.Peek()
		if !ok {
			return r.note(ErrNoData)
		}
		if err := r.skipRest(); err != nil {
			return err
		}
		if top == kind {
			return nil
		}
	}
}

func (r *Reader) siblingField(name string) (bool, error) {
	afterValue := false
	switch r.state {
	case Initial:
		if err := r.advance(); err != nil {
			return false, err
		}
		if r.state != Object {
			return false, nil
		}
	case Object:
	case Field:
		if err := r.skipValue(); err != nil {
			return false, err
		}
		afterValue = true
	case Value, EndObject, EndArray:
		if top, ok := r.open.Peek(); !ok || top != inObject {
			return false, nil
		}
		afterValue = true
	default:
		return false, nil
	}

	for {
		if afterValue {
			if r.lc.Current() == '}' {
				return false, r.closeContainer(inObject)
			}
			if r.lc.Current() != ',' {
				return false, r.structural()
			}
			r.lc.Advance()
			if !r.lc.TrySkipWhiteSpace() {
				return false, r.fail(ErrUnterminatedObjectOrArray)
			}
		} else if r.lc.Current() == '}' {
			return false, r.closeContainer(inObject)
		}

		if r.lc.Current() != '"' {
			return false, r.fail(ErrUnexpectedValue)
		}
		matched, err := r.compareName(name)
		if err != nil {
			return false, err
		}
		if err := r.expectFieldValue(); err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
		if err := r.skipValue(); err != nil {
			return false, err
		}
		afterValue = true
	}
}

// scanField scans raw input for a field called name, tracking containers as
// it goes. With a non-nil floor it stops when the container at that nesting
// level closes.
func (r *Reader) scanField(name string, floor *int) (bool, error) {
	r.lc.EnsureStarted()
	for {
		switch c := r.lc.Current(); c {
		case lex.EndOfInput, lex.Closed:
			return false, r.atEnd()
		case '"':
			matched, err := r.compareName(name)
			if err != nil {
				return false, err
			}
			r.lc.TrySkipWhiteSpace()
			if r.lc.Current() != ':' {
				continue
			}
			if err := r.expectFieldValue(); err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
			continue
		case '{':
			r.push(inObject)
		case '[':
			r.push(inArray)
		case '}', ']':
			kind := inObject
			if c == ']' {
				kind = inArray
			}
			if err := r.closeContainer(kind); err != nil {
				return false, err
			}
			if floor != nil && r.open.Size() < *floor {
				return false, nil
			}
			continue
		}
		r.lc.Advance()
	}
}

// compareName consumes the string at the cursor, comparing it with name as it
// is decoded. The matched prefix is kept in the capture buffer.
func (r *Reader) compareName(name string) (bool, error) {
	r.lc.ClearCapture()
	r.lc.Advance()

	i := 0
	for r.lc.Current() != '"' {
		if r.lc.AtEnd() {
			return false, r.fail(ErrUnterminatedString)
		}
		ch, err := r.decodeChar()
		if err != nil {
			return false, err
		}
		if i >= len(name) || name[i] != ch {
			if !r.lc.TrySkipUntilEscaped('"', '\\', false) {
				return false, r.fail(ErrUnterminatedString)
			}
			r.lc.Advance()
			return false, nil
		}
		if !r.lc.CaptureByte(ch) {
			return false, r.fail(ErrOutOfMemory)
		}
		i++
	}
	r.lc.Advance()
	return i == len(name), nil
}
