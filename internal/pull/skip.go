package pull

import "github.com/jacoelho/pulljson/internal/lex"

// The skip helpers consume input without capturing or allocating. Each
// leaves the cursor on the first non-space character after what it skipped.

func (r *Reader) skipString() error {
	r.lc.Advance()
	if !r.lc.TrySkipUntilEscaped('"', '\\', true) {
		return r.fail(ErrUnterminatedString)
	}
	r.lc.TrySkipWhiteSpace()
	return nil
}

// skipValue skips the value starting at the cursor. The reader state is left
// for the caller to set.
func (r *Reader) skipValue() error {
	switch r.lc.Current() {
	case '"':
		return r.skipString()
	case '{', '[':
		return r.skipNested()
	}

	n := 0
	for !r.lc.AtEnd() && !isDelimiter(r.lc.Current()) {
		r.lc.Advance()
		n++
	}
	if n == 0 {
		return r.structural()
	}
	return nil
}

// skipNested skips a whole object or array starting at its opener.
func (r *Reader) skipNested() error {
	outer := inObject
	if r.lc.Current() == '[' {
		outer = inArray
	}

	depth := 0
	for {
		switch r.lc.Current() {
		case lex.EndOfInput, lex.Closed:
			if r.lc.Current() == lex.Closed {
				return r.atEnd()
			}
			return r.fail(unterminated(outer))
		case '"':
			if err := r.skipString(); err != nil {
				return err
			}
			continue
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				r.lc.Advance()
				r.lc.TrySkipWhiteSpace()
				return nil
			}
		}
		r.lc.Advance()
	}
}

// skipRest skips what is left of the innermost open container, including its
// closer, from anywhere inside it.
func (r *Reader) skipRest() error {
	top, ok := r.open.Peek()
	if !ok {
		return r.note(ErrNoData)
	}

	depth := 1
	for {
		switch c := r.lc.Current(); c {
		case lex.EndOfInput, lex.Closed:
			return r.structural()
		case '"':
			if err := r.skipString(); err != nil {
				return err
			}
			continue
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				if (c == '}') != (top == inObject) {
					return r.fail(ErrUnexpectedValue)
				}
				return r.closeContainer(top)
			}
		}
		r.lc.Advance()
	}
}
