// Package pull implements a streaming JSON pull parser.
//
// A Reader walks a document one token at a time over a lex.Cursor. Besides
// plain token reads it can skip to fields and array indices without
// allocating, materialize a subtree into an arena, and run a declarative
// Extraction that copies out only the requested branches in a single pass.
//
// Decoding is byte oriented: \uXXXX escapes in 1..255 become that byte and
// every other code point becomes '?'.
//
// The only error the reader recovers from is a misspelled literal (tru, nul):
// it skips to the next delimiter and continues as if a value had been read.
// Every other error moves the reader to the Error state for good.
package pull

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jacoelho/pulljson/internal/lex"
	"github.com/jacoelho/pulljson/internal/stack"
	"github.com/jacoelho/pulljson/internal/tree"
)

// Reader is a pull parser over a single document. It is not safe for
// concurrent use.
type Reader struct {
	lc          *lex.Cursor
	state       NodeType
	valueType   ValueType
	objectDepth int
	open        *stack.Stack[containerKind]
	err         error
	pool        *tree.Pool
	scratch     []bool
}

func NewReader(lc *lex.Cursor) *Reader {
	r := &Reader{open: stack.NewWithCapacity[containerKind](16)}
	r.Reset(lc)
	return r
}

// Reset prepares the reader for a new document on lc.
func (r *Reader) Reset(lc *lex.Cursor) {
	r.lc = lc
	r.state = Initial
	r.valueType = Undefined
	r.objectDepth = 0
	r.open.Reset()
	r.err = nil
	r.scratch = r.scratch[:0]
}

// SetStringPool makes materialized strings and field names share storage
// through p. A nil pool copies every string.
func (r *Reader) SetStringPool(p *tree.Pool) {
	r.pool = p
}

// Cursor exposes the underlying cursor for line and column reporting.
func (r *Reader) Cursor() *lex.Cursor {
	return r.lc
}

// Read moves to the next token. It returns false at the end of the document
// or on error; Err tells them apart.
func (r *Reader) Read() bool {
	if r.state == Error {
		return false
	}
	r.err = nil
	return r.advance() == nil && r.state != EndDocument
}

// NodeType reports Error while an error is pending, even a recoverable one.
func (r *Reader) NodeType() NodeType {
	if r.err != nil {
		return Error
	}
	return r.state
}

func (r *Reader) ValueType() ValueType {
	return r.valueType
}

// ObjectDepth is the number of objects currently open.
func (r *Reader) ObjectDepth() int {
	return r.objectDepth
}

func (r *Reader) HasError() bool {
	return r.err != nil
}

// Err returns the pending error, a *SyntaxError.
func (r *Reader) Err() error {
	return r.err
}

// Value returns the decoded text of the current value or field name, or the
// error message while in error.
func (r *Reader) Value() string {
	return string(r.ValueBytes())
}

// ValueBytes is Value without the copy. The slice is overwritten by the next
// read.
func (r *Reader) ValueBytes() []byte {
	switch r.NodeType() {
	case Value, Field, Error:
		return r.lc.Captured()
	}
	return nil
}

// IntegerValue rounds reals half up and returns 0 for non-numeric values.
func (r *Reader) IntegerValue() int64 {
	if r.NodeType() != Value {
		return 0
	}
	switch r.valueType {
	case Integer:
		// out of range numerals saturate
		v, _ := strconv.ParseInt(string(r.lc.Captured()), 10, 64)
		return v
	case Real:
		return int64(math.Floor(r.RealValue() + .5))
	}
	return 0
}

// RealValue returns NaN for non-numeric values.
func (r *Reader) RealValue() float64 {
	if r.NodeType() != Value || (r.valueType != Integer && r.valueType != Real) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(string(r.lc.Captured()), 64)
	if err != nil && v == 0 {
		return math.NaN()
	}
	return v
}

func (r *Reader) BooleanValue() bool {
	if r.NodeType() != Value || r.valueType != Boolean {
		return false
	}
	captured := r.lc.Captured()
	return len(captured) > 0 && captured[0] == 't'
}

// advance reads one token. A normal end of document leaves the state at
// EndDocument and returns nil.
func (r *Reader) advance() error {
	if r.state == EndDocument {
		return nil
	}
	if r.state == Initial {
		r.lc.TrySkipWhiteSpace()
		if r.lc.Current() == ',' {
			r.lc.Advance()
			r.lc.TrySkipWhiteSpace()
		}
	}
	if r.lc.AtEnd() {
		return r.atEnd()
	}

	r.valueType = Undefined
	switch r.state {
	case Initial:
		return r.readValue(true)
	case Field:
		return r.readValue(false)
	case Value, EndObject, EndArray:
		return r.readNext()
	case Object:
		if r.lc.Current() == '}' {
			return r.closeContainer(inObject)
		}
		return r.readField()
	case Array:
		if r.lc.Current() == ']' {
			return r.closeContainer(inArray)
		}
		return r.readValue(true)
	}
	return r.fail(ErrUnknownState)
}

func (r *Reader) atEnd() error {
	if r.lc.Current() == lex.Closed {
		return r.fail(fmt.Errorf("%w: %v", ErrNoData, r.lc.Err()))
	}
	if top, ok := r.open.Peek(); ok {
		return r.fail(unterminated(top))
	}
	if r.state == Field {
		return r.fail(ErrFieldNoValue)
	}
	r.state = EndDocument
	r.valueType = Undefined
	return nil
}

// readValue reads the value starting at the cursor. A string followed by a
// colon is read as a Field when allowField is set.
func (r *Reader) readValue(allowField bool) error {
	switch c := r.lc.Current(); {
	case c == '{':
		return r.openContainer(inObject)
	case c == '[':
		return r.openContainer(inArray)
	case c == '"':
		return r.readString(allowField)
	case c == 't':
		return r.readLiteral("true", Boolean)
	case c == 'f':
		return r.readLiteral("false", Boolean)
	case c == 'n':
		return r.readLiteral("null", Null)
	case c == '-' || c == '.' || isDigit(c):
		return r.readNumber()
	}
	return r.fail(ErrUnexpectedValue)
}

// readNext handles what may follow a value: a closer, or a comma and the next
// member. Outside any container a comma separates top level values.
func (r *Reader) readNext() error {
	switch r.lc.Current() {
	case '}':
		return r.closeContainer(inObject)
	case ']':
		return r.closeContainer(inArray)
	case ',':
		top, ok := r.open.Peek()
		r.lc.Advance()
		if !r.lc.TrySkipWhiteSpace() {
			if !ok {
				return r.atEnd()
			}
			return r.fail(ErrUnterminatedObjectOrArray)
		}
		if ok && top == inObject {
			return r.readField()
		}
		return r.readValue(true)
	}
	return r.fail(ErrUnexpectedValue)
}

func (r *Reader) readField() error {
	if r.lc.Current() != '"' {
		return r.fail(ErrUnexpectedValue)
	}
	if err := r.readString(true); err != nil {
		return err
	}
	if r.state != Field {
		return r.fail(ErrFieldNoValue)
	}
	return nil
}

func (r *Reader) openContainer(kind containerKind) error {
	r.push(kind)
	r.lc.Advance()
	if !r.lc.TrySkipWhiteSpace() {
		return r.fail(unterminated(kind))
	}
	if kind == inObject {
		r.state = Object
	} else {
		r.state = Array
	}
	return nil
}

// closeContainer consumes the closer at the cursor, which must match the
// innermost open container.
func (r *Reader) closeContainer(kind containerKind) error {
	top, ok := r.open.Peek()
	if !ok || top != kind {
		return r.fail(ErrUnexpectedValue)
	}
	r.pop()
	r.lc.Advance()
	r.lc.TrySkipWhiteSpace()
	r.valueType = Undefined
	if kind == inObject {
		r.state = EndObject
	} else {
		r.state = EndArray
	}
	return nil
}

// readString decodes a string into the capture buffer. Followed by a colon
// it is a field name, which is only legal when allowField is set.
func (r *Reader) readString(allowField bool) error {
	r.lc.ClearCapture()
	r.lc.Advance()
	for r.lc.Current() != '"' {
		if r.lc.AtEnd() {
			return r.fail(ErrUnterminatedString)
		}
		ch, err := r.decodeChar()
		if err != nil {
			return err
		}
		if !r.lc.CaptureByte(ch) {
			return r.fail(ErrOutOfMemory)
		}
	}
	r.lc.Advance()
	r.lc.TrySkipWhiteSpace()

	if r.lc.Current() != ':' {
		r.state = Value
		r.valueType = String
		return nil
	}
	if !allowField {
		return r.fail(ErrUnexpectedField)
	}
	return r.expectFieldValue()
}

// expectFieldValue consumes the colon after a field name and checks that a
// value follows.
func (r *Reader) expectFieldValue() error {
	r.lc.TrySkipWhiteSpace()
	if r.lc.Current() != ':' {
		return r.fail(ErrFieldNoValue)
	}
	r.lc.Advance()
	if !r.lc.TrySkipWhiteSpace() || isDelimiter(r.lc.Current()) {
		return r.fail(ErrFieldNoValue)
	}
	r.state = Field
	r.valueType = Undefined
	return nil
}

// decodeChar consumes one possibly escaped character of a string body.
func (r *Reader) decodeChar() (byte, error) {
	ch := r.lc.Current()
	r.lc.Advance()
	if ch != '\\' {
		return byte(ch), nil
	}

	esc := r.lc.Current()
	if esc < 0 {
		return 0, r.fail(ErrUnterminatedString)
	}
	r.lc.Advance()
	switch esc {
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		code := 0
		for range 4 {
			d := hexValue(r.lc.Current())
			if d < 0 {
				break
			}
			code = code<<4 | d
			r.lc.Advance()
		}
		if code >= 1 && code <= 255 {
			return byte(code), nil
		}
		return '?', nil
	}
	return byte(esc), nil
}

func (r *Reader) readLiteral(word string, vt ValueType) error {
	r.lc.ClearCapture()
	for i := range len(word) {
		if r.lc.Current() != int(word[i]) {
			return r.recoverLiteral()
		}
		if !r.lc.Capture() {
			return r.fail(ErrOutOfMemory)
		}
		r.lc.Advance()
	}
	r.lc.TrySkipWhiteSpace()
	if !r.lc.AtEnd() && !isDelimiter(r.lc.Current()) {
		return r.fail(ErrUnexpectedValue)
	}
	r.state = Value
	r.valueType = vt
	return nil
}

// recoverLiteral skips to the next delimiter, leaving it for the following
// read, and reports the bad literal without entering the Error state.
func (r *Reader) recoverLiteral() error {
	for !r.lc.AtEnd() && !isDelimiter(r.lc.Current()) {
		r.lc.Advance()
	}
	r.state = Value
	r.valueType = Undefined
	return r.note(ErrUnexpectedValue)
}

// A numeral is Real when it has a fraction, an exponent or a sign after its
// first character.
func (r *Reader) readNumber() error {
	r.lc.ClearCapture()
	vt := Integer
	first := true
	for c := r.lc.Current(); isNumberChar(c); c = r.lc.Current() {
		switch {
		case c == '.' || c == 'e' || c == 'E':
			vt = Real
		case (c == '+' || c == '-') && !first:
			vt = Real
		}
		if !r.lc.Capture() {
			return r.fail(ErrOutOfMemory)
		}
		r.lc.Advance()
		first = false
	}
	r.lc.TrySkipWhiteSpace()
	r.state = Value
	r.valueType = vt
	return nil
}

func (r *Reader) push(kind containerKind) {
	r.open.Push(kind)
	if kind == inObject {
		r.objectDepth++
	}
}

func (r *Reader) pop() {
	if kind, ok := r.open.Pop(); ok && kind == inObject {
		r.objectDepth--
	}
}

// fail records err and moves to the Error state for good. A failed source is
// reported as such, whatever the parse was expecting.
func (r *Reader) fail(err error) error {
	if r.lc.Current() == lex.Closed && !errors.Is(err, ErrNoData) {
		err = fmt.Errorf("%w: %v", ErrNoData, r.lc.Err())
	}
	e := r.note(err)
	r.state = Error
	r.valueType = Undefined
	return e
}

// note records err without changing state; the next read clears it.
func (r *Reader) note(err error) error {
	e := &SyntaxError{
		Err:    err,
		Line:   r.lc.Line(),
		Column: r.lc.Column(),
		Offset: r.lc.Position(),
	}
	r.err = e
	r.lc.SetCapture(err.Error())
	return e
}

// structural reports a character that cannot follow a value.
func (r *Reader) structural() error {
	if r.lc.AtEnd() {
		if r.lc.Current() == lex.Closed {
			return r.atEnd()
		}
		if top, ok := r.open.Peek(); ok {
			return r.fail(unterminated(top))
		}
	}
	return r.fail(ErrUnexpectedValue)
}

func unterminated(kind containerKind) error {
	if kind == inArray {
		return ErrUnterminatedArray
	}
	return ErrUnterminatedObject
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

func isNumberChar(c int) bool {
	switch c {
	case '.', 'e', 'E', '+', '-':
		return true
	}
	return isDigit(c)
}

func isDelimiter(c int) bool {
	return c == ',' || c == ']' || c == '}'
}

func hexValue(c int) int {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return -1
}
