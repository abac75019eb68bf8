// Package lex provides a character cursor over a byte source with a bounded
// capture buffer. The cursor never allocates after construction: captured text
// lives in a fixed buffer sized once by the caller.
package lex

import (
	"errors"
	"io"
)

// Sentinel values returned by Current and Advance in place of a byte.
const (
	EndOfInput  = -1
	BeforeInput = -2
	Closed      = -3
)

// TabWidth is the column advance of a tab character.
const TabWidth = 4

// Cursor tracks the current character, its location and a capture buffer.
type Cursor struct {
	src      io.ByteReader
	current  int
	line     int
	column   int
	position int64
	capture  []byte
	err      error
}

// New returns a cursor over src whose capture buffer holds at most capacity bytes.
func New(src io.ByteReader, capacity int) *Cursor {
	if capacity < 0 {
		capacity = 0
	}
	c := &Cursor{capture: make([]byte, 0, capacity)}
	c.Reset(src)
	return c
}

// Reset rewinds the cursor onto a new source, keeping the capture buffer.
func (c *Cursor) Reset(src io.ByteReader) {
	c.src = src
	c.current = BeforeInput
	c.line = 1
	c.column = 0
	c.position = -1
	c.capture = c.capture[:0]
	c.err = nil
}

// Current returns the current character or one of the sentinels.
func (c *Cursor) Current() int {
	return c.current
}

// Line is 1-based.
func (c *Cursor) Line() int {
	return c.line
}

// Column is the column of the current character; tabs count TabWidth.
func (c *Cursor) Column() int {
	return c.column
}

// Position is the 0-based offset of the current character, -1 before input.
func (c *Cursor) Position() int64 {
	return c.position
}

// Err returns the source error that closed the cursor, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Advance moves to the next character. Once the end of input or a source
// failure is reached the cursor stays there.
func (c *Cursor) Advance() int {
	if c.current == EndOfInput || c.current == Closed {
		return c.current
	}

	if c.src == nil {
		c.current = EndOfInput
		c.position++
		return c.current
	}

	b, err := c.src.ReadByte()
	c.position++
	switch {
	case errors.Is(err, io.EOF):
		c.current = EndOfInput
		return c.current
	case err != nil:
		c.current = Closed
		c.err = err
		return c.current
	}

	c.current = int(b)
	switch b {
	case '\n':
		c.line++
		c.column = 0
	case '\r':
		c.column = 0
	case '\t':
		c.column += TabWidth
	default:
		c.column++
	}

	return c.current
}

// EnsureStarted reads the first character if nothing has been read yet and
// reports whether a character is available.
func (c *Cursor) EnsureStarted() bool {
	if c.current == BeforeInput {
		c.Advance()
	}
	return c.current >= 0
}

// AtEnd reports whether the cursor is at end of input or closed.
func (c *Cursor) AtEnd() bool {
	return c.current == EndOfInput || c.current == Closed
}

// Capture appends the current character to the capture buffer.
func (c *Cursor) Capture() bool {
	if c.current < 0 {
		return false
	}
	return c.CaptureByte(byte(c.current))
}

// CaptureByte appends b to the capture buffer, failing when it is full.
func (c *Cursor) CaptureByte(b byte) bool {
	if len(c.capture) == cap(c.capture) {
		return false
	}
	c.capture = append(c.capture, b)
	return true
}

// ClearCapture empties the capture buffer.
func (c *Cursor) ClearCapture() {
	c.capture = c.capture[:0]
}

// Captured returns a view of the capture buffer. It is only valid until the
// next capture operation.
func (c *Cursor) Captured() []byte {
	return c.capture
}

func (c *Cursor) CaptureLen() int {
	return len(c.capture)
}

func (c *Cursor) CaptureCap() int {
	return cap(c.capture)
}

// SetCapture replaces the capture buffer with msg, truncated to fit.
func (c *Cursor) SetCapture(msg string) {
	n := min(len(msg), cap(c.capture))
	c.capture = append(c.capture[:0], msg[:n]...)
}

// TrySkipWhiteSpace advances past a run of white space and reports whether
// a character is available afterwards.
func (c *Cursor) TrySkipWhiteSpace() bool {
	if !c.EnsureStarted() {
		return false
	}
	for c.current >= 0 && isSpace(c.current) {
		c.Advance()
	}
	return c.current >= 0
}

// TryReadWhiteSpace captures a run of white space. It fails when the capture
// buffer fills up.
func (c *Cursor) TryReadWhiteSpace() bool {
	if !c.EnsureStarted() {
		return false
	}
	for c.current >= 0 && isSpace(c.current) {
		if !c.Capture() {
			return false
		}
		c.Advance()
	}
	return true
}

// TryReadUntil captures characters until target is current. When readTarget is
// set the target is captured and consumed too. EndOfInput is a valid target.
func (c *Cursor) TryReadUntil(target int, readTarget bool) bool {
	return c.scan(target, -1, readTarget, true)
}

// TryReadUntilEscaped is TryReadUntil where the character following escape is
// taken literally, even when it equals target.
func (c *Cursor) TryReadUntilEscaped(target, escape int, readTarget bool) bool {
	return c.scan(target, escape, readTarget, true)
}

// TrySkipUntil advances until target is current, consuming it when skipTarget
// is set.
func (c *Cursor) TrySkipUntil(target int, skipTarget bool) bool {
	return c.scan(target, -1, skipTarget, false)
}

// TrySkipUntilEscaped is TrySkipUntil honouring an escape character.
func (c *Cursor) TrySkipUntilEscaped(target, escape int, skipTarget bool) bool {
	return c.scan(target, escape, skipTarget, false)
}

func (c *Cursor) scan(target, escape int, consumeTarget, capture bool) bool {
	c.EnsureStarted()

	for {
		if c.current == target {
			if consumeTarget && target >= 0 {
				if capture && !c.Capture() {
					return false
				}
				c.Advance()
			}
			return true
		}
		if c.current < 0 {
			return false
		}

		if escape >= 0 && c.current == escape {
			if capture && !c.Capture() {
				return false
			}
			if c.Advance() < 0 {
				return false
			}
		}

		if capture && !c.Capture() {
			return false
		}
		c.Advance()
	}
}

func isSpace(ch int) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
