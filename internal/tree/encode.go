package tree

import (
	"io"
	"math"
	"strconv"
)

const hexDigits = "0123456789abcdef"

// AppendJSON appends the compact JSON encoding of e to dst. Undefined encodes
// as null. Bytes outside printable ASCII are written as \u00XX, which the
// reader decodes back to the same byte.
func (e *Element) AppendJSON(dst []byte) []byte {
	switch e.kind {
	case Undefined, Null:
		return append(dst, "null"...)
	case Boolean:
		if e.Boolean() {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case Integer:
		return strconv.AppendInt(dst, e.Integer(), 10)
	case Real:
		return appendReal(dst, e.Real())
	case String:
		return appendString(dst, e.text)
	case Array:
		dst = append(dst, '[')
		for entry := e.items; entry != nil; entry = entry.Next {
			if entry != e.items {
				dst = append(dst, ',')
			}
			dst = entry.Value.AppendJSON(dst)
		}
		return append(dst, ']')
	case Object:
		dst = append(dst, '{')
		for entry := e.fields; entry != nil; entry = entry.Next {
			if entry != e.fields {
				dst = append(dst, ',')
			}
			dst = appendString(dst, entry.Name)
			dst = append(dst, ':')
			dst = entry.Value.AppendJSON(dst)
		}
		return append(dst, '}')
	}
	return dst
}

// WriteTo writes the JSON encoding of e to w.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.AppendJSON(nil))
	return int64(n), err
}

// String returns the JSON encoding of e.
func (e *Element) String() string {
	return string(e.AppendJSON(nil))
}

// A real always keeps a fraction or exponent so it reads back as a real.
func appendReal(dst []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, "null"...)
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'g', -1, 64)
	for _, c := range dst[start:] {
		if c == '.' || c == 'e' || c == 'E' {
			return dst
		}
	}
	return append(dst, ".0"...)
}

func appendString(dst, s []byte) []byte {
	dst = append(dst, '"')
	for _, c := range s {
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if c < 0x20 || c > 0x7e {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				continue
			}
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
