// Package json provides append-style JSON writers and wrappers around buger/jsonparser
package json

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"unicode/utf8"
	"unsafe"

	jsp "github.com/buger/jsonparser"
)

const hextable = "0123456789abcdef"

type Type = jsp.ValueType

const (
	STRING = jsp.String
	NUMBER = jsp.Number
	OBJECT = jsp.Object
	ARRAY  = jsp.Array
	BOOL   = jsp.Boolean
	NULL   = jsp.Null
)

var (
	ErrValue = errors.New("invalid value")

	True  = []byte("true")
	False = []byte("false")
	Null  = []byte("null")
)

// Key appends "key": to dst, preceded by a comma unless first
func Key(dst []byte, key string, first bool) []byte {
	if !first {
		dst = append(dst, ',')
	}
	dst = append(dst, '"')
	dst = append(dst, key...)
	return append(dst, `":`...)
}

func Hex(dst []byte, src []byte) []byte {
	if src == nil {
		return append(dst, Null...)
	} else if len(src) == 0 {
		return append(dst, `""`...)
	}

	dst = append(dst, `"0x`...)
	for _, v := range src {
		dst = append(dst, hextable[v>>4], hextable[v&0x0f])
	}
	return append(dst, '"')
}

func Byte(dst []byte, src byte) []byte {
	return strconv.AppendUint(dst, uint64(src), 10)
}

func Uint16(dst []byte, src uint16) []byte {
	return strconv.AppendUint(dst, uint64(src), 10)
}

func Uint32(dst []byte, src uint32) []byte {
	return strconv.AppendUint(dst, uint64(src), 10)
}

func UnUint32(src []byte) (uint32, error) {
	v, err := strconv.ParseUint(SQ(src), 0, 32)
	return uint32(v), err
}

// Uint32s appends src as a JSON array of numbers
func Uint32s(dst []byte, src []uint32) []byte {
	dst = append(dst, '[')
	for i, v := range src {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendUint(dst, uint64(v), 10)
	}
	return append(dst, ']')
}

func Bool(dst []byte, val bool) []byte {
	if val {
		return append(dst, True...)
	} else {
		return append(dst, False...)
	}
}

func Addr(dst []byte, src netip.Addr) []byte {
	if !src.IsValid() {
		return append(dst, Null...)
	}
	dst = append(dst, '"')
	dst = src.AppendTo(dst)
	return append(dst, '"')
}

func UnAddr(src []byte) (netip.Addr, error) {
	return netip.ParseAddr(SQ(src))
}

func Prefix(dst []byte, src netip.Prefix) []byte {
	dst = append(dst, '"')
	dst = src.AppendTo(dst)
	return append(dst, '"')
}

func Prefixes(dst []byte, src []netip.Prefix) []byte {
	dst = append(dst, '[')
	for i := range src {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = Prefix(dst, src[i])
	}
	return append(dst, ']')
}

// Str appends src as a quoted JSON string, escaping as needed.
// Invalid UTF-8 sequences are replaced with U+FFFD.
func Str(dst []byte, src string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(src); {
		c := src[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				dst = append(dst, '\\', c)
			case c == '\n':
				dst = append(dst, '\\', 'n')
			case c == '\r':
				dst = append(dst, '\\', 'r')
			case c == '\t':
				dst = append(dst, '\\', 't')
			case c < 0x20:
				dst = append(dst, "\\u00"...)
				dst = append(dst, hextable[c>>4], hextable[c&0x0f])
			default:
				dst = append(dst, c)
			}
			i++
			continue
		}

		r, n := utf8.DecodeRuneInString(src[i:])
		dst = utf8.AppendRune(dst, r)
		i += n
	}
	return append(dst, '"')
}

// UnStr returns the unescaped value of JSON string src
func UnStr(src []byte) (string, error) {
	return jsp.ParseString(Q(src))
}

// S returns string from byte slice, in an unsafe way
func S(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}
	return unsafe.String(&buf[0], len(buf))
}

// Q removes "double quotes" in buf, if present
func Q(buf []byte) []byte {
	if l := len(buf); l > 1 && buf[0] == '"' && buf[l-1] == '"' {
		return buf[1 : l-1]
	} else {
		return buf
	}
}

// SQ returns string from byte slice, unquoting if necessary
func SQ(buf []byte) string {
	return S(Q(buf))
}

// ArrayEach calls cb for each *non-nil* value in the src array.
// If the callback returns or panics with an error, ArrayEach immediately returns it.
func ArrayEach(src []byte, cb func(key int, val []byte, typ Type) error) (reterr error) {
	var key int

	// convert panics into returned error
	defer func() {
		switch v := recover().(type) {
		case nil:
			break
		case error:
			reterr = fmt.Errorf("[%d]: %w", key, v)
		default:
			reterr = fmt.Errorf("[%d]: %v", key, v)
		}
	}()

	// iterate
	key = -1
	_, reterr = jsp.ArrayEach(src, func(val []byte, typ Type, _ int, _ error) {
		key++
		if typ == NULL {
			return // skip
		}

		// call cb, may panic
		if err := cb(key, val, typ); err != nil {
			panic(err) // the only way to break from ArrayEach
		}
	})

	return
}

// ObjectEach calls cb for each non-null value in the src object.
// If the callback returns an error, ObjectEach immediately returns it.
func ObjectEach(src []byte, cb func(key string, val []byte, typ Type) error) error {
	return jsp.ObjectEach(src, func(key, val []byte, typ Type, _ int) error {
		if typ == NULL {
			return nil // skip
		}
		if err := cb(S(key), val, typ); err != nil {
			return fmt.Errorf("[%s]: %w", key, err)
		}
		return nil
	})
}

// Get returns raw JSON value located at given key path, or nil if not found or error.
func Get(src []byte, path ...string) []byte {
	gval, gtyp, _, gerr := jsp.Get(src, path...)
	if gerr != nil || gtyp == NULL {
		return nil
	} else {
		return gval
	}
}
