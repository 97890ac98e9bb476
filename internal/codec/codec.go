// Package codec packs and unpacks primitive values to and from raw bytes:
// fixed-width integers with endianness and sign, and padded/aligned byte
// strings.
package codec

import (
	"bytes"
	"fmt"
)

// Endian selects byte order for multi-byte integers.
type Endian uint8

const (
	Big Endian = iota
	Little
)

func (e Endian) String() string {
	if e == Little {
		return "little"
	}
	return "big"
}

// ParseEndian parses "big" or "little".
func ParseEndian(s string) (Endian, error) {
	switch s {
	case "big":
		return Big, nil
	case "little":
		return Little, nil
	}
	return Big, fmt.Errorf("unknown endian %q", s)
}

// Align selects where content sits inside a padded field.
type Align uint8

const (
	AlignLeft    Align = iota // content first, padding after
	AlignRight                // padding first, content after
	AlignCenter               // extra padding byte goes right
	AlignRCenter              // extra padding byte goes left
)

var alignNames = [...]string{
	AlignLeft:    "left",
	AlignRight:   "right",
	AlignCenter:  "center",
	AlignRCenter: "rcenter",
}

func (a Align) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return fmt.Sprintf("Align(%d)", a)
}

// ParseAlign parses left, right, center or rcenter.
func ParseAlign(s string) (Align, error) {
	for i, name := range alignNames {
		if name == s {
			return Align(i), nil
		}
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// Options carries the packing settings of one field.
type Options struct {
	Size   int // 0 means natural size
	Endian Endian
	Signed bool
	Pad    byte
	Align  Align
}

// SizeError reports a serialized length that does not match the declared
// field size.
type SizeError struct {
	Expected int
	Got      int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("Expected size %d but got %d", e.Expected, e.Got)
}

// EncodeUint writes val into exactly size bytes.
func EncodeUint(val uint64, size int, endian Endian) []byte {
	buf := make([]byte, size)
	if endian == Little {
		for i := 0; i < size; i++ {
			buf[i] = byte(val >> (8 * i))
		}
	} else {
		for i := size - 1; i >= 0; i-- {
			buf[i] = byte(val)
			val >>= 8
		}
	}
	return buf
}

// DecodeUint reads an unsigned integer from data.
func DecodeUint(data []byte, endian Endian) uint64 {
	var val uint64
	if endian == Little {
		for i := len(data) - 1; i >= 0; i-- {
			val = (val << 8) | uint64(data[i])
		}
	} else {
		for _, b := range data {
			val = (val << 8) | uint64(b)
		}
	}
	return val
}

// NaturalSize returns the smallest byte width able to hold val.
func NaturalSize(val int64, signed bool) int {
	for n := 1; n < 8; n++ {
		if fits(val, n, signed) {
			return n
		}
	}
	return 8
}

func fits(val int64, size int, signed bool) bool {
	if size >= 8 {
		return signed || val >= 0
	}
	bits := uint(size * 8)
	if signed {
		lim := int64(1) << (bits - 1)
		return val >= -lim && val < lim
	}
	return val >= 0 && val < int64(1)<<bits
}

// EncodeInt packs val according to opts. A zero size selects the natural
// width of the value.
func EncodeInt(val int64, opts Options) ([]byte, error) {
	size := opts.Size
	if size == 0 {
		size = NaturalSize(val, opts.Signed)
	}
	if size > 8 {
		return nil, fmt.Errorf("integer fields wider than 8 bytes are not supported (got %d)", size)
	}
	if !fits(val, size, opts.Signed) {
		sign := "unsigned"
		if opts.Signed {
			sign = "signed"
		}
		return nil, fmt.Errorf("value %d does not fit in %d %s bytes", val, size, sign)
	}
	return EncodeUint(uint64(val), size, opts.Endian), nil
}

// DecodeInt unpacks an integer, sign-extending when opts.Signed is set.
func DecodeInt(data []byte, opts Options) (int64, error) {
	if len(data) == 0 || len(data) > 8 {
		return 0, fmt.Errorf("cannot decode a %d byte integer", len(data))
	}
	uval := DecodeUint(data, opts.Endian)
	if !opts.Signed || len(data) == 8 {
		return int64(uval), nil
	}
	bits := uint(len(data) * 8)
	signBit := uint64(1) << (bits - 1)
	if uval >= signBit {
		return int64(uval) - int64(1)<<bits, nil
	}
	return int64(uval), nil
}

// Pad fits data into opts.Size bytes using opts.Pad and opts.Align.
// Data longer than the field is a SizeError.
func Pad(data []byte, opts Options) ([]byte, error) {
	if opts.Size == 0 || len(data) == opts.Size {
		return data, nil
	}
	if len(data) > opts.Size {
		return nil, &SizeError{Expected: opts.Size, Got: len(data)}
	}
	extra := opts.Size - len(data)
	var left int
	switch opts.Align {
	case AlignRight:
		left = extra
	case AlignCenter:
		left = extra / 2
	case AlignRCenter:
		left = extra - extra/2
	}
	out := make([]byte, 0, opts.Size)
	out = append(out, bytes.Repeat([]byte{opts.Pad}, left)...)
	out = append(out, data...)
	out = append(out, bytes.Repeat([]byte{opts.Pad}, extra-left)...)
	return out, nil
}

// Unpad strips padding from the side(s) the alignment puts it on.
func Unpad(data []byte, opts Options) []byte {
	switch opts.Align {
	case AlignRight:
		return trimLeft(data, opts.Pad)
	case AlignCenter, AlignRCenter:
		return trimRight(trimLeft(data, opts.Pad), opts.Pad)
	}
	return trimRight(data, opts.Pad)
}

func trimLeft(data []byte, pad byte) []byte {
	i := 0
	for i < len(data) && data[i] == pad {
		i++
	}
	return data[i:]
}

func trimRight(data []byte, pad byte) []byte {
	i := len(data)
	for i > 0 && data[i-1] == pad {
		i--
	}
	return data[:i]
}
