package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/rplkit/internal/codec"
)

// Type is a registered value type. Custom leaf types implement it to plug
// into type specifications and the format engine.
type Type interface {
	// Name is the name used in type specifications and field declarations.
	Name() string
	// Base names the type this one is a subtype of, or "" for a root type.
	Base() string
	// Parse builds a value from its textual form.
	Parse(text string) (Value, error)
	// Unserialize builds a value from packed bytes.
	Unserialize(data []byte, opts codec.Options) (Value, error)
	// Coerce re-casts a value of a base type into this type.
	Coerce(v Value) (Value, bool)
}

// Types resolves registered type names.
type Types interface {
	ValueType(name string) (Type, bool)
}

// IsA reports whether the type called name is base or one of its subtypes.
func IsA(types Types, name, base string) bool {
	for depth := 0; name != "" && depth < 64; depth++ {
		if name == base {
			return true
		}
		t, ok := types.ValueType(name)
		if !ok {
			return false
		}
		name = t.Base()
	}
	return false
}

// Builtins returns the built-in value types.
func Builtins() []Type {
	return []Type{
		StringType{},
		LiteralType{},
		NumberType{},
		HexNumType{},
		ListType{},
		RangeType{},
	}
}

type StringType struct{}

func (StringType) Name() string { return TypeString }
func (StringType) Base() string { return "" }

func (StringType) Parse(text string) (Value, error) {
	return String{Text: text}, nil
}

func (StringType) Unserialize(data []byte, opts codec.Options) (Value, error) {
	return String{Text: string(codec.Unpad(data, opts))}, nil
}

func (StringType) Coerce(v Value) (Value, bool) {
	if text, ok := AsText(v); ok {
		return String{Text: text}, true
	}
	return nil, false
}

// LiteralType is a subtype of string.
type LiteralType struct{}

func (LiteralType) Name() string { return TypeLiteral }
func (LiteralType) Base() string { return TypeString }

func (LiteralType) Parse(text string) (Value, error) {
	if text == "" || strings.ContainsAny(text, " \t\n\r[]{}:,\"#@") {
		return nil, fmt.Errorf("%q is not a valid literal", text)
	}
	return Literal{Text: text}, nil
}

// Unserialize returns a Literal when the unpacked text reads back as the
// same bare word, and a String otherwise.
func (LiteralType) Unserialize(data []byte, opts codec.Options) (Value, error) {
	text := string(codec.Unpad(data, opts))
	if !bareWord(text) {
		return String{Text: text}, nil
	}
	return Literal{Text: text}, nil
}

// bareWord reports whether text scans back as a single Literal. Words
// starting with a digit, $ or - read as numbers, and true and false are
// statics.
func bareWord(text string) bool {
	if text == "" || text == "true" || text == "false" {
		return false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func (t LiteralType) Coerce(v Value) (Value, bool) {
	text, ok := AsText(v)
	if !ok {
		return nil, false
	}
	lit, err := t.Parse(text)
	return lit, err == nil
}

type NumberType struct{}

func (NumberType) Name() string { return TypeNumber }
func (NumberType) Base() string { return "" }

func (NumberType) Parse(text string) (Value, error) {
	n, hex, err := parseInt(text)
	if err != nil {
		return nil, err
	}
	if hex {
		return HexNum{Int: n}, nil
	}
	return Number{Int: n}, nil
}

func (NumberType) Unserialize(data []byte, opts codec.Options) (Value, error) {
	n, err := codec.DecodeInt(data, opts)
	if err != nil {
		return nil, err
	}
	return Number{Int: n}, nil
}

func (NumberType) Coerce(v Value) (Value, bool) {
	if n, ok := AsInt(v); ok {
		return Number{Int: n}, true
	}
	return nil, false
}

// HexNumType is a subtype of number that displays in hexadecimal.
type HexNumType struct{}

func (HexNumType) Name() string { return TypeHexNum }
func (HexNumType) Base() string { return TypeNumber }

func (HexNumType) Parse(text string) (Value, error) {
	n, _, err := parseInt(text)
	if err != nil {
		return nil, err
	}
	return HexNum{Int: n}, nil
}

func (HexNumType) Unserialize(data []byte, opts codec.Options) (Value, error) {
	n, err := codec.DecodeInt(data, opts)
	if err != nil {
		return nil, err
	}
	return HexNum{Int: n}, nil
}

func (HexNumType) Coerce(v Value) (Value, bool) {
	if n, ok := AsInt(v); ok {
		return HexNum{Int: n}, true
	}
	return nil, false
}

// ListType unpacks bytes as a list of byte-sized numbers.
type ListType struct{}

func (ListType) Name() string { return TypeList }
func (ListType) Base() string { return "" }

func (ListType) Parse(text string) (Value, error) {
	return nil, fmt.Errorf("lists have no scalar text form")
}

func (ListType) Unserialize(data []byte, opts codec.Options) (Value, error) {
	return List{Items: byteItems(data)}, nil
}

func (ListType) Coerce(v Value) (Value, bool) {
	if seq, ok := v.(Sequence); ok {
		return List{Items: seq.Elements()}, true
	}
	return nil, false
}

// RangeType is a subtype of list restricted to range elements.
type RangeType struct{}

func (RangeType) Name() string { return TypeRange }
func (RangeType) Base() string { return TypeList }

func (RangeType) Parse(text string) (Value, error) {
	return nil, fmt.Errorf("ranges have no scalar text form")
}

func (RangeType) Unserialize(data []byte, opts codec.Options) (Value, error) {
	return Range{Items: byteItems(data)}, nil
}

func (RangeType) Coerce(v Value) (Value, bool) {
	seq, ok := v.(Sequence)
	if !ok {
		return nil, false
	}
	for _, item := range seq.Elements() {
		if !IsRangeElement(item) {
			return nil, false
		}
	}
	return Range{Items: seq.Elements()}, true
}

func byteItems(data []byte) []Value {
	items := make([]Value, len(data))
	for i, b := range data {
		items[i] = Number{Int: int64(b)}
	}
	return items
}

// parseInt parses a decimal, `$hex` or `0x` hex integer.
func parseInt(text string) (int64, bool, error) {
	s := strings.TrimSpace(text)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	hex := false
	switch {
	case strings.HasPrefix(s, "$"):
		s, hex = s[1:], true
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, hex = s[2:], true
	}
	base := 10
	if hex {
		base = 16
	}
	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", text)
	}
	if neg {
		n = -n
	}
	return n, hex, nil
}
