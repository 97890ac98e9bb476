// Package value defines the tagged values stored on RPL structs: strings,
// literals, numbers, lists, ranges and the extension point for custom leaf
// types, together with the provenance tag every stored value carries.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/rplkit/internal/codec"
)

// Built-in type names.
const (
	TypeString    = "string"
	TypeLiteral   = "literal"
	TypeNumber    = "number"
	TypeHexNum    = "hexnum"
	TypeList      = "list"
	TypeRange     = "range"
	TypeReference = "reference"
	TypeAll       = "all"
)

// Value is any RPL value.
type Value interface {
	// Type returns the registered type name of the value.
	Type() string
	// Get returns the native Go payload.
	Get() any
	// String returns the RPL source form of the value.
	String() string
}

// Serializer is implemented by values that can be packed into bytes.
type Serializer interface {
	Serialize(opts codec.Options) ([]byte, error)
}

// Sequence is implemented by List and Range.
type Sequence interface {
	Value
	Elements() []Value
}

// String is a double quoted string.
type String struct {
	Text string
}

func (v String) Type() string { return TypeString }
func (v String) Get() any     { return v.Text }

func (v String) String() string {
	return Quote(v.Text)
}

// Serialize encodes the raw bytes of the string, padded to opts.Size.
func (v String) Serialize(opts codec.Options) ([]byte, error) {
	return codec.Pad([]byte(v.Text), opts)
}

// Literal is an unquoted word.
type Literal struct {
	Text string
}

func (v Literal) Type() string   { return TypeLiteral }
func (v Literal) Get() any       { return v.Text }
func (v Literal) String() string { return v.Text }

func (v Literal) Serialize(opts codec.Options) ([]byte, error) {
	return codec.Pad([]byte(v.Text), opts)
}

// Number is a decimal integer.
type Number struct {
	Int int64
}

func (v Number) Type() string   { return TypeNumber }
func (v Number) Get() any       { return v.Int }
func (v Number) String() string { return strconv.FormatInt(v.Int, 10) }

func (v Number) Serialize(opts codec.Options) ([]byte, error) {
	return codec.EncodeInt(v.Int, opts)
}

// HexNum is a number displayed in hexadecimal.
type HexNum struct {
	Int int64
}

func (v HexNum) Type() string { return TypeHexNum }
func (v HexNum) Get() any     { return v.Int }

func (v HexNum) String() string {
	if v.Int < 0 {
		return strconv.FormatInt(v.Int, 10)
	}
	return "$" + strconv.FormatInt(v.Int, 16)
}

func (v HexNum) Serialize(opts codec.Options) ([]byte, error) {
	return codec.EncodeInt(v.Int, opts)
}

// List is an ordered sequence of values.
type List struct {
	Items []Value
}

func (v List) Type() string      { return TypeList }
func (v List) Get() any          { return v.Items }
func (v List) Elements() []Value { return v.Items }
func (v List) String() string    { return formatList(v.Items) }

// NewList builds a List from items.
func NewList(items ...Value) List {
	return List{Items: items}
}

// Serialize concatenates the serialized items.
func (v List) Serialize(opts codec.Options) ([]byte, error) {
	return serializeItems(v.Items, opts)
}

// Range is a list restricted to numbers and single-character literals.
type Range struct {
	Items []Value
}

func (v Range) Type() string      { return TypeRange }
func (v Range) Get() any          { return v.Items }
func (v Range) Elements() []Value { return v.Items }

// String renders the range as a colon chain, collapsing runs of three or
// more consecutive elements into `a-b`.
func (v Range) String() string {
	switch len(v.Items) {
	case 0:
		return "0*0"
	case 1:
		// A lone element would scan back as a scalar.
		return v.Items[0].String() + "*1"
	}
	var parts []string
	for i := 0; i < len(v.Items); {
		j := i + 1
		for j < len(v.Items) && consecutive(v.Items[j-1], v.Items[j]) {
			j++
		}
		if j-i >= 3 {
			parts = append(parts, v.Items[i].String()+"-"+v.Items[j-1].String())
			i = j
			continue
		}
		parts = append(parts, v.Items[i].String())
		i++
	}
	return strings.Join(parts, ":")
}

func (v Range) Serialize(opts codec.Options) ([]byte, error) {
	return serializeItems(v.Items, opts)
}

// IsRangeElement reports whether v may appear in a Range.
func IsRangeElement(v Value) bool {
	switch x := v.(type) {
	case Number:
		return x.Int >= 0
	case HexNum:
		return x.Int >= 0
	case Literal:
		return len(x.Text) == 1 && isASCIILetter(x.Text[0])
	}
	return false
}

func consecutive(a, b Value) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		return ok && y.Int == x.Int+1
	case HexNum:
		y, ok := b.(HexNum)
		return ok && y.Int == x.Int+1
	case Literal:
		y, ok := b.(Literal)
		return ok && len(x.Text) == 1 && len(y.Text) == 1 && y.Text[0] == x.Text[0]+1
	}
	return false
}

func formatList(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func serializeItems(items []Value, opts codec.Options) ([]byte, error) {
	itemOpts := opts
	itemOpts.Size = 0
	var out []byte
	for i, item := range items {
		s, ok := item.(Serializer)
		if !ok {
			return nil, fmt.Errorf("item %d of type %s cannot be serialized", i, item.Type())
		}
		b, err := s.Serialize(itemOpts)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, b...)
	}
	return codec.Pad(out, opts)
}

// Quote renders text as an RPL string literal.
func Quote(text string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func isASCIILetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// AsInt extracts an integer from Number and HexNum values.
func AsInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case Number:
		return x.Int, true
	case HexNum:
		return x.Int, true
	case interface{ Int64() int64 }:
		return x.Int64(), true
	}
	return 0, false
}

// AsText extracts text from String and Literal values.
func AsText(v Value) (string, bool) {
	switch x := v.(type) {
	case String:
		return x.Text, true
	case Literal:
		return x.Text, true
	}
	return "", false
}

// PlainText returns the unquoted text of v: the content of strings and
// literals, the payload of custom values whose Get returns a string, or the
// source form otherwise.
func PlainText(v Value) string {
	if text, ok := AsText(v); ok {
		return text
	}
	if text, ok := v.Get().(string); ok {
		return text
	}
	return v.String()
}

// Equal reports whether two values have the same type and content.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	as, aok := a.(Sequence)
	bs, bok := b.(Sequence)
	if aok && bok {
		ai, bi := as.Elements(), bs.Elements()
		if len(ai) != len(bi) {
			return false
		}
		for i := range ai {
			if !Equal(ai[i], bi[i]) {
				return false
			}
		}
		return true
	}
	return a.String() == b.String()
}
