package bin

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/value"
)

// TypeName is the name of the bin value type.
const TypeName = "bin"

// Value is a run of opaque bytes. Its text form is a hex string.
type Value struct {
	Data []byte
}

func (v Value) Type() string   { return TypeName }
func (v Value) Get() any       { return hex.EncodeToString(v.Data) }
func (v Value) String() string { return value.Quote(hex.EncodeToString(v.Data)) }
func (v Value) Bytes() []byte  { return v.Data }

func (v Value) Serialize(opts codec.Options) ([]byte, error) {
	return codec.Pad(v.Data, opts)
}

// Type is the bin value type.
type Type struct{}

func (Type) Name() string { return TypeName }
func (Type) Base() string { return "" }

func (Type) Parse(text string) (value.Value, error) {
	clean := strings.Join(strings.Fields(text), "")
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%q is not a hex string: %w", text, err)
	}
	return Value{Data: data}, nil
}

func (Type) Unserialize(data []byte, opts codec.Options) (value.Value, error) {
	return Value{Data: append([]byte(nil), data...)}, nil
}

// Coerce accepts hex strings and lists of byte values.
func (t Type) Coerce(v value.Value) (value.Value, bool) {
	if text, ok := value.AsText(v); ok {
		out, err := t.Parse(text)
		return out, err == nil
	}
	seq, ok := v.(value.Sequence)
	if !ok {
		return nil, false
	}
	data := make([]byte, 0, len(seq.Elements()))
	for _, item := range seq.Elements() {
		n, ok := value.AsInt(item)
		if !ok || n < 0 || n > 0xff {
			return nil, false
		}
		data = append(data, byte(n))
	}
	return Value{Data: data}, true
}
