package std

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Bool is a truth value packed as an integer. N keeps the stored integer
// so that values other than 0 and 1 pack back unchanged.
type Bool struct {
	N int64
}

func (v Bool) Type() string { return "bool" }
func (v Bool) Get() any     { return v.N != 0 }

// String spells 0 and 1 as false and true; any other value stays a number.
func (v Bool) String() string {
	switch v.N {
	case 0:
		return "false"
	case 1:
		return "true"
	}
	return strconv.FormatInt(v.N, 10)
}

func (v Bool) Int64() int64 { return v.N }

func (v Bool) Serialize(opts codec.Options) ([]byte, error) {
	return codec.EncodeInt(v.N, opts)
}

// BoolType is a subtype of number.
type BoolType struct{}

func (BoolType) Name() string { return "bool" }
func (BoolType) Base() string { return value.TypeNumber }

func (BoolType) Parse(text string) (value.Value, error) {
	switch text {
	case "true":
		return Bool{N: 1}, nil
	case "false":
		return Bool{}, nil
	}
	n, err := value.NumberType{}.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%q is not a bool", text)
	}
	i, _ := value.AsInt(n)
	return Bool{N: i}, nil
}

func (BoolType) Unserialize(data []byte, opts codec.Options) (value.Value, error) {
	n, err := codec.DecodeInt(data, opts)
	if err != nil {
		return nil, err
	}
	return Bool{N: n}, nil
}

func (BoolType) Coerce(v value.Value) (value.Value, bool) {
	if n, ok := value.AsInt(v); ok {
		return Bool{N: n}, true
	}
	return nil, false
}
