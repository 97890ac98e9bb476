package extern

import (
	"fmt"

	"github.com/specialistvlad/rplkit/internal/registry"
)

// Form names an external representation.
type Form string

const (
	FormRPL  Form = "rpl"
	FormJSON Form = "json"
	FormYAML Form = "yaml"
	FormText Form = "txt"
)

// ParseForm validates a form name.
func ParseForm(s string) (Form, error) {
	switch f := Form(s); f {
	case FormRPL, FormJSON, FormYAML, FormText:
		return f, nil
	case "yml":
		return FormYAML, nil
	}
	return "", fmt.Errorf("unknown form %q, expected one of rpl, json, yaml, txt", s)
}

// Ext returns the file extension used for the form, with the dot.
func (f Form) Ext() string {
	return "." + string(f)
}

// Codec encodes records in one form.
type Codec interface {
	Form() Form
	Encode(rec *Record) ([]byte, error)
	Decode(data []byte) (*Record, error)
	EncodeSections(secs []Section) ([]byte, error)
	DecodeSections(data []byte) ([]Section, error)
}

// NewCodec returns the codec for form. reg resolves statics when RPL text is
// read back. textKey names the single field the flat text form holds.
func NewCodec(form Form, reg *registry.Registry, textKey string) (Codec, error) {
	switch form {
	case FormRPL:
		return &RPL{Registry: reg}, nil
	case FormJSON:
		return JSON{}, nil
	case FormYAML:
		return YAML{}, nil
	case FormText:
		if textKey == "" {
			return nil, fmt.Errorf("the txt form needs exactly one string field")
		}
		return Text{Key: textKey}, nil
	}
	return nil, fmt.Errorf("unknown form %q", form)
}
