package extern

import (
	"errors"

	"github.com/specialistvlad/rplkit/internal/value"
)

var errTextSections = errors.New("the txt form cannot hold more than one struct per file")

// Text stores the single string field Key as the raw file contents.
type Text struct {
	Key string
}

func (Text) Form() Form { return FormText }

func (c Text) Encode(rec *Record) ([]byte, error) {
	e, ok := rec.Lookup(c.Key)
	if !ok || e.Repeated {
		return nil, errors.New("the txt form needs a value for " + c.Key)
	}
	return []byte(value.PlainText(e.Value)), nil
}

func (c Text) Decode(data []byte) (*Record, error) {
	rec := &Record{}
	rec.Set(c.Key, value.String{Text: string(data)})
	return rec, nil
}

func (Text) EncodeSections([]Section) ([]byte, error) { return nil, errTextSections }
func (Text) DecodeSections([]byte) ([]Section, error) { return nil, errTextSections }
