package extern

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/specialistvlad/rplkit/internal/value"
)

// JSON stores records as JSON objects. Keys come out sorted.
type JSON struct{}

func (JSON) Form() Form { return FormJSON }

func (JSON) Encode(rec *Record) ([]byte, error) {
	return marshalJSON(recordCty(rec))
}

func (JSON) Decode(data []byte) (*Record, error) {
	cv, err := unmarshalJSON(data)
	if err != nil {
		return nil, err
	}
	return ctyRecord(cv)
}

func (JSON) EncodeSections(secs []Section) ([]byte, error) {
	attrs := make(map[string]cty.Value, len(secs))
	for _, sec := range secs {
		attrs[sec.Name] = recordCty(sec.Record)
	}
	return marshalJSON(cty.ObjectVal(attrs))
}

func (JSON) DecodeSections(data []byte) ([]Section, error) {
	cv, err := unmarshalJSON(data)
	if err != nil {
		return nil, err
	}
	if !cv.Type().IsObjectType() {
		return nil, fmt.Errorf("expected an object of sections, got %s", cv.Type().FriendlyName())
	}
	var secs []Section
	for it := cv.ElementIterator(); it.Next(); {
		k, v := it.Element()
		rec, err := ctyRecord(v)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", k.AsString(), err)
		}
		secs = append(secs, Section{Name: k.AsString(), Record: rec})
	}
	return secs, nil
}

func marshalJSON(cv cty.Value) ([]byte, error) {
	raw, err := ctyjson.Marshal(cv, cv.Type())
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func unmarshalJSON(data []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(data, ty)
}

func recordCty(rec *Record) cty.Value {
	if len(rec.Entries) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(rec.Entries))
	for _, e := range rec.Entries {
		if !e.Repeated {
			attrs[e.Key] = value.ToCty(e.Value)
			continue
		}
		if len(e.Records) == 0 {
			attrs[e.Key] = cty.EmptyTupleVal
			continue
		}
		subs := make([]cty.Value, len(e.Records))
		for i, sub := range e.Records {
			subs[i] = recordCty(sub)
		}
		attrs[e.Key] = cty.TupleVal(subs)
	}
	return cty.ObjectVal(attrs)
}

func ctyRecord(cv cty.Value) (*Record, error) {
	ty := cv.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", ty.FriendlyName())
	}
	rec := &Record{}
	for it := cv.ElementIterator(); it.Next(); {
		k, v := it.Element()
		key := k.AsString()
		if subs, ok, err := ctyRecords(v); ok {
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			rec.SetRecords(key, subs)
			continue
		}
		item, err := value.FromCty(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		rec.Set(key, item)
	}
	return rec, nil
}

// ctyRecords reports whether cv is a non-empty sequence of objects and
// converts it if so.
func ctyRecords(cv cty.Value) ([]*Record, bool, error) {
	ty := cv.Type()
	if !(ty.IsTupleType() || ty.IsListType()) || cv.LengthInt() == 0 {
		return nil, false, nil
	}
	for it := cv.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if et := ev.Type(); !et.IsObjectType() && !et.IsMapType() {
			return nil, false, nil
		}
	}
	var recs []*Record
	for it := cv.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		rec, err := ctyRecord(ev)
		if err != nil {
			return nil, true, fmt.Errorf("entry %d: %w", len(recs), err)
		}
		recs = append(recs, rec)
	}
	return recs, true, nil
}
