package extern

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/rpl"
)

// RPL stores records as RPL text. A single record is a bare body of
// `key: value` lines; sections are Static structs named after their owner.
// Sub-record lists are written positionally as lists of lists.
type RPL struct {
	Registry *registry.Registry
}

func (*RPL) Form() Form { return FormRPL }

func (c *RPL) Encode(rec *Record) ([]byte, error) {
	var sb strings.Builder
	writeBody(&sb, rec, "")
	return []byte(sb.String()), nil
}

func (c *RPL) Decode(data []byte) (*Record, error) {
	root, err := rpl.ParseBody(context.Background(), c.Registry, "", data)
	if err != nil {
		return nil, err
	}
	return StructRecord(root), nil
}

func (c *RPL) EncodeSections(secs []Section) ([]byte, error) {
	var sb strings.Builder
	for i, sec := range secs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %s {\n", registry.StaticType, sec.Name)
		writeBody(&sb, sec.Record, "\t")
		sb.WriteString("}\n")
	}
	return []byte(sb.String()), nil
}

func (c *RPL) DecodeSections(data []byte) ([]Section, error) {
	doc, err := rpl.Parse(context.Background(), c.Registry, "", data)
	if err != nil {
		return nil, err
	}
	var secs []Section
	for _, s := range doc.Structs() {
		secs = append(secs, Section{Name: s.Name, Record: StructRecord(s)})
	}
	return secs, nil
}

func writeBody(sb *strings.Builder, rec *Record, indent string) {
	for _, e := range rec.Entries {
		sb.WriteString(indent)
		sb.WriteString(e.Key)
		sb.WriteString(": ")
		if e.Repeated {
			sub := &Record{Entries: []Entry{e}}
			sb.WriteString(sub.Positional().Items[0].String())
		} else {
			sb.WriteString(e.Value.String())
		}
		sb.WriteByte('\n')
	}
}

// StructRecord returns the keys of s as a record, in source order and
// unresolved.
func StructRecord(s *rpl.Struct) *Record {
	rec := &Record{}
	for _, key := range s.Keys() {
		sl, _ := s.Raw(key)
		rec.Set(key, sl.Value)
	}
	return rec
}
