// Package extern converts the field values of a Data struct to and from the
// files a user edits: RPL text, JSON, YAML or flat text.
//
// Every form encodes the same model: a Record is an ordered list of entries,
// each either a single value or a list of sub-records produced by a
// repeating sub-format. Shared files hold several named sections, one per
// struct writing to them.
package extern

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/rplkit/internal/value"
)

// Record is the external form of one struct's field values.
type Record struct {
	Entries []Entry
}

// Entry is one field of a record. Records is used instead of Value when
// Repeated is set.
type Entry struct {
	Key      string
	Value    value.Value
	Records  []*Record
	Repeated bool
}

// Set adds or replaces a single value entry.
func (r *Record) Set(key string, v value.Value) {
	r.put(Entry{Key: key, Value: v})
}

// SetRecords adds or replaces a sub-record list entry.
func (r *Record) SetRecords(key string, recs []*Record) {
	r.put(Entry{Key: key, Records: recs, Repeated: true})
}

func (r *Record) put(e Entry) {
	for i := range r.Entries {
		if r.Entries[i].Key == e.Key {
			r.Entries[i] = e
			return
		}
	}
	r.Entries = append(r.Entries, e)
}

// Lookup returns the entry for key.
func (r *Record) Lookup(key string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys returns the entry keys in order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Positional renders the record as a list of its values in entry order,
// with sub-record lists nested the same way.
func (r *Record) Positional() value.List {
	items := make([]value.Value, len(r.Entries))
	for i, e := range r.Entries {
		if !e.Repeated {
			items[i] = e.Value
			continue
		}
		subs := make([]value.Value, len(e.Records))
		for j, sub := range e.Records {
			subs[j] = sub.Positional()
		}
		items[i] = value.List{Items: subs}
	}
	return value.List{Items: items}
}

// FromPositional builds a record from a positional list, naming the items
// with keys.
func FromPositional(keys []string, v value.Value) (*Record, error) {
	seq, ok := v.(value.Sequence)
	if !ok {
		return nil, fmt.Errorf("expected a list of %d values, got %s", len(keys), v)
	}
	items := seq.Elements()
	if len(items) != len(keys) {
		return nil, fmt.Errorf("expected %d values (%s), got %d", len(keys), strings.Join(keys, ", "), len(items))
	}
	rec := &Record{}
	for i, key := range keys {
		rec.Set(key, items[i])
	}
	return rec, nil
}

// Section is a named record inside a shared file.
type Section struct {
	Name   string
	Record *Record
}
