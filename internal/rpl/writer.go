package rpl

import (
	"io"
	"strings"
)

// Write renders the document as RPL source. Pretty output puts every key on
// its own tab-indented line; compact output puts each top level struct on a
// single line. Generated names are omitted.
func (d *Document) Write(w io.Writer, compact bool) error {
	var sb strings.Builder
	for i, s := range d.structs {
		if i > 0 && !compact {
			sb.WriteByte('\n')
		}
		writeStruct(&sb, s, 0, compact)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteStruct renders a single struct and its children.
func WriteStruct(w io.Writer, s *Struct, compact bool) error {
	var sb strings.Builder
	writeStruct(&sb, s, 0, compact)
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteBody renders only the keys of s, one `key: value` line each.
func WriteBody(w io.Writer, s *Struct) error {
	var sb strings.Builder
	for _, key := range s.keys {
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(s.slots[key].Value.String())
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeStruct(sb *strings.Builder, s *Struct, depth int, compact bool) {
	indent := func(d int) {
		if !compact {
			sb.WriteString(strings.Repeat("\t", d))
		}
	}
	sep := func() {
		if compact {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte('\n')
		}
	}

	indent(depth)
	sb.WriteString(s.Type)
	if !s.Generated {
		sb.WriteByte(' ')
		sb.WriteString(s.Name)
	}
	sb.WriteString(" {")
	sep()
	for _, key := range s.keys {
		indent(depth + 1)
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(s.slots[key].Value.String())
		sep()
	}
	for _, child := range s.children {
		writeStruct(sb, child, depth+1, compact)
		sep()
	}
	indent(depth)
	sb.WriteByte('}')
}
