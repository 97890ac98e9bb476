package rpl

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/rplkit/internal/syntax"
	"github.com/specialistvlad/rplkit/internal/typespec"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Error attaches a source position and the offending struct and key to an
// underlying failure.
type Error struct {
	Pos    syntax.Pos
	Struct string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	switch {
	case e.Struct != "" && e.Key != "":
		fmt.Fprintf(&sb, "%s.%s: ", e.Struct, e.Key)
	case e.Struct != "":
		fmt.Fprintf(&sb, "%s: ", e.Struct)
	case e.Key != "":
		fmt.Fprintf(&sb, "%s: ", e.Key)
	}
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TypeMismatchError reports a value that does not match a key's grammar.
type TypeMismatchError struct {
	Value value.Value
	Spec  *typespec.Spec
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value %s does not match type %s", e.Value.String(), e.Spec.String())
}

// ReferenceError reports a reference that cannot be resolved or assigned.
type ReferenceError struct {
	Ref string
	Msg string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference @%s: %s", e.Ref, e.Msg)
}

// MissingKeysError lists required keys without a value after bubbling and
// defaulting.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return "Missing keys: " + strings.Join(e.Keys, ", ")
}
