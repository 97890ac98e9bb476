package syntax

import (
	"fmt"
	"strings"
)

// Kind is the lexical class of a token.
type Kind uint8

const (
	EOF       Kind = iota
	String         // "quoted text"
	Number         // 12, $1f, 1-5, 0*4, a-c:9
	Key            // name:
	Flow           // { } [ ] ,
	Reference      // @Struct.key[0]
	Literal        // bare word

	kindCount
)

var kindNames = [...]string{
	EOF:       "EOF",
	String:    "string",
	Number:    "number",
	Key:       "key",
	Flow:      "flow",
	Reference: "reference",
	Literal:   "literal",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ScalarKind is the type of one element of a number chain.
type ScalarKind uint8

const (
	ScalarNumber ScalarKind = iota // decimal
	ScalarHex                      // $hex
	ScalarLetter                   // single letter inside a range
)

// Scalar is a single flattened element of a number or range token.
type Scalar struct {
	Kind ScalarKind
	Int  int64 // numeric value for ScalarNumber and ScalarHex
	Char rune  // letter for ScalarLetter
}

func (s Scalar) String() string {
	switch s.Kind {
	case ScalarHex:
		return fmt.Sprintf("$%x", s.Int)
	case ScalarLetter:
		return string(s.Char)
	}
	return fmt.Sprintf("%d", s.Int)
}

// Token is one lexical unit of RPL source.
type Token struct {
	Kind Kind
	Pos  Pos

	// Text holds the decoded payload: string contents, key name without the
	// colon, literal word, reference path without the '@', or the flow
	// character.
	Text string

	// Scalars holds the flattened elements of a Number token.
	Scalars []Scalar

	// Chain is set when a Number token used a range operator and therefore
	// denotes a Range rather than a single number.
	Chain bool
}

// Is reports whether t is the flow token ch.
func (t Token) Is(ch byte) bool {
	return t.Kind == Flow && len(t.Text) == 1 && t.Text[0] == ch
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case String:
		return fmt.Sprintf("%q", t.Text)
	case Key:
		return t.Text + ":"
	case Reference:
		return "@" + t.Text
	case Number:
		parts := make([]string, len(t.Scalars))
		for i, s := range t.Scalars {
			parts[i] = s.String()
		}
		return strings.Join(parts, ":")
	}
	return t.Text
}
