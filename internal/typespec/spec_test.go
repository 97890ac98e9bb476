package typespec

import (
	"testing"

	"github.com/specialistvlad/rplkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTypes map[string]value.Type

func (tt testTypes) ValueType(name string) (value.Type, bool) {
	t, ok := tt[name]
	return t, ok
}

func builtins() testTypes {
	tt := testTypes{}
	for _, t := range value.Builtins() {
		tt[t.Name()] = t
	}
	return tt
}

type fakeRef struct{}

func (fakeRef) Type() string   { return value.TypeReference }
func (fakeRef) Get() any       { return nil }
func (fakeRef) String() string { return "@x" }

func num(n int64) value.Value           { return value.Number{Int: n} }
func str(s string) value.Value          { return value.String{Text: s} }
func lit(s string) value.Value          { return value.Literal{Text: s} }
func list(v ...value.Value) value.Value { return value.NewList(v...) }

func TestCompile(t *testing.T) {
	testCases := []struct {
		grammar string
		want    string
	}{
		{"number", "number"},
		{"number|string", "number|string"},
		{"[number, string]+1", "[number,string]+1"},
		{"[number]*", "[number]*"},
		{"literal:(little, big)", "literal:(little,big)"},
		{"[range|^]~", "[range|^]~"},
		{"[]", "[]"},
		{"[[number,number]]*0", "[[number,number]]*0"},
	}

	for _, tc := range testCases {
		t.Run(tc.grammar, func(t *testing.T) {
			s, err := Compile(tc.grammar)
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.format())
			assert.Equal(t, tc.grammar, s.String())
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	testCases := []string{
		"",
		"[number",
		"number,",
		"^",
		"[number]+3",
		"[number]*1",
		"[]+",
		"literal:(a",
		"literal:()",
		"number||string",
	}

	for _, grammar := range testCases {
		t.Run(grammar, func(t *testing.T) {
			_, err := Compile(grammar)
			require.Error(t, err)
			var specErr *Error
			assert.ErrorAs(t, err, &specErr)
		})
	}
}

func TestVerify(t *testing.T) {
	types := builtins()
	testCases := []struct {
		name    string
		grammar string
		in      value.Value
		want    value.Value // nil means no match
	}{
		{"atom match", "number", num(1), num(1)},
		{"atom mismatch", "number", str("a"), nil},
		{"hexnum is a number", "number", value.HexNum{Int: 5}, value.HexNum{Int: 5}},
		{"number coerced to hexnum", "hexnum", num(5), value.HexNum{Int: 5}},
		{"literal is a string", "string", lit("abc"), lit("abc")},
		{"string coerced to literal", "literal", str("abc"), lit("abc")},
		{"all", "all", list(num(1)), list(num(1))},
		{"allowed", "literal:(little,big)", lit("big"), lit("big")},
		{"not allowed", "literal:(little,big)", lit("middle"), nil},
		{"allowed numbers", "number:(1,$10)", num(16), num(16)},
		{"or first wins", "number|hexnum", num(3), num(3)},
		{"or second", "string|number", num(3), num(3)},
		{"plain list", "[number,string]", list(num(1), str("a")), list(num(1), str("a"))},
		{"plain list wrong count", "[number,string]", list(num(1)), nil},
		{"plain list wrong child", "[number,string]", list(str("a"), str("a")), nil},
		{"plus repeats", "[number,string]+", list(num(1), str("a"), num(2), str("b")), list(num(1), str("a"), num(2), str("b"))},
		{"plus partial", "[number,string]+", list(num(1), str("a"), num(2)), nil},
		{"plus needs one", "[number]+", list(), nil},
		{"plus last n", "[string,number]+1", list(str("a"), num(1), num(2), num(3)), list(str("a"), num(1), num(2), num(3))},
		{"plus last n needs one", "[string,number]+1", list(str("a")), nil},
		{"star standalone", "[number]*", num(1), list(num(1))},
		{"star empty", "[number]*", list(), list()},
		{"star repeated", "[number]*", list(num(1), num(2)), list(num(1), num(2))},
		{"star standalone pair", "[[number,number]]*", list(num(1), num(2)), list(list(num(1), num(2)))},
		{"star repeated pairs", "[[number,number]]*", list(list(num(1), num(2)), list(num(3), num(4))), list(list(num(1), num(2)), list(num(3), num(4)))},
		{"star index", "[number,string]*1", str("x"), list(str("x"))},
		{"star index rejects others", "[number,string]*1", num(1), nil},
		{"loose star", "[number]~", num(1), num(1)},
		{"one standalone", "[number]!", num(1), list(num(1))},
		{"one full list", "[number,number]!", list(num(1), num(2)), list(num(1), num(2))},
		{"one rejects repeats", "[number,number]!", list(num(1), num(2), num(3), num(4)), nil},
		{"loose one", "[number].", num(7), num(7)},
		{"recursion", "[number|^]+", list(num(1), list(num(2), list(num(3)))), list(num(1), list(num(2), list(num(3))))},
		{"recursion needs smaller input", "[number|^]*", str("a"), nil},
		{"range kept", "[number]+", value.Range{Items: []value.Value{num(1), num(2)}}, value.Range{Items: []value.Value{num(1), num(2)}}},
		{"list coerced to range", "range", list(num(1), lit("a")), value.Range{Items: []value.Value{num(1), lit("a")}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Compile(tc.grammar)
			require.NoError(t, err)

			got, ok := Verify(s, tc.in, types)
			if tc.want == nil {
				assert.False(t, ok, "expected no match, got %v", got)
				return
			}
			require.True(t, ok, "expected a match")
			assert.True(t, value.Equal(tc.want, got), "want %v, got %v", tc.want, got)

			again, ok := Verify(s, tc.in, types)
			require.True(t, ok)
			assert.True(t, value.Equal(got, again), "verify must be deterministic")
		})
	}
}

func TestVerify_ReferenceAlwaysMatches(t *testing.T) {
	s := MustCompile("[number,string]")
	got, ok := Verify(s, fakeRef{}, builtins())
	require.True(t, ok)
	assert.Equal(t, fakeRef{}, got)

	got, ok = Verify(s, list(fakeRef{}, str("a")), builtins())
	require.True(t, ok)
	assert.Equal(t, "[@x, \"a\"]", got.String())
}

func TestSpecHelpers(t *testing.T) {
	s := MustCompile("[number,string|hexnum]+1|literal")
	assert.True(t, s.IsList())
	assert.Equal(t, []string{"number", "string", "hexnum", "literal"}, s.TypeNames())
	assert.False(t, MustCompile("number").IsList())
}
