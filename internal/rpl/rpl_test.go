package rpl

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/rplkit/internal/refpath"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore owns the key "live" of the struct it is bound to.
type memStore struct {
	bound *Struct
	live  value.Value
}

func (m *memStore) Bind(s *Struct) error {
	m.bound = s
	return nil
}

func (m *memStore) OwnsField(key string) bool {
	return key == "live"
}

func (m *memStore) FieldValue(key string) (value.Slot, bool) {
	if m.live == nil {
		return value.Slot{}, false
	}
	return value.Slot{Value: m.live, Source: value.Sourced}, true
}

func (m *memStore) SetFieldValue(key string, v value.Value, src value.Source) error {
	m.live = v
	return nil
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	r.RegisterStruct(&registry.StructDef{
		Name:     "Root",
		TopLevel: true,
		Children: []string{"Block"},
		Keys: []*registry.KeyDef{
			{Name: "endian", Type: "literal:(little,big)", Default: value.Literal{Text: "little"}},
			{Name: "size", Type: "number", Default: value.Number{Int: 0}},
			{Name: "tags", Type: "[string]*", Default: value.List{}},
		},
	})
	r.RegisterStruct(&registry.StructDef{
		Name:     "Block",
		Children: []string{"Block"},
		Keys: []*registry.KeyDef{
			{Name: "endian", Type: "literal:(little,big)", Default: value.Literal{Text: "big"}},
			{Name: "base", Type: "number", Default: value.Number{Int: 0}, NoBubble: true},
			{Name: "size", Type: "number"},
			{Name: "data", Type: "all", Default: value.Number{Int: 0}},
		},
		Basic: "size",
	})
	r.RegisterStruct(&registry.StructDef{
		Name:     "Rec",
		TopLevel: true,
		AnyKey:   true,
		New:      func() any { return &memStore{} },
	})
	require.NoError(t, r.Validate(context.Background()))
	return r
}

func parse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(context.Background(), newRegistry(t), "test.rpl", []byte(src))
	require.NoError(t, err)
	return doc
}

func lookup(t *testing.T, doc *Document, name string) *Struct {
	t.Helper()
	s, ok := doc.Lookup(name)
	require.True(t, ok, "struct %s", name)
	return s
}

func TestParse_Tree(t *testing.T) {
	doc := parse(t, `
Root main {
	endian: little
	tags: "a"
	tags: ["b", "c"]
	Block {
		size: 4
		Block inner {
			size: $10
		}
	}
}
`)
	require.Len(t, doc.Structs(), 1)
	main := lookup(t, doc, "main")
	assert.False(t, main.Generated)
	require.Len(t, main.Children(), 1)

	block := main.Children()[0]
	assert.Equal(t, "block1", block.Name)
	assert.True(t, block.Generated)
	assert.Same(t, main, block.Parent())

	inner := lookup(t, doc, "inner")
	assert.Same(t, block, inner.Parent())
	size, err := inner.Get("size")
	require.NoError(t, err)
	assert.Equal(t, value.HexNum{Int: 16}, size)

	tags, ok := main.Raw("tags")
	require.True(t, ok)
	assert.Equal(t, `["a", "b", "c"]`, tags.Value.String())
	assert.Equal(t, value.Set, tags.Source)
	assert.Equal(t, []string{"endian", "tags"}, main.Keys())

	assert.Equal(t, uint32(2), main.Pos.Line())
}

func TestDocument_All(t *testing.T) {
	doc := parse(t, `
Root a { Block b { size: 1 Block c { size: 2 } } Block d { size: 3 } }
Rec e {}
`)
	var names []string
	for _, s := range doc.All() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names)

	var visited []string
	stop := errors.New("stop")
	err := doc.Walk(func(s *Struct) error {
		visited = append(visited, s.Name)
		if s.Name == "c" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a", "b", "c"}, visited)
}

func TestParse_KeyValueBeforeChild(t *testing.T) {
	doc := parse(t, "Root r { endian: little Block b { size: 1 } size: true }")
	r := lookup(t, doc, "r")

	endian, err := r.Text("endian")
	require.NoError(t, err)
	assert.Equal(t, "little", endian)

	size, err := r.Int("size")
	require.NoError(t, err)
	assert.Equal(t, int64(1), size, "true is a static")
	assert.Len(t, r.Children(), 1)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"unclosed struct", "Root {", "unclosed struct Root root1"},
		{"undefined key", "Root { x: 1 }", `undefined key "x" on Root`},
		{"child not allowed", "Block {}", "Block is not allowed in the document"},
		{"key without value", "Root { endian: }", "key endian has no value"},
		{"unclosed list", "Root { tags: [\"a\" }", "unclosed list"},
		{"duplicate name", "Root a {} Root a {}", `struct name "a" is already in use`},
		{"long head", "Root a b {}", "struct head has more than two words"},
		{"duplicate key", "Root { size: 1 size: 2 }", "key size is already set"},
		{"type mismatch", `Root { size: "x" }`, `value "x" does not match type number`},
		{"not allowed value", "Root { endian: middle }", "does not match type literal:(little,big)"},
		{"stray bracket", "Root { ] }", "unexpected ]"},
		{"stray brace", "}", "unexpected }"},
		{"key outside struct", "x: 1", "key x outside of a struct"},
		{"unused number", "Root { 5 }", "unused value 5"},
		{"unused literal", "Root { size: 1 stray }", "unused value stray"},
		{"key in list", "Root { tags: [endian: 1] }", "key endian inside a list"},
		{"bound head", "Root { size: Block {} }", "struct head with a bound key size"},
		{"struct in list", "Root { tags: [Block {} ] }", "struct inside a list"},
		{"bad reference", "Root { size: @a.b.c }", "selects more than one key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(context.Background(), newRegistry(t), "test.rpl", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, err.Error(), "test.rpl:1:", "errors carry a position")
		})
	}
}

func TestParse_UndefinedKeyIsTyped(t *testing.T) {
	_, err := Parse(context.Background(), newRegistry(t), "test.rpl", []byte("Root r { x: 1 }"))
	var undef *registry.UndefinedError
	require.True(t, errors.As(err, &undef))
	assert.Equal(t, "key", undef.Kind)

	var located *Error
	require.True(t, errors.As(err, &located))
	assert.Equal(t, "r", located.Struct)
}

func TestLookup_Bubbling(t *testing.T) {
	doc := parse(t, `
Root withEndian {
	endian: little
	Block b {
		size: 1
		base: 5
		Block c { size: 2 }
	}
}
Root plain {
	Block d { size: 3 }
}
`)
	b := lookup(t, doc, "b")
	c := lookup(t, doc, "c")
	d := lookup(t, doc, "d")

	testCases := []struct {
		name   string
		s      *Struct
		key    string
		want   value.Value
		source value.Source
	}{
		{"inherited from grandparent", c, "endian", value.Literal{Text: "little"}, value.Inherited},
		{"inherited from parent", b, "endian", value.Literal{Text: "little"}, value.Inherited},
		{"defaulted", d, "endian", value.Literal{Text: "big"}, value.Defaulted},
		{"no bubble", c, "base", value.Number{Int: 0}, value.Defaulted},
		{"local", b, "base", value.Number{Int: 5}, value.Set},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sl, ok := tc.s.Lookup(tc.key)
			require.True(t, ok)
			assert.Equal(t, tc.want, sl.Value)
			assert.Equal(t, tc.source, sl.Source)
		})
	}
}

func TestLookup_InheritedCacheInvalidation(t *testing.T) {
	doc := parse(t, "Root r { endian: little Block b { size: 1 Block c { size: 2 } } }")
	r, b, c := lookup(t, doc, "r"), lookup(t, doc, "b"), lookup(t, doc, "c")

	sl, _ := c.Lookup("endian")
	assert.Equal(t, "little", sl.Value.String())

	require.NoError(t, r.Set("endian", value.Literal{Text: "big"}, value.Set))
	sl, _ = c.Lookup("endian")
	assert.Equal(t, "big", sl.Value.String(), "source changed")

	require.NoError(t, b.Set("endian", value.Literal{Text: "little"}, value.Set))
	sl, _ = c.Lookup("endian")
	assert.Equal(t, "little", sl.Value.String(), "nearer ancestor gained the key")
	assert.Equal(t, value.Inherited, sl.Source)
}

func TestReferences(t *testing.T) {
	doc := parse(t, `
Root r {
	size: @b.size
	Block b {
		size: @this.data[1]
		data: [7, 9]
	}
	Block c { size: @parent.size }
	Block d { size: @back.data[0] }
	Block e {
		data: [42]
		size: @d.size
	}
	Block x { size: @y.size }
	Block y { size: @x.size }
	Block shallow { size: @this.data[5] data: [1] }
	Block named { size: @b }
}
`)

	testCases := []struct {
		name    string
		target  string
		want    int64
		wantErr string
	}{
		{"index into own key", "b", 9, ""},
		{"chain", "r", 9, ""},
		{"parent chain", "c", 9, ""},
		{"back through caller", "e", 42, ""},
		{"basic value", "named", 9, ""},
		{"back without caller", "d", 0, "only 0 callers"},
		{"cycle", "x", 0, "reference cycle"},
		{"index out of range", "shallow", 0, "list not deep enough"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := lookup(t, doc, tc.target).Int("size")
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				var refErr *ReferenceError
				assert.True(t, errors.As(err, &refErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReference_Assign(t *testing.T) {
	doc := parse(t, `
Root r {
	Block g { size: 1 data: [1, 2] }
	Block h { size: @g.size }
}
`)
	g := lookup(t, doc, "g")

	path, err := refpath.Parse("g.data[1]")
	require.NoError(t, err)
	require.NoError(t, NewReference(doc, path, nil, "").Assign(value.Number{Int: 5}, nil))
	sl, _ := g.Raw("data")
	assert.Equal(t, "[1, 5]", sl.Value.String())
	assert.Equal(t, value.Calculated, sl.Source)

	path, err = refpath.Parse("h.size")
	require.NoError(t, err)
	require.NoError(t, NewReference(doc, path, nil, "").Assign(value.Number{Int: 8}, nil))
	n, err := g.Int("size")
	require.NoError(t, err)
	assert.Equal(t, int64(8), n, "assignment follows the stored reference")

	path, err = refpath.Parse("this.size")
	require.NoError(t, err)
	err = NewReference(doc, path, nil, "").Assign(value.Number{Int: 1}, nil)
	assert.ErrorContains(t, err, "relative reference used outside of a struct")
}

func TestFinalize(t *testing.T) {
	doc := parse(t, "Root { Block b { } }")
	err := doc.Finalize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b: Missing keys: size")
	var missing *MissingKeysError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"size"}, missing.Keys)

	doc = parse(t, "Root { size: 3 Block b { } }")
	require.NoError(t, doc.Finalize(context.Background()), "size bubbles from the parent")
}

func TestCheckReferences(t *testing.T) {
	doc := parse(t, "Root { Block b { size: @nowhere.size } Block c { size: @this.data data: 1 } }")
	err := doc.CheckReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no struct named "nowhere"`)
	assert.NotContains(t, err.Error(), "this.data")
}

func TestWrite(t *testing.T) {
	src := `Root main {
	endian: little
	tags: ["a", "b"]
	Block {
		size: $10
		data: 1-5:7
	}
	Block named {
		size: @main.size
	}
}
`
	doc := parse(t, src)

	var pretty bytes.Buffer
	require.NoError(t, doc.Write(&pretty, false))
	assert.Equal(t, src, pretty.String())

	var compact bytes.Buffer
	require.NoError(t, doc.Write(&compact, true))
	assert.Equal(t, `Root main { endian: little tags: ["a", "b"] Block { size: $10 data: 1-5:7 } Block named { size: @main.size } }`+"\n", compact.String())

	again := parse(t, compact.String())
	var roundTrip bytes.Buffer
	require.NoError(t, again.Write(&roundTrip, false))
	assert.Equal(t, src, roundTrip.String())
}

func TestParseBody(t *testing.T) {
	root, err := ParseBody(context.Background(), newRegistry(t), "body.rpl", []byte("a: 1\nb: \"x\"\nc: [1, [2, 3]]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, root.Keys())

	var out bytes.Buffer
	require.NoError(t, WriteBody(&out, root))
	assert.Equal(t, "a: 1\nb: \"x\"\nc: [1, [2, 3]]\n", out.String())

	_, err = ParseBody(context.Background(), newRegistry(t), "body.rpl", []byte("a: 1 }"))
	assert.ErrorContains(t, err, "unexpected }")
}

func TestParseValue(t *testing.T) {
	reg := newRegistry(t)
	testCases := []struct {
		text string
		want value.Value
	}{
		{"12", value.Number{Int: 12}},
		{"$ff", value.HexNum{Int: 255}},
		{`"en"`, value.String{Text: "en"}},
		{"en", value.Literal{Text: "en"}},
		{"true", value.Number{Int: 1}},
		{"[1, 2]", value.NewList(value.Number{Int: 1}, value.Number{Int: 2})},
		{"1-3", value.Range{Items: []value.Value{value.Number{Int: 1}, value.Number{Int: 2}, value.Number{Int: 3}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseValue(reg, tc.text)
			require.NoError(t, err)
			assert.True(t, value.Equal(tc.want, got), "want %v, got %v", tc.want, got)
		})
	}
}

func TestClone(t *testing.T) {
	doc := parse(t, "Root r { Block src { size: @this.data[0] data: [3] Block kid { size: @parent.size } } }")
	r, src := lookup(t, doc, "r"), lookup(t, doc, "src")

	clone, err := src.Clone(r, "copy")
	require.NoError(t, err)
	assert.Same(t, r, clone.Parent())
	assert.Len(t, r.Children(), 1, "clones are not attached")
	_, registered := doc.Lookup("copy")
	assert.False(t, registered)

	require.NoError(t, clone.Set("data", value.NewList(value.Number{Int: 9}), value.Sourced))
	n, err := clone.Int("size")
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	n, err = clone.Children()[0].Int("size")
	require.NoError(t, err)
	assert.Equal(t, int64(9), n, "child references follow the copy")

	n, err = src.Int("size")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestFieldStore(t *testing.T) {
	doc := parse(t, "Rec rec { other: 1 live: 2 }")
	rec := lookup(t, doc, "rec")
	store, ok := rec.Behavior().(*memStore)
	require.True(t, ok)
	assert.Same(t, rec, store.bound)

	_, ok = rec.Lookup("live")
	assert.False(t, ok, "owned keys do not fall back to the slot")
	decl, ok := rec.Raw("live")
	require.True(t, ok)
	assert.Equal(t, value.Number{Int: 2}, decl.Value)

	require.NoError(t, rec.Set("live", value.Number{Int: 5}, value.Sourced))
	decl, _ = rec.Raw("live")
	assert.Equal(t, value.Number{Int: 2}, decl.Value, "the behaviour owns the key")

	sl, ok := rec.Lookup("live")
	require.True(t, ok)
	assert.Equal(t, value.Sourced, sl.Source)
	assert.Equal(t, value.Number{Int: 5}, sl.Value)
}

func TestCheckReferences_OwnedKey(t *testing.T) {
	doc := parse(t, "Rec rec { live: 2 } Rec other { x: @rec.live }")
	require.NoError(t, doc.CheckReferences(), "owned keys have no value until data moves")

	other := lookup(t, doc, "other")
	_, err := other.Get("x")
	assert.Error(t, err)
}
