package refpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectErr bool
		expected  *Path
	}{
		{
			name:     "named struct",
			raw:      "header",
			expected: &Path{Kind: Named, Name: "header"},
		},
		{
			name:     "named key with indices",
			raw:      "@header.size[0][15]",
			expected: &Path{Kind: Named, Name: "header", Key: "size", Indices: []int{0, 15}},
		},
		{
			name:     "this",
			raw:      "this.count",
			expected: &Path{Kind: This, Key: "count"},
		},
		{
			name:     "grandparent",
			raw:      "parentparent.endian",
			expected: &Path{Kind: Parent, Up: 2, Key: "endian"},
		},
		{
			name:     "back",
			raw:      "back.x",
			expected: &Path{Kind: Back, Back: 1, Key: "x"},
		},
		{
			name:     "back then parents",
			raw:      "backback_parentparent.x[1]",
			expected: &Path{Kind: Back, Back: 2, Up: 2, Key: "x", Indices: []int{1}},
		},
		{
			name:     "struct name with dash",
			raw:      "tile-set",
			expected: &Path{Kind: Named, Name: "tile-set"},
		},
		{name: "error - empty", raw: "", expectErr: true},
		{name: "error - bare at", raw: "@", expectErr: true},
		{name: "error - two keys", raw: "a.b.c", expectErr: true},
		{name: "error - empty key", raw: "a.", expectErr: true},
		{name: "error - bad index", raw: "a[x]", expectErr: true},
		{name: "error - unclosed index", raw: "a[1", expectErr: true},
		{name: "error - leading dash", raw: "-a", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.raw)

			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, p)
			assert.True(t, tc.expected.Equal(p), "parsed %+v, expected %+v", p, tc.expected)
		})
	}
}

func TestPath_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		"a.b",
		"rom.size[0][1]",
		"this",
		"parent.x",
		"parentparentparent",
		"back_parent.y[2]",
		"backback",
	} {
		t.Run(raw, func(t *testing.T) {
			p, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestPath_Equal(t *testing.T) {
	a, _ := Parse("a.b[0]")
	b, _ := Parse("a.b[0]")
	c, _ := Parse("a.b[1]")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*Path)(nil).Equal(nil))
	assert.True(t, a.HasKey())
	assert.False(t, a.IsRelative())
}
