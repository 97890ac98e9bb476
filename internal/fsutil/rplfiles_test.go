package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"b.rpl",
		"a.RPL",
		"notes.txt",
		"maps/world.rpl",
		".git/stale.rpl",
		"single.desc",
	)
	rel := func(names ...string) []string {
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = filepath.Join(dir, n)
		}
		return out
	}

	testCases := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "directory",
			paths: rel("."),
			want:  rel("a.RPL", "b.rpl", "maps/world.rpl"),
		},
		{
			name:  "explicit file with another extension",
			paths: rel("single.desc"),
			want:  rel("single.desc"),
		},
		{
			name:  "duplicates are dropped",
			paths: rel("b.rpl", "maps", "maps/world.rpl"),
			want:  rel("b.rpl", "maps/world.rpl"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Collect(tc.paths, ".rpl")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCollect_MissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := Collect([]string{missing}, ".rpl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing path "+missing)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
