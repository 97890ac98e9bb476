package project_files

import (
	"testing"

	"github.com/specialistvlad/rplkit/internal/app"
	"github.com/specialistvlad/rplkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProjectFile validates that a project file supplies the paths and
// defines, and that command line settings win over it.
func TestProjectFile(t *testing.T) {
	t.Parallel()
	project := testutil.Unindent(`
		rom    = "game.min"
		rpl    = "rpl"
		folder = "export"
		form   = "json"
		defines = {
		  width = 2
		  label = "hdr"
		}
	`)
	rpl := "Data header { file: label a: [number, width] }\n"
	files := map[string][]byte{
		"rplkit.hcl":   []byte(project),
		"rpl/game.rpl": []byte(rpl),
		"game.min":     {0x01, 0x02},
	}

	testCases := []struct {
		name     string
		cfg      app.Config
		wantFile string
		want     string
	}{
		{
			name:     "project only",
			cfg:      app.Config{},
			wantFile: "export/hdr.json",
			want:     "{\n  \"a\": 513\n}\n",
		},
		{
			name:     "cli overrides",
			cfg:      app.Config{Folder: "cli", Form: "yaml", Defines: []string{"width=1"}},
			wantFile: "cli/hdr.yaml",
			want:     "a: 1\n",
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := tc.cfg
			cfg.Command = app.CommandExport
			cfg.Project = "rplkit.hcl"
			result := testutil.RunIntegrationTest(t, files, cfg)
			require.NoError(t, result.Err)
			testutil.AssertFile(t, result, tc.wantFile, tc.want)
		})
	}
}

func TestProjectFile_Defines(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"rplkit.hcl": []byte("rpl = \"game.rpl\"\ndefines = { lang = \"en\" }\n"),
		"game.rpl":   []byte("Static s { l: lang }\n"),
	}
	result := testutil.RunIntegrationTest(t, files, app.Config{Command: app.CommandDump, Project: "rplkit.hcl", Compact: true})
	require.NoError(t, result.Err)
	assert.Equal(t, "Static s { l: \"en\" }\n", result.Output)
}
