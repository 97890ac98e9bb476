package round_trip

import (
	"os"
	"testing"

	"github.com/specialistvlad/rplkit/internal/app"
	"github.com/specialistvlad/rplkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gameRPL = testutil.Unindent(`
	Format name {
		id: [number, 1]
		text: [string, 3]
	}
	ROM {
		size: 16
		Data header {
			magic: [string, 4]
			version: [number, 1]
			flags: [bool, 1]
		}
		Data names {
			file: "text/names.yaml"
			base: $6
			count: [number, 1]
			entries: [@name, @this.count]
		}
		Bin tail { base: $f size: 1 }
	}
`)

var container = []byte{
	'R', 'P', 'L', '!', 0x03, 0x01,
	0x02, 0x01, 'a', 'b', 'c', 0x02, 'x', 'y', 0x00,
	0xff,
}

// exportedFiles runs an export and returns the files it wrote, keyed by
// their path relative to the test directory.
func exportedFiles(t *testing.T, form string) map[string][]byte {
	t.Helper()
	result := testutil.RunIntegrationTest(t,
		map[string][]byte{"game.rpl": []byte(gameRPL), "game.min": container},
		app.Config{Command: app.CommandExport, Paths: []string{"game.rpl"}, ROM: "game.min", Folder: "out", Form: form},
	)
	require.NoError(t, result.Err)
	testutil.AssertLogged(t, result, "Run finished.")

	files := map[string][]byte{"game.rpl": []byte(gameRPL)}
	for _, name := range []string{"out/header." + form, "out/text/names.yaml", "out/tail.bin"} {
		data, err := os.ReadFile(result.Path(name))
		require.NoError(t, err, name)
		files[name] = data
	}
	return files
}

func importFiles(t *testing.T, files map[string][]byte, form string) []byte {
	t.Helper()
	files["game.min"] = make([]byte, len(container))
	result := testutil.RunIntegrationTest(t, files,
		app.Config{Command: app.CommandImport, Paths: []string{"game.rpl"}, ROM: "game.min", Folder: "out", Output: "patched.min", Form: form},
	)
	require.NoError(t, result.Err)
	data, err := os.ReadFile(result.Path("patched.min"))
	require.NoError(t, err)
	return data
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	for _, form := range []string{"rpl", "json", "yaml"} {
		form := form
		t.Run(form, func(t *testing.T) {
			t.Parallel()
			files := exportedFiles(t, form)
			assert.Equal(t, []byte{0xff}, files["out/tail.bin"])
			assert.Contains(t, string(files["out/text/names.yaml"]), "text: abc")
			assert.NotContains(t, string(files["out/text/names.yaml"]), "count", "derived fields stay out of the files")

			files["game.rpl"] = []byte(gameRPL)
			assert.Equal(t, container, importFiles(t, files, form))
		})
	}
}

func TestExport_RPLForm(t *testing.T) {
	t.Parallel()
	files := exportedFiles(t, "rpl")
	assert.Equal(t, "magic: \"RPL!\"\nversion: 3\nflags: true\n", string(files["out/header.rpl"]))
}

func TestImport_EditedFile(t *testing.T) {
	t.Parallel()
	files := exportedFiles(t, "json")
	files["out/header.json"] = []byte(`{"magic": "ROM!", "version": 4, "flags": 0}`)
	files["out/text/names.yaml"] = []byte("entries:\n  - id: 7\n    text: hey\n  - id: 8\n    text: z\n")

	got := importFiles(t, files, "json")
	want := []byte{
		'R', 'O', 'M', '!', 0x04, 0x00,
		0x02, 0x07, 'h', 'e', 'y', 0x08, 'z', 0x00, 0x00,
		0xff,
	}
	assert.Equal(t, want, got)
}

func TestImport_OnlyTouchesSelectedStructs(t *testing.T) {
	t.Parallel()
	files := exportedFiles(t, "json")
	files["game.min"] = append([]byte(nil), container...)
	files["out/tail.bin"] = []byte{0x11}
	files["out/header.json"] = []byte(`{"magic": "ZZZZ", "version": 0, "flags": 0}`)

	result := testutil.RunIntegrationTest(t, files, app.Config{
		Command: app.CommandImport,
		Paths:   []string{"game.rpl"},
		ROM:     "game.min",
		Folder:  "out",
		Form:    "json",
		Only:    []string{"tail"},
	})
	require.NoError(t, result.Err)

	want := append([]byte(nil), container...)
	want[15] = 0x11
	testutil.AssertBytes(t, result, "game.min", want)
}

func TestDump(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		cfg   app.Config
		check func(t *testing.T, out string)
	}{
		{
			name: "compact rpl",
			cfg:  app.Config{Compact: true},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Format name { id: [number, 1] text: [string, 3] }\n")
			},
		},
		{
			name: "pretty rpl",
			cfg:  app.Config{},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "\tData header {\n")
			},
		},
		{
			name: "yaml",
			cfg:  app.Config{Form: "yaml"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "header:\n")
				assert.Contains(t, out, "@this.count")
			},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := tc.cfg
			cfg.Command = app.CommandDump
			cfg.Paths = []string{"game.rpl"}
			result := testutil.RunIntegrationTest(t, map[string][]byte{"game.rpl": []byte(gameRPL)}, cfg)
			require.NoError(t, result.Err)
			tc.check(t, result.Output)
		})
	}
}
