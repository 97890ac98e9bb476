package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/rplkit/internal/config"
	"github.com/specialistvlad/rplkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type stubLoader struct {
	project *config.Project
	err     error
	paths   []string
}

func (l *stubLoader) Load(ctx context.Context, path string) (*config.Project, error) {
	l.paths = append(l.paths, path)
	return l.project, l.err
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "paths", cfg: Config{Command: CommandCheck, Paths: []string{"a.rpl"}}},
		{name: "project", cfg: Config{Command: CommandExport, Project: "p.hcl"}},
		{name: "unknown command", cfg: Config{Command: "run", Paths: []string{"a.rpl"}}, wantErr: `unknown command "run"`},
		{name: "nothing to read", cfg: Config{Command: CommandDump}, wantErr: "no RPL files given"},
		{name: "bad form", cfg: Config{Command: CommandDump, Paths: []string{"a"}, Form: "csv"}, wantErr: `unknown form "csv"`},
		{name: "bad define", cfg: Config{Command: CommandDump, Paths: []string{"a"}, Defines: []string{"x"}}, wantErr: `define "x" must have the form name=value`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg.Command, cfg.Command)
		})
	}
}

func TestNewApp_MergesProject(t *testing.T) {
	loader := &stubLoader{project: &config.Project{
		ROM:     "game.min",
		RPL:     []string{"game.rpl"},
		Form:    "json",
		Defines: map[string]cty.Value{"lang": cty.StringVal("en"), "n": cty.NumberIntVal(3)},
	}}
	cfg := &Config{
		Command: CommandImport,
		Project: "rplkit.hcl",
		Form:    "yaml",
		Defines: []string{"n=$10", "flag=true"},
	}

	a, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"rplkit.hcl"}, loader.paths)

	p := a.Project()
	assert.Equal(t, "game.min", p.ROM)
	assert.Equal(t, "game.min", p.Output, "import writes back to the container by default")
	assert.Equal(t, ".", p.Folder)
	assert.Equal(t, "yaml", p.Form)

	lang, ok := a.Registry().Static("lang")
	require.True(t, ok)
	assert.Equal(t, value.String{Text: "en"}, lang)
	n, _ := a.Registry().Static("n")
	assert.Equal(t, value.HexNum{Int: 0x10}, n, "command line defines win")
	flag, _ := a.Registry().Static("flag")
	assert.Equal(t, value.Number{Int: 1}, flag)
}

func TestNewApp_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		loader  *stubLoader
		wantErr string
	}{
		{
			name:    "loader failure",
			cfg:     Config{Command: CommandCheck, Project: "p.hcl"},
			loader:  &stubLoader{err: errors.New("boom")},
			wantErr: "failed to load project: boom",
		},
		{
			name:    "project without rpl",
			cfg:     Config{Command: CommandCheck, Project: "p.hcl"},
			loader:  &stubLoader{project: &config.Project{ROM: "x"}},
			wantErr: "no RPL files to read",
		},
		{
			name:    "export without rom",
			cfg:     Config{Command: CommandExport, Paths: []string{"a.rpl"}},
			loader:  &stubLoader{},
			wantErr: "export needs a container file",
		},
		{
			name:    "project form",
			cfg:     Config{Command: CommandCheck, Project: "p.hcl"},
			loader:  &stubLoader{project: &config.Project{RPL: []string{"a"}, Form: "xml"}},
			wantErr: `unknown form "xml"`,
		},
		{
			name:    "define with a map",
			cfg:     Config{Command: CommandCheck, Project: "p.hcl"},
			loader:  &stubLoader{project: &config.Project{RPL: []string{"a"}, Defines: map[string]cty.Value{"m": cty.EmptyObjectVal}}},
			wantErr: "define m: cannot convert",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			_, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, &cfg, tc.loader)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger("debug", "text", &buf).Debug("details")
	assert.Contains(t, buf.String(), "msg=details")
}
