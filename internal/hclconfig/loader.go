package hclconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/rplkit/internal/config"
	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct {
	// Environ returns the environment exposed as env. It defaults to
	// os.Environ.
	Environ func() []string
}

// NewLoader creates a new HCL project loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// projectFile is the shape of a project file.
type projectFile struct {
	ROM     string         `hcl:"rom,optional"`
	RPL     hcl.Expression `hcl:"rpl,optional"`
	Folder  string         `hcl:"folder,optional"`
	Output  string         `hcl:"output,optional"`
	Form    string         `hcl:"form,optional"`
	Defines hcl.Expression `hcl:"defines,optional"`
}

// Load parses the project file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)
	logger.Debug("HCL project loader started.")

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, diags)
	}

	evalCtx := l.evalContext()
	var root projectFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", path, diags)
	}

	rpl, err := stringList(root.RPL, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("%s: rpl: %w", path, err)
	}
	defines, err := objectAttrs(root.Defines, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("%s: defines: %w", path, err)
	}

	dir := filepath.Dir(path)
	p := &config.Project{
		ROM:     resolve(dir, root.ROM),
		Folder:  resolve(dir, root.Folder),
		Output:  resolve(dir, root.Output),
		Form:    root.Form,
		Defines: defines,
	}
	for _, r := range rpl {
		p.RPL = append(p.RPL, resolve(dir, r))
	}

	logger.Debug("HCL project loaded.", "rom", p.ROM, "rpl_count", len(p.RPL), "defines", len(p.Defines))
	return p, nil
}

func (l *Loader) evalContext() *hcl.EvalContext {
	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	vars := make(map[string]cty.Value)
	for _, e := range environ() {
		if name, val, ok := strings.Cut(e, "="); ok && name != "" {
			vars[name] = cty.StringVal(val)
		}
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": env}}
}

// resolve makes a relative path relative to dir. Empty stays empty.
func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
