package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/specialistvlad/rplkit/internal/config"
	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/extern"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/rpl"
	"github.com/specialistvlad/rplkit/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	project  *config.Project
}

// NewApp is the constructor for the main application. Command output goes to
// outW and logs to logW. The project file, when one is configured, is read
// with loader and overridden by the fields set in cfg.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	project := &config.Project{}
	if cfg.Project != "" {
		loaded, err := loader.Load(ctx, cfg.Project)
		if err != nil {
			return nil, fmt.Errorf("failed to load project: %w", err)
		}
		project = loaded
	}
	project = project.Merge(&config.Project{
		ROM:    cfg.ROM,
		RPL:    cfg.Paths,
		Folder: cfg.Folder,
		Output: cfg.Output,
		Form:   cfg.Form,
	})
	if err := checkProject(cfg.Command, project); err != nil {
		return nil, err
	}

	a := &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		project:  project,
	}
	if err := a.define(project.Defines, cfg.Defines); err != nil {
		return nil, err
	}
	logger.Debug("Project configured.", "rom", project.ROM, "rpl", project.RPL, "folder", project.Folder)
	return a, nil
}

func checkProject(command string, p *config.Project) error {
	if len(p.RPL) == 0 {
		return fmt.Errorf("no RPL files to read")
	}
	if p.Form != "" {
		if _, err := extern.ParseForm(p.Form); err != nil {
			return err
		}
	}
	if (command == CommandExport || command == CommandImport) && p.ROM == "" {
		return fmt.Errorf("%s needs a container file", command)
	}
	if p.Folder == "" {
		p.Folder = "."
	}
	if p.Output == "" {
		p.Output = p.ROM
	}
	return nil
}

// define adds the project defines and then the command line ones, which
// are parsed as RPL values, as statics.
func (a *App) define(project map[string]cty.Value, cli []string) error {
	for name, cv := range project {
		v, err := value.FromCty(cv)
		if err != nil {
			return fmt.Errorf("define %s: %w", name, err)
		}
		a.registry.SetStatic(name, v)
	}
	for _, d := range cli {
		name, text, err := splitDefine(d)
		if err != nil {
			return err
		}
		v, err := rpl.ParseValue(a.registry, text)
		if err != nil {
			return fmt.Errorf("define %s: %w", name, err)
		}
		a.registry.SetStatic(name, v)
	}
	return nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Project returns the merged project settings.
func (a *App) Project() *config.Project {
	return a.project
}

func (a *App) folder() string {
	return filepath.Clean(a.project.Folder)
}
