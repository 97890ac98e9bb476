package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/rplkit/internal/extern"
)

// Commands the app runs.
const (
	CommandExport = "export"
	CommandImport = "import"
	CommandCheck  = "check"
	CommandDump   = "dump"
)

var commands = []string{CommandExport, CommandImport, CommandCheck, CommandDump}

// Config holds all the necessary configuration for an App instance to run.
// Empty fields fall back to the project file.
type Config struct {
	Command string
	Paths   []string // rpl files or directories
	Project string   // hcl project file

	ROM    string
	Folder string
	Output string
	Form   string
	Only   []string

	// Compact selects single-line RPL output for dump.
	Compact bool
	// Defines holds name=value statics given on the command line.
	Defines []string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if !slices.Contains(commands, cfg.Command) {
		return nil, fmt.Errorf("unknown command %q, expected one of export, import, check, dump", cfg.Command)
	}
	if len(cfg.Paths) == 0 && cfg.Project == "" {
		return nil, errors.New("no RPL files given and no project file to read them from")
	}
	if cfg.Form != "" {
		if _, err := extern.ParseForm(cfg.Form); err != nil {
			return nil, err
		}
	}
	for _, d := range cfg.Defines {
		if _, _, err := splitDefine(d); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func splitDefine(d string) (string, string, error) {
	name, val, ok := strings.Cut(d, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("define %q must have the form name=value", d)
	}
	return name, val, nil
}
