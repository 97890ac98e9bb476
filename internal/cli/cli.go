package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/rplkit/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// listFlag collects a flag given several times. Values holding commas are
// split when split is set.
type listFlag struct {
	values []string
	split  bool
}

func (f *listFlag) String() string { return strings.Join(f.values, ",") }

func (f *listFlag) Set(s string) error {
	if !f.split {
		f.values = append(f.values, s)
		return nil
	}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			f.values = append(f.values, part)
		}
	}
	return nil
}

const usageText = `
rplkit - Edit binary containers through RPL descriptions.

Usage:
  rplkit <command> [options] [RPL_PATH...]

Commands:
  export   Copy data out of the container into external files.
  import   Pack external files back into the container.
  check    Parse and validate the descriptions.
  dump     Print the parsed descriptions.

Arguments:
  RPL_PATH
    Path to a single .rpl file or a directory containing .rpl files.

Options:
`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("rplkit", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	command := args[0]
	switch command {
	case "-h", "-help", "--help", "help":
		flagSet.Usage()
		return nil, true, nil
	}

	projectFlag := flagSet.String("project", "", "Path to an HCL project file.")
	romFlag := flagSet.String("rom", "", "Path to the container file.")
	folderFlag := flagSet.String("folder", "", "Folder for the external files. Defaults to the current directory.")
	outFlag := flagSet.String("out", "", "Where import saves the container. Defaults to -rom.")
	formFlag := flagSet.String("form", "", "Default external form: rpl, json, yaml or txt. For dump, the output form.")
	compactFlag := flagSet.Bool("compact", false, "Print one line per struct when dumping RPL.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	only := &listFlag{split: true}
	flagSet.Var(only, "only", "Comma separated struct names to restrict export and import to.")
	defines := &listFlag{}
	flagSet.Var(defines, "D", "Define a static as name=value. Repeatable.")

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Command:   command,
		Paths:     flagSet.Args(),
		Project:   *projectFlag,
		ROM:       *romFlag,
		Folder:    *folderFlag,
		Output:    *outFlag,
		Form:      strings.ToLower(*formFlag),
		Only:      only.values,
		Compact:   *compactFlag,
		Defines:   defines.values,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
