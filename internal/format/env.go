package format

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/extern"
	"github.com/specialistvlad/rplkit/internal/filestore"
	"github.com/specialistvlad/rplkit/internal/rom"
	"github.com/specialistvlad/rplkit/internal/rpl"
)

// Env is what a struct sees while data moves: the container, the folder of
// external files and the store that buffers them.
type Env struct {
	ROM    *rom.Buffer
	Folder string
	Files  *filestore.Store
	// Form is used by structs that do not choose one.
	Form extern.Form
}

// ExportPreparer runs for every selected struct before any ExportData.
type ExportPreparer interface {
	ExportPrepare(ctx context.Context, env *Env) error
}

// Exporter copies data out of the container.
type Exporter interface {
	ExportData(ctx context.Context, env *Env) error
}

// ImportPreparer runs for every selected struct before any ImportData.
type ImportPreparer interface {
	ImportPrepare(ctx context.Context, env *Env) error
}

// Importer copies data into the container.
type Importer interface {
	ImportData(ctx context.Context, env *Env) error
}

// Run moves data in direction dir for every struct of doc, in document
// order. A non-empty only restricts the run to the named structs and their
// descendants. Export flushes the external files at the end; the caller
// saves the container after an import.
func Run(ctx context.Context, doc *rpl.Document, env *Env, dir Direction, only []string) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range only {
		if _, ok := doc.Lookup(name); !ok {
			return fmt.Errorf("no struct named %q", name)
		}
	}

	var selected []*rpl.Struct
	for _, s := range doc.All() {
		if isSelected(s, only) {
			selected = append(selected, s)
		}
	}
	logger.Info("Starting run.", "direction", dir.String(), "structs", len(selected))

	for _, s := range selected {
		if err := prepare(ctx, s, env, dir); err != nil {
			return located(s, err)
		}
	}

	for _, s := range selected {
		var err error
		switch dir {
		case Export:
			if b, ok := s.Behavior().(Exporter); ok {
				logger.Debug("Exporting struct.", "struct", s.Name, "type", s.Type)
				err = b.ExportData(ctx, env)
			}
		case Import:
			if b, ok := s.Behavior().(Importer); ok {
				logger.Debug("Importing struct.", "struct", s.Name, "type", s.Type)
				err = b.ImportData(ctx, env)
			}
		}
		if err != nil {
			return located(s, err)
		}
	}

	if dir == Export {
		if err := env.Files.Flush(ctx); err != nil {
			return err
		}
	}
	logger.Info("Run finished.", "direction", dir.String())
	return nil
}

func prepare(ctx context.Context, s *rpl.Struct, env *Env, dir Direction) error {
	switch b := s.Behavior(); dir {
	case Export:
		if p, ok := b.(ExportPreparer); ok {
			return p.ExportPrepare(ctx, env)
		}
	case Import:
		if p, ok := b.(ImportPreparer); ok {
			return p.ImportPrepare(ctx, env)
		}
	}
	return nil
}

func isSelected(s *rpl.Struct, only []string) bool {
	if len(only) == 0 {
		return true
	}
	for p := s; p != nil; p = p.Parent() {
		if slices.Contains(only, p.Name) {
			return true
		}
	}
	return false
}

func located(s *rpl.Struct, err error) error {
	var re *rpl.Error
	if errors.As(err, &re) {
		return err
	}
	return &rpl.Error{Pos: s.Pos, Err: err}
}
