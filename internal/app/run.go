package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/extern"
	"github.com/specialistvlad/rplkit/internal/filestore"
	"github.com/specialistvlad/rplkit/internal/format"
	"github.com/specialistvlad/rplkit/internal/fsutil"
	"github.com/specialistvlad/rplkit/internal/rom"
	"github.com/specialistvlad/rplkit/internal/rpl"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	doc, err := a.loadDocument(ctx)
	if err != nil {
		return err
	}

	switch a.config.Command {
	case CommandCheck:
		a.logger.Info("Document is valid.", "structs", len(doc.Structs()))
		_, err = fmt.Fprintf(a.outW, "ok: %d top level structs\n", len(doc.Structs()))
	case CommandDump:
		err = a.dump(doc)
	case CommandExport:
		err = a.move(ctx, doc, format.Export)
	case CommandImport:
		err = a.move(ctx, doc, format.Import)
	}
	if err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// rplFiles expands the configured paths into a list of RPL files.
// Directories contribute every .rpl file under them.
func (a *App) rplFiles() ([]string, error) {
	files, err := fsutil.Collect(a.project.RPL, ".rpl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .rpl files found in %v", a.project.RPL)
	}
	return files, nil
}

// loadDocument parses every RPL file into one document and validates it.
func (a *App) loadDocument(ctx context.Context) (*rpl.Document, error) {
	files, err := a.rplFiles()
	if err != nil {
		return nil, err
	}
	doc := rpl.New(a.registry)
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		if err := doc.Parse(ctx, file, src); err != nil {
			return nil, err
		}
	}
	if err := doc.Finalize(ctx); err != nil {
		return nil, err
	}
	if err := doc.CheckReferences(); err != nil {
		return nil, err
	}
	a.logger.Debug("Document loaded.", "files", len(files), "structs", len(doc.Structs()))
	return doc, nil
}

// dump writes the document as RPL, or as one section per struct in the
// JSON and YAML forms.
func (a *App) dump(doc *rpl.Document) error {
	if a.project.Form == "" || a.project.Form == string(extern.FormRPL) {
		return doc.Write(a.outW, a.config.Compact)
	}
	form, err := extern.ParseForm(a.project.Form)
	if err != nil {
		return err
	}
	codec, err := extern.NewCodec(form, a.registry, "")
	if err != nil {
		return err
	}
	var secs []extern.Section
	for _, s := range doc.All() {
		secs = append(secs, extern.Section{Name: s.Name, Record: extern.StructRecord(s)})
	}
	out, err := codec.EncodeSections(secs)
	if err != nil {
		return err
	}
	_, err = a.outW.Write(out)
	return err
}

// move runs the format engine over the container in direction dir. An
// import saves the container to the output path.
func (a *App) move(ctx context.Context, doc *rpl.Document, dir format.Direction) error {
	buf, err := rom.Load(ctx, a.project.ROM)
	if err != nil {
		return err
	}
	env := &format.Env{
		ROM:    buf,
		Folder: a.folder(),
		Files:  filestore.New(),
	}
	if a.project.Form != "" {
		if env.Form, err = extern.ParseForm(a.project.Form); err != nil {
			return err
		}
	}

	a.logger.Info("Moving data.", "direction", dir.String(), "rom", a.project.ROM, "folder", env.Folder)
	if err := format.Run(ctx, doc, env, dir, a.config.Only); err != nil {
		return err
	}
	if dir == format.Import {
		return buf.Save(ctx, a.project.Output)
	}
	return nil
}
