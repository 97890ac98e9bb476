package format

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/rplkit/internal/extern"
	"github.com/specialistvlad/rplkit/internal/rpl"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Data is the behaviour of Data structs: a field layout at the base offset
// of the container whose record lives in an external file.
type Data struct {
	*Instance
}

// NewData returns an unbound Data behaviour.
func NewData() *Data {
	return &Data{Instance: NewInstance()}
}

// Base returns the absolute offset of the struct's fields.
func (d *Data) Base() (int64, error) {
	return d.s.Int("base")
}

// File returns the path of the external file and the codec for it. The
// form key wins, then the extension of the file key, then env.Form. The
// file defaults to the struct name with the extension of its form.
func (d *Data) File(env *Env) (string, extern.Codec, error) {
	file, named, err := d.text("file")
	if err != nil {
		return "", nil, err
	}

	form := env.Form
	if text, ok, err := d.text("form"); err != nil {
		return "", nil, err
	} else if ok {
		if form, err = extern.ParseForm(text); err != nil {
			return "", nil, err
		}
	} else if ext := filepath.Ext(file); named && ext != "" {
		if f, err := extern.ParseForm(ext[1:]); err == nil {
			form = f
		}
	}
	if form == "" {
		form = extern.FormRPL
	}

	switch {
	case !named:
		file = d.s.Name + form.Ext()
	case filepath.Ext(file) == "":
		file += form.Ext()
	}

	var textKey string
	if form == extern.FormText {
		keys, err := d.RecordKeys()
		if err != nil {
			return "", nil, err
		}
		if len(keys) == 1 {
			textKey = keys[0]
		}
	}
	codec, err := extern.NewCodec(form, d.reg, textKey)
	if err != nil {
		return "", nil, err
	}
	return filepath.Join(env.Folder, file), codec, nil
}

func (d *Data) text(key string) (string, bool, error) {
	sl, ok := d.s.Lookup(key)
	if !ok {
		return "", false, nil
	}
	v, err := rpl.Resolve(sl.Value)
	if err != nil {
		return "", false, err
	}
	text, ok := value.AsText(v)
	if !ok {
		return "", false, fmt.Errorf("%s must be text, got %s", key, v)
	}
	return text, true, nil
}

func (d *Data) claim(env *Env) error {
	path, codec, err := d.File(env)
	if err != nil {
		return err
	}
	return env.Files.Claim(path, d.s.Name, codec)
}

func (d *Data) ExportPrepare(ctx context.Context, env *Env) error {
	return d.claim(env)
}

func (d *Data) ExportData(ctx context.Context, env *Env) error {
	base, err := d.Base()
	if err != nil {
		return err
	}
	rec, _, err := d.Export(ctx, env.ROM, base)
	if err != nil {
		return err
	}
	path, _, err := d.File(env)
	if err != nil {
		return err
	}
	return env.Files.Put(path, d.s.Name, rec)
}

func (d *Data) ImportPrepare(ctx context.Context, env *Env) error {
	return d.claim(env)
}

func (d *Data) ImportData(ctx context.Context, env *Env) error {
	base, err := d.Base()
	if err != nil {
		return err
	}
	path, _, err := d.File(env)
	if err != nil {
		return err
	}
	rec, err := env.Files.Get(ctx, path, d.s.Name)
	if err != nil {
		return err
	}
	chunks, _, err := d.Import(ctx, rec)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if _, err := env.ROM.WriteAt(c.Data, base+c.Offset); err != nil {
			return err
		}
	}
	return nil
}
