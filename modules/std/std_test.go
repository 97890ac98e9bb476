package std_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/extern"
	"github.com/specialistvlad/rplkit/internal/filestore"
	"github.com/specialistvlad/rplkit/internal/format"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/rom"
	"github.com/specialistvlad/rplkit/internal/rpl"
	"github.com/specialistvlad/rplkit/internal/value"
	"github.com/specialistvlad/rplkit/modules/std"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *rpl.Document {
	t.Helper()
	r := registry.New()
	(&std.Module{}).Register(r)
	doc, err := rpl.Parse(context.Background(), r, "test.rpl", []byte(src))
	require.NoError(t, err)
	return doc
}

func TestBoolType(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		want    int64
		wantErr bool
	}{
		{name: "true", text: "true", want: 1},
		{name: "false", text: "false"},
		{name: "number", text: "2", want: 2},
		{name: "zero", text: "0"},
		{name: "hex", text: "$1", want: 1},
		{name: "word", text: "maybe", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := std.BoolType{}.Parse(tc.text)
			if tc.wantErr {
				assert.EqualError(t, err, `"maybe" is not a bool`)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, std.Bool{N: tc.want}, v)
		})
	}
}

func TestBool_Packing(t *testing.T) {
	opts := codec.Options{Size: 2, Endian: codec.Big}
	data, err := std.Bool{N: 1}.Serialize(opts)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1}, data)

	v, err := std.BoolType{}.Unserialize([]byte{0, 4}, opts)
	require.NoError(t, err)
	assert.Equal(t, std.Bool{N: 4}, v)
	assert.Equal(t, true, v.Get())

	n, ok := value.AsInt(std.Bool{N: 1})
	assert.True(t, ok, "bool counts as a number")
	assert.Equal(t, int64(1), n)

	assert.Equal(t, "true", std.Bool{N: 1}.String())
	assert.Equal(t, "false", std.Bool{}.String())
	assert.Equal(t, "4", std.Bool{N: 4}.String())
}

func TestBool_RoundTripKeepsBytes(t *testing.T) {
	ctx := context.Background()
	src := `Data flags { a: [bool, 1] b: [bool, 1] c: [bool, 1] }`
	container := []byte{2, 1, 0}

	for _, form := range []extern.Form{extern.FormRPL, extern.FormJSON, extern.FormYAML} {
		t.Run(string(form), func(t *testing.T) {
			dir := t.TempDir()
			env := &format.Env{ROM: rom.New(append([]byte(nil), container...)), Folder: dir, Files: filestore.New(), Form: form}
			require.NoError(t, format.Run(ctx, parse(t, src), env, format.Export, nil))

			out := rom.New(make([]byte, len(container)))
			env = &format.Env{ROM: out, Folder: dir, Files: filestore.New(), Form: form}
			require.NoError(t, format.Run(ctx, parse(t, src), env, format.Import, nil))
			assert.Equal(t, container, out.Bytes())
		})
	}
}

func TestBool_InDataField(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := `Data flags { form: yaml a: [bool, 1] b: [bool, 1] }`

	env := &format.Env{ROM: rom.New([]byte{0, 7}), Folder: dir, Files: filestore.New()}
	require.NoError(t, format.Run(ctx, parse(t, src), env, format.Export, nil))

	yc, err := extern.NewCodec(extern.FormYAML, nil, "")
	require.NoError(t, err)
	rec := &extern.Record{}
	rec.Set("a", value.String{Text: "true"})
	rec.Set("b", value.Number{Int: 0})
	data, err := yc.Encode(rec)
	require.NoError(t, err)
	require.NoError(t, writeFile(dir, "flags.yaml", data))

	out := rom.New(nil)
	env = &format.Env{ROM: out, Folder: dir, Files: filestore.New()}
	require.NoError(t, format.Run(ctx, parse(t, src), env, format.Import, nil))
	assert.Equal(t, []byte{1, 0}, out.Bytes())
}

func TestROM_Settings(t *testing.T) {
	doc := parse(t, `ROM { sign: signed Data d { a: [number, 1] } }`)
	root := doc.Structs()[0]

	endian, err := root.Text("endian")
	require.NoError(t, err)
	assert.Equal(t, "little", endian)
	sl, ok := root.Lookup("pad")
	require.True(t, ok)
	assert.Equal(t, value.String{Text: "\x00"}, sl.Value)
	assert.Equal(t, value.Defaulted, sl.Source)

	d, ok := doc.Lookup("d")
	require.True(t, ok)
	sl, ok = d.Lookup("sign")
	require.True(t, ok)
	assert.Equal(t, value.Inherited, sl.Source)
}

func TestROM_Verify(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "no checks", src: `ROM {}`},
		{name: "size matches", src: `ROM { size: 3 }`},
		{name: "size differs", src: `ROM { size: 2 }`, wantErr: "container is 3 bytes, expected 2"},
		{name: "crc matches", src: `ROM { crc32: $79520fa1 }`},
		{name: "crc differs", src: `ROM { crc32: $dead }`, wantErr: "container CRC32 is $79520fa1, expected $0000dead"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, dir := range []format.Direction{format.Export, format.Import} {
				env := &format.Env{ROM: rom.New([]byte("rom")), Folder: t.TempDir(), Files: filestore.New()}
				err := format.Run(context.Background(), parse(t, tc.src), env, dir, nil)
				if tc.wantErr == "" {
					assert.NoError(t, err, dir.String())
					continue
				}
				require.Error(t, err, dir.String())
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func writeFile(dir, name string, data []byte) error {
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
