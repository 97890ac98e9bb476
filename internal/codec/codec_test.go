package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInt(t *testing.T) {
	testCases := []struct {
		name string
		val  int64
		opts Options
		want []byte
	}{
		{"u8", 255, Options{Size: 1}, []byte{0xff}},
		{"u16 big", 256, Options{Size: 2}, []byte{0x01, 0x00}},
		{"u16 little", 256, Options{Size: 2, Endian: Little}, []byte{0x00, 0x01}},
		{"s8 negative", -1, Options{Size: 1, Signed: true}, []byte{0xff}},
		{"s16 negative little", -2, Options{Size: 2, Signed: true, Endian: Little}, []byte{0xfe, 0xff}},
		{"natural size", 0x1234, Options{}, []byte{0x12, 0x34}},
		{"u24", 0x010203, Options{Size: 3}, []byte{0x01, 0x02, 0x03}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeInt(tc.val, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			back, err := DecodeInt(got, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.val, back)
		})
	}
}

func TestEncodeInt_Overflow(t *testing.T) {
	_, err := EncodeInt(256, Options{Size: 1})
	assert.Error(t, err)

	_, err = EncodeInt(-1, Options{Size: 2})
	assert.Error(t, err)

	_, err = EncodeInt(128, Options{Size: 1, Signed: true})
	assert.Error(t, err)
}

func TestPad(t *testing.T) {
	testCases := []struct {
		name  string
		align Align
		want  string
	}{
		{"left", AlignLeft, "ab..."},
		{"right", AlignRight, "...ab"},
		{"center", AlignCenter, ".ab.."},
		{"rcenter", AlignRCenter, "..ab."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := Options{Size: 5, Pad: '.', Align: tc.align}
			got, err := Pad([]byte("ab"), opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
			assert.Equal(t, "ab", string(Unpad(got, opts)))
		})
	}
}

func TestPad_TooLong(t *testing.T) {
	_, err := Pad([]byte("hello"), Options{Size: 4})
	require.Error(t, err)

	var sizeErr *SizeError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, "Expected size 4 but got 5", sizeErr.Error())
}

func TestParseAlignAndEndian(t *testing.T) {
	a, err := ParseAlign("rcenter")
	require.NoError(t, err)
	assert.Equal(t, AlignRCenter, a)

	_, err = ParseAlign("middle")
	assert.Error(t, err)

	e, err := ParseEndian("little")
	require.NoError(t, err)
	assert.Equal(t, Little, e)
}
