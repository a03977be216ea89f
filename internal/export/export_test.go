package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointview/quarkgl"
)

type staticSource []quarkgl.Vec3

func (s staticSource) Positions() []quarkgl.Vec3 { return s }

type memSaver struct {
	name, mime string
	data       []byte
	err        error
}

func (m *memSaver) Save(name, mime string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.name, m.mime, m.data = name, mime, data
	return "mem:" + name, nil
}

func TestFormatExample(t *testing.T) {
	got := Format([]quarkgl.Vec3{quarkgl.V3(1.005, -2.0, 0)})
	assert.Equal(t, "Cube Index, X, Y, Z\n0, 1.00, -2.00, 0.00\n", string(got))
}

func TestFormatEmpty(t *testing.T) {
	assert.Equal(t, "Cube Index, X, Y, Z\n", string(Format(nil)))
}

func TestFormatOrder(t *testing.T) {
	got := Format([]quarkgl.Vec3{quarkgl.V3(0, 0, 0), quarkgl.V3(5, 5, -5), quarkgl.V3(-1.5, 2.25, 3.333)})
	want := "Cube Index, X, Y, Z\n" +
		"0, 0.00, 0.00, 0.00\n" +
		"1, 5.00, 5.00, -5.00\n" +
		"2, -1.50, 2.25, 3.33\n"
	assert.Equal(t, want, string(got))
}

func TestFixed2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{math.Copysign(0, -1), "0.00"},
		{-0.001, "-0.00"},
		{1.005, "1.00"},
		{0.125, "0.13"},
		{-0.125, "-0.13"},
		{0.375, "0.38"},
		{2.5, "2.50"},
		{1.255, "1.25"},
		{10.999, "11.00"},
		{-4.994999, "-4.99"},
		{123456.789, "123456.79"},
		{0.625, "0.63"},
		{562949953421312.125, "562949953421312.13"},
		{-1125899906842623.875, "-1125899906842623.88"},
		{1125899906842624.25, "1125899906842624.25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fixed2(tt.in), "Fixed2(%v)", tt.in)
	}
}

func TestExportIdempotent(t *testing.T) {
	src := staticSource{quarkgl.V3(0.1, 0.2, 0.3), quarkgl.V3(-4, 4.445, 9)}
	saver := &memSaver{}
	e := New(src, saver)

	loc, err := e.Export()
	require.NoError(t, err)
	assert.Equal(t, "mem:"+FileName, loc)
	assert.Equal(t, MIMEType, saver.mime)
	first := append([]byte(nil), saver.data...)

	_, err = e.Export()
	require.NoError(t, err)
	assert.Equal(t, first, saver.data)
	assert.Equal(t, first, e.Bytes())
}

func TestExportSaverError(t *testing.T) {
	boom := errors.New("disk full")
	e := New(staticSource{}, &memSaver{err: boom})
	_, err := e.Export()
	require.Error(t, err)
	assert.Equal(t, boom, errors.Cause(err))
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := DirSaver{Dir: dir}

	loc, err := s.Save(FileName, MIMEType, []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), loc)

	loc, err = s.Save(FileName, MIMEType, []byte("two"))
	require.NoError(t, err)
	b, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")
}

func TestDirSaverRejectsPaths(t *testing.T) {
	s := DirSaver{Dir: t.TempDir()}
	for _, name := range []string{"", ".", "..", "../x.txt", "a/b.txt"} {
		_, err := s.Save(name, MIMEType, nil)
		assert.ErrorIs(t, err, ErrBadName, name)
	}
}
