package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a\nb\n", Sanitize("a  \t\r\nb \n"))
	assert.Equal(t, "a\n\nb", Sanitize("a\n\n\n\n\nb"))
	assert.Equal(t, "a\n\nb", Sanitize("a \n \n\t\n\nb"))
	assert.Equal(t, "unchanged", Sanitize("unchanged"))
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("title   \n\n\n\nbody\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, New(&Config{}).Write(&out, path))
	assert.Equal(t, "title\n\nbody\n", out.String())
}

func TestWriteTextLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 100), 0o644))

	var out bytes.Buffer
	require.NoError(t, New(&Config{Limit: 10}).Write(&out, path))
	assert.Equal(t, "xxxxxxxxxx", out.String())
}

func TestWriteUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	require.NoError(t, os.WriteFile(path, png, 0o644))

	var out bytes.Buffer
	require.NoError(t, New(&Config{}).Write(&out, path))
	assert.Equal(t, UnknownFormat+"\n", out.String())
}

func TestWriteMissing(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, New(&Config{}).Write(&out, filepath.Join(t.TempDir(), "nope.txt")))
}

func TestWriteDocWithoutCatdoc(t *testing.T) {
	p := &Previewer{limit: DefaultLimit}

	var out bytes.Buffer
	require.NoError(t, p.Write(&out, "/docs/letter.DOC"))
	assert.Contains(t, out.String(), "requires catdoc")
}

func TestWriteDocWithCatdoc(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake catdoc is a shell script")
	}
	catdoc := filepath.Join(t.TempDir(), "catdoc")
	// Prints "caf\xe9" in ISO-8859-1 followed by padded blank lines.
	script := "#!/bin/sh\nprintf 'caf\\351  \\n\\n\\n\\nend\\n'\n"
	require.NoError(t, os.WriteFile(catdoc, []byte(script), 0o755))

	var out bytes.Buffer
	require.NoError(t, New(&Config{Catdoc: catdoc}).Write(&out, "/docs/letter.doc"))
	assert.Equal(t, "café\n\nend\n", out.String())
}
