// Package preview prints a text rendition of a document for the selector's
// preview pane.
package preview

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

const (
	UnknownFormat = "Unknown file format"
	// DefaultLimit bounds how much of a text file is shown.
	DefaultLimit = 64 * 1024
)

var (
	trailingBlanks = regexp.MustCompile(`[ \t\r]*\n`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
)

type Config struct {
	// Catdoc converts .doc files, looked up on PATH when empty.
	Catdoc string
	Limit  int64
}

type Previewer struct {
	catdoc string
	limit  int64
}

func New(c *Config) *Previewer {
	p := &Previewer{
		catdoc: c.Catdoc,
		limit:  c.Limit,
	}
	if p.catdoc == "" {
		p.catdoc, _ = exec.LookPath("catdoc")
	}
	if p.limit <= 0 {
		p.limit = DefaultLimit
	}
	return p
}

// Write renders path to w.
func (p *Previewer) Write(w io.Writer, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".doc") {
		return p.writeDoc(w, path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return errors.Wrap(err, "couldn't detect file type")
	}
	if !isText(mtype) {
		_, err := io.WriteString(w, UnknownFormat+"\n")
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, p.limit))
	if err != nil {
		return errors.Wrap(err, "couldn't read file")
	}

	_, err = io.WriteString(w, Sanitize(string(data)))
	return err
}

func (p *Previewer) writeDoc(w io.Writer, path string) error {
	if p.catdoc == "" {
		_, err := io.WriteString(w, ".doc preview requires catdoc\n")
		return err
	}

	cmd := exec.Command(p.catdoc, "-s", "8859-1", path)
	cmd.Dir = filepath.Dir(p.catdoc)
	out, err := cmd.Output()
	if err != nil {
		return errors.Wrap(err, "catdoc failed")
	}

	text, err := charmap.ISO8859_1.NewDecoder().Bytes(out)
	if err != nil {
		return errors.Wrap(err, "couldn't decode catdoc output")
	}

	_, err = io.WriteString(w, Sanitize(string(text)))
	return err
}

// Sanitize strips trailing blanks from every line and squeezes runs of blank
// lines to one.
func Sanitize(text string) string {
	text = trailingBlanks.ReplaceAllString(text, "\n")
	return blankLines.ReplaceAllString(text, "\n\n")
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
