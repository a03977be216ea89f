package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"pointview/quarkgl"
)

// Source supplies the points to export, in index order. *cloud.Store implements it.
type Source interface {
	Positions() []quarkgl.Vec3
}

// Saver stores an export and returns where it went.
type Saver interface {
	Save(name, mime string, data []byte) (string, error)
}

// Exporter formats a Source and hands the result to a Saver.
type Exporter struct {
	src   Source
	saver Saver
}

// New returns an exporter that formats the positions of src and hands them to
// saver.
func New(src Source, saver Saver) *Exporter {
	return &Exporter{src: src, saver: saver}
}

// Bytes returns the export for the current points without saving it.
func (e *Exporter) Bytes() []byte {
	return Format(e.src.Positions())
}

// Export saves the current points as FileName and returns the saved location.
func (e *Exporter) Export() (string, error) {
	loc, err := e.saver.Save(FileName, MIMEType, e.Bytes())
	if err != nil {
		return "", errors.Wrap(err, "export points")
	}
	return loc, nil
}

// ErrBadName is returned for names that are not a plain file name.
var ErrBadName = errors.New("export: name must be a plain file name")

// DirSaver writes exports into Dir, replacing any previous file of the same name.
type DirSaver struct {
	Dir string
}

// Save writes data to Dir/name through a temporary file and a rename, so readers
// never see a partial export.
func (s DirSaver) Save(name, _ string, data []byte) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", errors.Wrapf(ErrBadName, "%q", name)
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create export dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", errors.Wrapf(err, "chmod %s", tmpName)
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(tmpName, dst); err != nil {
		return "", errors.Wrapf(err, "rename to %s", dst)
	}
	return dst, nil
}
