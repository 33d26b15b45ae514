package codegen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/ctrlgen/internal/ir"
)

// ErrPermissionDenied marks a write refused by the filesystem, as opposed
// to any other I/O failure.
var ErrPermissionDenied = errors.New("permission denied")

// fileTimestampLayout stamps artifact file names.
const fileTimestampLayout = "20060102_150405"

// Writer saves rendered artifacts under a directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter returns a Writer rooted at dir. A nil now uses time.Now.
func NewWriter(dir string, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{dir: dir, now: now}
}

// FileName returns the artifact file name for sig at t:
// <Signal>_<stamp>.scala for Ctrl and <Signal>Field_<stamp>.scala for Field.
func FileName(sig ir.ControlSignal, a Artifact, t time.Time) string {
	base := sig.Name
	if a == ArtifactField {
		base += "Field"
	}
	return fmt.Sprintf("%s_%s.scala", base, t.Format(fileTimestampLayout))
}

// Write stores code as the a artifact of sig and returns the file path.
// The directory is created if needed. The file is written to a temporary
// name and renamed into place.
func (w *Writer) Write(sig ir.ControlSignal, a Artifact, code string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", wrapWriteError("create directory "+w.dir, err)
	}

	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}

	path := filepath.Join(w.dir, FileName(sig, a, w.now()))
	tmp, err := os.CreateTemp(w.dir, ".artifact-*")
	if err != nil {
		return "", wrapWriteError("write "+path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", wrapWriteError("write "+path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", wrapWriteError("write "+path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", wrapWriteError("write "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", wrapWriteError("write "+path, err)
	}
	return path, nil
}

func wrapWriteError(op string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%s: %w: %w", op, ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
