// Package artifact writes generated test suites to their framework target
// paths. Writes are atomic: a temp file in the target directory is renamed
// over the destination so runners never observe a partial suite.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"qaforge/internal/logging"
)

// Artifact is a generated test suite bound to a framework target path.
type Artifact struct {
	Framework string    // Framework name (cypress, playwright, api)
	Path      string    // Destination path relative to the workspace
	Source    string    // Generated test source
	WrittenAt time.Time // Set by Writer.Write
}

// WriteError wraps a failed artifact write with its framework.
type WriteError struct {
	Framework string
	Path      string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s suite to %s: %v", e.Framework, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer persists artifacts under a workspace root.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at the workspace directory.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Write atomically writes the artifact source to its path.
func (w *Writer) Write(a *Artifact) error {
	dest := a.Path
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(w.root, dest)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Framework: a.Framework, Path: a.Path, Err: err}
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return &WriteError{Framework: a.Framework, Path: a.Path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(a.Source); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Framework: a.Framework, Path: a.Path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Framework: a.Framework, Path: a.Path, Err: err}
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return &WriteError{Framework: a.Framework, Path: a.Path, Err: err}
	}

	a.WrittenAt = time.Now()
	logging.Artifacts("Wrote %s suite: %s (%d bytes)", a.Framework, dest, len(a.Source))
	return nil
}
