// Package workspace provides request-scoped temporary directories.
//
// Every pipeline run creates its own uniquely named directory and releases
// it on every exit path, so concurrent requests never share intermediate
// files:
//
//	ws, err := workspace.New(root, "bestof")
//	if err != nil {
//	    return err
//	}
//	defer ws.Close()
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/clipkit/logger"
)

// Workspace is a temporary directory owned by one request.
type Workspace struct {
	dir  string
	keep bool

	once sync.Once
	err  error
}

// New creates <root>/<prefix>-<uuid>. An empty root uses os.TempDir().
func New(root, prefix string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create root %s: %w", root, err)
	}
	if prefix == "" {
		prefix = "clipkit"
	}
	dir := filepath.Join(root, prefix+"-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("workspace: create %s: %w", dir, err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string { return filepath.Join(w.dir, name) }

// Pathf is Path with a format string, e.g. Pathf("clip_%03d.mp4", i).
func (w *Workspace) Pathf(format string, args ...any) string {
	return w.Path(fmt.Sprintf(format, args...))
}

// Keep leaves the directory on disk after Close, for debugging.
func (w *Workspace) Keep() { w.keep = true }

// Close removes the directory and everything in it. It is safe to call
// more than once.
func (w *Workspace) Close() error {
	w.once.Do(func() {
		if w.keep {
			logger.WithComponent("workspace").Info("keeping workspace", logger.Fields("dir", w.dir))
			return
		}
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}
