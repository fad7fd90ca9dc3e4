package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkspaceLifecycle(t *testing.T) {
	root := t.TempDir()
	ws, err := New(root, "bestof")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(ws.Dir()), "bestof-") {
		t.Errorf("dir = %s", ws.Dir())
	}
	if got := ws.Pathf("clip_%03d.mp4", 7); filepath.Base(got) != "clip_007.mp4" {
		t.Errorf("Pathf = %s", got)
	}
	if err := os.WriteFile(ws.Path("list.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ws.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Errorf("workspace still exists: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestWorkspaceUnique(t *testing.T) {
	root := t.TempDir()
	a, err := New(root, "")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := New(root, "")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if a.Dir() == b.Dir() {
		t.Error("workspaces share a directory")
	}
	if !strings.HasPrefix(filepath.Base(a.Dir()), "clipkit-") {
		t.Errorf("default prefix missing: %s", a.Dir())
	}
}

func TestWorkspaceKeep(t *testing.T) {
	ws, err := New(t.TempDir(), "debug")
	if err != nil {
		t.Fatal(err)
	}
	ws.Keep()
	if err := ws.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ws.Dir()); err != nil {
		t.Errorf("kept workspace removed: %v", err)
	}
}
