package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Eris-Margeta/dircontxt/internal/ignore"
)

func TestWalkAppliesIgnoreRules(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "skip.log"), []byte("x"), 0o644)
	os.Mkdir(filepath.Join(dir, ".git"), 0o755)
	os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("x"), 0o644)

	eng := ignore.NewEngine([]ignore.Rule{
		{Pattern: ".git", Kind: ignore.Basename, DirOnly: true},
		{Pattern: ".log", Kind: ignore.Suffix},
	})

	root, err := Walk(dir, eng)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if root.Find("keep.txt") == nil {
		t.Fatalf("expected keep.txt to survive the walk")
	}
	if root.Find("skip.log") != nil {
		t.Fatalf("expected skip.log to be pruned by the suffix rule")
	}
	if root.Find(".git") != nil {
		t.Fatalf("expected .git to be pruned by the dir-only basename rule")
	}
}

func TestWalkPrunesDirectoryViaPrefixRule(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "build", "output"), 0o755)
	os.WriteFile(filepath.Join(dir, "build", "output", "bin"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644)

	eng := ignore.NewEngine([]ignore.Rule{
		{Pattern: "build/", Kind: ignore.Prefix},
	})

	root, err := Walk(dir, eng)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if root.Find("build") != nil {
		t.Fatalf("expected the build directory itself to be pruned by the prefix rule, not just its contents")
	}
	if root.Find("keep.txt") == nil {
		t.Fatalf("expected keep.txt to survive the walk")
	}
}

func TestWalkBuildsNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755)
	os.WriteFile(filepath.Join(dir, "a", "b", "c.txt"), []byte("x"), 0o644)

	eng := ignore.NewEngine(nil)
	root, err := Walk(dir, eng)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	a := root.Find("a")
	if a == nil || !a.IsDir() {
		t.Fatalf("expected directory node a")
	}
	b := a.Find(filepath.Join("a", "b"))
	if b == nil || !b.IsDir() {
		t.Fatalf("expected directory node a/b")
	}
	if b.Find(filepath.Join("a", "b", "c.txt")) == nil {
		t.Fatalf("expected file node a/b/c.txt")
	}
}
