package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Eris-Margeta/dircontxt/internal/archive"
	"github.com/Eris-Margeta/dircontxt/internal/differ"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
	"github.com/Eris-Margeta/dircontxt/internal/version"
)

func buildArchive(t *testing.T, dir string) *archive.Archive {
	t.Helper()
	textPath := filepath.Join(dir, "readme.txt")
	os.WriteFile(textPath, []byte("hello manifest\n"), 0o644)
	binPath := filepath.Join(dir, "blob.bin")
	os.WriteFile(binPath, []byte{0x00, 0x01, 0x02, 0xff, 0xfe}, 0o644)

	root := tree.NewDir("", 1000)
	root.AddChild(tree.NewFile("readme.txt", 1000, 15, textPath))
	root.AddChild(tree.NewFile("blob.bin", 1000, 5, binPath))

	archivePath := filepath.Join(t.TempDir(), "snap.dircontxt")
	if err := archive.Write(archivePath, root); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	a, err := archive.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	return a
}

func TestWriteManifestIncludesVersionAndEntries(t *testing.T) {
	dir := t.TempDir()
	a := buildArchive(t, dir)

	text, err := WriteManifest(a.Root, a, version.Version{Major: 1})
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	if !strings.HasPrefix(text, "[DIRCONTXT_LLM_SNAPSHOT_V1]\n") {
		t.Fatalf("manifest should start with the snapshot prelude, got %q", text[:30])
	}
	if !strings.Contains(text, "[F] readme.txt") {
		t.Fatalf("manifest missing readme.txt entry:\n%s", text)
	}
	if !strings.Contains(text, "hello manifest") {
		t.Fatalf("manifest missing readme.txt content:\n%s", text)
	}
	if !strings.Contains(text, "CONTENT:BINARY_HINT") {
		t.Fatalf("manifest should flag blob.bin as binary:\n%s", text)
	}
	if !strings.Contains(text, "BINARY CONTENT PLACEHOLDER") {
		t.Fatalf("manifest should placeholder blob.bin's content:\n%s", text)
	}
}

func TestWriteManifestSharesOneIDCounterAcrossDirsAndFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644)
	os.Mkdir(filepath.Join(dir, "b"), 0o755)

	root := tree.NewDir("", 1000)
	root.AddChild(tree.NewFile("a.txt", 1000, 2, filepath.Join(dir, "a.txt")))
	root.AddChild(tree.NewDir("b", 1000))

	archivePath := filepath.Join(t.TempDir(), "snap.dircontxt")
	if err := archive.Write(archivePath, root); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	a, err := archive.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	text, err := WriteManifest(a.Root, a, version.Version{Major: 1})
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	// The shared counter must have already advanced past a.txt (F001)
	// before reaching b, so b is D002, not D001.
	if !strings.Contains(text, "[F] a.txt (ID:F001") {
		t.Fatalf("expected a.txt to be F001:\n%s", text)
	}
	if !strings.Contains(text, "[D] b (ID:D002") {
		t.Fatalf("expected b to be D002 since it shares the counter with a.txt:\n%s", text)
	}
}

func TestIsLikelyBinary(t *testing.T) {
	if isLikelyBinary([]byte("plain ascii text\nwith newlines\n")) {
		t.Fatalf("plain text should not be classified as binary")
	}
	if !isLikelyBinary([]byte{0x00, 'a', 'b'}) {
		t.Fatalf("data containing a NUL byte should be classified as binary")
	}
}

func TestWriteDiffEmitsPreludeAndFullContentForModifiedFiles(t *testing.T) {
	dir := t.TempDir()

	fPath := filepath.Join(dir, "f.txt")
	os.WriteFile(fPath, []byte("a\nb\nc\nd\n"), 0o644)
	newPath := filepath.Join(dir, "new.txt")
	os.WriteFile(newPath, []byte("brand new"), 0o644)

	newRoot := tree.NewDir("", 2)
	newRoot.AddChild(tree.NewFile("f.txt", 2, 8, fPath))
	newRoot.AddChild(tree.NewFile("new.txt", 2, 9, newPath))
	newArchivePath := filepath.Join(t.TempDir(), "new.dircontxt")
	if err := archive.Write(newArchivePath, newRoot); err != nil {
		t.Fatalf("write new archive: %v", err)
	}
	newArchive, err := archive.Open(newArchivePath)
	if err != nil {
		t.Fatalf("open new archive: %v", err)
	}

	rep := &differ.Report{Entries: []differ.Entry{
		{Type: differ.Modified, RelPath: "f.txt", NewNode: newArchive.Root.Find("f.txt")},
		{Type: differ.Added, RelPath: "new.txt", NewNode: newArchive.Root.Find("new.txt")},
		{Type: differ.Removed, RelPath: "gone.txt"},
	}}

	text, err := WriteDiff(rep, newArchive.Root, newArchive, version.Version{Major: 1}, version.Version{Major: 1, Minor: 1})
	if err != nil {
		t.Fatalf("WriteDiff: %v", err)
	}
	if !strings.HasPrefix(text, "[DIRCONTXT_LLM_DIFF_V1]\n") {
		t.Fatalf("diff text should start with the diff prelude, got %q", text[:30])
	}
	if !strings.Contains(text, "Version Change: V1 -> V1.1") {
		t.Fatalf("diff text missing version change line:\n%s", text)
	}
	if !strings.Contains(text, "[MODIFIED] f.txt") || !strings.Contains(text, "[ADDED] new.txt") || !strings.Contains(text, "[REMOVED] gone.txt") {
		t.Fatalf("diff text missing expected change summary lines:\n%s", text)
	}
	if !strings.Contains(text, "<UPDATED_DIRECTORY_TREE>") {
		t.Fatalf("diff text missing updated directory tree section:\n%s", text)
	}
	if !strings.Contains(text, "a\nb\nc\nd\n") {
		t.Fatalf("diff text should embed the full new content of the modified file:\n%s", text)
	}
	if !strings.Contains(text, "brand new") {
		t.Fatalf("diff text should embed the full content of the added file:\n%s", text)
	}
}
