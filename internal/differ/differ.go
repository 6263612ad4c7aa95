// Package differ compares two snapshot trees structurally (added,
// removed, modified) and then suppresses false-positive modifications
// by byte-comparing content, mirroring original_source/src/diff.c's
// compare_nodes_recursive two-pass shape: pair children by relative
// path first, then verify. The pairing-by-path step is the same
// problem the teacher's cache.BuildDelta/indexByPath solves for a flat
// file list, done here over tree children instead.
package differ

import (
	"bytes"
	"os"
	"sort"

	"github.com/Eris-Margeta/dircontxt/internal/archive"
	"github.com/Eris-Margeta/dircontxt/internal/dctxerr"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
)

// ChangeType classifies one DiffEntry.
type ChangeType int

const (
	Added ChangeType = iota
	Removed
	Modified
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Entry is one reported change between an old and new tree.
type Entry struct {
	Type    ChangeType
	RelPath string
	IsDir   bool
	OldNode *tree.Node
	NewNode *tree.Node
}

// Report is the full structural diff between two trees, in
// deterministic path order.
type Report struct {
	Entries []Entry
}

// Compare walks oldRoot/newRoot in tandem, pairing children by
// RelPath. oldArchive is the already-open archive the old tree was
// read from; it is used to read old file bytes directly from its data
// section (before the new archive overwrites the file on disk) when
// suppressing a false-positive modification.
func Compare(oldRoot, newRoot *tree.Node, oldArchive *archive.Archive) (*Report, error) {
	rep := &Report{}
	if err := compareNode(oldRoot, newRoot, rep, oldArchive); err != nil {
		return nil, err
	}
	sort.Slice(rep.Entries, func(i, j int) bool { return rep.Entries[i].RelPath < rep.Entries[j].RelPath })
	return rep, nil
}

func compareNode(oldNode, newNode *tree.Node, rep *Report, oldArchive *archive.Archive) error {
	oldChildren := indexChildren(oldNode)
	newChildren := indexChildren(newNode)

	// Additions and (candidate) modifications: iterate new's children.
	for _, nc := range newNode.Children {
		oc, existed := oldChildren[nc.RelPath]
		if !existed {
			rep.Entries = append(rep.Entries, Entry{Type: Added, RelPath: nc.RelPath, IsDir: nc.IsDir(), NewNode: nc})
			continue
		}
		if oc.IsDir() != nc.IsDir() {
			// Type flip (file <-> directory at the same path) is a single
			// modified entry, not a remove+add pair.
			rep.Entries = append(rep.Entries, Entry{Type: Modified, RelPath: nc.RelPath, IsDir: nc.IsDir(), OldNode: oc, NewNode: nc})
			continue
		}
		if nc.IsDir() {
			if err := compareNode(oc, nc, rep, oldArchive); err != nil {
				return err
			}
			continue
		}
		changed, err := fileChanged(oc, nc, oldArchive)
		if err != nil {
			return err
		}
		if changed {
			rep.Entries = append(rep.Entries, Entry{Type: Modified, RelPath: nc.RelPath, IsDir: false, OldNode: oc, NewNode: nc})
		}
	}

	// Removals: iterate old's children for anything missing from new.
	for _, oc := range oldNode.Children {
		if _, stillExists := newChildren[oc.RelPath]; !stillExists {
			rep.Entries = append(rep.Entries, Entry{Type: Removed, RelPath: oc.RelPath, IsDir: oc.IsDir(), OldNode: oc})
		}
	}
	return nil
}

func indexChildren(n *tree.Node) map[string]*tree.Node {
	m := make(map[string]*tree.Node, len(n.Children))
	for _, c := range n.Children {
		m[c.RelPath] = c
	}
	return m
}

// fileChanged reports whether a file genuinely changed: size mismatch
// is decisive; equal size and equal mtime means unchanged; equal size
// with a different mtime falls through to a byte comparison between
// the old archive's stored bytes and the new file's bytes on disk,
// the false-positive suppression pass the spec requires (a touch
// without content change must not appear as Modified).
func fileChanged(oldNode, newNode *tree.Node, oldArchive *archive.Archive) (bool, error) {
	if oldNode.Size != newNode.Size {
		return true, nil
	}
	if oldNode.ModTime == newNode.ModTime {
		return false, nil
	}

	oldBytes, err := oldArchive.ReadContent(oldNode)
	if err != nil {
		return false, dctxerr.WrapFormat("read old content for "+oldNode.RelPath, err)
	}
	newBytes, err := os.ReadFile(newNode.DiskPath)
	if err != nil {
		return false, dctxerr.WrapIO("read new content for "+newNode.RelPath, err)
	}
	return !bytes.Equal(oldBytes, newBytes), nil
}
