// Package walker builds an in-memory tree.Node from a directory on
// disk, pruning ignored entries as it goes. Structurally this is the
// teacher's walkwalk.walkDir (filepath.WalkDir-driven traversal with
// per-entry ignore checks) generalized from a flat FileInfo slice to a
// tree.Node tree, since the archive/differ/formatter all need
// parent/child structure rather than a flat list.
package walker

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/Eris-Margeta/dircontxt/internal/dctxlog"
	"github.com/Eris-Margeta/dircontxt/internal/fsutil"
	"github.com/Eris-Margeta/dircontxt/internal/ignore"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
)

// Walk builds a tree rooted at root, applying eng's ignore rules to
// every entry below the root (the root itself is never ignorable).
// Entries that cannot be stat'd are logged and skipped, matching
// spec's IO-kind "log, skip entry, continue" error policy; entries
// whose relative path would exceed tree.MaxPathLen are dropped with a
// warning.
func Walk(root string, eng *ignore.Engine) (*tree.Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	rootNode := tree.NewDir("", fsutil.ModTimeUnix(info))

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	walkChildren(root, "", rootNode, entries, eng)
	return rootNode, nil
}

func walkChildren(absDir, relDir string, parent *tree.Node, entries []os.DirEntry, eng *ignore.Engine) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		relPath := name
		if relDir != "" {
			relPath = filepath.Join(relDir, name)
		}
		if len(relPath) >= tree.MaxPathLen {
			dctxlog.Warn("walker: skipping %q, path exceeds %d bytes", relPath, tree.MaxPathLen)
			continue
		}

		absPath := filepath.Join(absDir, name)
		isDir := entry.IsDir()

		// The ignore engine needs a trailing separator on directory
		// paths so a PREFIX rule parsed from "dir/*" (stored as "dir/")
		// matches the directory entry itself, not just its descendants.
		matchPath := relPath
		if isDir {
			matchPath += "/"
		}
		if eng.Match(matchPath, name, isDir) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			dctxlog.Warn("walker: stat %q: %v", absPath, err)
			continue
		}

		if isDir {
			dirNode := tree.NewDir(relPath, fsutil.ModTimeUnix(info))
			sub, err := os.ReadDir(absPath)
			if err != nil {
				dctxlog.Warn("walker: read dir %q: %v", absPath, err)
				parent.AddChild(dirNode)
				continue
			}
			walkChildren(absPath, relPath, dirNode, sub, eng)
			parent.AddChild(dirNode)
			continue
		}

		fileNode := tree.NewFile(relPath, fsutil.ModTimeUnix(info), uint64(info.Size()), absPath)
		parent.AddChild(fileNode)
	}
}
