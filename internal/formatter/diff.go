package formatter

import (
	"bytes"
	"fmt"

	"github.com/Eris-Margeta/dircontxt/internal/archive"
	"github.com/Eris-Margeta/dircontxt/internal/differ"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
	"github.com/Eris-Margeta/dircontxt/internal/version"
)

// WriteDiff renders a diff-file body: the fixed prelude, the
// "Version Change" line, a <CHANGES_SUMMARY> listing every entry, the
// full updated tree, and — per spec §4.6 — content blocks for ADDED
// and MODIFIED files only, keyed by IDs from the updated tree. Line-
// level content diffing stays out of scope; a modified file's content
// block carries the new bytes in full, never a patch against the old.
func WriteDiff(rep *differ.Report, newRoot *tree.Node, newArchive *archive.Archive, fromVer, toVer version.Version) (string, error) {
	contents, err := readContents(newRoot, newArchive)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("[DIRCONTXT_LLM_DIFF_V1]\n")
	fmt.Fprintf(&buf, "Version Change: %s -> %s\n\n", fromVer, toVer)

	buf.WriteString("<CHANGES_SUMMARY>\n")
	for _, e := range rep.Entries {
		suffix := ""
		if e.IsDir {
			suffix = "/"
		}
		fmt.Fprintf(&buf, "[%s] %s%s\n", changeLabel(e.Type), e.RelPath, suffix)
	}
	buf.WriteString("</CHANGES_SUMMARY>\n\n")

	buf.WriteString("<UPDATED_DIRECTORY_TREE>\n")
	nodeIDs := renderEntries(&buf, newRoot, contents)
	buf.WriteString("</UPDATED_DIRECTORY_TREE>\n\n")

	for _, e := range rep.Entries {
		if e.Type != differ.Added && e.Type != differ.Modified {
			continue
		}
		if e.NewNode == nil || e.NewNode.IsDir() {
			continue
		}
		writeContentBlock(&buf, nodeIDs[e.NewNode], e.NewNode.RelPath, contents[e.NewNode])
	}

	return buf.String(), nil
}

func changeLabel(t differ.ChangeType) string {
	switch t {
	case differ.Added:
		return "ADDED"
	case differ.Removed:
		return "REMOVED"
	case differ.Modified:
		return "MODIFIED"
	default:
		return "UNKNOWN"
	}
}
