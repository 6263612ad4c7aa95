// Package formatter renders a snapshot tree and a diff report into the
// text outputs an LLM consumes: the manifest (.llmcontext.txt) and the
// diff file (.llmcontext-Vx.y-diff.txt). ID assignment, binary
// classification and the manifest line grammar mirror
// original_source/src/llm_formatter.c's write_manifest_entry_recursive
// and is_likely_binary exactly, since the spec fixes these formats as
// an external interface an LLM client parses.
package formatter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Eris-Margeta/dircontxt/internal/archive"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
	"github.com/Eris-Margeta/dircontxt/internal/version"
)

const binarySniffLimit = 512

// binaryExts is the fixed extension set the manifest's CONTENT:BINARY_HINT
// annotation is gated on: images, audio/video, archives, executables,
// object files, compiled bytecode, and common binary databases.
var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tiff": true, ".ico": true,
	".mp3": true, ".wav": true, ".aac": true, ".ogg": true, ".flac": true, ".mp4": true, ".mov": true,
	".avi": true, ".mkv": true, ".webm": true, ".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".o": true, ".a": true, ".lib": true, ".zip": true, ".gz": true, ".tar": true, ".bz2": true,
	".rar": true, ".7z": true, ".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".bin": true, ".dat": true, ".iso": true, ".img": true, ".class": true,
	".jar": true, ".pyc": true, ".sqlite": true, ".db": true,
}

// isBinaryExtension reports whether relPath's extension, case
// insensitive, is in the fixed binary-extension set. This is the sole
// gate for the manifest's CONTENT:BINARY_HINT annotation — unlike
// isLikelyBinary's content sniff, it never looks at file bytes.
func isBinaryExtension(relPath string) bool {
	ext := filepath.Ext(relPath)
	if ext == "" {
		return false
	}
	return binaryExts[strings.ToLower(ext)]
}

const instructions = `<INSTRUCTIONS>
This file is a machine-generated snapshot manifest for an LLM coding
assistant. Each entry below lists a directory or file with a stable
ID, its relative path, and its last-modified timestamp. File entries
also carry a byte size and, for files whose extension marks them as
likely binary, a CONTENT:BINARY_HINT annotation.
File contents follow in <FILE_CONTENT_START ID="..." PATH="...">
blocks keyed by the same IDs; a file whose bytes look binary gets a
size placeholder instead of its content.
</INSTRUCTIONS>`

// idCounters assigns manifest IDs the way the original's shared
// counter does: directories and files draw from the *same* monotonic
// counter in pre-order, so a directory encountered right after a file
// does not reuse the file's number — only the root gets the fixed
// ROOT id.
type idCounters struct {
	n int
}

func (c *idCounters) assign(n *tree.Node) string {
	if n.RelPath == "" {
		return "ROOT"
	}
	c.n++
	if n.IsDir() {
		return fmt.Sprintf("D%03d", c.n)
	}
	return fmt.Sprintf("F%03d", c.n)
}

// WriteManifest renders the full manifest text for root, tagged with
// ver at the top. File content blocks read bytes back from a (the
// just-written archive) so the manifest and archive always agree.
func WriteManifest(root *tree.Node, a *archive.Archive, ver version.Version) (string, error) {
	contents, err := readContents(root, a)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[DIRCONTXT_LLM_SNAPSHOT_%s]\n", ver)
	buf.WriteString(instructions)
	buf.WriteString("\n\n<DIRECTORY_TREE>\n")

	nodeIDs := renderEntries(&buf, root, contents)

	buf.WriteString("</DIRECTORY_TREE>\n\n<FILE_CONTENTS>\n")

	root.Walk(func(n *tree.Node) {
		if n.IsDir() {
			return
		}
		writeContentBlock(&buf, nodeIDs[n], n.RelPath, contents[n])
	})
	buf.WriteString("</FILE_CONTENTS>\n")
	return buf.String(), nil
}

// readContents reads every file node's bytes back out of a, keyed by
// node pointer, so the content-block pass (including its binary
// placeholder decision) works from one archive read per file.
func readContents(root *tree.Node, a *archive.Archive) (map[*tree.Node][]byte, error) {
	contents := make(map[*tree.Node][]byte)
	var readErr error
	root.Walk(func(n *tree.Node) {
		if readErr != nil || n.IsDir() {
			return
		}
		data, err := a.ReadContent(n)
		if err != nil {
			readErr = err
			return
		}
		contents[n] = data
	})
	if readErr != nil {
		return nil, readErr
	}
	return contents, nil
}

// renderEntries writes the pre-order node listing for root into buf,
// without any surrounding section tag, so callers can wrap it as either
// the manifest's <DIRECTORY_TREE> or the diff file's
// <UPDATED_DIRECTORY_TREE>. Returns the ID assigned to every node.
func renderEntries(buf *bytes.Buffer, root *tree.Node, contents map[*tree.Node][]byte) map[*tree.Node]string {
	ids := &idCounters{}
	nodeIDs := make(map[*tree.Node]string)
	writeEntry(buf, root, ids, nodeIDs, contents, 0)
	return nodeIDs
}

func writeEntry(buf *bytes.Buffer, n *tree.Node, ids *idCounters, nodeIDs map[*tree.Node]string, contents map[*tree.Node][]byte, depth int) {
	id := ids.assign(n)
	nodeIDs[n] = id

	indent := strings.Repeat("  ", depth)
	ts := time.Unix(int64(n.ModTime), 0).UTC().Format(time.RFC3339)

	if n.IsDir() {
		label := n.RelPath
		if label == "" {
			label = "."
		}
		fmt.Fprintf(buf, "%s[D] %s (ID:%s, MOD:%s)\n", indent, label, id, ts)
		for _, c := range n.Children {
			writeEntry(buf, c, ids, nodeIDs, contents, depth+1)
		}
		return
	}

	fmt.Fprintf(buf, "%s[F] %s (ID:%s, MOD:%s, SIZE:%d", indent, n.RelPath, id, ts, n.Size)
	if isBinaryExtension(n.RelPath) {
		buf.WriteString(", CONTENT:BINARY_HINT")
	}
	buf.WriteString(")\n")
}

func writeContentBlock(buf *bytes.Buffer, id, relPath string, data []byte) {
	fmt.Fprintf(buf, "<FILE_CONTENT_START ID=%q PATH=%q>\n", id, relPath)
	if isLikelyBinary(data) {
		fmt.Fprintf(buf, "[BINARY CONTENT PLACEHOLDER - Size: %d bytes]\n", len(data))
	} else {
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	fmt.Fprintf(buf, "</FILE_CONTENT_END ID=%q>\n", id)
}

// isLikelyBinary mirrors is_likely_binary: a NUL byte anywhere in the
// sniffed prefix, or more than 20% non-printable/non-whitespace bytes
// in that prefix, marks the file as binary.
func isLikelyBinary(data []byte) bool {
	n := len(data)
	if n > binarySniffLimit {
		n = binarySniffLimit
	}
	sample := data[:n]
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	if n == 0 {
		return false
	}

	nonPrintable := 0
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size == 1 {
			nonPrintable++
		} else if !isPrintableOrSpace(r) {
			nonPrintable++
		}
		sample = sample[size:]
	}
	return float64(nonPrintable)/float64(n) > 0.20
}

func isPrintableOrSpace(r rune) bool {
	switch r {
	case '\n', '\r', '\t':
		return true
	}
	return r >= 0x20 && r != 0x7f
}
