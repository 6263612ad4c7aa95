// Package archive implements dircontxt's binary snapshot format: an
// 8-byte signature, a pre-order header stream describing the tree, and
// a trailing data stream holding concatenated file bytes. The header
// stream carries no explicit length field — the reader parses it by
// recursive descent to its natural end, the same way the writer itself
// never computes a header length up front.
//
// The format is purpose-built (flat, uncompressed, offset-addressed)
// rather than reusing the teacher's archive/zip codec, since the spec
// calls for random-access reads by (offset, size) pairs into a single
// contiguous data section — something a general compressed-archive
// format does not give for free. The two-pass write strategy (collect
// file bytes into a data buffer first, then serialize headers once
// every offset is known) mirrors writer.c's
// collect_file_data_and_update_nodes_recursive followed by
// serialize_header_recursive.
package archive

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Eris-Margeta/dircontxt/internal/dctxerr"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
)

// Signature is the fixed 8-byte ASCII marker at the start of every
// archive file.
const Signature = "DIRCTXTV"

const (
	recordFile = uint8(0)
	recordDir  = uint8(1)
)

// Write serializes root to path as a two-pass binary archive: pass one
// walks root collecting file bytes into an in-memory data buffer and
// recording each file's offset/size into its node; pass two serializes
// the pre-order header stream now that every offset is final. The file
// is written atomically via a temp file + rename, the same pattern the
// teacher's cache.Save uses.
func Write(path string, root *tree.Node) error {
	var data bytes.Buffer
	if err := collectData(root, &data); err != nil {
		return dctxerr.WrapIO("collect file data", err)
	}

	var header bytes.Buffer
	if err := writeNode(&header, root); err != nil {
		return dctxerr.WrapFatal("serialize header", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dctx-tmp-*")
	if err != nil {
		return dctxerr.WrapFatal("create temp archive", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(Signature); err != nil {
		tmp.Close()
		return dctxerr.WrapFatal("write signature", err)
	}
	if _, err := w.Write(header.Bytes()); err != nil {
		tmp.Close()
		return dctxerr.WrapFatal("write header", err)
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		tmp.Close()
		return dctxerr.WrapFatal("write data", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return dctxerr.WrapFatal("flush archive", err)
	}
	if err := tmp.Close(); err != nil {
		return dctxerr.WrapFatal("close temp archive", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return dctxerr.WrapFatal("rename archive into place", err)
	}
	return nil
}

// collectData recurses root in pre-order, reading every file's bytes
// from disk into data and stamping the node's ContentOffset/Size as it
// goes — pass one of the writer.
func collectData(n *tree.Node, data *bytes.Buffer) error {
	if n.IsDir() {
		for _, c := range n.Children {
			if err := collectData(c, data); err != nil {
				return err
			}
		}
		return nil
	}

	f, err := os.Open(n.DiskPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", n.DiskPath, err)
	}
	defer f.Close()

	n.ContentOffset = uint64(data.Len())
	written, err := io.Copy(data, f)
	if err != nil {
		return fmt.Errorf("read %s: %w", n.DiskPath, err)
	}
	n.Size = uint64(written)
	return nil
}

// writeNode serializes one node and its descendants in pre-order, the
// on-disk layout spec.md §4.3/§6 fixes exactly:
//
//	offset  field                  size
//	0       node_type (0/1)        1
//	1       path_length (P)        2  (LE, unsigned)
//	3       path_bytes (UTF-8)     P
//	3+P     last_modified_ts       8  (LE, unsigned)
//	11+P    per-type body          —
//
// File body: content_offset (8, LE), content_size (8, LE). Directory
// body: child_count (4, LE) followed immediately by that many child
// records. There is no length prefix anywhere in the header stream —
// the reader parses it by recursive descent to its natural end.
func writeNode(w io.Writer, n *tree.Node) error {
	if len(n.RelPath) >= tree.MaxPathLen {
		return fmt.Errorf("path %q exceeds max length %d", n.RelPath, tree.MaxPathLen)
	}

	recType := recordFile
	if n.IsDir() {
		recType = recordDir
	}
	if err := binary.Write(w, binary.LittleEndian, recType); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(n.RelPath))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, n.RelPath); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.ModTime); err != nil {
		return err
	}

	if !n.IsDir() {
		if err := binary.Write(w, binary.LittleEndian, n.ContentOffset); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, n.Size)
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(n.Children))); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeNode(w, c); err != nil {
			return err
		}
	}
	return nil
}
