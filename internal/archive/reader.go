package archive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Eris-Margeta/dircontxt/internal/dctxerr"
	"github.com/Eris-Margeta/dircontxt/internal/tree"
)

// Archive is a parsed binary snapshot: the reconstructed tree plus the
// byte offset of the data section within the file, needed to turn a
// node's (ContentOffset, Size) into an absolute file offset for
// random-access reads.
type Archive struct {
	Root            *tree.Node
	path            string
	dataSectionStart int64
}

// Open reads and parses the archive at path. A bad signature or a
// truncated/inconsistent header is reported as a dctxerr.KindFormat
// error; callers (the orchestrator) treat that the same as the prior
// archive being entirely absent.
//
// The header stream carries no length prefix, so the header is parsed
// by recursive descent to its natural end (§4.4): a countingReader
// tracks exactly how many header bytes readNode consumed, and that
// count is what locates the data section start.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, dctxerr.WrapIO("open archive", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, dctxerr.WrapFormat("read signature", err)
	}
	if string(sig) != Signature {
		return nil, dctxerr.WrapFormat("signature", fmt.Errorf("bad signature %q", sig))
	}

	cr := &countingReader{r: r}
	root, err := readNode(cr)
	if err != nil {
		return nil, dctxerr.WrapFormat("parse header", err)
	}

	dataStart := int64(len(Signature)) + cr.n
	return &Archive{Root: root, path: path, dataSectionStart: dataStart}, nil
}

// countingReader tracks how many bytes have been read through it, used
// to locate the data section start once the header's recursive-descent
// parse reaches its natural end.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ReadContent returns the raw bytes for the file node n, reading
// directly from the archive file at dataSectionStart+n.ContentOffset.
func (a *Archive) ReadContent(n *tree.Node) ([]byte, error) {
	if n.IsDir() {
		return nil, fmt.Errorf("%q is a directory", n.RelPath)
	}
	f, err := os.Open(a.path)
	if err != nil {
		return nil, dctxerr.WrapIO("open archive for content read", err)
	}
	defer f.Close()

	buf := make([]byte, n.Size)
	if n.Size == 0 {
		return buf, nil
	}
	offset := a.dataSectionStart + int64(n.ContentOffset)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, dctxerr.WrapFormat("read content", err)
	}
	return buf, nil
}

// readNode parses one node record and, for directories, its children
// recursively — the exact mirror of writeNode's layout.
func readNode(r io.Reader) (*tree.Node, error) {
	var recType uint8
	if err := binary.Read(r, binary.LittleEndian, &recType); err != nil {
		return nil, err
	}

	var pathLen uint16
	if err := binary.Read(r, binary.LittleEndian, &pathLen); err != nil {
		return nil, err
	}
	if uint32(pathLen) >= tree.MaxPathLen {
		return nil, fmt.Errorf("path length %d exceeds max %d", pathLen, tree.MaxPathLen)
	}
	pathBytes := make([]byte, pathLen)
	if _, err := io.ReadFull(r, pathBytes); err != nil {
		return nil, err
	}

	var modTime uint64
	if err := binary.Read(r, binary.LittleEndian, &modTime); err != nil {
		return nil, err
	}

	relPath := string(pathBytes)

	switch recType {
	case recordFile:
		var offset, size uint64
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		n := tree.NewFile(relPath, modTime, size, "")
		n.ContentOffset = offset
		return n, nil

	case recordDir:
		var childCount uint32
		if err := binary.Read(r, binary.LittleEndian, &childCount); err != nil {
			return nil, err
		}
		n := tree.NewDir(relPath, modTime)
		for i := uint32(0); i < childCount; i++ {
			child, err := readNode(r)
			if err != nil {
				return nil, err
			}
			n.AddChild(child)
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown record type %d", recType)
	}
}
