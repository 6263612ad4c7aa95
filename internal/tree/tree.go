// Package tree holds the in-memory directory tree model shared by the
// walker, archive codec, differ and formatter: a node is either a File or
// a Directory, directories exclusively own their children, and there are
// no back-references — parent context travels down the recursion instead
// of living on the node, the natural ownership primitive for a tree in
// Go rather than the manually managed pointer arrays of a C
// implementation.
package tree

// Type distinguishes a File node from a Directory node.
type Type uint8

const (
	File Type = 0
	Dir  Type = 1
)

func (t Type) String() string {
	if t == Dir {
		return "directory"
	}
	return "file"
}

// Node is one entry in a snapshot tree. RelPath is relative to the
// snapshot root; the root itself is a Dir with an empty RelPath.
//
// File-only fields (Size, ContentOffset, DiskPath) are meaningless on a
// Dir node, and Children is always nil on a File node.
type Node struct {
	Type         Type
	RelPath      string
	ModTime      uint64
	GeneratedID  string

	// File-only.
	Size          uint64
	ContentOffset uint64
	DiskPath      string // absolute path on disk; empty for nodes read back from an archive.

	// Directory-only.
	Children []*Node
}

// NewFile constructs a leaf node. diskPath is the absolute path used to
// read its bytes during archiving; it is empty for nodes reconstructed
// from an archive (content is then addressed purely by offset/size).
func NewFile(relPath string, modTime uint64, size uint64, diskPath string) *Node {
	return &Node{
		Type:     File,
		RelPath:  relPath,
		ModTime:  modTime,
		Size:     size,
		DiskPath: diskPath,
	}
}

// NewDir constructs an empty directory node.
func NewDir(relPath string, modTime uint64) *Node {
	return &Node{Type: Dir, RelPath: relPath, ModTime: modTime}
}

// AddChild appends a child to a directory node, preserving the order it
// is called in. The archive format relies on this order for
// reconstruction, so callers must add children in walk order.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// IsDir reports whether n is a directory node.
func (n *Node) IsDir() bool { return n.Type == Dir }

// Walk visits n and every descendant in pre-order, the same order the
// writer and reader rely on for the archive layout.
func (n *Node) Walk(visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Find looks up the direct child of n whose RelPath equals relPath.
// Returns nil if n is not a directory or has no matching child.
func (n *Node) Find(relPath string) *Node {
	if n == nil || n.Type != Dir {
		return nil
	}
	for _, c := range n.Children {
		if c.RelPath == relPath {
			return c
		}
	}
	return nil
}

// Count returns the total number of nodes in the subtree rooted at n,
// including n itself.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
