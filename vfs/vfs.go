// Package vfs holds the in-memory shadow of the remote tree described in
// spec.md §3/§4.2. It plays the role rclone's own vfs package plays for a
// mounted remote — a local cache of "what the remote contains" — except
// here the remote is a single black-box agent process and, after being
// seeded once from the remote's FullScan listing at startup, the cache is
// kept in lockstep with it purely through the Action log this process has
// already sent.
package vfs

import (
	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/signature"
)

// NodeKind tags a VFS node's variant.
type NodeKind int

const (
	NodeFolder NodeKind = iota
	NodeFile
	NodeSymlink
)

// Node is one entry in the shadow tree. Every non-root node has exactly
// one parent Folder (invariant I1 of spec.md §3); the root is always a
// Folder.
type Node struct {
	Kind  NodeKind
	Perms dfs.PermSet // Folder, File

	Children map[string]*Node // Folder only

	Size        uint64      // File only
	BlockHashes []dfs.Bytes // File only

	Target string // Symlink only
}

func newFolder(perms dfs.PermSet) *Node {
	return &Node{Kind: NodeFolder, Perms: perms, Children: make(map[string]*Node)}
}

// VFS is a rooted tree shadowing one mapping's remote destination.
type VFS struct {
	root *Node
}

// New returns an empty VFS: just a root Folder with no children. It is
// populated by ApplyFullScan at startup (spec.md §4.8 INITIAL_SCAN).
func New() *VFS {
	return &VFS{root: newFolder(0o755)}
}

// Resolve walks from root following sub's segments, returning the node
// reached or (nil, false) if any intermediate segment is missing or is
// not a Folder (spec.md §4.2).
func (v *VFS) Resolve(sub dfs.SubPath) (*Node, bool) {
	n := v.root
	for _, seg := range sub.Segments() {
		if n.Kind != NodeFolder {
			return nil, false
		}
		child, ok := n.Children[seg]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// Signature reconstructs the Signature equivalent of the node at sub, for
// the Change Planner to diff against a freshly computed local Signature.
// Returns nil if absent.
func (v *VFS) Signature(sub dfs.SubPath) *signature.Signature {
	n, ok := v.Resolve(sub)
	if !ok {
		return nil
	}
	switch n.Kind {
	case NodeFolder:
		return signature.Dir(n.Perms)
	case NodeFile:
		return signature.File(n.Perms, n.BlockHashes, n.Size)
	case NodeSymlink:
		return signature.Symlink(n.Target)
	default:
		return nil
	}
}

// parent returns the Folder that should contain sub, creating nothing.
// ok is false if any ancestor is missing or not a Folder.
func (v *VFS) parent(sub dfs.SubPath) (*Node, bool) {
	n := v.root
	segs := sub.Segments()
	for _, seg := range segs[:len(segs)-1] {
		if n.Kind != NodeFolder {
			return nil, false
		}
		child, ok := n.Children[seg]
		if !ok {
			return nil, false
		}
		n = child
	}
	if n.Kind != NodeFolder {
		return nil, false
	}
	return n, true
}

// ApplyAction applies one Action's semantics to the shadow tree, per the
// contract table in spec.md §4.2. The orchestrator must call this only
// after the same Action has already been written to the RPC stream
// (send-before-apply, spec.md §5).
func (v *VFS) ApplyAction(a dfs.Action) {
	switch a.Kind {
	case dfs.ActionRemove:
		v.remove(a.Sub)
	case dfs.ActionPutDir:
		v.putDir(a.Sub, a.Perms)
	case dfs.ActionPutFile:
		v.putFile(a.Sub, a.Perms)
	case dfs.ActionPutLink:
		v.putLink(a.Sub, a.Target)
	case dfs.ActionSetPerms:
		v.setPerms(a.Sub, a.Perms)
	case dfs.ActionWriteChunk:
		v.writeChunk(a.Sub, a.BlockIndex, a.Hash)
	case dfs.ActionSetSize:
		v.setSize(a.Sub, a.Size)
	}
}

func (v *VFS) remove(sub dfs.SubPath) {
	if sub.Empty() {
		v.root = newFolder(v.root.Perms)
		return
	}
	parent, ok := v.parent(sub)
	if !ok {
		return // no-op if absent
	}
	delete(parent.Children, sub.Last())
}

func (v *VFS) ensureSlot(sub dfs.SubPath) (*Node, string, bool) {
	if sub.Empty() {
		return nil, "", false
	}
	parent, ok := v.parent(sub)
	if !ok {
		return nil, "", false
	}
	return parent, sub.Last(), true
}

func (v *VFS) putDir(sub dfs.SubPath, perms dfs.PermSet) {
	if sub.Empty() {
		v.root.Perms = perms
		return
	}
	parent, last, ok := v.ensureSlot(sub)
	if !ok {
		return
	}
	if existing, present := parent.Children[last]; present && existing.Kind == NodeFolder {
		existing.Perms = perms
		return
	}
	parent.Children[last] = newFolder(perms)
}

func (v *VFS) putFile(sub dfs.SubPath, perms dfs.PermSet) {
	parent, last, ok := v.ensureSlot(sub)
	if !ok {
		return
	}
	if existing, present := parent.Children[last]; present && existing.Kind == NodeFile {
		existing.Perms = perms
		existing.Size = 0
		existing.BlockHashes = nil
		return
	}
	parent.Children[last] = &Node{Kind: NodeFile, Perms: perms}
}

func (v *VFS) putLink(sub dfs.SubPath, target string) {
	parent, last, ok := v.ensureSlot(sub)
	if !ok {
		return
	}
	parent.Children[last] = &Node{Kind: NodeSymlink, Target: target}
}

func (v *VFS) setPerms(sub dfs.SubPath, perms dfs.PermSet) {
	n, ok := v.Resolve(sub)
	if !ok {
		return
	}
	n.Perms = perms
}

func (v *VFS) writeChunk(sub dfs.SubPath, index int, hash dfs.Bytes) {
	n, ok := v.Resolve(sub)
	if !ok || n.Kind != NodeFile {
		return
	}
	if need := index + 1; len(n.BlockHashes) < need {
		grown := make([]dfs.Bytes, need)
		copy(grown, n.BlockHashes)
		n.BlockHashes = grown
	}
	n.BlockHashes[index] = hash
}

func (v *VFS) setSize(sub dfs.SubPath, size uint64) {
	n, ok := v.Resolve(sub)
	if !ok || n.Kind != NodeFile {
		return
	}
	n.Size = size
	want := int((size + dfs.B - 1) / dfs.B)
	if size == 0 {
		want = 0
	}
	if len(n.BlockHashes) > want {
		n.BlockHashes = n.BlockHashes[:want]
	}
}
