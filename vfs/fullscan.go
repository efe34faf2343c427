package vfs

import (
	"sort"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/signature"
)

// Entry is one (subpath, signature) pair returned by the remote agent's
// FullScan response (spec.md §6).
type Entry struct {
	Sub dfs.SubPath
	Sig *signature.Signature
}

// ApplyFullScan rebuilds the shadow tree from a FullScan response. Entries
// are applied shallowest-first (parents before children) so that a
// PutFile/PutLink for a nested path always lands after its containing
// Folder exists — the same ordering invariant the Change Planner's own
// sort enforces for live diffs (spec.md §4.5).
func ApplyFullScan(v *VFS, entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Sub.Len() < entries[j].Sub.Len()
	})
	for _, e := range entries {
		if e.Sig == nil {
			continue
		}
		switch e.Sig.Kind {
		case signature.KindDir:
			v.putDir(e.Sub, e.Sig.DirPerms)
		case signature.KindFile:
			v.putFile(e.Sub, e.Sig.Perms)
			n, ok := v.Resolve(e.Sub)
			if ok && n.Kind == NodeFile {
				n.BlockHashes = append([]dfs.Bytes(nil), e.Sig.BlockHashes...)
				n.Size = e.Sig.Size
			}
		case signature.KindSymlink:
			v.putLink(e.Sub, e.Sig.Target)
		}
	}
}
