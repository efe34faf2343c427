// Package plan implements the Change Planner (spec.md §4.5): diff local
// vs. VFS signatures and produce a deterministically ordered action
// sequence. The shape — walk two signature maps, diff, emit ordered
// actions — mirrors rclone's fs/march package's directory-tree comparison,
// reimplemented here against flat SubPath->Signature maps since march's
// own source did not survive retrieval.
package plan

import (
	"sort"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/signature"
)

// Triple is one diffed entry: Local is the freshly computed local
// signature (nil if absent), Remote is the VFS's believed remote
// signature (nil if absent). Triples are dropped when Local and Remote
// are equal (spec.md §4.5).
type Triple struct {
	Sub    dfs.SubPath
	Local  *signature.Signature
	Remote *signature.Signature
}

// Diff compares local against the VFS's remote signature for each
// candidate subpath and returns the changed triples in the sort order
// spec.md §4.5 requires:
//
//  1. shallowest SubPath first (a folder before its children);
//  2. within the same depth, deletions (Local == nil) before
//     creations/updates — required so a case-rename's delete lands
//     before the create;
//  3. tie-break by the subpath's string form, for determinism.
func Diff(candidates map[dfs.SubPath]*signature.Signature, remoteOf func(dfs.SubPath) *signature.Signature) []Triple {
	triples := make([]Triple, 0, len(candidates))
	for sub, local := range candidates {
		remote := remoteOf(sub)
		if signature.Equal(local, remote) {
			continue
		}
		triples = append(triples, Triple{Sub: sub, Local: local, Remote: remote})
	}

	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a.Sub.Len() != b.Sub.Len() {
			return a.Sub.Len() < b.Sub.Len()
		}
		aDelete := a.Local == nil
		bDelete := b.Local == nil
		if aDelete != bDelete {
			return aDelete // deletions first
		}
		return a.Sub.String() < b.Sub.String()
	})

	return triples
}
