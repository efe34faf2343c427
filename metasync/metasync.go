// Package metasync emits the minimal metadata Action sequence for one
// diffed Triple, per the table in spec.md §4.6. Content blocks for the
// File-vs-File case are deliberately not emitted here — that's the
// content package's job, run after metadata has been applied so it can
// see the VFS state post-metadata-mutation.
package metasync

import (
	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/plan"
	"github.com/rclone/dsync/signature"
)

// Actions returns the ordered Action sequence for one triple, per the
// local x remote table of spec.md §4.6.
func Actions(dest string, t plan.Triple) []dfs.Action {
	sub := t.Sub
	local := t.Local
	remote := t.Remote

	if local == nil {
		if remote == nil {
			return nil
		}
		return []dfs.Action{dfs.Remove(dest, sub)}
	}

	switch local.Kind {
	case signature.KindDir:
		if remote == nil {
			return []dfs.Action{dfs.PutDir(dest, sub, local.DirPerms)}
		}
		if remote.Kind == signature.KindDir {
			return []dfs.Action{dfs.SetPerms(dest, sub, local.DirPerms)}
		}
		return []dfs.Action{dfs.Remove(dest, sub), dfs.PutDir(dest, sub, local.DirPerms)}

	case signature.KindSymlink:
		if remote == nil {
			return []dfs.Action{dfs.PutLink(dest, sub, local.Target)}
		}
		return []dfs.Action{dfs.Remove(dest, sub), dfs.PutLink(dest, sub, local.Target)}

	case signature.KindFile:
		if remote == nil {
			return []dfs.Action{dfs.PutFile(dest, sub, local.Perms)}
		}
		switch remote.Kind {
		case signature.KindFile:
			if remote.Perms != local.Perms {
				return []dfs.Action{dfs.SetPerms(dest, sub, local.Perms)}
			}
			return nil
		default:
			return []dfs.Action{dfs.Remove(dest, sub), dfs.PutFile(dest, sub, local.Perms)}
		}
	}
	return nil
}
