//go:build !windows && !plan9

package signature

import (
	"os"
	"syscall"

	dfs "github.com/rclone/dsync/fs"
)

// permsOf extracts the real POSIX mode bits, the way backend/local's
// unix-tagged files (lchmod_unix.go, stat_unix.go) read st_mode off the
// underlying syscall.Stat_t rather than trusting only os.FileMode's
// portable bits.
func permsOf(info os.FileInfo) dfs.PermSet {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return dfs.PermSet(st.Mode & 0o7777)
	}
	return dfs.PermSet(info.Mode().Perm())
}
