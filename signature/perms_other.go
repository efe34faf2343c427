//go:build windows || plan9

package signature

import (
	"os"

	dfs "github.com/rclone/dsync/fs"
)

// defaultPerms is returned for writable non-directory entries on platforms
// with no POSIX mode bits to read, mirroring backend/local's windows-tagged
// files, which synthesize fixed modes rather than pretending NTFS ACLs map
// onto a PermSet. Directories get 0o755 and read-only entries 0o444.
const defaultPerms = dfs.PermSet(0o644)

func permsOf(info os.FileInfo) dfs.PermSet {
	if info.IsDir() {
		return dfs.PermSet(0o755)
	}
	if info.Mode().Perm()&0o200 == 0 {
		return dfs.PermSet(0o444)
	}
	return defaultPerms
}
