// Package signature computes the synchronization-relevant fingerprint of
// one filesystem entry (spec.md §4.1), grounded in how rclone's
// backend/local hashes and stats a local file: read it block by block with
// a caller-supplied reusable buffer, accumulate one digest per block, and
// classify directories/symlinks/unsupported types without ever resolving a
// symlink's target.
package signature

import (
	"crypto/md5"
	"io"
	"os"

	dfs "github.com/rclone/dsync/fs"
)

// Kind tags the Signature variant.
type Kind int

const (
	// KindOther covers devices, sockets, fifos — treated as absent.
	KindOther Kind = iota
	KindFile
	KindDir
	KindSymlink
)

// Signature is the tagged variant identifying the sync-relevant state of
// one filesystem entry (spec.md §3).
type Signature struct {
	Kind Kind

	// KindFile
	Perms       dfs.PermSet
	BlockHashes []dfs.Bytes
	Size        uint64

	// KindDir
	DirPerms dfs.PermSet

	// KindSymlink
	Target string
}

// File builds a KindFile signature.
func File(perms dfs.PermSet, blockHashes []dfs.Bytes, size uint64) *Signature {
	return &Signature{Kind: KindFile, Perms: perms, BlockHashes: blockHashes, Size: size}
}

// Dir builds a KindDir signature.
func Dir(perms dfs.PermSet) *Signature {
	return &Signature{Kind: KindDir, DirPerms: perms}
}

// Symlink builds a KindSymlink signature.
func Symlink(target string) *Signature {
	return &Signature{Kind: KindSymlink, Target: target}
}

// Equal reports whether two signatures (possibly nil) describe the same
// sync-relevant state. nil is only equal to nil.
func Equal(a, b *Signature) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindDir:
		return a.DirPerms == b.DirPerms
	case KindSymlink:
		return a.Target == b.Target
	case KindFile:
		if a.Perms != b.Perms || a.Size != b.Size || len(a.BlockHashes) != len(b.BlockHashes) {
			return false
		}
		for i := range a.BlockHashes {
			if !a.BlockHashes[i].Equal(b.BlockHashes[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Compute returns the Signature of the file at abs, or nil if it is
// unsupported (KindOther) or an I/O error occurred (the caller treats a
// nil return the same as "absent"). buf must be exactly B bytes; Compute
// reuses it across block reads and the caller may reuse it again once
// Compute returns.
func Compute(abs string, buf []byte, info os.FileInfo) (*Signature, error) {
	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		target, err := os.Readlink(abs)
		if err != nil {
			return nil, err
		}
		return Symlink(target), nil
	case mode.IsDir():
		return Dir(permsOf(info)), nil
	case mode.IsRegular():
		return computeFile(abs, buf, permsOf(info))
	default:
		return nil, nil
	}
}

func computeFile(abs string, buf []byte, perms dfs.PermSet) (*Signature, error) {
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hashes []dfs.Bytes
	var total uint64
	for {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			sum := md5.Sum(buf[:n])
			hashes = append(hashes, dfs.Bytes(sum[:]))
			total += uint64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n < len(buf) {
			break
		}
	}
	return File(perms, hashes, total), nil
}
