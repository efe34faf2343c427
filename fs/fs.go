// Package fs holds the core data types shared by every package in this
// module: content digests, permission bits, subpaths, mappings and the
// action log sent to the remote agent. Nothing in here touches the
// filesystem or the network — it is pure data model, the way rclone's own
// root fs package holds DirEntry/ObjectInfo for the rest of the tree to
// share.
package fs

import (
	"strings"
)

// B is the block size used for content-addressed file hashing and
// transfer. Every regular file is split into B-byte blocks (the final
// block may be short); block i covers bytes [i*B, min((i+1)*B, size)).
const B = 4 * 1024 * 1024

// Bytes is an opaque fixed-length content digest. Equality is bytewise.
type Bytes []byte

// Equal reports whether two digests are bytewise identical.
func (b Bytes) Equal(other Bytes) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// PermSet is a POSIX-style permission bitmask.
type PermSet uint32

// SubPath is a relative path from a mapping root: an ordered,
// case-sensitive sequence of segments, no segment ever "." or ".." or
// empty. It is backed directly by its slash-separated string form (rather
// than a []string field) specifically so it stays comparable and usable as
// a map key everywhere the Signature Scanner and Change Planner key their
// per-subpath results by it — a struct holding a slice could not be.
type SubPath string

// NewSubPath builds a SubPath from already-validated segments. Callers that
// parse an external string should use ParseSubPath instead.
func NewSubPath(segments ...string) SubPath {
	return SubPath(strings.Join(segments, "/"))
}

// ParseSubPath splits a slash-separated relative path into a SubPath,
// dropping empty segments and rejecting "." and "..".
func ParseSubPath(rel string) (SubPath, bool) {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return SubPath(""), true
	}
	parts := strings.Split(rel, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if p == "." || p == ".." {
			return SubPath(""), false
		}
		segs = append(segs, p)
	}
	return SubPath(strings.Join(segs, "/")), true
}

// Segments returns the path segments in order. The caller must not mutate
// the returned slice.
func (s SubPath) Segments() []string {
	if s == "" {
		return nil
	}
	return strings.Split(string(s), "/")
}

// Len returns the number of segments (the "depth" used by the Change
// Planner's sort key).
func (s SubPath) Len() int {
	if s == "" {
		return 0
	}
	return strings.Count(string(s), "/") + 1
}

// Empty reports whether this SubPath addresses the mapping root itself.
func (s SubPath) Empty() bool { return s == "" }

// Last returns the final segment, or "" for the root.
func (s SubPath) Last() string {
	if s == "" {
		return ""
	}
	if i := strings.LastIndexByte(string(s), '/'); i >= 0 {
		return string(s)[i+1:]
	}
	return string(s)
}

// Parent returns the SubPath with the final segment removed.
func (s SubPath) Parent() SubPath {
	if s == "" {
		return s
	}
	if i := strings.LastIndexByte(string(s), '/'); i >= 0 {
		return s[:i]
	}
	return SubPath("")
}

// Child returns a new SubPath with segment appended.
func (s SubPath) Child(segment string) SubPath {
	if s == "" {
		return SubPath(segment)
	}
	return s + "/" + SubPath(segment)
}

// String renders the SubPath as a slash-separated relative path, used for
// the Change Planner's deterministic tie-break and for log messages.
func (s SubPath) String() string {
	return string(s)
}

// Equal reports whether two SubPaths address the same node, segment-wise
// and case-sensitively.
func (s SubPath) Equal(other SubPath) bool {
	return s == other
}

// Mapping pairs a local root directory with the relative destination it is
// mirrored to on the remote. Roots across a configuration are expected to
// be disjoint (no root a prefix of another). config.Validate rejects only
// mappings that share the exact same local root; nested roots are not
// rejected.
type Mapping struct {
	Name       string // human-readable identifier, used in logs
	LocalRoot  string // absolute local directory
	RemoteDest string // relative path under the remote agent's root
}
