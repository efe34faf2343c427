// Package skip provides the standard skip-predicate policies spec.md §6
// describes: the core consumes a predicate but does not define one itself
// beyond these. Grounded in rclone's filter package idiom (a path
// predicate consulted by the sync loop before any Action is ever
// considered for that path) and spec.md §6/§8's explicit dotgit/gitignore/
// none policies.
package skip

import "strings"

// Func decides whether candidate (an absolute path under root) must be
// excluded from sync entirely: no signature computed, no action emitted,
// as if it did not exist (spec.md §8 invariant 8).
type Func func(candidate, root string) bool

// SkipNone never skips anything.
func SkipNone(candidate, root string) bool { return false }

// SkipDotGit skips any path whose first relative segment (immediately
// under root) is ".git" (spec.md §6 policy (a), exercised by scenario S6).
func SkipDotGit(candidate, root string) bool {
	rel := strings.TrimPrefix(candidate, root)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return false
	}
	first := rel
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		first = rel[:i]
	}
	return first == ".git"
}
