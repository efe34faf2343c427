package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/signature"
)

func sub(parts ...string) dfs.SubPath { return dfs.NewSubPath(parts...) }

func TestDiffDropsEqualEntries(t *testing.T) {
	local := map[dfs.SubPath]*signature.Signature{
		sub("a.txt"): signature.File(0o644, nil, 0),
	}
	remote := func(dfs.SubPath) *signature.Signature { return signature.File(0o644, nil, 0) }

	triples := Diff(local, remote)
	assert.Empty(t, triples)
}

func TestDiffShallowFirst(t *testing.T) {
	local := map[dfs.SubPath]*signature.Signature{
		sub("foo", "bar.txt"): signature.File(0o644, nil, 0),
		sub("foo"):            signature.Dir(0o755),
	}
	remote := func(dfs.SubPath) *signature.Signature { return nil }

	triples := Diff(local, remote)
	require.Len(t, triples, 2)
	assert.Equal(t, sub("foo"), triples[0].Sub)
	assert.Equal(t, sub("foo", "bar.txt"), triples[1].Sub)
}

func TestDiffDeletionsBeforeCreationsAtSameDepth(t *testing.T) {
	local := map[dfs.SubPath]*signature.Signature{
		sub("Foo"): signature.Dir(0o755),
		sub("bar"): nil, // deletion: local absent
	}
	remote := func(s dfs.SubPath) *signature.Signature {
		if s.Equal(sub("bar")) {
			return signature.Dir(0o755)
		}
		return nil
	}

	triples := Diff(local, remote)
	require.Len(t, triples, 2)
	assert.Equal(t, sub("bar"), triples[0].Sub, "deletion must precede creation at the same depth")
	assert.Equal(t, sub("Foo"), triples[1].Sub)
}

func TestDiffTieBreaksByString(t *testing.T) {
	local := map[dfs.SubPath]*signature.Signature{
		sub("b.txt"): signature.Dir(0o755),
		sub("a.txt"): signature.Dir(0o755),
	}
	remote := func(dfs.SubPath) *signature.Signature { return nil }

	triples := Diff(local, remote)
	require.Len(t, triples, 2)
	assert.Equal(t, sub("a.txt"), triples[0].Sub)
	assert.Equal(t, sub("b.txt"), triples[1].Sub)
}

func TestDiffIsDeterministic(t *testing.T) {
	local := map[dfs.SubPath]*signature.Signature{
		sub("z"):           signature.Dir(0o755),
		sub("a"):           signature.Dir(0o755),
		sub("m", "n.txt"):  signature.File(0o644, nil, 0),
		sub("a", "b", "c"): signature.File(0o644, nil, 0),
	}
	remote := func(dfs.SubPath) *signature.Signature { return nil }

	first := Diff(local, remote)
	for i := 0; i < 20; i++ {
		again := Diff(local, remote)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].Sub, again[j].Sub)
		}
	}
}

// S4 from spec.md §8: case rename foo -> Foo on a case-insensitive host.
func TestDiffCaseRenameScenario(t *testing.T) {
	local := map[dfs.SubPath]*signature.Signature{
		sub("foo"):            nil,
		sub("foo", "bar.txt"): nil,
		sub("Foo"):            signature.Dir(0o755),
		sub("Foo", "bar.txt"): signature.File(0o644, nil, 0),
	}
	remote := func(s dfs.SubPath) *signature.Signature {
		switch {
		case s.Equal(sub("foo")):
			return signature.Dir(0o755)
		case s.Equal(sub("foo", "bar.txt")):
			return signature.File(0o644, nil, 0)
		default:
			return nil
		}
	}

	triples := Diff(local, remote)
	require.Len(t, triples, 4)
	// depth 1: deletion (foo) then creation (Foo)
	assert.Equal(t, sub("foo"), triples[0].Sub)
	assert.Equal(t, sub("Foo"), triples[1].Sub)
	// depth 2: deletion (foo/bar.txt) then creation (Foo/bar.txt)
	assert.Equal(t, sub("foo", "bar.txt"), triples[2].Sub)
	assert.Equal(t, sub("Foo", "bar.txt"), triples[3].Sub)
}
