package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/signature"
)

func sub(parts ...string) dfs.SubPath { return dfs.NewSubPath(parts...) }

func TestResolveMissing(t *testing.T) {
	v := New()
	_, ok := v.Resolve(sub("foo", "bar.txt"))
	assert.False(t, ok)
}

func TestPutDirThenPutFile(t *testing.T) {
	v := New()
	v.ApplyAction(dfs.PutDir("", sub("foo"), 0o755))
	v.ApplyAction(dfs.PutFile("", sub("foo", "bar.txt"), 0o644))

	n, ok := v.Resolve(sub("foo", "bar.txt"))
	require.True(t, ok)
	assert.Equal(t, NodeFile, n.Kind)
	assert.Equal(t, dfs.PermSet(0o644), n.Perms)
	assert.Equal(t, uint64(0), n.Size)
	assert.Empty(t, n.BlockHashes)
}

func TestWriteChunkThenSetSize(t *testing.T) {
	v := New()
	v.ApplyAction(dfs.PutFile("", sub("a.txt"), 0o644))
	h := dfs.Bytes([]byte("0123456789abcdef"))
	v.ApplyAction(dfs.WriteChunk("", sub("a.txt"), 0, h, []byte("x")))
	v.ApplyAction(dfs.SetSize("", sub("a.txt"), 1))

	n, ok := v.Resolve(sub("a.txt"))
	require.True(t, ok)
	require.Len(t, n.BlockHashes, 1)
	assert.True(t, n.BlockHashes[0].Equal(h))
	assert.Equal(t, uint64(1), n.Size)
}

func TestWriteChunkLeavesGapsUnset(t *testing.T) {
	v := New()
	v.ApplyAction(dfs.PutFile("", sub("a.txt"), 0o644))
	h1 := dfs.Bytes([]byte("1111111111111111"))
	v.ApplyAction(dfs.WriteChunk("", sub("a.txt"), 1, h1, []byte("y")))

	n, _ := v.Resolve(sub("a.txt"))
	require.Len(t, n.BlockHashes, 2)
	assert.Nil(t, n.BlockHashes[0])
	assert.True(t, n.BlockHashes[1].Equal(h1))
}

func TestSetSizeTruncatesBlockHashes(t *testing.T) {
	v := New()
	v.ApplyAction(dfs.PutFile("", sub("a.txt"), 0o644))
	h0 := dfs.Bytes([]byte("0000000000000000"))
	h1 := dfs.Bytes([]byte("1111111111111111"))
	v.ApplyAction(dfs.WriteChunk("", sub("a.txt"), 0, h0, nil))
	v.ApplyAction(dfs.WriteChunk("", sub("a.txt"), 1, h1, nil))
	v.ApplyAction(dfs.SetSize("", sub("a.txt"), dfs.B)) // one block's worth

	n, _ := v.Resolve(sub("a.txt"))
	require.Len(t, n.BlockHashes, 1)
	assert.True(t, n.BlockHashes[0].Equal(h0))
}

func TestRemoveDeletesSubtree(t *testing.T) {
	v := New()
	v.ApplyAction(dfs.PutDir("", sub("foo"), 0o755))
	v.ApplyAction(dfs.PutFile("", sub("foo", "bar.txt"), 0o644))
	v.ApplyAction(dfs.Remove("", sub("foo")))

	_, ok := v.Resolve(sub("foo"))
	assert.False(t, ok)
	_, ok = v.Resolve(sub("foo", "bar.txt"))
	assert.False(t, ok)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	v := New()
	assert.NotPanics(t, func() {
		v.ApplyAction(dfs.Remove("", sub("nope")))
	})
}

func TestCaseRenameOrdering(t *testing.T) {
	v := New()
	v.ApplyAction(dfs.PutDir("", sub("foo"), 0o755))
	v.ApplyAction(dfs.PutFile("", sub("foo", "bar.txt"), 0o644))

	// S4: rename dir foo -> Foo on a case-insensitive host.
	v.ApplyAction(dfs.Remove("", sub("foo", "bar.txt")))
	v.ApplyAction(dfs.Remove("", sub("foo")))
	v.ApplyAction(dfs.PutDir("", sub("Foo"), 0o755))
	v.ApplyAction(dfs.PutFile("", sub("Foo", "bar.txt"), 0o644))

	_, ok := v.Resolve(sub("foo"))
	assert.False(t, ok)
	n, ok := v.Resolve(sub("Foo", "bar.txt"))
	require.True(t, ok)
	assert.Equal(t, NodeFile, n.Kind)
}

func TestSignatureRoundTrip(t *testing.T) {
	v := New()
	v.ApplyAction(dfs.PutLink("", sub("l"), "target"))
	sig := v.Signature(sub("l"))
	require.NotNil(t, sig)
	assert.Equal(t, signature.KindSymlink, sig.Kind)
	assert.Equal(t, "target", sig.Target)

	assert.Nil(t, v.Signature(sub("missing")))
}

func TestApplyFullScanOrdersParentsFirst(t *testing.T) {
	v := New()
	entries := []Entry{
		{Sub: sub("foo", "bar.txt"), Sig: signature.File(0o644, nil, 0)},
		{Sub: sub("foo"), Sig: signature.Dir(0o755)},
	}
	ApplyFullScan(v, entries)

	n, ok := v.Resolve(sub("foo", "bar.txt"))
	require.True(t, ok)
	assert.Equal(t, NodeFile, n.Kind)
}
