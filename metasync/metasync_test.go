package metasync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/plan"
	"github.com/rclone/dsync/signature"
)

func sub(parts ...string) dfs.SubPath { return dfs.NewSubPath(parts...) }

// S1: create empty file.
func TestCreateEmptyFile(t *testing.T) {
	tr := plan.Triple{Sub: sub("a.txt"), Local: signature.File(0o644, nil, 0), Remote: nil}
	actions := Actions("", tr)
	assert.Equal(t, []dfs.Action{dfs.PutFile("", sub("a.txt"), 0o644)}, actions)
}

// S5: replace file with symlink.
func TestReplaceFileWithSymlink(t *testing.T) {
	tr := plan.Triple{
		Sub:    sub("l"),
		Local:  signature.Symlink("target"),
		Remote: signature.File(0o644, nil, 123),
	}
	actions := Actions("", tr)
	assert.Equal(t, []dfs.Action{
		dfs.Remove("", sub("l")),
		dfs.PutLink("", sub("l"), "target"),
	}, actions)
}

func TestFileVsFileSamePermsNoAction(t *testing.T) {
	tr := plan.Triple{
		Sub:    sub("a.txt"),
		Local:  signature.File(0o644, []dfs.Bytes{dfs.Bytes("h")}, 1),
		Remote: signature.File(0o644, []dfs.Bytes{dfs.Bytes("g")}, 1),
	}
	assert.Empty(t, Actions("", tr))
}

func TestFileVsFileDifferentPermsSetPerms(t *testing.T) {
	tr := plan.Triple{
		Sub:    sub("a.txt"),
		Local:  signature.File(0o600, nil, 0),
		Remote: signature.File(0o644, nil, 0),
	}
	assert.Equal(t, []dfs.Action{dfs.SetPerms("", sub("a.txt"), 0o600)}, Actions("", tr))
}

func TestDirVsFileRemoveThenPutDir(t *testing.T) {
	tr := plan.Triple{
		Sub:    sub("d"),
		Local:  signature.Dir(0o755),
		Remote: signature.File(0o644, nil, 0),
	}
	assert.Equal(t, []dfs.Action{
		dfs.Remove("", sub("d")),
		dfs.PutDir("", sub("d"), 0o755),
	}, Actions("", tr))
}

func TestRemoveWhenLocalAbsent(t *testing.T) {
	tr := plan.Triple{Sub: sub("gone"), Local: nil, Remote: signature.Dir(0o755)}
	assert.Equal(t, []dfs.Action{dfs.Remove("", sub("gone"))}, Actions("", tr))
}

func TestNoOpWhenBothAbsent(t *testing.T) {
	tr := plan.Triple{Sub: sub("never"), Local: nil, Remote: nil}
	assert.Empty(t, Actions("", tr))
}
