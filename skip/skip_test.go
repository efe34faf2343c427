package skip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipNoneNeverSkips(t *testing.T) {
	assert.False(t, SkipNone("/root/.git/HEAD", "/root"))
	assert.False(t, SkipNone("/root/a.txt", "/root"))
}

// S6: .git excluded.
func TestSkipDotGitExcludesGitDir(t *testing.T) {
	assert.True(t, SkipDotGit("/root/.git", "/root"))
	assert.True(t, SkipDotGit("/root/.git/HEAD", "/root"))
	assert.True(t, SkipDotGit("/root/.git/refs/heads/main", "/root"))
}

func TestSkipDotGitLeavesOthersAlone(t *testing.T) {
	assert.False(t, SkipDotGit("/root/a.txt", "/root"))
	assert.False(t, SkipDotGit("/root", "/root"))
	assert.False(t, SkipDotGit("/root/gitignore.txt", "/root"))
}
