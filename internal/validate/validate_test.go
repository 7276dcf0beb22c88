package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{"conventional", "feat: add new feature", true},
		{"with scope", "fix(auth): resolve login issue", true},
		{"docs", "docs: update README", true},
		{"exactly five", "fix a", true},
		{"exactly max", strings.Repeat("a", 250), true},
		{"punctuation", "chore: bump deps, tidy up!", true},
		{"empty", "", false},
		{"too short", "fix", false},
		{"one char", "a", false},
		{"too long", strings.Repeat("a", 251), false},
		{"way too long", strings.Repeat("a", 1000), false},
		{"script tag", "<script>alert(1)</script>", false},
		{"sql injection", "'; DROP TABLE commits; --", false},
		{"null byte", "test\x00null", false},
		{"path traversal", "fix: read ../../etc/passwd", false},
		{"javascript handler", "feat: javascript:alert", false},
		{"data handler upper", "feat: DATA:payload here", false},
		{"vbscript handler", "fix: vbscript: run", false},
		{"shell metachar", "fix: $(rm -rf)", false},
		{"newline allowed", "feat: add parser\n\nmore detail", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommitMessage(tt.msg), "CommitMessage(%q)", tt.msg)
		})
	}
}

func TestCommitMessage_LengthProperty(t *testing.T) {
	for n := 0; n < 5; n++ {
		assert.False(t, CommitMessage(strings.Repeat("x", n)), "len %d", n)
	}
	for _, n := range []int{251, 300, 5000} {
		assert.False(t, CommitMessage(strings.Repeat("x", n)), "len %d", n)
	}
	for _, n := range []int{5, 6, 100, 249, 250} {
		assert.True(t, CommitMessage(strings.Repeat("x", n)), "len %d", n)
	}
}

func TestAPIKey(t *testing.T) {
	assert.True(t, APIKey("gsk_abcdefghijklmnopqrstuvwxyz0123"))
	assert.True(t, APIKey(strings.Repeat("a", 20)))
	assert.True(t, APIKey(strings.Repeat("a", 200)))
	assert.False(t, APIKey(strings.Repeat("a", 19)))
	assert.False(t, APIKey(strings.Repeat("a", 201)))
	assert.False(t, APIKey(""))
	assert.False(t, APIKey("sk-abc def ghi jkl mno pqr"))
	assert.False(t, APIKey("sk-abcdefghijklmnopqrst!"))
}

func TestEnvKey(t *testing.T) {
	assert.True(t, EnvKey("GROQ_API_KEY"))
	assert.True(t, EnvKey("_PRIVATE"))
	assert.True(t, EnvKey("A1"))
	assert.False(t, EnvKey("lowercase_key"))
	assert.False(t, EnvKey("1ABC"))
	assert.False(t, EnvKey("MY-KEY"))
	assert.False(t, EnvKey(""))
}

func TestFilePath_InsideBase(t *testing.T) {
	base := t.TempDir()

	p, err := FilePath(base, ".commitgen.yml")
	require.NoError(t, err)

	resolvedBase, err := filepath.EvalSymlinks(base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolvedBase, ".commitgen.yml"), p.String())
	assert.False(t, p.IsZero())
	assert.False(t, p.Exists())

	require.NoError(t, os.WriteFile(p.String(), []byte("x"), 0o600))
	assert.True(t, p.Exists())
}

func TestFilePath_NestedAndNormalized(t *testing.T) {
	base := t.TempDir()
	p, err := FilePath(base, "a/b/../c.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p.String(), filepath.Join("a", "c.txt")))
}

func TestFilePath_Traversal(t *testing.T) {
	base := t.TempDir()
	candidates := []string{
		"../outside.txt",
		"../../../etc/passwd",
		"a/../../escape",
		"/etc/passwd",
	}
	for _, c := range candidates {
		t.Run(c, func(t *testing.T) {
			_, err := FilePath(base, c)
			require.Error(t, err)
			assert.ErrorIs(t, err, secerr.ErrPathTraversal)
			assert.Equal(t, secerr.CategoryPathTraversal, secerr.CategoryOf(err))
		})
	}
}

func TestFilePath_SymlinkEscape(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(base, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := FilePath(base, "link/secret.txt")
	assert.ErrorIs(t, err, secerr.ErrPathTraversal)
}

func TestFilePath_UnsafeTokens(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"~backup", "$HOME", "a..b"} {
		t.Run(name, func(t *testing.T) {
			_, err := FilePath(base, name)
			assert.ErrorIs(t, err, secerr.ErrPathTraversal)
		})
	}
}

func TestFilePath_BaseItself(t *testing.T) {
	base := t.TempDir()
	_, err := FilePath(base, ".")
	assert.NoError(t, err)
}

func TestFilePath_NullByte(t *testing.T) {
	_, err := FilePath(t.TempDir(), "a\x00b")
	assert.ErrorIs(t, err, secerr.ErrPathTraversal)
}

func TestRepoPath(t *testing.T) {
	t.Run("valid repository", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
		got, err := RepoPath(dir)
		require.NoError(t, err)
		want, _ := filepath.EvalSymlinks(dir)
		assert.Equal(t, want, got)
	})

	t.Run("gitfile worktree", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: /elsewhere\n"), 0o644))
		_, err := RepoPath(dir)
		assert.NoError(t, err)
	})

	t.Run("not a repository", func(t *testing.T) {
		_, err := RepoPath(t.TempDir())
		assert.Equal(t, secerr.CategoryNotRepository, secerr.CategoryOf(err))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := RepoPath(filepath.Join(t.TempDir(), "nope"))
		assert.Equal(t, secerr.CategoryInvalidInput, secerr.CategoryOf(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := RepoPath("  ")
		assert.Equal(t, secerr.CategoryInvalidInput, secerr.CategoryOf(err))
	})

	t.Run("injection string", func(t *testing.T) {
		_, err := RepoPath("/tmp/test; rm -rf /tmp/malicious; echo 'injected'")
		assert.Error(t, err)
	})

	t.Run("system directory", func(t *testing.T) {
		if _, err := os.Stat("/proc/self"); err != nil {
			t.Skip("no /proc on this platform")
		}
		_, err := RepoPath("/proc/self")
		assert.Equal(t, secerr.CategorySystemPath, secerr.CategoryOf(err))
	})
}

func TestCanonical_NonExistentTail(t *testing.T) {
	base := t.TempDir()
	got, err := Canonical(filepath.Join(base, "x", "y"))
	require.NoError(t, err)
	resolved, _ := filepath.EvalSymlinks(base)
	assert.Equal(t, filepath.Join(resolved, "x", "y"), got)
}
