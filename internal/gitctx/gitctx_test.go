package gitctx

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dshills/smartcommits/internal/secerr"
)

const twoFileDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
+import "fmt"
diff --git a/util.go b/util.go
--- a/util.go
+++ b/util.go
@@ -5,3 +5,4 @@
+func helper() {}
`

func TestExtractFiles(t *testing.T) {
	files := extractFiles(twoFileDiff)
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0] != "main.go" {
		t.Errorf("files[0] = %q, want %q", files[0], "main.go")
	}
	if files[1] != "util.go" {
		t.Errorf("files[1] = %q, want %q", files[1], "util.go")
	}
}

func TestExtractFiles_Empty(t *testing.T) {
	if files := extractFiles(""); len(files) != 0 {
		t.Errorf("got %v, want none", files)
	}
}

func TestFilterExcluded(t *testing.T) {
	diff := `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
+import "fmt"
diff --git a/certs/server.pem b/certs/server.pem
--- a/certs/server.pem
+++ b/certs/server.pem
@@ -1,3 +1,4 @@
+-----BEGIN CERTIFICATE-----
`
	result := filterExcluded(diff, []string{"*.pem"})
	if strings.Contains(result, "server.pem") {
		t.Error("certs/server.pem should be excluded")
	}
	if !strings.Contains(result, "main.go") {
		t.Error("main.go should be kept")
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"node_modules/a/b.js", []string{"node_modules/**"}, true},
		{"main.go", []string{"node_modules/**"}, false},
		{"server.key", []string{"*.key"}, true},
		{"deploy/server.key", []string{"*.key"}, true},
		{"secrets/token.txt", []string{"secrets/*"}, true},
		{"secrets/nested/token.txt", []string{"secrets/*"}, false},
		{"config/.env.local", []string{"*.env*"}, true},
		{"pkg/foo.gen.go", []string{"**/*.gen.go"}, true},
		{"main.go", nil, false},
	}
	for _, tt := range tests {
		got := MatchesAny(tt.path, tt.patterns)
		if got != tt.want {
			t.Errorf("MatchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}

func TestSplitDiffSections(t *testing.T) {
	sections := splitDiffSections(twoFileDiff)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if !strings.Contains(sections[0], "main.go") {
		t.Error("section 0 should contain main.go")
	}
	if !strings.Contains(sections[1], "util.go") {
		t.Error("section 1 should contain util.go")
	}
	if strings.Join(sections, "") != twoFileDiff {
		t.Error("sections should reassemble to the original diff")
	}
}

func TestExtractPathFromSection(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    string
	}{
		{"modified", "diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n@@ -1 +1 @@\n", "main.go"},
		{"deleted", "diff --git a/old.go b/old.go\ndeleted file mode 100644\n--- a/old.go\n+++ /dev/null\n", "old.go"},
		{"renamed", "diff --git a/a.go b/b.go\nsimilarity index 100%\nrename from a.go\nrename to b.go\n", "b.go"},
		{"binary", "diff --git a/logo.png b/logo.png\nBinary files differ\n", "logo.png"},
		{"no header", "some other content\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPathFromSection(tt.section); got != tt.want {
				t.Errorf("extractPathFromSection = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDiffArgs(t *testing.T) {
	args := buildDiffArgs(DiffOptions{ContextLines: 5})
	want := []string{"diff", "--cached", "--no-color", "--no-ext-diff", "-U5"}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildDiffArgs_NoContextLines(t *testing.T) {
	for _, a := range buildDiffArgs(DiffOptions{}) {
		if strings.HasPrefix(a, "-U") {
			t.Error("Should not have -U flag with ContextLines=0")
		}
	}
}

func TestBuildResult_ExcludeBeforeTruncate(t *testing.T) {
	big := strings.Repeat("+secret line\n", 200)
	diff := "diff --git a/app.key b/app.key\n--- a/app.key\n+++ b/app.key\n" + big +
		"diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n+package main\n"

	res := buildResult(diff, DiffOptions{MaxDiffBytes: 200, Exclude: []string{"*.key"}})
	if res.Truncated {
		t.Error("excluded file should not count toward the budget")
	}
	if !strings.Contains(res.Diff, "+package main") {
		t.Error("main.go should survive")
	}
	if len(res.Files) != 1 || res.Files[0] != "main.go" {
		t.Errorf("Files = %v, want [main.go]", res.Files)
	}
	if len(res.Excluded) != 1 || res.Excluded[0] != "app.key" {
		t.Errorf("Excluded = %v, want [app.key]", res.Excluded)
	}
}

func TestBuildResult_Truncation(t *testing.T) {
	diff := "diff --git a/a.txt b/a.txt\n--- a/a.txt\n+++ b/a.txt\n" + strings.Repeat("+héllo wörld\n", 100)
	res := buildResult(diff, DiffOptions{MaxDiffBytes: 101})
	if !res.Truncated {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(res.Diff, TruncationMarker) {
		t.Error("truncated diff should end with the marker")
	}
	body := strings.TrimSuffix(res.Diff, TruncationMarker)
	if len(body) > 101 {
		t.Errorf("body length = %d, want <= 101", len(body))
	}
	if !utf8.ValidString(body) {
		t.Error("truncation split a UTF-8 sequence")
	}
}

func TestDiffResult_Empty(t *testing.T) {
	if !(DiffResult{Diff: "\n  \n"}).Empty() {
		t.Error("whitespace diff should be empty")
	}
	if (DiffResult{Diff: twoFileDiff}).Empty() {
		t.Error("real diff should not be empty")
	}
}

func TestIsMerge(t *testing.T) {
	dir := t.TempDir()
	if IsMerge(dir) {
		t.Error("no MERGE_HEAD, should not be a merge")
	}
	os.WriteFile(filepath.Join(dir, "MERGE_HEAD"), []byte("abc\n"), 0o644)
	if !IsMerge(dir) {
		t.Error("MERGE_HEAD present, should be a merge")
	}
}

func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()

	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")

	run(t, dir, "git", "init")
	run(t, dir, "git", "checkout", "-b", "main")
	run(t, dir, "git", "config", "commit.gpgsign", "false")

	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644)
	run(t, dir, "git", "add", "-A")
	run(t, dir, "git", "commit", "-m", "init")

	return dir
}

func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
}

func TestStagedDiff(t *testing.T) {
	dir := setupTestRepo(t)
	os.WriteFile(filepath.Join(dir, "util.go"), []byte("package main\n\nfunc helper() {}\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "server.key"), []byte("private\n"), 0o644)
	run(t, dir, "git", "add", "util.go", "server.key")

	repo := New(dir, nil)
	res, err := repo.StagedDiff(context.Background(), DiffOptions{
		ContextLines: 3,
		MaxDiffBytes: 4000,
		Exclude:      []string{"*.key"},
	})
	if err != nil {
		t.Fatalf("StagedDiff: %v", err)
	}
	if !strings.Contains(res.Diff, "+func helper() {}") {
		t.Errorf("diff missing staged change:\n%s", res.Diff)
	}
	if strings.Contains(res.Diff, "private") {
		t.Error("excluded file content leaked into the diff")
	}
	if len(res.Files) != 1 || res.Files[0] != "util.go" {
		t.Errorf("Files = %v, want [util.go]", res.Files)
	}
}

func TestStagedDiff_NothingStaged(t *testing.T) {
	dir := setupTestRepo(t)
	res, err := New(dir, nil).StagedDiff(context.Background(), DiffOptions{})
	if err != nil {
		t.Fatalf("StagedDiff: %v", err)
	}
	if !res.Empty() {
		t.Errorf("expected empty diff, got %q", res.Diff)
	}
}

func TestCommit(t *testing.T) {
	dir := setupTestRepo(t)
	os.WriteFile(filepath.Join(dir, "util.go"), []byte("package main\n"), 0o644)
	run(t, dir, "git", "add", "util.go")

	repo := New(dir, nil)
	ctx := context.Background()
	if err := repo.Commit(ctx, "feat: add util"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	out, err := exec.Command("git", "-C", dir, "log", "-1", "--format=%s").Output()
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "feat: add util" {
		t.Errorf("subject = %q", out)
	}
}

func TestCommit_RejectsInvalidMessage(t *testing.T) {
	repo := New(t.TempDir(), nil)
	for _, msg := range []string{"hi", "feat: <script>alert(1)</script>", "fix: $(rm -rf /)"} {
		err := repo.Commit(context.Background(), msg)
		if secerr.CategoryOf(err) != secerr.CategoryInvalidInput {
			t.Errorf("Commit(%q) error = %v, want invalid_input", msg, err)
		}
	}
}

func TestMetaAndGitDir(t *testing.T) {
	dir := setupTestRepo(t)
	repo := New(dir, nil)
	ctx := context.Background()

	meta, err := repo.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Branch != "main" {
		t.Errorf("Branch = %q, want main", meta.Branch)
	}
	if len(meta.Head) != 40 {
		t.Errorf("Head = %q, want a full sha", meta.Head)
	}

	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		t.Fatalf("GitDir: %v", err)
	}
	if !filepath.IsAbs(gitDir) || filepath.Base(gitDir) != ".git" {
		t.Errorf("GitDir = %q", gitDir)
	}
}

func TestGitDir_NotRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
	_, err := New(t.TempDir(), nil).GitDir(context.Background())
	if secerr.CategoryOf(err) != secerr.CategoryNotRepository {
		t.Errorf("error = %v, want not_repository", err)
	}
}
