package gitctx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/dshills/smartcommits/internal/validate"
)

// TruncationMarker is appended to a diff cut at the byte budget.
const TruncationMarker = "\n... (diff truncated at max_diff_size limit)\n"

// DiffOptions controls how the staged diff is gathered.
type DiffOptions struct {
	ContextLines int
	MaxDiffBytes int
	Exclude      []string
}

// DiffResult holds the collected diff and the files it covers.
type DiffResult struct {
	Diff      string
	Files     []string
	Excluded  []string
	Truncated bool
}

// Empty reports whether nothing is left to describe.
func (d DiffResult) Empty() bool {
	return strings.TrimSpace(d.Diff) == ""
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// Repo runs git commands inside one working tree.
type Repo struct {
	Dir    string
	Runner *secexec.Runner
}

// New returns a Repo rooted at dir. A nil runner uses the defaults.
func New(dir string, runner *secexec.Runner) *Repo {
	if runner == nil {
		runner = &secexec.Runner{}
	}
	return &Repo{Dir: dir, Runner: runner}
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	var opts []secexec.Option
	if r.Dir != "" {
		opts = append(opts, secexec.WithDir(r.Dir))
	}
	res, err := r.Runner.Run(ctx, append([]string{"git"}, args...), opts...)
	if err != nil {
		return res.Stdout, err
	}
	return res.Stdout, nil
}

// Meta collects repository metadata. Head and Branch are empty in a
// repository without commits.
func (r *Repo) Meta(ctx context.Context) (RepoMeta, error) {
	root, err := r.git(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, secerr.Wrap(secerr.CategoryNotRepository, "not a git repository", err)
	}
	head, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		head = ""
	}
	branch, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// GitDir returns the absolute path of the repository's git directory.
func (r *Repo) GitDir(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", secerr.Wrap(secerr.CategoryNotRepository, "not a git repository", err)
	}
	return strings.TrimSpace(out), nil
}

// IsMerge reports whether a merge is in progress in gitDir.
func IsMerge(gitDir string) bool {
	_, err := os.Stat(filepath.Join(gitDir, "MERGE_HEAD"))
	return err == nil
}

// StagedDiff returns the diff of the index against HEAD.
func (r *Repo) StagedDiff(ctx context.Context, opts DiffOptions) (DiffResult, error) {
	diff, err := r.git(ctx, buildDiffArgs(opts)...)
	if err != nil {
		return DiffResult{}, err
	}
	return buildResult(diff, opts), nil
}

// Commit records the staged changes with message. The message must pass
// validate.CommitMessage.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if !validate.CommitMessage(message) {
		return secerr.New(secerr.CategoryInvalidInput, "invalid commit message")
	}
	_, err := r.git(ctx, "commit", "-m", message)
	return err
}

func buildDiffArgs(opts DiffOptions) []string {
	args := []string{"diff", "--cached", "--no-color", "--no-ext-diff"}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	return args
}

func buildResult(diff string, opts DiffOptions) DiffResult {
	files := extractFiles(diff)
	var excluded []string

	// Filter excludes before truncating so excluded files don't consume the byte budget
	if len(opts.Exclude) > 0 {
		diff = filterExcluded(diff, opts.Exclude)
		files, excluded = partitionFiles(files, opts.Exclude)
	}

	truncated := false
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		diff = truncate(diff, opts.MaxDiffBytes) + TruncationMarker
		truncated = true
	}

	return DiffResult{
		Diff:      diff,
		Files:     files,
		Excluded:  excluded,
		Truncated: truncated,
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func extractFiles(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, section := range splitDiffSections(diff) {
		f := extractPathFromSection(section)
		if f != "" && !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

func filterExcluded(diff string, excludes []string) string {
	sections := splitDiffSections(diff)
	var kept []string
	for _, section := range sections {
		path := extractPathFromSection(section)
		if path == "" || !MatchesAny(path, excludes) {
			kept = append(kept, section)
		}
	}
	return strings.Join(kept, "")
}

func splitDiffSections(diff string) []string {
	if diff == "" {
		return nil
	}
	var sections []string
	lines := strings.SplitAfter(diff, "\n")
	var current strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// extractPathFromSection returns the new path of a file section, or the
// old path for deletions.
func extractPathFromSection(section string) string {
	var old string
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			return strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "--- a/"):
			old = strings.TrimPrefix(line, "--- a/")
		case strings.HasPrefix(line, "rename to "):
			return strings.TrimPrefix(line, "rename to ")
		}
	}
	if old != "" {
		return old
	}
	// Binary and mode-only changes carry the path in the header only.
	if header, _, _ := strings.Cut(section, "\n"); strings.HasPrefix(header, "diff --git a/") {
		if i := strings.LastIndex(header, " b/"); i >= 0 {
			return header[i+len(" b/"):]
		}
	}
	return ""
}

func partitionFiles(files []string, excludes []string) (kept, dropped []string) {
	for _, f := range files {
		if MatchesAny(f, excludes) {
			dropped = append(dropped, f)
			continue
		}
		kept = append(kept, f)
	}
	return kept, dropped
}

// MatchesAny reports whether path matches any of the doublestar patterns.
// Patterns without a slash also match the file's base name, so "*.pem"
// excludes "certs/server.pem".
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && ok {
				return true
			}
		}
	}
	return false
}
