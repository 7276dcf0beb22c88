package validate

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dshills/smartcommits/internal/secerr"
)

const (
	commitMinLen = 5
	commitMaxLen = 250
	apiKeyMinLen = 20
	apiKeyMaxLen = 200
)

var (
	commitMessagePattern = regexp.MustCompile(`^[a-zA-Z0-9\s():\-.,!]{5,250}$`)
	apiKeyPattern        = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
	envKeyPattern        = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)
)

// suspiciousSubstrings are matched case-insensitively against commit messages.
var suspiciousSubstrings = []string{
	"<script",
	"javascript:",
	"data:",
	"vbscript:",
	"onload=",
	"onerror=",
	"\x00",
	"../",
	`\\`,
}

// unsafePathTokens must not survive canonicalisation.
var unsafePathTokens = []string{"..", "~", "$"}

// systemPrefixes are never accepted as repository roots.
var systemPrefixes = []string{"/proc/", "/sys/", "/dev/"}

// RepoMarker is the version-control marker entry that identifies a repository root.
const RepoMarker = ".git"

// CommitMessage reports whether s is an acceptable commit message.
func CommitMessage(s string) bool {
	if len(s) < commitMinLen || len(s) > commitMaxLen {
		return false
	}
	if !commitMessagePattern.MatchString(s) {
		return false
	}
	lower := strings.ToLower(s)
	for _, sub := range suspiciousSubstrings {
		if strings.Contains(lower, sub) {
			return false
		}
	}
	return true
}

// APIKey reports whether s has the shape of a provider API key.
func APIKey(s string) bool {
	if len(s) < apiKeyMinLen || len(s) > apiKeyMaxLen {
		return false
	}
	return apiKeyPattern.MatchString(s)
}

// EnvKey reports whether s is an uppercase identifier usable as an
// environment variable name.
func EnvKey(s string) bool {
	return envKeyPattern.MatchString(s)
}

// Path is a file path proven at construction to resolve inside a base
// directory. The zero value is not valid.
type Path struct {
	resolved string
}

// String returns the canonical absolute path.
func (p Path) String() string { return p.resolved }

// IsZero reports whether p was not produced by FilePath.
func (p Path) IsZero() bool { return p.resolved == "" }

// Exists reports whether the path currently exists on disk.
func (p Path) Exists() bool {
	if p.resolved == "" {
		return false
	}
	_, err := os.Lstat(p.resolved)
	return err == nil
}

// FilePath resolves candidate against base and returns it only if the
// result stays inside base. Relative candidates are joined to base first.
func FilePath(base, candidate string) (Path, error) {
	if base == "" || strings.ContainsRune(base, 0) || strings.ContainsRune(candidate, 0) {
		return Path{}, secerr.Wrap(secerr.CategoryPathTraversal, "invalid file path", secerr.ErrPathTraversal)
	}
	resolvedBase, err := Canonical(base)
	if err != nil {
		return Path{}, secerr.Wrap(secerr.CategoryPathTraversal, "invalid base directory", errors.Join(secerr.ErrPathTraversal, err))
	}

	joined := candidate
	if !filepath.IsAbs(candidate) {
		joined = filepath.Join(base, candidate)
	}
	resolved, err := Canonical(joined)
	if err != nil {
		return Path{}, secerr.Wrap(secerr.CategoryPathTraversal, "invalid file path", errors.Join(secerr.ErrPathTraversal, err))
	}

	if !within(resolvedBase, resolved) {
		return Path{}, secerr.Wrap(secerr.CategoryPathTraversal, "path escapes base directory", secerr.ErrPathTraversal)
	}
	for _, tok := range unsafePathTokens {
		if strings.Contains(resolved, tok) {
			return Path{}, secerr.Wrap(secerr.CategoryPathTraversal, "unsafe path component", secerr.ErrPathTraversal)
		}
	}
	return Path{resolved: resolved}, nil
}

// RepoPath canonicalises path and checks that it is an existing repository
// root outside the reserved system directories.
func RepoPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" || strings.ContainsRune(path, 0) {
		return "", secerr.New(secerr.CategoryInvalidInput, "invalid repository path")
	}
	clean, err := Canonical(path)
	if err != nil {
		return "", secerr.Wrap(secerr.CategoryInvalidInput, "invalid repository path", err)
	}
	if _, err := os.Stat(clean); err != nil {
		return "", secerr.Wrap(secerr.CategoryInvalidInput, "repository path does not exist", err)
	}
	withSep := clean + string(filepath.Separator)
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(withSep, prefix) {
			return "", secerr.New(secerr.CategorySystemPath, "access to system directories not allowed")
		}
	}
	if _, err := os.Stat(filepath.Join(clean, RepoMarker)); err != nil {
		return "", secerr.Wrap(secerr.CategoryNotRepository, "not a git repository", err)
	}
	return clean, nil
}

// Canonical returns the absolute, cleaned form of path with symlinks
// resolved on the longest prefix that exists. Components that do not exist
// yet are appended unchanged.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	existing := abs
	var rest []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, rest...)...), nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
