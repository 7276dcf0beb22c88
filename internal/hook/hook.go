package hook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/dshills/smartcommits/internal/validate"
)

// Name is the git hook smartcommits installs.
const Name = "prepare-commit-msg"

const (
	markerStart = "# >>> smartcommits prepare-commit-msg hook >>>"
	markerEnd   = "# <<< smartcommits prepare-commit-msg hook <<<"
	shebang     = "#!/bin/sh\n"
	hookMode    = 0o755
)

// ErrNotInstalled is returned by Uninstall when no smartcommits section
// exists.
var ErrNotInstalled = errors.New("smartcommits hook is not installed")

// skipSources are the prepare-commit-msg sources for which git already
// has a message: -m/-F, merges, squashes, and amend/-c/-C.
var skipSources = map[string]bool{
	"message": true,
	"merge":   true,
	"squash":  true,
	"commit":  true,
}

// ShouldSkip reports whether the hook should leave the message alone for
// the given commit source.
func ShouldSkip(source string) bool {
	return skipSources[source]
}

// Path returns the hook file path inside gitDir.
func Path(gitDir string) (validate.Path, error) {
	return validate.FilePath(gitDir, filepath.Join("hooks", Name))
}

// Script returns the marked hook section that runs bin.
func Script(bin string) string {
	cmd := shellQuote(bin)
	var b strings.Builder
	b.WriteString(markerStart + "\n")
	fmt.Fprintf(&b, "if command -v %s >/dev/null 2>&1; then\n", cmd)
	fmt.Fprintf(&b, "  %s generate --hook \"$1\" \"$2\" || echo \"smartcommits: could not generate a commit message, continuing\" >&2\n", cmd)
	b.WriteString("fi\n")
	b.WriteString(markerEnd + "\n")
	return b.String()
}

// Install writes the hook section for bin into gitDir. An existing hook
// keeps its other content and gains (or refreshes) the section; force
// replaces the whole file.
func Install(gitDir, bin string, force bool) (string, error) {
	path, err := Path(gitDir)
	if err != nil {
		return "", err
	}
	section := Script(bin)

	existing, err := os.ReadFile(path.String())
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading hook file: %w", err)
	}

	var content string
	if force || len(existing) == 0 {
		content = shebang + section
	} else {
		content = replaceSection(string(existing), section)
	}

	if err := secexec.WriteFile(path.String(), []byte(content), hookMode); err != nil {
		return "", err
	}
	return path.String(), nil
}

// Uninstall removes the hook section from gitDir. When nothing but a
// shebang remains the file is deleted. It reports whether the file was
// deleted.
func Uninstall(gitDir string) (bool, error) {
	path, err := Path(gitDir)
	if err != nil {
		return false, err
	}
	existing, err := os.ReadFile(path.String())
	if os.IsNotExist(err) {
		return false, ErrNotInstalled
	}
	if err != nil {
		return false, fmt.Errorf("reading hook file: %w", err)
	}
	if !strings.Contains(string(existing), markerStart) {
		return false, ErrNotInstalled
	}

	content := removeSection(string(existing))

	trimmed := strings.TrimSpace(content)
	if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
		if err := os.Remove(path.String()); err != nil {
			return false, fmt.Errorf("removing hook file: %w", err)
		}
		return true, nil
	}
	return false, secexec.WriteFile(path.String(), []byte(content), hookMode)
}

// Installed reports whether gitDir's hook contains the smartcommits section.
func Installed(gitDir string) bool {
	path, err := Path(gitDir)
	if err != nil {
		return false
	}
	data, err := os.ReadFile(path.String())
	return err == nil && strings.Contains(string(data), markerStart)
}

// WriteMessage puts message at the top of git's message file, keeping the
// template and comment lines git already wrote below it.
func WriteMessage(path validate.Path, message string) error {
	existing, err := os.ReadFile(path.String())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading message file: %w", err)
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(message, "\n"))
	b.WriteString("\n")
	if len(existing) > 0 {
		if !strings.HasPrefix(string(existing), "\n") {
			b.WriteString("\n")
		}
		b.Write(existing)
	}
	return secexec.WriteFile(path.String(), []byte(b.String()), 0o644)
}

func replaceSection(existing, section string) string {
	startIdx := strings.Index(existing, markerStart)
	endIdx := strings.Index(existing, markerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(markerEnd):], "\n")
	return before + section + after
}

func removeSection(existing string) string {
	startIdx := strings.Index(existing, markerStart)
	endIdx := strings.Index(existing, markerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return existing
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(markerEnd):], "\n")
	return before + after
}

// shellQuote returns s unchanged when it is a plain word and single-quoted
// otherwise.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r == '/' || r == '-' || r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) == -1 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
