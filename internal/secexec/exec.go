package secexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/validate"
)

// DefaultTimeout bounds every call that does not set its own timeout.
const DefaultTimeout = 30 * time.Second

// killGrace is how long Wait may block on the child's pipes after the
// child has been killed.
const killGrace = 2 * time.Second

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. The zero value is ready to use.
type Runner struct {
	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

type options struct {
	dir     string
	timeout time.Duration
	stdin   io.Reader
	env     []string
}

// Option customises a single Run call.
type Option func(*options)

// WithDir sets the working directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithTimeout sets the deadline for this call only.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithStdin feeds r to the child's standard input.
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

// WithEnv appends KEY=value pairs to the inherited environment.
func WithEnv(kv ...string) Option {
	return func(o *options) { o.env = append(o.env, kv...) }
}

// Run executes argv[0] with argv[1:] as literal arguments.
func (r *Runner) Run(ctx context.Context, argv []string, opts ...Option) (Result, error) {
	if err := checkArgv(argv); err != nil {
		return Result{}, err
	}

	o := options{timeout: r.timeout()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}

	dir := ""
	if o.dir != "" {
		d, err := resolveDir(o.dir)
		if err != nil {
			return Result{}, err
		}
		dir = d
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = o.stdin
	isolate(cmd)
	cmd.WaitDelay = killGrace
	if len(o.env) > 0 {
		cmd.Env = append(os.Environ(), o.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	logging.Debug().
		Str("cmd", argv[0]).
		Int("args", len(argv)-1).
		Dur("elapsed", time.Since(start)).
		Int("exit", res.ExitCode).
		Msg("subprocess finished")

	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, secerr.Wrap(secerr.CategoryTimeout,
			fmt.Sprintf("command timed out after %s", o.timeout),
			fmt.Errorf("%s: %w", argv[0], secerr.ErrTimeout))
	}
	if ctx.Err() != nil {
		return res, secerr.Wrap(secerr.CategoryInternal, "command cancelled", ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		pe := &secerr.ProcessError{Command: argv[0], ExitCode: res.ExitCode, Stderr: res.Stderr}
		logging.Debugf("%s failed: %s", argv[0], strings.TrimSpace(res.Stderr))
		return res, secerr.Normalize(pe)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return res, secerr.Wrap(secerr.CategoryInvalidCommand, "executable not found", err)
	}
	return res, secerr.Normalize(err)
}

func (r *Runner) timeout() time.Duration {
	if r == nil {
		return DefaultTimeout
	}
	return r.Timeout
}

func checkArgv(argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return secerr.Wrap(secerr.CategoryInvalidCommand, "command must not be empty", secerr.ErrInvalidCommand)
	}
	for _, a := range argv {
		if strings.ContainsRune(a, 0) {
			return secerr.Wrap(secerr.CategoryInvalidCommand, "command arguments must not contain NUL bytes", secerr.ErrInvalidCommand)
		}
	}
	return nil
}

func resolveDir(dir string) (string, error) {
	resolved, err := validate.Canonical(dir)
	if err != nil {
		return "", secerr.Wrap(secerr.CategoryInvalidInput, "invalid working directory", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", secerr.Wrap(secerr.CategoryInvalidInput, "working directory does not exist", err)
	}
	if !info.IsDir() {
		return "", secerr.New(secerr.CategoryInvalidInput, "working directory is not a directory")
	}
	return resolved, nil
}

// DefaultFileMode is used by WriteFile when perm is zero.
const DefaultFileMode os.FileMode = 0o600

// WriteFile writes data to path through a temporary file in the same
// directory and renames it into place, so readers never see a partial
// file. The final mode is set explicitly, independent of the umask.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultFileMode
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return secerr.Wrap(secerr.CategoryIO, "failed to write file securely", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return secerr.Wrap(secerr.CategoryIO, "failed to write file securely", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return secerr.Wrap(secerr.CategoryIO, "failed to write file securely", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return secerr.Wrap(secerr.CategoryIO, "failed to write file securely", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return secerr.Wrap(secerr.CategoryIO, "failed to write file securely", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return secerr.Wrap(secerr.CategoryIO, "failed to write file securely", err)
	}
	return nil
}
