package selftest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/google/uuid"
)

// ToolName is reported in every Report.
const ToolName = "smartcommits"

// Runner executes external commands. *secexec.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, argv []string, opts ...secexec.Option) (secexec.Result, error)
}

// Options configures a self-test run.
type Options struct {
	Version string
	// TempDir is the parent of the scratch directory. Defaults to os.TempDir.
	TempDir string
	// Checks limits the run to the named checks. Empty runs all of them.
	Checks []string
	// Runner runs git and govulncheck. Defaults to a secexec.Runner.
	Runner Runner
	// LookPath finds external tools. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// Executable is the binary govulncheck scans. Defaults to os.Executable.
	Executable string
}

type checkFunc func(ctx context.Context, e *env) Result

type check struct {
	name string
	run  checkFunc
}

var checks = []check{
	{"command_injection", checkCommandInjection},
	{"path_traversal", checkPathTraversal},
	{"api_key_exposure", checkAPIKeyExposure},
	{"file_permissions", checkFilePermissions},
	{"input_validation", checkInputValidation},
	{"yaml_injection", checkYAMLInjection},
	{"information_disclosure", checkInformationDisclosure},
	{"dependency_vulnerabilities", checkDependencies},
}

// CheckNames lists the available checks in run order.
func CheckNames() []string {
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.name
	}
	return names
}

// env is the per-run state shared by the checks.
type env struct {
	opts Options
	root string
}

// repo creates a scratch repository directory with an empty .git marker.
func (e *env) repo(name string) (string, error) {
	dir := filepath.Join(e.root, name)
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// Run executes the selected checks and returns the report. Unknown check
// names are reported as ERROR results.
func Run(ctx context.Context, opts Options) *Report {
	if opts.Runner == nil {
		opts.Runner = &secexec.Runner{}
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}

	report := &Report{
		Tool:      ToolName,
		Version:   opts.Version,
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	start := time.Now()

	selected, unknown := selectChecks(opts.Checks)
	for _, name := range unknown {
		r := errored("unknown check")
		r.Check = name
		report.Results = append(report.Results, r)
	}

	root, err := os.MkdirTemp(opts.TempDir, "smartcommits-selftest-")
	if err != nil {
		for _, c := range selected {
			r := errored("cannot create scratch directory")
			r.Check = c.name
			report.Results = append(report.Results, r)
		}
	} else {
		defer os.RemoveAll(root)
		e := &env{opts: opts, root: root}
		for _, c := range selected {
			if ctx.Err() != nil {
				r := skipped("cancelled")
				r.Check = c.name
				report.Results = append(report.Results, r)
				continue
			}
			report.Results = append(report.Results, runCheck(ctx, c, e))
		}
	}

	report.Summary = ComputeSummary(report.Results)
	report.ElapsedMs = time.Since(start).Milliseconds()
	return report
}

func selectChecks(names []string) ([]check, []string) {
	if len(names) == 0 {
		return checks, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var selected []check
	for _, c := range checks {
		if want[c.name] {
			selected = append(selected, c)
			delete(want, c.name)
		}
	}
	var unknown []string
	for _, n := range names {
		if want[n] {
			unknown = append(unknown, n)
			delete(want, n)
		}
	}
	return selected, unknown
}

func runCheck(ctx context.Context, c check, e *env) (r Result) {
	defer func() {
		if p := recover(); p != nil {
			logging.Debugf("check %s panicked: %v", c.name, p)
			r = errored(fmt.Sprintf("check panicked: %v", p))
			r.Check = c.name
		}
	}()
	logging.Debug().Str("check", c.name).Msg("running security check")
	r = c.run(ctx, e)
	r.Check = c.name
	return r
}
