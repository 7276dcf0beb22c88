package output

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dshills/smartcommits/internal/selftest"
)

func sampleReport() *selftest.Report {
	results := []selftest.Result{
		{Check: "path_traversal", Status: selftest.StatusSafe, Severity: selftest.SeverityInfo, Message: "paths outside the repository rejected"},
		{Check: "api_key_exposure", Status: selftest.StatusVulnerable, Severity: selftest.SeverityHigh,
			Message: "API key exposed", Details: []string{"key visible in log output"}},
		{Check: "file_permissions", Status: selftest.StatusError, Severity: selftest.SeverityMedium, Message: "hook install failed"},
		{Check: "dependency_vulnerabilities", Status: selftest.StatusSkipped, Severity: selftest.SeverityInfo, Message: "govulncheck not installed"},
	}
	return &selftest.Report{
		Tool:      selftest.ToolName,
		Version:   "1.0",
		RunID:     "3f0c9a1e-7b7d-4a59-9d43-0c3b0b8f4e21",
		ElapsedMs: 42,
		Summary:   selftest.ComputeSummary(results),
		Results:   results,
	}
}

func cleanReport() *selftest.Report {
	results := []selftest.Result{
		{Check: "yaml_injection", Status: selftest.StatusSafe, Severity: selftest.SeverityInfo, Message: "non-core YAML tags rejected"},
	}
	return &selftest.Report{
		Tool:    selftest.ToolName,
		Version: "1.0",
		RunID:   "run",
		Summary: selftest.ComputeSummary(results),
		Results: results,
	}
}

func TestGetWriter(t *testing.T) {
	for _, f := range Formats {
		if _, err := GetWriter(f); err != nil {
			t.Errorf("GetWriter(%q) error: %v", f, err)
		}
	}
	if _, err := GetWriter("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteReport_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.txt")
	if err := WriteReport(sampleReport(), "text", out); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Error("file output should not contain ANSI escapes")
	}
	if !strings.Contains(string(data), "api_key_exposure") {
		t.Error("file output missing check name")
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(out)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("report mode = %04o, want 0600", perm)
		}
	}
}
