package selftest

import "time"

// Status is the outcome of one check.
type Status string

const (
	StatusSafe       Status = "SAFE"
	StatusVulnerable Status = "VULNERABLE"
	StatusError      Status = "ERROR"
	StatusSkipped    Status = "SKIPPED"
)

// Severity ranks a result for reporting.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
	SeverityInfo   Severity = "INFO"
)

// Result is the outcome of a single check.
type Result struct {
	Check    string   `json:"check"`
	Status   Status   `json:"status"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total          int `json:"total"`
	Safe           int `json:"safe"`
	Vulnerable     int `json:"vulnerable"`
	Errors         int `json:"errors"`
	Skipped        int `json:"skipped"`
	HighSeverity   int `json:"highSeverity"`
	MediumSeverity int `json:"mediumSeverity"`
}

// Report is the top-level self-test output.
type Report struct {
	Tool      string    `json:"tool"`
	Version   string    `json:"version"`
	RunID     string    `json:"runId"`
	StartedAt time.Time `json:"startedAt"`
	ElapsedMs int64     `json:"elapsedMs"`
	Summary   Summary   `json:"summary"`
	Results   []Result  `json:"results"`
}

// Failed reports whether any check found a vulnerability.
func (r *Report) Failed() bool {
	return r.Summary.Vulnerable > 0
}

// ComputeSummary counts results. Severity counts only include VULNERABLE
// results.
func ComputeSummary(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSafe:
			s.Safe++
		case StatusVulnerable:
			s.Vulnerable++
			switch r.Severity {
			case SeverityHigh:
				s.HighSeverity++
			case SeverityMedium:
				s.MediumSeverity++
			}
		case StatusError:
			s.Errors++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

func safe(msg string, details ...string) Result {
	return Result{Status: StatusSafe, Severity: SeverityInfo, Message: msg, Details: details}
}

func vulnerable(sev Severity, msg string, details ...string) Result {
	return Result{Status: StatusVulnerable, Severity: sev, Message: msg, Details: details}
}

func errored(msg string, details ...string) Result {
	return Result{Status: StatusError, Severity: SeverityMedium, Message: msg, Details: details}
}

func skipped(msg string) Result {
	return Result{Status: StatusSkipped, Severity: SeverityInfo, Message: msg}
}
