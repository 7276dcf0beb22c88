package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/smartcommits/internal/selftest"
)

// SARIFWriter outputs failed checks in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *selftest.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Results           []sarifResult          `json:"results"`
}

type sarifAutomationDetails struct {
	ID string `json:"id"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Properties sarifProperties `json:"properties"`
}

type sarifProperties struct {
	Status  selftest.Status `json:"status"`
	Details []string        `json:"details,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

func buildSARIF(report *selftest.Report) sarifLog {
	rules := make([]sarifRule, 0, len(report.Results))
	results := []sarifResult{}

	for _, r := range report.Results {
		rules = append(rules, sarifRule{
			ID:               ruleID(r.Check),
			Name:             r.Check,
			ShortDescription: sarifMessage{Text: r.Check},
			DefaultConfig:    sarifDefaultConfig{Level: "error"},
		})
		if r.Status != selftest.StatusVulnerable && r.Status != selftest.StatusError {
			continue
		}
		results = append(results, sarifResult{
			RuleID:     ruleID(r.Check),
			Level:      resultLevel(r),
			Message:    sarifMessage{Text: r.Message},
			Properties: sarifProperties{Status: r.Status, Details: r.Details},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           selftest.ToolName,
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/smartcommits",
						Rules:          rules,
					},
				},
				AutomationDetails: sarifAutomationDetails{ID: report.RunID},
				Results:           results,
			},
		},
	}
}

// resultLevel maps a result to a SARIF level. Check errors are notes; the
// check could not decide.
func resultLevel(r selftest.Result) string {
	if r.Status == selftest.StatusError {
		return "note"
	}
	switch r.Severity {
	case selftest.SeverityHigh:
		return "error"
	case selftest.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func ruleID(check string) string {
	return "smartcommits/" + check
}
