package redact

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for credential shapes found in diffs.
var secretPatterns = []*regexp.Regexp{
	// Groq API keys
	regexp.MustCompile(`gsk_[A-Za-z0-9]{20,}`),
	// OpenRouter API keys
	regexp.MustCompile(`sk-or-(?:v1-)?[A-Za-z0-9]{20,}`),
	// Anthropic / OpenAI style keys
	regexp.MustCompile(`sk-(?:ant-|proj-)?[A-Za-z0-9_-]{20,}`),
	// Generic API keys after common key names
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Quoted secrets, tokens and passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
}

// Secrets replaces every detected credential in text with Placeholder.
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllLiteralString(result, Placeholder)
	}
	return result
}

// ShouldRedactPath reports whether path matches any of the glob patterns.
// Patterns use doublestar syntax; a pattern without a slash also matches the
// base name at any depth.
func ShouldRedactPath(path string, patterns []string) bool {
	path = strings.TrimPrefix(path, "./")
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			base := path[strings.LastIndex(path, "/")+1:]
			if ok, err := doublestar.Match(pattern, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// Content redacts credentials from a file's content, or the whole content
// when its path matches one of redactPaths.
func Content(content, path string, redactPaths []string) string {
	if ShouldRedactPath(path, redactPaths) {
		return Placeholder + " (file content redacted by path policy)\n"
	}
	return Secrets(content)
}
