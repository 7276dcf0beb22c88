package commitgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/smartcommits/internal/config"
)

const systemPrompt = `You write git commit messages in the Conventional Commits format.

Rules:
1. Describe WHAT changed, not HOW.
2. Use the imperative mood ("add", not "added").
3. Use a single line. No body, no footer, no trailing period.
4. Use only letters, digits, spaces and the characters ( ) : - . , !
5. Respond with ONLY the commit message, no explanations, quotes or markdown.`

// SystemPrompt returns the system prompt for the LLM.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt constructs the user prompt for a redacted diff.
func BuildPrompt(diff string, files []string, cfg config.Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a conventional commit message under %d characters for the following git diff.\n\n", cfg.Commit.MaxChars)
	if len(cfg.Commit.Types) > 0 {
		fmt.Fprintf(&b, "Use one of these types: %s\n\n", strings.Join(cfg.Commit.Types, ", "))
	}
	b.WriteString("If applicable, include a scope in parentheses after the type.\n\n")
	b.WriteString("Format: type(scope): description\n\n")

	if len(files) > 0 {
		fmt.Fprintf(&b, "Files changed: %s\n", strings.Join(files, ", "))
	}
	if langs := detectLanguages(files); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}

	b.WriteString("\n--- BEGIN DIFF ---\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("--- END DIFF ---\n\n")
	b.WriteString("Respond with ONLY the commit message, no explanations or additional text.\n")

	return b.String()
}

var langMap = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript/React",
	".jsx":   "JavaScript/React",
	".rs":    "Rust",
	".java":  "Java",
	".rb":    "Ruby",
	".cpp":   "C++",
	".c":     "C",
	".h":     "C/C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".sql":   "SQL",
	".sh":    "Shell",
	".yaml":  "YAML",
	".yml":   "YAML",
	".json":  "JSON",
	".md":    "Markdown",
	".tf":    "Terraform",
}

func detectLanguages(files []string) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		for ext, lang := range langMap {
			if strings.HasSuffix(f, ext) && !seen[lang] {
				seen[lang] = true
				langs = append(langs, lang)
			}
		}
	}
	sort.Strings(langs)
	return langs
}
