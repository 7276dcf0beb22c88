package commitgen

import (
	"strings"
	"unicode"
)

var strippedPrefixes = []string{"commit message:", "commit:", "message:"}

// Clean reduces a raw completion to a single commit line of at most
// maxChars characters. It takes the first non-empty line, drops quoting,
// list markers and a leading "commit message:" label, maps characters a
// commit line may not contain, collapses whitespace, and truncates at a
// word boundary.
func Clean(raw string, maxChars int) string {
	line := firstLine(raw)
	line = strings.Trim(line, "`\"' ")
	line = strings.TrimLeft(line, "-*> ")

	for _, p := range strippedPrefixes {
		if len(line) >= len(p) && strings.EqualFold(line[:len(p)], p) {
			line = strings.TrimSpace(line[len(p):])
			line = strings.Trim(line, "`\"' ")
			break
		}
	}

	line = strings.Map(mapRune, line)
	line = strings.Join(strings.Fields(line), " ")
	line = strings.TrimRight(line, ".")

	if maxChars > 0 {
		line = truncateWords(line, maxChars)
	}
	return line
}

func firstLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "```") {
			continue
		}
		return l
	}
	return ""
}

// mapRune keeps the characters a validated commit message accepts.
// Path and identifier separators become hyphens; everything else is
// dropped.
func mapRune(r rune) rune {
	switch {
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return r
	case unicode.IsSpace(r):
		return ' '
	case strings.ContainsRune("():-.,!", r):
		return r
	case r == '/' || r == '_':
		return '-'
	default:
		return -1
	}
}

func truncateWords(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	cut := s[:maxChars]
	if i := strings.LastIndex(cut, " "); i > maxChars/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,:-(")
}
