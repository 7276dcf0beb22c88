package redact

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maskChar replaces hidden characters in Mask.
const maskChar = "*"

// invalidMask is returned by Mask for input it cannot mask.
const invalidMask = "[INVALID]"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// messageRules is the ordered redaction set applied to log text. Each rule
// keeps its label group and replaces only the value. Quotes may arrive
// backslash-escaped when the text has already been through a JSON or
// console encoder.
var messageRules = []rule{
	{regexp.MustCompile(`(?i)(api[_-]?key\\?["']?\s*[:=]\s*\\?["']?)[a-zA-Z0-9\-_]{20,}`), "${1}" + Placeholder},
	{regexp.MustCompile(`(?i)(token\\?["']?\s*[:=]\s*\\?["']?)[a-zA-Z0-9\-_]{20,}`), "${1}" + Placeholder},
	{regexp.MustCompile(`(?i)(password\\?["']?\s*[:=]\s*\\?["']?)[^\s"'\\]{8,}`), "${1}" + Placeholder},
	{regexp.MustCompile(`(?i)(secret\\?["']?\s*[:=]\s*\\?["']?)[^\s"'\\]{8,}`), "${1}" + Placeholder},
	{regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9\-_]{20,}`), "Bearer " + Placeholder},
}

// maxPasses bounds the fixpoint loop in Message.
const maxPasses = 4

// Message applies the log redaction rules to text. The result is a fixpoint:
// Message(Message(s)) == Message(s).
func Message(text string) string {
	out := text
	for i := 0; i < maxPasses; i++ {
		next := applyRules(out)
		if next == out {
			return out
		}
		out = next
	}
	return out
}

func applyRules(text string) string {
	for _, r := range messageRules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return text
}

// Any stringifies v and redacts the result.
func Any(v any) string {
	switch s := v.(type) {
	case string:
		return Message(s)
	case nil:
		return "<nil>"
	default:
		return Message(fmt.Sprint(v))
	}
}

// Args redacts the string-typed entries of args, leaving other values as they are.
func Args(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			out[i] = Message(s)
		} else {
			out[i] = a
		}
	}
	return out
}

// Mask shows the first visible characters of s and masks the rest. Values no
// longer than visible are masked entirely. Empty or non-UTF-8 input yields
// a fixed sentinel.
func Mask(s string, visible int) string {
	if s == "" || !utf8.ValidString(s) {
		return invalidMask
	}
	if visible < 0 {
		visible = 0
	}
	runes := []rune(s)
	if len(runes) <= visible {
		return strings.Repeat(maskChar, len(runes))
	}
	return string(runes[:visible]) + strings.Repeat(maskChar, len(runes)-visible)
}

type writer struct {
	w io.Writer
}

// Writer returns an io.Writer that redacts every write before forwarding it
// to w. Writers are not stacked: wrapping an already-redacting writer
// returns it unchanged.
func Writer(w io.Writer) io.Writer {
	if _, ok := w.(*writer); ok {
		return w
	}
	return &writer{w: w}
}

// IsWriter reports whether w already redacts its input.
func IsWriter(w io.Writer) bool {
	_, ok := w.(*writer)
	return ok
}

func (rw *writer) Write(p []byte) (int, error) {
	clean := Message(string(p))
	if _, err := io.WriteString(rw.w, clean); err != nil {
		return 0, err
	}
	return len(p), nil
}
