package display

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return WrapWidth(text, DefaultWidth)
}

// WrapWidth word-wraps text to width columns. A non-positive width disables wrapping.
func WrapWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// Hang wraps text so continuation lines sit under the first line's text,
// after a prefix such as a choice number.
func Hang(prefix, text string, width int) string {
	body := WrapWidth(text, width-len(prefix))
	lines := strings.SplitN(body, "\n", 2)
	if len(lines) == 1 {
		return prefix + body
	}
	return prefix + lines[0] + "\n" + indent.String(lines[1], uint(len(prefix)))
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Title uppercases the first letter of every word, e.g. for object kinds.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
