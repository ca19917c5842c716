package graphpath

import "strings"

const (
	// Separator starts a path segment.
	Separator = "/"
	// Filler may follow the separator for visual indentation and is dropped.
	Filler = '-'
)

// NormalizeSegment applies the segment grammar to element text.
func NormalizeSegment(text string) string {
	if !strings.HasPrefix(text, Separator) {
		return text
	}
	rest := text[len(Separator):]
	body := strings.TrimLeft(rest, string(Filler))
	if len(body) == len(rest) {
		return text
	}
	return Separator + body
}

// IsContainerText reports whether text marks a text element as a path
// container inside its group.
func IsContainerText(text string) bool {
	return strings.HasPrefix(text, Separator)
}

// Join concatenates segments into a path string.
func Join(segments []string) string {
	return strings.Join(segments, "")
}
