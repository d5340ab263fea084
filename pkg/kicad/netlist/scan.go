package netlist

import (
	"strings"
)

// Structural markers of the netlist grammar.
const (
	openMarker  = '('
	closeMarker = ')'
	quoteMarker = '"'
)

// CountMarkers returns the number of open markers minus the number of close
// markers in s. Quotes are not honored: this is the coarse depth count used to
// split the document into sections.
func CountMarkers(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case openMarker:
			depth++
		case closeMarker:
			depth--
		}
	}
	return depth
}

// FindBlockEnd returns the offset of the close marker that balances the
// structure beginning at start. A double quote toggles a literal span inside
// which markers are plain text; quotes never nest and are never escaped.
// ok is false when the text ends before the balance returns to zero, or when
// a close marker appears before any open marker.
func FindBlockEnd(text string, start int) (end int, ok bool) {
	if start < 0 || start >= len(text) {
		return -1, false
	}

	depth := 0
	literal := false
	for i := start; i < len(text); i++ {
		switch text[i] {
		case quoteMarker:
			literal = !literal
		case openMarker:
			if !literal {
				depth++
			}
		case closeMarker:
			if literal {
				continue
			}
			if depth == 0 {
				return -1, false
			}
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return -1, false
}

// FindClosingBracket returns the offset of the first close marker at or after
// start, ignoring nesting and quotes. Only use it for single fields that can
// never contain markers, such as the ref and pin of a net node.
func FindClosingBracket(text string, start int) (end int, ok bool) {
	if start < 0 || start >= len(text) {
		return -1, false
	}
	i := strings.IndexByte(text[start:], closeMarker)
	if i < 0 {
		return -1, false
	}
	return start + i, true
}

// tagIndex returns the offset of the next "(tag" anchor at or after from.
// The tag must be followed by whitespace so "(net" never matches "(nets".
// from must lie outside any quoted span; anchors inside quotes are skipped.
func tagIndex(text, tag string, from int) int {
	if from < 0 {
		return -1
	}
	anchor := string(openMarker) + tag
	quoted := false
	for i := from; i < len(text); i++ {
		switch text[i] {
		case quoteMarker:
			quoted = !quoted
		case openMarker:
			if quoted || !strings.HasPrefix(text[i:], anchor) {
				continue
			}
			next := i + len(anchor)
			if next < len(text) && isSpace(text[next]) {
				return i
			}
		}
	}
	return -1
}

// tagValue finds the next "(tag value)" block at or after from and returns the
// raw text between the tag name and its quote-aware close marker, plus the
// offset of that close marker. Anchors beyond limit are ignored (limit < 0
// means unbounded).
func tagValue(text, tag string, from, limit int) (value string, end int, ok bool) {
	at := tagIndex(text, tag, from)
	if at < 0 || (limit >= 0 && at > limit) {
		return "", -1, false
	}
	end, ok = FindBlockEnd(text, at)
	if !ok {
		return "", -1, false
	}
	return text[at+1+len(tag) : end], end, true
}

// stripQuotes removes every double quote and surrounding whitespace.
func stripQuotes(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, string(quoteMarker), ""))
}

// unquoteValue trims s and removes one leading and, only then, one trailing
// double quote. Quotes inside the value survive.
func unquoteValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, string(quoteMarker)) {
		s = s[1:]
		s = strings.TrimSuffix(s, string(quoteMarker))
	}
	return s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
