package stringcodec

import "strings"

// SplitByBrackets scans s at top-level bracket depth and returns the
// contents of each top-level bracketed block (the open/close delimiters
// themselves are stripped). It is bracket-depth accurate — nested
// brackets inside a block do not end it early.
//
// If keepBetween is true, the unbracketed text between (and before/after)
// the bracketed blocks is also returned, interleaved in input order, each
// tagged by whether it was inside brackets.
//
// If keepTrailingOpen is true and the input ends with an unclosed bracket,
// its partial contents (from the outermost unclosed open to end of string)
// are returned as a final block instead of being silently dropped.
func SplitByBrackets(s string, keepBetween, keepTrailingOpen bool, open, close byte) []BracketPart {
	var parts []BracketPart
	depth := 0
	start := 0
	blockStart := -1

	flushBetween := func(end int) {
		if keepBetween && end > start {
			if text := s[start:end]; text != "" {
				parts = append(parts, BracketPart{Text: text, Bracketed: false})
			}
		}
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			if depth == 0 {
				flushBetween(i)
				blockStart = i + 1
			}
			depth++
		case close:
			if depth > 0 {
				depth--
				if depth == 0 {
					parts = append(parts, BracketPart{Text: s[blockStart:i], Bracketed: true})
					start = i + 1
				}
			}
		}
	}

	if depth > 0 && keepTrailingOpen && blockStart >= 0 {
		parts = append(parts, BracketPart{Text: s[blockStart:], Bracketed: true})
		start = len(s)
	}

	flushBetween(len(s))

	return parts
}

// BracketPart is one element returned by SplitByBrackets.
type BracketPart struct {
	Text      string
	Bracketed bool
}

// SplitExcludingBrackets splits s on delim, but only considers delim
// occurrences at bracket depth 0 — a delim byte found inside a
// (possibly nested) open/close pair does not split.
func SplitExcludingBrackets(s string, delim, open, close byte) []string {
	var parts []string
	depth := 0
	start := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			if depth > 0 {
				depth--
			}
		case delim:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// TrimmedNonEmpty filters out blank (after trimming) strings from parts,
// a small convenience used throughout the sqlparams sublanguage.
func TrimmedNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
