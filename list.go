package plume

import (
	"fmt"
	"strconv"
	"strings"
)

// List grammar: whitespace-separated elements with brace grouping (verbatim,
// nesting, no substitution) and quote grouping (backslash escapes only).
// quoteListElement adds braces or backslashes on re-serialization exactly
// when needed so that scanList reproduces the original element boundaries.

func isListSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// scanList splits a string into its list elements.
func scanList(s string) ([]string, error) {
	var elems []string
	i, n := 0, len(s)
	for {
		for i < n && isListSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}
		switch s[i] {
		case '{':
			depth := 1
			i++
			start := i
			for i < n && depth > 0 {
				switch s[i] {
				case '\\':
					i++ // backslash hides the next char from brace counting
				case '{':
					depth++
				case '}':
					depth--
				}
				i++
			}
			if depth > 0 {
				return nil, fmt.Errorf("unmatched open brace in list")
			}
			elems = append(elems, s[start:i-1])
			if i < n && !isListSpace(s[i]) {
				return nil, fmt.Errorf("list element in braces followed by %q instead of space", s[i:i+1])
			}
		case '"':
			i++
			var b strings.Builder
			for i < n && s[i] != '"' {
				if s[i] == '\\' {
					sub, next := substBackslash(s, i)
					b.WriteString(sub)
					i = next
					continue
				}
				b.WriteByte(s[i])
				i++
			}
			if i >= n {
				return nil, fmt.Errorf("unmatched open quote in list")
			}
			i++ // closing quote
			elems = append(elems, b.String())
			if i < n && !isListSpace(s[i]) {
				return nil, fmt.Errorf("list element in quotes followed by %q instead of space", s[i:i+1])
			}
		default:
			var b strings.Builder
			for i < n && !isListSpace(s[i]) {
				if s[i] == '\\' {
					sub, next := substBackslash(s, i)
					b.WriteString(sub)
					i = next
					continue
				}
				b.WriteByte(s[i])
				i++
			}
			elems = append(elems, b.String())
		}
	}
	return elems, nil
}

// quoteListElement formats one element so that re-parsing yields it verbatim.
func quoteListElement(s string) string {
	if s == "" {
		return "{}"
	}
	needsQuote := s[0] == '"' || s[0] == '{' || s[0] == '#'
	depth := 0
	braceOK := true
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\v', '\f', '$', '[', ']', ';', '"':
			needsQuote = true
		case '{':
			needsQuote = true
			depth++
		case '}':
			needsQuote = true
			depth--
			if depth < 0 {
				braceOK = false
			}
		case '\\':
			needsQuote = true
			if i == len(s)-1 {
				braceOK = false // trailing backslash would eat the closing brace
			} else {
				i++
			}
		}
	}
	if depth != 0 {
		braceOK = false
	}
	if !needsQuote {
		return s
	}
	if braceOK {
		return "{" + s + "}"
	}
	// Unbalanced braces or trailing backslash: escape character by character.
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '$', '[', ']', ';', '"', '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteByte(s[i])
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// formatList joins pre-quoted elements into a list string.
func formatList(elems []string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = quoteListElement(e)
	}
	return strings.Join(parts, " ")
}

// parseIndex resolves a list index spec against a list of the given length.
// Accepts plain integers, "end", "end±N", and "M±N". The returned index may
// be out of range; bounds policy is the caller's (reads yield empty results).
func parseIndex(spec string, length int) (int, error) {
	if v, err := strconv.Atoi(spec); err == nil {
		return v, nil
	}
	if spec == "end" {
		return length - 1, nil
	}
	if strings.HasPrefix(spec, "end") {
		rest := spec[3:]
		if len(rest) > 1 && (rest[0] == '-' || rest[0] == '+') {
			if off, err := strconv.Atoi(rest); err == nil {
				return length - 1 + off, nil
			}
		}
		return 0, badIndex(spec)
	}
	// M+N / M-N arithmetic (the sign is not in first position, that case was
	// already consumed by Atoi above)
	for i := 1; i < len(spec); i++ {
		if spec[i] == '+' || spec[i] == '-' {
			m, err1 := strconv.Atoi(spec[:i])
			n, err2 := strconv.Atoi(spec[i:])
			if err1 == nil && err2 == nil {
				return m + n, nil
			}
			break
		}
	}
	return 0, badIndex(spec)
}

func badIndex(spec string) error {
	return fmt.Errorf("bad index %q: must be integer?[+-]integer? or end?[+-]integer?", spec)
}
