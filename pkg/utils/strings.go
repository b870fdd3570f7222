package utils

import "strings"

// ContainsAny checks if the text contains any of the given keywords
func ContainsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// CountMatches returns how many of the given keywords appear in the text
func CountMatches(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}

// Capitalize upper-cases the first byte of a word, leaving the rest untouched
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TitleCase capitalizes each whitespace or hyphen separated word in a phrase.
// strings.Title is deprecated and keyword tables are plain ASCII.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	capNext := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '-' || c == '\t':
			capNext = true
			b.WriteByte(c)
		case capNext && c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
			capNext = false
		default:
			capNext = false
			b.WriteByte(c)
		}
	}
	return b.String()
}

// DedupeFirstSeen removes duplicates from a slice, keeping first-seen order
func DedupeFirstSeen(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
