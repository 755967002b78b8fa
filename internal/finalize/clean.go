package finalize

import (
	"regexp"
	"strings"
	"unicode"
)

var bracketRE = regexp.MustCompile(`\[[^\]]*\]`)

// registrationSuffixRE matches event-platform boilerplate appended to cell
// values ("Jane Doe has registered for your event ...").
var registrationSuffixRE = regexp.MustCompile(`(?i)(has registered for|registered for your event).*$`)

// placeholderValues are cell contents that mean "no data" in the wild.
var placeholderValues = map[string]struct{}{
	"n/a":            {},
	"na":             {},
	"none":           {},
	".":              {},
	"0":              {},
	"not applicable": {},
	"#n/a":           {},
}

// Clean strips the garbage that event exports pack into free-text cells:
// everything past the first line, bracketed annotations, registration
// boilerplate, and anything after a pipe. A value that cleans down to a known
// placeholder becomes the empty string.
func Clean(raw string) string {
	s := raw
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	s = bracketRE.ReplaceAllString(s, "")
	s = registrationSuffixRE.ReplaceAllString(s, "")
	if idx := strings.IndexByte(s, '|'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if _, ok := placeholderValues[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

// ExtractURL pulls the first URL-shaped substring from a raw cell: http(s)://
// through the next whitespace or ']'. Returns "" when the cell holds no URL.
func ExtractURL(raw string) string {
	idx := strings.Index(raw, "http://")
	if hs := strings.Index(raw, "https://"); hs >= 0 && (idx < 0 || hs < idx) {
		idx = hs
	}
	if idx < 0 {
		return ""
	}

	rest := raw[idx:]
	end := len(rest)
	for i, r := range rest {
		if r == ']' || unicode.IsSpace(r) {
			end = i
			break
		}
	}
	return rest[:end]
}
