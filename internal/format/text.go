// Package format holds the small string helpers shared by the store, the
// list renderers and the fetcher.
package format

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ValidateKey checks whether a record key (such as a school DBN) is acceptable.
// It does NOT mutate the input; use SanitizeText first when desired.
func ValidateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("invalid key: key cannot be empty")
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("invalid key: contains invalid encoding")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return fmt.Errorf("invalid key: contains control character U+%04X (%q)", r, r)
		}
	}
	return nil
}

// SanitizeText removes control and zero-width characters, collapses the
// remaining text onto one trimmed line, and reports whether anything changed.
// Newlines and tabs in remote text fields are turned into spaces.
func SanitizeText(s string) (string, bool) {
	if s == "" {
		return s, false
	}
	in := s
	if !utf8.ValidString(in) {
		in = strings.ToValidUTF8(in, "")
	}
	out := make([]rune, 0, len(in))
	for _, r := range in {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			out = append(out, ' ')
			continue
		case unicode.IsControl(r):
			continue
		}
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF':
			continue
		}
		out = append(out, r)
	}
	res := strings.TrimSpace(string(out))
	return res, res != s
}

// Normalize folds text for matching: diacritics are removed ("é" becomes "e")
// and the result is lower-cased. Mn is the unicode class of nonspacing marks.
func Normalize(in string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, in)
	if err != nil {
		out = in
	}
	return strings.ToLower(out)
}

// FirstChar returns the first character of s, or "" when s is empty.
func FirstChar(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError && size <= 1 {
		return ""
	}
	return string(r)
}
