// Package decode turns raw child process output into text.
package decode

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Text decodes b as UTF-8, replacing ill-formed bytes with U+FFFD.
// It never fails.
func Text(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

// Trimmed is Text with surrounding whitespace removed.
func Trimmed(b []byte) string {
	return strings.TrimSpace(Text(b))
}

// Lossy decodes b as UTF-8, dropping ill-formed bytes instead of replacing
// them. Identifiers scraped from device output stay free of U+FFFD.
func Lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
		}
		b = b[size:]
	}
	return sb.String()
}
