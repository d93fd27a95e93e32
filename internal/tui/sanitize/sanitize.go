// Package sanitize prepares remote dataset text for the terminal. School names
// and overviews come from an open data API, so any escape sequence they carry
// is removed before rendering, and the text is fitted to the available cells.
package sanitize

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/VoxDroid/nycschools/internal/format"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Line removes escape sequences and control characters and returns the text
// on a single trimmed line.
func Line(in string) string {
	out, _ := format.SanitizeText(ansi.Strip(in))
	return out
}

// Fit returns Line(in) truncated to width terminal cells, ending in Ellipsis
// when shortened. A width of zero or less returns "".
func Fit(in string, width int) string {
	if width <= 0 {
		return ""
	}
	s := Line(in)
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// Pad fits in to width and pads it with spaces to exactly width cells.
func Pad(in string, width int) string {
	s := Fit(in, width)
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

// Paragraph strips escape sequences from a multi-line text and word-wraps it
// to width. Paragraph breaks in the input are kept.
func Paragraph(in string, width int) string {
	clean := ansi.Strip(strings.ReplaceAll(in, "\r\n", "\n"))
	parts := strings.Split(clean, "\n")
	for i, p := range parts {
		p = Line(p)
		if width > 0 {
			p = wordwrap.String(p, width)
		}
		parts[i] = p
	}
	return strings.Join(parts, "\n")
}
