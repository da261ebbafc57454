package canvas

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// MaxDisplayLines is the number of wrapped lines drawn for a node's prompt
// or response. Longer texts are clamped, never re-wrapped.
const MaxDisplayLines = 7

// MeasureFunc returns the rendered width of s in the caller's units
// (pixels for image output, scaled cells for the terminal).
type MeasureFunc func(s string) int

// Wrap breaks text into lines no wider than maxWidth.
//
// The scan is greedy and single pass. It remembers the most recent space
// since the last cut; once the segment reaches maxWidth the line is broken
// at that space, otherwise at the current character. Broken lines are
// trimmed, the trailing segment is kept as is. Empty text yields one empty
// line.
func Wrap(text string, maxWidth int, measure MeasureFunc) []string {
	runes := []rune(text)
	var lines []string

	lastCut, lastSpace := 0, -1
	active := 0
	for active+1 < len(runes) {
		active++
		if runes[active] == ' ' {
			lastSpace = active
		}
		if measure(string(runes[lastCut:active])) < maxWidth {
			continue
		}
		if lastSpace != -1 {
			lines = append(lines, strings.TrimSpace(string(runes[lastCut:lastSpace])))
			active = lastSpace + 1
			lastCut = lastSpace
			lastSpace = -1
		} else {
			lines = append(lines, strings.TrimSpace(string(runes[lastCut:active])))
			lastCut = active
		}
	}
	return append(lines, string(runes[lastCut:]))
}

// Clamp returns at most n leading lines. The input is not modified.
func Clamp(lines []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(lines) <= n {
		return lines
	}
	return lines[:n:n]
}

// StringWidth returns the display width of s in terminal cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateToWidth cuts s so it occupies at most width cells.
func TruncateToWidth(s string, width int) string {
	return runewidth.Truncate(s, width, "")
}

// FitText truncates text to width cells, ending it with tail when cut.
func FitText(text string, width int, tail string) string {
	if StringWidth(text) <= width {
		return text
	}
	if StringWidth(tail) >= width {
		return TruncateToWidth(text, width)
	}
	return runewidth.Truncate(text, width, tail)
}

// CellMeasure measures text in terminal cells scaled to cellWidth pixels,
// so pixel based layouts can be wrapped for a character grid.
func CellMeasure(cellWidth int) MeasureFunc {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	return func(s string) int {
		return runewidth.StringWidth(s) * cellWidth
	}
}

// FixedMeasure gives every rune the same width.
func FixedMeasure(runeWidth int) MeasureFunc {
	return func(s string) int {
		return len([]rune(s)) * runeWidth
	}
}
