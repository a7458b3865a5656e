package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/suuji/internal/numeral"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildSlots renders the digit buffer as maxDigits fixed slots. The next free slot
// carries the cursor.
func buildSlots(buffer string, maxDigits int, correct bool) []styledRune {
	out := make([]styledRune, 0, maxDigits*2)
	digits := []rune(buffer)
	for i := 0; i < maxDigits; i++ {
		displayed := '_'
		style := pendingStyle
		switch {
		case i < len(digits):
			displayed = digits[i]
			style = digitStyle
			if correct {
				style = correctStyle
			}
		case i == len(digits):
			style = cursorStyle
		}
		if i > 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		out = append(out, styledRune{
			s:     style.Render(string(displayed)),
			width: runewidth.RuneWidth(displayed),
		})
	}
	return out
}

// buildReading styles a reading fragment by fragment so contracted forms stand out.
// Romaji fragments are separated by breakable spaces; kana is written solid.
func buildReading(frags []numeral.Fragment, spaced bool) []styledRune {
	var out []styledRune
	for i, f := range frags {
		if spaced && i > 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		style := readingStyle
		if f.Irregular {
			style = irregularStyle
		}
		for _, r := range f.Text {
			out = append(out, styledRune{
				s:     style.Render(string(r)),
				width: runewidth.RuneWidth(r),
			})
		}
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
