package envelope

import "strings"

// Wrap breaks text into lines of at most width characters. Lines break
// between words; a word longer than width is split, and its first piece
// fills whatever room is left on the current line.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var (
		lines []string
		line  []rune
	)
	flush := func() {
		if len(line) > 0 {
			lines = append(lines, string(line))
			line = line[:0:0]
		}
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)

		need := len(w)
		if len(line) > 0 {
			need += len(line) + 1
		}
		if need <= width {
			if len(line) > 0 {
				line = append(line, ' ')
			}
			line = append(line, w...)
			continue
		}

		if len(w) <= width {
			flush()
			line = append(line, w...)
			continue
		}

		if room := width - len(line) - 1; len(line) > 0 && room > 0 {
			line = append(line, ' ')
			line = append(line, w[:room]...)
			w = w[room:]
		}
		flush()
		for len(w) > width {
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		line = append(line, w...)
	}
	flush()

	return lines
}
