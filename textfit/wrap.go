package textfit

import (
	"strings"

	"github.com/edentir/edenpdf"
)

// Wrap splits text into at most maxLines lines whose measured width stays
// within maxWidth-margin.
//
// Words are taken greedily: a word that would push the current line past the
// limit starts a new line, unless the line is still empty, in which case the
// word is kept alone even if it is wider than the limit. Lines beyond maxLines
// are dropped without error. Empty text yields no lines.
func Wrap(m Measurer, text string, maxWidth float64, maxLines int, font edenpdf.Font, margin float64) ([]string, error) {
	words := strings.Fields(text)
	if len(words) == 0 || maxLines <= 0 {
		return nil, nil
	}
	limit := maxWidth - margin

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		w, err := m.Width(candidate, font)
		if err != nil {
			return nil, err
		}
		if w > limit && line != "" {
			lines = append(lines, line)
			if len(lines) == maxLines {
				return lines, nil
			}
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines, nil
}

// WrapValue stringifies v (number, date, boolean, string) and wraps it.
func WrapValue(m Measurer, v any, maxWidth float64, maxLines int, font edenpdf.Font, margin float64) ([]string, error) {
	return Wrap(m, edenpdf.Stringify(v), maxWidth, maxLines, font, margin)
}
