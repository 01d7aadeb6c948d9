package story

import (
	"strconv"
	"strings"
)

const DefaultWordsPerMinute = 200

// CountWords returns the number of whitespace separated words in the lines.
// Lines starting with '<' are markup, recognized or not, and are not counted.
func CountWords(lines []Line) int {
	count := 0
	for _, line := range lines {
		text := strings.TrimSpace(line.Text)
		if len(text) == 0 || text[0] == '<' {
			continue
		}
		count += len(strings.Fields(text))
	}
	return count
}

// EstimateReadTime returns the reading time in whole minutes, rounding half up.
// It is never less than one minute.
func EstimateReadTime(words, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	if words < 0 {
		words = 0
	}

	// round(words/wpm) with halves going up, in integer arithmetic
	minutes := (2*words + wpm) / (2 * wpm)
	if minutes < 1 {
		return 1
	}
	return minutes
}

// FormatReadTime returns the reading time as displayed in the pages
func FormatReadTime(minutes int) string {
	return "~" + strconv.Itoa(minutes) + " min read"
}
