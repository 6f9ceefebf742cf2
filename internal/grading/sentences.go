package grading

import (
	"strings"
	"unicode"
)

// splitSentences breaks text on terminal punctuation followed by whitespace
// and on line breaks. Decimal points and abbreviations without a following
// space stay inside their sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	sentences := make([]string, 0)
	start := 0

	flush := func(end int) {
		sentence := strings.TrimSpace(string(runes[start:end]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' || r == '\r' {
			flush(i)
			continue
		}
		if !isTerminal(r) {
			continue
		}

		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if end == len(runes) || unicode.IsSpace(runes[end]) {
			flush(end)
			i = end - 1
		}
	}
	flush(len(runes))

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	default:
		return false
	}
}
