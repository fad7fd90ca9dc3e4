package transcript

import (
	"strings"
)

// Line is a run of words rendered with a leading timestamp.
type Line struct {
	Start float64
	Text  string
}

// Lines folds words into timestamped lines for prompting a language model.
// A line closes on sentence punctuation or once it spans maxSeconds.
func Lines(words Sequence, maxSeconds float64) []Line {
	if maxSeconds <= 0 {
		maxSeconds = 15
	}
	var (
		lines []Line
		cur   []string
		start float64
	)
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, Line{Start: start, Text: strings.Join(cur, " ")})
			cur = cur[:0]
		}
	}
	for _, w := range words {
		if len(cur) == 0 {
			start = w.Start
		}
		cur = append(cur, w.Text)
		if endsSentence(w.Text) || w.End-start >= maxSeconds {
			flush()
		}
	}
	flush()
	return lines
}

// Render formats lines as "[MM:SS] text", one per line.
func Render(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("[")
		b.WriteString(FormatTimestamp(l.Start))
		b.WriteString("] ")
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}
