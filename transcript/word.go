package transcript

import (
	"math"
	"sort"
	"strings"
)

// Word is one recognized speech token. Times are seconds from the start of
// the media the transcript was produced from.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start.
func (w Word) Duration() float64 { return w.End - w.Start }

// Sequence is an ordered list of words, non-decreasing in Start.
type Sequence []Word

// Text joins the word texts with single spaces.
func (s Sequence) Text() string {
	parts := make([]string, len(s))
	for i, w := range s {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// End returns the end time of the last word, or 0 for an empty sequence.
func (s Sequence) End() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].End
}

// Shift returns a copy with every timestamp moved by offset seconds.
func (s Sequence) Shift(offset float64) Sequence {
	out := make(Sequence, len(s))
	for i, w := range s {
		out[i] = Word{Text: w.Text, Start: w.Start + offset, End: w.End + offset}
	}
	return out
}

// Within returns the words that overlap [start, end].
func (s Sequence) Within(start, end float64) Sequence {
	var out Sequence
	for _, w := range s {
		if w.End >= start && w.Start <= end {
			out = append(out, w)
		}
	}
	return out
}

// Report describes what Normalize had to fix.
type Report struct {
	Dropped   int  `json:"dropped"`
	Clamped   int  `json:"clamped"`
	Reordered bool `json:"reordered"`
}

// Normalize is the ingestion boundary for recognizer output. It trims word
// text and drops words that are empty or carry negative or non-finite times.
// It clamps End < Start to End = Start, stable-sorts by Start and trims a
// word whose End runs past the next word's Start. The result satisfies the
// Sequence invariants, so downstream algorithms never see an inverted or
// overlapping word.
func Normalize(words []Word) (Sequence, Report) {
	var rep Report
	out := make(Sequence, 0, len(words))
	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" || !finite(w.Start) || !finite(w.End) || w.Start < 0 {
			rep.Dropped++
			continue
		}
		if w.End < w.Start {
			w.End = w.Start
			rep.Clamped++
		}
		out = append(out, w)
	}
	if !sort.SliceIsSorted(out, func(i, j int) bool { return out[i].Start < out[j].Start }) {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
		rep.Reordered = true
	}
	for i := 0; i+1 < len(out); i++ {
		if out[i].End > out[i+1].Start {
			out[i].End = out[i+1].Start
			rep.Clamped++
		}
	}
	return out, rep
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
