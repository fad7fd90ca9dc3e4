package captions

import (
	"strings"

	"github.com/kbukum/clipkit/transcript"
)

// IndexedWord is a word together with its position inside its group.
type IndexedWord struct {
	transcript.Word
	Index int `json:"index"`
}

// Group is a bundle of consecutive words displayed together.
type Group struct {
	Words []IndexedWord `json:"words"`
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
}

// Duration returns End - Start.
func (g Group) Duration() float64 { return g.End - g.Start }

// Plain returns the group's words without their indices.
func (g Group) Plain() transcript.Sequence {
	out := make(transcript.Sequence, len(g.Words))
	for i, w := range g.Words {
		out[i] = w.Word
	}
	return out
}

// Threshold is a convenience for building the optional silence threshold.
func Threshold(seconds float64) *float64 { return &seconds }

// GroupWords splits words into caption groups of at most maxWords words. A nil
// silenceThreshold disables the silence rule. maxWords below 1 is treated
// as 1. A group never ends after the next one starts, even when the input
// words overlap in time.
func GroupWords(words []transcript.Word, maxWords int, silenceThreshold *float64) []Group {
	if maxWords < 1 {
		maxWords = 1
	}
	var (
		groups []Group
		open   []transcript.Word
	)
	for _, w := range words {
		if len(open) > 0 && silenceThreshold != nil {
			if w.Start-open[len(open)-1].End > *silenceThreshold {
				groups = append(groups, build(open))
				open = nil
			}
		}
		if len(open) >= maxWords {
			groups = append(groups, build(open))
			open = nil
		}
		open = append(open, w)
	}
	if len(open) > 0 {
		groups = append(groups, build(open))
	}
	for i := 0; i+1 < len(groups); i++ {
		if next := groups[i+1].Start; groups[i].End > next {
			groups[i].End = next
		}
	}
	return groups
}

func build(words []transcript.Word) Group {
	g := Group{
		Words: make([]IndexedWord, len(words)),
		Start: words[0].Start,
		End:   words[len(words)-1].End,
	}
	texts := make([]string, len(words))
	for i, w := range words {
		g.Words[i] = IndexedWord{Word: w, Index: i}
		texts[i] = w.Text
	}
	g.Text = strings.Join(texts, " ")
	return g
}
