package captions

import (
	"math"

	"github.com/kbukum/clipkit/transcript"
)

// SilenceBreakSeconds is the inter-word gap counted as a silence break in
// GapStats.
const SilenceBreakSeconds = 0.5

// GapStats summarizes inter-word gaps of a transcript.
type GapStats struct {
	TotalWords    int     `json:"total_words"`
	MinGap        float64 `json:"min_gap"`
	MaxGap        float64 `json:"max_gap"`
	AvgGap        float64 `json:"avg_gap"`
	SilenceBreaks int     `json:"silence_breaks"`
}

// AnalyzeGaps computes inter-word gap statistics. Fewer than two words yield
// zero gap values.
func AnalyzeGaps(words []transcript.Word) GapStats {
	st := GapStats{TotalWords: len(words)}
	if len(words) < 2 {
		return st
	}
	st.MinGap, st.MaxGap = math.Inf(1), math.Inf(-1)
	var sum float64
	for i := 1; i < len(words); i++ {
		gap := words[i].Start - words[i-1].End
		sum += gap
		st.MinGap = math.Min(st.MinGap, gap)
		st.MaxGap = math.Max(st.MaxGap, gap)
		if gap > SilenceBreakSeconds {
			st.SilenceBreaks++
		}
	}
	st.AvgGap = round3(sum / float64(len(words)-1))
	st.MinGap = round3(st.MinGap)
	st.MaxGap = round3(st.MaxGap)
	return st
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
