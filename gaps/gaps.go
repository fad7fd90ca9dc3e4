// Package gaps finds silences between consecutive words.
//
// Gap timestamps are absolute: they are in the coordinate space of the word
// sequence they were detected in. A caller analyzing a sub-range can ask for
// region-relative output with Options.Relative, which shifts every gap by
// the range start.
package gaps

import (
	"github.com/kbukum/clipkit/transcript"
)

// DefaultMinGap is the shortest pause reported as a gap, in seconds.
const DefaultMinGap = 0.4

// Gap is a silence between two adjacent words.
type Gap struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// Range is a closed time interval in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Options controls detection.
type Options struct {
	// MinGap is the minimum pause length. Zero means DefaultMinGap.
	MinGap float64
	// Range restricts detection to words overlapping [Start, End].
	Range *Range
	// Relative shifts reported gaps by -Range.Start.
	Relative bool
}

// Result is the detected gaps plus summary statistics.
type Result struct {
	Gaps         []Gap   `json:"gaps"`
	TotalGapTime float64 `json:"total_gap_time"`
	GapCount     int     `json:"gap_count"`
}

// Detect reports every pause between consecutive words that is at least
// MinGap long. Fewer than two words produce no gaps.
func Detect(words []transcript.Word, opts Options) Result {
	minGap := opts.MinGap
	if minGap <= 0 {
		minGap = DefaultMinGap
	}
	seq := transcript.Sequence(words)
	offset := 0.0
	if opts.Range != nil {
		seq = seq.Within(opts.Range.Start, opts.Range.End)
		if opts.Relative {
			offset = -opts.Range.Start
		}
	}

	res := Result{Gaps: []Gap{}}
	for i := 0; i+1 < len(seq); i++ {
		d := seq[i+1].Start - seq[i].End
		if d < minGap {
			continue
		}
		res.Gaps = append(res.Gaps, Gap{
			Start:    seq[i].End + offset,
			End:      seq[i+1].Start + offset,
			Duration: d,
		})
		res.TotalGapTime += d
	}
	res.GapCount = len(res.Gaps)
	return res
}
