package segments

import (
	"math"
	"sort"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/gaps"
	"github.com/kbukum/clipkit/transcript"
)

// DefaultPadding is kept on each side of speech when removing silences.
const DefaultPadding = 0.05

// MinSliceSeconds is the shortest segment Slice emits.
const MinSliceSeconds = 0.1

// Segment is a kept region of the source, End > Start.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label,omitempty"`
}

// Duration returns End - Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Plan is the result of silence-removal planning.
type Plan struct {
	Segments []Segment `json:"segments"`
	// NoChange is set when nothing qualifies for removal; the caller should
	// keep the original untouched.
	NoChange bool `json:"no_change"`
	// Removed is the number of cuts between kept segments.
	Removed int `json:"removed"`
	// RemovedSeconds is the time between kept segments.
	RemovedSeconds float64 `json:"removed_seconds"`
}

// Total returns the summed duration of the planned segments.
func (p Plan) Total() float64 {
	var t float64
	for _, s := range p.Segments {
		t += s.Duration()
	}
	return t
}

// FromGaps builds the kept segments for silence removal. A segment is closed
// wherever a recorded gap lies between two consecutive words, matched on the
// words' boundary times. Padding is applied on both sides and clamped to
// [0, trackDuration]; a non-positive trackDuration disables the upper clamp.
// A gap the padding covers completely is not cut, so a plan never holds two
// touching segments.
func FromGaps(words []transcript.Word, gs []gaps.Gap, padding, trackDuration float64) Plan {
	if padding < 0 {
		padding = 0
	}
	if len(words) == 0 {
		return wholeTrack(words, trackDuration)
	}

	type boundary struct{ end, start float64 }
	recorded := make(map[boundary]bool, len(gs))
	for _, g := range gs {
		recorded[boundary{g.Start, g.End}] = true
	}

	clampEnd := func(t float64) float64 {
		if trackDuration > 0 {
			return math.Min(t, trackDuration)
		}
		return t
	}

	var segs []Segment
	cur := Segment{Start: math.Max(0, words[0].Start-padding), End: clampEnd(words[0].End + padding)}
	for i := 0; i+1 < len(words); i++ {
		next := words[i+1]
		// Padding that swallows the whole pause leaves nothing to cut.
		if start := math.Max(0, next.Start-padding); recorded[boundary{words[i].End, next.Start}] && start > cur.End {
			segs = append(segs, cur)
			cur = Segment{Start: start, End: clampEnd(next.End + padding)}
			continue
		}
		cur.End = math.Max(cur.End, clampEnd(next.End+padding))
	}
	segs = append(segs, cur)

	kept := segs[:0]
	for _, s := range segs {
		if s.End > s.Start {
			kept = append(kept, s)
		}
	}
	if len(kept) <= 1 {
		return wholeTrack(words, trackDuration)
	}

	plan := Plan{Segments: kept, Removed: len(kept) - 1}
	for i := 1; i < len(kept); i++ {
		plan.RemovedSeconds += kept[i].Start - kept[i-1].End
	}
	return plan
}

func wholeTrack(words []transcript.Word, trackDuration float64) Plan {
	p := Plan{NoChange: true}
	switch {
	case trackDuration > 0:
		p.Segments = []Segment{{Start: 0, End: trackDuration}}
	case len(words) > 0:
		p.Segments = []Segment{{Start: words[0].Start, End: transcript.Sequence(words).End()}}
	}
	return p
}

// Slice splits [0, duration] at the given cut points. Segments shorter than
// MinSliceSeconds are skipped.
func Slice(cuts []float64, duration float64) []Segment {
	bounds := append([]float64{0}, cuts...)
	sort.Float64s(bounds[1:])
	bounds = append(bounds, duration)

	var out []Segment
	for i := 0; i+1 < len(bounds); i++ {
		s := Segment{Start: bounds[i], End: bounds[i+1]}
		if s.Duration() < MinSliceSeconds {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Complement returns the parts of [0, duration] not covered by removals.
func Complement(removals []Segment, duration float64) ([]Segment, error) {
	sorted := append([]Segment(nil), removals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var (
		out []Segment
		pos float64
	)
	for _, r := range sorted {
		if r.Start > pos {
			out = append(out, Segment{Start: pos, End: math.Min(r.Start, duration)})
		}
		pos = math.Max(pos, r.End)
	}
	if pos < duration {
		out = append(out, Segment{Start: pos, End: duration})
	}

	kept := out[:0]
	for _, s := range out {
		if s.End > s.Start {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, errors.InvalidInput("cuts", "no segments left after removing cuts")
	}
	return kept, nil
}
