package media

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kbukum/clipkit/errors"
)

// DefaultClipDuration stands in for a clip whose duration could not be probed.
const DefaultClipDuration = 10.0

// CrossfadeGraph blends n clips pairwise: xfade for video and acrossfade for
// audio. Each transition starts where the previous output would end, minus
// the overlap, so the i-th offset is the sum of the first i durations minus
// i*d. Outputs are labeled "outv" and "outa".
func CrossfadeGraph(durations []float64, d float64) (*Graph, error) {
	if len(durations) < 2 {
		return nil, errors.InvalidInput("clips", "crossfade needs at least 2 clips")
	}
	if d <= 0 {
		return nil, errors.InvalidInput("crossfade_duration", "must be positive")
	}

	g := &Graph{}
	n := len(durations)
	prevV, prevA := "0:v", "0:a"
	cumulative := 0.0
	for i := 1; i < n; i++ {
		cumulative += durations[i-1] - d
		outV, outA := fmt.Sprintf("v%d", i), fmt.Sprintf("a%d", i)
		if i == n-1 {
			outV, outA = "outv", "outa"
		}
		g.Add(Pads(prevV, fmt.Sprintf("%d:v", i)), Pads(outV), NewFilter("xfade").
			With("transition", "fade").
			With("duration", ftoa(d)).
			With("offset", ftoa(cumulative)))
		g.Add(Pads(prevA, fmt.Sprintf("%d:a", i)), Pads(outA), NewFilter("acrossfade").
			With("d", ftoa(d)).
			With("c1", "tri").
			With("c2", "tri"))
		prevV, prevA = outV, outA
	}
	return g, nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}

// seconds formats a timestamp for -ss / -t with millisecond precision.
func seconds(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
