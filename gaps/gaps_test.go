package gaps

import (
	"math"
	"testing"

	"github.com/kbukum/clipkit/transcript"
)

var words = []transcript.Word{
	{Text: "Hi", Start: 0.0, End: 0.3},
	{Text: "there", Start: 0.35, End: 0.6},
	{Text: "friend", Start: 1.5, End: 1.9},
	{Text: "again", Start: 2.4, End: 2.8},
	{Text: "bye", Start: 4.0, End: 4.2},
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		words     []transcript.Word
		opts      Options
		wantCount int
		wantTotal float64
		firstGap  Gap
	}{
		{"default min gap", words, Options{}, 3, 0.9 + 0.5 + 1.2, Gap{0.6, 1.5, 0.9}},
		{"higher threshold", words, Options{MinGap: 1.0}, 1, 1.2, Gap{2.8, 4.0, 1.2}},
		{"single word", words[:1], Options{}, 0, 0, Gap{}},
		{"empty", nil, Options{}, 0, 0, Gap{}},
		{"range absolute", words, Options{Range: &Range{Start: 1.0, End: 3.0}}, 1, 0.5, Gap{1.9, 2.4, 0.5}},
		{"range relative", words, Options{Range: &Range{Start: 1.0, End: 3.0}, Relative: true}, 1, 0.5, Gap{0.9, 1.4, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Detect(tt.words, tt.opts)
			if res.GapCount != tt.wantCount || len(res.Gaps) != tt.wantCount {
				t.Fatalf("GapCount = %d (len %d), want %d", res.GapCount, len(res.Gaps), tt.wantCount)
			}
			if !near(res.TotalGapTime, tt.wantTotal) {
				t.Errorf("TotalGapTime = %v, want %v", res.TotalGapTime, tt.wantTotal)
			}
			if tt.wantCount == 0 {
				return
			}
			g := res.Gaps[0]
			if !near(g.Start, tt.firstGap.Start) || !near(g.End, tt.firstGap.End) || !near(g.Duration, tt.firstGap.Duration) {
				t.Errorf("first gap = %+v, want %+v", g, tt.firstGap)
			}
			for _, g := range res.Gaps {
				if !near(g.Duration, g.End-g.Start) {
					t.Errorf("gap %+v duration mismatch", g)
				}
			}
		})
	}
}
