package moments

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/llm"
)

type stubLLM struct {
	content string
	req     llm.Request
}

func (s *stubLLM) Name() string                      { return "stub" }
func (s *stubLLM) IsAvailable(context.Context) bool { return true }

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.req = req
	return &llm.Response{Content: s.content}, nil
}

const transcriptText = "[00:00] Welcome back.\n[00:12] Here's the big reveal!\n"

func TestDetect_BestOfSortedByOrder(t *testing.T) {
	stub := &stubLLM{content: "```json\n" + `[
		{"start_time": "05:00", "end_time": "06:00", "title": "B", "reason": "r", "order": 2},
		{"start_time": "01:00", "end_time": "02:00", "title": "A", "reason": "r", "order": 1},
		{"start_time": "09:00", "end_time": "10:00", "title": "C", "reason": "r", "order": 3}
	]` + "\n```"}
	got, err := NewDetector(stub).Detect(context.Background(), Query{Transcript: transcriptText, Count: 3, Kind: BestOf})
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, m := range got {
		titles = append(titles, m.Title)
	}
	if strings.Join(titles, ",") != "A,B,C" {
		t.Errorf("order = %v", titles)
	}
	if stub.req.Schema == nil || stub.req.Schema.Name != "highlight_moments" {
		t.Errorf("schema = %+v", stub.req.Schema)
	}
	prompt := stub.req.Messages[0].Content
	if !strings.Contains(prompt, "Find the 3 BEST moments") || !strings.Contains(prompt, "around 1 minute long (total ~10 minutes)") {
		t.Errorf("prompt = %s", prompt)
	}
}

func TestDetect_ShortsRankedByViralScore(t *testing.T) {
	stub := &stubLLM{content: `{"moments": [
		{"start_time": "00:10", "end_time": "00:35", "title": "low", "reason": "r", "viral_score": 5},
		{"start_time": "01:10", "end_time": "01:30", "title": "high", "reason": "r", "viral_score": 9},
		{"start_time": "02:10", "end_time": "02:40", "title": "mid", "reason": "r", "viral_score": 7}
	]}`}
	got, err := NewDetector(stub).Detect(context.Background(), Query{Transcript: transcriptText, Count: 3, Kind: Shorts})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"high", "mid", "low"}
	for i, m := range got {
		if m.Title != want[i] || m.Order != i+1 {
			t.Errorf("moment %d = %+v, want %s order %d", i, m, want[i], i+1)
		}
	}
	if !strings.Contains(stub.req.Messages[0].Content, "up to 120 seconds") {
		t.Errorf("prompt missing max clip length")
	}
}

func TestDetect_GuidancePrompt(t *testing.T) {
	stub := &stubLLM{content: `[{"start_time": "00:10", "end_time": "00:35", "title": "t", "reason": "r", "viral_score": 5}]`}
	_, err := NewDetector(stub).Detect(context.Background(), Query{
		Transcript: transcriptText, Kind: Shorts, Guidance: "  the part about cats  ",
	})
	if err != nil {
		t.Fatal(err)
	}
	prompt := stub.req.Messages[0].Content
	if !strings.Contains(prompt, "USER'S INSTRUCTIONS:\nthe part about cats") {
		t.Errorf("prompt = %s", prompt)
	}
}

func TestQueryNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   Query
		want int
	}{
		{"bestof default", Query{Kind: BestOf}, 5},
		{"bestof clamp high", Query{Kind: BestOf, Count: 50}, 20},
		{"bestof clamp low", Query{Kind: BestOf, Count: -3}, 1},
		{"shorts default", Query{Kind: Shorts}, 3},
		{"shorts clamp", Query{Kind: Shorts, Count: 12}, 10},
		{"curator clamp", Query{Kind: Shorts, Curator: true, Count: 40}, 15},
		{"curator within", Query{Kind: Shorts, Curator: true, Count: 12}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalized().Count; got != tt.want {
				t.Errorf("Count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClipLength(t *testing.T) {
	tests := map[int]string{
		45:  "around 45 seconds",
		60:  "around 1 minute",
		90:  "around 1 minute",
		120: "around 2 minutes",
	}
	for in, want := range tests {
		if got := clipLength(in); got != want {
			t.Errorf("clipLength(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDetect_Errors(t *testing.T) {
	if _, err := NewDetector(&stubLLM{}).Detect(context.Background(), Query{Transcript: "  "}); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty transcript err = %v", err)
	}
	for _, content := range []string{"I could not find anything.", `{"moments": []}`, `[{"start_time": 5}]`} {
		_, err := NewDetector(&stubLLM{content: content}).Detect(context.Background(), Query{Transcript: transcriptText})
		if !errors.IsCode(err, errors.ErrCodeParse) {
			t.Errorf("content %q: err = %v, want parse error", content, err)
		}
	}
}
