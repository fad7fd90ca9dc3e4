package studio

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/clipkit/config"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/segments"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func ptr[T any](v T) *T { return &v }

func assertSegments(t *testing.T, got []segments.Segment, want [][2]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("segments = %+v, want %v", got, want)
	}
	for i, w := range want {
		if !near(got[i].Start, w[0]) || !near(got[i].End, w[1]) {
			t.Errorf("segment %d = [%.3f, %.3f], want [%.3f, %.3f]", i, got[i].Start, got[i].End, w[0], w[1])
		}
	}
}

func assertCode(t *testing.T, err error, code errors.ErrorCode, field string) {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("error = %v, want an AppError", err)
	}
	if appErr.Code != code {
		t.Fatalf("code = %s, want %s (%v)", appErr.Code, code, err)
	}
	if field != "" && appErr.Details["field"] != field {
		t.Errorf("field = %v, want %s", appErr.Details["field"], field)
	}
}

func exists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("%s: %v", path, err)
	}
}

func TestCaptions(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(h.out, "captioned.mp4")

	res, err := h.studio.Captions(context.Background(), CaptionRequest{Input: h.input, Output: out})
	if err != nil {
		t.Fatalf("Captions: %v", err)
	}
	if !res.CaptionsApplied || res.NoSpeech {
		t.Fatalf("result = %+v", res)
	}
	if res.Output != out || res.Words != 5 || res.Groups != 2 {
		t.Errorf("output %s words %d groups %d", res.Output, res.Words, res.Groups)
	}
	if res.Debug == nil || !res.Debug.MetricsApproximate {
		t.Errorf("debug = %+v, want approximate metrics from the heuristic measurer", res.Debug)
	}
	if len(h.media.burns) != 1 || h.media.burns[0] != h.input {
		t.Fatalf("burns = %v", h.media.burns)
	}
	if n := strings.Count(h.media.tracks[0], "Dialogue:"); n != 5 {
		t.Errorf("dialogue lines = %d, want one per word", n)
	}
	exists(t, out)
	h.assertWorkspacesReleased(t)
}

func TestCaptionsOverrides(t *testing.T) {
	h := newHarness(t)
	res, err := h.studio.Captions(context.Background(), CaptionRequest{
		Input:            h.input,
		Output:           filepath.Join(h.out, "captioned.mp4"),
		WordsPerGroup:    1,
		SilenceThreshold: ptr(0.0),
	})
	if err != nil {
		t.Fatalf("Captions: %v", err)
	}
	if res.Groups != 5 {
		t.Errorf("groups = %d, want 5", res.Groups)
	}
}

func TestCaptionsSizeOnlyGrouping(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Captions.SilenceThreshold = -1 })
	res, err := h.studio.Captions(context.Background(), CaptionRequest{
		Input:         h.input,
		Output:        filepath.Join(h.out, "captioned.mp4"),
		WordsPerGroup: 5,
	})
	if err != nil {
		t.Fatalf("Captions: %v", err)
	}
	if res.Groups != 1 {
		t.Errorf("groups = %d, want 1 with the silence rule off", res.Groups)
	}
	if res.Debug.Settings.SilenceThreshold != nil {
		t.Errorf("debug threshold = %v, want nil", *res.Debug.Settings.SilenceThreshold)
	}
}

func TestCaptionsNoSpeech(t *testing.T) {
	h := newHarness(t)
	h.stt.words = nil

	res, err := h.studio.Captions(context.Background(), CaptionRequest{Input: h.input, Output: filepath.Join(h.out, "x.mp4")})
	if err != nil {
		t.Fatalf("Captions: %v", err)
	}
	if !res.NoSpeech || res.CaptionsApplied || res.Output != h.input {
		t.Errorf("result = %+v", res)
	}
	if len(h.media.burns) != 0 {
		t.Errorf("burned %d times", len(h.media.burns))
	}
	h.assertWorkspacesReleased(t)
}

func TestCaptionsInvalidRequest(t *testing.T) {
	h := newHarness(t)
	_, err := h.studio.Captions(context.Background(), CaptionRequest{
		Input:  filepath.Join(h.out, "missing.mp4"),
		Output: filepath.Join(h.out, "x.mp4"),
	})
	assertCode(t, err, errors.ErrCodeInvalidInput, "input")
}

func TestCaptionsMissingCredential(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	if err := touch(input); err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	cfg.Workspace.Root = filepath.Join(dir, "work")
	m := newFakeMedia()
	s := New(cfg, m)

	_, err := s.Captions(context.Background(), CaptionRequest{Input: input, Output: filepath.Join(dir, "out.mp4")})
	assertCode(t, err, errors.ErrCodeConfiguration, "")
	if _, statErr := os.Stat(cfg.Workspace.Root); !os.IsNotExist(statErr) {
		t.Errorf("workspace root created before the credential check")
	}
	if len(m.windows) != 0 {
		t.Errorf("audio extracted without a transcription backend")
	}
}

func TestCaptionsBurnFailure(t *testing.T) {
	h := newHarness(t)
	h.media.fail["burn"] = errTool
	_, err := h.studio.Captions(context.Background(), CaptionRequest{Input: h.input, Output: filepath.Join(h.out, "x.mp4")})
	if err == nil {
		t.Fatal("expected an error")
	}
	h.assertWorkspacesReleased(t)
}

func TestRemoveSilence(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(h.out, "tight.mp4")

	res, err := h.studio.RemoveSilence(context.Background(), SilenceRequest{Input: h.input, Output: out})
	if err != nil {
		t.Fatalf("RemoveSilence: %v", err)
	}
	if !res.Changed || res.Output != out {
		t.Fatalf("result = %+v", res)
	}
	assertSegments(t, res.Segments, [][2]float64{{0.95, 2.55}, {4.45, 5.65}})
	if res.Gaps.GapCount != 1 || res.Removed != 1 || !near(res.RemovedSeconds, 1.9) {
		t.Errorf("gaps %d removed %d seconds %.3f", res.Gaps.GapCount, res.Removed, res.RemovedSeconds)
	}
	if !near(res.OriginalDuration, 100) || !near(res.OutputDuration, 2.8) {
		t.Errorf("durations %.3f -> %.3f", res.OriginalDuration, res.OutputDuration)
	}
	if len(h.media.cuts) != 2 || len(h.media.concats) != 1 {
		t.Fatalf("cuts %d concats %d", len(h.media.cuts), len(h.media.concats))
	}
	for _, c := range h.media.cuts {
		if !c.precise {
			t.Errorf("cut %+v is not precise", c)
		}
	}
	h.assertWorkspacesReleased(t)
}

func TestRemoveSilenceNoChange(t *testing.T) {
	h := newHarness(t)
	h.stt.words = speech()[:3]

	res, err := h.studio.RemoveSilence(context.Background(), SilenceRequest{Input: h.input, Output: filepath.Join(h.out, "x.mp4")})
	if err != nil {
		t.Fatalf("RemoveSilence: %v", err)
	}
	if res.Changed || res.Output != h.input || !near(res.OutputDuration, 100) {
		t.Errorf("result = %+v", res)
	}
	if len(h.media.cuts) != 0 {
		t.Errorf("cut %d times", len(h.media.cuts))
	}
}

func TestRemoveSilenceNoSpeech(t *testing.T) {
	h := newHarness(t)
	h.stt.words = nil

	res, err := h.studio.RemoveSilence(context.Background(), SilenceRequest{Input: h.input, Output: filepath.Join(h.out, "x.mp4")})
	if err != nil {
		t.Fatalf("RemoveSilence: %v", err)
	}
	if !res.NoSpeech || res.Changed || res.Output != h.input || res.Gaps.Gaps == nil {
		t.Errorf("result = %+v", res)
	}
}

func TestRemoveSilenceRegion(t *testing.T) {
	h := newHarness(t)

	res, err := h.studio.RemoveSilence(context.Background(), SilenceRequest{
		Input:  h.input,
		Output: filepath.Join(h.out, "x.mp4"),
		Region: &Region{Start: "0:10", End: "0:16"},
	})
	if err != nil {
		t.Fatalf("RemoveSilence: %v", err)
	}
	if len(h.media.windows) != 1 || *h.media.windows[0] != (media.Window{Start: 10, End: 16}) {
		t.Fatalf("audio windows = %v", h.media.windows)
	}
	if h.stt.requests[0].Offset != 10 {
		t.Errorf("offset = %v", h.stt.requests[0].Offset)
	}
	assertSegments(t, res.Segments, [][2]float64{{10.95, 12.55}, {14.45, 15.65}})
	if !near(res.RemovedSeconds, 1.9) {
		t.Errorf("removed seconds = %.3f", res.RemovedSeconds)
	}
}

func TestRemoveSilenceRegionWithoutPauses(t *testing.T) {
	h := newHarness(t)
	h.stt.words = speech()[:3]

	res, err := h.studio.RemoveSilence(context.Background(), SilenceRequest{
		Input:  h.input,
		Output: filepath.Join(h.out, "x.mp4"),
		Region: &Region{Start: "0:10", End: "0:16"},
	})
	if err != nil {
		t.Fatalf("RemoveSilence: %v", err)
	}
	assertSegments(t, res.Segments, [][2]float64{{10, 16}})
	if !res.Changed || len(h.media.cuts) != 1 {
		t.Errorf("changed %v cuts %d", res.Changed, len(h.media.cuts))
	}
}

func TestRemoveSilenceBadRegion(t *testing.T) {
	h := newHarness(t)
	_, err := h.studio.RemoveSilence(context.Background(), SilenceRequest{
		Input:  h.input,
		Output: filepath.Join(h.out, "x.mp4"),
		Region: &Region{Start: "0:20", End: "0:10"},
	})
	assertCode(t, err, errors.ErrCodeInvalidInput, "region.end")
}

func TestAnalyzeGaps(t *testing.T) {
	tests := []struct {
		name      string
		relative  bool
		wantStart float64
	}{
		{"absolute", false, 12.5},
		{"relative", true, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			res, err := h.studio.AnalyzeGaps(context.Background(), GapRequest{
				Input:    h.input,
				Region:   &Region{Start: "0:10", End: "0:16"},
				Relative: tt.relative,
			})
			if err != nil {
				t.Fatalf("AnalyzeGaps: %v", err)
			}
			if res.GapCount != 1 || !near(res.Gaps[0].Start, tt.wantStart) || !near(res.Gaps[0].Duration, 2) {
				t.Errorf("gaps = %+v", res.Gaps)
			}
			if res.Words != 5 || !near(res.TotalGapTime, 2) {
				t.Errorf("words %d total %.3f", res.Words, res.TotalGapTime)
			}
			h.assertWorkspacesReleased(t)
		})
	}
}

func TestAnalyzeGapsRelativeNeedsRegion(t *testing.T) {
	h := newHarness(t)
	_, err := h.studio.AnalyzeGaps(context.Background(), GapRequest{Input: h.input, Relative: true})
	assertCode(t, err, errors.ErrCodeInvalidInput, "relative")
}

func TestCompileGivenMoments(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(h.out, "bestof.mp4")

	res, err := h.studio.Compile(context.Background(), CompileRequest{
		Input:  h.input,
		Output: out,
		Moments: []segments.Moment{
			{Start: "0:30", End: "0:40", Order: 2, Title: "second"},
			{Start: "0:10", End: "0:20", Order: 1, Title: "first"},
		},
		Crossfade: ptr(true),
		VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.VideoID != "dQw4w9WgXcQ" || res.Output != out {
		t.Errorf("video %q output %q", res.VideoID, res.Output)
	}
	if len(res.ClipsUsed) != 2 || res.ClipsUsed[0].Title != "first" || res.ClipsUsed[1].Order != 2 {
		t.Fatalf("clips = %+v", res.ClipsUsed)
	}
	if !res.CrossfadeApplied || len(h.media.crossfades) != 1 {
		t.Errorf("crossfade applied %v calls %d", res.CrossfadeApplied, len(h.media.crossfades))
	}
	if h.media.cuts[0].start != 10 || h.media.cuts[0].precise {
		t.Errorf("first cut = %+v, want a fast cut at 10s", h.media.cuts[0])
	}
	if h.llm.calls != 0 || len(h.stt.requests) != 0 {
		t.Errorf("llm %d stt %d calls with given moments", h.llm.calls, len(h.stt.requests))
	}
	h.assertWorkspacesReleased(t)
}

func TestCompileWithoutCrossfade(t *testing.T) {
	h := newHarness(t)
	res, err := h.studio.Compile(context.Background(), CompileRequest{
		Input:  h.input,
		Output: filepath.Join(h.out, "bestof.mp4"),
		Moments: []segments.Moment{
			{Start: "0:10", End: "0:20", Order: 1},
			{Start: "0:30", End: "0:40", Order: 2},
		},
		Crossfade: ptr(false),
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.CrossfadeApplied || len(h.media.concats) != 1 || !near(res.OutputDuration, 20) {
		t.Errorf("result = %+v", res)
	}
}

func TestCompileDetectsFromTranscript(t *testing.T) {
	h := newHarness(t)
	h.llm.content = `{"moments":[{"start_time":"0:05","end_time":"0:15","title":"Hook","reason":"funny","order":1}]}`
	out := filepath.Join(h.out, "bestof.mp4")

	res, err := h.studio.Compile(context.Background(), CompileRequest{
		Input:      h.input,
		Output:     out,
		Transcript: "[00:05] the best part\n[00:15] the end",
		Count:      1,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if h.llm.calls != 1 || len(h.stt.requests) != 0 {
		t.Errorf("llm %d stt %d", h.llm.calls, len(h.stt.requests))
	}
	if len(res.ClipsUsed) != 1 || res.ClipsUsed[0].Title != "Hook" || !near(res.ClipsUsed[0].Duration, 10) {
		t.Fatalf("clips = %+v", res.ClipsUsed)
	}
	if len(h.media.cuts) != 1 || h.media.cuts[0].dst != out || res.CrossfadeApplied {
		t.Errorf("cuts = %+v", h.media.cuts)
	}
}

func TestCompileTranscribesWithoutTranscript(t *testing.T) {
	h := newHarness(t)
	h.llm.content = `[{"start_time":"0:01","end_time":"0:05","title":"All","order":1}]`

	if _, err := h.studio.Compile(context.Background(), CompileRequest{
		Input:  h.input,
		Output: filepath.Join(h.out, "bestof.mp4"),
	}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(h.stt.requests) != 1 || h.llm.calls != 1 {
		t.Errorf("stt %d llm %d", len(h.stt.requests), h.llm.calls)
	}
}

func TestCompileInvalidVideoURL(t *testing.T) {
	h := newHarness(t)
	_, err := h.studio.Compile(context.Background(), CompileRequest{
		Input:    h.input,
		Output:   filepath.Join(h.out, "bestof.mp4"),
		Moments:  []segments.Moment{{Start: "0:10", End: "0:20", Order: 1}},
		VideoURL: "https://example.com/watch",
	})
	assertCode(t, err, errors.ErrCodeInvalidInput, "video_url")
}

func twoRegions() media.Layout {
	return media.Layout{
		Regions: []media.Region{
			{ID: "face", X: 0, Y: 0, Width: 30, Height: 40},
			{ID: "screen", X: 30, Y: 0, Width: 70, Height: 100},
		},
		TopRegionID: "face",
	}
}

func shortsMoments() []segments.Moment {
	return []segments.Moment{
		{Start: "0:40", End: "0:50", Order: 2, Title: "B", ViralScore: 7},
		{Start: "0:10", End: "0:20", Order: 1, Title: "A", ViralScore: 9},
	}
}

func TestShorts(t *testing.T) {
	h := newHarness(t)
	res, err := h.studio.Shorts(context.Background(), ShortsRequest{
		Input:     h.input,
		OutputDir: h.out,
		Moments:   shortsMoments(),
		Layout:    twoRegions(),
		Captions:  ptr(true),
	})
	if err != nil {
		t.Fatalf("Shorts: %v", err)
	}
	if len(res.Shorts) != 2 {
		t.Fatalf("shorts = %+v", res.Shorts)
	}
	first := res.Shorts[0]
	if first.Title != "A" || first.ViralScore != 9 || first.Start != 10 || !first.Captioned {
		t.Errorf("first short = %+v", first)
	}
	if filepath.Base(first.Path) != "short_01.mp4" {
		t.Errorf("path = %s", first.Path)
	}
	for _, sh := range res.Shorts {
		exists(t, sh.Path)
		if _, err := os.Stat(sh.Path + ".captioned.mp4"); !os.IsNotExist(err) {
			t.Errorf("temporary captioned file left for %s", sh.Path)
		}
	}
	if len(h.media.reframes) != 2 || h.media.reframes[0].Width != 1080 || h.media.reframes[0].SplitRatio != 0.6 {
		t.Errorf("reframes = %+v", h.media.reframes)
	}
	if len(h.stt.requests) != 2 {
		t.Errorf("transcribed %d clips, want 2", len(h.stt.requests))
	}
	h.assertWorkspacesReleased(t)
}

func TestShortsCaptionFailureKeepsClip(t *testing.T) {
	h := newHarness(t)
	h.media.fail["burn"] = errTool

	res, err := h.studio.Shorts(context.Background(), ShortsRequest{
		Input:     h.input,
		OutputDir: h.out,
		Moments:   shortsMoments(),
		Layout:    twoRegions(),
		Captions:  ptr(true),
	})
	if err != nil {
		t.Fatalf("Shorts: %v", err)
	}
	for _, sh := range res.Shorts {
		if sh.Captioned || sh.CaptionError == "" {
			t.Errorf("short = %+v, want a caption error", sh)
		}
		exists(t, sh.Path)
	}
}

func TestShortsWithoutCaptions(t *testing.T) {
	h := newHarness(t)
	res, err := h.studio.Shorts(context.Background(), ShortsRequest{
		Input:     h.input,
		OutputDir: h.out,
		Moments:   shortsMoments(),
		Layout:    twoRegions(),
	})
	if err != nil {
		t.Fatalf("Shorts: %v", err)
	}
	if res.Shorts[0].Captioned || len(h.stt.requests) != 0 || len(h.media.burns) != 0 {
		t.Errorf("captioning ran while disabled")
	}
}

func TestShortsNeedsTwoRegions(t *testing.T) {
	h := newHarness(t)
	layout := twoRegions()
	layout.Regions = layout.Regions[:1]

	_, err := h.studio.Shorts(context.Background(), ShortsRequest{
		Input:     h.input,
		OutputDir: h.out,
		Moments:   shortsMoments(),
		Layout:    layout,
	})
	assertCode(t, err, errors.ErrCodeInvalidInput, "layout.regions")
}

func TestExportWithoutCuts(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(h.out, "export.mp4")

	res, err := h.studio.ExportWithoutCuts(context.Background(), CutsRequest{
		Input:    h.input,
		Output:   out,
		Removals: []segments.Segment{{Start: 10, End: 20}},
	})
	if err != nil {
		t.Fatalf("ExportWithoutCuts: %v", err)
	}
	if res.SegmentCount != 2 || !near(res.OutputDuration, 90) || res.Path != out {
		t.Errorf("result = %+v", res)
	}
	if h.media.cuts[1].start != 20 || h.media.cuts[1].end != 100 {
		t.Errorf("second cut = %+v", h.media.cuts[1])
	}
}

func TestExportWithoutCutsRemovesEverything(t *testing.T) {
	h := newHarness(t)
	_, err := h.studio.ExportWithoutCuts(context.Background(), CutsRequest{
		Input:    h.input,
		Output:   filepath.Join(h.out, "export.mp4"),
		Removals: []segments.Segment{{Start: 0, End: 100}},
	})
	assertCode(t, err, errors.ErrCodeInvalidInput, "cuts")
}

func TestSliceAt(t *testing.T) {
	h := newHarness(t)
	dir := filepath.Join(h.out, "parts")

	res, err := h.studio.SliceAt(context.Background(), SliceRequest{Input: h.input, OutputDir: dir, Cuts: []float64{60, 30}})
	if err != nil {
		t.Fatalf("SliceAt: %v", err)
	}
	assertSegments(t, res.Segments, [][2]float64{{0, 30}, {30, 60}, {60, 100}})
	if len(res.Parts) != 3 || filepath.Base(res.Parts[2]) != "part_03.mp4" {
		t.Fatalf("parts = %v", res.Parts)
	}
	for _, p := range res.Parts {
		exists(t, p)
	}
}

func TestSliceAtCutFailure(t *testing.T) {
	h := newHarness(t)
	h.media.fail["cut"] = errors.ExternalServiceError("ffmpeg", errTool)

	_, err := h.studio.SliceAt(context.Background(), SliceRequest{Input: h.input, OutputDir: h.out, Cuts: []float64{30}})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Details["segment"] != 1 {
		t.Errorf("error = %v, want segment detail", err)
	}
}

func TestBatch(t *testing.T) {
	h := newHarness(t)
	jobs := []Job{
		{ID: "gaps", Gaps: &GapRequest{Input: h.input}},
		{ID: "empty"},
		{ID: "slice", Slice: &SliceRequest{Input: h.input, OutputDir: h.out, Cuts: []float64{50}}},
		{ID: "broken", Export: &CutsRequest{Input: h.input}},
	}

	results := h.studio.Batch(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.ID != jobs[i].ID {
			t.Errorf("result %d id = %s, want %s", i, r.ID, jobs[i].ID)
		}
	}
	if results[0].Err != nil || results[0].Pipeline != PipelineGaps {
		t.Errorf("gaps job = %+v", results[0])
	}
	if _, ok := results[0].Result.(*GapReport); !ok {
		t.Errorf("gaps result = %T", results[0].Result)
	}
	assertCode(t, results[1].Err, errors.ErrCodeInvalidInput, "job")
	if results[2].Err != nil {
		t.Errorf("slice job: %v", results[2].Err)
	}
	assertCode(t, results[3].Err, errors.ErrCodeInvalidInput, "")
	if results[3].Error == nil || results[3].Error.Code != errors.ErrCodeInvalidInput || results[3].Result != nil {
		t.Errorf("broken job = %+v", results[3])
	}

	data, err := json.Marshal(results[2])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"pipeline":"slice"`) || strings.Contains(string(data), `"Err"`) {
		t.Errorf("json = %s", data)
	}
}

func TestBatchConcurrencyLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Batch.MaxConcurrent = 1 })
	var jobs []Job
	for range 4 {
		jobs = append(jobs, Job{Slice: &SliceRequest{Input: h.input, OutputDir: h.out, Cuts: []float64{50}}})
	}

	for _, r := range h.studio.Batch(context.Background(), jobs) {
		if r.Err != nil || r.ID == "" {
			t.Errorf("job = %+v", r)
		}
	}
	if h.media.maxActive != 1 {
		t.Errorf("max concurrent media calls = %d, want 1", h.media.maxActive)
	}
}

func TestBatchRateLimitCancelled(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Batch.RatePerMinute = 1 })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := h.studio.Batch(ctx, []Job{{Gaps: &GapRequest{Input: h.input}}})
	assertCode(t, results[0].Err, errors.ErrCodeTimeout, "")
	if len(h.stt.requests) != 0 {
		t.Error("job ran after cancellation")
	}
}

func TestDoctor(t *testing.T) {
	fonts := t.TempDir()
	h := newHarness(t, func(c *config.Config) { c.Media.FontsDir = fonts })

	health := h.studio.Doctor(context.Background())
	if health.Service != "clipkit" || health.Status != observability.HealthStatusUp {
		t.Fatalf("health = %+v", health)
	}
	if len(health.Components) != 4 || health.Components[0].Message != "ffmpeg version 7.1" {
		t.Errorf("components = %+v", health.Components)
	}
}

func TestDoctorDegraded(t *testing.T) {
	h := newHarness(t)
	h.stt.available = false
	h.media.fail["version"] = errTool

	health := h.studio.Doctor(context.Background())
	want := []observability.HealthStatus{
		observability.HealthStatusDown,
		observability.HealthStatusDegraded,
		observability.HealthStatusDown,
		observability.HealthStatusUp,
	}
	for i, c := range health.Components {
		if c.Status != want[i] {
			t.Errorf("%s = %s, want %s", c.Name, c.Status, want[i])
		}
	}
	if health.Status != observability.HealthStatusDown {
		t.Errorf("status = %s", health.Status)
	}
}

func TestDoctorMissingCredentials(t *testing.T) {
	s := New(config.Config{}, newFakeMedia())
	health := s.Doctor(context.Background())
	for _, c := range health.Components[2:] {
		if c.Status != observability.HealthStatusDegraded || !strings.Contains(c.Message, "api_key") {
			t.Errorf("%s = %s %q", c.Name, c.Status, c.Message)
		}
	}
}

func TestChaptersFromTranscript(t *testing.T) {
	h := newHarness(t)
	h.llm.content = `{"chapters": [{"start_time": "02:30", "title": "Setup"}, {"start_time": "00:03", "title": "Hello"}]}`

	res, err := h.studio.Chapters(context.Background(), ChaptersRequest{
		Transcript: "[00:00] hello\n[02:30] setup\n",
		VideoURL:   "https://youtu.be/dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Chapters: %v", err)
	}
	if res.VideoID != "dQw4w9WgXcQ" || len(res.Chapters) != 2 {
		t.Errorf("result = %+v", res)
	}
	if res.Description != "00:00 - Hello\n02:30 - Setup\n" {
		t.Errorf("description = %q", res.Description)
	}
	if len(h.stt.requests) != 0 {
		t.Errorf("transcribed %d times with a transcript given", len(h.stt.requests))
	}
}

func TestChaptersTranscribesInput(t *testing.T) {
	h := newHarness(t)
	h.llm.content = `[{"start_time": "00:00", "title": "Counting"}, {"start_time": "00:09", "title": "After the end"}]`

	res, err := h.studio.Chapters(context.Background(), ChaptersRequest{Input: h.input})
	if err != nil {
		t.Fatalf("Chapters: %v", err)
	}
	if len(h.stt.requests) != 1 || h.llm.calls != 1 {
		t.Errorf("stt %d llm %d calls", len(h.stt.requests), h.llm.calls)
	}
	if len(res.Chapters) != 1 || res.Chapters[0].Title != "Counting" {
		t.Errorf("chapters = %+v", res.Chapters)
	}
	h.assertWorkspacesReleased(t)
}

func TestChaptersNeedsSource(t *testing.T) {
	h := newHarness(t)
	_, err := h.studio.Chapters(context.Background(), ChaptersRequest{})
	assertCode(t, err, errors.ErrCodeInvalidInput, "input")
}

func TestAddMusic(t *testing.T) {
	h := newHarness(t)
	music := filepath.Join(h.out, "bed.mp3")
	if err := touch(music); err != nil {
		t.Fatal(err)
	}

	res, err := h.studio.AddMusic(context.Background(), MusicRequest{
		Input: h.input, Music: music, Output: filepath.Join(h.out, "mixed.mp4"),
		MusicVolume: ptr(3.0), MusicDelay: 2,
	})
	if err != nil {
		t.Fatalf("AddMusic: %v", err)
	}
	if res.Replaced || res.SourceVolume != 1 || res.MusicVolume != media.MaxVolume {
		t.Errorf("result = %+v", res)
	}
	if len(h.media.mixes) != 1 || h.media.mixes[0].MusicDelay != 2 {
		t.Errorf("mixes = %+v", h.media.mixes)
	}
	exists(t, res.Output)
}

func TestAddMusicReplacesSilentInput(t *testing.T) {
	h := newHarness(t)
	h.media.info.HasAudio = false
	music := filepath.Join(h.out, "bed.mp3")
	if err := touch(music); err != nil {
		t.Fatal(err)
	}

	res, err := h.studio.AddMusic(context.Background(), MusicRequest{Input: h.input, Music: music, Output: filepath.Join(h.out, "mixed.mp4")})
	if err != nil {
		t.Fatalf("AddMusic: %v", err)
	}
	if !res.Replaced || res.MusicVolume != DefaultMusicVolume {
		t.Errorf("result = %+v", res)
	}
}

func TestAddMusicSilentMusic(t *testing.T) {
	h := newHarness(t)
	music := filepath.Join(h.out, "bed.mp3")
	if err := touch(music); err != nil {
		t.Fatal(err)
	}
	_, err := h.studio.AddMusic(context.Background(), MusicRequest{
		Input: h.input, Music: music, Output: filepath.Join(h.out, "mixed.mp4"), MusicVolume: ptr(0.0),
	})
	assertCode(t, err, errors.ErrCodeInvalidInput, "music_volume")
	if len(h.media.mixes) != 0 {
		t.Error("mixed with silent music")
	}
}
