package studio

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kbukum/clipkit/config"
	"github.com/kbukum/clipkit/llm"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/transcript"
	"github.com/kbukum/clipkit/transcription"
)

type cutCall struct {
	src        string
	start, end float64
	precise    bool
	dst        string
}

// fakeMedia writes a placeholder file for every output and records calls.
type fakeMedia struct {
	mu         sync.Mutex
	info       media.Info
	cuts       []cutCall
	concats    [][]string
	crossfades [][]string
	windows    []*media.Window
	burns      []string
	tracks     []string
	reframes   []media.Layout
	mixes      []media.Mix
	fail       map[string]error
	version    string

	active, maxActive int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		info:    media.Info{Width: 1920, Height: 1080, Duration: 100, FPS: 30, HasAudio: true},
		fail:    map[string]error{},
		version: "ffmpeg version 7.1",
	}
}

func (f *fakeMedia) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active++
	f.maxActive = max(f.maxActive, f.active)
	return f.fail[op]
}

func (f *fakeMedia) leave() {
	f.mu.Lock()
	f.active--
	f.mu.Unlock()
}

func touch(path string) error {
	return os.WriteFile(path, []byte("media"), 0o600)
}

func (f *fakeMedia) Cut(_ context.Context, src string, start, end float64, precise bool, dst string) error {
	defer f.leave()
	if err := f.enter("cut"); err != nil {
		return err
	}
	f.mu.Lock()
	f.cuts = append(f.cuts, cutCall{src, start, end, precise, dst})
	f.mu.Unlock()
	return touch(dst)
}

func (f *fakeMedia) Concat(_ context.Context, files []string, dst string) error {
	defer f.leave()
	if err := f.enter("concat"); err != nil {
		return err
	}
	f.mu.Lock()
	f.concats = append(f.concats, files)
	f.mu.Unlock()
	return touch(dst)
}

func (f *fakeMedia) Crossfade(_ context.Context, files []string, _ []float64, _ float64, dst string) error {
	defer f.leave()
	if err := f.enter("crossfade"); err != nil {
		return err
	}
	f.mu.Lock()
	f.crossfades = append(f.crossfades, files)
	f.mu.Unlock()
	return touch(dst)
}

func (f *fakeMedia) Duration(_ context.Context, _ string, fallback float64) float64 {
	if f.info.Duration > 0 {
		return f.info.Duration
	}
	return fallback
}

func (f *fakeMedia) Probe(context.Context, string) (media.Info, error) {
	defer f.leave()
	if err := f.enter("probe"); err != nil {
		return media.Info{}, err
	}
	return f.info, nil
}

func (f *fakeMedia) ExtractAudio(_ context.Context, _ string, w *media.Window, dst string) error {
	defer f.leave()
	if err := f.enter("audio"); err != nil {
		return err
	}
	f.mu.Lock()
	f.windows = append(f.windows, w)
	f.mu.Unlock()
	return touch(dst)
}

func (f *fakeMedia) BurnSubtitles(_ context.Context, src, track, _ string, dst string) error {
	defer f.leave()
	if err := f.enter("burn"); err != nil {
		return err
	}
	data, err := os.ReadFile(track)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.burns = append(f.burns, src)
	f.tracks = append(f.tracks, string(data))
	f.mu.Unlock()
	return touch(dst)
}

func (f *fakeMedia) Reframe(_ context.Context, _ string, layout media.Layout, dst string) error {
	defer f.leave()
	if err := f.enter("reframe"); err != nil {
		return err
	}
	f.mu.Lock()
	f.reframes = append(f.reframes, layout)
	f.mu.Unlock()
	return touch(dst)
}

func (f *fakeMedia) MixAudio(_ context.Context, _, _ string, m media.Mix, dst string) error {
	defer f.leave()
	if err := f.enter("mix"); err != nil {
		return err
	}
	f.mu.Lock()
	f.mixes = append(f.mixes, m)
	f.mu.Unlock()
	return touch(dst)
}

func (f *fakeMedia) Version(context.Context) (string, error) {
	if err := f.fail["version"]; err != nil {
		return "", err
	}
	return f.version, nil
}

// fakeSTT returns the same words for every call, in the audio timebase.
type fakeSTT struct {
	mu        sync.Mutex
	words     []transcript.Word
	requests  []transcription.Request
	available bool
}

func (f *fakeSTT) Name() string { return "fake-stt" }
func (f *fakeSTT) IsAvailable(context.Context) bool { return f.available }
func (f *fakeSTT) Transcribe(_ context.Context, req transcription.Request) (*transcription.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return &transcription.Response{Words: append([]transcript.Word(nil), f.words...)}, nil
}

// fakeLLM answers every completion with content.
type fakeLLM struct {
	content string
	calls   int
}

func (f *fakeLLM) Name() string { return "fake-llm" }
func (f *fakeLLM) IsAvailable(context.Context) bool { return true }
func (f *fakeLLM) Complete(context.Context, llm.Request) (*llm.Response, error) {
	f.calls++
	return &llm.Response{Content: f.content}, nil
}

var errTool = stderrors.New("tool exploded")

// speech is "one two three" then, after a 2s pause, "four five".
func speech() []transcript.Word {
	return []transcript.Word{
		{Text: "one", Start: 1.0, End: 1.4},
		{Text: "two", Start: 1.5, End: 1.9},
		{Text: "three", Start: 2.0, End: 2.5},
		{Text: "four", Start: 4.5, End: 4.9},
		{Text: "five", Start: 5.0, End: 5.6},
	}
}

type harness struct {
	studio *Studio
	media  *fakeMedia
	stt    *fakeSTT
	llm    *fakeLLM
	input  string
	work   string
	out    string
}

func newHarness(t *testing.T, edit ...func(*config.Config)) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		media: newFakeMedia(),
		stt:   &fakeSTT{words: speech(), available: true},
		llm:   &fakeLLM{},
		input: filepath.Join(dir, "input.mp4"),
		work:  filepath.Join(dir, "work"),
		out:   filepath.Join(dir, "out"),
	}
	if err := touch(h.input); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(h.out, 0o755); err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	cfg.Workspace.Root = h.work
	for _, e := range edit {
		e(&cfg)
	}
	h.studio = New(cfg, h.media, WithTranscriber(h.stt), WithLLM(h.llm))
	return h
}

// assertWorkspacesReleased fails if any request workspace is left behind.
func (h *harness) assertWorkspacesReleased(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.work)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("workspaces left behind: %d", len(entries))
	}
}
