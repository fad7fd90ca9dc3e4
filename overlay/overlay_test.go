package overlay

import (
	"strings"
	"testing"

	"github.com/kbukum/clipkit/captions"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/style"
	"github.com/kbukum/clipkit/transcript"
)

var words = []transcript.Word{
	{Text: "Hi", Start: 0.0, End: 0.3},
	{Text: "there", Start: 0.35, End: 0.6},
	{Text: "friend", Start: 1.5, End: 1.9},
}

var canvas = Canvas{Width: 1080, Height: 1920}

func build(t *testing.T, cfg style.Config) (*Track, []string) {
	t.Helper()
	groups := captions.GroupWords(words, 3, captions.Threshold(0.5))
	specs := style.NewResolver(nil).ResolveAll(groups, cfg, canvas.Width, canvas.Height)
	track, err := Generate(groups, specs, cfg, canvas)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var dialogues []string
	for _, l := range strings.Split(track.Script, "\n") {
		if strings.HasPrefix(l, "Dialogue:") {
			dialogues = append(dialogues, l)
		}
	}
	return track, dialogues
}

func TestGenerate_Lines(t *testing.T) {
	cfg := style.DefaultConfig()
	cfg.WordSpacingPx = 0
	track, lines := build(t, cfg)

	if track.Events != 3 || len(lines) != 3 {
		t.Fatalf("events = %d/%d, want 3", track.Events, len(lines))
	}
	want := []string{
		`Dialogue: 0,0:00:00.00,0:00:00.35,G1,,0,0,0,,{\fscx130\fscy130\c&H24BFFB&}Hi{\r} there`,
		`Dialogue: 0,0:00:00.35,0:00:00.60,G1,,0,0,0,,Hi {\fscx130\fscy130\c&H24BFFB&}there{\r}`,
		`Dialogue: 0,0:00:01.50,0:00:01.90,G2,,0,0,0,,{\fscx130\fscy130\c&H24BFFB&}friend{\r}`,
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d\n got %s\nwant %s", i, lines[i], want[i])
		}
	}
}

func TestGenerate_Header(t *testing.T) {
	track, _ := build(t, style.DefaultConfig())
	for _, want := range []string{
		"PlayResX: 1080\n",
		"PlayResY: 1920\n",
		"Style: Default,Arial Black,56,&H00FFFFFF,",
		"Style: G1,Arial Black,56,",
		"Style: G2,Arial Black,56,",
		",2,50,50,288,1\n",
	} {
		if !strings.Contains(track.Script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestGenerate_AnimationModes(t *testing.T) {
	tests := []struct {
		mode style.AnimationMode
		want string
	}{
		{style.AnimationScale, `{\fscx130\fscy130}Hi{\r}`},
		{style.AnimationColor, `{\c&H24BFFB&}Hi{\r}`},
		{style.AnimationBoth, `{\fscx130\fscy130\c&H24BFFB&}Hi{\r}`},
		{style.AnimationGlow, `{\c&H24BFFB&\3c&H24BFFB&\bord6\blur4}Hi{\r}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cfg := style.DefaultConfig()
			cfg.AnimationMode = tt.mode
			_, lines := build(t, cfg)
			if !strings.Contains(lines[0], tt.want) {
				t.Errorf("line %q does not contain %q", lines[0], tt.want)
			}
		})
	}
}

func TestGenerate_UppercaseAndSpacing(t *testing.T) {
	cfg := style.DefaultConfig()
	cfg.TextCase = style.CaseUppercase
	cfg.WordSpacingPx = 28
	_, lines := build(t, cfg)
	if !strings.HasSuffix(lines[0], `HI{\r} \h\hTHERE`) {
		t.Errorf("line = %q", lines[0])
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	a, _ := build(t, style.DefaultConfig())
	b, _ := build(t, style.DefaultConfig())
	if a.Script != b.Script {
		t.Error("regenerated track differs")
	}
}

func TestGenerate_SkipsZeroLength(t *testing.T) {
	ws := []transcript.Word{
		{Text: "a", Start: 1, End: 1.2},
		{Text: "b", Start: 1, End: 1.4},
		{Text: "c", Start: 1.5, End: 2},
	}
	groups := captions.GroupWords(ws, 3, nil)
	specs := style.NewResolver(nil).ResolveAll(groups, style.DefaultConfig(), 1080, 1920)
	track, err := Generate(groups, specs, style.DefaultConfig(), canvas)
	if err != nil {
		t.Fatal(err)
	}
	if track.Events != 2 {
		t.Errorf("events = %d, want 2", track.Events)
	}

	var last string
	for _, l := range strings.Split(track.Script, "\n") {
		if !strings.HasPrefix(l, "Dialogue:") {
			continue
		}
		start := strings.Split(l, ",")[1]
		if start < last {
			t.Errorf("start %s after %s", start, last)
		}
		last = start
	}
}

func TestGenerate_OverlappingWordsDoNotOverlapLines(t *testing.T) {
	ws := []transcript.Word{
		{Text: "A", Start: 0, End: 1.0},
		{Text: "B", Start: 0.8, End: 1.2},
	}
	groups := captions.GroupWords(ws, 1, nil)
	specs := style.NewResolver(nil).ResolveAll(groups, style.DefaultConfig(), canvas.Width, canvas.Height)
	track, err := Generate(groups, specs, style.DefaultConfig(), canvas)
	if err != nil {
		t.Fatal(err)
	}
	var starts, ends []string
	for _, l := range strings.Split(track.Script, "\n") {
		if strings.HasPrefix(l, "Dialogue:") {
			f := strings.Split(l, ",")
			starts, ends = append(starts, f[1]), append(ends, f[2])
		}
	}
	if len(starts) != 2 {
		t.Fatalf("dialogues = %d, want 2", len(starts))
	}
	if ends[0] != "0:00:00.80" || ends[0] > starts[1] {
		t.Errorf("first line ends %s, second starts %s", ends[0], starts[1])
	}
}

func TestGenerate_Mismatch(t *testing.T) {
	groups := captions.GroupWords(words, 3, nil)
	_, err := Generate(groups, nil, style.DefaultConfig(), canvas)
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestGenerate_BackgroundBox(t *testing.T) {
	cfg := style.DefaultConfig()
	cfg.BackgroundEnabled = true
	cfg.BackgroundColor = "#102030"
	cfg.BackgroundOpacity = 100
	track, _ := build(t, cfg)
	if !strings.Contains(track.Script, ",&H00302010,&H80000000,1,0,0,0,100,100,0,0,3,") {
		t.Errorf("background box style not found in\n%s", track.Script)
	}
}

func TestEscapeAndTime(t *testing.T) {
	if got := escape(`a{b}\c`); got != "a｛b｝＼c" {
		t.Errorf("escape = %q", got)
	}
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00:00.00"},
		{1.234, "0:00:01.23"},
		{59.999, "0:01:00.00"},
		{3725.5, "1:02:05.50"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
