package studio

import (
	"context"

	"github.com/kbukum/clipkit/captions"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/overlay"
	"github.com/kbukum/clipkit/style"
	"github.com/kbukum/clipkit/transcript"
	"github.com/kbukum/clipkit/validation"
	"github.com/kbukum/clipkit/workspace"
)

// CaptionRequest burns animated word-level captions into a video.
type CaptionRequest struct {
	Input  string `json:"input" validate:"required,file"`
	Output string `json:"output" validate:"required"`
	// Style overrides the configured caption style.
	Style *style.Config `json:"style,omitempty"`
	// WordsPerGroup overrides captions.words_per_group.
	WordsPerGroup int `json:"words_per_group,omitempty" validate:"gte=0,lte=20"`
	// SilenceThreshold overrides captions.silence_threshold. A negative
	// value groups by size only.
	SilenceThreshold *float64 `json:"silence_threshold,omitempty"`
	Language         string   `json:"language,omitempty"`
}

// CaptionResult describes a captioning run.
type CaptionResult struct {
	// Output is the captioned file, or the input when no speech was found.
	Output          string              `json:"output"`
	CaptionsApplied bool                `json:"captions_applied"`
	NoSpeech        bool                `json:"no_speech"`
	Words           int                 `json:"words"`
	Groups          int                 `json:"groups"`
	Debug           *captions.DebugInfo `json:"debug,omitempty"`
}

// Captions transcribes req.Input and burns highlighted captions into
// req.Output. Without speech the input is left untouched and returned.
func (s *Studio) Captions(ctx context.Context, req CaptionRequest) (res *CaptionResult, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	stt, err := s.speechToText()
	if err != nil {
		return nil, err
	}

	ctx, op := s.start(ctx, PipelineCaptions)
	defer func() { s.finish(ctx, op, err) }()

	ws, err := s.workspace(PipelineCaptions)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	var info media.Info
	if err := s.step(ctx, op, stepProbe, func(ctx context.Context) error {
		probed, err := s.media.Probe(ctx, req.Input)
		info = probed
		return err
	}); err != nil {
		return nil, err
	}

	words, err := s.transcribe(ctx, op, stt, ws, req.Input, nil, req.Language)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return &CaptionResult{Output: req.Input, NoSpeech: true}, nil
	}

	cs := captionSettings{
		style:         s.cfg.Captions.Style,
		wordsPerGroup: s.cfg.Captions.WordsPerGroup,
		threshold:     s.cfg.Captions.SilenceThreshold,
	}
	if req.Style != nil {
		cs.style = *req.Style
	}
	if req.WordsPerGroup > 0 {
		cs.wordsPerGroup = req.WordsPerGroup
	}
	if req.SilenceThreshold != nil {
		cs.threshold = *req.SilenceThreshold
	}

	debug, err := s.burnCaptions(ctx, op, ws, req.Input, words, info, cs, req.Output)
	if err != nil {
		return nil, err
	}
	return &CaptionResult{
		Output:          req.Output,
		CaptionsApplied: true,
		Words:           len(words),
		Groups:          len(debug.Groups),
		Debug:           debug,
	}, nil
}

type captionSettings struct {
	style         style.Config
	wordsPerGroup int
	threshold     float64
}

// burnCaptions groups words, resolves a style per group, writes the ASS
// track into ws and burns it onto src.
func (s *Studio) burnCaptions(ctx context.Context, op *observability.Operation, ws *workspace.Workspace, src string, words transcript.Sequence, info media.Info, cs captionSettings, dst string) (*captions.DebugInfo, error) {
	var threshold *float64
	if cs.threshold >= 0 {
		threshold = captions.Threshold(cs.threshold)
	}
	cfg := cs.style.Normalize()
	track := ws.Path("captions.ass")

	var debug captions.DebugInfo
	if err := s.step(ctx, op, stepOverlay, func(ctx context.Context) error {
		groups := captions.GroupWords(words, cs.wordsPerGroup, threshold)
		specs := s.resolver.ResolveAll(groups, cfg, info.Width, info.Height)
		t, err := overlay.Generate(groups, specs, cfg, overlay.Canvas{Width: info.Width, Height: info.Height})
		if err != nil {
			return err
		}
		debug = captions.Debug(words, groups, captions.Settings{WordsPerGroup: cs.wordsPerGroup, SilenceThreshold: threshold})
		for _, sp := range specs {
			debug.MetricsApproximate = debug.MetricsApproximate || sp.MetricsApproximate
		}
		observability.SetSpanAttribute(ctx, "caption.groups", len(groups))
		return t.WriteFile(track)
	}); err != nil {
		return nil, err
	}

	if err := s.step(ctx, op, stepBurn, func(ctx context.Context) error {
		return s.media.BurnSubtitles(ctx, src, track, s.cfg.Media.FontsDir, dst)
	}); err != nil {
		return nil, err
	}
	return &debug, nil
}
