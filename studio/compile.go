package studio

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kbukum/clipkit/assemble"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/moments"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/segments"
	"github.com/kbukum/clipkit/style"
	"github.com/kbukum/clipkit/transcript"
	"github.com/kbukum/clipkit/transcription"
	"github.com/kbukum/clipkit/validation"
	"github.com/kbukum/clipkit/workspace"
)

// transcriptLineSeconds bounds one "[MM:SS] text" line shown to the model.
const transcriptLineSeconds = 15

// CompileRequest builds a best-of compilation.
type CompileRequest struct {
	Input  string `json:"input" validate:"required,file"`
	Output string `json:"output" validate:"required"`
	// Moments skips detection when set.
	Moments []segments.Moment `json:"moments,omitempty" validate:"omitempty,max=20,dive"`
	// Transcript is "[MM:SS] text" lines to detect moments from. When empty
	// the input is transcribed.
	Transcript string `json:"transcript,omitempty"`
	// VideoURL identifies the source video in the result.
	VideoURL          string  `json:"video_url,omitempty" validate:"omitempty,url"`
	Count             int     `json:"count,omitempty" validate:"gte=0,lte=20"`
	Guidance          string  `json:"guidance,omitempty"`
	Crossfade         *bool   `json:"crossfade,omitempty"`
	CrossfadeDuration float64 `json:"crossfade_duration,omitempty" validate:"gte=0,lte=5"`
	TargetMinutes     int     `json:"target_minutes,omitempty" validate:"gte=0"`
	AvgClipSeconds    int     `json:"avg_clip_seconds,omitempty" validate:"gte=0"`
	Language          string  `json:"language,omitempty"`
}

// ClipInfo describes one clip used in a compilation.
type ClipInfo struct {
	Order    int     `json:"order"`
	Title    string  `json:"title"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// CompileResult describes a compilation.
type CompileResult struct {
	Output           string            `json:"output"`
	VideoID          string            `json:"video_id,omitempty"`
	Moments          []segments.Moment `json:"moments"`
	ClipsUsed        []ClipInfo        `json:"clips_used"`
	CrossfadeApplied bool              `json:"crossfade_applied"`
	FallbackUsed     bool              `json:"fallback_used"`
	OutputDuration   float64           `json:"output_duration"`
}

// Compile cuts the supplied or detected moments in order and joins them,
// crossfading when enabled.
func (s *Studio) Compile(ctx context.Context, req CompileRequest) (res *CompileResult, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	res = &CompileResult{Output: req.Output}
	if req.VideoURL != "" {
		id, err := transcript.ExtractVideoID(req.VideoURL)
		if err != nil {
			return nil, errors.InvalidInput("video_url", err.Error())
		}
		res.VideoID = id
	}
	src, err := s.momentSource(req.Moments, req.Transcript)
	if err != nil {
		return nil, err
	}

	ctx, op := s.start(ctx, PipelineCompile)
	defer func() { s.finish(ctx, op, err) }()
	if res.VideoID != "" {
		observability.SetSpanAttribute(ctx, "video.id", res.VideoID)
	}

	ws, err := s.workspace(PipelineCompile)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	res.Moments, _, err = s.pickMoments(ctx, op, ws, src, req.Input, req.Language, moments.Query{
		Count:          orDefaultInt(req.Count, s.cfg.Compilation.NumClips),
		Guidance:       req.Guidance,
		Kind:           moments.BestOf,
		TargetMinutes:  orDefaultInt(req.TargetMinutes, s.cfg.Compilation.TargetMinutes),
		AvgClipSeconds: orDefaultInt(req.AvgClipSeconds, s.cfg.Compilation.AvgClipSeconds),
	})
	if err != nil {
		return nil, err
	}

	segs, err := segments.FromMoments(res.Moments)
	if err != nil {
		return nil, err
	}
	crossfade := s.cfg.Compilation.Crossfade
	if req.Crossfade != nil {
		crossfade = *req.Crossfade
	}

	var out *assemble.Result
	if err := s.step(ctx, op, stepAssemble, func(ctx context.Context) error {
		r, err := s.assembler.Assemble(ctx, assemble.Request{
			Source:            req.Input,
			Segments:          segs,
			Mode:              assemble.Fast,
			Crossfade:         crossfade && len(segs) > 1,
			CrossfadeDuration: orDefault(req.CrossfadeDuration, s.cfg.Compilation.CrossfadeDuration),
			Output:            req.Output,
			Prefix:            PipelineCompile,
		})
		out = r
		return err
	}); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSegmentsCut(ctx, PipelineCompile, out.SegmentCount)
	}

	for i, sg := range segs {
		res.ClipsUsed = append(res.ClipsUsed, ClipInfo{
			Order:    i + 1,
			Title:    sg.Label,
			Start:    sg.Start,
			End:      sg.End,
			Duration: round3(sg.Duration()),
		})
	}
	res.Output = out.Path
	res.CrossfadeApplied = out.CrossfadeApplied
	res.FallbackUsed = out.FallbackUsed
	res.OutputDuration = round3(out.OutputDuration)
	return res, nil
}

// momentSource resolves the backends needed to obtain moments before any
// work starts, so a missing credential fails fast.
type momentSource struct {
	given      []segments.Moment
	transcript string
	stt        transcription.Provider
	detector   *moments.Detector
}

func (s *Studio) momentSource(given []segments.Moment, text string) (*momentSource, error) {
	src := &momentSource{given: given, transcript: text}
	if len(given) > 0 {
		return src, nil
	}
	d, err := s.detector()
	if err != nil {
		return nil, err
	}
	src.detector = d
	if text == "" {
		stt, err := s.speechToText()
		if err != nil {
			return nil, err
		}
		src.stt = stt
	}
	return src, nil
}

// pickMoments returns the given moments or detects them. words is the input
// transcription when one was made.
func (s *Studio) pickMoments(ctx context.Context, op *observability.Operation, ws *workspace.Workspace, src *momentSource, input, language string, q moments.Query) ([]segments.Moment, transcript.Sequence, error) {
	if len(src.given) > 0 {
		return src.given, nil, nil
	}
	var words transcript.Sequence
	q.Transcript = src.transcript
	if q.Transcript == "" {
		w, err := s.transcribe(ctx, op, src.stt, ws, input, nil, language)
		if err != nil {
			return nil, nil, err
		}
		if len(w) == 0 {
			return nil, nil, errors.InvalidInput("input", "no speech found to pick moments from")
		}
		words = w
		q.Transcript = transcript.Render(transcript.Lines(w, transcriptLineSeconds))
	}

	var found []segments.Moment
	err := s.step(ctx, op, stepMoments, func(ctx context.Context) error {
		m, err := src.detector.Detect(ctx, q)
		found = m
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.WithContext(ctx).Info("moments detected", logger.Fields("kind", string(q.Kind), "requested", q.Count, "found", len(found)))
	return found, words, nil
}

// ShortsRequest builds vertical shorts.
type ShortsRequest struct {
	Input     string            `json:"input" validate:"required,file"`
	OutputDir string            `json:"output_dir" validate:"required"`
	Moments   []segments.Moment `json:"moments,omitempty" validate:"omitempty,max=15,dive"`
	// Transcript is "[MM:SS] text" lines to detect moments from.
	Transcript     string `json:"transcript,omitempty"`
	Count          int    `json:"count,omitempty" validate:"gte=0,lte=15"`
	Guidance       string `json:"guidance,omitempty"`
	Curator        bool   `json:"curator,omitempty"`
	MaxClipSeconds int    `json:"max_clip_seconds,omitempty" validate:"gte=0"`
	// Layout picks the two regions stacked into the vertical frame.
	Layout   media.Layout  `json:"layout"`
	Captions *bool         `json:"captions,omitempty"`
	Style    *style.Config `json:"style,omitempty"`
	Language string        `json:"language,omitempty"`
}

// Short is one produced vertical clip.
type Short struct {
	Index      int     `json:"index"`
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Reason     string  `json:"reason,omitempty"`
	ViralScore int     `json:"viral_score,omitempty"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Captioned  bool    `json:"captioned"`
	// CaptionError is set when captioning failed and the clip was kept
	// without captions.
	CaptionError string `json:"caption_error,omitempty"`
}

// ShortsResult lists the produced shorts.
type ShortsResult struct {
	Shorts  []Short           `json:"shorts"`
	Moments []segments.Moment `json:"moments"`
}

// Shorts cuts each moment, reframes it into a vertical frame and, when
// enabled, captions it. A captioning failure keeps the uncaptioned clip.
func (s *Studio) Shorts(ctx context.Context, req ShortsRequest) (res *ShortsResult, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	src, err := s.momentSource(req.Moments, req.Transcript)
	if err != nil {
		return nil, err
	}
	withCaptions := s.cfg.Shorts.Captions
	if req.Captions != nil {
		withCaptions = *req.Captions
	}
	var stt transcription.Provider
	if withCaptions {
		if stt, err = s.speechToText(); err != nil {
			return nil, err
		}
	}

	layout := req.Layout
	if layout.SplitRatio == 0 {
		layout.SplitRatio = s.cfg.Shorts.SplitRatio
	}
	if layout.Width == 0 {
		layout.Width = s.cfg.Shorts.Width
	}
	if layout.Height == 0 {
		layout.Height = s.cfg.Shorts.Height
	}

	ctx, op := s.start(ctx, PipelineShorts)
	defer func() { s.finish(ctx, op, err) }()

	ws, err := s.workspace(PipelineShorts)
	if err != nil {
		return nil, err
	}
	defer ws.Close()
	if err := mkdir(req.OutputDir); err != nil {
		return nil, err
	}

	found, words, err := s.pickMoments(ctx, op, ws, src, req.Input, req.Language, moments.Query{
		Count:          orDefaultInt(req.Count, s.cfg.Shorts.NumClips),
		Guidance:       req.Guidance,
		Kind:           moments.Shorts,
		Curator:        req.Curator || s.cfg.Shorts.Curator,
		MaxClipSeconds: orDefaultInt(req.MaxClipSeconds, s.cfg.Shorts.MaxClipSeconds),
	})
	if err != nil {
		return nil, err
	}
	ordered := slices.Clone(found)
	slices.SortStableFunc(ordered, func(a, b segments.Moment) int { return cmp.Compare(a.Order, b.Order) })
	segs, err := segments.FromMoments(ordered)
	if err != nil {
		return nil, err
	}

	cs := captionSettings{
		style:         s.cfg.Captions.Style,
		wordsPerGroup: s.cfg.Captions.WordsPerGroup,
		threshold:     s.cfg.Captions.SilenceThreshold,
	}
	if req.Style != nil {
		cs.style = *req.Style
	}

	res = &ShortsResult{Moments: found}
	for i, sg := range segs {
		short := Short{
			Index:      i + 1,
			Path:       filepath.Join(req.OutputDir, fmt.Sprintf("short_%02d.mp4", i+1)),
			Title:      sg.Label,
			Reason:     ordered[i].Reason,
			ViralScore: ordered[i].ViralScore,
			Start:      sg.Start,
			End:        sg.End,
		}
		if err := s.vertical(ctx, op, ws, req.Input, sg, layout, i+1, short.Path); err != nil {
			return nil, err
		}
		if withCaptions {
			applied, err := s.captionShort(ctx, op, ws, stt, short.Path, clipWords(words, sg), layout, cs, req.Language, i+1)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				short.CaptionError = err.Error()
				s.log.WithContext(ctx).Warn("captioning short failed, keeping uncaptioned clip",
					logger.MergeWithError(logger.Fields(logger.FieldSegment, i+1), err))
			}
			short.Captioned = applied
		}
		res.Shorts = append(res.Shorts, short)
	}
	if s.metrics != nil {
		s.metrics.RecordSegmentsCut(ctx, PipelineShorts, len(res.Shorts))
	}
	return res, nil
}

// vertical cuts sg from src and reframes it into dst.
func (s *Studio) vertical(ctx context.Context, op *observability.Operation, ws *workspace.Workspace, src string, sg segments.Segment, layout media.Layout, index int, dst string) error {
	clip := ws.Pathf("clip_%03d.mp4", index)
	if err := s.step(ctx, op, stepCut, func(ctx context.Context) error {
		return s.media.Cut(ctx, src, sg.Start, sg.End, true, clip)
	}); err != nil {
		return withDetail(err, logger.FieldSegment, index)
	}
	if err := s.step(ctx, op, stepReframe, func(ctx context.Context) error {
		return s.media.Reframe(ctx, clip, layout, dst)
	}); err != nil {
		return withDetail(err, logger.FieldSegment, index)
	}
	return nil
}

// captionShort burns captions into path in place and reports whether any
// were applied. words are clip-relative; nil means the clip is transcribed
// on its own.
func (s *Studio) captionShort(ctx context.Context, op *observability.Operation, ws *workspace.Workspace, stt transcription.Provider, path string, words transcript.Sequence, layout media.Layout, cs captionSettings, language string, index int) (bool, error) {
	if words == nil {
		sub, err := workspace.New(ws.Dir(), fmt.Sprintf("short%02d", index))
		if err != nil {
			return false, errors.Internal(err)
		}
		defer sub.Close()
		if words, err = s.transcribe(ctx, op, stt, sub, path, nil, language); err != nil {
			return false, err
		}
	}
	if len(words) == 0 {
		return false, nil
	}

	captioned := path + ".captioned.mp4"
	info := media.Info{Width: layout.Width, Height: layout.Height}
	if _, err := s.burnCaptions(ctx, op, ws, path, words, info, cs, captioned); err != nil {
		os.Remove(captioned)
		return false, err
	}
	if err := os.Rename(captioned, path); err != nil {
		os.Remove(captioned)
		return false, errors.Internal(err)
	}
	return true, nil
}

// clipWords returns the words lying inside sg, shifted to clip time, or nil
// when there is no source transcription to reuse.
func clipWords(words transcript.Sequence, sg segments.Segment) transcript.Sequence {
	if words == nil {
		return nil
	}
	var out transcript.Sequence
	for _, w := range words {
		if w.Start >= sg.Start && w.End <= sg.End {
			out = append(out, w)
		}
	}
	return out.Shift(-sg.Start)
}

func orDefaultInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
