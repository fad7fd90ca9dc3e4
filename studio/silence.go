package studio

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/kbukum/clipkit/assemble"
	"github.com/kbukum/clipkit/captions"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/gaps"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/segments"
	"github.com/kbukum/clipkit/validation"
)

// SilenceRequest removes the pauses between words.
type SilenceRequest struct {
	Input  string `json:"input" validate:"required,file"`
	Output string `json:"output" validate:"required"`
	// MinGap overrides silence.min_gap.
	MinGap float64 `json:"min_gap,omitempty" validate:"gte=0"`
	// Padding overrides silence.padding.
	Padding float64 `json:"padding,omitempty" validate:"gte=0"`
	// Region limits the output to a part of the input.
	Region   *Region `json:"region,omitempty"`
	Language string  `json:"language,omitempty"`
}

// SilenceResult describes a silence-removal run.
type SilenceResult struct {
	// Output is the tightened file, or the input when nothing was removed.
	Output           string             `json:"output"`
	Changed          bool               `json:"changed"`
	NoSpeech         bool               `json:"no_speech"`
	Gaps             gaps.Result        `json:"gaps"`
	Segments         []segments.Segment `json:"segments"`
	Removed          int                `json:"removed"`
	RemovedSeconds   float64            `json:"removed_seconds"`
	OriginalDuration float64            `json:"original_duration"`
	OutputDuration   float64            `json:"output_duration"`
}

// RemoveSilence cuts every pause of at least MinGap between words and
// rejoins the speech with precise cuts. With a Region only that part of
// the input is kept.
func (s *Studio) RemoveSilence(ctx context.Context, req SilenceRequest) (res *SilenceResult, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	var region *gaps.Range
	if req.Region != nil {
		r, err := req.Region.Range()
		if err != nil {
			return nil, err
		}
		region = &r
	}
	stt, err := s.speechToText()
	if err != nil {
		return nil, err
	}

	ctx, op := s.start(ctx, PipelineSilence)
	defer func() { s.finish(ctx, op, err) }()

	ws, err := s.workspace(PipelineSilence)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	duration := s.media.Duration(ctx, req.Input, 0)
	words, err := s.transcribe(ctx, op, stt, ws, req.Input, windowOf(region), req.Language)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return &SilenceResult{Output: req.Input, NoSpeech: true, Gaps: gaps.Result{Gaps: []gaps.Gap{}}, OriginalDuration: duration}, nil
	}

	minGap := orDefault(req.MinGap, s.cfg.Silence.MinGap)
	padding := orDefault(req.Padding, s.cfg.Silence.Padding)

	var (
		detected gaps.Result
		plan     segments.Plan
	)
	_ = s.step(ctx, op, stepDetect, func(ctx context.Context) error {
		detected = gaps.Detect(words, gaps.Options{MinGap: minGap, Range: region})
		trackEnd := duration
		if region != nil {
			trackEnd = region.End
		}
		plan = segments.FromGaps(words, detected.Gaps, padding, trackEnd)
		if region != nil {
			plan = withinRegion(plan, *region)
		}
		observability.SetSpanAttribute(ctx, "gaps.count", detected.GapCount)
		return nil
	})

	s.log.WithContext(ctx).Info("silences planned", logger.Fields(
		"gaps", detected.GapCount,
		"total_gap_time", detected.TotalGapTime,
		logger.FieldSegments, len(plan.Segments),
		"no_change", plan.NoChange,
	))

	var out *assemble.Result
	if err := s.step(ctx, op, stepAssemble, func(ctx context.Context) error {
		r, err := s.assembler.Assemble(ctx, assemble.Request{
			Source:   req.Input,
			Segments: plan.Segments,
			Mode:     assemble.Precise,
			NoChange: plan.NoChange,
			Output:   req.Output,
			Prefix:   PipelineSilence,
		})
		out = r
		return err
	}); err != nil {
		return nil, err
	}

	if out.Changed && s.metrics != nil {
		s.metrics.RecordSegmentsCut(ctx, PipelineSilence, out.SegmentCount)
		s.metrics.RecordRemovedSeconds(ctx, plan.RemovedSeconds)
	}
	res = &SilenceResult{
		Output:           out.Path,
		Changed:          out.Changed,
		Gaps:             detected,
		Segments:         plan.Segments,
		Removed:          plan.Removed,
		RemovedSeconds:   round3(plan.RemovedSeconds),
		OriginalDuration: duration,
		OutputDuration:   round3(out.OutputDuration),
	}
	if !out.Changed {
		res.OutputDuration = duration
	}
	return res, nil
}

// withinRegion clamps a plan to r. A plan with nothing to remove becomes a
// single cut of the region.
func withinRegion(p segments.Plan, r gaps.Range) segments.Plan {
	if p.NoChange {
		return segments.Plan{Segments: []segments.Segment{{Start: r.Start, End: r.End}}}
	}
	kept := make([]segments.Segment, 0, len(p.Segments))
	for _, sg := range p.Segments {
		sg.Start = math.Max(sg.Start, r.Start)
		sg.End = math.Min(sg.End, r.End)
		if sg.End > sg.Start {
			kept = append(kept, sg)
		}
	}
	p.Segments = kept
	return p
}

// GapRequest analyzes pauses without writing video.
type GapRequest struct {
	Input  string  `json:"input" validate:"required,file"`
	MinGap float64 `json:"min_gap,omitempty" validate:"gte=0"`
	Region *Region `json:"region,omitempty"`
	// Relative reports gap times from the region start instead of the
	// start of the input.
	Relative bool   `json:"relative,omitempty"`
	Language string `json:"language,omitempty"`
}

// GapReport is the outcome of AnalyzeGaps.
type GapReport struct {
	gaps.Result
	Region *gaps.Range       `json:"region,omitempty"`
	Speech captions.GapStats `json:"speech"`
	Words  int               `json:"words"`
}

// AnalyzeGaps transcribes the input (or a region of it) and reports every
// pause of at least MinGap. Gap times are absolute unless Relative is set.
func (s *Studio) AnalyzeGaps(ctx context.Context, req GapRequest) (res *GapReport, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	if req.Relative && req.Region == nil {
		return nil, errors.InvalidInput("relative", "relative output needs a region")
	}
	var region *gaps.Range
	if req.Region != nil {
		r, err := req.Region.Range()
		if err != nil {
			return nil, err
		}
		region = &r
	}
	stt, err := s.speechToText()
	if err != nil {
		return nil, err
	}

	ctx, op := s.start(ctx, PipelineGaps)
	defer func() { s.finish(ctx, op, err) }()

	ws, err := s.workspace(PipelineGaps)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	words, err := s.transcribe(ctx, op, stt, ws, req.Input, windowOf(region), req.Language)
	if err != nil {
		return nil, err
	}

	res = &GapReport{Region: region, Words: len(words)}
	_ = s.step(ctx, op, stepDetect, func(ctx context.Context) error {
		res.Result = gaps.Detect(words, gaps.Options{
			MinGap:   orDefault(req.MinGap, s.cfg.Silence.MinGap),
			Range:    region,
			Relative: req.Relative,
		})
		res.Speech = captions.AnalyzeGaps(words)
		return nil
	})
	res.TotalGapTime = round3(res.TotalGapTime)
	return res, nil
}

// CutsRequest exports the input with the given ranges removed.
type CutsRequest struct {
	Input    string             `json:"input" validate:"required,file"`
	Output   string             `json:"output" validate:"required"`
	Removals []segments.Segment `json:"removals" validate:"required,min=1"`
}

// ExportWithoutCuts writes the input minus every removal range.
func (s *Studio) ExportWithoutCuts(ctx context.Context, req CutsRequest) (res *assemble.Result, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	ctx, op := s.start(ctx, PipelineExport)
	defer func() { s.finish(ctx, op, err) }()

	var duration float64
	if err := s.step(ctx, op, stepProbe, func(ctx context.Context) error {
		info, err := s.media.Probe(ctx, req.Input)
		duration = info.Duration
		return err
	}); err != nil {
		return nil, err
	}

	kept, err := segments.Complement(req.Removals, duration)
	if err != nil {
		return nil, err
	}
	err = s.step(ctx, op, stepAssemble, func(ctx context.Context) error {
		res, err = s.assembler.Assemble(ctx, assemble.Request{
			Source:   req.Input,
			Segments: kept,
			Mode:     assemble.Precise,
			Output:   req.Output,
			Prefix:   PipelineExport,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSegmentsCut(ctx, PipelineExport, res.SegmentCount)
	}
	return res, nil
}

// SliceRequest splits the input at cut points into separate files.
type SliceRequest struct {
	Input     string    `json:"input" validate:"required,file"`
	OutputDir string    `json:"output_dir" validate:"required"`
	Cuts      []float64 `json:"cuts" validate:"required,min=1,dive,gt=0"`
}

// SliceResult lists the written parts.
type SliceResult struct {
	Parts    []string           `json:"parts"`
	Segments []segments.Segment `json:"segments"`
}

// SliceAt cuts the input at every cut point and writes part_NN.mp4 files
// into OutputDir. Parts shorter than segments.MinSliceSeconds are skipped.
func (s *Studio) SliceAt(ctx context.Context, req SliceRequest) (res *SliceResult, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	ctx, op := s.start(ctx, PipelineSlice)
	defer func() { s.finish(ctx, op, err) }()

	var duration float64
	if err := s.step(ctx, op, stepProbe, func(ctx context.Context) error {
		info, err := s.media.Probe(ctx, req.Input)
		duration = info.Duration
		return err
	}); err != nil {
		return nil, err
	}

	if err := mkdir(req.OutputDir); err != nil {
		return nil, err
	}
	res = &SliceResult{Segments: segments.Slice(req.Cuts, duration)}
	for i, sg := range res.Segments {
		dst := filepath.Join(req.OutputDir, fmt.Sprintf("part_%02d.mp4", i+1))
		if err := s.step(ctx, op, stepCut, func(ctx context.Context) error {
			return s.media.Cut(ctx, req.Input, sg.Start, sg.End, true, dst)
		}); err != nil {
			return nil, withDetail(err, logger.FieldSegment, i+1)
		}
		res.Parts = append(res.Parts, dst)
	}
	if s.metrics != nil {
		s.metrics.RecordSegmentsCut(ctx, PipelineSlice, len(res.Parts))
	}
	return res, nil
}
