package assemble

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/segments"
	"github.com/kbukum/clipkit/workspace"
)

// Mode selects how segments are cut.
type Mode int

const (
	// Precise re-encodes so cuts land exactly on the requested times.
	Precise Mode = iota
	// Fast copies streams and snaps cuts to keyframes.
	Fast
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Fast {
		return "fast"
	}
	return "precise"
}

// DefaultCrossfadeDuration is the overlap between clips when crossfading.
const DefaultCrossfadeDuration = 0.5

// Media is the subset of the codec tool the assembler drives.
// *media.Tool implements it.
type Media interface {
	Cut(ctx context.Context, src string, start, end float64, precise bool, dst string) error
	Concat(ctx context.Context, files []string, dst string) error
	Crossfade(ctx context.Context, files []string, durations []float64, d float64, dst string) error
	Duration(ctx context.Context, path string, fallback float64) float64
}

// Request describes one assembly.
type Request struct {
	Source   string
	Segments []segments.Segment
	Mode     Mode
	// Crossfade blends neighbouring clips instead of concatenating them.
	Crossfade         bool
	CrossfadeDuration float64
	// NoChange keeps the source as the result without writing anything.
	NoChange bool
	Output   string
	// Prefix names the request workspace, e.g. "silence" or "bestof".
	Prefix string
}

// Result describes the assembled output.
type Result struct {
	// Path is the output file, or the source when nothing changed.
	Path             string  `json:"path"`
	Changed          bool    `json:"changed"`
	SegmentCount     int     `json:"segment_count"`
	OutputDuration   float64 `json:"output_duration"`
	CrossfadeApplied bool    `json:"crossfade_applied"`
	// FallbackUsed is set when crossfading failed and the clips were
	// concatenated instead.
	FallbackUsed bool `json:"fallback_used"`
}

// Config configures an Assembler.
type Config struct {
	// WorkRoot is where request workspaces are created. Empty uses the OS temp dir.
	WorkRoot string
	// KeepWorkspace leaves intermediate clips on disk.
	KeepWorkspace bool
}

// Assembler cuts and joins segments.
type Assembler struct {
	media Media
	cfg   Config
	log   *logger.Logger
}

// New creates an Assembler.
func New(m Media, cfg Config) *Assembler {
	return &Assembler{media: m, cfg: cfg, log: logger.WithComponent("assemble")}
}

// Assemble cuts every segment and joins the clips into req.Output.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	if req.NoChange {
		return &Result{Path: req.Source, SegmentCount: len(req.Segments)}, nil
	}
	if len(req.Segments) == 0 {
		return nil, errors.InvalidInput("segments", "at least one segment is required")
	}
	if req.Output == "" {
		return nil, errors.MissingField("output")
	}
	for i, s := range req.Segments {
		if s.End <= s.Start || s.Start < 0 {
			return nil, errors.InvalidInput("segments", fmt.Sprintf("segment %d has invalid bounds [%.3f, %.3f]", i, s.Start, s.End))
		}
	}

	start := time.Now()
	log := a.log.WithContext(ctx)
	precise := req.Mode == Precise

	if len(req.Segments) == 1 {
		s := req.Segments[0]
		if err := a.media.Cut(ctx, req.Source, s.Start, s.End, precise, req.Output); err != nil {
			return nil, withSegment(err, 0)
		}
		return &Result{Path: req.Output, Changed: true, SegmentCount: 1, OutputDuration: s.Duration()}, nil
	}

	ws, err := workspace.New(a.cfg.WorkRoot, req.Prefix)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if a.cfg.KeepWorkspace {
		ws.Keep()
	}
	defer ws.Close()

	clips := make([]string, len(req.Segments))
	var total float64
	for i, s := range req.Segments {
		clips[i] = ws.Pathf("clip_%03d.mp4", i)
		if err := a.media.Cut(ctx, req.Source, s.Start, s.End, precise, clips[i]); err != nil {
			return nil, withSegment(err, i)
		}
		total += s.Duration()
	}
	log.Debug("segments cut", logger.Fields(logger.FieldSegments, len(clips), "mode", req.Mode.String()))

	res := &Result{Path: req.Output, Changed: true, SegmentCount: len(clips), OutputDuration: total}
	if req.Crossfade {
		d := req.CrossfadeDuration
		if d <= 0 {
			d = DefaultCrossfadeDuration
		}
		durations := make([]float64, len(clips))
		for i, c := range clips {
			durations[i] = a.media.Duration(ctx, c, media.DefaultClipDuration)
		}
		err := a.media.Crossfade(ctx, clips, durations, d, req.Output)
		if err == nil {
			res.CrossfadeApplied = true
			res.OutputDuration = crossfadedLength(durations, d)
			log.Info("clips crossfaded", logger.DurationFields("crossfade", time.Since(start)))
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		log.Warn("crossfade failed, concatenating instead", logger.ErrorFields("crossfade", err))
		res.FallbackUsed = true
	}

	if err := a.media.Concat(ctx, clips, req.Output); err != nil {
		return nil, err
	}
	log.Info("clips concatenated", logger.DurationFields("concat", time.Since(start)))
	return res, nil
}

func crossfadedLength(durations []float64, d float64) float64 {
	var t float64
	for _, x := range durations {
		t += x
	}
	return t - float64(len(durations)-1)*d
}

func withSegment(err error, i int) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail("segment", i)
	}
	return err
}
