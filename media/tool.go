package media

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/process"
	"github.com/kbukum/clipkit/resilience"
)

// Steps named in ExternalServiceError details.
const (
	StepCut       = "cut"
	StepConcat    = "concat"
	StepCrossfade = "crossfade"
	StepProbe     = "probe"
	StepOverlay   = "overlay"
	StepAudio     = "extract_audio"
	StepReframe   = "reframe"
	StepMix       = "mix_audio"
	StepVersion   = "version"
)

// stderrTail bounds the tool output kept in errors.
const stderrTail = 2000

// Runner executes a command. *process.Runner implements it.
type Runner interface {
	Run(ctx context.Context, cmd process.Command) (*process.Result, error)
}

// Config configures the tool binaries.
type Config struct {
	FFmpeg  string `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	FFprobe string `yaml:"ffprobe" mapstructure:"ffprobe"`
	// MaxConcurrent bounds simultaneous ffmpeg processes across requests.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// Timeout bounds a single tool run.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// GracePeriod is the SIGTERM to SIGKILL delay on cancellation.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// Window is a time range of the source in seconds.
type Window struct {
	Start float64
	End   float64
}

// Tool runs ffmpeg and ffprobe.
type Tool struct {
	ffmpeg  string
	ffprobe string
	runner  Runner
	log     *logger.Logger
}

// New creates a Tool backed by a process.Runner with a circuit breaker.
func New(cfg Config) *Tool {
	breaker := resilience.DefaultCircuitBreakerConfig("ffmpeg")
	r := process.NewRunner(process.RunnerConfig{
		Name:          "ffmpeg",
		GracePeriod:   cfg.GracePeriod,
		Timeout:       cfg.Timeout,
		MaxConcurrent: cfg.MaxConcurrent,
		Breaker:       &breaker,
	})
	return NewWithRunner(cfg, r)
}

// NewWithRunner creates a Tool that executes commands through r.
func NewWithRunner(cfg Config, r Runner) *Tool {
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	if cfg.FFprobe == "" {
		cfg.FFprobe = "ffprobe"
	}
	return &Tool{ffmpeg: cfg.FFmpeg, ffprobe: cfg.FFprobe, runner: r, log: logger.WithComponent("media")}
}

// Cut writes [start, end) of src to dst. A precise cut re-encodes so the
// boundaries may fall between keyframes; otherwise streams are copied.
func (t *Tool) Cut(ctx context.Context, src string, start, end float64, precise bool, dst string) error {
	if end <= start {
		return errors.InvalidInput("segment", fmt.Sprintf("end %.3f is not after start %.3f", end, start))
	}
	out := ffmpeg.KwArgs{"t": seconds(end - start)}
	if precise {
		for k, v := range h264(128) {
			out[k] = v
		}
	} else {
		out["c"] = "copy"
		out["avoid_negative_ts"] = "make_zero"
	}
	args := ffmpeg.Input(src, ffmpeg.KwArgs{"ss": seconds(start)}).
		Output(dst, out).
		OverWriteOutput().
		GetArgs()
	return t.ffmpegRun(ctx, StepCut, args)
}

// Concat joins files in order with the concat demuxer, copying streams.
func (t *Tool) Concat(ctx context.Context, files []string, dst string) error {
	if len(files) == 0 {
		return errors.InvalidInput("clips", "nothing to concatenate")
	}
	list := filepath.Join(filepath.Dir(dst), strings.TrimSuffix(filepath.Base(dst), filepath.Ext(dst))+"_concat.txt")
	if err := os.WriteFile(list, []byte(ConcatList(files)), 0o600); err != nil {
		return errors.StepFailed("ffmpeg", StepConcat, err, "")
	}
	defer os.Remove(list)

	args := ffmpeg.Input(list, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(dst, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		GetArgs()
	return t.ffmpegRun(ctx, StepConcat, args)
}

// ConcatList renders a concat demuxer list. Single quotes in paths are
// closed, escaped and reopened.
func ConcatList(files []string) string {
	var b strings.Builder
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		b.WriteString("file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'\n")
	}
	return b.String()
}

// Crossfade joins files with a d second video and audio crossfade between
// neighbours. durations[i] is the length of files[i].
func (t *Tool) Crossfade(ctx context.Context, files []string, durations []float64, d float64, dst string) error {
	if len(files) != len(durations) {
		return errors.InvalidInput("durations", "one duration per clip is required")
	}
	g, err := CrossfadeGraph(durations, d)
	if err != nil {
		return err
	}
	args := []string{"-y"}
	for _, f := range files {
		args = append(args, "-i", f)
	}
	args = append(args, "-filter_complex", g.String(), "-map", "[outv]", "-map", "[outa]")
	args = append(args, "-c:v", "libx264", "-preset", "fast", "-crf", "23", "-c:a", "aac", "-b:a", "192k", dst)
	return t.ffmpegRun(ctx, StepCrossfade, args)
}

// BurnSubtitles renders an ASS track onto src. fontsDir, when set, is
// searched for the fonts the track names.
func (t *Tool) BurnSubtitles(ctx context.Context, src, track, fontsDir, dst string) error {
	f := NewFilter("ass", track)
	if fontsDir != "" {
		f = f.With("fontsdir", fontsDir)
	}
	out := h264(128)
	out["vf"] = f.String()
	out["movflags"] = "+faststart"
	args := ffmpeg.Input(src).Output(dst, out).OverWriteOutput().GetArgs()
	return t.ffmpegRun(ctx, StepOverlay, args)
}

// ExtractAudio writes a 16 kHz mono MP3 of src (or of window within src)
// suitable for speech recognition.
func (t *Tool) ExtractAudio(ctx context.Context, src string, window *Window, dst string) error {
	in := ffmpeg.KwArgs{}
	out := ffmpeg.KwArgs{"vn": "", "acodec": "libmp3lame", "ar": "16000", "ac": "1", "b:a": "64k"}
	if window != nil {
		if window.End <= window.Start {
			return errors.InvalidInput("region", "end must be after start")
		}
		in["ss"] = seconds(window.Start)
		out["t"] = seconds(window.End - window.Start)
	}
	args := ffmpeg.Input(src, in).Output(dst, out).OverWriteOutput().GetArgs()
	return t.ffmpegRun(ctx, StepAudio, args)
}

// Reframe crops two regions of src and stacks them into a vertical frame.
func (t *Tool) Reframe(ctx context.Context, src string, layout Layout, dst string) error {
	info, err := t.Probe(ctx, src)
	if err != nil {
		return err
	}
	g, err := ReframeGraph(layout, info.Width, info.Height)
	if err != nil {
		return err
	}
	args := []string{"-y", "-i", src, "-filter_complex", g.String(), "-map", "[out]", "-map", "0:a?"}
	args = append(args, "-c:v", "libx264", "-preset", "fast", "-crf", "23", "-c:a", "aac", "-b:a", "128k", "-movflags", "+faststart", dst)
	return t.ffmpegRun(ctx, StepReframe, args)
}

func h264(audioKbps int) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"c:v":    "libx264",
		"preset": "fast",
		"crf":    "23",
		"c:a":    "aac",
		"b:a":    fmt.Sprintf("%dk", audioKbps),
	}
}

func (t *Tool) ffmpegRun(ctx context.Context, step string, args []string) error {
	res, err := t.runner.Run(ctx, process.Command{Binary: t.ffmpeg, Args: args})
	if err != nil {
		return t.toolError(ctx, step, res, err)
	}
	return nil
}

// toolError maps a failed run to an AppError. The runner's own per-run
// timeout counts as a timeout even while the caller's ctx is still live.
func (t *Tool) toolError(ctx context.Context, step string, res *process.Result, err error) error {
	if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout("ffmpeg " + step).WithCause(err)
	}
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		return errors.ServiceUnavailable("ffmpeg").WithCause(err).WithDetail("step", step)
	}
	tail := res.StderrTail(stderrTail)
	t.log.WithContext(ctx).Error("tool step failed", logger.Fields(logger.FieldStep, step, "error", err.Error()))
	return errors.StepFailed("ffmpeg", step, err, tail)
}
