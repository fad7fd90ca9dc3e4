package studio

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/clipkit/assemble"
	"github.com/kbukum/clipkit/config"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/gaps"
	"github.com/kbukum/clipkit/llm"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/moments"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/style"
	"github.com/kbukum/clipkit/transcript"
	"github.com/kbukum/clipkit/transcription"
	"github.com/kbukum/clipkit/workspace"
)

// Media is the codec capability the pipelines drive. *media.Tool implements it.
type Media interface {
	assemble.Media
	Probe(ctx context.Context, path string) (media.Info, error)
	ExtractAudio(ctx context.Context, src string, window *media.Window, dst string) error
	BurnSubtitles(ctx context.Context, src, track, fontsDir, dst string) error
	Reframe(ctx context.Context, src string, layout media.Layout, dst string) error
	MixAudio(ctx context.Context, src, music string, m media.Mix, dst string) error
}

// Pipeline names used for workspaces, spans and metrics.
const (
	PipelineCaptions = "captions"
	PipelineSilence  = "silence"
	PipelineGaps     = "gaps"
	PipelineCompile  = "bestof"
	PipelineShorts   = "shorts"
	PipelineExport   = "export"
	PipelineSlice    = "slice"
	PipelineChapters = "chapters"
	PipelineMusic    = "music"
)

// Step names recorded on spans and in logs.
const (
	stepProbe      = "probe"
	stepAudio      = "extract_audio"
	stepTranscribe = "transcribe"
	stepGroup      = "group"
	stepOverlay    = "overlay"
	stepBurn       = "burn"
	stepDetect     = "detect_gaps"
	stepMoments    = "detect_moments"
	stepAssemble   = "assemble"
	stepCut        = "cut"
	stepReframe    = "reframe"
	stepChapters   = "generate_chapters"
	stepMix        = "mix_audio"
)

// Studio runs pipelines against one configuration.
type Studio struct {
	cfg       config.Config
	media     Media
	assembler *assemble.Assembler
	resolver  *style.Resolver
	metrics   *observability.Metrics
	log       *logger.Logger

	transcriber transcription.Provider
	llm         llm.Provider
}

// Option customizes a Studio.
type Option func(*Studio)

// WithTranscriber uses p instead of building the configured backend.
func WithTranscriber(p transcription.Provider) Option {
	return func(s *Studio) { s.transcriber = p }
}

// WithLLM uses p instead of building the configured backend.
func WithLLM(p llm.Provider) Option {
	return func(s *Studio) { s.llm = p }
}

// WithMetrics records pipeline metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Studio) { s.metrics = m }
}

// WithMeasurer overrides how caption widths are measured.
func WithMeasurer(m style.Measurer) Option {
	return func(s *Studio) { s.resolver = style.NewResolver(m) }
}

// New creates a Studio. cfg is copied and defaulted.
func New(cfg config.Config, m Media, opts ...Option) *Studio {
	cfg.ApplyDefaults()
	s := &Studio{
		cfg:   cfg,
		media: m,
		assembler: assemble.New(m, assemble.Config{
			WorkRoot:      cfg.Workspace.Root,
			KeepWorkspace: cfg.Workspace.Keep,
		}),
		log: logger.WithComponent("studio"),
	}
	if cfg.Media.FontsDir != "" {
		s.resolver = style.NewResolver(style.NewFontMeasurer(cfg.Media.FontsDir))
	} else {
		s.resolver = style.NewResolver(style.HeuristicMeasurer{})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the defaulted configuration.
func (s *Studio) Config() config.Config { return s.cfg }

// speechToText returns the injected transcription backend or builds the configured one.
func (s *Studio) speechToText() (transcription.Provider, error) {
	if s.transcriber != nil {
		return s.transcriber, nil
	}
	if err := s.cfg.RequireTranscription(); err != nil {
		return nil, err
	}
	p, err := transcription.New(s.cfg.Transcription)
	if err != nil {
		return nil, err
	}
	return transcription.WithResilience(p, s.cfg.Transcription), nil
}

// llmProvider builds the configured LLM backend.
func (s *Studio) llmProvider() (llm.Provider, error) {
	if err := s.cfg.RequireLLM(); err != nil {
		return nil, err
	}
	p, err := llm.New(s.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return llm.WithResilience(p, s.cfg.LLM), nil
}

// languageModel returns the injected LLM or builds the configured one.
func (s *Studio) languageModel() (llm.Provider, error) {
	if s.llm != nil {
		return s.llm, nil
	}
	return s.llmProvider()
}

// detector returns a moment detector over the injected or configured LLM.
func (s *Studio) detector() (*moments.Detector, error) {
	p, err := s.languageModel()
	if err != nil {
		return nil, err
	}
	return moments.NewDetector(p), nil
}

// start opens the operation for one pipeline run. The job id comes from the
// context when a batch set one.
func (s *Studio) start(ctx context.Context, pipeline string) (context.Context, *observability.Operation) {
	id := logger.JobIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = logger.ContextWithJobID(ctx, id)
	}
	ctx, op := observability.StartOperation(ctx, pipeline, id, s.metrics)
	s.log.WithContext(ctx).Info("pipeline started", logger.Fields("pipeline", pipeline))
	return ctx, op
}

// finish closes the operation and logs the outcome.
func (s *Studio) finish(ctx context.Context, op *observability.Operation, err error) {
	op.End(ctx, err)
	if err != nil {
		s.log.WithContext(ctx).Error("pipeline failed", logger.MergeWithError(
			logger.DurationFields(op.Pipeline, op.Duration()), err))
		return
	}
	s.log.WithContext(ctx).Info("pipeline finished", logger.DurationFields(op.Pipeline, op.Duration()))
}

// step runs fn inside a child span.
func (s *Studio) step(ctx context.Context, op *observability.Operation, name string, fn func(ctx context.Context) error) error {
	stepCtx, done := op.Step(ctx, name)
	start := time.Now()
	err := fn(stepCtx)
	done(err)
	if err == nil {
		s.log.WithContext(ctx).Debug("step finished", logger.StepFields(name, time.Since(start)))
	}
	return err
}

func (s *Studio) workspace(prefix string) (*workspace.Workspace, error) {
	ws, err := workspace.New(s.cfg.Workspace.Root, prefix)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if s.cfg.Workspace.Keep {
		ws.Keep()
	}
	return ws, nil
}

// transcribe extracts audio (optionally a window of src) and returns words
// in the source timebase.
func (s *Studio) transcribe(ctx context.Context, op *observability.Operation, p transcription.Provider, ws *workspace.Workspace, src string, window *media.Window, language string) (words transcript.Sequence, err error) {
	audio := ws.Path("audio.mp3")
	if err := s.step(ctx, op, stepAudio, func(ctx context.Context) error {
		return s.media.ExtractAudio(ctx, src, window, audio)
	}); err != nil {
		return nil, err
	}
	req := transcription.Request{AudioPath: audio, Language: language}
	if req.Language == "" {
		req.Language = s.cfg.Transcription.Language
	}
	if window != nil {
		req.Offset = window.Start
	}
	err = s.step(ctx, op, stepTranscribe, func(ctx context.Context) error {
		seq, _, err := transcription.Words(ctx, p, req)
		words = seq
		return err
	})
	return words, err
}

// Region is a time range of the source given as timestamps.
type Region struct {
	Start string `json:"start" validate:"required,timestamp"`
	End   string `json:"end" validate:"required,timestamp"`
}

// Range parses the region.
func (r *Region) Range() (gaps.Range, error) {
	start, err := transcript.ParseTimestamp(r.Start)
	if err != nil {
		return gaps.Range{}, errors.InvalidInput("region.start", err.Error())
	}
	end, err := transcript.ParseTimestamp(r.End)
	if err != nil {
		return gaps.Range{}, errors.InvalidInput("region.end", err.Error())
	}
	if end <= start {
		return gaps.Range{}, errors.InvalidInput("region.end", fmt.Sprintf("end %s is not after start %s", r.End, r.Start))
	}
	return gaps.Range{Start: start, End: end}, nil
}

func windowOf(r *gaps.Range) *media.Window {
	if r == nil {
		return nil
	}
	return &media.Window{Start: r.Start, End: r.End}
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.InvalidInput("output_dir", err.Error())
	}
	return nil
}

// withDetail adds key to an AppError's details; other errors pass through.
func withDetail(err error, key string, value any) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail(key, value)
	}
	return err
}
