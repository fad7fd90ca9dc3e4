package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/logger"
)

// Job is one independent pipeline run in a batch. Exactly one request
// field must be set.
type Job struct {
	ID       string           `json:"id,omitempty"`
	Captions *CaptionRequest  `json:"captions,omitempty"`
	Silence  *SilenceRequest  `json:"silence,omitempty"`
	Gaps     *GapRequest      `json:"gaps,omitempty"`
	Compile  *CompileRequest  `json:"compile,omitempty"`
	Shorts   *ShortsRequest   `json:"shorts,omitempty"`
	Export   *CutsRequest     `json:"export,omitempty"`
	Slice    *SliceRequest    `json:"slice,omitempty"`
	Chapters *ChaptersRequest `json:"chapters,omitempty"`
	Music    *MusicRequest    `json:"music,omitempty"`
}

// JobResult is the outcome of one job.
type JobResult struct {
	ID       string           `json:"id"`
	Pipeline string           `json:"pipeline"`
	Result   any              `json:"result,omitempty"`
	Error    *errors.ErrorBody `json:"error,omitempty"`
	Err      error            `json:"-"`
	Duration time.Duration    `json:"duration"`
}

// MarshalJSON reports Duration in seconds.
func (r JobResult) MarshalJSON() ([]byte, error) {
	type alias JobResult
	return json.Marshal(struct {
		alias
		Duration float64 `json:"duration"`
	}{alias(r), round3(r.Duration.Seconds())})
}

func (r *JobResult) fail(err error) {
	r.Err = err
	body := errors.Wrap(err).ToResponse().Error
	r.Error = &body
}

// Batch runs jobs concurrently, at most batch.max_concurrent at a time and
// no faster than batch.rate_per_minute. A failing job does not stop the
// others; results come back in job order.
func (s *Studio) Batch(ctx context.Context, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))

	var limiter *rate.Limiter
	if s.cfg.Batch.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.cfg.Batch.RatePerMinute)), 1)
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Batch.MaxConcurrent)
	for i, job := range jobs {
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		results[i] = JobResult{ID: job.ID, Pipeline: job.pipeline()}
		g.Go(func() error {
			r := &results[i]
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					r.fail(errors.Timeout("batch rate limit").WithCause(err))
					return nil
				}
			}
			start := time.Now()
			result, err := s.run(logger.ContextWithJobID(ctx, job.ID), job)
			r.Duration = time.Since(start)
			if err != nil {
				r.fail(err)
			} else {
				r.Result = result
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.log.WithContext(ctx).Info("batch finished", logger.Fields("jobs", len(jobs), "failed", failed))
	return results
}

func (j Job) pipeline() string {
	switch {
	case j.Captions != nil:
		return PipelineCaptions
	case j.Silence != nil:
		return PipelineSilence
	case j.Gaps != nil:
		return PipelineGaps
	case j.Compile != nil:
		return PipelineCompile
	case j.Shorts != nil:
		return PipelineShorts
	case j.Export != nil:
		return PipelineExport
	case j.Slice != nil:
		return PipelineSlice
	case j.Chapters != nil:
		return PipelineChapters
	case j.Music != nil:
		return PipelineMusic
	}
	return ""
}

func (j Job) requests() int {
	n := 0
	for _, set := range []bool{j.Captions != nil, j.Silence != nil, j.Gaps != nil, j.Compile != nil, j.Shorts != nil, j.Export != nil, j.Slice != nil, j.Chapters != nil, j.Music != nil} {
		if set {
			n++
		}
	}
	return n
}

// run dispatches a job to its pipeline. Typed nil results are returned as
// untyped nil.
func (s *Studio) run(ctx context.Context, j Job) (any, error) {
	if n := j.requests(); n != 1 {
		return nil, errors.InvalidInput("job", fmt.Sprintf("job %s sets %d requests, want exactly 1", j.ID, n))
	}
	switch {
	case j.Captions != nil:
		return result(s.Captions(ctx, *j.Captions))
	case j.Silence != nil:
		return result(s.RemoveSilence(ctx, *j.Silence))
	case j.Gaps != nil:
		return result(s.AnalyzeGaps(ctx, *j.Gaps))
	case j.Compile != nil:
		return result(s.Compile(ctx, *j.Compile))
	case j.Shorts != nil:
		return result(s.Shorts(ctx, *j.Shorts))
	case j.Export != nil:
		return result(s.ExportWithoutCuts(ctx, *j.Export))
	case j.Slice != nil:
		return result(s.SliceAt(ctx, *j.Slice))
	case j.Chapters != nil:
		return result(s.Chapters(ctx, *j.Chapters))
	default:
		return result(s.AddMusic(ctx, *j.Music))
	}
}

func result[T any](v *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
