package studio

import (
	"context"

	"github.com/kbukum/clipkit/chapters"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/transcript"
	"github.com/kbukum/clipkit/transcription"
	"github.com/kbukum/clipkit/validation"
)

// ChaptersRequest asks for a chapter list. Either Input or Transcript is
// required; Input is transcribed when Transcript is empty.
type ChaptersRequest struct {
	Input string `json:"input,omitempty" validate:"omitempty,file"`
	// Transcript is "[MM:SS] text" lines.
	Transcript string `json:"transcript,omitempty"`
	VideoURL   string `json:"video_url,omitempty" validate:"omitempty,url"`
	Guidance   string `json:"guidance,omitempty"`
	Min        int    `json:"min,omitempty" validate:"gte=0,lte=50"`
	Max        int    `json:"max,omitempty" validate:"gte=0,lte=50"`
	Language   string `json:"language,omitempty"`
}

// ChaptersResult is the generated chapter list.
type ChaptersResult struct {
	VideoID  string            `json:"video_id,omitempty"`
	Chapters []chapters.Chapter `json:"chapters"`
	// Description is the list rendered as "MM:SS - Title" lines.
	Description string `json:"description"`
}

// Chapters generates chapters for the supplied transcript, or for the
// input's own transcription.
func (s *Studio) Chapters(ctx context.Context, req ChaptersRequest) (res *ChaptersResult, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	if req.Input == "" && req.Transcript == "" {
		return nil, errors.InvalidInput("input", "an input video or a transcript is required")
	}
	res = &ChaptersResult{}
	if req.VideoURL != "" {
		id, err := transcript.ExtractVideoID(req.VideoURL)
		if err != nil {
			return nil, errors.InvalidInput("video_url", err.Error())
		}
		res.VideoID = id
	}
	model, err := s.languageModel()
	if err != nil {
		return nil, err
	}
	var stt transcription.Provider
	if req.Transcript == "" {
		if stt, err = s.speechToText(); err != nil {
			return nil, err
		}
	}

	ctx, op := s.start(ctx, PipelineChapters)
	defer func() { s.finish(ctx, op, err) }()

	q := chapters.Query{Transcript: req.Transcript, Guidance: req.Guidance, Min: req.Min, Max: req.Max}
	if stt != nil {
		ws, err := s.workspace(PipelineChapters)
		if err != nil {
			return nil, err
		}
		defer ws.Close()

		words, err := s.transcribe(ctx, op, stt, ws, req.Input, nil, req.Language)
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			return nil, errors.InvalidInput("input", "no speech found to build chapters from")
		}
		q.Transcript = transcript.Render(transcript.Lines(words, transcriptLineSeconds))
		q.Duration = words.End()
	}

	if err := s.step(ctx, op, stepChapters, func(ctx context.Context) error {
		list, err := chapters.NewGenerator(model).Generate(ctx, q)
		res.Chapters = list
		return err
	}); err != nil {
		return nil, err
	}
	res.Description = chapters.Description(res.Chapters)
	observability.SetSpanAttribute(ctx, "chapters.count", len(res.Chapters))
	return res, nil
}
