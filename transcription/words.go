package transcription

import (
	"context"

	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/transcript"
)

// Words transcribes req and returns the normalized word sequence shifted by
// req.Offset into the source timebase. No speech yields an empty sequence
// and a nil error.
func Words(ctx context.Context, p Provider, req Request) (transcript.Sequence, transcript.Report, error) {
	resp, err := p.Transcribe(ctx, req)
	if err != nil {
		return nil, transcript.Report{}, err
	}
	if resp.NoSpeech() {
		logger.WithComponent("transcription").WithContext(ctx).Info("no speech detected",
			logger.Fields(logger.FieldProvider, p.Name(), "audio", req.AudioPath))
		return transcript.Sequence{}, transcript.Report{}, nil
	}
	words, report := transcript.Normalize(resp.Words)
	if report.Dropped > 0 || report.Clamped > 0 || report.Reordered {
		logger.WithComponent("transcription").WithContext(ctx).Warn("transcript normalized", logger.Fields(
			"dropped", report.Dropped, "clamped", report.Clamped, "reordered", report.Reordered))
	}
	if req.Offset != 0 {
		words = words.Shift(req.Offset)
	}
	return words, report, nil
}
