package studio

import (
	"context"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/validation"
)

// Default volume multipliers for a music bed.
const (
	DefaultSourceVolume = 1.0
	DefaultMusicVolume  = 0.5
)

// MusicRequest lays a music track under the input's audio.
type MusicRequest struct {
	Input  string `json:"input" validate:"required,file"`
	Music  string `json:"music" validate:"required,file"`
	Output string `json:"output" validate:"required"`
	// SourceVolume scales the input's own audio, 1 when unset. Zero
	// replaces the soundtrack with the music.
	SourceVolume *float64 `json:"source_volume,omitempty"`
	// MusicVolume scales the music, 0.5 when unset.
	MusicVolume *float64 `json:"music_volume,omitempty"`
	// MusicDelay starts the music this many seconds in.
	MusicDelay float64 `json:"music_delay,omitempty" validate:"gte=0"`
}

// MusicResult describes a mixed output.
type MusicResult struct {
	Output       string  `json:"output"`
	SourceVolume float64 `json:"source_volume"`
	MusicVolume  float64 `json:"music_volume"`
	Replaced     bool    `json:"replaced"`
}

// AddMusic mixes the music into the input's soundtrack, or replaces the
// soundtrack when the source volume is zero or the input has no audio.
// Volumes are clamped to [0, media.MaxVolume].
func (s *Studio) AddMusic(ctx context.Context, req MusicRequest) (res *MusicResult, err error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	mix := media.Mix{
		SourceVolume: media.ClampVolume(DefaultSourceVolume),
		MusicVolume:  media.ClampVolume(DefaultMusicVolume),
		MusicDelay:   req.MusicDelay,
	}
	if req.SourceVolume != nil {
		mix.SourceVolume = media.ClampVolume(*req.SourceVolume)
	}
	if req.MusicVolume != nil {
		mix.MusicVolume = media.ClampVolume(*req.MusicVolume)
	}
	if mix.MusicVolume == 0 {
		return nil, errors.InvalidInput("music_volume", "music would be silent")
	}

	ctx, op := s.start(ctx, PipelineMusic)
	defer func() { s.finish(ctx, op, err) }()

	var info media.Info
	if err := s.step(ctx, op, stepProbe, func(ctx context.Context) error {
		i, err := s.media.Probe(ctx, req.Input)
		info = i
		return err
	}); err != nil {
		return nil, err
	}
	if !info.HasAudio && mix.SourceVolume > 0 {
		s.log.WithContext(ctx).Info("input has no audio, music replaces it", logger.Fields("input", req.Input))
		mix.SourceVolume = 0
	}

	if err := s.step(ctx, op, stepMix, func(ctx context.Context) error {
		return s.media.MixAudio(ctx, req.Input, req.Music, mix, req.Output)
	}); err != nil {
		return nil, err
	}
	return &MusicResult{
		Output:       req.Output,
		SourceVolume: mix.SourceVolume,
		MusicVolume:  mix.MusicVolume,
		Replaced:     mix.Replaces(),
	}, nil
}
