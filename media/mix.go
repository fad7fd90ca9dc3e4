package media

import (
	"context"
	"math"
	"strconv"

	"github.com/kbukum/clipkit/errors"
)

// MaxVolume is the largest volume multiplier accepted for a track.
const MaxVolume = 2.0

// Mix lays a music track under a video's own audio.
type Mix struct {
	// SourceVolume scales the video's audio. Zero drops it and the music
	// replaces the soundtrack.
	SourceVolume float64
	MusicVolume  float64
	// MusicDelay starts the music this many seconds into the video.
	MusicDelay float64
}

// ClampVolume limits v to [0, MaxVolume].
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(MaxVolume, v))
}

// Replaces reports whether the music replaces the source audio.
func (m Mix) Replaces() bool { return ClampVolume(m.SourceVolume) == 0 }

// MixGraph scales and delays input 1's audio and mixes it with input 0's
// audio for as long as the video lasts. Volumes are clamped to
// [0, MaxVolume]. The output pad is "outa".
func MixGraph(m Mix) (*Graph, error) {
	src, music := ClampVolume(m.SourceVolume), ClampVolume(m.MusicVolume)
	if music == 0 {
		return nil, errors.InvalidInput("music_volume", "music would be silent")
	}
	if m.MusicDelay < 0 {
		return nil, errors.InvalidInput("music_delay", "must not be negative")
	}

	var filters []Filter
	if ms := int(math.Round(m.MusicDelay * 1000)); ms > 0 {
		filters = append(filters, NewFilter("adelay").With("delays", strconv.Itoa(ms)).With("all", "1"))
	}
	filters = append(filters, NewFilter("volume", ftoa(music)))

	g := &Graph{}
	if src == 0 {
		g.Add(Pads("1:a"), Pads("outa"), filters...)
		return g, nil
	}
	g.Add(Pads("0:a"), Pads("voice"), NewFilter("volume", ftoa(src)))
	g.Add(Pads("1:a"), Pads("music"), filters...)
	g.Add(Pads("voice", "music"), Pads("outa"), NewFilter("amix").
		With("inputs", "2").
		With("duration", "first").
		With("normalize", "0"))
	return g, nil
}

// MixAudio writes src with music mixed into (or replacing) its soundtrack.
// The video stream is copied.
func (t *Tool) MixAudio(ctx context.Context, src, music string, m Mix, dst string) error {
	g, err := MixGraph(m)
	if err != nil {
		return err
	}
	args := []string{"-y", "-i", src, "-i", music, "-filter_complex", g.String(), "-map", "0:v:0", "-map", "[outa]"}
	args = append(args, "-c:v", "copy", "-c:a", "aac", "-b:a", "192k")
	if m.Replaces() {
		args = append(args, "-shortest")
	}
	args = append(args, "-movflags", "+faststart", dst)
	return t.ffmpegRun(ctx, StepMix, args)
}
