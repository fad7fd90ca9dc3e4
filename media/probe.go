package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/process"
)

// Info describes a media file.
type Info struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
	HasAudio bool    `json:"has_audio"`
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads dimensions, duration and frame rate with ffprobe.
func (t *Tool) Probe(ctx context.Context, path string) (Info, error) {
	args := []string{"-v", "error", "-print_format", "json", "-show_format", "-show_streams", path}
	res, err := t.runner.Run(ctx, process.Command{Binary: t.ffprobe, Args: args})
	if err != nil {
		return Info{}, t.toolError(ctx, StepProbe, res, err)
	}
	info, err := ParseProbe(res.Stdout)
	if err != nil {
		return Info{}, errors.StepFailed("ffprobe", StepProbe, err, string(res.Stdout))
	}
	return info, nil
}

// Duration returns the probed duration, or fallback when probing fails or
// reports nothing.
func (t *Tool) Duration(ctx context.Context, path string, fallback float64) float64 {
	info, err := t.Probe(ctx, path)
	if err != nil || info.Duration <= 0 {
		return fallback
	}
	return info.Duration
}

// ParseProbe decodes ffprobe JSON output.
func ParseProbe(data []byte) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Info{}, err
	}
	var info Info
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width, info.Height = s.Width, s.Height
				info.FPS = parseRate(s.RFrameRate)
				if info.Duration == 0 {
					info.Duration, _ = strconv.ParseFloat(s.Duration, 64)
				}
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil && d > 0 {
		info.Duration = d
	}
	return info, nil
}

// parseRate parses "30000/1001" or "25".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// Version returns the first line of `ffmpeg -version`. It doubles as the
// availability check for the doctor command.
func (t *Tool) Version(ctx context.Context) (string, error) {
	res, err := t.runner.Run(ctx, process.Command{Binary: t.ffmpeg, Args: []string{"-hide_banner", "-version"}})
	if err != nil {
		return "", t.toolError(ctx, StepVersion, res, err)
	}
	line, _, _ := strings.Cut(string(res.Stdout), "\n")
	return strings.TrimSpace(line), nil
}
