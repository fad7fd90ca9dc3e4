package config

import (
	"fmt"

	"github.com/kbukum/clipkit/assemble"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/gaps"
	"github.com/kbukum/clipkit/llm"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/moments"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/segments"
	"github.com/kbukum/clipkit/style"
	"github.com/kbukum/clipkit/transcription"
)

// Config is the clipkit configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// OpenAIAPIKey (OPENAI_API_KEY) is used by any OpenAI backend without
	// its own api_key.
	OpenAIAPIKey string `yaml:"openai_api_key" mapstructure:"openai_api_key"`

	Media         MediaConfig          `yaml:"media" mapstructure:"media"`
	Captions      CaptionsConfig       `yaml:"captions" mapstructure:"captions"`
	Silence       SilenceConfig        `yaml:"silence" mapstructure:"silence"`
	Compilation   CompilationConfig    `yaml:"compilation" mapstructure:"compilation"`
	Shorts        ShortsConfig         `yaml:"shorts" mapstructure:"shorts"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	LLM           llm.Config           `yaml:"llm" mapstructure:"llm"`
	Workspace     WorkspaceConfig      `yaml:"workspace" mapstructure:"workspace"`
	Batch         BatchConfig          `yaml:"batch" mapstructure:"batch"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// MediaConfig locates ffmpeg and the caption fonts.
type MediaConfig struct {
	media.Config `yaml:",inline" mapstructure:",squash"`
	// FontsDir holds the TTF/OTF files used to measure and burn captions.
	FontsDir string `yaml:"fonts_dir" mapstructure:"fonts_dir"`
}

// CaptionsConfig controls word grouping and the caption look.
type CaptionsConfig struct {
	WordsPerGroup    int          `yaml:"words_per_group" mapstructure:"words_per_group"`
	// SilenceThreshold is the pause that starts a new caption group. Zero
	// means 0.5s; a negative value turns the rule off and groups by size.
	SilenceThreshold float64      `yaml:"silence_threshold" mapstructure:"silence_threshold"`
	Style            style.Config `yaml:"style" mapstructure:"style"`
}

// SilenceConfig controls gap detection and cutting.
type SilenceConfig struct {
	MinGap  float64 `yaml:"min_gap" mapstructure:"min_gap"`
	Padding float64 `yaml:"padding" mapstructure:"padding"`
}

// CompilationConfig controls best-of compilations.
type CompilationConfig struct {
	Crossfade         bool    `yaml:"crossfade" mapstructure:"crossfade"`
	CrossfadeDuration float64 `yaml:"crossfade_duration" mapstructure:"crossfade_duration"`
	NumClips          int     `yaml:"num_clips" mapstructure:"num_clips"`
	TargetMinutes     int     `yaml:"target_minutes" mapstructure:"target_minutes"`
	AvgClipSeconds    int     `yaml:"avg_clip_seconds" mapstructure:"avg_clip_seconds"`
}

// ShortsConfig controls vertical shorts.
type ShortsConfig struct {
	SplitRatio     float64 `yaml:"split_ratio" mapstructure:"split_ratio"`
	Width          int     `yaml:"width" mapstructure:"width"`
	Height         int     `yaml:"height" mapstructure:"height"`
	NumClips       int     `yaml:"num_clips" mapstructure:"num_clips"`
	MaxClipSeconds int     `yaml:"max_clip_seconds" mapstructure:"max_clip_seconds"`
	Curator        bool    `yaml:"curator" mapstructure:"curator"`
	Captions       bool    `yaml:"captions" mapstructure:"captions"`
}

// WorkspaceConfig places request scratch directories.
type WorkspaceConfig struct {
	// Root is the parent of request workspaces; empty means the OS temp dir.
	Root string `yaml:"root" mapstructure:"root"`
	// Keep leaves workspaces on disk for debugging.
	Keep bool `yaml:"keep" mapstructure:"keep"`
}

// BatchConfig bounds batch runs.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// RatePerMinute limits jobs started per minute; zero disables the limit.
	RatePerMinute int `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// ApplyDefaults fills every unset value.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()

	if c.Captions.WordsPerGroup == 0 {
		c.Captions.WordsPerGroup = 3
	}
	if c.Captions.SilenceThreshold == 0 {
		c.Captions.SilenceThreshold = 0.5
	}
	if c.Captions.Style == (style.Config{}) {
		c.Captions.Style = style.DefaultConfig()
	}

	if c.Silence.MinGap == 0 {
		c.Silence.MinGap = gaps.DefaultMinGap
	}
	if c.Silence.Padding == 0 {
		c.Silence.Padding = segments.DefaultPadding
	}

	if c.Compilation.CrossfadeDuration == 0 {
		c.Compilation.CrossfadeDuration = assemble.DefaultCrossfadeDuration
	}
	if c.Compilation.NumClips == 0 {
		c.Compilation.NumClips = moments.DefaultBestOfClips
	}
	if c.Compilation.TargetMinutes == 0 {
		c.Compilation.TargetMinutes = moments.DefaultTargetMinutes
	}
	if c.Compilation.AvgClipSeconds == 0 {
		c.Compilation.AvgClipSeconds = moments.DefaultAvgClipSeconds
	}

	if c.Shorts.SplitRatio == 0 {
		c.Shorts.SplitRatio = media.DefaultSplitRatio
	}
	if c.Shorts.Width == 0 {
		c.Shorts.Width = media.DefaultVerticalWidth
	}
	if c.Shorts.Height == 0 {
		c.Shorts.Height = media.DefaultVerticalHeight
	}
	if c.Shorts.NumClips == 0 {
		c.Shorts.NumClips = moments.DefaultShortsClips
	}
	if c.Shorts.MaxClipSeconds == 0 {
		c.Shorts.MaxClipSeconds = moments.DefaultMaxClipSeconds
	}

	c.Transcription.ApplyDefaults()
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = c.OpenAIAPIKey
	}
	c.LLM.ApplyDefaults()
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = c.OpenAIAPIKey
	}

	if c.Batch.MaxConcurrent == 0 {
		c.Batch.MaxConcurrent = 2
	}
	c.Observability.ApplyDefaults()
}

// Validate checks ranges. Credentials are checked per request by
// RequireTranscription and RequireLLM.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return errors.Configuration("service", err.Error())
	}
	checks := []struct {
		ok      bool
		setting string
		reason  string
	}{
		{c.Captions.WordsPerGroup >= 1, "captions.words_per_group", "must be at least 1"},
		{c.Silence.MinGap >= 0, "silence.min_gap", "must not be negative"},
		{c.Silence.Padding >= 0, "silence.padding", "must not be negative"},
		{c.Compilation.CrossfadeDuration > 0, "compilation.crossfade_duration", "must be positive"},
		{c.Compilation.NumClips >= 1 && c.Compilation.NumClips <= moments.MaxBestOfClips, "compilation.num_clips", fmt.Sprintf("must be between 1 and %d", moments.MaxBestOfClips)},
		{c.Shorts.Width > 0 && c.Shorts.Height > 0, "shorts.width", "frame size must be positive"},
		{c.Shorts.NumClips >= 1 && c.Shorts.NumClips <= moments.MaxCuratorClips, "shorts.num_clips", fmt.Sprintf("must be between 1 and %d", moments.MaxCuratorClips)},
		{c.Batch.MaxConcurrent >= 1, "batch.max_concurrent", "must be at least 1"},
		{c.Batch.RatePerMinute >= 0, "batch.rate_per_minute", "must not be negative"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return errors.Configuration(ch.setting, ch.reason)
		}
	}
	return nil
}

// RequireTranscription fails when the configured transcription backend has
// no credential or address.
func (c *Config) RequireTranscription() error {
	switch c.Transcription.Provider {
	case "openai":
		if c.Transcription.APIKey == "" {
			return errors.Configuration("transcription.api_key", "OPENAI_API_KEY or TRANSCRIPTION_API_KEY must be set")
		}
	case "whisper":
	default:
		return errors.Configuration("transcription.provider", fmt.Sprintf("unknown provider %q", c.Transcription.Provider))
	}
	return nil
}

// RequireLLM fails when the configured LLM backend has no credential.
func (c *Config) RequireLLM() error {
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
		return errors.Configuration("llm.api_key", "OPENAI_API_KEY or LLM_API_KEY must be set")
	}
	return nil
}
