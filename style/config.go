package style

import "math"

// AnimationMode selects how the spoken word is highlighted.
type AnimationMode string

const (
	AnimationScale AnimationMode = "scale"
	AnimationColor AnimationMode = "color"
	AnimationBoth  AnimationMode = "both"
	AnimationGlow  AnimationMode = "glow"
)

// TextCase selects the case transform applied to caption text.
type TextCase string

const (
	CaseNormal    TextCase = "normal"
	CaseUppercase TextCase = "uppercase"
)

// Documented defaults.
const (
	DefaultFontFamily          = "Arial Black"
	DefaultBaseFontSize        = 56
	DefaultMinFontSize         = 32
	DefaultHighlightScale      = 1.3
	DefaultOutlineWidth        = 3.0
	DefaultBackgroundOpacity   = 50.0
	DefaultVerticalPositionPct = 85.0
	DefaultWordSpacingPx       = 8.0
)

// Config is the caption style configuration.
type Config struct {
	FontFamily     string  `yaml:"font_family" mapstructure:"font_family" json:"font_family"`
	BaseFontSize   int     `yaml:"base_font_size" mapstructure:"base_font_size" json:"base_font_size"`
	MinFontSize    int     `yaml:"min_font_size" mapstructure:"min_font_size" json:"min_font_size"`
	PrimaryColor   string  `yaml:"primary_color" mapstructure:"primary_color" json:"primary_color"`
	HighlightColor string  `yaml:"highlight_color" mapstructure:"highlight_color" json:"highlight_color"`
	HighlightScale float64 `yaml:"highlight_scale" mapstructure:"highlight_scale" json:"highlight_scale"`

	OutlineEnabled bool    `yaml:"outline_enabled" mapstructure:"outline_enabled" json:"outline_enabled"`
	OutlineColor   string  `yaml:"outline_color" mapstructure:"outline_color" json:"outline_color"`
	OutlineWidth   float64 `yaml:"outline_width" mapstructure:"outline_width" json:"outline_width"`

	ShadowEnabled bool   `yaml:"shadow_enabled" mapstructure:"shadow_enabled" json:"shadow_enabled"`
	ShadowColor   string `yaml:"shadow_color" mapstructure:"shadow_color" json:"shadow_color"`

	BackgroundEnabled bool    `yaml:"background_enabled" mapstructure:"background_enabled" json:"background_enabled"`
	BackgroundColor   string  `yaml:"background_color" mapstructure:"background_color" json:"background_color"`
	BackgroundOpacity float64 `yaml:"background_opacity" mapstructure:"background_opacity" json:"background_opacity"`

	AnimationMode       AnimationMode `yaml:"animation_mode" mapstructure:"animation_mode" json:"animation_mode"`
	TextCase            TextCase      `yaml:"text_case" mapstructure:"text_case" json:"text_case"`
	WordSpacingPx       float64       `yaml:"word_spacing_px" mapstructure:"word_spacing_px" json:"word_spacing_px"`
	VerticalPositionPct float64       `yaml:"vertical_position_pct" mapstructure:"vertical_position_pct" json:"vertical_position_pct"`
}

// DefaultConfig returns the shorts caption look: white bold text, amber
// highlight, black outline and shadow, no background box.
func DefaultConfig() Config {
	return Config{
		FontFamily:          DefaultFontFamily,
		BaseFontSize:        DefaultBaseFontSize,
		MinFontSize:         DefaultMinFontSize,
		PrimaryColor:        "#ffffff",
		HighlightColor:      "#fbbf24",
		HighlightScale:      DefaultHighlightScale,
		OutlineEnabled:      true,
		OutlineColor:        "#000000",
		OutlineWidth:        DefaultOutlineWidth,
		ShadowEnabled:       true,
		ShadowColor:         "#000000",
		BackgroundColor:     "#000000",
		BackgroundOpacity:   DefaultBackgroundOpacity,
		AnimationMode:       AnimationBoth,
		TextCase:            CaseNormal,
		WordSpacingPx:       DefaultWordSpacingPx,
		VerticalPositionPct: DefaultVerticalPositionPct,
	}
}

// Normalize returns a copy with every option inside its documented range.
// Unset (zero) font sizes and highlight scale take their defaults; other
// numeric values are clamped. Empty strings and unknown enum values fall
// back to the defaults.
func (c Config) Normalize() Config {
	if c.FontFamily == "" {
		c.FontFamily = DefaultFontFamily
	}

	if c.BaseFontSize == 0 {
		c.BaseFontSize = DefaultBaseFontSize
	}
	c.BaseFontSize = clampInt(c.BaseFontSize, 12, 200)
	if c.MinFontSize == 0 {
		c.MinFontSize = DefaultMinFontSize
	}
	c.MinFontSize = clampInt(c.MinFontSize, 8, c.BaseFontSize)

	switch {
	case c.HighlightScale == 0 || math.IsNaN(c.HighlightScale):
		c.HighlightScale = DefaultHighlightScale
	case c.HighlightScale <= 1:
		c.HighlightScale = 1.05
	case c.HighlightScale > 3:
		c.HighlightScale = 3
	}

	c.OutlineWidth = clamp(c.OutlineWidth, 0, 20)
	c.BackgroundOpacity = clamp(c.BackgroundOpacity, 0, 100)
	c.WordSpacingPx = clamp(c.WordSpacingPx, 0, 100)
	c.VerticalPositionPct = clamp(c.VerticalPositionPct, 0, 100)

	switch c.AnimationMode {
	case AnimationScale, AnimationColor, AnimationBoth, AnimationGlow:
	default:
		c.AnimationMode = AnimationBoth
	}
	switch c.TextCase {
	case CaseNormal, CaseUppercase:
	default:
		c.TextCase = CaseNormal
	}

	d := DefaultConfig()
	orDefault(&c.PrimaryColor, d.PrimaryColor)
	orDefault(&c.HighlightColor, d.HighlightColor)
	orDefault(&c.OutlineColor, d.OutlineColor)
	orDefault(&c.ShadowColor, d.ShadowColor)
	orDefault(&c.BackgroundColor, d.BackgroundColor)
	return c
}

func orDefault(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
