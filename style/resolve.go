package style

import (
	"math"
	"strings"

	"github.com/kbukum/clipkit/captions"
	"github.com/kbukum/clipkit/logger"
)

// HorizontalPadding is the total horizontal space kept free around a
// caption line, split evenly between both sides.
const HorizontalPadding = 80

// ShadowDepth is the shadow offset in pixels when shadows are enabled.
const ShadowDepth = 2

// RenderSpec is the fully resolved style of one caption group.
type RenderSpec struct {
	Text      string    `json:"text"`
	Alignment Alignment `json:"alignment"`
	MarginV   int       `json:"margin_v"`

	FontFamily    string `json:"font_family"`
	FontSize      int    `json:"font_size"`
	HighlightSize int    `json:"highlight_size"`
	ScalePercent  int    `json:"scale_percent"`

	Primary    Color `json:"-"`
	Highlight  Color `json:"-"`
	Outline    Color `json:"-"`
	Shadow     Color `json:"-"`
	Background Color `json:"-"`

	OutlineWidth    float64 `json:"outline_width"`
	ShadowDepth     float64 `json:"shadow_depth"`
	BackgroundBox   bool    `json:"background_box"`
	BackgroundAlpha uint8   `json:"background_alpha"`

	// MetricsApproximate is set when the width was estimated rather than
	// measured with the font's own metrics.
	MetricsApproximate bool `json:"metrics_approximate"`
}

// Resolver computes RenderSpecs.
type Resolver struct {
	measurer Measurer
	log      *logger.Logger
}

// NewResolver creates a resolver. A nil measurer uses HeuristicMeasurer.
func NewResolver(m Measurer) *Resolver {
	if m == nil {
		m = HeuristicMeasurer{}
	}
	return &Resolver{measurer: m, log: logger.WithComponent("style")}
}

// Resolve computes the render spec of one group. It never fails: invalid
// colours fall back to white and the config is normalized first.
func (r *Resolver) Resolve(g captions.Group, cfg Config, canvasWidth, canvasHeight int) RenderSpec {
	cfg = cfg.Normalize()
	spec := RenderSpec{
		Text:         ApplyCase(g.Text, cfg.TextCase),
		FontFamily:   cfg.FontFamily,
		ScalePercent: int(math.Round(cfg.HighlightScale * 100)),
	}
	spec.Alignment, spec.MarginV = Position(cfg.VerticalPositionPct, canvasHeight)

	fitted, approx := r.fit(spec.Text, cfg, canvasWidth)
	spec.FontSize = fitted
	spec.HighlightSize = int(float64(fitted) * cfg.HighlightScale)
	spec.MetricsApproximate = approx

	spec.Primary = r.color(cfg.PrimaryColor, "primary_color")
	spec.Highlight = r.color(cfg.HighlightColor, "highlight_color")
	spec.Outline = r.color(cfg.OutlineColor, "outline_color")
	spec.Shadow = r.color(cfg.ShadowColor, "shadow_color")
	spec.Background = r.color(cfg.BackgroundColor, "background_color")

	if cfg.OutlineEnabled {
		spec.OutlineWidth = math.Max(cfg.OutlineWidth, float64(fitted)/14)
	}
	if cfg.ShadowEnabled {
		spec.ShadowDepth = ShadowDepth
	}
	if cfg.BackgroundEnabled {
		spec.BackgroundBox = true
		spec.BackgroundAlpha = uint8(math.Round(255 * (1 - cfg.BackgroundOpacity/100)))
	}
	return spec
}

// ResolveAll resolves every group with the same config.
func (r *Resolver) ResolveAll(groups []captions.Group, cfg Config, canvasWidth, canvasHeight int) []RenderSpec {
	specs := make([]RenderSpec, len(groups))
	for i, g := range groups {
		specs[i] = r.Resolve(g, cfg, canvasWidth, canvasHeight)
	}
	return specs
}

// fit scales the base size down proportionally when the text is wider than
// the canvas minus padding. The result stays within [min, base].
func (r *Resolver) fit(text string, cfg Config, canvasWidth int) (int, bool) {
	base := float64(cfg.BaseFontSize)
	width, approx := r.measurer.Measure(cfg.FontFamily, base, text)
	available := float64(canvasWidth - HorizontalPadding)

	size := base
	if width > available && width > 0 {
		size = base * available / width
	}
	size = math.Max(float64(cfg.MinFontSize), math.Min(base, size))
	return int(size), approx
}

func (r *Resolver) color(value, field string) Color {
	c, err := ParseColor(value)
	if err != nil {
		r.log.Warn("invalid caption colour, using white", logger.Fields("field", field, "value", value))
	}
	return c
}

// ApplyCase applies the text case transform.
func ApplyCase(text string, tc TextCase) string {
	if tc == CaseUppercase {
		return strings.ToUpper(text)
	}
	return text
}
