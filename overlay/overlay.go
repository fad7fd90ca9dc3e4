package overlay

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/kbukum/clipkit/captions"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/style"
)

const styleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, " +
	"Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, " +
	"Alignment, MarginL, MarginR, MarginV, Encoding"

const eventFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

// Horizontal margins of every style, in pixels.
const sideMargin = 50

// shadowAlpha makes drop shadows half transparent.
const shadowAlpha = 0x80

// Canvas is the video frame size the track is laid out for.
type Canvas struct {
	Width  int
	Height int
}

// Track is a generated subtitle track.
type Track struct {
	Script string
	Events int
}

// Bytes returns the script contents.
func (t *Track) Bytes() []byte { return []byte(t.Script) }

// WriteFile writes the track to path.
func (t *Track) WriteFile(path string) error {
	return os.WriteFile(path, t.Bytes(), 0o644)
}

// Generate builds the track for groups, using specs[i] for groups[i].
func Generate(groups []captions.Group, specs []style.RenderSpec, cfg style.Config, canvas Canvas) (*Track, error) {
	if len(groups) != len(specs) {
		return nil, errors.InvalidInput("specs",
			fmt.Sprintf("got %d render specs for %d caption groups", len(specs), len(groups)))
	}
	cfg = cfg.Normalize()

	var b strings.Builder
	writeHeader(&b, canvas)

	b.WriteString("[V4+ Styles]\n")
	b.WriteString(styleFormat + "\n")
	b.WriteString(defaultStyle(cfg, canvas) + "\n")
	for i, spec := range specs {
		b.WriteString(styleLine(styleName(i), spec) + "\n")
	}
	b.WriteString("\n[Events]\n")
	b.WriteString(eventFormat + "\n")

	events := 0
	for gi, g := range groups {
		spec := specs[gi]
		for wi, w := range g.Words {
			end := g.End
			if wi+1 < len(g.Words) {
				end = g.Words[wi+1].Start
			}
			start, stop := centis(w.Start), centis(end)
			if stop <= start {
				continue
			}
			fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
				formatCentis(start), formatCentis(stop), styleName(gi), lineText(g, wi, spec, cfg))
			events++
		}
	}
	return &Track{Script: b.String(), Events: events}, nil
}

func writeHeader(b *strings.Builder, canvas Canvas) {
	b.WriteString("[Script Info]\n")
	b.WriteString("Title: clipkit captions\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(b, "PlayResX: %d\n", canvas.Width)
	fmt.Fprintf(b, "PlayResY: %d\n", canvas.Height)
	b.WriteString("WrapStyle: 0\n")
	b.WriteString("ScaledBorderAndShadow: yes\n\n")
}

func styleName(i int) string { return fmt.Sprintf("G%d", i+1) }

// defaultStyle is the unfitted base style; group styles override it.
func defaultStyle(cfg style.Config, canvas Canvas) string {
	align, margin := style.Position(cfg.VerticalPositionPct, canvas.Height)
	primary, _ := style.ParseColor(cfg.PrimaryColor)
	outline, _ := style.ParseColor(cfg.OutlineColor)
	shadow, _ := style.ParseColor(cfg.ShadowColor)
	width := 0.0
	if cfg.OutlineEnabled {
		width = cfg.OutlineWidth
	}
	depth := 0.0
	if cfg.ShadowEnabled {
		depth = style.ShadowDepth
	}
	return fmt.Sprintf("Style: Default,%s,%d,%s,&H000000FF,%s,%s,1,0,0,0,100,100,0,0,1,%s,%s,%d,%d,%d,%d,1",
		cfg.FontFamily, cfg.BaseFontSize, primary.ASS(0), outline.ASS(0), shadow.ASS(shadowAlpha),
		num(width), num(depth), align.ASS(), sideMargin, sideMargin, margin)
}

// styleLine renders a group's style. With a background box (BorderStyle 3)
// the renderer fills the box with the outline colour, so the background
// colour and alpha go there.
func styleLine(name string, s style.RenderSpec) string {
	borderStyle := 1
	outline := s.Outline.ASS(0)
	if s.BackgroundBox {
		borderStyle = 3
		outline = s.Background.ASS(s.BackgroundAlpha)
	}
	return fmt.Sprintf("Style: %s,%s,%d,%s,&H000000FF,%s,%s,1,0,0,0,100,100,0,0,%d,%s,%s,%d,%d,%d,%d,1",
		name, s.FontFamily, s.FontSize, s.Primary.ASS(0), outline, s.Shadow.ASS(shadowAlpha),
		borderStyle, num(s.OutlineWidth), num(s.ShadowDepth), s.Alignment.ASS(), sideMargin, sideMargin, s.MarginV)
}

func lineText(g captions.Group, active int, spec style.RenderSpec, cfg style.Config) string {
	sep := spacer(cfg.WordSpacingPx, spec.FontSize)
	parts := make([]string, len(g.Words))
	for i, w := range g.Words {
		text := escape(style.ApplyCase(w.Text, cfg.TextCase))
		if i == active {
			text = highlight(cfg.AnimationMode, spec) + text + `{\r}`
		}
		parts[i] = text
	}
	return strings.Join(parts, sep)
}

func highlight(mode style.AnimationMode, s style.RenderSpec) string {
	c := s.Highlight.Override()
	switch mode {
	case style.AnimationScale:
		return fmt.Sprintf(`{\fscx%d\fscy%d}`, s.ScalePercent, s.ScalePercent)
	case style.AnimationColor:
		return fmt.Sprintf(`{\c%s}`, c)
	case style.AnimationGlow:
		return fmt.Sprintf(`{\c%s\3c%s\bord%s\blur4}`, c, c, num(math.Max(s.OutlineWidth, 2)+2))
	default:
		return fmt.Sprintf(`{\fscx%d\fscy%d\c%s}`, s.ScalePercent, s.ScalePercent, c)
	}
}

// spacer is a normal space followed by one hard space per quarter em of
// configured extra spacing.
func spacer(px float64, fontSize int) string {
	if px <= 0 || fontSize <= 0 {
		return " "
	}
	n := int(math.Round(px / (float64(fontSize) * 0.25)))
	return " " + strings.Repeat(`\h`, n)
}

var escaper = strings.NewReplacer(`\`, "＼", "{", "｛", "}", "｝", "\n", " ", "\r", "")

func escape(s string) string { return escaper.Replace(s) }

func centis(seconds float64) int64 {
	if seconds < 0 {
		seconds = 0
	}
	return int64(math.Round(seconds * 100))
}

func formatCentis(cs int64) string {
	h := cs / 360000
	m := (cs / 6000) % 60
	s := (cs / 100) % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}

// FormatTime renders seconds as H:MM:SS.cc.
func FormatTime(seconds float64) string { return formatCentis(centis(seconds)) }

func num(v float64) string {
	return fmt.Sprintf("%g", math.Round(v*100)/100)
}
