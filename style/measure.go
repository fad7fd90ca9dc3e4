package style

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/kbukum/clipkit/logger"
)

// HeuristicWidthFactor approximates a bold glyph advance as a fraction of
// the font size.
const HeuristicWidthFactor = 0.6

// Measurer reports the rendered width of text in pixels. approximate is
// true when the width did not come from real font metrics.
type Measurer interface {
	Measure(family string, size float64, text string) (width float64, approximate bool)
}

// HeuristicMeasurer estimates width as 0.6 * size * characters. It is the
// fallback when no font file is available and overestimates for most
// regular-weight fonts.
type HeuristicMeasurer struct{}

// Measure implements Measurer.
func (HeuristicMeasurer) Measure(_ string, size float64, text string) (float64, bool) {
	return HeuristicWidthFactor * size * float64(utf8.RuneCountInString(text)), true
}

// FontMeasurer measures text with TrueType/OpenType fonts found in Dir.
// A family matches a file when both reduce to the same lowercase name with
// spaces, dashes and underscores removed ("Arial Black" ~ ArialBlack.ttf).
// Families without a matching file are measured heuristically.
type FontMeasurer struct {
	Dir string

	mu    sync.Mutex
	index map[string]string
	fonts map[string]*opentype.Font
}

// NewFontMeasurer creates a measurer over the fonts in dir.
func NewFontMeasurer(dir string) *FontMeasurer {
	return &FontMeasurer{Dir: dir, fonts: make(map[string]*opentype.Font)}
}

// Measure implements Measurer.
func (m *FontMeasurer) Measure(family string, size float64, text string) (float64, bool) {
	f := m.font(family)
	if f == nil {
		return HeuristicMeasurer{}.Measure(family, size, text)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		logger.WithComponent("style").Warn("font face creation failed", logger.Fields("family", family, "error", err.Error()))
		return HeuristicMeasurer{}.Measure(family, size, text)
	}
	defer face.Close()
	return float64(font.MeasureString(face, text)) / 64, false
}

// Has reports whether a font file exists for family.
func (m *FontMeasurer) Has(family string) bool {
	return m.font(family) != nil
}

func (m *FontMeasurer) font(family string) *opentype.Font {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index == nil {
		m.index = scanFonts(m.Dir)
	}
	if m.fonts == nil {
		m.fonts = make(map[string]*opentype.Font)
	}
	key := fontKey(family)
	if f, ok := m.fonts[key]; ok {
		return f
	}
	path, ok := m.index[key]
	if !ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithComponent("style").Warn("font file unreadable", logger.Fields("path", path, "error", err.Error()))
		m.fonts[key] = nil
		return nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		logger.WithComponent("style").Warn("font file unparseable", logger.Fields("path", path, "error", err.Error()))
		f = nil
	}
	m.fonts[key] = f
	return f
}

func scanFonts(dir string) map[string]string {
	index := make(map[string]string)
	if dir == "" {
		return index
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return index
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		key := fontKey(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if _, dup := index[key]; !dup {
			index[key] = filepath.Join(dir, e.Name())
		}
	}
	return index
}

func fontKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))
}
