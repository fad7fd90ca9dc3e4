package media

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kbukum/clipkit/errors"
)

// Vertical short defaults.
const (
	DefaultVerticalWidth  = 1080
	DefaultVerticalHeight = 1920
	DefaultSplitRatio     = 0.6
)

// Region is a rectangle of the source frame in percent (0-100).
type Region struct {
	ID     string  `json:"id"`
	X      float64 `json:"x" validate:"gte=0,lte=100"`
	Y      float64 `json:"y" validate:"gte=0,lte=100"`
	Width  float64 `json:"width" validate:"gt=0,lte=100"`
	Height float64 `json:"height" validate:"gt=0,lte=100"`
}

// Layout stacks two source regions into a vertical frame.
type Layout struct {
	Regions     []Region `json:"regions" validate:"len=2,dive"`
	TopRegionID string   `json:"top_region_id"`
	// SplitRatio is the top region's share of the output height, clamped to
	// [0.2, 0.8]. Zero means DefaultSplitRatio.
	SplitRatio float64 `json:"split_ratio"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Rect is a pixel rectangle.
type Rect struct {
	X, Y, W, H int
}

func pct(p float64, total int) int {
	return int(math.Round(p * float64(total) / 100))
}

func (r Region) pixels(srcW, srcH int) Rect {
	return Rect{
		X: pct(r.X, srcW),
		Y: pct(r.Y, srcH),
		W: pct(r.Width, srcW),
		H: pct(r.Height, srcH),
	}
}

// normalized fills defaults and picks the top and bottom regions. The top
// region is the first whose ID matches TopRegionID, else the first region.
func (l Layout) normalized() (Layout, Region, Region, error) {
	if len(l.Regions) != 2 {
		return l, Region{}, Region{}, errors.InvalidInput("regions",
			fmt.Sprintf("vertical layout needs exactly 2 regions, got %d", len(l.Regions)))
	}
	if l.Width <= 0 {
		l.Width = DefaultVerticalWidth
	}
	if l.Height <= 0 {
		l.Height = DefaultVerticalHeight
	}
	if l.SplitRatio == 0 || math.IsNaN(l.SplitRatio) {
		l.SplitRatio = DefaultSplitRatio
	}
	l.SplitRatio = math.Max(0.2, math.Min(0.8, l.SplitRatio))

	topIdx := 0
	for i, r := range l.Regions {
		if r.ID == l.TopRegionID {
			topIdx = i
			break
		}
	}
	return l, l.Regions[topIdx], l.Regions[1-topIdx], nil
}

// ReframeGraph builds split → crop → scale → pad → vstack for a source of
// srcW x srcH. Each region is scaled to fit its band without distortion and
// letterboxed in black. The output pad is labeled "out".
func ReframeGraph(l Layout, srcW, srcH int) (*Graph, error) {
	l, top, bottom, err := l.normalized()
	if err != nil {
		return nil, err
	}
	if srcW <= 0 || srcH <= 0 {
		return nil, errors.InvalidInput("source", fmt.Sprintf("invalid source size %dx%d", srcW, srcH))
	}
	topH := int(math.Round(float64(l.Height) * l.SplitRatio))
	bottomH := l.Height - topH

	g := &Graph{}
	g.Add(Pads("0:v"), Pads("src_top", "src_bottom"), NewFilter("split", "2"))
	g.Add(Pads("src_top"), Pads("top"), bandFilters(top.pixels(srcW, srcH), l.Width, topH)...)
	g.Add(Pads("src_bottom"), Pads("bottom"), bandFilters(bottom.pixels(srcW, srcH), l.Width, bottomH)...)
	g.Add(Pads("top", "bottom"), Pads("out"), Filter{Name: "vstack", Args: []Arg{{Key: "inputs", Value: "2"}}})
	return g, nil
}

func bandFilters(r Rect, w, h int) []Filter {
	return []Filter{
		NewFilter("crop", itoa(r.W), itoa(r.H), itoa(r.X), itoa(r.Y)),
		NewFilter("scale", itoa(w), itoa(h)).With("force_original_aspect_ratio", "decrease"),
		NewFilter("pad", itoa(w), itoa(h), "(ow-iw)/2", "(oh-ih)/2", "black"),
	}
}

func itoa(i int) string { return strconv.Itoa(i) }
