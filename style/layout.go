package style

// Alignment is the vertical anchor of a caption.
type Alignment string

const (
	AlignTop    Alignment = "top"
	AlignMiddle Alignment = "middle"
	AlignBottom Alignment = "bottom"
)

// ASS returns the bottom/middle/top-center numpad alignment code.
func (a Alignment) ASS() int {
	switch a {
	case AlignTop:
		return 8
	case AlignMiddle:
		return 5
	default:
		return 2
	}
}

// Position maps a vertical position percentage to an anchor and margin.
// Up to 33 the margin is measured from the top edge, above 66 from the
// bottom edge, and a middle anchor ignores the margin.
func Position(pct float64, canvasHeight int) (Alignment, int) {
	h := float64(canvasHeight)
	switch {
	case pct <= 33:
		return AlignTop, int(h * pct / 100)
	case pct <= 66:
		return AlignMiddle, 0
	default:
		return AlignBottom, int(h * (100 - pct) / 100)
	}
}
