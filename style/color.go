package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB colour.
type Color struct {
	R, G, B uint8
}

// White is the fallback for colours that cannot be parsed.
var White = Color{0xFF, 0xFF, 0xFF}

var palette = map[string]Color{
	"white":  {0xFF, 0xFF, 0xFF},
	"yellow": {0xFF, 0xFF, 0x00},
	"cyan":   {0x00, 0xFF, 0xFF},
	"green":  {0x00, 0xFF, 0x00},
	"red":    {0xFF, 0x00, 0x00},
	"blue":   {0x00, 0x00, 0xFF},
	"orange": {0xFF, 0x80, 0x00},
	"pink":   {0xFF, 0x00, 0xFF},
	"black":  {0x00, 0x00, 0x00},
}

// ParseColor accepts a palette name or a #RRGGBB / #RGB hex string (the
// leading '#' is optional).
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := palette[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return White, fmt.Errorf("colour %q: expected a palette name, #RRGGBB or #RGB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return White, fmt.Errorf("colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ASS renders the colour as an ASS style colour, &HAABBGGRR. Alpha 0 is
// opaque and 255 fully transparent.
func (c Color) ASS(alpha uint8) string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", alpha, c.B, c.G, c.R)
}

// Override renders the colour for inline override tags such as \c and \3c.
func (c Color) Override() string {
	return fmt.Sprintf("&H%02X%02X%02X&", c.B, c.G, c.R)
}
