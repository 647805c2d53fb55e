package color

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a 24-bit color triple.
type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// FormatError reports a malformed hex color string.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("color: invalid hex color %q", e.Value)
}

// Parse parses a "#RRGGBB" (or "RRGGBB") string. Anything that is not
// exactly six hex digits after stripping one optional leading '#' fails.
func Parse(hex string) (RGB, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return RGB{}, &FormatError{Value: hex}
	}
	var c [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return RGB{}, &FormatError{Value: hex}
		}
		c[i] = uint8(n)
	}
	return RGB{R: c[0], G: c[1], B: c[2]}, nil
}

// Hex returns the lowercase "#rrggbb" form, always zero-padded.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Contrast picks a text color that stays readable on the given background.
//
// Luma Y = 0.299R + 0.587G + 0.114B; backgrounds brighter than 128 get
// black text, everything else (including Y == 128 exactly) gets white.
func Contrast(bg RGB) RGB {
	y := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if y > 128 {
		return Black
	}
	return White
}
