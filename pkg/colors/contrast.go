// Package colors picks selection colors that stay legible on the
// configured background.
package colors

import (
	"math"
	"strconv"
	"strings"
)

// MinContrast is the WCAG AA ratio for normal text.
const MinContrast = 4.5

type rgb struct{ r, g, b float64 }

// parseHex reads "#rrggbb" or "rrggbb". Anything else, including ANSI
// color numbers, is reported as not ok.
func parseHex(s string) (rgb, bool) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{
		r: float64(v >> 16 & 0xff),
		g: float64(v >> 8 & 0xff),
		b: float64(v & 0xff),
	}, true
}

func (c rgb) hex() string {
	clamp := func(v float64) uint64 {
		return uint64(math.Max(0, math.Min(255, math.Round(v))))
	}
	return "#" + hex2(clamp(c.r)) + hex2(clamp(c.g)) + hex2(clamp(c.b))
}

func hex2(v uint64) string {
	s := strconv.FormatUint(v, 16)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func linear(v float64) float64 {
	v /= 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func (c rgb) luminance() float64 {
	return 0.2126*linear(c.r) + 0.7152*linear(c.g) + 0.0722*linear(c.b)
}

func ratio(a, b rgb) float64 {
	la, lb := a.luminance(), b.luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Luminance returns the relative luminance of a hex color in [0, 1], or 0
// when it does not parse.
func Luminance(hex string) float64 {
	c, ok := parseHex(hex)
	if !ok {
		return 0
	}
	return c.luminance()
}

// ContrastRatio returns the WCAG contrast ratio of two hex colors, from 1
// to 21. Unparseable input yields 1.
func ContrastRatio(fg, bg string) float64 {
	a, okA := parseHex(fg)
	b, okB := parseHex(bg)
	if !okA || !okB {
		return 1
	}
	return ratio(a, b)
}

// ReadableOn returns black or white, whichever contrasts more with bg. It
// reports false when bg is not a hex color.
func ReadableOn(bg string) (string, bool) {
	b, ok := parseHex(bg)
	if !ok {
		return "", false
	}
	black, white := rgb{}, rgb{255, 255, 255}
	if ratio(black, b) >= ratio(white, b) {
		return "#000000", true
	}
	return "#ffffff", true
}

// EnsureContrast moves fg toward black or white in 10% steps until it
// reaches minRatio against bg. Colors that are not hex are returned as is.
func EnsureContrast(fg, bg string, minRatio float64) string {
	f, okF := parseHex(fg)
	b, okB := parseHex(bg)
	if !okF || !okB || ratio(f, b) >= minRatio {
		return fg
	}

	lighten := f.luminance() > b.luminance()
	for step := 1; step <= 10; step++ {
		amount := float64(step) / 10
		var c rgb
		if lighten {
			c = rgb{f.r + (255-f.r)*amount, f.g + (255-f.g)*amount, f.b + (255-f.b)*amount}
		} else {
			c = rgb{f.r * (1 - amount), f.g * (1 - amount), f.b * (1 - amount)}
		}
		if ratio(c, b) >= minRatio {
			return c.hex()
		}
	}
	readable, _ := ReadableOn(bg)
	return readable
}
