package transition

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/vizlab/pkg/scene"
)

// Interpolator returns the value at eased progress t.
type Interpolator func(t float64) string

var numberRE = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// Interpolate returns an interpolator between two attribute values.
//
// Plain numbers interpolate numerically, #rgb/#rrggbb colours interpolate per
// channel, and any other pair is treated as a template: numbers embedded in b
// (path data, transforms) are interpolated from the number at the same
// position in a. Extra numbers in b hold their final value. At t = 1 the
// result is exactly b.
func Interpolate(a, b string) Interpolator {
	if x, err := strconv.ParseFloat(strings.TrimSpace(a), 64); err == nil {
		if y, err := strconv.ParseFloat(strings.TrimSpace(b), 64); err == nil {
			return func(t float64) string {
				if t >= 1 {
					return b
				}
				return scene.FormatNum(x + (y-x)*t)
			}
		}
	}
	if ca, ok := parseColor(a); ok {
		if cb, ok := parseColor(b); ok {
			return func(t float64) string {
				if t >= 1 {
					return b
				}
				var c [3]float64
				for i := range c {
					c[i] = ca[i] + (cb[i]-ca[i])*t
				}
				return formatColor(c)
			}
		}
	}
	return interpolateString(a, b)
}

func interpolateString(a, b string) Interpolator {
	from := numberRE.FindAllString(a, -1)
	locs := numberRE.FindAllStringIndex(b, -1)
	if len(locs) == 0 {
		return func(t float64) string {
			if t >= 1 {
				return b
			}
			return a
		}
	}
	type part struct {
		lit    string
		x, y   float64
		static string
	}
	parts := make([]part, 0, len(locs))
	prev := 0
	for i, loc := range locs {
		p := part{lit: b[prev:loc[0]]}
		y, _ := strconv.ParseFloat(b[loc[0]:loc[1]], 64)
		if i < len(from) {
			x, err := strconv.ParseFloat(from[i], 64)
			if err == nil {
				p.x, p.y = x, y
			} else {
				p.static = b[loc[0]:loc[1]]
			}
		} else {
			p.static = b[loc[0]:loc[1]]
		}
		parts = append(parts, p)
		prev = loc[1]
	}
	tail := b[prev:]
	return func(t float64) string {
		if t >= 1 {
			return b
		}
		var sb strings.Builder
		for _, p := range parts {
			sb.WriteString(p.lit)
			if p.static != "" {
				sb.WriteString(p.static)
				continue
			}
			sb.WriteString(scene.FormatNum(p.x + (p.y-p.x)*t))
		}
		sb.WriteString(tail)
		return sb.String()
	}
}

func parseColor(s string) ([3]float64, bool) {
	var c [3]float64
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return c, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return c, false
	}
	for i := range c {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return c, false
		}
		c[i] = float64(v)
	}
	return c, true
}

func formatColor(c [3]float64) string {
	clampByte := func(v float64) int {
		return int(math.Max(0, math.Min(255, math.Round(v))))
	}
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c[0]), clampByte(c[1]), clampByte(c[2]))
}
