package analysis

import "math"

// hsv uses the 8-bit OpenCV convention: H in [0,180], S and V in [0,255].
type hsv struct {
	H, S, V uint8
}

func rgbToHSV(r, g, b uint8) hsv {
	maxC := max(r, g, b)
	minC := min(r, g, b)
	v := maxC
	diff := float64(maxC) - float64(minC)

	var s float64
	if v != 0 {
		s = diff * 255 / float64(v)
	}

	var h float64
	if diff != 0 {
		rf, gf, bf := float64(r), float64(g), float64(b)
		switch maxC {
		case r:
			h = 60 * (gf - bf) / diff
		case g:
			h = 120 + 60*(bf-rf)/diff
		default:
			h = 240 + 60*(rf-gf)/diff
		}
		if h < 0 {
			h += 360
		}
	}

	return hsv{
		H: uint8(math.Round(h / 2)),
		S: uint8(math.Round(s)),
		V: v,
	}
}

type hsvRange struct {
	lower, upper hsv
}

func (r hsvRange) contains(p hsv) bool {
	return p.H >= r.lower.H && p.H <= r.upper.H &&
		p.S >= r.lower.S && p.S <= r.upper.S &&
		p.V >= r.lower.V && p.V <= r.upper.V
}

// colorClass is a named colour made of one or more disjoint hue bands.
type colorClass struct {
	Name   string
	Ranges []hsvRange
}

func (c colorClass) contains(p hsv) bool {
	for _, r := range c.Ranges {
		if r.contains(p) {
			return true
		}
	}
	return false
}

func band(hLow, hHigh uint8) hsvRange {
	return hsvRange{
		lower: hsv{H: hLow, S: 40, V: 40},
		upper: hsv{H: hHigh, S: 255, V: 255},
	}
}

// Bands overlap at their edges (H=10, H=20), so a pixel may count toward two
// colours and the percentages need not sum to 100.
var colorClasses = []colorClass{
	{Name: "Green", Ranges: []hsvRange{band(35, 85)}},
	{Name: "Yellow", Ranges: []hsvRange{band(20, 34)}},
	{Name: "Red", Ranges: []hsvRange{band(0, 10), band(160, 180)}},
	{Name: "Brown", Ranges: []hsvRange{band(10, 20)}},
}
