package filters

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/lucasb-eyer/go-colorful"
)

// AdjustWhiteBalance shifts the red/blue balance by temperature and the green
// channel by tint. Both are nominally in [-1, 1]: positive temperature warms
// (more red, less blue), positive tint boosts green.
func AdjustWhiteBalance(img image.Image, temperature, tint float64) *image.NRGBA {
	if temperature == 0 && tint == 0 {
		return rgb(img)
	}

	temp := math.Max(1+temperature*0.3, 0.01)
	tnt := 1 + tint*0.3

	return pointOp(img, func(r, g, b float64) (float64, float64, float64) {
		if temperature != 0 {
			r *= temp
			b /= temp
		}
		if tint != 0 {
			g *= tnt
		}
		return r, g, b
	})
}

// AdjustExposure scales every channel by 2^stops.
func AdjustExposure(img image.Image, stops float64) *image.NRGBA {
	if stops == 0 {
		return rgb(img)
	}
	factor := math.Pow(2, stops)
	return pointOp(img, func(r, g, b float64) (float64, float64, float64) {
		return r * factor, g * factor, b * factor
	})
}

// AdjustContrast scales contrast by factor: 0 is flat gray, 1 leaves the
// image unchanged and values above 1 increase contrast.
func AdjustContrast(img image.Image, factor float64) *image.NRGBA {
	if factor == 1 {
		return rgb(img)
	}
	return rgb(adjust.Contrast(img, factor-1))
}

// AdjustSaturation scales color saturation by factor: 0 is grayscale and 1
// leaves the image unchanged.
func AdjustSaturation(img image.Image, factor float64) *image.NRGBA {
	if factor == 1 {
		return rgb(img)
	}
	return rgb(adjust.Saturation(img, factor-1))
}

// AdjustHSL rotates hue by hue degrees and shifts saturation and lightness by
// the given amounts (each in [-1, 1]); results are clamped to the valid range.
func AdjustHSL(img image.Image, hue, saturation, lightness float64) *image.NRGBA {
	if hue == 0 && saturation == 0 && lightness == 0 {
		return rgb(img)
	}

	return pointOp(img, func(r, g, b float64) (float64, float64, float64) {
		c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
		h, s, l := c.Hsl()

		h = math.Mod(h+hue, 360)
		if h < 0 {
			h += 360
		}
		s = clampUnit(s + saturation)
		l = clampUnit(l + lightness)

		out := colorful.Hsl(h, s, l).Clamped()
		return out.R*255 + 0.5, out.G*255 + 0.5, out.B*255 + 0.5
	})
}

// ApplyCurves applies a tone curve given as (input, output) control points
// sorted by input. Inputs between consecutive points are mapped linearly;
// inputs outside the covered range are left unchanged. Fewer than two points
// leave the image unchanged.
func ApplyCurves(img image.Image, points [][2]float64) *image.NRGBA {
	if len(points) < 2 {
		return rgb(img)
	}

	var curve [256]float64
	for i := range curve {
		curve[i] = float64(i)
	}
	for i := 0; i+1 < len(points); i++ {
		x1, y1 := points[i][0], points[i][1]
		x2, y2 := points[i+1][0], points[i+1][1]
		if x2 == x1 {
			continue
		}
		for x := int(x1); x <= int(x2); x++ {
			if x < 0 || x > 255 {
				continue
			}
			t := (float64(x) - x1) / (x2 - x1)
			curve[x] = y1 + t*(y2-y1)
		}
	}

	var table [3][256]uint8
	for i, v := range curve {
		b := toByte(v)
		table[0][i], table[1][i], table[2][i] = b, b, b
	}
	return lookup(img, table)
}
