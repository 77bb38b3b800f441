package filters

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
)

// GaussianBlur blurs the image. A non-positive radius returns a copy.
func GaussianBlur(img image.Image, radius float64) *image.NRGBA {
	return gaussian(img, radius)
}

// DepthOfField keeps the area around the focus point (fx, fy) sharp and
// blends progressively towards a maxBlur-radius blur with distance.
//
// Distances are normalized by the image diagonal. Pixels closer than
// focusRange (0-1) stay sharp; beyond that the blurred weight rises linearly
// to 1 at the far corner. The focus point is clamped into the image.
func DepthOfField(img image.Image, fx, fy int, focusRange, maxBlur float64) *image.NRGBA {
	src := rgb(img)
	if maxBlur <= 0 || focusRange >= 1 {
		return src
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	fx = clampInt(fx, 0, w-1)
	fy = clampInt(fy, 0, h-1)
	diag := math.Hypot(float64(w), float64(h))
	blurred := gaussian(src, maxBlur)

	return mix(src, blurred, func(x, y int) float64 {
		d := math.Hypot(float64(x-fx), float64(y-fy)) / diag
		return (d - focusRange) / (1 - focusRange)
	})
}

// RadialBlur smears the image along lines through (cx, cy), producing a zoom
// effect. strength is nominally in [0, 1]; 0 returns a copy.
func RadialBlur(img image.Image, cx, cy int, strength float64) *image.NRGBA {
	src := rgb(img)
	if strength <= 0 {
		return src
	}

	passes := int(strength*10) + 1
	k := strength * 0.01

	// Each pass mixes in the same inward-shifted sample, so the total weight of
	// the shifted sample after n passes is 1-0.7^n.
	t := 1 - math.Pow(0.7, float64(passes))

	return combine(src, func(x, y int, dst []uint8, i int) {
		dx := float64(x - cx)
		dy := float64(y - cy)
		sx := float64(x) - dx*k
		sy := float64(y) - dy*k
		for c := 0; c < 3; c++ {
			shifted := bilinear(src, sx, sy, c)
			dst[c] = toByte(float64(src.Pix[i+c])*(1-t) + shifted*t)
		}
	})
}

// TiltShift simulates a miniature effect: a horizontal band centered at
// lineY (fraction of height) of total height width (fraction of height) stays
// sharp and the image blurs towards the top and bottom.
func TiltShift(img image.Image, lineY, width, maxBlur float64) *image.NRGBA {
	src := rgb(img)
	h := src.Rect.Dy()
	if maxBlur <= 0 || h == 0 {
		return src
	}

	focusY := int(lineY * float64(h))
	halfWidth := int(width * float64(h) / 2)
	blurred := gaussian(src, maxBlur)

	return mix(src, blurred, func(_, y int) float64 {
		d := math.Abs(float64(y-focusY)) - float64(halfWidth)
		if d < 0 {
			return 0
		}
		return d / (float64(h) / 2)
	})
}

// Sharpen applies an unsharp mask with radius 1: out = img + strength*(img -
// blur(img)). strength is nominally in [0, 3].
func Sharpen(img image.Image, strength float64) *image.NRGBA {
	if strength <= 0 {
		return rgb(img)
	}
	return rgb(effect.UnsharpMask(img, 1, strength))
}
