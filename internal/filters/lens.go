package filters

import (
	"image"
	"math"
)

// Vignette darkens the image away from the center (cx, cy), given as
// fractions of the width and height. At the distance of the half-diagonal the
// brightness is reduced by strength (0-1).
func Vignette(img image.Image, strength, cx, cy float64) *image.NRGBA {
	src := rgb(img)
	if strength == 0 {
		return src
	}

	w, h := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	px, py := w*cx, h*cy
	maxDist := math.Hypot(w/2, h/2)

	return combine(src, func(x, y int, dst []uint8, i int) {
		d := math.Hypot(float64(x)-px, float64(y)-py)
		mask := clampUnit(1 - d/maxDist*strength)
		for c := 0; c < 3; c++ {
			dst[c] = toByte(float64(src.Pix[i+c]) * mask)
		}
	})
}

// ChromaticAberration offsets the red channel by strength pixels down and to
// the right and the blue channel by the same amount up and to the left,
// producing color fringes at edges. Green is unchanged.
func ChromaticAberration(img image.Image, strength float64) *image.NRGBA {
	src := rgb(img)
	if strength == 0 {
		return src
	}

	return combine(src, func(x, y int, dst []uint8, i int) {
		dst[0] = toByte(bilinear(src, float64(x)-strength, float64(y)-strength, 0))
		dst[1] = src.Pix[i+1]
		dst[2] = toByte(bilinear(src, float64(x)+strength, float64(y)+strength, 2))
	})
}

// LensDistortion applies radial distortion: negative amounts produce barrel
// distortion and positive amounts pincushion. |amount| < 0.01 returns a copy.
func LensDistortion(img image.Image, amount float64) *image.NRGBA {
	src := rgb(img)
	if math.Abs(amount) < 0.01 {
		return src
	}

	w, h := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	cx, cy := w/2, h/2

	return combine(src, func(x, y int, dst []uint8, _ int) {
		nx := (float64(x) - cx) / w
		ny := (float64(y) - cy) / h
		r2 := nx*nx + ny*ny
		scale := 1 + amount*r2

		sx := math.Max(0, math.Min(cx+nx*scale*w, w-1))
		sy := math.Max(0, math.Min(cy+ny*scale*h, h-1))
		for c := 0; c < 3; c++ {
			dst[c] = toByte(bilinear(src, sx, sy, c))
		}
	})
}

// bokehThreshold is the mean channel value above which a pixel counts as a
// highlight.
const bokehThreshold = 200

// Bokeh blurs the image by blur and brightens highlights of the original by
// 30 levels in the blurred result.
func Bokeh(img image.Image, blur float64) *image.NRGBA {
	src := rgb(img)
	blurred := gaussian(src, blur)

	return combine(src, func(_, _ int, dst []uint8, i int) {
		mean := (float64(src.Pix[i]) + float64(src.Pix[i+1]) + float64(src.Pix[i+2])) / 3
		boost := 0.0
		if mean > bokehThreshold {
			boost = 30
		}
		for c := 0; c < 3; c++ {
			dst[c] = toByte(float64(blurred.Pix[i+c]) + boost)
		}
	})
}

// ApertureBlurRadius maps an f-stop to the blur radius SimulateAperture
// uses: max(0, 20/fStop - 2). Non-positive f-stops give 0.
func ApertureBlurRadius(fStop float64) float64 {
	if fStop <= 0 {
		return 0
	}
	return math.Max(0, 20/fStop-2)
}

// SimulateAperture blurs the image as a wide aperture would: lower f-stops
// give more blur. Radii under 0.5 (f/8 and above) return a copy.
func SimulateAperture(img image.Image, fStop float64) *image.NRGBA {
	radius := ApertureBlurRadius(fStop)
	if radius < 0.5 {
		return rgb(img)
	}
	return gaussian(img, radius)
}
