package filters

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Denoise smooths noise with a Gaussian of the given strength (nominally
// 0-3). A non-positive strength returns a copy.
func Denoise(img image.Image, strength float64) *image.NRGBA {
	return gaussian(img, strength)
}

// EnhanceDetails boosts fine texture by adding back the high-pass component
// (img - blur(img, 2)) scaled by strength.
func EnhanceDetails(img image.Image, strength float64) *image.NRGBA {
	if strength == 0 {
		return rgb(img)
	}
	return rgb(effect.UnsharpMask(img, 2, strength))
}

// Grain adds monochrome film grain. intensity (0-1) scales the noise standard
// deviation up to 30 levels; size above 1 enlarges the grain. The noise is
// drawn from a generator seeded with seed, so equal inputs give equal output.
func Grain(img image.Image, intensity, size float64, seed int64) *image.NRGBA {
	src := rgb(img)
	if intensity <= 0 {
		return src
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}
	nw, nh := w, h
	if size > 1 {
		nw = max(1, int(float64(w)/size))
		nh = max(1, int(float64(h)/size))
	}

	// Noise is stored around a mid-gray of 128 so it can be scaled as an image.
	rng := rand.New(rand.NewSource(seed))
	sigma := intensity * 30
	noise := image.NewGray(image.Rect(0, 0, nw, nh))
	for i := range noise.Pix {
		noise.Pix[i] = toByte(128 + rng.NormFloat64()*sigma + 0.5)
	}

	var field image.Image = noise
	if nw != w || nh != h {
		field = imaging.Resize(noise, w, h, imaging.Linear)
	}

	return combine(src, func(x, y int, dst []uint8, i int) {
		n := float64(color.GrayModel.Convert(field.At(x, y)).(color.Gray).Y) - 128
		for c := 0; c < 3; c++ {
			dst[c] = toByte(float64(src.Pix[i+c]) + n)
		}
	})
}

// SmoothSkin softens skin texture for portraits. A heavy blur is combined
// with half of the fine detail, then mixed with the original by smoothness
// (0-1).
func SmoothSkin(img image.Image, smoothness float64) *image.NRGBA {
	src := rgb(img)
	if smoothness <= 0 {
		return src
	}

	heavy := gaussian(src, 10)
	light := gaussian(src, 2)
	t := clampUnit(smoothness)

	return combine(src, func(_, _ int, dst []uint8, i int) {
		for c := 0; c < 3; c++ {
			orig := float64(src.Pix[i+c])
			smoothed := float64(heavy.Pix[i+c]) + (orig-float64(light.Pix[i+c]))*0.5
			dst[c] = toByte(orig*(1-t) + smoothed*t)
		}
	})
}

// TextureFrequency splits the image at a radius-5 blur into low and high
// frequency parts and recombines them as low*low + high*high (multipliers
// nominally 0-2).
func TextureFrequency(img image.Image, low, high float64) *image.NRGBA {
	src := rgb(img)
	if low == 1 && high == 1 {
		return src
	}

	base := gaussian(src, 5)

	return combine(src, func(_, _ int, dst []uint8, i int) {
		for c := 0; c < 3; c++ {
			lf := float64(base.Pix[i+c])
			hf := float64(src.Pix[i+c]) - lf
			dst[c] = toByte(lf*low + hf*high)
		}
	})
}

// Clarity increases local contrast in the midtones. Detail relative to a
// radius-20 blur is added back scaled by amount (0-2) and by how close the
// pixel's brightness is to 128.
func Clarity(img image.Image, amount float64) *image.NRGBA {
	src := rgb(img)
	if amount == 0 {
		return src
	}

	blurred := gaussian(src, 20)

	return combine(src, func(_, _ int, dst []uint8, i int) {
		brightness := (float64(src.Pix[i]) + float64(src.Pix[i+1]) + float64(src.Pix[i+2])) / 3
		mask := 1 - math.Abs(brightness-128)/128
		for c := 0; c < 3; c++ {
			orig := float64(src.Pix[i+c])
			dst[c] = toByte(orig + (orig-float64(blurred.Pix[i+c]))*amount*mask)
		}
	})
}
