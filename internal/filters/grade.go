package filters

import (
	"image"
)

// ColorGrade adds separate RGB offsets (nominally -50..50 per channel) to
// shadows, midtones and highlights. Tonal ranges are weighted by Rec. 601
// luminance: shadows fade out by 85, highlights fade in from 170, and
// midtones take the remaining weight.
func ColorGrade(img image.Image, shadows, midtones, highlights [3]float64) *image.NRGBA {
	src := rgb(img)
	if shadows == ([3]float64{}) && midtones == ([3]float64{}) && highlights == ([3]float64{}) {
		return src
	}

	return combine(src, func(_, _ int, dst []uint8, i int) {
		r, g, b := float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2])
		lum := 0.299*r + 0.587*g + 0.114*b

		shadow := clampUnit(1 - lum/85)
		highlight := clampUnit((lum - 170) / 85)
		mid := 1 - shadow - highlight

		for c := 0; c < 3; c++ {
			v := float64(src.Pix[i+c]) + shadow*shadows[c] + mid*midtones[c] + highlight*highlights[c]
			dst[c] = toByte(v)
		}
	})
}

// ApplyLUT maps each channel through a 1D lookup table. The table holds one
// RGB output triple per entry; entries are spread evenly over the input range
// 0-255 and values between entries are interpolated linearly. A 256-entry
// table maps input i to entry i. Fewer than two entries leave the image
// unchanged.
func ApplyLUT(img image.Image, lut [][3]float64) *image.NRGBA {
	if len(lut) < 2 {
		return rgb(img)
	}

	var table [3][256]uint8
	step := 255 / float64(len(lut)-1)
	for v := 0; v < 256; v++ {
		pos := float64(v) / step
		lo := int(pos)
		if lo >= len(lut)-1 {
			lo = len(lut) - 2
		}
		t := pos - float64(lo)
		for c := 0; c < 3; c++ {
			table[c][v] = toByte(lut[lo][c]*(1-t) + lut[lo+1][c]*t)
		}
	}
	return lookup(img, table)
}
