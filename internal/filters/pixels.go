package filters

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/parallel"

	vfimaging "github.com/ironsheep/visionflow/internal/imaging"
)

// rgb returns an opaque NRGBA copy of img.
func rgb(img image.Image) *image.NRGBA {
	return vfimaging.ToRGB(img)
}

// toByte clamps v to [0, 255] and truncates it.
func toByte(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// pointOp maps every pixel's R, G and B values (0-255) through fn.
func pointOp(img image.Image, fn func(r, g, b float64) (float64, float64, float64)) *image.NRGBA {
	out := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		r, g, b := fn(float64(c.R), float64(c.G), float64(c.B))
		return color.RGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: 0xff}
	})
	return rgb(out)
}

// lookup applies a per-channel 256-entry table.
func lookup(img image.Image, table [3][256]uint8) *image.NRGBA {
	out := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{R: table[0][c.R], G: table[1][c.G], B: table[2][c.B], A: 0xff}
	})
	return rgb(out)
}

// gaussian blurs img. A non-positive radius returns a copy.
func gaussian(img image.Image, radius float64) *image.NRGBA {
	if radius <= 0 {
		return rgb(img)
	}
	return rgb(blur.Gaussian(img, radius))
}

// combine builds a new image the size of src. fn receives the pixel
// coordinates and the pixel's offset i into src.Pix (valid for any image
// produced by rgb with the same size) and writes R, G and B into dst. Rows
// are processed in parallel.
func combine(src *image.NRGBA, fn func(x, y int, dst []uint8, i int)) *image.NRGBA {
	out := image.NewNRGBA(src.Rect)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*src.Stride + x*4
				fn(x, y, out.Pix[i:i+3:i+3], i)
				out.Pix[i+3] = 0xff
			}
		}
	})
	return out
}

// mix blends a and b per pixel: out = a*(1-t) + b*t with t from weight.
// a and b must have the same bounds.
func mix(a, b *image.NRGBA, weight func(x, y int) float64) *image.NRGBA {
	return combine(a, func(x, y int, dst []uint8, i int) {
		t := clampUnit(weight(x, y))
		for c := 0; c < 3; c++ {
			dst[c] = toByte(float64(a.Pix[i+c])*(1-t) + float64(b.Pix[i+c])*t)
		}
	})
}

// sample returns channel c of src at (x, y), clamping coordinates to the
// image edges.
func sample(src *image.NRGBA, x, y, c int) uint8 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	x = clampInt(x, 0, w-1)
	y = clampInt(y, 0, h-1)
	return src.Pix[y*src.Stride+x*4+c]
}

// bilinear samples channel c of src at fractional coordinates, clamping to
// the image edges.
func bilinear(src *image.NRGBA, fx, fy float64, c int) float64 {
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	p00 := float64(sample(src, x0, y0, c))
	p10 := float64(sample(src, x0+1, y0, c))
	p01 := float64(sample(src, x0, y0+1, c))
	p11 := float64(sample(src, x0+1, y0+1, c))

	top := p00*(1-tx) + p10*tx
	bottom := p01*(1-tx) + p11*tx
	return top*(1-ty) + bottom*ty
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
