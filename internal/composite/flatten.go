package composite

import (
	"image"

	"github.com/ironsheep/visionflow/internal/imaging"
)

// flattenLayers reduces a layer stack to one image.
//
// Layers are visited bottom to top and invisible layers are skipped. The
// first visible layer is copied unchanged; its own opacity and blend mode are
// ignored. Every later visible layer is blended onto the accumulator per
// channel in floating point, then clamped to [0, 255] and truncated to 8 bits
// before the next layer is applied.
//
// A layer whose size differs from the accumulator is anchored at the top-left
// corner and only the overlapping rectangle is blended.
//
// When no layer is visible, flattenLayers returns a copy of base.
func flattenLayers(base *image.NRGBA, layers []*Layer) *image.NRGBA {
	var acc *image.NRGBA

	for _, layer := range layers {
		if !layer.Visible {
			continue
		}
		if acc == nil {
			acc = imaging.ToRGB(layer.Image)
			continue
		}
		blend(acc, layer)
	}

	if acc == nil {
		return imaging.ToRGB(base)
	}
	return acc
}

// blend composites layer onto acc in place.
func blend(acc *image.NRGBA, layer *Layer) {
	src := layer.Image
	opacity := clampOpacity(layer.Opacity)

	w := min(acc.Rect.Dx(), src.Rect.Dx())
	h := min(acc.Rect.Dy(), src.Rect.Dy())

	for y := 0; y < h; y++ {
		ai := y * acc.Stride
		si := y * src.Stride
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				a := float64(acc.Pix[ai+c])
				l := float64(src.Pix[si+c])

				var v float64
				switch layer.BlendMode {
				case BlendMultiply:
					v = (a*l/255)*opacity + a*(1-opacity)
				default:
					v = a*(1-opacity) + l*opacity
				}
				acc.Pix[ai+c] = toByte(v)
			}
			acc.Pix[ai+3] = 0xff
			ai += 4
			si += 4
		}
	}
}

// toByte clamps v to [0, 255] and truncates it.
func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
