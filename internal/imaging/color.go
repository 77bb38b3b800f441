package imaging

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
	HSL        HSLColor `json:"hsl"`        // HSL representation
}

// DominantColorsResult contains the most frequently occurring colors in an image.
//
// Colors are sorted by frequency in descending order (most common first).
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors extracts the N most common colors from an image or region.
//
// Parameters:
//   - img: The source image to analyze.
//   - count: Maximum number of colors to return. If the image has fewer distinct
//     colors (after quantization), fewer results are returned.
//   - region: Optional rectangular region to analyze. If nil, the entire image
//     is analyzed. The region is clipped to the image bounds.
//
// # Color Quantization
//
// To group similar colors, each 8-bit component is rounded down to a multiple
// of 16:
//
//	quantized = (original / 16) * 16
//
// For example, colors #F0F0F0 and #FAFAFA both map to #F0F0F0. Ties in
// frequency are broken by hex string so results are deterministic.
func DominantColors(img image.Image, count int, region *Region) (*DominantColorsResult, error) {
	bounds := img.Bounds()
	if region != nil {
		bounds = image.Rect(region.X1, region.Y1, region.X2, region.Y2).Intersect(bounds)
	}

	counts := make(map[RGBColor]int)
	totalPixels := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			key := RGBColor{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
			}
			counts[key]++
			totalPixels++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for rgb, cnt := range counts {
		c := colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(cnt) / float64(totalPixels) * 100,
			RGB:        rgb,
			HSL:        toHSL(c),
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}, nil
}

// toHSL converts a colorful color into integer HSL components.
func toHSL(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}
